package formatter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alexanderramin/mandalart/internal/domain"
)

// ExportMarkdown renders a mandalart as a Markdown document: the goal, an
// optional blessing, the 9x9 table and one checklist per pillar.
func ExportMarkdown(m domain.MandalartData, blessing string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", m.Core)
	if blessing = strings.TrimSpace(blessing); blessing != "" {
		fmt.Fprintf(&b, "> %s\n\n", blessing)
	}

	cells := m.Cells()
	b.WriteString("|" + strings.Repeat("   |", 9) + "\n")
	b.WriteString("|" + strings.Repeat(":-:|", 9) + "\n")
	for r := 0; r < 9; r++ {
		b.WriteString("|")
		for c := 0; c < 9; c++ {
			cell := cells[r][c]
			text := markdownCell(cell.Text)
			if cell.Title && text != "" {
				text = "**" + text + "**"
			}
			fmt.Fprintf(&b, " %s |", text)
		}
		b.WriteString("\n")
	}

	for i, g := range m.SubGrids {
		fmt.Fprintf(&b, "\n## %d. %s\n\n", i+1, g.Title)
		for _, a := range g.Actions {
			fmt.Fprintf(&b, "- [ ] %s\n", a)
		}
	}
	return b.String()
}

func markdownCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

// ExportJSON renders a mandalart in its persisted JSON shape.
func ExportJSON(m domain.MandalartData) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding mandalart: %w", err)
	}
	return append(data, '\n'), nil
}
