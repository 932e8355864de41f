package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexanderramin/mandalart/internal/cli/formatter"
	"github.com/alexanderramin/mandalart/internal/domain"
)

type gridKeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Zoom  key.Binding
	Back  key.Binding
	Help  key.Binding
	Quit  key.Binding
}

func (k gridKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Zoom, k.Back, k.Help, k.Quit}
}

func (k gridKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Zoom, k.Back},
		{k.Help, k.Quit},
	}
}

func newGridKeyMap() gridKeyMap {
	return gridKeyMap{
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Zoom:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "zoom")),
		Back:  key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		Help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// gridModel browses a mandalart. The overview moves a cursor over the nine
// blocks; zooming shows one block with a cursor over its cells. Zooming on
// a pillar title in the core block jumps to that pillar's block.
type gridModel struct {
	m      domain.MandalartData
	keys   gridKeyMap
	help   help.Model
	width  int
	zoomed bool
	block  int
	cell   int
}

func newGridModel(m domain.MandalartData) gridModel {
	return gridModel{
		m:     m,
		keys:  newGridKeyMap(),
		help:  help.New(),
		block: domain.CenterIndex,
		cell:  domain.CenterIndex,
	}
}

func (g gridModel) Init() tea.Cmd { return nil }

func (g gridModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		g.width = msg.Width
		g.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, g.keys.Quit):
			return g, tea.Quit
		case key.Matches(msg, g.keys.Help):
			g.help.ShowAll = !g.help.ShowAll
		case key.Matches(msg, g.keys.Up):
			g.move(-1, 0)
		case key.Matches(msg, g.keys.Down):
			g.move(1, 0)
		case key.Matches(msg, g.keys.Left):
			g.move(0, -1)
		case key.Matches(msg, g.keys.Right):
			g.move(0, 1)
		case key.Matches(msg, g.keys.Zoom):
			g.zoom()
		case key.Matches(msg, g.keys.Back):
			g.back()
		}
	}
	return g, nil
}

// move shifts the active cursor within a 3x3 without wrapping.
func (g *gridModel) move(dRow, dCol int) {
	pos := &g.block
	if g.zoomed {
		pos = &g.cell
	}
	row, col := *pos/3, *pos%3
	row += dRow
	col += dCol
	if row < 0 || row > 2 || col < 0 || col > 2 {
		return
	}
	*pos = row*3 + col
}

func (g *gridModel) zoom() {
	if !g.zoomed {
		g.zoomed = true
		g.cell = domain.CenterIndex
		return
	}
	// From the core block, a pillar title leads to its own block.
	if g.block == domain.CenterIndex && g.cell != domain.CenterIndex {
		g.block = g.cell
		g.cell = domain.CenterIndex
	}
}

func (g *gridModel) back() {
	if !g.zoomed {
		return
	}
	if g.block != domain.CenterIndex {
		g.cell = g.block
		g.block = domain.CenterIndex
		return
	}
	g.zoomed = false
}

func (g gridModel) View() string {
	var b strings.Builder
	b.WriteString(formatter.Header(g.m.Core))
	b.WriteString("\n\n")

	if g.zoomed {
		b.WriteString(formatter.RenderBlock(g.m, g.block, g.boxWidth(), g.cell))
		b.WriteString("\n\n")
		b.WriteString(formatter.Dim(g.focusLabel()))
	} else {
		b.WriteString(formatter.RenderGrid(g.m, g.cellWidth()))
		b.WriteString("\n")
		b.WriteString(formatter.Dim("Block: ") + g.blockTitle(g.block))
	}

	b.WriteString("\n\n")
	b.WriteString(g.help.View(g.keys))
	b.WriteString("\n")
	return b.String()
}

func (g gridModel) cellWidth() int {
	if g.width <= 0 {
		return formatter.DefaultCellWidth
	}
	// Nine cells, six single gaps and two three-column separators.
	w := (g.width - 12) / 9
	return max(4, min(w, 16))
}

func (g gridModel) boxWidth() int {
	if g.width <= 0 {
		return 18
	}
	return max(8, min((g.width-6)/3-2, 30))
}

func (g gridModel) blockTitle(pos int) string {
	if pos == domain.CenterIndex {
		return formatter.Bold(g.m.Core)
	}
	i, _ := domain.OuterIndex(pos)
	if i >= len(g.m.SubGrids) {
		return formatter.Dim("empty")
	}
	sg := g.m.SubGrids[i]
	return formatter.PillarStyle(sg.ColorIndex).Render(fmt.Sprintf("%d. %s", i+1, sg.Title))
}

func (g gridModel) focusLabel() string {
	return g.m.Block(g.block)[g.cell].Text
}

func runGridViewer(ctx context.Context, m domain.MandalartData) error {
	_, err := tea.NewProgram(newGridModel(m), tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}
