package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/mandalart/internal/domain"
)

// DefaultCellWidth is the cell width of the full grid in terminal cells.
const DefaultCellWidth = 10

const emptyCell = "·"

// RenderGrid renders the full 9x9 grid. Blocks are separated by rules; each
// cell is truncated to cellWidth and colored by its pillar.
func RenderGrid(m domain.MandalartData, cellWidth int) string {
	if cellWidth < 3 {
		cellWidth = DefaultCellWidth
	}
	cells := m.Cells()
	rule := StyleDim.Render(blockRule(cellWidth))

	var b strings.Builder
	for r := 0; r < 9; r++ {
		if r > 0 && r%3 == 0 {
			b.WriteString(rule)
			b.WriteString("\n")
		}
		for c := 0; c < 9; c++ {
			switch {
			case c == 0:
			case c%3 == 0:
				b.WriteString(StyleDim.Render(" │ "))
			default:
				b.WriteString(" ")
			}
			b.WriteString(renderCell(cells[r][c], cellWidth))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func blockRule(cellWidth int) string {
	segment := strings.Repeat("─", 3*cellWidth+2)
	return strings.Join([]string{segment, segment, segment}, "─┼─")
}

func renderCell(cell domain.Cell, width int) string {
	if cell.Text == "" {
		return StyleDim.Render(Pad(emptyCell, width))
	}
	text := Pad(Truncate(cell.Text, width), width)
	return cellStyle(cell).Render(text)
}

func cellStyle(cell domain.Cell) lipgloss.Style {
	switch {
	case cell.Core:
		return StyleHeader
	case cell.Title:
		return PillarStyle(cell.ColorIndex).Bold(true)
	default:
		return PillarStyle(cell.ColorIndex)
	}
}

// RenderBlock renders block pos (0..8, 4 is the core) as a 3x3 of bordered
// boxes with wrapped text. focus is the highlighted cell, or -1.
func RenderBlock(m domain.MandalartData, pos, boxWidth, focus int) string {
	if boxWidth < 6 {
		boxWidth = 18
	}
	block := m.Block(pos)
	rows := make([]string, 0, 3)
	for r := 0; r < 3; r++ {
		boxes := make([]string, 0, 3)
		for c := 0; c < 3; c++ {
			i := r*3 + c
			boxes = append(boxes, renderBox(block[i], boxWidth, i == focus))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderBox(cell domain.Cell, width int, focused bool) string {
	border := lipgloss.RoundedBorder()
	color := PillarColor(cell.ColorIndex)
	if focused {
		border = lipgloss.ThickBorder()
	}
	text := cell.Text
	style := cellStyle(cell)
	if text == "" {
		text = emptyCell
		style = StyleDim
		color = ColorDim
	}
	return style.
		Width(width).
		Height(3).
		Align(lipgloss.Center).
		Border(border).
		BorderForeground(color).
		Render(text)
}
