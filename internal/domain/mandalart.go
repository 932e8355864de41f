package domain

import (
	"errors"
	"fmt"
	"strings"
)

// SubGrid is one of the eight outer blocks: a pillar title with its actions.
type SubGrid struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	OpacityLevel int      `json:"opacityLevel"`
	ColorIndex   int      `json:"colorIndex"`
	Actions      []string `json:"actions"`
}

// NewSubGrid builds the block for the pillar at zero-based index. Blocks are
// numbered from 1 and fade in by position.
func NewSubGrid(index int, p Pillar, actions []string) SubGrid {
	return SubGrid{
		ID:           fmt.Sprintf("grid_%d", index+1),
		Title:        p.Title,
		OpacityLevel: index + 1,
		ColorIndex:   p.ColorIndex,
		Actions:      append([]string{}, actions...),
	}
}

func (g SubGrid) clone() SubGrid {
	g.Actions = append([]string{}, g.Actions...)
	return g
}

// MandalartData is the finished plan handed to renderers.
type MandalartData struct {
	Core     string    `json:"core"`
	SubGrids []SubGrid `json:"subGrids"`
}

func (m MandalartData) clone() MandalartData {
	out := MandalartData{Core: m.Core, SubGrids: make([]SubGrid, len(m.SubGrids))}
	for i, g := range m.SubGrids {
		out.SubGrids[i] = g.clone()
	}
	return out
}

var ErrInvalidMandalart = errors.New("invalid mandalart")

// Validate checks the 8 subgrids by 8 non-empty actions shape.
func (m MandalartData) Validate() error {
	if strings.TrimSpace(m.Core) == "" {
		return fmt.Errorf("%w: core goal is empty", ErrInvalidMandalart)
	}
	if len(m.SubGrids) != PillarCount {
		return fmt.Errorf("%w: want %d subgrids, got %d", ErrInvalidMandalart, PillarCount, len(m.SubGrids))
	}
	for i, g := range m.SubGrids {
		if strings.TrimSpace(g.Title) == "" {
			return fmt.Errorf("%w: subgrid %d has no title", ErrInvalidMandalart, i+1)
		}
		if len(g.Actions) != ActionsPerPillar {
			return fmt.Errorf("%w: subgrid %d wants %d actions, got %d",
				ErrInvalidMandalart, i+1, ActionsPerPillar, len(g.Actions))
		}
		for j, a := range g.Actions {
			if strings.TrimSpace(a) == "" {
				return fmt.Errorf("%w: subgrid %d action %d is empty", ErrInvalidMandalart, i+1, j+1)
			}
		}
	}
	return nil
}

// CenterIndex is the middle position of a 3x3 block, and also the
// position of the core block in the 3x3 arrangement of blocks.
const CenterIndex = 4

// OuterIndex maps a block (or cell) position 0..8 other than the centre to
// its subgrid (or action) index 0..7. ok is false for the centre.
func OuterIndex(pos int) (int, bool) {
	switch {
	case pos < 0 || pos > 8:
		return 0, false
	case pos < CenterIndex:
		return pos, true
	case pos == CenterIndex:
		return 0, false
	default:
		return pos - 1, true
	}
}

// Cell is one square of the 9x9 grid.
type Cell struct {
	Text string
	// ColorIndex is the owning pillar's colour, 0 for the core goal.
	ColorIndex int
	// Title marks a pillar title or the core goal.
	Title bool
	Core  bool
}

// Block returns the 3x3 cells of block pos (row-major, 0..8).
func (m MandalartData) Block(pos int) [9]Cell {
	var block [9]Cell
	if pos == CenterIndex {
		for c := 0; c < 9; c++ {
			if c == CenterIndex {
				block[c] = Cell{Text: m.Core, Title: true, Core: true}
				continue
			}
			i, _ := OuterIndex(c)
			if i < len(m.SubGrids) {
				g := m.SubGrids[i]
				block[c] = Cell{Text: g.Title, ColorIndex: g.ColorIndex, Title: true}
			}
		}
		return block
	}
	gi, ok := OuterIndex(pos)
	if !ok || gi >= len(m.SubGrids) {
		return block
	}
	g := m.SubGrids[gi]
	for c := 0; c < 9; c++ {
		if c == CenterIndex {
			block[c] = Cell{Text: g.Title, ColorIndex: g.ColorIndex, Title: true}
			continue
		}
		ai, _ := OuterIndex(c)
		if ai < len(g.Actions) {
			block[c] = Cell{Text: g.Actions[ai], ColorIndex: g.ColorIndex}
		}
	}
	return block
}

// Cells returns the full 9x9 matrix indexed [row][col].
func (m MandalartData) Cells() [9][9]Cell {
	var grid [9][9]Cell
	for b := 0; b < 9; b++ {
		block := m.Block(b)
		br, bc := b/3, b%3
		for c := 0; c < 9; c++ {
			grid[br*3+c/3][bc*3+c%3] = block[c]
		}
	}
	return grid
}
