package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/mandalart/internal/domain"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorAqua   = lipgloss.Color("#689d6a")
	ColorOrange = lipgloss.Color("#d65d0e")
	ColorGray   = lipgloss.Color("#a89984")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// pillarColors is indexed by ColorIndex-1.
var pillarColors = []lipgloss.Color{
	ColorRed, ColorOrange, ColorYellow, ColorGreen,
	ColorAqua, ColorBlue, ColorPurple, ColorGray,
}

// PillarColor returns the color of the pillar with the given 1-based color
// index. Anything out of range is the header color used for the core goal.
func PillarColor(colorIndex int) lipgloss.Color {
	if colorIndex < 1 || colorIndex > len(pillarColors) {
		return ColorHeader
	}
	return pillarColors[colorIndex-1]
}

// PillarStyle returns the foreground style for a pillar color index.
func PillarStyle(colorIndex int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(PillarColor(colorIndex))
}

// StepBadge renders the wizard step with a color for how far along it is.
func StepBadge(step domain.Step) string {
	switch step {
	case domain.StepResult:
		return StyleGreen.Render("● " + string(step))
	case domain.StepActionSelection, domain.StepPillarSelection, domain.StepGenerating:
		return StyleYellow.Render("● " + string(step))
	case domain.StepQuickContext:
		return StyleDim.Render("○ " + string(step))
	default:
		return StyleBlue.Render("● " + string(step))
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
