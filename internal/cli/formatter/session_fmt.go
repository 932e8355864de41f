package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/mandalart/internal/domain"
)

// FormatStatus renders a summary of where a session stands.
func FormatStatus(s domain.Session) string {
	var b strings.Builder

	b.WriteString(Header("Mandalart Session"))
	b.WriteString("\n\n")

	row := func(label, value string) {
		fmt.Fprintf(&b, "  %s %s\n", Dim(Pad(label, 11)), value)
	}

	row("Step", StepBadge(s.CurrentStep))
	if s.IsDiscoveryMode {
		row("Mode", StylePurple.Render("discovery"))
	}
	if qc := s.QuickContext; qc != nil && qc.Nickname != "" {
		row("Nickname", qc.Nickname)
	}
	if goal := s.Goal(); goal != "" {
		row("Goal", Bold(goal))
	} else {
		row("Goal", Dim("not set"))
	}
	if a := s.Archetype(); a != "" {
		row("Archetype", StyleBlue.Render(string(a)))
	}
	if vibe := s.VibeSummary(); vibe != "" {
		row("Vibe", vibe)
	}

	if len(s.SuggestedPillars) > 0 || len(s.SelectedPillars) > 0 {
		row("Pillars", RenderCount(len(s.SelectedPillars), domain.PillarCount))
		for _, p := range s.SelectedPillars {
			fmt.Fprintf(&b, "  %s %s\n", Pad("", 11), PillarStyle(p.ColorIndex).Render("■ "+p.Title))
		}
	}

	if as := s.ActionSelection; as != nil {
		title := ""
		if as.PillarIndex < len(s.SelectedPillars) {
			title = s.SelectedPillars[as.PillarIndex].Title
		}
		row("Board", fmt.Sprintf("pillar %d/%d %s", as.PillarIndex+1, domain.PillarCount, title))
		row("Actions", RenderCount(len(as.Selected), domain.ActionsPerPillar))
		row("Completed", fmt.Sprintf("%d/%d", len(as.Completed), domain.PillarCount))
	}

	if s.Mandalart != nil {
		b.WriteString("\n")
		b.WriteString(StyleGreen.Render("  Mandalart ready."))
		b.WriteString(Dim(" Run 'mandalart show' to view it."))
		b.WriteString("\n")
	}

	return b.String()
}

// FormatPillarChoices lists suggested pillars with their selection marks.
func FormatPillarChoices(s domain.Session) string {
	var b strings.Builder
	for i, p := range s.SuggestedPillars {
		mark := Dim("○")
		title := p.Title
		if s.IsPillarSelected(p.ID) {
			mark = StyleGreen.Render("●")
			title = Bold(p.Title)
		}
		fmt.Fprintf(&b, "  %s %2d. %s", mark, i+1, title)
		if p.Description != "" {
			fmt.Fprintf(&b, " %s", Dim(p.Description))
		}
		b.WriteString("\n")
	}
	return b.String()
}
