package session

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/mandalart/internal/domain"
)

// StartActionSelection opens the action board on the first selected
// pillar. All eight pillars must be selected.
type StartActionSelection struct{}

func (StartActionSelection) Name() string { return "start_action_selection" }

func (StartActionSelection) Apply(s domain.Session, env Env) (domain.Session, Outcome) {
	if len(s.SelectedPillars) != domain.PillarCount || s.Mandalart != nil {
		return s, OutcomeRejected
	}
	if env.Strict && !CanTransition(s, domain.StepActionSelection) {
		return s, OutcomeIllegalTransition
	}
	board := domain.NewActionSelection()
	s.ActionSelection = &board
	s.CurrentStep = domain.StepActionSelection
	return s, OutcomeApplied
}

// SetActionSuggestions replaces the suggestions for the current pillar and
// clears its selection.
type SetActionSuggestions struct {
	Texts []string `json:"texts"`
}

func (SetActionSuggestions) Name() string { return "set_action_suggestions" }

func (a SetActionSuggestions) Apply(s domain.Session, _ Env) (domain.Session, Outcome) {
	board := s.ActionSelection
	if board == nil {
		return s, OutcomeRejected
	}
	board.Batch++
	board.Suggested = newBatch(board.PillarIndex, board.Batch, a.Texts, nil)
	board.Selected = []domain.ActionItem{}
	board.Rejected = []string{}
	return s, OutcomeApplied
}

// MergeRegeneratedActions keeps the selected actions, replaces the rest of
// the suggestions with Texts and remembers the replaced texts as rejected.
type MergeRegeneratedActions struct {
	Texts []string `json:"texts"`
}

func (MergeRegeneratedActions) Name() string { return "merge_regenerated_actions" }

func (a MergeRegeneratedActions) Apply(s domain.Session, _ Env) (domain.Session, Outcome) {
	board := s.ActionSelection
	if board == nil {
		return s, OutcomeRejected
	}
	for _, text := range board.UnselectedTexts() {
		if !containsString(board.Rejected, text) {
			board.Rejected = append(board.Rejected, text)
		}
	}
	board.Batch++
	fresh := newBatch(board.PillarIndex, board.Batch, a.Texts, board.SelectedTexts())
	board.Suggested = append(append([]domain.ActionItem{}, board.Selected...), fresh...)
	return s, OutcomeApplied
}

// ToggleAction selects or deselects a suggested action. At most eight
// actions can be selected per pillar.
type ToggleAction struct {
	ID string `json:"id"`
}

func (ToggleAction) Name() string { return "toggle_action" }

func (a ToggleAction) Apply(s domain.Session, _ Env) (domain.Session, Outcome) {
	board := s.ActionSelection
	if board == nil {
		return s, OutcomeRejected
	}
	if board.IsActionSelected(a.ID) {
		kept := make([]domain.ActionItem, 0, len(board.Selected))
		for _, item := range board.Selected {
			if item.ID != a.ID {
				kept = append(kept, item)
			}
		}
		board.Selected = kept
		return s, OutcomeApplied
	}
	if len(board.Selected) >= domain.ActionsPerPillar {
		return s, OutcomeSelectionFull
	}
	item, ok := board.FindSuggested(a.ID)
	if !ok {
		return s, OutcomeNotFound
	}
	board.Selected = append(board.Selected, item)
	return s, OutcomeApplied
}

// AddCustomAction adds a user-written action and selects it.
type AddCustomAction struct {
	Text string `json:"text"`
}

func (AddCustomAction) Name() string { return "add_custom_action" }

func (a AddCustomAction) Apply(s domain.Session, _ Env) (domain.Session, Outcome) {
	board := s.ActionSelection
	text := strings.TrimSpace(a.Text)
	if board == nil || text == "" {
		return s, OutcomeRejected
	}
	if len(board.Selected) >= domain.ActionsPerPillar {
		return s, OutcomeSelectionFull
	}
	item := domain.ActionItem{
		ID:   fmt.Sprintf("p%d-b%d-c%d", board.PillarIndex, board.Batch, len(board.Suggested)),
		Text: text,
	}
	board.Suggested = append(board.Suggested, item)
	board.Selected = append(board.Selected, item)
	return s, OutcomeApplied
}

// CompletePillarActions turns the eight selected actions into the current
// pillar's subgrid. After the last pillar the mandalart is written and the
// wizard moves to RESULT.
type CompletePillarActions struct{}

func (CompletePillarActions) Name() string { return "complete_pillar_actions" }

func (CompletePillarActions) Apply(s domain.Session, _ Env) (domain.Session, Outcome) {
	board := s.ActionSelection
	if board == nil || len(board.Selected) != domain.ActionsPerPillar {
		return s, OutcomeRejected
	}
	if board.PillarIndex >= len(s.SelectedPillars) {
		return s, OutcomeRejected
	}
	pillar := s.SelectedPillars[board.PillarIndex]
	board.Completed = append(board.Completed, domain.NewSubGrid(board.PillarIndex, pillar, board.SelectedTexts()))

	if board.PillarIndex+1 < len(s.SelectedPillars) {
		board.PillarIndex++
		board.Batch = 0
		board.Suggested = []domain.ActionItem{}
		board.Selected = []domain.ActionItem{}
		board.Rejected = []string{}
		return s, OutcomeApplied
	}

	m := domain.MandalartData{Core: s.Goal(), SubGrids: board.Completed}
	if s.Mandalart != nil || m.Validate() != nil {
		return s, OutcomeRejected
	}
	s.Mandalart = &m
	s.ActionSelection = nil
	s.CurrentStep = domain.StepResult
	return s, OutcomeApplied
}

// newBatch builds action items for texts, dropping blanks, duplicates and
// anything already in skip.
func newBatch(pillarIndex, batch int, texts, skip []string) []domain.ActionItem {
	items := make([]domain.ActionItem, 0, len(texts))
	seen := make(map[string]bool, len(texts)+len(skip))
	for _, t := range skip {
		seen[t] = true
	}
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		items = append(items, domain.ActionItem{
			ID:   fmt.Sprintf("p%d-b%d-%d", pillarIndex, batch, len(items)),
			Text: t,
		})
	}
	return items
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// FillActionBoard completes the mandalart from generated blocks. Pillars
// already completed keep their subgrid, the current pillar keeps its
// selection topped up from the generated block, and later pillars take the
// generated block as is.
type FillActionBoard struct {
	SubGrids []domain.SubGrid `json:"subGrids"`
}

func (FillActionBoard) Name() string { return "fill_action_board" }

func (a FillActionBoard) Apply(s domain.Session, _ Env) (domain.Session, Outcome) {
	board := s.ActionSelection
	if board == nil || s.Mandalart != nil {
		return s, OutcomeRejected
	}
	if len(a.SubGrids) != len(s.SelectedPillars) || len(board.Completed) != board.PillarIndex {
		return s, OutcomeRejected
	}

	m := domain.MandalartData{Core: s.Goal()}
	for i, p := range s.SelectedPillars {
		switch {
		case i < board.PillarIndex:
			m.SubGrids = append(m.SubGrids, board.Completed[i])
		case i == board.PillarIndex:
			texts := topUp(board.SelectedTexts(), a.SubGrids[i].Actions, domain.ActionsPerPillar)
			m.SubGrids = append(m.SubGrids, domain.NewSubGrid(i, p, texts))
		default:
			m.SubGrids = append(m.SubGrids, domain.NewSubGrid(i, p, a.SubGrids[i].Actions))
		}
	}
	if m.Validate() != nil {
		return s, OutcomeRejected
	}
	s.Mandalart = &m
	s.ActionSelection = nil
	s.CurrentStep = domain.StepResult
	return s, OutcomeApplied
}

// topUp appends texts from extra that are not in base until base holds n.
func topUp(base, extra []string, n int) []string {
	out := append([]string{}, base...)
	for _, t := range extra {
		if len(out) >= n {
			break
		}
		if !containsString(out, t) {
			out = append(out, t)
		}
	}
	return out
}
