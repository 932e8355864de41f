package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/alexanderramin/mandalart/internal/cli/formatter"
	"github.com/alexanderramin/mandalart/internal/domain"
	"github.com/alexanderramin/mandalart/internal/intelligence"
	"github.com/alexanderramin/mandalart/internal/service"
	"github.com/alexanderramin/mandalart/internal/session"
)

// Menu values.
const (
	optEdit       = "edit"
	optRegenerate = "regenerate"
	optCustom     = "custom"
	optContinue   = "continue"
	optAuto       = "auto"
	optGoal       = "goal"
	optDiscover   = "discover"
	optOwnGoal    = "own"
)

// wizardRunner walks a session from its persisted step to RESULT. Each
// iteration re-reads the session so an interrupted run resumes where it
// stopped.
type wizardRunner struct {
	ctx    context.Context
	wizard service.WizardService
	key    string
	locale domain.Locale
	ask    prompter
	out    io.Writer
	// spin shows a spinner while waiting for suggestions.
	spin bool
}

// errStop ends the run without error.
var errStop = errors.New("stop")

func (r *wizardRunner) run() error {
	for {
		s, err := r.wizard.Snapshot(r.ctx, r.key)
		if err != nil {
			return err
		}
		err = r.step(s)
		switch {
		case err == nil:
			continue
		case errors.Is(err, errStop):
			return nil
		case errors.Is(err, huh.ErrUserAborted):
			fmt.Fprintln(r.out, formatter.Dim("Progress saved. Run 'mandalart start' to resume."))
			return nil
		}

		fmt.Fprintf(r.out, "%s %v\n", formatter.StyleRed.Render("✖"), err)
		if !retryable(err) {
			return err
		}
		again, askErr := r.ask.Confirm("Try again?")
		if askErr != nil || !again {
			fmt.Fprintln(r.out, formatter.Dim("Progress saved. Run 'mandalart start' to resume."))
			return nil
		}
	}
}

// retryable reports whether err can be cured by asking again, as opposed
// to a precondition the wizard cannot fix.
func retryable(err error) bool {
	return !errors.Is(err, service.ErrWrongStep) && !errors.Is(err, service.ErrMissingContext)
}

func (r *wizardRunner) step(s domain.Session) error {
	switch s.CurrentStep {
	case domain.StepQuickContext:
		return r.quickContext()
	case domain.StepGoalInput:
		return r.goalInput(s)
	case domain.StepDiscovery:
		return r.discovery(s)
	case domain.StepArchetypeResult:
		return r.archetypeResult(s)
	case domain.StepInterview:
		return r.interview()
	case domain.StepPillarSelection:
		return r.pillarSelection(s)
	case domain.StepActionSelection:
		return r.actionSelection(s)
	case domain.StepResult:
		return r.result(s)
	default:
		fmt.Fprintf(r.out, "The session is at %s. Use 'mandalart step' to move it.\n", s.CurrentStep)
		return errStop
	}
}

// await runs fn behind a spinner.
func await[T any](r *wizardRunner, message string, fn func() (T, error)) (T, error) {
	if r.spin {
		stop := formatter.StartSpinner(r.out, message)
		defer stop()
	}
	return fn()
}

func (r *wizardRunner) selectOption(title string, options []domain.Option) (string, error) {
	choices := make([]choice, len(options))
	for i, o := range options {
		choices[i] = choice{Label: o.Label(r.locale), Value: o.Value}
	}
	return r.ask.Select(title, choices)
}

func (r *wizardRunner) quickContext() error {
	fmt.Fprintln(r.out, formatter.Header("About you"))
	var qc domain.QuickContext
	var err error
	if qc.Nickname, err = r.ask.Input("What should the coach call you?", "nickname"); err != nil {
		return err
	}
	if qc.LifeArea, err = r.selectOption("Which area of life is this about?", domain.LifeAreaOptions); err != nil {
		return err
	}
	if qc.CurrentStatus, err = r.selectOption("What describes you right now?", domain.CurrentStatusOptions); err != nil {
		return err
	}
	if qc.GoalStyle, err = r.selectOption("What kind of year do you want?", domain.GoalStyleOptions); err != nil {
		return err
	}
	if qc.YearKeyword, err = r.selectOption("Pick a keyword for the year", domain.YearKeywordOptions); err != nil {
		return err
	}
	_, err = r.wizard.SubmitQuickContext(r.ctx, r.key, qc)
	return err
}

func (r *wizardRunner) goalInput(s domain.Session) error {
	mode, err := r.ask.Select("Do you already have a goal?", []choice{
		{Label: "Yes, I have a goal", Value: optGoal},
		{Label: "Help me find one", Value: optDiscover},
	})
	if err != nil {
		return err
	}
	if mode == optDiscover {
		_, err := r.wizard.StartDiscovery(r.ctx, r.key)
		return err
	}
	placeholder := s.Goal()
	if placeholder == "" {
		placeholder = "e.g. run a half marathon this year"
	}
	goal, err := r.ask.Input("What is your goal?", placeholder)
	if err != nil {
		return err
	}
	return r.submitGoal(goal)
}

func (r *wizardRunner) submitGoal(goal string) error {
	u, err := await(r, "Reading your goal...", func() (*service.GoalUpdate, error) {
		return r.wizard.SubmitGoal(r.ctx, r.key, goal)
	})
	if err != nil {
		return err
	}
	if d := u.Detection; d != nil {
		fmt.Fprintf(r.out, "%s %s %s\n", formatter.Dim("Archetype:"),
			formatter.StyleBlue.Render(string(d.Archetype)),
			formatter.Dim(fmt.Sprintf("(%.0f%%)", d.Confidence*100)))
	}
	return nil
}

func (r *wizardRunner) discovery(s domain.Session) error {
	if len(s.SuggestedGoals) > 0 {
		options := make([]choice, 0, len(s.SuggestedGoals)+1)
		for _, g := range s.SuggestedGoals {
			options = append(options, choice{Label: g, Value: g})
		}
		options = append(options, choice{Label: "I'll write my own", Value: optOwnGoal})
		goal, err := r.ask.Select("Which goal feels right?", options)
		if err != nil {
			return err
		}
		if goal == optOwnGoal {
			_, err := r.wizard.BackToGoalInput(r.ctx, r.key)
			return err
		}
		return r.submitGoal(goal)
	}

	q, err := r.wizard.DiscoveryQuestion(len(s.DiscoveryAnswers))
	if errors.Is(err, intelligence.ErrNoMoreQuestions) {
		u, err := await(r, "Finding goals that fit you...", func() (*service.GoalsUpdate, error) {
			return r.wizard.SuggestGoals(r.ctx, r.key)
		})
		if err == nil && u.Goals.Summary != "" {
			fmt.Fprintln(r.out, formatter.Dim(u.Goals.Summary))
		}
		return err
	}
	if err != nil {
		return err
	}
	answer, err := r.ask.Text(fmt.Sprintf("(%d/%d) %s", q.Index+1, q.TotalQuestions, q.Question))
	if err != nil {
		return err
	}
	_, err = r.wizard.AnswerDiscovery(r.ctx, r.key, domain.InterviewAnswer{Question: q.Question, Answer: answer})
	return err
}

func (r *wizardRunner) archetypeResult(s domain.Session) error {
	fmt.Fprintf(r.out, "%s %s\n", formatter.Dim("Goal:"), formatter.Bold(s.Goal()))
	ok, err := r.ask.Confirm(fmt.Sprintf("Your goal reads as %s. Start the interview?", s.Archetype()))
	if err != nil {
		return err
	}
	if !ok {
		_, err := r.wizard.BackToGoalInput(r.ctx, r.key)
		return err
	}
	return r.interview()
}

func (r *wizardRunner) interview() error {
	u, err := await(r, "Preparing questions...", func() (*service.InterviewUpdate, error) {
		return r.wizard.StartInterview(r.ctx, r.key)
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, formatter.Header("Interview"))
	answers := make([]domain.InterviewAnswer, 0, len(u.Questions.Questions))
	for i, q := range u.Questions.Questions {
		a, err := r.ask.Text(fmt.Sprintf("(%d/%d) %s", i+1, len(u.Questions.Questions), q))
		if err != nil {
			return err
		}
		answers = append(answers, domain.InterviewAnswer{Question: q, Answer: a})
	}
	_, err = await(r, "Summing you up and drafting pillars...", func() (*service.PillarUpdate, error) {
		return r.wizard.CompleteInterview(r.ctx, r.key, answers)
	})
	return err
}

func (r *wizardRunner) pillarSelection(s domain.Session) error {
	fmt.Fprintf(r.out, "%s %s\n", formatter.Dim("Pillars"), formatter.RenderCount(len(s.SelectedPillars), domain.PillarCount))

	options := []choice{
		{Label: "Choose pillars", Value: optEdit},
		{Label: "Suggest different pillars", Value: optRegenerate},
		{Label: "Add my own pillar", Value: optCustom},
	}
	if len(s.SelectedPillars) == domain.PillarCount {
		options = append([]choice{
			{Label: "Continue to actions", Value: optContinue},
			{Label: "Let the coach fill in every action", Value: optAuto},
		}, options...)
	}
	next, err := r.ask.Select("What next?", options)
	if err != nil {
		return err
	}

	switch next {
	case optEdit:
		return r.choosePillars(s)
	case optRegenerate:
		_, err := await(r, "Finding new pillars...", func() (*service.PillarUpdate, error) {
			return r.wizard.RegeneratePillars(r.ctx, r.key)
		})
		return err
	case optCustom:
		title, err := r.ask.Input("Pillar title", "")
		if err != nil {
			return err
		}
		_, err = r.wizard.AddCustomPillar(r.ctx, r.key, title, "")
		return err
	case optContinue:
		_, err := await(r, "Drafting actions...", func() (*service.ActionUpdate, error) {
			return r.wizard.StartActions(r.ctx, r.key)
		})
		return err
	case optAuto:
		return r.autoGenerate()
	}
	return nil
}

func (r *wizardRunner) choosePillars(s domain.Session) error {
	pool := pillarPool(s)
	options := make([]choice, len(pool))
	for i, p := range pool {
		label := p.Title
		if p.Description != "" {
			label += " · " + p.Description
		}
		options[i] = choice{Label: label, Value: p.ID, Selected: s.IsPillarSelected(p.ID)}
	}
	picked, err := r.ask.MultiSelect(fmt.Sprintf("Pick %d pillars", domain.PillarCount), options, domain.PillarCount)
	if err != nil {
		return err
	}
	current := make([]string, len(s.SelectedPillars))
	for i, p := range s.SelectedPillars {
		current[i] = p.ID
	}
	for _, id := range selectionDelta(current, picked) {
		if _, err := r.wizard.TogglePillar(r.ctx, r.key, id); err != nil {
			return err
		}
	}
	return nil
}

// pillarPool is the suggested pillars followed by selected ones that are
// not suggested, such as custom pillars.
func pillarPool(s domain.Session) []domain.Pillar {
	pool := append([]domain.Pillar{}, s.SuggestedPillars...)
	for _, p := range s.SelectedPillars {
		if _, ok := s.FindSuggestedPillar(p.ID); !ok {
			pool = append(pool, p.Unselected())
		}
	}
	return pool
}

// selectionDelta returns the ids to toggle to turn current into wanted:
// removals first so additions never hit the selection limit.
func selectionDelta(current, wanted []string) []string {
	want := make(map[string]bool, len(wanted))
	for _, id := range wanted {
		want[id] = true
	}
	have := make(map[string]bool, len(current))
	var toggles []string
	for _, id := range current {
		have[id] = true
		if !want[id] {
			toggles = append(toggles, id)
		}
	}
	for _, id := range wanted {
		if !have[id] {
			toggles = append(toggles, id)
			have[id] = true
		}
	}
	return toggles
}

func (r *wizardRunner) actionSelection(s domain.Session) error {
	board := s.ActionSelection
	if board == nil || board.PillarIndex >= len(s.SelectedPillars) {
		return r.recoverActionBoard(s)
	}
	pillar := s.SelectedPillars[board.PillarIndex]
	fmt.Fprintf(r.out, "%s %s %s\n",
		formatter.Dim(fmt.Sprintf("Pillar %d/%d", board.PillarIndex+1, domain.PillarCount)),
		formatter.PillarStyle(pillar.ColorIndex).Bold(true).Render(pillar.Title),
		formatter.RenderCount(len(board.Selected), domain.ActionsPerPillar))

	options := []choice{
		{Label: "Choose actions", Value: optEdit},
		{Label: "Suggest different actions", Value: optRegenerate},
		{Label: "Add my own action", Value: optCustom},
		{Label: "Let the coach fill in the rest", Value: optAuto},
	}
	if len(board.Selected) == domain.ActionsPerPillar {
		label := "Next pillar"
		if board.PillarIndex == len(s.SelectedPillars)-1 {
			label = "Finish the mandalart"
		}
		options = append([]choice{{Label: label, Value: optContinue}}, options...)
	}
	next, err := r.ask.Select("What next?", options)
	if err != nil {
		return err
	}

	switch next {
	case optEdit:
		return r.chooseActions(*board)
	case optRegenerate:
		_, err := await(r, "Finding new actions...", func() (*service.ActionUpdate, error) {
			return r.wizard.RegenerateActions(r.ctx, r.key)
		})
		return err
	case optCustom:
		text, err := r.ask.Input("Action", "")
		if err != nil {
			return err
		}
		_, err = r.wizard.AddCustomAction(r.ctx, r.key, text)
		return err
	case optContinue:
		_, err := await(r, "Drafting the next pillar...", func() (*service.ActionUpdate, error) {
			return r.wizard.CompletePillar(r.ctx, r.key)
		})
		return err
	case optAuto:
		return r.autoGenerate()
	}
	return nil
}

func (r *wizardRunner) chooseActions(board domain.ActionSelection) error {
	options := make([]choice, len(board.Suggested))
	for i, item := range board.Suggested {
		options[i] = choice{Label: item.Text, Value: item.ID, Selected: board.IsActionSelected(item.ID)}
	}
	picked, err := r.ask.MultiSelect(fmt.Sprintf("Pick %d actions", domain.ActionsPerPillar), options, domain.ActionsPerPillar)
	if err != nil {
		return err
	}
	current := make([]string, len(board.Selected))
	for i, item := range board.Selected {
		current[i] = item.ID
	}
	for _, id := range selectionDelta(current, picked) {
		if _, err := r.wizard.ToggleAction(r.ctx, r.key, id); err != nil {
			return err
		}
	}
	return nil
}

// recoverActionBoard handles ACTION_SELECTION without a usable board. The
// board is reopened when eight pillars are chosen, otherwise the wizard
// steps back to pillar selection or, if that move is refused, to the goal.
func (r *wizardRunner) recoverActionBoard(s domain.Session) error {
	if len(s.SelectedPillars) == domain.PillarCount && s.ActionSelection == nil {
		fmt.Fprintln(r.out, formatter.Dim("No action board is open. Starting it again."))
		_, err := await(r, "Drafting actions...", func() (*service.ActionUpdate, error) {
			return r.wizard.StartActions(r.ctx, r.key)
		})
		return err
	}

	fmt.Fprintln(r.out, formatter.Dim("No action board is open. Going back to pillar selection."))
	u, err := r.wizard.Dispatch(r.ctx, r.key, session.SetStep{Step: domain.StepPillarSelection})
	if err != nil {
		return err
	}
	if u.Outcome.Applied() {
		return nil
	}
	u, err = r.wizard.BackToGoalInput(r.ctx, r.key)
	if err != nil {
		return err
	}
	if !u.Outcome.Applied() {
		return fmt.Errorf("cannot leave %s: %s", s.CurrentStep, u.Outcome)
	}
	return nil
}

func (r *wizardRunner) autoGenerate() error {
	_, err := await(r, "Filling in the remaining actions...", func() (*service.Update, error) {
		return r.wizard.AutoGenerate(r.ctx, r.key)
	})
	return err
}

func (r *wizardRunner) result(s domain.Session) error {
	if s.Mandalart == nil {
		fmt.Fprintln(r.out, formatter.Dim("No mandalart yet. Use 'mandalart step' to go back."))
		return errStop
	}
	fmt.Fprintln(r.out, formatter.RenderGrid(*s.Mandalart, formatter.DefaultCellWidth))
	blessing, err := await(r, "One more thing...", func() (string, error) {
		return r.wizard.Bless(r.ctx, r.key)
	})
	if err == nil && strings.TrimSpace(blessing) != "" {
		fmt.Fprintln(r.out, formatter.StylePurple.Render(blessing))
	}
	fmt.Fprintln(r.out, formatter.Dim("Export it with 'mandalart export'."))
	return errStop
}
