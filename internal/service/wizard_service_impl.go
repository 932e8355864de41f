package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/mandalart/internal/domain"
	"github.com/alexanderramin/mandalart/internal/intelligence"
	"github.com/alexanderramin/mandalart/internal/repository"
	"github.com/alexanderramin/mandalart/internal/session"
)

type wizardService struct {
	stores   *session.Registry
	suggest  intelligence.Services
	locale   domain.Locale
	observer UseCaseObserver
}

func NewWizardService(
	stores *session.Registry,
	suggest intelligence.Services,
	locale domain.Locale,
	observers ...UseCaseObserver,
) WizardService {
	return &wizardService{
		stores:   stores,
		suggest:  suggest,
		locale:   locale,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (w *wizardService) observe(ctx context.Context, name, key string, started time.Time, fields map[string]any, err *error) {
	w.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		Key:       key,
		Duration:  time.Since(started),
		Success:   *err == nil,
		Err:       *err,
		Fields:    fields,
		StartedAt: started,
	})
}

// view is a store together with the version of the snapshot a use case
// decided on.
type view struct {
	*session.Store
	version uint64
}

func (w *wizardService) store(ctx context.Context, key string) (*view, domain.Session, error) {
	st, err := w.stores.Get(ctx, key)
	if err != nil {
		return nil, domain.Session{}, err
	}
	s, version := st.Current()
	return &view{Store: st, version: version}, s, nil
}

// apply commits actions as one mutation, provided the session is still
// the one the caller read. Several actions are wrapped in a
// session.Sequence so subscribers only see the finished result. A session
// changed in the meantime, by a reset from another view for example, yields
// ErrSessionChanged and nothing is written.
func apply(ctx context.Context, st *view, actions ...session.Action) (Update, error) {
	next, outcome, err := st.DispatchIf(ctx, st.version, combine(actions))
	if err != nil {
		return Update{Session: next}, err
	}
	if outcome == session.OutcomeStale {
		return Update{Session: next, Outcome: outcome}, ErrSessionChanged
	}
	return Update{Session: next, Outcome: outcome}, nil
}

// applyNow commits actions whatever happened to the session since it was
// read. It serves requests that do not depend on the prior state.
func applyNow(ctx context.Context, st *view, actions ...session.Action) (Update, error) {
	next, outcome, err := st.Dispatch(ctx, combine(actions))
	return Update{Session: next, Outcome: outcome}, err
}

func combine(actions []session.Action) session.Action {
	if len(actions) == 1 {
		return actions[0]
	}
	return session.Sequence{Actions: actions}
}

func requireStep(s domain.Session, steps ...domain.Step) error {
	for _, step := range steps {
		if s.CurrentStep == step {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrWrongStep, s.CurrentStep)
}

func requireGoal(s domain.Session) error {
	if s.Goal() == "" {
		return fmt.Errorf("%w: goal", ErrMissingContext)
	}
	return nil
}

func requireArchetype(s domain.Session) error {
	if err := requireGoal(s); err != nil {
		return err
	}
	if s.Archetype() == "" {
		return fmt.Errorf("%w: archetype", ErrMissingContext)
	}
	return nil
}

func requirePillars(s domain.Session) error {
	if len(s.SelectedPillars) != domain.PillarCount {
		return fmt.Errorf("%w: %d of %d pillars selected", ErrMissingContext, len(s.SelectedPillars), domain.PillarCount)
	}
	return nil
}

func requireBoard(s domain.Session) (*domain.ActionSelection, error) {
	if err := requireStep(s, domain.StepActionSelection); err != nil {
		return nil, err
	}
	if s.ActionSelection == nil || s.ActionSelection.PillarIndex >= len(s.SelectedPillars) {
		return nil, fmt.Errorf("%w: action board", ErrMissingContext)
	}
	return s.ActionSelection, nil
}

func (w *wizardService) Snapshot(ctx context.Context, key string) (domain.Session, error) {
	_, s, err := w.store(ctx, key)
	return s, err
}

func (w *wizardService) Dispatch(ctx context.Context, key string, a session.Action) (_ *Update, err error) {
	fields := map[string]any{"action": a.Name()}
	defer w.observe(ctx, "dispatch", key, time.Now(), fields, &err)

	st, _, err := w.store(ctx, key)
	if err != nil {
		return nil, err
	}
	u, err := applyNow(ctx, st, a)
	if err != nil {
		return nil, err
	}
	fields["outcome"] = string(u.Outcome)
	return &u, nil
}

func (w *wizardService) History(ctx context.Context, key string, limit int) ([]*repository.SessionEvent, error) {
	st, err := w.stores.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return st.History(ctx, limit)
}

func (w *wizardService) Subscribe(ctx context.Context, key string, fn func(domain.Session)) (func(), error) {
	st, err := w.stores.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return st.Subscribe(fn), nil
}

func (w *wizardService) Watch(ctx context.Context, key string, fn func(session.Change)) (session.Change, func(), error) {
	st, err := w.stores.Get(ctx, key)
	if err != nil {
		return session.Change{}, nil, err
	}
	current, cancel := st.Watch(fn)
	return current, cancel, nil
}

func (w *wizardService) SubmitQuickContext(ctx context.Context, key string, qc domain.QuickContext) (_ *Update, err error) {
	defer w.observe(ctx, "submit_quick_context", key, time.Now(), nil, &err)

	st, s, err := w.store(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := requireStep(s, domain.StepQuickContext); err != nil {
		return nil, err
	}
	qc = qc.Canonicalize()
	if !qc.Valid() {
		return nil, fmt.Errorf("%w: quick context is incomplete", ErrInvalidInput)
	}
	u, err := apply(ctx, st, session.SetQuickContext{Context: qc})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (w *wizardService) SubmitGoal(ctx context.Context, key string, goal string) (_ *GoalUpdate, err error) {
	fields := map[string]any{}
	defer w.observe(ctx, "submit_goal", key, time.Now(), fields, &err)

	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, fmt.Errorf("%w: goal is empty", ErrInvalidInput)
	}
	st, s, err := w.store(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := requireStep(s, domain.StepGoalInput, domain.StepDiscovery); err != nil {
		return nil, err
	}

	det, err := w.suggest.Archetype.Detect(ctx, goal, s.QuickContext)
	if err != nil {
		return nil, err
	}
	fields["archetype"] = string(det.Archetype)

	var actions []session.Action
	if s.IsDiscoveryMode {
		actions = append(actions, session.BackToGoalInput{})
	}
	actions = append(actions,
		session.SetGoal{Goal: goal},
		session.SetArchetype{Archetype: det.Archetype},
		session.SetStep{Step: domain.StepArchetypeResult},
	)
	u, err := apply(ctx, st, actions...)
	if err != nil {
		return nil, err
	}
	return &GoalUpdate{Update: u, Detection: det}, nil
}

func (w *wizardService) StartInterview(ctx context.Context, key string) (_ *InterviewUpdate, err error) {
	fields := map[string]any{}
	defer w.observe(ctx, "start_interview", key, time.Now(), fields, &err)

	st, s, err := w.store(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := requireStep(s, domain.StepArchetypeResult, domain.StepInterview); err != nil {
		return nil, err
	}
	if err := requireArchetype(s); err != nil {
		return nil, err
	}

	qs, err := w.suggest.Interview.Questions(ctx, s.Archetype(), s.Goal(), s.QuickContext)
	if err != nil {
		return nil, err
	}
	fields["fallback"] = qs.Fallback

	u := Update{Session: s}
	if s.CurrentStep == domain.StepArchetypeResult {
		if u, err = apply(ctx, st, session.SetStep{Step: domain.StepInterview}); err != nil {
			return nil, err
		}
	}
	return &InterviewUpdate{Update: u, Questions: qs}, nil
}

func (w *wizardService) CompleteInterview(ctx context.Context, key string, answers []domain.InterviewAnswer) (_ *PillarUpdate, err error) {
	fields := map[string]any{"answers": len(answers)}
	defer w.observe(ctx, "complete_interview", key, time.Now(), fields, &err)

	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: no answers", ErrInvalidInput)
	}
	for i, a := range answers {
		if strings.TrimSpace(a.Answer) == "" {
			return nil, fmt.Errorf("%w: answer %d is empty", ErrInvalidInput, i+1)
		}
	}
	st, s, err := w.store(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := requireStep(s, domain.StepInterview); err != nil {
		return nil, err
	}
	if err := requireArchetype(s); err != nil {
		return nil, err
	}

	all := append(append([]domain.InterviewAnswer{}, s.UserContext.Persona.IdentityAnswers...), answers...)
	vibe, err := w.suggest.Interview.Summary(ctx, s.Archetype(), s.Goal(), all)
	if err != nil {
		return nil, err
	}
	pillars, err := w.suggest.Pillars.Suggest(ctx, s.Archetype(), s.Goal(), vibe)
	if err != nil {
		return nil, err
	}
	fields["pillars"] = len(pillars.Items)

	actions := make([]session.Action, 0, len(answers)+3)
	for _, a := range answers {
		actions = append(actions, session.AddInterviewAnswer{Answer: a})
	}
	actions = append(actions,
		session.SetVibeSummary{Summary: vibe},
		session.SetSuggestedPillars{Pillars: pillars.Items},
		session.SetStep{Step: domain.StepPillarSelection},
	)
	u, err := apply(ctx, st, actions...)
	if err != nil {
		return nil, err
	}
	return &PillarUpdate{Update: u, Pillars: pillars}, nil
}

func (w *wizardService) TogglePillar(ctx context.Context, key string, id string) (_ *Update, err error) {
	fields := map[string]any{"pillar": id}
	defer w.observe(ctx, "toggle_pillar", key, time.Now(), fields, &err)

	st, s, err := w.store(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := requireStep(s, domain.StepPillarSelection); err != nil {
		return nil, err
	}
	u, err := apply(ctx, st, session.TogglePillarSelection{ID: id})
	if err != nil {
		return nil, err
	}
	fields["outcome"] = string(u.Outcome)
	return &u, nil
}

func (w *wizardService) AddCustomPillar(ctx context.Context, key string, title, description string) (_ *Update, err error) {
	defer w.observe(ctx, "add_custom_pillar", key, time.Now(), nil, &err)

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: pillar title is empty", ErrInvalidInput)
	}
	description = strings.TrimSpace(description)
	if description == "" {
		description = w.customPillarDescription(title)
	}
	st, s, err := w.store(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := requireStep(s, domain.StepPillarSelection); err != nil {
		return nil, err
	}
	id := "custom_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	u, err := apply(ctx, st, session.TogglePillarSelection{
		ID:     id,
		Pillar: &domain.Pillar{ID: id, Title: title, Description: description},
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (w *wizardService) customPillarDescription(title string) string {
	if w.locale == domain.LocaleEnglish {
		return "Practices around " + title
	}
	return title + " 관련 실천 영역"
}

func (w *wizardService) RegeneratePillars(ctx context.Context, key string) (_ *PillarUpdate, err error) {
	fields := map[string]any{}
	defer w.observe(ctx, "regenerate_pillars", key, time.Now(), fields, &err)

	st, s, err := w.store(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := requireStep(s, domain.StepPillarSelection); err != nil {
		return nil, err
	}
	if err := requireArchetype(s); err != nil {
		return nil, err
	}

	var kept, rejected []domain.Pillar
	for _, p := range s.SuggestedPillars {
		if s.IsPillarSelected(p.ID) {
			kept = append(kept, p)
		} else {
			rejected = append(rejected, p)
		}
	}
	if len(rejected) == 0 {
		return nil, ErrNothingToRegenerate
	}
	fields["count"] = len(rejected)

	res, err := w.suggest.Pillars.Regenerate(ctx, s.Archetype(), s.Goal(), s.VibeSummary(), s.SelectedPillars, rejected, len(rejected))
	if err != nil {
		return nil, err
	}
	fields["status"] = string(res.Status)

	u, err := apply(ctx, st, session.SetSuggestedPillars{Pillars: append(kept, res.Items...)})
	if err != nil {
		return nil, err
	}
	return &PillarUpdate{Update: u, Pillars: res}, nil
}

func (w *wizardService) StartActions(ctx context.Context, key string) (_ *ActionUpdate, err error) {
	fields := map[string]any{}
	defer w.observe(ctx, "start_actions", key, time.Now(), fields, &err)

	st, s, err := w.store(ctx, key)
	if err != nil {
		return nil, err
	}
	// ACTION_SELECTION is accepted only to reopen a board that was lost.
	if err := requireStep(s, domain.StepPillarSelection, domain.StepActionSelection); err != nil {
		return nil, err
	}
	if s.CurrentStep == domain.StepActionSelection && s.ActionSelection != nil {
		return nil, fmt.Errorf("%w: action board is already open", ErrWrongStep)
	}
	if err := requireGoal(s); err != nil {
		return nil, err
	}
	if err := requirePillars(s); err != nil {
		return nil, err
	}

	res, err := w.suggest.Actions.Suggest(ctx, s.Goal(), s.VibeSummary(), s.SelectedPillars[0])
	if err != nil {
		return nil, err
	}
	fields["status"] = string(res.Status)

	u, err := apply(ctx, st,
		session.StartActionSelection{},
		session.SetActionSuggestions{Texts: res.Items},
	)
	if err != nil {
		return nil, err
	}
	return &ActionUpdate{Update: u, Actions: res}, nil
}

func (w *wizardService) ToggleAction(ctx context.Context, key string, id string) (_ *Update, err error) {
	fields := map[string]any{"action": id}
	defer w.observe(ctx, "toggle_action", key, time.Now(), fields, &err)

	st, s, err := w.store(ctx, key)
	if err != nil {
		return nil, err
	}
	if _, err := requireBoard(s); err != nil {
		return nil, err
	}
	u, err := apply(ctx, st, session.ToggleAction{ID: id})
	if err != nil {
		return nil, err
	}
	fields["outcome"] = string(u.Outcome)
	return &u, nil
}

func (w *wizardService) AddCustomAction(ctx context.Context, key string, text string) (_ *Update, err error) {
	defer w.observe(ctx, "add_custom_action", key, time.Now(), nil, &err)

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: action text is empty", ErrInvalidInput)
	}
	st, s, err := w.store(ctx, key)
	if err != nil {
		return nil, err
	}
	if _, err := requireBoard(s); err != nil {
		return nil, err
	}
	u, err := apply(ctx, st, session.AddCustomAction{Text: text})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (w *wizardService) RegenerateActions(ctx context.Context, key string) (_ *ActionUpdate, err error) {
	fields := map[string]any{}
	defer w.observe(ctx, "regenerate_actions", key, time.Now(), fields, &err)

	st, s, err := w.store(ctx, key)
	if err != nil {
		return nil, err
	}
	board, err := requireBoard(s)
	if err != nil {
		return nil, err
	}
	unselected := board.UnselectedTexts()
	if len(unselected) == 0 {
		return nil, ErrNothingToRegenerate
	}
	rejected := append(append([]string{}, board.Rejected...), unselected...)
	pillar := s.SelectedPillars[board.PillarIndex]
	fields["pillar"] = pillar.Title
	fields["count"] = len(unselected)

	res, err := w.suggest.Actions.Regenerate(ctx, s.Goal(), s.VibeSummary(), pillar, board.SelectedTexts(), rejected, len(unselected))
	if err != nil {
		return nil, err
	}
	fields["status"] = string(res.Status)

	u, err := apply(ctx, st, session.MergeRegeneratedActions{Texts: res.Items})
	if err != nil {
		return nil, err
	}
	return &ActionUpdate{Update: u, Actions: res}, nil
}

func (w *wizardService) CompletePillar(ctx context.Context, key string) (_ *ActionUpdate, err error) {
	fields := map[string]any{}
	defer w.observe(ctx, "complete_pillar", key, time.Now(), fields, &err)

	st, s, err := w.store(ctx, key)
	if err != nil {
		return nil, err
	}
	board, err := requireBoard(s)
	if err != nil {
		return nil, err
	}
	if len(board.Selected) != domain.ActionsPerPillar {
		return nil, fmt.Errorf("%w: %d of %d actions selected", ErrMissingContext, len(board.Selected), domain.ActionsPerPillar)
	}
	fields["pillar_index"] = board.PillarIndex

	next := board.PillarIndex + 1
	if next >= len(s.SelectedPillars) {
		u, err := apply(ctx, st, session.CompletePillarActions{})
		if err != nil {
			return nil, err
		}
		return &ActionUpdate{Update: u}, nil
	}

	res, err := w.suggest.Actions.Suggest(ctx, s.Goal(), s.VibeSummary(), s.SelectedPillars[next])
	if err != nil {
		return nil, err
	}
	u, err := apply(ctx, st,
		session.CompletePillarActions{},
		session.SetActionSuggestions{Texts: res.Items},
	)
	if err != nil {
		return nil, err
	}
	return &ActionUpdate{Update: u, Actions: res}, nil
}

func (w *wizardService) AutoGenerate(ctx context.Context, key string) (_ *Update, err error) {
	defer w.observe(ctx, "auto_generate", key, time.Now(), nil, &err)

	st, s, err := w.store(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := requireStep(s, domain.StepPillarSelection, domain.StepActionSelection); err != nil {
		return nil, err
	}
	if err := requireGoal(s); err != nil {
		return nil, err
	}
	if err := requirePillars(s); err != nil {
		return nil, err
	}

	m, err := w.suggest.Actions.GenerateAll(ctx, s.Goal(), s.VibeSummary(), s.SelectedPillars)
	if err != nil {
		return nil, err
	}

	var actions []session.Action
	if s.CurrentStep == domain.StepPillarSelection {
		actions = append(actions, session.StartActionSelection{})
	}
	actions = append(actions, session.FillActionBoard{SubGrids: m.SubGrids})
	u, err := apply(ctx, st, actions...)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (w *wizardService) StartDiscovery(ctx context.Context, key string) (_ *DiscoveryUpdate, err error) {
	defer w.observe(ctx, "start_discovery", key, time.Now(), nil, &err)

	st, s, err := w.store(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := requireStep(s, domain.StepGoalInput, domain.StepDiscovery); err != nil {
		return nil, err
	}
	u := Update{Session: s}
	if s.CurrentStep != domain.StepDiscovery {
		if u, err = apply(ctx, st, session.EnterDiscoveryMode{}); err != nil {
			return nil, err
		}
	}
	q, err := w.nextDiscoveryQuestion(u.Session)
	if err != nil {
		return nil, err
	}
	return &DiscoveryUpdate{Update: u, Question: q}, nil
}

func (w *wizardService) DiscoveryQuestion(index int) (*intelligence.DiscoveryQuestion, error) {
	return w.suggest.Discovery.Question(index)
}

func (w *wizardService) nextDiscoveryQuestion(s domain.Session) (*intelligence.DiscoveryQuestion, error) {
	q, err := w.suggest.Discovery.Question(len(s.DiscoveryAnswers))
	if errors.Is(err, intelligence.ErrNoMoreQuestions) {
		return nil, nil
	}
	return q, err
}

func (w *wizardService) AnswerDiscovery(ctx context.Context, key string, answer domain.InterviewAnswer) (_ *DiscoveryUpdate, err error) {
	defer w.observe(ctx, "answer_discovery", key, time.Now(), nil, &err)

	if strings.TrimSpace(answer.Answer) == "" {
		return nil, fmt.Errorf("%w: answer is empty", ErrInvalidInput)
	}
	st, s, err := w.store(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := requireStep(s, domain.StepDiscovery); err != nil {
		return nil, err
	}
	if answer.Question == "" {
		if q, err := w.nextDiscoveryQuestion(s); err == nil && q != nil {
			answer.Question = q.Question
		}
	}
	u, err := apply(ctx, st, session.AddDiscoveryAnswer{Answer: answer})
	if err != nil {
		return nil, err
	}
	q, err := w.nextDiscoveryQuestion(u.Session)
	if err != nil {
		return nil, err
	}
	return &DiscoveryUpdate{Update: u, Question: q}, nil
}

func (w *wizardService) SuggestGoals(ctx context.Context, key string) (_ *GoalsUpdate, err error) {
	fields := map[string]any{}
	defer w.observe(ctx, "suggest_goals", key, time.Now(), fields, &err)

	st, s, err := w.store(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := requireStep(s, domain.StepDiscovery); err != nil {
		return nil, err
	}
	if len(s.DiscoveryAnswers) == 0 {
		return nil, fmt.Errorf("%w: discovery answers", ErrMissingContext)
	}

	goals, err := w.suggest.Discovery.Goals(ctx, s.DiscoveryAnswers)
	if err != nil {
		return nil, err
	}
	fields["status"] = string(goals.Goals.Status)

	u, err := apply(ctx, st, session.SetSuggestedGoals{Goals: goals.Goals.Items})
	if err != nil {
		return nil, err
	}
	return &GoalsUpdate{Update: u, Goals: goals}, nil
}

func (w *wizardService) BackToGoalInput(ctx context.Context, key string) (_ *Update, err error) {
	defer w.observe(ctx, "back_to_goal_input", key, time.Now(), nil, &err)

	st, _, err := w.store(ctx, key)
	if err != nil {
		return nil, err
	}
	u, err := applyNow(ctx, st, session.BackToGoalInput{})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (w *wizardService) Bless(ctx context.Context, key string) (_ string, err error) {
	defer w.observe(ctx, "bless", key, time.Now(), nil, &err)

	_, s, err := w.store(ctx, key)
	if err != nil {
		return "", err
	}
	if s.Mandalart == nil {
		return "", fmt.Errorf("%w: mandalart", ErrMissingContext)
	}
	titles := make([]string, len(s.Mandalart.SubGrids))
	for i, g := range s.Mandalart.SubGrids {
		titles[i] = g.Title
	}
	return w.suggest.Blessing.Bless(ctx, s.Mandalart.Core, titles)
}

func (w *wizardService) Reset(ctx context.Context, key string) (_ *Update, err error) {
	defer w.observe(ctx, "reset", key, time.Now(), nil, &err)

	st, _, err := w.store(ctx, key)
	if err != nil {
		return nil, err
	}
	u, err := applyNow(ctx, st, session.ResetSession{})
	if err != nil {
		return nil, err
	}
	return &u, nil
}
