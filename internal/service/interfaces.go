package service

import (
	"context"

	"github.com/alexanderramin/mandalart/internal/domain"
	"github.com/alexanderramin/mandalart/internal/intelligence"
	"github.com/alexanderramin/mandalart/internal/repository"
	"github.com/alexanderramin/mandalart/internal/session"
)

// Update is the session after a use case and the outcome of the last store
// action it dispatched. A non-applied outcome means the use case stopped
// there and later actions were not attempted.
type Update struct {
	Session domain.Session  `json:"session"`
	Outcome session.Outcome `json:"outcome"`
}

// GoalUpdate adds the archetype detection behind a submitted goal.
type GoalUpdate struct {
	Update
	Detection *intelligence.ArchetypeDetection `json:"detection"`
}

// InterviewUpdate adds the interview questions.
type InterviewUpdate struct {
	Update
	Questions *intelligence.QuestionSet `json:"questions"`
}

// PillarUpdate adds the pillar suggestion result that was merged.
type PillarUpdate struct {
	Update
	Pillars intelligence.Result[domain.Pillar] `json:"pillars"`
}

// ActionUpdate adds the action suggestion result that was merged.
type ActionUpdate struct {
	Update
	Actions intelligence.Result[string] `json:"actions"`
}

// DiscoveryUpdate adds the discovery question to ask next. Question is nil
// once every question has been answered.
type DiscoveryUpdate struct {
	Update
	Question *intelligence.DiscoveryQuestion `json:"question"`
}

// GoalsUpdate adds the goals proposed by discovery.
type GoalsUpdate struct {
	Update
	Goals *intelligence.DiscoveryGoals `json:"goals"`
}

// WizardService drives a session through the wizard. Every use case that
// consults the suggestion services waits for them before writing, and
// writes nothing when they fail.
type WizardService interface {
	Snapshot(ctx context.Context, key string) (domain.Session, error)
	Dispatch(ctx context.Context, key string, a session.Action) (*Update, error)
	History(ctx context.Context, key string, limit int) ([]*repository.SessionEvent, error)
	Subscribe(ctx context.Context, key string, fn func(domain.Session)) (func(), error)
	// Watch subscribes fn and returns the state it was registered against.
	Watch(ctx context.Context, key string, fn func(session.Change)) (session.Change, func(), error)

	SubmitQuickContext(ctx context.Context, key string, qc domain.QuickContext) (*Update, error)
	SubmitGoal(ctx context.Context, key string, goal string) (*GoalUpdate, error)

	StartInterview(ctx context.Context, key string) (*InterviewUpdate, error)
	CompleteInterview(ctx context.Context, key string, answers []domain.InterviewAnswer) (*PillarUpdate, error)

	TogglePillar(ctx context.Context, key string, id string) (*Update, error)
	AddCustomPillar(ctx context.Context, key string, title, description string) (*Update, error)
	RegeneratePillars(ctx context.Context, key string) (*PillarUpdate, error)

	StartActions(ctx context.Context, key string) (*ActionUpdate, error)
	ToggleAction(ctx context.Context, key string, id string) (*Update, error)
	AddCustomAction(ctx context.Context, key string, text string) (*Update, error)
	RegenerateActions(ctx context.Context, key string) (*ActionUpdate, error)
	CompletePillar(ctx context.Context, key string) (*ActionUpdate, error)
	// AutoGenerate fills every block the user has not finished. Completed
	// blocks and the current selection are kept.
	AutoGenerate(ctx context.Context, key string) (*Update, error)

	StartDiscovery(ctx context.Context, key string) (*DiscoveryUpdate, error)
	DiscoveryQuestion(index int) (*intelligence.DiscoveryQuestion, error)
	AnswerDiscovery(ctx context.Context, key string, answer domain.InterviewAnswer) (*DiscoveryUpdate, error)
	SuggestGoals(ctx context.Context, key string) (*GoalsUpdate, error)

	BackToGoalInput(ctx context.Context, key string) (*Update, error)
	Bless(ctx context.Context, key string) (string, error)
	Reset(ctx context.Context, key string) (*Update, error)
}
