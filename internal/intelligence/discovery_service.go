package intelligence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/mandalart/internal/domain"
	"github.com/alexanderramin/mandalart/internal/llm"
)

// SuggestedGoalCount is how many goals discovery proposes.
const SuggestedGoalCount = 3

// ErrNoMoreQuestions is returned past the last discovery question.
var ErrNoMoreQuestions = errors.New("no more questions")

// DiscoveryQuestion is one step of the discovery questionnaire.
type DiscoveryQuestion struct {
	Question       string `json:"question"`
	Index          int    `json:"questionIndex"`
	TotalQuestions int    `json:"totalQuestions"`
}

// DiscoveryGoals is the outcome of the discovery questionnaire.
type DiscoveryGoals struct {
	Goals   Result[string] `json:"goals"`
	Summary string         `json:"summary"`
}

// DiscoveryService helps users without a goal find one.
type DiscoveryService interface {
	Question(index int) (*DiscoveryQuestion, error)
	Goals(ctx context.Context, answers []domain.InterviewAnswer) (*DiscoveryGoals, error)
}

type discoveryService struct {
	client llm.LLMClient
	locale domain.Locale
}

// NewDiscoveryService creates a DiscoveryService backed by an LLM client.
func NewDiscoveryService(client llm.LLMClient, locale domain.Locale) DiscoveryService {
	return &discoveryService{client: client, locale: locale}
}

type goalsPayload struct {
	SuggestedGoals []string `json:"suggestedGoals"`
	Summary        string   `json:"summary"`
}

func (s *discoveryService) Question(index int) (*DiscoveryQuestion, error) {
	qs := DiscoveryQuestions(s.locale)
	if index < 0 || index >= len(qs) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrNoMoreQuestions, index, len(qs))
	}
	return &DiscoveryQuestion{Question: qs[index], Index: index, TotalQuestions: len(qs)}, nil
}

func (s *discoveryService) Goals(ctx context.Context, answers []domain.InterviewAnswer) (*DiscoveryGoals, error) {
	if len(answers) == 0 {
		return nil, fmt.Errorf("suggesting goals: answers are required")
	}
	payload, err := generate[goalsPayload](ctx, s.client, llm.TaskDiscovery, s.locale,
		discoveryGoalsPrompt(answers, SuggestedGoalCount), nil)
	if err != nil {
		return nil, fmt.Errorf("suggesting goals: %w", err)
	}
	goals := newResult(cleanTexts(payload.SuggestedGoals), SuggestedGoalCount)
	if err := goals.Err(); err != nil {
		return nil, fmt.Errorf("suggesting goals: %w", err)
	}
	return &DiscoveryGoals{Goals: goals, Summary: strings.TrimSpace(payload.Summary)}, nil
}
