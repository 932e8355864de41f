package intelligence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/mandalart/internal/domain"
	"github.com/alexanderramin/mandalart/internal/llm"
)

// QuestionSet is the interview for one goal.
type QuestionSet struct {
	Questions []string `json:"questions"`
	// Fallback is true when the static questions were used.
	Fallback bool `json:"fallback"`
}

// InterviewQuestion is one step of the static interview.
type InterviewQuestion struct {
	Question   string `json:"question"`
	Index      int    `json:"questionIndex"`
	IsComplete bool   `json:"isComplete"`
}

// InterviewService produces interview questions and the persona summary.
type InterviewService interface {
	// Questions tailors the interview to the goal, falling back to the
	// static questions when the LLM fails.
	Questions(ctx context.Context, archetype domain.Archetype, goal string, qc *domain.QuickContext) (*QuestionSet, error)

	// Question returns the static question at index.
	Question(archetype domain.Archetype, index int) (*InterviewQuestion, error)

	// Summary condenses the answers into a vibe summary.
	Summary(ctx context.Context, archetype domain.Archetype, goal string, answers []domain.InterviewAnswer) (string, error)
}

type interviewService struct {
	client llm.LLMClient
	locale domain.Locale
}

// NewInterviewService creates an InterviewService backed by an LLM client.
func NewInterviewService(client llm.LLMClient, locale domain.Locale) InterviewService {
	return &interviewService{client: client, locale: locale}
}

type questionsPayload struct {
	Questions []string `json:"questions"`
}

type summaryPayload struct {
	VibeSummary string `json:"vibeSummary"`
}

func (s *interviewService) Questions(ctx context.Context, archetype domain.Archetype, goal string, qc *domain.QuickContext) (*QuestionSet, error) {
	static, ok := StaticInterviewQuestions(s.locale, archetype)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownArchetype, archetype)
	}
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, fmt.Errorf("interview questions: goal is empty")
	}

	payload, err := generate[questionsPayload](ctx, s.client, llm.TaskInterview, s.locale,
		interviewQuestionsPrompt(archetype, goal, qc), nil)
	if err == nil {
		qs := cleanTexts(payload.Questions)
		if len(qs) >= InterviewQuestionCount {
			return &QuestionSet{Questions: qs[:InterviewQuestionCount]}, nil
		}
	}
	if errors.Is(err, context.Canceled) {
		return nil, err
	}
	return &QuestionSet{Questions: static, Fallback: true}, nil
}

func (s *interviewService) Question(archetype domain.Archetype, index int) (*InterviewQuestion, error) {
	qs, ok := StaticInterviewQuestions(s.locale, archetype)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownArchetype, archetype)
	}
	if index < 0 {
		return nil, fmt.Errorf("question index %d out of range", index)
	}
	if index >= len(qs) {
		return &InterviewQuestion{Index: index, IsComplete: true}, nil
	}
	return &InterviewQuestion{Question: qs[index], Index: index}, nil
}

func (s *interviewService) Summary(ctx context.Context, archetype domain.Archetype, goal string, answers []domain.InterviewAnswer) (string, error) {
	if strings.TrimSpace(goal) == "" || len(answers) == 0 {
		return "", fmt.Errorf("interview summary: goal and answers are required")
	}
	payload, err := generate(ctx, s.client, llm.TaskSummary, s.locale,
		interviewSummaryPrompt(archetype, goal, answers), func(p summaryPayload) error {
			if strings.TrimSpace(p.VibeSummary) == "" {
				return errors.New("vibeSummary is empty")
			}
			return nil
		})
	if err != nil {
		return "", fmt.Errorf("interview summary: %w", err)
	}
	return strings.TrimSpace(payload.VibeSummary), nil
}
