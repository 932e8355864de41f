package intelligence

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/mandalart/internal/domain"
	"github.com/alexanderramin/mandalart/internal/llm"
)

// SuggestedActionCount is the size of the first action batch per pillar.
const SuggestedActionCount = 12

// ActionService proposes concrete actions for pillars.
type ActionService interface {
	Suggest(ctx context.Context, goal, vibe string, pillar domain.Pillar) (Result[string], error)
	Regenerate(ctx context.Context, goal, vibe string, pillar domain.Pillar, selected, rejected []string, count int) (Result[string], error)

	// GenerateAll fills all eight blocks in one call. Every block must come
	// back with eight distinct actions or the whole result is rejected.
	GenerateAll(ctx context.Context, goal, vibe string, pillars []domain.Pillar) (*domain.MandalartData, error)
}

type actionService struct {
	client llm.LLMClient
	locale domain.Locale
}

// NewActionService creates an ActionService backed by an LLM client.
func NewActionService(client llm.LLMClient, locale domain.Locale) ActionService {
	return &actionService{client: client, locale: locale}
}

type actionsPayload struct {
	Actions []string `json:"actions"`
}

type subGridsPayload struct {
	SubGrids []struct {
		ID      string   `json:"id"`
		Title   string   `json:"title"`
		Actions []string `json:"actions"`
	} `json:"subGrids"`
}

func (s *actionService) Suggest(ctx context.Context, goal, vibe string, pillar domain.Pillar) (Result[string], error) {
	payload, err := generate[actionsPayload](ctx, s.client, llm.TaskActions, s.locale,
		actionPrompt(goal, vibe, pillar, SuggestedActionCount), nil)
	if err != nil {
		return newResult[string](nil, SuggestedActionCount), fmt.Errorf("suggesting actions for %q: %w", pillar.Title, err)
	}
	res := newResult(cleanTexts(payload.Actions), SuggestedActionCount)
	if err := res.Err(); err != nil {
		return res, fmt.Errorf("suggesting actions for %q: %w", pillar.Title, err)
	}
	return res, nil
}

func (s *actionService) Regenerate(ctx context.Context, goal, vibe string, pillar domain.Pillar, selected, rejected []string, count int) (Result[string], error) {
	if count <= 0 {
		return newResult[string](nil, 0), nil
	}
	payload, err := generate[actionsPayload](ctx, s.client, llm.TaskActions, s.locale,
		actionRegenerationPrompt(goal, vibe, pillar, selected, rejected, count), nil)
	if err != nil {
		return newResult[string](nil, count), fmt.Errorf("regenerating actions for %q: %w", pillar.Title, err)
	}
	res := newResult(cleanTexts(payload.Actions, selected, rejected), count)
	if err := res.Err(); err != nil {
		return res, fmt.Errorf("regenerating actions for %q: %w", pillar.Title, err)
	}
	return res, nil
}

func (s *actionService) GenerateAll(ctx context.Context, goal, vibe string, pillars []domain.Pillar) (*domain.MandalartData, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" || len(pillars) != domain.PillarCount {
		return nil, fmt.Errorf("generating actions: goal and exactly %d pillars are required", domain.PillarCount)
	}
	payload, err := generate[subGridsPayload](ctx, s.client, llm.TaskBulkActions, s.locale,
		bulkActionPrompt(goal, vibe, pillars), nil)
	if err != nil {
		return nil, fmt.Errorf("generating actions: %w", err)
	}
	if len(payload.SubGrids) < domain.PillarCount {
		return nil, fmt.Errorf("generating actions: %w: got %d of %d blocks",
			ErrShortResult, len(payload.SubGrids), domain.PillarCount)
	}

	m := &domain.MandalartData{Core: goal, SubGrids: make([]domain.SubGrid, 0, domain.PillarCount)}
	for i, p := range pillars {
		res := newResult(cleanTexts(payload.SubGrids[i].Actions), domain.ActionsPerPillar)
		if err := res.Require(domain.ActionsPerPillar); err != nil {
			return nil, fmt.Errorf("generating actions for %q: %w", p.Title, err)
		}
		m.SubGrids = append(m.SubGrids, domain.NewSubGrid(i, p, res.Items))
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("generating actions: %w", err)
	}
	return m, nil
}
