package intelligence

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/alexanderramin/mandalart/internal/domain"
	"github.com/alexanderramin/mandalart/internal/llm"
)

// SuggestedPillarCount is the size of the first pillar pool.
const SuggestedPillarCount = 12

// PillarService proposes strategy pillars for a goal.
type PillarService interface {
	// Suggest proposes the initial pool. Ids are pillar_1..pillar_N.
	Suggest(ctx context.Context, archetype domain.Archetype, goal, vibe string) (Result[domain.Pillar], error)

	// Regenerate proposes count pillars that repeat nothing in selected or
	// rejected. Ids are fresh and never collide with either list.
	Regenerate(ctx context.Context, archetype domain.Archetype, goal, vibe string, selected, rejected []domain.Pillar, count int) (Result[domain.Pillar], error)
}

type pillarService struct {
	client llm.LLMClient
	locale domain.Locale
	newID  func() string
}

// NewPillarService creates a PillarService backed by an LLM client.
func NewPillarService(client llm.LLMClient, locale domain.Locale) PillarService {
	return &pillarService{client: client, locale: locale, newID: func() string {
		return "pillar_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}}
}

type pillarsPayload struct {
	Pillars []domain.Pillar `json:"pillars"`
}

func (s *pillarService) Suggest(ctx context.Context, archetype domain.Archetype, goal, vibe string) (Result[domain.Pillar], error) {
	payload, err := generate[pillarsPayload](ctx, s.client, llm.TaskPillars, s.locale,
		pillarPrompt(archetype, goal, vibe, SuggestedPillarCount), nil)
	if err != nil {
		return newResult[domain.Pillar](nil, SuggestedPillarCount), fmt.Errorf("suggesting pillars: %w", err)
	}
	pillars := cleanPillars(payload.Pillars, nil)
	for i := range pillars {
		pillars[i].ID = fmt.Sprintf("pillar_%d", i+1)
	}
	res := newResult(pillars, SuggestedPillarCount)
	if err := res.Err(); err != nil {
		return res, fmt.Errorf("suggesting pillars: %w", err)
	}
	return res, nil
}

func (s *pillarService) Regenerate(ctx context.Context, archetype domain.Archetype, goal, vibe string, selected, rejected []domain.Pillar, count int) (Result[domain.Pillar], error) {
	if count <= 0 {
		return newResult[domain.Pillar](nil, 0), nil
	}
	payload, err := generate[pillarsPayload](ctx, s.client, llm.TaskPillars, s.locale,
		pillarRegenerationPrompt(archetype, goal, vibe, selected, rejected, count), nil)
	if err != nil {
		return newResult[domain.Pillar](nil, count), fmt.Errorf("regenerating pillars: %w", err)
	}

	known := append(append([]domain.Pillar{}, selected...), rejected...)
	pillars := cleanPillars(payload.Pillars, known)
	taken := map[string]bool{}
	for _, p := range known {
		taken[p.ID] = true
	}
	for i := range pillars {
		id := s.newID()
		for taken[id] {
			id = s.newID()
		}
		taken[id] = true
		pillars[i].ID = id
	}
	res := newResult(pillars, count)
	if err := res.Err(); err != nil {
		return res, fmt.Errorf("regenerating pillars: %w", err)
	}
	return res, nil
}

// cleanPillars trims fields and drops untitled pillars and titles already
// present in known or earlier in the list. Colour indexes are cleared.
func cleanPillars(in, known []domain.Pillar) []domain.Pillar {
	seen := map[string]bool{}
	for _, p := range known {
		seen[textKey(p.Title)] = true
	}
	out := make([]domain.Pillar, 0, len(in))
	for _, p := range in {
		p.Title = strings.TrimSpace(p.Title)
		p.Description = strings.TrimSpace(p.Description)
		k := textKey(p.Title)
		if p.Title == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p.Unselected())
	}
	return out
}
