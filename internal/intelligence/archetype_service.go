package intelligence

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/mandalart/internal/domain"
	"github.com/alexanderramin/mandalart/internal/llm"
)

// ArchetypeDetection is the classification of a goal.
type ArchetypeDetection struct {
	Archetype  domain.Archetype `json:"archetype"`
	Confidence float64          `json:"confidence"`
	Reasoning  string           `json:"reasoning"`
}

// ArchetypeService classifies goals into one of the four archetypes.
type ArchetypeService interface {
	Detect(ctx context.Context, goal string, qc *domain.QuickContext) (*ArchetypeDetection, error)
}

type archetypeService struct {
	client llm.LLMClient
	locale domain.Locale
}

// NewArchetypeService creates an ArchetypeService backed by an LLM client.
func NewArchetypeService(client llm.LLMClient, locale domain.Locale) ArchetypeService {
	return &archetypeService{client: client, locale: locale}
}

func (s *archetypeService) Detect(ctx context.Context, goal string, qc *domain.QuickContext) (*ArchetypeDetection, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, fmt.Errorf("detecting archetype: goal is empty")
	}
	det, err := generate(ctx, s.client, llm.TaskArchetype, s.locale, archetypePrompt(goal, qc), validateDetection)
	if err != nil {
		return nil, fmt.Errorf("detecting archetype: %w", err)
	}
	det.Archetype = normalizeArchetype(det.Archetype)
	det.Reasoning = strings.TrimSpace(det.Reasoning)
	return &det, nil
}

func validateDetection(d ArchetypeDetection) error {
	if !domain.ValidArchetypes[normalizeArchetype(d.Archetype)] {
		return fmt.Errorf("%w: %q", ErrUnknownArchetype, d.Archetype)
	}
	if d.Confidence < 0 || d.Confidence > 1 {
		return fmt.Errorf("confidence must be in [0,1], got %g", d.Confidence)
	}
	return nil
}

func normalizeArchetype(a domain.Archetype) domain.Archetype {
	return domain.Archetype(strings.ToUpper(strings.TrimSpace(string(a))))
}
