package intelligence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/mandalart/internal/domain"
	"github.com/alexanderramin/mandalart/internal/llm"
)

// BlessingService writes the closing line shown under a finished grid.
type BlessingService interface {
	Bless(ctx context.Context, goal string, pillarTitles []string) (string, error)
}

type blessingService struct {
	client llm.LLMClient
	locale domain.Locale
}

// NewBlessingService creates a BlessingService backed by an LLM client.
func NewBlessingService(client llm.LLMClient, locale domain.Locale) BlessingService {
	return &blessingService{client: client, locale: locale}
}

type blessingPayload struct {
	Blessing string `json:"blessing"`
}

func (s *blessingService) Bless(ctx context.Context, goal string, pillarTitles []string) (string, error) {
	if strings.TrimSpace(goal) == "" || len(pillarTitles) == 0 {
		return "", fmt.Errorf("blessing: goal and pillars are required")
	}
	payload, err := generate(ctx, s.client, llm.TaskBlessing, s.locale, blessingPrompt(goal, pillarTitles),
		func(p blessingPayload) error {
			if strings.TrimSpace(p.Blessing) == "" {
				return errors.New("blessing is empty")
			}
			return nil
		})
	if err != nil {
		return "", fmt.Errorf("blessing: %w", err)
	}
	return strings.TrimSpace(payload.Blessing), nil
}
