package intelligence

import (
	"context"
	"strings"

	"github.com/alexanderramin/mandalart/internal/domain"
	"github.com/alexanderramin/mandalart/internal/llm"
)

// generate runs one structured call and decodes the reply into T.
func generate[T any](ctx context.Context, client llm.LLMClient, task llm.TaskType, locale domain.Locale, prompt string, validator llm.SchemaValidator[T]) (T, error) {
	var zero T
	resp, err := client.Generate(ctx, llm.GenerateRequest{
		Task:         task,
		SystemPrompt: systemPrompt(locale),
		UserPrompt:   prompt,
	})
	if err != nil {
		return zero, err
	}
	return llm.ExtractJSON(resp.Text, validator)
}

// cleanTexts trims items and drops blanks, duplicates and anything in
// exclude. Comparison ignores case and surrounding space.
func cleanTexts(items []string, exclude ...[]string) []string {
	seen := map[string]bool{}
	for _, list := range exclude {
		for _, s := range list {
			seen[textKey(s)] = true
		}
	}
	out := make([]string, 0, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		k := textKey(s)
		if s == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}

func textKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
