package llm

import (
	"context"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

// geminiClient wraps the official genai client for the Gemini API.
type geminiClient struct {
	cfg    LLMConfig
	cli    *genai.Client
	caller caller
}

// NewGeminiClient creates an LLMClient backed by the Gemini API.
func NewGeminiClient(ctx context.Context, cfg LLMConfig, observer Observer) (LLMClient, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel(ProviderGemini)
	}
	cc := &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	if cfg.Endpoint != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Endpoint}
	}
	cli, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &geminiClient{
		cfg:    cfg,
		cli:    cli,
		caller: newCaller(ProviderGemini, cfg, observer),
	}, nil
}

func (g *geminiClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	return g.caller.call(ctx, req, func(ctx context.Context, p callParams) (string, string, error) {
		temp := float32(p.temperature)
		gc := &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			Temperature:      &temp,
			MaxOutputTokens:  int32(p.maxTokens),
		}
		if req.SystemPrompt != "" {
			gc.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
		}

		resp, err := g.cli.Models.GenerateContent(ctx, g.cfg.Model,
			[]*genai.Content{genai.NewContentFromText(req.UserPrompt, genai.RoleUser)},
			gc,
		)
		if err != nil {
			return "", "", err
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return "", g.cfg.Model, nil
		}
		var b strings.Builder
		for _, part := range resp.Candidates[0].Content.Parts {
			if part != nil {
				b.WriteString(part.Text)
			}
		}
		return b.String(), g.cfg.Model, nil
	})
}

// Available reports whether the client holds credentials. The Gemini API
// has no unauthenticated health endpoint.
func (g *geminiClient) Available(context.Context) bool {
	return g.cfg.APIKey != ""
}
