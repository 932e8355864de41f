package llm

import (
	"context"
	"net/http"
)

// openAIClient talks to an OpenAI-compatible chat completions endpoint.
type openAIClient struct {
	cfg    LLMConfig
	http   *http.Client
	caller caller
}

// NewOpenAIClient creates an LLMClient for the OpenAI chat completions API.
// cfg.Endpoint is the API base, e.g. https://api.openai.com/v1.
func NewOpenAIClient(cfg LLMConfig, observer Observer) LLMClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint(ProviderOpenAI)
	}
	return &openAIClient{
		cfg:    cfg,
		http:   newHTTPClient(),
		caller: newCaller(ProviderOpenAI, cfg, observer),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *openAIClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	var messages []chatMessage
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.UserPrompt})

	return c.caller.call(ctx, req, func(ctx context.Context, p callParams) (string, string, error) {
		body := chatRequest{
			Model:          c.cfg.Model,
			Messages:       messages,
			Temperature:    p.temperature,
			MaxTokens:      p.maxTokens,
			ResponseFormat: responseFormat{Type: "json_object"},
		}
		var resp chatResponse
		if err := postJSON(ctx, c.http, ProviderOpenAI, c.cfg.Endpoint+"/chat/completions", c.header(), body, &resp); err != nil {
			return "", "", err
		}
		if len(resp.Choices) == 0 {
			return "", resp.Model, nil
		}
		return resp.Choices[0].Message.Content, resp.Model, nil
	})
}

func (c *openAIClient) Available(ctx context.Context) bool {
	return reachable(ctx, c.http, c.cfg.Endpoint+"/models", c.header())
}

func (c *openAIClient) header() http.Header {
	h := http.Header{}
	if c.cfg.APIKey != "" {
		h.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	return h
}
