package llm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskArchetype   TaskType = "archetype"
	TaskInterview   TaskType = "interview"
	TaskSummary     TaskType = "summary"
	TaskDiscovery   TaskType = "discovery"
	TaskPillars     TaskType = "pillars"
	TaskActions     TaskType = "actions"
	TaskBulkActions TaskType = "bulk_actions"
	TaskBlessing    TaskType = "blessing"
)

// Tasks lists every task type in a stable order.
var Tasks = []TaskType{
	TaskArchetype, TaskInterview, TaskSummary, TaskDiscovery,
	TaskPillars, TaskActions, TaskBulkActions, TaskBlessing,
}

// Provider names an LLM backend.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderOllama Provider = "ollama"
	ProviderGemini Provider = "gemini"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem.
type LLMConfig struct {
	Enabled    bool
	LogCalls   bool
	Provider   Provider
	Endpoint   string
	Model      string
	APIKey     string
	TimeoutMs  int
	MaxRetries int
	BackoffMs  int
	CacheSize  int
	Tasks      map[TaskType]TaskConfig
}

// DefaultConfig returns an LLMConfig with sensible defaults.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Enabled:    true,
		LogCalls:   false,
		Provider:   ProviderOpenAI,
		Model:      "gpt-4o",
		TimeoutMs:  60000,
		MaxRetries: 2,
		BackoffMs:  1000,
		CacheSize:  128,
		Tasks: map[TaskType]TaskConfig{
			TaskArchetype:   {Temperature: 0.3, MaxTokens: 512},
			TaskInterview:   {Temperature: 0.7, MaxTokens: 1024},
			TaskSummary:     {Temperature: 0.7, MaxTokens: 1024},
			TaskDiscovery:   {Temperature: 0.7, MaxTokens: 1024},
			TaskPillars:     {Temperature: 0.7, MaxTokens: 2000},
			TaskActions:     {Temperature: 0.7, MaxTokens: 2000},
			TaskBulkActions: {Temperature: 0.7, MaxTokens: 4000, TimeoutMs: 120000},
			TaskBlessing:    {Temperature: 0.9, MaxTokens: 256},
		},
	}
}

// DefaultEndpoint returns the base URL used when none is configured.
func DefaultEndpoint(p Provider) string {
	switch p {
	case ProviderOllama:
		return "http://localhost:11434"
	case ProviderOpenAI:
		return "https://api.openai.com/v1"
	default:
		return ""
	}
}

// DefaultModel returns the model used for p when none is configured.
func DefaultModel(p Provider) string {
	switch p {
	case ProviderOllama:
		return "llama3.2"
	case ProviderGemini:
		return "gemini-2.5-flash"
	default:
		return "gpt-4o"
	}
}

// LoadConfig reads LLM configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() LLMConfig {
	cfg := DefaultConfig()

	if v := os.Getenv("MANDALART_LLM_ENABLED"); v != "" {
		cfg.Enabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("MANDALART_LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("MANDALART_LLM_PROVIDER"); v != "" {
		cfg.Provider = Provider(strings.ToLower(strings.TrimSpace(v)))
	}
	cfg.Model = DefaultModel(cfg.Provider)
	cfg.Endpoint = DefaultEndpoint(cfg.Provider)
	if v := os.Getenv("MANDALART_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("MANDALART_LLM_MODEL"); v != "" {
		cfg.Model = v
	}

	cfg.APIKey = os.Getenv("MANDALART_LLM_API_KEY")
	if cfg.APIKey == "" {
		switch cfg.Provider {
		case ProviderOpenAI:
			cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		case ProviderGemini:
			cfg.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}

	if v := os.Getenv("MANDALART_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("MANDALART_LLM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("MANDALART_LLM_BACKOFF_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.BackoffMs = n
		}
	}
	if v := os.Getenv("MANDALART_LLM_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.CacheSize = n
		}
	}

	for _, task := range Tasks {
		applyTaskTimeoutEnv(&cfg, task, "MANDALART_LLM_"+strings.ToUpper(string(task))+"_TIMEOUT_MS")
	}

	return cfg
}

// Validate reports configuration that cannot produce a working client.
// A disabled config is always valid.
func (c LLMConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Provider {
	case ProviderOpenAI, ProviderGemini:
		if c.APIKey == "" {
			return fmt.Errorf("llm provider %s needs an API key", c.Provider)
		}
	case ProviderOllama:
	default:
		return fmt.Errorf("unknown llm provider %q", c.Provider)
	}
	if c.Provider != ProviderGemini && c.Endpoint == "" {
		return fmt.Errorf("llm provider %s needs an endpoint", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("llm model is empty")
	}
	return nil
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

func applyTaskTimeoutEnv(cfg *LLMConfig, task TaskType, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	tc := cfg.Tasks[task]
	tc.TimeoutMs = n
	cfg.Tasks[task] = tc
}
