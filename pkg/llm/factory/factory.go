package factory

import (
	"fmt"
	"time"

	"phone-order-be/pkg/llm"
	"phone-order-be/pkg/llm/ollama"
	"phone-order-be/pkg/llm/openai"
)

// Config selects and configures an LLM backend.
type Config struct {
	Provider string // "ollama" or "openai"
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model, timeout), nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		model := cfg.Model
		if model == "" {
			model = "gpt-4o"
		}
		return openai.NewOpenAIProvider(cfg.APIKey, model, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
