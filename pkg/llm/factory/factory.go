package factory

import (
	"ampersand-agent/pkg/llm"
	"ampersand-agent/pkg/llm/ollama"
	"ampersand-agent/pkg/llm/openai"
	"fmt"
)

type Config struct {
	Provider  string
	Model     string
	BaseURL   string
	APIKey    string
	MaxTokens int
}

func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "groq":
		return openai.NewProvider(openai.Config{
			Name:      "groq",
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			BaseURL:   defaultIfEmpty(cfg.BaseURL, openai.GroqBaseURL),
			MaxTokens: cfg.MaxTokens,
		}), nil
	case "openai":
		return openai.NewProvider(openai.Config{
			Name:      "openai",
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			BaseURL:   defaultIfEmpty(cfg.BaseURL, openai.OpenAIBaseURL),
			MaxTokens: cfg.MaxTokens,
		}), nil
	case "ollama":
		return ollama.NewProvider(cfg.BaseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

func defaultIfEmpty(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
