package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/persona/internal/model"
	"github.com/sashabaranov/go-openai"
)

// defaultAnthropicModel is used when no Anthropic model is configured
const defaultAnthropicModel = "claude-3-5-haiku-20241022"

// NewProvider creates a new text generator based on configuration
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		// No provider configured - return nil (generator disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.Config to llm.Config
func ConfigFromModel(cfg *model.Config) Config {
	return Config{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Timeout:     cfg.LLM.Timeout,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		HTTPProxy:   cfg.HTTP.HTTPProxy,
		HTTPSProxy:  cfg.HTTP.HTTPSProxy,
		NoProxy:     cfg.HTTP.NoProxy,
	}
}

// DefaultModel returns the model a provider falls back to when none is
// configured. Ollama has none: it serves whatever models were pulled locally.
func DefaultModel(provider string) string {
	switch strings.ToLower(provider) {
	case "openai":
		return openai.GPT4oMini
	case "anthropic", "claude":
		return defaultAnthropicModel
	default:
		return ""
	}
}
