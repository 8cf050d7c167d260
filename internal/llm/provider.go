package llm

import (
	"context"
	"strings"
)

// Provider defines the interface for text generators
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate sends one prompt and returns the raw reply text
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// GenerateRequest contains the input for one generation call
type GenerateRequest struct {
	// Prompt is the user message
	Prompt string

	// System is an optional system message (if empty, use default)
	System string

	// Model overrides the configured model
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature overrides the configured sampling temperature (0 = use config)
	Temperature float32
}

// GenerateResponse contains the generator's raw output
type GenerateResponse struct {
	// Text is the reply, trimmed of surrounding whitespace
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds text generator configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for sampling
	Temperature float32

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultSystemPrompt frames the generator as a user researcher
const DefaultSystemPrompt = "You are an expert user researcher who analyzes social media content to create accurate user personas. Always respond with valid JSON."

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "", // Disabled by default
		Model:       "",
		Timeout:     60,
		MaxTokens:   1000,
		Temperature: 0.7,
	}
}

// resolve fills request fields from the provider config and built-in defaults
func (c Config) resolve(req GenerateRequest, defaultModel string) GenerateRequest {
	if req.System == "" {
		req.System = DefaultSystemPrompt
	}
	if req.Model == "" {
		req.Model = c.Model
	}
	if req.Model == "" {
		req.Model = defaultModel
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = c.MaxTokens
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = 1000
	}
	if req.Temperature == 0 {
		req.Temperature = c.Temperature
	}
	return req
}

func trimReply(s string) string {
	return strings.TrimSpace(s)
}
