package llm

import (
	"context"
	"time"

	"github.com/ppiankov/persona/internal/logger"
	"github.com/ppiankov/persona/internal/model"
)

// Fallback reasons reported in Outcome.Reason
const (
	ReasonDisabled    = "disabled"    // no provider configured
	ReasonUnreachable = "unreachable" // the call failed or timed out
	ReasonMalformed   = "malformed"   // the reply could not be decoded
)

// Outcome describes how the attribute map for a run was obtained
type Outcome struct {
	Provider   string        `json:"provider,omitempty"`
	Model      string        `json:"model,omitempty"`
	Fallback   bool          `json:"fallback"`
	Reason     string        `json:"reason,omitempty"`
	Error      string        `json:"error,omitempty"`
	TokensUsed int           `json:"tokens_used,omitempty"`
	Latency    time.Duration `json:"latency,omitempty"`
}

// Analyzer makes exactly one generator call per prompt and never fails:
// every error path degrades to the fallback attributes.
type Analyzer struct {
	provider Provider
	config   Config
	log      logger.Logger
}

// NewAnalyzer creates an analyzer from configuration.
// An empty provider name yields an analyzer that always uses the fallback.
func NewAnalyzer(config Config, log logger.Logger) (*Analyzer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return NewAnalyzerWithProvider(provider, config, log), nil
}

// NewAnalyzerWithProvider wraps an existing provider (nil = disabled)
func NewAnalyzerWithProvider(provider Provider, config Config, log logger.Logger) *Analyzer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Analyzer{
		provider: provider,
		config:   config,
		log:      log,
	}
}

// IsEnabled returns true if a provider is configured
func (a *Analyzer) IsEnabled() bool {
	return a.provider != nil
}

// ProviderName returns the name of the configured provider
func (a *Analyzer) ProviderName() string {
	if a.provider == nil {
		return ""
	}
	return a.provider.Name()
}

// Analyze sends prompt to the generator once and parses the reply.
// The call is bounded by the configured timeout whatever the provider.
func (a *Analyzer) Analyze(ctx context.Context, prompt string) (model.AttributeMap, Outcome) {
	if a.provider == nil {
		a.log.Warn("text generator disabled, using fallback persona")
		return FallbackAttributes(), Outcome{Fallback: true, Reason: ReasonDisabled}
	}

	outcome := Outcome{Provider: a.provider.Name()}

	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(a.config.Timeout)*time.Second)
		defer cancel()
	}

	start := time.Now()
	resp, err := a.provider.Generate(ctx, GenerateRequest{
		Prompt:      prompt,
		Model:       a.config.Model,
		MaxTokens:   a.config.MaxTokens,
		Temperature: a.config.Temperature,
	})
	outcome.Latency = time.Since(start)

	if err != nil {
		a.log.Warn("text generator call failed, using fallback persona",
			logger.String("provider", outcome.Provider),
			logger.Error(err),
		)
		outcome.Fallback = true
		outcome.Reason = ReasonUnreachable
		outcome.Error = err.Error()
		return FallbackAttributes(), outcome
	}

	outcome.Model = resp.Model
	outcome.TokensUsed = resp.TokensUsed

	attrs, err := DecodeReply(resp.Text)
	if err != nil {
		a.log.Warn("text generator reply malformed, using fallback persona",
			logger.String("provider", outcome.Provider),
			logger.Int("reply_chars", len(resp.Text)),
			logger.Error(err),
		)
		outcome.Fallback = true
		outcome.Reason = ReasonMalformed
		outcome.Error = err.Error()
		return attrs, outcome
	}

	a.log.Debug("text generator reply parsed",
		logger.String("provider", outcome.Provider),
		logger.String("model", outcome.Model),
		logger.Int("tokens_used", outcome.TokensUsed),
		logger.Duration("latency", outcome.Latency),
	)
	return attrs, outcome
}
