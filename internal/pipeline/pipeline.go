// Package pipeline runs one subject through fetch, normalize, generate,
// attribute and assemble.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/persona/internal/attribution"
	"github.com/ppiankov/persona/internal/extract"
	"github.com/ppiankov/persona/internal/llm"
	"github.com/ppiankov/persona/internal/logger"
	"github.com/ppiankov/persona/internal/metrics"
	"github.com/ppiankov/persona/internal/model"
	"github.com/ppiankov/persona/internal/persona"
	"github.com/ppiankov/persona/internal/validate"
)

// DefaultMaxItems is the combined post and comment cap
const DefaultMaxItems = 100

// RawContent holds the two untyped listings returned by a content source.
// A nil listing means the source was unavailable.
type RawContent struct {
	Posts    any
	Comments any
}

// ContentSource supplies raw listings for a username. Failures are reported
// as nil listings, never as errors.
type ContentSource interface {
	FetchContent(ctx context.Context, username string) RawContent
}

// Options tunes a pipeline
type Options struct {
	// MaxItems caps the number of normalized items (split evenly between posts and comments)
	MaxItems int

	// BaseURL resolves relative permalinks
	BaseURL string
}

// Pipeline orchestrates the complete analysis of one subject
type Pipeline struct {
	source     ContentSource
	normalizer *extract.Normalizer
	analyzer   *llm.Analyzer
	maxItems   int
	log        logger.Logger
	metrics    *metrics.Recorder
	newRunID   func() string
}

// New creates a pipeline. A nil source behaves as an unavailable source;
// a nil analyzer always uses the fallback attributes.
func New(source ContentSource, analyzer *llm.Analyzer, opts Options, log logger.Logger, rec *metrics.Recorder) *Pipeline {
	if log == nil {
		log = logger.NewNop()
	}
	if analyzer == nil {
		analyzer = llm.NewAnalyzerWithProvider(nil, llm.DefaultConfig(), log)
	}
	if opts.MaxItems == 0 {
		opts.MaxItems = DefaultMaxItems
	}

	return &Pipeline{
		source:     source,
		normalizer: extract.NewNormalizer(opts.BaseURL),
		analyzer:   analyzer,
		maxItems:   opts.MaxItems,
		log:        log,
		metrics:    rec,
		newRunID:   uuid.NewString,
	}
}

// Result contains the outcome of one pipeline run
type Result struct {
	RunID    string
	Subject  validate.Subject
	Items    []model.ContentItem
	Persona  *model.Persona
	Outcome  llm.Outcome
	Duration time.Duration
}

// ItemCount returns the number of normalized items the persona was built from
func (r *Result) ItemCount() int {
	return len(r.Items)
}

// Run analyzes the subject referenced by ref (profile URL or username).
// Only an invalid reference or a broken attribute map is an error; source and
// generator failures degrade to the fallback persona.
func (p *Pipeline) Run(ctx context.Context, ref string) (*Result, error) {
	start := time.Now()
	runID := p.newRunID()
	log := p.log.With(logger.String("run_id", runID))

	// 1. Validate subject before any fetch
	subject, err := validate.ParseSubject(ref)
	if err != nil {
		p.metrics.RunCompleted(metrics.OutcomeInvalid, time.Since(start))
		return nil, fmt.Errorf("parse subject: %w", err)
	}
	log = log.With(logger.String("subject", subject.Username))

	// 2. Fetch raw listings
	var raw RawContent
	if p.source != nil {
		raw = p.source.FetchContent(ctx, subject.Username)
	}
	if raw.Posts == nil && raw.Comments == nil {
		log.Warn("content source returned nothing, continuing with no items")
	}

	// 3. Normalize
	items := p.normalizer.Normalize(raw.Posts, raw.Comments, p.maxItems)
	p.metrics.ItemsNormalized(len(items))
	log.Debug("content normalized", logger.Int("items", len(items)))

	// 4. Build prompt and generate (one call, no retry)
	prompt := llm.BuildPrompt(items, subject.Username)
	attrs, outcome := p.analyzer.Analyze(ctx, prompt)
	if outcome.Provider != "" {
		p.metrics.GeneratorCall(outcome.Provider, outcome.Latency, outcome.TokensUsed)
	}
	if outcome.Fallback {
		p.metrics.Fallback(outcome.Reason)
	}

	// 5. Attribute and assemble
	citations := attribution.Attribute(attrs, items)
	result, err := persona.Assemble(subject.Username, attrs, citations)
	if err != nil {
		p.metrics.RunCompleted(metrics.OutcomeError, time.Since(start))
		return nil, fmt.Errorf("assemble persona: %w", err)
	}
	p.metrics.Citations(result.CitationCount())

	duration := time.Since(start)
	runOutcome := metrics.OutcomeGenerated
	if outcome.Fallback {
		runOutcome = metrics.OutcomeFallback
	}
	p.metrics.RunCompleted(runOutcome, duration)

	log.Info("persona generated",
		logger.Int("items", len(items)),
		logger.Int("citations", result.CitationCount()),
		logger.Bool("fallback", outcome.Fallback),
		logger.Duration("duration", duration),
	)

	return &Result{
		RunID:    runID,
		Subject:  subject,
		Items:    items,
		Persona:  result,
		Outcome:  outcome,
		Duration: duration,
	}, nil
}
