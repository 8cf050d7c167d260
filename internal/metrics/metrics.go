// Package metrics exposes Prometheus counters and histograms for persona runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Namespace prefixes every persona metric
	Namespace = "persona"
)

// Run outcomes recorded by RunCompleted
const (
	OutcomeGenerated = "generated" // persona built from a usable generator reply
	OutcomeFallback  = "fallback"  // persona built from the fallback attributes
	OutcomeInvalid   = "invalid"   // subject rejected before fetching
	OutcomeError     = "error"     // any other run failure
)

// Fetch results recorded by FetchCompleted
const (
	FetchOK     = "ok"
	FetchCached = "cached"
	FetchError  = "error"
)

// Recorder holds all persona metrics. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	RunsTotal            *prometheus.CounterVec
	FallbacksTotal       *prometheus.CounterVec
	FetchesTotal         *prometheus.CounterVec
	ItemsNormalizedTotal prometheus.Counter
	CitationsTotal       prometheus.Counter
	GeneratorLatency     prometheus.Histogram
	GeneratorTokensTotal *prometheus.CounterVec
	RunDurationSeconds   prometheus.Histogram
}

// NewRecorder creates a recorder backed by its own registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	r := &Recorder{registry: reg}

	r.RunsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by outcome",
		},
		[]string{"outcome"},
	)

	r.FallbacksTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "generator_fallbacks_total",
			Help:      "Total number of fallback personas by reason",
		},
		[]string{"reason"},
	)

	r.FetchesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "source_fetches_total",
			Help:      "Total number of listing fetches by listing and result",
		},
		[]string{"listing", "result"},
	)

	r.ItemsNormalizedTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "items_normalized_total",
			Help:      "Total number of content items produced by the normalizer",
		},
	)

	r.CitationsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "citations_total",
			Help:      "Total number of citations attached to personas",
		},
	)

	r.GeneratorLatency = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "generator_latency_seconds",
			Help:      "Latency of text generator calls in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 9), // 0.25s to 64s
		},
	)

	r.GeneratorTokensTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "generator_tokens_total",
			Help:      "Total tokens reported by the text generator",
		},
		[]string{"provider"},
	)

	r.RunDurationSeconds = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of complete pipeline runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	return r
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the recorder's metrics in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// RunCompleted records one finished pipeline run
func (r *Recorder) RunCompleted(outcome string, duration time.Duration) {
	if r == nil {
		return
	}
	r.RunsTotal.WithLabelValues(outcome).Inc()
	r.RunDurationSeconds.Observe(duration.Seconds())
}

// Fallback records a fallback persona and its reason
func (r *Recorder) Fallback(reason string) {
	if r == nil {
		return
	}
	r.FallbacksTotal.WithLabelValues(reason).Inc()
}

// FetchCompleted records one listing fetch
func (r *Recorder) FetchCompleted(listing, result string) {
	if r == nil {
		return
	}
	r.FetchesTotal.WithLabelValues(listing, result).Inc()
}

// ItemsNormalized adds n normalized items
func (r *Recorder) ItemsNormalized(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.ItemsNormalizedTotal.Add(float64(n))
}

// Citations adds n attached citations
func (r *Recorder) Citations(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.CitationsTotal.Add(float64(n))
}

// GeneratorCall records the latency and token usage of one generator call
func (r *Recorder) GeneratorCall(provider string, latency time.Duration, tokens int) {
	if r == nil {
		return
	}
	r.GeneratorLatency.Observe(latency.Seconds())
	if tokens > 0 {
		r.GeneratorTokensTotal.WithLabelValues(provider).Add(float64(tokens))
	}
}
