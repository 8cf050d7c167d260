// Package source fetches raw profile listings from Reddit's public JSON endpoints.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/persona/internal/cache"
	"github.com/ppiankov/persona/internal/logger"
	"github.com/ppiankov/persona/internal/metrics"
	"github.com/ppiankov/persona/internal/pipeline"
	"github.com/ppiankov/persona/internal/util"
	"github.com/ppiankov/persona/internal/worker"
	"golang.org/x/sync/errgroup"
)

// Listing names as they appear in the profile URL
const (
	ListingSubmitted = "submitted"
	ListingComments  = "comments"
)

// maxListingLimit is the largest page Reddit serves for a listing
const maxListingLimit = 100

// Options configures a RedditFetcher
type Options struct {
	BaseURL    string
	MaxItems   int // combined cap; each listing requests half
	Timeout    time.Duration
	UserAgent  string
	MaxBytes   int64
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string

	// Optional collaborators; nil disables the feature
	Cache    cache.Cache
	CacheTTL time.Duration
	Limiter  *worker.Limiter
	Robots   *util.RobotsChecker
	Logger   logger.Logger
	Metrics  *metrics.Recorder
}

// RedditFetcher implements pipeline.ContentSource over HTTP
type RedditFetcher struct {
	fetcher  *Fetcher
	baseURL  string
	limit    int
	cache    cache.Cache
	cacheTTL time.Duration
	limiter  *worker.Limiter
	robots   *util.RobotsChecker
	log      logger.Logger
	metrics  *metrics.Recorder
}

var _ pipeline.ContentSource = (*RedditFetcher)(nil)

// NewRedditFetcher creates a fetcher for the configured base URL
func NewRedditFetcher(opts Options) *RedditFetcher {
	baseURL := strings.TrimSuffix(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://www.reddit.com"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 5_000_000
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "persona/0.1"
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}

	return &RedditFetcher{
		fetcher:  NewFetcher(opts.Timeout, opts.UserAgent, opts.MaxBytes, opts.HTTPProxy, opts.HTTPSProxy, opts.NoProxy),
		baseURL:  baseURL,
		limit:    listingLimit(opts.MaxItems),
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		limiter:  opts.Limiter,
		robots:   opts.Robots,
		log:      opts.Logger,
		metrics:  opts.Metrics,
	}
}

// listingLimit returns the per-listing page size for a combined cap
func listingLimit(maxItems int) int {
	n := maxItems / 2
	if n < 1 {
		n = 1
	}
	if n > maxListingLimit {
		n = maxListingLimit
	}
	return n
}

// FetchContent fetches the subject's submitted posts and comments in parallel.
// A listing that cannot be fetched or decoded is returned as nil.
func (r *RedditFetcher) FetchContent(ctx context.Context, username string) pipeline.RawContent {
	var raw pipeline.RawContent

	// fetchListing never fails; each goroutine owns one field
	var eg errgroup.Group
	eg.Go(func() error {
		raw.Posts = r.fetchListing(ctx, username, ListingSubmitted)
		return nil
	})
	eg.Go(func() error {
		raw.Comments = r.fetchListing(ctx, username, ListingComments)
		return nil
	})
	_ = eg.Wait()

	return raw
}

// ListingURL builds the JSON endpoint for one of the subject's listings
func (r *RedditFetcher) ListingURL(username, listing string) string {
	return fmt.Sprintf("%s/user/%s/%s/.json?limit=%d", r.baseURL, url.PathEscape(username), listing, r.limit)
}

func (r *RedditFetcher) fetchListing(ctx context.Context, username, listing string) any {
	rawURL := r.ListingURL(username, listing)
	log := r.log.With(logger.String("listing", listing), logger.String("url", rawURL))

	body, cached, err := r.get(ctx, rawURL)
	if err != nil {
		log.Warn("listing unavailable", logger.Error(err))
		r.metrics.FetchCompleted(listing, metrics.FetchError)
		return nil
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		log.Warn("listing is not valid JSON", logger.Error(err))
		r.metrics.FetchCompleted(listing, metrics.FetchError)
		return nil
	}

	result := metrics.FetchOK
	if cached {
		result = metrics.FetchCached
	}
	r.metrics.FetchCompleted(listing, result)
	log.Debug("listing fetched", logger.Bool("cached", cached), logger.Int("bytes", len(body)))

	return decoded
}

// get returns the body for rawURL from cache or network, reporting whether it was cached
func (r *RedditFetcher) get(ctx context.Context, rawURL string) ([]byte, bool, error) {
	key := cache.CacheKey(rawURL)
	if r.cache != nil {
		if body, found := r.cache.Get(key); found {
			return body, true, nil
		}
	}

	var crawlDelay time.Duration
	if r.robots != nil {
		allowed, delay, err := r.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, false, fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return nil, false, fmt.Errorf("disallowed by robots.txt: %s", rawURL)
		}
		crawlDelay = delay
	}

	if r.limiter != nil {
		if err := r.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
			return nil, false, fmt.Errorf("rate limit: %w", err)
		}
	}

	result, err := r.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, false, err
	}

	if r.cache != nil {
		if err := r.cache.Set(key, result.Body, r.cacheTTL); err != nil {
			r.log.Debug("cache write failed", logger.Error(err))
		}
	}

	return result.Body, false, nil
}
