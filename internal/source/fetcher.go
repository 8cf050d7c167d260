package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/persona/internal/util"
)

// fetchSleepFunc is the sleep used between retries (overridable in tests)
var fetchSleepFunc = time.Sleep

const maxFetchAttempts = 3

// Fetcher performs GET requests with a size limit, redirect cap and retries
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

// NewFetcher creates a new Fetcher with the given configuration
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64, httpProxy, httpsProxy, noProxy string) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpProxy, httpsProxy, noProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  maxBytes,
	}
}

// FetchResult contains the response body and metadata
type FetchResult struct {
	Body        []byte
	StatusCode  int
	ContentType string
	FinalURL    string
}

// Fetch retrieves the given URL once
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	// Read body with size limit
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &FetchResult{
		Body:        body,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

// FetchWithRetry retries transient failures (5xx, 429, network errors)
// with exponential backoff, up to maxFetchAttempts attempts
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	var lastErr error
	backoff := 500 * time.Millisecond

	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryableFetchError(err) || attempt == maxFetchAttempts || ctx.Err() != nil {
			break
		}

		fetchSleepFunc(backoff)
		backoff *= 2
	}

	return nil, lastErr
}

// isRetryableFetchError reports whether err is worth another attempt
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()

	if strings.HasPrefix(msg, "fetch: ") {
		return true
	}

	if strings.HasPrefix(msg, "unexpected status: ") {
		status := strings.TrimPrefix(msg, "unexpected status: ")
		return strings.HasPrefix(status, "5") || strings.HasPrefix(status, "429")
	}

	return false
}
