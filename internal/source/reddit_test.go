package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/persona/internal/cache"
	"github.com/ppiankov/persona/internal/metrics"
	"github.com/ppiankov/persona/internal/util"
	"github.com/ppiankov/persona/internal/worker"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const submittedJSON = `{"kind":"Listing","data":{"children":[{"kind":"t3","data":{"title":"Hello","permalink":"/r/x/comments/1/"}}]}}`
const commentsJSON = `{"kind":"Listing","data":{"children":[{"kind":"t1","data":{"body":"Hi","permalink":"/r/x/comments/1/_/c/"}}]}}`

// redditServer serves the two profile listings and counts requests per path
func redditServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/user/kojied/submitted/.json":
			_, _ = fmt.Fprint(w, submittedJSON)
		case "/user/kojied/comments/.json":
			_, _ = fmt.Fprint(w, commentsJSON)
		case "/robots.txt":
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /user/private/\n")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestRedditFetcher_ListingURL(t *testing.T) {
	tests := []struct {
		maxItems int
		want     string
	}{
		{100, "https://www.reddit.com/user/kojied/submitted/.json?limit=50"},
		{1, "https://www.reddit.com/user/kojied/submitted/.json?limit=1"},
		{1000, "https://www.reddit.com/user/kojied/submitted/.json?limit=100"},
	}

	for _, tt := range tests {
		f := NewRedditFetcher(Options{MaxItems: tt.maxItems})
		assert.Equal(t, tt.want, f.ListingURL("kojied", ListingSubmitted))
	}
}

func TestRedditFetcher_FetchContent(t *testing.T) {
	var hits atomic.Int32
	server := redditServer(t, &hits)
	defer server.Close()

	rec := metrics.NewRecorder()
	f := NewRedditFetcher(Options{BaseURL: server.URL, MaxItems: 10, Metrics: rec})

	raw := f.FetchContent(context.Background(), "kojied")

	require.NotNil(t, raw.Posts)
	require.NotNil(t, raw.Comments)
	posts := raw.Posts.(map[string]any)
	assert.Equal(t, "Listing", posts["kind"])
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.FetchesTotal.WithLabelValues(ListingSubmitted, metrics.FetchOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.FetchesTotal.WithLabelValues(ListingComments, metrics.FetchOK)))
}

func TestRedditFetcher_UnavailableIsNil(t *testing.T) {
	noSleep(t)
	var hits atomic.Int32
	server := redditServer(t, &hits)
	defer server.Close()

	rec := metrics.NewRecorder()
	f := NewRedditFetcher(Options{BaseURL: server.URL, Metrics: rec})

	raw := f.FetchContent(context.Background(), "nobody")

	assert.Nil(t, raw.Posts)
	assert.Nil(t, raw.Comments)
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.FetchesTotal.WithLabelValues(ListingSubmitted, metrics.FetchError))+
		testutil.ToFloat64(rec.FetchesTotal.WithLabelValues(ListingComments, metrics.FetchError)))
}

func TestRedditFetcher_InvalidJSONIsNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "<html>rate limited</html>")
	}))
	defer server.Close()

	raw := NewRedditFetcher(Options{BaseURL: server.URL}).FetchContent(context.Background(), "kojied")

	assert.Nil(t, raw.Posts)
	assert.Nil(t, raw.Comments)
}

func TestRedditFetcher_UnreachableIsNil(t *testing.T) {
	noSleep(t)
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	raw := NewRedditFetcher(Options{BaseURL: baseURL, Timeout: time.Second}).FetchContent(context.Background(), "kojied")

	assert.Nil(t, raw.Posts)
	assert.Nil(t, raw.Comments)
}

func TestRedditFetcher_UsesCache(t *testing.T) {
	var hits atomic.Int32
	server := redditServer(t, &hits)
	defer server.Close()

	rec := metrics.NewRecorder()
	c := cache.NewLayeredCache(time.Minute, t.TempDir(), time.Hour)
	f := NewRedditFetcher(Options{BaseURL: server.URL, Cache: c, CacheTTL: time.Hour, Metrics: rec})

	first := f.FetchContent(context.Background(), "kojied")
	second := f.FetchContent(context.Background(), "kojied")

	assert.Equal(t, int32(2), hits.Load(), "second run should be served from cache")
	assert.Equal(t, first, second)
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.FetchesTotal.WithLabelValues(ListingSubmitted, metrics.FetchCached)))
}

func TestRedditFetcher_RespectsRobots(t *testing.T) {
	var hits atomic.Int32
	server := redditServer(t, &hits)
	defer server.Close()

	f := NewRedditFetcher(Options{
		BaseURL: server.URL,
		Robots:  util.NewRobotsChecker("persona/0.1", time.Second, nil),
		Limiter: worker.NewLimiter(100, 10),
	})

	blocked := f.FetchContent(context.Background(), "private")
	assert.Nil(t, blocked.Posts)
	assert.Nil(t, blocked.Comments)

	allowed := f.FetchContent(context.Background(), "kojied")
	assert.NotNil(t, allowed.Posts)
	assert.NotNil(t, allowed.Comments)
}

func TestRedditFetcher_CancelledContext(t *testing.T) {
	var hits atomic.Int32
	server := redditServer(t, &hits)
	defer server.Close()

	f := NewRedditFetcher(Options{BaseURL: server.URL, Limiter: worker.NewLimiter(0.001, 1)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	raw := f.FetchContent(ctx, "kojied")

	assert.Nil(t, raw.Posts)
	assert.Nil(t, raw.Comments)
	assert.Equal(t, int32(0), hits.Load())
}
