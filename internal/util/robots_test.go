package util

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRobotsChecker_CanFetch(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		hits.Add(1)
		_, _ = fmt.Fprint(w, "User-agent: persona\nDisallow: /user/blocked/\nCrawl-delay: 2\n\nUser-agent: *\nDisallow: /\n")
	}))
	defer server.Close()

	checker := NewRobotsChecker("persona/0.1 (+https://github.com/ppiankov/persona)", 5*time.Second, nil)
	ctx := context.Background()

	allowed, delay, err := checker.CanFetch(ctx, server.URL+"/user/someone/submitted/.json")
	if err != nil {
		t.Fatalf("CanFetch: %v", err)
	}
	if !allowed {
		t.Error("expected /user/someone/ to be allowed for persona")
	}
	if delay != 2*time.Second {
		t.Errorf("expected crawl delay 2s, got %v", delay)
	}

	allowed, _, err = checker.CanFetch(ctx, server.URL+"/user/blocked/comments/.json")
	if err != nil {
		t.Fatalf("CanFetch: %v", err)
	}
	if allowed {
		t.Error("expected /user/blocked/ to be disallowed")
	}

	if hits.Load() != 1 {
		t.Errorf("expected robots.txt fetched once, got %d", hits.Load())
	}

	checker.Clear()
	_, _, _ = checker.CanFetch(ctx, server.URL+"/user/someone/")
	if hits.Load() != 2 {
		t.Errorf("expected refetch after Clear, got %d fetches", hits.Load())
	}
}

func TestRobotsChecker_MissingRobotsAllows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	checker := NewRobotsChecker("persona/0.1", 5*time.Second, nil)
	allowed, _, err := checker.CanFetch(context.Background(), server.URL+"/user/x/")
	if err != nil {
		t.Fatalf("CanFetch: %v", err)
	}
	if !allowed {
		t.Error("expected allow when robots.txt is missing")
	}
}

func TestRobotsChecker_InvalidURL(t *testing.T) {
	checker := NewRobotsChecker("persona/0.1", time.Second, nil)
	if _, _, err := checker.CanFetch(context.Background(), "not a url"); err == nil {
		t.Error("expected error for URL without host")
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	tests := map[string]string{
		"persona/0.1 (+https://example.com)": "persona",
		"curl/8.0":                           "curl",
		"":                                   "",
	}
	for in, want := range tests {
		if got := NormalizeUserAgent(in); got != want {
			t.Errorf("NormalizeUserAgent(%q) = %q, want %q", in, got, want)
		}
	}
}
