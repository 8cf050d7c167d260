// Package util holds HTTP helpers shared by the content source and text generators.
package util

import (
	"net/http"
	"net/url"
	"strings"
)

// NewProxyFunc creates a proxy function based on configuration.
// If no proxy URLs are provided, falls back to environment variables.
// noProxy is a comma-separated list of hosts or domain suffixes that bypass the proxy.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	bypass := parseNoProxy(noProxy)

	return func(req *http.Request) (*url.URL, error) {
		if bypass(req.URL.Hostname()) {
			return nil, nil
		}
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}

// parseNoProxy returns a matcher for the NO_PROXY-style list
func parseNoProxy(noProxy string) func(host string) bool {
	var entries []string
	for _, entry := range strings.Split(noProxy, ",") {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry != "" {
			entries = append(entries, entry)
		}
	}

	return func(host string) bool {
		host = strings.ToLower(host)
		for _, entry := range entries {
			if entry == "*" {
				return true
			}
			suffix := strings.TrimPrefix(entry, "*")
			if !strings.HasPrefix(suffix, ".") {
				if host == suffix {
					return true
				}
				suffix = "." + suffix
			}
			if strings.HasSuffix(host, suffix) {
				return true
			}
		}
		return false
	}
}
