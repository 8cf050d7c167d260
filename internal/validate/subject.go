package validate

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidSubject is returned when a subject reference is not a Reddit
// profile URL or username
var ErrInvalidSubject = errors.New("invalid subject reference")

var (
	// profileURLPattern matches https://www.reddit.com/user/<name>/ (trailing slash optional).
	// Names are restricted to Reddit's charset so they are safe in file names.
	profileURLPattern = regexp.MustCompile(`^https://www\.reddit\.com/(?:user|u)/([A-Za-z0-9_-]+)/?$`)

	// usernamePattern matches a bare username or u/<name>
	usernamePattern = regexp.MustCompile(`^(?:/?u/)?([A-Za-z0-9_-]{3,20})$`)
)

// Subject is a validated reference to one Reddit profile
type Subject struct {
	Username   string
	ProfileURL string
}

// ParseSubject resolves a profile URL or username into a Subject
func ParseSubject(ref string) (Subject, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Subject{}, fmt.Errorf("%w: empty reference", ErrInvalidSubject)
	}

	var username string
	if m := profileURLPattern.FindStringSubmatch(ref); m != nil {
		username = m[1]
	} else if m := usernamePattern.FindStringSubmatch(ref); m != nil {
		username = m[1]
	} else {
		return Subject{}, fmt.Errorf("%w: %q", ErrInvalidSubject, ref)
	}

	return Subject{
		Username:   username,
		ProfileURL: "https://www.reddit.com/user/" + username + "/",
	}, nil
}

// IsAbsoluteURL reports whether raw is an absolute http(s) URL with a host
func IsAbsoluteURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}
