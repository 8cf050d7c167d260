// Package attribution links generated persona attributes back to the
// content items that support them.
package attribution

import (
	"strings"

	"github.com/ppiankov/persona/internal/model"
)

const (
	// MaxScalarCitations bounds citations for a single-string attribute
	MaxScalarCitations = 3

	// MaxElementCitations bounds citations per element of a list attribute
	MaxElementCitations = 2
)

// Attribute finds supporting permalinks for every key of attrs.
// An item supports a value when the lower-cased value is a substring of the
// item's lower-cased "title content" text. Citations keep item order and are
// not deduplicated across list elements.
func Attribute(attrs model.AttributeMap, items []model.ContentItem) map[model.Attribute][]string {
	haystacks := make([]string, len(items))
	for i, item := range items {
		haystacks[i] = strings.ToLower(item.Title + " " + item.Content)
	}

	citations := make(map[model.Attribute][]string, len(attrs))
	for attr, value := range attrs {
		urls := []string{}
		if value.IsList() {
			for _, element := range value.Items() {
				urls = append(urls, match(element, haystacks, items, MaxElementCitations)...)
			}
		} else {
			urls = append(urls, match(value.Text(), haystacks, items, MaxScalarCitations)...)
		}
		citations[attr] = urls
	}

	return citations
}

// match returns up to limit permalinks of items whose haystack contains needle.
// Blank needles, including whitespace-only ones, match nothing.
func match(needle string, haystacks []string, items []model.ContentItem, limit int) []string {
	if strings.TrimSpace(needle) == "" {
		return nil
	}
	needle = strings.ToLower(needle)

	var urls []string
	for i, haystack := range haystacks {
		if len(urls) == limit {
			break
		}
		if strings.Contains(haystack, needle) {
			urls = append(urls, items[i].Permalink)
		}
	}
	return urls
}
