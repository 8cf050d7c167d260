package extract

import (
	"strings"
	"time"

	"github.com/ppiankov/persona/internal/model"
	"github.com/ppiankov/persona/internal/validate"
)

// DefaultBaseURL is joined onto relative permalinks
const DefaultBaseURL = "https://www.reddit.com"

// timestampLayout renders epoch seconds as ISO-8601 without a zone suffix
const timestampLayout = "2006-01-02T15:04:05"

// Normalizer converts raw listings into content items
type Normalizer struct {
	baseURL string
}

// NewNormalizer creates a normalizer resolving relative permalinks against baseURL
func NewNormalizer(baseURL string) *Normalizer {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Normalizer{baseURL: baseURL}
}

// Normalize is a convenience wrapper using DefaultBaseURL
func Normalize(posts, comments any, limit int) []model.ContentItem {
	return NewNormalizer(DefaultBaseURL).Normalize(posts, comments, limit)
}

// Normalize returns at most limit items: up to limit/2 posts followed by up
// to limit/2 comments, each in source order. Records without a derivable
// permalink are skipped and do not count against the quota.
func (n *Normalizer) Normalize(posts, comments any, limit int) []model.ContentItem {
	if limit <= 0 {
		return []model.ContentItem{}
	}
	half := limit / 2

	items := make([]model.ContentItem, 0, half*2)
	items = n.appendKind(items, posts, model.KindPost, half)
	items = n.appendKind(items, comments, model.KindComment, half)
	return items
}

func (n *Normalizer) appendKind(items []model.ContentItem, raw any, kind model.ContentKind, quota int) []model.ContentItem {
	taken := 0
	for _, obj := range listingRecords(raw) {
		if taken >= quota {
			break
		}
		rec, ok := ParseRecord(obj)
		if !ok {
			continue
		}
		item, ok := toItem(rec, kind, n.baseURL)
		if !ok {
			continue
		}
		items = append(items, item)
		taken++
	}
	return items
}

func formatTimestamp(epoch int64) string {
	return time.Unix(epoch, 0).UTC().Format(timestampLayout)
}

// absolutePermalink resolves a record permalink into an absolute URL
func absolutePermalink(permalink, baseURL string) (string, bool) {
	if permalink == "" {
		return "", false
	}
	if validate.IsAbsoluteURL(permalink) {
		return permalink, true
	}
	if !strings.HasPrefix(permalink, "/") {
		return "", false
	}
	link := baseURL + permalink
	if !validate.IsAbsoluteURL(link) {
		return "", false
	}
	return link, true
}
