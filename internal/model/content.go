package model

// ContentKind classifies an authored content item
type ContentKind string

const (
	KindPost    ContentKind = "post"    // Submitted link or self post
	KindComment ContentKind = "comment" // Comment on someone else's post
)

// ContentItem is one normalized post or comment authored by the subject.
// Items are created once by the normalizer and never modified afterwards.
type ContentItem struct {
	Title     string      `json:"title"`     // Synthesized as "Comment in r/<origin>" for comments
	Content   string      `json:"content"`   // Raw text body, may be empty
	Origin    string      `json:"origin"`    // Subreddit name
	Score     int         `json:"score"`     // Net votes, may be negative
	Timestamp string      `json:"timestamp"` // ISO-8601 creation time (UTC)
	Permalink string      `json:"permalink"` // Absolute URL
	Kind      ContentKind `json:"kind"`      // post or comment
}

// CommentTitle returns the synthesized title used for comment items
func CommentTitle(origin string) string {
	if origin == "" {
		origin = "unknown"
	}
	return "Comment in r/" + origin
}
