package extract

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/ppiankov/persona/internal/model"
	"golang.org/x/net/html"
)

// Record is one raw source record after boundary parsing.
// Every field has an explicit default; nothing is looked up dynamically later.
type Record struct {
	Title      string
	Body       string
	Subreddit  string
	Score      int
	CreatedUTC int64
	Permalink  string
}

// ParseRecord converts an untrusted decoded JSON object into a Record.
// It returns false only when the value is not an object at all.
func ParseRecord(raw map[string]any) (Record, bool) {
	if raw == nil {
		return Record{}, false
	}

	rec := Record{
		Title:      stringField(raw, "title"),
		Subreddit:  stringField(raw, "subreddit"),
		Score:      int(numberField(raw, "score")),
		CreatedUTC: int64(numberField(raw, "created_utc")),
		Permalink:  strings.TrimSpace(stringField(raw, "permalink")),
	}

	// Posts carry selftext, comments carry body; fall back to rendered HTML
	rec.Body = stringField(raw, "selftext")
	if rec.Body == "" {
		rec.Body = stringField(raw, "body")
	}
	if rec.Body == "" {
		rec.Body = htmlText(stringField(raw, "selftext_html"))
	}
	if rec.Body == "" {
		rec.Body = htmlText(stringField(raw, "body_html"))
	}

	return rec, true
}

// listingRecords walks a decoded listing and returns the record objects in order.
// Accepts {"data":{"children":[...]}}, a bare children array, or a bare record array.
func listingRecords(raw any) []map[string]any {
	var children []any

	switch v := raw.(type) {
	case map[string]any:
		data, _ := v["data"].(map[string]any)
		if data == nil {
			return nil
		}
		children, _ = data["children"].([]any)
	case []any:
		children = v
	default:
		return nil
	}

	records := make([]map[string]any, 0, len(children))
	for _, child := range children {
		obj, ok := child.(map[string]any)
		if !ok {
			continue
		}
		if inner, ok := obj["data"].(map[string]any); ok {
			records = append(records, inner)
			continue
		}
		records = append(records, obj)
	}
	return records
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

// numberField reads JSON numbers and numeric strings; anything else is 0
func numberField(raw map[string]any, key string) float64 {
	var f float64
	switch v := raw[key].(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		f, _ = v.Float64()
	case string:
		f, _ = strconv.ParseFloat(strings.TrimSpace(v), 64)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// htmlText returns the visible text of an HTML fragment.
// Reddit escapes its *_html fields, so entities are unescaped first.
func htmlText(fragment string) string {
	if fragment == "" {
		return ""
	}
	fragment = html.UnescapeString(fragment)

	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return ""
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(parts, " ")
}

// toItem builds a ContentItem from a parsed record, or reports false when
// no absolute permalink can be derived
func toItem(rec Record, kind model.ContentKind, baseURL string) (model.ContentItem, bool) {
	link, ok := absolutePermalink(rec.Permalink, baseURL)
	if !ok {
		return model.ContentItem{}, false
	}

	title := rec.Title
	if kind == model.KindComment {
		title = model.CommentTitle(rec.Subreddit)
	}

	return model.ContentItem{
		Title:     title,
		Content:   rec.Body,
		Origin:    rec.Subreddit,
		Score:     rec.Score,
		Timestamp: formatTimestamp(rec.CreatedUTC),
		Permalink: link,
		Kind:      kind,
	}, true
}
