package extract

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/ppiankov/persona/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

// listing builds a Reddit-style listing with n records of the given kind
func listing(kind string, n int) any {
	children := make([]any, 0, n)
	for i := 0; i < n; i++ {
		data := map[string]any{
			"subreddit":   "golang",
			"score":       float64(i),
			"created_utc": float64(1700000000 + i),
			"permalink":   fmt.Sprintf("/r/golang/comments/%s%d/x/", kind, i),
		}
		if kind == "t3" {
			data["title"] = fmt.Sprintf("Post %d", i)
			data["selftext"] = fmt.Sprintf("post body %d", i)
		} else {
			data["body"] = fmt.Sprintf("comment body %d", i)
		}
		children = append(children, map[string]any{"kind": kind, "data": data})
	}
	return map[string]any{"kind": "Listing", "data": map[string]any{"children": children}}
}

func TestNormalize_Listing(t *testing.T) {
	posts := decode(t, `{"kind":"Listing","data":{"children":[
		{"kind":"t3","data":{"title":"My new job","selftext":"I work as a Software Developer","subreddit":"cscareerquestions","score":42,"created_utc":1752500000.0,"permalink":"/r/cscareerquestions/comments/a/my_new_job/"}}
	]}}`)
	comments := decode(t, `{"kind":"Listing","data":{"children":[
		{"kind":"t1","data":{"body":"Gaming is fun","subreddit":"test","score":-3,"created_utc":1752500100,"permalink":"/r/test/comments/b/x/c1/"}}
	]}}`)

	items := Normalize(posts, comments, 10)
	require.Len(t, items, 2)

	assert.Equal(t, model.ContentItem{
		Title:     "My new job",
		Content:   "I work as a Software Developer",
		Origin:    "cscareerquestions",
		Score:     42,
		Timestamp: "2025-07-14T13:33:20",
		Permalink: "https://www.reddit.com/r/cscareerquestions/comments/a/my_new_job/",
		Kind:      model.KindPost,
	}, items[0])

	assert.Equal(t, "Comment in r/test", items[1].Title)
	assert.Equal(t, "Gaming is fun", items[1].Content)
	assert.Equal(t, -3, items[1].Score)
	assert.Equal(t, model.KindComment, items[1].Kind)
	assert.Equal(t, "https://www.reddit.com/r/test/comments/b/x/c1/", items[1].Permalink)
}

func TestNormalize_Cap(t *testing.T) {
	for _, c := range []int{1, 2, 3, 7, 10, 100} {
		t.Run(fmt.Sprintf("cap=%d", c), func(t *testing.T) {
			items := Normalize(listing("t3", 60), listing("t1", 60), c)
			assert.LessOrEqual(t, len(items), c)

			var posts, comments int
			for _, it := range items {
				if it.Kind == model.KindPost {
					posts++
				} else {
					comments++
				}
			}
			assert.Equal(t, c/2, posts)
			assert.Equal(t, c/2, comments)
		})
	}
}

func TestNormalize_PreservesOrder(t *testing.T) {
	items := Normalize(listing("t3", 5), listing("t1", 5), 6)
	require.Len(t, items, 6)
	assert.Equal(t, "Post 0", items[0].Title)
	assert.Equal(t, "Post 2", items[2].Title)
	assert.Equal(t, "comment body 0", items[3].Content)
	assert.Equal(t, "comment body 2", items[5].Content)
}

func TestNormalize_EmptySources(t *testing.T) {
	assert.Empty(t, Normalize(nil, nil, 100))
	assert.NotNil(t, Normalize(nil, nil, 100))
	assert.Empty(t, Normalize(listing("t3", 3), nil, 0))
	assert.Empty(t, Normalize(listing("t3", 3), nil, -4))
	assert.Empty(t, Normalize("garbage", 42, 10))
	assert.Empty(t, Normalize(map[string]any{"data": "nope"}, map[string]any{}, 10))
}

func TestNormalize_SkipsItemsWithoutPermalink(t *testing.T) {
	posts := decode(t, `[
		{"data":{"title":"no link"}},
		{"data":{"title":"relative junk","permalink":"not-a-path"}},
		{"data":{"title":"ok","permalink":"/r/x/comments/1/ok/"}},
		{"data":{"title":"absolute","permalink":"https://old.reddit.com/r/x/comments/2/abs/"}}
	]`)

	items := Normalize(posts, nil, 4)
	require.Len(t, items, 2)
	assert.Equal(t, "ok", items[0].Title)
	assert.Equal(t, "https://old.reddit.com/r/x/comments/2/abs/", items[1].Permalink)
}

func TestNormalize_DefaultsMissingFields(t *testing.T) {
	comments := decode(t, `[{"permalink":"/r/x/comments/1/c/","score":"17"}]`)

	items := Normalize(nil, comments, 2)
	require.Len(t, items, 1)
	assert.Equal(t, "Comment in r/unknown", items[0].Title)
	assert.Equal(t, "", items[0].Content)
	assert.Equal(t, "", items[0].Origin)
	assert.Equal(t, 17, items[0].Score)
	assert.Equal(t, "1970-01-01T00:00:00", items[0].Timestamp)
}

func TestNormalize_CustomBaseURL(t *testing.T) {
	n := NewNormalizer("http://127.0.0.1:8080/")
	items := n.Normalize(listing("t3", 1), nil, 2)
	require.Len(t, items, 1)
	assert.Equal(t, "http://127.0.0.1:8080/r/golang/comments/t30/x/", items[0].Permalink)
}

func TestParseRecord_HTMLFallback(t *testing.T) {
	rec, ok := ParseRecord(map[string]any{
		"body":      "",
		"body_html": "&lt;div class=\"md\"&gt;&lt;p&gt;I love &lt;strong&gt;Programming&lt;/strong&gt;&lt;/p&gt;&lt;/div&gt;",
	})
	require.True(t, ok)
	assert.Equal(t, "I love Programming", rec.Body)
}

func TestParseRecord_WrongTypes(t *testing.T) {
	rec, ok := ParseRecord(map[string]any{
		"title":       42,
		"score":       []any{1},
		"created_utc": "not a number",
		"subreddit":   nil,
	})
	require.True(t, ok)
	assert.Equal(t, Record{}, rec)

	_, ok = ParseRecord(nil)
	assert.False(t, ok)
}
