package llm

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ppiankov/persona/internal/model"
	"github.com/stretchr/testify/assert"
)

func samplePost() model.ContentItem {
	return model.ContentItem{
		Title:     "My homelab build",
		Content:   "Finally racked the new server",
		Origin:    "homelab",
		Score:     42,
		Timestamp: "2025-07-14T13:33:20",
		Permalink: "https://www.reddit.com/r/homelab/comments/abc/",
		Kind:      model.KindPost,
	}
}

func sampleComment() model.ContentItem {
	return model.ContentItem{
		Title:     model.CommentTitle("golang"),
		Content:   "Use context everywhere",
		Origin:    "golang",
		Score:     -3,
		Timestamp: "2025-07-15T08:00:00",
		Permalink: "https://www.reddit.com/r/golang/comments/def/_/ghi/",
		Kind:      model.KindComment,
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	items := []model.ContentItem{samplePost(), sampleComment()}

	first := BuildPrompt(items, "spez")
	second := BuildPrompt(items, "spez")

	assert.Equal(t, first, second)
}

func TestBuildPrompt_ItemBlocks(t *testing.T) {
	prompt := BuildPrompt([]model.ContentItem{samplePost(), sampleComment()}, "spez")

	sep := strings.Repeat("-", 50)
	wantPost := "[POST] in r/homelab\n" +
		"Title: My homelab build\n" +
		"Content: Finally racked the new server\n" +
		"Score: 42\n" +
		"Timestamp: 2025-07-14T13:33:20\n" +
		sep + "\n"
	wantComment := "[COMMENT] in r/golang\n" +
		"Title: Comment in r/golang\n" +
		"Content: Use context everywhere\n" +
		"Score: -3\n" +
		"Timestamp: 2025-07-15T08:00:00\n" +
		sep + "\n"

	assert.Contains(t, prompt, wantPost+"\n"+wantComment)
	assert.Contains(t, prompt, "from user 'spez'")
	assert.Less(t, strings.Index(prompt, "[POST]"), strings.Index(prompt, "[COMMENT]"))
}

func TestBuildPrompt_NamesEveryAttribute(t *testing.T) {
	prompt := BuildPrompt(nil, "spez")

	for _, attr := range model.Attributes {
		assert.Contains(t, prompt, `"`+string(attr)+`"`, "prompt should request %s", attr)
	}
}

func TestBuildPrompt_EmptyItems(t *testing.T) {
	prompt := BuildPrompt(nil, "spez")

	assert.Contains(t, prompt, "Reddit Content:\n\n\nRespond")
}

func TestBuildPrompt_TruncatesContent(t *testing.T) {
	item := samplePost()
	item.Content = strings.Repeat("é", 20000)

	prompt := BuildPrompt([]model.ContentItem{item}, "spez")

	start := strings.Index(prompt, "Reddit Content:\n") + len("Reddit Content:\n")
	end := strings.Index(prompt, "\n\nRespond with ONLY")
	if start < 0 || end < start {
		t.Fatalf("could not locate content section")
	}
	content := prompt[start:end]

	assert.Equal(t, MaxContentChars, utf8.RuneCountInString(content))
	assert.True(t, utf8.ValidString(content))
	assert.True(t, strings.HasPrefix(content, "[POST] in r/homelab\n"))
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"ascii", "abcdef", 3, "abc"},
		{"multibyte", "héllo", 2, "hé"},
		{"multibyte fits bytes check", "ééé", 3, "ééé"},
		{"zero", "abc", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncateRunes(tt.in, tt.n))
		})
	}
}
