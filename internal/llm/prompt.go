package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/persona/internal/model"
)

// MaxContentChars bounds the item text embedded in the prompt
const MaxContentChars = 8000

// itemSeparator closes every item block
var itemSeparator = strings.Repeat("-", 50)

// promptTemplate is filled with the subject name and the truncated item text.
// The JSON shape it asks for is what ParseReply expects.
const promptTemplate = `Analyze the following Reddit posts and comments from user '%s' and create a comprehensive user persona.

Based on the content, extract information about:
1. Age range (e.g., "18-25", "26-35", "36-45", etc.)
2. Likely occupation or field of work
3. Interests and hobbies
4. Personality traits
5. Values and beliefs
6. Goals and aspirations
7. Pain points and challenges
8. Communication style (formal, casual, technical, etc.)
9. Activity level on Reddit (active, moderate, occasional)
10. Technical proficiency level

Reddit Content:
%s

Respond with ONLY a single JSON object, with no text before or after it, using exactly these keys:
{
    "age_range": "estimated age range",
    "occupation": "likely occupation or field",
    "interests": ["interest1", "interest2", ...],
    "personality_traits": ["trait1", "trait2", ...],
    "values": ["value1", "value2", ...],
    "goals": ["goal1", "goal2", ...],
    "pain_points": ["pain1", "pain2", ...],
    "communication_style": "description of communication style",
    "activity_level": "activity level description",
    "technical_proficiency": "technical skill level"
}`

// BuildPrompt serializes items into the analysis request for subject.
// Output is byte-identical for identical input.
func BuildPrompt(items []model.ContentItem, subject string) string {
	blocks := make([]string, 0, len(items))
	for _, item := range items {
		blocks = append(blocks, formatItem(item))
	}

	content := truncateRunes(strings.Join(blocks, "\n"), MaxContentChars)

	return fmt.Sprintf(promptTemplate, subject, content)
}

func formatItem(item model.ContentItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] in r/%s\n", strings.ToUpper(string(item.Kind)), item.Origin)
	fmt.Fprintf(&b, "Title: %s\n", item.Title)
	fmt.Fprintf(&b, "Content: %s\n", item.Content)
	fmt.Fprintf(&b, "Score: %d\n", item.Score)
	fmt.Fprintf(&b, "Timestamp: %s\n", item.Timestamp)
	b.WriteString(itemSeparator)
	b.WriteString("\n")
	return b.String()
}

// truncateRunes keeps the first n characters of s without splitting a UTF-8 sequence
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
