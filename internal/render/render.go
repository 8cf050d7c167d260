// Package render formats personas as text, JSON or YAML and writes them to disk.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/persona/internal/model"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by Render and Save
const (
	FormatText = "txt"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const (
	rule            = "============================================================"
	generatedLayout = "2006-01-02 15:04:05"
)

// Formats lists the supported output formats
var Formats = []string{FormatText, FormatJSON, FormatYAML}

// ParseFormat normalizes a user-supplied format name
func ParseFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q (supported: %s)", format, strings.Join(Formats, ", "))
	}
}

// Text renders the human-readable persona report
func Text(p *model.Persona, generatedAt time.Time) string {
	var b strings.Builder

	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteString("\n")
	}
	bullets := func(heading string, items []string) {
		line("%s:", heading)
		for _, item := range items {
			line("• %s", item)
		}
		line("")
	}

	line(rule)
	line("USER PERSONA: %s", p.Name)
	line(rule)
	line("")

	line("DEMOGRAPHICS:")
	line("• Age Range: %s", p.AgeRange)
	line("• Occupation: %s", p.Occupation)
	line("")

	bullets("INTERESTS", p.Interests)
	bullets("PERSONALITY TRAITS", p.PersonalityTraits)
	bullets("VALUES", p.Values)
	bullets("GOALS", p.Goals)
	bullets("PAIN POINTS", p.PainPoints)

	line("COMMUNICATION & ACTIVITY:")
	line("• Communication Style: %s", p.PreferredCommunicationStyle)
	line("• Activity Level: %s", p.ActivityLevel)
	line("• Technical Proficiency: %s", p.TechnicalProficiency)
	line("")

	line("CITATIONS:")
	line("(Sources used to derive persona characteristics)")
	line("")

	// Canonical attribute order keeps the output stable across runs
	for _, attr := range model.Attributes {
		urls := p.Citations[attr]
		if len(urls) == 0 {
			continue
		}
		line("%s:", strings.ToUpper(strings.ReplaceAll(string(attr), "_", " ")))
		for _, url := range urls {
			line("  - %s", url)
		}
		line("")
	}

	line(rule)
	line("Generated on: %s", generatedAt.Format(generatedLayout))
	b.WriteString(rule)

	return b.String()
}

// JSON renders the persona as indented JSON
func JSON(p *model.Persona) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal persona: %w", err)
	}
	return append(data, '\n'), nil
}

// YAML renders the persona as YAML
func YAML(p *model.Persona) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("marshal persona: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal persona: %w", err)
	}
	return buf.Bytes(), nil
}

// Renderer writes persona files. The clock is injectable for tests.
type Renderer struct {
	now func() time.Time
}

// NewRenderer creates a renderer using the wall clock
func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// Render formats p in the given format
func (r *Renderer) Render(p *model.Persona, format string) ([]byte, error) {
	format, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatJSON:
		return JSON(p)
	case FormatYAML:
		return YAML(p)
	default:
		return []byte(Text(p, r.now())), nil
	}
}

// FileName returns the output file name for p in the given format
func FileName(p *model.Persona, format string) string {
	return fmt.Sprintf("%s_persona.%s", p.Name, format)
}

// Save writes p to <dir>/<name>_persona.<ext>, creating dir if needed,
// and returns the written path
func (r *Renderer) Save(p *model.Persona, dir, format string) (string, error) {
	format, err := ParseFormat(format)
	if err != nil {
		return "", err
	}

	data, err := r.Render(p, format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, FileName(p, format))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write persona: %w", err)
	}

	return path, nil
}
