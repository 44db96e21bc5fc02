package brief

import (
	"crypto/md5"
	"fmt"
	"strings"
	"time"
)

// StoryBible holds a project's canon: the narrative-consistency facts the
// model must not contradict. All sections are optional free text.
type StoryBible struct {
	Synopsis        string `yaml:"synopsis"`
	GenreStyleNotes string `yaml:"genre_style_notes"`
	World           string `yaml:"world"`
	Characters      string `yaml:"characters"`
	Outline         string `yaml:"outline"`
}

// canonSection pairs a display label with a section accessor, in the fixed
// order sections appear in briefs and exports.
type canonSection struct {
	label   string
	heading string
	content func(*StoryBible) string
}

var canonSections = []canonSection{
	{"SYNOPSIS", "Synopsis", func(sb *StoryBible) string { return sb.Synopsis }},
	{"GENRE & STYLE", "Genre & Style Notes", func(sb *StoryBible) string { return sb.GenreStyleNotes }},
	{"WORLD", "World", func(sb *StoryBible) string { return sb.World }},
	{"CHARACTERS", "Characters", func(sb *StoryBible) string { return sb.Characters }},
	{"OUTLINE", "Outline", func(sb *StoryBible) string { return sb.Outline }},
}

// ContextText assembles the canon text included in briefs: each non-empty
// section prefixed with its uppercase label, joined by blank lines. An empty
// bible yields "".
func (sb *StoryBible) ContextText() string {
	if sb == nil {
		return ""
	}

	var sections []string
	for _, sec := range canonSections {
		content := strings.TrimSpace(sec.content(sb))
		if content != "" {
			sections = append(sections, sec.label+":\n"+content)
		}
	}
	return strings.Join(sections, "\n\n")
}

// IsEmpty reports whether every section is blank.
func (sb *StoryBible) IsEmpty() bool {
	return sb.ContextText() == ""
}

// Fingerprint returns a short content hash used for change detection.
func (sb *StoryBible) Fingerprint() string {
	parts := make([]string, 0, len(canonSections))
	for _, sec := range canonSections {
		parts = append(parts, strings.TrimSpace(sec.content(sb)))
	}
	sum := md5.Sum([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%x", sum)[:12]
}

// Markdown renders the story bible as a markdown export.
func (sb *StoryBible) Markdown(title string, created, updated time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Story Bible: %s\n\n", title)
	fmt.Fprintf(&b, "*Created: %s*\n", created.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "*Updated: %s*\n\n", updated.UTC().Format(time.RFC3339))

	for _, sec := range canonSections {
		content := strings.TrimSpace(sec.content(sb))
		if content == "" {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", sec.heading, content)
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}
