package brief

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoryBibleContextText(t *testing.T) {
	t.Run("labels non-empty sections and joins with blank lines", func(t *testing.T) {
		sb := &StoryBible{
			Synopsis: "A clockmaker discovers her apprentice is a ghost.",
			World:    "Victorian Edinburgh, fog-bound.",
		}

		got := sb.ContextText()
		assert.Equal(t, "SYNOPSIS:\nA clockmaker discovers her apprentice is a ghost.\n\nWORLD:\nVictorian Edinburgh, fog-bound.", got)
	})

	t.Run("preserves the fixed section order", func(t *testing.T) {
		sb := &StoryBible{
			Outline:    "Act one.",
			Synopsis:   "Short.",
			Characters: "Mara.",
		}

		got := sb.ContextText()
		syn := indexOf(t, got, "SYNOPSIS:")
		chars := indexOf(t, got, "CHARACTERS:")
		outline := indexOf(t, got, "OUTLINE:")
		assert.Less(t, syn, chars)
		assert.Less(t, chars, outline)
	})

	t.Run("whitespace-only sections are skipped", func(t *testing.T) {
		sb := &StoryBible{Synopsis: "  \n\t "}
		assert.Empty(t, sb.ContextText())
	})

	t.Run("nil bible yields empty text", func(t *testing.T) {
		var sb *StoryBible
		assert.Empty(t, sb.ContextText())
	})
}

func TestStoryBibleIsEmpty(t *testing.T) {
	assert.True(t, (&StoryBible{}).IsEmpty())
	assert.False(t, (&StoryBible{GenreStyleNotes: "spare, cold"}).IsEmpty())
}

func TestStoryBibleFingerprint(t *testing.T) {
	a := &StoryBible{Synopsis: "one"}
	b := &StoryBible{Synopsis: "one"}
	c := &StoryBible{Synopsis: "two"}

	assert.Len(t, a.Fingerprint(), 12)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())

	t.Run("content moving between sections changes the hash", func(t *testing.T) {
		d := &StoryBible{World: "one"}
		assert.NotEqual(t, a.Fingerprint(), d.Fingerprint())
	})
}

func TestStoryBibleMarkdown(t *testing.T) {
	sb := &StoryBible{
		Synopsis:   "A heist goes sideways.",
		Characters: "Reyes, the safecracker.",
	}
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	updated := time.Date(2025, 3, 5, 18, 30, 0, 0, time.UTC)

	got := sb.Markdown("Sidelong", created, updated)

	assert.Contains(t, got, "# Story Bible: Sidelong")
	assert.Contains(t, got, "*Created: 2025-03-01T10:00:00Z*")
	assert.Contains(t, got, "*Updated: 2025-03-05T18:30:00Z*")
	assert.Contains(t, got, "## Synopsis\n\nA heist goes sideways.")
	assert.Contains(t, got, "## Characters\n\nReyes, the safecracker.")
	assert.NotContains(t, got, "## World")
}

func indexOf(t *testing.T, s, sub string) int {
	t.Helper()
	idx := strings.Index(s, sub)
	require.GreaterOrEqual(t, idx, 0, "missing %q", sub)
	return idx
}
