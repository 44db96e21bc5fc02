package brief

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olivetti/internal/vault"
)

func TestParseWritingStyle(t *testing.T) {
	tests := []struct {
		in      string
		want    WritingStyle
		wantErr bool
	}{
		{"NARRATIVE", StyleNarrative, false},
		{"narrative", StyleNarrative, false},
		{"  Lyrical  ", StyleLyrical, false},
		{"Descriptive", StyleDescriptive, false},
		{"EMOTIONAL", StyleEmotional, false},
		{"poetic", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWritingStyle(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStyleDirective(t *testing.T) {
	t.Run("includes the style guide text", func(t *testing.T) {
		got := StyleDirective(StyleLyrical, 0.5, vault.LaneNarration)
		assert.Contains(t, got, "Make prose sing")
	})

	t.Run("intensity bands select the stylization modifier", func(t *testing.T) {
		assert.Contains(t, StyleDirective(StyleNarrative, 0.2, ""), "subtle and controlled")
		assert.Contains(t, StyleDirective(StyleNarrative, 0.33, ""), "subtle and controlled")
		assert.Contains(t, StyleDirective(StyleNarrative, 0.5, ""), "Medium stylization")
		assert.Contains(t, StyleDirective(StyleNarrative, 0.66, ""), "Medium stylization")
		assert.Contains(t, StyleDirective(StyleNarrative, 0.9, ""), "High stylization")
	})

	t.Run("lane appears when provided", func(t *testing.T) {
		assert.Contains(t, StyleDirective(StyleNarrative, 0.5, vault.LaneDialogue), "Lane: Dialogue")
		assert.NotContains(t, StyleDirective(StyleNarrative, 0.5, ""), "Lane:")
	})
}

func TestGenreNotes(t *testing.T) {
	t.Run("known genres have guidance", func(t *testing.T) {
		for _, g := range []Genre{GenreLiterary, GenreCommercial, GenreThriller, GenreRomance, GenreFantasy, GenreSciFi} {
			assert.NotEmpty(t, g.Notes(), "genre %s", g)
		}
	})

	t.Run("unknown genre contributes nothing", func(t *testing.T) {
		assert.Empty(t, Genre("Western").Notes())
		assert.Empty(t, Genre("").Notes())
	})
}

func TestTemperatureFromIntensity(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.0, 0.1},
		{0.25, 0.1 + 0.015625},
		{0.5, 0.1 + 0.125},
		{0.75, 0.1 + 0.421875},
		{1.0, 1.1},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, TemperatureFromIntensity(tt.in), 1e-9, "intensity %v", tt.in)
	}

	t.Run("clamps out-of-range input", func(t *testing.T) {
		assert.InDelta(t, 0.1, TemperatureFromIntensity(-2), 1e-9)
		assert.InDelta(t, 1.1, TemperatureFromIntensity(5), 1e-9)
	})
}

func TestIntensityDescription(t *testing.T) {
	assert.True(t, strings.HasPrefix(IntensityDescription(0.1), "LOW"))
	assert.True(t, strings.HasPrefix(IntensityDescription(0.39), "LOW"))
	assert.True(t, strings.HasPrefix(IntensityDescription(0.4), "MEDIUM"))
	assert.True(t, strings.HasPrefix(IntensityDescription(0.69), "MEDIUM"))
	assert.True(t, strings.HasPrefix(IntensityDescription(0.7), "HIGH"))
	assert.True(t, strings.HasPrefix(IntensityDescription(1.0), "HIGH"))
}
