// Package brief assembles the merged instruction document that conditions the
// generative model: writing-style and genre directives, voice lock, technical
// controls, one-shot style match, retrieved exemplars, and story canon, under
// a fixed priority ordering.
package brief

import (
	"fmt"
	"strings"

	"olivetti/internal/vault"
)

// WritingStyle selects the primary prose directive. The set is closed;
// unknown names are rejected at parse time.
type WritingStyle string

const (
	StyleNarrative   WritingStyle = "NARRATIVE"
	StyleDescriptive WritingStyle = "DESCRIPTIVE"
	StyleEmotional   WritingStyle = "EMOTIONAL"
	StyleLyrical     WritingStyle = "LYRICAL"
)

// ParseWritingStyle converts a style name into a WritingStyle.
// Matching is case-insensitive.
func ParseWritingStyle(s string) (WritingStyle, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NARRATIVE":
		return StyleNarrative, nil
	case "DESCRIPTIVE":
		return StyleDescriptive, nil
	case "EMOTIONAL":
		return StyleEmotional, nil
	case "LYRICAL":
		return StyleLyrical, nil
	}
	return "", fmt.Errorf("unknown writing style %q (expected Narrative, Descriptive, Emotional, or Lyrical)", s)
}

// styleGuide holds the prose-level directive for each writing style.
var styleGuide = map[WritingStyle]string{
	StyleNarrative:   "Narrative clarity, clean cause and effect, confident pacing. Prioritize story logic and readability.",
	StyleDescriptive: "Sensory precision, spatial clarity, vivid concrete nouns, controlled detail density (no purple bloat).",
	StyleEmotional:   "Interior depth, subtext, emotional specificity. Show the feeling through behavior, sensation, and thought.",
	StyleLyrical:     "Rhythm, musical syntax, image-forward language, elegant metaphor with restraint. Make prose sing without obscuring meaning.",
}

// StyleDirective returns the directive paragraph for a style, the lane name
// when provided, and an intensity-banded stylization modifier.
func StyleDirective(style WritingStyle, intensity float64, lane vault.Lane) string {
	base := styleGuide[style]

	var mod string
	switch {
	case intensity <= 0.33:
		mod = "Keep it subtle and controlled. Minimal overt stylization."
	case intensity <= 0.66:
		mod = "Medium stylization. Let the style clearly shape diction and cadence."
	default:
		mod = "High stylization. Strong stylistic fingerprint, but still professional and coherent."
	}

	result := base
	if lane != "" {
		result += fmt.Sprintf("\nLane: %s", lane)
	}
	result += "\n" + mod
	return result
}

// Genre influences the brief with one sentence of guidance. Unlike writing
// styles this is an open set: an unknown genre contributes no directive and
// is not an error. That fallthrough is intentional, not a bug.
type Genre string

const (
	GenreLiterary   Genre = "Literary"
	GenreCommercial Genre = "Commercial"
	GenreThriller   Genre = "Thriller"
	GenreRomance    Genre = "Romance"
	GenreFantasy    Genre = "Fantasy"
	GenreSciFi      Genre = "SciFi"
)

var genreNotes = map[Genre]string{
	GenreLiterary:   "Prioritize literary prose with elevated language, metaphor, and emotional depth.",
	GenreCommercial: "Focus on clarity, accessibility, and forward momentum. Avoid purple prose.",
	GenreThriller:   "Emphasize tension, urgency, and short punchy sentences. Keep pacing tight.",
	GenreRomance:    "Heighten emotional intimacy, sensory details, and character connection.",
	GenreFantasy:    "Balance worldbuilding exposition with immersive sensory grounding.",
	GenreSciFi:      "Integrate technical concepts naturally. Avoid infodumps.",
}

// Notes returns the genre guidance sentence, or "" for unknown genres.
func (g Genre) Notes() string {
	return genreNotes[g]
}

// TemperatureFromIntensity maps AI intensity (0.0-1.0) to generation
// temperature (0.1-1.1) on a cubic curve, so low and mid intensities stay
// conservative and only the top of the range gets aggressive.
//
//	0.25 -> 0.12   0.50 -> 0.23   0.75 -> 0.52   1.00 -> 1.10
func TemperatureFromIntensity(x float64) float64 {
	x = clamp01(x)
	return 0.1 + 1.0*(x*x*x)
}

// IntensityDescription returns the human-readable band for an intensity.
func IntensityDescription(x float64) string {
	switch {
	case x < 0.4:
		return "LOW (predictable, minimal creativity)"
	case x < 0.7:
		return "MEDIUM (balanced creativity)"
	default:
		return "HIGH (creative, exploratory)"
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
