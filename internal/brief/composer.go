package brief

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"olivetti/internal/logging"
	"olivetti/internal/retrieval"
	"olivetti/internal/vault"
)

const (
	separator = "============================================================"

	// matchSampleLimit caps how much of the style-match sample is quoted.
	matchSampleLimit = 2000

	// layerThreshold is the minimum intensity for the lock and match layers
	// to appear in the brief at all.
	layerThreshold = 0.3
)

// Settings bundles every independently toggleable directive layer for one
// composition call. Intensities are clamped to [0,1] by Normalize.
type Settings struct {
	Intensity      float64      `yaml:"intensity"`
	Style          WritingStyle `yaml:"style"`
	StyleIntensity float64      `yaml:"style_intensity"`
	Genre          Genre        `yaml:"genre"`

	TrainedVoice bool   `yaml:"trained_voice"`
	VoiceName    string `yaml:"voice_name"`

	StyleBank bool   `yaml:"style_bank"`
	BankName  string `yaml:"bank_name"`

	Match          bool    `yaml:"match"`
	MatchText      string  `yaml:"match_text"`
	MatchIntensity float64 `yaml:"match_intensity"`

	Lock          bool    `yaml:"lock"`
	LockText      string  `yaml:"lock_text"`
	LockIntensity float64 `yaml:"lock_intensity"`

	Technical          bool    `yaml:"technical"`
	POV                string  `yaml:"pov"`
	Tense              string  `yaml:"tense"`
	TechnicalIntensity float64 `yaml:"technical_intensity"`
}

// DefaultSettings mirrors the defaults a fresh project starts with.
func DefaultSettings() Settings {
	return Settings{
		Intensity:          0.5,
		Style:              StyleNarrative,
		StyleIntensity:     0.5,
		Genre:              GenreLiterary,
		MatchIntensity:     0.5,
		LockIntensity:      0.8,
		POV:                "Close Third",
		Tense:              "Past",
		TechnicalIntensity: 0.5,
	}
}

// Normalize clamps intensities into range and fills zero-value selectors.
func (s *Settings) Normalize() {
	s.Intensity = clamp01(s.Intensity)
	s.StyleIntensity = clamp01(s.StyleIntensity)
	s.MatchIntensity = clamp01(s.MatchIntensity)
	s.LockIntensity = clamp01(s.LockIntensity)
	s.TechnicalIntensity = clamp01(s.TechnicalIntensity)
	if s.Style == "" {
		s.Style = StyleNarrative
	}
}

// Summary returns a compact status line showing which controls are active.
func (s Settings) Summary() string {
	var active []string

	x := clamp01(s.Intensity)
	label := "LOW"
	switch {
	case x >= 0.7:
		label = "HIGH"
	case x >= 0.4:
		label = "MID"
	}
	active = append(active, "AI:"+label)
	active = append(active, fmt.Sprintf("Style:%s", s.Style))
	active = append(active, fmt.Sprintf("Genre:%s", s.Genre))

	if s.TrainedVoice && s.VoiceName != "" {
		active = append(active, "Voice:"+s.VoiceName)
	}
	if s.StyleBank && s.BankName != "" {
		active = append(active, "Bank:"+s.BankName)
	}
	if s.Match {
		active = append(active, fmt.Sprintf("Match:%.0f%%", clamp01(s.MatchIntensity)*100))
	}
	if s.Lock {
		active = append(active, fmt.Sprintf("Lock:%.0f%%", clamp01(s.LockIntensity)*100))
	}
	if s.Technical {
		active = append(active, fmt.Sprintf("Tech:%s/%s", s.POV, s.Tense))
	}

	return strings.Join(active, " | ")
}

// Context carries the resolved inputs for one pure composition: the settings
// plus whatever the retrieval layer and canon source produced. Layers are
// recomputed on every call; nothing here outlives the brief.
type Context struct {
	Settings       Settings
	VoiceExemplars []string
	StyleExemplars []string
	CanonText      string
}

// Brief is the assembled instruction document plus the generation temperature
// derived from AI intensity. The temperature is informational output; the
// composer never invokes the model itself.
type Brief struct {
	Text        string
	Temperature float64
}

// Compose assembles the full brief from pre-resolved inputs. Every block is
// independently omittable; missing optional context leaves no trace. The
// block order is a contract: later sections read as higher priority to the
// model, and the closing checklist restates that precedence.
func Compose(action string, lane vault.Lane, ctx Context) Brief {
	timer := logging.StartTimer(logging.CategoryBrief, "Compose")
	defer timer.Stop()

	s := ctx.Settings
	s.Normalize()

	temp := TemperatureFromIntensity(s.Intensity)

	var parts []string
	add := func(lines ...string) { parts = append(parts, lines...) }

	// Header
	add(separator)
	add("OLIVETTI CREATIVE EDITING PARTNER - AI BRIEF")
	add(separator)
	add(fmt.Sprintf("Action: %s", action))
	add(fmt.Sprintf("Lane: %s", lane))
	add(fmt.Sprintf("AI Intensity: %.2f (%s) -> Temperature: %.2f", s.Intensity, IntensityDescription(s.Intensity), temp))
	add("")

	// Core mission
	add("CORE MISSION:")
	add("You are Olivetti, a professional creative editing partner.")
	add(fmt.Sprintf("Current action: %s", action))
	add(fmt.Sprintf("Target lane: %s (adjust tone/pacing accordingly)", lane))
	add("")

	// Writing style
	add("WRITING STYLE:")
	add(fmt.Sprintf("Primary: %s", s.Style))
	add(StyleDirective(s.Style, s.StyleIntensity, lane))
	add("")

	// Genre influence
	if notes := s.Genre.Notes(); notes != "" {
		add("GENRE INFLUENCE:")
		add(fmt.Sprintf("%s: %s", s.Genre, notes))
		add("")
	}

	// Voice lock: highest priority, mandatory constraints
	lockText := strings.TrimSpace(s.LockText)
	if s.Lock && lockText != "" && s.LockIntensity > layerThreshold {
		add(separator)
		add("VOICE LOCK - MANDATORY CONSTRAINTS")
		add(separator)
		add(fmt.Sprintf("Enforcement Level: %.0f%%", s.LockIntensity*100))
		add("")
		add(lockText)
		add("")
		if s.LockIntensity > 0.7 {
			add("CRITICAL: Reject any output that violates these constraints.")
		}
		add(separator)
		add("")
	}

	// Technical controls
	if s.Technical {
		add(fmt.Sprintf("TECHNICAL CONTROLS (Enforcement: %.0f%%):", s.TechnicalIntensity*100))
		add(fmt.Sprintf("- Point of View: %s", s.POV))
		add(fmt.Sprintf("- Tense: %s", s.Tense))
		switch {
		case s.TechnicalIntensity > 0.7:
			add("STRICT: Reject any output that violates POV/Tense.")
		case s.TechnicalIntensity > 0.4:
			add("MODERATE: Prefer consistency but allow flexibility.")
		default:
			add("LOOSE: Use as guideline only.")
		}
		add("")
	}

	// Match my style: one-shot adaptation
	matchText := strings.TrimSpace(s.MatchText)
	if s.Match && matchText != "" && s.MatchIntensity > layerThreshold {
		add(separator)
		add("MATCH MY STYLE - ONE-SHOT ADAPTATION")
		add(separator)
		add(fmt.Sprintf("Match Intensity: %.0f%%", s.MatchIntensity*100))
		add("")
		add("Analyze and replicate these patterns:")
		add(truncateRunes(matchText, matchSampleLimit))
		add("")
		switch {
		case s.MatchIntensity > 0.7:
			add("HIGH INTENSITY: Closely mimic sentence structure, rhythm, and vocabulary.")
		case s.MatchIntensity > 0.4:
			add("MEDIUM INTENSITY: Adapt general patterns while maintaining flexibility.")
		default:
			add("LOW INTENSITY: Use as subtle influence only.")
		}
		add(separator)
		add("")
	}

	// Trained voice exemplars (mixed-lane retrieval)
	if len(ctx.VoiceExemplars) > 0 {
		add(separator)
		add("TRAINED VOICE - SEMANTIC EXAMPLES")
		add(separator)
		add(fmt.Sprintf("Voice: %s", s.VoiceName))
		add(fmt.Sprintf("Lane: %s", lane))
		add("")
		for i, ex := range ctx.VoiceExemplars {
			if i >= retrieval.MixedLimit {
				break
			}
			add(fmt.Sprintf("Example %d:", i+1))
			add(ex)
			add("")
		}
		add("INSTRUCTION: Emulate these patterns in your output.")
		add(separator)
		add("")
	}

	// Style bank exemplars (top-k retrieval)
	if len(ctx.StyleExemplars) > 0 {
		add(separator)
		add("STYLE EXEMPLARS - TRAINED PATTERNS")
		add(separator)
		add(fmt.Sprintf("Style Bank: %s", s.BankName))
		add(fmt.Sprintf("Lane: %s", lane))
		add("")
		for i, ex := range ctx.StyleExemplars {
			add(fmt.Sprintf("Exemplar %d:", i+1))
			add(ex)
			add("")
		}
		add("INSTRUCTION: Learn from these writing patterns.")
		add(separator)
		add("")
	}

	// Story bible canon
	if strings.TrimSpace(ctx.CanonText) != "" {
		add(separator)
		add("STORY BIBLE - CANON ENFORCEMENT")
		add(separator)
		add(ctx.CanonText)
		add("")
		add("INSTRUCTION: Maintain consistency with established canon.")
		add(separator)
		add("")
	}

	// Execution priority footer
	add(separator)
	add("EXECUTION INSTRUCTIONS")
	add(separator)
	add("1. Apply Voice Lock constraints FIRST (mandatory)")
	add("2. Respect Technical Controls (POV/Tense)")
	add("3. Match provided style examples when available")
	add("4. Maintain Story Bible canon consistency")
	add("5. Apply Writing Style and Genre Influence")
	add("6. Output professional prose ready for publication")
	add(separator)

	return Brief{
		Text:        strings.Join(parts, "\n"),
		Temperature: temp,
	}
}

// Composer owns the two exemplar stores and resolves retrieval before
// delegating to Compose. Construct one per session/project and thread it
// through calls; there is no ambient shared state.
type Composer struct {
	voices *vault.Store
	banks  *vault.Store
}

// NewComposer creates a composer over a voice vault and a style bank.
// Either store may be empty; retrieval misses simply omit their layer.
func NewComposer(voices, banks *vault.Store) *Composer {
	return &Composer{voices: voices, banks: banks}
}

// Compose resolves exemplar retrieval and canon, then assembles the brief.
// The two retrievals are independent and run concurrently. The only error
// condition is context cancellation; every lookup miss degrades to an
// omitted layer.
func (c *Composer) Compose(ctx context.Context, action string, lane vault.Lane, draft string, settings Settings, canon *StoryBible) (Brief, error) {
	settings.Normalize()

	var (
		voiceExemplars []string
		styleExemplars []string
	)

	g, gctx := errgroup.WithContext(ctx)

	if settings.TrainedVoice && settings.VoiceName != "" {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			voiceExemplars = retrieval.Texts(retrieval.Mixed(c.voices, settings.VoiceName, lane, draft))
			return nil
		})
	}

	if settings.StyleBank && settings.BankName != "" {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			styleExemplars = retrieval.Texts(retrieval.TopK(c.banks, settings.BankName, lane, draft, retrieval.DefaultTopK))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Brief{}, err
	}

	logging.BriefDebug("compose action=%s lane=%s voice=%d style=%d", action, lane, len(voiceExemplars), len(styleExemplars))

	return Compose(action, lane, Context{
		Settings:       settings,
		VoiceExemplars: voiceExemplars,
		StyleExemplars: styleExemplars,
		CanonText:      canon.ContextText(),
	}), nil
}

// truncateRunes limits s to n runes without splitting a multibyte character.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
