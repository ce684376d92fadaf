// internal/game/config.go
//
// Difficulty configuration passed explicitly into the engine at
// construction. The engine never reads ambient/global settings.

package game

// Mode selects the difficulty behavior at puzzle start.
//   - "normal": a fraction of unique letters is pre-filled.
//   - "expert": no pre-fills.
type Mode string

const (
	ModeNormal Mode = "normal"
	ModeExpert Mode = "expert"
)

const (
	defaultPrefillFraction = 0.20
	defaultMaxMistakes     = 3
)

// DifficultyConfig is external input, never mutated by the engine.
type DifficultyConfig struct {
	Mode            Mode    `json:"mode"`
	PrefillFraction float64 `json:"prefillFraction"`
	MaxMistakes     int     `json:"maxMistakes"`
}

// DefaultConfig returns normal mode with a 20% pre-fill and 3 allowed
// mistakes.
func DefaultConfig() DifficultyConfig {
	return DifficultyConfig{
		Mode:            ModeNormal,
		PrefillFraction: defaultPrefillFraction,
		MaxMistakes:     defaultMaxMistakes,
	}
}

// normalized fills zero-valued fields with defaults so a partially
// specified config behaves sensibly.
func (c DifficultyConfig) normalized() DifficultyConfig {
	if c.Mode != ModeExpert {
		c.Mode = ModeNormal
	}
	if c.PrefillFraction <= 0 || c.PrefillFraction > 1 {
		c.PrefillFraction = defaultPrefillFraction
	}
	if c.MaxMistakes <= 0 {
		c.MaxMistakes = defaultMaxMistakes
	}
	return c
}
