package bramble

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config gathers every tunable constant of the engine. DefaultConfig returns
// the values the creature families were designed around; LoadConfig overlays
// a TOML document on top of them.
type Config struct {
	Tessellation TessellationConfig `toml:"tessellation"`
	Mask         MaskConfig         `toml:"mask"`
	Composite    CompositeConfig    `toml:"composite"`
	Growth       GrowthConfig       `toml:"growth"`
	Label        LabelConfig        `toml:"label"`
	Pair         PairConfig         `toml:"pair"`
}

// DensityRule selects a tessellation density for element keys containing Match.
type DensityRule struct {
	Match  string `toml:"match"`
	Points int    `toml:"points"`
}

// TessellationConfig picks how many points approximate each curve segment.
// It only affects rendering smoothness.
type TessellationConfig struct {
	Rules   []DensityRule `toml:"rules"`
	Unnamed int           `toml:"unnamed"` // density for an empty element key
	Default int           `toml:"default"`
}

// Density returns the number of curve-approximation points for key. The
// first rule whose Match is a substring of key wins.
func (c TessellationConfig) Density(key string) int {
	if key == "" {
		return c.Unnamed
	}
	for _, r := range c.Rules {
		if strings.Contains(key, r.Match) {
			return r.Points
		}
	}
	return c.Default
}

// MaskConfig controls mask variant selection and replica layout.
type MaskConfig struct {
	// Weights are the relative odds of Single, Grouped, SquareReplica and
	// RadialReplica, in that order. They need not sum to 1.
	Weights       []float64 `toml:"weights"`
	RadiusFactors []float64 `toml:"radius_factors"`
	CopyCounts    []int     `toml:"copy_counts"`
	ReplicaScale  float64   `toml:"replica_scale"`
}

// CompositeConfig controls the compositor's blur passes and default gradient.
type CompositeConfig struct {
	FillBlur    BlurParams     `toml:"fill_blur"`
	OverlayBlur BlurParams     `toml:"overlay_blur"`
	Gradient    GradientParams `toml:"gradient"`
}

// GrowthConfig holds the fixed delays of the growth and evolution sequences, in seconds.
type GrowthConfig struct {
	SettleDelay  float64 `toml:"settle_delay"`
	MirrorRegrow float64 `toml:"mirror_regrow"`
}

// LabelConfig styles the creature name label.
type LabelConfig struct {
	FontSize    float64 `toml:"font_size"`
	Scale       float64 `toml:"scale"`
	Stroke      Color   `toml:"stroke"`
	StrokeWidth float64 `toml:"stroke_width"`
	OffsetY     float64 `toml:"offset_y"`
}

// IntRange is an inclusive integer range.
type IntRange struct {
	Min int `toml:"min"`
	Max int `toml:"max"`
}

// PairConfig controls chain lengths of pair clusters.
type PairConfig struct {
	First  IntRange `toml:"first"`
	Second IntRange `toml:"second"`
	Skew   float64  `toml:"skew"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Tessellation: TessellationConfig{
			Rules: []DensityRule{
				{Match: "moss", Points: 3},
				{Match: "lichen", Points: 8},
			},
			Unnamed: 20,
			Default: 40,
		},
		Mask: MaskConfig{
			Weights:       []float64{1, 1, 1, 1},
			RadiusFactors: []float64{0, 0.25, 0.5, 1, 1.5, 2},
			CopyCounts:    []int{2, 4, 8},
			ReplicaScale:  0.5,
		},
		Composite: CompositeConfig{
			FillBlur:    BlurParams{Strength: 16, Quality: 8},
			OverlayBlur: BlurParams{Strength: 1, Quality: 2},
			Gradient:    DefaultGradient(),
		},
		Growth: GrowthConfig{
			SettleDelay:  2,
			MirrorRegrow: 1.5,
		},
		Label: LabelConfig{
			FontSize:    50,
			Scale:       0.25,
			Stroke:      ColorWhite,
			StrokeWidth: 1,
			OffsetY:     3,
		},
		Pair: PairConfig{
			First:  IntRange{Min: 2, Max: 3},
			Second: IntRange{Min: 1, Max: 3},
		},
	}
}

// LoadConfig decodes a TOML document over DefaultConfig and validates it.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("bramble: decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	if len(c.Mask.Weights) != int(numMaskVariants) {
		return fmt.Errorf("bramble: mask weights: want %d values, got %d", numMaskVariants, len(c.Mask.Weights))
	}
	total := 0.0
	for _, w := range c.Mask.Weights {
		if w < 0 {
			return fmt.Errorf("bramble: mask weights: negative weight %v", w)
		}
		total += w
	}
	if total <= 0 {
		return fmt.Errorf("bramble: mask weights: all zero")
	}
	if len(c.Mask.RadiusFactors) == 0 || len(c.Mask.CopyCounts) == 0 {
		return fmt.Errorf("bramble: mask radius factors and copy counts must not be empty")
	}
	for _, n := range c.Mask.CopyCounts {
		if n <= 0 {
			return fmt.Errorf("bramble: mask copy count %d must be positive", n)
		}
	}
	if c.Pair.First.Min < 0 || c.Pair.First.Min > c.Pair.First.Max ||
		c.Pair.Second.Min < 0 || c.Pair.Second.Min > c.Pair.Second.Max {
		return fmt.Errorf("%w: pair ranges", ErrInvalidChainLength)
	}
	if c.Growth.SettleDelay < 0 || c.Growth.MirrorRegrow < 0 {
		return fmt.Errorf("bramble: growth delays must not be negative")
	}
	return nil
}
