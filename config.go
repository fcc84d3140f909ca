package synthtext

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DistSpec is the YAML form of a RandomVar: a three-element flow
// sequence [min, max, kind] where kind is "u" for uniform or "g" for
// gaussian.
type DistSpec struct {
	Min  float64
	Max  float64
	Kind string
}

// UnmarshalYAML decodes the [min, max, kind] triple.
func (d *DistSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode || len(value.Content) != 3 {
		return fmt.Errorf("%w: distribution must be a [min, max, kind] triple", ErrInvalidConfig)
	}
	if err := value.Content[0].Decode(&d.Min); err != nil {
		return fmt.Errorf("%w: distribution min: %v", ErrInvalidConfig, err)
	}
	if err := value.Content[1].Decode(&d.Max); err != nil {
		return fmt.Errorf("%w: distribution max: %v", ErrInvalidConfig, err)
	}
	if err := value.Content[2].Decode(&d.Kind); err != nil {
		return fmt.Errorf("%w: distribution kind: %v", ErrInvalidConfig, err)
	}
	switch d.Kind {
	case "u", "g":
		return nil
	default:
		return fmt.Errorf("%w: distribution kind %q, want \"u\" or \"g\"", ErrInvalidConfig, d.Kind)
	}
}

// MarshalYAML encodes the triple back to its compact flow form.
func (d DistSpec) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{}
	if err := node.Encode([]interface{}{d.Min, d.Max, d.Kind}); err != nil {
		return nil, err
	}
	node.Style = yaml.FlowStyle
	return node, nil
}

// Var converts the triple into a RandomVar.
func (d DistSpec) Var() RandomVar {
	if d.Kind == "g" {
		return Gaussian(d.Min, d.Max)
	}
	return Uniform(d.Min, d.Max)
}

// dist is a convenience constructor for default configs.
func dist(min, max float64, kind string) DistSpec {
	return DistSpec{Min: min, Max: max, Kind: kind}
}

// EffectSection is the "effect" block of the config file.
type EffectSection struct {
	BoxProb         float64  `yaml:"box_prob"`
	PerspectiveProb float64  `yaml:"perspective_prob"`
	PerspectiveX    DistSpec `yaml:"perspective_x"`
	PerspectiveY    DistSpec `yaml:"perspective_y"`
	PerspectiveZ    DistSpec `yaml:"perspective_z"`
	BlurProb        float64  `yaml:"blur_prob"`
	BlurSigma       DistSpec `yaml:"blur_sigma"`
	FilterProb      float64  `yaml:"filter_prob"`
	EmbossProb      float64  `yaml:"emboss_prob"`
	SharpProb       float64  `yaml:"sharp_prob"`
}

// ComposeSection is the "compose" block of the config file.
type ComposeSection struct {
	BgDir       string   `yaml:"bg_dir"`
	BgHeight    int      `yaml:"bg_height"`
	BgWidth     int      `yaml:"bg_width"`
	HeightDiff  DistSpec `yaml:"height_diff"`
	BgAlpha     DistSpec `yaml:"bg_alpha"`
	BgBeta      DistSpec `yaml:"bg_beta"`
	FontAlpha   DistSpec `yaml:"font_alpha"`
	ReverseProb float64  `yaml:"reverse_prob"`
	Iterations  int      `yaml:"iterations"`
}

// Config mirrors the on-disk YAML layout. Fields not present in the
// file keep their DefaultConfig values.
type Config struct {
	Effect  EffectSection  `yaml:"effect"`
	Compose ComposeSection `yaml:"compose"`
}

// DefaultConfig returns the configuration used when a field or file is
// absent. The values match the pipeline's long-standing defaults.
func DefaultConfig() *Config {
	return &Config{
		Effect: EffectSection{
			BoxProb:         0.1,
			PerspectiveProb: 0.2,
			PerspectiveX:    dist(-15, 15, "g"),
			PerspectiveY:    dist(-15, 15, "g"),
			PerspectiveZ:    dist(-3, 3, "g"),
			BlurProb:        0.1,
			BlurSigma:       dist(0, 1.5, "u"),
			FilterProb:      0.01,
			EmbossProb:      0.4,
			SharpProb:       0.6,
		},
		Compose: ComposeSection{
			BgDir:       "./background",
			BgHeight:    64,
			BgWidth:     1000,
			HeightDiff:  dist(2, 10, "u"),
			BgAlpha:     dist(0.5, 1.5, "g"),
			BgBeta:      dist(-50, 50, "g"),
			FontAlpha:   dist(0.2, 1.0, "u"),
			ReverseProb: 0.5,
			Iterations:  DefaultIterations,
		},
	}
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("synthtext: read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML config data on top of DefaultConfig, so a
// partial file overrides only the fields it mentions.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("synthtext: parse config: %w", err)
	}
	return cfg, nil
}

// EffectConfig converts the effect section into the Effector's config.
func (c *Config) EffectConfig() EffectConfig {
	return EffectConfig{
		BoxProb:         c.Effect.BoxProb,
		PerspectiveProb: c.Effect.PerspectiveProb,
		RotateX:         c.Effect.PerspectiveX.Var(),
		RotateY:         c.Effect.PerspectiveY.Var(),
		RotateZ:         c.Effect.PerspectiveZ.Var(),
		BlurProb:        c.Effect.BlurProb,
		BlurSigma:       c.Effect.BlurSigma.Var(),
		FilterProb:      c.Effect.FilterProb,
		EmbossProb:      c.Effect.EmbossProb,
		SharpProb:       c.Effect.SharpProb,
	}
}

// BlendConfig converts the compose section into the Blender's config.
func (c *Config) BlendConfig() BlendConfig {
	return BlendConfig{
		HeightDiff:  c.Compose.HeightDiff.Var(),
		BgAlpha:     c.Compose.BgAlpha.Var(),
		BgBeta:      c.Compose.BgBeta.Var(),
		FontAlpha:   c.Compose.FontAlpha.Var(),
		ReverseProb: c.Compose.ReverseProb,
		Iterations:  c.Compose.Iterations,
	}
}
