package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gonewx/petanim/internal/particle"
)

// EngineConfig holds the playback and simulation tunables.
// The zero value is not usable; start from DefaultEngineConfig.
type EngineConfig struct {
	Effects   EffectTuning   `yaml:"effects"`
	Particles ParticleTuning `yaml:"particles"`
}

// EffectTuning controls the effect-trigger scan.
type EffectTuning struct {
	// TriggerTolerance is the half-width of the window around an effect's
	// timing within which it fires (strictly less than).
	TriggerTolerance float64 `yaml:"trigger_tolerance"`
	// Dedupe fires each effect at most once per playback cycle. When false
	// an effect fires on every tick whose progress stays inside the window.
	Dedupe bool `yaml:"dedupe"`
}

// ParticleTuning controls spawning and integration.
type ParticleTuning struct {
	Gravity   float64 `yaml:"gravity"`
	Wind      float64 `yaml:"wind"`
	FadeRate  float64 `yaml:"fade_rate"`
	SizeDecay float64 `yaml:"size_decay"`

	// Spread is the half-width of the random spawn offset on each axis.
	Spread float64 `yaml:"spread"`
	// MaxSpeed is the half-width of the random launch velocity on each axis.
	MaxSpeed float64 `yaml:"max_speed"`

	DefaultCount int     `yaml:"default_count"`
	DefaultSize  float64 `yaml:"default_size"`
	DefaultColor string  `yaml:"default_color"`

	// TimeScaled scales every per-step delta by dt/ReferenceFrame instead
	// of integrating one fixed step per Update call.
	TimeScaled     bool          `yaml:"time_scaled"`
	ReferenceFrame time.Duration `yaml:"reference_frame"`
}

// DefaultEngineConfig returns the stock tuning.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		Effects: EffectTuning{
			TriggerTolerance: 0.1,
			Dedupe:           false,
		},
		Particles: ParticleTuning{
			Gravity:        0.5,
			Wind:           0,
			FadeRate:       0.02,
			SizeDecay:      0.01,
			Spread:         50,
			MaxSpeed:       2,
			DefaultCount:   5,
			DefaultSize:    5,
			DefaultColor:   "#FFFFFF",
			TimeScaled:     false,
			ReferenceFrame: 16 * time.Millisecond,
		},
	}
}

// LoadEngineConfig reads a yaml tuning file on top of the defaults, so a
// file only needs the keys it changes.
func LoadEngineConfig(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read engine config %s: %w", path, err)
	}

	cfg, err := ParseEngineConfig(data)
	if err != nil {
		return nil, fmt.Errorf("engine config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseEngineConfig decodes yaml tuning on top of the defaults and
// validates the result.
func ParseEngineConfig(data []byte) (*EngineConfig, error) {
	cfg := DefaultEngineConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse engine config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects tunables that would stall or explode the simulation.
func (c *EngineConfig) Validate() error {
	if c.Effects.TriggerTolerance <= 0 || c.Effects.TriggerTolerance > 1 {
		return fmt.Errorf("effects.trigger_tolerance must be in (0,1], got %v", c.Effects.TriggerTolerance)
	}

	p := c.Particles
	if p.FadeRate <= 0 && p.SizeDecay <= 0 {
		return fmt.Errorf("particles: fade_rate or size_decay must be positive or particles never die")
	}
	if p.Spread < 0 || p.MaxSpeed < 0 {
		return fmt.Errorf("particles: spread and max_speed must not be negative")
	}
	if p.DefaultCount <= 0 {
		return fmt.Errorf("particles.default_count must be positive, got %d", p.DefaultCount)
	}
	if p.DefaultSize <= 0 {
		return fmt.Errorf("particles.default_size must be positive, got %v", p.DefaultSize)
	}
	if _, _, _, _, err := particle.ParseHexColor(p.DefaultColor); err != nil {
		return fmt.Errorf("particles.default_color: %w", err)
	}
	if p.TimeScaled && p.ReferenceFrame <= 0 {
		return fmt.Errorf("particles.reference_frame must be positive when time_scaled is set")
	}
	return nil
}
