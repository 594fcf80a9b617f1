package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/chladni/internal/dynamo"
	"github.com/san-kum/chladni/internal/physics"
	"github.com/san-kum/chladni/internal/plate"
	"github.com/san-kum/chladni/internal/sim"
)

const (
	DefaultParticles = 4000
	DefaultDt        = 0.02
	DefaultKForce    = 0.2
	DefaultJitter    = 0.05
	DefaultSteps     = 400
	DefaultSeed      = 1
	DefaultThreshold = 0.05
	DefaultWidth     = 256
	DefaultHeight    = 256
)

type Config struct {
	Shape         plate.Shape   `yaml:"shape"`
	Aspect        AspectConfig  `yaml:"aspect"`
	Particles     int           `yaml:"particles"`
	Mode          physics.Mode  `yaml:"mode"`
	Dt            float64       `yaml:"dt"`
	KForce        float64       `yaml:"k_force"`
	Jitter        float64       `yaml:"jitter"`
	Steps         int           `yaml:"steps"`
	Seed          uint64        `yaml:"seed"`
	Workers       int           `yaml:"workers"`
	SnapshotEvery int           `yaml:"snapshot_every"`
	Pattern       PatternConfig `yaml:"pattern"`
}

// AspectConfig holds the half-extents of the plate. A zero extent means the
// shape's default on that axis.
type AspectConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type PatternConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	Threshold float64 `yaml:"threshold"`
}

func DefaultConfig() *Config {
	return &Config{
		Shape:     plate.Square,
		Particles: DefaultParticles,
		Mode:      physics.Mode{N: 3, M: 5, A: 1, B: -1},
		Dt:        DefaultDt,
		KForce:    DefaultKForce,
		Jitter:    DefaultJitter,
		Steps:     DefaultSteps,
		Seed:      DefaultSeed,
		Pattern: PatternConfig{
			Width:     DefaultWidth,
			Height:    DefaultHeight,
			Threshold: DefaultThreshold,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// PlateAspect resolves the configured aspect. Each zero extent falls back
// to the shape default on its own axis.
func (c *Config) PlateAspect() plate.Aspect {
	a := plate.DefaultAspect(c.Shape)
	if c.Aspect.X != 0 {
		a.X = c.Aspect.X
	}
	if c.Aspect.Y != 0 {
		a.Y = c.Aspect.Y
	}
	return a
}

func (c *Config) Params() dynamo.StepParams {
	return dynamo.StepParams{Dt: c.Dt, KForce: c.KForce, Jitter: c.Jitter}
}

func (c *Config) Validate() error {
	if !c.Shape.Valid() {
		return fmt.Errorf("%w: %d", dynamo.ErrInvalidShape, uint8(c.Shape))
	}
	if !c.PlateAspect().Valid() {
		return fmt.Errorf("%w: aspect %+v", dynamo.ErrInvalidConfig, c.Aspect)
	}
	if c.Particles < 0 {
		return fmt.Errorf("%w: particles must be non-negative, got %d", dynamo.ErrInvalidConfig, c.Particles)
	}
	if !c.Mode.IsFinite() {
		return fmt.Errorf("%w: mode %+v", dynamo.ErrInvalidConfig, c.Mode)
	}
	if !c.Params().Valid() {
		return fmt.Errorf("%w: dt=%v k_force=%v jitter=%v", dynamo.ErrInvalidConfig, c.Dt, c.KForce, c.Jitter)
	}
	if c.Steps < 0 || c.SnapshotEvery < 0 || c.Workers < 0 {
		return fmt.Errorf("%w: steps, snapshot_every and workers must be non-negative", dynamo.ErrInvalidConfig)
	}
	if c.Pattern.Width <= 0 || c.Pattern.Height <= 0 {
		return fmt.Errorf("%w: pattern size %dx%d", dynamo.ErrInvalidConfig, c.Pattern.Width, c.Pattern.Height)
	}
	return nil
}

func (c *Config) ToSimConfig() sim.Config {
	return sim.Config{
		Shape:         c.Shape,
		Aspect:        c.PlateAspect(),
		Particles:     c.Particles,
		Mode:          c.Mode,
		Params:        c.Params(),
		Steps:         c.Steps,
		Seed:          c.Seed,
		SnapshotEvery: c.SnapshotEvery,
	}
}
