package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pkoval/fluidlab/internal/fluid"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config is the full file-level configuration: fluid parameters plus the
// run and render settings around them.
type Config struct {
	Fluid  fluid.Params `yaml:"fluid"`
	Sim    SimConfig    `yaml:"sim"`
	Render RenderConfig `yaml:"render"`
}

// SimConfig drives headless runs and the domain geometry.
type SimConfig struct {
	Steps       int     `yaml:"steps"`
	Seed        int64   `yaml:"seed"`
	SampleEvery int     `yaml:"sample_every"`
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
	DataDir     string  `yaml:"data_dir"`
}

// RenderConfig covers the interactive frontends.
type RenderConfig struct {
	Theme string `yaml:"theme"`
	FPS   int    `yaml:"fps"`
	Audio bool   `yaml:"audio"`
}

// Default returns the embedded defaults.
func Default() Config {
	var c Config
	if err := yaml.Unmarshal(defaultsYAML, &c); err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return c
}

// Load reads a YAML file over the defaults, so partial files only
// override what they mention. Authored files are validated strictly; a
// typo should fail loudly, not be silently clamped.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as YAML.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects out-of-range fluid parameters and nonsensical run
// settings.
func (c Config) Validate() error {
	if err := c.Fluid.Validate(); err != nil {
		return err
	}
	if c.Sim.Steps <= 0 {
		return fmt.Errorf("sim.steps must be positive, got %d", c.Sim.Steps)
	}
	if c.Sim.SampleEvery < 0 {
		return fmt.Errorf("sim.sample_every must not be negative, got %d", c.Sim.SampleEvery)
	}
	if c.Sim.Width < 0 || c.Sim.Height < 0 {
		return fmt.Errorf("sim domain must not be negative, got %gx%g", c.Sim.Width, c.Sim.Height)
	}
	if c.Render.FPS <= 0 {
		return fmt.Errorf("render.fps must be positive, got %d", c.Render.FPS)
	}
	return nil
}
