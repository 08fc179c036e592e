package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultModel        = "ou"
	DefaultDuration     = 10.0
	DefaultSteps        = 1000
	DefaultRealizations = 256
	DefaultWorkers      = 1
	DefaultBatches      = 1
	DefaultLogLevel     = "info"
)

// Config is the on-disk description of one simulation run. A nil InitState
// means the model's default start.
type Config struct {
	Model        string             `yaml:"model"`
	Duration     float64            `yaml:"duration"`
	Steps        int                `yaml:"steps"`
	Realizations int                `yaml:"realizations"`
	Seed         uint64             `yaml:"seed"`
	Workers      int                `yaml:"workers"`
	Batches      int                `yaml:"batches"`
	InitState    []float64          `yaml:"init_state,omitempty"`
	Params       map[string]float64 `yaml:"params,omitempty"`
	LogLevel     string             `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:        DefaultModel,
		Duration:     DefaultDuration,
		Steps:        DefaultSteps,
		Realizations: DefaultRealizations,
		Workers:      DefaultWorkers,
		Batches:      DefaultBatches,
		LogLevel:     DefaultLogLevel,
	}
}

func Load(path string) (*Config, error) {
	return LoadInto(path, DefaultConfig())
}

// LoadInto reads path over a copy of base. Fields absent from the file keep
// their value from base.
func LoadInto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

// Validate checks the fields that can be judged without knowing the model.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("config: model is required")
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("config: duration must be positive, got %g", c.Duration)
	}
	if c.Steps < 1 {
		return fmt.Errorf("config: steps must be at least 1, got %d", c.Steps)
	}
	if c.Realizations < 1 {
		return fmt.Errorf("config: realizations must be at least 1, got %d", c.Realizations)
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must be non-negative, got %d", c.Workers)
	}
	if c.Batches < 1 {
		return fmt.Errorf("config: batches must be at least 1, got %d", c.Batches)
	}
	if c.Realizations%c.Batches != 0 {
		return fmt.Errorf("config: %d realizations do not split into %d batches", c.Realizations, c.Batches)
	}
	return nil
}

// Dt is the step size implied by Duration and Steps.
func (c *Config) Dt() float64 {
	if c.Steps < 1 {
		return 0
	}
	return c.Duration / float64(c.Steps)
}

// Clone returns a deep copy, so presets can be customised without being
// mutated.
func (c *Config) Clone() *Config {
	out := *c
	if c.InitState != nil {
		out.InitState = append([]float64(nil), c.InitState...)
	}
	if c.Params != nil {
		out.Params = make(map[string]float64, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	return &out
}
