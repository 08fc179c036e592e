// Package automation runs scripted batches of simulations: YAML scenarios
// listing several runs, and one-parameter sweeps.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/sdesim/internal/config"
	"github.com/san-kum/sdesim/internal/experiment"
	"github.com/san-kum/sdesim/internal/optim"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run of a scenario. Unset fields take the values of
// config.DefaultConfig.
type ScenarioStep struct {
	config.Config `yaml:",inline"`
	SaveAs        string `yaml:"save_as"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Name        string      `yaml:"name"`
		Description string      `yaml:"description"`
		Steps       []yaml.Node `yaml:"steps"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	scenario := &Scenario{Name: raw.Name, Description: raw.Description}
	for i := range raw.Steps {
		step := ScenarioStep{Config: *config.DefaultConfig()}
		if err := raw.Steps[i].Decode(&step); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		if err := step.Validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		scenario.Steps = append(scenario.Steps, step)
	}

	return scenario, nil
}

// Experiment builds a ready-to-run experiment for cfg.
func Experiment(cfg *config.Config, registry *experiment.Registry, logger *slog.Logger) (*experiment.Experiment, error) {
	model, err := registry.GetModel(cfg.Model)
	if err != nil {
		return nil, err
	}

	x0 := cfg.InitState
	if len(x0) == 0 {
		x0 = model.DefaultState()
	}

	exp := experiment.New(experiment.Config{
		Model:        cfg.Model,
		InitState:    cfg.InitState,
		Duration:     cfg.Duration,
		Steps:        cfg.Steps,
		Realizations: cfg.Realizations,
		Seed:         cfg.Seed,
		Workers:      cfg.Workers,
		Batches:      cfg.Batches,
		Params:       cfg.Params,
		Logger:       logger,
	})
	if err := exp.Setup(model, registry.DefaultMetrics(model, x0)); err != nil {
		return nil, err
	}
	return exp, nil
}

// RunScenario executes all steps in order. Each finished report is passed to
// done, which may persist it; an error from done stops the scenario.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, logger *slog.Logger,
	done func(step ScenarioStep, report *experiment.Report) error) ([]*experiment.Report, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	reports := make([]*experiment.Report, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Info("scenario step", "step", i+1, "of", len(scenario.Steps), "model", step.Model)

		exp, err := Experiment(&step.Config, registry, logger)
		if err != nil {
			return reports, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		report, err := exp.Run(ctx)
		if err != nil {
			return reports, fmt.Errorf("step %d run: %w", i+1, err)
		}

		if done != nil {
			if err := done(step, report); err != nil {
				return reports, fmt.Errorf("step %d: %w", i+1, err)
			}
		}
		reports = append(reports, report)
	}

	return reports, nil
}

// ParameterSweep runs one configuration across evenly spaced values of a
// single parameter.
type ParameterSweep struct {
	Base      config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds the metrics of one sweep point.
type SweepResult struct {
	ParamValue float64
	Metrics    map[string]float64
	Warnings   int
}

// RunSweep executes a parameter sweep. Every point uses the base seed, so
// differences between points come from the parameter alone.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, logger *slog.Logger) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	values := optim.Linspace(sweep.ParamMin, sweep.ParamMax, sweep.NumSteps)

	results := make([]SweepResult, 0, len(values))
	for i, paramVal := range values {
		cfg := sweep.Base.Clone()
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64, 1)
		}
		cfg.Params[sweep.ParamName] = paramVal

		exp, err := Experiment(cfg, registry, logger)
		if err != nil {
			return nil, err
		}

		report, err := exp.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}

		results = append(results, SweepResult{
			ParamValue: paramVal,
			Metrics:    report.Metrics,
			Warnings:   len(report.Result.Warnings),
		})

		logger.Debug("sweep point", "index", i+1, "of", sweep.NumSteps, sweep.ParamName, paramVal)
	}

	return results, nil
}
