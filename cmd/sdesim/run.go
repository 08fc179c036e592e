package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/sdesim/internal/automation"
	"github.com/san-kum/sdesim/internal/config"
	"github.com/san-kum/sdesim/internal/experiment"
	"github.com/san-kum/sdesim/internal/storage"
	"github.com/san-kum/sdesim/internal/viz"
	"github.com/spf13/cobra"
)

// resolveConfig layers preset < config file < explicit flags.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	model := ""
	if len(args) > 0 {
		model = args[0]
	}

	cfg := config.DefaultConfig()
	if preset != "" {
		name := model
		if name == "" {
			name = cfg.Model
		}
		p := config.GetPreset(name, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(name))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.LoadInto(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if model != "" {
		cfg.Model = model
	}

	flags := cmd.Flags()
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("realizations") {
		cfg.Realizations = realiz
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("batches") {
		cfg.Batches = batches
	}
	if flags.Changed("x0") {
		cfg.InitState = initState
	}
	// A zero seed in a preset or file means "not set"; use the flag.
	if flags.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if len(params) > 0 {
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64, len(params))
		}
		for name, raw := range params {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("param %s: %w", name, err)
			}
			cfg.Params[name] = v
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func simulate(cmd *cobra.Command, args []string) (*config.Config, *experiment.Report, error) {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return nil, nil, err
	}
	exp, err := automation.Experiment(cfg, experiment.NewRegistry(), logger)
	if err != nil {
		return nil, nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("running simulation",
		"model", cfg.Model, "T", cfg.Duration, "steps", cfg.Steps,
		"realizations", cfg.Realizations, "seed", cfg.Seed, "batches", cfg.Batches)

	report, err := exp.Run(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("simulate %s: %w", cfg.Model, err)
	}
	return cfg, report, nil
}

func save(cfg *config.Config, report *experiment.Report) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	return st.Save(storage.RunMetadata{
		Model:     report.Model,
		Seed:      cfg.Seed,
		Workers:   cfg.Workers,
		Batches:   cfg.Batches,
		InitState: report.InitState,
		Params:    report.Params,
		Metrics:   report.Metrics,
		ElapsedMS: float64(report.Elapsed.Microseconds()) / 1000,
	}, report.Result)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, report, err := simulate(cmd, args)
	if err != nil {
		return err
	}

	runID, err := save(cfg, report)
	if err != nil {
		return err
	}

	res := report.Result
	fmt.Printf("completed in %v\n", report.Elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d  realizations: %d  state dim: %d  noise dim: %d\n",
		res.Steps, res.Realizations, res.StateDim, res.NoiseDim)
	for _, w := range res.Warnings {
		fmt.Printf("warning: %v\n", w)
	}

	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(report.Metrics))
	for name := range report.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, report.Metrics[name])
	}

	return nil
}

func watchSimulation(cmd *cobra.Command, args []string) error {
	cfg, report, err := simulate(cmd, args)
	if err != nil {
		return err
	}

	if saveRun {
		runID, err := save(cfg, report)
		if err != nil {
			return err
		}
		logger.Info("run saved", "id", runID)
	}

	viz.SetTheme(theme)
	title := fmt.Sprintf("%s  R=%d", cfg.Model, report.Result.Realizations)
	p := tea.NewProgram(viz.NewReplay(report.Result, title))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func benchModel(cmd *cobra.Command, args []string) error {
	model := args[0]

	registry := experiment.NewRegistry()
	if _, err := registry.GetModel(model); err != nil {
		return err
	}

	sizes := []int{64, 512, 4096}
	workerCounts := []int{1, runtime.NumCPU()}

	fmt.Printf("benchmarking %s (%d steps)\n\n", model, steps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REALIZATIONS\tWORKERS\tTIME\tPATH-STEPS/SEC")

	for _, r := range sizes {
		for _, nw := range workerCounts {
			dyn, err := registry.GetModel(model)
			if err != nil {
				return err
			}
			exp := experiment.New(experiment.Config{
				Model:        model,
				Duration:     1.0,
				Steps:        steps,
				Realizations: r,
				Seed:         42,
				Workers:      nw,
			})
			if err := exp.Setup(dyn, nil); err != nil {
				return err
			}

			start := time.Now()
			if _, err := exp.Run(context.Background()); err != nil {
				return err
			}
			elapsed := time.Since(start)

			rate := float64(r*steps) / elapsed.Seconds()
			fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\n", r, nw, elapsed.Round(time.Microsecond), rate)
		}
	}

	return w.Flush()
}
