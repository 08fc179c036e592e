package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/san-kum/sdesim/internal/config"
	"github.com/san-kum/sdesim/internal/experiment"
	"github.com/san-kum/sdesim/internal/logging"
	"github.com/san-kum/sdesim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir   string
	logLevel  string
	logJSON   bool
	duration  float64
	steps     int
	realiz    int
	seed      uint64
	workers   int
	batches   int
	initState []float64
	params    map[string]string
	// Config file
	configFile string
	// Preset name
	preset string
	// Plot and analysis selection
	coord            int
	specRealization  int
	acfRealization   int
	phaseRealization int
	samples          int
	maxLag           int
	xAxis            int
	yAxis            int
	cloud            bool
	withPaths        bool
	crossCoord       int
	crossLevel       float64
	sweepParam       string
	sweepMin         float64
	sweepMax         float64
	sweepPoints      int
	gridSpecs        []string
	metricName       string
	saveRun          bool
	svgOut           string
	svgPhase         bool
	theme            string
)

// logger is set up by the root command before any subcommand runs.
var logger = logging.Discard()

func main() {
	rootCmd := &cobra.Command{
		Use:           "sdesim",
		Short:         "ensemble simulator for stochastic differential equations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logJSON {
				logger = logging.NewJSONLogger(logLevel, os.Stderr)
			} else {
				logger = logging.NewLogger(logLevel, os.Stderr)
			}
			slog.SetDefault(logger)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".sdesim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON lines")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "simulate an ensemble and save it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)

	watchCmd := &cobra.Command{
		Use:   "watch [model]",
		Short: "simulate an ensemble and replay it in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  watchSimulation,
	}
	addSimFlags(watchCmd)
	watchCmd.Flags().BoolVar(&saveRun, "save", false, "also save the run")
	watchCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	benchCmd := &cobra.Command{
		Use:   "bench [model]",
		Short: "benchmark a model across ensemble sizes and worker counts",
		Args:  cobra.ExactArgs(1),
		RunE:  benchModel,
	}
	benchCmd.Flags().IntVar(&steps, "steps", 1000, "number of steps")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run every step of a yaml scenario and save the results",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "scan one parameter and tabulate run metrics",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "sweep", "", "parameter to scan")
	sweepCmd.Flags().Float64Var(&sweepMin, "from", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "to", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 5, "number of values")
	_ = sweepCmd.MarkFlagRequired("sweep")

	tuneCmd := &cobra.Command{
		Use:   "tune [model]",
		Short: "grid search parameters minimising a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTune,
	}
	addSimFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&gridSpecs, "grid", nil, "parameter grid, name=lo:hi:n (repeatable)")
	tuneCmd.Flags().StringVar(&metricName, "metric", "mean_error", "metric to minimise")
	_ = tuneCmd.MarkFlagRequired("grid")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot ensemble mean and spread",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&samples, "samples", 0, "number of sample paths to overlay")

	statsCmd := &cobra.Command{
		Use:   "stats [run_id]",
		Short: "terminal distribution and metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  statsRun,
	}

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [run_id]",
		Short: "power spectrum of a path or of the ensemble mean",
		Args:  cobra.ExactArgs(1),
		RunE:  spectrumRun,
	}
	spectrumCmd.Flags().IntVar(&coord, "coord", 0, "state coordinate")
	spectrumCmd.Flags().IntVar(&specRealization, "realization", -1, "realization index (-1 for the ensemble mean)")

	acfCmd := &cobra.Command{
		Use:   "acf [run_id]",
		Short: "autocorrelation of a path or of the ensemble mean",
		Args:  cobra.ExactArgs(1),
		RunE:  acfRun,
	}
	acfCmd.Flags().IntVar(&coord, "coord", 0, "state coordinate")
	acfCmd.Flags().IntVar(&acfRealization, "realization", 0, "realization index (-1 for the ensemble mean)")
	acfCmd.Flags().IntVar(&maxLag, "lags", 100, "largest lag")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")
	phaseCmd.Flags().IntVar(&phaseRealization, "realization", 0, "realization to trace")
	phaseCmd.Flags().BoolVar(&cloud, "cloud", false, "plot every realization at the final time instead")

	poincareCmd := &cobra.Command{
		Use:   "poincare [run_id]",
		Short: "poincare section of one realization",
		Args:  cobra.ExactArgs(1),
		RunE:  poincarePlot,
	}
	poincareCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	poincareCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")
	poincareCmd.Flags().IntVar(&phaseRealization, "realization", 0, "realization to section")
	poincareCmd.Flags().IntVar(&crossCoord, "cross", 2, "state index whose upward crossings are recorded")
	poincareCmd.Flags().Float64Var(&crossLevel, "level", 0, "crossing level")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run paths to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().BoolVar(&withPaths, "paths", false, "include every path")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a run as an SVG chart",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&coord, "coord", 0, "state coordinate")
	exportSVGCmd.Flags().IntVar(&samples, "samples", 5, "sample paths drawn behind the mean")
	exportSVGCmd.Flags().BoolVar(&svgPhase, "phase", false, "draw the phase portrait of one realization instead")
	exportSVGCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	exportSVGCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")
	exportSVGCmd.Flags().IntVar(&phaseRealization, "realization", 0, "realization to trace")
	exportSVGCmd.Flags().StringVarP(&svgOut, "output", "o", "", "output file (default stdout)")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list built-in models",
		RunE:  listModels,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				cfg := config.GetPreset(args[0], p)
				fmt.Printf("  %-12s T=%g steps=%d realizations=%d x0=%v\n",
					p, cfg.Duration, cfg.Steps, cfg.Realizations, cfg.InitState)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, watchCmd, benchCmd, scenarioCmd, sweepCmd, tuneCmd, listCmd, plotCmd, statsCmd, spectrumCmd,
		acfCmd, phaseCmd, poincareCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, modelsCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "final time T")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps N")
	cmd.Flags().IntVarP(&realiz, "realizations", "R", config.DefaultRealizations, "number of realizations R")
	cmd.Flags().Uint64Var(&seed, "seed", uint64(time.Now().UnixNano()), "random seed")
	cmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "goroutines per step")
	cmd.Flags().IntVar(&batches, "batches", config.DefaultBatches, "independently seeded batches")
	cmd.Flags().Float64SliceVar(&initState, "x0", nil, "initial state (defaults to the model's)")
	cmd.Flags().StringToStringVar(&params, "param", nil, "model parameter, name=value (repeatable)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

func listModels(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	for _, name := range registry.ListModels() {
		m, err := registry.GetModel(name)
		if err != nil {
			return err
		}
		fmt.Printf("%-12s n=%d d=%d params=%v\n", name, m.StateDim(), m.NoiseDim(), m.GetParams())
	}
	return nil
}
