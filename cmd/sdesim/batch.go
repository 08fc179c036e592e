package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/sdesim/internal/automation"
	"github.com/san-kum/sdesim/internal/experiment"
	"github.com/san-kum/sdesim/internal/optim"
	"github.com/spf13/cobra"
)

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if sc.Name != "" {
		fmt.Printf("scenario: %s\n", sc.Name)
	}
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tMODEL\tRUN ID\tELAPSED\tWARN")

	i := 0
	_, err = automation.RunScenario(ctx, sc, experiment.NewRegistry(), logger,
		func(step automation.ScenarioStep, report *experiment.Report) error {
			i++
			runID, err := save(&step.Config, report)
			if err != nil {
				return err
			}
			label := runID
			if step.SaveAs != "" {
				label = step.SaveAs + " (" + runID + ")"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%v\t%d\n", i, step.Model, label, report.Elapsed, len(report.Result.Warnings))
			return nil
		})
	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	return err
}

// metricNames returns the union of metric names across results, sorted.
func metricNames(all ...map[string]float64) []string {
	set := make(map[string]struct{})
	for _, m := range all {
		for name := range m {
			set[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:      *cfg,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepPoints,
	}, experiment.NewRegistry(), logger)
	if err != nil {
		return err
	}

	metrics := make([]map[string]float64, len(results))
	for i, r := range results {
		metrics[i] = r.Metrics
	}
	names := metricNames(metrics...)

	fmt.Printf("sweep of %s on %s (R=%d, seed %d)\n\n", sweepParam, cfg.Model, cfg.Realizations, cfg.Seed)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\tWARN\n", strings.ToUpper(sweepParam), strings.ToUpper(strings.Join(names, "\t")))
	for _, r := range results {
		row := []string{strconv.FormatFloat(r.ParamValue, 'g', 6, 64)}
		for _, name := range names {
			row = append(row, strconv.FormatFloat(r.Metrics[name], 'g', 6, 64))
		}
		fmt.Fprintf(w, "%s\t%d\n", strings.Join(row, "\t"), r.Warnings)
	}
	return w.Flush()
}

// parseGrid parses "name=lo:hi:n" into a parameter name and its values.
func parseGrid(spec string) (string, []float64, error) {
	name, rng, ok := strings.Cut(spec, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("grid %q: want name=lo:hi:n", spec)
	}
	parts := strings.Split(rng, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("grid %q: want name=lo:hi:n", spec)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid %q: %w", spec, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid %q: %w", spec, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", nil, fmt.Errorf("grid %q: point count must be a positive integer", spec)
	}
	return name, optim.Linspace(lo, hi, n), nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(gridSpecs))
	ranges := make([][]float64, 0, len(gridSpecs))
	for _, spec := range gridSpecs {
		name, values, err := parseGrid(spec)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	registry := experiment.NewRegistry()
	build := func(params map[string]float64) (*experiment.Experiment, error) {
		point := cfg.Clone()
		if point.Params == nil {
			point.Params = make(map[string]float64, len(params))
		}
		for k, v := range params {
			point.Params[k] = v
		}
		return automation.Experiment(point, registry, logger)
	}

	best, points, err := optim.NewGridSearch(names, ranges).Search(ctx, build, metricName)
	if err != nil {
		return err
	}

	fmt.Printf("grid search on %s: %d points, minimising %s\n\n", cfg.Model, len(points), metricName)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(metricName))
	for _, p := range points {
		row := make([]string, 0, len(names)+1)
		for _, name := range names {
			row = append(row, strconv.FormatFloat(p.Params[name], 'g', 6, 64))
		}
		row = append(row, strconv.FormatFloat(p.Value, 'g', 6, 64))
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest: %v -> %.6g\n", best.Params, best.Value)
	return nil
}
