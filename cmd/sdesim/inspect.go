package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/sdesim/internal/analysis"
	"github.com/san-kum/sdesim/internal/export"
	"github.com/san-kum/sdesim/internal/sde"
	"github.com/san-kum/sdesim/internal/stats"
	"github.com/san-kum/sdesim/internal/storage"
	"github.com/spf13/cobra"
)

const maxPlots = 6

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tT\tSTEPS\tR\tSEED\tWARN")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%d\t%d\t%d\t%d\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Steps,
			run.Realizations,
			run.Seed,
			len(run.Warnings),
		)
	}

	return w.Flush()
}

// plottable replaces infinities, which asciigraph cannot scale, with gaps.
func plottable(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, v := range xs {
		if math.IsInf(v, 0) {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	sum, err := st.LoadSummary(runID)
	if err != nil {
		return err
	}
	if len(sum.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	var res *sde.Result
	if samples > 0 {
		if res, err = st.LoadPaths(runID); err != nil {
			return err
		}
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("realizations: %d  steps: %d\n\n", meta.Realizations, meta.Steps)

	numVars := len(sum.Mean)
	if numVars > maxPlots {
		numVars = maxPlots
	}

	for i := 0; i < numVars; i++ {
		upper := make([]float64, len(sum.Times))
		lower := make([]float64, len(sum.Times))
		for k := range sum.Times {
			upper[k] = sum.Mean[i][k] + sum.Std[i][k]
			lower[k] = sum.Mean[i][k] - sum.Std[i][k]
		}

		series := [][]float64{plottable(sum.Mean[i]), plottable(upper), plottable(lower)}
		colors := []asciigraph.AnsiColor{asciigraph.Red, asciigraph.Yellow, asciigraph.Yellow}
		for r := 0; res != nil && r < samples && r < res.Realizations; r++ {
			series = append(series, plottable(res.Path(r, i)))
			colors = append(colors, asciigraph.Gray)
		}

		graph := asciigraph.PlotMany(series,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("x%d: mean ±1 std", i)),
			asciigraph.SeriesColors(colors...),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func statsRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	res, err := st.LoadPaths(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s (%s, t=%.4g)\n\n", meta.ID, meta.Model, res.Times[res.Steps])

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COORD\tFINITE\tMEAN\tSTD\tMIN\tQ05\tQ50\tQ95\tMAX")
	for _, s := range stats.Terminal(res) {
		fmt.Fprintf(w, "x%d\t%d/%d\t%.6g\t%.6g\t%.6g\t%.6g\t%.6g\t%.6g\t%.6g\n",
			s.Coord, s.Finite, res.Realizations, s.Mean, s.Std, s.Min, s.Q05, s.Q50, s.Q95, s.Max)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(meta.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		names := make([]string, 0, len(meta.Metrics))
		for name := range meta.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %s: %.6f\n", name, meta.Metrics[name])
		}
	}
	for _, warn := range meta.Warnings {
		fmt.Printf("warning: non-finite %s output at step %d (t=%g)\n", warn.Func, warn.Step, warn.Time)
	}
	return nil
}

// selectSeries returns one realization's coordinate path, or the ensemble
// mean when r is negative.
func selectSeries(res *sde.Result, r, c int) ([]float64, string, error) {
	if c < 0 || c >= res.StateDim {
		return nil, "", fmt.Errorf("coordinate %d out of range [0, %d)", c, res.StateDim)
	}
	if r < 0 {
		return stats.MeanPath(res, c), fmt.Sprintf("mean x%d", c), nil
	}
	if r >= res.Realizations {
		return nil, "", fmt.Errorf("realization %d out of range [0, %d)", r, res.Realizations)
	}
	return res.Path(r, c), fmt.Sprintf("x%d of realization %d", c, r), nil
}

func spectrumRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	res, err := st.LoadPaths(runID)
	if err != nil {
		return err
	}

	data, label, err := selectSeries(res, specRealization, coord)
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n", runID)
	fmt.Printf("series: %s\n\n", label)

	ps := analysis.PowerSpectrum(data)
	plotData := ps[:len(ps)/4+1]

	graph := asciigraph.Plot(plottable(plotData),
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum ("+label+")"),
	)
	fmt.Println(graph)
	fmt.Println()

	freq := analysis.DominantFrequency(data, res.Dt)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	return nil
}

func acfRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	res, err := st.LoadPaths(runID)
	if err != nil {
		return err
	}

	data, label, err := selectSeries(res, acfRealization, coord)
	if err != nil {
		return err
	}

	acf := analysis.Autocorrelation(data, maxLag)
	if len(acf) < 2 {
		return fmt.Errorf("series too short for autocorrelation")
	}

	graph := asciigraph.Plot(acf,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("autocorrelation of %s, lag step %g", label, res.Dt)),
	)
	fmt.Println(graph)

	// First lag below 1/e, a rough correlation time.
	for lag, v := range acf {
		if v < 1/math.E {
			fmt.Printf("\ncorrelation time: %.4g (lag %d)\n", float64(lag)*res.Dt, lag)
			break
		}
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	res, err := st.LoadPaths(runID)
	if err != nil {
		return err
	}

	var portrait *analysis.PhasePortrait2D
	if cloud {
		portrait = analysis.EnsembleCloud(res, res.Steps, xAxis, yAxis)
	} else {
		portrait = analysis.PhasePortrait(res, phaseRealization, xAxis, yAxis)
	}
	if portrait == nil {
		return fmt.Errorf("state dimension %d or realization count %d too small for selection", res.StateDim, res.Realizations)
	}

	fmt.Printf("phase space plot: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("x-axis: x%d, y-axis: x%d\n\n", xAxis, yAxis)
	fmt.Print(analysis.PhasePortraitToASCII(portrait, 70, 20))

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	res, err := st.LoadPaths(args[0])
	if err != nil {
		return err
	}
	return storage.ExportCSV(os.Stdout, res)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	res, err := st.LoadPaths(runID)
	if err != nil {
		return err
	}

	return storage.ExportJSON(os.Stdout, *meta, res, withPaths)
}

func poincarePlot(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	res, err := st.LoadPaths(runID)
	if err != nil {
		return err
	}

	section := analysis.GeneratePoincareSection(res, phaseRealization, crossCoord, crossLevel, xAxis, yAxis)
	if section == nil {
		return fmt.Errorf("state dimension %d or realization count %d too small for selection", res.StateDim, res.Realizations)
	}

	fmt.Printf("poincare section: %s (x%d rising through %g)\n", runID, crossCoord, crossLevel)
	fmt.Printf("crossings: %d\n\n", len(section.Points))
	fmt.Println(analysis.PoincareSectionToASCII(section, 70, 20))
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	res, err := st.LoadPaths(args[0])
	if err != nil {
		return err
	}

	var svg string
	if svgPhase {
		portrait := analysis.PhasePortrait(res, phaseRealization, xAxis, yAxis)
		if portrait == nil {
			return fmt.Errorf("state dimension %d or realization count %d too small for selection", res.StateDim, res.Realizations)
		}
		svg = export.PortraitToSVG(portrait, 800, 800, "#00ffff")
	} else {
		svg, err = export.EnsembleToSVG(res, coord, samples, 1000, 500)
		if err != nil {
			return err
		}
	}

	if svgOut == "" {
		_, err = fmt.Print(svg)
		return err
	}
	if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
		return err
	}
	logger.Info("svg written", "run", args[0], "path", svgOut)
	return nil
}
