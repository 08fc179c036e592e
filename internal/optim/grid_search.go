// Package optim searches model parameter grids for the value that minimises
// a run metric.
package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/sdesim/internal/experiment"
)

// Builder returns a ready-to-run experiment for one parameter assignment.
type Builder func(params map[string]float64) (*experiment.Experiment, error)

// Point is one evaluated grid point.
type Point struct {
	Params map[string]float64
	Value  float64
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search runs every grid point and returns the one with the smallest metric
// value, along with all evaluated points in grid order. Points whose metric
// is NaN never win. The first failing run aborts the search.
func (g *GridSearch) Search(ctx context.Context, build Builder, metricName string) (*Point, []Point, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, nil, fmt.Errorf("grid search: %d names for %d ranges", len(g.paramNames), len(g.ranges))
	}

	var (
		best   *Point
		points []Point
	)
	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		exp, err := build(params)
		if err != nil {
			return err
		}
		report, err := exp.Run(ctx)
		if err != nil {
			return fmt.Errorf("%v: %w", params, err)
		}

		val, ok := report.Metrics[metricName]
		if !ok {
			return fmt.Errorf("grid search: run has no metric %q", metricName)
		}

		p := Point{Params: params, Value: val}
		points = append(points, p)
		if !math.IsNaN(val) && (best == nil || val < best.Value) {
			best = &p
		}
		return nil
	})
	if err != nil {
		return nil, points, err
	}
	if best == nil {
		return nil, points, fmt.Errorf("grid search: no point produced a finite %s", metricName)
	}
	return best, points, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, visit func(map[string]float64) error) error {
	if depth == len(g.paramNames) {
		return visit(current)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, visit); err != nil {
			return err
		}
	}
	return nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n < 1 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
