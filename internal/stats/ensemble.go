// Package stats summarizes simulated ensembles across realizations.
package stats

import (
	"math"
	"sort"

	"github.com/san-kum/sdesim/internal/sde"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Moment is the cross-realization mean and unbiased variance of one
// coordinate at one time instant.
type Moment struct {
	Time     float64
	Mean     float64
	Variance float64
}

func (m Moment) Std() float64 { return math.Sqrt(m.Variance) }

// Summary describes the distribution of one coordinate at a single time.
// Non-finite samples are counted out of Finite and ignored.
type Summary struct {
	Coord         int
	Finite        int
	Mean, Std     float64
	Min, Max      float64
	Q05, Q50, Q95 float64
}

// Sample returns coordinate coord of every realization at time index k.
func Sample(res *sde.Result, k, coord int) []float64 {
	out := make([]float64, res.Realizations)
	for r := range out {
		out[r] = res.Paths.At(r, k, coord)
	}
	return out
}

// Moments returns one Moment per time instant for coordinate coord.
func Moments(res *sde.Result, coord int) []Moment {
	moments := make([]Moment, len(res.Times))
	for k, t := range res.Times {
		mean, variance := meanVariance(Sample(res, k, coord))
		moments[k] = Moment{Time: t, Mean: mean, Variance: variance}
	}
	return moments
}

// MeanPath returns the ensemble mean of coordinate coord over time.
func MeanPath(res *sde.Result, coord int) []float64 {
	out := make([]float64, len(res.Times))
	for k, m := range Moments(res, coord) {
		out[k] = m.Mean
	}
	return out
}

// Describe summarizes coordinate coord at time index k.
func Describe(res *sde.Result, k, coord int) Summary {
	xs := finite(Sample(res, k, coord))
	s := Summary{Coord: coord, Finite: len(xs)}
	if len(xs) == 0 {
		nan := math.NaN()
		s.Mean, s.Std, s.Min, s.Max, s.Q05, s.Q50, s.Q95 = nan, nan, nan, nan, nan, nan, nan
		return s
	}

	sort.Float64s(xs)
	var variance float64
	s.Mean, variance = meanVariance(xs)
	s.Std = math.Sqrt(variance)
	s.Min = floats.Min(xs)
	s.Max = floats.Max(xs)
	s.Q05 = stat.Quantile(0.05, stat.Empirical, xs, nil)
	s.Q50 = stat.Quantile(0.50, stat.Empirical, xs, nil)
	s.Q95 = stat.Quantile(0.95, stat.Empirical, xs, nil)
	return s
}

// Terminal summarizes every coordinate at the final time.
func Terminal(res *sde.Result) []Summary {
	out := make([]Summary, res.StateDim)
	for i := range out {
		out[i] = Describe(res, res.Steps, i)
	}
	return out
}

// meanVariance is stat.MeanVariance with a zero variance for a single sample.
func meanVariance(xs []float64) (float64, float64) {
	if len(xs) == 1 {
		return xs[0], 0
	}
	return stat.MeanVariance(xs, nil)
}

func finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, v := range xs {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
