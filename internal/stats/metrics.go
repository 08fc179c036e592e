package stats

import (
	"fmt"
	"math"

	"github.com/san-kum/sdesim/internal/sde"
)

// Metric reduces a finished ensemble to one number.
type Metric interface {
	Name() string
	Compute(res *sde.Result) float64
}

// TerminalMean is the sample mean of one coordinate at the final time.
type TerminalMean struct{ Coord int }

func (m TerminalMean) Name() string { return fmt.Sprintf("terminal_mean_x%d", m.Coord) }

func (m TerminalMean) Compute(res *sde.Result) float64 {
	if m.Coord >= res.StateDim {
		return math.NaN()
	}
	return Describe(res, res.Steps, m.Coord).Mean
}

// TerminalStd is the sample standard deviation of one coordinate at the
// final time.
type TerminalStd struct{ Coord int }

func (m TerminalStd) Name() string { return fmt.Sprintf("terminal_std_x%d", m.Coord) }

func (m TerminalStd) Compute(res *sde.Result) float64 {
	if m.Coord >= res.StateDim {
		return math.NaN()
	}
	return Describe(res, res.Steps, m.Coord).Std
}

// FiniteFraction is the share of realizations whose whole path is finite.
type FiniteFraction struct{}

func (FiniteFraction) Name() string { return "finite_fraction" }

func (FiniteFraction) Compute(res *sde.Result) float64 {
	good := 0
	for r := 0; r < res.Realizations; r++ {
		if pathFinite(res, r) {
			good++
		}
	}
	return float64(good) / float64(res.Realizations)
}

func pathFinite(res *sde.Result, r int) bool {
	for k := 0; k <= res.Steps; k++ {
		for _, v := range res.Paths.Fiber(r, k) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// Stability is the fraction of sampled states with every coordinate inside
// [-Threshold, Threshold].
type Stability struct{ Threshold float64 }

func NewStability(threshold float64) Stability { return Stability{Threshold: threshold} }

func (Stability) Name() string { return "stability" }

func (s Stability) Compute(res *sde.Result) float64 {
	samples, violations := 0, 0
	for r := 0; r < res.Realizations; r++ {
		for k := 0; k <= res.Steps; k++ {
			samples++
			for _, v := range res.Paths.Fiber(r, k) {
				if !(math.Abs(v) <= s.Threshold) {
					violations++
					break
				}
			}
		}
	}
	if samples == 0 {
		return 1.0
	}
	return 1.0 - float64(violations)/float64(samples)
}

// MaxAbs is the largest finite |x| reached by any coordinate of any
// realization.
type MaxAbs struct{}

func (MaxAbs) Name() string { return "max_abs" }

func (MaxAbs) Compute(res *sde.Result) float64 {
	worst := 0.0
	for _, v := range res.Paths.RawData() {
		if a := math.Abs(v); !math.IsInf(a, 0) && a > worst {
			worst = a
		}
	}
	return worst
}

// MeanError is the largest absolute gap between the terminal sample mean
// and the exact mean of an analytic model started from X0.
type MeanError struct {
	Model sde.Analytic
	X0    []float64
}

func (MeanError) Name() string { return "mean_error" }

func (m MeanError) Compute(res *sde.Result) float64 {
	want := m.Model.Mean(res.Times[res.Steps], m.X0)
	worst := 0.0
	for i, w := range want {
		if i >= res.StateDim {
			break
		}
		worst = math.Max(worst, math.Abs(Describe(res, res.Steps, i).Mean-w))
	}
	return worst
}

// Evaluate computes every metric into a name-keyed map.
func Evaluate(res *sde.Result, metrics []Metric) map[string]float64 {
	out := make(map[string]float64, len(metrics))
	for _, m := range metrics {
		out[m.Name()] = m.Compute(res)
	}
	return out
}
