package stats

import (
	"math"
	"testing"

	"github.com/san-kum/sdesim/internal/sde"
)

// fixture builds a result with R realizations, two time instants and one
// coordinate; realization r ends at value r+1.
func fixture(R int) *sde.Result {
	paths := sde.NewTensor(R, 2, 1, nil)
	for r := 0; r < R; r++ {
		paths.Set(r, 0, 0, 0)
		paths.Set(r, 1, 0, float64(r+1))
	}
	return &sde.Result{
		Times:        []float64{0, 1},
		Paths:        paths,
		Dt:           1,
		StateDim:     1,
		NoiseDim:     1,
		Realizations: R,
		Steps:        1,
	}
}

func TestMoments(t *testing.T) {
	res := fixture(5)
	m := Moments(res, 0)

	if len(m) != 2 {
		t.Fatalf("expected 2 moments, got %d", len(m))
	}
	if m[0].Mean != 0 || m[0].Variance != 0 {
		t.Errorf("unexpected initial moment %+v", m[0])
	}
	if m[1].Mean != 3 {
		t.Errorf("expected mean 3, got %v", m[1].Mean)
	}
	if math.Abs(m[1].Variance-2.5) > 1e-12 {
		t.Errorf("expected variance 2.5, got %v", m[1].Variance)
	}
	if math.Abs(m[1].Std()-math.Sqrt(2.5)) > 1e-12 {
		t.Errorf("unexpected std %v", m[1].Std())
	}
}

func TestSingleRealizationVariance(t *testing.T) {
	m := Moments(fixture(1), 0)
	if m[1].Variance != 0 {
		t.Errorf("expected zero variance, got %v", m[1].Variance)
	}
}

func TestDescribe(t *testing.T) {
	res := fixture(100)
	res.Paths.Set(7, 1, 0, math.NaN())

	s := Describe(res, 1, 0)
	if s.Finite != 99 {
		t.Errorf("expected 99 finite samples, got %d", s.Finite)
	}
	if s.Min != 1 || s.Max != 100 {
		t.Errorf("unexpected range [%v, %v]", s.Min, s.Max)
	}
	if s.Q50 < 49 || s.Q50 > 52 {
		t.Errorf("unexpected median %v", s.Q50)
	}
	if s.Q05 > s.Q50 || s.Q50 > s.Q95 {
		t.Errorf("quantiles out of order: %v %v %v", s.Q05, s.Q50, s.Q95)
	}
}

func TestDescribeAllNonFinite(t *testing.T) {
	res := fixture(2)
	res.Paths.Set(0, 1, 0, math.Inf(1))
	res.Paths.Set(1, 1, 0, math.NaN())

	s := Describe(res, 1, 0)
	if s.Finite != 0 || !math.IsNaN(s.Mean) {
		t.Errorf("expected empty summary, got %+v", s)
	}
}

func TestMetrics(t *testing.T) {
	res := fixture(4)
	res.Paths.Set(3, 1, 0, math.Inf(1))

	got := Evaluate(res, []Metric{
		TerminalMean{Coord: 0},
		TerminalStd{Coord: 0},
		FiniteFraction{},
		NewStability(2.5),
		MaxAbs{},
	})

	if got["terminal_mean_x0"] != 2 {
		t.Errorf("terminal mean: %v", got["terminal_mean_x0"])
	}
	if got["terminal_std_x0"] != 1 {
		t.Errorf("terminal std: %v", got["terminal_std_x0"])
	}
	if got["finite_fraction"] != 0.75 {
		t.Errorf("finite fraction: %v", got["finite_fraction"])
	}
	// 8 states; values 3 and +Inf fall outside the band.
	if got["stability"] != 0.75 {
		t.Errorf("stability: %v", got["stability"])
	}
	if got["max_abs"] != 3 {
		t.Errorf("max abs: %v", got["max_abs"])
	}
}

type constantMean float64

func (c constantMean) Mean(t float64, x0 []float64) []float64 { return []float64{float64(c)} }

func TestMeanError(t *testing.T) {
	res := fixture(5)
	m := MeanError{Model: constantMean(2.5), X0: []float64{0}}
	if got := m.Compute(res); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("expected 0.5, got %v", got)
	}
}

func TestMeanPath(t *testing.T) {
	res := fixture(3)
	path := MeanPath(res, 0)
	if path[0] != 0 || path[1] != 2 {
		t.Errorf("unexpected mean path %v", path)
	}
}
