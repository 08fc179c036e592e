package sde

import (
	"log/slog"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// DriftFunc evaluates f(t, X) for every realization at once. x is n×R and
// the result must be n×R.
type DriftFunc func(t float64, x *mat.Dense) *mat.Dense

// DiffusionFunc evaluates g(t, X) for every realization at once. x is n×R and
// the result must be a (n, d, R) tensor.
type DiffusionFunc func(t float64, x *mat.Dense) *Tensor

// System is an SDE model whose drift and diffusion are evaluated in batch.
type System interface {
	StateDim() int
	NoiseDim() int
	Drift(t float64, x *mat.Dense) *mat.Dense
	Diffusion(t float64, x *mat.Dense) *Tensor
}

// Configurable models expose named scalar parameters.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Analytic models know the exact mean E[X_t] for a deterministic start x0.
type Analytic interface {
	Mean(t float64, x0 []float64) []float64
}

// Config controls one Run.
type Config struct {
	Duration     float64 // final time T
	Steps        int     // number of steps N; the grid has N+1 instants
	Realizations int     // expected column count of x0
	Seed         uint64
	// Source overrides Seed when set. It is consumed by the run.
	Source rand.Source
	// Workers above one split each step across realizations.
	Workers int
	Logger  *slog.Logger
}

func (c Config) source() rand.Source {
	if c.Source != nil {
		return c.Source
	}
	return NewSource(c.Seed)
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Result holds the simulated ensemble. Paths is (R, N+1, n).
type Result struct {
	Times        []float64
	Paths        *Tensor
	Dt           float64
	StateDim     int
	NoiseDim     int
	Realizations int
	Steps        int
	Warnings     []NumericWarning
}

// State returns the n×R state at time index k as a new matrix.
func (r *Result) State(k int) *mat.Dense {
	x := mat.NewDense(r.StateDim, r.Realizations, nil)
	for j := 0; j < r.Realizations; j++ {
		for i, v := range r.Paths.Fiber(j, k) {
			x.Set(i, j, v)
		}
	}
	return x
}

// Terminal returns the n×R state at the final time.
func (r *Result) Terminal() *mat.Dense { return r.State(r.Steps) }

// Path returns coordinate coord of one realization across all time instants.
func (r *Result) Path(realization, coord int) []float64 {
	out := make([]float64, len(r.Times))
	for k := range out {
		out[k] = r.Paths.At(realization, k, coord)
	}
	return out
}

// Trajectory returns the (N+1)×n path of one realization, sharing storage.
func (r *Result) Trajectory(realization int) *mat.Dense {
	return r.Paths.Matrix(realization)
}
