package sde

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// minChunk is the smallest realization block handed to a worker.
const minChunk = 64

type Simulator struct {
	drift     DriftFunc
	diffusion DiffusionFunc
}

func New(drift DriftFunc, diffusion DiffusionFunc) *Simulator {
	return &Simulator{drift: drift, diffusion: diffusion}
}

// NewFromSystem binds a Simulator to the drift and diffusion of sys.
func NewFromSystem(sys System) *Simulator {
	return New(sys.Drift, sys.Diffusion)
}

// Simulate integrates dX = f dt + g dW on [0, T] with N Euler–Maruyama steps
// for the R realizations in the columns of x0. A nil src seeds a default
// source with zero.
func Simulate(f DriftFunc, g DiffusionFunc, x0 mat.Matrix, T float64, N, R int, src rand.Source) (*Result, error) {
	return New(f, g).Run(context.Background(), x0, Config{
		Duration:     T,
		Steps:        N,
		Realizations: R,
		Source:       src,
	})
}

// Run simulates every column of x0 as an independent realization. All
// validation, including one evaluation of drift and diffusion at (0, x0),
// happens before increments are drawn. On error no partial result is
// returned.
func (s *Simulator) Run(ctx context.Context, x0 mat.Matrix, cfg Config) (*Result, error) {
	if s.drift == nil || s.diffusion == nil {
		return nil, ErrNoModel
	}

	n, r, err := initialDims(x0)
	if err != nil {
		return nil, err
	}
	if err := validateConfig(cfg, r); err != nil {
		return nil, err
	}

	log := cfg.logger()
	steps := cfg.Steps
	dt := cfg.Duration / float64(steps)
	times := TimeGrid(cfg.Duration, steps)

	cur := mat.DenseCopyOf(x0)
	arg := mat.NewDense(n, r, nil)

	arg.Copy(cur)
	drift, diffusion, d, err := s.evaluate(0, 0, arg, n, r, -1)
	if err != nil {
		return nil, err
	}

	paths := NewTensor(r, steps+1, n, nil)
	storeState(paths, 0, cur)

	dW := BrownianIncrements(cfg.source(), r, steps, d, dt)

	log.Debug("simulation started",
		"state_dim", n, "noise_dim", d, "realizations", r,
		"steps", steps, "dt", dt, "workers", cfg.Workers)

	res := &Result{
		Times:        times,
		Paths:        paths,
		Dt:           dt,
		StateDim:     n,
		NoiseDim:     d,
		Realizations: r,
		Steps:        steps,
	}

	next := mat.NewDense(n, r, nil)
	var driftWarned, diffusionWarned bool

	for k := 0; k < steps; k++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("sde: canceled at step %d: %w", k, ctx.Err())
		default:
		}

		if k > 0 {
			arg.Copy(cur)
			drift, diffusion, _, err = s.evaluate(k, times[k], arg, n, r, d)
			if err != nil {
				return nil, err
			}
		}

		if !driftWarned && !denseFinite(drift) {
			driftWarned = true
			res.Warnings = append(res.Warnings, s.warn(log, "drift", k, times[k]))
		}
		if !diffusionWarned && !diffusion.IsFinite() {
			diffusionWarned = true
			res.Warnings = append(res.Warnings, s.warn(log, "diffusion", k, times[k]))
		}

		ParallelFor(r, cfg.Workers, minChunk, func(lo, hi int) {
			advance(cur, next, drift, diffusion, dW, paths, k, dt, lo, hi)
		})
		cur, next = next, cur
	}

	log.Debug("simulation finished", "steps", steps, "warnings", len(res.Warnings))
	return res, nil
}

func (s *Simulator) warn(log *slog.Logger, fn string, step int, t float64) NumericWarning {
	log.Warn("non-finite model output", "func", fn, "step", step, "t", t)
	return NumericWarning{Func: fn, Step: step, Time: t}
}

// evaluate calls drift and diffusion at (t, x), then checks their shapes. A
// negative d means the noise dimension is not known yet and is taken from
// the diffusion result.
func (s *Simulator) evaluate(step int, t float64, x *mat.Dense, n, r, d int) (*mat.Dense, *Tensor, int, error) {
	f := s.drift(t, x)
	g := s.diffusion(t, x)

	if f == nil || f.IsEmpty() {
		return nil, nil, 0, &ShapeError{Input: "drift", Step: step, Want: []int{n, r}}
	}
	if fr, fc := f.Dims(); fr != n || fc != r {
		return nil, nil, 0, &ShapeError{Input: "drift", Step: step, Want: []int{n, r}, Got: []int{fr, fc}}
	}

	ga, gb, gc := g.Dims()
	if d < 0 {
		if ga != n || gb < 1 || gc != r {
			return nil, nil, 0, &ShapeError{Input: "diffusion", Step: step, Want: []int{n, -1, r}, Got: g.shape()}
		}
		d = gb
	} else if ga != n || gb != d || gc != r {
		return nil, nil, 0, &ShapeError{Input: "diffusion", Step: step, Want: []int{n, d, r}, Got: g.shape()}
	}

	return f, g, d, nil
}

// advance applies one Euler–Maruyama step to realizations [lo, hi):
//
//	X[:, r] += F[:, r]·dt + G[:, :, r]·dW[r, k, :]
//
// Each realization touches only its own column of next and its own slab of
// paths, so disjoint ranges may run concurrently.
func advance(cur, next, drift *mat.Dense, g, dW, paths *Tensor, k int, dt float64, lo, hi int) {
	n, d, _ := g.Dims()
	load := mat.NewDense(n, d, nil)
	noise := mat.NewVecDense(n, nil)

	for r := lo; r < hi; r++ {
		for i := 0; i < n; i++ {
			row := load.RawRowView(i)
			for j := range row {
				row[j] = g.At(i, j, r)
			}
		}
		noise.MulVec(load, mat.NewVecDense(d, dW.Fiber(r, k)))

		out := paths.Fiber(r, k+1)
		for i := 0; i < n; i++ {
			v := cur.At(i, r) + drift.At(i, r)*dt + noise.AtVec(i)
			next.Set(i, r, v)
			out[i] = v
		}
	}
}

// TimeGrid returns steps+1 evenly spaced instants from 0 to T inclusive.
func TimeGrid(T float64, steps int) []float64 {
	times := make([]float64, steps+1)
	dt := T / float64(steps)
	for k := range times {
		times[k] = float64(k) * dt
	}
	times[steps] = T
	return times
}

func initialDims(x0 mat.Matrix) (n, r int, err error) {
	if x0 == nil {
		return 0, 0, &ShapeError{Input: "x0", Want: []int{-1, -1}}
	}
	if d, ok := x0.(*mat.Dense); ok && (d == nil || d.IsEmpty()) {
		return 0, 0, &ShapeError{Input: "x0", Want: []int{-1, -1}, Got: []int{0, 0}}
	}
	n, r = x0.Dims()
	if n < 1 || r < 1 {
		return 0, 0, &ShapeError{Input: "x0", Want: []int{-1, -1}, Got: []int{n, r}}
	}
	return n, r, nil
}

func validateConfig(cfg Config, cols int) error {
	if !(cfg.Duration > 0) || math.IsInf(cfg.Duration, 0) {
		return &DomainError{Field: "duration", Value: cfg.Duration, Reason: "must be positive and finite"}
	}
	if cfg.Steps < 1 {
		return &DomainError{Field: "steps", Value: float64(cfg.Steps), Reason: "must be at least 1"}
	}
	if cfg.Realizations < 1 {
		return &DomainError{Field: "realizations", Value: float64(cfg.Realizations), Reason: "must be at least 1"}
	}
	if cfg.Realizations != cols {
		return &DomainError{
			Field:  "realizations",
			Value:  float64(cfg.Realizations),
			Reason: fmt.Sprintf("x0 has %d columns", cols),
		}
	}
	return nil
}

func storeState(paths *Tensor, k int, x *mat.Dense) {
	n, r := x.Dims()
	for j := 0; j < r; j++ {
		out := paths.Fiber(j, k)
		for i := 0; i < n; i++ {
			out[i] = x.At(i, j)
		}
	}
}
