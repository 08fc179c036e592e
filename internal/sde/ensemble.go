package sde

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Ensemble runs several independently seeded batches of the same model.
// Batch i uses seed seedStart+i, so the merged ensemble is reproducible.
type Ensemble struct {
	base      *Simulator
	batches   int
	seedStart uint64
}

func NewEnsemble(s *Simulator, batches int, seedStart uint64) *Ensemble {
	return &Ensemble{base: s, batches: batches, seedStart: seedStart}
}

// Run executes every batch concurrently from the same x0. cfg.Source is
// ignored; each batch gets its own seeded source. The first failing batch
// cancels the others.
func (e *Ensemble) Run(ctx context.Context, x0 mat.Matrix, cfg Config) ([]*Result, error) {
	if e.batches < 1 {
		return nil, &DomainError{Field: "batches", Value: float64(e.batches), Reason: "must be at least 1"}
	}

	results := make([]*Result, e.batches)
	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < e.batches; i++ {
		g.Go(func() error {
			cfgCopy := cfg
			cfgCopy.Source = nil
			cfgCopy.Seed = e.seedStart + uint64(i)

			res, err := e.base.Run(ctx, x0, cfgCopy)
			if err != nil {
				return fmt.Errorf("batch %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Merge concatenates results along the realization axis in argument order.
// All results must share the time grid, state dimension and noise dimension.
func Merge(results ...*Result) (*Result, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("sde: nothing to merge")
	}
	for i, res := range results {
		if res == nil {
			return nil, &ShapeError{Input: fmt.Sprintf("result %d", i), Want: []int{-1, -1, -1}}
		}
	}
	first := results[0]
	if len(results) == 1 {
		return first, nil
	}

	total := 0
	for i, res := range results {
		if res.StateDim != first.StateDim || res.NoiseDim != first.NoiseDim || res.Steps != first.Steps {
			return nil, &ShapeError{
				Input: fmt.Sprintf("result %d", i),
				Want:  []int{-1, first.Steps + 1, first.StateDim},
				Got:   []int{res.Realizations, res.Steps + 1, res.StateDim},
			}
		}
		if res.Times[res.Steps] != first.Times[first.Steps] {
			return nil, &DomainError{Field: "duration", Value: res.Times[res.Steps], Reason: "time grids differ"}
		}
		total += res.Realizations
	}

	data := make([]float64, 0, total*(first.Steps+1)*first.StateDim)
	var warnings []NumericWarning
	for _, res := range results {
		data = append(data, res.Paths.RawData()...)
		warnings = append(warnings, res.Warnings...)
	}

	times := make([]float64, len(first.Times))
	copy(times, first.Times)

	return &Result{
		Times:        times,
		Paths:        NewTensor(total, first.Steps+1, first.StateDim, data),
		Dt:           first.Dt,
		StateDim:     first.StateDim,
		NoiseDim:     first.NoiseDim,
		Realizations: total,
		Steps:        first.Steps,
		Warnings:     warnings,
	}, nil
}
