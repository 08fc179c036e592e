package sde

import (
	"context"
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestEnsembleMatchesSeededRuns(t *testing.T) {
	sim := New(meanReverting, unitNoise)
	x0 := Broadcast([]float64{1}, 10)
	cfg := Config{Duration: 1, Steps: 20, Realizations: 10}

	results, err := NewEnsemble(sim, 3, 100).Run(context.Background(), x0, cfg)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(results))
	}

	for i, res := range results {
		cfgCopy := cfg
		cfgCopy.Seed = 100 + uint64(i)
		single, err := sim.Run(context.Background(), x0, cfgCopy)
		if err != nil {
			t.Fatal(err)
		}
		for j, v := range single.Paths.RawData() {
			if res.Paths.RawData()[j] != v {
				t.Fatalf("batch %d differs from seeded run at %d", i, j)
			}
		}
	}

	merged, err := Merge(results...)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if merged.Realizations != 30 {
		t.Errorf("expected 30 realizations, got %d", merged.Realizations)
	}
	if merged.Paths.At(25, 20, 0) != results[2].Paths.At(5, 20, 0) {
		t.Error("merge did not preserve batch order")
	}
}

func TestEnsemblePropagatesErrors(t *testing.T) {
	bad := func(t float64, x *mat.Dense) *mat.Dense { return mat.NewDense(7, 7, nil) }
	sim := New(bad, unitNoise)

	_, err := NewEnsemble(sim, 2, 0).Run(context.Background(), Broadcast([]float64{1}, 3), Config{Duration: 1, Steps: 5, Realizations: 3})
	if !errors.Is(err, ErrShape) {
		t.Errorf("expected ErrShape, got %v", err)
	}

	_, err = NewEnsemble(sim, 0, 0).Run(context.Background(), Broadcast([]float64{1}, 3), Config{Duration: 1, Steps: 5, Realizations: 3})
	if !errors.Is(err, ErrDomain) {
		t.Errorf("expected ErrDomain, got %v", err)
	}
}

func TestMergeRejectsMismatchedResults(t *testing.T) {
	a, err := Simulate(meanReverting, unitNoise, Broadcast([]float64{1}, 2), 1, 10, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Simulate(meanReverting, unitNoise, Broadcast([]float64{1}, 2), 1, 12, 2, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Merge(a, b); !errors.Is(err, ErrShape) {
		t.Errorf("expected ErrShape, got %v", err)
	}
	if _, err := Merge(); err == nil {
		t.Error("expected error for empty merge")
	}
	for _, in := range [][]*Result{{a, nil}, {nil}} {
		var shapeErr *ShapeError
		if _, err := Merge(in...); !errors.As(err, &shapeErr) {
			t.Errorf("expected ShapeError for nil result, got %v", err)
		}
	}
}

func TestParallelForCoversRange(t *testing.T) {
	for _, workers := range []int{0, 1, 3, 8} {
		seen := make([]int, 500)
		ParallelFor(len(seen), workers, 16, func(start, end int) {
			for i := start; i < end; i++ {
				seen[i]++
			}
		})
		for i, c := range seen {
			if c != 1 {
				t.Fatalf("workers=%d: index %d visited %d times", workers, i, c)
			}
		}
	}
}
