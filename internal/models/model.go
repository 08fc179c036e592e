package models

import (
	"fmt"

	"github.com/san-kum/sdesim/internal/sde"
	"gonum.org/v1/gonum/mat"
)

// Model is a built-in SDE with tunable parameters and a default start.
type Model interface {
	sde.System
	sde.Configurable
	DefaultState() []float64
}

// columns returns a zeroed n×r matrix shaped like x, and r.
func columns(x *mat.Dense) (*mat.Dense, int) {
	n, r := x.Dims()
	return mat.NewDense(n, r, nil), r
}

// diagonal loads noise source i onto coordinate i with scale s.
func diagonal(n, r int, s float64) *sde.Tensor {
	g := sde.NewTensor(n, n, r, nil)
	for i := 0; i < n; i++ {
		fiber := g.Fiber(i, i)
		for k := range fiber {
			fiber[k] = s
		}
	}
	return g
}

// velocityNoise is the (2, 1, r) loading of a single source onto the second
// coordinate of a position/velocity state.
func velocityNoise(r int, s float64) *sde.Tensor {
	g := sde.NewTensor(2, 1, r, nil)
	fiber := g.Fiber(1, 0)
	for k := range fiber {
		fiber[k] = s
	}
	return g
}

func unknownParam(model, name string) error {
	return fmt.Errorf("%s: unknown parameter %q", model, name)
}

func negativeParam(model, name string, v float64) error {
	return fmt.Errorf("%s: parameter %q must be non-negative, got %g", model, name, v)
}
