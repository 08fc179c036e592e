package sde

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// BrownianIncrements draws a (realizations, steps, dims) tensor of
// independent Normal(0, dt) samples from src. Samples are drawn in row-major
// order, so the same source state always yields the same tensor.
func BrownianIncrements(src rand.Source, realizations, steps, dims int, dt float64) *Tensor {
	dW := NewTensor(realizations, steps, dims, nil)
	normal := distuv.Normal{Mu: 0, Sigma: math.Sqrt(dt), Src: src}
	data := dW.RawData()
	for i := range data {
		data[i] = normal.Rand()
	}
	return dW
}

// NewSource returns the generator used when Config.Source is nil.
func NewSource(seed uint64) rand.Source {
	return rand.NewSource(seed)
}
