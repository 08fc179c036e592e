package models

import (
	"github.com/san-kum/sdesim/internal/sde"
	"gonum.org/v1/gonum/mat"
)

// Brownian is dX = mu dt + sigma dW with independent noise per coordinate.
type Brownian struct {
	Dim   int
	Mu    float64
	Sigma float64
}

func NewBrownian(dim int) *Brownian {
	if dim < 1 {
		dim = 1
	}
	return &Brownian{Dim: dim, Mu: 0, Sigma: 1}
}

func (b *Brownian) StateDim() int { return b.Dim }
func (b *Brownian) NoiseDim() int { return b.Dim }

func (b *Brownian) Drift(_ float64, x *mat.Dense) *mat.Dense {
	out, _ := columns(x)
	n, r := out.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < r; j++ {
			out.Set(i, j, b.Mu)
		}
	}
	return out
}

func (b *Brownian) Diffusion(_ float64, x *mat.Dense) *sde.Tensor {
	n, r := x.Dims()
	return diagonal(n, r, b.Sigma)
}

func (b *Brownian) DefaultState() []float64 { return make([]float64, b.Dim) }

func (b *Brownian) Mean(t float64, x0 []float64) []float64 {
	m := make([]float64, len(x0))
	for i, v := range x0 {
		m[i] = v + b.Mu*t
	}
	return m
}

func (b *Brownian) GetParams() map[string]float64 {
	return map[string]float64{"mu": b.Mu, "sigma": b.Sigma}
}

func (b *Brownian) SetParam(name string, value float64) error {
	switch name {
	case "mu":
		b.Mu = value
	case "sigma":
		if value < 0 {
			return negativeParam("brownian", name, value)
		}
		b.Sigma = value
	default:
		return unknownParam("brownian", name)
	}
	return nil
}
