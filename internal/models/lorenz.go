package models

import (
	"github.com/san-kum/sdesim/internal/sde"
	"gonum.org/v1/gonum/mat"
)

// Lorenz is the Lorenz system with independent additive noise of scale
// Noise on each coordinate.
type Lorenz struct {
	Sigma, Rho, Beta float64
	Noise            float64
}

func NewLorenz() *Lorenz        { return &Lorenz{10.0, 28.0, 8.0 / 3.0, 1.0} }
func (l *Lorenz) StateDim() int { return 3 }
func (l *Lorenz) NoiseDim() int { return 3 }

// Drift calculates the Lorenz attractor derivatives for every realization.
func (l *Lorenz) Drift(_ float64, s *mat.Dense) *mat.Dense {
	out, r := columns(s)
	for j := 0; j < r; j++ {
		x, y, z := s.At(0, j), s.At(1, j), s.At(2, j)
		out.Set(0, j, l.Sigma*(y-x))
		out.Set(1, j, x*(l.Rho-z)-y)
		out.Set(2, j, x*y-l.Beta*z)
	}
	return out
}

func (l *Lorenz) Diffusion(_ float64, s *mat.Dense) *sde.Tensor {
	_, r := s.Dims()
	return diagonal(3, r, l.Noise)
}

func (l *Lorenz) DefaultState() []float64 { return []float64{1.0, 1.0, 1.0} }
func (l *Lorenz) GetParams() map[string]float64 {
	return map[string]float64{"sigma": l.Sigma, "rho": l.Rho, "beta": l.Beta, "noise": l.Noise}
}
func (l *Lorenz) SetParam(n string, v float64) error {
	switch n {
	case "sigma":
		l.Sigma = v
	case "rho":
		l.Rho = v
	case "beta":
		l.Beta = v
	case "noise":
		if v < 0 {
			return negativeParam("lorenz", n, v)
		}
		l.Noise = v
	default:
		return unknownParam("lorenz", n)
	}
	return nil
}
