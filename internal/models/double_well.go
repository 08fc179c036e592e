package models

import (
	"math"

	"github.com/san-kum/sdesim/internal/sde"
	"gonum.org/v1/gonum/mat"
)

// DoubleWell models a damped particle in the potential A(x²-B)² kicked by
// random forces. State: [x, v].
type DoubleWell struct {
	A, B, Mass, Damping float64
	Sigma               float64
}

func NewDoubleWell() *DoubleWell {
	return &DoubleWell{A: 1.0, B: 1.0, Mass: 1.0, Damping: 0.5, Sigma: 0.7}
}

func (d *DoubleWell) StateDim() int { return 2 }
func (d *DoubleWell) NoiseDim() int { return 1 }

func (d *DoubleWell) Drift(_ float64, s *mat.Dense) *mat.Dense {
	out, r := columns(s)
	for j := 0; j < r; j++ {
		x, v := s.At(0, j), s.At(1, j)
		out.Set(0, j, v)
		out.Set(1, j, (-4*d.A*x*(x*x-d.B)-d.Damping*v)/d.Mass)
	}
	return out
}

func (d *DoubleWell) Diffusion(_ float64, s *mat.Dense) *sde.Tensor {
	_, r := s.Dims()
	return velocityNoise(r, d.Sigma/d.Mass)
}

func (d *DoubleWell) DefaultState() []float64 { return []float64{math.Sqrt(d.B) + 0.1, 0} }

// Energy is the mechanical energy of a single state vector.
func (d *DoubleWell) Energy(s []float64) float64 {
	x, v := s[0], s[1]
	return 0.5*d.Mass*v*v + d.A*math.Pow(x*x-d.B, 2)
}

func (d *DoubleWell) GetParams() map[string]float64 {
	return map[string]float64{"A": d.A, "B": d.B, "mass": d.Mass, "damping": d.Damping, "sigma": d.Sigma}
}

func (d *DoubleWell) SetParam(n string, v float64) error {
	switch n {
	case "A":
		d.A = v
	case "B":
		d.B = v
	case "mass":
		if v <= 0 {
			return negativeParam("double_well", n, v)
		}
		d.Mass = v
	case "damping":
		d.Damping = v
	case "sigma":
		if v < 0 {
			return negativeParam("double_well", n, v)
		}
		d.Sigma = v
	default:
		return unknownParam("double_well", n)
	}
	return nil
}
