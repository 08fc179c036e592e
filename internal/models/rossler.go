package models

import (
	"github.com/san-kum/sdesim/internal/sde"
	"gonum.org/v1/gonum/mat"
)

// Rossler is the Rössler system with independent additive noise on each
// coordinate.
type Rossler struct {
	A, B, C float64
	Sigma   float64
}

func NewRossler() *Rossler                 { return &Rossler{A: 0.2, B: 0.2, C: 5.7, Sigma: 0.05} }
func (m *Rossler) StateDim() int           { return 3 }
func (m *Rossler) NoiseDim() int           { return 3 }
func (m *Rossler) DefaultState() []float64 { return []float64{1.0, 1.0, 1.0} }

func (m *Rossler) Drift(_ float64, s *mat.Dense) *mat.Dense {
	out, r := columns(s)
	for j := 0; j < r; j++ {
		x, y, z := s.At(0, j), s.At(1, j), s.At(2, j)
		out.Set(0, j, -y-z)
		out.Set(1, j, x+m.A*y)
		out.Set(2, j, m.B+z*(x-m.C))
	}
	return out
}

func (m *Rossler) Diffusion(_ float64, s *mat.Dense) *sde.Tensor {
	_, r := s.Dims()
	return diagonal(3, r, m.Sigma)
}

func (m *Rossler) GetParams() map[string]float64 {
	return map[string]float64{"a": m.A, "b": m.B, "c": m.C, "sigma": m.Sigma}
}

func (m *Rossler) SetParam(n string, v float64) error {
	switch n {
	case "a":
		m.A = v
	case "b":
		m.B = v
	case "c":
		m.C = v
	case "sigma":
		if v < 0 {
			return negativeParam("rossler", n, v)
		}
		m.Sigma = v
	default:
		return unknownParam("rossler", n)
	}
	return nil
}
