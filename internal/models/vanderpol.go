package models

import (
	"github.com/san-kum/sdesim/internal/sde"
	"gonum.org/v1/gonum/mat"
)

// VanDerPol implements the Van der Pol oscillator with noise on the velocity.
// State: [x, y] where y = dx/dt
// Equations:
//
//	dx = y dt
//	dy = (μ(1 - x²)y - x) dt + σ dW
type VanDerPol struct {
	Mu    float64 // Nonlinearity parameter
	Sigma float64
}

func NewVanDerPol() *VanDerPol {
	return &VanDerPol{
		Mu:    1.0, // Classic value for limit cycle
		Sigma: 0.3,
	}
}

func (v *VanDerPol) StateDim() int { return 2 }
func (v *VanDerPol) NoiseDim() int { return 1 }

func (v *VanDerPol) Drift(_ float64, s *mat.Dense) *mat.Dense {
	out, r := columns(s)
	for j := 0; j < r; j++ {
		x, y := s.At(0, j), s.At(1, j)
		out.Set(0, j, y)
		out.Set(1, j, v.Mu*(1-x*x)*y-x)
	}
	return out
}

func (v *VanDerPol) Diffusion(_ float64, s *mat.Dense) *sde.Tensor {
	_, r := s.Dims()
	return velocityNoise(r, v.Sigma)
}

func (v *VanDerPol) DefaultState() []float64 {
	return []float64{2.0, 0.0}
}

// GetParams implements sde.Configurable
func (v *VanDerPol) GetParams() map[string]float64 {
	return map[string]float64{
		"mu":    v.Mu,
		"sigma": v.Sigma,
	}
}

// SetParam implements sde.Configurable
func (v *VanDerPol) SetParam(name string, value float64) error {
	switch name {
	case "mu":
		v.Mu = value
	case "sigma":
		if value < 0 {
			return negativeParam("vanderpol", name, value)
		}
		v.Sigma = value
	default:
		return unknownParam("vanderpol", name)
	}
	return nil
}
