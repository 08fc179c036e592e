package models

import (
	"math"

	"github.com/san-kum/sdesim/internal/sde"
	"gonum.org/v1/gonum/mat"
)

// Duffing is the periodically forced Duffing oscillator with noise on the
// velocity. The forcing phase is carried as a third coordinate so the drift
// stays autonomous.
//
//	dx = v dt
//	dv = (-δv - αx - βx³ + γ cos φ) dt + σ dW
//	dφ = ω dt
type Duffing struct {
	Alpha, Beta, Delta, Gamma, Omega float64
	Sigma                            float64
}

func NewDuffing() *Duffing {
	return &Duffing{Alpha: -1.0, Beta: 1.0, Delta: 0.3, Gamma: 0.5, Omega: 1.2, Sigma: 0.1}
}

func (d *Duffing) StateDim() int { return 3 }
func (d *Duffing) NoiseDim() int { return 1 }

func (d *Duffing) Drift(_ float64, s *mat.Dense) *mat.Dense {
	out, r := columns(s)
	for j := 0; j < r; j++ {
		x, v, phi := s.At(0, j), s.At(1, j), s.At(2, j)
		out.Set(0, j, v)
		out.Set(1, j, -d.Delta*v-d.Alpha*x-d.Beta*x*x*x+d.Gamma*math.Cos(phi))
		out.Set(2, j, d.Omega)
	}
	return out
}

func (d *Duffing) Diffusion(_ float64, s *mat.Dense) *sde.Tensor {
	_, r := s.Dims()
	g := sde.NewTensor(3, 1, r, nil)
	fiber := g.Fiber(1, 0)
	for k := range fiber {
		fiber[k] = d.Sigma
	}
	return g
}

func (d *Duffing) DefaultState() []float64 { return []float64{1.0, 0.0, 0.0} }

func (d *Duffing) GetParams() map[string]float64 {
	return map[string]float64{
		"alpha": d.Alpha, "beta": d.Beta, "delta": d.Delta,
		"gamma": d.Gamma, "omega": d.Omega, "sigma": d.Sigma,
	}
}

func (d *Duffing) SetParam(n string, v float64) error {
	switch n {
	case "alpha":
		d.Alpha = v
	case "beta":
		d.Beta = v
	case "delta":
		d.Delta = v
	case "gamma":
		d.Gamma = v
	case "omega":
		d.Omega = v
	case "sigma":
		if v < 0 {
			return negativeParam("duffing", n, v)
		}
		d.Sigma = v
	default:
		return unknownParam("duffing", n)
	}
	return nil
}
