package models

import (
	"math"

	"github.com/san-kum/sdesim/internal/sde"
	"gonum.org/v1/gonum/mat"
)

// Pendulum is a damped pendulum driven by white-noise torque of intensity
// Sigma. State: [theta, omega].
type Pendulum struct {
	Mass    float64
	Length  float64
	Damping float64
	Gravity float64
	Sigma   float64
}

func NewPendulum() *Pendulum {
	return &Pendulum{
		Mass:    1.0,
		Length:  1.0,
		Damping: 0.1,
		Gravity: 9.81,
		Sigma:   0.5,
	}
}

func (p *Pendulum) StateDim() int {
	return 2
}

func (p *Pendulum) NoiseDim() int {
	return 1
}

func (p *Pendulum) Drift(_ float64, x *mat.Dense) *mat.Dense {
	out, r := columns(x)
	inertia := p.Mass * p.Length * p.Length
	for j := 0; j < r; j++ {
		theta := x.At(0, j)
		omega := x.At(1, j)

		alpha := (-p.Damping*omega - p.Mass*p.Gravity*p.Length*math.Sin(theta)) / inertia

		out.Set(0, j, omega)
		out.Set(1, j, alpha)
	}
	return out
}

func (p *Pendulum) Diffusion(_ float64, x *mat.Dense) *sde.Tensor {
	_, r := x.Dims()
	return velocityNoise(r, p.Sigma/(p.Mass*p.Length*p.Length))
}

func (p *Pendulum) DefaultState() []float64 { return []float64{0.5, 0} }

func (p *Pendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":    p.Mass,
		"length":  p.Length,
		"damping": p.Damping,
		"gravity": p.Gravity,
		"sigma":   p.Sigma,
	}
}

func (p *Pendulum) SetParam(name string, value float64) error {
	switch name {
	case "mass", "length":
		if value <= 0 {
			return negativeParam("pendulum", name, value)
		}
		if name == "mass" {
			p.Mass = value
		} else {
			p.Length = value
		}
	case "damping":
		p.Damping = value
	case "gravity":
		p.Gravity = value
	case "sigma":
		if value < 0 {
			return negativeParam("pendulum", name, value)
		}
		p.Sigma = value
	default:
		return unknownParam("pendulum", name)
	}
	return nil
}
