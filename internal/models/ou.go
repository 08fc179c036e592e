package models

import (
	"math"

	"github.com/san-kum/sdesim/internal/sde"
	"gonum.org/v1/gonum/mat"
)

// OrnsteinUhlenbeck is the mean-reverting process
//
//	dX = theta (mu - X) dt + sigma dW
type OrnsteinUhlenbeck struct {
	Theta float64 // reversion rate
	Mu    float64 // long-run mean
	Sigma float64
}

// NewOrnsteinUhlenbeck returns dX = -X dt + dW.
func NewOrnsteinUhlenbeck() *OrnsteinUhlenbeck {
	return &OrnsteinUhlenbeck{Theta: 1, Mu: 0, Sigma: 1}
}

func (o *OrnsteinUhlenbeck) StateDim() int { return 1 }
func (o *OrnsteinUhlenbeck) NoiseDim() int { return 1 }

func (o *OrnsteinUhlenbeck) Drift(_ float64, x *mat.Dense) *mat.Dense {
	out, r := columns(x)
	for j := 0; j < r; j++ {
		out.Set(0, j, o.Theta*(o.Mu-x.At(0, j)))
	}
	return out
}

func (o *OrnsteinUhlenbeck) Diffusion(_ float64, x *mat.Dense) *sde.Tensor {
	_, r := x.Dims()
	return sde.NewTensor(1, 1, r, nil).Fill(o.Sigma)
}

func (o *OrnsteinUhlenbeck) DefaultState() []float64 { return []float64{1} }

func (o *OrnsteinUhlenbeck) Mean(t float64, x0 []float64) []float64 {
	return []float64{o.Mu + (x0[0]-o.Mu)*math.Exp(-o.Theta*t)}
}

// Variance is Var[X_t] for a deterministic start.
func (o *OrnsteinUhlenbeck) Variance(t float64) float64 {
	if o.Theta == 0 {
		return o.Sigma * o.Sigma * t
	}
	return o.Sigma * o.Sigma / (2 * o.Theta) * (1 - math.Exp(-2*o.Theta*t))
}

func (o *OrnsteinUhlenbeck) GetParams() map[string]float64 {
	return map[string]float64{"theta": o.Theta, "mu": o.Mu, "sigma": o.Sigma}
}

func (o *OrnsteinUhlenbeck) SetParam(name string, value float64) error {
	switch name {
	case "theta":
		o.Theta = value
	case "mu":
		o.Mu = value
	case "sigma":
		if value < 0 {
			return negativeParam("ou", name, value)
		}
		o.Sigma = value
	default:
		return unknownParam("ou", name)
	}
	return nil
}
