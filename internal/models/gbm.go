package models

import (
	"math"

	"github.com/san-kum/sdesim/internal/sde"
	"gonum.org/v1/gonum/mat"
)

// GeometricBrownian is dX = mu X dt + sigma X dW.
type GeometricBrownian struct {
	Mu    float64
	Sigma float64
}

func NewGeometricBrownian() *GeometricBrownian {
	return &GeometricBrownian{Mu: 0.05, Sigma: 0.2}
}

func (g *GeometricBrownian) StateDim() int { return 1 }
func (g *GeometricBrownian) NoiseDim() int { return 1 }

func (g *GeometricBrownian) Drift(_ float64, x *mat.Dense) *mat.Dense {
	out, r := columns(x)
	for j := 0; j < r; j++ {
		out.Set(0, j, g.Mu*x.At(0, j))
	}
	return out
}

func (g *GeometricBrownian) Diffusion(_ float64, x *mat.Dense) *sde.Tensor {
	_, r := x.Dims()
	t := sde.NewTensor(1, 1, r, nil)
	for j := 0; j < r; j++ {
		t.Set(0, 0, j, g.Sigma*x.At(0, j))
	}
	return t
}

func (g *GeometricBrownian) DefaultState() []float64 { return []float64{1} }

func (g *GeometricBrownian) Mean(t float64, x0 []float64) []float64 {
	return []float64{x0[0] * math.Exp(g.Mu*t)}
}

func (g *GeometricBrownian) GetParams() map[string]float64 {
	return map[string]float64{"mu": g.Mu, "sigma": g.Sigma}
}

func (g *GeometricBrownian) SetParam(name string, value float64) error {
	switch name {
	case "mu":
		g.Mu = value
	case "sigma":
		if value < 0 {
			return negativeParam("gbm", name, value)
		}
		g.Sigma = value
	default:
		return unknownParam("gbm", name)
	}
	return nil
}
