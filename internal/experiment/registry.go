package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/sdesim/internal/models"
	"github.com/san-kum/sdesim/internal/sde"
	"github.com/san-kum/sdesim/internal/stats"
)

// stabilityBound is the |x| band used by the default stability metric.
const stabilityBound = 100.0

type Registry struct {
	models map[string]func() models.Model
}

func NewRegistry() *Registry {
	r := &Registry{
		models: make(map[string]func() models.Model),
	}

	r.models["brownian"] = func() models.Model { return models.NewBrownian(1) }
	r.models["ou"] = func() models.Model { return models.NewOrnsteinUhlenbeck() }
	r.models["gbm"] = func() models.Model { return models.NewGeometricBrownian() }
	r.models["double_well"] = func() models.Model { return models.NewDoubleWell() }
	r.models["vanderpol"] = func() models.Model { return models.NewVanDerPol() }
	r.models["pendulum"] = func() models.Model { return models.NewPendulum() }
	r.models["lorenz"] = func() models.Model { return models.NewLorenz() }
	r.models["duffing"] = func() models.Model { return models.NewDuffing() }
	r.models["rossler"] = func() models.Model { return models.NewRossler() }

	return r
}

// Register adds or replaces a model constructor.
func (r *Registry) Register(name string, fn func() models.Model) {
	r.models[name] = fn
}

func (r *Registry) GetModel(name string) (models.Model, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns the metrics recorded with every run. Models with a
// closed-form mean also get the terminal mean error against it.
func (r *Registry) DefaultMetrics(model models.Model, x0 []float64) []stats.Metric {
	metrics := []stats.Metric{
		stats.TerminalMean{Coord: 0},
		stats.TerminalStd{Coord: 0},
		stats.FiniteFraction{},
		stats.NewStability(stabilityBound),
		stats.MaxAbs{},
	}
	if a, ok := model.(sde.Analytic); ok {
		start := append([]float64(nil), x0...)
		metrics = append(metrics, stats.MeanError{Model: a, X0: start})
	}
	return metrics
}
