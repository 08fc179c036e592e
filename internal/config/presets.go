package config

import "sort"

var Presets = map[string]map[string]*Config{
	"brownian": {
		"standard": {
			Model: "brownian", Duration: 1.0, Steps: 1000, Realizations: 1000,
			InitState: []float64{0},
		},
		"drifting": {
			Model: "brownian", Duration: 5.0, Steps: 500, Realizations: 500,
			InitState: []float64{0}, Params: map[string]float64{"mu": 0.5, "sigma": 0.3},
		},
	},
	"ou": {
		"relax": {
			Model: "ou", Duration: 5.0, Steps: 500, Realizations: 1000,
			InitState: []float64{2.0},
		},
		"stiff": {
			Model: "ou", Duration: 2.0, Steps: 2000, Realizations: 500,
			InitState: []float64{1.0}, Params: map[string]float64{"theta": 10, "sigma": 0.5},
		},
		"stationary": {
			Model: "ou", Duration: 50.0, Steps: 5000, Realizations: 200,
			InitState: []float64{0.0},
		},
	},
	"gbm": {
		"market": {
			Model: "gbm", Duration: 1.0, Steps: 252, Realizations: 2000,
			InitState: []float64{100.0},
		},
		"volatile": {
			Model: "gbm", Duration: 1.0, Steps: 252, Realizations: 2000,
			InitState: []float64{100.0}, Params: map[string]float64{"mu": 0.1, "sigma": 0.6},
		},
	},
	"double_well": {
		"hopping": {
			Model: "double_well", Duration: 50.0, Steps: 10000, Realizations: 64,
			InitState: []float64{1.0, 0.0}, Params: map[string]float64{"sigma": 0.8},
		},
		"trapped": {
			Model: "double_well", Duration: 20.0, Steps: 4000, Realizations: 64,
			InitState: []float64{1.0, 0.0}, Params: map[string]float64{"sigma": 0.1},
		},
	},
	"vanderpol": {
		"limit_cycle": {
			Model: "vanderpol", Duration: 30.0, Steps: 6000, Realizations: 32,
			InitState: []float64{2.0, 0.0},
		},
	},
	"pendulum": {
		"small": {
			Model: "pendulum", Duration: 20.0, Steps: 2000, Realizations: 128,
			InitState: []float64{0.2, 0.0},
		},
		"large": {
			Model: "pendulum", Duration: 20.0, Steps: 2000, Realizations: 128,
			InitState: []float64{2.5, 0.0},
		},
	},
	"lorenz": {
		"butterfly": {
			Model: "lorenz", Duration: 30.0, Steps: 15000, Realizations: 16,
			InitState: []float64{1.0, 1.0, 1.0},
		},
		"quiet": {
			Model: "lorenz", Duration: 30.0, Steps: 15000, Realizations: 16,
			InitState: []float64{1.0, 1.0, 1.0}, Params: map[string]float64{"noise": 0.01},
		},
	},
	"duffing": {
		"chaotic": {
			Model: "duffing", Duration: 100.0, Steps: 20000, Realizations: 16,
			InitState: []float64{1.0, 0.0, 0.0},
		},
		"periodic": {
			Model: "duffing", Duration: 100.0, Steps: 20000, Realizations: 16,
			InitState: []float64{1.0, 0.0, 0.0}, Params: map[string]float64{"gamma": 0.2},
		},
	},
	"rossler": {
		"spiral": {
			Model: "rossler", Duration: 100.0, Steps: 20000, Realizations: 16,
			InitState: []float64{1.0, 1.0, 1.0},
		},
	},
}

// GetPreset returns a copy of the named preset with unset fields filled from
// DefaultConfig, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	p, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	cfg := p.Clone()
	def := DefaultConfig()
	if cfg.Workers == 0 {
		cfg.Workers = def.Workers
	}
	if cfg.Batches == 0 {
		cfg.Batches = def.Batches
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	return cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
