package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/san-kum/sdesim/internal/models"
	"github.com/san-kum/sdesim/internal/sde"
	"github.com/san-kum/sdesim/internal/stats"
)

type Config struct {
	Model        string
	InitState    []float64
	Duration     float64
	Steps        int
	Realizations int
	Seed         uint64
	Workers      int
	Batches      int
	Params       map[string]float64
	Logger       *slog.Logger
}

// Report is a finished run together with everything needed to reproduce and
// summarise it.
type Report struct {
	Result    *sde.Result
	Model     string
	InitState []float64
	Params    map[string]float64
	Metrics   map[string]float64
	Elapsed   time.Duration
}

type Experiment struct {
	cfg       Config
	model     models.Model
	simulator *sde.Simulator
	metrics   []stats.Metric
	x0        []float64
}

func New(cfg Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup binds the model, applies configured parameters in name order and
// resolves the initial state. An empty InitState means the model default.
func (e *Experiment) Setup(model models.Model, metrics []stats.Metric) error {
	names := make([]string, 0, len(e.cfg.Params))
	for name := range e.cfg.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := model.SetParam(name, e.cfg.Params[name]); err != nil {
			return fmt.Errorf("set param: %w", err)
		}
	}

	x0 := e.cfg.InitState
	if len(x0) == 0 {
		x0 = model.DefaultState()
	}
	if len(x0) != model.StateDim() {
		return &sde.ShapeError{Input: "x0", Want: []int{model.StateDim()}, Got: []int{len(x0)}}
	}

	e.x0 = append([]float64(nil), x0...)
	e.model = model
	e.simulator = sde.NewFromSystem(model)
	e.metrics = metrics
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*Report, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	batches := e.cfg.Batches
	if batches < 1 {
		batches = 1
	}
	if e.cfg.Realizations < 1 || e.cfg.Realizations%batches != 0 {
		return nil, &sde.DomainError{
			Field:  "batches",
			Value:  float64(batches),
			Reason: fmt.Sprintf("must divide %d realizations", e.cfg.Realizations),
		}
	}

	per := e.cfg.Realizations / batches
	simCfg := sde.Config{
		Duration:     e.cfg.Duration,
		Steps:        e.cfg.Steps,
		Realizations: per,
		Seed:         e.cfg.Seed,
		Workers:      e.cfg.Workers,
		Logger:       e.cfg.Logger,
	}
	x0 := sde.Broadcast(e.x0, per)

	start := time.Now()
	var (
		res *sde.Result
		err error
	)
	if batches == 1 {
		res, err = e.simulator.Run(ctx, x0, simCfg)
	} else {
		var parts []*sde.Result
		parts, err = sde.NewEnsemble(e.simulator, batches, e.cfg.Seed).Run(ctx, x0, simCfg)
		if err == nil {
			res, err = sde.Merge(parts...)
		}
	}
	if err != nil {
		return nil, err
	}

	return &Report{
		Result:    res,
		Model:     e.cfg.Model,
		InitState: append([]float64(nil), e.x0...),
		Params:    e.model.GetParams(),
		Metrics:   stats.Evaluate(res, e.metrics),
		Elapsed:   time.Since(start),
	}, nil
}

// Model returns the configured model, or nil before Setup.
func (e *Experiment) Model() models.Model {
	return e.model
}
