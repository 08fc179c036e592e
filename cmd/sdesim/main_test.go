package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/sdesim/internal/models"
	"github.com/san-kum/sdesim/internal/sde"
	"github.com/san-kum/sdesim/internal/storage"
	"github.com/spf13/cobra"
)

func newRunCmd(t *testing.T, flags ...string) *cobra.Command {
	t.Helper()
	configFile, preset, params, initState = "", "", nil, nil
	cmd := &cobra.Command{Use: "run"}
	addSimFlags(cmd)
	if err := cmd.ParseFlags(flags); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd
}

func TestResolveConfigDefaults(t *testing.T) {
	cmd := newRunCmd(t, "--seed", "9")
	cfg, err := resolveConfig(cmd, []string{"gbm"})
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.Model != "gbm" || cfg.Seed != 9 || cfg.Steps != 1000 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestResolveConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := "steps: 300\nrealizations: 20\nseed: 5\nparams:\n  sigma: 0.7\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := newRunCmd(t,
		"--preset", "stiff",
		"--config", path,
		"--realizations", "40",
		"--param", "mu=1.5",
	)
	cfg, err := resolveConfig(cmd, []string{"ou"})
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}

	// preset
	if cfg.Duration != 2.0 || cfg.Params["theta"] != 10 {
		t.Errorf("preset values lost: %+v", cfg)
	}
	// file over preset
	if cfg.Steps != 300 || cfg.Seed != 5 || cfg.Params["sigma"] != 0.7 {
		t.Errorf("config file values lost: %+v", cfg)
	}
	// flags over file
	if cfg.Realizations != 40 || cfg.Params["mu"] != 1.5 {
		t.Errorf("flag values lost: %+v", cfg)
	}
}

func TestResolveConfigErrors(t *testing.T) {
	if _, err := resolveConfig(newRunCmd(t, "--preset", "nope"), []string{"ou"}); err == nil {
		t.Error("expected unknown preset error")
	}
	if _, err := resolveConfig(newRunCmd(t, "--param", "sigma=abc"), []string{"ou"}); err == nil {
		t.Error("expected bad parameter error")
	}
	if _, err := resolveConfig(newRunCmd(t, "--steps", "0"), []string{"ou"}); err == nil {
		t.Error("expected validation error")
	}
}

func TestResolveConfigModelFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte("model: lorenz\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := resolveConfig(newRunCmd(t, "--config", path), nil)
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.Model != "lorenz" {
		t.Errorf("expected model from file, got %s", cfg.Model)
	}
}

func TestParseGrid(t *testing.T) {
	name, values, err := parseGrid("theta=0.5:2:4")
	if err != nil {
		t.Fatalf("parseGrid: %v", err)
	}
	if name != "theta" || len(values) != 4 || values[0] != 0.5 || values[3] != 2 {
		t.Errorf("unexpected grid %s %v", name, values)
	}

	for _, bad := range []string{"theta", "=1:2:3", "theta=1:2", "theta=a:2:3", "theta=1:b:3", "theta=1:2:0"} {
		if _, _, err := parseGrid(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestMetricNames(t *testing.T) {
	got := metricNames(map[string]float64{"b": 1, "a": 2}, map[string]float64{"c": 3, "a": 4})
	if strings.Join(got, ",") != "a,b,c" {
		t.Errorf("unexpected names %v", got)
	}
}

func TestExportSVGWritesFile(t *testing.T) {
	dataDir = t.TempDir()
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	ou := models.NewOrnsteinUhlenbeck()
	res, err := sde.Simulate(ou.Drift, ou.Diffusion, sde.Broadcast([]float64{1}, 8), 1, 50, 8, sde.NewSource(3))
	if err != nil {
		t.Fatal(err)
	}
	runID, err := st.Save(storage.RunMetadata{Model: "ou", Seed: 3}, res)
	if err != nil {
		t.Fatal(err)
	}

	svgOut = filepath.Join(t.TempDir(), "run.svg")
	svgPhase, coord, samples = false, 0, 3
	defer func() { svgOut = "" }()

	if err := exportSVG(nil, []string{runID}); err != nil {
		t.Fatalf("exportSVG: %v", err)
	}
	data, err := os.ReadFile(svgOut)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("output is not an svg document")
	}

	// A one-dimensional run has no phase plane.
	svgPhase, xAxis, yAxis = true, 0, 1
	if err := exportSVG(nil, []string{runID}); err == nil {
		t.Error("expected error for phase portrait of a scalar run")
	}
}
