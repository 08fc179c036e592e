package storage

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/sdesim/internal/sde"
)

// sampleResult has 3 realizations, 2 coordinates and 4 time instants.
// Coordinate 0 of realization r at step k is r+k/3; coordinate 1 is its
// negation.
func sampleResult() *sde.Result {
	const R, N, n = 3, 3, 2
	paths := sde.NewTensor(R, N+1, n, nil)
	for r := 0; r < R; r++ {
		for k := 0; k <= N; k++ {
			v := float64(r) + float64(k)/3
			paths.Set(r, k, 0, v)
			paths.Set(r, k, 1, -v)
		}
	}
	return &sde.Result{
		Times:        sde.TimeGrid(0.3, N),
		Paths:        paths,
		Dt:           0.1,
		StateDim:     n,
		NoiseDim:     1,
		Realizations: R,
		Steps:        N,
		Warnings:     []sde.NumericWarning{{Func: "drift", Step: 2, Time: 0.2}},
	}
}

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	return st, tmpDir
}

func TestStoreSaveLoad(t *testing.T) {
	st, _ := newStore(t)

	runID, err := st.Save(RunMetadata{
		Model:     "ou",
		Seed:      42,
		InitState: []float64{0, 0},
		Params:    map[string]float64{"theta": 1},
		Metrics:   map[string]float64{"finite_fraction": 1},
	}, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if !strings.HasPrefix(runID, "ou_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Model != "ou" || meta.Seed != 42 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Realizations != 3 || meta.Steps != 3 || meta.StateDim != 2 || meta.NoiseDim != 1 {
		t.Errorf("dimensions not recorded: %+v", meta)
	}
	if meta.Duration != 0.3 {
		t.Errorf("expected duration 0.3, got %v", meta.Duration)
	}
	if meta.Metrics["finite_fraction"] != 1 || meta.Params["theta"] != 1 {
		t.Errorf("metrics or params lost: %+v", meta)
	}
	if len(meta.Warnings) != 1 || meta.Warnings[0].Func != "drift" {
		t.Errorf("warnings lost: %+v", meta.Warnings)
	}
}

func TestStoreLoadPathsRoundTrip(t *testing.T) {
	st, _ := newStore(t)
	want := sampleResult()

	runID, err := st.Save(RunMetadata{Model: "test"}, want)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := st.LoadPaths(runID)
	if err != nil {
		t.Fatalf("load paths failed: %v", err)
	}

	if got.Realizations != want.Realizations || got.Steps != want.Steps || got.StateDim != want.StateDim {
		t.Fatalf("dims mismatch: %+v", got)
	}
	for k := range want.Times {
		if got.Times[k] != want.Times[k] {
			t.Errorf("time %d: got %v want %v", k, got.Times[k], want.Times[k])
		}
	}
	gd, wd := got.Paths.RawData(), want.Paths.RawData()
	for i := range wd {
		if gd[i] != wd[i] {
			t.Fatalf("path value %d: got %v want %v", i, gd[i], wd[i])
		}
	}
	if len(got.Warnings) != 1 || got.Warnings[0].Step != 2 {
		t.Errorf("warnings not restored: %+v", got.Warnings)
	}
}

func TestStoreNonFiniteValuesSurvive(t *testing.T) {
	st, _ := newStore(t)
	res := sampleResult()
	res.Paths.Set(1, 3, 0, math.Inf(1))
	res.Paths.Set(2, 3, 1, math.NaN())

	runID, err := st.Save(RunMetadata{Model: "test"}, res)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := st.LoadPaths(runID)
	if err != nil {
		t.Fatalf("load paths failed: %v", err)
	}
	if !math.IsInf(got.Paths.At(1, 3, 0), 1) || !math.IsNaN(got.Paths.At(2, 3, 1)) {
		t.Error("non-finite values not preserved")
	}
}

func TestStoreLoadSummary(t *testing.T) {
	st, _ := newStore(t)
	runID, err := st.Save(RunMetadata{Model: "test"}, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	sum, err := st.LoadSummary(runID)
	if err != nil {
		t.Fatalf("load summary failed: %v", err)
	}
	if len(sum.Times) != 4 || len(sum.Mean) != 2 {
		t.Fatalf("unexpected summary shape: %+v", sum)
	}
	// Realizations 0, 1, 2 shifted by k/3: mean is 1+k/3, sample std is 1.
	for k := range sum.Times {
		if math.Abs(sum.Mean[0][k]-(1+float64(k)/3)) > 1e-12 {
			t.Errorf("mean x0 at %d: %v", k, sum.Mean[0][k])
		}
		if math.Abs(sum.Mean[1][k]+sum.Mean[0][k]) > 1e-12 {
			t.Errorf("mean x1 at %d: %v", k, sum.Mean[1][k])
		}
		if math.Abs(sum.Std[0][k]-1) > 1e-12 {
			t.Errorf("std x0 at %d: %v", k, sum.Std[0][k])
		}
	}
}

func TestStoreList(t *testing.T) {
	st, _ := newStore(t)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	first, err := st.Save(RunMetadata{Model: "a"}, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	second, err := st.Save(RunMetadata{Model: "b"}, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != second || runs[1].ID != first {
		t.Errorf("expected newest first, got %s then %s", runs[0].ID, runs[1].ID)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	st, tmpDir := newStore(t)

	runID, err := st.Save(RunMetadata{Model: "test"}, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{"metadata.json", "paths.csv", "summary.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}

	data, err := os.ReadFile(filepath.Join(runDir, "paths.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "realization,time,x0,x1" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if len(lines) != 1+3*4 {
		t.Errorf("expected 13 lines, got %d", len(lines))
	}
}

func TestLoadPathsErrors(t *testing.T) {
	st, tmpDir := newStore(t)
	if _, err := st.LoadPaths("missing"); err == nil {
		t.Error("expected error for missing run")
	}

	runID, err := st.Save(RunMetadata{Model: "test"}, sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	csvPath := filepath.Join(tmpDir, runID, "paths.csv")
	if err := os.WriteFile(csvPath, []byte("realization,time,x0,x1\n0,0,1,2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := st.LoadPaths(runID); err == nil {
		t.Error("expected error for truncated paths file")
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	res := sampleResult()
	if err := ExportJSON(&buf, RunMetadata{Model: "ou"}, res, true); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Metadata.Model != "ou" || len(data.Times) != 4 {
		t.Errorf("unexpected export %+v", data.Metadata)
	}
	if len(data.Mean) != 2 || len(data.Mean[0]) != 4 {
		t.Errorf("unexpected mean shape")
	}
	if len(data.Paths) != 3 || data.Paths[2][3][0] != 3 {
		t.Errorf("unexpected paths %v", data.Paths)
	}

	buf.Reset()
	if err := ExportJSON(&buf, RunMetadata{}, res, false); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), `"paths"`) {
		t.Error("paths should be omitted")
	}
}
