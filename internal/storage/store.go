package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/sdesim/internal/sde"
	"github.com/san-kum/sdesim/internal/stats"
)

const (
	metadataFile = "metadata.json"
	pathsFile    = "paths.csv"
	summaryFile  = "summary.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Warning mirrors sde.NumericWarning in the metadata file.
type Warning struct {
	Func string  `json:"func"`
	Step int     `json:"step"`
	Time float64 `json:"time"`
}

type RunMetadata struct {
	ID           string             `json:"id"`
	Model        string             `json:"model"`
	Timestamp    time.Time          `json:"timestamp"`
	Seed         uint64             `json:"seed"`
	Duration     float64            `json:"duration"`
	Dt           float64            `json:"dt"`
	Steps        int                `json:"steps"`
	Realizations int                `json:"realizations"`
	StateDim     int                `json:"state_dim"`
	NoiseDim     int                `json:"noise_dim"`
	Workers      int                `json:"workers,omitempty"`
	Batches      int                `json:"batches,omitempty"`
	InitState    []float64          `json:"init_state"`
	Params       map[string]float64 `json:"params,omitempty"`
	Metrics      map[string]float64 `json:"metrics"`
	Warnings     []Warning          `json:"warnings,omitempty"`
	ElapsedMS    float64            `json:"elapsed_ms,omitempty"`
}

// Save writes a run directory holding metadata.json, paths.csv and
// summary.csv. The caller fills the descriptive fields of meta; ID,
// Timestamp and the result dimensions are set here.
func (s *Store) Save(meta RunMetadata, result *sde.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Model, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Dt = result.Dt
	meta.Duration = result.Times[result.Steps]
	meta.Steps = result.Steps
	meta.Realizations = result.Realizations
	meta.StateDim = result.StateDim
	meta.NoiseDim = result.NoiseDim
	meta.Warnings = make([]Warning, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		meta.Warnings = append(meta.Warnings, Warning{Func: w.Func, Step: w.Step, Time: w.Time})
	}
	if meta.Metrics == nil {
		meta.Metrics = map[string]float64{}
	}

	if err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, pathsFile), func(w io.Writer) error {
		return ExportCSV(w, result)
	}); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, summaryFile), func(w io.Writer) error {
		return writeSummary(w, result)
	}); err != nil {
		return "", err
	}

	return runID, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ExportCSV writes every sampled state as one row:
// realization,time,x0,...,x{n-1}.
func ExportCSV(w io.Writer, result *sde.Result) error {
	cw := csv.NewWriter(w)

	header := []string{"realization", "time"}
	for i := 0; i < result.StateDim; i++ {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, 2+result.StateDim)
	for r := 0; r < result.Realizations; r++ {
		row[0] = strconv.Itoa(r)
		for k, t := range result.Times {
			row[1] = formatFloat(t)
			for i, v := range result.Paths.Fiber(r, k) {
				row[2+i] = formatFloat(v)
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func writeSummary(w io.Writer, result *sde.Result) error {
	cw := csv.NewWriter(w)

	header := []string{"time"}
	for i := 0; i < result.StateDim; i++ {
		header = append(header, fmt.Sprintf("mean_x%d", i), fmt.Sprintf("std_x%d", i))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	moments := make([][]stats.Moment, result.StateDim)
	for i := range moments {
		moments[i] = stats.Moments(result, i)
	}

	for k, t := range result.Times {
		row := []string{formatFloat(t)}
		for i := range moments {
			row = append(row, formatFloat(moments[i][k].Mean), formatFloat(moments[i][k].Std()))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// List returns the metadata of every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadPaths rebuilds the full result of a saved run.
func (s *Store) LoadPaths(runID string) (*sde.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	if meta.Realizations < 1 || meta.Steps < 1 || meta.StateDim < 1 {
		return nil, fmt.Errorf("run %s: incomplete metadata", runID)
	}

	records, err := readCSV(filepath.Join(s.baseDir, runID, pathsFile))
	if err != nil {
		return nil, err
	}

	R, K, n := meta.Realizations, meta.Steps+1, meta.StateDim
	if len(records) != R*K {
		return nil, fmt.Errorf("run %s: %s has %d rows, want %d", runID, pathsFile, len(records), R*K)
	}

	paths := sde.NewTensor(R, K, n, nil)
	times := make([]float64, K)
	for idx, record := range records {
		if len(record) != n+2 {
			return nil, fmt.Errorf("run %s: row %d has %d fields, want %d", runID, idx+1, len(record), n+2)
		}
		vals, err := parseRow(record[1:])
		if err != nil {
			return nil, fmt.Errorf("run %s: row %d: %w", runID, idx+1, err)
		}
		r, k := idx/K, idx%K
		if r == 0 {
			times[k] = vals[0]
		}
		copy(paths.Fiber(r, k), vals[1:])
	}

	warnings := make([]sde.NumericWarning, 0, len(meta.Warnings))
	for _, w := range meta.Warnings {
		warnings = append(warnings, sde.NumericWarning{Func: w.Func, Step: w.Step, Time: w.Time})
	}

	return &sde.Result{
		Times:        times,
		Paths:        paths,
		Dt:           meta.Dt,
		StateDim:     n,
		NoiseDim:     meta.NoiseDim,
		Realizations: R,
		Steps:        meta.Steps,
		Warnings:     warnings,
	}, nil
}

// Summary is the per-time ensemble mean and standard deviation of a run.
// Mean[i] and Std[i] hold coordinate i.
type Summary struct {
	Times []float64
	Mean  [][]float64
	Std   [][]float64
}

func (s *Store) LoadSummary(runID string) (*Summary, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, summaryFile))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Summary{}, nil
	}

	n := (len(records[0]) - 1) / 2
	sum := &Summary{
		Times: make([]float64, 0, len(records)),
		Mean:  make([][]float64, n),
		Std:   make([][]float64, n),
	}
	for idx, record := range records {
		vals, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("run %s: summary row %d: %w", runID, idx+1, err)
		}
		if len(vals) != 2*n+1 {
			return nil, fmt.Errorf("run %s: summary row %d has %d fields", runID, idx+1, len(vals))
		}
		sum.Times = append(sum.Times, vals[0])
		for i := 0; i < n; i++ {
			sum.Mean[i] = append(sum.Mean[i], vals[1+2*i])
			sum.Std[i] = append(sum.Std[i], vals[2+2*i])
		}
	}
	return sum, nil
}

// readCSV returns the data rows of a CSV file, without its header.
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}

func parseRow(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
