package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/sdesim/internal/sde"
	"github.com/san-kum/sdesim/internal/stats"
)

type ExportData struct {
	Metadata RunMetadata   `json:"metadata"`
	Times    []float64     `json:"times"`
	Mean     [][]float64   `json:"mean"`
	Std      [][]float64   `json:"std"`
	Paths    [][][]float64 `json:"paths,omitempty"`
}

// ExportJSON writes the run metadata and ensemble moments to w. With
// withPaths set, every realization's trajectory is included as
// paths[r][k][i]. Non-finite values are not representable in JSON and make
// encoding fail.
func ExportJSON(w io.Writer, meta RunMetadata, result *sde.Result, withPaths bool) error {
	data := ExportData{
		Metadata: meta,
		Times:    result.Times,
		Mean:     make([][]float64, result.StateDim),
		Std:      make([][]float64, result.StateDim),
	}

	for i := 0; i < result.StateDim; i++ {
		moments := stats.Moments(result, i)
		data.Mean[i] = make([]float64, len(moments))
		data.Std[i] = make([]float64, len(moments))
		for k, m := range moments {
			data.Mean[i][k] = m.Mean
			data.Std[i][k] = m.Std()
		}
	}

	if withPaths {
		data.Paths = make([][][]float64, result.Realizations)
		for r := range data.Paths {
			data.Paths[r] = make([][]float64, result.Steps+1)
			for k := range data.Paths[r] {
				data.Paths[r][k] = append([]float64(nil), result.Paths.Fiber(r, k)...)
			}
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
