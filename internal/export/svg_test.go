package export

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/sdesim/internal/analysis"
	"github.com/san-kum/sdesim/internal/sde"
)

func spread() *sde.Result {
	const R, N = 3, 4
	paths := sde.NewTensor(R, N+1, 2, nil)
	for r := 0; r < R; r++ {
		for k := 0; k <= N; k++ {
			paths.Set(r, k, 0, float64(k*(r-1)))
			paths.Set(r, k, 1, float64(r))
		}
	}
	return &sde.Result{
		Times:        sde.TimeGrid(1, N),
		Paths:        paths,
		StateDim:     2,
		NoiseDim:     1,
		Realizations: R,
		Steps:        N,
	}
}

func TestEnsembleToSVG(t *testing.T) {
	svg, err := EnsembleToSVG(spread(), 0, 2, 400, 200)
	if err != nil {
		t.Fatalf("EnsembleToSVG: %v", err)
	}
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("not a complete svg document")
	}
	if strings.Count(svg, "<path") != 3 {
		t.Errorf("expected 2 sample paths and the mean, got %d paths", strings.Count(svg, "<path"))
	}
	if !strings.Contains(svg, "<polygon") {
		t.Error("missing std band")
	}

	if _, err := EnsembleToSVG(spread(), 2, 0, 400, 200); err == nil {
		t.Error("expected error for out-of-range coordinate")
	}
}

func TestEnsembleToSVGBreaksAtNonFinite(t *testing.T) {
	res := spread()
	res.Paths.Set(0, 2, 0, math.NaN())

	svg, err := EnsembleToSVG(res, 0, 1, 400, 200)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(svg, "NaN") {
		t.Error("svg should not contain NaN coordinates")
	}
	// The broken sample path restarts with a second move command.
	sample := svg[strings.Index(svg, `stroke="`+sampleColor):]
	sample = sample[:strings.Index(sample, "/>")]
	if strings.Count(sample, "M") != 2 {
		t.Errorf("expected the sample path to restart once: %s", sample)
	}
}

func TestPortraitToSVG(t *testing.T) {
	p := analysis.PhasePortrait(spread(), 2, 0, 1)
	svg := PortraitToSVG(p, 300, 300, "#00ff00")
	if !strings.Contains(svg, `stroke="#00ff00"`) || !strings.Contains(svg, " L") {
		t.Errorf("unexpected svg %s", svg)
	}
	if PortraitToSVG(nil, 10, 10, "#fff") != "" {
		t.Error("expected empty output for nil portrait")
	}
}

func TestBounds(t *testing.T) {
	lo, hi := bounds([]float64{math.NaN(), 3, math.Inf(1), -2})
	if lo != -2 || hi != 3 {
		t.Errorf("bounds = %v, %v", lo, hi)
	}
	lo, hi = bounds([]float64{math.NaN()})
	if lo != 0 || hi != 0 {
		t.Errorf("bounds of nothing = %v, %v", lo, hi)
	}
}
