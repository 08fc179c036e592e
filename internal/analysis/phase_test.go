package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/sdesim/internal/sde"
)

// circle is one realization tracing a unit square loop in (x0, x1).
func circle() *sde.Result {
	pts := [][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}, {-1, -1}}
	paths := sde.NewTensor(2, len(pts), 2, nil)
	for k, p := range pts {
		paths.Set(0, k, 0, p[0])
		paths.Set(0, k, 1, p[1])
		paths.Set(1, k, 0, 2*p[0])
		paths.Set(1, k, 1, 2*p[1])
	}
	return &sde.Result{
		Times:        []float64{0, 1, 2, 3, 4},
		Paths:        paths,
		StateDim:     2,
		NoiseDim:     1,
		Realizations: 2,
		Steps:        4,
	}
}

func TestPhasePortrait(t *testing.T) {
	res := circle()

	p := PhasePortrait(res, 1, 0, 1)
	if p == nil || len(p.Points) != 5 {
		t.Fatalf("expected 5 points, got %+v", p)
	}
	if p.Points[1] != (Point{X: 2, Y: -2}) {
		t.Errorf("unexpected point %+v", p.Points[1])
	}

	if PhasePortrait(res, 0, 0, 2) != nil {
		t.Error("expected nil for out-of-range coordinate")
	}
	if PhasePortrait(res, 5, 0, 1) != nil {
		t.Error("expected nil for out-of-range realization")
	}

	art := PhasePortraitToASCII(p, 20, 10)
	if strings.Count(art, "\n") != 10 || !strings.Contains(art, "•") {
		t.Errorf("unexpected ascii output:\n%s", art)
	}
}

func TestEnsembleCloud(t *testing.T) {
	cloud := EnsembleCloud(circle(), 2, 0, 1)
	if cloud == nil || len(cloud.Points) != 2 {
		t.Fatalf("expected 2 points, got %+v", cloud)
	}
	if cloud.Points[1] != (Point{X: 2, Y: 2}) {
		t.Errorf("unexpected point %+v", cloud.Points[1])
	}
	if EnsembleCloud(circle(), 9, 0, 1) != nil {
		t.Error("expected nil for out-of-range time index")
	}
}

func TestPoincareSection(t *testing.T) {
	section := GeneratePoincareSection(circle(), 0, 1, 0, 0, 1)
	if section == nil || len(section.Points) != 1 {
		t.Fatalf("expected one upward crossing, got %+v", section)
	}
	if section.Points[0] != (Point{X: 1, Y: 0}) {
		t.Errorf("unexpected crossing point %+v", section.Points[0])
	}

	if PoincareSectionToASCII(&PoincareSection{}, 10, 5) != "No crossings detected" {
		t.Error("expected placeholder for empty section")
	}
}

func TestPhasePortraitToASCIISkipsNonFinite(t *testing.T) {
	p := &PhasePortrait2D{Points: []Point{{-1, -1}, {1, 1}, {math.NaN(), 0}, {0, math.Inf(1)}}}
	art := PhasePortraitToASCII(p, 21, 11)

	if strings.Count(art, "\n") != 11 {
		t.Fatalf("expected 11 rows:\n%s", art)
	}
	if strings.Count(art, "•") != 2 {
		t.Errorf("expected only the two finite points:\n%s", art)
	}
	if !strings.Contains(art, "│") || !strings.Contains(art, "─") {
		t.Errorf("expected both axes inside bounds:\n%s", art)
	}

	if PhasePortraitToASCII(&PhasePortrait2D{Points: []Point{{math.NaN(), 1}}}, 10, 5) != "" {
		t.Error("expected empty output when no point is finite")
	}
}
