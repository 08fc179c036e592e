package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/sdesim/internal/sde"
)

// Point is one (x, y) sample in a 2D projection of state space.
type Point struct{ X, Y float64 }

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []Point
}

// PhasePortrait projects the path of one realization onto coordinates
// xIdx and yIdx. It returns nil for out-of-range arguments.
func PhasePortrait(res *sde.Result, realization, xIdx, yIdx int) *PhasePortrait2D {
	if !validProjection(res, xIdx, yIdx) || realization < 0 || realization >= res.Realizations {
		return nil
	}

	portrait := &PhasePortrait2D{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, 0, res.Steps+1),
	}
	for k := 0; k <= res.Steps; k++ {
		x := res.Paths.Fiber(realization, k)
		portrait.Points = append(portrait.Points, Point{X: x[xIdx], Y: x[yIdx]})
	}
	return portrait
}

// EnsembleCloud projects every realization at time index k, showing how the
// ensemble has spread through state space.
func EnsembleCloud(res *sde.Result, k, xIdx, yIdx int) *PhasePortrait2D {
	if !validProjection(res, xIdx, yIdx) || k < 0 || k > res.Steps {
		return nil
	}

	cloud := &PhasePortrait2D{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, 0, res.Realizations),
	}
	for r := 0; r < res.Realizations; r++ {
		x := res.Paths.Fiber(r, k)
		cloud.Points = append(cloud.Points, Point{X: x[xIdx], Y: x[yIdx]})
	}
	return cloud
}

func validProjection(res *sde.Result, xIdx, yIdx int) bool {
	return res != nil && xIdx >= 0 && yIdx >= 0 && xIdx < res.StateDim && yIdx < res.StateDim
}

// plane maps a padded bounding box of points onto a width×height grid of
// runes, row 0 at the top.
type plane struct {
	lo, span      Point
	width, height int
}

// newPlane returns false when no point is finite.
func newPlane(points []Point, width, height int) (plane, bool) {
	lo := Point{math.Inf(1), math.Inf(1)}
	hi := Point{math.Inf(-1), math.Inf(-1)}
	for _, p := range points {
		if !finitePoint(p) {
			continue
		}
		lo.X, hi.X = math.Min(lo.X, p.X), math.Max(hi.X, p.X)
		lo.Y, hi.Y = math.Min(lo.Y, p.Y), math.Max(hi.Y, p.Y)
	}
	if lo.X > hi.X {
		return plane{}, false
	}

	pad := func(lo, hi float64) (float64, float64) {
		span := hi - lo
		if span == 0 {
			span = 1
		}
		return lo - 0.1*span, 1.2 * span
	}
	var pl plane
	pl.lo.X, pl.span.X = pad(lo.X, hi.X)
	pl.lo.Y, pl.span.Y = pad(lo.Y, hi.Y)
	pl.width, pl.height = width, height
	return pl, true
}

func (pl plane) col(x float64) int {
	return int((x - pl.lo.X) / pl.span.X * float64(pl.width-1))
}

func (pl plane) row(y float64) int {
	return pl.height - 1 - int((y-pl.lo.Y)/pl.span.Y*float64(pl.height-1))
}

func (pl plane) contains(row, col int) bool {
	return row >= 0 && row < pl.height && col >= 0 && col < pl.width
}

func finitePoint(p Point) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// PhasePortraitToASCII draws the points as '•' with the axes underneath
// wherever they fall inside the padded bounds. Non-finite points are skipped.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || width < 2 || height < 2 {
		return ""
	}
	pl, ok := newPlane(portrait.Points, width, height)
	if !ok {
		return ""
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	if c := pl.col(0); pl.contains(0, c) {
		for r := range grid {
			grid[r][c] = '│'
		}
	}
	if r := pl.row(0); pl.contains(r, 0) {
		for c := range grid[r] {
			grid[r][c] = '─'
		}
	}
	for _, p := range portrait.Points {
		if !finitePoint(p) {
			continue
		}
		if r, c := pl.row(p.Y), pl.col(p.X); pl.contains(r, c) {
			grid[r][c] = '•'
		}
	}

	var sb strings.Builder
	for _, line := range grid {
		sb.WriteString(string(line))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// PoincareSection records points when a trajectory crosses a plane
type PoincareSection struct {
	Points []Point
}

// GeneratePoincareSection records coordinates recordX and recordY of one
// realization each time coordinate crossIdx rises through threshold,
// interpolating linearly between the bracketing steps.
func GeneratePoincareSection(res *sde.Result, realization, crossIdx int, threshold float64, recordX, recordY int) *PoincareSection {
	if !validProjection(res, recordX, recordY) || crossIdx < 0 || crossIdx >= res.StateDim ||
		realization < 0 || realization >= res.Realizations {
		return nil
	}

	section := &PoincareSection{Points: make([]Point, 0)}
	prev := res.Paths.Fiber(realization, 0)
	for k := 1; k <= res.Steps; k++ {
		curr := res.Paths.Fiber(realization, k)
		if prev[crossIdx] < threshold && curr[crossIdx] >= threshold {
			frac := (threshold - prev[crossIdx]) / (curr[crossIdx] - prev[crossIdx])
			section.Points = append(section.Points, Point{
				X: prev[recordX] + frac*(curr[recordX]-prev[recordX]),
				Y: prev[recordY] + frac*(curr[recordY]-prev[recordY]),
			})
		}
		prev = curr
	}
	return section
}

// PoincareSectionToASCII converts section data to ASCII plot
func PoincareSectionToASCII(section *PoincareSection, width, height int) string {
	if section == nil || len(section.Points) == 0 {
		return "No crossings detected"
	}

	portrait := &PhasePortrait2D{Points: section.Points}
	return PhasePortraitToASCII(portrait, width, height)
}
