// Package export renders run data as standalone SVG documents.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/sdesim/internal/analysis"
	"github.com/san-kum/sdesim/internal/sde"
	"github.com/san-kum/sdesim/internal/stats"
)

const (
	background  = "#0a0a0a"
	meanColor   = "#ff00ff"
	bandColor   = "#ffff00"
	sampleColor = "#666688"
)

// frame maps data coordinates onto a width×height canvas with 10% padding.
type frame struct {
	minX, minY, rangeX, rangeY float64
	width, height              int
}

func newFrame(xs, ys []float64, width, height int) frame {
	minX, maxX := bounds(xs)
	minY, maxY := bounds(ys)

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1

	return frame{
		minX:   minX,
		minY:   minY,
		rangeX: rangeX * 1.2,
		rangeY: rangeY * 1.2,
		width:  width,
		height: height,
	}
}

// bounds returns the finite min and max of xs, or (0, 0) if none.
func bounds(xs []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range xs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

func (f frame) point(x, y float64) (float64, float64) {
	px := (x - f.minX) / f.rangeX * float64(f.width)
	py := float64(f.height) - (y-f.minY)/f.rangeY*float64(f.height)
	return px, py
}

func header(sb *strings.Builder, width, height int) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))
}

// polyline writes one path, breaking it at non-finite values.
func polyline(sb *strings.Builder, f frame, xs, ys []float64, stroke string, strokeWidth float64) {
	var d strings.Builder
	pen := false
	for i := range xs {
		if math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			pen = false
			continue
		}
		x, y := f.point(xs[i], ys[i])
		if pen {
			d.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		} else {
			d.WriteString(fmt.Sprintf(" M%.1f,%.1f", x, y))
			pen = true
		}
	}
	if d.Len() == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="%.1f" d="%s"/>
`, stroke, strokeWidth, strings.TrimSpace(d.String())))
}

// EnsembleToSVG draws coordinate coord of res over time: a shaded ±1 std
// band, up to samples individual realizations and the ensemble mean on top.
func EnsembleToSVG(res *sde.Result, coord, samples, width, height int) (string, error) {
	if res == nil || coord < 0 || coord >= res.StateDim {
		return "", fmt.Errorf("export: coordinate %d out of range", coord)
	}

	moments := stats.Moments(res, coord)
	mean := make([]float64, len(moments))
	upper := make([]float64, len(moments))
	lower := make([]float64, len(moments))
	for k, m := range moments {
		mean[k] = m.Mean
		upper[k] = m.Mean + m.Std()
		lower[k] = m.Mean - m.Std()
	}

	if samples > res.Realizations {
		samples = res.Realizations
	}
	paths := make([][]float64, samples)
	ys := append(append([]float64(nil), upper...), lower...)
	for r := range paths {
		paths[r] = res.Path(r, coord)
		ys = append(ys, paths[r]...)
	}

	f := newFrame(res.Times, ys, width, height)

	var sb strings.Builder
	header(&sb, width, height)

	// band: upper edge forwards, lower edge backwards
	var band strings.Builder
	for k := range res.Times {
		if !finite(upper[k]) {
			continue
		}
		x, y := f.point(res.Times[k], upper[k])
		band.WriteString(fmt.Sprintf("%.1f,%.1f ", x, y))
	}
	for k := len(res.Times) - 1; k >= 0; k-- {
		if !finite(lower[k]) {
			continue
		}
		x, y := f.point(res.Times[k], lower[k])
		band.WriteString(fmt.Sprintf("%.1f,%.1f ", x, y))
	}
	if band.Len() > 0 {
		sb.WriteString(fmt.Sprintf(`<polygon fill="%s" fill-opacity="0.2" stroke="none" points="%s"/>
`, bandColor, strings.TrimSpace(band.String())))
	}

	for _, p := range paths {
		polyline(&sb, f, res.Times, p, sampleColor, 1)
	}
	polyline(&sb, f, res.Times, mean, meanColor, 2)

	sb.WriteString("</svg>\n")
	return sb.String(), nil
}

// PortraitToSVG draws a phase portrait as a single path.
func PortraitToSVG(portrait *analysis.PhasePortrait2D, width, height int, strokeColor string) string {
	if portrait == nil || len(portrait.Points) < 2 {
		return ""
	}

	xs := make([]float64, len(portrait.Points))
	ys := make([]float64, len(portrait.Points))
	for i, p := range portrait.Points {
		xs[i], ys[i] = p.X, p.Y
	}
	f := newFrame(xs, ys, width, height)

	var sb strings.Builder
	header(&sb, width, height)
	polyline(&sb, f, xs, ys, strokeColor, 1.5)
	sb.WriteString("</svg>\n")
	return sb.String()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
