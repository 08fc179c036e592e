package sde

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrShape indicates a tensor with the wrong rank or axis sizes.
	ErrShape = errors.New("sde: shape mismatch")

	// ErrDomain indicates a run parameter outside its valid range.
	ErrDomain = errors.New("sde: parameter out of domain")

	// ErrNonFinite marks drift or diffusion output containing NaN or Inf.
	ErrNonFinite = errors.New("sde: non-finite value")

	// ErrNoModel indicates a Simulator built without drift or diffusion.
	ErrNoModel = errors.New("sde: drift and diffusion functions are required")
)

// ShapeError reports a tensor whose shape breaks the (n, R) / (n, d, R)
// contract. Step is the time index whose evaluation produced it; zero means
// the check ran before any stepping.
type ShapeError struct {
	Input string
	Step  int
	Want  []int
	Got   []int
}

func (e *ShapeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "sde: %s ", e.Input)
	if e.Input == "x0" {
		b.WriteString("has shape ")
	} else {
		b.WriteString("returned shape ")
	}
	b.WriteString(formatShape(e.Got))
	fmt.Fprintf(&b, ", want %s", formatShape(e.Want))
	if e.Step > 0 {
		fmt.Fprintf(&b, " at step %d", e.Step)
	}
	return b.String()
}

func (e *ShapeError) Unwrap() error { return ErrShape }

// DomainError reports a scalar run parameter outside its valid range.
type DomainError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("sde: %s = %g: %s", e.Field, e.Value, e.Reason)
}

func (e *DomainError) Unwrap() error { return ErrDomain }

// NumericWarning records the first step at which a model function returned
// NaN or Inf. It does not stop the run.
type NumericWarning struct {
	Func string
	Step int
	Time float64
}

func (w NumericWarning) Error() string {
	return fmt.Sprintf("sde: %s produced non-finite values at step %d (t=%.6g)", w.Func, w.Step, w.Time)
}

func (w NumericWarning) Unwrap() error { return ErrNonFinite }

// formatShape renders nil as "nil" and negative axes as "*".
func formatShape(s []int) string {
	if s == nil {
		return "nil"
	}
	parts := make([]string, len(s))
	for i, v := range s {
		if v < 0 {
			parts[i] = "*"
			continue
		}
		parts[i] = strconv.Itoa(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
