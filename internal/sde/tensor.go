package sde

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Tensor is a dense rank-3 array of float64 stored in row-major order.
// Element (i, j, k) lives at data[(i*b+j)*c+k] for dims (a, b, c).
type Tensor struct {
	dims [3]int
	data []float64
}

// NewTensor creates an a×b×c tensor. If data is nil a zeroed backing slice is
// allocated; otherwise data is used directly and must have length a*b*c.
// NewTensor panics on non-positive dimensions or a length mismatch, as
// mat.NewDense does.
func NewTensor(a, b, c int, data []float64) *Tensor {
	if a <= 0 || b <= 0 || c <= 0 {
		panic(fmt.Sprintf("sde: non-positive tensor dimension (%d, %d, %d)", a, b, c))
	}
	size := a * b * c
	if data == nil {
		data = make([]float64, size)
	}
	if len(data) != size {
		panic(fmt.Sprintf("sde: tensor data length %d, want %d", len(data), size))
	}
	return &Tensor{dims: [3]int{a, b, c}, data: data}
}

// Dims returns the three axis sizes. A zero Tensor reports (0, 0, 0).
func (t *Tensor) Dims() (a, b, c int) {
	if t == nil {
		return 0, 0, 0
	}
	return t.dims[0], t.dims[1], t.dims[2]
}

func (t *Tensor) shape() []int {
	if t == nil {
		return nil
	}
	return []int{t.dims[0], t.dims[1], t.dims[2]}
}

func (t *Tensor) offset(i, j, k int) int {
	if uint(i) >= uint(t.dims[0]) || uint(j) >= uint(t.dims[1]) || uint(k) >= uint(t.dims[2]) {
		panic(fmt.Sprintf("sde: index (%d, %d, %d) out of range for %v", i, j, k, t.dims))
	}
	return (i*t.dims[1]+j)*t.dims[2] + k
}

// At returns the element at (i, j, k).
func (t *Tensor) At(i, j, k int) float64 { return t.data[t.offset(i, j, k)] }

// Set stores v at (i, j, k).
func (t *Tensor) Set(i, j, k int, v float64) { t.data[t.offset(i, j, k)] = v }

// RawData returns the backing slice. Changes to it are visible in t.
func (t *Tensor) RawData() []float64 { return t.data }

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	data := make([]float64, len(t.data))
	copy(data, t.data)
	return &Tensor{dims: t.dims, data: data}
}

// Fill sets every element to v and returns t.
func (t *Tensor) Fill(v float64) *Tensor {
	for i := range t.data {
		t.data[i] = v
	}
	return t
}

// Matrix returns the b×c slab at index i of the first axis as a *mat.Dense
// sharing storage with t. For a path tensor (R, N+1, n) this is the full
// trajectory of realization i, one row per time instant.
func (t *Tensor) Matrix(i int) *mat.Dense {
	if uint(i) >= uint(t.dims[0]) {
		panic(fmt.Sprintf("sde: slab %d out of range [0, %d)", i, t.dims[0]))
	}
	size := t.dims[1] * t.dims[2]
	return mat.NewDense(t.dims[1], t.dims[2], t.data[i*size:(i+1)*size:(i+1)*size])
}

// Fiber returns the c elements at (i, j, ·) sharing storage with t.
func (t *Tensor) Fiber(i, j int) []float64 {
	off := t.offset(i, j, 0)
	return t.data[off : off+t.dims[2] : off+t.dims[2]]
}

// IsFinite reports whether no element is NaN or ±Inf.
func (t *Tensor) IsFinite() bool {
	for _, v := range t.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// denseFinite reports whether m holds no NaN or ±Inf. It walks rows so that
// strided views returned by Slice are handled.
func denseFinite(m *mat.Dense) bool {
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		for _, v := range m.RawRowView(i) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// Broadcast repeats the state vector x0 across r realizations, giving the
// len(x0)×r initial condition expected by Simulator.Run.
func Broadcast(x0 []float64, r int) *mat.Dense {
	m := mat.NewDense(len(x0), r, nil)
	for i, v := range x0 {
		row := m.RawRowView(i)
		for j := range row {
			row[j] = v
		}
	}
	return m
}
