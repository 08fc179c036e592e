package sde

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"
)

// linearSystem is dX = A X dt + B dW with constant B, used to exercise
// arbitrary (n, d, R) shapes.
type linearSystem struct {
	n, d int
	a    float64
	b    float64
}

func (s linearSystem) StateDim() int { return s.n }
func (s linearSystem) NoiseDim() int { return s.d }

func (s linearSystem) Drift(t float64, x *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Scale(s.a, x)
	return &out
}

func (s linearSystem) Diffusion(t float64, x *mat.Dense) *Tensor {
	_, r := x.Dims()
	return NewTensor(s.n, s.d, r, nil).Fill(s.b)
}

var _ = Describe("Simulator", func() {
	DescribeTable("respects the tensor contract",
		func(n, d, r, steps int, T float64) {
			sys := linearSystem{n: n, d: d, a: -0.5, b: 0.3}
			x0 := mat.NewDense(n, r, nil)
			for i := 0; i < n; i++ {
				for j := 0; j < r; j++ {
					x0.Set(i, j, float64(i+1)-0.1*float64(j))
				}
			}

			res, err := NewFromSystem(sys).Run(context.Background(), x0, Config{
				Duration: T, Steps: steps, Realizations: r, Seed: 11,
			})
			Expect(err).NotTo(HaveOccurred())

			a, b, c := res.Paths.Dims()
			Expect([]int{a, b, c}).To(Equal([]int{r, steps + 1, n}))
			Expect(res.NoiseDim).To(Equal(d))

			By("keeping the initial condition in slot 0")
			for j := 0; j < r; j++ {
				for i := 0; i < n; i++ {
					Expect(res.Paths.At(j, 0, i)).To(Equal(x0.At(i, j)))
				}
			}

			By("building an even grid from 0 to T")
			Expect(res.Times).To(HaveLen(steps + 1))
			Expect(res.Times[0]).To(BeZero())
			Expect(res.Times[steps]).To(Equal(T))
			for k := 1; k <= steps; k++ {
				Expect(res.Times[k] - res.Times[k-1]).To(BeNumerically("~", T/float64(steps), 1e-12))
			}

			By("exposing each realization as a trajectory matrix")
			traj := res.Trajectory(r - 1)
			rows, cols := traj.Dims()
			Expect(rows).To(Equal(steps + 1))
			Expect(cols).To(Equal(n))
			Expect(traj.At(steps, n-1)).To(Equal(res.Paths.At(r-1, steps, n-1)))
		},
		Entry("scalar", 1, 1, 1, 1, 1.0),
		Entry("more noise than state", 2, 5, 7, 30, 2.0),
		Entry("more state than noise", 4, 1, 3, 10, 0.5),
		Entry("wide batch", 3, 3, 130, 25, 1.0),
	)

	It("reduces to forward Euler without noise", func() {
		sys := linearSystem{n: 2, d: 2, a: -1, b: 0}
		x0 := Broadcast([]float64{1, 2}, 4)

		res, err := NewFromSystem(sys).Run(context.Background(), x0, Config{Duration: 1, Steps: 100, Realizations: 4})
		Expect(err).NotTo(HaveOccurred())

		want := math.Pow(1-0.01, 100)
		Expect(res.Paths.At(3, 100, 0)).To(BeNumerically("~", want, 1e-12))
		Expect(res.Paths.At(3, 100, 1)).To(BeNumerically("~", 2*want, 1e-12))
	})

	It("reports the realization mismatch as a domain error", func() {
		sys := linearSystem{n: 1, d: 1, a: -1, b: 1}
		_, err := NewFromSystem(sys).Run(context.Background(), Broadcast([]float64{0}, 4), Config{Duration: 1, Steps: 1, Realizations: 5})

		var de *DomainError
		Expect(errors.As(err, &de)).To(BeTrue())
		Expect(de.Field).To(Equal("realizations"))
		Expect(err).To(MatchError(ErrDomain))
	})

	Context("with a mean-reverting model and 1000 realizations", func() {
		var res *Result

		BeforeEach(func() {
			var err error
			res, err = Simulate(meanReverting, unitNoise, Broadcast([]float64{1}, 1000), 1, 1000, 1000, NewSource(8))
			Expect(err).NotTo(HaveOccurred())
		})

		It("has a terminal mean close to the noiseless solution", func() {
			terminal := res.Terminal()
			Expect(mat.Sum(terminal) / 1000).To(BeNumerically("~", math.Exp(-1), 0.1))
		})

		It("has a terminal variance close to the stationary value", func() {
			terminal := res.Terminal()
			mean := mat.Sum(terminal) / 1000
			v := 0.0
			for j := 0; j < 1000; j++ {
				v += (terminal.At(0, j) - mean) * (terminal.At(0, j) - mean)
			}
			v /= 999
			Expect(v).To(BeNumerically("~", (1-math.Exp(-2))/2, 0.08))
		})
	})
})
