package utils

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Matrix functions used for the calculations in the engine.
// All of them allocate their output; none mutate their inputs.

// r = rows of matrix
// c = columns of matrix
// o = output
// m = matrix input number 1
// n = matrix input number 2

func Dot(m, n mat.Matrix) *mat.Dense {
	r, _ := m.Dims()
	_, c := n.Dims()
	o := mat.NewDense(r, c, nil)
	o.Mul(m, n)
	return o
}

func Apply(fn func(i, j int, v float64) float64, m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.Apply(fn, m)
	return o
}

func Scale(s float64, m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.Scale(s, m)
	return o
}

func Multiply(m, n mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.MulElem(m, n)
	return o
}

func Add(m, n mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.Add(m, n)
	return o
}

func Subtract(m, n mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.Sub(m, n)
	return o
}

// ---------- Activations ----------

func TanhApply(_, _ int, v float64) float64 {
	return math.Tanh(v)
}

func LogApply(_, _ int, v float64) float64 {
	return math.Log(v)
}

// TanhPrime returns 1 - tanh(z)^2 elementwise, given the pre-activation z.
func TanhPrime(z mat.Matrix) *mat.Dense {
	return Apply(func(_, _ int, v float64) float64 {
		t := math.Tanh(v)
		return 1 - t*t
	}, z)
}

// ColVectorSoftmax applies softmax across the single column of a (r x 1) vector.
// The max is subtracted first; the result is the same distribution.
func ColVectorSoftmax(v mat.Matrix) *mat.Dense {
	r, c := v.Dims()
	if c != 1 {
		panic("ColVectorSoftmax expects a (r x 1) column vector")
	}
	e := Column(v)
	mx := floats.Max(e)
	for i := range e {
		e[i] = math.Exp(e[i] - mx)
	}
	floats.Scale(1/floats.Sum(e), e)
	return mat.NewDense(r, 1, e)
}

// ---------- Vectors ----------

// Column copies a (r x 1) matrix into a fresh slice.
func Column(v mat.Matrix) []float64 {
	r, _ := v.Dims()
	out := make([]float64, r)
	for i := range out {
		out[i] = v.At(i, 0)
	}
	return out
}

// Argmax returns the row of the largest entry of a column vector; the
// lowest index wins ties.
func Argmax(v mat.Matrix) int {
	return floats.MaxIdx(Column(v))
}

func OneHot(n, idx int) *mat.Dense {
	v := make([]float64, n)
	if idx >= 0 && idx < n {
		v[idx] = 1.0
	}
	return mat.NewDense(n, 1, v)
}

func Ones(r, c int) *mat.Dense {
	v := make([]float64, r*c)
	for i := range v {
		v[i] = 1
	}
	return mat.NewDense(r, c, v)
}

// ConcatWithBias stacks column vectors and appends a trailing 1.0 entry.
func ConcatWithBias(vectors ...mat.Matrix) *mat.Dense {
	size := 1
	for _, v := range vectors {
		r, _ := v.Dims()
		size += r
	}
	out := make([]float64, 0, size)
	for _, v := range vectors {
		out = append(out, Column(v)...)
	}
	out = append(out, 1.0)
	return mat.NewDense(size, 1, out)
}

// WithoutLastCol returns a view of m without its bias column.
func WithoutLastCol(m *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	return m.Slice(0, r, 0, c-1).(*mat.Dense)
}

// WithoutLastRow returns a view of a biased column vector without the bias.
func WithoutLastRow(m *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	return m.Slice(0, r-1, 0, c).(*mat.Dense)
}

func ToDense(m mat.Matrix) *mat.Dense {
	if d, ok := m.(*mat.Dense); ok {
		return d
	}
	return mat.DenseCopyOf(m)
}

// MatrixNorm is the Frobenius norm.
func MatrixNorm(m mat.Matrix) float64 {
	return mat.Norm(m, 2)
}

// ---------- Initialization ----------

// FanInit samples a (fanOut x fanIn) matrix from U(-eps, eps) with
// eps = sqrt(6 / (fanIn + fanOut)).
func FanInit(fanIn, fanOut int, rng *rand.Rand) *mat.Dense {
	eps := math.Sqrt(6 / float64(fanIn+fanOut))
	return mat.NewDense(fanOut, fanIn, RandomArray(fanIn*fanOut, -eps, eps, rng))
}

// RandomArray returns size samples from U(min, max) drawn from rng.
func RandomArray(size int, min, max float64, rng *rand.Rand) []float64 {
	dist := distuv.Uniform{Min: min, Max: max, Src: rng}
	out := make([]float64, size)
	for i := range out {
		out[i] = dist.Rand()
	}
	return out
}
