package utils

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestColVectorSoftmax(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	for trial := 0; trial < 50; trial++ {
		v := mat.NewDense(6, 1, RandomArray(6, -20, 20, rng))
		p := Column(ColVectorSoftmax(v))
		assert.InDelta(t, 1.0, floats.Sum(p), 1e-12)
		for _, pi := range p {
			assert.Greater(t, pi, 0.0)
		}
	}

	// large logits must not overflow
	p := Column(ColVectorSoftmax(mat.NewDense(2, 1, []float64{1000, 1000})))
	assert.True(t, floats.EqualApprox(p, []float64{0.5, 0.5}, 1e-12))
}

func TestColVectorSoftmaxPanicsOnMatrix(t *testing.T) {
	assert.Panics(t, func() { ColVectorSoftmax(mat.NewDense(2, 2, nil)) })
}

func TestTanhPrime(t *testing.T) {
	z := mat.NewDense(3, 1, []float64{0, 1, -2})
	d := TanhPrime(z)
	for i := 0; i < 3; i++ {
		th := math.Tanh(z.At(i, 0))
		assert.InDelta(t, 1-th*th, d.At(i, 0), 1e-15)
	}
	assert.Equal(t, 1.0, d.At(0, 0))
}

func TestConcatWithBias(t *testing.T) {
	a := mat.NewDense(2, 1, []float64{1, 2})
	b := mat.NewDense(1, 1, []float64{3})
	x := ConcatWithBias(a, b)
	assert.Equal(t, []float64{1, 2, 3, 1}, Column(x))

	assert.Equal(t, []float64{1, 2, 3}, Column(WithoutLastRow(x)))
}

func TestWithoutLastCol(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	v := WithoutLastCol(m)
	r, c := v.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 5.0, v.At(1, 1))
}

func TestArgmaxLowestIndexWinsTies(t *testing.T) {
	assert.Equal(t, 1, Argmax(mat.NewDense(4, 1, []float64{0.1, 0.4, 0.4, 0.1})))
	assert.Equal(t, 0, Argmax(mat.NewDense(3, 1, []float64{0.2, 0.2, 0.2})))
}

func TestOneHot(t *testing.T) {
	assert.Equal(t, []float64{0, 0, 1}, Column(OneHot(3, 2)))
	assert.Equal(t, []float64{0, 0, 0}, Column(OneHot(3, 5)))
}

func TestFanInit(t *testing.T) {
	m := FanInit(10, 4, rand.New(rand.NewPCG(1, 2)))
	r, c := m.Dims()
	require.Equal(t, 4, r)
	require.Equal(t, 10, c)
	eps := math.Sqrt(6.0 / 14.0)
	for _, v := range m.RawMatrix().Data {
		assert.LessOrEqual(t, math.Abs(v), eps)
	}

	again := FanInit(10, 4, rand.New(rand.NewPCG(1, 2)))
	assert.True(t, mat.Equal(m, again), "same seed must give the same weights")
}

func TestMatrixNorm(t *testing.T) {
	assert.InDelta(t, 5.0, MatrixNorm(mat.NewDense(1, 2, []float64{3, 4})), 1e-12)
}
