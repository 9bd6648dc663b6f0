package optimizations

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestSGDUpdateInPlace(t *testing.T) {
	p := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	g := mat.NewDense(2, 2, []float64{1, -1, 0, 2})
	SGDUpdateInPlace(p, g, 0.5, 0.1)
	// p*(1 - 0.05) + 0.5*g
	want := []float64{1.45, 1.4, 2.85, 4.8}
	assert.True(t, floats.EqualApprox(want, p.RawMatrix().Data, 1e-12), "got %v", p.RawMatrix().Data)
}

func TestSGDZeroRateIsIdentity(t *testing.T) {
	data := []float64{0.1, -0.7, 3.25, 1e-9}
	p := mat.NewDense(2, 2, append([]float64(nil), data...))
	g := mat.NewDense(2, 2, []float64{5, 5, 5, 5})
	SGDUpdateInPlace(p, g, 0, 0.3)
	assert.Equal(t, data, p.RawMatrix().Data)
}

func TestSGDShapeMismatchPanics(t *testing.T) {
	assert.Panics(t, func() {
		SGDUpdateInPlace(mat.NewDense(2, 2, nil), mat.NewDense(2, 3, nil), 1, 0)
	})
}

func TestDropMaskKeepOne(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	ref := rand.New(rand.NewPCG(1, 2))
	m := DropMask(5, 1, rng)
	for i := 0; i < 5; i++ {
		assert.Equal(t, 1.0, m.At(i, 0))
	}
	assert.Equal(t, ref.Uint64(), rng.Uint64(), "keep = 1 must not draw")
}

func TestDropMaskRate(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	n := 20000
	m := DropMask(n, 0.7, rng)
	ones := 0
	for i := 0; i < n; i++ {
		v := m.At(i, 0)
		require.True(t, v == 0 || v == 1)
		if v == 1 {
			ones++
		}
	}
	assert.InDelta(t, 0.7, float64(ones)/float64(n), 0.02)
}

func TestScatterEmbeddingUpdate(t *testing.T) {
	L := mat.NewDense(3, 2, []float64{
		0, 0,
		1, 1,
		2, 2,
	})
	idx := []int{2, 0, 2}
	xgrad := mat.NewDense(6, 1, []float64{1, 2, 3, 4, 5, 6})
	xmask := mat.NewDense(6, 1, []float64{1, 1, 0, 1, 1, 0})

	ScatterEmbeddingUpdate(L, idx, xgrad, xmask, 0.5)

	// row 2 gets both the first and the third slot
	assert.Equal(t, []float64{0, 2}, L.RawRowView(0))
	assert.Equal(t, []float64{1, 1}, L.RawRowView(1))
	assert.Equal(t, []float64{2 + 0.5 + 2.5, 2 + 1}, L.RawRowView(2))
}

func TestScatterEmbeddingUpdateNoMask(t *testing.T) {
	L := mat.NewDense(2, 1, []float64{1, 1})
	ScatterEmbeddingUpdate(L, []int{1}, mat.NewDense(1, 1, []float64{4}), nil, 0.25)
	assert.Equal(t, []float64{1, 2}, L.RawMatrix().Data)
}
