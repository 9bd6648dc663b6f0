package optimizations

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/NicolasEhrhardt/NER/utils"
)

// p = p*(1 - lambda*lr) + lr*g. g is a log-likelihood gradient, so the step
// climbs.
func SGDUpdateInPlace(p, g *mat.Dense, lr, lambda float64) {
	pr, pc := p.Dims()
	if gr, gc := g.Dims(); gr != pr || gc != pc {
		panic("SGDUpdateInPlace: grad shape mismatch")
	}
	var step mat.Dense
	step.Scale(lr, g)
	p.Scale(1-lambda*lr, p)
	p.Add(p, &step)
}

// DropMask draws an (n x 1) column of independent Bernoulli(keep) units.
// keep >= 1 returns all ones and leaves rng untouched.
func DropMask(n int, keep float64, rng *rand.Rand) *mat.Dense {
	if keep >= 1 {
		return utils.Ones(n, 1)
	}
	dist := distuv.Bernoulli{P: keep, Src: rng}
	m := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		m.Set(i, 0, dist.Rand())
	}
	return m
}

// ScatterEmbeddingUpdate adds lr*xgrad back into the rows of L that built the
// window, in window order. Units switched off by xmask keep their value. A
// row that appears twice in idx receives both updates.
func ScatterEmbeddingUpdate(L *mat.Dense, idx []int, xgrad, xmask mat.Matrix, lr float64) {
	_, d := L.Dims()
	if r, _ := xgrad.Dims(); r != len(idx)*d {
		panic("ScatterEmbeddingUpdate: grad length mismatch")
	}
	for k, row := range idx {
		emb := L.RawRowView(row)
		for j := range emb {
			u := k*d + j
			if xmask != nil && xmask.At(u, 0) == 0 {
				continue
			}
			emb[j] += lr * xgrad.At(u, 0)
		}
	}
}
