package model

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/NicolasEhrhardt/NER/utils"
)

// Activations caches everything the backward pass needs from one forward
// pass. All vectors are (n x 1) columns.
type Activations struct {
	XBiased *mat.Dense // window embedding with trailing 1
	ZMask   *mat.Dense // hidden dropout mask, nil when disabled
	Z       *mat.Dense // hidden pre-activation, masked
	HBiased *mat.Dense // tanh(z) with trailing 1
	V       *mat.Dense // output pre-activation
	P       *mat.Dense // softmax(v)
}

// Gradients of the log-likelihood Σ y_i log p_i. They point uphill: the
// trainer adds them.
type Gradients struct {
	Error *mat.Dense // y - p
	Delta *mat.Dense // hidden layer error
	U     *mat.Dense
	W     *mat.Dense
	X     *mat.Dense // w.r.t. the concatenated embedding, bias excluded
}

// Concat gathers the rows idx of L into a single column vector.
func Concat(L *mat.Dense, idx []int) *mat.Dense {
	_, d := L.Dims()
	x := make([]float64, 0, len(idx)*d)
	for _, i := range idx {
		x = append(x, L.RawRowView(i)...)
	}
	return mat.NewDense(len(x), 1, x)
}

// Forward computes z = W·x, h = tanh(z), v = U·h, p = softmax(v) where x and
// h carry a trailing bias entry. zMask, when non-nil, zeroes hidden units.
func Forward(U, W mat.Matrix, xBiased, zMask *mat.Dense) *Activations {
	z := utils.Dot(W, xBiased)
	if zMask != nil {
		z = utils.Multiply(z, zMask)
	}
	h := utils.Apply(utils.TanhApply, z)
	hBiased := utils.ConcatWithBias(h)
	v := utils.Dot(U, hBiased)
	return &Activations{
		XBiased: xBiased,
		ZMask:   zMask,
		Z:       z,
		HBiased: hBiased,
		V:       v,
		P:       utils.ColVectorSoftmax(v),
	}
}

// Backward applies the chain rule through softmax, U, tanh and W.
func Backward(U, W *mat.Dense, act *Activations, y mat.Matrix) *Gradients {
	errv := utils.Subtract(y, act.P)
	back := utils.Dot(utils.WithoutLastCol(U).T(), errv)
	delta := utils.Multiply(utils.TanhPrime(act.Z), back)
	if act.ZMask != nil {
		// dropped units do not depend on W
		delta = utils.Multiply(delta, act.ZMask)
	}
	return &Gradients{
		Error: errv,
		Delta: delta,
		U:     utils.Dot(errv, act.HBiased.T()),
		W:     utils.Dot(delta, act.XBiased.T()),
		X:     utils.Dot(utils.WithoutLastCol(W).T(), delta),
	}
}

// Cost is the log-likelihood Σ y_i log p_i of target y.
func Cost(y, p mat.Matrix) float64 {
	r, _ := p.Dims()
	c := 0.0
	for i := 0; i < r; i++ {
		if yi := y.At(i, 0); yi != 0 {
			c += yi * math.Log(p.At(i, 0))
		}
	}
	return c
}

func CostFromUh(y, U mat.Matrix, hBiased *mat.Dense) float64 {
	return Cost(y, utils.ColVectorSoftmax(utils.Dot(U, hBiased)))
}

func CostFromUWx(y, U, W mat.Matrix, xBiased *mat.Dense) float64 {
	return Cost(y, Forward(U, W, xBiased, nil).P)
}
