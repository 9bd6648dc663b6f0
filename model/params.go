package model

import (
	"math/rand/v2"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/NicolasEhrhardt/NER/utils"
)

// ErrShapeMismatch is returned when persisted or supplied parameters do not
// fit the configured network.
var ErrShapeMismatch = errors.New("parameter shape mismatch")

// Dims fixes the shape of every parameter matrix.
type Dims struct {
	WindowSize int
	WordSize   int // d
	HiddenSize int
	NumWords   int // |V|
	NumLabels  int // K
}

// InputSize is the length of the concatenated window embedding, bias excluded.
func (d Dims) InputSize() int { return d.WindowSize * d.WordSize }

// Params is the trainable state of the tagger.
//
//	L: NumWords x WordSize, one embedding per row
//	W: HiddenSize x (InputSize + 1), last column is the bias
//	U: NumLabels x (HiddenSize + 1), last column is the bias
type Params struct {
	L, W, U *mat.Dense
}

// InitParams draws L, W and U with the fan-in/fan-out rule.
func InitParams(d Dims, rng *rand.Rand) *Params {
	return InitWeights(d, utils.FanInit(d.WordSize, d.NumWords, rng), rng)
}

// InitWeights keeps a given embedding table (e.g. pretrained vectors) and
// draws W and U.
func InitWeights(d Dims, L *mat.Dense, rng *rand.Rand) *Params {
	return &Params{
		L: L,
		W: utils.FanInit(d.InputSize()+1, d.HiddenSize, rng),
		U: utils.FanInit(d.HiddenSize+1, d.NumLabels, rng),
	}
}

// CheckShapes reports the first matrix whose shape does not match d.
func CheckShapes(d Dims, p *Params) error {
	check := func(name string, m *mat.Dense, rows, cols int) error {
		if m == nil {
			return errors.Wrapf(ErrShapeMismatch, "%s is missing", name)
		}
		r, c := m.Dims()
		if r != rows || c != cols {
			return errors.Wrapf(ErrShapeMismatch, "%s is %dx%d, want %dx%d", name, r, c, rows, cols)
		}
		return nil
	}
	if err := check("L", p.L, d.NumWords, d.WordSize); err != nil {
		return err
	}
	if err := check("W", p.W, d.HiddenSize, d.InputSize()+1); err != nil {
		return err
	}
	return check("U", p.U, d.NumLabels, d.HiddenSize+1)
}

// Clone deep-copies all three matrices.
func (p *Params) Clone() *Params {
	return &Params{
		L: mat.DenseCopyOf(p.L),
		W: mat.DenseCopyOf(p.W),
		U: mat.DenseCopyOf(p.U),
	}
}

// Scaled returns the weights compensated for dropout: W times keepX and U
// times keepZ. L is shared with p and must be treated as read-only.
func (p *Params) Scaled(keepX, keepZ float64) *Params {
	return &Params{
		L: p.L,
		W: utils.Scale(keepX, p.W),
		U: utils.Scale(keepZ, p.U),
	}
}

// Compensate applies the dropout rescaling in place.
func (p *Params) Compensate(keepX, keepZ float64) {
	p.W.Scale(keepX, p.W)
	p.U.Scale(keepZ, p.U)
}
