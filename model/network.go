package model

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/NicolasEhrhardt/NER/IO"
	"github.com/NicolasEhrhardt/NER/params"
	"github.com/NicolasEhrhardt/NER/utils"
	"github.com/NicolasEhrhardt/NER/window"
)

// ErrUnknownLabel means a gold label is missing from the label set.
var ErrUnknownLabel = errors.New("label not in label set")

// Network resolves windows against a vocabulary and a label set. It holds
// no parameters; those are passed in explicitly.
type Network struct {
	Dims   Dims
	Vocab  IO.Vocabulary
	Labels []string

	labelIndex map[string]int
}

// NewNetwork fills NumWords and NumLabels of d from vocab and labels.
func NewNetwork(d Dims, vocab IO.Vocabulary, labels []string) (*Network, error) {
	if d.WindowSize < 1 || d.WindowSize%2 == 0 {
		return nil, errors.Wrapf(params.ErrEvenWindow, "got %d", d.WindowSize)
	}
	if d.WordSize < 1 || d.HiddenSize < 1 {
		return nil, errors.Errorf("word size and hidden size must be positive (got %d, %d)", d.WordSize, d.HiddenSize)
	}
	if _, ok := vocab.TokenToID[params.UnkToken]; !ok {
		return nil, errors.Errorf("vocabulary has no %s entry", params.UnkToken)
	}
	if len(labels) == 0 {
		return nil, errors.New("label set is empty")
	}
	idx := make(map[string]int, len(labels))
	for i, l := range labels {
		if _, dup := idx[l]; dup {
			return nil, errors.Errorf("label %q listed twice", l)
		}
		idx[l] = i
	}
	d.NumWords = vocab.Size()
	d.NumLabels = len(labels)
	return &Network{
		Dims:       d,
		Vocab:      vocab,
		Labels:     append([]string(nil), labels...),
		labelIndex: idx,
	}, nil
}

// NewNetworkFromConfig is NewNetwork with the shape taken from cfg.
func NewNetworkFromConfig(cfg params.TrainingConfig, vocab IO.Vocabulary) (*Network, error) {
	return NewNetwork(Dims{
		WindowSize: cfg.WindowSize,
		WordSize:   cfg.WordSize,
		HiddenSize: cfg.HiddenSize,
	}, vocab, cfg.Labels)
}

// Indices maps every token of w to its embedding row.
func (n *Network) Indices(w window.Window) []int {
	if len(w) != n.Dims.WindowSize {
		panic(fmt.Sprintf("window has %d tokens, network expects %d", len(w), n.Dims.WindowSize))
	}
	idx := make([]int, len(w))
	for i, d := range w {
		idx[i] = n.Vocab.Lookup(d.Word)
	}
	return idx
}

func (n *Network) LabelIndex(label string) (int, error) {
	i, ok := n.labelIndex[label]
	if !ok {
		return -1, errors.Wrapf(ErrUnknownLabel, "%q", label)
	}
	return i, nil
}

// Target is the one-hot vector of the center label of w.
func (n *Network) Target(w window.Window) (*mat.Dense, error) {
	i, err := n.LabelIndex(w.Center().Label)
	if err != nil {
		return nil, err
	}
	return utils.OneHot(n.Dims.NumLabels, i), nil
}

// Probabilities runs the forward pass without dropout.
func (n *Network) Probabilities(p *Params, w window.Window) *mat.Dense {
	x := Concat(p.L, n.Indices(w))
	return Forward(p.U, p.W, utils.ConcatWithBias(x), nil).P
}

func (n *Network) PredictIndex(p *Params, w window.Window) int {
	return utils.Argmax(n.Probabilities(p, w))
}

// Predict returns the most probable label for the center token of w.
func (n *Network) Predict(p *Params, w window.Window) string {
	return n.Labels[n.PredictIndex(p, w)]
}

// Evaluate is the fraction of windows whose center label is predicted
// correctly. An empty set scores 0.
func (n *Network) Evaluate(p *Params, windows []window.Window) float64 {
	if len(windows) == 0 {
		return 0
	}
	correct := 0
	for _, w := range windows {
		if n.Predict(p, w) == w.Center().Label {
			correct++
		}
	}
	return float64(correct) / float64(len(windows))
}

func (n *Network) Predictions(p *Params, windows []window.Window) []IO.Prediction {
	out := make([]IO.Prediction, len(windows))
	for i, w := range windows {
		c := w.Center()
		out[i] = IO.Prediction{Word: c.Word, Label: c.Label, Predicted: n.Predict(p, w)}
	}
	return out
}
