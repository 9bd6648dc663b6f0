// Package baseline is a per-word lookup tagger used as a reference score for
// the window model.
package baseline

import (
	"github.com/NicolasEhrhardt/NER/IO"
	"github.com/NicolasEhrhardt/NER/params"
)

// Model remembers the most frequent label of every training word.
type Model struct {
	labels map[string]string
}

type tally struct {
	counts map[string]int
	order  []string // first-seen order, breaks ties
}

func Train(data []IO.Datum) *Model {
	seen := make(map[string]*tally)
	for _, d := range data {
		if d.IsSentinel() {
			continue
		}
		t := seen[d.Word]
		if t == nil {
			t = &tally{counts: make(map[string]int)}
			seen[d.Word] = t
		}
		if t.counts[d.Label] == 0 {
			t.order = append(t.order, d.Label)
		}
		t.counts[d.Label]++
	}

	m := &Model{labels: make(map[string]string, len(seen))}
	for w, t := range seen {
		best := t.order[0]
		for _, l := range t.order[1:] {
			if t.counts[l] > t.counts[best] {
				best = l
			}
		}
		m.labels[w] = best
	}
	return m
}

// Predict falls back to the outside label for unseen words.
func (m *Model) Predict(word string) string {
	if l, ok := m.labels[word]; ok {
		return l
	}
	return params.OutsideLabel
}

// Predictions tags every non-sentinel token of data.
func (m *Model) Predictions(data []IO.Datum) []IO.Prediction {
	var out []IO.Prediction
	for _, d := range data {
		if d.IsSentinel() {
			continue
		}
		out = append(out, IO.Prediction{Word: d.Word, Label: d.Label, Predicted: m.Predict(d.Word)})
	}
	return out
}

// Accuracy is the fraction of predictions matching their gold label, 0 for
// none.
func Accuracy(preds []IO.Prediction) float64 {
	if len(preds) == 0 {
		return 0
	}
	n := 0
	for _, p := range preds {
		if p.Label == p.Predicted {
			n++
		}
	}
	return float64(n) / float64(len(preds))
}
