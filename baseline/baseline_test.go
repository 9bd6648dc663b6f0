package baseline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NicolasEhrhardt/NER/IO"
)

const corpus = `-DOCSTART- O

paris LOC
hilton PER
paris PER
paris LOC
jordan PER
jordan LOC
. O
said O
`

func TestMajorityVote(t *testing.T) {
	data, err := IO.ReadCorpus(strings.NewReader(corpus))
	require.NoError(t, err)
	m := Train(data)

	assert.Equal(t, "LOC", m.Predict("paris"))
	assert.Equal(t, "PER", m.Predict("hilton"))
	assert.Equal(t, "PER", m.Predict("jordan"), "ties go to the label seen first")
	assert.Equal(t, "O", m.Predict("said"))
	assert.Equal(t, "O", m.Predict("london"))
	assert.Equal(t, "O", m.Predict("<s>"))
}

func TestPredictionsSkipSentinels(t *testing.T) {
	data, err := IO.ReadCorpus(strings.NewReader(corpus))
	require.NoError(t, err)
	m := Train(data)

	preds := m.Predictions(data)
	require.Len(t, preds, 7)
	assert.Equal(t, IO.Prediction{Word: "paris", Label: "PER", Predicted: "LOC"}, preds[2])
	assert.InDelta(t, 5.0/7.0, Accuracy(preds), 1e-12)
	assert.Equal(t, 0.0, Accuracy(nil))
}
