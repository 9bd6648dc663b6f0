package window

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NicolasEhrhardt/NER/IO"
	"github.com/NicolasEhrhardt/NER/params"
)

func s() IO.Datum { return IO.Datum{Word: params.StartToken, Label: "O"} }
func e() IO.Datum { return IO.Datum{Word: params.EndToken, Label: "O"} }

func sentence(words ...string) []IO.Datum {
	out := []IO.Datum{s()}
	for _, w := range words {
		out = append(out, IO.Datum{Word: w, Label: "O"})
	}
	return append(out, e())
}

func words(w Window) []string {
	out := make([]string, len(w))
	for i, d := range w {
		out[i] = d.Word
	}
	return out
}

func TestNewRejectsEvenSize(t *testing.T) {
	for _, size := range []int{0, 2, 6, -1} {
		_, err := New(size)
		assert.True(t, errors.Is(err, params.ErrEvenWindow), "size %d", size)
	}
}

func TestTheCatSat(t *testing.T) {
	w, err := New(3)
	require.NoError(t, err)

	got := w.All(sentence("the", "cat", "sat"))
	require.Len(t, got, 3)
	assert.Equal(t, []string{"<s>", "the", "cat"}, words(got[0]))
	assert.Equal(t, []string{"the", "cat", "sat"}, words(got[1]))
	assert.Equal(t, []string{"cat", "sat", "</s>"}, words(got[2]))
	for i, want := range []string{"the", "cat", "sat"} {
		assert.Len(t, got[i], 3)
		assert.Equal(t, want, got[i].Center().Word)
	}
}

func TestShortSentenceIsPadded(t *testing.T) {
	w, err := New(5)
	require.NoError(t, err)

	got := w.All(sentence("hi"))
	require.Len(t, got, 1)
	assert.Equal(t, []string{"<s>", "<s>", "hi", "</s>", "</s>"}, words(got[0]))

	got = w.All(sentence("a", "b"))
	require.Len(t, got, 2)
	assert.Equal(t, []string{"<s>", "<s>", "a", "b", "</s>"}, words(got[0]))
	assert.Equal(t, []string{"<s>", "a", "b", "</s>", "</s>"}, words(got[1]))
}

func TestWindowSizeOne(t *testing.T) {
	w, err := New(1)
	require.NoError(t, err)
	got := w.All(sentence("x", "y"))
	require.Len(t, got, 2)
	assert.Equal(t, []string{"x"}, words(got[0]))
	assert.Equal(t, []string{"y"}, words(got[1]))
}

// One window per real token, centered in order, never crossing sentences.
func TestWindowInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	for _, size := range []int{1, 3, 5, 7, 9} {
		w, err := New(size)
		require.NoError(t, err)

		var data []IO.Datum
		var tokens []string
		sentOf := map[string]int{}
		for sent := 0; sent < 20; sent++ {
			n := rng.IntN(12) // empty sentences included
			var ws []string
			for k := 0; k < n; k++ {
				word := fmt.Sprintf("w%d_%d", sent, k)
				ws = append(ws, word)
				sentOf[word] = sent
			}
			tokens = append(tokens, ws...)
			data = append(data, sentence(ws...)...)
		}

		got := w.All(data)
		require.Len(t, got, len(tokens), "size %d", size)
		for k, win := range got {
			require.Len(t, win, size)
			assert.Equal(t, tokens[k], win.Center().Word)
			center := sentOf[win.Center().Word]
			for _, d := range win {
				if d.IsSentinel() {
					continue
				}
				assert.Equal(t, center, sentOf[d.Word], "window %v mixes sentences", words(win))
			}
		}
	}
}

func TestWindowsIsRestartable(t *testing.T) {
	w, err := New(3)
	require.NoError(t, err)
	seq := w.Windows(sentence("a", "b", "c", "d"))
	first := Collect(seq)
	second := Collect(seq)
	assert.Equal(t, first, second)
	assert.Len(t, first, 4)
}

func TestWindowsStopsEarly(t *testing.T) {
	w, err := New(3)
	require.NoError(t, err)
	n := 0
	for range w.Windows(sentence("a", "b", "c", "d")) {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestEmittedWindowsAreCopies(t *testing.T) {
	w, err := New(3)
	require.NoError(t, err)
	got := w.All(sentence("a", "b", "c"))
	got[0][1].Word = "changed"
	assert.Equal(t, "b", got[1][1].Word)
}

func TestImplicitMarkers(t *testing.T) {
	w, err := New(3)
	require.NoError(t, err)

	// no markers at all
	data := []IO.Datum{{Word: "a", Label: "O"}, {Word: "b", Label: "O"}}
	got := w.All(data)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"<s>", "a", "b"}, words(got[0]))
	assert.Equal(t, []string{"a", "b", "</s>"}, words(got[1]))

	// a start arriving inside an open sentence closes it first
	data = append([]IO.Datum{s(), {Word: "x", Label: "O"}}, sentence("y")...)
	got = w.All(data)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"<s>", "x", "</s>"}, words(got[0]))
	assert.Equal(t, []string{"<s>", "y", "</s>"}, words(got[1]))
}

func TestCorpusStreamWindows(t *testing.T) {
	data := append(sentence("eu", "rejects"), sentence("peter")...)
	w, err := New(3)
	require.NoError(t, err)
	got := w.All(data)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"<s>", "peter", "</s>"}, words(got[2]))
}
