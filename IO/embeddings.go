package IO

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/NicolasEhrhardt/NER/params"
)

// Vocabulary maps words to rows of the embedding table and back.
type Vocabulary struct {
	TokenToID map[string]int
	IDToToken []string
}

// LoadVocab reads one word per line; the line order is the row index.
// The first whitespace-separated field is the word, blank lines are skipped.
func LoadVocab(r io.Reader) (Vocabulary, error) {
	v := Vocabulary{TokenToID: map[string]int{}}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		bits := strings.Fields(sc.Text())
		if len(bits) == 0 {
			continue
		}
		word := bits[0]
		if _, dup := v.TokenToID[word]; dup {
			return Vocabulary{}, errors.Errorf("word %q appears twice in vocabulary", word)
		}
		v.TokenToID[word] = len(v.IDToToken)
		v.IDToToken = append(v.IDToToken, word)
	}
	if err := sc.Err(); err != nil {
		return Vocabulary{}, errors.Wrap(err, "reading vocabulary")
	}
	if _, ok := v.TokenToID[params.UnkToken]; !ok {
		return Vocabulary{}, errors.Errorf("vocabulary has no %s entry", params.UnkToken)
	}
	return v, nil
}

func LoadVocabFile(path string) (Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Vocabulary{}, errors.Wrapf(err, "opening vocabulary %s", path)
	}
	defer f.Close()
	v, err := LoadVocab(f)
	return v, errors.Wrapf(err, "vocabulary %s", path)
}

// NewVocabulary builds a vocabulary from an ordered word list, appending the
// unknown token if it is missing.
func NewVocabulary(words []string) Vocabulary {
	v := Vocabulary{TokenToID: make(map[string]int, len(words)+1)}
	for _, w := range words {
		if _, ok := v.TokenToID[w]; ok {
			continue
		}
		v.TokenToID[w] = len(v.IDToToken)
		v.IDToToken = append(v.IDToToken, w)
	}
	if _, ok := v.TokenToID[params.UnkToken]; !ok {
		v.TokenToID[params.UnkToken] = len(v.IDToToken)
		v.IDToToken = append(v.IDToToken, params.UnkToken)
	}
	return v
}

func (v Vocabulary) Size() int { return len(v.IDToToken) }

func (v Vocabulary) UnkID() int { return v.TokenToID[params.UnkToken] }

// Lookup returns the row of word, or the unknown-word row.
func (v Vocabulary) Lookup(word string) int {
	if id, ok := v.TokenToID[word]; ok {
		return id
	}
	return v.UnkID()
}

// ExportVocabJSON writes the vocabulary next to a saved model so that the
// embedding rows can be matched back to words.
func ExportVocabJSON(path string, v Vocabulary) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()
	data := map[string]any{
		"TokenToID": v.TokenToID,
		"IDToToken": v.IDToToken,
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return errors.Wrapf(enc.Encode(data), "encoding %s", path)
}

func ImportVocabJSON(path string) (Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Vocabulary{}, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	var data struct {
		TokenToID map[string]int `json:"TokenToID"`
		IDToToken []string       `json:"IDToToken"`
	}
	if err := json.NewDecoder(f).Decode(&data); err != nil {
		return Vocabulary{}, errors.Wrapf(err, "decoding %s", path)
	}
	if len(data.TokenToID) != len(data.IDToToken) {
		return Vocabulary{}, errors.Errorf("%s: %d ids for %d tokens", path, len(data.TokenToID), len(data.IDToToken))
	}
	return Vocabulary{TokenToID: data.TokenToID, IDToToken: data.IDToToken}, nil
}

// ReadWordVectors reads whitespace-separated numeric rows, one per
// vocabulary entry. rows < 0 accepts any number of rows.
func ReadWordVectors(r io.Reader, rows, cols int) (*mat.Dense, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<22)
	var data []float64
	n := 0
	for sc.Scan() {
		bits := strings.Fields(sc.Text())
		if len(bits) == 0 {
			continue
		}
		if len(bits) != cols {
			return nil, errors.Errorf("row %d: expected %d values, got %d", n, cols, len(bits))
		}
		for _, b := range bits {
			x, err := strconv.ParseFloat(b, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d", n)
			}
			data = append(data, x)
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading word vectors")
	}
	if rows >= 0 && n != rows {
		return nil, errors.Errorf("expected %d word vectors, got %d", rows, n)
	}
	if n == 0 {
		return nil, errors.New("no word vectors")
	}
	return mat.NewDense(n, cols, data), nil
}

func ReadWordVectorsFile(path string, rows, cols int) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening word vectors %s", path)
	}
	defer f.Close()
	m, err := ReadWordVectors(f, rows, cols)
	return m, errors.Wrapf(err, "word vectors %s", path)
}
