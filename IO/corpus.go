package IO

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/NicolasEhrhardt/NER/params"
)

// Datum is one token of the corpus with its gold label.
type Datum struct {
	Word  string
	Label string
}

// IsSentinel reports whether d is a sentence boundary marker.
func (d Datum) IsSentinel() bool {
	return d.Word == params.StartToken || d.Word == params.EndToken
}

func startDatum() Datum { return Datum{Word: params.StartToken, Label: params.OutsideLabel} }
func endDatum() Datum   { return Datum{Word: params.EndToken, Label: params.OutsideLabel} }

// ReadCorpus parses "word label" lines into a token stream delimited by
// <s> and </s>. Words are lowercased, a "." closes the current sentence and
// opens the next one, -DOCSTART- lines are dropped.
func ReadCorpus(r io.Reader) ([]Datum, error) {
	data := []Datum{startDatum()}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		bits := strings.Fields(line)
		if len(bits) < 2 {
			return nil, errors.Errorf("line %d: expected \"word label\", got %q", lineNum, line)
		}
		word, label := bits[0], bits[1]
		if word == params.DocStart {
			continue
		}
		word = strings.ToLower(word)
		if word == "." {
			data = append(data, endDatum(), startDatum())
			continue
		}
		data = append(data, Datum{Word: word, Label: label})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading corpus at line %d", lineNum)
	}
	return append(data, endDatum()), nil
}

func ReadCorpusFile(path string) ([]Datum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening corpus %s", path)
	}
	defer f.Close()
	data, err := ReadCorpus(f)
	return data, errors.Wrapf(err, "corpus %s", path)
}
