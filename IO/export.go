package IO

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// SaveMatrixCSV writes a header "rows cols real" followed by one
// space-separated row per line. Values use the shortest representation that
// parses back to the same float64.
func SaveMatrixCSV(w io.Writer, m mat.Matrix) error {
	bw := bufio.NewWriter(w)
	r, c := m.Dims()
	if _, err := bw.WriteString(strconv.Itoa(r) + " " + strconv.Itoa(c) + " real\n"); err != nil {
		return err
	}
	buf := make([]byte, 0, 32)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if j > 0 {
				bw.WriteByte(' ')
			}
			buf = strconv.AppendFloat(buf[:0], m.At(i, j), 'g', -1, 64)
			bw.Write(buf)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// LoadMatrixCSV reads the format written by SaveMatrixCSV.
func LoadMatrixCSV(r io.Reader) (*mat.Dense, error) {
	br := bufio.NewReader(r)
	header, err := br.ReadString('\n')
	if err != nil && !(err == io.EOF && header != "") {
		return nil, errors.Wrap(err, "reading matrix header")
	}
	bits := strings.Fields(header)
	if len(bits) < 2 {
		return nil, errors.Errorf("bad matrix header %q", strings.TrimSpace(header))
	}
	rows, err := strconv.Atoi(bits[0])
	if err != nil {
		return nil, errors.Wrap(err, "matrix rows")
	}
	cols, err := strconv.Atoi(bits[1])
	if err != nil {
		return nil, errors.Wrap(err, "matrix cols")
	}
	if rows <= 0 || cols <= 0 {
		return nil, errors.Errorf("bad matrix shape %dx%d", rows, cols)
	}
	m, err := ReadWordVectors(br, rows, cols)
	return m, errors.Wrap(err, "matrix body")
}

// SaveMatrixBinary uses gonum's binary encoding.
func SaveMatrixBinary(w io.Writer, m *mat.Dense) error {
	_, err := m.MarshalBinaryTo(w)
	return errors.Wrap(err, "encoding matrix")
}

func LoadMatrixBinary(r io.Reader) (*mat.Dense, error) {
	var m mat.Dense
	if _, err := m.UnmarshalBinaryFrom(r); err != nil {
		return nil, errors.Wrap(err, "decoding matrix")
	}
	return &m, nil
}

// SaveMatrixFile picks the encoding from the extension: ".bin" is binary,
// anything else is the text format.
func SaveMatrixFile(path string, m *mat.Dense) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "creating %s", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if filepath.Ext(path) == ".bin" {
		err = SaveMatrixBinary(f, m)
	} else {
		err = SaveMatrixCSV(f, m)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return errors.Wrapf(err, "saving %s", path)
}

func LoadMatrixFile(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	var m *mat.Dense
	if filepath.Ext(path) == ".bin" {
		m, err = LoadMatrixBinary(f)
	} else {
		m, err = LoadMatrixCSV(f)
	}
	return m, errors.Wrapf(err, "loading %s", path)
}

// Model file names inside a model directory.
const (
	EmbeddingFile = "L.csv"
	HiddenFile    = "W.csv"
	OutputFile    = "U.csv"
	VocabFile     = "vocab.json"
)

// SaveModel writes the embedding table, hidden and output weights into dir.
func SaveModel(dir string, L, W, U *mat.Dense) error {
	for name, m := range map[string]*mat.Dense{EmbeddingFile: L, HiddenFile: W, OutputFile: U} {
		if err := SaveMatrixFile(filepath.Join(dir, name), m); err != nil {
			return err
		}
	}
	return nil
}

// LoadModel is the inverse of SaveModel. Shapes are not checked here.
func LoadModel(dir string) (L, W, U *mat.Dense, err error) {
	if L, err = LoadMatrixFile(filepath.Join(dir, EmbeddingFile)); err != nil {
		return nil, nil, nil, err
	}
	if W, err = LoadMatrixFile(filepath.Join(dir, HiddenFile)); err != nil {
		return nil, nil, nil, err
	}
	if U, err = LoadMatrixFile(filepath.Join(dir, OutputFile)); err != nil {
		return nil, nil, nil, err
	}
	return L, W, U, nil
}
