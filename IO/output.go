package IO

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// Prediction is one tagged token of an evaluated corpus.
type Prediction struct {
	Word      string
	Label     string
	Predicted string
}

// WritePredictions writes "word<TAB>true<TAB>predicted" lines.
func WritePredictions(w io.Writer, preds []Prediction) error {
	bw := bufio.NewWriter(w)
	for _, p := range preds {
		bw.WriteString(p.Word)
		bw.WriteByte('\t')
		bw.WriteString(p.Label)
		bw.WriteByte('\t')
		bw.WriteString(p.Predicted)
		if err := bw.WriteByte('\n'); err != nil {
			return errors.Wrap(err, "writing predictions")
		}
	}
	return errors.Wrap(bw.Flush(), "writing predictions")
}

func WritePredictionsFile(path string, preds []Prediction) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	err = WritePredictions(f, preds)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return errors.Wrapf(err, "predictions %s", path)
}

// EpochRecord is one row of the training log.
type EpochRecord struct {
	Epoch           int
	Accuracy        float64
	LrU, LrW, LrL   float64
	DeltaU, DeltaW  float64
	DeltaL, Seconds float64
}

var epochHeader = []string{"epoch", "holdout_accuracy", "lr_u", "lr_w", "lr_l", "delta_u", "delta_w", "delta_l", "seconds"}

// EpochLog appends per-epoch metrics to a CSV file.
type EpochLog struct {
	w      *csv.Writer
	closer io.Closer
}

func NewEpochLog(w io.Writer) (*EpochLog, error) {
	l := &EpochLog{w: csv.NewWriter(w)}
	if err := l.w.Write(epochHeader); err != nil {
		return nil, errors.Wrap(err, "writing log header")
	}
	l.w.Flush()
	return l, errors.Wrap(l.w.Error(), "writing log header")
}

// CreateEpochLog creates or truncates the log file at path.
func CreateEpochLog(path string) (*EpochLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s", path)
	}
	l, err := NewEpochLog(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	l.closer = f
	return l, nil
}

func (l *EpochLog) Write(rec EpochRecord) error {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', 6, 64) }
	l.w.Write([]string{
		strconv.Itoa(rec.Epoch),
		strconv.FormatFloat(rec.Accuracy, 'f', 4, 64),
		f(rec.LrU), f(rec.LrW), f(rec.LrL),
		f(rec.DeltaU), f(rec.DeltaW), f(rec.DeltaL),
		strconv.FormatFloat(rec.Seconds, 'f', 2, 64),
	})
	l.w.Flush()
	return errors.Wrap(l.w.Error(), "writing epoch log")
}

func (l *EpochLog) Close() error {
	l.w.Flush()
	if l.closer != nil {
		return l.closer.Close()
	}
	return l.w.Error()
}
