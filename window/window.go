// Package window turns a sentence-delimited token stream into fixed-size
// windows centered on each real token.
package window

import (
	"iter"

	"github.com/pkg/errors"

	"github.com/NicolasEhrhardt/NER/IO"
	"github.com/NicolasEhrhardt/NER/params"
)

// Window is an odd-length run of tokens; the token being tagged sits at
// index len/2.
type Window []IO.Datum

func (w Window) Center() IO.Datum {
	return w[len(w)/2]
}

type Windower struct {
	size int
}

func New(size int) (*Windower, error) {
	if size < 1 || size%2 == 0 {
		return nil, errors.Wrapf(params.ErrEvenWindow, "got %d", size)
	}
	return &Windower{size: size}, nil
}

func (w *Windower) Size() int { return w.size }

// Windows lazily yields one window per real token of data, in order. The
// sequence can be ranged over any number of times.
//
// Sentence starts are padded with the <s> token and sentence ends with the
// </s> token, so no window spans two sentences. Tokens outside an explicit
// <s> ... </s> pair are treated as if the markers were present.
func (w *Windower) Windows(data []IO.Datum) iter.Seq[Window] {
	return func(yield func(Window) bool) {
		half := w.size / 2
		buf := make([]IO.Datum, 0, w.size)
		start := IO.Datum{Word: params.StartToken, Label: params.OutsideLabel}
		open := false
		pending := 0 // real tokens not yet emitted at the center

		// push appends d and emits once the buffer is full.
		push := func(d IO.Datum) bool {
			buf = append(buf, d)
			if len(buf) < w.size {
				return true
			}
			win := make(Window, w.size)
			copy(win, buf)
			buf = append(buf[:0], buf[1:]...)
			pending--
			return yield(win)
		}
		begin := func(d IO.Datum) {
			buf = buf[:0]
			for i := 0; i < half; i++ {
				buf = append(buf, d)
			}
			open = true
			pending = 0
		}
		finish := func(d IO.Datum) bool {
			for pending > 0 {
				if !push(d) {
					return false
				}
			}
			buf = buf[:0]
			open = false
			return true
		}
		end := IO.Datum{Word: params.EndToken, Label: params.OutsideLabel}

		for _, d := range data {
			switch d.Word {
			case params.StartToken:
				if open && !finish(end) {
					return
				}
				start = d
				begin(d)
			case params.EndToken:
				if !open {
					continue
				}
				end = d
				if !finish(d) {
					return
				}
			default:
				if !open {
					begin(start)
				}
				pending++
				if !push(d) {
					return
				}
			}
		}
		if open {
			finish(end)
		}
	}
}

// Collect materializes a window sequence.
func Collect(seq iter.Seq[Window]) []Window {
	var out []Window
	for win := range seq {
		out = append(out, win)
	}
	return out
}

// All windows data in one call.
func (w *Windower) All(data []IO.Datum) []Window {
	return Collect(w.Windows(data))
}
