package trainer

import (
	"log"
	"math/rand/v2"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/NicolasEhrhardt/NER/IO"
	"github.com/NicolasEhrhardt/NER/model"
	"github.com/NicolasEhrhardt/NER/optimizations"
	"github.com/NicolasEhrhardt/NER/params"
	"github.com/NicolasEhrhardt/NER/utils"
	"github.com/NicolasEhrhardt/NER/window"
)

// progressEvery is how many training windows pass between progress lines.
const progressEvery = 10000

// Trainer runs dropout-regularized SGD over windows and stops on the first
// holdout regression.
type Trainer struct {
	Net    *model.Network
	Config params.TrainingConfig
	Rng    *rand.Rand

	Logger *log.Logger   // nil means log.Default()
	Log    *IO.EpochLog // optional per-epoch CSV
}

// Result summarizes a training run. Epochs are counted from 1.
type Result struct {
	Epochs     int       // epochs actually run
	BestEpoch  int       // epoch whose parameters were kept, 0 if none ran
	Accuracies []float64 // holdout accuracy after each epoch
	Stopped    bool      // true if a regression ended the run early
}

func New(net *model.Network, cfg params.TrainingConfig, rng *rand.Rand) *Trainer {
	return &Trainer{Net: net, Config: cfg, Rng: rng}
}

func (t *Trainer) logger() *log.Logger {
	if t.Logger == nil {
		return log.Default()
	}
	return t.Logger
}

// LearningRates returns lr0 / (1 + epoch/tau) for U, W and L. epoch is 0 for
// the first pass.
func (t *Trainer) LearningRates(epoch int) (lrU, lrW, lrL float64) {
	decay := 1 + float64(epoch)/t.Config.Tau
	return t.Config.LrU / decay, t.Config.LrW / decay, t.Config.LrL / decay
}

// Step performs one SGD update of p on window w and returns the
// log-likelihood of the gold label under the masked forward pass.
func (t *Trainer) Step(p *model.Params, w window.Window, lrU, lrW, lrL float64) (float64, error) {
	y, err := t.Net.Target(w)
	if err != nil {
		return 0, err
	}
	idx := t.Net.Indices(w)
	x := model.Concat(p.L, idx)

	xMask := optimizations.DropMask(t.Net.Dims.InputSize(), t.Config.KeepX, t.Rng)
	zMask := optimizations.DropMask(t.Net.Dims.HiddenSize, t.Config.KeepZ, t.Rng)

	act := model.Forward(p.U, p.W, utils.ConcatWithBias(utils.Multiply(x, xMask)), zMask)
	g := model.Backward(p.U, p.W, act, y)

	optimizations.SGDUpdateInPlace(p.U, g.U, lrU, t.Config.Lambda)
	optimizations.SGDUpdateInPlace(p.W, g.W, lrW, t.Config.Lambda)
	optimizations.ScatterEmbeddingUpdate(p.L, idx, g.X, xMask, lrL)

	return model.Cost(y, act.P), nil
}

// Train mutates p in place. On return p holds the best holdout snapshot with
// U and W multiplied by their keep probabilities, ready for prediction.
func (t *Trainer) Train(p *model.Params, train, holdout []window.Window) (*Result, error) {
	if err := model.CheckShapes(t.Net.Dims, p); err != nil {
		return nil, err
	}
	for i, w := range train {
		if _, err := t.Net.LabelIndex(w.Center().Label); err != nil {
			return nil, errors.Wrapf(err, "training window %d (%s)", i, w.Center().Word)
		}
	}

	lg := t.logger()
	res := &Result{}
	snapshot := p.Clone()
	prevAcc := 0.0

	for epoch := 0; epoch < t.Config.MaxEpochs; epoch++ {
		start := time.Now()
		lrU, lrW, lrL := t.LearningRates(epoch)

		cost := 0.0
		for i, w := range train {
			c, err := t.Step(p, w, lrU, lrW, lrL)
			if err != nil {
				return res, errors.Wrapf(err, "epoch %d window %d", epoch+1, i)
			}
			cost += c
			if (i+1)%progressEvery == 0 {
				lg.Printf("epoch %d: %d/%d windows, mean log-likelihood %.4f", epoch+1, i+1, len(train), cost/float64(i+1))
			}
		}

		acc := t.Net.Evaluate(p.Scaled(t.Config.KeepX, t.Config.KeepZ), holdout)
		rec := IO.EpochRecord{
			Epoch:    epoch + 1,
			Accuracy: acc,
			LrU:      lrU,
			LrW:      lrW,
			LrL:      lrL,
			DeltaU:   deltaNorm(p.U, snapshot.U),
			DeltaW:   deltaNorm(p.W, snapshot.W),
			DeltaL:   deltaNorm(p.L, snapshot.L),
			Seconds:  time.Since(start).Seconds(),
		}
		res.Epochs++
		res.Accuracies = append(res.Accuracies, acc)
		lg.Printf("Epoch %d - Acc: %.4f, dU: %.4g, dW: %.4g, dL: %.4g, Time: %.1fs",
			rec.Epoch, acc, rec.DeltaU, rec.DeltaW, rec.DeltaL, rec.Seconds)
		if t.Log != nil {
			if err := t.Log.Write(rec); err != nil {
				return res, err
			}
		}

		if epoch > 0 && acc < prevAcc {
			lg.Printf("holdout accuracy fell from %.4f to %.4f, keeping epoch %d", prevAcc, acc, res.BestEpoch)
			restore(p, snapshot)
			res.Stopped = true
			break
		}
		snapshot = p.Clone()
		prevAcc = acc
		res.BestEpoch = epoch + 1
	}

	p.Compensate(t.Config.KeepX, t.Config.KeepZ)
	return res, nil
}

func deltaNorm(now, before *mat.Dense) float64 {
	return utils.MatrixNorm(utils.Subtract(now, before))
}

// restore copies s into the matrices of p so callers holding p see it.
func restore(p, s *model.Params) {
	p.L.Copy(s.L)
	p.W.Copy(s.W)
	p.U.Copy(s.U)
}
