// Package gradcheck compares the analytic gradients of the tagger against
// central finite differences.
package gradcheck

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/NicolasEhrhardt/NER/model"
	"github.com/NicolasEhrhardt/NER/utils"
	"github.com/NicolasEhrhardt/NER/window"
)

const (
	DefaultEpsilon = 1e-5
	DefaultTrials  = 10
)

// Checker draws random problems of shape Dims from Rng. Only WindowSize,
// WordSize, HiddenSize and NumLabels are used.
type Checker struct {
	Dims    model.Dims
	Rng     *rand.Rand
	Epsilon float64
	Trials  int
}

func New(d model.Dims, rng *rand.Rand) *Checker {
	return &Checker{Dims: d, Rng: rng, Epsilon: DefaultEpsilon, Trials: DefaultTrials}
}

// Report holds the largest absolute deviation seen for each gradient.
type Report struct {
	U, W, X float64
}

func (r Report) Max() float64 { return math.Max(r.U, math.Max(r.W, r.X)) }

func (r Report) OK(tol float64) bool { return r.Max() < tol }

func (r Report) String() string {
	return fmt.Sprintf("U %.3g, W %.3g, X %.3g", r.U, r.W, r.X)
}

// problem is one point at which gradients are compared.
type problem struct {
	y, x, W, U *mat.Dense
}

func (c *Checker) draw() problem {
	d := c.Dims
	in := d.InputSize()
	return problem{
		y: utils.OneHot(d.NumLabels, c.Rng.IntN(d.NumLabels)),
		x: mat.NewDense(in, 1, utils.RandomArray(in, 0, 1, c.Rng)),
		W: utils.FanInit(in+1, d.HiddenSize, c.Rng),
		U: utils.FanInit(d.HiddenSize+1, d.NumLabels, c.Rng),
	}
}

func (c *Checker) settings() *fd.Settings {
	return &fd.Settings{Formula: fd.Central, Step: c.Epsilon}
}

func (pr problem) gradients() *model.Gradients {
	act := model.Forward(pr.U, pr.W, utils.ConcatWithBias(pr.x), nil)
	return model.Backward(pr.U, pr.W, act, pr.y)
}

func (pr problem) checkU(s *fd.Settings) float64 {
	g := pr.gradients()
	h := model.Forward(pr.U, pr.W, utils.ConcatWithBias(pr.x), nil).HBiased
	return maxDeviation(pr.U, g.U, func() float64 { return model.CostFromUh(pr.y, pr.U, h) }, s)
}

func (pr problem) checkW(s *fd.Settings) float64 {
	g := pr.gradients()
	xb := utils.ConcatWithBias(pr.x)
	return maxDeviation(pr.W, g.W, func() float64 { return model.CostFromUWx(pr.y, pr.U, pr.W, xb) }, s)
}

func (pr problem) checkX(s *fd.Settings) float64 {
	g := pr.gradients()
	return maxDeviation(pr.x, g.X, func() float64 {
		return model.CostFromUWx(pr.y, pr.U, pr.W, utils.ConcatWithBias(pr.x))
	}, s)
}

// maxDeviation perturbs every entry of m in turn and compares the numeric
// derivative of cost with grad. m is restored afterwards.
func maxDeviation(m *mat.Dense, grad mat.Matrix, cost func() float64, s *fd.Settings) float64 {
	r, c := m.Dims()
	devs := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			orig := m.At(i, j)
			num := fd.Derivative(func(v float64) float64 {
				m.Set(i, j, v)
				return cost()
			}, orig, s)
			m.Set(i, j, orig)
			devs = append(devs, math.Abs(num-grad.At(i, j)))
		}
	}
	if len(devs) == 0 {
		return 0
	}
	return floats.Max(devs)
}

func (c *Checker) run(check func(problem, *fd.Settings) float64) float64 {
	worst := 0.0
	s := c.settings()
	for t := 0; t < c.Trials; t++ {
		worst = math.Max(worst, check(c.draw(), s))
	}
	return worst
}

// CheckU checks the output weight gradient with the hidden layer fixed.
func (c *Checker) CheckU() float64 { return c.run(problem.checkU) }

func (c *Checker) CheckW() float64 { return c.run(problem.checkW) }

// CheckX checks the gradient with respect to the concatenated window
// embedding.
func (c *Checker) CheckX() float64 { return c.run(problem.checkX) }

func (c *Checker) Run() Report {
	return Report{U: c.CheckU(), W: c.CheckW(), X: c.CheckX()}
}

// CheckWindow checks all three gradients at the live parameters on a real
// window. p is not modified.
func (c *Checker) CheckWindow(net *model.Network, p *model.Params, w window.Window) (Report, error) {
	y, err := net.Target(w)
	if err != nil {
		return Report{}, err
	}
	pr := problem{
		y: y,
		x: model.Concat(p.L, net.Indices(w)),
		W: mat.DenseCopyOf(p.W),
		U: mat.DenseCopyOf(p.U),
	}
	s := c.settings()
	return Report{U: pr.checkU(s), W: pr.checkW(s), X: pr.checkX(s)}, nil
}
