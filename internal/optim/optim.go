// Package optim drives the MPC evaluation contract to convergence with a
// generic nonlinear optimizer from gonum.
package optim

import (
	"fmt"

	"gonum.org/v1/gonum/optimize"

	"github.com/san-kum/windmpc/internal/mpc"
)

// Options select and bound the optimizer run.
type Options struct {
	Method        string  // lbfgs, bfgs, gradient, neldermead
	MaxIterations int     // major iteration cap, 0 means gonum's default
	Tolerance     float64 // gradient norm threshold, 0 means gonum's default
}

// Progress is called after each objective evaluation.
type Progress func(evaluation int, cost float64)

// Result summarizes an optimizer run.
type Result struct {
	X          []float64
	Cost       float64
	Evals      int
	Iterations int
	Status     string
}

// Method maps a config name onto a gonum optimization method.
func Method(name string) (optimize.Method, error) {
	switch name {
	case "", "lbfgs":
		return &optimize.LBFGS{}, nil
	case "bfgs":
		return &optimize.BFGS{}, nil
	case "gradient":
		return &optimize.GradientDescent{}, nil
	case "neldermead":
		return &optimize.NelderMead{}, nil
	default:
		return nil, fmt.Errorf("optim: unknown method %q", name)
	}
}

// Minimize seeds the optimizer with the adapter's current trajectory and
// iterates the (x, f, g) contract until convergence or the iteration cap.
// The adapter's trajectory holds the best point found when it returns.
func Minimize(a *mpc.Adapter, opt Options, onProgress Progress) (*Result, error) {
	method, err := Method(opt.Method)
	if err != nil {
		return nil, err
	}

	evals := 0
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			f := a.Func(x)
			evals++
			if onProgress != nil {
				onProgress(evals, f)
			}
			return f
		},
		Grad: a.Grad,
	}

	settings := &optimize.Settings{}
	if opt.MaxIterations > 0 {
		settings.MajorIterations = opt.MaxIterations
	}
	if opt.Tolerance > 0 {
		settings.GradientThreshold = opt.Tolerance
	}

	res, err := optimize.Minimize(problem, a.ControlVector(), settings, method)
	if res == nil {
		return nil, err
	}

	// write the optimizer's final point back into the trajectory
	if _, _, evalErr := a.Evaluate(res.X); evalErr != nil {
		return nil, evalErr
	}

	out := &Result{
		X:          res.X,
		Cost:       res.F,
		Evals:      evals,
		Iterations: res.MajorIterations,
		Status:     res.Status.String(),
	}
	// an iteration cap is an acceptable stopping reason, not a failure
	if err != nil && res.Status != optimize.IterationLimit {
		return out, fmt.Errorf("optim: %w", err)
	}
	return out, nil
}
