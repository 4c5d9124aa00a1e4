package mpc

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Adapter exposes a Solver through the flat-vector (x, f, g) contract a
// generic unconstrained gradient-based optimizer expects. The decision
// vector covers columns 1..Nt-1 only; the fixed initial column is never
// exposed.
type Adapter struct {
	s *Solver

	// last accepted point, so Func and Grad at the same x cost one solve
	lastX []float64
	lastF float64
	lastG []float64
	valid bool
}

// NewAdapter wraps s.
func NewAdapter(s *Solver) *Adapter {
	return &Adapter{s: s}
}

// Len is the decision-vector length 2*N*(Nt-1).
func (a *Adapter) Len() int { return a.s.traj.VectorLen() }

// ControlVector packs the current trajectory into a fresh flat vector,
// used to seed the optimizer.
func (a *Adapter) ControlVector() []float64 {
	x := make([]float64, a.Len())
	// length is ours, Pack cannot fail
	_ = a.s.traj.Pack(x)
	return x
}

// Evaluate writes x into the trajectory's decision columns, runs the
// forward-backward solver, and returns the cost with its matching
// flattened gradient.
func (a *Adapter) Evaluate(x []float64) (float64, []float64, error) {
	if err := a.s.traj.Unpack(x); err != nil {
		return 0, nil, err
	}
	if err := a.s.Solve(); err != nil {
		return 0, nil, err
	}
	g := make([]float64, a.Len())
	_ = a.s.traj.PackGradient(g)

	a.lastX = append(a.lastX[:0], x...)
	a.lastF = a.s.Cost()
	a.lastG = append(a.lastG[:0], g...)
	a.valid = true
	return a.lastF, g, nil
}

func (a *Adapter) cached(x []float64) bool {
	return a.valid && len(x) == len(a.lastX) && floats.Equal(x, a.lastX)
}

// Func is the gonum/optimize objective hook. An evaluation failure is
// reported as +Inf, which the optimizer treats as an unreachable point.
func (a *Adapter) Func(x []float64) float64 {
	if a.cached(x) {
		return a.lastF
	}
	f, _, err := a.Evaluate(x)
	if err != nil {
		return math.Inf(1)
	}
	return f
}

// Grad is the gonum/optimize gradient hook.
func (a *Adapter) Grad(dst, x []float64) {
	if !a.cached(x) {
		if _, _, err := a.Evaluate(x); err != nil {
			for i := range dst {
				dst[i] = 0
			}
			return
		}
	}
	copy(dst, a.lastG)
}
