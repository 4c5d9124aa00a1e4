package mpc

import (
	"fmt"

	"github.com/san-kum/windmpc/internal/wake"
)

// Solver is a single-horizon forward-backward gradient engine. It
// exclusively owns its forward and adjoint wake models, control
// trajectory, forcing history and result; instances are not safe for
// concurrent use, but independent instances share nothing.
type Solver struct {
	fwd   *wake.Farm // model advanced during the forward pass
	fwdIC *wake.Farm // initial-condition snapshot for resets
	adj   *wake.Adjoint

	grid *TimeGrid
	ref  []float64 // reference power on the grid
	traj *Controls

	scale *ScaleContext

	// store-all forcing history: the backward pass at step k needs the
	// forcing extracted at k+1, and recomputing it would mean re-running
	// the forward model.
	forcing []wake.ForcingTerms

	pfarm []float64 // farm power per step from the last forward pass
	cost  float64

	// scratch columns, allocated once at construction
	pitchCol  []float64
	torqueCol []float64
}

// NewSolver builds a solve instance around a snapshot of f. The farm is
// value-copied so later perturbation or reset cannot alias the caller's
// model.
func NewSolver(f *wake.Farm, grid *TimeGrid, ref []float64) (*Solver, error) {
	if grid == nil || grid.Dt <= 0 || grid.Nt < 2 {
		return nil, fmt.Errorf("%w: need a grid with at least two steps", ErrInvalidHorizon)
	}
	if len(ref) != grid.Nt {
		return nil, fmt.Errorf("%w: %d samples for %d grid steps", ErrInvalidReference, len(ref), grid.Nt)
	}
	n := f.Turbines()
	s := &Solver{
		fwd:       f.Clone(),
		fwdIC:     f.Clone(),
		adj:       wake.NewAdjoint(f),
		grid:      grid.Clone(),
		ref:       append([]float64(nil), ref...),
		traj:      NewControls(n, grid.Nt),
		scale:     newScaleContext(f),
		forcing:   make([]wake.ForcingTerms, grid.Nt),
		pfarm:     make([]float64, grid.Nt),
		pitchCol:  make([]float64, n),
		torqueCol: make([]float64, n),
	}
	for k := range s.forcing {
		s.forcing[k] = wake.NewForcingTerms(n, f.Cells())
	}
	s.traj.SeedOperatingPoint(s.fwdIC)
	return s, nil
}

// Trajectory exposes the solver's control trajectory store.
func (s *Solver) Trajectory() *Controls { return s.traj }

// Grid exposes the solver's time grid.
func (s *Solver) Grid() *TimeGrid { return s.grid }

// Reference returns the reference power on the grid.
func (s *Solver) Reference() []float64 { return s.ref }

// Cost returns the tracking cost from the last Solve.
func (s *Solver) Cost() float64 { return s.cost }

// FarmPower returns the farm power series from the last Solve.
func (s *Solver) FarmPower() []float64 { return s.pfarm }

// Solve runs the forward pass and the backward adjoint sweep, leaving the
// tracking cost in Cost and the exact gradients in the trajectory store.
func (s *Solver) Solve() error {
	if err := s.checkRegime(); err != nil {
		return err
	}
	n, nt := s.traj.N, s.traj.Nt
	dt := s.grid.Dt

	s.cost = 0
	s.traj.ZeroGradients()
	s.fwd.CopyStateFrom(s.fwdIC)
	s.pfarm[0] = s.fwd.FarmPower()

	// Forward pass: advance, accumulate cost, capture forcing, and fold in
	// the torque gradient's direct term (it needs no adjoint state).
	for k := 1; k < nt; k++ {
		for i := 0; i < n; i++ {
			s.pitchCol[i] = s.traj.Pitch[i][k]
			s.torqueCol[i] = s.traj.Torque[i][k]
		}
		s.fwd.Advance(s.pitchCol, s.torqueCol, dt)

		p := s.fwd.FarmPower()
		s.pfarm[k] = p
		e := p - s.ref[k]
		s.cost += dt * e * e

		s.fwd.Forcing(s.ref[k], dt, &s.forcing[k])
		for i := 0; i < n; i++ {
			s.traj.GradTorque[i][k] += s.forcing[k].Direct[i]
		}
	}

	// Backward pass: the adjoint at step k is retracted with the forcing
	// captured at k+1. The last decision column needs no retraction (its
	// backward contributions vanish), and no gradient is ever formed for
	// the fixed initial column.
	s.adj.Reset()
	for k := nt - 2; k >= 0; k-- {
		s.adj.Retract(s.forcing[k+1], dt)
		if k == 0 {
			break
		}
		for i := 0; i < n; i++ {
			s.traj.GradPitch[i][k] = s.adj.PitchSensitivity(i, s.traj.Pitch[i][k], s.forcing[k].Wind[i], dt)
			s.traj.GradTorque[i][k] += s.adj.TorqueSensitivity(i, dt)
		}
	}
	return nil
}

// checkRegime verifies that every owned sub-state sits in the same unit
// regime. Partial scaling should be impossible through the public API, but
// it is checked defensively before touching any state.
func (s *Solver) checkRegime() error {
	want := s.scale.dimensionless
	if s.fwd.Dimensionless() != want || s.fwdIC.Dimensionless() != want || s.adj.Dimensionless() != want {
		return fmt.Errorf("%w: context=%v fwd=%v snapshot=%v adjoint=%v",
			ErrScaleState, want, s.fwd.Dimensionless(), s.fwdIC.Dimensionless(), s.adj.Dimensionless())
	}
	return nil
}

// Clone returns a fully independent solve instance: models, snapshots,
// trajectory, forcing history and result all get disjoint storage.
func (s *Solver) Clone() *Solver {
	n := s.traj.N
	c := &Solver{
		fwd:       s.fwd.Clone(),
		fwdIC:     s.fwdIC.Clone(),
		adj:       s.adj.Clone(),
		grid:      s.grid.Clone(),
		ref:       append([]float64(nil), s.ref...),
		traj:      s.traj.Clone(),
		scale:     s.scale.clone(),
		forcing:   make([]wake.ForcingTerms, len(s.forcing)),
		pfarm:     append([]float64(nil), s.pfarm...),
		cost:      s.cost,
		pitchCol:  make([]float64, n),
		torqueCol: make([]float64, n),
	}
	for k := range s.forcing {
		c.forcing[k] = wake.NewForcingTerms(n, s.fwdIC.Cells())
		for i := 0; i < n; i++ {
			copy(c.forcing[k].Source[i], s.forcing[k].Source[i])
		}
		copy(c.forcing[k].Wind, s.forcing[k].Wind)
		copy(c.forcing[k].Inj, s.forcing[k].Inj)
		copy(c.forcing[k].Direct, s.forcing[k].Direct)
	}
	return c
}
