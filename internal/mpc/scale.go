package mpc

import "github.com/san-kum/windmpc/internal/wake"

// ScaleContext carries the wake model's characteristic scales and the
// regime flag that is global to a solve instance. The factors are frozen
// at construction; only the flag changes.
type ScaleContext struct {
	Time   float64
	Power  float64
	Torque float64

	dimensionless bool
}

func newScaleContext(f *wake.Farm) *ScaleContext {
	return &ScaleContext{
		Time:   f.TimeScale(),
		Power:  f.PowerScale(),
		Torque: f.TorqueScale(),
	}
}

// Dimensionless reports the current unit regime.
func (sc *ScaleContext) Dimensionless() bool { return sc.dimensionless }

func (sc *ScaleContext) clone() *ScaleContext {
	c := *sc
	return &c
}

// Scale returns the solver's scale context.
func (s *Solver) Scale() *ScaleContext { return s.scale }

// ToDimensionless converts every owned sub-state to nondimensional form:
// the time grid, the reference and farm-power series, the cost, the torque
// arrays with their gradient and finite-difference counterparts, and the
// forward and adjoint wake models with their snapshots. Invoking it while
// already dimensionless is a no-op; partial scaling never escapes.
func (s *Solver) ToDimensionless() {
	if s.scale.dimensionless {
		return
	}
	s.rescale(true)
	s.fwd.ToDimensionless()
	s.fwdIC.ToDimensionless()
	s.adj.ToDimensionless()
	s.scale.dimensionless = true
}

// ToDimensional is the exact algebraic inverse of ToDimensionless.
func (s *Solver) ToDimensional() {
	if !s.scale.dimensionless {
		return
	}
	s.rescale(false)
	s.fwd.ToDimensional()
	s.fwdIC.ToDimensional()
	s.adj.ToDimensional()
	s.scale.dimensionless = false
}

func (s *Solver) rescale(strip bool) {
	scale := func(x, f float64) float64 {
		if strip {
			return x / f
		}
		return x * f
	}
	sc := s.scale
	cost := sc.Power * sc.Power * sc.Time // units of the tracking cost

	s.grid.Start = scale(s.grid.Start, sc.Time)
	s.grid.Dt = scale(s.grid.Dt, sc.Time)
	for k := range s.grid.Times {
		s.grid.Times[k] = scale(s.grid.Times[k], sc.Time)
		s.ref[k] = scale(s.ref[k], sc.Power)
		s.pfarm[k] = scale(s.pfarm[k], sc.Power)
	}
	s.cost = scale(s.cost, cost)

	t := s.traj
	for i := 0; i < t.N; i++ {
		for k := 0; k < t.Nt; k++ {
			t.Torque[i][k] = scale(t.Torque[i][k], sc.Torque)
			t.GradTorque[i][k] = scale(t.GradTorque[i][k], cost/sc.Torque)
			t.FDTorque[i][k] = scale(t.FDTorque[i][k], cost/sc.Torque)
			t.GradPitch[i][k] = scale(t.GradPitch[i][k], cost)
			t.FDPitch[i][k] = scale(t.FDPitch[i][k], cost)
		}
	}
}
