package mpc

import (
	"math"
	"testing"
)

func relDiff(a, b float64) float64 {
	return math.Abs(a-b) / math.Max(1e-300, math.Max(math.Abs(a), math.Abs(b)))
}

func TestScaleRoundTripRestoresSolve(t *testing.T) {
	s := newTrackingSolver(t, 2, 1.05)
	if err := s.Solve(); err != nil {
		t.Fatal(err)
	}
	cost := s.Cost()
	gq := s.traj.GradTorque[0][1]
	gp := s.traj.GradPitch[0][1]
	dt := s.grid.Dt

	s.ToDimensionless()
	s.ToDimensional()

	if relDiff(s.Cost(), cost) > 1e-12 {
		t.Errorf("cost round trip: %v vs %v", s.Cost(), cost)
	}
	if relDiff(s.traj.GradTorque[0][1], gq) > 1e-12 {
		t.Errorf("torque gradient round trip: %v vs %v", s.traj.GradTorque[0][1], gq)
	}
	if relDiff(s.traj.GradPitch[0][1], gp) > 1e-12 {
		t.Errorf("pitch gradient round trip: %v vs %v", s.traj.GradPitch[0][1], gp)
	}
	if s.grid.Dt != dt {
		t.Errorf("grid step round trip: %v vs %v", s.grid.Dt, dt)
	}
	if s.Scale().Dimensionless() {
		t.Error("regime flag not cleared")
	}
}

func TestScaleIdempotent(t *testing.T) {
	s := newTrackingSolver(t, 2, 1.05)
	if err := s.Solve(); err != nil {
		t.Fatal(err)
	}
	s.ToDimensionless()
	cost := s.Cost()
	ref0 := s.ref[1]
	s.ToDimensionless() // no-op
	if s.Cost() != cost || s.ref[1] != ref0 {
		t.Error("second ToDimensionless changed state")
	}
	s.ToDimensional()
	s.ToDimensional() // no-op
	if s.Scale().Dimensionless() {
		t.Error("regime flag wrong after double ToDimensional")
	}
}

func TestDimensionlessSolveMatchesDimensional(t *testing.T) {
	// running the whole solve in nondimensional units must reproduce the
	// dimensional cost and gradients up to the frozen scale factors
	s := newTrackingSolver(t, 2, 1.05)
	if err := s.Solve(); err != nil {
		t.Fatal(err)
	}

	d := s.Clone()
	d.ToDimensionless()
	if err := d.Solve(); err != nil {
		t.Fatal(err)
	}

	sc := s.Scale()
	costScale := sc.Power * sc.Power * sc.Time

	if rel := relDiff(d.Cost()*costScale, s.Cost()); rel > 1e-10 {
		t.Errorf("dimensionless cost off by %v", rel)
	}
	for i := 0; i < s.traj.N; i++ {
		for k := 1; k < s.traj.Nt; k++ {
			gq := d.traj.GradTorque[i][k] * costScale / sc.Torque
			if rel := relDiff(gq, s.traj.GradTorque[i][k]); rel > 1e-9 && math.Abs(s.traj.GradTorque[i][k]) > 1e-9 {
				t.Errorf("torque gradient [%d][%d] off by %v", i, k, rel)
			}
			gp := d.traj.GradPitch[i][k] * costScale
			if rel := relDiff(gp, s.traj.GradPitch[i][k]); rel > 1e-9 && math.Abs(s.traj.GradPitch[i][k]) > 1e-9 {
				t.Errorf("pitch gradient [%d][%d] off by %v", i, k, rel)
			}
		}
	}
}

func TestScaledSolveRegimeConsistency(t *testing.T) {
	s := newTrackingSolver(t, 2, 1.05)
	s.ToDimensionless()
	if err := s.Solve(); err != nil {
		t.Fatalf("solve in dimensionless regime: %v", err)
	}
	s.ToDimensional()
	if err := s.Solve(); err != nil {
		t.Fatalf("solve after restoring dimensions: %v", err)
	}
}
