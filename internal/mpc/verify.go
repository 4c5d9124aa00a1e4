package mpc

import (
	"math"
	"runtime"
	"sync"
)

// fdStep returns the finite-difference perturbation: the square root of
// machine epsilon.
func fdStep() float64 {
	return math.Sqrt(math.Nextafter(1, 2) - 1)
}

type fdTask struct {
	i, k   int
	torque bool
}

// VerifyGradients perturbs each control value at each non-initial step on
// an independent clone of the whole solve state, reruns the solver there,
// and records (perturbedCost-baselineCost)/step in the trajectory's
// finite-difference arrays. Perturbations run concurrently, one solver
// clone per worker; the canonical trajectory, models and result are never
// touched.
func (s *Solver) VerifyGradients() error {
	base := s.Clone()
	if err := base.Solve(); err != nil {
		return err
	}
	f0 := base.Cost()
	h := fdStep()

	total := 2 * s.traj.N * (s.traj.Nt - 1)
	workers := runtime.NumCPU()
	if workers > total {
		workers = total
	}

	// clones must exist before any worker writes a result, so that no
	// Clone reads the finite-difference arrays mid-update
	trials := make([]*Solver, workers)
	for w := range trials {
		trials[w] = s.Clone()
	}

	tasks := make(chan fdTask, total)
	for i := 0; i < s.traj.N; i++ {
		for k := 1; k < s.traj.Nt; k++ {
			tasks <- fdTask{i: i, k: k, torque: false}
			tasks <- fdTask{i: i, k: k, torque: true}
		}
	}
	close(tasks)

	errs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			trial := trials[w]
			for t := range tasks {
				cell := &trial.traj.Pitch[t.i][t.k]
				out := &s.traj.FDPitch[t.i][t.k]
				if t.torque {
					cell = &trial.traj.Torque[t.i][t.k]
					out = &s.traj.FDTorque[t.i][t.k]
				}
				orig := *cell
				*cell = orig + h
				err := trial.Solve()
				*cell = orig
				if err != nil {
					errs[w] = err
					return
				}
				*out = (trial.Cost() - f0) / h
			}
		}(w)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// GradientCheck runs the adjoint solve and the finite-difference sweep,
// and returns the largest absolute disagreement and the largest
// disagreement relative to the larger gradient magnitude, floored at one
// so that near-zero gradients compare absolutely.
func (s *Solver) GradientCheck() (maxAbs, maxRel float64, err error) {
	if err = s.Solve(); err != nil {
		return 0, 0, err
	}
	if err = s.VerifyGradients(); err != nil {
		return 0, 0, err
	}
	check := func(adj, fd float64) {
		d := math.Abs(adj - fd)
		if d > maxAbs {
			maxAbs = d
		}
		m := math.Max(1, math.Max(math.Abs(adj), math.Abs(fd)))
		if r := d / m; r > maxRel {
			maxRel = r
		}
	}
	for i := 0; i < s.traj.N; i++ {
		for k := 1; k < s.traj.Nt; k++ {
			check(s.traj.GradPitch[i][k], s.traj.FDPitch[i][k])
			check(s.traj.GradTorque[i][k], s.traj.FDTorque[i][k])
		}
	}
	return maxAbs, maxRel, nil
}
