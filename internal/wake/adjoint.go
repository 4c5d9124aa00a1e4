package wake

// Adjoint integrates the wake model's adjoint equations backward in time.
// Its state holds the sensitivity of the tracking cost to each wake cell
// and each rotor speed; the initial-condition snapshot is identically zero.
type Adjoint struct {
	p      Params
	kernel []float64

	deficit [][]float64 // adjoint wake-cell sensitivities per turbine
	speed   []float64   // adjoint rotor-speed sensitivities per turbine

	vScale, lScale, tScale float64
	wScale, qScale, pScale float64

	dimensionless bool
}

// NewAdjoint builds the adjoint counterpart of f, at the zero snapshot and
// in the same unit regime.
func NewAdjoint(f *Farm) *Adjoint {
	a := &Adjoint{
		p:             f.p,
		kernel:        append([]float64(nil), f.kernel...),
		vScale:        f.vScale,
		lScale:        f.lScale,
		tScale:        f.tScale,
		wScale:        f.wScale,
		qScale:        f.qScale,
		pScale:        f.pScale,
		dimensionless: f.dimensionless,
	}
	a.deficit = make([][]float64, f.p.Turbines)
	for i := range a.deficit {
		a.deficit[i] = make([]float64, f.p.Cells)
	}
	a.speed = make([]float64, f.p.Turbines)
	return a
}

// Reset restores the zero initial-condition snapshot.
func (a *Adjoint) Reset() {
	for i := range a.deficit {
		for j := range a.deficit[i] {
			a.deficit[i][j] = 0
		}
		a.speed[i] = 0
	}
}

// Dimensionless reports the current unit regime.
func (a *Adjoint) Dimensionless() bool { return a.dimensionless }

// Retract integrates the adjoint state one step backward, applying the
// exact transpose of the forward transition whose forcing terms are given.
// The forcing must be the one extracted one step ahead of the index being
// retracted to.
func (a *Adjoint) Retract(next ForcingTerms, dt float64) {
	n, nc := a.p.Turbines, a.p.Cells
	adv := dt * a.p.Uinf / a.p.Dx
	keep := 1.0 - adv - dt*a.p.Recovery

	// cost forcing enters through the rotor-speed sensitivities first
	for i := 0; i < n; i++ {
		a.speed[i] += next.Inj[i]
	}

	// transpose of the upwind advection: cell j inherits from cells j and
	// j+1; the last cell additionally collects the downstream turbine's
	// source and torque couplings (its deficit sets that turbine's wind).
	for i := 0; i < n; i++ {
		u := a.deficit[i]
		for j := 0; j < nc-1; j++ {
			u[j] = keep*u[j] + adv*u[j+1]
		}
		u[nc-1] = keep * u[nc-1]
		if i < n-1 {
			couple := 0.0
			for j, s := range next.Source[i+1] {
				couple += s * a.deficit[i+1][j]
			}
			tq := 2.0 * dt * a.p.TorqueCoef * next.Wind[i+1] / a.p.Inertia
			u[nc-1] -= couple + tq*a.speed[i+1]
		}
	}
}

// PitchSensitivity assembles dJ/dpitch for turbine i from the current
// adjoint state: the kernel-weighted sum of the wake-cell sensitivities,
// scaled by the induction slope at the step's pitch, the effective wind,
// the advection rate, and the time step.
func (a *Adjoint) PitchSensitivity(i int, pitch, wind, dt float64) float64 {
	s := 0.0
	for j, w := range a.kernel {
		s += w * a.deficit[i][j]
	}
	return dInduction(a.p.Induction, pitch) * wind * dt * a.p.Uinf / a.p.Dx * s
}

// TorqueSensitivity assembles the backward contribution to dJ/dtorque for
// turbine i: the adjoint rotor-speed sensitivity divided by the rotor
// inertia, scaled by the time step.
func (a *Adjoint) TorqueSensitivity(i int, dt float64) float64 {
	return -dt * a.speed[i] / a.p.Inertia
}

// Clone returns a fully independent copy with disjoint storage.
func (a *Adjoint) Clone() *Adjoint {
	c := *a
	c.kernel = append([]float64(nil), a.kernel...)
	c.deficit = make([][]float64, len(a.deficit))
	for i := range a.deficit {
		c.deficit[i] = append([]float64(nil), a.deficit[i]...)
	}
	c.speed = append([]float64(nil), a.speed...)
	return &c
}

// ToDimensionless rescales the adjoint state and parameters; no-op when
// already dimensionless.
func (a *Adjoint) ToDimensionless() {
	if a.dimensionless {
		return
	}
	a.rescale(1.0)
	a.dimensionless = true
}

// ToDimensional is the exact inverse of ToDimensionless.
func (a *Adjoint) ToDimensional() {
	if !a.dimensionless {
		return
	}
	a.rescale(-1.0)
	a.dimensionless = false
}

func (a *Adjoint) rescale(dir float64) {
	scale := func(x, s float64) float64 {
		if dir > 0 {
			return x / s
		}
		return x * s
	}
	cScale := a.pScale * a.pScale * a.tScale // tracking-cost scale
	a.p.Uinf = scale(a.p.Uinf, a.vScale)
	a.p.Dx = scale(a.p.Dx, a.lScale)
	a.p.Recovery = scale(a.p.Recovery, 1.0/a.tScale)
	a.p.RatedSpeed = scale(a.p.RatedSpeed, a.wScale)
	a.p.TorqueCoef = scale(a.p.TorqueCoef, a.qScale/(a.vScale*a.vScale))
	a.p.Inertia = scale(a.p.Inertia, a.tScale*a.qScale/a.wScale)
	for i := range a.deficit {
		for j := range a.deficit[i] {
			a.deficit[i][j] = scale(a.deficit[i][j], cScale/a.vScale)
		}
		a.speed[i] = scale(a.speed[i], cScale/a.wScale)
	}
}
