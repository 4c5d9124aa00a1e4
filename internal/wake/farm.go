package wake

import (
	"fmt"
	"math"
)

// Params describe a row of turbines sharing a free-stream inflow, each with
// a 1-D wake deficit field of Cells points spaced Dx apart.
type Params struct {
	Turbines   int     `yaml:"turbines"`
	Cells      int     `yaml:"cells"`
	Dx         float64 `yaml:"dx"`           // cell spacing [m]
	Uinf       float64 `yaml:"uinf"`         // free-stream wind speed [m/s]
	Recovery   float64 `yaml:"recovery"`     // wake recovery rate [1/s]
	Induction  float64 `yaml:"induction"`    // peak induction factor
	TorqueCoef float64 `yaml:"torque_coeff"` // aero torque per wind speed squared
	Inertia    float64 `yaml:"inertia"`      // rotor inertia
	RatedSpeed float64 `yaml:"rated_speed"`  // rotor speed scale [rad/s]
	Pitch0     float64 `yaml:"pitch0"`       // operating-point blade pitch [rad]
}

// DefaultParams returns a small two-turbine farm suitable for short
// tracking horizons.
func DefaultParams() Params {
	return Params{
		Turbines:   2,
		Cells:      8,
		Dx:         40.0,
		Uinf:       8.0,
		Recovery:   0.02,
		Induction:  0.3,
		TorqueCoef: 0.6,
		Inertia:    400.0,
		RatedSpeed: 1.6,
		Pitch0:     0.15,
	}
}

// Validate reports whether the parameters describe a usable farm.
func (p Params) Validate() error {
	if p.Turbines < 1 {
		return fmt.Errorf("wake: need at least one turbine, got %d", p.Turbines)
	}
	if p.Cells < 2 {
		return fmt.Errorf("wake: need at least two wake cells, got %d", p.Cells)
	}
	if p.Dx <= 0 || p.Uinf <= 0 {
		return fmt.Errorf("wake: dx and uinf must be positive (dx=%g, uinf=%g)", p.Dx, p.Uinf)
	}
	if p.Inertia <= 0 || p.TorqueCoef <= 0 || p.RatedSpeed <= 0 {
		return fmt.Errorf("wake: inertia, torque_coeff and rated_speed must be positive")
	}
	return nil
}

// Farm is the forward reduced-order wake model.
type Farm struct {
	p      Params
	kernel []float64 // dimensionless source smearing weights, sum 1

	deficit [][]float64 // velocity deficit per turbine per cell
	speed   []float64   // rotor speed per turbine
	power   []float64   // generator power per turbine, from the last Advance

	pitch0  []float64 // operating-point controls
	torque0 []float64

	lastPitch  []float64 // controls applied by the last Advance
	lastTorque []float64
	wind       []float64 // effective wind seen during the last Advance

	// scale constants, frozen at construction
	vScale, lScale, tScale float64
	wScale, qScale, pScale float64

	dimensionless bool
}

// NewFarm builds a farm at its operating point: zero deficit everywhere,
// rotor speed at 75% of rated, generator torque balancing the free-stream
// aerodynamic torque.
func NewFarm(p Params) (*Farm, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	f := &Farm{
		p:      p,
		kernel: sourceKernel(p.Cells),
		vScale: p.Uinf,
		lScale: p.Dx,
		wScale: p.RatedSpeed,
	}
	f.tScale = f.lScale / f.vScale
	f.qScale = p.TorqueCoef * f.vScale * f.vScale
	f.pScale = f.qScale * f.wScale

	n := p.Turbines
	f.deficit = make([][]float64, n)
	for i := range f.deficit {
		f.deficit[i] = make([]float64, p.Cells)
	}
	f.speed = make([]float64, n)
	f.power = make([]float64, n)
	f.pitch0 = make([]float64, n)
	f.torque0 = make([]float64, n)
	f.lastPitch = make([]float64, n)
	f.lastTorque = make([]float64, n)
	f.wind = make([]float64, n)

	q0 := p.TorqueCoef * p.Uinf * p.Uinf
	for i := 0; i < n; i++ {
		f.speed[i] = 0.75 * p.RatedSpeed
		f.pitch0[i] = p.Pitch0
		f.torque0[i] = q0
		f.power[i] = q0 * f.speed[i]
	}
	return f, nil
}

// sourceKernel smears the actuator-disk deficit source over the near-wake
// cells with a normalized Gaussian.
func sourceKernel(nc int) []float64 {
	k := make([]float64, nc)
	center := float64(nc) / 4.0
	sigma := math.Max(1.0, float64(nc)/8.0)
	sum := 0.0
	for j := range k {
		d := (float64(j) - center) / sigma
		k[j] = math.Exp(-0.5 * d * d)
		sum += k[j]
	}
	for j := range k {
		k[j] /= sum
	}
	return k
}

func induction(a0, pitch float64) float64 {
	c := math.Cos(pitch)
	return a0 * c * c
}

func dInduction(a0, pitch float64) float64 {
	return -a0 * math.Sin(2.0 * pitch)
}

// Turbines returns the turbine count.
func (f *Farm) Turbines() int { return f.p.Turbines }

// Cells returns the wake cell count per turbine.
func (f *Farm) Cells() int { return f.p.Cells }

// Dx returns the wake cell spacing in the current unit regime.
func (f *Farm) Dx() float64 { return f.p.Dx }

// Uinf returns the free-stream wind speed in the current unit regime.
func (f *Farm) Uinf() float64 { return f.p.Uinf }

// Inertia returns the rotor inertia in the current unit regime.
func (f *Farm) Inertia() float64 { return f.p.Inertia }

// TimeScale returns the characteristic advection time Dx/Uinf.
func (f *Farm) TimeScale() float64 { return f.tScale }

// PowerScale returns the characteristic generator power.
func (f *Farm) PowerScale() float64 { return f.pScale }

// TorqueScale returns the characteristic aerodynamic torque.
func (f *Farm) TorqueScale() float64 { return f.qScale }

// Dimensionless reports the current unit regime.
func (f *Farm) Dimensionless() bool { return f.dimensionless }

// OperatingPoint copies the fixed initial-condition controls into pitch
// and torque.
func (f *Farm) OperatingPoint(pitch, torque []float64) {
	copy(pitch, f.pitch0)
	copy(torque, f.torque0)
}

// Speeds copies the current rotor speeds into dst.
func (f *Farm) Speeds(dst []float64) {
	copy(dst, f.speed)
}

// FarmPower returns the aggregate generator power from the last Advance.
func (f *Farm) FarmPower() float64 {
	sum := 0.0
	for _, p := range f.power {
		sum += p
	}
	return sum
}

// effectiveWind fills f.wind with the rotor-effective wind speeds from the
// current (pre-update) deficit fields. Turbine i sees the deficit arriving
// at the last cell of turbine i-1's wake.
func (f *Farm) effectiveWind() {
	nc := f.p.Cells
	f.wind[0] = f.p.Uinf
	for i := 1; i < f.p.Turbines; i++ {
		f.wind[i] = f.p.Uinf - f.deficit[i-1][nc-1]
	}
}

// Advance steps the model by dt under the given per-turbine pitch and
// generator torque columns.
func (f *Farm) Advance(pitch, torque []float64, dt float64) {
	n, nc := f.p.Turbines, f.p.Cells
	adv := dt * f.p.Uinf / f.p.Dx
	dec := dt * f.p.Recovery

	f.effectiveWind()
	copy(f.lastPitch, pitch)
	copy(f.lastTorque, torque)

	for i := 0; i < n; i++ {
		src := adv * induction(f.p.Induction, pitch[i]) * f.wind[i]
		u := f.deficit[i]
		// descending sweep keeps the upwind neighbor at its old value
		for j := nc - 1; j >= 1; j-- {
			u[j] += -adv*(u[j]-u[j-1]) - dec*u[j] + src*f.kernel[j]
		}
		u[0] += -adv*u[0] - dec*u[0] + src*f.kernel[0]

		ta := f.p.TorqueCoef * f.wind[i] * f.wind[i]
		f.speed[i] += dt * (ta - torque[i]) / f.p.Inertia
		f.power[i] = torque[i] * f.speed[i]
	}
}

// Forcing extracts the adjoint forcing terms for the step just advanced,
// evaluated against the reference farm power at that step.
func (f *Farm) Forcing(refPower, dt float64, out *ForcingTerms) {
	n := f.p.Turbines
	adv := dt * f.p.Uinf / f.p.Dx
	eps := 2.0 * dt * (f.FarmPower() - refPower)
	for i := 0; i < n; i++ {
		a := induction(f.p.Induction, f.lastPitch[i])
		for j, w := range f.kernel {
			out.Source[i][j] = adv * w * a
		}
		out.Wind[i] = f.wind[i]
		out.Inj[i] = eps * f.lastTorque[i]
		// d(torque*speed)/d(torque) with speed itself advanced by -dt*q/J
		out.Direct[i] = eps * (f.speed[i] - dt*f.lastTorque[i]/f.p.Inertia)
	}
}

// Clone returns a fully independent copy with disjoint storage.
func (f *Farm) Clone() *Farm {
	c := *f
	c.kernel = append([]float64(nil), f.kernel...)
	c.deficit = make([][]float64, len(f.deficit))
	for i := range f.deficit {
		c.deficit[i] = append([]float64(nil), f.deficit[i]...)
	}
	c.speed = append([]float64(nil), f.speed...)
	c.power = append([]float64(nil), f.power...)
	c.pitch0 = append([]float64(nil), f.pitch0...)
	c.torque0 = append([]float64(nil), f.torque0...)
	c.lastPitch = append([]float64(nil), f.lastPitch...)
	c.lastTorque = append([]float64(nil), f.lastTorque...)
	c.wind = append([]float64(nil), f.wind...)
	return &c
}

// CopyStateFrom overwrites the mutable state of f with that of src.
// Both farms must share the same parameters.
func (f *Farm) CopyStateFrom(src *Farm) {
	for i := range f.deficit {
		copy(f.deficit[i], src.deficit[i])
	}
	copy(f.speed, src.speed)
	copy(f.power, src.power)
	copy(f.lastPitch, src.lastPitch)
	copy(f.lastTorque, src.lastTorque)
	copy(f.wind, src.wind)
	f.dimensionless = src.dimensionless
}

// ToDimensionless rescales all state and parameters by the frozen scale
// constants. Calling it in the dimensionless regime is a no-op.
func (f *Farm) ToDimensionless() {
	if f.dimensionless {
		return
	}
	f.rescale(1.0)
	f.dimensionless = true
}

// ToDimensional is the exact inverse of ToDimensionless.
func (f *Farm) ToDimensional() {
	if !f.dimensionless {
		return
	}
	f.rescale(-1.0)
	f.dimensionless = false
}

// rescale applies the unit conversion; dir=+1 removes dimensions, dir=-1
// restores them.
func (f *Farm) rescale(dir float64) {
	scale := func(x, s float64) float64 {
		if dir > 0 {
			return x / s
		}
		return x * s
	}
	f.p.Uinf = scale(f.p.Uinf, f.vScale)
	f.p.Dx = scale(f.p.Dx, f.lScale)
	f.p.Recovery = scale(f.p.Recovery, 1.0/f.tScale)
	f.p.RatedSpeed = scale(f.p.RatedSpeed, f.wScale)
	f.p.TorqueCoef = scale(f.p.TorqueCoef, f.qScale/(f.vScale*f.vScale))
	f.p.Inertia = scale(f.p.Inertia, f.tScale*f.qScale/f.wScale)
	for i := range f.deficit {
		for j := range f.deficit[i] {
			f.deficit[i][j] = scale(f.deficit[i][j], f.vScale)
		}
		f.speed[i] = scale(f.speed[i], f.wScale)
		f.power[i] = scale(f.power[i], f.pScale)
		f.torque0[i] = scale(f.torque0[i], f.qScale)
		f.lastTorque[i] = scale(f.lastTorque[i], f.qScale)
		f.wind[i] = scale(f.wind[i], f.vScale)
	}
}
