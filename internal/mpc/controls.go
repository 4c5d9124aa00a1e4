package mpc

import (
	"fmt"

	"github.com/san-kum/windmpc/internal/wake"
)

// Controls owns the decision variables of a solve: pitch and torque per
// turbine per step, their adjoint gradients, and the finite-difference
// gradient estimates kept for validation. Column 0 is the wake model's
// operating point and is never a decision variable.
type Controls struct {
	N  int // turbines
	Nt int // grid steps, including the fixed initial column

	Pitch  [][]float64
	Torque [][]float64

	GradPitch  [][]float64
	GradTorque [][]float64

	FDPitch  [][]float64
	FDTorque [][]float64
}

func alloc2(n, nt int) [][]float64 {
	a := make([][]float64, n)
	for i := range a {
		a[i] = make([]float64, nt)
	}
	return a
}

// NewControls allocates a zeroed trajectory for n turbines over nt steps.
func NewControls(n, nt int) *Controls {
	return &Controls{
		N: n, Nt: nt,
		Pitch:      alloc2(n, nt),
		Torque:     alloc2(n, nt),
		GradPitch:  alloc2(n, nt),
		GradTorque: alloc2(n, nt),
		FDPitch:    alloc2(n, nt),
		FDTorque:   alloc2(n, nt),
	}
}

// SeedOperatingPoint fills every column with the farm's current operating
// point, pinning column 0 and giving the optimizer a feasible start.
func (c *Controls) SeedOperatingPoint(f *wake.Farm) {
	pitch := make([]float64, c.N)
	torque := make([]float64, c.N)
	f.OperatingPoint(pitch, torque)
	for i := 0; i < c.N; i++ {
		for k := 0; k < c.Nt; k++ {
			c.Pitch[i][k] = pitch[i]
			c.Torque[i][k] = torque[i]
		}
	}
}

// VectorLen is the flat decision-vector length: both controls over all
// turbines and all non-initial steps.
func (c *Controls) VectorLen() int { return 2 * c.N * (c.Nt - 1) }

// Pack writes the decision columns into dst: all pitch values for steps
// 1..Nt-1, turbine-major within each step, followed by all torque values
// in the same layout.
func (c *Controls) Pack(dst []float64) error {
	if len(dst) != c.VectorLen() {
		return fmt.Errorf("%w: got %d, want %d", ErrControlVectorLength, len(dst), c.VectorLen())
	}
	half := c.N * (c.Nt - 1)
	for k := 1; k < c.Nt; k++ {
		for i := 0; i < c.N; i++ {
			idx := (k-1)*c.N + i
			dst[idx] = c.Pitch[i][k]
			dst[half+idx] = c.Torque[i][k]
		}
	}
	return nil
}

// Unpack writes x back into the decision columns; column 0 is untouched.
func (c *Controls) Unpack(x []float64) error {
	if len(x) != c.VectorLen() {
		return fmt.Errorf("%w: got %d, want %d", ErrControlVectorLength, len(x), c.VectorLen())
	}
	half := c.N * (c.Nt - 1)
	for k := 1; k < c.Nt; k++ {
		for i := 0; i < c.N; i++ {
			idx := (k-1)*c.N + i
			c.Pitch[i][k] = x[idx]
			c.Torque[i][k] = x[half+idx]
		}
	}
	return nil
}

// PackGradient writes the adjoint gradients into dst with the Pack layout.
func (c *Controls) PackGradient(dst []float64) error {
	if len(dst) != c.VectorLen() {
		return fmt.Errorf("%w: got %d, want %d", ErrControlVectorLength, len(dst), c.VectorLen())
	}
	half := c.N * (c.Nt - 1)
	for k := 1; k < c.Nt; k++ {
		for i := 0; i < c.N; i++ {
			idx := (k-1)*c.N + i
			dst[idx] = c.GradPitch[i][k]
			dst[half+idx] = c.GradTorque[i][k]
		}
	}
	return nil
}

// ZeroGradients clears the adjoint gradient arrays before a run.
func (c *Controls) ZeroGradients() {
	for i := 0; i < c.N; i++ {
		for k := 0; k < c.Nt; k++ {
			c.GradPitch[i][k] = 0
			c.GradTorque[i][k] = 0
		}
	}
}

// Clone returns a fully independent copy with disjoint storage.
func (c *Controls) Clone() *Controls {
	d := NewControls(c.N, c.Nt)
	for i := 0; i < c.N; i++ {
		copy(d.Pitch[i], c.Pitch[i])
		copy(d.Torque[i], c.Torque[i])
		copy(d.GradPitch[i], c.GradPitch[i])
		copy(d.GradTorque[i], c.GradTorque[i])
		copy(d.FDPitch[i], c.FDPitch[i])
		copy(d.FDTorque[i], c.FDTorque[i])
	}
	return d
}
