package mpc

import (
	"fmt"
	"math"

	"github.com/san-kum/windmpc/internal/interp"
	"github.com/san-kum/windmpc/internal/wake"
)

// TimeGrid is the discretized control horizon. The step size is tied to
// the wake model's advection stability limit rather than chosen freely.
type TimeGrid struct {
	Start float64
	Dt    float64
	Nt    int
	Times []float64
}

// Clone returns an independent copy of the grid.
func (g *TimeGrid) Clone() *TimeGrid {
	c := *g
	c.Times = append([]float64(nil), g.Times...)
	return &c
}

// BuildHorizon derives the time grid from the farm's spatial step and
// free-stream velocity (dt = cfl*dx/uinf, Nt = ceil(length/dt)), and
// resamples the external (refTimes, refPowers) samples onto it with
// piecewise-linear interpolation. Grid times outside the sample range are
// an error, never silently extrapolated.
func BuildHorizon(f *wake.Farm, start, length, cfl float64, refTimes, refPowers []float64) (*TimeGrid, []float64, error) {
	dt := cfl * f.Dx() / f.Uinf()
	if dt <= 0 || length <= 0 {
		return nil, nil, fmt.Errorf("%w: dt=%g length=%g", ErrInvalidHorizon, dt, length)
	}
	nt := int(math.Ceil(length / dt))
	if nt < 2 {
		return nil, nil, fmt.Errorf("%w: Nt=%d, need at least one decision step", ErrInvalidHorizon, nt)
	}
	if len(refTimes) == 0 || len(refTimes) != len(refPowers) {
		return nil, nil, fmt.Errorf("%w: %d times, %d powers", ErrInvalidReference, len(refTimes), len(refPowers))
	}

	grid := &TimeGrid{Start: start, Dt: dt, Nt: nt, Times: make([]float64, nt)}
	for k := 0; k < nt; k++ {
		grid.Times[k] = start + float64(k)*dt
	}

	ref, err := interp.Resample(refTimes, refPowers, grid.Times)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	return grid, ref, nil
}
