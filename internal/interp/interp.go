package interp

import (
	"errors"
	"fmt"
	"sort"
)

// ErrOutOfRange indicates a query time outside the supplied sample range.
// Extrapolation is never performed silently.
var ErrOutOfRange = errors.New("interp: query outside sample range")

// ErrBadSamples indicates an empty or non-increasing sample set.
var ErrBadSamples = errors.New("interp: samples must be non-empty and strictly increasing in time")

// Linear evaluates the piecewise-linear interpolant through (ts, vs) at t.
func Linear(ts, vs []float64, t float64) (float64, error) {
	if len(ts) == 0 || len(ts) != len(vs) {
		return 0, ErrBadSamples
	}
	for i := 1; i < len(ts); i++ {
		if ts[i] <= ts[i-1] {
			return 0, ErrBadSamples
		}
	}
	if t < ts[0] || t > ts[len(ts)-1] {
		return 0, fmt.Errorf("%w: t=%g not in [%g, %g]", ErrOutOfRange, t, ts[0], ts[len(ts)-1])
	}
	if len(ts) == 1 {
		return vs[0], nil
	}
	i := sort.SearchFloat64s(ts, t)
	if i < len(ts) && ts[i] == t {
		return vs[i], nil
	}
	// ts[i-1] < t < ts[i]
	w := (t - ts[i-1]) / (ts[i] - ts[i-1])
	return vs[i-1] + w*(vs[i]-vs[i-1]), nil
}

// Resample evaluates the interpolant at each query time.
func Resample(ts, vs, queries []float64) ([]float64, error) {
	out := make([]float64, len(queries))
	for i, t := range queries {
		v, err := Linear(ts, vs, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
