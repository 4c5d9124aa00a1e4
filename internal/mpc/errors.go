package mpc

import "errors"

// Precondition violations detected before or at the start of a solver run.
// None of these are retried internally.
var (
	// ErrInvalidHorizon indicates a nonpositive derived time step or a
	// horizon with fewer than two grid steps.
	ErrInvalidHorizon = errors.New("mpc: invalid horizon")

	// ErrInvalidReference indicates an empty reference sample set, or one
	// that does not cover the internal time grid.
	ErrInvalidReference = errors.New("mpc: invalid power reference")

	// ErrControlVectorLength indicates an optimizer-supplied vector whose
	// length does not match 2*turbines*(steps-1).
	ErrControlVectorLength = errors.New("mpc: control vector length mismatch")

	// ErrScaleState indicates mixed dimensional/nondimensional sub-state.
	ErrScaleState = errors.New("mpc: inconsistent unit regime across solver state")
)
