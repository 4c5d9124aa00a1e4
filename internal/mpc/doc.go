// Package mpc implements the adjoint-based model predictive control
// gradient engine for wind-farm power tracking.
//
// A Solver owns a forward wake model, its adjoint counterpart, a control
// trajectory (blade pitch and generator torque per turbine per step) and a
// discretized power reference. Solve runs the wake model forward over the
// horizon, accumulating the quadratic tracking cost and the adjoint
// forcing history, then retracts the adjoint model backward to assemble
// the exact gradient of the cost with respect to every control variable.
//
// The Adapter packs the decision columns into the flat (x, f, g) callback
// contract a generic gradient-based optimizer expects, and VerifyGradients
// validates the adjoint gradient against one-sided finite differences on
// an independent clone of the whole solve state.
package mpc
