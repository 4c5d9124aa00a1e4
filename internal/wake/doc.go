// Package wake provides a reduced-order wake model of a row of wind
// turbines, together with its discrete adjoint.
//
// Each turbine carries a 1-D velocity-deficit field advected downstream
// on a uniform grid, plus a rotor speed driven by the imbalance between
// aerodynamic torque and generator torque. Generator power is the product
// of generator torque and rotor speed; farm power is the sum over turbines.
//
// The model advances with an explicit upwind scheme, and the adjoint
// applies the exact transpose of that scheme's linearization, so that
// gradients assembled from adjoint sensitivities agree with finite
// differences of the forward model to floating-point accuracy.
package wake
