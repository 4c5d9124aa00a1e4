package wake

// ForcingTerms hold the quantities extracted after a forward step that the
// backward adjoint sweep needs to retract across that same step.
type ForcingTerms struct {
	// Source[i][j] is the coupling coefficient of the deficit source of
	// turbine i into wake cell j, evaluated at the step's pitch setting.
	Source [][]float64
	// Wind[i] is the rotor-effective wind speed seen by turbine i.
	Wind []float64
	// Inj[i] is the tracking-cost injection into the adjoint rotor-speed
	// sensitivity of turbine i.
	Inj []float64
	// Direct[i] is the direct contribution of turbine i's generator torque
	// to its own gradient, accumulated during the forward pass.
	Direct []float64
}

// NewForcingTerms allocates zeroed forcing storage for n turbines with
// nc wake cells each.
func NewForcingTerms(n, nc int) ForcingTerms {
	src := make([][]float64, n)
	for i := range src {
		src[i] = make([]float64, nc)
	}
	return ForcingTerms{
		Source: src,
		Wind:   make([]float64, n),
		Inj:    make([]float64, n),
		Direct: make([]float64, n),
	}
}
