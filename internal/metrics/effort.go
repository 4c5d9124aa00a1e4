package metrics

import "math"

// TorqueTravel is the mean absolute step-to-step generator torque change,
// summed over turbines. Large values mean aggressive actuation.
type TorqueTravel struct {
	prev    []float64
	sum     float64
	samples int
}

func NewTorqueTravel() *TorqueTravel { return &TorqueTravel{} }

func (m *TorqueTravel) Name() string { return "torque_travel" }

func (m *TorqueTravel) Observe(s Sample) {
	if m.prev != nil {
		for i, q := range s.Torque {
			m.sum += math.Abs(q - m.prev[i])
		}
		m.samples++
	}
	m.prev = append(m.prev[:0], s.Torque...)
}

func (m *TorqueTravel) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *TorqueTravel) Reset() {
	m.prev = nil
	m.sum = 0
	m.samples = 0
}

// PitchTravel is the mean absolute step-to-step blade pitch change,
// summed over turbines.
type PitchTravel struct {
	prev    []float64
	sum     float64
	samples int
}

func NewPitchTravel() *PitchTravel { return &PitchTravel{} }

func (m *PitchTravel) Name() string { return "pitch_travel" }

func (m *PitchTravel) Observe(s Sample) {
	if m.prev != nil {
		for i, b := range s.Pitch {
			m.sum += math.Abs(b - m.prev[i])
		}
		m.samples++
	}
	m.prev = append(m.prev[:0], s.Pitch...)
}

func (m *PitchTravel) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *PitchTravel) Reset() {
	m.prev = nil
	m.sum = 0
	m.samples = 0
}

// Collect runs every metric over a solved trajectory and returns the
// values by name.
func Collect(times, power, ref []float64, pitch, torque [][]float64, ms []Metric) map[string]float64 {
	for _, m := range ms {
		m.Reset()
	}
	n := len(pitch)
	for k := range times {
		s := Sample{
			Time:   times[k],
			Power:  power[k],
			Ref:    ref[k],
			Pitch:  make([]float64, n),
			Torque: make([]float64, n),
		}
		for i := 0; i < n; i++ {
			s.Pitch[i] = pitch[i][k]
			s.Torque[i] = torque[i][k]
		}
		for _, m := range ms {
			m.Observe(s)
		}
	}
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// Defaults returns the standard tracking diagnostics.
func Defaults() []Metric {
	return []Metric{NewTrackingRMS(), NewPeakError(), NewTorqueTravel(), NewPitchTravel()}
}
