// Package metrics provides diagnostics computed over a solved tracking
// trajectory.
package metrics

import "math"

// Sample is one horizon step as seen by a metric.
type Sample struct {
	Time   float64
	Power  float64 // farm power
	Ref    float64 // reference power
	Pitch  []float64
	Torque []float64
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// TrackingRMS is the root-mean-square farm power tracking error.
type TrackingRMS struct {
	sum     float64
	samples int
}

func NewTrackingRMS() *TrackingRMS { return &TrackingRMS{} }

func (m *TrackingRMS) Name() string { return "tracking_rms" }

func (m *TrackingRMS) Observe(s Sample) {
	e := s.Power - s.Ref
	m.sum += e * e
	m.samples++
}

func (m *TrackingRMS) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return math.Sqrt(m.sum / float64(m.samples))
}

func (m *TrackingRMS) Reset() {
	m.sum = 0
	m.samples = 0
}

// PeakError is the worst absolute tracking error over the horizon.
type PeakError struct {
	max float64
}

func NewPeakError() *PeakError { return &PeakError{} }

func (m *PeakError) Name() string { return "peak_error" }

func (m *PeakError) Observe(s Sample) {
	if e := math.Abs(s.Power - s.Ref); e > m.max {
		m.max = e
	}
}

func (m *PeakError) Value() float64 { return m.max }

func (m *PeakError) Reset() { m.max = 0 }
