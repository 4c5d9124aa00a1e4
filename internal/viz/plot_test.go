package viz

import (
	"strings"
	"testing"
)

func TestTracking(t *testing.T) {
	ref := []float64{95, 95, 95, 95}
	power := []float64{92, 93.5, 94.5, 95}
	out := Tracking(ref, power)
	if out == "" {
		t.Fatal("empty plot")
	}
	if !strings.Contains(out, "farm power") {
		t.Error("missing caption")
	}
}

func TestCostHistory(t *testing.T) {
	if CostHistory([]float64{42}) != "" {
		t.Error("a single evaluation has no history to plot")
	}
	out := CostHistory([]float64{42, 30, 25, 24.5})
	if !strings.Contains(out, "tracking cost") {
		t.Error("missing caption")
	}
}

func TestControls(t *testing.T) {
	out := Controls([]float64{38.4, 39, 39.5}, 1)
	if !strings.Contains(out, "turbine 1") {
		t.Error("missing turbine label")
	}
}

func TestSummary(t *testing.T) {
	out := Summary([][2]string{{"cost", "12.5"}, {"steps", "15"}})
	if !strings.Contains(out, "cost") || !strings.Contains(out, "12.5") {
		t.Error("summary missing content")
	}
}

func TestVerdict(t *testing.T) {
	if !strings.Contains(Verdict(true), "PASS") {
		t.Error("want PASS")
	}
	if !strings.Contains(Verdict(false), "FAIL") {
		t.Error("want FAIL")
	}
}
