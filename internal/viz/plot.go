package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"
)

// Tracking plots the farm power against the reference over the horizon.
func Tracking(ref, power []float64) string {
	graph := asciigraph.PlotMany([][]float64{ref, power},
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.SeriesColors(asciigraph.Gray, asciigraph.Green),
		asciigraph.Caption("farm power (green) vs reference (gray)"),
	)
	return graph
}

// CostHistory plots the objective over optimizer evaluations.
func CostHistory(costs []float64) string {
	if len(costs) < 2 {
		return ""
	}
	return asciigraph.Plot(costs,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("tracking cost vs evaluation"),
	)
}

// Controls plots one turbine's torque trajectory.
func Controls(torque []float64, turbine int) string {
	return asciigraph.Plot(torque,
		asciigraph.Height(8),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("generator torque, turbine %d", turbine)),
	)
}

// Summary renders a labeled key/value block.
func Summary(pairs [][2]string) string {
	var b strings.Builder
	for _, p := range pairs {
		b.WriteString("  ")
		b.WriteString(Label.Render(p[0] + ": "))
		b.WriteString(Value.Render(p[1]))
		b.WriteString("\n")
	}
	return b.String()
}
