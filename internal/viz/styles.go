// Package viz renders solve results for the terminal.
package viz

import "github.com/charmbracelet/lipgloss"

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86"))

	Label = lipgloss.NewStyle().
		Foreground(lipgloss.Color("242"))

	Value = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("255"))

	Good = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("82"))

	Bad = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("196"))

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("238")).
		Padding(0, 1)
)

// Verdict styles a pass/fail word.
func Verdict(ok bool) string {
	if ok {
		return Good.Render("PASS")
	}
	return Bad.Render("FAIL")
}
