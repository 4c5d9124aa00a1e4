// Package tui shows optimizer progress live in the terminal.
package tui

import (
	"fmt"
	"math"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/windmpc/internal/viz"
)

// CostMsg reports one objective evaluation.
type CostMsg struct {
	Eval int
	Cost float64
}

// DoneMsg reports that the optimizer finished.
type DoneMsg struct {
	Err error
}

type Model struct {
	ch      <-chan tea.Msg
	history []float64
	eval    int
	best    float64
	done    bool
	err     error
}

func New(ch <-chan tea.Msg) Model {
	return Model{ch: ch, best: math.Inf(1)}
}

func listen(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg { return <-ch }
}

func (m Model) Init() tea.Cmd { return listen(m.ch) }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case CostMsg:
		m.eval = msg.Eval
		if msg.Cost < m.best {
			m.best = msg.Cost
		}
		if !math.IsInf(msg.Cost, 1) {
			m.history = append(m.history, msg.Cost)
			if len(m.history) > 200 {
				m.history = m.history[1:]
			}
		}
		return m, listen(m.ch)
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	s := viz.Title.Render("windmpc") + "  " + viz.Label.Render("adjoint MPC power tracking") + "\n\n"
	s += fmt.Sprintf("  %s %d\n", viz.Label.Render("evaluations:"), m.eval)
	if !math.IsInf(m.best, 1) {
		s += fmt.Sprintf("  %s %.6g\n", viz.Label.Render("best cost:  "), m.best)
	}
	if plot := viz.CostHistory(m.history); plot != "" {
		s += "\n" + plot + "\n"
	}
	if m.done {
		if m.err != nil {
			s += "\n" + viz.Bad.Render("failed: "+m.err.Error()) + "\n"
		} else {
			s += "\n" + viz.Good.Render("converged") + "\n"
		}
	}
	s += "\n" + viz.Label.Render("q to quit") + "\n"
	return s
}

// Run drives the live view until the optimizer sends DoneMsg or the user
// quits.
func Run(ch <-chan tea.Msg) error {
	p := tea.NewProgram(New(ch))
	_, err := p.Run()
	return err
}
