// Package tui is the interactive front end: it loads an instance, runs the
// heuristics and shows one card per result.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/barabadzhi/construction-mkp/pkg/engine/heuristics"
	"github.com/barabadzhi/construction-mkp/pkg/knapsack"
)

// Solver is the part of the engine the TUI drives.
type Solver interface {
	Load(ctx context.Context, uri string) (*knapsack.Instance, error)
	Solve(ctx context.Context, inst *knapsack.Instance) ([]heuristics.Result, error)
}

type Phase int

const (
	PhaseLoading Phase = iota
	PhaseSolving
	PhaseDone
	PhaseFailed
)

type (
	loadedMsg struct{ inst *knapsack.Instance }
	solvedMsg struct {
		results []heuristics.Result
		elapsed time.Duration
	}
	errMsg struct{ err error }
)

type Model struct {
	spinner  spinner.Model
	progress progress.Model
	solver   Solver
	ctx      context.Context
	input    string

	phase    Phase
	err      error
	quitting bool
	width    int

	inst    *knapsack.Instance
	results []heuristics.Result
	elapsed time.Duration

	cursor      int
	showDetails bool
}

// NewModel builds a model that loads input through solver once started.
func NewModel(ctx context.Context, solver Solver, input string) Model {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = special

	prog := progress.New(progress.WithGradient("#00FF99", "#00CCFF"), progress.WithWidth(40))

	return Model{
		spinner:  s,
		progress: prog,
		solver:   solver,
		ctx:      ctx,
		input:    input,
		phase:    PhaseLoading,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		inst, err := m.solver.Load(m.ctx, m.input)
		if err != nil {
			return errMsg{err}
		}
		return loadedMsg{inst}
	}
}

func (m Model) solveCmd(inst *knapsack.Instance) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		results, err := m.solver.Solve(m.ctx, inst)
		if err != nil {
			return errMsg{err}
		}
		return solvedMsg{results: results, elapsed: time.Since(start)}
	}
}

// Results returns what the last solve produced.
func (m Model) Results() []heuristics.Result {
	return m.results
}

// Err returns the failure that stopped the model, if any.
func (m Model) Err() error {
	return m.err
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}
		case "enter", " ":
			m.showDetails = !m.showDetails
		case "r":
			if m.phase == PhaseDone && m.inst != nil {
				m.phase = PhaseSolving
				m.showDetails = false
				return m, tea.Batch(m.spinner.Tick, m.solveCmd(m.inst))
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 30; w > 10 && w < 60 {
			m.progress.Width = w
		}

	case loadedMsg:
		m.inst = msg.inst
		m.phase = PhaseSolving
		return m, m.solveCmd(msg.inst)

	case solvedMsg:
		m.results = msg.results
		m.elapsed = msg.elapsed
		m.phase = PhaseDone
		if m.cursor >= len(m.results) {
			m.cursor = 0
		}

	case errMsg:
		m.err = msg.err
		m.phase = PhaseFailed

	case spinner.TickMsg:
		if m.phase != PhaseLoading && m.phase != PhaseSolving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}
