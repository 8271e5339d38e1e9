package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/barabadzhi/construction-mkp/pkg/engine/heuristics"
	"github.com/barabadzhi/construction-mkp/pkg/engine/report"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	s := strings.Builder{}
	s.WriteString(titleStyle.Render("MKP CONSTRUCTION HEURISTICS"))
	s.WriteString("\n\n")

	switch m.phase {
	case PhaseLoading:
		s.WriteString(fmt.Sprintf("   %s Loading %s...\n", m.spinner.View(), m.input))
	case PhaseSolving:
		s.WriteString(m.viewHUD() + "\n")
		s.WriteString(fmt.Sprintf("   %s Solving...\n", m.spinner.View()))
	case PhaseFailed:
		s.WriteString(danger.Render("   [FAIL] ") + m.err.Error() + "\n")
	case PhaseDone:
		s.WriteString(m.viewHUD() + "\n")
		for i, res := range m.results {
			s.WriteString(m.viewCard(i, res) + "\n")
		}
		if m.showDetails && m.cursor < len(m.results) {
			s.WriteString(m.viewDetails(m.results[m.cursor]) + "\n")
		}
	}

	s.WriteString("\n" + subtle.Render("  ↑/↓ select • enter details • r re-run • q quit"))
	return s.String()
}

func (m Model) viewHUD() string {
	if m.inst == nil {
		return ""
	}
	optimum := "unknown"
	if m.inst.Optimum > 0 {
		optimum = fmt.Sprint(m.inst.Optimum)
	}
	cells := []string{
		hudLabelStyle.Render("ITEMS") + hudValueStyle.Render(fmt.Sprint(m.inst.N)),
		hudLabelStyle.Render("DIMENSIONS") + hudValueStyle.Render(fmt.Sprint(m.inst.M)),
		hudLabelStyle.Render("OPTIMUM") + hudValueStyle.Render(optimum),
	}
	if m.phase == PhaseDone {
		cells = append(cells, hudLabelStyle.Render("WALL")+hudValueStyle.Render(m.elapsed.Round(time.Microsecond).String()))
	}
	return hudStyle.Render(strings.Join(cells, "   "))
}

func (m Model) viewCard(i int, res heuristics.Result) string {
	block := strings.TrimRight(report.NewPrinter(io.Discard, true).Block(m.inst, res), "\n")

	if opt := m.inst.Optimum; opt > 0 {
		ratio := float64(res.Stats.TotalProfit) / float64(opt)
		if ratio > 1 {
			ratio = 1
		}
		block += "\n    " + m.progress.ViewAs(ratio) + " of optimum"
	}

	if i == m.cursor {
		return selectedCardStyle.Render(block)
	}
	return cardStyle.Render(block)
}

func (m Model) viewDetails(res heuristics.Result) string {
	lines := []string{detailsHeaderStyle.Render(res.Heuristic + " details")}

	stats := res.Stats
	if len(stats.TrialProfits) > 0 {
		lines = append(lines,
			fmt.Sprintf("Seed:          %d", stats.Seed),
			fmt.Sprintf("Best trial:    #%d", stats.BestTrial+1),
			"Trial profits: "+renderSparkline(stats.TrialProfits),
		)
	} else {
		lines = append(lines, subtle.Render("Single deterministic run."))
	}

	for d, u := range stats.Utilization {
		style := special
		if u < 0.5 {
			style = warning
		}
		lines = append(lines, fmt.Sprintf("Dimension %-3d %s", d+1, style.Render(fmt.Sprintf("%5.1f%%", u*100))))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func renderSparkline(data []uint64) string {
	if len(data) == 0 {
		return "[NO DATA]"
	}
	bars := []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

	var max uint64
	for _, v := range data {
		if v > max {
			max = v
		}
	}

	var s strings.Builder
	s.WriteString("[")
	for _, v := range data {
		if max == 0 {
			s.WriteString(bars[0])
			continue
		}
		idx := int(float64(v) / float64(max) * float64(len(bars)-1))
		s.WriteString(bars[idx])
	}
	s.WriteString("]")
	return s.String()
}
