// Package report renders heuristic results for the terminal and exports them
// as JSON, YAML or CSV.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/barabadzhi/construction-mkp/pkg/engine/heuristics"
	"github.com/barabadzhi/construction-mkp/pkg/knapsack"
)

// Printer writes one block per heuristic result.
type Printer struct {
	w     io.Writer
	plain bool

	name  lipgloss.Style
	value lipgloss.Style
	items lipgloss.Style
}

// NewPrinter styles output for w. plain disables all styling.
func NewPrinter(w io.Writer, plain bool) *Printer {
	r := lipgloss.NewRenderer(w)
	if plain {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{
		w:     w,
		plain: plain,
		name:  r.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
		value: r.NewStyle().Foreground(lipgloss.Color("2")),
		items: r.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

func (p *Printer) render(s lipgloss.Style, text string) string {
	if p.plain {
		return text
	}
	return s.Render(text)
}

// Print renders every result in order.
func (p *Printer) Print(inst *knapsack.Instance, results []heuristics.Result) error {
	for _, res := range results {
		if err := p.PrintResult(inst, res); err != nil {
			return err
		}
	}
	return nil
}

// PrintResult renders a single result block.
func (p *Printer) PrintResult(inst *knapsack.Instance, res heuristics.Result) error {
	_, err := io.WriteString(p.w, p.Block(inst, res))
	return err
}

// Block returns the rendered text for one result.
func (p *Printer) Block(inst *knapsack.Instance, res heuristics.Result) string {
	s := res.Stats
	ids := s.SortedItems()

	var b strings.Builder
	b.WriteString(p.render(p.name, res.Heuristic))
	b.WriteByte('\n')
	fmt.Fprintf(&b, "    -> Total profit: %s\n", p.render(p.value, fmt.Sprint(s.TotalProfit)))
	fmt.Fprintf(&b, "    -> Items (%d): %s\n", len(ids), p.render(p.items, joinInts(ids, ", ")))
	fmt.Fprintf(&b, "    -> Runs: %s\n", p.render(p.value, fmt.Sprint(s.Runs)))
	fmt.Fprintf(&b, "    -> Utilization: %s\n", formatUtilization(s.Utilization))
	fmt.Fprintf(&b, "    -> Duration: %s\n", p.formatDuration(s.Duration))
	if inst != nil {
		if gap, ok := s.Gap(inst.Optimum); ok {
			fmt.Fprintf(&b, "    -> Gap: %s (optimum %d)\n", p.render(p.value, fmt.Sprintf("%.2f%%", gap*100)), inst.Optimum)
		}
	}
	b.WriteByte('\n')
	return b.String()
}

// formatDuration splits d into whole seconds and the sub-second remainder in nanoseconds.
func (p *Printer) formatDuration(d time.Duration) string {
	secs := int64(d / time.Second)
	nanos := int64(d % time.Second)

	var parts []string
	if secs > 0 {
		parts = append(parts, p.render(p.value, fmt.Sprint(secs))+" s")
	}
	if nanos > 0 || secs == 0 {
		parts = append(parts, p.render(p.value, fmt.Sprint(nanos))+" ns")
	}
	return strings.Join(parts, " ")
}

func formatUtilization(util []float64) string {
	parts := make([]string, len(util))
	for d, u := range util {
		parts[d] = fmt.Sprintf("%.1f%%", u*100)
	}
	return strings.Join(parts, " ")
}

func joinInts(ids []int, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, sep)
}
