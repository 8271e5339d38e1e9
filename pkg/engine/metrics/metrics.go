// Package metrics exposes solver results as Prometheus metrics written to a
// node_exporter textfile after each run.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/barabadzhi/construction-mkp/pkg/engine/heuristics"
)

// Recorder owns a dedicated registry so repeated runs in one process do not collide.
type Recorder struct {
	Registry *prometheus.Registry

	profit      *prometheus.GaugeVec
	picked      *prometheus.GaugeVec
	runs        *prometheus.GaugeVec
	duration    *prometheus.GaugeVec
	utilization *prometheus.GaugeVec
	trialProfit *prometheus.HistogramVec
}

// NewRecorder registers the solver collectors on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		profit: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "mkp_total_profit", Help: "Total profit of the reported solution."},
			[]string{"instance", "heuristic"},
		),
		picked: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "mkp_picked_items", Help: "Number of items in the reported solution."},
			[]string{"instance", "heuristic"},
		),
		runs: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "mkp_runs", Help: "Construction trials behind the reported solution."},
			[]string{"instance", "heuristic"},
		),
		duration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "mkp_duration_seconds", Help: "Wall-clock time of the heuristic."},
			[]string{"instance", "heuristic"},
		),
		utilization: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "mkp_utilization_ratio", Help: "Consumed fraction of each capacity dimension."},
			[]string{"instance", "heuristic", "dimension"},
		),
		trialProfit: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mkp_trial_profit",
				Help:    "Profit reached by each randomized trial.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 24),
			},
			[]string{"instance", "heuristic"},
		),
	}
	r.Registry.MustRegister(r.profit, r.picked, r.runs, r.duration, r.utilization, r.trialProfit)
	return r
}

// Observe records one heuristic result for the named instance.
func (r *Recorder) Observe(instance string, res heuristics.Result) {
	s := res.Stats
	r.profit.WithLabelValues(instance, res.Heuristic).Set(float64(s.TotalProfit))
	r.picked.WithLabelValues(instance, res.Heuristic).Set(float64(len(s.PickedItems)))
	r.runs.WithLabelValues(instance, res.Heuristic).Set(float64(s.Runs))
	r.duration.WithLabelValues(instance, res.Heuristic).Set(s.Duration.Seconds())
	for d, u := range s.Utilization {
		r.utilization.WithLabelValues(instance, res.Heuristic, fmt.Sprint(d+1)).Set(u)
	}
	for _, p := range s.TrialProfits {
		r.trialProfit.WithLabelValues(instance, res.Heuristic).Observe(float64(p))
	}
}

// WriteTextfile atomically writes the registry in text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
