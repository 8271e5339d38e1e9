package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/barabadzhi/construction-mkp/pkg/engine/heuristics"
	"github.com/barabadzhi/construction-mkp/pkg/knapsack"
	"github.com/barabadzhi/construction-mkp/pkg/storage"
)

// ErrUnknownFormat is returned for export formats other than json, yaml and csv.
var ErrUnknownFormat = errors.New("unknown export format")

// Report is the exported view of one solver invocation.
type Report struct {
	RunID       string          `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time       `json:"generated_at" yaml:"generated_at"`
	Instance    InstanceSummary `json:"instance" yaml:"instance"`
	Results     []ExportResult  `json:"results" yaml:"results"`
}

// InstanceSummary describes the solved instance.
type InstanceSummary struct {
	Items      int      `json:"items" yaml:"items"`
	Dimensions int      `json:"dimensions" yaml:"dimensions"`
	Capacity   []uint64 `json:"capacity" yaml:"capacity"`
	Optimum    uint64   `json:"optimum,omitempty" yaml:"optimum,omitempty"`
}

// ExportResult matches the JSON/YAML/CSV structure of one heuristic result.
type ExportResult struct {
	Heuristic    string    `json:"heuristic" yaml:"heuristic"`
	TotalProfit  uint64    `json:"total_profit" yaml:"total_profit"`
	PickedItems  []int     `json:"picked_items" yaml:"picked_items"`
	Utilization  []float64 `json:"utilization" yaml:"utilization"`
	DurationNS   int64     `json:"duration_ns" yaml:"duration_ns"`
	Runs         int       `json:"runs" yaml:"runs"`
	BestTrial    *int      `json:"best_trial,omitempty" yaml:"best_trial,omitempty"`
	Seed         uint64    `json:"seed,omitempty" yaml:"seed,omitempty"`
	TrialProfits []uint64  `json:"trial_profits,omitempty" yaml:"trial_profits,omitempty"`
	Gap          *float64  `json:"gap,omitempty" yaml:"gap,omitempty"`
}

// NewReport stamps results with a fresh run ID.
func NewReport(inst *knapsack.Instance, results []heuristics.Result) *Report {
	return BuildReport(uuid.NewString(), time.Now().UTC(), inst, results)
}

// BuildReport assembles a report with an explicit identity.
func BuildReport(runID string, at time.Time, inst *knapsack.Instance, results []heuristics.Result) *Report {
	rep := &Report{
		RunID:       runID,
		GeneratedAt: at,
		Instance: InstanceSummary{
			Items:      inst.N,
			Dimensions: inst.M,
			Capacity:   inst.Capacity,
			Optimum:    inst.Optimum,
		},
		Results: make([]ExportResult, 0, len(results)),
	}

	for _, res := range results {
		s := res.Stats
		item := ExportResult{
			Heuristic:    res.Heuristic,
			TotalProfit:  s.TotalProfit,
			PickedItems:  s.PickedItems,
			Utilization:  s.Utilization,
			DurationNS:   s.Duration.Nanoseconds(),
			Runs:         s.Runs,
			Seed:         s.Seed,
			TrialProfits: s.TrialProfits,
		}
		if s.BestTrial >= 0 && s.TrialProfits != nil {
			best := s.BestTrial
			item.BestTrial = &best
		}
		if gap, ok := s.Gap(inst.Optimum); ok {
			item.Gap = &gap
		}
		rep.Results = append(rep.Results, item)
	}
	return rep
}

// Encode serializes the report.
func Encode(rep *Report, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json", "":
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml", "yml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "csv":
		return encodeCSV(rep)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func encodeCSV(rep *Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"RunID",
		"Heuristic",
		"TotalProfit",
		"Items",
		"PickedItems",
		"Utilization",
		"Runs",
		"DurationNS",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, r := range rep.Results {
		util := make([]string, len(r.Utilization))
		for d, u := range r.Utilization {
			util[d] = fmt.Sprintf("%.4f", u)
		}
		record := []string{
			rep.RunID,
			r.Heuristic,
			fmt.Sprint(r.TotalProfit),
			fmt.Sprint(len(r.PickedItems)),
			joinInts(r.PickedItems, " "),
			strings.Join(util, " "),
			fmt.Sprint(r.Runs),
			fmt.Sprint(r.DurationNS),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// Export encodes the report and writes it to the store under key.
func Export(ctx context.Context, store storage.BlobStore, key string, rep *Report, format string) error {
	data, err := Encode(rep, format)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}
	return nil
}
