package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barabadzhi/construction-mkp/pkg/engine/heuristics"
	"github.com/barabadzhi/construction-mkp/pkg/knapsack"
)

func TestRecorder_ObserveAndWrite(t *testing.T) {
	rec := NewRecorder()
	rec.Observe("a.txt", heuristics.Result{
		Heuristic: "Greedy",
		Stats: &knapsack.Statistics{
			TotalProfit: 9,
			PickedItems: []int{3, 2},
			Utilization: []float64{0.7},
			Duration:    2 * time.Millisecond,
			Runs:        1,
		},
	})
	rec.Observe("a.txt", heuristics.Result{
		Heuristic: "Random",
		Stats: &knapsack.Statistics{
			TotalProfit:  11,
			PickedItems:  []int{1, 3},
			Utilization:  []float64{0.8},
			Runs:         3,
			TrialProfits: []uint64{9, 11, 10},
		},
	})

	assert.Equal(t, 9.0, testutil.ToFloat64(rec.profit.WithLabelValues("a.txt", "Greedy")))
	assert.Equal(t, 3.0, testutil.ToFloat64(rec.runs.WithLabelValues("a.txt", "Random")))
	assert.Equal(t, 0.8, testutil.ToFloat64(rec.utilization.WithLabelValues("a.txt", "Random", "1")))
	assert.Equal(t, 1, testutil.CollectAndCount(rec.trialProfit))

	path := filepath.Join(t.TempDir(), "textfile", "mkp.prom")
	require.NoError(t, rec.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `mkp_total_profit{heuristic="Random",instance="a.txt"} 11`)
	assert.Contains(t, string(data), `mkp_trial_profit_count{heuristic="Random",instance="a.txt"} 3`)
}

func TestRecorder_InstancesKeptApart(t *testing.T) {
	rec := NewRecorder()
	for _, tt := range []struct {
		instance string
		profit   uint64
	}{
		{"a.txt", 9},
		{"b.txt", 14},
	} {
		rec.Observe(tt.instance, heuristics.Result{
			Heuristic: "Greedy",
			Stats:     &knapsack.Statistics{TotalProfit: tt.profit, Runs: 1},
		})
	}

	assert.Equal(t, 9.0, testutil.ToFloat64(rec.profit.WithLabelValues("a.txt", "Greedy")))
	assert.Equal(t, 14.0, testutil.ToFloat64(rec.profit.WithLabelValues("b.txt", "Greedy")))
	assert.Equal(t, 2, testutil.CollectAndCount(rec.profit))
}
