package report

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barabadzhi/construction-mkp/pkg/engine/heuristics"
	"github.com/barabadzhi/construction-mkp/pkg/knapsack"
	"github.com/barabadzhi/construction-mkp/pkg/storage"
)

const fixtureRunID = "0b6f1f0e-6a53-4c1e-9a8e-2f4f3a0f0001"

var fixtureTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func fixture(t *testing.T) (*knapsack.Instance, []heuristics.Result) {
	t.Helper()
	inst, err := knapsack.NewInstance(
		[]uint64{8, 4, 6, 2},
		[][]uint64{{4, 2, 3, 1}, {1, 3, 2, 2}},
		[]uint64{8, 4},
	)
	require.NoError(t, err)
	inst.Optimum = 14

	greedy := heuristics.RunGreedy(inst)
	greedy.Duration = 1500 * time.Nanosecond

	random := &knapsack.Statistics{
		TotalProfit:  14,
		PickedItems:  []int{3, 1},
		Utilization:  []float64{0.875, 0.75},
		Duration:     2*time.Second + 5*time.Nanosecond,
		Runs:         4,
		TrialProfits: []uint64{10, 14, 14, 8},
		BestTrial:    1,
		Seed:         42,
	}

	return inst, []heuristics.Result{
		{Heuristic: "Greedy", Stats: greedy},
		{Heuristic: "Random", Stats: random},
	}
}

func TestPrinter_PlainGolden(t *testing.T) {
	inst, results := fixture(t)

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, true).Print(inst, results))

	g := goldie.New(t)
	g.Assert(t, "printer_plain", buf.Bytes())
}

func TestPrinter_NoGapWithoutOptimum(t *testing.T) {
	inst, results := fixture(t)
	inst.Optimum = 0

	block := NewPrinter(&bytes.Buffer{}, true).Block(inst, results[0])
	assert.NotContains(t, block, "Gap")
	assert.Contains(t, block, "-> Items (2): 1, 3")
}

func TestPrinter_EmptyResult(t *testing.T) {
	inst, _ := fixture(t)

	block := NewPrinter(&bytes.Buffer{}, true).Block(inst, heuristics.Result{
		Heuristic: "Random",
		Stats:     knapsack.EmptyStatistics(inst.M),
	})
	assert.Contains(t, block, "-> Items (0): \n")
	assert.Contains(t, block, "-> Runs: 0\n")
	assert.Contains(t, block, "-> Duration: 0 ns\n")
}

func TestEncode_JSONGolden(t *testing.T) {
	inst, results := fixture(t)
	rep := BuildReport(fixtureRunID, fixtureTime, inst, results)

	data, err := Encode(rep, "json")
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "report_json", data)
}

func TestEncode_CSVGolden(t *testing.T) {
	inst, results := fixture(t)
	rep := BuildReport(fixtureRunID, fixtureTime, inst, results)

	data, err := Encode(rep, "csv")
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "report_csv", data)
}

func TestEncode_YAML(t *testing.T) {
	inst, results := fixture(t)
	rep := BuildReport(fixtureRunID, fixtureTime, inst, results)

	data, err := Encode(rep, "yaml")
	require.NoError(t, err)

	out := string(data)
	assert.True(t, strings.HasPrefix(out, "run_id: "+fixtureRunID+"\n"))
	assert.Contains(t, out, "heuristic: Random")
	assert.Contains(t, out, "best_trial: 1")
}

func TestEncode_UnknownFormat(t *testing.T) {
	inst, results := fixture(t)

	_, err := Encode(BuildReport(fixtureRunID, fixtureTime, inst, results), "xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestNewReport_AssignsRunID(t *testing.T) {
	inst, results := fixture(t)

	a := NewReport(inst, results)
	b := NewReport(inst, results)
	assert.Len(t, a.RunID, 36)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestExport_LocalStore(t *testing.T) {
	ctx := context.Background()
	inst, results := fixture(t)
	store := storage.NewLocalStore(t.TempDir())

	rep := BuildReport(fixtureRunID, fixtureTime, inst, results)
	require.NoError(t, Export(ctx, store, "out/run.json", rep, "json"))

	data, err := store.Get(ctx, "out/run.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"run_id": "`+fixtureRunID+`"`)
}
