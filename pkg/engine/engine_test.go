package engine

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barabadzhi/construction-mkp/pkg/config"
	"github.com/barabadzhi/construction-mkp/pkg/knapsack"
	"github.com/barabadzhi/construction-mkp/pkg/storage"
)

const smallInstance = "5 2 0 13\n6 5 4 3 8\n5 4 3 2 6\n1 2 1 3 4\n10 8\n"

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "input.txt")
	require.NoError(t, os.WriteFile(input, []byte(smallInstance), 0644))

	sc := config.DefaultSolverConfig()
	sc.Input = input
	sc.Seed = 99
	sc.Workers = 2
	return Config{
		SolverConfig:  sc,
		SkipTelemetry: true,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestEngineInitialization(t *testing.T) {
	cfg := testConfig(t)

	eng, err := New(context.Background(),
		WithConfig(cfg),
		WithLogger(cfg.Logger),
		WithConcurrency(3),
	)
	require.NoError(t, err)
	require.NotNil(t, eng)

	assert.Equal(t, 3, eng.Config().Workers)
	assert.NotNil(t, eng.Metrics)
	assert.NoError(t, eng.Shutdown(context.Background()))
}

func TestEngineDefaults(t *testing.T) {
	eng, err := New(context.Background(), WithConfig(Config{
		SolverConfig:  config.DefaultSolverConfig(),
		SkipTelemetry: true,
	}))
	require.NoError(t, err)

	assert.NotNil(t, eng.Logger, "Engine should have default logger")
	assert.Equal(t, "input.txt", eng.Config().Input)
	assert.Equal(t, 10, eng.Config().Trials)
}

func TestEngineRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Heuristics = []string{"simulated-annealing"}

	_, err := New(context.Background(), WithConfig(cfg))
	assert.Error(t, err)
}

func TestEngineWithTelemetry(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	cfg := testConfig(t)
	cfg.SkipTelemetry = false

	eng, err := New(context.Background(), WithConfig(cfg))
	require.NoError(t, err)
	require.NotNil(t, eng.shutdown, "telemetry must be installed when not skipped")

	_, span := eng.Tracer.Start(context.Background(), "check")
	assert.True(t, span.IsRecording())
	span.End()

	_, err = eng.Run(context.Background())
	require.NoError(t, err)
	assert.NoError(t, eng.Shutdown(context.Background()))
}

func TestEngineRun(t *testing.T) {
	cfg := testConfig(t)
	out := t.TempDir()
	cfg.Output.Export = out + "/"
	cfg.Output.MetricsTextfile = filepath.Join(out, "metrics", "mkp.prom")

	eng, err := New(context.Background(), WithConfig(cfg))
	require.NoError(t, err)

	outcomes, err := eng.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	res := outcomes[0]
	assert.Equal(t, cfg.Input, res.Input)

	require.Len(t, res.Results, 2)
	assert.Equal(t, "Greedy", res.Results[0].Heuristic)
	assert.Equal(t, "Random", res.Results[1].Heuristic)

	greedy := res.Results[0].Stats
	assert.Equal(t, uint64(13), greedy.TotalProfit)
	assert.Equal(t, []int{1, 3, 4}, greedy.PickedItems)

	random := res.Results[1].Stats
	assert.Equal(t, 10, random.Runs)
	assert.Equal(t, uint64(99), random.Seed)
	assert.LessOrEqual(t, random.TotalProfit, uint64(13))

	require.NotNil(t, res.Report)
	assert.Equal(t, filepath.Join(out, "mkp-"+res.Report.RunID+".json"), res.ExportedTo)
	data, err := os.ReadFile(res.ExportedTo)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"heuristic": "Greedy"`)

	prom, err := os.ReadFile(cfg.Output.MetricsTextfile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `mkp_total_profit{heuristic="Greedy",instance="input.txt"} 13`)
}

func TestEngineRun_Directory(t *testing.T) {
	cfg := testConfig(t)
	dir := filepath.Dir(cfg.Input)
	// Same items, tighter capacities: greedy reaches 6 with item 1 alone.
	tight := "5 2 0 6\n6 5 4 3 8\n5 4 3 2 6\n1 2 1 3 4\n5 1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b-tight.txt"), []byte(tight), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("not an instance"), 0644))

	out := t.TempDir()
	cfg.Input = dir
	cfg.Heuristics = []string{"greedy"}
	cfg.Output.Export = out + "/"
	cfg.Output.MetricsTextfile = filepath.Join(out, "mkp.prom")

	eng, err := New(context.Background(), WithConfig(cfg))
	require.NoError(t, err)

	inputs, err := eng.Inputs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "b-tight.txt"), filepath.Join(dir, "input.txt")}, inputs)

	outcomes, err := eng.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Equal(t, uint64(6), outcomes[0].Results[0].Stats.TotalProfit)
	assert.Equal(t, uint64(13), outcomes[1].Results[0].Stats.TotalProfit)
	assert.NotEqual(t, outcomes[0].ExportedTo, outcomes[1].ExportedTo)
	for _, o := range outcomes {
		assert.FileExists(t, o.ExportedTo)
	}

	prom, err := os.ReadFile(cfg.Output.MetricsTextfile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `mkp_total_profit{heuristic="Greedy",instance="b-tight.txt"} 6`)
	assert.Contains(t, string(prom), `mkp_total_profit{heuristic="Greedy",instance="input.txt"} 13`)
}

func TestEngineRun_DirectoryNeedsDirectoryExport(t *testing.T) {
	cfg := testConfig(t)
	dir := filepath.Dir(cfg.Input)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "second.txt"), []byte(smallInstance), 0644))
	cfg.Input = dir
	cfg.Output.Export = filepath.Join(t.TempDir(), "report.json")

	eng, err := New(context.Background(), WithConfig(cfg))
	require.NoError(t, err)

	_, err = eng.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory target")
}

func TestEngineRun_MissingInput(t *testing.T) {
	cfg := testConfig(t)
	cfg.Input = filepath.Join(t.TempDir(), "absent.txt")

	eng, err := New(context.Background(), WithConfig(cfg))
	require.NoError(t, err)

	_, err = eng.Run(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEngineRun_MalformedInput(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Input, []byte("3 1 0 0\n1 2\n"), 0644))

	eng, err := New(context.Background(), WithConfig(cfg))
	require.NoError(t, err)

	_, err = eng.Run(context.Background())
	assert.ErrorIs(t, err, knapsack.ErrMalformedInstance)
}

func TestEngineSolve_Cancelled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Heuristics = []string{"random"}

	eng, err := New(context.Background(), WithConfig(cfg))
	require.NoError(t, err)
	inst, err := eng.Load(context.Background(), cfg.Input)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = eng.Solve(ctx, inst)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngineSolve_RecoversPanic(t *testing.T) {
	cfg := testConfig(t)
	eng, err := New(context.Background(), WithConfig(cfg))
	require.NoError(t, err)

	// A capacity vector shorter than the weights indexes out of range.
	broken := &knapsack.Instance{
		N:     1,
		M:     1,
		Items: []knapsack.Item{knapsack.NewItem(1, 1, []uint64{1})},
	}

	_, err = eng.Solve(context.Background(), broken)
	assert.True(t, errors.Is(err, ErrPanic), "got %v", err)
}

func TestExportTarget(t *testing.T) {
	tests := []struct {
		dest, format, want string
	}{
		{"", "json", ""},
		{"out/report.json", "json", "out/report.json"},
		{"out/", "json", "out/mkp-r1.json"},
		{"out/", "yml", "out/mkp-r1.yaml"},
		{"out/", "CSV", "out/mkp-r1.csv"},
		{"s3://bucket/runs/", "yaml", "s3://bucket/runs/mkp-r1.yaml"},
		{"s3://bucket/runs/", "", "s3://bucket/runs/mkp-r1.json"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExportTarget(tt.dest, "r1", tt.format), "dest=%q format=%q", tt.dest, tt.format)
	}
}

func TestNewLogger_FormatsDurations(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, true, true).Info("done", "duration", 1500*time.Microsecond)
	assert.Contains(t, buf.String(), `"duration":"1.5ms"`)

	buf.Reset()
	NewLogger(&buf, false, true).Info("done", "duration", 2*time.Second)
	assert.True(t, strings.Contains(buf.String(), "duration=2s"), buf.String())

	buf.Reset()
	NewLogger(&buf, false, false).Info("quiet")
	assert.Empty(t, buf.String())
}
