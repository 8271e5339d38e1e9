package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/barabadzhi/construction-mkp/pkg/config"
	"github.com/barabadzhi/construction-mkp/pkg/engine/heuristics"
	"github.com/barabadzhi/construction-mkp/pkg/engine/metrics"
	"github.com/barabadzhi/construction-mkp/pkg/engine/report"
	"github.com/barabadzhi/construction-mkp/pkg/engine/swarm"
	"github.com/barabadzhi/construction-mkp/pkg/knapsack"
	"github.com/barabadzhi/construction-mkp/pkg/storage"
	"github.com/barabadzhi/construction-mkp/pkg/telemetry"
	"github.com/barabadzhi/construction-mkp/pkg/version"
)

// ErrPanic wraps a panic recovered inside a solver run.
var ErrPanic = errors.New("solver panicked")

// Config holds engine settings.
type Config struct {
	config.SolverConfig

	// SkipTelemetry leaves the global tracer provider untouched, for embedding
	// in an application that already configured OpenTelemetry.
	SkipTelemetry bool

	Logger *slog.Logger
}

// Engine is the runtime core: it loads an instance, runs the configured
// heuristics, and publishes the results.
type Engine struct {
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *metrics.Recorder

	config   Config
	shutdown func(context.Context) error
}

// Outcome is everything one solver run produced for a single input.
type Outcome struct {
	Input    string
	Instance *knapsack.Instance
	Results  []heuristics.Result
	Report   *report.Report
	// ExportedTo is the resolved report location, empty when export is off.
	ExportedTo string
}

// Option defines a functional configuration override.
type Option func(*Engine)

// New initializes the Engine.
func New(ctx context.Context, opts ...Option) (*Engine, error) {
	e := &Engine{
		Logger:  NewLogger(os.Stderr, false, false),
		Tracer:  otel.Tracer("construction-mkp/engine"),
		Metrics: metrics.NewRecorder(),
		config:  Config{SolverConfig: config.DefaultSolverConfig()},
	}

	for _, opt := range opts {
		opt(e)
	}

	if err := e.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if !e.config.SkipTelemetry && !e.config.Telemetry.Disabled {
		shutdown, err := telemetry.Init(ctx, version.AppName, version.Current, e.config.Telemetry.OtelEndpoint)
		if err != nil {
			e.Logger.Warn("Telemetry failed", "error", err)
		} else {
			e.shutdown = shutdown
			e.Tracer = telemetry.Tracer("construction-mkp/engine")
		}
	}

	return e, nil
}

// WithConfig sets raw config.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.config = cfg
		if cfg.Logger != nil {
			e.Logger = cfg.Logger
		} else {
			e.Logger = NewLogger(os.Stderr, cfg.Output.JSONLogs, cfg.Output.Verbose)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.Logger = l
		}
	}
}

// WithConcurrency sets the worker limit for randomized trials.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.config.Workers = n
		}
	}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.config
}

// NewLogger builds the process logger: text on w by default, JSON when asked.
// Only warnings and errors are emitted unless verbose is set.
func NewLogger(w io.Writer, jsonLogs, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: formatDurations}
	if jsonLogs {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// formatDurations renders durations as "1.5ms" instead of raw nanoseconds.
func formatDurations(groups []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindDuration {
		return slog.String(a.Key, a.Value.Duration().String())
	}
	return a
}

// Load reads the instance at uri (local path or s3://bucket/key).
func (e *Engine) Load(ctx context.Context, uri string) (*knapsack.Instance, error) {
	ctx, span := e.Tracer.Start(ctx, "Engine.Load", trace.WithAttributes(attribute.String("input", uri)))
	defer span.End()

	store, key, err := storage.Open(ctx, uri)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	inst, err := knapsack.Load(ctx, store, key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("items", inst.N), attribute.Int("dimensions", inst.M))
	e.Logger.Info("Instance loaded", "input", uri, "items", inst.N, "dimensions", inst.M)
	return inst, nil
}

// Solve runs the configured heuristics in order against inst.
func (e *Engine) Solve(ctx context.Context, inst *knapsack.Instance) (results []heuristics.Result, err error) {
	ctx, span := e.Tracer.Start(ctx, "Engine.Solve")
	defer span.End()
	defer e.recoverPanic(ctx, &err)

	workers := e.config.Workers
	if workers <= 0 {
		workers = swarm.DefaultWorkers()
	}
	seed := e.config.Seed
	if seed == 0 {
		seed = heuristics.ClockSeed()
	}

	runner := heuristics.NewEngine(e.Logger)
	for _, name := range e.config.Heuristics {
		h, err := heuristics.New(name, heuristics.Options{
			Trials:  e.config.Trials,
			Seed:    seed,
			Workers: workers,
		})
		if err != nil {
			return nil, err
		}
		runner.Register(h)
	}

	e.Logger.Info("Starting solver", "heuristics", strings.Join(e.config.Heuristics, ","),
		"trials", e.config.Trials, "workers", workers, "seed", seed)

	results, err = runner.Run(ctx, inst)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return results, err
	}
	return results, nil
}

// Inputs expands the configured input into the instance URIs it names. A
// directory or key prefix yields every instance file under it.
func (e *Engine) Inputs(ctx context.Context) ([]string, error) {
	return storage.ExpandInputs(ctx, e.config.Input)
}

// Run solves every configured input in order and publishes the results. A
// collection input needs a directory export target ("/" suffix) so that
// reports do not overwrite each other. The metrics textfile is written once,
// after the last input.
func (e *Engine) Run(ctx context.Context) ([]*Outcome, error) {
	ctx, span := e.Tracer.Start(ctx, "Engine.Run")
	defer span.End()

	inputs, err := e.Inputs(ctx)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("inputs", len(inputs)))
	if dest := e.config.Output.Export; len(inputs) > 1 && dest != "" && !strings.HasSuffix(dest, "/") {
		return nil, fmt.Errorf("exporting %d reports requires a directory target ending in \"/\", got %q", len(inputs), dest)
	}

	outcomes := make([]*Outcome, 0, len(inputs))
	for _, uri := range inputs {
		out, err := e.RunInput(ctx, uri)
		if out != nil {
			outcomes = append(outcomes, out)
		}
		if err != nil {
			return outcomes, err
		}
	}

	if path := e.config.Output.MetricsTextfile; path != "" {
		if err := e.Metrics.WriteTextfile(path); err != nil {
			return outcomes, err
		}
		e.Logger.Info("Metrics written", "path", path)
	}
	return outcomes, nil
}

// RunInput loads one instance, solves it and exports its report.
func (e *Engine) RunInput(ctx context.Context, uri string) (*Outcome, error) {
	ctx, span := e.Tracer.Start(ctx, "Engine.RunInput", trace.WithAttributes(attribute.String("input", uri)))
	defer span.End()

	inst, err := e.Load(ctx, uri)
	if err != nil {
		return nil, err
	}

	results, err := e.Solve(ctx, inst)
	if err != nil {
		return &Outcome{Input: uri, Instance: inst, Results: results}, err
	}

	name := storage.InstanceName(uri)
	for _, res := range results {
		e.Metrics.Observe(name, res)
	}

	out := &Outcome{
		Input:    uri,
		Instance: inst,
		Results:  results,
		Report:   report.NewReport(inst, results),
	}
	span.SetAttributes(attribute.String("run_id", out.Report.RunID))

	if out.ExportedTo, err = e.Export(ctx, out.Report); err != nil {
		return out, err
	}
	return out, nil
}

// Export writes rep to the configured destination and returns where it went.
// It is a no-op when no destination is configured.
func (e *Engine) Export(ctx context.Context, rep *report.Report) (string, error) {
	target := ExportTarget(e.config.Output.Export, rep.RunID, e.config.Output.Format)
	if target == "" {
		return "", nil
	}

	ctx, span := e.Tracer.Start(ctx, "Engine.Export", trace.WithAttributes(attribute.String("target", target)))
	defer span.End()

	store, key, err := storage.Open(ctx, target)
	if err != nil {
		return "", err
	}
	if err := report.Export(ctx, store, key, rep, e.config.Output.Format); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	e.Logger.Info("Report exported", "target", target, "format", e.config.Output.Format)
	return target, nil
}

// ExportTarget resolves the export destination. A destination ending in "/"
// is a directory and receives mkp-<runID>.<ext>.
func ExportTarget(dest, runID, format string) string {
	if dest == "" || !strings.HasSuffix(dest, "/") {
		return dest
	}
	ext := strings.ToLower(format)
	switch ext {
	case "":
		ext = config.DefaultFormat
	case "yml":
		ext = "yaml"
	}
	return dest + "mkp-" + runID + "." + ext
}

// Shutdown flushes telemetry.
func (e *Engine) Shutdown(ctx context.Context) error {
	if e.shutdown == nil {
		return nil
	}
	return e.shutdown(ctx)
}

// recoverPanic converts a panic into an error and records it on a span.
func (e *Engine) recoverPanic(ctx context.Context, errp *error) {
	if r := recover(); r != nil {
		_, span := e.Tracer.Start(ctx, "CriticalPanic")

		stack := debug.Stack()

		span.RecordError(fmt.Errorf("%v", r), trace.WithStackTrace(true))
		span.SetStatus(codes.Error, "CRITICAL FAILURE")
		span.SetAttributes(
			attribute.String("crash.stack", string(stack)),
			attribute.String("crash.reason", fmt.Sprintf("%v", r)),
		)
		span.End()

		e.Logger.Error("CRITICAL FAILURE", "error", r, "stack", string(stack))
		*errp = fmt.Errorf("%w: %v", ErrPanic, r)
	}
}
