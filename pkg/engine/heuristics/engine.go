package heuristics

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/barabadzhi/construction-mkp/pkg/knapsack"
)

// Result pairs a heuristic name with its statistics.
type Result struct {
	Heuristic string
	Stats     *knapsack.Statistics
}

// Engine runs registered heuristics one after another against one instance.
type Engine struct {
	heuristics []Heuristic
	logger     *slog.Logger

	duration metric.Float64Histogram
	trials   metric.Int64Counter
}

// NewEngine initializes engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{logger: logger}

	meter := otel.Meter("construction-mkp/heuristics")
	if h, err := meter.Float64Histogram("mkp.heuristic.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Wall-clock time of one heuristic invocation.")); err == nil {
		e.duration = h
	}
	if c, err := meter.Int64Counter("mkp.heuristic.runs",
		metric.WithDescription("Construction trials evaluated.")); err == nil {
		e.trials = c
	}
	return e
}

// Register heuristic.
func (e *Engine) Register(h Heuristic) {
	e.heuristics = append(e.heuristics, h)
}

// Heuristics returns the registered heuristics in run order.
func (e *Engine) Heuristics() []Heuristic {
	return e.heuristics
}

// Run executes the heuristics sequentially so that each duration covers only
// its own work. It stops at the first error.
func (e *Engine) Run(ctx context.Context, inst *knapsack.Instance) ([]Result, error) {
	tracer := otel.Tracer("construction-mkp/heuristics")
	results := make([]Result, 0, len(e.heuristics))

	for _, h := range e.heuristics {
		hctx, span := tracer.Start(ctx, "Heuristic."+h.Name())

		stats, err := h.Run(hctx, inst)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.End()
			return results, fmt.Errorf("%s failed: %w", h.Name(), err)
		}

		attrs := []attribute.KeyValue{attribute.String("heuristic", h.Name())}
		span.SetAttributes(
			attribute.String("heuristic", h.Name()),
			attribute.Int64("total_profit", int64(stats.TotalProfit)),
			attribute.Int("picked_items", len(stats.PickedItems)),
			attribute.Int("runs", stats.Runs),
			attribute.Int64("duration_us", stats.Duration.Microseconds()),
		)
		span.End()

		if e.duration != nil {
			e.duration.Record(hctx, stats.Duration.Seconds(), metric.WithAttributes(attrs...))
		}
		if e.trials != nil {
			e.trials.Add(hctx, int64(stats.Runs), metric.WithAttributes(attrs...))
		}

		e.logger.Info("heuristic finished",
			"heuristic", h.Name(),
			"profit", stats.TotalProfit,
			"items", len(stats.PickedItems),
			"runs", stats.Runs,
			"duration", stats.Duration,
		)

		results = append(results, Result{Heuristic: h.Name(), Stats: stats})
	}

	return results, nil
}
