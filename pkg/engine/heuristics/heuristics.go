// Package heuristics implements the MKP construction heuristics and the runner
// that executes them against a shared instance.
package heuristics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/barabadzhi/construction-mkp/pkg/knapsack"
)

// Heuristic builds one solution report for an instance.
type Heuristic interface {
	Name() string
	Run(ctx context.Context, inst *knapsack.Instance) (*knapsack.Statistics, error)
}

// Greedy ranks items by weighted profit and takes every item that still fits.
type Greedy struct{}

func (Greedy) Name() string { return "Greedy" }

func (Greedy) Run(ctx context.Context, inst *knapsack.Instance) (*knapsack.Statistics, error) {
	return RunGreedy(inst), nil
}

// Random evaluates Trials shuffled orderings in parallel and keeps the best.
type Random struct {
	Trials int
	// Seed fixes the trial streams. Zero derives a seed from the clock.
	Seed    uint64
	Workers int
}

func (r *Random) Name() string { return "Random" }

func (r *Random) Run(ctx context.Context, inst *knapsack.Instance) (*knapsack.Statistics, error) {
	return RunRandom(ctx, inst, r.Trials, WithSeed(r.Seed), WithWorkers(r.Workers))
}

// Options configures heuristics built by name.
type Options struct {
	Trials  int
	Seed    uint64
	Workers int
}

// New returns the heuristic registered under name ("greedy" or "random").
func New(name string, opts Options) (Heuristic, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "greedy":
		return Greedy{}, nil
	case "random":
		return &Random{Trials: opts.Trials, Seed: opts.Seed, Workers: opts.Workers}, nil
	default:
		return nil, fmt.Errorf("unknown heuristic %q", name)
	}
}

// ClockSeed derives a seed from the wall clock for runs configured with seed 0.
// It never returns 0, so the result is always usable as an explicit seed.
func ClockSeed() uint64 {
	if s := uint64(time.Now().UnixNano()); s != 0 {
		return s
	}
	return 1
}

// sweep runs the feasibility pass over items in the given order.
func sweep(inst *knapsack.Instance, order []int) *knapsack.Statistics {
	sack := knapsack.NewSack(inst)
	for _, idx := range order {
		sack.Add(inst.Items[idx])
	}
	return sack.Stats()
}
