package heuristics

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/barabadzhi/construction-mkp/pkg/engine/swarm"
	"github.com/barabadzhi/construction-mkp/pkg/knapsack"
)

type randomConfig struct {
	seed    uint64
	workers int
}

// RandomOption tunes RunRandom.
type RandomOption func(*randomConfig)

// WithSeed fixes the base seed. Trial i draws from PCG(seed, i).
func WithSeed(seed uint64) RandomOption {
	return func(c *randomConfig) {
		c.seed = seed
	}
}

// WithWorkers bounds the number of trials evaluated at once.
func WithWorkers(n int) RandomOption {
	return func(c *randomConfig) {
		c.workers = n
	}
}

// RunRandom builds trials random orderings, sweeps each one on its own
// capacity copy in parallel and reports the most profitable trial.
// Duration covers the whole batch and Runs equals trials.
//
// A non-positive trial count yields an empty result. The only error is the
// context's, checked before each trial starts.
func RunRandom(ctx context.Context, inst *knapsack.Instance, trials int, opts ...RandomOption) (*knapsack.Statistics, error) {
	cfg := randomConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.seed == 0 {
		cfg.seed = ClockSeed()
	}

	start := time.Now()
	if trials <= 0 {
		stats := knapsack.EmptyStatistics(inst.M)
		stats.Duration = time.Since(start)
		return stats, nil
	}

	orders := make([][]int, trials)
	for i := range orders {
		rng := rand.New(rand.NewPCG(cfg.seed, uint64(i)))
		orders[i] = rng.Perm(inst.N)
	}

	results := make([]*knapsack.Statistics, trials)
	pool := swarm.NewPool(ctx, cfg.workers)
	for i := range orders {
		pool.Submit(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = sweep(inst, orders[i])
			return nil
		})
	}
	if err := pool.Wait(); err != nil {
		return nil, err
	}

	best := 0
	profits := make([]uint64, trials)
	for i, r := range results {
		profits[i] = r.TotalProfit
		if r.TotalProfit > results[best].TotalProfit {
			best = i
		}
	}
	elapsed := time.Since(start)

	stats := results[best]
	stats.Duration = elapsed
	stats.Runs = trials
	stats.TrialProfits = profits
	stats.BestTrial = best
	stats.Seed = cfg.seed
	return stats, nil
}
