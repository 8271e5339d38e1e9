package heuristics

import (
	"slices"
	"time"

	"github.com/barabadzhi/construction-mkp/pkg/knapsack"
)

// RunGreedy takes items in descending weighted-profit order, admitting each
// one that fits in every dimension. Equal or non-comparable ratios keep
// ascending item ID order. Rejected items are never retried.
func RunGreedy(inst *knapsack.Instance) *knapsack.Statistics {
	start := time.Now()

	ranked := slices.Clone(inst.Items)
	slices.SortStableFunc(ranked, knapsack.CompareRatio)

	sack := knapsack.NewSack(inst)
	for _, it := range ranked {
		sack.Add(it)
	}
	elapsed := time.Since(start)

	stats := sack.Stats()
	stats.Duration = elapsed
	stats.Runs = 1
	return stats
}
