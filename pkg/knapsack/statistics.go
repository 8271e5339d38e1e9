package knapsack

import (
	"slices"
	"time"
)

// Statistics is the outcome of one heuristic invocation.
type Statistics struct {
	TotalProfit uint64
	// PickedItems holds item IDs in selection order.
	PickedItems []int
	// Utilization is the consumed fraction of each capacity dimension.
	Utilization []float64
	Duration    time.Duration
	Runs        int

	// TrialProfits, BestTrial and Seed are only set by multi-start runs.
	TrialProfits []uint64
	BestTrial    int
	Seed         uint64
}

// EmptyStatistics returns the result of a run that evaluated nothing.
func EmptyStatistics(m int) *Statistics {
	return &Statistics{
		PickedItems: []int{},
		Utilization: make([]float64, m),
		BestTrial:   -1,
	}
}

// SortedItems returns the picked IDs in ascending order.
func (s *Statistics) SortedItems() []int {
	ids := slices.Clone(s.PickedItems)
	slices.Sort(ids)
	return ids
}

// Gap returns the relative distance to a known optimum.
// ok is false when the optimum is unknown.
func (s *Statistics) Gap(optimum uint64) (gap float64, ok bool) {
	if optimum == 0 {
		return 0, false
	}
	return (float64(optimum) - float64(s.TotalProfit)) / float64(optimum), true
}
