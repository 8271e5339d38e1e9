// Package knapsack defines the multidimensional knapsack data model and its text loader.
package knapsack

import (
	"cmp"
	"math"
)

// Item is a single selectable object. Items are immutable once loaded.
type Item struct {
	// ID is the 1-based position in the input.
	ID      int
	Profit  uint64
	Weights []uint64

	ratio   float64
	ratioOK bool
}

// NewItem builds an item and caches its weighted profit.
func NewItem(id int, profit uint64, weights []uint64) Item {
	it := Item{ID: id, Profit: profit, Weights: weights}
	it.ratio, it.ratioOK = weightedProfit(profit, weights)
	return it
}

// WeightedProfit returns profit divided by the total weight.
// ok is false when the ratio cannot be ordered (zero total weight).
func (it Item) WeightedProfit() (ratio float64, ok bool) {
	return it.ratio, it.ratioOK
}

func weightedProfit(profit uint64, weights []uint64) (float64, bool) {
	var sum uint64
	for _, w := range weights {
		sum += w
	}
	if sum == 0 {
		return 0, false
	}
	r := float64(profit) / float64(sum)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}

// CompareRatio orders items by weighted profit, highest first. Items without a
// usable ratio (zero total weight) sort after every item that has one. Equal
// keys fall back to ascending ID, so the order is total.
func CompareRatio(a, b Item) int {
	ra, okA := a.WeightedProfit()
	rb, okB := b.WeightedProfit()
	switch {
	case okA && okB:
		if c := cmp.Compare(rb, ra); c != 0 {
			return c
		}
	case okA:
		return -1
	case okB:
		return 1
	}
	return cmp.Compare(a.ID, b.ID)
}

// Fits reports whether the item fits into the remaining capacity in every dimension.
// It stops at the first dimension that does not fit.
func (it Item) Fits(remaining []uint64) bool {
	for d, w := range it.Weights {
		if w > remaining[d] {
			return false
		}
	}
	return true
}
