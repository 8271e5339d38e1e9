package knapsack

// Sack is the mutable state of a single construction run. It owns its
// remaining capacity; the instance it was opened on is never written.
type Sack struct {
	inst      *Instance
	remaining []uint64
	picked    []int
	profit    uint64
}

// NewSack opens an empty sack with a private copy of the instance capacity.
func NewSack(inst *Instance) *Sack {
	return &Sack{
		inst:      inst,
		remaining: inst.WorkingCapacity(),
		picked:    make([]int, 0, inst.N),
	}
}

// Add places the item if it fits in every dimension and reports whether it did.
// A rejected item leaves the sack untouched.
func (s *Sack) Add(it Item) bool {
	if !it.Fits(s.remaining) {
		return false
	}
	for d, w := range it.Weights {
		s.remaining[d] -= w
	}
	s.picked = append(s.picked, it.ID)
	s.profit += it.Profit
	return true
}

// Profit returns the profit collected so far.
func (s *Sack) Profit() uint64 {
	return s.profit
}

// Remaining returns the remaining capacity in dimension d.
func (s *Sack) Remaining(d int) uint64 {
	return s.remaining[d]
}

// Stats snapshots the sack into a Statistics value for a single run.
func (s *Sack) Stats() *Statistics {
	util := make([]float64, len(s.inst.Capacity))
	for d, c := range s.inst.Capacity {
		if c == 0 {
			continue
		}
		util[d] = float64(c-s.remaining[d]) / float64(c)
	}

	picked := make([]int, len(s.picked))
	copy(picked, s.picked)

	return &Statistics{
		TotalProfit: s.profit,
		PickedItems: picked,
		Utilization: util,
		Runs:        1,
		BestTrial:   -1,
	}
}
