package knapsack

// Instance is a full MKP problem. It is shared read-only between heuristic runs.
type Instance struct {
	N        int
	M        int
	Items    []Item
	Capacity []uint64

	// Q and Optimum are the trailing header fields of the input format.
	// Optimum is the best known profit, 0 when unknown.
	Q       uint64
	Optimum uint64
}

// NewInstance builds an instance from profits, dimension-major weights and capacities.
func NewInstance(profits []uint64, weights [][]uint64, capacity []uint64) (*Instance, error) {
	inst := &Instance{
		N:        len(profits),
		M:        len(capacity),
		Items:    make([]Item, 0, len(profits)),
		Capacity: capacity,
	}
	if len(weights) != inst.M {
		return nil, malformed(0, "%d weight rows for %d dimensions", len(weights), inst.M)
	}
	for d, row := range weights {
		if len(row) != inst.N {
			return nil, malformed(0, "weight row %d has %d values, want %d", d+1, len(row), inst.N)
		}
	}

	for i, p := range profits {
		w := make([]uint64, inst.M)
		for d := range weights {
			w[d] = weights[d][i]
		}
		inst.Items = append(inst.Items, NewItem(i+1, p, w))
	}

	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

// Validate checks the structural invariants of the instance.
func (inst *Instance) Validate() error {
	if inst.N <= 0 || inst.M <= 0 {
		return malformed(0, "item and dimension counts must be positive (n=%d, m=%d)", inst.N, inst.M)
	}
	if len(inst.Items) != inst.N {
		return malformed(0, "%d items, want %d", len(inst.Items), inst.N)
	}
	if len(inst.Capacity) != inst.M {
		return malformed(0, "%d capacities, want %d", len(inst.Capacity), inst.M)
	}
	for i, it := range inst.Items {
		if it.ID != i+1 {
			return malformed(0, "item at position %d has id %d", i+1, it.ID)
		}
		if len(it.Weights) != inst.M {
			return malformed(0, "item %d has %d weights, want %d", it.ID, len(it.Weights), inst.M)
		}
	}
	return nil
}

// WorkingCapacity returns a private copy of the capacity vector.
func (inst *Instance) WorkingCapacity() []uint64 {
	c := make([]uint64, len(inst.Capacity))
	copy(c, inst.Capacity)
	return c
}
