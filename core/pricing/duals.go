package pricing

import "github.com/healthflow/roster/core/model"

// Duals is an immutable snapshot of the master dual prices taken after an
// LP solve. It is passed by value into every pricing invocation; the
// oracle never reads shared mutable solver state.
type Duals struct {
	// Cover prices the shift coverage rows.
	Cover map[model.ShiftKey]float64
	// Occupy prices the per nurse-day assignment rows. A rotation picks up
	// the price of each worked day plus the mandatory rest day after it.
	Occupy map[string][]float64
	// Work prices the branching rows that force a nurse onto a day. Only
	// worked days collect it.
	Work map[string][]float64
}

func (d Duals) cover(key model.ShiftKey) float64 {
	return d.Cover[key]
}

func (d Duals) occupy(nurse string, day int) float64 {
	if v := d.Occupy[nurse]; day >= 0 && day < len(v) {
		return v[day]
	}
	return 0
}

func (d Duals) work(nurse string, day int) float64 {
	if v := d.Work[nurse]; day >= 0 && day < len(v) {
		return v[day]
	}
	return 0
}
