package model

import "sort"

// Schedule is a set of selected rotations plus its derived coverage. It is
// recomputed whenever the incumbent changes, never patched in place.
type Schedule struct {
	Rotations []Rotation
	Coverage  map[ShiftKey]int
}

// NewSchedule sorts the rotations deterministically and derives coverage.
func NewSchedule(rotations []Rotation) Schedule {
	rs := append([]Rotation(nil), rotations...)
	sort.Slice(rs, func(i, j int) bool { return rs[i].Less(rs[j]) })
	cov := make(map[ShiftKey]int)
	for _, r := range rs {
		for _, a := range r.Days {
			cov[ShiftKey{Day: a.Day, Type: a.Type}]++
		}
	}
	return Schedule{Rotations: rs, Coverage: cov}
}

// ByNurse groups the rotations per nurse id, ordered by start day.
func (s Schedule) ByNurse() map[string][]Rotation {
	out := make(map[string][]Rotation)
	for _, r := range s.Rotations {
		out[r.NurseID] = append(out[r.NurseID], r)
	}
	return out
}

// HoursByNurse sums worked hours per nurse over the whole horizon. Nurses
// without rotations are absent from the map.
func (s Schedule) HoursByNurse() map[string]float64 {
	out := make(map[string]float64)
	for _, r := range s.Rotations {
		out[r.NurseID] += r.Hours
	}
	return out
}

// TotalCost sums the cost of all selected rotations.
func (s Schedule) TotalCost() float64 {
	var sum float64
	for _, r := range s.Rotations {
		sum += r.Cost
	}
	return sum
}
