package branch

import (
	"math"

	"github.com/healthflow/roster/core/model"
)

// CandidateKind says which entity a branching candidate refers to.
type CandidateKind int

const (
	// KindRotation branches on a single pool column: forbidden on the
	// left child, forced to one on the right.
	KindRotation CandidateKind = iota
	// KindNurseDay branches on whether a nurse works a given day.
	KindNurseDay
)

// Candidate is one fractional entity a policy may branch on. Rotation
// candidates carry the column and its LP value; nurse-day candidates
// carry the fractional total workload of that nurse on that day.
type Candidate struct {
	Kind     CandidateKind
	Rotation model.Rotation // set for KindRotation
	Nurse    string
	Day      int
	Value    float64
}

// Fractionality is the distance of the candidate value to the nearest
// integer, at most 0.5.
func (c Candidate) Fractionality() float64 {
	f := c.Value - math.Floor(c.Value)
	return math.Min(f, 1-f)
}

// Policy selects the branching candidate at a fractional node. Select
// returns an index into cands; the driver falls back to MostFractional
// when the index is out of range or the policy panics, so a faulty policy
// degrades the search but never aborts it.
type Policy interface {
	Name() string
	Select(cands []Candidate) int
}

// MostFractional picks the candidate closest to value one half, ties
// resolved by candidate order. It is the default policy.
type MostFractional struct{}

func (MostFractional) Name() string { return "most_fractional" }

func (MostFractional) Select(cands []Candidate) int {
	best, bestFrac := -1, -1.0
	for i, c := range cands {
		if f := c.Fractionality(); f > bestFrac {
			best, bestFrac = i, f
		}
	}
	return best
}

// PreferNurseDay picks the most fractional nurse-day candidate and only
// falls back to rotation candidates when no nurse-day is fractional.
// Nurse-day branches split the search space more evenly than banning a
// single column.
type PreferNurseDay struct{}

func (PreferNurseDay) Name() string { return "prefer_nurse_day" }

func (PreferNurseDay) Select(cands []Candidate) int {
	best, bestFrac := -1, -1.0
	for i, c := range cands {
		if c.Kind != KindNurseDay {
			continue
		}
		if f := c.Fractionality(); f > bestFrac {
			best, bestFrac = i, f
		}
	}
	if best >= 0 {
		return best
	}
	return MostFractional{}.Select(cands)
}
