// Package pricing implements the column generation subproblem: a
// label-setting dynamic program that finds, per nurse, the feasible
// rotation with the most negative reduced cost under the current duals.
// Forbidden transitions encode the hard constraints, so every emitted
// rotation is feasible by construction.
package pricing

import (
	"sort"

	"github.com/healthflow/roster/core/constraints"
	"github.com/healthflow/roster/core/model"
)

// Candidate pairs a feasible rotation with its reduced cost.
type Candidate struct {
	Rotation    model.Rotation
	ReducedCost float64
}

// Oracle prices rotations for nurses against a fixed problem.
type Oracle struct {
	problem *model.Problem
	engine  *constraints.Engine
	slots   map[int][]model.Shift // shifts per day, ordered by type
}

// NewOracle builds an oracle for the problem.
func NewOracle(p *model.Problem, e *constraints.Engine) *Oracle {
	slots := make(map[int][]model.Shift, p.Horizon)
	for _, s := range p.Shifts {
		slots[s.Key.Day] = append(slots[s.Key.Day], s)
	}
	for day := range slots {
		ss := slots[day]
		sort.Slice(ss, func(i, j int) bool { return ss[i].Key.Type < ss[j].Key.Type })
		slots[day] = ss
	}
	return &Oracle{problem: p, engine: e, slots: slots}
}

// label is one DP state instance: the best known path ending at (day,
// last, length, hours, nights). parent chains reconstruct the sequence.
type label struct {
	day    int
	last   model.ShiftType
	length int
	hours  int
	nights int
	cost   float64
	parent int
}

type stateKey struct {
	day    int
	last   model.ShiftType
	length int
	hours  int
	nights int
}

// Price returns up to topK improving candidates for the nurse, ordered by
// reduced cost, ties broken by lexicographically smallest day sequence.
// Candidates with reduced cost >= -eps are discarded; an empty slice means
// the nurse contributes nothing this round.
func (o *Oracle) Price(n model.Nurse, duals Duals, banned map[uint64]bool, forbiddenDays map[int]bool, topK int, eps float64) []Candidate {
	if topK <= 0 {
		topK = 1
	}

	var labels []label
	best := make(map[stateKey]int)

	expandable := func(l label, t model.ShiftType) bool {
		if model.RestHoursBetween(l.last, t) < n.MinRestHours {
			return false
		}
		if l.length+1 > n.MaxConsecutiveDays {
			return false
		}
		return float64(l.hours)+t.Hours() <= n.MaxWeeklyHours
	}

	push := func(l label) {
		key := stateKey{l.day, l.last, l.length, l.hours, l.nights}
		if i, ok := best[key]; ok {
			// Strict improvement only: among equal costs the first label
			// wins, which is the lexicographically smallest path because
			// labels are generated in day-then-type order.
			if labels[i].cost <= l.cost {
				return
			}
			labels[i] = l
			return
		}
		best[key] = len(labels)
		labels = append(labels, l)
	}

	// Seed one label per admissible (day, type) rotation start.
	for day := 0; day < o.problem.Horizon; day++ {
		if !n.Available(day) || forbiddenDays[day] {
			continue
		}
		for _, s := range o.slots[day] {
			if !n.CanWork(s) || s.Key.Type.Hours() > n.MaxWeeklyHours {
				continue
			}
			push(label{
				day:    day,
				last:   s.Key.Type,
				length: 1,
				hours:  int(s.Key.Type.Hours()),
				nights: nightCount(s.Key.Type),
				cost:   o.edgeCost(n, duals, day, s.Key.Type),
				parent: -1,
			})
		}
	}

	// Expand labels day by day. labels grows while iterating; new labels
	// always live on a later day, so a single pass suffices.
	for i := 0; i < len(labels); i++ {
		l := labels[i]
		next := l.day + 1
		if next >= o.problem.Horizon || !n.Available(next) || forbiddenDays[next] {
			continue
		}
		for _, s := range o.slots[next] {
			if !n.CanWork(s) || !expandable(l, s.Key.Type) {
				continue
			}
			push(label{
				day:    next,
				last:   s.Key.Type,
				length: l.length + 1,
				hours:  l.hours + int(s.Key.Type.Hours()),
				nights: l.nights + nightCount(s.Key.Type),
				cost:   l.cost + o.edgeCost(n, duals, next, s.Key.Type),
				parent: i,
			})
		}
	}

	// Every label is a legal rotation end; evaluate all completions.
	var cands []Candidate
	for i := range labels {
		r := o.reconstruct(n, labels, i)
		if banned[r.Fingerprint] {
			continue
		}
		rc := r.Cost - o.dualSum(n, duals, r)
		if rc >= -eps {
			continue
		}
		cands = append(cands, Candidate{Rotation: r, ReducedCost: rc})
	}

	sort.Slice(cands, func(i, j int) bool {
		if cands[i].ReducedCost != cands[j].ReducedCost {
			return cands[i].ReducedCost < cands[j].ReducedCost
		}
		return cands[i].Rotation.Less(cands[j].Rotation)
	})
	if len(cands) > topK {
		cands = cands[:topK]
	}
	return cands
}

// edgeCost is the DP edge weight for working (day, t): the decomposable
// soft penalty minus the coverage, assignment and branching duals.
func (o *Oracle) edgeCost(n model.Nurse, duals Duals, day int, t model.ShiftType) float64 {
	return o.engine.DayPenalty(n, day, t) -
		duals.cover(model.ShiftKey{Day: day, Type: t}) -
		duals.occupy(n.ID, day) -
		duals.work(n.ID, day)
}

// dualSum is the total dual price collected by a rotation, including the
// assignment dual of the mandatory rest day after the block.
func (o *Oracle) dualSum(n model.Nurse, duals Duals, r model.Rotation) float64 {
	var sum float64
	for _, a := range r.Days {
		sum += duals.cover(model.ShiftKey{Day: a.Day, Type: a.Type})
		sum += duals.occupy(n.ID, a.Day)
		sum += duals.work(n.ID, a.Day)
	}
	if rest := r.LastDay() + 1; rest < o.problem.Horizon {
		sum += duals.occupy(n.ID, rest)
	}
	return sum
}

// reconstruct walks the parent chain and rebuilds the rotation with its
// authoritative cost from the constraint engine.
func (o *Oracle) reconstruct(n model.Nurse, labels []label, i int) model.Rotation {
	var rev []model.Assignment
	for j := i; j >= 0; j = labels[j].parent {
		rev = append(rev, model.Assignment{Day: labels[j].day, Type: labels[j].last})
	}
	days := make([]model.Assignment, len(rev))
	for k := range rev {
		days[k] = rev[len(rev)-1-k]
	}
	r := model.NewRotation(n.ID, days, 0)
	r.Cost = o.engine.RotationCost(n, r)
	return r
}

func nightCount(t model.ShiftType) int {
	if t == model.ShiftNight {
		return 1
	}
	return 0
}
