// Package rotation implements the rotation builder: exhaustive enumeration
// of feasible consecutive-day work sequences used to seed the column pool.
// Incremental generation during the solve is the pricing oracle's job.
package rotation

import (
	"github.com/healthflow/roster/core/constraints"
	"github.com/healthflow/roster/core/model"
)

// Builder enumerates feasible rotations for single nurses. The transition
// model (start, continue, end) applies the nurse's hard constraints at
// every step, so no emitted rotation ever needs downstream repair.
type Builder struct {
	problem *model.Problem
	engine  *constraints.Engine
	maxLen  int
}

// NewBuilder returns a builder. maxLen caps the enumerated rotation
// length to keep seeding cheap on long horizons; zero means the nurse's
// own consecutive-day limit.
func NewBuilder(p *model.Problem, e *constraints.Engine, maxLen int) *Builder {
	return &Builder{problem: p, engine: e, maxLen: maxLen}
}

// Generate enumerates every feasible rotation of the nurse up to the
// configured length, in deterministic day-then-shift order.
func (b *Builder) Generate(n model.Nurse) []model.Rotation {
	slots := make([][]model.Shift, b.problem.Horizon)
	for _, s := range b.problem.Shifts {
		slots[s.Key.Day] = append(slots[s.Key.Day], s)
	}

	limit := n.MaxConsecutiveDays
	if b.maxLen > 0 && b.maxLen < limit {
		limit = b.maxLen
	}

	var out []model.Rotation
	var days []model.Assignment

	var extend func(day int, hours float64)
	extend = func(day int, hours float64) {
		if day >= b.problem.Horizon || !n.Available(day) {
			return
		}
		for _, s := range slots[day] {
			if !n.CanWork(s) {
				continue
			}
			t := s.Key.Type
			if hours+t.Hours() > n.MaxWeeklyHours {
				continue
			}
			if len(days) > 0 {
				prev := days[len(days)-1].Type
				if model.RestHoursBetween(prev, t) < n.MinRestHours {
					continue
				}
			}
			days = append(days, model.Assignment{Day: day, Type: t})
			out = append(out, b.build(n, days))
			if len(days) < limit {
				extend(day+1, hours+t.Hours())
			}
			days = days[:len(days)-1]
		}
	}

	for start := 0; start < b.problem.Horizon; start++ {
		extend(start, 0)
	}
	return out
}

func (b *Builder) build(n model.Nurse, days []model.Assignment) model.Rotation {
	seq := append([]model.Assignment(nil), days...)
	r := model.NewRotation(n.ID, seq, 0)
	r.Cost = b.engine.RotationCost(n, r)
	return r
}
