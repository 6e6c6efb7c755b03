// Package constraints implements the pure constraint evaluator. Hard
// constraints decide feasibility; soft constraints only contribute
// additive penalty. All evaluation is side-effect free.
package constraints

import (
	"fmt"

	"github.com/healthflow/roster/core/fatigue"
	"github.com/healthflow/roster/core/model"
)

// Engine evaluates rotations and schedules against the problem's hard
// rules and soft penalty weights.
type Engine struct {
	weights Weights
	flags   []model.DayFlags
	scorer  fatigue.Scorer
}

// NewEngine builds an engine for the given problem. scorer may be nil.
func NewEngine(p *model.Problem, w Weights, scorer fatigue.Scorer) *Engine {
	w.SetDefaults()
	return &Engine{weights: w, flags: append([]model.DayFlags(nil), p.Flags...), scorer: scorer}
}

// Weights returns the active weight set.
func (e *Engine) Weights() Weights { return e.weights }

// EvaluateRotation checks a rotation for the given nurse. It returns the
// feasibility flag, an ordered violation list and the total soft penalty.
// Hard violations make the rotation ineligible for the column pool.
func (e *Engine) EvaluateRotation(n model.Nurse, r model.Rotation) (bool, []Violation, float64) {
	var vs []Violation

	vs = append(vs, e.hardViolations(n, r)...)
	feasible := len(vs) == 0
	soft := e.softViolations(n, r)
	vs = append(vs, soft...)

	var penalty float64
	for _, v := range soft {
		penalty += v.Penalty
	}
	penalty += fatigue.Score(e.scorer, n, r)
	return feasible, vs, penalty
}

// RotationCost returns the soft penalty of a feasible rotation, including
// the optional fatigue adjustment. The base cost of working is zero: the
// objective only prices gaps, imbalance and unmet preferences.
func (e *Engine) RotationCost(n model.Nurse, r model.Rotation) float64 {
	_, _, penalty := e.EvaluateRotation(n, r)
	return penalty
}

// RotationFeasible reports whether the rotation satisfies every hard
// constraint of the nurse.
func (e *Engine) RotationFeasible(n model.Nurse, r model.Rotation) bool {
	return len(e.hardViolations(n, r)) == 0
}

func (e *Engine) hardViolations(n model.Nurse, r model.Rotation) []Violation {
	var vs []Violation
	if len(r.Days) == 0 {
		return append(vs, Violation{Constraint: "non_empty", Severity: Hard, Detail: "rotation has no worked days"})
	}
	for i := 1; i < len(r.Days); i++ {
		if r.Days[i].Day != r.Days[i-1].Day+1 {
			vs = append(vs, Violation{
				Constraint: "consecutive_days",
				Severity:   Hard,
				Detail:     fmt.Sprintf("gap between day %d and %d", r.Days[i-1].Day, r.Days[i].Day),
			})
		}
	}
	if len(r.Days) > n.MaxConsecutiveDays {
		vs = append(vs, Violation{
			Constraint: "max_consecutive_days",
			Severity:   Hard,
			Detail:     fmt.Sprintf("%d worked days exceed limit %d", len(r.Days), n.MaxConsecutiveDays),
		})
	}
	if r.Hours > n.MaxWeeklyHours {
		vs = append(vs, Violation{
			Constraint: "max_weekly_hours",
			Severity:   Hard,
			Detail:     fmt.Sprintf("%.1fh exceed weekly cap %.1fh", r.Hours, n.MaxWeeklyHours),
		})
	}
	for i := 1; i < len(r.Days); i++ {
		rest := model.RestHoursBetween(r.Days[i-1].Type, r.Days[i].Type)
		if rest < n.MinRestHours {
			vs = append(vs, Violation{
				Constraint: "min_rest_hours",
				Severity:   Hard,
				Detail:     fmt.Sprintf("%.0fh rest after %s before %s, minimum %.0fh", rest, r.Days[i-1].Type, r.Days[i].Type, n.MinRestHours),
			})
		}
	}
	for _, a := range r.Days {
		if !n.Available(a.Day) {
			vs = append(vs, Violation{
				Constraint: "availability",
				Severity:   Hard,
				Detail:     fmt.Sprintf("nurse unavailable on day %d", a.Day),
			})
		}
	}
	return vs
}

func (e *Engine) softViolations(n model.Nurse, r model.Rotation) []Violation {
	var vs []Violation
	for _, a := range r.Days {
		if n.Preferences.Avoids(a.Type) {
			vs = append(vs, Violation{
				Constraint: "avoided_shift",
				Severity:   Soft,
				Detail:     fmt.Sprintf("day %d works avoided %s shift", a.Day, a.Type),
				Penalty:    e.weights.AvoidedShift,
			})
		} else if len(n.Preferences.PreferredShifts) > 0 && !n.Preferences.Prefers(a.Type) {
			vs = append(vs, Violation{
				Constraint: "unpreferred_shift",
				Severity:   Soft,
				Detail:     fmt.Sprintf("day %d works unpreferred %s shift", a.Day, a.Type),
				Penalty:    e.weights.UnpreferredShift,
			})
		}
		flags := e.flagsFor(a.Day)
		if flags.RestDay {
			vs = append(vs, Violation{
				Constraint: "rest_day_worked",
				Severity:   Soft,
				Detail:     fmt.Sprintf("day %d is a rest day", a.Day),
				Penalty:    e.weights.RestDayWorked,
			})
		}
		if flags.ReducedHours && a.Type.Hours() > 6 {
			vs = append(vs, Violation{
				Constraint: "reduced_day_shift",
				Severity:   Soft,
				Detail:     fmt.Sprintf("day %d long shift on reduced-hours day", a.Day),
				Penalty:    e.weights.ReducedDayShift,
			})
		}
	}
	if limit := n.Preferences.MaxNightsPerWeek; limit > 0 {
		if excess := r.Nights() - limit; excess > 0 {
			vs = append(vs, Violation{
				Constraint: "excess_nights",
				Severity:   Soft,
				Detail:     fmt.Sprintf("%d night shifts over limit %d", excess+limit, limit),
				Penalty:    float64(excess) * e.weights.ExcessNight,
			})
		}
	}
	return vs
}

// DayPenalty returns the soft penalty incurred by working one (day, shift)
// slot, excluding rotation-level terms such as excess nights. The pricing
// oracle uses it as the decomposable part of its edge costs; it matches
// the per-day terms of EvaluateRotation exactly.
func (e *Engine) DayPenalty(n model.Nurse, day int, t model.ShiftType) float64 {
	var p float64
	if n.Preferences.Avoids(t) {
		p += e.weights.AvoidedShift
	} else if len(n.Preferences.PreferredShifts) > 0 && !n.Preferences.Prefers(t) {
		p += e.weights.UnpreferredShift
	}
	flags := e.flagsFor(day)
	if flags.RestDay {
		p += e.weights.RestDayWorked
	}
	if flags.ReducedHours && t.Hours() > 6 {
		p += e.weights.ReducedDayShift
	}
	return p
}

func (e *Engine) flagsFor(day int) model.DayFlags {
	if day < 0 || day >= len(e.flags) {
		return model.DayFlags{}
	}
	return e.flags[day]
}
