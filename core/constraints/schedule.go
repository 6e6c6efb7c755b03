package constraints

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/healthflow/roster/core/model"
)

// Assessment aggregates schedule-level evaluation.
type Assessment struct {
	Feasible        bool
	Violations      []Violation
	Penalty         float64 // total soft penalty including fairness and understaffing
	Fairness        float64 // hours dispersion, std/mean in percent
	PreferenceScore float64 // share of worked shifts matching a preferred type, in [0,1]
	Understaffed    int     // total missing headcount over the horizon
}

// EvaluateSchedule checks the full schedule of a problem: per-rotation
// hard constraints, same-nurse separation, coverage, and the schedule-wide
// soft penalties (fairness, calendar-week overtime, understaffing).
func (e *Engine) EvaluateSchedule(p *model.Problem, s model.Schedule) Assessment {
	var a Assessment
	a.Feasible = true

	nurses := make(map[string]model.Nurse, len(p.Nurses))
	for _, n := range p.Nurses {
		nurses[n.ID] = n
	}

	for _, r := range s.Rotations {
		n, ok := nurses[r.NurseID]
		if !ok {
			a.Feasible = false
			a.Violations = append(a.Violations, Violation{
				Constraint: "unknown_nurse",
				Severity:   Hard,
				Detail:     fmt.Sprintf("rotation for unknown nurse %s", r.NurseID),
			})
			continue
		}
		feasible, vs, penalty := e.EvaluateRotation(n, r)
		if !feasible {
			a.Feasible = false
		}
		a.Violations = append(a.Violations, vs...)
		a.Penalty += penalty
	}

	a.Violations = append(a.Violations, e.separationViolations(s)...)
	for _, v := range a.Violations {
		if v.Constraint == "rotation_separation" {
			a.Feasible = false
		}
	}

	a.Violations = append(a.Violations, e.overtimeViolations(nurses, s)...)
	a.Understaffed = e.coverage(p, s, &a)
	if a.Understaffed > 0 {
		a.Feasible = false
	}

	for _, v := range a.Violations {
		if v.Severity == Soft {
			// per-rotation soft penalties were already summed above
			if v.Constraint == "calendar_week_overtime" || v.Constraint == "understaffed" {
				a.Penalty += v.Penalty
			}
		}
	}

	a.Fairness = e.fairness(p, s)
	a.Penalty += a.Fairness * e.weights.Fairness / 100
	a.PreferenceScore = preferenceScore(nurses, s)
	return a
}

// separationViolations flags same-nurse rotations that overlap or touch:
// each rotation claims one mandatory rest day after its last worked day.
func (e *Engine) separationViolations(s model.Schedule) []Violation {
	var vs []Violation
	byNurse := s.ByNurse()
	ids := make([]string, 0, len(byNurse))
	for id := range byNurse {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		rs := byNurse[id]
		for i := 1; i < len(rs); i++ {
			if rs[i].FirstDay() <= rs[i-1].LastDay()+1 {
				vs = append(vs, Violation{
					Constraint: "rotation_separation",
					Severity:   Hard,
					Detail:     fmt.Sprintf("nurse %s rotations at days %d and %d lack a rest day", id, rs[i-1].LastDay(), rs[i].FirstDay()),
				})
			}
		}
	}
	return vs
}

// overtimeViolations penalizes calendar weeks whose combined hours exceed
// the nurse cap. Single rotations are hard-capped already; this soft check
// covers hours accumulated across several rotations in one week.
func (e *Engine) overtimeViolations(nurses map[string]model.Nurse, s model.Schedule) []Violation {
	type weekKey struct {
		nurse string
		week  int
	}
	hours := make(map[weekKey]float64)
	for _, r := range s.Rotations {
		for _, d := range r.Days {
			hours[weekKey{r.NurseID, d.Day / 7}] += d.Type.Hours()
		}
	}
	keys := make([]weekKey, 0, len(hours))
	for k := range hours {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].nurse != keys[j].nurse {
			return keys[i].nurse < keys[j].nurse
		}
		return keys[i].week < keys[j].week
	})
	var vs []Violation
	for _, k := range keys {
		n, ok := nurses[k.nurse]
		if !ok {
			continue
		}
		if over := hours[k] - n.MaxWeeklyHours; over > 0 {
			vs = append(vs, Violation{
				Constraint: "calendar_week_overtime",
				Severity:   Soft,
				Detail:     fmt.Sprintf("nurse %s week %d works %.1fh over cap", k.nurse, k.week, over),
				Penalty:    over * e.weights.Overtime,
			})
		}
	}
	return vs
}

func (e *Engine) coverage(p *model.Problem, s model.Schedule, a *Assessment) int {
	short := 0
	for _, sh := range p.Shifts {
		missing := sh.Demand - s.Coverage[sh.Key]
		if missing > 0 {
			short += missing
			a.Violations = append(a.Violations, Violation{
				Constraint: "understaffed",
				Severity:   Soft,
				Detail:     fmt.Sprintf("shift %s short %d nurses", sh.ID(), missing),
				Penalty:    float64(missing) * sh.Complexity * e.weights.Understaffing,
			})
		}
	}
	return short
}

// fairness returns the dispersion of total hours across all nurses of the
// problem (including idle ones) as std/mean in percent.
func (e *Engine) fairness(p *model.Problem, s model.Schedule) float64 {
	byNurse := s.HoursByNurse()
	hours := make([]float64, 0, len(p.Nurses))
	for _, n := range p.Nurses {
		hours = append(hours, byNurse[n.ID])
	}
	if len(hours) < 2 {
		return 0
	}
	mean := stat.Mean(hours, nil)
	if mean == 0 {
		return 0
	}
	return stat.StdDev(hours, nil) / mean * 100
}

func preferenceScore(nurses map[string]model.Nurse, s model.Schedule) float64 {
	total, matched := 0, 0
	for _, r := range s.Rotations {
		n, ok := nurses[r.NurseID]
		if !ok || len(n.Preferences.PreferredShifts) == 0 {
			continue
		}
		for _, d := range r.Days {
			total++
			if n.Preferences.Prefers(d.Type) {
				matched++
			}
		}
	}
	if total == 0 {
		return 1
	}
	return float64(matched) / float64(total)
}
