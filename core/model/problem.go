package model

import (
	"fmt"
	"time"
)

// DayFlags are the per-date calendar attributes the solver consumes. They
// are produced by an external calendar collaborator; the solver never
// computes calendar semantics itself.
type DayFlags struct {
	// RestDay marks culturally protected days off (e.g. Fridays). Working
	// one is allowed but penalized.
	RestDay bool
	// ReducedHours marks days on which long shifts are discouraged
	// (e.g. during Ramadan).
	ReducedHours bool
}

// Problem is the immutable input of one optimization run.
type Problem struct {
	Nurses     []Nurse
	Horizon    int // planning horizon in days
	Start      time.Time
	ShiftTypes []ShiftType // worked slots per day, ShiftRest excluded
	Shifts     []Shift     // one per (day, type), generated from demand
	Flags      []DayFlags  // one per horizon day
}

// GenerateShifts builds the shift calendar for the horizon. The required
// function resolves headcount per (date, shift type); it is typically the
// Required method of a demand source.
func (p *Problem) GenerateShifts(required func(date time.Time, t ShiftType) int) {
	p.Shifts = p.Shifts[:0]
	for day := 0; day < p.Horizon; day++ {
		date := p.Start.AddDate(0, 0, day)
		for _, t := range p.ShiftTypes {
			if t == ShiftRest {
				continue
			}
			complexity := 1.0
			if day < len(p.Flags) && p.Flags[day].ReducedHours {
				complexity = 1.2
			}
			p.Shifts = append(p.Shifts, Shift{
				Key:        ShiftKey{Day: day, Type: t},
				Date:       date,
				Demand:     required(date, t),
				Complexity: complexity,
			})
		}
	}
}

// FlagsFor returns the calendar flags of a horizon day, zero outside range.
func (p *Problem) FlagsFor(day int) DayFlags {
	if day < 0 || day >= len(p.Flags) {
		return DayFlags{}
	}
	return p.Flags[day]
}

// ShiftAt returns the shift for the given slot, if any.
func (p *Problem) ShiftAt(key ShiftKey) (Shift, bool) {
	for _, s := range p.Shifts {
		if s.Key == key {
			return s, true
		}
	}
	return Shift{}, false
}

// Validate checks that the problem is well-formed.
func (p *Problem) Validate() error {
	if p.Horizon <= 0 {
		return fmt.Errorf("horizon must be positive")
	}
	if len(p.Nurses) == 0 {
		return fmt.Errorf("at least one nurse is required")
	}
	seen := make(map[string]bool, len(p.Nurses))
	for _, n := range p.Nurses {
		if err := n.Validate(); err != nil {
			return err
		}
		if seen[n.ID] {
			return fmt.Errorf("duplicate nurse id %s", n.ID)
		}
		seen[n.ID] = true
	}
	for _, s := range p.Shifts {
		if s.Demand < 0 {
			return fmt.Errorf("shift %s: negative demand", s.ID())
		}
		if s.Key.Day < 0 || s.Key.Day >= p.Horizon {
			return fmt.Errorf("shift %s: day outside horizon", s.ID())
		}
	}
	return nil
}

// SampleProblem builds a small demonstration instance: five intermediate
// nurses covering a single morning shift per day over one week.
func SampleProblem(start time.Time) *Problem {
	p := &Problem{
		Horizon:    7,
		Start:      start,
		ShiftTypes: []ShiftType{ShiftMorning},
		Flags:      make([]DayFlags, 7),
	}
	for i := 0; i < 5; i++ {
		p.Nurses = append(p.Nurses, Nurse{
			ID:                 fmt.Sprintf("nurse_%03d", i),
			Name:               fmt.Sprintf("Nurse %d", i),
			Skill:              SkillIntermediate,
			MaxWeeklyHours:     48,
			MaxConsecutiveDays: 5,
			MinRestHours:       11,
			Preferences:        Preferences{MaxNightsPerWeek: 2},
		})
	}
	p.GenerateShifts(func(time.Time, ShiftType) int { return 2 })
	return p
}
