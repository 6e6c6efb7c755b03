package model

import "fmt"

// SkillLevel ranks nurses by experience.
type SkillLevel int

const (
	SkillJunior SkillLevel = iota
	SkillIntermediate
	SkillSenior
	SkillSpecialist
	SkillHeadNurse
)

// String returns a human-readable representation of the skill level.
func (l SkillLevel) String() string {
	switch l {
	case SkillJunior:
		return "junior"
	case SkillIntermediate:
		return "intermediate"
	case SkillSenior:
		return "senior"
	case SkillSpecialist:
		return "specialist"
	case SkillHeadNurse:
		return "head_nurse"
	default:
		return "unknown"
	}
}

// ParseSkillLevel resolves the textual form used in configuration files.
func ParseSkillLevel(s string) (SkillLevel, error) {
	switch s {
	case "junior":
		return SkillJunior, nil
	case "intermediate":
		return SkillIntermediate, nil
	case "senior":
		return SkillSenior, nil
	case "specialist":
		return SkillSpecialist, nil
	case "head_nurse":
		return SkillHeadNurse, nil
	default:
		return 0, fmt.Errorf("unknown skill level %q", s)
	}
}

// Preferences holds the soft scheduling wishes of a nurse. Violating them
// never makes a rotation infeasible, it only adds penalty.
type Preferences struct {
	PreferredShifts  []ShiftType
	AvoidedShifts    []ShiftType
	MaxNightsPerWeek int
}

// Prefers reports whether t is among the preferred shift types.
func (p Preferences) Prefers(t ShiftType) bool {
	for _, s := range p.PreferredShifts {
		if s == t {
			return true
		}
	}
	return false
}

// Avoids reports whether t is among the avoided shift types.
func (p Preferences) Avoids(t ShiftType) bool {
	for _, s := range p.AvoidedShifts {
		if s == t {
			return true
		}
	}
	return false
}

// Nurse describes one staff member. The struct is treated as immutable for
// the duration of a solve.
type Nurse struct {
	ID    string
	Name  string
	Skill SkillLevel

	MaxWeeklyHours     float64 // cap over any sliding 7-day window
	MaxConsecutiveDays int
	MinRestHours       float64 // minimum rest between two worked shifts

	Preferences Preferences

	// FatigueScore in [0,1] scales the fatigue penalty of long rotations.
	// It typically comes from an external predictor and defaults to zero.
	FatigueScore float64

	// Unavailable lists horizon day indexes the nurse cannot work at all.
	Unavailable map[int]bool
}

// Available reports whether the nurse may work on the given horizon day.
func (n Nurse) Available(day int) bool {
	return !n.Unavailable[day]
}

// CanWork reports whether the nurse meets the skill floor of the shift.
func (n Nurse) CanWork(s Shift) bool {
	return n.Skill >= s.MinSkill
}

// Validate checks that the nurse limits are usable by the solver.
func (n Nurse) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("nurse id is required")
	}
	if n.MaxWeeklyHours <= 0 {
		return fmt.Errorf("nurse %s: max weekly hours must be positive", n.ID)
	}
	if n.MaxConsecutiveDays <= 0 {
		return fmt.Errorf("nurse %s: max consecutive days must be positive", n.ID)
	}
	if n.MaxConsecutiveDays > 7 {
		// A rotation longer than a week could no longer rely on its total
		// hours to bound every sliding 7-day window.
		return fmt.Errorf("nurse %s: max consecutive days must not exceed 7", n.ID)
	}
	return nil
}
