package model

import (
	"fmt"
	"time"
)

// ShiftType identifies one of the shift slots used in the roster.
type ShiftType int

const (
	ShiftMorning ShiftType = iota
	ShiftAfternoon
	ShiftNight
	ShiftExtended
	ShiftRest
)

// String returns a human-readable representation of the shift type.
func (t ShiftType) String() string {
	switch t {
	case ShiftMorning:
		return "morning"
	case ShiftAfternoon:
		return "afternoon"
	case ShiftNight:
		return "night"
	case ShiftExtended:
		return "extended"
	case ShiftRest:
		return "rest"
	default:
		return "unknown"
	}
}

// ParseShiftType resolves the textual form used in configuration files.
func ParseShiftType(s string) (ShiftType, error) {
	switch s {
	case "morning":
		return ShiftMorning, nil
	case "afternoon":
		return ShiftAfternoon, nil
	case "night":
		return ShiftNight, nil
	case "extended":
		return ShiftExtended, nil
	case "rest":
		return ShiftRest, nil
	default:
		return 0, fmt.Errorf("unknown shift type %q", s)
	}
}

// Hours returns the worked duration of the shift type.
func (t ShiftType) Hours() float64 {
	switch t {
	case ShiftMorning, ShiftAfternoon, ShiftNight:
		return 8
	case ShiftExtended:
		return 12
	default:
		return 0
	}
}

// startHour is the clock hour at which the shift begins on its calendar day.
func (t ShiftType) startHour() int {
	switch t {
	case ShiftMorning, ShiftExtended:
		return 7
	case ShiftAfternoon:
		return 15
	case ShiftNight:
		return 23
	default:
		return 0
	}
}

// endOffset is the clock hour at which the shift ends, expressed as an
// offset from midnight of its own day. A night shift ends the next morning,
// hence the value above 24.
func (t ShiftType) endOffset() int {
	switch t {
	case ShiftMorning:
		return 15
	case ShiftAfternoon:
		return 23
	case ShiftExtended:
		return 19
	case ShiftNight:
		return 31
	default:
		return 0
	}
}

// RestHoursBetween returns the rest period obtained when prev is worked on
// one day and next on the following day.
func RestHoursBetween(prev, next ShiftType) float64 {
	return float64(24 + next.startHour() - prev.endOffset())
}

// ShiftKey addresses a single shift slot within the planning horizon.
type ShiftKey struct {
	Day  int
	Type ShiftType
}

// Shift is an immutable staffing requirement for one slot of the horizon.
type Shift struct {
	Key        ShiftKey
	Date       time.Time
	MinSkill   SkillLevel // lowest skill level accepted on this slot
	Demand     int        // required headcount
	Complexity float64    // 1.0 = normal, higher values weigh understaffing more
}

// ID returns a stable identifier such as "2026-03-02_night".
func (s Shift) ID() string {
	return s.Date.Format("2006-01-02") + "_" + s.Key.Type.String()
}
