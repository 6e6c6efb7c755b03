package colgen

import "github.com/healthflow/roster/core/model"

// Restrictions narrows the column space of one branch node. A restriction
// set only ever shrinks along a branch: children clone the parent set and
// add exactly one decision.
type Restrictions struct {
	// ForbiddenRotations bans pool columns by fingerprint.
	ForbiddenRotations map[uint64]bool
	// ForcedRotations pins pool columns to value one.
	ForcedRotations map[uint64]bool
	// ForbiddenDays bans a nurse from working the given days.
	ForbiddenDays map[string]map[int]bool
	// RequiredDays forces a nurse to work the given days.
	RequiredDays map[string]map[int]bool
}

// NewRestrictions returns an empty restriction set.
func NewRestrictions() Restrictions {
	return Restrictions{
		ForbiddenRotations: make(map[uint64]bool),
		ForcedRotations:    make(map[uint64]bool),
		ForbiddenDays:      make(map[string]map[int]bool),
		RequiredDays:       make(map[string]map[int]bool),
	}
}

// Clone returns a deep copy that can be extended independently.
func (r Restrictions) Clone() Restrictions {
	c := NewRestrictions()
	for fp := range r.ForbiddenRotations {
		c.ForbiddenRotations[fp] = true
	}
	for fp := range r.ForcedRotations {
		c.ForcedRotations[fp] = true
	}
	for nurse, days := range r.ForbiddenDays {
		m := make(map[int]bool, len(days))
		for d := range days {
			m[d] = true
		}
		c.ForbiddenDays[nurse] = m
	}
	for nurse, days := range r.RequiredDays {
		m := make(map[int]bool, len(days))
		for d := range days {
			m[d] = true
		}
		c.RequiredDays[nurse] = m
	}
	return c
}

// ForbidRotation bans the fingerprint.
func (r Restrictions) ForbidRotation(fp uint64) { r.ForbiddenRotations[fp] = true }

// ForceRotation pins the fingerprint to one.
func (r Restrictions) ForceRotation(fp uint64) { r.ForcedRotations[fp] = true }

// ForbidDay bans the nurse from working the day.
func (r Restrictions) ForbidDay(nurse string, day int) {
	m := r.ForbiddenDays[nurse]
	if m == nil {
		m = make(map[int]bool)
		r.ForbiddenDays[nurse] = m
	}
	m[day] = true
}

// RequireDay forces the nurse to work the day.
func (r Restrictions) RequireDay(nurse string, day int) {
	m := r.RequiredDays[nurse]
	if m == nil {
		m = make(map[int]bool)
		r.RequiredDays[nurse] = m
	}
	m[day] = true
}

// Admits reports whether the rotation may enter the master under this
// restriction set.
func (r Restrictions) Admits(rot model.Rotation) bool {
	if r.ForbiddenRotations[rot.Fingerprint] {
		return false
	}
	days := r.ForbiddenDays[rot.NurseID]
	if len(days) == 0 {
		return true
	}
	for _, a := range rot.Days {
		if days[a.Day] {
			return false
		}
	}
	return true
}

// forbiddenFor returns the banned day set of one nurse, possibly nil.
func (r Restrictions) forbiddenFor(nurse string) map[int]bool {
	return r.ForbiddenDays[nurse]
}
