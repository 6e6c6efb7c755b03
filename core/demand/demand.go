// Package demand defines the external demand source. The solver consumes
// only resolved integer headcounts, independent of how they were forecast.
package demand

import (
	"time"

	"github.com/healthflow/roster/core/model"
)

// Source supplies the required headcount per (date, shift type).
type Source interface {
	Required(date time.Time, t model.ShiftType) int
}

// Static is a Source with a fixed headcount per shift type, optionally
// overridden for specific dates.
type Static struct {
	PerType   map[model.ShiftType]int
	Overrides map[string]map[model.ShiftType]int // keyed by "2006-01-02"
}

// Required implements Source.
func (s Static) Required(date time.Time, t model.ShiftType) int {
	if o, ok := s.Overrides[date.Format("2006-01-02")]; ok {
		if n, ok := o[t]; ok {
			return n
		}
	}
	return s.PerType[t]
}

// Constant returns a Source demanding n nurses on every worked slot.
func Constant(n int) Source {
	return constant(n)
}

type constant int

func (c constant) Required(time.Time, model.ShiftType) int { return int(c) }
