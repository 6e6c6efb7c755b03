// Package calendar defines the external calendar collaborator. The solver
// consumes per-date flags opaquely and never derives holiday or religious
// calendar semantics itself.
package calendar

import (
	"time"

	"github.com/healthflow/roster/core/model"
)

// Calendar resolves per-date scheduling flags.
type Calendar interface {
	Flags(date time.Time) model.DayFlags
}

// Static is a Calendar backed by explicit date sets plus a weekly rest day.
type Static struct {
	// RestWeekday marks one weekday as a rest day, -1 disables the rule.
	RestWeekday time.Weekday
	// RestDates and ReducedDates hold extra dates in "2006-01-02" form.
	RestDates    map[string]bool
	ReducedDates map[string]bool
}

// NewStatic returns a calendar with Friday as the weekly rest day.
func NewStatic() Static {
	return Static{
		RestWeekday:  time.Friday,
		RestDates:    make(map[string]bool),
		ReducedDates: make(map[string]bool),
	}
}

// Flags implements Calendar.
func (c Static) Flags(date time.Time) model.DayFlags {
	key := date.Format("2006-01-02")
	return model.DayFlags{
		RestDay:      date.Weekday() == c.RestWeekday || c.RestDates[key],
		ReducedHours: c.ReducedDates[key],
	}
}

// Resolve materializes flags for every day of the horizon.
func Resolve(c Calendar, start time.Time, horizon int) []model.DayFlags {
	flags := make([]model.DayFlags, horizon)
	if c == nil {
		return flags
	}
	for day := 0; day < horizon; day++ {
		flags[day] = c.Flags(start.AddDate(0, 0, day))
	}
	return flags
}
