package config

import (
	"fmt"
	"time"

	"github.com/healthflow/roster/core/calendar"
	"github.com/healthflow/roster/core/demand"
	"github.com/healthflow/roster/core/model"
)

// NurseConfig describes one staff member in a configuration file.
type NurseConfig struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Skill              string   `json:"skill"`
	MaxWeeklyHours     float64  `json:"max_weekly_hours"`
	MaxConsecutiveDays int      `json:"max_consecutive_days"`
	MinRestHours       float64  `json:"min_rest_hours"`
	PreferredShifts    []string `json:"preferred_shifts"`
	AvoidedShifts      []string `json:"avoided_shifts"`
	MaxNightsPerWeek   int      `json:"max_nights_per_week"`
	FatigueScore       float64  `json:"fatigue_score"`
	UnavailableDays    []int    `json:"unavailable_days"`
}

// DemandOverride raises or lowers the headcount of one slot.
type DemandOverride struct {
	Date  string `json:"date"`
	Shift string `json:"shift"`
	Count int    `json:"count"`
}

// ProblemConfig describes one rostering instance. Demand maps shift type
// names to a fixed daily headcount; overrides adjust specific dates.
type ProblemConfig struct {
	Horizon         int              `json:"horizon_days"`
	Start           string           `json:"start_date"` // "2006-01-02"
	ShiftTypes      []string         `json:"shift_types"`
	Demand          map[string]int   `json:"demand"`
	DemandOverrides []DemandOverride `json:"demand_overrides"`
	RestWeekday     string           `json:"rest_weekday"`
	RestDates       []string         `json:"rest_dates"`
	ReducedDates    []string         `json:"reduced_dates"`
	Nurses          []NurseConfig    `json:"nurses"`
}

// Validate checks the fields that can be rejected before building.
func (c ProblemConfig) Validate() error {
	if len(c.Nurses) == 0 {
		return nil // the CLI falls back to the sample problem
	}
	if c.Horizon <= 0 {
		return fmt.Errorf("horizon_days must be positive")
	}
	if c.Start == "" {
		return fmt.Errorf("start_date is required")
	}
	if _, err := time.Parse("2006-01-02", c.Start); err != nil {
		return fmt.Errorf("start_date: %w", err)
	}
	if len(c.ShiftTypes) == 0 {
		return fmt.Errorf("at least one shift type is required")
	}
	return nil
}

// Defined reports whether the config describes an instance at all.
func (c ProblemConfig) Defined() bool { return len(c.Nurses) > 0 }

// Calendar builds the static calendar of the instance.
func (c ProblemConfig) Calendar() (calendar.Static, error) {
	cal := calendar.NewStatic()
	if c.RestWeekday != "" {
		wd, err := parseWeekday(c.RestWeekday)
		if err != nil {
			return cal, err
		}
		cal.RestWeekday = wd
	}
	for _, d := range c.RestDates {
		cal.RestDates[d] = true
	}
	for _, d := range c.ReducedDates {
		cal.ReducedDates[d] = true
	}
	return cal, nil
}

// DemandSource builds the static demand source of the instance.
func (c ProblemConfig) DemandSource() (demand.Static, error) {
	src := demand.Static{
		PerType:   make(map[model.ShiftType]int),
		Overrides: make(map[string]map[model.ShiftType]int),
	}
	for name, count := range c.Demand {
		t, err := model.ParseShiftType(name)
		if err != nil {
			return src, fmt.Errorf("demand: %w", err)
		}
		src.PerType[t] = count
	}
	for _, o := range c.DemandOverrides {
		t, err := model.ParseShiftType(o.Shift)
		if err != nil {
			return src, fmt.Errorf("demand override: %w", err)
		}
		if src.Overrides[o.Date] == nil {
			src.Overrides[o.Date] = make(map[model.ShiftType]int)
		}
		src.Overrides[o.Date][t] = o.Count
	}
	return src, nil
}

// Build materializes the model problem: calendar flags are resolved, the
// shift grid generated from demand and all nurses converted and checked.
func (c ProblemConfig) Build() (*model.Problem, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	start, _ := time.Parse("2006-01-02", c.Start)

	types := make([]model.ShiftType, 0, len(c.ShiftTypes))
	for _, name := range c.ShiftTypes {
		t, err := model.ParseShiftType(name)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}

	p := &model.Problem{
		Horizon:    c.Horizon,
		Start:      start,
		ShiftTypes: types,
	}
	for _, nc := range c.Nurses {
		n, err := nc.build()
		if err != nil {
			return nil, err
		}
		p.Nurses = append(p.Nurses, n)
	}

	cal, err := c.Calendar()
	if err != nil {
		return nil, err
	}
	p.Flags = calendar.Resolve(cal, start, c.Horizon)

	src, err := c.DemandSource()
	if err != nil {
		return nil, err
	}
	p.GenerateShifts(src.Required)

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (c NurseConfig) build() (model.Nurse, error) {
	n := model.Nurse{
		ID:                 c.ID,
		Name:               c.Name,
		MaxWeeklyHours:     c.MaxWeeklyHours,
		MaxConsecutiveDays: c.MaxConsecutiveDays,
		MinRestHours:       c.MinRestHours,
		FatigueScore:       c.FatigueScore,
	}
	if c.Skill != "" {
		skill, err := model.ParseSkillLevel(c.Skill)
		if err != nil {
			return n, fmt.Errorf("nurse %s: %w", c.ID, err)
		}
		n.Skill = skill
	}
	if n.MaxWeeklyHours == 0 {
		n.MaxWeeklyHours = 48
	}
	if n.MaxConsecutiveDays == 0 {
		n.MaxConsecutiveDays = 6
	}
	if n.MinRestHours == 0 {
		n.MinRestHours = 11
	}
	for _, s := range c.PreferredShifts {
		t, err := model.ParseShiftType(s)
		if err != nil {
			return n, fmt.Errorf("nurse %s: %w", c.ID, err)
		}
		n.Preferences.PreferredShifts = append(n.Preferences.PreferredShifts, t)
	}
	for _, s := range c.AvoidedShifts {
		t, err := model.ParseShiftType(s)
		if err != nil {
			return n, fmt.Errorf("nurse %s: %w", c.ID, err)
		}
		n.Preferences.AvoidedShifts = append(n.Preferences.AvoidedShifts, t)
	}
	n.Preferences.MaxNightsPerWeek = c.MaxNightsPerWeek
	if len(c.UnavailableDays) > 0 {
		n.Unavailable = make(map[int]bool, len(c.UnavailableDays))
		for _, d := range c.UnavailableDays {
			n.Unavailable[d] = true
		}
	}
	return n, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if s == wd.String() || s == wd.String()[:3] {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}
