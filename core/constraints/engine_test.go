package constraints

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/healthflow/roster/core/fatigue"
	"github.com/healthflow/roster/core/model"
)

func testProblem(flags []model.DayFlags) *model.Problem {
	p := &model.Problem{
		Horizon:    len(flags),
		Start:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		ShiftTypes: []model.ShiftType{model.ShiftMorning, model.ShiftNight},
		Flags:      flags,
	}
	p.GenerateShifts(func(time.Time, model.ShiftType) int { return 1 })
	return p
}

func testNurse() model.Nurse {
	return model.Nurse{
		ID:                 "n1",
		MaxWeeklyHours:     48,
		MaxConsecutiveDays: 3,
		MinRestHours:       11,
	}
}

func rot(days ...model.Assignment) model.Rotation {
	return model.NewRotation("n1", days, 0)
}

func TestHardViolationsGateFeasibility(t *testing.T) {
	e := NewEngine(testProblem(make([]model.DayFlags, 7)), Weights{}, nil)
	n := testNurse()

	cases := []struct {
		name       string
		r          model.Rotation
		constraint string
	}{
		{"empty", rot(), "non_empty"},
		{"gap", rot(
			model.Assignment{Day: 0, Type: model.ShiftMorning},
			model.Assignment{Day: 2, Type: model.ShiftMorning},
		), "consecutive_days"},
		{"too long", rot(
			model.Assignment{Day: 0, Type: model.ShiftMorning},
			model.Assignment{Day: 1, Type: model.ShiftMorning},
			model.Assignment{Day: 2, Type: model.ShiftMorning},
			model.Assignment{Day: 3, Type: model.ShiftMorning},
		), "max_consecutive_days"},
		{"short rest", rot(
			model.Assignment{Day: 0, Type: model.ShiftNight},
			model.Assignment{Day: 1, Type: model.ShiftMorning},
		), "min_rest_hours"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			feasible, vs, _ := e.EvaluateRotation(n, tc.r)
			require.False(t, feasible)
			found := false
			for _, v := range vs {
				if v.Constraint == tc.constraint {
					require.Equal(t, Hard, v.Severity)
					found = true
				}
			}
			require.True(t, found, "expected %s violation", tc.constraint)
		})
	}
}

func TestUnavailabilityIsHard(t *testing.T) {
	e := NewEngine(testProblem(make([]model.DayFlags, 7)), Weights{}, nil)
	n := testNurse()
	n.Unavailable = map[int]bool{1: true}

	ok := e.RotationFeasible(n, rot(model.Assignment{Day: 0, Type: model.ShiftMorning}))
	require.True(t, ok)
	ok = e.RotationFeasible(n, rot(model.Assignment{Day: 1, Type: model.ShiftMorning}))
	require.False(t, ok)
}

func TestWeeklyHoursCap(t *testing.T) {
	e := NewEngine(testProblem(make([]model.DayFlags, 7)), Weights{}, nil)
	n := testNurse()
	n.MaxConsecutiveDays = 5
	n.MaxWeeklyHours = 30

	r := rot(
		model.Assignment{Day: 0, Type: model.ShiftExtended},
		model.Assignment{Day: 1, Type: model.ShiftExtended},
		model.Assignment{Day: 2, Type: model.ShiftExtended},
	)
	require.False(t, e.RotationFeasible(n, r)) // 36h over a 30h cap
}

func TestSoftPenaltiesAccumulate(t *testing.T) {
	flags := make([]model.DayFlags, 7)
	flags[1].RestDay = true
	flags[2].ReducedHours = true
	e := NewEngine(testProblem(flags), Weights{}, nil)

	n := testNurse()
	n.Preferences.AvoidedShifts = []model.ShiftType{model.ShiftNight}

	r := rot(
		model.Assignment{Day: 1, Type: model.ShiftMorning}, // rest day: 20
		model.Assignment{Day: 2, Type: model.ShiftMorning}, // reduced day, 8h shift: 15
	)
	feasible, _, penalty := e.EvaluateRotation(n, r)
	require.True(t, feasible)
	require.InDelta(t, 35, penalty, 1e-9)

	// Avoided night on a plain day adds its own weight.
	r2 := rot(model.Assignment{Day: 4, Type: model.ShiftNight})
	_, _, p2 := e.EvaluateRotation(n, r2)
	require.InDelta(t, 30, p2, 1e-9)
}

func TestExcessNightPenalty(t *testing.T) {
	e := NewEngine(testProblem(make([]model.DayFlags, 7)), Weights{}, nil)
	n := testNurse()
	n.Preferences.MaxNightsPerWeek = 1

	r := rot(
		model.Assignment{Day: 0, Type: model.ShiftNight},
		model.Assignment{Day: 1, Type: model.ShiftNight},
	)
	_, _, penalty := e.EvaluateRotation(n, r)
	require.InDelta(t, 40, penalty, 1e-9) // one excess night
}

func TestDayPenaltyMatchesPerDayTerms(t *testing.T) {
	flags := make([]model.DayFlags, 7)
	flags[3].RestDay = true
	e := NewEngine(testProblem(flags), Weights{}, nil)

	n := testNurse()
	n.Preferences.PreferredShifts = []model.ShiftType{model.ShiftMorning}

	r := rot(
		model.Assignment{Day: 2, Type: model.ShiftNight},
		model.Assignment{Day: 3, Type: model.ShiftMorning},
	)
	_, _, penalty := e.EvaluateRotation(n, r)

	sum := 0.0
	for _, a := range r.Days {
		sum += e.DayPenalty(n, a.Day, a.Type)
	}
	require.InDelta(t, penalty, sum, 1e-9)
}

func TestFatigueScorerContributesToCost(t *testing.T) {
	e := NewEngine(testProblem(make([]model.DayFlags, 7)), Weights{}, fatigue.Linear{HourWeight: 10})
	n := testNurse()
	n.FatigueScore = 0.5

	r := rot(model.Assignment{Day: 0, Type: model.ShiftMorning})
	// 8 hours * 0.5 score * weight 10
	require.InDelta(t, 40, e.RotationCost(n, r), 1e-9)
}
