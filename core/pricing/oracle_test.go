package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/healthflow/roster/core/constraints"
	"github.com/healthflow/roster/core/model"
)

func oracleFixture(horizon int, types ...model.ShiftType) (*model.Problem, *Oracle) {
	p := &model.Problem{
		Horizon:    horizon,
		Start:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		ShiftTypes: types,
		Flags:      make([]model.DayFlags, horizon),
	}
	p.GenerateShifts(func(time.Time, model.ShiftType) int { return 1 })
	e := constraints.NewEngine(p, constraints.Weights{}, nil)
	return p, NewOracle(p, e)
}

func nurse() model.Nurse {
	return model.Nurse{ID: "n1", MaxWeeklyHours: 48, MaxConsecutiveDays: 3, MinRestHours: 11}
}

func coverDuals(p *model.Problem, v float64) Duals {
	d := Duals{Cover: make(map[model.ShiftKey]float64)}
	for _, s := range p.Shifts {
		d.Cover[s.Key] = v
	}
	return d
}

func TestPriceFindsNegativeReducedCosts(t *testing.T) {
	p, o := oracleFixture(3, model.ShiftMorning)

	cands := o.Price(nurse(), coverDuals(p, 5), nil, nil, 10, 1e-6)
	require.NotEmpty(t, cands)
	for _, c := range cands {
		require.Negative(t, c.ReducedCost)
	}
	// The best candidate collects the dual on every day: three workdays.
	best := cands[0]
	require.Len(t, best.Rotation.Days, 3)
	require.InDelta(t, -15, best.ReducedCost, 1e-9)
}

func TestPriceReturnsNothingWithoutAttractiveDuals(t *testing.T) {
	_, o := oracleFixture(3, model.ShiftMorning)
	cands := o.Price(nurse(), Duals{}, nil, nil, 10, 1e-6)
	require.Empty(t, cands)
}

func TestPriceRespectsBannedFingerprints(t *testing.T) {
	p, o := oracleFixture(2, model.ShiftMorning)
	duals := coverDuals(p, 5)

	all := o.Price(nurse(), duals, nil, nil, 10, 1e-6)
	require.NotEmpty(t, all)

	banned := map[uint64]bool{all[0].Rotation.Fingerprint: true}
	rest := o.Price(nurse(), duals, banned, nil, 10, 1e-6)
	require.Len(t, rest, len(all)-1)
	for _, c := range rest {
		require.NotEqual(t, all[0].Rotation.Fingerprint, c.Rotation.Fingerprint)
	}
}

func TestPriceRespectsForbiddenDays(t *testing.T) {
	p, o := oracleFixture(3, model.ShiftMorning)
	duals := coverDuals(p, 5)

	cands := o.Price(nurse(), duals, nil, map[int]bool{1: true}, 10, 1e-6)
	require.NotEmpty(t, cands)
	for _, c := range cands {
		require.False(t, c.Rotation.WorksDay(1))
	}
}

func TestPriceHonorsTopK(t *testing.T) {
	p, o := oracleFixture(4, model.ShiftMorning)
	duals := coverDuals(p, 5)

	cands := o.Price(nurse(), duals, nil, nil, 2, 1e-6)
	require.Len(t, cands, 2)
	require.LessOrEqual(t, cands[0].ReducedCost, cands[1].ReducedCost)
}

func TestPriceIsDeterministic(t *testing.T) {
	p, o := oracleFixture(5, model.ShiftMorning, model.ShiftAfternoon, model.ShiftNight)
	duals := coverDuals(p, 3)

	first := o.Price(nurse(), duals, nil, nil, 8, 1e-6)
	second := o.Price(nurse(), duals, nil, nil, 8, 1e-6)
	require.Equal(t, first, second)
}

func TestPriceEmitsOnlyFeasibleRotations(t *testing.T) {
	p, o := oracleFixture(5, model.ShiftMorning, model.ShiftNight)
	e := constraints.NewEngine(p, constraints.Weights{}, nil)
	n := nurse()

	cands := o.Price(n, coverDuals(p, 10), nil, nil, 50, 1e-6)
	require.NotEmpty(t, cands)
	for _, c := range cands {
		require.True(t, e.RotationFeasible(n, c.Rotation), "infeasible %s", c.Rotation)
	}
}

func TestPriceAccountsOccupancyOfTrailingRestDay(t *testing.T) {
	p, o := oracleFixture(3, model.ShiftMorning)
	duals := coverDuals(p, 5)
	// A strongly negative occupancy price on day 1 penalizes any rotation
	// occupying it, including one ending on day 0 (its rest day is day 1).
	duals.Occupy = map[string][]float64{"n1": {0, -100, 0}}

	cands := o.Price(nurse(), duals, nil, nil, 50, 1e-6)
	// Only the day 2 single survives: every other rotation either works
	// day 1 or ends on day 0 and occupies day 1 as its rest day.
	require.Len(t, cands, 1)
	require.Equal(t, 2, cands[0].Rotation.FirstDay())
	require.InDelta(t, -5, cands[0].ReducedCost, 1e-9)
}
