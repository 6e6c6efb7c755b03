package colgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/healthflow/roster/core/model"
	"github.com/healthflow/roster/core/solver"
)

func masterFixture(t *testing.T) (*model.Problem, *Pool) {
	t.Helper()
	p := &model.Problem{
		Horizon:    3,
		Start:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		ShiftTypes: []model.ShiftType{model.ShiftMorning},
		Flags:      make([]model.DayFlags, 3),
	}
	p.GenerateShifts(func(time.Time, model.ShiftType) int { return 1 })

	pool := NewPool()
	pool.Add(rot("n1",
		model.Assignment{Day: 0, Type: model.ShiftMorning},
		model.Assignment{Day: 1, Type: model.ShiftMorning},
	))
	pool.Add(rot("n2", model.Assignment{Day: 2, Type: model.ShiftMorning}))
	return p, pool
}

func TestBuildMasterShapes(t *testing.T) {
	p, pool := masterFixture(t)

	m, err := buildMaster(p, pool, NewRestrictions(), 1e4)
	require.NoError(t, err)

	// Two columns plus one undercoverage variable per shift slot.
	require.Equal(t, []int{0, 1}, m.cols)
	require.Equal(t, 2, m.artStart)
	require.Equal(t, 5, m.lp.NumVars())

	// Three coverage rows, then occupancy rows: n1 works days 0-1 and rests
	// on day 2, n2 works day 2 with its rest day off the horizon.
	require.Len(t, m.coverKeys, 3)
	require.Equal(t, []nurseDay{{"n1", 0}, {"n1", 1}, {"n1", 2}, {"n2", 2}}, m.occupyRows)
	require.Equal(t, 7, m.lp.NumRows())

	for i := 0; i < 3; i++ {
		require.Equal(t, solver.GE, m.lp.Rel[i])
		require.Equal(t, 1.0, m.lp.RHS[i])
		require.Equal(t, 1e4, m.lp.Obj[m.artStart+i])
		require.Equal(t, 1.0, m.lp.Hi[m.artStart+i])
	}
	for i := 3; i < 7; i++ {
		require.Equal(t, solver.LE, m.lp.Rel[i])
		require.Equal(t, 1.0, m.lp.RHS[i])
	}

	// The trailing rest day of n1 enters its occupancy row.
	restRow := m.lp.Rows[3+2]
	require.Equal(t, 1.0, restRow[0])
	require.Equal(t, 0.0, restRow[1])
}

func TestBuildMasterExcludesForbiddenColumns(t *testing.T) {
	p, pool := masterFixture(t)
	res := NewRestrictions()
	res.ForbidRotation(pool.At(0).Fingerprint)

	m, err := buildMaster(p, pool, res, 1e4)
	require.NoError(t, err)
	require.Equal(t, []int{1}, m.cols)
}

func TestBuildMasterForcedRotationBounds(t *testing.T) {
	p, pool := masterFixture(t)
	res := NewRestrictions()
	res.ForceRotation(pool.At(0).Fingerprint)

	m, err := buildMaster(p, pool, res, 1e4)
	require.NoError(t, err)
	require.Equal(t, 1.0, m.lp.Lo[0])
	require.Equal(t, 0.0, m.lp.Lo[1])
}

func TestBuildMasterRejectsMissingForcedRotation(t *testing.T) {
	p, pool := masterFixture(t)
	res := NewRestrictions()
	res.ForceRotation(12345)

	_, err := buildMaster(p, pool, res, 1e4)
	require.Error(t, err)
}

func TestBuildMasterRejectsForcedAndForbidden(t *testing.T) {
	p, pool := masterFixture(t)
	fp := pool.At(0).Fingerprint
	res := NewRestrictions()
	res.ForceRotation(fp)
	res.ForbidRotation(fp)

	_, err := buildMaster(p, pool, res, 1e4)
	require.Error(t, err)
}

func TestBuildMasterRequiredWorkRows(t *testing.T) {
	p, pool := masterFixture(t)
	res := NewRestrictions()
	res.RequireDay("n2", 2)

	m, err := buildMaster(p, pool, res, 1e4)
	require.NoError(t, err)
	require.Equal(t, []nurseDay{{"n2", 2}}, m.workRows)
	require.Equal(t, 6, m.lp.NumVars())
	require.Equal(t, 8, m.lp.NumRows())

	last := m.lp.NumRows() - 1
	require.Equal(t, solver.GE, m.lp.Rel[last])
	// Only the n2 column works day 2; the row's own artificial closes it.
	require.Equal(t, 0.0, m.lp.Rows[last][0])
	require.Equal(t, 1.0, m.lp.Rows[last][1])
	require.Equal(t, 1.0, m.lp.Rows[last][5])
	require.Equal(t, 1.0, m.lp.Hi[5])
}

func TestMasterDualsMapping(t *testing.T) {
	p, pool := masterFixture(t)
	m, err := buildMaster(p, pool, NewRestrictions(), 1e4)
	require.NoError(t, err)

	sol := solver.Solution{
		Primal: []float64{1, 0.5, 0, 0, 0},
		Duals:  []float64{10, 11, 12, -1, -2, -3, -4},
	}
	d := m.duals(sol)
	require.Equal(t, 10.0, d.Cover[model.ShiftKey{Day: 0, Type: model.ShiftMorning}])
	require.Equal(t, 12.0, d.Cover[model.ShiftKey{Day: 2, Type: model.ShiftMorning}])
	require.Equal(t, []float64{-1, -2, -3}, d.Occupy["n1"])
	require.Equal(t, []float64{0, 0, -4}, d.Occupy["n2"])

	vals := m.values(sol)
	require.Equal(t, map[int]float64{0: 1, 1: 0.5}, vals)
	require.Equal(t, 0.0, m.artificialUse(sol))
}

func TestMasterArtificialUse(t *testing.T) {
	p, pool := masterFixture(t)
	m, err := buildMaster(p, pool, NewRestrictions(), 1e4)
	require.NoError(t, err)

	sol := solver.Solution{Primal: []float64{0, 0, 1, 1, 0.25}}
	require.InDelta(t, 2.25, m.artificialUse(sol), 1e-12)
}
