package colgen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/healthflow/roster/core/constraints"
	"github.com/healthflow/roster/core/metrics"
	"github.com/healthflow/roster/core/model"
	"github.com/healthflow/roster/core/pricing"
	"github.com/healthflow/roster/core/solver"
	"github.com/healthflow/roster/infra/simplex"
)

func loopFixture(t *testing.T, nurses int, demand int) (*model.Problem, *Loop) {
	t.Helper()
	p := &model.Problem{
		Horizon:    2,
		Start:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		ShiftTypes: []model.ShiftType{model.ShiftMorning},
		Flags:      make([]model.DayFlags, 2),
	}
	for i := 0; i < nurses; i++ {
		p.Nurses = append(p.Nurses, model.Nurse{
			ID:                 string(rune('a' + i)),
			MaxWeeklyHours:     48,
			MaxConsecutiveDays: 2,
			MinRestHours:       11,
		})
	}
	p.GenerateShifts(func(time.Time, model.ShiftType) int { return demand })

	engine := constraints.NewEngine(p, constraints.Weights{}, nil)
	oracle := pricing.NewOracle(p, engine)
	loop := NewLoop(p, oracle, NewPool(), simplex.New(), Config{})
	return p, loop
}

func TestLoopConvergesOnCoverableDemand(t *testing.T) {
	_, loop := loopFixture(t, 2, 1)

	out, err := loop.Run(context.Background(), 0, NewRestrictions())
	require.NoError(t, err)
	require.True(t, out.Converged)
	require.False(t, out.Infeasible())
	require.InDelta(t, 0, out.ArtificialUse, 1e-6)
	// Zero weights make every rotation free, so the relaxation costs nothing.
	require.InDelta(t, 0, out.Objective, 1e-4)
	require.Greater(t, out.ColumnsAdded, 0)
	require.Greater(t, loop.Pool().Len(), 0)
}

// recordingSink keeps the objective of every master solve.
type recordingSink struct{ objectives []float64 }

func (r *recordingSink) RecordIteration(rec metrics.IterationRecord) error {
	r.objectives = append(r.objectives, rec.Objective)
	return nil
}

func TestLoopObjectiveNeverIncreases(t *testing.T) {
	p, _ := loopFixture(t, 3, 2)
	engine := constraints.NewEngine(p, constraints.Weights{}, nil)
	oracle := pricing.NewOracle(p, engine)
	rec := &recordingSink{}
	loop := NewLoop(p, oracle, NewPool(), simplex.New(), Config{}).WithSink(rec)

	out, err := loop.Run(context.Background(), 0, NewRestrictions())
	require.NoError(t, err)
	require.True(t, out.Converged)

	// The empty pool forces artificial coverage on the first solve, so the
	// run takes several iterations and the bound only ever tightens.
	require.GreaterOrEqual(t, len(rec.objectives), 2)
	for i := 1; i < len(rec.objectives); i++ {
		require.LessOrEqual(t, rec.objectives[i], rec.objectives[i-1]+1e-6,
			"iteration %d", i+1)
	}
	require.InDelta(t, out.Objective, rec.objectives[len(rec.objectives)-1], 1e-9)
}

func TestLoopDetectsUncoverableDemand(t *testing.T) {
	// One nurse cannot supply two heads per slot: the converged master keeps
	// one unit of artificial coverage per day.
	_, loop := loopFixture(t, 1, 2)

	out, err := loop.Run(context.Background(), 0, NewRestrictions())
	require.NoError(t, err)
	require.True(t, out.Converged)
	require.True(t, out.Infeasible())
	require.InDelta(t, 2, out.ArtificialUse, 1e-4)
}

func TestLoopStopsAtMaxIterations(t *testing.T) {
	p, _ := loopFixture(t, 2, 1)
	engine := constraints.NewEngine(p, constraints.Weights{}, nil)
	oracle := pricing.NewOracle(p, engine)
	loop := NewLoop(p, oracle, NewPool(), simplex.New(), Config{MaxIterations: 1})

	out, err := loop.Run(context.Background(), 0, NewRestrictions())
	require.NoError(t, err)
	require.False(t, out.Converged)
	require.Equal(t, 1, out.Iterations)
	require.Greater(t, out.ColumnsAdded, 0)
}

func TestLoopHonorsCancelledContext(t *testing.T) {
	_, loop := loopFixture(t, 2, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := loop.Run(ctx, 0, NewRestrictions())
	require.NoError(t, err)
	require.Equal(t, 0, out.Iterations)
	require.False(t, out.Converged)
}

// failingSolver always errors, standing in for a broken LP backend.
type failingSolver struct{ calls int }

func (f *failingSolver) Solve(solver.Problem) (solver.Solution, error) {
	f.calls++
	return solver.Solution{}, errors.New("numerical breakdown")
}

func TestLoopWrapsSolverFailureAfterRetry(t *testing.T) {
	p, _ := loopFixture(t, 2, 1)
	engine := constraints.NewEngine(p, constraints.Weights{}, nil)
	oracle := pricing.NewOracle(p, engine)
	backend := &failingSolver{}
	loop := NewLoop(p, oracle, NewPool(), backend, Config{})

	_, err := loop.Run(context.Background(), 0, NewRestrictions())
	require.ErrorIs(t, err, solver.ErrSolverFailure)
	require.Equal(t, 2, backend.calls)
}

func TestOutcomeInfeasible(t *testing.T) {
	require.True(t, Outcome{Converged: true, ArtificialUse: 0.5}.Infeasible())
	require.False(t, Outcome{Converged: false, ArtificialUse: 0.5}.Infeasible())
	require.False(t, Outcome{Converged: true, ArtificialUse: 0}.Infeasible())
}

func TestPerturbWidensOnlyFiniteBounds(t *testing.T) {
	p := solver.Problem{Hi: []float64{1, inf, 2}}
	q := perturb(p)
	require.Greater(t, q.Hi[0], 1.0)
	require.Equal(t, inf, q.Hi[1])
	require.Greater(t, q.Hi[2], 2.0)
	require.Equal(t, 1.0, p.Hi[0])
}
