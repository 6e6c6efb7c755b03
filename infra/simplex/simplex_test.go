package simplex

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/healthflow/roster/core/solver"
)

func TestSolveSimpleLP(t *testing.T) {
	// min x0 + 2 x1  s.t.  x0 + x1 >= 4,  x0 <= 3
	p := solver.Problem{
		Obj:  []float64{1, 2},
		Rows: [][]float64{{1, 1}},
		Rel:  []solver.Relation{solver.GE},
		RHS:  []float64{4},
		Lo:   []float64{0, 0},
		Hi:   []float64{3, inf()},
	}
	sol, err := New().Solve(p)
	require.NoError(t, err)
	require.Equal(t, solver.StatusOptimal, sol.Status)
	require.InDelta(t, 5, sol.Objective, 1e-6)
	require.InDelta(t, 3, sol.Primal[0], 1e-6)
	require.InDelta(t, 1, sol.Primal[1], 1e-6)
}

func TestSolveReturnsDuals(t *testing.T) {
	// min 2 x0 + 3 x1  s.t.  x0 + x1 >= 10. The binding covering row is
	// priced by the cheapest column: y = 2.
	p := solver.Problem{
		Obj:  []float64{2, 3},
		Rows: [][]float64{{1, 1}},
		Rel:  []solver.Relation{solver.GE},
		RHS:  []float64{10},
		Lo:   []float64{0, 0},
		Hi:   []float64{inf(), inf()},
	}
	sol, err := New().Solve(p)
	require.NoError(t, err)
	require.Equal(t, solver.StatusOptimal, sol.Status)
	require.InDelta(t, 20, sol.Objective, 1e-6)
	require.Len(t, sol.Duals, 1)
	require.InDelta(t, 2, sol.Duals[0], 1e-6)
}

func TestSolveDualSigns(t *testing.T) {
	// min -x0 - x1  s.t.  x0 + x1 <= 6,  x0 >= 1. The LE row binds with a
	// non-positive dual, the GE row is slack at the optimum.
	p := solver.Problem{
		Obj:  []float64{-1, -1},
		Rows: [][]float64{{1, 1}, {1, 0}},
		Rel:  []solver.Relation{solver.LE, solver.GE},
		RHS:  []float64{6, 1},
		Lo:   []float64{0, 0},
		Hi:   []float64{inf(), inf()},
	}
	sol, err := New().Solve(p)
	require.NoError(t, err)
	require.Equal(t, solver.StatusOptimal, sol.Status)
	require.InDelta(t, -6, sol.Objective, 1e-6)
	require.LessOrEqual(t, sol.Duals[0], 1e-9)
	require.InDelta(t, 0, sol.Duals[1], 1e-6)
}

func TestSolveHandlesEqualityAndShiftedBounds(t *testing.T) {
	// min x0 + x1  s.t.  x0 + x1 = 5,  1 <= x0 <= 2
	p := solver.Problem{
		Obj:  []float64{1, 1},
		Rows: [][]float64{{1, 1}},
		Rel:  []solver.Relation{solver.EQ},
		RHS:  []float64{5},
		Lo:   []float64{1, 0},
		Hi:   []float64{2, inf()},
	}
	sol, err := New().Solve(p)
	require.NoError(t, err)
	require.Equal(t, solver.StatusOptimal, sol.Status)
	require.InDelta(t, 5, sol.Objective, 1e-6)
	require.InDelta(t, 5, sol.Primal[0]+sol.Primal[1], 1e-6)
	require.GreaterOrEqual(t, sol.Primal[0], 1-1e-9)
}

func TestSolveReportsInfeasible(t *testing.T) {
	// x0 <= 1 and x0 >= 2 cannot hold together.
	p := solver.Problem{
		Obj:  []float64{1},
		Rows: [][]float64{{1}, {1}},
		Rel:  []solver.Relation{solver.LE, solver.GE},
		RHS:  []float64{1, 2},
		Lo:   []float64{0},
		Hi:   []float64{inf()},
	}
	sol, err := New().Solve(p)
	require.NoError(t, err)
	require.Equal(t, solver.StatusInfeasible, sol.Status)
}

func TestSolveReportsUnbounded(t *testing.T) {
	p := solver.Problem{
		Obj:  []float64{-1},
		Rows: [][]float64{{1}},
		Rel:  []solver.Relation{solver.GE},
		RHS:  []float64{1},
		Lo:   []float64{0},
		Hi:   []float64{inf()},
	}
	sol, err := New().Solve(p)
	require.NoError(t, err)
	require.Equal(t, solver.StatusUnbounded, sol.Status)
}

func TestSolveRejectsMalformedProblem(t *testing.T) {
	p := solver.Problem{
		Obj: []float64{1, 1},
		Lo:  []float64{0},
		Hi:  []float64{1},
	}
	_, err := New().Solve(p)
	require.Error(t, err)
}

func TestSolveSurfacesBackendFailure(t *testing.T) {
	orig := simplexSolve
	defer func() { simplexSolve = orig }()
	boom := errors.New("singular basis")
	simplexSolve = func([]float64, mat.Matrix, []float64, float64) (float64, []float64, error) {
		return 0, nil, boom
	}

	p := solver.Problem{
		Obj:  []float64{1},
		Rows: [][]float64{{1}},
		Rel:  []solver.Relation{solver.GE},
		RHS:  []float64{1},
		Lo:   []float64{0},
		Hi:   []float64{inf()},
	}
	_, err := New().Solve(p)
	require.ErrorIs(t, err, boom)
}

func inf() float64 { return math.Inf(1) }
