// Package solver defines the LP-solving capability consumed by the master
// relaxation. The solver is invoked synchronously and must return a
// terminal status.
package solver

import "errors"

// Relation is the sense of one constraint row.
type Relation int

const (
	LE Relation = iota
	GE
	EQ
)

// Status is the terminal state of an LP solve.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUnbounded
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	default:
		return "unknown"
	}
}

// Problem is a linear program in row-wise general form:
//
//	minimize Obj . x
//	s.t.     Rows[i] . x (Rel[i]) RHS[i]
//	         Lo <= x <= Hi
type Problem struct {
	Obj  []float64
	Rows [][]float64
	Rel  []Relation
	RHS  []float64
	Lo   []float64
	Hi   []float64
}

// NumVars returns the number of decision variables.
func (p Problem) NumVars() int { return len(p.Obj) }

// NumRows returns the number of functional constraint rows.
func (p Problem) NumRows() int { return len(p.Rows) }

// Solution carries primal values, one dual value per functional row, the
// objective and the terminal status. Dual signs follow the minimization
// convention: GE rows yield non-negative duals, LE rows non-positive ones.
type Solution struct {
	Primal    []float64
	Duals     []float64
	Objective float64
	Status    Status
}

// Solver solves one linear program.
type Solver interface {
	Solve(p Problem) (Solution, error)
}

// ErrSolverFailure is returned when the LP backend cannot produce an
// optimal solution even after the perturbed retry.
var ErrSolverFailure = errors.New("solver: lp backend failed")
