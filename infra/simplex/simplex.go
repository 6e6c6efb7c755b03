// Package simplex implements the LP-solving capability on top of gonum's
// dense simplex. The primal is solved in standard form; dual prices are
// recovered by solving the explicit dual program, since the simplex API
// does not expose the optimal basis.
package simplex

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/healthflow/roster/core/solver"
)

// simplexSolve points to the function running the simplex algorithm. It
// can be overridden in tests to simulate backend failures.
var simplexSolve = func(c []float64, a mat.Matrix, b []float64, tol float64) (float64, []float64, error) {
	return lp.Simplex(c, a, b, tol, nil)
}

// Solver adapts gonum to the solver.Solver interface.
type Solver struct {
	// Tol is the pivot tolerance handed to the simplex, 1e-9 when zero.
	Tol float64
	// GapTol bounds the accepted primal/dual objective gap, 1e-6 when zero.
	GapTol float64
}

// New returns a Solver with default tolerances.
func New() *Solver { return &Solver{} }

func (s *Solver) tol() float64 {
	if s.Tol > 0 {
		return s.Tol
	}
	return 1e-9
}

func (s *Solver) gapTol() float64 {
	if s.GapTol > 0 {
		return s.GapTol
	}
	return 1e-6
}

// Solve solves the general-form program. Infeasible and unbounded programs
// are reported through the solution status, not as errors; errors signal a
// backend failure the caller may retry with perturbed bounds.
func (s *Solver) Solve(p solver.Problem) (solver.Solution, error) {
	if err := validate(p); err != nil {
		return solver.Solution{}, err
	}

	primalObj, primal, err := s.solvePrimal(p)
	if errors.Is(err, lp.ErrInfeasible) {
		return solver.Solution{Status: solver.StatusInfeasible}, nil
	}
	if errors.Is(err, lp.ErrUnbounded) {
		return solver.Solution{Status: solver.StatusUnbounded}, nil
	}
	if err != nil {
		return solver.Solution{}, fmt.Errorf("simplex primal: %w", err)
	}

	dualObj, duals, err := s.solveDual(p)
	if err != nil {
		return solver.Solution{}, fmt.Errorf("simplex dual: %w", err)
	}
	if gap := math.Abs(primalObj - dualObj); gap > s.gapTol()*(1+math.Abs(primalObj)) {
		return solver.Solution{}, fmt.Errorf("simplex: duality gap %g exceeds tolerance", gap)
	}

	return solver.Solution{
		Primal:    primal,
		Duals:     duals,
		Objective: primalObj,
		Status:    solver.StatusOptimal,
	}, nil
}

func validate(p solver.Problem) error {
	n := p.NumVars()
	if len(p.Lo) != n || len(p.Hi) != n {
		return fmt.Errorf("simplex: bounds length mismatch")
	}
	if len(p.Rel) != p.NumRows() || len(p.RHS) != p.NumRows() {
		return fmt.Errorf("simplex: row metadata length mismatch")
	}
	for j := 0; j < n; j++ {
		if p.Hi[j] < p.Lo[j] {
			return fmt.Errorf("simplex: variable %d has empty bound interval", j)
		}
		if math.IsInf(p.Lo[j], 0) {
			return fmt.Errorf("simplex: variable %d has infinite lower bound", j)
		}
	}
	return nil
}

// solvePrimal shifts variables to z = x - lo, folds upper bounds and row
// senses into slack columns, and runs the simplex on the standard form.
func (s *Solver) solvePrimal(p solver.Problem) (float64, []float64, error) {
	n := p.NumVars()
	m := p.NumRows()

	bounded := make([]int, 0, n)
	for j := 0; j < n; j++ {
		if !math.IsInf(p.Hi[j], 1) {
			bounded = append(bounded, j)
		}
	}
	rowSlacks := 0
	for _, rel := range p.Rel {
		if rel != solver.EQ {
			rowSlacks++
		}
	}

	cols := n + len(bounded) + rowSlacks
	rows := m + len(bounded)
	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	c := make([]float64, cols)
	copy(c, p.Obj)

	var shift float64 // constant objective offset from the lo substitution
	for j := 0; j < n; j++ {
		shift += p.Obj[j] * p.Lo[j]
	}

	slack := n + len(bounded)
	for i := 0; i < m; i++ {
		rhs := p.RHS[i]
		for j := 0; j < n; j++ {
			a.Set(i, j, p.Rows[i][j])
			rhs -= p.Rows[i][j] * p.Lo[j]
		}
		switch p.Rel[i] {
		case solver.LE:
			a.Set(i, slack, 1)
			slack++
		case solver.GE:
			a.Set(i, slack, -1)
			slack++
		}
		b[i] = rhs
	}
	for k, j := range bounded {
		a.Set(m+k, j, 1)
		a.Set(m+k, n+k, 1)
		b[m+k] = p.Hi[j] - p.Lo[j]
	}

	// Simplex phase one wants non-negative right-hand sides.
	for i := 0; i < rows; i++ {
		if b[i] < 0 {
			b[i] = -b[i]
			for j := 0; j < cols; j++ {
				a.Set(i, j, -a.At(i, j))
			}
		}
	}

	obj, z, err := simplexSolve(c, a, b, s.tol())
	if err != nil {
		return 0, nil, err
	}
	x := make([]float64, n)
	for j := 0; j < n; j++ {
		x[j] = z[j] + p.Lo[j]
	}
	return obj + shift, x, nil
}

// solveDual builds the explicit dual of the shifted program:
//
//	maximize b'.y - u.w
//	s.t.     R^T y - w <= c,  w >= 0,  sign(y_i) per row sense
//
// and returns the recovered y, which prices the functional rows.
func (s *Solver) solveDual(p solver.Problem) (float64, []float64, error) {
	n := p.NumVars()
	m := p.NumRows()

	// Shifted right-hand sides and upper bounds.
	bp := make([]float64, m)
	for i := 0; i < m; i++ {
		bp[i] = p.RHS[i]
		for j := 0; j < n; j++ {
			bp[i] -= p.Rows[i][j] * p.Lo[j]
		}
	}
	bounded := make([]int, 0, n)
	for j := 0; j < n; j++ {
		if !math.IsInf(p.Hi[j], 1) {
			bounded = append(bounded, j)
		}
	}

	// Dual variable layout: one or two non-negative parts per y_i (two for
	// equality rows, which are free), then w per bounded primal variable,
	// then one slack per dual constraint.
	cols := 0
	type part struct {
		col  int
		sign float64
	}
	// column index and sign of each y_i part
	partList := make([][]part, m)
	for i, rel := range p.Rel {
		switch rel {
		case solver.GE:
			partList[i] = []part{{cols, 1}}
			cols++
		case solver.LE:
			partList[i] = []part{{cols, -1}}
			cols++
		case solver.EQ:
			partList[i] = []part{{cols, 1}, {cols + 1, -1}}
			cols += 2
		}
	}
	wStart := cols
	cols += len(bounded)
	slackStart := cols
	cols += n

	a := mat.NewDense(n, cols, nil)
	b := make([]float64, n)
	c := make([]float64, cols)

	for i := 0; i < m; i++ {
		for _, pt := range partList[i] {
			c[pt.col] = -bp[i] * pt.sign
		}
	}
	for k, j := range bounded {
		c[wStart+k] = p.Hi[j] - p.Lo[j]
	}

	wIndex := make(map[int]int, len(bounded))
	for k, j := range bounded {
		wIndex[j] = k
	}
	for j := 0; j < n; j++ {
		for i := 0; i < m; i++ {
			if p.Rows[i][j] == 0 {
				continue
			}
			for _, pt := range partList[i] {
				a.Set(j, pt.col, a.At(j, pt.col)+p.Rows[i][j]*pt.sign)
			}
		}
		if k, ok := wIndex[j]; ok {
			a.Set(j, wStart+k, -1)
		}
		a.Set(j, slackStart+j, 1)
		b[j] = p.Obj[j]
	}
	for j := 0; j < n; j++ {
		if b[j] < 0 {
			b[j] = -b[j]
			for k := 0; k < cols; k++ {
				a.Set(j, k, -a.At(j, k))
			}
		}
	}

	obj, sol, err := simplexSolve(c, a, b, s.tol())
	if err != nil {
		return 0, nil, err
	}

	duals := make([]float64, m)
	for i := 0; i < m; i++ {
		for _, pt := range partList[i] {
			duals[i] += pt.sign * sol[pt.col]
		}
	}
	// The dual maximizes b'.y - u.w; we minimized its negation, so the
	// matching primal objective needs the shift constant added back.
	var shift float64
	for j := 0; j < n; j++ {
		shift += p.Obj[j] * p.Lo[j]
	}
	return -obj + shift, duals, nil
}
