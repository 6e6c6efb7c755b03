package colgen

import (
	"fmt"
	"math"
	"sort"

	"github.com/healthflow/roster/core/model"
	"github.com/healthflow/roster/core/pricing"
	"github.com/healthflow/roster/core/solver"
)

var inf = math.Inf(1)

type nurseDay struct {
	nurse string
	day   int
}

// master is one build of the restricted master relaxation: the LP plus the
// row and column mapping needed to read primal values and duals back out.
//
// Row layout: coverage rows (one per shift slot, sense >=), then per
// nurse-day assignment rows (sense <=, only where a column occupies the
// day), then one required-work row per branching decision (sense >=).
// Column layout: admitted pool columns first, then one undercoverage
// variable per shift slot, then one slack per required-work row. The
// artificial variables carry a big-M cost so the LP stays feasible while
// their use signals uncoverable demand.
type master struct {
	lp         solver.Problem
	cols       []int // LP variable j -> pool index
	coverKeys  []model.ShiftKey
	occupyRows []nurseDay
	workRows   []nurseDay
	artStart   int // first artificial variable
}

// buildMaster assembles the restricted master for the pool under the node
// restrictions. It fails when a forced rotation is absent from the pool.
func buildMaster(p *model.Problem, pool *Pool, res Restrictions, bigM float64) (*master, error) {
	m := &master{}

	for i := 0; i < pool.Len(); i++ {
		if res.Admits(pool.At(i)) {
			m.cols = append(m.cols, i)
		}
	}
	for fp := range res.ForcedRotations {
		i, ok := pool.Lookup(fp)
		if !ok {
			return nil, fmt.Errorf("master: forced rotation %x not in pool", fp)
		}
		if !res.Admits(pool.At(i)) {
			return nil, fmt.Errorf("master: forced rotation %x is also forbidden", fp)
		}
	}

	for _, s := range p.Shifts {
		m.coverKeys = append(m.coverKeys, s.Key)
	}

	// Assignment rows exist only for nurse-days some admitted column
	// occupies. A rotation occupies its worked days plus the rest day
	// after the block, so two blocks of one nurse cannot touch.
	occupied := make(map[nurseDay]bool)
	for _, pi := range m.cols {
		rot := pool.At(pi)
		for _, a := range rot.Days {
			occupied[nurseDay{rot.NurseID, a.Day}] = true
		}
		if rest := rot.LastDay() + 1; rest < p.Horizon {
			occupied[nurseDay{rot.NurseID, rest}] = true
		}
	}
	for nd := range occupied {
		m.occupyRows = append(m.occupyRows, nd)
	}
	sort.Slice(m.occupyRows, func(i, j int) bool {
		if m.occupyRows[i].nurse != m.occupyRows[j].nurse {
			return m.occupyRows[i].nurse < m.occupyRows[j].nurse
		}
		return m.occupyRows[i].day < m.occupyRows[j].day
	})

	for nurse, days := range res.RequiredDays {
		for d := range days {
			m.workRows = append(m.workRows, nurseDay{nurse, d})
		}
	}
	sort.Slice(m.workRows, func(i, j int) bool {
		if m.workRows[i].nurse != m.workRows[j].nurse {
			return m.workRows[i].nurse < m.workRows[j].nurse
		}
		return m.workRows[i].day < m.workRows[j].day
	})

	m.artStart = len(m.cols)
	nVars := len(m.cols) + len(m.coverKeys) + len(m.workRows)
	nRows := len(m.coverKeys) + len(m.occupyRows) + len(m.workRows)

	lp := solver.Problem{
		Obj:  make([]float64, nVars),
		Rows: make([][]float64, 0, nRows),
		Rel:  make([]solver.Relation, 0, nRows),
		RHS:  make([]float64, 0, nRows),
		Lo:   make([]float64, nVars),
		Hi:   make([]float64, nVars),
	}
	for j, pi := range m.cols {
		lp.Obj[j] = pool.At(pi).Cost
		lp.Hi[j] = inf
		if res.ForcedRotations[pool.At(pi).Fingerprint] {
			lp.Lo[j] = 1
		}
	}
	for k := m.artStart; k < nVars; k++ {
		lp.Obj[k] = bigM
	}

	for ci, key := range m.coverKeys {
		row := make([]float64, nVars)
		for j, pi := range m.cols {
			if pool.At(pi).Covers(key) {
				row[j] = 1
			}
		}
		art := m.artStart + ci
		row[art] = 1
		demand := 0.0
		if s, ok := p.ShiftAt(key); ok {
			demand = float64(s.Demand)
		}
		lp.Hi[art] = demand
		lp.Rows = append(lp.Rows, row)
		lp.Rel = append(lp.Rel, solver.GE)
		lp.RHS = append(lp.RHS, demand)
	}

	for _, nd := range m.occupyRows {
		row := make([]float64, nVars)
		for j, pi := range m.cols {
			rot := pool.At(pi)
			if rot.NurseID != nd.nurse {
				continue
			}
			if rot.WorksDay(nd.day) || rot.LastDay()+1 == nd.day {
				row[j] = 1
			}
		}
		lp.Rows = append(lp.Rows, row)
		lp.Rel = append(lp.Rel, solver.LE)
		lp.RHS = append(lp.RHS, 1)
	}

	for wi, nd := range m.workRows {
		row := make([]float64, nVars)
		for j, pi := range m.cols {
			rot := pool.At(pi)
			if rot.NurseID == nd.nurse && rot.WorksDay(nd.day) {
				row[j] = 1
			}
		}
		art := m.artStart + len(m.coverKeys) + wi
		row[art] = 1
		lp.Hi[art] = 1
		lp.Rows = append(lp.Rows, row)
		lp.Rel = append(lp.Rel, solver.GE)
		lp.RHS = append(lp.RHS, 1)
	}

	m.lp = lp
	return m, nil
}

// duals reads the dual prices out of a solved master.
func (m *master) duals(sol solver.Solution) pricing.Duals {
	d := pricing.Duals{
		Cover:  make(map[model.ShiftKey]float64, len(m.coverKeys)),
		Occupy: make(map[string][]float64),
		Work:   make(map[string][]float64),
	}
	horizon := 0
	for _, nd := range m.occupyRows {
		if nd.day+1 > horizon {
			horizon = nd.day + 1
		}
	}
	for _, nd := range m.workRows {
		if nd.day+1 > horizon {
			horizon = nd.day + 1
		}
	}
	for i, key := range m.coverKeys {
		d.Cover[key] = sol.Duals[i]
	}
	off := len(m.coverKeys)
	for i, nd := range m.occupyRows {
		v := d.Occupy[nd.nurse]
		if v == nil {
			v = make([]float64, horizon)
			d.Occupy[nd.nurse] = v
		}
		v[nd.day] = sol.Duals[off+i]
	}
	off += len(m.occupyRows)
	for i, nd := range m.workRows {
		v := d.Work[nd.nurse]
		if v == nil {
			v = make([]float64, horizon)
			d.Work[nd.nurse] = v
		}
		v[nd.day] = sol.Duals[off+i]
	}
	return d
}

// values maps pool indexes to their primal LP values, omitting zeros.
func (m *master) values(sol solver.Solution) map[int]float64 {
	vals := make(map[int]float64)
	for j, pi := range m.cols {
		if v := sol.Primal[j]; v > 1e-9 {
			vals[pi] = v
		}
	}
	return vals
}

// artificialUse totals the undercoverage and slack variables. A strictly
// positive value at convergence means the demand cannot be met under the
// current restrictions.
func (m *master) artificialUse(sol solver.Solution) float64 {
	var sum float64
	for k := m.artStart; k < len(sol.Primal); k++ {
		sum += sol.Primal[k]
	}
	return sum
}
