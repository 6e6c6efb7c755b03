package colgen

import "github.com/healthflow/roster/core/model"

// Pool is the append-only column store shared by the master relaxation
// and the pricing oracle. Entries are addressed by index and looked up by
// fingerprint; they are never removed within a solve, and duplicates are
// rejected rather than inserted twice.
type Pool struct {
	columns []model.Rotation
	index   map[uint64]int
	reduced []float64
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{index: make(map[uint64]int)}
}

// Add appends the rotation unless its fingerprint is already present.
// It returns the column index and whether the rotation was inserted.
func (p *Pool) Add(r model.Rotation) (int, bool) {
	if i, ok := p.index[r.Fingerprint]; ok {
		return i, false
	}
	i := len(p.columns)
	p.columns = append(p.columns, r)
	p.reduced = append(p.reduced, 0)
	p.index[r.Fingerprint] = i
	return i, true
}

// Len returns the number of stored columns.
func (p *Pool) Len() int { return len(p.columns) }

// At returns the column at index i.
func (p *Pool) At(i int) model.Rotation { return p.columns[i] }

// Lookup returns the index of a fingerprint, if present.
func (p *Pool) Lookup(fp uint64) (int, bool) {
	i, ok := p.index[fp]
	return i, ok
}

// SetReducedCost stores the latest reduced cost of column i.
func (p *Pool) SetReducedCost(i int, rc float64) { p.reduced[i] = rc }

// ReducedCost returns the latest reduced cost of column i.
func (p *Pool) ReducedCost(i int) float64 { return p.reduced[i] }
