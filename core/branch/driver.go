// Package branch implements the branch-and-bound search around the column
// generation loop. Nodes are explored best-bound first; branching happens
// on fractional columns or fractional nurse-day workloads, chosen by a
// pluggable policy.
package branch

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/healthflow/roster/core/colgen"
	"github.com/healthflow/roster/core/events"
	"github.com/healthflow/roster/core/logger"
	"github.com/healthflow/roster/core/metrics"
	"github.com/healthflow/roster/core/model"
	"github.com/healthflow/roster/internal/eventbus"
)

// artTol is the artificial-usage threshold above which a converged node
// counts as infeasible.
const artTol = 1e-6

// Config tunes the branch-and-bound search.
type Config struct {
	// MaxNodes bounds the number of processed nodes, zero means unbounded.
	MaxNodes int
	// IntTol is the integrality tolerance on LP values.
	IntTol float64
}

// SetDefaults fills unset fields with working values.
func (c *Config) SetDefaults() {
	if c.IntTol <= 0 {
		c.IntTol = 1e-6
	}
}

// Solution is the outcome of a search.
type Solution struct {
	Rotations     []model.Rotation
	Objective     float64
	Bound         float64 // best proven lower bound at termination
	Feasible      bool
	ProvenOptimal bool
	Nodes         int
	Iterations    int
	TimeLimited   bool
}

// Driver runs the search. Incumbent updates go through a mutex so event
// subscribers and future parallel expansions observe a consistent best.
type Driver struct {
	loop   *colgen.Loop
	policy Policy
	cfg    Config
	log    logger.Logger
	sink   metrics.NodeRecorder
	bus    eventbus.EventBus
	runID  string

	mu           sync.Mutex
	incRotations []model.Rotation
	incObjective float64
	hasIncumbent bool
}

// NewDriver wires a driver around a column generation loop.
func NewDriver(loop *colgen.Loop, policy Policy, cfg Config) *Driver {
	cfg.SetDefaults()
	if policy == nil {
		policy = MostFractional{}
	}
	return &Driver{
		loop:   loop,
		policy: policy,
		cfg:    cfg,
		log:    logger.Nop{},
		sink:   metrics.NopSink{},
	}
}

// WithLogger replaces the no-op logger.
func (d *Driver) WithLogger(log logger.Logger) *Driver {
	d.log = log
	return d
}

// WithSink replaces the no-op node recorder.
func (d *Driver) WithSink(s metrics.NodeRecorder) *Driver {
	d.sink = s
	return d
}

// WithBus attaches an event bus for progress events.
func (d *Driver) WithBus(bus eventbus.EventBus, runID string) *Driver {
	d.bus = bus
	d.runID = runID
	return d
}

// Solve explores the search tree rooted at the given restrictions until
// it is exhausted, the node budget runs out or the context is cancelled.
// Cancellation is cooperative and observed at node boundaries.
//
// It returns ErrInfeasibleProblem when the exhausted tree holds no
// feasible roster. A budget stop without an incumbent is not an error;
// the solution is simply not Feasible.
func (d *Driver) Solve(ctx context.Context, base colgen.Restrictions) (Solution, error) {
	var (
		ar            arena
		sol           Solution
		proofComplete = true
	)
	fr := newFrontier(&ar)
	fr.push(ar.add(-1, 0, math.Inf(-1), base))

	for fr.Len() > 0 {
		if ctx.Err() != nil {
			sol.TimeLimited = true
			proofComplete = false
			break
		}
		if d.cfg.MaxNodes > 0 && sol.Nodes >= d.cfg.MaxNodes {
			d.log.Warnf("node budget %d exhausted", d.cfg.MaxNodes)
			sol.TimeLimited = true
			proofComplete = false
			break
		}

		n := ar.at(fr.pop())
		if d.pruneByBound(n.bound) {
			d.recordNode(n, true, false)
			continue
		}

		out, err := d.loop.Run(ctx, n.id, n.res)
		if err != nil {
			return sol, fmt.Errorf("node %d: %w", n.id, err)
		}
		sol.Nodes++
		sol.Iterations += out.Iterations
		if ctx.Err() != nil {
			sol.TimeLimited = true
			proofComplete = false
			d.recordNode(n, false, false)
			// The subtree is unexplored, its bound must stay visible to
			// the terminal bound scan.
			fr.push(n.id)
			break
		}

		proven := n.bound
		if out.Converged && out.Objective > proven {
			proven = out.Objective
		}
		n.bound = proven

		if out.Infeasible() {
			d.recordNode(n, true, false)
			continue
		}
		if out.Converged && d.pruneByBound(proven) {
			d.recordNode(n, true, false)
			continue
		}

		pool := d.loop.Pool()
		cands := d.candidates(pool, out.Values)
		if len(cands) == 0 {
			integral := d.closeIntegralNode(n, out, pool)
			if !integral || !out.Converged {
				// Unconverged leaf: cheaper columns for this subtree may
				// exist outside the pool, so the proof is incomplete.
				proofComplete = proofComplete && out.Converged
			}
			continue
		}

		c := d.choose(cands)
		left, right := n.res.Clone(), n.res.Clone()
		switch c.Kind {
		case KindRotation:
			left.ForbidRotation(c.Rotation.Fingerprint)
			right.ForceRotation(c.Rotation.Fingerprint)
		case KindNurseDay:
			left.ForbidDay(c.Nurse, c.Day)
			right.RequireDay(c.Nurse, c.Day)
		}
		fr.push(ar.add(n.id, n.depth+1, proven, left))
		fr.push(ar.add(n.id, n.depth+1, proven, right))
		d.recordNode(n, false, false)
	}

	sol.Bound = d.terminalBound(&ar, fr)
	d.mu.Lock()
	if d.hasIncumbent {
		sol.Rotations = d.incRotations
		sol.Objective = d.incObjective
		sol.Feasible = true
		sol.ProvenOptimal = proofComplete && fr.Len() == 0
	}
	d.mu.Unlock()
	if !sol.Feasible && proofComplete && fr.Len() == 0 {
		return sol, colgen.ErrInfeasibleProblem
	}
	return sol, nil
}

// pruneByBound reports whether a subtree with the given lower bound
// cannot beat the incumbent.
func (d *Driver) pruneByBound(bound float64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hasIncumbent && bound >= d.incObjective-1e-9
}

// candidates lists the fractional entities of an LP solution: fractional
// columns first, then nurse-days with fractional total workload. The
// order is deterministic, so policy ties resolve the same way every run.
func (d *Driver) candidates(pool *colgen.Pool, values map[int]float64) []Candidate {
	idx := make([]int, 0, len(values))
	for pi := range values {
		idx = append(idx, pi)
	}
	sort.Ints(idx)

	var cands []Candidate
	work := make(map[nurseDayKey]float64)
	for _, pi := range idx {
		rot := pool.At(pi)
		v := values[pi]
		if fractional(v, d.cfg.IntTol) {
			cands = append(cands, Candidate{Kind: KindRotation, Rotation: rot, Nurse: rot.NurseID, Value: v})
		}
		for _, a := range rot.Days {
			work[nurseDayKey{rot.NurseID, a.Day}] += v
		}
	}

	keys := make([]nurseDayKey, 0, len(work))
	for k, w := range work {
		if fractional(w, d.cfg.IntTol) {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].nurse != keys[j].nurse {
			return keys[i].nurse < keys[j].nurse
		}
		return keys[i].day < keys[j].day
	})
	for _, k := range keys {
		cands = append(cands, Candidate{Kind: KindNurseDay, Nurse: k.nurse, Day: k.day, Value: work[k]})
	}
	return cands
}

type nurseDayKey struct {
	nurse string
	day   int
}

func fractional(v, tol float64) bool {
	return math.Abs(v-math.Round(v)) > tol
}

// closeIntegralNode handles a node whose LP solution is integral. It
// updates the incumbent when the solution needs no artificial coverage
// and reports whether the node yielded a roster.
func (d *Driver) closeIntegralNode(n *node, out colgen.Outcome, pool *colgen.Pool) bool {
	if out.ArtificialUse > artTol {
		d.recordNode(n, true, false)
		return false
	}
	idx := make([]int, 0, len(out.Values))
	for pi, v := range out.Values {
		if math.Round(v) >= 1 {
			idx = append(idx, pi)
		}
	}
	sort.Ints(idx)
	rotations := make([]model.Rotation, 0, len(idx))
	objective := 0.0
	for _, pi := range idx {
		rot := pool.At(pi)
		rotations = append(rotations, rot)
		objective += rot.Cost
	}

	d.mu.Lock()
	improved := !d.hasIncumbent || objective < d.incObjective-1e-9
	if improved {
		d.incRotations = rotations
		d.incObjective = objective
		d.hasIncumbent = true
	}
	d.mu.Unlock()

	if improved {
		d.log.Infof("incumbent improved to %.4f at node %d", objective, n.id)
		if d.bus != nil {
			d.bus.Publish(events.IncumbentEvent{
				RunID:     d.runID,
				Node:      n.id,
				Objective: objective,
				Time:      time.Now(),
			})
		}
	}
	d.recordNode(n, false, true)
	return true
}

// choose asks the policy for a branching candidate and falls back to the
// default on a panic or an out-of-range answer.
func (d *Driver) choose(cands []Candidate) Candidate {
	i := d.safeSelect(cands)
	if i < 0 || i >= len(cands) {
		d.log.Warnf("policy %s returned invalid index %d, falling back to %s",
			d.policy.Name(), i, MostFractional{}.Name())
		i = MostFractional{}.Select(cands)
	}
	return cands[i]
}

func (d *Driver) safeSelect(cands []Candidate) (i int) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Errorf("policy %s panicked: %v", d.policy.Name(), r)
			i = -1
		}
	}()
	return d.policy.Select(cands)
}

// terminalBound is the tightest global lower bound provable at exit: the
// weakest bound left on the frontier, or the incumbent objective when the
// tree is exhausted.
func (d *Driver) terminalBound(ar *arena, fr *frontier) float64 {
	if fr.Len() == 0 {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.hasIncumbent {
			return d.incObjective
		}
		return math.Inf(1)
	}
	bound := math.Inf(1)
	for _, id := range fr.ids {
		if b := ar.at(id).bound; b < bound {
			bound = b
		}
	}
	return bound
}

func (d *Driver) recordNode(n *node, pruned, integral bool) {
	if err := d.sink.RecordNode(metrics.NodeRecord{
		RunID:    d.runID,
		Node:     n.id,
		Depth:    n.depth,
		Bound:    n.bound,
		Pruned:   pruned,
		Integral: integral,
		Time:     time.Now(),
	}); err != nil {
		d.log.Warnf("node metrics dropped: %v", err)
	}
	if d.bus != nil {
		d.bus.Publish(events.NodeEvent{
			RunID:    d.runID,
			Node:     n.id,
			Depth:    n.depth,
			Bound:    n.bound,
			Pruned:   pruned,
			Integral: integral,
		})
	}
}
