// Package colgen runs the column generation loop: solve the restricted
// master relaxation, extract duals, price new rotations for every nurse,
// and repeat until no improving column exists or a budget runs out.
package colgen

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/healthflow/roster/core/events"
	"github.com/healthflow/roster/core/logger"
	"github.com/healthflow/roster/core/metrics"
	"github.com/healthflow/roster/core/model"
	"github.com/healthflow/roster/core/pricing"
	"github.com/healthflow/roster/core/solver"
	"github.com/healthflow/roster/internal/eventbus"
)

// ErrInfeasibleProblem reports that no roster can satisfy the demand and
// the hard constraints.
var ErrInfeasibleProblem = errors.New("colgen: no feasible roster exists")

// Config tunes the column generation loop.
type Config struct {
	// Epsilon is the reduced-cost tolerance below which a column is not
	// considered improving.
	Epsilon float64
	// BigM prices the artificial undercoverage variables.
	BigM float64
	// MaxIterations bounds the loop per node.
	MaxIterations int
	// TopK is the number of candidates each nurse may contribute per round.
	TopK int
	// Workers sizes the pricing worker pool. Zero means GOMAXPROCS.
	Workers int
}

// SetDefaults fills unset fields with working values.
func (c *Config) SetDefaults() {
	if c.Epsilon <= 0 {
		c.Epsilon = 1e-6
	}
	if c.BigM <= 0 {
		c.BigM = 1e4
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = 200
	}
	if c.TopK <= 0 {
		c.TopK = 5
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
}

// Outcome is the result of running the loop at one node.
type Outcome struct {
	// Objective is the LP bound of the node after the last solve.
	Objective float64
	// Values maps pool indexes to nonzero primal LP values.
	Values map[int]float64
	// Duals is the dual snapshot of the last solve.
	Duals pricing.Duals
	// Iterations is the number of master solves performed.
	Iterations int
	// ColumnsAdded counts new pool entries contributed by this run.
	ColumnsAdded int
	// Converged is true when pricing found no improving column. When
	// false, the loop stopped on a budget and the bound is not proven.
	Converged bool
	// ArtificialUse totals the undercoverage variables of the last solve.
	// A positive value after convergence marks the node infeasible.
	ArtificialUse float64
}

// Infeasible reports whether the converged relaxation still needs
// artificial coverage, meaning no admissible roster satisfies the demand.
func (o Outcome) Infeasible() bool {
	return o.Converged && o.ArtificialUse > 1e-6
}

// Loop drives column generation for one problem. It is safe to run
// sequentially at many nodes; the pool accumulates columns across runs.
type Loop struct {
	problem *model.Problem
	oracle  *pricing.Oracle
	pool    *Pool
	lp      solver.Solver
	cfg     Config
	log     logger.Logger
	sink    metrics.IterationRecorder
	bus     eventbus.EventBus
	runID   string
	nurses  []model.Nurse
}

// NewLoop wires a loop over the shared pool.
func NewLoop(p *model.Problem, oracle *pricing.Oracle, pool *Pool, lp solver.Solver, cfg Config) *Loop {
	cfg.SetDefaults()
	nurses := make([]model.Nurse, len(p.Nurses))
	copy(nurses, p.Nurses)
	sort.Slice(nurses, func(i, j int) bool { return nurses[i].ID < nurses[j].ID })
	return &Loop{
		problem: p,
		oracle:  oracle,
		pool:    pool,
		lp:      lp,
		cfg:     cfg,
		log:     logger.Nop{},
		sink:    metrics.NopSink{},
		nurses:  nurses,
	}
}

// WithLogger replaces the no-op logger.
func (l *Loop) WithLogger(log logger.Logger) *Loop {
	l.log = log
	return l
}

// WithSink replaces the no-op iteration recorder.
func (l *Loop) WithSink(s metrics.IterationRecorder) *Loop {
	l.sink = s
	return l
}

// WithBus attaches an event bus for progress events.
func (l *Loop) WithBus(bus eventbus.EventBus, runID string) *Loop {
	l.bus = bus
	l.runID = runID
	return l
}

// Pool exposes the shared column pool.
func (l *Loop) Pool() *Pool { return l.pool }

// Run generates columns at one node until convergence or a budget stop.
// The context deadline is checked between iterations only; a budget stop
// returns the last bound with Converged false and no error.
func (l *Loop) Run(ctx context.Context, node int, res Restrictions) (Outcome, error) {
	var out Outcome
	for iter := 1; ; iter++ {
		if ctx.Err() != nil {
			return out, nil
		}

		m, err := buildMaster(l.problem, l.pool, res, l.cfg.BigM)
		if err != nil {
			return out, err
		}
		lpStart := time.Now()
		sol, err := l.solveLP(m.lp)
		if err != nil {
			return out, err
		}
		lpDur := time.Since(lpStart)

		out.Objective = sol.Objective
		out.Values = m.values(sol)
		out.Duals = m.duals(sol)
		out.Iterations = iter
		out.ArtificialUse = m.artificialUse(sol)

		added := l.priceAll(out.Duals, res)
		out.ColumnsAdded += added

		l.log.Debugw("colgen iteration", map[string]any{
			"node":      node,
			"iteration": iter,
			"objective": sol.Objective,
			"added":     added,
			"pool":      l.pool.Len(),
		})
		if err := l.sink.RecordIteration(metrics.IterationRecord{
			RunID:        l.runID,
			Node:         node,
			Iteration:    iter,
			Objective:    sol.Objective,
			ColumnsAdded: added,
			PoolSize:     l.pool.Len(),
			LPDuration:   lpDur,
			Time:         time.Now(),
		}); err != nil {
			l.log.Warnf("iteration metrics dropped: %v", err)
		}
		if l.bus != nil {
			l.bus.Publish(events.IterationEvent{
				RunID:     l.runID,
				Node:      node,
				Iteration: iter,
				Objective: sol.Objective,
				Columns:   l.pool.Len(),
				Added:     added,
			})
		}

		if added == 0 {
			out.Converged = true
			return out, nil
		}
		if iter >= l.cfg.MaxIterations {
			l.log.Warnf("node %d stopped after %d iterations without convergence", node, iter)
			return out, nil
		}
	}
}

// priceAll invokes the oracle for every nurse on the worker pool and
// merges the candidates in nurse-id order, so the pool content does not
// depend on goroutine scheduling.
func (l *Loop) priceAll(duals pricing.Duals, res Restrictions) int {
	results := make([][]pricing.Candidate, len(l.nurses))
	workers := l.cfg.Workers
	if workers > len(l.nurses) {
		workers = len(l.nurses)
	}
	idx := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				n := l.nurses[i]
				results[i] = l.oracle.Price(n, duals, res.ForbiddenRotations,
					res.forbiddenFor(n.ID), l.cfg.TopK, l.cfg.Epsilon)
			}
		}()
	}
	for i := range l.nurses {
		idx <- i
	}
	close(idx)
	wg.Wait()

	added := 0
	for i := range results {
		for _, cand := range results[i] {
			pi, ok := l.pool.Add(cand.Rotation)
			if !ok {
				l.log.Debugf("duplicate column %s priced at %.4f, skipped",
					cand.Rotation, cand.ReducedCost)
				continue
			}
			l.pool.SetReducedCost(pi, cand.ReducedCost)
			added++
		}
	}
	return added
}

// solveLP runs the backend once and, on a non-optimal outcome, retries
// once with slightly perturbed variable bounds before giving up.
func (l *Loop) solveLP(p solver.Problem) (solver.Solution, error) {
	sol, err := l.lp.Solve(p)
	if err == nil && sol.Status == solver.StatusOptimal {
		return sol, nil
	}
	if err != nil {
		l.log.Warnf("master solve failed, retrying with perturbed bounds: %v", err)
	} else {
		l.log.Warnf("master solve returned %s, retrying with perturbed bounds", sol.Status)
	}
	sol, err = l.lp.Solve(perturb(p))
	if err == nil && sol.Status == solver.StatusOptimal {
		return sol, nil
	}
	if err != nil {
		return solver.Solution{}, fmt.Errorf("%w: %v", solver.ErrSolverFailure, err)
	}
	return solver.Solution{}, fmt.Errorf("%w: master status %s after retry", solver.ErrSolverFailure, sol.Status)
}

// perturb widens finite upper bounds by a deterministic epsilon to shake
// the backend off a degenerate basis.
func perturb(p solver.Problem) solver.Problem {
	q := p
	q.Hi = make([]float64, len(p.Hi))
	copy(q.Hi, p.Hi)
	for j := range q.Hi {
		if !math.IsInf(q.Hi[j], 1) {
			q.Hi[j] += 1e-7 * float64(j+1)
		}
	}
	return q
}
