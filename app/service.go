// Package app wires configuration, solver components and observability
// into a runnable rostering service.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/healthflow/roster/app/plugins"
	"github.com/healthflow/roster/config"
	"github.com/healthflow/roster/core/branch"
	"github.com/healthflow/roster/core/colgen"
	"github.com/healthflow/roster/core/constraints"
	"github.com/healthflow/roster/core/events"
	"github.com/healthflow/roster/core/factory"
	coremetrics "github.com/healthflow/roster/core/metrics"
	"github.com/healthflow/roster/core/model"
	"github.com/healthflow/roster/core/pricing"
	"github.com/healthflow/roster/core/rotation"
	"github.com/healthflow/roster/infra/logger"
	"github.com/healthflow/roster/infra/metrics"
	"github.com/healthflow/roster/infra/simplex"
	"github.com/healthflow/roster/internal/eventbus"
)

// Service orchestrates one rostering solve: it owns the problem, the
// solver stack and the observability plumbing.
type Service struct {
	cfg     *config.Config
	problem *model.Problem
	engine  *constraints.Engine
	bus     eventbus.EventBus
	sink    coremetrics.Sink
	log     logger.Logger
	runID   string
}

// New creates a Service from the configuration. When the configuration
// does not describe a problem instance, the built-in sample is solved.
func New(cfg *config.Config) (*Service, error) {
	if lvl, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.Logging.Pretty {
		// infra/logger switches to console output when APP_ENV is dev.
		_ = os.Setenv("APP_ENV", "dev")
	}
	logg := logger.New("service")

	var problem *model.Problem
	if cfg.Problem.Defined() {
		p, err := cfg.Problem.Build()
		if err != nil {
			return nil, fmt.Errorf("build problem: %w", err)
		}
		problem = p
	} else {
		logg.Warnf("no problem configured, solving the built-in sample")
		problem = model.SampleProblem(time.Now().Truncate(24 * time.Hour))
	}

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.Influx.Enabled {
		in := cfg.Metrics.Influx
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(in.URL, in.Token, in.Org, in.Bucket))
	}
	var sink coremetrics.Sink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	fatigueCfg := cfg.Fatigue
	if fatigueCfg.Type == "" && fatigueCfg.Conf == nil {
		fatigueCfg = factory.ModuleConfig{
			Type: "linear",
			Conf: map[string]any{"hour_weight": cfg.Weights.FatigueHour},
		}
	}
	scorer, err := plugins.NewScorer(fatigueCfg)
	if err != nil {
		return nil, fmt.Errorf("fatigue scorer: %w", err)
	}
	engine := constraints.NewEngine(problem, cfg.Weights, scorer)

	return &Service{
		cfg:     cfg,
		problem: problem,
		engine:  engine,
		bus:     eventbus.New(),
		sink:    sink,
		log:     logg,
		runID:   uuid.NewString(),
	}, nil
}

// Problem exposes the instance being solved.
func (s *Service) Problem() *model.Problem { return s.problem }

// Bus exposes the progress event bus for subscribers such as the CLI.
func (s *Service) Bus() eventbus.EventBus { return s.bus }

// RunID identifies this solve in logs, events and metrics.
func (s *Service) RunID() string { return s.runID }

// Solve runs the full branch-and-price search and returns the result.
// The context carries cancellation; the configured time budget is applied
// on top of it.
func (s *Service) Solve(ctx context.Context) (model.Result, error) {
	start := time.Now()
	sc := s.cfg.Solver

	if budget := sc.TimeBudget(); budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}
	if s.cfg.Metrics.PrometheusEnabled {
		if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr()); err != nil {
			s.log.Errorf("prom server: %v", err)
		}
	}

	pool := colgen.NewPool()
	builder := rotation.NewBuilder(s.problem, s.engine, sc.SeedMaxLength)
	seeded := 0
	for _, n := range s.problem.Nurses {
		for _, r := range builder.Generate(n) {
			if _, ok := pool.Add(r); ok {
				seeded++
			}
		}
	}
	s.log.Infof("run %s: %d nurses, %d slots, %d seed columns",
		s.runID, len(s.problem.Nurses), len(s.problem.Shifts), seeded)

	oracle := pricing.NewOracle(s.problem, s.engine)
	lp := simplex.New()
	loop := colgen.NewLoop(s.problem, oracle, pool, lp, colgen.Config{
		Epsilon:       sc.Epsilon,
		BigM:          sc.BigM,
		MaxIterations: sc.MaxIterations,
		TopK:          sc.TopK,
		Workers:       sc.Workers,
	}).WithLogger(s.log).WithBus(s.bus, s.runID)
	if ir, ok := s.sink.(coremetrics.IterationRecorder); ok {
		loop = loop.WithSink(ir)
	}

	policy, err := plugins.NewPolicy(factory.ModuleConfig{Type: sc.Policy})
	if err != nil {
		return model.Result{}, fmt.Errorf("branching policy: %w", err)
	}
	driver := branch.NewDriver(loop, policy, branch.Config{
		MaxNodes: sc.MaxNodes,
		IntTol:   sc.IntTol,
	}).WithLogger(s.log).WithBus(s.bus, s.runID)
	if nr, ok := s.sink.(coremetrics.NodeRecorder); ok {
		driver = driver.WithSink(nr)
	}

	sol, err := driver.Solve(ctx, colgen.NewRestrictions())
	duration := time.Since(start)
	stats := model.SolveStats{
		Iterations:  sol.Iterations,
		Columns:     pool.Len(),
		Nodes:       sol.Nodes,
		Duration:    duration,
		TimeLimited: sol.TimeLimited,
	}
	s.recordSolve(sol, pool.Len(), duration)
	if err != nil {
		return model.Result{RunID: s.runID, Stats: stats}, err
	}

	sched := model.NewSchedule(sol.Rotations)
	res := model.NewResult(s.runID, s.problem, sched, sol.Objective, sol.Feasible, sol.ProvenOptimal, stats)

	if sol.Feasible {
		assessment := s.engine.EvaluateSchedule(s.problem, sched)
		s.log.Infof("run %s: objective %.2f, fairness %.2f%%, preference score %.2f, optimal=%v",
			s.runID, sol.Objective, assessment.Fairness, assessment.PreferenceScore, sol.ProvenOptimal)
	} else {
		s.log.Warnf("run %s: no feasible roster within budget", s.runID)
	}

	s.bus.Publish(events.DoneEvent{
		RunID:         s.runID,
		Objective:     sol.Objective,
		Feasible:      sol.Feasible,
		ProvenOptimal: sol.ProvenOptimal,
		Duration:      duration,
	})
	return res, nil
}

func (s *Service) recordSolve(sol branch.Solution, columns int, duration time.Duration) {
	if err := s.sink.RecordSolve(coremetrics.SolveRecord{
		RunID:         s.runID,
		Objective:     sol.Objective,
		Feasible:      sol.Feasible,
		ProvenOptimal: sol.ProvenOptimal,
		Iterations:    sol.Iterations,
		Nodes:         sol.Nodes,
		Columns:       columns,
		Duration:      duration,
		Time:          time.Now(),
	}); err != nil {
		s.log.Warnf("solve metrics dropped: %v", err)
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if b, ok := s.bus.(*eventbus.Bus); ok && b.Dropped() > 0 {
		s.log.Warnf("run %s: %d progress events dropped by slow subscribers", s.runID, b.Dropped())
	}
	s.bus.Close()
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	return nil
}
