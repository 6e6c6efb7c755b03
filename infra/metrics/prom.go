package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/healthflow/roster/core/metrics"
)

// PromSink exposes solver progress as Prometheus metrics. It implements
// the solve, iteration and node recorder interfaces.
type PromSink struct {
	iterations *prometheus.CounterVec
	objective  prometheus.Gauge
	poolSize   prometheus.Gauge
	lpDuration prometheus.Histogram
	nodes      *prometheus.CounterVec
	solves     *prometheus.CounterVec
	duration   prometheus.Histogram
}

// NewPromSink registers solver metrics on the default Prometheus
// registerer. The Prometheus server should be started separately.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	iterations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_colgen_iterations_total",
		Help: "Total number of column generation iterations",
	}, []string{"run_id"})
	objective := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "roster_lp_objective",
		Help: "Objective of the last restricted master solve",
	})
	poolSize := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "roster_column_pool_size",
		Help: "Number of rotations in the column pool",
	})
	lpDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "roster_lp_solve_seconds",
		Help:    "Duration of one restricted master solve",
		Buckets: prometheus.DefBuckets,
	})
	nodes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_branch_nodes_total",
		Help: "Total number of processed branch-and-bound nodes",
	}, []string{"pruned", "integral"})
	solves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_solves_total",
		Help: "Total number of finished solver runs",
	}, []string{"feasible", "optimal"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "roster_solve_seconds",
		Help:    "Wall-clock duration of a full solver run",
		Buckets: []float64{.1, .5, 1, 5, 15, 60, 300, 900},
	})

	s := &PromSink{
		iterations: iterations,
		objective:  objective,
		poolSize:   poolSize,
		lpDuration: lpDuration,
		nodes:      nodes,
		solves:     solves,
		duration:   duration,
	}
	collectors := []prometheus.Collector{iterations, objective, poolSize, lpDuration, nodes, solves, duration}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, err
			}
			switch i {
			case 0:
				s.iterations = are.ExistingCollector.(*prometheus.CounterVec)
			case 1:
				s.objective = are.ExistingCollector.(prometheus.Gauge)
			case 2:
				s.poolSize = are.ExistingCollector.(prometheus.Gauge)
			case 3:
				s.lpDuration = are.ExistingCollector.(prometheus.Histogram)
			case 4:
				s.nodes = are.ExistingCollector.(*prometheus.CounterVec)
			case 5:
				s.solves = are.ExistingCollector.(*prometheus.CounterVec)
			case 6:
				s.duration = are.ExistingCollector.(prometheus.Histogram)
			}
		}
	}
	return s, nil
}

// RecordIteration updates the per-iteration metrics.
func (s *PromSink) RecordIteration(rec coremetrics.IterationRecord) error {
	s.iterations.WithLabelValues(rec.RunID).Inc()
	s.objective.Set(rec.Objective)
	s.poolSize.Set(float64(rec.PoolSize))
	s.lpDuration.Observe(rec.LPDuration.Seconds())
	return nil
}

// RecordNode counts a processed branch node.
func (s *PromSink) RecordNode(rec coremetrics.NodeRecord) error {
	s.nodes.WithLabelValues(strconv.FormatBool(rec.Pruned), strconv.FormatBool(rec.Integral)).Inc()
	return nil
}

// RecordSolve counts a finished run and observes its duration.
func (s *PromSink) RecordSolve(rec coremetrics.SolveRecord) error {
	s.solves.WithLabelValues(strconv.FormatBool(rec.Feasible), strconv.FormatBool(rec.ProvenOptimal)).Inc()
	s.duration.Observe(rec.Duration.Seconds())
	return nil
}
