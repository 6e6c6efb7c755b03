// Package metrics defines the observability sinks the solver records
// into. Implementations live under infra/metrics.
package metrics

import "time"

// IterationRecord captures one column generation iteration.
type IterationRecord struct {
	RunID        string
	Node         int
	Iteration    int
	Objective    float64
	ColumnsAdded int
	PoolSize     int
	LPDuration   time.Duration
	Time         time.Time
}

// NodeRecord captures one processed branch-and-bound node.
type NodeRecord struct {
	RunID    string
	Node     int
	Depth    int
	Bound    float64
	Pruned   bool
	Integral bool
	Time     time.Time
}

// SolveRecord captures the outcome of a full run.
type SolveRecord struct {
	RunID         string
	Objective     float64
	Feasible      bool
	ProvenOptimal bool
	Iterations    int
	Nodes         int
	Columns       int
	Duration      time.Duration
	Time          time.Time
}

// Sink records solve outcomes for observability purposes.
type Sink interface {
	RecordSolve(rec SolveRecord) error
}

// IterationRecorder records per-iteration progress.
type IterationRecorder interface {
	RecordIteration(rec IterationRecord) error
}

// NodeRecorder records per-node progress.
type NodeRecorder interface {
	RecordNode(rec NodeRecord) error
}

// NopSink implements all recorder interfaces with no-op methods.
type NopSink struct{}

func (NopSink) RecordSolve(SolveRecord) error         { return nil }
func (NopSink) RecordIteration(IterationRecord) error { return nil }
func (NopSink) RecordNode(NodeRecord) error           { return nil }
