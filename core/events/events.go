// Package events defines the solve progress events published on the
// internal event bus. Subscribers (CLI progress output, metrics bridges)
// consume them without coupling to the solver internals.
package events

import "time"

// IterationEvent is emitted after each column generation iteration.
type IterationEvent struct {
	RunID     string
	Node      int
	Iteration int
	Objective float64
	Columns   int
	Added     int
}

// IncumbentEvent is emitted when the branch-and-bound search improves its
// best integer solution.
type IncumbentEvent struct {
	RunID     string
	Node      int
	Objective float64
	Time      time.Time
}

// NodeEvent is emitted after a branch node has been processed.
type NodeEvent struct {
	RunID    string
	Node     int
	Depth    int
	Bound    float64
	Pruned   bool
	Integral bool
}

// DoneEvent is emitted once per run.
type DoneEvent struct {
	RunID         string
	Objective     float64
	Feasible      bool
	ProvenOptimal bool
	Duration      time.Duration
}
