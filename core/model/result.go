package model

import "time"

// SolveStats summarizes the work performed by one optimization run.
type SolveStats struct {
	Iterations  int           `json:"iterations"`   // column generation iterations, all nodes included
	Columns     int           `json:"columns"`      // columns in the pool at the end of the run
	Nodes       int           `json:"nodes"`        // branch-and-bound nodes processed
	Duration    time.Duration `json:"duration"`     // wall clock time of the run
	TimeLimited bool          `json:"time_limited"` // true when the run stopped on a budget, not on proof
}

// CoverageEntry reports staffing for one shift slot.
type CoverageEntry struct {
	Shift    string  `json:"shift"`
	Day      int     `json:"day"`
	Type     string  `json:"type"`
	Demand   int     `json:"demand"`
	Assigned int     `json:"assigned"`
	Date     string  `json:"date"`
	Shortage int     `json:"shortage"`
	Penalty  float64 `json:"penalty"`
}

// Result is the structured outcome handed to external reporting layers.
type Result struct {
	RunID         string                `json:"run_id"`
	Schedule      Schedule              `json:"-"`
	Rotations     map[string][]Rotation `json:"rotations"` // per nurse, ordered by start day
	Coverage      []CoverageEntry       `json:"coverage"`
	Objective     float64               `json:"objective"`
	Feasible      bool                  `json:"feasible"`
	ProvenOptimal bool                  `json:"proven_optimal"`
	Stats         SolveStats            `json:"stats"`
}

// NewResult derives the exportable views from a schedule.
func NewResult(runID string, p *Problem, sched Schedule, objective float64, feasible, proven bool, stats SolveStats) Result {
	res := Result{
		RunID:         runID,
		Schedule:      sched,
		Rotations:     sched.ByNurse(),
		Objective:     objective,
		Feasible:      feasible,
		ProvenOptimal: proven,
		Stats:         stats,
	}
	for _, s := range p.Shifts {
		assigned := sched.Coverage[s.Key]
		shortage := s.Demand - assigned
		if shortage < 0 {
			shortage = 0
		}
		res.Coverage = append(res.Coverage, CoverageEntry{
			Shift:    s.ID(),
			Day:      s.Key.Day,
			Type:     s.Key.Type.String(),
			Date:     s.Date.Format("2006-01-02"),
			Demand:   s.Demand,
			Assigned: assigned,
			Shortage: shortage,
			Penalty:  float64(shortage) * s.Complexity,
		})
	}
	return res
}
