package config

import (
	"fmt"
	"time"
)

// SolverConfig tunes column generation and branch-and-bound.
type SolverConfig struct {
	// Epsilon is the reduced-cost tolerance of the pricing oracle.
	Epsilon float64 `json:"epsilon"`
	// BigM prices the artificial undercoverage variables of the master.
	BigM float64 `json:"big_m"`
	// MaxIterations bounds column generation per node.
	MaxIterations int `json:"max_iterations"`
	// TopK is the number of columns each nurse may contribute per round.
	TopK int `json:"top_k"`
	// Workers sizes the pricing worker pool, zero means all CPUs.
	Workers int `json:"workers"`
	// MaxNodes bounds the branch-and-bound tree, zero means unbounded.
	MaxNodes int `json:"max_nodes"`
	// IntTol is the integrality tolerance on LP values.
	IntTol float64 `json:"int_tol"`
	// TimeBudgetSeconds caps the wall-clock time of one run, zero means
	// unlimited.
	TimeBudgetSeconds int `json:"time_budget_seconds"`
	// Policy selects the branching policy: "most_fractional" or
	// "prefer_nurse_day".
	Policy string `json:"policy"`
	// SeedMaxLength caps the length of the enumerated seed rotations.
	SeedMaxLength int `json:"seed_max_length"`
}

// SetDefaults applies sane defaults.
func (c *SolverConfig) SetDefaults() {
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
	if c.IntTol <= 0 {
		c.IntTol = 1e-6
	}
	if c.Policy == "" {
		c.Policy = "most_fractional"
	}
	if c.SeedMaxLength <= 0 {
		c.SeedMaxLength = 3
	}
}

// Validate checks mandatory fields.
func (c SolverConfig) Validate() error {
	if c.Epsilon >= 1 {
		return fmt.Errorf("epsilon must be below 1")
	}
	if c.BigM < 1000 {
		return fmt.Errorf("big_m must be at least 1000 to dominate the penalty weights")
	}
	if c.TimeBudgetSeconds < 0 {
		return fmt.Errorf("time_budget_seconds must not be negative")
	}
	return nil
}

// TimeBudget returns the wall-clock budget, zero when unlimited.
func (c SolverConfig) TimeBudget() time.Duration {
	return time.Duration(c.TimeBudgetSeconds) * time.Second
}
