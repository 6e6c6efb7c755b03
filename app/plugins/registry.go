// Package plugins holds the registries for pluggable solver
// collaborators: fatigue scorers and branching policies. Built-in
// implementations register themselves in init; external builds may
// register additional types before the service is constructed.
package plugins

import (
	"github.com/healthflow/roster/core/branch"
	"github.com/healthflow/roster/core/factory"
	"github.com/healthflow/roster/core/fatigue"
)

var (
	scorers  = factory.NewRegistry[fatigue.Scorer]()
	policies = factory.NewRegistry[branch.Policy]()
)

// RegisterScorer adds a fatigue scorer factory.
func RegisterScorer(name string, f factory.Factory[fatigue.Scorer]) error {
	return scorers.Register(name, f)
}

// RegisterPolicy adds a branching policy factory.
func RegisterPolicy(name string, f factory.Factory[branch.Policy]) error {
	return policies.Register(name, f)
}

// NewScorer instantiates the configured fatigue scorer.
func NewScorer(cfg factory.ModuleConfig) (fatigue.Scorer, error) {
	if cfg.Type == "" {
		cfg.Type = "linear"
	}
	return scorers.Create(cfg)
}

// NewPolicy instantiates the configured branching policy.
func NewPolicy(cfg factory.ModuleConfig) (branch.Policy, error) {
	if cfg.Type == "" {
		cfg.Type = "most_fractional"
	}
	return policies.Create(cfg)
}

// ScorerTypes lists the registered fatigue scorer type names.
func ScorerTypes() []string { return scorers.Types() }

// PolicyTypes lists the registered branching policy type names.
func PolicyTypes() []string { return policies.Types() }
