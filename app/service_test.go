package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/healthflow/roster/config"
	"github.com/healthflow/roster/core/events"
	"github.com/healthflow/roster/core/model"
)

func testConfig() *config.Config {
	cfg := &config.Config{
		Problem: config.ProblemConfig{
			Horizon:    3,
			Start:      "2026-03-02",
			ShiftTypes: []string{"morning"},
			Demand:     map[string]int{"morning": 1},
			Nurses: []config.NurseConfig{
				{ID: "n1"},
				{ID: "n2"},
			},
		},
	}
	cfg.Solver.SetDefaults()
	cfg.Weights.SetDefaults()
	cfg.Logging.SetDefaults()
	cfg.Metrics.SetDefaults()
	return cfg
}

func TestServiceSolvesConfiguredProblem(t *testing.T) {
	svc, err := New(testConfig())
	require.NoError(t, err)
	defer svc.Close()

	require.NotEmpty(t, svc.RunID())
	require.Len(t, svc.Problem().Nurses, 2)

	res, err := svc.Solve(context.Background())
	require.NoError(t, err)
	require.True(t, res.Feasible)
	require.True(t, res.ProvenOptimal)
	require.InDelta(t, 0, res.Objective, 1e-6)
	require.Equal(t, svc.RunID(), res.RunID)
	require.Greater(t, res.Stats.Nodes, 0)
	require.Greater(t, res.Stats.Columns, 0)

	// Every slot ends up covered.
	for _, e := range res.Coverage {
		require.Zero(t, e.Shortage, "slot %s", e.Shift)
	}
}

func TestServiceFallsBackToSample(t *testing.T) {
	cfg := testConfig()
	cfg.Problem = config.ProblemConfig{}

	svc, err := New(cfg)
	require.NoError(t, err)
	defer svc.Close()
	require.Len(t, svc.Problem().Nurses, 5)
}

func TestServicePublishesDoneEvent(t *testing.T) {
	svc, err := New(testConfig())
	require.NoError(t, err)
	defer svc.Close()

	sub := svc.Bus().Subscribe()
	_, err = svc.Solve(context.Background())
	require.NoError(t, err)

	// All events are buffered by the time Solve returns.
	var done *events.DoneEvent
drain:
	for {
		select {
		case e := <-sub:
			if d, ok := e.(events.DoneEvent); ok {
				done = &d
				break drain
			}
		default:
			break drain
		}
	}
	require.NotNil(t, done)
	require.Equal(t, svc.RunID(), done.RunID)
	require.True(t, done.Feasible)
}

func TestServiceRejectsUnknownPolicy(t *testing.T) {
	cfg := testConfig()
	cfg.Solver.Policy = "does_not_exist"

	svc, err := New(cfg)
	require.NoError(t, err)
	defer svc.Close()

	_, err = svc.Solve(context.Background())
	require.Error(t, err)
}

func TestServiceRejectsBrokenProblem(t *testing.T) {
	cfg := testConfig()
	cfg.Problem.Nurses[0].Skill = "wizard"

	_, err := New(cfg)
	require.Error(t, err)
}

func TestServiceResultStructure(t *testing.T) {
	svc, err := New(testConfig())
	require.NoError(t, err)
	defer svc.Close()

	res, err := svc.Solve(context.Background())
	require.NoError(t, err)

	total := 0
	for nurse, rots := range res.Rotations {
		for _, r := range rots {
			require.Equal(t, nurse, r.NurseID)
			total += len(r.Days)
		}
	}
	assigned := 0
	for _, e := range res.Coverage {
		assigned += e.Assigned
	}
	require.Equal(t, total, assigned)
	var zero model.SolveStats
	require.NotEqual(t, zero, res.Stats)
}
