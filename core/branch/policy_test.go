package branch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/healthflow/roster/core/model"
)

func TestFractionality(t *testing.T) {
	require.InDelta(t, 0.5, Candidate{Value: 0.5}.Fractionality(), 1e-12)
	require.InDelta(t, 0.25, Candidate{Value: 0.75}.Fractionality(), 1e-12)
	require.InDelta(t, 0.1, Candidate{Value: 2.1}.Fractionality(), 1e-12)
	require.InDelta(t, 0, Candidate{Value: 3}.Fractionality(), 1e-12)
}

func TestMostFractionalPicksClosestToHalf(t *testing.T) {
	cands := []Candidate{
		{Kind: KindRotation, Value: 0.9},
		{Kind: KindNurseDay, Value: 0.45},
		{Kind: KindRotation, Value: 0.2},
	}
	require.Equal(t, 1, MostFractional{}.Select(cands))
}

func TestMostFractionalTieKeepsFirst(t *testing.T) {
	cands := []Candidate{
		{Kind: KindRotation, Value: 0.5},
		{Kind: KindNurseDay, Value: 0.5},
	}
	require.Equal(t, 0, MostFractional{}.Select(cands))
}

func TestPreferNurseDaySkipsRotations(t *testing.T) {
	cands := []Candidate{
		{Kind: KindRotation, Value: 0.5},
		{Kind: KindNurseDay, Value: 0.8},
		{Kind: KindNurseDay, Value: 0.6},
	}
	require.Equal(t, 2, PreferNurseDay{}.Select(cands))
}

func TestPreferNurseDayFallsBackToRotations(t *testing.T) {
	cands := []Candidate{
		{Kind: KindRotation, Rotation: model.Rotation{NurseID: "n1"}, Value: 0.3},
		{Kind: KindRotation, Rotation: model.Rotation{NurseID: "n2"}, Value: 0.5},
	}
	require.Equal(t, 1, PreferNurseDay{}.Select(cands))
}
