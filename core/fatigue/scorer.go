// Package fatigue defines the optional fatigue and preference scoring
// collaborator. An absent scorer is treated as a zero adjustment.
package fatigue

import "github.com/healthflow/roster/core/model"

// Scorer returns an additional penalty for assigning a rotation to a
// nurse. Implementations typically wrap an externally trained predictor.
type Scorer interface {
	Score(nurse model.Nurse, rotation model.Rotation) float64
}

// Linear scales the rotation hours by the nurse's fatigue score. This is
// the built-in heuristic used when no external predictor is wired in but a
// fatigue signal is present on the nurses.
type Linear struct {
	// HourWeight is the penalty per worked hour at full fatigue.
	HourWeight float64
}

// Score implements Scorer.
func (l Linear) Score(n model.Nurse, r model.Rotation) float64 {
	return r.Hours * n.FatigueScore * l.HourWeight
}

// Score applies the scorer, treating nil as zero adjustment.
func Score(s Scorer, n model.Nurse, r model.Rotation) float64 {
	if s == nil {
		return 0
	}
	return s.Score(n, r)
}
