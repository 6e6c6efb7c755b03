package constraints

// Severity distinguishes hard violations from soft penalties.
type Severity int

const (
	Hard Severity = iota
	Soft
)

// String returns a human-readable representation of the severity.
func (s Severity) String() string {
	if s == Hard {
		return "hard"
	}
	return "soft"
}

// Violation describes one constraint breach. Evaluation is deterministic:
// identical inputs always produce the same ordered violation list.
type Violation struct {
	Constraint string
	Severity   Severity
	Detail     string
	Penalty    float64
}

// Weights holds the soft penalty weights of the engine. Zero values are
// replaced by the defaults below, which mirror common Egyptian hospital
// practice.
type Weights struct {
	AvoidedShift     float64 `json:"avoided_shift"`
	UnpreferredShift float64 `json:"unpreferred_shift"`
	ExcessNight      float64 `json:"excess_night"`
	Overtime         float64 `json:"overtime"`
	Understaffing    float64 `json:"understaffing"`
	Fairness         float64 `json:"fairness"`
	RestDayWorked    float64 `json:"rest_day_worked"`
	ReducedDayShift  float64 `json:"reduced_day_shift"`
	FatigueHour      float64 `json:"fatigue_hour"`
}

// DefaultWeights returns the standard weight set.
func DefaultWeights() Weights {
	return Weights{
		AvoidedShift:     30,
		UnpreferredShift: 10,
		ExcessNight:      40,
		Overtime:         50,
		Understaffing:    100,
		Fairness:         25,
		RestDayWorked:    20,
		ReducedDayShift:  15,
		FatigueHour:      10,
	}
}

// SetDefaults fills zero weights with their defaults.
func (w *Weights) SetDefaults() {
	d := DefaultWeights()
	if w.AvoidedShift == 0 {
		w.AvoidedShift = d.AvoidedShift
	}
	if w.UnpreferredShift == 0 {
		w.UnpreferredShift = d.UnpreferredShift
	}
	if w.ExcessNight == 0 {
		w.ExcessNight = d.ExcessNight
	}
	if w.Overtime == 0 {
		w.Overtime = d.Overtime
	}
	if w.Understaffing == 0 {
		w.Understaffing = d.Understaffing
	}
	if w.Fairness == 0 {
		w.Fairness = d.Fairness
	}
	if w.RestDayWorked == 0 {
		w.RestDayWorked = d.RestDayWorked
	}
	if w.ReducedDayShift == 0 {
		w.ReducedDayShift = d.ReducedDayShift
	}
	if w.FatigueHour == 0 {
		w.FatigueHour = d.FatigueHour
	}
}
