package plugins

import (
	"github.com/healthflow/roster/core/branch"
	"github.com/healthflow/roster/core/factory"
	"github.com/healthflow/roster/core/fatigue"
)

func init() {
	mustRegisterScorer("none", func(_ map[string]any) (fatigue.Scorer, error) {
		return nil, nil
	})
	mustRegisterScorer("linear", func(conf map[string]any) (fatigue.Scorer, error) {
		var c struct {
			HourWeight float64 `json:"hour_weight"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.HourWeight == 0 {
			c.HourWeight = 10
		}
		return fatigue.Linear{HourWeight: c.HourWeight}, nil
	})

	mustRegisterPolicy("most_fractional", func(_ map[string]any) (branch.Policy, error) {
		return branch.MostFractional{}, nil
	})
	mustRegisterPolicy("prefer_nurse_day", func(_ map[string]any) (branch.Policy, error) {
		return branch.PreferNurseDay{}, nil
	})
}

func mustRegisterScorer(name string, f factory.Factory[fatigue.Scorer]) {
	if err := RegisterScorer(name, f); err != nil {
		panic(err)
	}
}

func mustRegisterPolicy(name string, f factory.Factory[branch.Policy]) {
	if err := RegisterPolicy(name, f); err != nil {
		panic(err)
	}
}
