package demand

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/healthflow/roster/core/model"
)

func TestStaticRequired(t *testing.T) {
	src := Static{
		PerType: map[model.ShiftType]int{
			model.ShiftMorning: 3,
			model.ShiftNight:   1,
		},
		Overrides: map[string]map[model.ShiftType]int{
			"2026-03-04": {model.ShiftMorning: 5},
		},
	}

	plain := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	require.Equal(t, 3, src.Required(plain, model.ShiftMorning))
	require.Equal(t, 1, src.Required(plain, model.ShiftNight))
	require.Equal(t, 0, src.Required(plain, model.ShiftAfternoon))

	overridden := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	require.Equal(t, 5, src.Required(overridden, model.ShiftMorning))
	// Overrides are per shift type, other slots keep the base demand.
	require.Equal(t, 1, src.Required(overridden, model.ShiftNight))
}

func TestConstant(t *testing.T) {
	src := Constant(2)
	require.Equal(t, 2, src.Required(time.Now(), model.ShiftMorning))
	require.Equal(t, 2, src.Required(time.Now(), model.ShiftNight))
}
