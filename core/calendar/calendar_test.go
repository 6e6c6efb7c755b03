package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStaticFlags(t *testing.T) {
	cal := NewStatic()
	cal.RestDates["2026-03-20"] = true
	cal.ReducedDates["2026-03-05"] = true

	friday := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	require.True(t, cal.Flags(friday).RestDay)

	extraRest := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	require.True(t, cal.Flags(extraRest).RestDay)

	reduced := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	require.True(t, cal.Flags(reduced).ReducedHours)
	require.False(t, cal.Flags(reduced).RestDay)

	plain := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	require.Zero(t, cal.Flags(plain))
}

func TestResolve(t *testing.T) {
	cal := NewStatic()
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // a Monday

	flags := Resolve(cal, start, 7)
	require.Len(t, flags, 7)
	for day, f := range flags {
		require.Equal(t, day == 4, f.RestDay, "day %d", day)
	}
}

func TestResolveNilCalendar(t *testing.T) {
	flags := Resolve(nil, time.Now(), 3)
	require.Len(t, flags, 3)
	for _, f := range flags {
		require.Zero(t, f)
	}
}
