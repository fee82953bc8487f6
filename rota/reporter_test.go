package rota_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/rota-engine/rota"
)

func TestGroupByDate_EveryDayKeyed(t *testing.T) {
	// GIVEN: an empty week
	// THEN: all seven dates still get an entry, so the grid renders
	//       seven columns unconditionally

	from := date("2025-01-06")
	to := from.AddDays(6)

	grouped := rota.GroupByDate(from, to, nil, nil)
	require.Len(t, grouped, 7)
	for d := from; !d.After(to); d = d.AddDays(1) {
		g, ok := grouped[d]
		require.True(t, ok, "missing entry for %s", d)
		assert.Empty(t, g.Shifts)
		assert.Empty(t, g.TimeOffs)
	}
}

func TestGroupByDate_SurfacesOverlap(t *testing.T) {
	// A date with both a shift and a time-off exposes both lists; nothing is
	// dropped, merged, or resolved.

	from := date("2025-01-06")
	to := from.AddDays(6)
	wed := date("2025-01-08")

	shifts := []rota.ShiftInstance{
		{ID: "s1", EmployeeID: "emp-1", Date: wed, Start: tod("09:00"), End: tod("17:00"), Origin: rota.OriginTemplate},
	}
	timeOffs := []rota.TimeOffInstance{
		{ID: "t1", EmployeeID: "emp-1", Date: wed, Start: tod("12:00"), End: tod("14:00")},
	}

	grouped := rota.GroupByDate(from, to, shifts, timeOffs)
	g := grouped[wed]
	require.NotNil(t, g)
	assert.Len(t, g.Shifts, 1)
	assert.Len(t, g.TimeOffs, 1)
	assert.True(t, g.HasConflict())

	assert.False(t, grouped[from].HasConflict())
}

func TestGroupByDate_SortsWithinDay(t *testing.T) {
	from := date("2025-01-06")
	shifts := []rota.ShiftInstance{
		{ID: "late", Date: from, Start: tod("14:00"), End: tod("22:00")},
		{ID: "early", Date: from, Start: tod("06:00"), End: tod("14:00")},
	}

	grouped := rota.GroupByDate(from, from, shifts, nil)
	g := grouped[from]
	require.Len(t, g.Shifts, 2)
	assert.Equal(t, rota.InstanceID("early"), g.Shifts[0].ID)
	assert.Equal(t, rota.InstanceID("late"), g.Shifts[1].ID)
}

func TestGroupByDate_KeepsOutOfWindowInstances(t *testing.T) {
	// An instance dated outside the window still gets its own entry rather
	// than being silently dropped.
	from := date("2025-01-06")
	stray := date("2025-02-01")

	grouped := rota.GroupByDate(from, from, []rota.ShiftInstance{
		{ID: "s1", Date: stray, Start: tod("09:00"), End: tod("10:00")},
	}, nil)

	require.Len(t, grouped, 2)
	assert.Len(t, grouped[stray].Shifts, 1)
}
