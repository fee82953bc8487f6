package sqlite_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/rota-engine/calendar"
	"github.com/warp/rota-engine/rota"
	"github.com/warp/rota-engine/store/sqlite"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func date(t *testing.T, s string) calendar.Date {
	t.Helper()
	d, err := calendar.ParseDate(s)
	require.NoError(t, err)
	return d
}

func tod(t *testing.T, s string) calendar.TimeOfDay {
	t.Helper()
	v, err := calendar.ParseTimeOfDay(s)
	require.NoError(t, err)
	return v
}

func shift(t *testing.T, employee rota.EmployeeID, day, start, end string, rid rota.SeriesID, origin rota.Origin) rota.ShiftInstance {
	t.Helper()
	return rota.ShiftInstance{
		ID:           rota.InstanceID(uuid.NewString()),
		EmployeeID:   employee,
		Date:         date(t, day),
		Start:        tod(t, start),
		End:          tod(t, end),
		RecurrenceID: rid,
		Origin:       origin,
	}
}

func timeOff(t *testing.T, employee rota.EmployeeID, day, start, end string, rid rota.SeriesID) rota.TimeOffInstance {
	t.Helper()
	return rota.TimeOffInstance{
		ID:           rota.InstanceID(uuid.NewString()),
		EmployeeID:   employee,
		Date:         date(t, day),
		Start:        tod(t, start),
		End:          tod(t, end),
		RecurrenceID: rid,
	}
}

// =============================================================================
// PUT / GET RANGE
// =============================================================================

func TestStore_PutAndGetRange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rid := rota.SeriesID(uuid.NewString())
	err := store.PutShifts(ctx, []rota.ShiftInstance{
		shift(t, "emp-7", "2025-01-06", "10:00", "19:00", rid, rota.OriginTemplate),
		shift(t, "emp-7", "2025-01-13", "10:00", "19:00", rid, rota.OriginTemplate),
		shift(t, "emp-7", "2025-02-03", "10:00", "19:00", rid, rota.OriginTemplate),
	})
	require.NoError(t, err)

	err = store.PutTimeOffs(ctx, []rota.TimeOffInstance{
		timeOff(t, "emp-7", "2025-01-08", "09:00", "17:00", ""),
	})
	require.NoError(t, err)

	// WHEN: reading an inclusive window
	shifts, timeOffs, err := store.GetRange(ctx, "emp-7", date(t, "2025-01-06"), date(t, "2025-01-19"))
	require.NoError(t, err)

	// THEN: only in-window rows come back, boundaries included
	require.Len(t, shifts, 2)
	require.Len(t, timeOffs, 1)
	assert.Equal(t, rid, shifts[0].RecurrenceID)
	assert.Equal(t, rota.SeriesID(""), timeOffs[0].RecurrenceID, "NULL recurrence_id reads back as empty")
	assert.Equal(t, "09:00", timeOffs[0].Start.String())

	// AND: other employees see nothing
	shifts, timeOffs, err = store.GetRange(ctx, "emp-8", date(t, "2025-01-06"), date(t, "2025-01-19"))
	require.NoError(t, err)
	assert.Empty(t, shifts)
	assert.Empty(t, timeOffs)
}

func TestStore_PutShifts_Empty(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.PutShifts(context.Background(), nil))
}

// =============================================================================
// TEMPLATE WINDOW REPLACE
// =============================================================================

func TestStore_ReplaceTemplateWindow(t *testing.T) {
	// GIVEN: an old template series plus a manual shift inside the window
	store := newTestStore(t)
	ctx := context.Background()

	oldRID := rota.SeriesID(uuid.NewString())
	manual := shift(t, "emp-7", "2025-01-07", "12:00", "16:00", "", rota.OriginManual)
	require.NoError(t, store.PutShifts(ctx, []rota.ShiftInstance{
		shift(t, "emp-7", "2025-01-06", "10:00", "19:00", oldRID, rota.OriginTemplate),
		shift(t, "emp-7", "2025-01-13", "10:00", "19:00", oldRID, rota.OriginTemplate),
		manual,
	}))

	// WHEN: the window is replaced with a new materialization
	newRID := rota.SeriesID(uuid.NewString())
	replacement := []rota.ShiftInstance{
		shift(t, "emp-7", "2025-01-08", "08:00", "14:00", newRID, rota.OriginTemplate),
	}
	err := store.ReplaceTemplateWindow(ctx, "emp-7", date(t, "2025-01-06"), date(t, "2025-01-19"), replacement)
	require.NoError(t, err)

	// THEN: the old template rows are gone, manual survives
	shifts, _, err := store.GetRange(ctx, "emp-7", date(t, "2025-01-06"), date(t, "2025-01-19"))
	require.NoError(t, err)
	require.Len(t, shifts, 2)
	ids := map[rota.InstanceID]bool{}
	for _, s := range shifts {
		ids[s.ID] = true
		assert.NotEqual(t, oldRID, s.RecurrenceID)
	}
	assert.True(t, ids[manual.ID], "manual shift must survive the replace")
	assert.True(t, ids[replacement[0].ID])
}

func TestStore_ReplaceTemplateWindow_ScopedToWindow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rid := rota.SeriesID(uuid.NewString())
	outside := shift(t, "emp-7", "2025-02-03", "10:00", "19:00", rid, rota.OriginTemplate)
	require.NoError(t, store.PutShifts(ctx, []rota.ShiftInstance{outside}))

	err := store.ReplaceTemplateWindow(ctx, "emp-7", date(t, "2025-01-06"), date(t, "2025-01-19"), nil)
	require.NoError(t, err)

	shifts, _, err := store.GetRange(ctx, "emp-7", date(t, "2025-02-03"), date(t, "2025-02-03"))
	require.NoError(t, err)
	assert.Len(t, shifts, 1, "rows outside the window stay put")
}

// =============================================================================
// UPDATE SHIFT
// =============================================================================

func TestStore_UpdateShift(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rid := rota.SeriesID(uuid.NewString())
	original := shift(t, "emp-7", "2025-01-06", "10:00", "19:00", rid, rota.OriginTemplate)
	sibling := shift(t, "emp-7", "2025-01-13", "10:00", "19:00", rid, rota.OriginTemplate)
	require.NoError(t, store.PutShifts(ctx, []rota.ShiftInstance{original, sibling}))

	newStart := tod(t, "12:00")
	note := "late start"
	updated, err := store.UpdateShift(ctx, original.ID, rota.ShiftUpdate{Start: &newStart, Note: &note})
	require.NoError(t, err)
	assert.Equal(t, "12:00", updated.Start.String())
	assert.Equal(t, "19:00", updated.End.String(), "unset field untouched")
	assert.Equal(t, "late start", updated.Note)
	assert.Equal(t, rid, updated.RecurrenceID)

	// Persisted, and the sibling untouched.
	shifts, _, err := store.GetRange(ctx, "emp-7", date(t, "2025-01-06"), date(t, "2025-01-19"))
	require.NoError(t, err)
	require.Len(t, shifts, 2)
	for _, s := range shifts {
		if s.ID == sibling.ID {
			assert.Equal(t, "10:00", s.Start.String())
		} else {
			assert.Equal(t, "12:00", s.Start.String())
		}
	}
}

func TestStore_UpdateShift_MergedInversionRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inst := shift(t, "emp-7", "2025-01-06", "10:00", "18:00", "", rota.OriginManual)
	require.NoError(t, store.PutShifts(ctx, []rota.ShiftInstance{inst}))

	// Only End supplied, earlier than the stored Start.
	early := tod(t, "09:00")
	_, err := store.UpdateShift(ctx, inst.ID, rota.ShiftUpdate{End: &early})
	require.Error(t, err)
	assert.True(t, rota.IsValidation(err))

	shifts, _, err := store.GetRange(ctx, "emp-7", inst.Date, inst.Date)
	require.NoError(t, err)
	require.Len(t, shifts, 1)
	assert.Equal(t, "10:00", shifts[0].Start.String())
	assert.Equal(t, "18:00", shifts[0].End.String())
}

func TestStore_UpdateShift_UnknownID(t *testing.T) {
	store := newTestStore(t)
	_, err := store.UpdateShift(context.Background(), "no-such-id", rota.ShiftUpdate{})
	require.Error(t, err)
	assert.True(t, rota.IsNotFound(err))
}

// =============================================================================
// DELETES
// =============================================================================

func TestStore_DeleteShift(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inst := shift(t, "emp-7", "2025-01-06", "10:00", "19:00", "", rota.OriginManual)
	require.NoError(t, store.PutShifts(ctx, []rota.ShiftInstance{inst}))

	require.NoError(t, store.DeleteShift(ctx, inst.ID))

	err := store.DeleteShift(ctx, inst.ID)
	require.Error(t, err)
	assert.True(t, rota.IsNotFound(err))
}

func TestStore_DeleteTimeOff(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inst := timeOff(t, "emp-7", "2025-01-08", "09:00", "17:00", "")
	require.NoError(t, store.PutTimeOffs(ctx, []rota.TimeOffInstance{inst}))
	require.NoError(t, store.DeleteTimeOff(ctx, inst.ID))

	err := store.DeleteTimeOff(ctx, inst.ID)
	assert.True(t, rota.IsNotFound(err))
}

func TestStore_DeleteSeries(t *testing.T) {
	// GIVEN: three time-off instances sharing one recurrence id
	store := newTestStore(t)
	ctx := context.Background()

	rid := rota.SeriesID(uuid.NewString())
	require.NoError(t, store.PutTimeOffs(ctx, []rota.TimeOffInstance{
		timeOff(t, "emp-7", "2025-01-08", "09:00", "17:00", rid),
		timeOff(t, "emp-7", "2025-01-15", "09:00", "17:00", rid),
		timeOff(t, "emp-7", "2025-01-22", "09:00", "17:00", rid),
	}))

	// WHEN: the series is deleted
	count, err := store.DeleteSeries(ctx, rid)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, timeOffs, err := store.GetRange(ctx, "emp-7", date(t, "2025-01-01"), date(t, "2025-12-31"))
	require.NoError(t, err)
	assert.Empty(t, timeOffs)

	// THEN: a second delete reports not-found
	_, err = store.DeleteSeries(ctx, rid)
	require.Error(t, err)
	assert.True(t, rota.IsNotFound(err))
}

func TestStore_DeleteSeries_SpansBothTables(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rid := rota.SeriesID(uuid.NewString())
	require.NoError(t, store.PutShifts(ctx, []rota.ShiftInstance{
		shift(t, "emp-7", "2025-01-06", "10:00", "19:00", rid, rota.OriginTemplate),
	}))
	require.NoError(t, store.PutTimeOffs(ctx, []rota.TimeOffInstance{
		timeOff(t, "emp-7", "2025-01-08", "09:00", "17:00", rid),
	}))

	count, err := store.DeleteSeries(ctx, rid)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

// =============================================================================
// CONCURRENCY
// =============================================================================

func TestStore_ConcurrentWritesAndReads(t *testing.T) {
	// Writers replacing a window while readers scan it must never observe
	// a half-replaced mix of two materializations.
	store := newTestStore(t)
	ctx := context.Background()
	from, to := date(t, "2025-01-06"), date(t, "2025-01-19")

	seedRID := rota.SeriesID(uuid.NewString())
	seed := []rota.ShiftInstance{
		shift(t, "emp-7", "2025-01-06", "10:00", "19:00", seedRID, rota.OriginTemplate),
		shift(t, "emp-7", "2025-01-13", "10:00", "19:00", seedRID, rota.OriginTemplate),
	}
	require.NoError(t, store.PutShifts(ctx, seed))

	var wg sync.WaitGroup
	errs := make(chan error, 32)

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				rid := rota.SeriesID(uuid.NewString())
				repl := []rota.ShiftInstance{
					shift(t, "emp-7", "2025-01-06", "10:00", "19:00", rid, rota.OriginTemplate),
					shift(t, "emp-7", "2025-01-13", "10:00", "19:00", rid, rota.OriginTemplate),
				}
				if err := store.ReplaceTemplateWindow(ctx, "emp-7", from, to, repl); err != nil {
					errs <- fmt.Errorf("writer %d: %w", w, err)
					return
				}
			}
		}(w)
	}

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				shifts, _, err := store.GetRange(ctx, "emp-7", from, to)
				if err != nil {
					errs <- fmt.Errorf("reader %d: %w", r, err)
					return
				}
				if len(shifts) != 2 {
					errs <- fmt.Errorf("reader %d: saw %d shifts, want 2", r, len(shifts))
					return
				}
				if shifts[0].RecurrenceID != shifts[1].RecurrenceID {
					errs <- fmt.Errorf("reader %d: mixed series in one window", r)
					return
				}
			}
		}(r)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
