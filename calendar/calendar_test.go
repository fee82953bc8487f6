package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/rota-engine/calendar"
)

// =============================================================================
// DATE
// =============================================================================

func TestParseDate_RoundTrip(t *testing.T) {
	d, err := calendar.ParseDate("2025-01-06")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-06", d.String())
	assert.Equal(t, time.Monday, d.Weekday())
}

func TestParseDate_Invalid(t *testing.T) {
	_, err := calendar.ParseDate("06/01/2025")
	assert.Error(t, err)

	_, err = calendar.ParseDate("")
	assert.Error(t, err)
}

func TestDate_AddDaysAndCompare(t *testing.T) {
	d := calendar.NewDate(2025, time.January, 30)
	next := d.AddDays(5)

	assert.Equal(t, "2025-02-04", next.String(), "crosses month boundary")
	assert.True(t, d.Before(next))
	assert.True(t, next.After(d))
	assert.Equal(t, 5, calendar.DaysBetween(d, next))
	assert.Equal(t, -5, calendar.DaysBetween(next, d))
}

// =============================================================================
// TIME OF DAY
// =============================================================================

func TestTimeOfDay_ParseFormat(t *testing.T) {
	tod, err := calendar.ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9, tod.Hour())
	assert.Equal(t, 30, tod.Minute())
	assert.Equal(t, "09:30", tod.String())

	_, err = calendar.ParseTimeOfDay("9:30pm")
	assert.Error(t, err)
}

func TestTimeOfDay_SubAndOn(t *testing.T) {
	start := calendar.NewTimeOfDay(10, 0)
	end := calendar.NewTimeOfDay(19, 0)

	assert.Equal(t, 540, end.Sub(start))
	assert.True(t, start.Before(end))

	d := calendar.NewDate(2025, time.January, 6)
	at := start.On(d)
	assert.Equal(t, time.Date(2025, time.January, 6, 10, 0, 0, 0, time.UTC), at)
}

// =============================================================================
// WEEK BUCKETING
// =============================================================================

func TestWeekBucket_MondayStart(t *testing.T) {
	// GIVEN: a Wednesday
	wed := calendar.NewDate(2025, time.January, 8)

	// THEN: its Monday-start bucket is the preceding Monday
	assert.Equal(t, "2025-01-06", calendar.WeekBucket(wed, time.Monday).String())

	// AND: Monday buckets to itself, Sunday to the Monday six days back
	mon := calendar.NewDate(2025, time.January, 6)
	sun := calendar.NewDate(2025, time.January, 12)
	assert.Equal(t, mon, calendar.WeekBucket(mon, time.Monday))
	assert.Equal(t, mon, calendar.WeekBucket(sun, time.Monday))
}

func TestWeekBucket_SundayStart(t *testing.T) {
	wed := calendar.NewDate(2025, time.January, 8)
	assert.Equal(t, "2025-01-05", calendar.WeekBucket(wed, time.Sunday).String())
}

func TestWeeksBetween(t *testing.T) {
	anchor := calendar.NewDate(2025, time.January, 6) // Monday
	assert.Equal(t, 0, calendar.WeeksBetween(anchor, anchor.AddDays(6), time.Monday))
	assert.Equal(t, 1, calendar.WeeksBetween(anchor, anchor.AddDays(7), time.Monday))
	assert.Equal(t, 2, calendar.WeeksBetween(anchor, anchor.AddDays(14), time.Monday))
	assert.Equal(t, -1, calendar.WeeksBetween(anchor, anchor.AddDays(-1), time.Monday))
}

// =============================================================================
// CADENCE
// =============================================================================

func TestMatchesCadence_EveryWeek(t *testing.T) {
	anchor := calendar.NewDate(2025, time.January, 6)
	for i := 0; i < 12; i++ {
		d := anchor.AddDays(7 * i)
		assert.True(t, calendar.MatchesCadence(d, anchor, 1, time.Monday), "week %d", i)
	}
}

func TestMatchesCadence_WiderCadences(t *testing.T) {
	// GIVEN: an anchor Monday and cadences 2, 3, 4
	// THEN: over 12 weeks, exactly the weeks at multiples of the cadence match
	anchor := calendar.NewDate(2025, time.January, 6)

	for _, cadence := range []int{2, 3, 4} {
		for week := 0; week < 12; week++ {
			d := anchor.AddDays(7 * week)
			want := week%cadence == 0
			assert.Equal(t, want, calendar.MatchesCadence(d, anchor, cadence, time.Monday),
				"cadence %d, week %d", cadence, week)
		}
	}
}

func TestMatchesCadence_MidWeekAnchor(t *testing.T) {
	// Cadence is a property of the week, not the day: any date in a matching
	// week matches, regardless of the anchor's weekday.
	anchor := calendar.NewDate(2025, time.January, 8) // Wednesday
	sameWeekFri := calendar.NewDate(2025, time.January, 10)
	nextWeekMon := calendar.NewDate(2025, time.January, 13)

	assert.True(t, calendar.MatchesCadence(sameWeekFri, anchor, 2, time.Monday))
	assert.False(t, calendar.MatchesCadence(nextWeekMon, anchor, 2, time.Monday))
}

func TestMatchesCadence_InvalidCadence(t *testing.T) {
	anchor := calendar.NewDate(2025, time.January, 6)
	assert.False(t, calendar.MatchesCadence(anchor, anchor, 0, time.Monday))
	assert.False(t, calendar.MatchesCadence(anchor, anchor, -2, time.Monday))
}

// =============================================================================
// WEEKDAY ENUMERATION
// =============================================================================

func TestWeekdaysBetween(t *testing.T) {
	// GIVEN: a two-week window starting Monday 2025-01-06
	start := calendar.NewDate(2025, time.January, 6)
	end := calendar.NewDate(2025, time.January, 19)

	mondays := calendar.WeekdaysBetween(start, end, time.Monday)
	require.Len(t, mondays, 2)
	assert.Equal(t, "2025-01-06", mondays[0].String())
	assert.Equal(t, "2025-01-13", mondays[1].String())

	sundays := calendar.WeekdaysBetween(start, end, time.Sunday)
	require.Len(t, sundays, 2)
	assert.Equal(t, "2025-01-12", sundays[0].String())
	assert.Equal(t, "2025-01-19", sundays[1].String())
}

func TestWeekdaysBetween_EmptyAndSingle(t *testing.T) {
	start := calendar.NewDate(2025, time.January, 6) // Monday
	assert.Nil(t, calendar.WeekdaysBetween(start.AddDays(1), start, time.Monday), "inverted range")

	same := calendar.WeekdaysBetween(start, start, time.Monday)
	require.Len(t, same, 1)
	assert.Equal(t, start, same[0])

	assert.Nil(t, calendar.WeekdaysBetween(start, start, time.Tuesday), "weekday not in range")
}

func TestWeekdaysBetween_Restartable(t *testing.T) {
	// Pure function: same input, same output, no retained iterator state.
	start := calendar.NewDate(2025, time.March, 1)
	end := calendar.NewDate(2025, time.April, 30)

	first := calendar.WeekdaysBetween(start, end, time.Friday)
	second := calendar.WeekdaysBetween(start, end, time.Friday)
	assert.Equal(t, first, second)
}

func TestWeekDates(t *testing.T) {
	mon := calendar.NewDate(2025, time.January, 6)
	days := calendar.WeekDates(mon)
	require.Len(t, days, 7)
	assert.Equal(t, "2025-01-06", days[0].String())
	assert.Equal(t, "2025-01-12", days[6].String())
}
