/*
materializer.go - Expands templates and repeating requests into instances

PURPOSE:
  The store never expands anything; it only keeps what it is given. This
  file is the single place where a weekly ShiftTemplate or a repeating
  TimeOffRequest becomes a concrete, fully-dated list of instances, all
  tagged with one fresh recurrence id.

RECURRENCE RULES:
  Weekly expansion is delegated to RFC 5545 RRULEs (FREQ=WEEKLY with
  INTERVAL for the "every N weeks" cadence). The rule is anchored at the
  template's start date with WKST set to the configured week start, so a
  date survives exactly when its calendar week, counted in whole weeks
  from the start date's week, is a multiple of the cadence.

VALIDATION:
  Inputs are validated in full before any id is generated or any instance
  built. A rejected input reports every violated field, not just the
  first.

SEE ALSO:
  - calendar/calendar.go: week bucketing and weekday enumeration
  - service.go: persists the expanded instances atomically
*/
package rota

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"github.com/warp/rota-engine/calendar"
)

// Materializer turns transient scheduling inputs into persisted-shape
// instances. It is stateless apart from the configured week start.
type Materializer struct {
	WeekStart time.Weekday
}

// NewMaterializer returns a Materializer with weeks starting on Monday.
func NewMaterializer() *Materializer {
	return &Materializer{WeekStart: time.Monday}
}

// =============================================================================
// TEMPLATE EXPANSION
// =============================================================================

// ExpandTemplate validates a weekly shift template and expands it into one
// ShiftInstance per realized date, all sharing a fresh recurrence id.
// Instances carry the producing day's times and origin "template".
func (m *Materializer) ExpandTemplate(tpl ShiftTemplate) (*ShiftSeries, error) {
	if err := m.validateTemplate(tpl); err != nil {
		return nil, err
	}

	rid := SeriesID(uuid.NewString())
	var instances []ShiftInstance

	for _, day := range tpl.Days {
		if !day.Enabled {
			continue
		}
		dates, err := m.weeklyDates(tpl.StartDate, tpl.EndDate, day.Weekday, tpl.CadenceWeeks)
		if err != nil {
			return nil, err
		}
		for _, date := range dates {
			instances = append(instances, ShiftInstance{
				ID:           InstanceID(uuid.NewString()),
				EmployeeID:   tpl.EmployeeID,
				Date:         date,
				Start:        day.Start,
				End:          day.End,
				Note:         tpl.Note,
				RecurrenceID: rid,
				Origin:       OriginTemplate,
			})
		}
	}

	return &ShiftSeries{RecurrenceID: rid, Instances: instances}, nil
}

func (m *Materializer) validateTemplate(tpl ShiftTemplate) error {
	var v validator

	if tpl.EmployeeID == "" {
		v.add("employee_id", "must not be empty")
	}
	if tpl.StartDate.IsZero() {
		v.add("start_date", "must be set")
	}
	if tpl.EndDate.IsZero() {
		v.add("end_date", "must be set")
	}
	if !tpl.StartDate.IsZero() && !tpl.EndDate.IsZero() && tpl.StartDate.After(tpl.EndDate) {
		v.add("start_date", "must not be after end_date")
	}
	if tpl.CadenceWeeks < 1 {
		v.add("cadence_weeks", "must be a positive number of weeks, got %d", tpl.CadenceWeeks)
	}

	seen := make(map[time.Weekday]bool)
	for i, day := range tpl.Days {
		if !day.Enabled {
			continue
		}
		field := fmt.Sprintf("days[%d]", i)
		if day.Weekday < time.Sunday || day.Weekday > time.Saturday {
			v.add(field+".day_of_week", "out of range 0-6")
			continue
		}
		// Same weekday enabled twice is caller error, never silently deduplicated.
		if seen[day.Weekday] {
			v.add(field+".day_of_week", "%s enabled more than once", day.Weekday)
		}
		seen[day.Weekday] = true
		if !day.Start.Before(day.End) {
			v.add(field+".start_time", "must be before end_time (%s >= %s)", day.Start, day.End)
		}
	}

	return v.err()
}

// weeklyDates enumerates the dates of wd in [start, end] whose week matches
// the cadence anchored at start's week.
func (m *Materializer) weeklyDates(start, end calendar.Date, wd time.Weekday, cadenceWeeks int) ([]calendar.Date, error) {
	src := fmt.Sprintf("DTSTART:%s\nRRULE:FREQ=WEEKLY;INTERVAL=%d;WKST=%s;BYDAY=%s;UNTIL=%s",
		start.Time().Format(rruleTimeLayout),
		cadenceWeeks,
		bydayCode(m.WeekStart),
		bydayCode(wd),
		end.Time().Format(rruleTimeLayout),
	)

	set, err := rrule.StrToRRuleSet(src)
	if err != nil {
		return nil, fmt.Errorf("build weekly recurrence rule: %w", err)
	}

	occurrences := set.Between(start.Time(), end.Time(), true)
	dates := make([]calendar.Date, 0, len(occurrences))
	for _, occ := range occurrences {
		dates = append(dates, calendar.DateOf(occ))
	}
	return dates, nil
}

const rruleTimeLayout = "20060102T150405Z"

var bydayCodes = [7]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

func bydayCode(wd time.Weekday) string { return bydayCodes[int(wd)%7] }

// =============================================================================
// TIME-OFF EXPANSION
// =============================================================================

// ExpandTimeOff validates a time-off request and expands it. A non-repeating
// request yields exactly one instance with no recurrence id. A repeating one
// yields one instance per week from Date through RepeatUntil inclusive, on
// Date's weekday; time-off repeats weekly only, there is no wider cadence.
func (m *Materializer) ExpandTimeOff(req TimeOffRequest) (*TimeOffSeries, error) {
	if err := m.validateTimeOff(req); err != nil {
		return nil, err
	}

	if !req.Repeat {
		return &TimeOffSeries{Instances: []TimeOffInstance{{
			ID:         InstanceID(uuid.NewString()),
			EmployeeID: req.EmployeeID,
			Date:       req.Date,
			Start:      req.Start,
			End:        req.End,
			Note:       req.Note,
		}}}, nil
	}

	rid := SeriesID(uuid.NewString())
	dates := calendar.WeekdaysBetween(req.Date, req.RepeatUntil, req.Date.Weekday())
	instances := make([]TimeOffInstance, 0, len(dates))
	for _, date := range dates {
		instances = append(instances, TimeOffInstance{
			ID:           InstanceID(uuid.NewString()),
			EmployeeID:   req.EmployeeID,
			Date:         date,
			Start:        req.Start,
			End:          req.End,
			Note:         req.Note,
			RecurrenceID: rid,
		})
	}

	return &TimeOffSeries{RecurrenceID: rid, Instances: instances}, nil
}

func (m *Materializer) validateTimeOff(req TimeOffRequest) error {
	var v validator

	if req.EmployeeID == "" {
		v.add("employee_id", "must not be empty")
	}
	if req.Date.IsZero() {
		v.add("date", "must be set")
	}
	if !req.Start.Before(req.End) {
		v.add("start_time", "must be before end_time (%s >= %s)", req.Start, req.End)
	}
	if req.Repeat {
		if req.RepeatUntil.IsZero() {
			v.add("repeat_until", "required when repeat is set")
		} else if !req.Date.IsZero() && req.RepeatUntil.Before(req.Date) {
			v.add("repeat_until", "must not be before date")
		}
	}

	return v.err()
}

// =============================================================================
// MANUAL SHIFTS
// =============================================================================

// ManualShift validates and builds a single one-off shift with no series.
func (m *Materializer) ManualShift(employeeID EmployeeID, date calendar.Date, start, end calendar.TimeOfDay, note string) (*ShiftInstance, error) {
	var v validator
	if employeeID == "" {
		v.add("employee_id", "must not be empty")
	}
	if date.IsZero() {
		v.add("date", "must be set")
	}
	if !start.Before(end) {
		v.add("start_time", "must be before end_time (%s >= %s)", start, end)
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	return &ShiftInstance{
		ID:         InstanceID(uuid.NewString()),
		EmployeeID: employeeID,
		Date:       date,
		Start:      start,
		End:        end,
		Note:       note,
		Origin:     OriginManual,
	}, nil
}
