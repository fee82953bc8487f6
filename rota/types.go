/*
types.go - Domain model for shifts, time-offs and series

PURPOSE:
  The persisted unit of the engine is the INSTANCE: one concrete dated
  shift or time-off row. Templates and requests are transient inputs that
  the materializer expands into instances; they are never stored as-is.

SERIES IDENTITY:
  Instances produced by one save call share a recurrence id. A series has
  no row of its own - it exists only as the set of instances referencing
  it. Deleting the series means deleting every such instance, past and
  future.

SEE ALSO:
  - materializer.go: ShiftTemplate/TimeOffRequest -> instances
  - store.go: persistence contract for instances
*/
package rota

import (
	"time"

	"github.com/warp/rota-engine/calendar"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// EmployeeID references an employee owned elsewhere; the engine never
// creates or validates employees.
type EmployeeID string

// InstanceID identifies one persisted shift or time-off row.
type InstanceID string

// SeriesID is the recurrence grouping key shared by all instances produced
// from one save call. Empty means the instance is a one-off.
type SeriesID string

// Origin records how a shift instance came to exist.
type Origin string

const (
	// OriginTemplate marks instances materialized from a weekly template.
	OriginTemplate Origin = "template"
	// OriginManual marks one-off shifts created directly.
	OriginManual Origin = "manual"
)

// =============================================================================
// TRANSIENT INPUTS
// =============================================================================

// TemplateDay is one weekday entry of a ShiftTemplate.
type TemplateDay struct {
	Weekday time.Weekday
	Enabled bool
	Start   calendar.TimeOfDay
	End     calendar.TimeOfDay
}

// ShiftTemplate is the weekly pattern a rota editor saves. It is expanded
// into ShiftInstances and then discarded.
type ShiftTemplate struct {
	EmployeeID   EmployeeID
	StartDate    calendar.Date
	EndDate      calendar.Date
	CadenceWeeks int // "every N weeks"; 1 = every week
	Days         []TemplateDay
	Note         string
}

// TimeOffRequest is a single or weekly-repeating time-off input.
type TimeOffRequest struct {
	EmployeeID  EmployeeID
	Date        calendar.Date
	Start       calendar.TimeOfDay
	End         calendar.TimeOfDay
	Repeat      bool
	RepeatUntil calendar.Date // required when Repeat
	Note        string
}

// =============================================================================
// PERSISTED INSTANCES
// =============================================================================

// ShiftInstance is one concrete dated shift. Editing an instance never
// touches its series siblings; the recurrence id is preserved but carries
// no coupling beyond group deletion.
type ShiftInstance struct {
	ID           InstanceID
	EmployeeID   EmployeeID
	Date         calendar.Date
	Start        calendar.TimeOfDay
	End          calendar.TimeOfDay
	Note         string
	RecurrenceID SeriesID // empty for a one-off manual shift
	Origin       Origin
}

// DurationMinutes is the scheduled length of the shift.
func (s ShiftInstance) DurationMinutes() int { return s.End.Sub(s.Start) }

// TimeOffInstance is one concrete dated time-off row.
type TimeOffInstance struct {
	ID           InstanceID
	EmployeeID   EmployeeID
	Date         calendar.Date
	Start        calendar.TimeOfDay
	End          calendar.TimeOfDay
	Note         string
	RecurrenceID SeriesID // empty for a single, non-repeating request
}

// DurationMinutes is the length of the time-off block.
func (t TimeOffInstance) DurationMinutes() int { return t.End.Sub(t.Start) }

// ShiftUpdate names the mutable fields of a shift instance. Nil fields are
// left unchanged. Date, employee and recurrence id are immutable.
type ShiftUpdate struct {
	Start *calendar.TimeOfDay
	End   *calendar.TimeOfDay
	Note  *string
}

// =============================================================================
// OPERATION RESULTS
// =============================================================================

// ShiftSeries is the result of saving regular shifts: the fresh series id
// and every instance materialized under it.
type ShiftSeries struct {
	RecurrenceID SeriesID
	Instances    []ShiftInstance
}

// TimeOffSeries is the result of saving a time-off request. RecurrenceID
// is empty for a non-repeating request.
type TimeOffSeries struct {
	RecurrenceID SeriesID
	Instances    []TimeOffInstance
}
