/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the HTTP boundary, decoupled from the domain model.
  Every endpoint has exactly one fixed response shape - no bare-array /
  wrapped-array duality, no caller-side shape sniffing.

WIRE FORMATS:
  Dates are YYYY-MM-DD calendar dates with no timezone offset; times are
  HH:MM wall-clock values scoped to their date. Decimal hours are encoded
  as strings to keep exact values.

SEE ALSO:
  - handlers.go: parsing and conversion
*/
package api

import (
	"github.com/warp/rota-engine/rota"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// TemplateDayDTO is one weekday entry of a template save request.
type TemplateDayDTO struct {
	DayOfWeek int    `json:"day_of_week"` // 0 = Sunday
	Enabled   bool   `json:"enabled"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// SaveTemplateRequest saves an employee's regular shifts.
type SaveTemplateRequest struct {
	StartDate    string           `json:"start_date"`
	EndDate      string           `json:"end_date"`
	CadenceWeeks int              `json:"cadence_weeks"`
	Days         []TemplateDayDTO `json:"days"`
	Note         string           `json:"note,omitempty"`
}

// CreateShiftRequest creates one manual shift.
type CreateShiftRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Note      string `json:"note,omitempty"`
}

// SaveTimeOffRequest saves a single or weekly-repeating time-off.
type SaveTimeOffRequest struct {
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Repeat      bool   `json:"repeat"`
	RepeatUntil string `json:"repeat_until,omitempty"`
	Note        string `json:"note,omitempty"`
}

// UpdateShiftRequest mutates one shift. Absent fields stay unchanged.
type UpdateShiftRequest struct {
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
	Note      *string `json:"note,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ShiftDTO represents one shift instance.
type ShiftDTO struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	Date         string  `json:"date"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	Note         string  `json:"note,omitempty"`
	RecurrenceID *string `json:"recurrence_id"`
	Origin       string  `json:"origin"`
}

// TimeOffDTO represents one time-off instance.
type TimeOffDTO struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	Date         string  `json:"date"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	Note         string  `json:"note,omitempty"`
	RecurrenceID *string `json:"recurrence_id"`
}

// ShiftSeriesResponse is the result of saving regular shifts.
type ShiftSeriesResponse struct {
	RecurrenceID string     `json:"recurrence_id"`
	Instances    []ShiftDTO `json:"instances"`
}

// TimeOffSeriesResponse is the result of saving a time-off request.
// RecurrenceID is null for a non-repeating request.
type TimeOffSeriesResponse struct {
	RecurrenceID *string      `json:"recurrence_id"`
	Instances    []TimeOffDTO `json:"instances"`
}

// DayDTO is one calendar day of a week or range response. Shifts and
// time-offs on the same day are both listed; conflict resolution is the
// consumer's call.
type DayDTO struct {
	Date     string       `json:"date"`
	Shifts   []ShiftDTO   `json:"shifts"`
	TimeOffs []TimeOffDTO `json:"time_offs"`
	Conflict bool         `json:"conflict"`
}

// WeekResponse is one employee's week, seven days always present.
type WeekResponse struct {
	EmployeeID string   `json:"employee_id"`
	WeekStart  string   `json:"week_start"`
	Days       []DayDTO `json:"days"`
}

// RangeResponse is an arbitrary inclusive window, one entry per day.
type RangeResponse struct {
	EmployeeID string   `json:"employee_id"`
	From       string   `json:"from"`
	To         string   `json:"to"`
	Days       []DayDTO `json:"days"`
}

// WeekSummaryResponse totals one week's hours. Decimals travel as strings.
type WeekSummaryResponse struct {
	EmployeeID     string `json:"employee_id"`
	WeekStart      string `json:"week_start"`
	ShiftCount     int    `json:"shift_count"`
	TimeOffCount   int    `json:"time_off_count"`
	ScheduledHours string `json:"scheduled_hours"`
	TimeOffHours   string `json:"time_off_hours"`
	NetHours       string `json:"net_hours"`
}

// DeleteSeriesResponse reports how many instances a series delete removed.
type DeleteSeriesResponse struct {
	Deleted int `json:"deleted"`
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toShiftDTO(s rota.ShiftInstance) ShiftDTO {
	return ShiftDTO{
		ID:           string(s.ID),
		EmployeeID:   string(s.EmployeeID),
		Date:         s.Date.String(),
		StartTime:    s.Start.String(),
		EndTime:      s.End.String(),
		Note:         s.Note,
		RecurrenceID: seriesPtr(s.RecurrenceID),
		Origin:       string(s.Origin),
	}
}

func toTimeOffDTO(t rota.TimeOffInstance) TimeOffDTO {
	return TimeOffDTO{
		ID:           string(t.ID),
		EmployeeID:   string(t.EmployeeID),
		Date:         t.Date.String(),
		StartTime:    t.Start.String(),
		EndTime:      t.End.String(),
		Note:         t.Note,
		RecurrenceID: seriesPtr(t.RecurrenceID),
	}
}

func toShiftDTOs(instances []rota.ShiftInstance) []ShiftDTO {
	dtos := make([]ShiftDTO, len(instances))
	for i, s := range instances {
		dtos[i] = toShiftDTO(s)
	}
	return dtos
}

func toTimeOffDTOs(instances []rota.TimeOffInstance) []TimeOffDTO {
	dtos := make([]TimeOffDTO, len(instances))
	for i, t := range instances {
		dtos[i] = toTimeOffDTO(t)
	}
	return dtos
}

func seriesPtr(rid rota.SeriesID) *string {
	if rid == "" {
		return nil
	}
	s := string(rid)
	return &s
}
