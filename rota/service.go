/*
service.go - Scheduling façade, the engine's public contract

PURPOSE:
  Orchestrates materializer + store + reporter for the consumer-facing
  operations. Stateless per call: every operation runs to completion
  within one request and either fully applies or not at all.

OPERATIONS:
  SaveRegularShifts  template -> expand -> replace window (idempotent)
  SaveTimeOff        request  -> expand -> atomic put
  CreateShift        one manual shift, no series
  UpdateShift        one instance; siblings never touched
  DeleteShift/TimeOff one instance regardless of series
  DeleteSeries       every instance sharing the recurrence id
  GetWeek/GetRangeGrouped  range fetch + per-date grouping
  WeekSummary        decimal hours totals for one week

FAILURE MODES:
  ValidationError before any write, NotFoundError on missing targets,
  StorageError when persistence fails. Writes never partially apply, so
  every operation is safe to retry.

SEE ALSO:
  - materializer.go, reporter.go, store.go
*/
package rota

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/rota-engine/calendar"
)

// Service is the scheduling façade. It exclusively owns creation and
// deletion of instances; callers only request operations through it.
type Service struct {
	store Store
	mat   *Materializer
	log   logrus.FieldLogger
}

// NewService builds a Service over the given store, with weeks starting on
// Monday and the standard logger.
func NewService(store Store) *Service {
	return &Service{
		store: store,
		mat:   NewMaterializer(),
		log:   logrus.StandardLogger(),
	}
}

// SetWeekStart changes the weekday that begins a calendar week.
func (s *Service) SetWeekStart(wd time.Weekday) { s.mat.WeekStart = wd }

// SetLogger replaces the service logger.
func (s *Service) SetLogger(log logrus.FieldLogger) { s.log = log }

// WeekStart returns the configured first day of the week.
func (s *Service) WeekStart() time.Weekday { return s.mat.WeekStart }

// =============================================================================
// WRITE OPERATIONS
// =============================================================================

// SaveRegularShifts expands the template and replaces the employee's
// template-origin shifts in [start_date, end_date] with the result, as one
// atomic operation. Re-saving the same template is idempotent modulo ids.
func (s *Service) SaveRegularShifts(ctx context.Context, tpl ShiftTemplate) (*ShiftSeries, error) {
	series, err := s.mat.ExpandTemplate(tpl)
	if err != nil {
		return nil, err
	}

	if err := s.store.ReplaceTemplateWindow(ctx, tpl.EmployeeID, tpl.StartDate, tpl.EndDate, series.Instances); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"employee":  tpl.EmployeeID,
		"series":    series.RecurrenceID,
		"instances": len(series.Instances),
		"window":    tpl.StartDate.String() + ".." + tpl.EndDate.String(),
	}).Info("saved regular shifts")

	return series, nil
}

// SaveTimeOff expands a single or repeating time-off request and stores the
// result atomically.
func (s *Service) SaveTimeOff(ctx context.Context, req TimeOffRequest) (*TimeOffSeries, error) {
	series, err := s.mat.ExpandTimeOff(req)
	if err != nil {
		return nil, err
	}

	if err := s.store.PutTimeOffs(ctx, series.Instances); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"employee":  req.EmployeeID,
		"series":    series.RecurrenceID,
		"instances": len(series.Instances),
	}).Info("saved time off")

	return series, nil
}

// CreateShift stores one manual shift outside any series.
func (s *Service) CreateShift(ctx context.Context, employeeID EmployeeID, date calendar.Date, start, end calendar.TimeOfDay, note string) (*ShiftInstance, error) {
	instance, err := s.mat.ManualShift(employeeID, date, start, end, note)
	if err != nil {
		return nil, err
	}

	if err := s.store.PutShifts(ctx, []ShiftInstance{*instance}); err != nil {
		return nil, err
	}

	return instance, nil
}

// UpdateShift mutates one shift's times or note. The instance stays in its
// series but the edit never touches siblings. The store validates the
// merged result, so a single-field update cannot invert the times.
func (s *Service) UpdateShift(ctx context.Context, id InstanceID, update ShiftUpdate) (*ShiftInstance, error) {
	return s.store.UpdateShift(ctx, id, update)
}

// DeleteShift removes exactly one shift instance.
func (s *Service) DeleteShift(ctx context.Context, id InstanceID) error {
	return s.store.DeleteShift(ctx, id)
}

// DeleteTimeOff removes exactly one time-off instance.
func (s *Service) DeleteTimeOff(ctx context.Context, id InstanceID) error {
	return s.store.DeleteTimeOff(ctx, id)
}

// DeleteSeries removes the whole series, past and future, and returns how
// many instances were deleted. A second call for the same id reports
// NotFoundError.
func (s *Service) DeleteSeries(ctx context.Context, recurrenceID SeriesID) (int, error) {
	count, err := s.store.DeleteSeries(ctx, recurrenceID)
	if err != nil {
		return 0, err
	}
	s.log.WithFields(logrus.Fields{"series": recurrenceID, "deleted": count}).Info("deleted series")
	return count, nil
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

// WeekSchedule is one employee's week grouped for calendar rendering.
type WeekSchedule struct {
	EmployeeID EmployeeID
	WeekStart  calendar.Date
	Days       map[calendar.Date]*DayGroup
}

// GetWeek fetches the week containing weekStart, aligned to the configured
// week start, grouped per date. Every one of the seven days has an entry.
func (s *Service) GetWeek(ctx context.Context, employeeID EmployeeID, weekStart calendar.Date) (*WeekSchedule, error) {
	from := calendar.WeekBucket(weekStart, s.mat.WeekStart)
	to := from.AddDays(6)

	shifts, timeOffs, err := s.store.GetRange(ctx, employeeID, from, to)
	if err != nil {
		return nil, err
	}

	return &WeekSchedule{
		EmployeeID: employeeID,
		WeekStart:  from,
		Days:       GroupByDate(from, to, shifts, timeOffs),
	}, nil
}

// GetRangeGrouped is GetWeek over an arbitrary inclusive window, for
// callers that prefetch more than one week.
func (s *Service) GetRangeGrouped(ctx context.Context, employeeID EmployeeID, from, to calendar.Date) (map[calendar.Date]*DayGroup, error) {
	if to.Before(from) {
		return nil, &ValidationError{Violations: []FieldViolation{
			{Field: "to", Message: "must not be before from"},
		}}
	}

	shifts, timeOffs, err := s.store.GetRange(ctx, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	return GroupByDate(from, to, shifts, timeOffs), nil
}

// Instances returns the raw rows of a window, unsorted, for callers that do
// their own shaping (exports, reports).
func (s *Service) Instances(ctx context.Context, employeeID EmployeeID, from, to calendar.Date) ([]ShiftInstance, []TimeOffInstance, error) {
	if to.Before(from) {
		return nil, nil, &ValidationError{Violations: []FieldViolation{
			{Field: "to", Message: "must not be before from"},
		}}
	}
	return s.store.GetRange(ctx, employeeID, from, to)
}

// WeekSummary totals scheduled and time-off hours for one week.
func (s *Service) WeekSummary(ctx context.Context, employeeID EmployeeID, weekStart calendar.Date) (*HoursSummary, error) {
	from := calendar.WeekBucket(weekStart, s.mat.WeekStart)
	to := from.AddDays(6)

	shifts, timeOffs, err := s.store.GetRange(ctx, employeeID, from, to)
	if err != nil {
		return nil, err
	}

	summary := SummarizeHours(employeeID, from, shifts, timeOffs)
	return &summary, nil
}
