/*
handlers.go - HTTP handlers for the rota scheduling engine

PURPOSE:
  Exposes the scheduling façade over REST. Handlers parse and validate the
  wire format, delegate to rota.Service, and serialize exactly one fixed
  response shape per endpoint.

ENDPOINTS:
  POST   /api/employees/{id}/shifts/template   Save regular shifts
  POST   /api/employees/{id}/shifts            Create manual shift
  POST   /api/employees/{id}/timeoffs          Save time-off
  GET    /api/employees/{id}/week              Week grouped per date
  GET    /api/employees/{id}/range             Arbitrary window grouped
  GET    /api/employees/{id}/week/summary      Weekly hours totals
  GET    /api/employees/{id}/rota.ics          iCalendar feed
  PUT    /api/shifts/{id}                      Update one shift
  DELETE /api/shifts/{id}                      Delete one shift
  DELETE /api/timeoffs/{id}                    Delete one time-off
  DELETE /api/series/{rid}                     Delete a whole series

ERROR HANDLING:
  Domain errors map to status codes by taxonomy:
  - 400 validation (bad wire format or rejected input, field list attached)
  - 404 not found (missing instance or series - a normal outcome the UI
    shows as "already removed")
  - 500 storage (safe to retry; writes are idempotent at series level)

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: routing and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/warp/rota-engine/calendar"
	"github.com/warp/rota-engine/rota"
)

// Handler holds the handler dependencies.
type Handler struct {
	Service *rota.Service
	Log     logrus.FieldLogger
}

// NewHandler creates a Handler over the scheduling service.
func NewHandler(svc *rota.Service) *Handler {
	return &Handler{Service: svc, Log: logrus.StandardLogger()}
}

// =============================================================================
// WRITE HANDLERS
// =============================================================================

// SaveTemplate expands and stores an employee's regular shifts, replacing
// any previous template instances in the same window.
func (h *Handler) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	employeeID := rota.EmployeeID(chi.URLParam(r, "id"))

	var req SaveTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	var p parser
	tpl := rota.ShiftTemplate{
		EmployeeID:   employeeID,
		StartDate:    p.date("start_date", req.StartDate),
		EndDate:      p.date("end_date", req.EndDate),
		CadenceWeeks: req.CadenceWeeks,
		Note:         req.Note,
	}
	for i, day := range req.Days {
		tpl.Days = append(tpl.Days, rota.TemplateDay{
			Weekday: p.weekday(i, day.DayOfWeek),
			Enabled: day.Enabled,
			Start:   p.timeOfDayAt(i, "start_time", day.StartTime, day.Enabled),
			End:     p.timeOfDayAt(i, "end_time", day.EndTime, day.Enabled),
		})
	}
	if err := p.err(); err != nil {
		h.writeDomainError(w, err)
		return
	}

	series, err := h.Service.SaveRegularShifts(r.Context(), tpl)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ShiftSeriesResponse{
		RecurrenceID: string(series.RecurrenceID),
		Instances:    toShiftDTOs(series.Instances),
	})
}

// CreateShift stores one manual shift outside any series.
func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	employeeID := rota.EmployeeID(chi.URLParam(r, "id"))

	var req CreateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	var p parser
	date := p.date("date", req.Date)
	start := p.timeOfDay("start_time", req.StartTime)
	end := p.timeOfDay("end_time", req.EndTime)
	if err := p.err(); err != nil {
		h.writeDomainError(w, err)
		return
	}

	instance, err := h.Service.CreateShift(r.Context(), employeeID, date, start, end, req.Note)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toShiftDTO(*instance))
}

// SaveTimeOff stores a single or weekly-repeating time-off.
func (h *Handler) SaveTimeOff(w http.ResponseWriter, r *http.Request) {
	employeeID := rota.EmployeeID(chi.URLParam(r, "id"))

	var req SaveTimeOffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	var p parser
	timeOff := rota.TimeOffRequest{
		EmployeeID: employeeID,
		Date:       p.date("date", req.Date),
		Start:      p.timeOfDay("start_time", req.StartTime),
		End:        p.timeOfDay("end_time", req.EndTime),
		Repeat:     req.Repeat,
		Note:       req.Note,
	}
	if req.Repeat && req.RepeatUntil != "" {
		timeOff.RepeatUntil = p.date("repeat_until", req.RepeatUntil)
	}
	if err := p.err(); err != nil {
		h.writeDomainError(w, err)
		return
	}

	series, err := h.Service.SaveTimeOff(r.Context(), timeOff)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, TimeOffSeriesResponse{
		RecurrenceID: seriesPtr(series.RecurrenceID),
		Instances:    toTimeOffDTOs(series.Instances),
	})
}

// UpdateShift mutates one shift's times or note.
func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	id := rota.InstanceID(chi.URLParam(r, "id"))

	var req UpdateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	var p parser
	var update rota.ShiftUpdate
	if req.StartTime != nil {
		t := p.timeOfDay("start_time", *req.StartTime)
		update.Start = &t
	}
	if req.EndTime != nil {
		t := p.timeOfDay("end_time", *req.EndTime)
		update.End = &t
	}
	update.Note = req.Note
	if err := p.err(); err != nil {
		h.writeDomainError(w, err)
		return
	}

	instance, err := h.Service.UpdateShift(r.Context(), id, update)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(*instance))
}

// DeleteShift removes exactly one shift instance.
func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	id := rota.InstanceID(chi.URLParam(r, "id"))
	if err := h.Service.DeleteShift(r.Context(), id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteTimeOff removes exactly one time-off instance.
func (h *Handler) DeleteTimeOff(w http.ResponseWriter, r *http.Request) {
	id := rota.InstanceID(chi.URLParam(r, "id"))
	if err := h.Service.DeleteTimeOff(r.Context(), id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteSeries removes every instance of a series, past and future.
func (h *Handler) DeleteSeries(w http.ResponseWriter, r *http.Request) {
	rid := rota.SeriesID(chi.URLParam(r, "rid"))
	count, err := h.Service.DeleteSeries(r.Context(), rid)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteSeriesResponse{Deleted: count})
}

// =============================================================================
// READ HANDLERS
// =============================================================================

// GetWeek returns the employee's week containing ?start, grouped per date.
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	employeeID := rota.EmployeeID(chi.URLParam(r, "id"))

	var p parser
	start := p.date("start", r.URL.Query().Get("start"))
	if err := p.err(); err != nil {
		h.writeDomainError(w, err)
		return
	}

	week, err := h.Service.GetWeek(r.Context(), employeeID, start)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, WeekResponse{
		EmployeeID: string(week.EmployeeID),
		WeekStart:  week.WeekStart.String(),
		Days:       toDayDTOs(week.Days),
	})
}

// GetRange returns an arbitrary inclusive window grouped per date.
func (h *Handler) GetRange(w http.ResponseWriter, r *http.Request) {
	employeeID := rota.EmployeeID(chi.URLParam(r, "id"))

	var p parser
	from := p.date("from", r.URL.Query().Get("from"))
	to := p.date("to", r.URL.Query().Get("to"))
	if err := p.err(); err != nil {
		h.writeDomainError(w, err)
		return
	}

	grouped, err := h.Service.GetRangeGrouped(r.Context(), employeeID, from, to)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RangeResponse{
		EmployeeID: string(employeeID),
		From:       from.String(),
		To:         to.String(),
		Days:       toDayDTOs(grouped),
	})
}

// GetWeekSummary returns the hour totals for one week.
func (h *Handler) GetWeekSummary(w http.ResponseWriter, r *http.Request) {
	employeeID := rota.EmployeeID(chi.URLParam(r, "id"))

	var p parser
	start := p.date("start", r.URL.Query().Get("start"))
	if err := p.err(); err != nil {
		h.writeDomainError(w, err)
		return
	}

	summary, err := h.Service.WeekSummary(r.Context(), employeeID, start)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, WeekSummaryResponse{
		EmployeeID:     string(summary.EmployeeID),
		WeekStart:      summary.WeekStart.String(),
		ShiftCount:     summary.ShiftCount,
		TimeOffCount:   summary.TimeOffCount,
		ScheduledHours: summary.ScheduledHours.String(),
		TimeOffHours:   summary.TimeOffHours.String(),
		NetHours:       summary.NetHours.String(),
	})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func toDayDTOs(days map[calendar.Date]*rota.DayGroup) []DayDTO {
	dates := make([]calendar.Date, 0, len(days))
	for d := range days {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	dtos := make([]DayDTO, len(dates))
	for i, d := range dates {
		g := days[d]
		dtos[i] = DayDTO{
			Date:     d.String(),
			Shifts:   toShiftDTOs(g.Shifts),
			TimeOffs: toTimeOffDTOs(g.TimeOffs),
			Conflict: g.HasConflict(),
		}
	}
	return dtos
}

// =============================================================================
// WIRE PARSING AND ERROR WRITING
// =============================================================================

// parser accumulates wire-format violations so a bad request reports every
// broken field at once, mirroring domain validation.
type parser struct {
	violations []rota.FieldViolation
}

func (p *parser) date(field, value string) calendar.Date {
	if value == "" {
		p.violations = append(p.violations, rota.FieldViolation{Field: field, Message: "required (YYYY-MM-DD)"})
		return calendar.Date{}
	}
	d, err := calendar.ParseDate(value)
	if err != nil {
		p.violations = append(p.violations, rota.FieldViolation{Field: field, Message: err.Error()})
		return calendar.Date{}
	}
	return d
}

func (p *parser) timeOfDay(field, value string) calendar.TimeOfDay {
	t, err := calendar.ParseTimeOfDay(value)
	if err != nil {
		p.violations = append(p.violations, rota.FieldViolation{Field: field, Message: err.Error()})
		return 0
	}
	return t
}

// timeOfDayAt parses a day-entry time; disabled entries may leave times blank.
func (p *parser) timeOfDayAt(index int, field, value string, enabled bool) calendar.TimeOfDay {
	if !enabled && value == "" {
		return 0
	}
	return p.timeOfDay(dayField(index, field), value)
}

func (p *parser) weekday(index, dayOfWeek int) (wd time.Weekday) {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		p.violations = append(p.violations, rota.FieldViolation{
			Field: dayField(index, "day_of_week"), Message: "out of range 0-6",
		})
		return 0
	}
	return time.Weekday(dayOfWeek)
}

func (p *parser) err() error {
	if len(p.violations) == 0 {
		return nil
	}
	return &rota.ValidationError{Violations: p.violations}
}

func dayField(index int, field string) string {
	return "days[" + strconv.Itoa(index) + "]." + field
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var vErr *rota.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   vErr.Error(),
			Code:    "validation_error",
			Details: vErr.Fields(),
		})
	case rota.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error: err.Error(),
			Code:  "not_found",
		})
	default:
		h.Log.WithError(err).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "storage failure, safe to retry",
			Code:  "storage_error",
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
