/*
ical.go - iCalendar feed of an employee's rota

PURPOSE:
  Serves the shifts and time-offs of a date window as a standard
  iCalendar document, so the rota can be subscribed to from any calendar
  client. One VEVENT per instance; instance ids double as stable UIDs so
  re-fetching updates rather than duplicates events.
*/
package api

import (
	"bytes"
	"net/http"
	"time"

	"github.com/emersion/go-ical"
	"github.com/go-chi/chi/v5"
	"github.com/warp/rota-engine/rota"
)

const icalProductID = "-//warp//rota-engine//EN"

// ExportICS writes the employee's window [?from, ?to] as text/calendar.
func (h *Handler) ExportICS(w http.ResponseWriter, r *http.Request) {
	employeeID := rota.EmployeeID(chi.URLParam(r, "id"))

	var p parser
	from := p.date("from", r.URL.Query().Get("from"))
	to := p.date("to", r.URL.Query().Get("to"))
	if err := p.err(); err != nil {
		h.writeDomainError(w, err)
		return
	}

	shifts, timeOffs, err := h.Service.Instances(r.Context(), employeeID, from, to)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, icalProductID)
	cal.Props.SetText(ical.PropVersion, "2.0")

	now := time.Now().UTC()
	for _, s := range shifts {
		event := ical.NewComponent(ical.CompEvent)
		event.Props.SetText(ical.PropUID, string(s.ID))
		event.Props.SetText(ical.PropSummary, "Shift")
		event.Props.SetDateTime(ical.PropDateTimeStamp, now)
		event.Props.SetDateTime(ical.PropDateTimeStart, s.Start.On(s.Date))
		event.Props.SetDateTime(ical.PropDateTimeEnd, s.End.On(s.Date))
		if s.Note != "" {
			event.Props.SetText(ical.PropDescription, s.Note)
		}
		cal.Children = append(cal.Children, event)
	}
	for _, t := range timeOffs {
		event := ical.NewComponent(ical.CompEvent)
		event.Props.SetText(ical.PropUID, string(t.ID))
		event.Props.SetText(ical.PropSummary, "Time off")
		event.Props.SetDateTime(ical.PropDateTimeStamp, now)
		event.Props.SetDateTime(ical.PropDateTimeStart, t.Start.On(t.Date))
		event.Props.SetDateTime(ical.PropDateTimeEnd, t.End.On(t.Date))
		if t.Note != "" {
			event.Props.SetText(ical.PropDescription, t.Note)
		}
		cal.Children = append(cal.Children, event)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode calendar", err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="rota.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
