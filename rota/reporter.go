/*
reporter.go - Read-side grouping of instances for calendar display

PURPOSE:
  Pure transform with no side effects: takes the raw rows a range query
  returned and buckets them per date so a weekly grid can render every
  column unconditionally. Overlaps between shifts and time-offs are
  surfaced, never resolved - a date carrying both simply exposes both
  lists and the caller decides how to render the conflict.

SEE ALSO:
  - service.go: GetWeek / GetRange callers
*/
package rota

import (
	"sort"

	"github.com/warp/rota-engine/calendar"
)

// DayGroup holds everything scheduled on one date.
type DayGroup struct {
	Shifts   []ShiftInstance
	TimeOffs []TimeOffInstance
}

// HasConflict reports whether the date carries both a shift and a time-off.
// Policy for resolving it belongs to the caller.
func (d *DayGroup) HasConflict() bool {
	return len(d.Shifts) > 0 && len(d.TimeOffs) > 0
}

// GroupByDate buckets instances per date over [from, to]. Every date in the
// window gets an entry, including empty ones. No instance is dropped or
// merged; an instance dated outside the window still gets its own entry.
// Within a day, entries are sorted by start time for stable display.
func GroupByDate(from, to calendar.Date, shifts []ShiftInstance, timeOffs []TimeOffInstance) map[calendar.Date]*DayGroup {
	grouped := make(map[calendar.Date]*DayGroup)

	for d := from; !d.After(to); d = d.AddDays(1) {
		grouped[d] = &DayGroup{}
	}

	at := func(d calendar.Date) *DayGroup {
		if g, ok := grouped[d]; ok {
			return g
		}
		g := &DayGroup{}
		grouped[d] = g
		return g
	}

	for _, s := range shifts {
		g := at(s.Date)
		g.Shifts = append(g.Shifts, s)
	}
	for _, t := range timeOffs {
		g := at(t.Date)
		g.TimeOffs = append(g.TimeOffs, t)
	}

	for _, g := range grouped {
		sort.SliceStable(g.Shifts, func(i, j int) bool { return g.Shifts[i].Start.Before(g.Shifts[j].Start) })
		sort.SliceStable(g.TimeOffs, func(i, j int) bool { return g.TimeOffs[i].Start.Before(g.TimeOffs[j].Start) })
	}

	return grouped
}
