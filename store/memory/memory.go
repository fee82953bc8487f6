// Package memory provides an in-memory rota.Store for tests and demos.
// All mutating operations take the write lock for their whole duration, so
// the same atomicity a SQL transaction gives the sqlite store holds here:
// readers see the fully-old or fully-new window, never a partial mix.
package memory

import (
	"context"
	"sync"

	"github.com/warp/rota-engine/calendar"
	"github.com/warp/rota-engine/rota"
)

// Store implements rota.Store with mutex-guarded maps.
type Store struct {
	mu       sync.RWMutex
	shifts   map[rota.InstanceID]rota.ShiftInstance
	timeOffs map[rota.InstanceID]rota.TimeOffInstance
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		shifts:   make(map[rota.InstanceID]rota.ShiftInstance),
		timeOffs: make(map[rota.InstanceID]rota.TimeOffInstance),
	}
}

// PutShifts inserts a batch of shifts atomically.
func (s *Store) PutShifts(_ context.Context, instances []rota.ShiftInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inst := range instances {
		s.shifts[inst.ID] = inst
	}
	return nil
}

// PutTimeOffs inserts a batch of time-offs atomically.
func (s *Store) PutTimeOffs(_ context.Context, instances []rota.TimeOffInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inst := range instances {
		s.timeOffs[inst.ID] = inst
	}
	return nil
}

// ReplaceTemplateWindow drops the employee's template shifts in [from, to]
// and inserts the new batch under one lock acquisition.
func (s *Store) ReplaceTemplateWindow(_ context.Context, employeeID rota.EmployeeID, from, to calendar.Date, instances []rota.ShiftInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, inst := range s.shifts {
		if inst.EmployeeID == employeeID && inst.Origin == rota.OriginTemplate && inRange(inst.Date, from, to) {
			delete(s.shifts, id)
		}
	}
	for _, inst := range instances {
		s.shifts[inst.ID] = inst
	}
	return nil
}

// GetRange returns copies of every instance in [from, to].
func (s *Store) GetRange(_ context.Context, employeeID rota.EmployeeID, from, to calendar.Date) ([]rota.ShiftInstance, []rota.TimeOffInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var shifts []rota.ShiftInstance
	for _, inst := range s.shifts {
		if inst.EmployeeID == employeeID && inRange(inst.Date, from, to) {
			shifts = append(shifts, inst)
		}
	}

	var timeOffs []rota.TimeOffInstance
	for _, inst := range s.timeOffs {
		if inst.EmployeeID == employeeID && inRange(inst.Date, from, to) {
			timeOffs = append(timeOffs, inst)
		}
	}
	return shifts, timeOffs, nil
}

// UpdateShift mutates one shift's times/note in place.
func (s *Store) UpdateShift(_ context.Context, id rota.InstanceID, update rota.ShiftUpdate) (*rota.ShiftInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok := s.shifts[id]
	if !ok {
		return nil, &rota.NotFoundError{Kind: "shift", ID: string(id)}
	}
	if update.Start != nil {
		inst.Start = *update.Start
	}
	if update.End != nil {
		inst.End = *update.End
	}
	if update.Note != nil {
		inst.Note = *update.Note
	}
	if !inst.Start.Before(inst.End) {
		return nil, &rota.ValidationError{Violations: []rota.FieldViolation{
			{Field: "start_time", Message: "must be before end_time"},
		}}
	}
	s.shifts[id] = inst
	return &inst, nil
}

// DeleteShift removes exactly one shift.
func (s *Store) DeleteShift(_ context.Context, id rota.InstanceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shifts[id]; !ok {
		return &rota.NotFoundError{Kind: "shift", ID: string(id)}
	}
	delete(s.shifts, id)
	return nil
}

// DeleteTimeOff removes exactly one time-off instance.
func (s *Store) DeleteTimeOff(_ context.Context, id rota.InstanceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.timeOffs[id]; !ok {
		return &rota.NotFoundError{Kind: "time_off", ID: string(id)}
	}
	delete(s.timeOffs, id)
	return nil
}

// DeleteSeries removes every instance carrying the recurrence id.
func (s *Store) DeleteSeries(_ context.Context, recurrenceID rota.SeriesID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if recurrenceID == "" {
		return 0, &rota.NotFoundError{Kind: "series", ID: ""}
	}

	count := 0
	for id, inst := range s.shifts {
		if inst.RecurrenceID == recurrenceID {
			delete(s.shifts, id)
			count++
		}
	}
	for id, inst := range s.timeOffs {
		if inst.RecurrenceID == recurrenceID {
			delete(s.timeOffs, id)
			count++
		}
	}

	if count == 0 {
		return 0, &rota.NotFoundError{Kind: "series", ID: string(recurrenceID)}
	}
	return count, nil
}

func inRange(d, from, to calendar.Date) bool {
	return !d.Before(from) && !d.After(to)
}
