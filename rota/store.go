/*
store.go - Persistence contract for shift and time-off instances

PURPOSE:
  Defines the interface between the scheduling façade and the database.
  The store keeps instances; it holds no business rules beyond uniqueness
  of instance ids. Different implementations can use SQLite or in-memory
  storage.

ATOMICITY CONTRACT:
  PutShifts / PutTimeOffs / ReplaceTemplateWindow are all-or-nothing. A
  reader racing a window replace must observe either the fully-old or the
  fully-new template instances for that window, never a partial mix. This
  is the one property worth a real transaction in the storage layer.

ERROR CONTRACT:
  Missing ids surface as NotFoundError (a caller-visible signal, distinct
  from failure); everything else the backend cannot do surfaces as
  StorageError.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite store
  - store/memory: in-memory store for tests and demos

SEE ALSO:
  - service.go: the only writer through this interface
*/
package rota

import (
	"context"

	"github.com/warp/rota-engine/calendar"
)

// Store handles persistence of instances.
type Store interface {
	// PutShifts inserts a batch of shift instances atomically.
	// Either all are stored or none are.
	PutShifts(ctx context.Context, instances []ShiftInstance) error

	// PutTimeOffs inserts a batch of time-off instances atomically.
	PutTimeOffs(ctx context.Context, instances []TimeOffInstance) error

	// ReplaceTemplateWindow deletes every template-origin shift for the
	// employee dated in [from, to], then inserts the given instances, as
	// one atomic operation. Manual shifts in the window are untouched.
	ReplaceTemplateWindow(ctx context.Context, employeeID EmployeeID, from, to calendar.Date, instances []ShiftInstance) error

	// GetRange returns all shift and time-off instances for the employee
	// dated in [from, to]. Order is storage order; callers sort.
	GetRange(ctx context.Context, employeeID EmployeeID, from, to calendar.Date) ([]ShiftInstance, []TimeOffInstance, error)

	// UpdateShift mutates one shift's start/end/note. Date, employee and
	// recurrence id never change. Returns NotFoundError if id is unknown,
	// ValidationError if the merged row would have start >= end.
	UpdateShift(ctx context.Context, id InstanceID, update ShiftUpdate) (*ShiftInstance, error)

	// DeleteShift removes exactly one shift regardless of series membership.
	DeleteShift(ctx context.Context, id InstanceID) error

	// DeleteTimeOff removes exactly one time-off instance.
	DeleteTimeOff(ctx context.Context, id InstanceID) error

	// DeleteSeries removes every shift and time-off carrying the id and
	// returns how many rows went. Zero matches is NotFoundError so callers
	// can tell "already removed" from success.
	DeleteSeries(ctx context.Context, recurrenceID SeriesID) (int, error)
}
