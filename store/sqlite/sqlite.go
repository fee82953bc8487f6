/*
Package sqlite provides the SQLite-backed instance store.

PURPOSE:
  Implements rota.Store using SQLite. In production the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  shift_instances:    One row per concrete dated shift
  time_off_instances: One row per concrete dated time-off

  A series is nothing but the set of rows sharing a recurrence_id; there
  is no series table to keep in sync.

ATOMICITY:
  Batch inserts and the template-window replace run inside a single SQL
  transaction, so a racing range query observes either the fully-old or
  the fully-new window, never a partial mix. An abandoned write is rolled
  back whole - no orphan half-series.

CONCURRENCY:
  A sync.RWMutex serializes writers on top of SQLite's own locking, and
  the pool is capped at one connection so ":memory:" databases behave
  (each new connection would otherwise get a fresh empty database).

WAL MODE:
  Opened with WAL so readers don't block behind the single writer.

USAGE:
  store, err := sqlite.New("./data/rota.db")
  if err != nil { ... }
  defer store.Close()
  svc := rota.NewService(store)

SEE ALSO:
  - rota/store.go: interface definition and error contract
  - store/memory: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/rota-engine/calendar"
	"github.com/warp/rota-engine/rota"
)

// Store implements rota.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path, migrating the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: SQLite has a single writer anyway, and the pool must
	// not hand ":memory:" callers a second, empty database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS shift_instances (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		recurrence_id TEXT,
		origin TEXT NOT NULL CHECK (origin IN ('template', 'manual')),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Range queries per employee (hot path)
	CREATE INDEX IF NOT EXISTS idx_shifts_employee_date
		ON shift_instances(employee_id, date);
	-- Series deletes
	CREATE INDEX IF NOT EXISTS idx_shifts_recurrence
		ON shift_instances(recurrence_id) WHERE recurrence_id IS NOT NULL;
	-- Window replace scopes to template origin
	CREATE INDEX IF NOT EXISTS idx_shifts_employee_origin_date
		ON shift_instances(employee_id, origin, date);

	CREATE TABLE IF NOT EXISTS time_off_instances (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		recurrence_id TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_timeoffs_employee_date
		ON time_off_instances(employee_id, date);
	CREATE INDEX IF NOT EXISTS idx_timeoffs_recurrence
		ON time_off_instances(recurrence_id) WHERE recurrence_id IS NOT NULL;
	`
	_, err := s.db.Exec(schema)
	return err
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func storageErr(op string, err error) error {
	return &rota.StorageError{Op: op, Err: err}
}

// =============================================================================
// WRITES
// =============================================================================

// PutShifts inserts a batch of shift instances atomically.
func (s *Store) PutShifts(ctx context.Context, instances []rota.ShiftInstance) error {
	if len(instances) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("put shifts", err)
	}
	defer tx.Rollback()

	for _, inst := range instances {
		if err := insertShift(ctx, tx, inst); err != nil {
			return storageErr("put shifts", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return storageErr("put shifts", err)
	}
	return nil
}

// PutTimeOffs inserts a batch of time-off instances atomically.
func (s *Store) PutTimeOffs(ctx context.Context, instances []rota.TimeOffInstance) error {
	if len(instances) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("put time offs", err)
	}
	defer tx.Rollback()

	for _, inst := range instances {
		if err := insertTimeOff(ctx, tx, inst); err != nil {
			return storageErr("put time offs", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return storageErr("put time offs", err)
	}
	return nil
}

// ReplaceTemplateWindow swaps the employee's template-origin shifts in
// [from, to] for the given instances inside one transaction. Manual shifts
// in the window survive.
func (s *Store) ReplaceTemplateWindow(ctx context.Context, employeeID rota.EmployeeID, from, to calendar.Date, instances []rota.ShiftInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("replace template window", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM shift_instances
		WHERE employee_id = ? AND origin = ? AND date >= ? AND date <= ?`,
		employeeID, rota.OriginTemplate, from.String(), to.String(),
	)
	if err != nil {
		return storageErr("replace template window", err)
	}

	for _, inst := range instances {
		if err := insertShift(ctx, tx, inst); err != nil {
			return storageErr("replace template window", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("replace template window", err)
	}
	return nil
}

func insertShift(ctx context.Context, db execer, inst rota.ShiftInstance) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := db.ExecContext(ctx, `
		INSERT INTO shift_instances
		(id, employee_id, date, start_time, end_time, note, recurrence_id, origin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inst.ID,
		inst.EmployeeID,
		inst.Date.String(),
		inst.Start.String(),
		inst.End.String(),
		inst.Note,
		nullSeries(inst.RecurrenceID),
		inst.Origin,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("insert shift %s: %w", inst.ID, err)
	}
	return nil
}

func insertTimeOff(ctx context.Context, db execer, inst rota.TimeOffInstance) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO time_off_instances
		(id, employee_id, date, start_time, end_time, note, recurrence_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inst.ID,
		inst.EmployeeID,
		inst.Date.String(),
		inst.Start.String(),
		inst.End.String(),
		inst.Note,
		nullSeries(inst.RecurrenceID),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert time off %s: %w", inst.ID, err)
	}
	return nil
}

// UpdateShift mutates start/end/note of one shift. Nil update fields keep
// their stored value. NotFoundError if the id is unknown.
func (s *Store) UpdateShift(ctx context.Context, id rota.InstanceID, update rota.ShiftUpdate) (*rota.ShiftInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.getShift(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Start != nil {
		existing.Start = *update.Start
	}
	if update.End != nil {
		existing.End = *update.End
	}
	if update.Note != nil {
		existing.Note = *update.Note
	}
	// The merged row must still be a well-formed shift, even when only one
	// of the two times was supplied.
	if !existing.Start.Before(existing.End) {
		return nil, &rota.ValidationError{Violations: []rota.FieldViolation{
			{Field: "start_time", Message: "must be before end_time"},
		}}
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE shift_instances
		SET start_time = ?, end_time = ?, note = ?, updated_at = ?
		WHERE id = ?`,
		existing.Start.String(),
		existing.End.String(),
		existing.Note,
		time.Now().UTC().Format(time.RFC3339),
		id,
	)
	if err != nil {
		return nil, storageErr("update shift", err)
	}
	return existing, nil
}

// DeleteShift removes one shift. NotFoundError if nothing matched.
func (s *Store) DeleteShift(ctx context.Context, id rota.InstanceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteOne(ctx, "shift_instances", "shift", string(id))
}

// DeleteTimeOff removes one time-off instance.
func (s *Store) DeleteTimeOff(ctx context.Context, id rota.InstanceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteOne(ctx, "time_off_instances", "time_off", string(id))
}

func (s *Store) deleteOne(ctx context.Context, table, kind, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return storageErr("delete "+kind, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storageErr("delete "+kind, err)
	}
	if affected == 0 {
		return &rota.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}

// DeleteSeries removes every shift and time-off carrying the recurrence id.
// Zero matches across both tables is NotFoundError.
func (s *Store) DeleteSeries(ctx context.Context, recurrenceID rota.SeriesID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storageErr("delete series", err)
	}
	defer tx.Rollback()

	var total int64
	for _, table := range []string{"shift_instances", "time_off_instances"} {
		res, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE recurrence_id = ?", recurrenceID)
		if err != nil {
			return 0, storageErr("delete series", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, storageErr("delete series", err)
		}
		total += affected
	}

	if total == 0 {
		return 0, &rota.NotFoundError{Kind: "series", ID: string(recurrenceID)}
	}
	if err := tx.Commit(); err != nil {
		return 0, storageErr("delete series", err)
	}
	return int(total), nil
}

// =============================================================================
// READS
// =============================================================================

// GetRange returns all instances for the employee dated in [from, to].
func (s *Store) GetRange(ctx context.Context, employeeID rota.EmployeeID, from, to calendar.Date) ([]rota.ShiftInstance, []rota.TimeOffInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shifts, err := s.queryShifts(ctx, `
		SELECT id, employee_id, date, start_time, end_time, note, recurrence_id, origin
		FROM shift_instances
		WHERE employee_id = ? AND date >= ? AND date <= ?`,
		employeeID, from.String(), to.String(),
	)
	if err != nil {
		return nil, nil, storageErr("get range", err)
	}

	timeOffs, err := s.queryTimeOffs(ctx, `
		SELECT id, employee_id, date, start_time, end_time, note, recurrence_id
		FROM time_off_instances
		WHERE employee_id = ? AND date >= ? AND date <= ?`,
		employeeID, from.String(), to.String(),
	)
	if err != nil {
		return nil, nil, storageErr("get range", err)
	}

	return shifts, timeOffs, nil
}

func (s *Store) getShift(ctx context.Context, id rota.InstanceID) (*rota.ShiftInstance, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, date, start_time, end_time, note, recurrence_id, origin
		FROM shift_instances WHERE id = ?`, id)

	inst, err := scanShift(row)
	if err == sql.ErrNoRows {
		return nil, &rota.NotFoundError{Kind: "shift", ID: string(id)}
	}
	if err != nil {
		return nil, storageErr("get shift", err)
	}
	return inst, nil
}

func (s *Store) queryShifts(ctx context.Context, query string, args ...any) ([]rota.ShiftInstance, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var instances []rota.ShiftInstance
	for rows.Next() {
		inst, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		instances = append(instances, *inst)
	}
	return instances, rows.Err()
}

func (s *Store) queryTimeOffs(ctx context.Context, query string, args ...any) ([]rota.TimeOffInstance, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var instances []rota.TimeOffInstance
	for rows.Next() {
		var (
			inst                      rota.TimeOffInstance
			dateStr, startStr, endStr string
			rid                       sql.NullString
		)
		if err := rows.Scan(&inst.ID, &inst.EmployeeID, &dateStr, &startStr, &endStr, &inst.Note, &rid); err != nil {
			return nil, err
		}
		if err := parseDateTimes(dateStr, startStr, endStr, &inst.Date, &inst.Start, &inst.End); err != nil {
			return nil, err
		}
		inst.RecurrenceID = rota.SeriesID(rid.String)
		instances = append(instances, inst)
	}
	return instances, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShift(row rowScanner) (*rota.ShiftInstance, error) {
	var (
		inst                      rota.ShiftInstance
		dateStr, startStr, endStr string
		rid                       sql.NullString
	)
	if err := row.Scan(&inst.ID, &inst.EmployeeID, &dateStr, &startStr, &endStr, &inst.Note, &rid, &inst.Origin); err != nil {
		return nil, err
	}
	if err := parseDateTimes(dateStr, startStr, endStr, &inst.Date, &inst.Start, &inst.End); err != nil {
		return nil, err
	}
	inst.RecurrenceID = rota.SeriesID(rid.String)
	return &inst, nil
}

func parseDateTimes(dateStr, startStr, endStr string, date *calendar.Date, start, end *calendar.TimeOfDay) error {
	var err error
	if *date, err = calendar.ParseDate(dateStr); err != nil {
		return fmt.Errorf("corrupt date column: %w", err)
	}
	if *start, err = calendar.ParseTimeOfDay(startStr); err != nil {
		return fmt.Errorf("corrupt start_time column: %w", err)
	}
	if *end, err = calendar.ParseTimeOfDay(endStr); err != nil {
		return fmt.Errorf("corrupt end_time column: %w", err)
	}
	return nil
}

func nullSeries(rid rota.SeriesID) any {
	if rid == "" {
		return nil
	}
	return string(rid)
}
