package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jjayakar/campusgate/internal/campusgate/facevec"
	"github.com/jjayakar/campusgate/internal/campusgate/store"
	dbpkg "github.com/jjayakar/campusgate/internal/db"
)

type EventStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewEventStore(db *sql.DB, writer *dbpkg.Worker) *EventStore {
	return &EventStore{db: db, writer: writer}
}

func (s *EventStore) RecordEntry(ctx context.Context, ev store.CapturedEvent) (int64, error) {
	if ev.EnteredAt.IsZero() {
		ev.EnteredAt = time.Now().UTC()
	}
	entryMs := ev.EnteredAt.UTC().UnixMilli()

	var id int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO captured_events(
  student_id, face_encoding, access_type, entry_at_ms, exit_at_ms
) VALUES (?, ?, ?, ?, NULL);
`, strings.TrimSpace(ev.StudentID), facevec.Marshal(ev.Encoding), string(ev.AccessType), entryMs)
		if err != nil {
			return fmt.Errorf("RecordEntry insert: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("RecordEntry id: %w", err)
		}
		return nil
	})
	return id, err
}

// RecordExit closes only the most recent open entry for the student.
// Older open entries, if any exist, are left untouched.
func (s *EventStore) RecordExit(ctx context.Context, studentID string, at time.Time) error {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	exitMs := at.UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE captured_events
SET exit_at_ms = ?
WHERE id = (
  SELECT id FROM captured_events
  WHERE student_id = ? AND exit_at_ms IS NULL
  ORDER BY entry_at_ms DESC, id DESC
  LIMIT 1
);
`, exitMs, strings.TrimSpace(studentID))
		if err != nil {
			return fmt.Errorf("RecordExit: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return store.ErrNoOpenEntry
		}
		return nil
	})
}

func (s *EventStore) Recent(ctx context.Context, limit int) ([]store.CapturedEvent, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, student_id, access_type, entry_at_ms, exit_at_ms
FROM captured_events
ORDER BY entry_at_ms DESC, id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("Recent query: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *EventStore) All(ctx context.Context) ([]store.CapturedEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, student_id, access_type, entry_at_ms, exit_at_ms
FROM captured_events
ORDER BY id;
`)
	if err != nil {
		return nil, fmt.Errorf("All query: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *EventStore) CountByType(ctx context.Context, at store.AccessType) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM captured_events WHERE access_type = ?;`, string(at),
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("CountByType: %w", err)
	}
	return n, nil
}

func scanEvents(rows *sql.Rows) ([]store.CapturedEvent, error) {
	var events []store.CapturedEvent
	for rows.Next() {
		var (
			ev      store.CapturedEvent
			at      string
			entryMs int64
			exitMs  sql.NullInt64
		)
		if err := rows.Scan(&ev.ID, &ev.StudentID, &at, &entryMs, &exitMs); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.AccessType = store.AccessType(at)
		ev.EnteredAt = time.UnixMilli(entryMs).UTC()
		if exitMs.Valid {
			t := time.UnixMilli(exitMs.Int64).UTC()
			ev.ExitedAt = &t
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
