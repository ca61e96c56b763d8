package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jjayakar/campusgate/internal/campusgate/facevec"
	"github.com/jjayakar/campusgate/internal/campusgate/store"
	"github.com/jjayakar/campusgate/internal/campusgate/types"
	dbpkg "github.com/jjayakar/campusgate/internal/db"
)

type AttemptStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewAttemptStore(db *sql.DB, writer *dbpkg.Worker) *AttemptStore {
	return &AttemptStore{db: db, writer: writer}
}

func (s *AttemptStore) RecordUnauthorized(ctx context.Context, enc facevec.Encoding, at time.Time) (int64, error) {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	attemptedMs := at.UTC().UnixMilli()

	var id int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO unauthorized_attempts(face_encoding, attempted_at_ms, status)
VALUES (?, ?, 'pending');
`, facevec.Marshal(enc), attemptedMs)
		if err != nil {
			return fmt.Errorf("RecordUnauthorized insert: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("RecordUnauthorized id: %w", err)
		}
		return nil
	})
	return id, err
}

func (s *AttemptStore) Get(ctx context.Context, id int64) (store.Attempt, error) {
	var (
		a           store.Attempt
		blob        []byte
		attemptedMs int64
		status      string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, face_encoding, attempted_at_ms, status
FROM unauthorized_attempts
WHERE id = ?;
`, id).Scan(&a.ID, &blob, &attemptedMs, &status)
	if err == sql.ErrNoRows {
		return store.Attempt{}, store.ErrNotFound
	}
	if err != nil {
		return store.Attempt{}, fmt.Errorf("Get query: %w", err)
	}

	enc, err := facevec.Unmarshal(blob)
	if err != nil {
		return store.Attempt{}, fmt.Errorf("Get decode encoding for attempt %d: %w", id, err)
	}
	a.Encoding = enc
	a.AttemptedAt = time.UnixMilli(attemptedMs).UTC()
	a.Status = store.AttemptStatus(status)
	return a, nil
}

// Resolve applies a terminal decision inside one writer transaction.  The
// pending check, the temporary event insert (allow only), and the status
// flip commit or roll back together, so two concurrent decisions on the
// same attempt cannot both observe pending.
func (s *AttemptStore) Resolve(ctx context.Context, id int64, decision types.Decision) (string, error) {
	var tempID string

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var (
			blob        []byte
			attemptedMs int64
			status      string
		)
		err := tx.QueryRowContext(ctx, `
SELECT face_encoding, attempted_at_ms, status
FROM unauthorized_attempts
WHERE id = ?;
`, id).Scan(&blob, &attemptedMs, &status)
		if err == sql.ErrNoRows {
			return store.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("Resolve lookup: %w", err)
		}

		if store.AttemptStatus(status) != store.AttemptPending {
			return store.ErrAlreadyResolved
		}

		newStatus := store.AttemptDenied
		if decision == types.DecisionAllow {
			newStatus = store.AttemptApproved

			attemptedAt := time.UnixMilli(attemptedMs).UTC()
			tempID = store.TempStudentID(id, attemptedAt)

			// The temporary event carries the attempt's stored encoding
			// and its original timestamp, not the decision time.
			if _, err := tx.ExecContext(ctx, `
INSERT INTO captured_events(
  student_id, face_encoding, access_type, entry_at_ms, exit_at_ms
) VALUES (?, ?, 'temporary', ?, NULL);
`, tempID, blob, attemptedMs); err != nil {
				return fmt.Errorf("Resolve insert temporary event: %w", err)
			}
		}

		res, err := tx.ExecContext(ctx, `
UPDATE unauthorized_attempts
SET status = ?
WHERE id = ? AND status = 'pending';
`, string(newStatus), id)
		if err != nil {
			return fmt.Errorf("Resolve update status: %w", err)
		}
		if n, _ := res.RowsAffected(); n != 1 {
			return store.ErrAlreadyResolved
		}

		return nil
	})
	if err != nil {
		return "", err
	}
	return tempID, nil
}

func (s *AttemptStore) ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoffMs := cutoff.UTC().UnixMilli()

	var expired int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE unauthorized_attempts
SET status = 'expired'
WHERE status = 'pending' AND attempted_at_ms < ?;
`, cutoffMs)
		if err != nil {
			return fmt.Errorf("ExpirePendingBefore: %w", err)
		}
		expired, _ = res.RowsAffected()
		return nil
	})
	return expired, err
}

func (s *AttemptStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM unauthorized_attempts;`,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return n, nil
}
