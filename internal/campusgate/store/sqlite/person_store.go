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

type PersonStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewPersonStore(db *sql.DB, writer *dbpkg.Worker) *PersonStore {
	return &PersonStore{db: db, writer: writer}
}

func (s *PersonStore) Enroll(ctx context.Context, p store.Person) error {
	studentID := strings.TrimSpace(p.StudentID)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	nowMs := p.CreatedAt.UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		// Check-then-insert is race-free here: the writer serializes
		// every transaction.
		var one int
		err := tx.QueryRowContext(ctx, `
SELECT 1 FROM authorized_people WHERE student_id = ?;
`, studentID).Scan(&one)
		if err == nil {
			return store.ErrDuplicateIdentity
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("Enroll check: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
INSERT INTO authorized_people(
  student_id, name, face_encoding, created_at_ms, updated_at_ms
) VALUES (?, ?, ?, ?, ?);
`, studentID, p.Name, facevec.Marshal(p.Encoding), nowMs, nowMs); err != nil {
			return fmt.Errorf("Enroll insert: %w", err)
		}

		return nil
	})
}

func (s *PersonStore) Remove(ctx context.Context, studentID string) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
DELETE FROM authorized_people WHERE student_id = ?;
`, strings.TrimSpace(studentID))
		if err != nil {
			return fmt.Errorf("Remove: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

func (s *PersonStore) Rename(ctx context.Context, studentID, newName string) error {
	nowMs := time.Now().UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE authorized_people
SET name = ?,
    updated_at_ms = ?
WHERE student_id = ?;
`, newName, nowMs, strings.TrimSpace(studentID))
		if err != nil {
			return fmt.Errorf("Rename: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

func (s *PersonStore) Get(ctx context.Context, studentID string) (store.Person, error) {
	var (
		p         store.Person
		blob      []byte
		createdMs int64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT student_id, name, face_encoding, created_at_ms
FROM authorized_people
WHERE student_id = ?;
`, strings.TrimSpace(studentID)).Scan(&p.StudentID, &p.Name, &blob, &createdMs)
	if err == sql.ErrNoRows {
		return store.Person{}, store.ErrNotFound
	}
	if err != nil {
		return store.Person{}, fmt.Errorf("Get query: %w", err)
	}

	enc, err := facevec.Unmarshal(blob)
	if err != nil {
		return store.Person{}, fmt.Errorf("Get decode encoding for %s: %w", p.StudentID, err)
	}
	p.Encoding = enc
	p.CreatedAt = time.UnixMilli(createdMs).UTC()
	return p, nil
}

// List returns people in enrollment (rowid) order, which classification
// relies on for its first-match-wins scan.
func (s *PersonStore) List(ctx context.Context) ([]store.Person, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT student_id, name, face_encoding, created_at_ms
FROM authorized_people
ORDER BY rowid;
`)
	if err != nil {
		return nil, fmt.Errorf("List query: %w", err)
	}
	defer rows.Close()

	var people []store.Person
	for rows.Next() {
		var (
			p         store.Person
			blob      []byte
			createdMs int64
		)
		if err := rows.Scan(&p.StudentID, &p.Name, &blob, &createdMs); err != nil {
			return nil, fmt.Errorf("List scan: %w", err)
		}
		enc, err := facevec.Unmarshal(blob)
		if err != nil {
			return nil, fmt.Errorf("List decode encoding for %s: %w", p.StudentID, err)
		}
		p.Encoding = enc
		p.CreatedAt = time.UnixMilli(createdMs).UTC()
		people = append(people, p)
	}
	return people, rows.Err()
}

func (s *PersonStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM authorized_people;`,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return n, nil
}
