package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jjayakar/campusgate/internal/campusgate/facevec"
)

// SeedDev enrolls a sample person so the entry flow can be exercised
// without a real embedding pipeline: replay the same synthetic encoding
// as a probe and it classifies as DEV0001.
func SeedDev(ctx context.Context, db *sql.DB) error {
	now := time.Now().UTC().UnixMilli()

	enc := make(facevec.Encoding, facevec.Dim)
	for i := range enc {
		enc[i] = float64(i%16) * 0.05
	}

	if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO authorized_people(
  student_id, name, face_encoding, created_at_ms, updated_at_ms
) VALUES ('DEV0001', 'Dev Sample', ?, ?, ?);`,
		facevec.Marshal(enc), now, now); err != nil {
		return fmt.Errorf("seed person DEV0001: %w", err)
	}

	return nil
}
