package store

import (
	"context"
	"time"

	"github.com/jjayakar/campusgate/internal/campusgate/facevec"
)

type AccessType string

const (
	AccessAuthorized AccessType = "authorized"
	AccessTemporary  AccessType = "temporary"
)

// CapturedEvent is one entry (and, once closed, its matching exit) in the
// access ledger.  Events are append-only; the only mutation ever applied
// is setting ExitedAt exactly once.
type CapturedEvent struct {
	ID         int64
	StudentID  string
	Encoding   facevec.Encoding
	AccessType AccessType
	EnteredAt  time.Time
	ExitedAt   *time.Time // nil while the entry is open
}

type EventStore interface {
	// RecordEntry appends a new open event and returns its id.
	RecordEntry(ctx context.Context, ev CapturedEvent) (int64, error)

	// RecordExit closes the most recent open event for studentID by
	// setting its exit timestamp.  Only that one event is touched; older
	// open events (if any) stay open.  Returns ErrNoOpenEntry if the
	// student has no open event — no record is created in that case.
	RecordExit(ctx context.Context, studentID string, at time.Time) error

	// Recent returns up to limit events, most recent entry first.
	// Encodings are not populated.
	Recent(ctx context.Context, limit int) ([]CapturedEvent, error)

	// All returns every event in insertion order, for export.
	// Encodings are not populated.
	All(ctx context.Context) ([]CapturedEvent, error)

	// CountByType returns the number of events with the given access type.
	CountByType(ctx context.Context, at AccessType) (int64, error)
}
