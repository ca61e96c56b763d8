package store

import (
	"context"
	"time"

	"github.com/jjayakar/campusgate/internal/campusgate/facevec"
	"github.com/jjayakar/campusgate/internal/campusgate/types"
)

type AttemptStatus string

const (
	AttemptPending  AttemptStatus = "pending"
	AttemptApproved AttemptStatus = "approved"
	AttemptDenied   AttemptStatus = "denied"
	AttemptExpired  AttemptStatus = "expired"
)

// Attempt is a recorded unauthorized entry attempt awaiting (or past) a
// human decision.  Status moves from pending to exactly one terminal
// state and never changes again.
type Attempt struct {
	ID          int64
	Encoding    facevec.Encoding
	AttemptedAt time.Time
	Status      AttemptStatus
}

type AttemptStore interface {
	// RecordUnauthorized appends a pending attempt and returns its id.
	RecordUnauthorized(ctx context.Context, enc facevec.Encoding, at time.Time) (int64, error)

	// Get returns a single attempt.  Returns ErrNotFound if absent.
	Get(ctx context.Context, id int64) (Attempt, error)

	// Resolve applies a terminal decision to a pending attempt.
	//
	// For DecisionAllow it inserts a temporary captured event carrying
	// the attempt's stored encoding and original timestamp, flips the
	// status to approved, and returns the synthesized temporary
	// identifier.  For DecisionDeny it flips the status to denied and
	// returns "".  Both the status update and any event insert commit
	// atomically; a failure leaves the attempt pending.
	//
	// Returns ErrNotFound for an unknown id and ErrAlreadyResolved if
	// the attempt is already terminal.  Concurrent calls on the same id
	// are serialized: exactly one observes success.
	Resolve(ctx context.Context, id int64, decision types.Decision) (string, error)

	// ExpirePendingBefore flips pending attempts older than cutoff to
	// expired and returns how many were flipped.
	ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Count returns the total number of attempts, any status.
	Count(ctx context.Context) (int64, error)
}
