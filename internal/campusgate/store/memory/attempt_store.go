package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jjayakar/campusgate/internal/campusgate/facevec"
	"github.com/jjayakar/campusgate/internal/campusgate/store"
	"github.com/jjayakar/campusgate/internal/campusgate/types"
)

// AttemptStore is an in-memory unauthorized-attempt store for tests and
// dev.  Resolve needs to append to the captured-event ledger, so it holds
// a reference to the memory EventStore; the mutex makes the pending check
// and the status flip atomic, mirroring the sqlite transaction.
type AttemptStore struct {
	mu       sync.Mutex
	attempts map[int64]*store.Attempt
	nextID   int64
	events   *EventStore
}

func NewAttemptStore(events *EventStore) *AttemptStore {
	return &AttemptStore{
		attempts: make(map[int64]*store.Attempt),
		nextID:   1,
		events:   events,
	}
}

func (s *AttemptStore) RecordUnauthorized(_ context.Context, enc facevec.Encoding, at time.Time) (int64, error) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.attempts[id] = &store.Attempt{
		ID:          id,
		Encoding:    enc,
		AttemptedAt: at.UTC(),
		Status:      store.AttemptPending,
	}
	return id, nil
}

func (s *AttemptStore) Get(_ context.Context, id int64) (store.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.attempts[id]
	if !ok {
		return store.Attempt{}, store.ErrNotFound
	}
	return *a, nil
}

func (s *AttemptStore) Resolve(ctx context.Context, id int64, decision types.Decision) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.attempts[id]
	if !ok {
		return "", store.ErrNotFound
	}
	if a.Status != store.AttemptPending {
		return "", store.ErrAlreadyResolved
	}

	if decision != types.DecisionAllow {
		a.Status = store.AttemptDenied
		return "", nil
	}

	tempID := store.TempStudentID(id, a.AttemptedAt)
	if _, err := s.events.RecordEntry(ctx, store.CapturedEvent{
		StudentID:  tempID,
		Encoding:   a.Encoding,
		AccessType: store.AccessTemporary,
		EnteredAt:  a.AttemptedAt,
	}); err != nil {
		return "", err
	}
	a.Status = store.AttemptApproved
	return tempID, nil
}

func (s *AttemptStore) ExpirePendingBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired int64
	for _, a := range s.attempts {
		if a.Status == store.AttemptPending && a.AttemptedAt.Before(cutoff) {
			a.Status = store.AttemptExpired
			expired++
		}
	}
	return expired, nil
}

func (s *AttemptStore) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.attempts)), nil
}
