package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jjayakar/campusgate/internal/campusgate/store"
)

// EventStore is an in-memory captured-event ledger for tests and dev.
type EventStore struct {
	mu     sync.Mutex
	events []store.CapturedEvent
	nextID int64
}

func NewEventStore() *EventStore {
	return &EventStore{nextID: 1}
}

func (s *EventStore) RecordEntry(_ context.Context, ev store.CapturedEvent) (int64, error) {
	if ev.EnteredAt.IsZero() {
		ev.EnteredAt = time.Now().UTC()
	}
	ev.StudentID = strings.TrimSpace(ev.StudentID)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(ev), nil
}

// appendLocked assigns the next id and appends.  Callers hold s.mu.
func (s *EventStore) appendLocked(ev store.CapturedEvent) int64 {
	ev.ID = s.nextID
	s.nextID++
	s.events = append(s.events, ev)
	return ev.ID
}

func (s *EventStore) RecordExit(_ context.Context, studentID string, at time.Time) error {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	studentID = strings.TrimSpace(studentID)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Latest open entry wins; ties on entry time go to the later insert.
	best := -1
	for i, ev := range s.events {
		if ev.StudentID != studentID || ev.ExitedAt != nil {
			continue
		}
		if best == -1 || !ev.EnteredAt.Before(s.events[best].EnteredAt) {
			best = i
		}
	}
	if best == -1 {
		return store.ErrNoOpenEntry
	}
	t := at.UTC()
	s.events[best].ExitedAt = &t
	return nil
}

func (s *EventStore) Recent(_ context.Context, limit int) ([]store.CapturedEvent, error) {
	if limit <= 0 {
		limit = 10
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]store.CapturedEvent, len(s.events))
	copy(out, s.events)
	// Most recent entry first; higher id breaks ties.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EnteredAt.Equal(out[j].EnteredAt) {
			return out[i].EnteredAt.After(out[j].EnteredAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *EventStore) All(_ context.Context) ([]store.CapturedEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]store.CapturedEvent, len(s.events))
	copy(out, s.events)
	return out, nil
}

func (s *EventStore) CountByType(_ context.Context, at store.AccessType) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, ev := range s.events {
		if ev.AccessType == at {
			n++
		}
	}
	return n, nil
}

// Events returns a copy of all recorded events.  Test-only helper.
func (s *EventStore) Events() []store.CapturedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.CapturedEvent, len(s.events))
	copy(out, s.events)
	return out
}
