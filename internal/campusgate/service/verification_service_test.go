package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jjayakar/campusgate/internal/campusgate/service"
	"github.com/jjayakar/campusgate/internal/campusgate/store"
	"github.com/jjayakar/campusgate/internal/campusgate/store/memory"
	"github.com/jjayakar/campusgate/internal/campusgate/types"
)

func newTestVerification(t *testing.T) (*service.VerificationService, *memory.EventStore, *memory.AttemptStore) {
	t.Helper()
	events := memory.NewEventStore()
	attempts := memory.NewAttemptStore(events)
	return service.NewVerificationService(attempts, silentLogger()), events, attempts
}

func TestResolve_Allow_CreatesTemporaryEntry(t *testing.T) {
	svc, events, attempts := newTestVerification(t)
	ctx := context.Background()

	attemptedAt := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	id, err := attempts.RecordUnauthorized(ctx, testEncoding(5.0), attemptedAt)
	if err != nil {
		t.Fatalf("RecordUnauthorized: %v", err)
	}

	tempID, err := svc.Resolve(ctx, id, types.DecisionAllow)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := fmt.Sprintf("TEMP_%d_20260301", id)
	if tempID != want {
		t.Errorf("temp id = %q, want %q", tempID, want)
	}

	evs := events.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 captured event, got %d", len(evs))
	}
	ev := evs[0]
	if ev.AccessType != store.AccessTemporary {
		t.Errorf("access_type = %s, want temporary", ev.AccessType)
	}
	if ev.StudentID != want {
		t.Errorf("student_id = %q, want %q", ev.StudentID, want)
	}
	// The entry timestamp is the attempt's original timestamp, not the
	// time the operator clicked the link.
	if !ev.EnteredAt.Equal(attemptedAt) {
		t.Errorf("entered_at = %v, want %v", ev.EnteredAt, attemptedAt)
	}

	a, err := attempts.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if a.Status != store.AttemptApproved {
		t.Errorf("status = %s, want approved", a.Status)
	}
}

func TestResolve_Deny_NoEvent(t *testing.T) {
	svc, events, attempts := newTestVerification(t)
	ctx := context.Background()

	id, err := attempts.RecordUnauthorized(ctx, testEncoding(5.0), time.Now().UTC())
	if err != nil {
		t.Fatalf("RecordUnauthorized: %v", err)
	}

	tempID, err := svc.Resolve(ctx, id, types.DecisionDeny)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tempID != "" {
		t.Errorf("deny should not synthesize a temp id, got %q", tempID)
	}
	if len(events.Events()) != 0 {
		t.Error("deny must not create a captured event")
	}

	a, _ := attempts.Get(ctx, id)
	if a.Status != store.AttemptDenied {
		t.Errorf("status = %s, want denied", a.Status)
	}
}

func TestResolve_SecondDecisionConflicts(t *testing.T) {
	svc, events, attempts := newTestVerification(t)
	ctx := context.Background()

	id, _ := attempts.RecordUnauthorized(ctx, testEncoding(5.0), time.Now().UTC())

	if _, err := svc.Resolve(ctx, id, types.DecisionAllow); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	_, err := svc.Resolve(ctx, id, types.DecisionDeny)
	if !errors.Is(err, store.ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}

	// The losing deny must not have touched anything.
	if len(events.Events()) != 1 {
		t.Errorf("expected exactly 1 event, got %d", len(events.Events()))
	}
	a, _ := attempts.Get(ctx, id)
	if a.Status != store.AttemptApproved {
		t.Errorf("status flipped after conflict: %s", a.Status)
	}
}

func TestResolve_UnknownAttempt(t *testing.T) {
	svc, _, _ := newTestVerification(t)

	_, err := svc.Resolve(context.Background(), 404, types.DecisionAllow)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResolve_InvalidDecision(t *testing.T) {
	svc, _, attempts := newTestVerification(t)
	ctx := context.Background()

	id, _ := attempts.RecordUnauthorized(ctx, testEncoding(5.0), time.Now().UTC())

	_, err := svc.Resolve(ctx, id, types.Decision("maybe"))
	if !errors.Is(err, service.ErrInvalidDecision) {
		t.Fatalf("expected ErrInvalidDecision, got %v", err)
	}

	a, _ := attempts.Get(ctx, id)
	if a.Status != store.AttemptPending {
		t.Errorf("invalid decision must leave the attempt pending, got %s", a.Status)
	}
}

func TestResolve_ConcurrentDecisions_ExactlyOneWins(t *testing.T) {
	svc, events, attempts := newTestVerification(t)
	ctx := context.Background()

	id, _ := attempts.RecordUnauthorized(ctx, testEncoding(5.0), time.Now().UTC())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	decisions := []types.Decision{types.DecisionAllow, types.DecisionDeny}
	for i := range decisions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Resolve(ctx, id, decisions[i])
		}()
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, store.ErrAlreadyResolved):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != 1 {
		t.Fatalf("expected exactly one winner and one conflict, got wins=%d conflicts=%d", wins, conflicts)
	}

	// allow winner → one temporary event; deny winner → none.
	a, _ := attempts.Get(ctx, id)
	switch a.Status {
	case store.AttemptApproved:
		if len(events.Events()) != 1 {
			t.Errorf("approved attempt should have 1 event, got %d", len(events.Events()))
		}
	case store.AttemptDenied:
		if len(events.Events()) != 0 {
			t.Errorf("denied attempt should have 0 events, got %d", len(events.Events()))
		}
	default:
		t.Errorf("attempt left in non-terminal state %s", a.Status)
	}
}
