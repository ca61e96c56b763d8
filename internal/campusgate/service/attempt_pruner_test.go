package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/jjayakar/campusgate/internal/campusgate/service"
	"github.com/jjayakar/campusgate/internal/campusgate/store"
	"github.com/jjayakar/campusgate/internal/campusgate/store/memory"
	"github.com/jjayakar/campusgate/internal/campusgate/types"
)

func TestAttemptPruner_DisabledWhenRetentionZero(t *testing.T) {
	attempts := memory.NewAttemptStore(memory.NewEventStore())
	pruner := service.NewAttemptPruner(attempts, service.PrunerConfig{
		RetentionHours:  0,
		IntervalMinutes: 1,
	}, silentLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pruner.Start(ctx)
	// Stop should return immediately without error.
	pruner.Stop()
}

func TestAttemptPruner_ExpiresOnlyStalePending(t *testing.T) {
	attempts := memory.NewAttemptStore(memory.NewEventStore())
	ctx := context.Background()

	oldID, err := attempts.RecordUnauthorized(ctx, testEncoding(1), time.Now().UTC().Add(-48*time.Hour))
	if err != nil {
		t.Fatalf("insert old: %v", err)
	}
	recentID, err := attempts.RecordUnauthorized(ctx, testEncoding(2), time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("insert recent: %v", err)
	}

	// A stale attempt that already has a decision must not be touched.
	decidedID, err := attempts.RecordUnauthorized(ctx, testEncoding(3), time.Now().UTC().Add(-48*time.Hour))
	if err != nil {
		t.Fatalf("insert decided: %v", err)
	}
	if _, err := attempts.Resolve(ctx, decidedID, types.DecisionDeny); err != nil {
		t.Fatalf("resolve decided: %v", err)
	}

	// Expire directly via the store (same operation the pruner calls).
	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	expired, err := attempts.ExpirePendingBefore(ctx, cutoff)
	if err != nil {
		t.Fatalf("ExpirePendingBefore: %v", err)
	}
	if expired != 1 {
		t.Errorf("expected 1 expired, got %d", expired)
	}

	if a, _ := attempts.Get(ctx, oldID); a.Status != store.AttemptExpired {
		t.Errorf("old attempt status = %s, want expired", a.Status)
	}
	if a, _ := attempts.Get(ctx, recentID); a.Status != store.AttemptPending {
		t.Errorf("recent attempt status = %s, want pending", a.Status)
	}
	if a, _ := attempts.Get(ctx, decidedID); a.Status != store.AttemptDenied {
		t.Errorf("decided attempt status = %s, want denied", a.Status)
	}
}

func TestAttemptPruner_ExpiredIsTerminal(t *testing.T) {
	attempts := memory.NewAttemptStore(memory.NewEventStore())
	ctx := context.Background()

	id, _ := attempts.RecordUnauthorized(ctx, testEncoding(1), time.Now().UTC().Add(-48*time.Hour))
	if _, err := attempts.ExpirePendingBefore(ctx, time.Now().UTC()); err != nil {
		t.Fatalf("expire: %v", err)
	}

	svc := service.NewVerificationService(attempts, silentLogger())
	if _, err := svc.Resolve(ctx, id, types.DecisionAllow); err == nil {
		t.Fatal("expected resolving an expired attempt to fail")
	}
}

func TestAttemptPruner_StopIsIdempotent(t *testing.T) {
	attempts := memory.NewAttemptStore(memory.NewEventStore())
	pruner := service.NewAttemptPruner(attempts, service.PrunerConfig{
		RetentionHours:  24,
		IntervalMinutes: 1,
	}, silentLogger())

	ctx, cancel := context.WithCancel(context.Background())
	pruner.Start(ctx)

	cancel()
	// Multiple stops should not panic.
	pruner.Stop()
	pruner.Stop()
}
