package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jjayakar/campusgate/internal/campusgate/facevec"
	"github.com/jjayakar/campusgate/internal/campusgate/notify"
	"github.com/jjayakar/campusgate/internal/campusgate/store"
	"github.com/jjayakar/campusgate/internal/campusgate/types"
)

// Enqueuer hands a notification job to the dispatch queue.  Enqueue must
// never block; it reports false if the job could not be queued.
type Enqueuer interface {
	Enqueue(job notify.Job) bool
}

// AccessService orchestrates the two presentation entry points and the
// operator decision callback.
type AccessService struct {
	registry     *FaceRegistry
	events       store.EventStore
	attempts     store.AttemptStore
	verification *VerificationService
	dispatcher   Enqueuer
	logger       *log.Logger
}

func NewAccessService(
	registry *FaceRegistry,
	events store.EventStore,
	attempts store.AttemptStore,
	verification *VerificationService,
	dispatcher Enqueuer,
	logger *log.Logger,
) *AccessService {
	return &AccessService{
		registry:     registry,
		events:       events,
		attempts:     attempts,
		verification: verification,
		dispatcher:   dispatcher,
		logger:       logger,
	}
}

// PresentForEntry classifies the probe and either records an authorized
// entry or opens an unauthorized attempt and queues a security alert.
// The alert is dispatched asynchronously; this call returns as soon as
// the ledger write commits.
func (s *AccessService) PresentForEntry(ctx context.Context, probe facevec.Encoding, imageRef string) (types.EntryResult, error) {
	now := time.Now().UTC()

	if len(probe) == 0 {
		return types.EntryResult{Outcome: types.EntryNoFace}, nil
	}

	snap, err := s.registry.Snapshot(ctx)
	if err != nil {
		return types.EntryResult{}, err
	}
	studentID, ok, err := snap.Classify(probe)
	if err != nil {
		return types.EntryResult{}, err
	}

	if ok {
		if _, err := s.events.RecordEntry(ctx, store.CapturedEvent{
			StudentID:  studentID,
			Encoding:   probe,
			AccessType: store.AccessAuthorized,
			EnteredAt:  now,
		}); err != nil {
			return types.EntryResult{}, err
		}
		return types.EntryResult{Outcome: types.EntryAuthorized, StudentID: studentID}, nil
	}

	attemptID, err := s.attempts.RecordUnauthorized(ctx, probe, now)
	if err != nil {
		return types.EntryResult{}, err
	}

	if !s.dispatcher.Enqueue(notify.Job{
		AttemptID: attemptID,
		ImageRef:  imageRef,
		Timestamp: now,
	}) {
		// The attempt is recorded either way; a full queue only loses
		// the alert, and that loss is logged rather than silent.
		s.logger.Printf("notification queue full, alert dropped for attempt %d", attemptID)
	}

	return types.EntryResult{Outcome: types.EntryUnauthorized, AttemptID: attemptID}, nil
}

// PresentForExit classifies the probe and closes the student's most
// recent open entry.  A non-matching probe records nothing: unlike the
// entry path, exits do not open unauthorized attempts.
func (s *AccessService) PresentForExit(ctx context.Context, probe facevec.Encoding) (types.ExitResult, error) {
	now := time.Now().UTC()

	if len(probe) == 0 {
		return types.ExitResult{Outcome: types.ExitNoFace}, nil
	}

	snap, err := s.registry.Snapshot(ctx)
	if err != nil {
		return types.ExitResult{}, err
	}
	studentID, ok, err := snap.Classify(probe)
	if err != nil {
		return types.ExitResult{}, err
	}
	if !ok {
		return types.ExitResult{Outcome: types.NotPresent}, nil
	}

	err = s.events.RecordExit(ctx, studentID, now)
	if errors.Is(err, store.ErrNoOpenEntry) {
		return types.ExitResult{Outcome: types.NotPresent}, nil
	}
	if err != nil {
		return types.ExitResult{}, err
	}
	return types.ExitResult{Outcome: types.Exited, StudentID: studentID}, nil
}

// DecideAttempt forwards an operator decision to the verification state
// machine.  The returned temporary id is empty for a deny.
func (s *AccessService) DecideAttempt(ctx context.Context, attemptID int64, decision types.Decision) (string, error) {
	return s.verification.Resolve(ctx, attemptID, decision)
}
