package service

import (
	"context"
	"errors"
	"log"

	"github.com/jjayakar/campusgate/internal/campusgate/store"
	"github.com/jjayakar/campusgate/internal/campusgate/types"
)

var ErrInvalidDecision = errors.New("decision must be allow or deny")

// VerificationService governs the lifecycle of an unauthorized attempt:
// pending until exactly one terminal decision lands, then immutable.
type VerificationService struct {
	attempts store.AttemptStore
	logger   *log.Logger
}

func NewVerificationService(attempts store.AttemptStore, logger *log.Logger) *VerificationService {
	return &VerificationService{attempts: attempts, logger: logger}
}

// Resolve applies a terminal decision to a pending attempt.  On allow it
// returns the synthesized temporary identifier recorded in the ledger; on
// deny it returns "".  The store guarantees the pending check and the
// status flip are atomic, so of two concurrent decisions exactly one
// succeeds and the other sees store.ErrAlreadyResolved.
func (s *VerificationService) Resolve(ctx context.Context, attemptID int64, decision types.Decision) (string, error) {
	if decision != types.DecisionAllow && decision != types.DecisionDeny {
		return "", ErrInvalidDecision
	}

	tempID, err := s.attempts.Resolve(ctx, attemptID, decision)
	if err != nil {
		return "", err
	}

	if decision == types.DecisionAllow {
		s.logger.Printf("attempt %d approved, temporary entry recorded as %s", attemptID, tempID)
	} else {
		s.logger.Printf("attempt %d denied", attemptID)
	}
	return tempID, nil
}
