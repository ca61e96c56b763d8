package service

import (
	"context"
	"errors"
	"time"

	"github.com/jjayakar/campusgate/internal/campusgate/store"
)

// ReportService builds read-only projections over the ledger for the
// reporting surface.  No invariants beyond read consistency.
type ReportService struct {
	people   store.PersonStore
	events   store.EventStore
	attempts store.AttemptStore
}

func NewReportService(people store.PersonStore, events store.EventStore, attempts store.AttemptStore) *ReportService {
	return &ReportService{people: people, events: events, attempts: attempts}
}

type RecentEvent struct {
	StudentID  string     `json:"student_id"`
	Name       string     `json:"name,omitempty"`
	AccessType string     `json:"access_type"`
	EnteredAt  time.Time  `json:"entry_timestamp"`
	ExitedAt   *time.Time `json:"exit_timestamp,omitempty"`
}

type Summary struct {
	TotalAuthorized   int64         `json:"total_authorized"`
	TotalEntries      int64         `json:"total_entries"`
	TotalUnauthorized int64         `json:"total_unauthorized"`
	RecentEntries     []RecentEvent `json:"recent_entries"`
}

func (s *ReportService) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	var err error

	if sum.TotalAuthorized, err = s.people.Count(ctx); err != nil {
		return Summary{}, err
	}
	if sum.TotalEntries, err = s.events.CountByType(ctx, store.AccessAuthorized); err != nil {
		return Summary{}, err
	}
	if sum.TotalUnauthorized, err = s.attempts.Count(ctx); err != nil {
		return Summary{}, err
	}

	recent, err := s.events.Recent(ctx, 10)
	if err != nil {
		return Summary{}, err
	}
	sum.RecentEntries = make([]RecentEvent, 0, len(recent))
	for _, ev := range recent {
		re := RecentEvent{
			StudentID:  ev.StudentID,
			AccessType: string(ev.AccessType),
			EnteredAt:  ev.EnteredAt,
			ExitedAt:   ev.ExitedAt,
		}
		// Temporary identifiers have no registry row; leave the name blank.
		p, err := s.people.Get(ctx, ev.StudentID)
		if err == nil {
			re.Name = p.Name
		} else if !errors.Is(err, store.ErrNotFound) {
			return Summary{}, err
		}
		sum.RecentEntries = append(sum.RecentEntries, re)
	}
	return sum, nil
}

// AuthorizedRows returns the registry as CSV rows (header included).
func (s *ReportService) AuthorizedRows(ctx context.Context) ([][]string, error) {
	people, err := s.people.List(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(people)+1)
	rows = append(rows, []string{"student_id", "name"})
	for _, p := range people {
		rows = append(rows, []string{p.StudentID, p.Name})
	}
	return rows, nil
}

// CapturedRows returns the event ledger as CSV rows (header included).
func (s *ReportService) CapturedRows(ctx context.Context) ([][]string, error) {
	events, err := s.events.All(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(events)+1)
	rows = append(rows, []string{"student_id", "access_type", "entry_timestamp", "exit_timestamp"})
	for _, ev := range events {
		exit := ""
		if ev.ExitedAt != nil {
			exit = ev.ExitedAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []string{
			ev.StudentID,
			string(ev.AccessType),
			ev.EnteredAt.UTC().Format(time.RFC3339),
			exit,
		})
	}
	return rows, nil
}
