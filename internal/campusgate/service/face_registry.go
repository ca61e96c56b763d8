package service

import (
	"context"

	"github.com/jjayakar/campusgate/internal/campusgate/facevec"
	"github.com/jjayakar/campusgate/internal/campusgate/store"
)

// FaceRegistry classifies probe encodings against the enrolled registry.
type FaceRegistry struct {
	people    store.PersonStore
	tolerance float64
}

func NewFaceRegistry(people store.PersonStore, tolerance float64) *FaceRegistry {
	if tolerance <= 0 {
		tolerance = facevec.DefaultTolerance
	}
	return &FaceRegistry{people: people, tolerance: tolerance}
}

// Snapshot captures the registry as an ordered, immutable copy.  A single
// presentation classifies against one snapshot, so a concurrent enrollment
// cannot change the scan order mid-decision.
func (r *FaceRegistry) Snapshot(ctx context.Context) (*Snapshot, error) {
	people, err := r.people.List(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]snapshotEntry, len(people))
	for i, p := range people {
		entries[i] = snapshotEntry{studentID: p.StudentID, encoding: p.Encoding}
	}
	return &Snapshot{entries: entries, tolerance: r.tolerance}, nil
}

type snapshotEntry struct {
	studentID string
	encoding  facevec.Encoding
}

type Snapshot struct {
	entries   []snapshotEntry
	tolerance float64
}

// Classify scans enrolled encodings in enrollment order and returns the
// first identity within tolerance of the probe.  First match wins — not
// nearest match — which keeps tie-breaks deterministic.
func (s *Snapshot) Classify(probe facevec.Encoding) (string, bool, error) {
	if err := facevec.Validate(probe); err != nil {
		return "", false, err
	}
	for _, e := range s.entries {
		if facevec.Matches(e.encoding, probe, s.tolerance) {
			return e.studentID, true, nil
		}
	}
	return "", false, nil
}

// Size returns the number of enrolled entries in the snapshot.
func (s *Snapshot) Size() int { return len(s.entries) }
