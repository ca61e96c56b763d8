package store

import (
	"context"
	"time"

	"github.com/jjayakar/campusgate/internal/campusgate/facevec"
)

// Person is an enrolled identity authorized to enter the facility.
type Person struct {
	StudentID string
	Name      string
	Encoding  facevec.Encoding
	CreatedAt time.Time
}

// PersonStore owns the registry of authorized people.  student_id is the
// unique key; Enroll never overwrites an existing row.
type PersonStore interface {
	// Enroll inserts a new person.  Returns ErrDuplicateIdentity if the
	// student_id is already enrolled; the registry is left unchanged.
	Enroll(ctx context.Context, p Person) error

	// Remove deletes a person.  Returns ErrNotFound if absent.
	Remove(ctx context.Context, studentID string) error

	// Rename updates a person's display name.  Returns ErrNotFound if absent.
	Rename(ctx context.Context, studentID, newName string) error

	// Get returns a single person.  Returns ErrNotFound if absent.
	Get(ctx context.Context, studentID string) (Person, error)

	// List returns every enrolled person in enrollment order.  The order
	// is load-bearing: classification scans it first-match-wins.
	List(ctx context.Context) ([]Person, error)

	// Count returns the number of enrolled people.
	Count(ctx context.Context) (int64, error)
}
