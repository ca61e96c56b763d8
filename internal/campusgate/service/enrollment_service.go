package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jjayakar/campusgate/internal/campusgate/facevec"
	"github.com/jjayakar/campusgate/internal/campusgate/store"
)

var (
	ErrInvalidStudentID = errors.New("student_id is required")
	ErrInvalidName      = errors.New("name is required")
)

// EnrollmentService manages the registry of authorized people.
type EnrollmentService struct {
	people store.PersonStore
}

func NewEnrollmentService(people store.PersonStore) *EnrollmentService {
	return &EnrollmentService{people: people}
}

func (s *EnrollmentService) Enroll(ctx context.Context, studentID, name string, enc facevec.Encoding) error {
	studentID = strings.TrimSpace(studentID)
	name = strings.TrimSpace(name)

	if studentID == "" {
		return ErrInvalidStudentID
	}
	if name == "" {
		return ErrInvalidName
	}
	if err := facevec.Validate(enc); err != nil {
		return err
	}

	return s.people.Enroll(ctx, store.Person{
		StudentID: studentID,
		Name:      name,
		Encoding:  enc,
	})
}

func (s *EnrollmentService) Remove(ctx context.Context, studentID string) error {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return ErrInvalidStudentID
	}
	return s.people.Remove(ctx, studentID)
}

func (s *EnrollmentService) Rename(ctx context.Context, studentID, newName string) error {
	studentID = strings.TrimSpace(studentID)
	newName = strings.TrimSpace(newName)

	if studentID == "" {
		return ErrInvalidStudentID
	}
	if newName == "" {
		return ErrInvalidName
	}
	return s.people.Rename(ctx, studentID, newName)
}

func (s *EnrollmentService) List(ctx context.Context) ([]store.Person, error) {
	return s.people.List(ctx)
}
