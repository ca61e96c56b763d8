package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jjayakar/campusgate/internal/campusgate/store"
)

// PersonStore is an in-memory registry for tests and dev.  The backing
// slice preserves enrollment order for the classification scan.
type PersonStore struct {
	mu     sync.RWMutex
	people []store.Person
	index  map[string]int
}

func NewPersonStore() *PersonStore {
	return &PersonStore{index: make(map[string]int)}
}

func (s *PersonStore) Enroll(_ context.Context, p store.Person) error {
	p.StudentID = strings.TrimSpace(p.StudentID)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[p.StudentID]; ok {
		return store.ErrDuplicateIdentity
	}
	s.index[p.StudentID] = len(s.people)
	s.people = append(s.people, p)
	return nil
}

func (s *PersonStore) Remove(_ context.Context, studentID string) error {
	studentID = strings.TrimSpace(studentID)

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[studentID]
	if !ok {
		return store.ErrNotFound
	}
	s.people = slices.Delete(s.people, i, i+1)
	delete(s.index, studentID)
	for j := i; j < len(s.people); j++ {
		s.index[s.people[j].StudentID] = j
	}
	return nil
}

func (s *PersonStore) Rename(_ context.Context, studentID, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[strings.TrimSpace(studentID)]
	if !ok {
		return store.ErrNotFound
	}
	s.people[i].Name = newName
	return nil
}

func (s *PersonStore) Get(_ context.Context, studentID string) (store.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[strings.TrimSpace(studentID)]
	if !ok {
		return store.Person{}, store.ErrNotFound
	}
	return s.people[i], nil
}

func (s *PersonStore) List(_ context.Context) ([]store.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Person, len(s.people))
	copy(out, s.people)
	return out, nil
}

func (s *PersonStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.people)), nil
}
