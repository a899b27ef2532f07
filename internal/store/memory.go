package store

import (
	"context"
	"sync"

	"github.com/creekwatch/water-quality-service/internal/domain"
)

// MemoryStore keeps readings in a mutex-guarded slice. Used by tests and by
// STORE_BACKEND=memory for throwaway deployments.
type MemoryStore struct {
	mu       sync.Mutex
	readings []domain.Reading
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, r domain.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = append(s.readings, r)
	return nil
}

func (s *MemoryStore) LoadAll(_ context.Context) ([]domain.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Reading, len(s.readings))
	copy(out, s.readings)
	return out, nil
}

func (s *MemoryStore) DeleteAt(_ context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.readings) {
		return indexError(index, len(s.readings))
	}
	s.readings = append(s.readings[:index], s.readings[index+1:]...)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
