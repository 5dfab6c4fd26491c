package store

import (
	"context"
	"sync"
)

// MemStore is an in-process Store used by tests and local development.
type MemStore struct {
	mu       sync.Mutex
	envelope string
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Read(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.envelope, nil
}

func (s *MemStore) Write(ctx context.Context, envelope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envelope = envelope
	return nil
}

func (s *MemStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envelope = ""
	return nil
}
