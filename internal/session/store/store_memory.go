package store

import (
	"context"
	"sync"
)

// MemoryStore keeps the credential in process memory. Used by tests and by
// embedders that manage their own persistence.
type MemoryStore struct {
	mu         sync.RWMutex
	credential string
	present    bool
}

func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.present {
		return "", ErrNoCredential
	}
	return s.credential, nil
}

func (s *MemoryStore) Save(_ context.Context, credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = credential
	s.present = true
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = ""
	s.present = false
	return nil
}
