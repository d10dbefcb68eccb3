// Package secrets abstracts the external secret store holding provider
// credentials.
package secrets

import (
	"context"
	"errors"
	"sync"
)

var ErrSecretNotFound = errors.New("secret_not_found")

// Store reads and writes named secrets.
type Store interface {
	GetSecret(ctx context.Context, name string) (string, error)
	SetSecret(ctx context.Context, name, value string) error
}

// MemoryStore is an in-process Store for tests and local runs.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore(values map[string]string) *MemoryStore {
	if values == nil {
		values = make(map[string]string)
	}
	return &MemoryStore{values: values}
}

func (s *MemoryStore) GetSecret(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[name]
	if !ok {
		return "", ErrSecretNotFound
	}
	return value, nil
}

func (s *MemoryStore) SetSecret(ctx context.Context, name, value string) error {
	s.mu.Lock()
	s.values[name] = value
	s.mu.Unlock()
	return nil
}
