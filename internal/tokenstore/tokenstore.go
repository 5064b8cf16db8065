// Package tokenstore persists per-admin upload credentials (GitHub personal
// access tokens) across sessions.
package tokenstore

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when no token is stored for the user.
var ErrNotFound = errors.New("tokenstore: token not found")

// Store saves and retrieves upload tokens keyed by admin user ID.
type Store interface {
	Get(ctx context.Context, userID string) (string, error)
	Set(ctx context.Context, userID, token string) error
	// Clear removes a stored token. Clearing an absent token is a no-op.
	Clear(ctx context.Context, userID string) error
}

// MemoryStore keeps tokens in process memory. Tokens do not survive a
// restart, matching a deployment without Redis.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]string)}
}

func (s *MemoryStore) Get(ctx context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[userID]
	if !ok {
		return "", ErrNotFound
	}
	return token, nil
}

func (s *MemoryStore) Set(ctx context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[userID] = token
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, userID)
	return nil
}
