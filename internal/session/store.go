// Package session holds per-session quiz state: the retained answers and the
// cached preference profile. Two Store implementations are provided: an
// in-memory map for single-process use and a BadgerDB-backed store for
// durability across restarts.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/yshirakawa/station-fit/internal/domain"
)

// ErrSessionNotFound is returned when a read or write targets a session the
// store has no record of. A missing session is never treated as an empty one;
// that would mask client bugs.
var ErrSessionNotFound = errors.New("session not found")

// State is everything the service keeps per session. Profile is nil until the
// first profile read and reset to nil whenever a new answer arrives.
type State struct {
	Answers []domain.Answer     `json:"answers"`
	Profile *domain.UserProfile `json:"profile,omitempty"`
}

type Store interface {
	Get(ctx context.Context, sessionID string) (State, error)
	Put(ctx context.Context, sessionID string, state State) error
	Delete(ctx context.Context, sessionID string) error
	Exists(ctx context.Context, sessionID string) (bool, error)
}

// MemoryStore is the default Store: a mutex-guarded map. State values are
// stored as-is, so repeated Gets of an unchanged session return the same
// profile pointer.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]State)}
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return State{}, ErrSessionNotFound
	}
	return state, nil
}

func (s *MemoryStore) Put(ctx context.Context, sessionID string, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sessionID] = state
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

func (s *MemoryStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.sessions[sessionID]
	return ok, nil
}
