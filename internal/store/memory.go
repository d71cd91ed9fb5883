// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Used for development and tests, or whenever live games may be lost on restart.
//
// Characteristics:
//   - Keeps one snapshot per session ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Get rebuilds a fresh engine, so callers never share one with the store;
//     changes are only visible to others after Save.

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Liquidine/bp-r3f/internal/game"
)

// ErrNotFound is returned by Get when a session has no live game.
var ErrNotFound = errors.New("game not found")

// Store keeps the live game of each session.
// Implementations may be backed by memory (this file) or SQLite (sqlite.go).
type Store interface {
	// Save persists or replaces the session's game.
	Save(ctx context.Context, id string, e *game.Engine) error

	// Get rebuilds the session's game.
	// Returns ErrNotFound if the session has none.
	Get(ctx context.Context, id string) (*game.Engine, error)
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex          // guards games map
	games map[string]game.State // keyed by session ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{games: make(map[string]game.State)}
}

// Save stores a snapshot of e.
func (m *memory) Save(_ context.Context, id string, e *game.Engine) error {
	st := e.Snapshot()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[id] = st
	return nil
}

// Get restores the stored snapshot into a new engine.
func (m *memory) Get(_ context.Context, id string) (*game.Engine, error) {
	m.mu.RLock()
	st, ok := m.games[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	e, err := game.Restore(st)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", id, err)
	}
	return e, nil
}
