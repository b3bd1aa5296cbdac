// internal/store/memory.go
//
// In-memory implementation of the session Store.
// Holds each player's current daily session, keyed by player id.
//
// Characteristics:
//   - Concurrency-safe via RWMutex; Update runs its callback under the write lock.
//   - Get returns a copy, so callers cannot mutate stored state behind the lock.
//   - State is lost when the process restarts.
//   - Sessions for puzzles other than the ones kept by Prune are dropped.

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/robalobadob/gamegrid/internal/game"
)

// ErrNotFound is returned by Get for unknown players.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for player sessions.
type Store interface {
	// Get returns a copy of the player's session.
	Get(ctx context.Context, playerID string) (*game.Game, error)

	// Update loads (or creates via init) the player's session and applies fn
	// atomically. The session is saved only when fn returns nil.
	Update(ctx context.Context, playerID string, init func() *game.Game, fn func(*game.Game) error) (*game.Game, error)

	// Prune drops sessions whose puzzle id is not in keep.
	Prune(ctx context.Context, keep ...string) int
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex          // guards sessions map
	sessions map[string]*game.Game // keyed by player id
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*game.Game)}
}

func (m *memory) Get(ctx context.Context, playerID string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.sessions[playerID]; ok {
		return g.Clone(), nil
	}
	return nil, ErrNotFound
}

func (m *memory) Update(ctx context.Context, playerID string, init func() *game.Game, fn func(*game.Game) error) (*game.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.sessions[playerID]
	if !ok {
		if init == nil {
			return nil, ErrNotFound
		}
		cur = init()
	}
	work := cur.Clone()
	if err := fn(work); err != nil {
		return cur.Clone(), err
	}
	m.sessions[playerID] = work
	return work.Clone(), nil
}

func (m *memory) Prune(ctx context.Context, keep ...string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, g := range m.sessions {
		drop := true
		for _, k := range keep {
			if g.PuzzleID == k {
				drop = false
				break
			}
		}
		if drop {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}
