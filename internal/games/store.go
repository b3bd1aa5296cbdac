// internal/games/store.go
//
// Store holds the current Snapshot behind an atomic pointer.
// Readers always get a whole snapshot: either the one before a refresh or
// the one after it, never a mix. Writers replace, they never edit in place.
package games

import "sync/atomic"

// Store owns the current metadata snapshot.
type Store struct {
	cur atomic.Pointer[Snapshot]
}

// NewStore returns an empty store.
func NewStore() *Store { return &Store{} }

// Current returns the latest snapshot (an empty one before the first Swap).
func (s *Store) Current() *Snapshot {
	if snap := s.cur.Load(); snap != nil {
		return snap
	}
	return empty
}

// Swap installs next and returns the previous snapshot. A nil next is ignored.
func (s *Store) Swap(next *Snapshot) *Snapshot {
	if next == nil {
		return s.Current()
	}
	prev := s.cur.Swap(next)
	if prev == nil {
		return empty
	}
	return prev
}

// Populated reports whether a non-empty snapshot has been installed.
func (s *Store) Populated() bool { return s.Current().Len() > 0 }
