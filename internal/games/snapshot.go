package games

import (
	"strings"
	"time"
)

// Snapshot is an immutable set of game records from one successful refresh.
// It is safe for concurrent readers; nothing mutates it after NewSnapshot.
type Snapshot struct {
	games     []Game
	byID      map[int]int
	fetchedAt time.Time
}

// NewSnapshot normalizes records into a new snapshot. Order is kept (upstream
// returns games by popularity); a repeated id keeps its first record.
func NewSnapshot(records []Game, fetchedAt time.Time) *Snapshot {
	s := &Snapshot{
		games:     make([]Game, 0, len(records)),
		byID:      make(map[int]int, len(records)),
		fetchedAt: fetchedAt,
	}
	for _, g := range records {
		if _, dup := s.byID[g.ID]; dup {
			continue
		}
		s.byID[g.ID] = len(s.games)
		s.games = append(s.games, normalize(g))
	}
	return s
}

var empty = NewSnapshot(nil, time.Time{})

// Len reports the number of records; a nil snapshot is empty.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.games)
}

// FetchedAt is when the records were retrieved upstream.
func (s *Snapshot) FetchedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.fetchedAt
}

// Any reports whether fn holds for some record, stopping at the first hit.
func (s *Snapshot) Any(fn func(*Game) bool) bool {
	if s == nil {
		return false
	}
	for i := range s.games {
		if fn(&s.games[i]) {
			return true
		}
	}
	return false
}

// Filter returns the ids of every record fn accepts, in snapshot order.
func (s *Snapshot) Filter(fn func(*Game) bool) []int {
	var ids []int
	if s == nil {
		return ids
	}
	for i := range s.games {
		if fn(&s.games[i]) {
			ids = append(ids, s.games[i].ID)
		}
	}
	return ids
}

// Lookup returns the record with the given id.
func (s *Snapshot) Lookup(id int) (*Game, bool) {
	if s == nil {
		return nil, false
	}
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return &s.games[i], true
}

// Games returns a copy of the records.
func (s *Snapshot) Games() []Game {
	if s == nil {
		return nil
	}
	return append([]Game(nil), s.games...)
}

// Search returns up to limit records whose title contains query,
// case-insensitively, in snapshot order.
func (s *Snapshot) Search(query string, limit int) []Summary {
	out := []Summary{}
	q := strings.ToLower(strings.TrimSpace(query))
	if s == nil || q == "" {
		return out
	}
	if limit <= 0 {
		limit = 20
	}
	for i := range s.games {
		if strings.Contains(strings.ToLower(s.games[i].Title), q) {
			out = append(out, s.games[i].Summary())
			if len(out) == limit {
				break
			}
		}
	}
	return out
}
