// internal/daily/service.go
//
// Daily puzzle service.
// Generates one grid per UTC date from the category catalog and the current
// metadata snapshot, and keeps it for the rest of the day. Concurrent first
// requests for a date share a single generation.
package daily

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/robalobadob/gamegrid/internal/category"
	"github.com/robalobadob/gamegrid/internal/games"
	"github.com/robalobadob/gamegrid/internal/grid"
)

// Puzzle is a generated grid plus the answers known when it was built.
type Puzzle struct {
	ID          string           `json:"id"`
	Grid        grid.Grid        `json:"grid"`
	Solutions   map[string][]int `json:"validAnswers"`
	GeneratedAt time.Time        `json:"generatedAt"`

	snap *games.Snapshot // snapshot Solutions were computed from
}

// AnswerCounts returns the number of valid answers per cell.
func (p *Puzzle) AnswerCounts() map[string]int {
	out := make(map[string]int, len(p.Solutions))
	for k, ids := range p.Solutions {
		out[k] = len(ids)
	}
	return out
}

// CatalogFunc returns the catalog to use for the next generation.
type CatalogFunc func() *category.Catalog

// Service caches one Puzzle per date.
type Service struct {
	catalog CatalogFunc
	games   *games.Store
	opts    grid.Options
	now     func() time.Time

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]*Puzzle
}

// NewService wires the generator to its inputs.
func NewService(catalog CatalogFunc, store *games.Store, opts grid.Options) *Service {
	return &Service{
		catalog: catalog,
		games:   store,
		opts:    opts,
		now:     time.Now,
		cache:   make(map[string]*Puzzle),
	}
}

// WithClock overrides the time source (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Now returns the service clock in UTC.
func (s *Service) Now() time.Time { return s.now().UTC() }

// Today returns the puzzle for the current UTC date.
func (s *Service) Today(ctx context.Context) (*Puzzle, error) {
	return s.ForDate(ctx, s.Now())
}

// ForDate returns the puzzle for date's UTC day, generating it on first use.
func (s *Service) ForDate(ctx context.Context, date time.Time) (*Puzzle, error) {
	key := DateKey(date)
	s.mu.RLock()
	p, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return s.withAnswers(p), nil
	}

	ch := s.group.DoChan(key, func() (any, error) {
		s.mu.RLock()
		p, ok := s.cache[key]
		s.mu.RUnlock()
		if ok {
			return p, nil
		}
		p = s.Build(date)
		s.mu.Lock()
		s.cache[key] = p
		s.prune(key)
		s.mu.Unlock()
		return p, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return s.withAnswers(res.Val.(*Puzzle)), nil
	}
}

// withAnswers recomputes Solutions for a fallback grid that was built before
// any games were loaded. The grid itself stays fixed for the day.
func (s *Service) withAnswers(p *Puzzle) *Puzzle {
	cur := s.games.Current()
	if !p.Grid.Fallback || p.snap.Len() > 0 || cur.Len() == 0 {
		return p
	}
	next := *p
	next.Solutions = grid.Solutions(p.Grid, cur)
	next.snap = cur

	s.mu.Lock()
	defer s.mu.Unlock()
	if held, ok := s.cache[p.ID]; ok && held != p {
		return held
	}
	if _, ok := s.cache[p.ID]; ok {
		s.cache[p.ID] = &next
	}
	return &next
}

// Build generates a puzzle for date without touching the cache.
func (s *Service) Build(date time.Time) *Puzzle {
	snap := s.games.Current()
	cat := s.catalog()
	g := grid.Generate(cat.All(), snap, date, s.opts)
	key := DateKey(date)
	if g.Fallback {
		log.Info().
			Str("puzzle", key).
			Int("attempts", g.Attempts).
			Int("games", snap.Len()).
			Int("categories", cat.Len()).
			Msg("no grid found, using fallback")
	} else {
		log.Info().Str("puzzle", key).Int("attempts", g.Attempts).Msg("daily grid generated")
	}
	return &Puzzle{
		ID:          key,
		Grid:        g,
		Solutions:   grid.Solutions(g, snap),
		GeneratedAt: s.Now(),
		snap:        snap,
	}
}

// prune keeps yesterday, today and tomorrow around newest; callers hold mu.
func (s *Service) prune(newest string) {
	t, err := ParseDateKey(newest)
	if err != nil {
		return
	}
	keep := map[string]bool{
		DateKey(t.AddDate(0, 0, -1)): true,
		newest:                       true,
		DateKey(t.AddDate(0, 0, 1)):  true,
	}
	for k := range s.cache {
		if !keep[k] {
			delete(s.cache, k)
		}
	}
}
