// internal/harvest/refresher.go
//
// Periodic metadata refresh.
// Responsibilities:
//   - Fetch from the upstream Source with exponential backoff.
//   - Swap a new snapshot into the games.Store only on a non-empty success.
//   - Persist the snapshot to the archive (best effort).
//   - Seed the store from the archive at startup.
//
// A failed refresh leaves the previous snapshot in place; grid generation
// keeps using it.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/gamegrid/internal/games"
)

// ErrEmptyFetch is returned when upstream answers with no records.
var ErrEmptyFetch = errors.New("harvest: upstream returned no games")

// Archiver persists and restores snapshots.
type Archiver interface {
	Save(ctx context.Context, snap *games.Snapshot) error
	Load(ctx context.Context) (*games.Snapshot, error)
}

// Refresher owns refreshes of a games.Store.
type Refresher struct {
	source   Source
	store    *games.Store
	archive  Archiver // optional
	interval time.Duration

	// NewBackOff builds the retry policy for one refresh.
	NewBackOff func() backoff.BackOff
	now        func() time.Time
}

// NewRefresher wires a refresher; archive may be nil.
func NewRefresher(src Source, store *games.Store, archive Archiver, interval time.Duration) *Refresher {
	return &Refresher{
		source:   src,
		store:    store,
		archive:  archive,
		interval: interval,
		NewBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 2 * time.Second
			b.MaxInterval = time.Minute
			b.MaxElapsedTime = 5 * time.Minute
			return b
		},
		now: time.Now,
	}
}

// Restore loads the archived snapshot into the store if the store is empty.
func (r *Refresher) Restore(ctx context.Context) error {
	if r.archive == nil || r.store.Populated() {
		return nil
	}
	snap, err := r.archive.Load(ctx)
	if err != nil {
		return fmt.Errorf("load archive: %w", err)
	}
	if snap.Len() == 0 {
		log.Info().Msg("game archive is empty")
		return nil
	}
	r.store.Swap(snap)
	log.Info().Int("games", snap.Len()).Msg("restored games from archive")
	return nil
}

// Refresh performs one fetch (with retries) and swaps the result in.
func (r *Refresher) Refresh(ctx context.Context) (*games.Snapshot, error) {
	var records []games.Game
	op := func() error {
		list, err := r.source.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		if len(list) == 0 {
			return ErrEmptyFetch
		}
		records = list
		return nil
	}
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("retry_in", wait).Msg("game refresh failed, retrying")
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(r.NewBackOff(), ctx), notify); err != nil {
		log.Error().Err(err).Int("kept_games", r.store.Current().Len()).Msg("game refresh failed, keeping previous snapshot")
		return nil, err
	}

	snap := games.NewSnapshot(records, r.now().UTC())
	r.store.Swap(snap)
	log.Info().Int("games", snap.Len()).Msg("game cache refreshed")

	if r.archive != nil {
		if err := r.archive.Save(ctx, snap); err != nil {
			log.Warn().Err(err).Msg("archive snapshot")
		}
	}
	return snap, nil
}

// Run refreshes immediately and then every interval until ctx is done.
// Refresh errors are logged, never returned.
func (r *Refresher) Run(ctx context.Context) error {
	_, _ = r.Refresh(ctx)
	if r.interval <= 0 {
		<-ctx.Done()
		return nil
	}
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			_, _ = r.Refresh(ctx)
		}
	}
}
