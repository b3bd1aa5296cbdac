package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/gamegrid/internal/game"
)

func initFor(puzzle string) func() *game.Game {
	return func() *game.Game { return game.New(puzzle, 3, 3, game.DefaultRules()) }
}

func TestGetMissing(t *testing.T) {
	_, err := NewMemoryStore().Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateCreatesAndSaves(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	g, err := st.Update(ctx, "p1", initFor("2024-03-05"), func(g *game.Game) error {
		g.Score = 2
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, g.Score)

	got, err := st.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Score)
	assert.Equal(t, g.ID, got.ID)

	// Returned copies are detached.
	got.Cells["0,0"] = game.CellGuess{GameID: 1}
	again, _ := st.Get(ctx, "p1")
	assert.Empty(t, again.Cells)
}

func TestUpdateErrorDiscardsChanges(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	_, err := st.Update(ctx, "p1", initFor("d"), func(g *game.Game) error { return nil })
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = st.Update(ctx, "p1", nil, func(g *game.Game) error {
		g.Score = 99
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, _ := st.Get(ctx, "p1")
	assert.Zero(t, got.Score)

	_, err = st.Update(ctx, "p2", nil, func(g *game.Game) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateConcurrent(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = st.Update(ctx, "p", initFor("d"), func(g *game.Game) error {
				g.GuessesUsed++
				return nil
			})
		}()
	}
	wg.Wait()
	got, err := st.Get(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, 50, got.GuessesUsed)
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	for _, p := range []struct{ player, puzzle string }{
		{"a", "2024-03-04"}, {"b", "2024-03-05"}, {"c", "2024-03-05"},
	} {
		_, err := st.Update(ctx, p.player, initFor(p.puzzle), func(*game.Game) error { return nil })
		require.NoError(t, err)
	}
	assert.Equal(t, 1, st.Prune(ctx, "2024-03-05"))
	_, err := st.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.Get(ctx, "b")
	assert.NoError(t, err)
	assert.Equal(t, 2, st.Prune(ctx))
}
