package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/gamegrid/internal/category"
	"github.com/robalobadob/gamegrid/internal/games"
	"github.com/robalobadob/gamegrid/internal/grid"
)

// testGrid is a 3×3 grid of genres × platforms.
func testGrid() grid.Grid {
	return grid.Grid{
		Rows: []category.Category{
			category.New(category.Genres, "Role-playing (RPG)", "RPG"),
			category.New(category.Genres, "Shooter", ""),
			category.New(category.Genres, "Racing", ""),
		},
		Cols: []category.Category{
			category.New(category.Platforms, "PC (Microsoft Windows)", "PC"),
			category.New(category.Platforms, "Xbox One", ""),
			category.New(category.Platforms, "Nintendo Switch", ""),
		},
	}
}

var (
	genreNames    = []string{"Role-playing (RPG)", "Shooter", "Racing"}
	platformNames = []string{"PC (Microsoft Windows)", "Xbox One", "Nintendo Switch"}
)

// answer returns a game that is correct for exactly (row, col).
func answer(row, col int) *games.Game {
	return &games.Game{
		ID:        100 + row*10 + col,
		Title:     genreNames[row] + " on " + platformNames[col],
		Genres:    []string{genreNames[row]},
		Platforms: []string{platformNames[col]},
	}
}

var miss = &games.Game{ID: 1, Title: "Puzzle on PS2", Genres: []string{"Puzzle"}, Platforms: []string{"PlayStation 2"}}

func newGame(rules Rules) *Game { return New("2024-03-05", 3, 3, rules) }

func TestNewGame(t *testing.T) {
	g := newGame(DefaultRules())
	assert.NotEmpty(t, g.ID)
	assert.Equal(t, 9, g.GuessesLeft)
	assert.Equal(t, PhasePlaying, g.Phase)
	assert.Empty(t, g.Cells)

	g = New("p", 3, 3, Rules{})
	assert.Equal(t, DefaultLives, g.GuessesLeft)
}

func TestCorrectGuessRPGxPC(t *testing.T) {
	g := newGame(DefaultRules())
	w3 := &games.Game{
		ID: 1942, Title: "The Witcher 3", Year: games.YearOf(2015),
		Genres: []string{"Role-playing (RPG)"}, Platforms: []string{"PC (Microsoft Windows)"},
	}
	out, err := g.ApplyGuess(testGrid(), 0, 0, w3)
	require.NoError(t, err)
	assert.True(t, out.Correct)
	assert.Equal(t, "0,0", out.Cell)
	assert.Equal(t, 1, out.Score)
	assert.Equal(t, 8, out.GuessesLeft)
	assert.Equal(t, PhasePlaying, out.State)
	assert.Equal(t, 1942, g.Cells["0,0"].GameID)
	assert.Equal(t, 1, g.GuessesUsed)
}

func TestIncorrectGuessDefaultRules(t *testing.T) {
	g := newGame(DefaultRules())
	out, err := g.ApplyGuess(testGrid(), 1, 1, miss)
	require.NoError(t, err)
	assert.False(t, out.Correct)
	assert.Equal(t, 8, out.GuessesLeft)
	assert.Equal(t, 0, out.Score)
	_, recorded := g.Cells["1,1"]
	assert.False(t, recorded, "a miss leaves the cell open")

	// The cell can still be filled.
	out, err = g.ApplyGuess(testGrid(), 1, 1, answer(1, 1))
	require.NoError(t, err)
	assert.True(t, out.Correct)
}

func TestRulesOnlyMissesCost(t *testing.T) {
	g := newGame(Rules{Lives: 9, ConsumeOnEveryGuess: false})
	out, _ := g.ApplyGuess(testGrid(), 0, 0, answer(0, 0))
	assert.Equal(t, 9, out.GuessesLeft)
	out, _ = g.ApplyGuess(testGrid(), 0, 1, miss)
	assert.Equal(t, 8, out.GuessesLeft)
}

func TestRulesLockCellOnAnyGuess(t *testing.T) {
	g := newGame(Rules{Lives: 9, ConsumeOnEveryGuess: true, LockCellOnAnyGuess: true})
	_, err := g.ApplyGuess(testGrid(), 2, 2, miss)
	require.NoError(t, err)
	assert.False(t, g.Cells["2,2"].Correct)

	before := *g
	_, err = g.ApplyGuess(testGrid(), 2, 2, answer(2, 2))
	assert.ErrorIs(t, err, ErrCellLocked)
	assert.Equal(t, before.GuessesLeft, g.GuessesLeft)
}

func TestFullBoardWithMissIsLost(t *testing.T) {
	rules := Rules{Lives: 9, ConsumeOnEveryGuess: false, LockCellOnAnyGuess: true}

	single := New("2024-03-05", 1, 1, rules)
	out, err := single.ApplyGuess(testGrid(), 0, 0, miss)
	require.NoError(t, err)
	assert.Equal(t, PhaseLost, out.State)
	assert.Equal(t, 8, out.GuessesLeft)

	g := newGame(rules)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			candidate := answer(r, c)
			if r == 2 && c == 2 {
				candidate = miss
			}
			out, err = g.ApplyGuess(testGrid(), r, c, candidate)
			require.NoError(t, err)
		}
	}
	assert.Equal(t, PhaseLost, g.Phase)
	assert.Equal(t, 8, g.Score)
	assert.Equal(t, 8, out.GuessesLeft)
	assert.True(t, g.Finished())
}

func TestRejectedGuessesDoNotChangeState(t *testing.T) {
	g := newGame(DefaultRules())
	_, err := g.ApplyGuess(testGrid(), 0, 0, answer(0, 0))
	require.NoError(t, err)
	snapshot := g.Clone()

	_, err = g.ApplyGuess(testGrid(), 0, 0, answer(0, 0))
	assert.ErrorIs(t, err, ErrCellLocked)

	_, err = g.ApplyGuess(testGrid(), 3, 0, answer(0, 0))
	assert.ErrorIs(t, err, ErrInvalidCell)
	_, err = g.ApplyGuess(testGrid(), 0, -1, answer(0, 0))
	assert.ErrorIs(t, err, ErrInvalidCell)

	_, err = g.ApplyGuess(testGrid(), 1, 0, nil)
	assert.ErrorIs(t, err, ErrNoCandidate)

	// Same game in another cell, even if it would match there.
	both := answer(0, 0)
	both.Genres = append(both.Genres, "Shooter")
	_, err = g.ApplyGuess(testGrid(), 1, 0, both)
	assert.ErrorIs(t, err, ErrGameUsed)

	assert.Equal(t, snapshot, g)
}

func TestWinTakesPrecedence(t *testing.T) {
	g := newGame(DefaultRules())
	var out Outcome
	var err error
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out, err = g.ApplyGuess(testGrid(), r, c, answer(r, c))
			require.NoError(t, err)
		}
	}
	// Ninth correct guess also spends the last life: still a win.
	assert.Equal(t, 0, out.GuessesLeft)
	assert.Equal(t, 9, out.Score)
	assert.Equal(t, PhaseWon, out.State)
	assert.True(t, g.Finished())
}

func TestLossAndMonotonic(t *testing.T) {
	g := newGame(Rules{Lives: 3, ConsumeOnEveryGuess: true})
	for i := 0; i < 3; i++ {
		_, err := g.ApplyGuess(testGrid(), 0, 0, miss)
		require.NoError(t, err)
	}
	assert.Equal(t, PhaseLost, g.Phase)

	out, err := g.ApplyGuess(testGrid(), 0, 0, answer(0, 0))
	assert.ErrorIs(t, err, ErrFinished)
	assert.Equal(t, PhaseLost, out.State)
	assert.Equal(t, 0, g.Score)

	g.GiveUp()
	assert.Equal(t, PhaseLost, g.Phase)
}

func TestGiveUp(t *testing.T) {
	g := newGame(DefaultRules())
	_, _ = g.ApplyGuess(testGrid(), 0, 0, answer(0, 0))
	g.GiveUp()
	assert.Equal(t, PhaseLost, g.Phase)
	assert.Equal(t, 0, g.GuessesLeft)
	assert.Equal(t, 1, g.Score)

	won := newGame(Rules{Lives: 1, ConsumeOnEveryGuess: true})
	won.Rows, won.Cols = 1, 1
	_, err := won.ApplyGuess(testGrid(), 0, 0, answer(0, 0))
	require.NoError(t, err)
	require.Equal(t, PhaseWon, won.Phase)
	won.GiveUp()
	assert.Equal(t, PhaseWon, won.Phase)
}

func TestSyncResetsOnNewPuzzle(t *testing.T) {
	g := newGame(DefaultRules())
	id := g.ID
	_, _ = g.ApplyGuess(testGrid(), 0, 0, answer(0, 0))
	g.GiveUp()

	assert.False(t, g.Sync("2024-03-05", 3, 3))
	assert.Equal(t, PhaseLost, g.Phase)

	assert.True(t, g.Sync("2024-03-06", 4, 4))
	assert.Equal(t, id, g.ID)
	assert.Equal(t, "2024-03-06", g.PuzzleID)
	assert.Equal(t, PhasePlaying, g.Phase)
	assert.Equal(t, 9, g.GuessesLeft)
	assert.Zero(t, g.Score)
	assert.Empty(t, g.Cells)
	assert.Equal(t, 4, g.Rows)
}

func TestSetRarityAndClone(t *testing.T) {
	g := newGame(DefaultRules())
	_, _ = g.ApplyGuess(testGrid(), 0, 0, answer(0, 0))
	g.SetRarity("0,0", 12.5)
	g.SetRarity("2,2", 50)
	assert.Equal(t, 12.5, g.Cells["0,0"].Rarity)
	_, ok := g.Cells["2,2"]
	assert.False(t, ok)

	cp := g.Clone()
	cp.Cells["1,1"] = CellGuess{GameID: 5}
	assert.Len(t, g.Cells, 1)
}
