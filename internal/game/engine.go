// internal/game/engine.go
//
// Guess resolution for a single daily grid session.
// Responsibilities:
//   - Create sessions bound to a puzzle id and grid size.
//   - Validate and apply guesses against the grid's row/column categories.
//   - Track state transitions: playing → won/lost (both terminal).
//   - Reset when the puzzle id changes; give up on request.
//
// Notes:
//   - Correctness is decided by grid.Accepts, i.e. the category predicates.
//   - Rejected guesses never change state.
package game

import (
	"errors"

	"github.com/google/uuid"

	"github.com/robalobadob/gamegrid/internal/games"
	"github.com/robalobadob/gamegrid/internal/grid"
)

var (
	ErrFinished    = errors.New("game finished")
	ErrInvalidCell = errors.New("invalid cell")
	ErrCellLocked  = errors.New("cell already guessed")
	ErrGameUsed    = errors.New("game already used in another cell")
	ErrNoCandidate = errors.New("no game given")
)

// New constructs a fresh session for puzzleID on a rows×cols grid.
func New(puzzleID string, rows, cols int, rules Rules) *Game {
	if rules.Lives <= 0 {
		rules.Lives = DefaultLives
	}
	return &Game{
		ID:          uuid.NewString(),
		PuzzleID:    puzzleID,
		Rows:        rows,
		Cols:        cols,
		GuessesLeft: rules.Lives,
		Phase:       PhasePlaying,
		Cells:       map[string]CellGuess{},
		Rules:       rules,
	}
}

// Reset clears progress for a new puzzle. The session id is kept.
func (g *Game) Reset(puzzleID string, rows, cols int) {
	id := g.ID
	*g = *New(puzzleID, rows, cols, g.Rules)
	g.ID = id
}

// Sync resets the session when puzzleID differs from the one being played.
// It reports whether a reset happened.
func (g *Game) Sync(puzzleID string, rows, cols int) bool {
	if g.PuzzleID == puzzleID {
		return false
	}
	g.Reset(puzzleID, rows, cols)
	return true
}

// Finished reports whether the session reached a terminal phase.
func (g *Game) Finished() bool { return g.Phase != PhasePlaying }

// ApplyGuess resolves candidate for cell (row, col) of gr.
//
// Validation rules:
//   - Session must still be playing.
//   - Cell must be inside the grid and not locked.
//   - Candidate must not already fill another cell.
//
// State transitions:
//   - Correct: record the guess, score+1.
//   - Counter: -1 on every guess, or only on misses (Rules).
//   - Score == cells → won; else counter ≤ 0 → lost.
func (g *Game) ApplyGuess(gr grid.Grid, row, col int, candidate *games.Game) (Outcome, error) {
	if g.Finished() {
		return g.outcome("", false), ErrFinished
	}
	if candidate == nil {
		return g.outcome("", false), ErrNoCandidate
	}
	if !gr.InBounds(row, col) || row >= g.Rows || col >= g.Cols {
		return g.outcome("", false), ErrInvalidCell
	}
	key := grid.CellKey(row, col)
	if prev, ok := g.Cells[key]; ok && (prev.Correct || g.Rules.LockCellOnAnyGuess) {
		return g.outcome(key, false), ErrCellLocked
	}
	if g.usedElsewhere(candidate.ID, key) {
		return g.outcome(key, false), ErrGameUsed
	}

	correct := gr.Accepts(row, col, candidate)
	g.GuessesUsed++
	if g.Rules.ConsumeOnEveryGuess || !correct {
		g.GuessesLeft--
	}
	if correct || g.Rules.LockCellOnAnyGuess {
		g.Cells[key] = CellGuess{
			GameID:   candidate.ID,
			Title:    candidate.Title,
			Year:     candidate.Year,
			CoverURL: candidate.CoverURL,
			Correct:  correct,
		}
	}
	if correct {
		g.Score++
	}
	g.advance()
	return g.outcome(key, correct), nil
}

// SetRarity stores the rarity shown for a correct cell.
func (g *Game) SetRarity(key string, rarity float64) {
	if c, ok := g.Cells[key]; ok {
		c.Rarity = rarity
		g.Cells[key] = c
	}
}

// GiveUp forces a loss. It is a no-op once the session is finished.
func (g *Game) GiveUp() {
	if g.Finished() {
		return
	}
	g.GuessesLeft = 0
	g.Phase = PhaseLost
}

// advance applies the win/loss checks; win takes precedence. A board with
// every cell locked and at least one miss is also a loss.
func (g *Game) advance() {
	cells := g.Rows * g.Cols
	switch {
	case g.Score >= cells:
		g.Phase = PhaseWon
	case g.GuessesLeft <= 0:
		g.Phase = PhaseLost
	case len(g.Cells) >= cells:
		g.Phase = PhaseLost
	}
}

func (g *Game) usedElsewhere(gameID int, key string) bool {
	for k, c := range g.Cells {
		if k != key && c.Correct && c.GameID == gameID {
			return true
		}
	}
	return false
}

func (g *Game) outcome(cell string, correct bool) Outcome {
	return Outcome{Cell: cell, Correct: correct, GuessesLeft: g.GuessesLeft, Score: g.Score, State: g.Phase}
}

// Clone returns a deep copy, safe to hand out of a store.
func (g *Game) Clone() *Game {
	cp := *g
	cp.Cells = make(map[string]CellGuess, len(g.Cells))
	for k, v := range g.Cells {
		cp.Cells[k] = v
	}
	return &cp
}
