// internal/game/types.go
//
// Core type definitions for a player's daily grid session.
// Defines:
//   - Phase: playing / won / lost.
//   - Rules: how guesses consume the counter and lock cells.
//   - CellGuess: what a player placed in one cell.
//   - Game: state for a single in-progress or finished daily session.

package game

// Phase is the coarse state of a session. won and lost are terminal.
type Phase string

const (
	PhasePlaying Phase = "playing"
	PhaseWon     Phase = "won"
	PhaseLost    Phase = "lost"
)

// DefaultLives is the number of guesses a player starts with.
const DefaultLives = 9

// Rules selects between the two guess-counting behaviours.
//   - ConsumeOnEveryGuess: every guess costs one (otherwise only misses do).
//   - LockCellOnAnyGuess: a miss also closes the cell (otherwise it stays open).
type Rules struct {
	Lives               int  `json:"lives"`
	ConsumeOnEveryGuess bool `json:"consumeOnEveryGuess"`
	LockCellOnAnyGuess  bool `json:"lockCellOnAnyGuess"`
}

// DefaultRules: nine guesses, every guess counts, missed cells stay open.
func DefaultRules() Rules {
	return Rules{Lives: DefaultLives, ConsumeOnEveryGuess: true, LockCellOnAnyGuess: false}
}

// CellGuess records the game placed in a cell.
type CellGuess struct {
	GameID   int     `json:"gameId"`
	Title    string  `json:"title"`
	Year     *int    `json:"year"`
	CoverURL string  `json:"coverUrl,omitempty"`
	Correct  bool    `json:"correct"`
	Rarity   float64 `json:"rarity"`
}

// Game holds one player's progress on one puzzle.
type Game struct {
	ID          string               `json:"id"`          // Session identifier.
	PuzzleID    string               `json:"puzzleId"`    // Date key of the puzzle being played.
	Rows        int                  `json:"rows"`        // Grid height.
	Cols        int                  `json:"cols"`        // Grid width.
	GuessesLeft int                  `json:"guessesLeft"` // Remaining guesses.
	GuessesUsed int                  `json:"guessesUsed"` // Guesses applied so far.
	Score       int                  `json:"score"`       // Correct cells.
	Phase       Phase                `json:"state"`       // playing / won / lost.
	Cells       map[string]CellGuess `json:"cells"`       // Keyed by "row,col".
	Rules       Rules                `json:"rules"`
}

// Outcome is the result of a single applied guess.
type Outcome struct {
	Cell        string `json:"cell"`
	Correct     bool   `json:"correct"`
	GuessesLeft int    `json:"guessesLeft"`
	Score       int    `json:"score"`
	State       Phase  `json:"state"`
}
