package daily

import (
	"context"
	"database/sql"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/gamegrid/internal/database"
)

// stampLayout is fixed width so created_at sorts as text.
const stampLayout = "2006-01-02T15:04:05.000000000Z"

func timestamp() string { return time.Now().UTC().Format(stampLayout) }

// Result is one finished daily session.
type Result struct {
	PlayerID    string `json:"-"`
	UserID      string `json:"userId,omitempty"`
	Date        string `json:"date"`
	Score       int    `json:"score"`
	GuessesUsed int    `json:"guessesUsed"`
	Won         bool   `json:"won"`
}

type Store struct{ db *database.DB }

func NewStore(db *database.DB) *Store { return &Store{db: db} }

// InsertResult records a finished session. A second row for the same
// player and date, or for the same user and date, is ignored; it reports
// whether a row was written.
func (s *Store) InsertResult(ctx context.Context, r Result) (bool, error) {
	var user any
	if r.UserID != "" {
		user = r.UserID
	}
	won := 0
	if r.Won {
		won = 1
	}
	res, err := s.db.Exec(ctx,
		`INSERT INTO daily_results (player_id, user_id, date, score, guesses_used, won, created_at)
		VALUES (?,?,?,?,?,?,?)
		ON CONFLICT DO NOTHING`,
		r.PlayerID, user, r.Date, r.Score, r.GuessesUsed, won, timestamp(),
	)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

type LBRow struct {
	PlayerID    string `json:"playerId"`
	Score       int    `json:"score"`
	GuessesUsed int    `json:"guessesUsed"`
}

// Leaderboard returns the best results for date: highest score, then fewest
// guesses, then earliest finish.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(ctx,
		`SELECT COALESCE(user_id, player_id), score, guesses_used
		FROM daily_results
		WHERE date=?
		ORDER BY score DESC, guesses_used ASC, created_at ASC
		LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.PlayerID, &r.Score, &r.GuessesUsed); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ResultsForUser lists a user's most recent results.
func (s *Store) ResultsForUser(ctx context.Context, userID string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx,
		`SELECT date, score, guesses_used, won FROM daily_results
		WHERE user_id=? ORDER BY date DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Result{}
	for rows.Next() {
		r := Result{UserID: userID}
		var won int
		if err := rows.Scan(&r.Date, &r.Score, &r.GuessesUsed, &won); err != nil {
			return nil, err
		}
		r.Won = won != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// Rarity summarises how often a game was picked for a cell.
type Rarity struct {
	Percent      float64 `json:"rarity"`
	IsUnicorn    bool    `json:"isUnicorn"`
	TotalGuesses int     `json:"totalGuesses"`
}

// RecordGuess stores a correct guess and returns the game's share of all
// correct guesses for that cell.
func (s *Store) RecordGuess(ctx context.Context, puzzleID, cellID string, gameID int) (Rarity, error) {
	if _, err := s.db.Exec(ctx,
		`INSERT INTO guesses (id, puzzle_id, cell_id, game_id, created_at) VALUES (?,?,?,?,?)`,
		uuid.NewString(), puzzleID, cellID, gameID, timestamp(),
	); err != nil {
		return Rarity{}, err
	}
	return s.Rarity(ctx, puzzleID, cellID, gameID)
}

// Rarity computes the percentage without recording anything.
func (s *Store) Rarity(ctx context.Context, puzzleID, cellID string, gameID int) (Rarity, error) {
	var specific, total sql.NullInt64
	if err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM guesses WHERE puzzle_id=? AND cell_id=? AND game_id=?`,
		puzzleID, cellID, gameID,
	).Scan(&specific); err != nil {
		return Rarity{}, err
	}
	if err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM guesses WHERE puzzle_id=? AND cell_id=?`,
		puzzleID, cellID,
	).Scan(&total); err != nil {
		return Rarity{}, err
	}
	r := Rarity{TotalGuesses: int(total.Int64), IsUnicorn: specific.Int64 == 1}
	if total.Int64 > 0 {
		r.Percent = math.Round(float64(specific.Int64)/float64(total.Int64)*1000) / 10
	}
	return r, nil
}
