// internal/httpserver/routes_daily.go
//
// HTTP routes for the daily puzzle.
// Exposes four endpoints under /puzzle:
//   - GET  /puzzle/today       → today's grid (answer counts only) + caller's session
//   - POST /puzzle/guess       → place a game in a cell
//   - POST /puzzle/giveup      → end today's session as a loss
//   - GET  /puzzle/leaderboard → top 20 results for today (or ?date=YYYY-MM-DD)
//
// Players are the logged-in user or an anonymous cookie id. Sessions live in
// the session store and reset when the puzzle id changes; finished sessions
// are written to daily_results once.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/gamegrid/internal/category"
	"github.com/robalobadob/gamegrid/internal/daily"
	"github.com/robalobadob/gamegrid/internal/game"
)

// mountPuzzle registers all /puzzle routes.
func (s *Server) mountPuzzle(r chi.Router) {
	r.Route("/puzzle", func(r chi.Router) {
		r.Get("/today", s.handleToday)
		r.Post("/guess", s.handlePuzzleGuess)
		r.Post("/giveup", s.handleGiveUp)
		r.Get("/leaderboard", s.handleLeaderboard)
	})
}

// player identifies the caller: the user id when logged in, otherwise the
// anonymous cookie (set on first use).
type player struct {
	ID   string
	User *authUser
}

func (s *Server) currentPlayer(w http.ResponseWriter, r *http.Request) player {
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		return player{ID: me.ID, User: me}
	}
	return player{ID: s.ensureAnonID(w, r)}
}

// today loads the current puzzle and drops sessions from older days the
// first time a new puzzle id is seen.
func (s *Server) today(ctx context.Context) (*daily.Puzzle, error) {
	p, err := s.puzzles.Today(ctx)
	if err != nil {
		return nil, err
	}
	s.pruneMu.Lock()
	fresh := s.lastPuzzle != p.ID
	s.lastPuzzle = p.ID
	s.pruneMu.Unlock()
	if fresh {
		if n := s.store.Prune(ctx, p.ID); n > 0 {
			log.Info().Int("sessions", n).Str("puzzle", p.ID).Msg("pruned stale sessions")
		}
	}
	return p, nil
}

// newSession returns the init func for a player's first request on p.
func (s *Server) newSession(p *daily.Puzzle) func() *game.Game {
	return func() *game.Game {
		return game.New(p.ID, len(p.Grid.Rows), len(p.Grid.Cols), s.rules)
	}
}

// -----------------------------------------------------------------------------
// /puzzle/today

// puzzleView is the client-facing grid: categories and per-cell answer
// counts, never the answers themselves.
type puzzleView struct {
	ID       string              `json:"id"`
	Rows     []category.Category `json:"rows"`
	Cols     []category.Category `json:"cols"`
	Cells    map[string]int      `json:"cells"`
	Fallback bool                `json:"fallback"`
}

type todayRes struct {
	Puzzle    puzzleView `json:"puzzle"`
	Session   *game.Game `json:"session"`
	NextReset time.Time  `json:"nextReset"`
}

func viewOf(p *daily.Puzzle) puzzleView {
	return puzzleView{
		ID:       p.ID,
		Rows:     p.Grid.Rows,
		Cols:     p.Grid.Cols,
		Cells:    p.AnswerCounts(),
		Fallback: p.Grid.Fallback,
	}
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	p, err := s.today(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "puzzle unavailable")
		return
	}
	pl := s.currentPlayer(w, r)
	sess, err := s.store.Update(r.Context(), pl.ID, s.newSession(p), func(g *game.Game) error {
		g.Sync(p.ID, len(p.Grid.Rows), len(p.Grid.Cols))
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("load session")
		writeError(w, http.StatusInternalServerError, "session_failed")
		return
	}
	writeJSON(w, http.StatusOK, todayRes{
		Puzzle:    viewOf(p),
		Session:   sess,
		NextReset: daily.NextReset(s.puzzles.Now()),
	})
}

// -----------------------------------------------------------------------------
// /puzzle/guess

type puzzleGuessReq struct {
	PuzzleID string `json:"puzzleId"`
	Row      *int   `json:"row"`
	Col      *int   `json:"col"`
	GameID   int    `json:"gameId"`
}

type puzzleGuessRes struct {
	Correct     bool       `json:"correct"`
	Cell        string     `json:"cell"`
	Rarity      float64    `json:"rarity"`
	GuessesLeft int        `json:"guessesLeft"`
	Score       int        `json:"score"`
	State       game.Phase `json:"state"`
}

// handlePuzzleGuess validates and applies a guess for today's puzzle.
// - Rejects malformed bodies (400) and stale puzzle ids (409).
// - Unknown games are 404; finished sessions, locked cells and reused games are 409.
// - Correct guesses are recorded for rarity; finishing writes the daily result.
func (s *Server) handlePuzzleGuess(w http.ResponseWriter, r *http.Request) {
	var req puzzleGuessReq
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.PuzzleID == "" || req.Row == nil || req.Col == nil || req.GameID <= 0 {
		writeError(w, http.StatusBadRequest, "puzzleId, row, col and gameId are required")
		return
	}

	p, err := s.today(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "puzzle unavailable")
		return
	}
	if req.PuzzleID != p.ID {
		writeError(w, http.StatusConflict, "stale_puzzle")
		return
	}
	candidate, ok := s.games.Current().Lookup(req.GameID)
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	pl := s.currentPlayer(w, r)
	var out game.Outcome
	sess, err := s.store.Update(r.Context(), pl.ID, s.newSession(p), func(g *game.Game) error {
		g.Sync(p.ID, len(p.Grid.Rows), len(p.Grid.Cols))
		var err error
		out, err = g.ApplyGuess(p.Grid, *req.Row, *req.Col, candidate)
		return err
	})
	switch {
	case errors.Is(err, game.ErrInvalidCell):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, game.ErrFinished), errors.Is(err, game.ErrCellLocked), errors.Is(err, game.ErrGameUsed):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Msg("apply guess")
		writeError(w, http.StatusInternalServerError, "guess_failed")
		return
	}

	res := puzzleGuessRes{
		Correct:     out.Correct,
		Cell:        out.Cell,
		GuessesLeft: out.GuessesLeft,
		Score:       out.Score,
		State:       out.State,
	}
	if out.Correct {
		rarity, err := s.results.RecordGuess(r.Context(), p.ID, out.Cell, candidate.ID)
		if err != nil {
			log.Warn().Err(err).Str("cell", out.Cell).Msg("record guess")
		} else {
			res.Rarity = rarity.Percent
			if updated, err := s.store.Update(r.Context(), pl.ID, nil, func(g *game.Game) error {
				g.SetRarity(out.Cell, rarity.Percent)
				return nil
			}); err == nil {
				sess = updated
			}
		}
	}
	if sess.Finished() {
		s.finish(r.Context(), pl, sess)
	}
	writeJSON(w, http.StatusOK, res)
}

// -----------------------------------------------------------------------------
// /puzzle/giveup

func (s *Server) handleGiveUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PuzzleID string `json:"puzzleId"`
	}
	if err := decode(w, r, &req); err != nil || req.PuzzleID == "" {
		writeError(w, http.StatusBadRequest, "puzzleId is required")
		return
	}
	p, err := s.today(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "puzzle unavailable")
		return
	}
	if req.PuzzleID != p.ID {
		writeError(w, http.StatusConflict, "stale_puzzle")
		return
	}
	pl := s.currentPlayer(w, r)
	sess, err := s.store.Update(r.Context(), pl.ID, s.newSession(p), func(g *game.Game) error {
		g.Sync(p.ID, len(p.Grid.Rows), len(p.Grid.Cols))
		if g.Finished() {
			return game.ErrFinished
		}
		g.GiveUp()
		return nil
	})
	if errors.Is(err, game.ErrFinished) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("give up")
		writeError(w, http.StatusInternalServerError, "giveup_failed")
		return
	}
	s.finish(r.Context(), pl, sess)
	writeJSON(w, http.StatusOK, sess)
}

// finish records a finished session. Logged-in users get their stats bumped
// the first time a result is written for the day.
func (s *Server) finish(ctx context.Context, pl player, sess *game.Game) {
	res := daily.Result{
		PlayerID:    pl.ID,
		Date:        sess.PuzzleID,
		Score:       sess.Score,
		GuessesUsed: sess.GuessesUsed,
		Won:         sess.Phase == game.PhaseWon,
	}
	if pl.User != nil {
		res.UserID = pl.User.ID
	}
	inserted, err := s.results.InsertResult(ctx, res)
	if err != nil {
		log.Warn().Err(err).Str("player", pl.ID).Msg("insert daily result")
		return
	}
	if !inserted || pl.User == nil {
		return
	}
	if err := s.bumpStats(ctx, pl.User.ID, res.Won); err != nil {
		log.Warn().Err(err).Str("user", pl.User.ID).Msg("bump stats")
	}
}

// -----------------------------------------------------------------------------
// /puzzle/leaderboard

// lbRes is returned by /puzzle/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(s.puzzles.Now())
	} else if _, err := daily.ParseDateKey(date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	rows, err := s.results.Leaderboard(r.Context(), date, 20)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
