// internal/games/archive.go
//
// SQL archive of the last successful snapshot.
// The server reloads it at startup so a restart does not begin with an empty
// store, and the harvest command writes it without running the server.
package games

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/gamegrid/internal/database"
)

// Archive persists snapshots to the games / game_* tables.
type Archive struct{ db *database.DB }

func NewArchive(db *database.DB) *Archive { return &Archive{db: db} }

// setTables maps each set-valued field to its join table and column.
var setTables = []struct {
	table, column string
	get           func(*Game) []string
	set           func(*Game, []string)
}{
	{"game_genres", "genre", func(g *Game) []string { return g.Genres }, func(g *Game, v []string) { g.Genres = v }},
	{"game_platforms", "platform", func(g *Game) []string { return g.Platforms }, func(g *Game, v []string) { g.Platforms = v }},
	{"game_developers", "developer", func(g *Game) []string { return g.Developers }, func(g *Game, v []string) { g.Developers = v }},
	{"game_publishers", "publisher", func(g *Game) []string { return g.Publishers }, func(g *Game, v []string) { g.Publishers = v }},
}

// Save replaces the archived records with snap inside one transaction.
func (a *Archive) Save(ctx context.Context, snap *Snapshot) error {
	tx, err := a.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Clear existing data for a fresh import
	for _, t := range []string{"games", "game_genres", "game_platforms", "game_developers", "game_publishers", "archive_meta"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+t); err != nil {
			return fmt.Errorf("clear %s: %w", t, err)
		}
	}

	for i, g := range snap.Games() {
		var year any
		if g.Year != nil {
			year = *g.Year
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO games (id, title, year, series, cover_url, rating_count, position) VALUES (?,?,?,?,?,?,?)`,
			g.ID, g.Title, year, g.Series, g.CoverURL, g.RatingCount, i,
		); err != nil {
			return fmt.Errorf("insert game %d: %w", g.ID, err)
		}
		for _, st := range setTables {
			for _, v := range st.get(&g) {
				if _, err := tx.Exec(ctx,
					`INSERT INTO `+st.table+` (game_id, `+st.column+`) VALUES (?,?)`, g.ID, v,
				); err != nil {
					return fmt.Errorf("insert %s for %d: %w", st.table, g.ID, err)
				}
			}
		}
	}
	if _, err := tx.Exec(ctx, `INSERT INTO archive_meta (id, fetched_at) VALUES (1, ?)`,
		snap.FetchedAt().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("insert archive_meta: %w", err)
	}
	return tx.Commit()
}

// Load rebuilds a snapshot from the archive, stamped with the time it was
// originally fetched. An empty archive yields an empty snapshot, not an error.
func (a *Archive) Load(ctx context.Context) (*Snapshot, error) {
	fetchedAt, err := a.fetchedAt(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := a.db.Query(ctx,
		`SELECT id, title, year, series, cover_url, rating_count FROM games ORDER BY position ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	var list []Game
	index := map[int]int{}
	for rows.Next() {
		var (
			g    Game
			year sql.NullInt64
		)
		if err := rows.Scan(&g.ID, &g.Title, &year, &g.Series, &g.CoverURL, &g.RatingCount); err != nil {
			rows.Close()
			return nil, err
		}
		if year.Valid {
			g.Year = YearOf(int(year.Int64))
		}
		index[g.ID] = len(list)
		list = append(list, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, st := range setTables {
		if err := a.loadSet(ctx, st.table, st.column, func(id int, v string) {
			if i, ok := index[id]; ok {
				st.set(&list[i], append(st.get(&list[i]), v))
			}
		}); err != nil {
			return nil, err
		}
	}
	return NewSnapshot(list, fetchedAt), nil
}

// fetchedAt reads the stored fetch time; zero when nothing was archived.
func (a *Archive) fetchedAt(ctx context.Context) (time.Time, error) {
	var raw string
	err := a.db.QueryRow(ctx, `SELECT fetched_at FROM archive_meta WHERE id=1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("query archive_meta: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse fetched_at %q: %w", raw, err)
	}
	return t, nil
}

func (a *Archive) loadSet(ctx context.Context, table, column string, add func(int, string)) error {
	rows, err := a.db.Query(ctx, `SELECT game_id, `+column+` FROM `+table+` ORDER BY game_id, `+column)
	if err != nil {
		return fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id int
			v  string
		)
		if err := rows.Scan(&id, &v); err != nil {
			return err
		}
		add(id, v)
	}
	return rows.Err()
}
