// internal/harvest/source.go
//
// Upstream sources of game records, plus a small built-in data set used when
// no IGDB credentials are configured.
package harvest

import (
	"context"

	"github.com/robalobadob/gamegrid/internal/games"
)

// Source yields a full set of game records from upstream.
type Source interface {
	Fetch(ctx context.Context) ([]games.Game, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]games.Game, error)

func (f SourceFunc) Fetch(ctx context.Context) ([]games.Game, error) { return f(ctx) }

// MockSource serves a small fixed catalog, for running without IGDB credentials.
func MockSource() Source {
	return SourceFunc(func(ctx context.Context) ([]games.Game, error) {
		return mockGames(), nil
	})
}

func mockGames() []games.Game {
	return []games.Game{
		{
			ID: 1, Title: "Mock Game 1", Year: games.YearOf(2000), RatingCount: 100,
			Genres: []string{"Role-playing (RPG)"}, Platforms: []string{"PlayStation 2"},
			Developers: []string{"Square Enix"}, Publishers: []string{"Square Enix"},
			Series: "Final Fantasy",
		},
		{
			ID: 2, Title: "Mock Game 2", Year: games.YearOf(2002), RatingCount: 200,
			Genres: []string{"Shooter"}, Platforms: []string{"Xbox 360", "PC (Microsoft Windows)"},
			Developers: []string{"Bungie"}, Publishers: []string{"Microsoft Studios"},
		},
		{
			ID: 3, Title: "Mock Game 3", Year: games.YearOf(2020), RatingCount: 500,
			Genres: []string{"Adventure", "Indie"}, Platforms: []string{"PC (Microsoft Windows)", "Nintendo Switch"},
			Developers: []string{"Indie Dev"}, Publishers: []string{"Indie Dev"},
		},
	}
}
