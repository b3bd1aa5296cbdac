// internal/games/game.go
//
// Normalized game records as served by the metadata cache.
package games

// NoSeries is the series value for games that belong to no collection.
const NoSeries = "None"

// Game is one normalized catalog record. Records are immutable once they are
// part of a Snapshot; a refresh replaces the whole snapshot instead.
type Game struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Year        *int     `json:"year"`
	Genres      []string `json:"genres"`
	Platforms   []string `json:"platforms"`
	Developers  []string `json:"developers"`
	Publishers  []string `json:"publishers"`
	Series      string   `json:"series"`
	CoverURL    string   `json:"coverUrl,omitempty"`
	RatingCount int      `json:"ratingCount,omitempty"`
}

// Summary is the short form returned by title search.
type Summary struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Year     *int   `json:"year"`
	CoverURL string `json:"coverUrl,omitempty"`
}

// Summary returns the search-result form of g.
func (g *Game) Summary() Summary {
	return Summary{ID: g.ID, Title: g.Title, Year: g.Year, CoverURL: g.CoverURL}
}

// YearOf is a helper for building records with a known release year.
func YearOf(y int) *int { return &y }

// normalize returns a copy of g with nil sets replaced by empty slices, the
// series sentinel applied and slices detached from the caller's backing arrays.
func normalize(g Game) Game {
	g.Genres = cloneSet(g.Genres)
	g.Platforms = cloneSet(g.Platforms)
	g.Developers = cloneSet(g.Developers)
	g.Publishers = cloneSet(g.Publishers)
	if g.Series == "" {
		g.Series = NoSeries
	}
	if g.Year != nil {
		g.Year = YearOf(*g.Year)
	}
	return g
}

// cloneSet copies s dropping empty and repeated entries.
func cloneSet(s []string) []string {
	out := make([]string, 0, len(s))
	seen := make(map[string]struct{}, len(s))
	for _, v := range s {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
