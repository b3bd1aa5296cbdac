package igdb

import (
	"strings"
	"time"

	"github.com/robalobadob/gamegrid/internal/games"
)

type named struct {
	Name string `json:"name"`
}

type involvedCompany struct {
	Company   named `json:"company"`
	Developer bool  `json:"developer"`
	Publisher bool  `json:"publisher"`
}

// apiGame is the subset of an IGDB /games record we request.
type apiGame struct {
	ID                int               `json:"id"`
	Name              string            `json:"name"`
	FirstReleaseDate  *int64            `json:"first_release_date"`
	TotalRatingCount  int               `json:"total_rating_count"`
	Genres            []named           `json:"genres"`
	Platforms         []named           `json:"platforms"`
	InvolvedCompanies []involvedCompany `json:"involved_companies"`
	Collection        *named            `json:"collection"`
	Cover             *struct {
		URL string `json:"url"`
	} `json:"cover"`
}

func (a apiGame) normalize() games.Game {
	g := games.Game{
		ID:          a.ID,
		Title:       a.Name,
		RatingCount: a.TotalRatingCount,
		Genres:      names(a.Genres),
		Platforms:   names(a.Platforms),
		Developers:  []string{},
		Publishers:  []string{},
		Series:      games.NoSeries,
	}
	if a.FirstReleaseDate != nil {
		g.Year = games.YearOf(time.Unix(*a.FirstReleaseDate, 0).UTC().Year())
	}
	for _, ic := range a.InvolvedCompanies {
		if ic.Company.Name == "" {
			continue
		}
		if ic.Developer {
			g.Developers = append(g.Developers, ic.Company.Name)
		}
		if ic.Publisher {
			g.Publishers = append(g.Publishers, ic.Company.Name)
		}
	}
	if a.Collection != nil && a.Collection.Name != "" {
		g.Series = a.Collection.Name
	}
	if a.Cover != nil {
		g.CoverURL = coverURL(a.Cover.URL)
	}
	return g
}

func names(list []named) []string {
	out := make([]string, 0, len(list))
	for _, n := range list {
		if n.Name != "" {
			out = append(out, n.Name)
		}
	}
	return out
}

// coverURL makes protocol-relative IGDB image links absolute and asks for
// the large cover size.
func coverURL(u string) string {
	if u == "" {
		return ""
	}
	if strings.HasPrefix(u, "//") {
		u = "https:" + u
	}
	return strings.Replace(u, "t_thumb", "t_cover_big", 1)
}
