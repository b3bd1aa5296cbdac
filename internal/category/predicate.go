// internal/category/predicate.go
//
// Matches: does a game satisfy a category? Set fields use membership,
// series uses equality and years go through fixed buckets.
package category

import (
	"slices"

	"github.com/robalobadob/gamegrid/internal/games"
)

// yearBucket is an inclusive [min, max] range; a nil bound is open.
type yearBucket struct {
	min, max *int
}

func bound(n int) *int { return &n }

var yearBuckets = map[string]yearBucket{
	YearsBefore2010:  {max: bound(2009)},
	Years2010To2014:  {min: bound(2010), max: bound(2014)},
	Years2015To2019:  {min: bound(2015), max: bound(2019)},
	Years2020Present: {min: bound(2020)},
}

// YearBuckets returns the known bucket labels in chronological order.
func YearBuckets() []string {
	return []string{YearsBefore2010, Years2010To2014, Years2015To2019, Years2020Present}
}

// Matches reports whether g satisfies c.
//
// Set-valued fields use exact string membership, series is compared with
// equality (the "None" sentinel included) and years go through the fixed
// buckets. Unknown types and unknown bucket labels never match.
func Matches(g *games.Game, c Category) bool {
	if g == nil {
		return false
	}
	switch c.Type {
	case Developers:
		return slices.Contains(g.Developers, c.Value)
	case Publishers:
		return slices.Contains(g.Publishers, c.Value)
	case Platforms:
		return slices.Contains(g.Platforms, c.Value)
	case Genres:
		return slices.Contains(g.Genres, c.Value)
	case Series:
		return g.Series == c.Value
	case Years:
		return inYearBucket(g.Year, c.Value)
	default:
		return false
	}
}

func inYearBucket(year *int, label string) bool {
	if year == nil {
		return false
	}
	b, ok := yearBuckets[label]
	if !ok {
		return false
	}
	if b.min != nil && *year < *b.min {
		return false
	}
	if b.max != nil && *year > *b.max {
		return false
	}
	return true
}
