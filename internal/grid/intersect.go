// internal/grid/intersect.go
package grid

import (
	"github.com/robalobadob/gamegrid/internal/category"
	"github.com/robalobadob/gamegrid/internal/games"
)

// HasIntersection reports whether at least one game in snap satisfies both
// a and b. It is a local scan that stops at the first match; an empty or nil
// snapshot has no intersections.
func HasIntersection(a, b category.Category, snap *games.Snapshot) bool {
	return snap.Any(func(g *games.Game) bool {
		return category.Matches(g, a) && category.Matches(g, b)
	})
}
