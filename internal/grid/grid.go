// internal/grid/grid.go
//
// Grid types, the static fallback grid and per-cell answer lookup.
package grid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/robalobadob/gamegrid/internal/category"
	"github.com/robalobadob/gamegrid/internal/games"
)

// Grid is one day's puzzle: Rows[r] × Cols[c]. Never mutated once built.
type Grid struct {
	Rows     []category.Category `json:"rows"`
	Cols     []category.Category `json:"cols"`
	Fallback bool                `json:"fallback"`
	Attempts int                 `json:"attempts"`
}

// Cells is the total number of cells.
func (g Grid) Cells() int { return len(g.Rows) * len(g.Cols) }

// InBounds reports whether (row, col) addresses a cell.
func (g Grid) InBounds(row, col int) bool {
	return row >= 0 && row < len(g.Rows) && col >= 0 && col < len(g.Cols)
}

// Accepts reports whether candidate satisfies both categories of (row, col).
// Out-of-range cells never accept.
func (g Grid) Accepts(row, col int, candidate *games.Game) bool {
	if !g.InBounds(row, col) {
		return false
	}
	return category.Matches(candidate, g.Rows[row]) && category.Matches(candidate, g.Cols[col])
}

// CellKey formats a cell coordinate as "row,col".
func CellKey(row, col int) string { return strconv.Itoa(row) + "," + strconv.Itoa(col) }

// ParseCellKey is the inverse of CellKey.
func ParseCellKey(key string) (row, col int, err error) {
	r, c, ok := strings.Cut(key, ",")
	if !ok {
		return 0, 0, fmt.Errorf("grid: bad cell key %q", key)
	}
	if row, err = strconv.Atoi(r); err != nil {
		return 0, 0, fmt.Errorf("grid: bad cell key %q", key)
	}
	if col, err = strconv.Atoi(c); err != nil {
		return 0, 0, fmt.Errorf("grid: bad cell key %q", key)
	}
	return row, col, nil
}

// Solutions lists, per cell key, the ids of every game in snap that is a
// valid answer for that cell.
func Solutions(g Grid, snap *games.Snapshot) map[string][]int {
	out := make(map[string][]int, g.Cells())
	for r, row := range g.Rows {
		for c, col := range g.Cols {
			ids := snap.Filter(func(gm *games.Game) bool {
				return category.Matches(gm, row) && category.Matches(gm, col)
			})
			if ids == nil {
				ids = []int{}
			}
			out[CellKey(r, c)] = ids
		}
	}
	return out
}

// fallbackRows/fallbackCols form a known-good 4×4 grid; smaller sizes take
// the leading rows and columns.
var (
	fallbackRows = []category.Category{
		category.New(category.Genres, "Adventure", "Adventure"),
		category.New(category.Platforms, "PC (Microsoft Windows)", "PC"),
		category.New(category.Years, category.Years2015To2019, ""),
		category.New(category.Genres, "Shooter", "Shooter"),
	}
	fallbackCols = []category.Category{
		category.New(category.Genres, "Role-playing (RPG)", "RPG"),
		category.New(category.Platforms, "PlayStation 4", ""),
		category.New(category.Platforms, "Xbox One", ""),
		category.New(category.Publishers, "Ubisoft", ""),
	}
)

// MaxSize is the largest grid the fallback can cover.
const MaxSize = 4

// Fallback returns the static grid truncated to size×size.
func Fallback(size int) Grid {
	if size < 1 || size > MaxSize {
		size = DefaultSize
	}
	return Grid{
		Rows:     append([]category.Category(nil), fallbackRows[:size]...),
		Cols:     append([]category.Category(nil), fallbackCols[:size]...),
		Fallback: true,
	}
}
