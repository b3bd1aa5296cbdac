// internal/grid/generate.go
//
// Daily grid generation.
//
// A grid is searched with a seeded stream derived from the UTC date:
//  1. draw Size distinct row categories from the catalog by index;
//  2. drop any row category from the column candidates;
//  3. Fisher–Yates shuffle the candidates with the same stream;
//  4. look only at the first SearchWidth candidates;
//  5. keep a candidate if it intersects every row, up to Size columns.
//
// Each attempt reseeds with seed+attempt. When every attempt falls short the
// static Fallback grid is returned, so there is always a puzzle to serve.
package grid

import (
	"fmt"
	"time"

	"github.com/robalobadob/gamegrid/internal/category"
	"github.com/robalobadob/gamegrid/internal/games"
)

const (
	DefaultSize        = 3
	DefaultMaxAttempts = 3
	DefaultSearchWidth = 3
)

// Options bounds the search.
type Options struct {
	Size        int // rows and columns
	MaxAttempts int
	SearchWidth int // shuffled column candidates examined per attempt
}

// DefaultOptions mirrors the classic 3×3 daily grid.
func DefaultOptions() Options {
	return Options{Size: DefaultSize, MaxAttempts: DefaultMaxAttempts, SearchWidth: DefaultSearchWidth}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.Size < 1 || o.Size > MaxSize {
		return fmt.Errorf("grid: size %d out of range [1,%d]", o.Size, MaxSize)
	}
	if o.MaxAttempts < 1 {
		return fmt.Errorf("grid: max attempts must be positive, got %d", o.MaxAttempts)
	}
	if o.SearchWidth < o.Size {
		return fmt.Errorf("grid: search width %d smaller than size %d", o.SearchWidth, o.Size)
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.Size == 0 {
		o.Size = DefaultSize
	}
	if o.MaxAttempts == 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.SearchWidth == 0 {
		o.SearchWidth = DefaultSearchWidth
	}
	return o
}

// Seed derives the base seed from a date: YYYYMMDD of its UTC calendar day.
func Seed(date time.Time) int64 {
	y, m, d := date.UTC().Date()
	return int64(y)*10000 + int64(m)*100 + int64(d)
}

// Generate builds the grid for date. It only reads its inputs, so calling it
// twice with the same catalog, snapshot and date yields identical grids.
// Invalid options fall back to the defaults.
func Generate(catalog []category.Category, snap *games.Snapshot, date time.Time, opts Options) Grid {
	opts = opts.withDefaults()
	if opts.Validate() != nil {
		opts = DefaultOptions()
	}
	seed := Seed(date)
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		if g, ok := attemptGrid(catalog, snap, newSineRand(seed+int64(attempt)), opts); ok {
			g.Attempts = attempt
			return g
		}
	}
	fb := Fallback(opts.Size)
	fb.Attempts = opts.MaxAttempts
	return fb
}

func attemptGrid(catalog []category.Category, snap *games.Snapshot, rng *sineRand, opts Options) (Grid, bool) {
	rows := drawRows(catalog, rng, opts.Size)
	if len(rows) < opts.Size {
		return Grid{}, false
	}

	candidates := make([]category.Category, 0, len(catalog))
	for _, c := range catalog {
		if !category.Contains(rows, c) {
			candidates = append(candidates, c)
		}
	}
	shuffle(candidates, rng)
	if len(candidates) > opts.SearchWidth {
		candidates = candidates[:opts.SearchWidth]
	}

	cols := acceptColumns(rows, candidates, snap, opts.Size)
	if len(cols) < opts.Size {
		return Grid{}, false
	}
	return Grid{Rows: rows, Cols: cols}, true
}

// drawRows picks n categories without replacement, by index into a
// shrinking copy of the catalog.
func drawRows(catalog []category.Category, rng *sineRand, n int) []category.Category {
	avail := append([]category.Category(nil), catalog...)
	rows := make([]category.Category, 0, n)
	for len(rows) < n && len(avail) > 0 {
		i := rng.Intn(len(avail))
		rows = append(rows, avail[i])
		avail = append(avail[:i], avail[i+1:]...)
	}
	return rows
}

// shuffle is a Fisher–Yates pass from the tail.
func shuffle(list []category.Category, rng *sineRand) {
	for i := len(list) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		list[i], list[j] = list[j], list[i]
	}
}

// acceptColumns keeps, in order, each candidate that intersects every row,
// stopping once target columns are found.
func acceptColumns(rows, candidates []category.Category, snap *games.Snapshot, target int) []category.Category {
	cols := make([]category.Category, 0, target)
	for _, col := range candidates {
		if len(cols) >= target {
			break
		}
		ok := true
		for _, row := range rows {
			if !HasIntersection(row, col, snap) {
				ok = false
				break
			}
		}
		if ok {
			cols = append(cols, col)
		}
	}
	return cols
}
