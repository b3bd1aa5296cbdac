package grid

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/gamegrid/internal/category"
	"github.com/robalobadob/gamegrid/internal/games"
)

var day = time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

var (
	rpg       = category.New(category.Genres, "Role-playing (RPG)", "RPG")
	action    = category.New(category.Genres, "Action", "")
	pc        = category.New(category.Platforms, "PC (Microsoft Windows)", "PC")
	mid2010s  = category.New(category.Years, category.Years2015To2019, "")
	switchCat = category.New(category.Platforms, "Nintendo Switch", "")
)

// genreCatalog returns n genre categories and one game carrying all of them,
// so every pair intersects.
func genreCatalog(n int) ([]category.Category, *games.Snapshot) {
	cats := make([]category.Category, 0, n)
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("Genre %d", i)
		cats = append(cats, category.New(category.Genres, name, ""))
		names = append(names, name)
	}
	snap := games.NewSnapshot([]games.Game{{ID: 1, Title: "Everything", Genres: names}}, day)
	return cats, snap
}

func TestSeed(t *testing.T) {
	assert.Equal(t, int64(20240305), Seed(day))
	est := time.FixedZone("EST", -5*3600)
	assert.Equal(t, int64(20240306), Seed(time.Date(2024, 3, 5, 23, 0, 0, 0, est)))
}

func TestSineRandDeterministic(t *testing.T) {
	a, b := newSineRand(20240306), newSineRand(20240306)
	for i := 0; i < 100; i++ {
		x := a.Float64()
		require.Equal(t, x, b.Float64())
		require.GreaterOrEqual(t, x, 0.0)
		require.Less(t, x, 1.0)
	}
	r := newSineRand(42)
	for i := 0; i < 100; i++ {
		n := r.Intn(7)
		require.GreaterOrEqual(t, n, 0)
		require.Less(t, n, 7)
	}
	assert.Zero(t, r.Intn(0))
}

func TestGenerateDeterministic(t *testing.T) {
	cats, snap := genreCatalog(10)
	a := Generate(cats, snap, day, DefaultOptions())
	b := Generate(cats, snap, day.Add(5*time.Hour), DefaultOptions())
	assert.Equal(t, a, b)
}

func TestGenerateValidGrid(t *testing.T) {
	cats, snap := genreCatalog(10)
	for d := 0; d < 30; d++ {
		date := day.AddDate(0, 0, d)
		g := Generate(cats, snap, date, DefaultOptions())
		require.False(t, g.Fallback, date)
		assert.Equal(t, 1, g.Attempts)
		require.Len(t, g.Rows, 3)
		require.Len(t, g.Cols, 3)
		for _, r := range g.Rows {
			assert.False(t, category.Contains(g.Cols, r), "row %s also a column", r.Key())
			for _, c := range g.Cols {
				assert.True(t, HasIntersection(r, c, snap))
			}
		}
	}
}

func TestGenerateSize4(t *testing.T) {
	cats, snap := genreCatalog(12)
	g := Generate(cats, snap, day, Options{Size: 4, MaxAttempts: 3, SearchWidth: 6})
	require.False(t, g.Fallback)
	assert.Len(t, g.Rows, 4)
	assert.Len(t, g.Cols, 4)
	assert.Equal(t, 16, g.Cells())
}

func TestGenerateFallsBackWithoutData(t *testing.T) {
	cats, _ := genreCatalog(10)
	for _, size := range []int{1, 2, 3, 4} {
		opts := Options{Size: size, MaxAttempts: 3, SearchWidth: 4}
		g := Generate(cats, games.NewStore().Current(), day, opts)
		assert.True(t, g.Fallback)
		assert.Equal(t, 3, g.Attempts)
		assert.Len(t, g.Rows, size)
		assert.Len(t, g.Cols, size)
	}
	// Too small a catalog also ends in the fallback.
	g := Generate(cats[:2], nil, day, DefaultOptions())
	assert.True(t, g.Fallback)
	assert.Len(t, g.Rows, 3)
}

func TestGenerateInvalidOptionsUseDefaults(t *testing.T) {
	cats, snap := genreCatalog(10)
	g := Generate(cats, snap, day, Options{Size: 9})
	assert.Len(t, g.Rows, DefaultSize)
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())
	assert.Error(t, Options{Size: 0, MaxAttempts: 1, SearchWidth: 3}.Validate())
	assert.Error(t, Options{Size: 5, MaxAttempts: 1, SearchWidth: 5}.Validate())
	assert.Error(t, Options{Size: 3, MaxAttempts: 0, SearchWidth: 3}.Validate())
	assert.Error(t, Options{Size: 3, MaxAttempts: 1, SearchWidth: 2}.Validate())
}

func TestFallbackGrid(t *testing.T) {
	g := Fallback(4)
	assert.True(t, g.Fallback)
	require.Len(t, g.Rows, 4)
	for _, r := range g.Rows {
		assert.False(t, category.Contains(g.Cols, r))
	}
	assert.Equal(t, g.Rows[:3], Fallback(3).Rows)
	assert.Len(t, Fallback(0).Rows, DefaultSize)

	// Callers cannot corrupt the shared source.
	f := Fallback(2)
	f.Rows[0] = switchCat
	assert.NotEqual(t, switchCat, Fallback(2).Rows[0])
}

func TestAcceptColumnsScenario(t *testing.T) {
	snap := games.NewSnapshot([]games.Game{{
		ID:        1,
		Title:     "Only RPG",
		Year:      games.YearOf(2016),
		Genres:    []string{"Role-playing (RPG)"},
		Platforms: []string{"PC (Microsoft Windows)"},
	}}, day)

	cols := acceptColumns([]category.Category{rpg}, []category.Category{action, pc, mid2010s}, snap, 3)
	assert.Equal(t, []category.Category{pc, mid2010s}, cols)

	// Stops at target in acceptance order.
	cols = acceptColumns([]category.Category{rpg}, []category.Category{mid2010s, action, pc}, snap, 1)
	assert.Equal(t, []category.Category{mid2010s}, cols)
}

func TestGenerateRetriesWithNewDraws(t *testing.T) {
	a := category.New(category.Genres, "A", "")
	b := category.New(category.Genres, "B", "")
	cats := []category.Category{a, b, category.New(category.Genres, "C", ""), category.New(category.Genres, "D", "")}
	// Only A×B intersects, so most draws fail.
	snap := games.NewSnapshot([]games.Game{{ID: 1, Title: "A and B", Genres: []string{"A", "B"}}}, day)
	opts := Options{Size: 1, MaxAttempts: 3, SearchWidth: 1}

	var retried, firstTry, fallbacks, differentRows int
	for d := 0; d < 365; d++ {
		date := day.AddDate(0, 0, d)
		seed := Seed(date)
		if drawRows(cats, newSineRand(seed+1), 1)[0] != drawRows(cats, newSineRand(seed+2), 1)[0] {
			differentRows++
		}

		g := Generate(cats, snap, date, opts)
		if g.Fallback {
			fallbacks++
			assert.Equal(t, 3, g.Attempts)
			continue
		}
		pair := []category.Category{g.Rows[0], g.Cols[0]}
		assert.True(t, category.Contains(pair, a) && category.Contains(pair, b), date)

		if g.Attempts == 1 {
			firstTry++
			continue
		}
		retried++
		// Every earlier attempt failed, and the winning attempt is the
		// one seeded with seed+Attempts.
		for k := 1; k < g.Attempts; k++ {
			_, ok := attemptGrid(cats, snap, newSineRand(seed+int64(k)), opts)
			assert.False(t, ok, "attempt %d on %s", k, date)
		}
		won, ok := attemptGrid(cats, snap, newSineRand(seed+int64(g.Attempts)), opts)
		require.True(t, ok)
		assert.Equal(t, won.Rows, g.Rows)
		assert.Equal(t, won.Cols, g.Cols)
	}
	assert.Positive(t, retried, "some day succeeds only after a retry")
	assert.Positive(t, firstTry)
	assert.Positive(t, fallbacks)
	assert.Positive(t, differentRows, "reseeding changes the row draw")
}

func TestGenerateScenarioCatalog(t *testing.T) {
	cats := []category.Category{rpg, action, pc, switchCat, mid2010s}
	snap := games.NewSnapshot([]games.Game{{
		ID:        1,
		Title:     "Only RPG",
		Year:      games.YearOf(2016),
		Genres:    []string{"Role-playing (RPG)"},
		Platforms: []string{"PC (Microsoft Windows)"},
	}}, day)

	// Rows [RPG, Action, PC] leave Switch and 2015-2019; Action rejects both.
	assert.Empty(t, acceptColumns([]category.Category{rpg, action, pc}, []category.Category{switchCat, mid2010s}, snap, 3))

	// Three rows out of five categories never leave three columns.
	for d := 0; d < 30; d++ {
		g := Generate(cats, snap, day.AddDate(0, 0, d), DefaultOptions())
		require.True(t, g.Fallback)
		assert.Equal(t, DefaultMaxAttempts, g.Attempts)
	}

	// 1×1 grids only ever pair RPG, PC and 2015-2019 through game 1.
	opts := Options{Size: 1, MaxAttempts: 3, SearchWidth: 4}
	valid := []category.Category{rpg, pc, mid2010s}
	var rpgRows int
	for d := 0; d < 365; d++ {
		g := Generate(cats, snap, day.AddDate(0, 0, d), opts)
		if g.Fallback {
			continue
		}
		require.True(t, category.Contains(valid, g.Rows[0]), g.Rows[0].Key())
		require.True(t, category.Contains(valid, g.Cols[0]), g.Cols[0].Key())
		assert.False(t, g.Rows[0].Same(g.Cols[0]))
		if g.Rows[0].Same(rpg) {
			rpgRows++
			assert.True(t, g.Cols[0].Same(pc) || g.Cols[0].Same(mid2010s))
		}
	}
	assert.Positive(t, rpgRows)
}

func TestHasIntersection(t *testing.T) {
	snap := games.NewSnapshot([]games.Game{
		{ID: 1, Genres: []string{"Role-playing (RPG)"}, Platforms: []string{"Nintendo Switch"}},
		{ID: 2, Genres: []string{"Action"}, Platforms: []string{"PC (Microsoft Windows)"}, Year: games.YearOf(2017)},
	}, day)
	assert.True(t, HasIntersection(rpg, switchCat, snap))
	assert.True(t, HasIntersection(pc, mid2010s, snap))
	assert.False(t, HasIntersection(rpg, pc, snap))
	assert.False(t, HasIntersection(rpg, switchCat, nil))
}

func TestCellsAndSolutions(t *testing.T) {
	g := Grid{Rows: []category.Category{rpg, action}, Cols: []category.Category{pc, switchCat}}
	snap := games.NewSnapshot([]games.Game{
		{ID: 1, Genres: []string{"Role-playing (RPG)"}, Platforms: []string{"PC (Microsoft Windows)", "Nintendo Switch"}},
		{ID: 2, Genres: []string{"Action"}, Platforms: []string{"PC (Microsoft Windows)"}},
	}, day)

	sol := Solutions(g, snap)
	assert.Equal(t, []int{1}, sol["0,0"])
	assert.Equal(t, []int{1}, sol["0,1"])
	assert.Equal(t, []int{2}, sol["1,0"])
	assert.Equal(t, []int{}, sol["1,1"])

	rpgPC, _ := snap.Lookup(1)
	assert.True(t, g.Accepts(0, 0, rpgPC))
	assert.False(t, g.Accepts(1, 0, rpgPC))
	assert.False(t, g.Accepts(2, 0, rpgPC))
	assert.False(t, g.InBounds(-1, 0))

	r, c, err := ParseCellKey(CellKey(1, 0))
	require.NoError(t, err)
	assert.Equal(t, [2]int{1, 0}, [2]int{r, c})
	_, _, err = ParseCellKey("1;0")
	assert.Error(t, err)
	_, _, err = ParseCellKey("a,0")
	assert.Error(t, err)
}
