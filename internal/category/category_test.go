package category

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/gamegrid/internal/games"
)

func sampleGame() *games.Game {
	return &games.Game{
		ID:         1,
		Title:      "Sample",
		Year:       games.YearOf(2016),
		Genres:     []string{"Role-playing (RPG)", "Adventure"},
		Platforms:  []string{"PC (Microsoft Windows)"},
		Developers: []string{"CD Projekt RED"},
		Publishers: []string{"CD Projekt"},
		Series:     "The Witcher",
	}
}

func TestMatchesSetFields(t *testing.T) {
	g := sampleGame()
	assert.True(t, Matches(g, New(Genres, "Role-playing (RPG)", "RPG")))
	assert.True(t, Matches(g, New(Platforms, "PC (Microsoft Windows)", "")))
	assert.True(t, Matches(g, New(Developers, "CD Projekt RED", "")))
	assert.True(t, Matches(g, New(Publishers, "CD Projekt", "")))
	assert.False(t, Matches(g, New(Genres, "Shooter", "")))
	// Membership is exact, not substring or case-folded.
	assert.False(t, Matches(g, New(Developers, "CD Projekt", "")))
	assert.False(t, Matches(g, New(Genres, "adventure", "")))
}

func TestMatchesSeries(t *testing.T) {
	g := sampleGame()
	assert.True(t, Matches(g, New(Series, "The Witcher", "")))
	assert.False(t, Matches(g, New(Series, games.NoSeries, "")))

	g.Series = games.NoSeries
	assert.True(t, Matches(g, New(Series, games.NoSeries, "")))
}

func TestMatchesYearBuckets(t *testing.T) {
	cases := []struct {
		year  int
		label string
		want  bool
	}{
		{2009, YearsBefore2010, true},
		{2010, YearsBefore2010, false},
		{2010, Years2010To2014, true},
		{2014, Years2010To2014, true},
		{2015, Years2010To2014, false},
		{2015, Years2015To2019, true},
		{2019, Years2015To2019, true},
		{2020, Years2015To2019, false},
		{2020, Years2020Present, true},
		{2031, Years2020Present, true},
		{1985, YearsBefore2010, true},
	}
	for _, tc := range cases {
		g := &games.Game{Year: games.YearOf(tc.year)}
		assert.Equal(t, tc.want, Matches(g, New(Years, tc.label, "")), "%d in %q", tc.year, tc.label)
	}
}

func TestMatchesTotal(t *testing.T) {
	g := sampleGame()
	g.Year = nil
	for _, label := range YearBuckets() {
		assert.False(t, Matches(g, New(Years, label, "")), label)
	}
	assert.False(t, Matches(sampleGame(), New(Years, "1990s", "")))
	assert.False(t, Matches(sampleGame(), Category{Type: "moods", Value: "Cozy"}))
	assert.False(t, Matches(nil, New(Genres, "Adventure", "")))
	assert.NotPanics(t, func() { Matches(&games.Game{}, Category{}) })
}

func TestCategoryIdentity(t *testing.T) {
	a := New(Genres, "Role-playing (RPG)", "RPG")
	b := New(Genres, "Role-playing (RPG)", "")
	assert.True(t, a.Same(b))
	assert.Equal(t, "Role-playing (RPG)", b.Label)
	assert.False(t, a.Same(New(Series, "Role-playing (RPG)", "")))
	assert.True(t, Contains([]Category{a}, b))
	assert.Equal(t, "genres:Role-playing (RPG)", a.Key())
	assert.True(t, Genres.Valid())
	assert.False(t, Type("moods").Valid())
}

func TestParseCatalog(t *testing.T) {
	data := []byte(`
version: 7
groups:
  - type: genres
    values:
      - Shooter
      - { value: "Role-playing (RPG)", label: RPG }
      - Shooter
  - type: years
    values:
      - 2010-2014
`)
	c, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 7, c.Version)
	require.Equal(t, 3, c.Len())

	all := c.All()
	assert.Equal(t, New(Genres, "Shooter", ""), all[0])
	assert.Equal(t, "RPG", all[1].Label)
	assert.Equal(t, New(Years, Years2010To2014, ""), all[2])

	got, ok := c.Find(Genres, "Role-playing (RPG)")
	require.True(t, ok)
	assert.Equal(t, "RPG", got.Label)
	_, ok = c.Find(Genres, "Racing")
	assert.False(t, ok)

	// All hands out a copy.
	all[0].Value = "changed"
	assert.Equal(t, "Shooter", c.All()[0].Value)
}

func TestParseCatalogErrors(t *testing.T) {
	_, err := Parse([]byte("version: 1\ngroups:\n  - type: moods\n    values: [Cozy]\n"))
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = Parse([]byte("version: 1\ngroups: []\n"))
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = Parse([]byte("groups: [unterminated"))
	assert.Error(t, err)
}

func TestLoadEmbeddedAndFile(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Positive(t, c.Version)
	assert.GreaterOrEqual(t, c.Len(), 8)
	for _, cat := range c.All() {
		assert.True(t, cat.Type.Valid(), cat.Key())
		assert.NotEmpty(t, cat.Label)
	}

	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 2\ngroups:\n  - type: platforms\n    values: [Xbox One]\n"), 0o644))
	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Version)
	assert.Equal(t, []Category{New(Platforms, "Xbox One", "")}, c.All())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFromListDropsDuplicates(t *testing.T) {
	c := FromList(1, []Category{
		New(Genres, "Shooter", ""),
		New(Genres, "Shooter", "Shooters"),
		{Type: Platforms, Value: "Xbox One"},
	})
	require.Equal(t, 2, c.Len())
	assert.Equal(t, "Xbox One", c.All()[1].Label)
}
