// internal/category/catalog.go
//
// Static category catalog.
//
// Responsibilities:
//   - Load the catalog from CATEGORIES_FILE or the embedded default.
//   - Validate group types and drop duplicate values.
//   - Flatten groups into the ordered candidate list used by the generator.
//
// File format (YAML):
//
//	version: 3
//	groups:
//	  - type: genres
//	    values:
//	      - Shooter
//	      - { value: "Role-playing (RPG)", label: RPG }
//
// Group order and value order are preserved; the generator's draws are by
// index, so reordering the file changes future grids.
package category

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/robalobadob/gamegrid/assets"
)

var (
	ErrUnknownType  = errors.New("category: unknown type")
	ErrEmptyCatalog = errors.New("category: catalog is empty")
)

// Catalog is the flattened, immutable list of categories for one file version.
type Catalog struct {
	Version    int
	categories []Category
}

type catalogFile struct {
	Version int          `yaml:"version"`
	Groups  []groupEntry `yaml:"groups"`
}

type groupEntry struct {
	Type   Type         `yaml:"type"`
	Values []valueEntry `yaml:"values"`
}

// valueEntry accepts either a bare scalar or a {value, label} mapping.
type valueEntry struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

func (v *valueEntry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		v.Value = node.Value
		return nil
	}
	type plain valueEntry
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*v = valueEntry(p)
	return nil
}

// Load reads the catalog from path, or from the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	var (
		data []byte
		err  error
	)
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = assets.Categories()
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{Version: f.Version}
	for _, g := range f.Groups {
		if !g.Type.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownType, g.Type)
		}
		for _, v := range g.Values {
			value := strings.TrimSpace(v.Value)
			if value == "" {
				continue
			}
			cat := New(g.Type, value, strings.TrimSpace(v.Label))
			if Contains(c.categories, cat) {
				continue
			}
			c.categories = append(c.categories, cat)
		}
	}
	if len(c.categories) == 0 {
		return nil, ErrEmptyCatalog
	}
	return c, nil
}

// FromList builds a catalog from an explicit list (duplicates dropped).
func FromList(version int, list []Category) *Catalog {
	c := &Catalog{Version: version}
	for _, cat := range list {
		if !Contains(c.categories, cat) {
			c.categories = append(c.categories, New(cat.Type, cat.Value, cat.Label))
		}
	}
	return c
}

// All returns a copy of the flattened category list.
func (c *Catalog) All() []Category {
	if c == nil {
		return nil
	}
	return append([]Category(nil), c.categories...)
}

// Len reports the number of categories.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.categories)
}

// Find looks up a category by type and value.
func (c *Catalog) Find(t Type, value string) (Category, bool) {
	if c == nil {
		return Category{}, false
	}
	for _, cat := range c.categories {
		if cat.Type == t && cat.Value == value {
			return cat, true
		}
	}
	return Category{}, false
}
