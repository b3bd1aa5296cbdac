// internal/category/category.go
//
// Category descriptors used as grid row/column constraints.
// Defines:
//   - Type: the metadata field a category constrains (genres, platforms, …).
//   - Category: an immutable (type, value, label) triple.
//   - Year bucket labels understood by the "years" type.
package category

// Type names the game metadata field a category is evaluated against.
type Type string

const (
	Developers Type = "developers"
	Publishers Type = "publishers"
	Platforms  Type = "platforms"
	Genres     Type = "genres"
	Series     Type = "series"
	Years      Type = "years"
)

// Types lists every known category type in catalog order.
var Types = []Type{Genres, Platforms, Years, Publishers, Developers, Series}

// Valid reports whether t is one of the known category types.
func (t Type) Valid() bool {
	for _, k := range Types {
		if k == t {
			return true
		}
	}
	return false
}

// Year bucket labels for the Years type.
const (
	YearsBefore2010  = "Before 2010"
	Years2010To2014  = "2010-2014"
	Years2015To2019  = "2015-2019"
	Years2020Present = "2020-Present"
)

// Category is a single row or column constraint, e.g. genres = "Shooter".
// Two categories are the same when Type and Value match; Label is display only.
type Category struct {
	Type  Type   `json:"type" yaml:"type"`
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// New builds a category, defaulting the label to the value.
func New(t Type, value, label string) Category {
	if label == "" {
		label = value
	}
	return Category{Type: t, Value: value, Label: label}
}

// Same reports type+value equality.
func (c Category) Same(o Category) bool {
	return c.Type == o.Type && c.Value == o.Value
}

// Key is a stable "type:value" identifier.
func (c Category) Key() string { return string(c.Type) + ":" + c.Value }

// Contains reports whether list holds a category equal to c (type+value).
func Contains(list []Category, c Category) bool {
	for _, x := range list {
		if x.Same(c) {
			return true
		}
	}
	return false
}
