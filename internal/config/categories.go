package config

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/bottlecrew/droptracker/internal/domain"
)

// DefaultCategoryID is assigned to drop points created without an explicit
// category.
const DefaultCategoryID = 1

// defaultCategories is the built-in table used when no categories file is
// configured.
var defaultCategories = []domain.Category{
	{ID: 1, Name: "Bottle Drop Point"},
	{ID: 2, Name: "Trash"},
	{ID: 3, Name: "Deposit Return"},
}

// CategoryTable is an ID-to-category mapping with a designated default.
// Tables are replaced wholesale on reload, never mutated in place.
type CategoryTable struct {
	byID      map[int]domain.Category
	ordered   []domain.Category
	defaultID int
}

// categoriesFile is the YAML schema of an external category table.
// When default is omitted the first listed category becomes the default.
type categoriesFile struct {
	Default    int             `yaml:"default"`
	Categories []categoryEntry `yaml:"categories"`
}

type categoryEntry struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

// DefaultCategories returns the built-in category table.
func DefaultCategories() *CategoryTable {
	t, _ := newCategoryTable(defaultCategories, DefaultCategoryID)
	return t
}

// LoadCategories reads a category table from a YAML file.
// An empty path returns the built-in table.
func LoadCategories(path string) (*CategoryTable, error) {
	if path == "" {
		return DefaultCategories(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("categories: read %s: %w", path, err)
	}

	var f categoriesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("categories: parse %s: %w", path, err)
	}

	cats := make([]domain.Category, 0, len(f.Categories))
	for _, e := range f.Categories {
		cats = append(cats, domain.Category{ID: e.ID, Name: e.Name})
	}

	defaultID := f.Default
	if defaultID == 0 && len(cats) > 0 {
		defaultID = cats[0].ID
	}

	t, err := newCategoryTable(cats, defaultID)
	if err != nil {
		return nil, fmt.Errorf("categories: %s: %w", path, err)
	}
	return t, nil
}

func newCategoryTable(cats []domain.Category, defaultID int) (*CategoryTable, error) {
	if len(cats) == 0 {
		return nil, fmt.Errorf("at least one category must be defined")
	}

	byID := make(map[int]domain.Category, len(cats))
	for _, c := range cats {
		if c.ID <= 0 {
			return nil, fmt.Errorf("category id must be > 0 (got %d)", c.ID)
		}
		if c.Name == "" {
			return nil, fmt.Errorf("category %d: name must not be empty", c.ID)
		}
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("duplicate category id %d", c.ID)
		}
		byID[c.ID] = c
	}

	if _, ok := byID[defaultID]; !ok {
		return nil, fmt.Errorf("default category %d is not defined", defaultID)
	}

	ordered := slices.Clone(cats)
	slices.SortFunc(ordered, func(a, b domain.Category) int { return a.ID - b.ID })

	return &CategoryTable{byID: byID, ordered: ordered, defaultID: defaultID}, nil
}

// ByID returns the category for id.
func (t *CategoryTable) ByID(id int) (domain.Category, bool) {
	c, ok := t.byID[id]
	return c, ok
}

// Has reports whether id names a known category.
func (t *CategoryTable) Has(id int) bool {
	_, ok := t.byID[id]
	return ok
}

// Default returns the category assigned when none is requested.
func (t *CategoryTable) Default() domain.Category {
	return t.byID[t.defaultID]
}

// All returns every category ordered by ID.
func (t *CategoryTable) All() []domain.Category {
	return slices.Clone(t.ordered)
}
