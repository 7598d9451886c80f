package feature

import (
	"fmt"

	"nomen/domain/core"
)

// Category identifies a family of features the extractor can derive.
type Category string

const (
	CategoryPhonetic Category = "phonetic" // plosives, sibilants, liquids, harshness
	CategoryVowel    Category = "vowel"    // vowel density, syllable count
	CategoryLength   Category = "length"   // character and token counts
	CategoryRarity   Category = "rarity"   // inverse corpus frequency
	CategorySemantic Category = "semantic" // static word-list hits
)

// AllCategories lists every category the extractor knows about.
func AllCategories() []Category {
	return []Category{
		CategoryPhonetic,
		CategoryVowel,
		CategoryLength,
		CategoryRarity,
		CategorySemantic,
	}
}

// Config selects which feature categories to extract. Same config + same
// fitted corpus means identical vectors for the same name.
type Config struct {
	Categories []Category        `json:"categories"`
	Options    map[string]string `json:"options,omitempty"`
}

// DefaultConfig enables every category.
func DefaultConfig() Config {
	return Config{Categories: AllCategories()}
}

// PhoneticsOnlyConfig restricts extraction to sound-based features.
func PhoneticsOnlyConfig() Config {
	return Config{Categories: []Category{CategoryPhonetic, CategoryVowel}}
}

// Validate checks every requested category is known.
func (c Config) Validate() error {
	if len(c.Categories) == 0 {
		return core.ErrEmptyConfig
	}
	known := make(map[Category]bool)
	for _, cat := range AllCategories() {
		known[cat] = true
	}
	for _, cat := range c.Categories {
		if !known[cat] {
			return core.NewUnknownCategoryError(string(cat))
		}
	}
	return nil
}

// Has reports whether a category is enabled.
func (c Config) Has(cat Category) bool {
	for _, enabled := range c.Categories {
		if enabled == cat {
			return true
		}
	}
	return false
}

// Hash returns a deterministic fingerprint of the configuration.
func (c Config) Hash() core.ConfigHash {
	cats := make([]string, len(c.Categories))
	for i, cat := range c.Categories {
		cats[i] = string(cat)
	}
	return core.ComputeConfigHash(cats, c.Options)
}

// Vector is an ordered sequence of named numeric features derived from a
// single entity name.
type Vector struct {
	Name   string            `json:"name"`
	Keys   []core.FeatureKey `json:"keys"`
	Values []float64         `json:"values"`
}

// Get looks up a feature value by key.
func (v Vector) Get(key core.FeatureKey) (float64, bool) {
	for i, k := range v.Keys {
		if k == key {
			return v.Values[i], true
		}
	}
	return 0, false
}

// Matrix holds one row per entity and one column per feature.
type Matrix struct {
	FeatureKeys []core.FeatureKey `json:"feature_keys"`
	Rows        [][]float64       `json:"rows"`
}

// NewMatrix allocates a matrix for the given keys with capacity for n rows.
func NewMatrix(keys []core.FeatureKey, n int) *Matrix {
	return &Matrix{
		FeatureKeys: keys,
		Rows:        make([][]float64, 0, n),
	}
}

// Append adds a row, enforcing width consistency.
func (m *Matrix) Append(row []float64) error {
	if len(row) != len(m.FeatureKeys) {
		return fmt.Errorf("row width %d does not match %d feature keys", len(row), len(m.FeatureKeys))
	}
	m.Rows = append(m.Rows, row)
	return nil
}

// Column extracts a feature column by index.
func (m *Matrix) Column(idx int) []float64 {
	col := make([]float64, len(m.Rows))
	for i, row := range m.Rows {
		col[i] = row[idx]
	}
	return col
}

// RowCount returns the number of entities in the matrix.
func (m *Matrix) RowCount() int {
	return len(m.Rows)
}

// ColumnCount returns the number of features in the matrix.
func (m *Matrix) ColumnCount() int {
	return len(m.FeatureKeys)
}
