// Package labels resolves which template key a drop point's sign label is
// produced from. Rendering happens outside this system; only the key
// selection lives here.
package labels

import "github.com/bottlecrew/droptracker/internal/domain"

// DefaultStyle is the base style assumed when none is configured.
const DefaultStyle = "default"

// Candidates returns the ordered template keys to try for a category: the
// category-specific key first, then the bare style. Callers take the first
// key that exists in their template inventory.
func Candidates(style string, category domain.Category) []string {
	if style == "" {
		style = DefaultStyle
	}
	return []string{style + "_" + category.Slug(), style}
}

// Resolve picks the first candidate key for which known returns true. When
// none matches it falls back to the bare style, the template every
// inventory is expected to carry.
func Resolve(style string, category domain.Category, known func(string) bool) string {
	cands := Candidates(style, category)
	if known != nil {
		for _, c := range cands {
			if known(c) {
				return c
			}
		}
	}
	return cands[len(cands)-1]
}
