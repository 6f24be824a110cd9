package domain

import "strings"

// Category classifies a drop point: bottle drop, trash, deposit return and
// whatever else a venue configures. The set of known categories is
// configuration, not schema; category 1 is the conventional default.
type Category struct {
	ID   int
	Name string
}

func (c Category) String() string { return c.Name }

// Slug returns the category name in lower snake case. It doubles as the
// category label on counters and as the suffix for label style lookups.
func (c Category) Slug() string {
	return strings.ToLower(strings.Join(strings.Fields(c.Name), "_"))
}
