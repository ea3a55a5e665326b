// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

// PatternStore persists named sets of raw pattern strings.
// Only the caller-supplied text is stored; compiled matcher state is always
// rebuilt in memory. Concurrent reads are safe; writes are serialized by the adapter.
type PatternStore interface {
	// SavePatternSet stores patterns under name, overwriting any prior set.
	SavePatternSet(name string, patterns []string) error

	// LoadPatternSet retrieves the set stored under name.
	// Returns nil, nil if no such set exists.
	LoadPatternSet(name string) ([]string, error)

	// ListPatternSets summarizes all stored sets in lexical name order.
	ListPatternSets() ([]PatternSetInfo, error)

	// DeletePatternSet removes a set.
	// Idempotent: deleting a nonexistent set is not an error.
	DeletePatternSet(name string) error
}

// PatternSetInfo summarizes a stored pattern set.
type PatternSetInfo struct {
	Name      string `json:"name"`
	Count     int    `json:"count"`
	UpdatedAt int64  `json:"updated_at"` // unix seconds
}
