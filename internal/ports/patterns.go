package ports

import "errors"

// Automaton construction errors. Adapters wrap these so callers can use errors.Is.
var (
	ErrEmptyVocabulary = errors.New("empty term vocabulary")
	ErrEmptyTerm       = errors.New("empty term")
	ErrAutomatonBuild  = errors.New("automaton build failed")
)

// TermSet is the set of distinct term texts observed in one haystack.
type TermSet map[string]struct{}

// Has reports whether term was observed.
func (s TermSet) Has(term string) bool {
	_, ok := s[term]
	return ok
}

// HasAll reports whether every term in terms was observed.
// An empty terms slice is vacuously true.
func (s TermSet) HasAll(terms []string) bool {
	for _, t := range terms {
		if _, ok := s[t]; !ok {
			return false
		}
	}
	return true
}

// TermMatch is one occurrence reported by a TermAutomaton scan.
type TermMatch struct {
	Term  string
	Start int // byte offset start (inclusive)
	End   int // byte offset end (exclusive)
}

// TermAutomaton finds every term of a fixed vocabulary in one linear pass over
// the haystack (Aho-Corasick). Overlaps are resolved leftmost-longest: the
// earliest-starting match wins, the longest term among those, and scanning
// resumes at its end. A term that only occurs inside a longer match is NOT
// reported.
//
// Implementations are immutable after construction and safe for concurrent use.
type TermAutomaton interface {
	// Observe returns the distinct terms found in haystack. An empty
	// haystack yields an empty, non-nil set.
	Observe(haystack string) TermSet

	// Scan returns every non-overlapping match with its byte offsets,
	// in haystack order.
	Scan(haystack string) []TermMatch

	// TermCount returns the number of distinct terms indexed.
	TermCount() int
}

// AutomatonBuilder constructs a TermAutomaton over a vocabulary.
// Duplicate terms are allowed and collapse. Returns ErrEmptyVocabulary for an
// empty vocabulary and ErrEmptyTerm if any term is the empty string.
type AutomatonBuilder interface {
	Build(terms []string) (TermAutomaton, error)
}
