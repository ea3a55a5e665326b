// Package ahocorasick implements ports.TermAutomaton using an Aho-Corasick automaton.
// It wraps the petar-dambovaliev/aho-corasick library for O(n + m + z) matching
// with leftmost-longest overlap resolution.
package ahocorasick

import (
	"fmt"

	aho "github.com/petar-dambovaliev/aho-corasick"

	"github.com/corey/kwmatch/internal/ports"
)

// Builder implements ports.AutomatonBuilder. It builds DFA-backed,
// case-sensitive automata.
type Builder struct{}

// Build compiles the automaton from the given terms.
// Duplicate terms collapse; an empty term is rejected rather than ignored.
func (b Builder) Build(terms []string) (ports.TermAutomaton, error) {
	if len(terms) == 0 {
		return nil, ports.ErrEmptyVocabulary
	}

	seen := make(map[string]struct{}, len(terms))
	unique := make([]string, 0, len(terms))
	for _, t := range terms {
		if t == "" {
			return nil, ports.ErrEmptyTerm
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		unique = append(unique, t)
	}

	ac, err := build(unique)
	if err != nil {
		return nil, err
	}
	return &Automaton{automaton: ac, terms: unique}, nil
}

// build converts a library panic into an error so a pathological vocabulary
// fails the caller's build instead of the process.
func build(terms []string) (ac aho.AhoCorasick, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ports.ErrAutomatonBuild, r)
		}
	}()
	builder := aho.NewAhoCorasickBuilder(aho.Opts{
		MatchKind: aho.LeftMostLongestMatch,
		DFA:       true,
	})
	return builder.Build(terms), nil
}

// Automaton implements ports.TermAutomaton. Immutable after Build.
type Automaton struct {
	automaton aho.AhoCorasick
	terms     []string // index-aligned with automaton pattern IDs
}

// Observe returns the distinct terms found in haystack.
func (a *Automaton) Observe(haystack string) ports.TermSet {
	observed := make(ports.TermSet)
	if haystack == "" {
		return observed
	}
	for _, m := range a.nonOverlapping(haystack) {
		observed[a.terms[m.Pattern()]] = struct{}{}
	}
	return observed
}

// Scan returns every non-overlapping leftmost-longest match with byte offsets.
func (a *Automaton) Scan(haystack string) []ports.TermMatch {
	if haystack == "" {
		return nil
	}
	found := a.nonOverlapping(haystack)
	if len(found) == 0 {
		return nil
	}
	matches := make([]ports.TermMatch, len(found))
	for i, m := range found {
		matches[i] = ports.TermMatch{
			Term:  a.terms[m.Pattern()],
			Start: m.Start(),
			End:   m.End(),
		}
	}
	return matches
}

// nonOverlapping drops matches that start inside an earlier match.
// FindAll resumes one byte past each match's start, so it also reports
// terms nested inside or ending a longer match.
func (a *Automaton) nonOverlapping(haystack string) []aho.Match {
	found := a.automaton.FindAll(haystack)
	kept := found[:0]
	lastEnd := 0
	for _, m := range found {
		if m.Start() < lastEnd {
			continue
		}
		kept = append(kept, m)
		lastEnd = m.End()
	}
	return kept
}

// TermCount returns the number of distinct terms in the automaton.
func (a *Automaton) TermCount() int {
	return len(a.terms)
}
