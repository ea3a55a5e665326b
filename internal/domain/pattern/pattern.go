// Package pattern compiles raw pattern strings into boolean term clauses.
//
// With logic enabled a pattern reads
//
//	positive ( '~' negative )*
//
// where each clause is a '&'-separated list of terms. Every positive term must
// be present for a match; a negative clause disqualifies the match when all of
// its terms are present. With logic disabled the raw string is one literal term.
package pattern

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Clause separators.
const (
	SepNeg = "~"
	SepAnd = "&"
)

// Compilation errors.
var (
	ErrEmptyPattern        = errors.New("pattern cannot be empty")
	ErrMissingPositiveTerm = errors.New("pattern must contain at least one positive term before '~'")
)

// Pattern is one compiled pattern. Raw is its identity and is returned verbatim on match.
type Pattern struct {
	Raw      string
	Positive []string   // never empty
	Negative [][]string // each group non-empty
}

// Terms returns every literal term the automaton must track for this pattern:
// positives first, then each negative group in order. Duplicates are kept.
func (p Pattern) Terms() []string {
	n := len(p.Positive)
	for _, g := range p.Negative {
		n += len(g)
	}
	terms := make([]string, 0, n)
	terms = append(terms, p.Positive...)
	for _, g := range p.Negative {
		terms = append(terms, g...)
	}
	return terms
}

// Compile parses raw. With logic disabled no clause syntax is interpreted.
func Compile(raw string, logic bool) (Pattern, error) {
	if raw == "" {
		return Pattern{}, ErrEmptyPattern
	}
	if !logic {
		return Pattern{Raw: raw, Positive: []string{raw}}, nil
	}

	segments := strings.Split(raw, SepNeg)
	positive := splitTerms(segments[0])
	if len(positive) == 0 {
		return Pattern{}, ErrMissingPositiveTerm
	}

	var negative [][]string
	for _, seg := range segments[1:] {
		// "a~~b" and "a~ & ~b" leave blank groups; they never fire, so drop them.
		if group := splitTerms(seg); len(group) > 0 {
			negative = append(negative, group)
		}
	}
	return Pattern{Raw: raw, Positive: positive, Negative: negative}, nil
}

// splitTerms splits a clause on SepAnd, trims each term and drops blanks.
func splitTerms(clause string) []string {
	parts := strings.Split(clause, SepAnd)
	terms := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// compileResult is one worker's output, indexed back to its input position.
type compileResult struct {
	idx int
	pat Pattern
	err error
}

// CompileAll compiles raws in parallel using at most workers goroutines.
// The returned slice is in input order. If any pattern fails, the error of the
// lowest-index failing input is returned and no patterns are returned.
func CompileAll(raws []string, logic bool, workers int) ([]Pattern, error) {
	if workers < 1 {
		workers = 1
	}
	out := make([]Pattern, len(raws))
	if workers == 1 || len(raws) < 2 {
		for i, raw := range raws {
			p, err := Compile(raw, logic)
			if err != nil {
				return nil, fmt.Errorf("compile %q: %w", raw, err)
			}
			out[i] = p
		}
		return out, nil
	}

	// Bounded worker pool; results are collected single-threaded.
	sem := make(chan struct{}, workers)
	results := make(chan compileResult, len(raws))
	var wg sync.WaitGroup

	for i, raw := range raws {
		wg.Add(1)
		go func(i int, raw string) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release
			p, err := Compile(raw, logic)
			results <- compileResult{idx: i, pat: p, err: err}
		}(i, raw)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	firstIdx := -1
	var firstErr error
	for r := range results {
		if r.err != nil {
			if firstIdx < 0 || r.idx < firstIdx {
				firstIdx, firstErr = r.idx, r.err
			}
			continue
		}
		out[r.idx] = r.pat
	}
	if firstErr != nil {
		return nil, fmt.Errorf("compile %q: %w", raws[firstIdx], firstErr)
	}
	return out, nil
}
