// Package kwmatch matches many boolean keyword patterns against a text in one pass.
//
// A pattern such as "error&timeout~retry&succeeded" matches a text that
// contains both "error" and "timeout", unless it also contains both "retry"
// and "succeeded". Every literal term of every pattern is indexed in a single
// Aho-Corasick automaton, so Find scans the text once regardless of how many
// patterns were built.
//
//	m := kwmatch.New()
//	if err := m.Build([]string{"a&b", "a~c"}); err != nil {
//		return err
//	}
//	matched, err := m.Find("a b")
package kwmatch

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/corey/kwmatch/internal/adapters/ahocorasick"
	"github.com/corey/kwmatch/internal/domain/logic"
	"github.com/corey/kwmatch/internal/domain/pattern"
	"github.com/corey/kwmatch/internal/ports"
)

// compiled is the immutable state produced by one successful Build.
type compiled struct {
	automaton ports.TermAutomaton
	patterns  []pattern.Pattern
}

// Matcher owns compiled patterns across two phases: Build, then any number of
// Find calls. Find is safe for concurrent use, including while Build runs: a
// Build swaps in its new state atomically once it fully succeeds.
type Matcher struct {
	logic   bool
	workers int
	builder ports.AutomatonBuilder

	buildMu sync.Mutex // serializes Build
	state   atomic.Pointer[compiled]
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithLogic selects boolean-formula mode (true, the default) or plain-literal
// mode, where each pattern is searched for verbatim and '~' and '&' carry no meaning.
func WithLogic(enabled bool) Option {
	return func(m *Matcher) { m.logic = enabled }
}

// WithWorkers bounds the goroutines used to compile and evaluate patterns.
// Values below 1 mean runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(m *Matcher) { m.workers = n }
}

// WithAutomatonBuilder replaces the Aho-Corasick term automaton.
// The builder's automata must resolve overlaps leftmost-longest.
func WithAutomatonBuilder(b ports.AutomatonBuilder) Option {
	return func(m *Matcher) { m.builder = b }
}

// New returns an unbuilt Matcher. Find fails with ErrNotBuilt until Build succeeds.
func New(opts ...Option) *Matcher {
	m := &Matcher{logic: true}
	for _, opt := range opts {
		opt(m)
	}
	if m.workers < 1 {
		m.workers = runtime.GOMAXPROCS(0)
	}
	if m.builder == nil {
		m.builder = ahocorasick.Builder{}
	}
	return m
}

// Logic reports whether the matcher interprets clause syntax.
func (m *Matcher) Logic() bool {
	return m.logic
}

// Build compiles patterns and replaces any previous state. Patterns have set
// semantics: duplicates collapse. On error the previous state, if any, is kept.
func (m *Matcher) Build(patterns []string) error {
	m.buildMu.Lock()
	defer m.buildMu.Unlock()

	raws := dedupe(patterns)
	pats, err := pattern.CompileAll(raws, m.logic, m.workers)
	if err != nil {
		return err
	}

	var vocab []string
	for i := range pats {
		vocab = append(vocab, pats[i].Terms()...)
	}
	automaton, err := m.builder.Build(vocab)
	if err != nil {
		return fmt.Errorf("build automaton: %w", err)
	}

	m.state.Store(&compiled{automaton: automaton, patterns: pats})
	return nil
}

// Find returns the raw text of every pattern satisfied by haystack, sorted.
// An empty or non-matching haystack yields an empty result and no error.
func (m *Matcher) Find(haystack string) ([]string, error) {
	st := m.state.Load()
	if st == nil {
		return nil, ErrNotBuilt
	}
	return m.find(st, st.automaton.Observe(haystack)), nil
}

func (m *Matcher) find(st *compiled, observed ports.TermSet) []string {
	matched := logic.Matching(st.patterns, observed, m.workers)
	if len(matched) == 0 {
		return []string{}
	}
	sort.Strings(matched)
	return compactSorted(matched)
}

// Explanation describes how a haystack was matched.
type Explanation struct {
	Matches  []ports.TermMatch // leftmost-longest occurrences, in haystack order
	Observed []string          // distinct observed terms, sorted
	Matched  []string          // satisfied patterns, sorted
}

// Explain is Find plus the term occurrences it was decided from.
func (m *Matcher) Explain(haystack string) (*Explanation, error) {
	st := m.state.Load()
	if st == nil {
		return nil, ErrNotBuilt
	}
	occurrences := st.automaton.Scan(haystack)
	observed := make(ports.TermSet, len(occurrences))
	for _, o := range occurrences {
		observed[o.Term] = struct{}{}
	}
	terms := make([]string, 0, len(observed))
	for t := range observed {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return &Explanation{
		Matches:  occurrences,
		Observed: terms,
		Matched:  m.find(st, observed),
	}, nil
}

// Stats summarizes the current compiled state.
type Stats struct {
	Built    bool `json:"built"`
	Logic    bool `json:"logic"`
	Patterns int  `json:"patterns"`
	Terms    int  `json:"terms"`
}

// Stats returns counts for the current state. Zero counts when unbuilt.
func (m *Matcher) Stats() Stats {
	s := Stats{Logic: m.logic}
	if st := m.state.Load(); st != nil {
		s.Built = true
		s.Patterns = len(st.patterns)
		s.Terms = st.automaton.TermCount()
	}
	return s
}

// dedupe drops repeated strings, keeping first occurrences in order.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// compactSorted removes adjacent duplicates in place.
func compactSorted(s []string) []string {
	out := s[:1]
	for _, v := range s[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
