package kwmatch

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/corey/kwmatch/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func built(t *testing.T, patterns []string, opts ...Option) *Matcher {
	t.Helper()
	m := New(opts...)
	require.NoError(t, m.Build(patterns))
	return m
}

func find(t *testing.T, m *Matcher, haystack string) []string {
	t.Helper()
	got, err := m.Find(haystack)
	require.NoError(t, err)
	return got
}

func TestMatcher_PositiveOnly(t *testing.T) {
	m := built(t, []string{"a&b"})
	assert.Equal(t, []string{"a&b"}, find(t, m, "a b"))
	assert.Empty(t, find(t, m, "a"))
}

func TestMatcher_NegativeGroupSuppression(t *testing.T) {
	m := built(t, []string{"a~b&c"})
	assert.Empty(t, find(t, m, "a b c"))
	assert.Equal(t, []string{"a~b&c"}, find(t, m, "a b"))
}

func TestMatcher_MultipleNegativeGroups(t *testing.T) {
	m := built(t, []string{"a~b~c"})
	assert.Empty(t, find(t, m, "a b"))
	assert.Empty(t, find(t, m, "a c"))
	assert.Empty(t, find(t, m, "a b c"))
	assert.Equal(t, []string{"a~b~c"}, find(t, m, "a d"))
}

func TestMatcher_CatalogPrefixSuppression(t *testing.T) {
	// Term presence is leftmost-longest, not plain substring containment:
	// "cat" inside "catalog" is consumed by the longer term.
	m := built(t, []string{"cat", "catalog"})
	assert.Equal(t, []string{"catalog"}, find(t, m, "the catalog"))
	assert.Equal(t, []string{"cat", "catalog"}, find(t, m, "the cat and the catalog"))

	// Only when "catalog" is also a registered term is "cat" hidden.
	alone := built(t, []string{"cat"})
	assert.Equal(t, []string{"cat"}, find(t, alone, "the catalog"))
}

func TestMatcher_CatalogSuppressionAcrossPatterns(t *testing.T) {
	// A term from a negative group still takes part in overlap resolution.
	m := built(t, []string{"cat", "dog~catalog"})
	assert.Empty(t, find(t, m, "catalog"))
	assert.Equal(t, []string{"cat"}, find(t, m, "cat catalog"))
}

func TestMatcher_TermInsideLongerMatchIsHidden(t *testing.T) {
	// "or" ends "error" and "log" ends "catalog"; neither is present on its own.
	m := built(t, []string{"error~or"})
	assert.Equal(t, []string{"error~or"}, find(t, m, "error"))
	assert.Empty(t, find(t, m, "error or"))

	m = built(t, []string{"log", "catalog"})
	assert.Equal(t, []string{"catalog"}, find(t, m, "catalog"))
	assert.Equal(t, []string{"catalog", "log"}, find(t, m, "catalog log"))

	ex, err := m.Explain("catalog")
	require.NoError(t, err)
	assert.Equal(t, []ports.TermMatch{{Term: "catalog", Start: 0, End: 7}}, ex.Matches)
}

func TestMatcher_LogicDisabled(t *testing.T) {
	patterns := []string{"a~b", "x&y", "plain", "a"}
	m := built(t, patterns, WithLogic(false))
	assert.False(t, m.Logic())

	assert.Equal(t, []string{"a~b", "x&y"}, find(t, m, "see a~b or x&y"))
	assert.Equal(t, []string{"a", "plain"}, find(t, m, "a plain text"))
	assert.Empty(t, find(t, m, "x y b"))
}

func TestMatcher_LogicDisabledEquivalence(t *testing.T) {
	// Every disjoint occurrence is reported exactly as a literal.
	patterns := []string{"red", "green", "blue~sky", "&"}
	m := built(t, patterns, WithLogic(false))
	assert.Equal(t, []string{"&", "blue~sky", "red"}, find(t, m, "red & blue~sky"))
}

func TestMatcher_IdempotentRebuild(t *testing.T) {
	patterns := []string{"a&b", "c~d", "e"}
	m := New()
	require.NoError(t, m.Build(patterns))
	first := find(t, m, "a b c e")
	require.NoError(t, m.Build(patterns))
	second := find(t, m, "a b c e")
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"a&b", "c~d", "e"}, second)
}

func TestMatcher_RebuildReplacesState(t *testing.T) {
	m := built(t, []string{"old"})
	require.NoError(t, m.Build([]string{"new"}))
	assert.Empty(t, find(t, m, "old"))
	assert.Equal(t, []string{"new"}, find(t, m, "new"))
}

func TestMatcher_FindBeforeBuild(t *testing.T) {
	m := New()
	_, err := m.Find("anything")
	assert.ErrorIs(t, err, ErrNotBuilt)

	_, err = m.Explain("anything")
	assert.ErrorIs(t, err, ErrNotBuilt)
	assert.False(t, m.Stats().Built)
}

func TestMatcher_BuildEmptyCollection(t *testing.T) {
	m := New()
	err := m.Build(nil)
	assert.ErrorIs(t, err, ErrEmptyVocabulary)

	_, err = m.Find("x")
	assert.ErrorIs(t, err, ErrNotBuilt)
}

func TestMatcher_FindEmptyHaystack(t *testing.T) {
	m := built(t, []string{"a"})
	got, err := m.Find("")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMatcher_EmptyPatternKeepsPreviousState(t *testing.T) {
	m := built(t, []string{"keep"})

	err := m.Build([]string{"fine", ""})
	assert.ErrorIs(t, err, ErrEmptyPattern)

	assert.Equal(t, []string{"keep"}, find(t, m, "keep fine"))
	assert.Equal(t, 1, m.Stats().Patterns)
}

func TestMatcher_MissingPositiveTerm(t *testing.T) {
	m := built(t, []string{"keep"})
	err := m.Build([]string{"~only negative"})
	assert.ErrorIs(t, err, ErrMissingPositiveTerm)
	assert.Contains(t, err.Error(), "~only negative")
	assert.Equal(t, []string{"keep"}, find(t, m, "keep"))

	// The same text is a valid literal when logic is off.
	plain := New(WithLogic(false))
	assert.NoError(t, plain.Build([]string{"~only negative"}))
}

type failingBuilder struct{}

func (failingBuilder) Build([]string) (ports.TermAutomaton, error) {
	return nil, fmt.Errorf("%w: boom", ports.ErrAutomatonBuild)
}

func TestMatcher_AutomatonBuildError(t *testing.T) {
	m := New(WithAutomatonBuilder(failingBuilder{}))
	err := m.Build([]string{"a"})
	assert.ErrorIs(t, err, ErrAutomatonBuild)
	assert.False(t, m.Stats().Built)
}

func TestMatcher_DuplicatePatternsCollapse(t *testing.T) {
	m := built(t, []string{"a&b", "a&b", "b"})
	assert.Equal(t, 2, m.Stats().Patterns)
	assert.Equal(t, []string{"a&b", "b"}, find(t, m, "b a"))
}

func TestMatcher_EquivalentPatternsStayDistinct(t *testing.T) {
	// Different raw text, same formula: both are reported.
	m := built(t, []string{"a&b", "b & a"})
	assert.Equal(t, []string{"a&b", "b & a"}, find(t, m, "a b"))
}

func TestMatcher_Stats(t *testing.T) {
	m := built(t, []string{"a&b~c", "a~d"})
	assert.Equal(t, Stats{Built: true, Logic: true, Patterns: 2, Terms: 4}, m.Stats())
}

func TestMatcher_Explain(t *testing.T) {
	m := built(t, []string{"cat~dog", "catalog"})
	ex, err := m.Explain("catalog dog cat")
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "catalog", "dog"}, ex.Observed)
	assert.Equal(t, []string{"catalog"}, ex.Matched)
	require.Len(t, ex.Matches, 3)
	assert.Equal(t, ports.TermMatch{Term: "catalog", Start: 0, End: 7}, ex.Matches[0])
}

func TestMatcher_ManyPatternsParallel(t *testing.T) {
	patterns := make([]string, 3000)
	for i := range patterns {
		patterns[i] = fmt.Sprintf("w%d&common~block%d", i, i%10)
	}
	haystack := "common w7 w17 w1234 w2999 block7"
	// "block7" suppresses w7 and w17.
	want := []string{"w1234&common~block4", "w2999&common~block9"}

	for _, workers := range []int{1, 4, 16} {
		m := built(t, patterns, WithWorkers(workers))
		assert.Equal(t, want, find(t, m, haystack), "workers=%d", workers)
	}
}

func TestMatcher_ConcurrentFindDuringBuild(t *testing.T) {
	m := built(t, []string{"a"})
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				got, err := m.Find("a b")
				if !assert.NoError(t, err) {
					return
				}
				// Either the old or the new state, never a mix.
				if len(got) != 1 || (got[0] != "a" && got[0] != "b") {
					t.Errorf("unexpected result %v", got)
					return
				}
			}
		}()
	}

	for i := 0; i < 50; i++ {
		if i%2 == 0 {
			require.NoError(t, m.Build([]string{"b"}))
		} else {
			require.NoError(t, m.Build([]string{"a"}))
		}
	}
	close(stop)
	wg.Wait()
}

func TestErrors_AreDistinct(t *testing.T) {
	all := []error{ErrNotBuilt, ErrEmptyPattern, ErrMissingPositiveTerm, ErrEmptyVocabulary, ErrAutomatonBuild}
	for i := range all {
		for j := range all {
			if i != j {
				assert.False(t, errors.Is(all[i], all[j]))
			}
		}
	}
}
