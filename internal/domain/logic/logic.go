// Package logic evaluates compiled patterns against the set of observed terms.
package logic

import (
	"sync"

	"github.com/corey/kwmatch/internal/domain/pattern"
	"github.com/corey/kwmatch/internal/ports"
)

// minChunk is the smallest partition worth a goroutine. Below it a pattern
// check costs less than scheduling.
const minChunk = 256

// Evaluate reports whether p is satisfied: every positive term was observed
// and no negative group had all of its terms observed.
func Evaluate(p pattern.Pattern, observed ports.TermSet) bool {
	if !observed.HasAll(p.Positive) {
		return false
	}
	for _, group := range p.Negative {
		if observed.HasAll(group) {
			return false
		}
	}
	return true
}

// Matching returns the Raw text of every satisfied pattern, in pattern order.
// Duplicated raw texts appear once per pattern; callers dedupe.
//
// Patterns are split into contiguous partitions, one goroutine each, and every
// goroutine fills its own slice. Partitions are concatenated after all finish,
// so no lock guards the output. observed is only read.
func Matching(patterns []pattern.Pattern, observed ports.TermSet, workers int) []string {
	if len(patterns) == 0 || len(observed) == 0 {
		return nil
	}

	parts := partitions(len(patterns), workers)
	if len(parts) == 1 {
		return matchRange(patterns, observed)
	}

	results := make([][]string, len(parts))
	var wg sync.WaitGroup
	for i, r := range parts {
		wg.Add(1)
		go func(i int, lo, hi int) {
			defer wg.Done()
			results[i] = matchRange(patterns[lo:hi], observed)
		}(i, r[0], r[1])
	}
	wg.Wait()

	n := 0
	for _, r := range results {
		n += len(r)
	}
	if n == 0 {
		return nil
	}
	out := make([]string, 0, n)
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

func matchRange(patterns []pattern.Pattern, observed ports.TermSet) []string {
	var out []string
	for i := range patterns {
		if Evaluate(patterns[i], observed) {
			out = append(out, patterns[i].Raw)
		}
	}
	return out
}

// partitions splits [0, n) into at most workers contiguous [lo, hi) ranges of
// near-equal size, with no more than one range per minChunk elements.
func partitions(n, workers int) [][2]int {
	if workers < 1 {
		workers = 1
	}
	if limit := (n + minChunk - 1) / minChunk; workers > limit {
		workers = limit
	}
	if workers <= 1 {
		return [][2]int{{0, n}}
	}

	size := (n + workers - 1) / workers
	parts := make([][2]int, 0, workers)
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		parts = append(parts, [2]int{lo, hi})
	}
	return parts
}
