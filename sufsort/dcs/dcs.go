/*
Package dcs implements a Difference Cover Sampler: a periodic sample
of suffix start positions with the property that, for any pair of
positions, some shift brings both into the sample. Once the sampled
suffixes carry a total order, arbitrary suffixes can be compared in
O(1) by finding that shift and comparing a bounded prefix plus the
sampled ranks.
*/
package dcs

import (
	"errors"
	"math"
	"sort"

	"github.com/bebop/seqsort/sufsort/packed"
)

// ErrConstructionLimit is returned when the recursive rank-refinement
// used to build the sampled suffix order fails to resolve every tie
// within the ⌈log2(N+2)⌉+1 window-doubling limit.
var ErrConstructionLimit = errors.New("dcs: construction exceeded recursion depth limit")

// Table is an immutable, once-built difference cover sample. It is
// owned by a single single-string BWT job for that job's duration.
type Table struct {
	period  int
	members []bool // membership bitmap over [0, period)
	n       int
	rank    map[int]int // inverse rank, keyed by sampled position
}

// Period returns the table's sampling period v.
func (t *Table) Period() int { return t.period }

// period picks v from a small table keyed by N: larger v yields a
// smaller sample (less construction work, more per-comparison work).
func period(n int) int {
	switch {
	case n < 1<<12:
		return 7
	case n < 1<<20:
		return 31
	case n < 1<<27:
		return 127
	default:
		return 521
	}
}

// cover computes a difference cover D subset of [0,v) of size
// O(sqrt(v)), using the standard two-arithmetic-progression
// construction: b = ceil(sqrt(v)); D = {0..b-1} union {i*b mod v :
// 0<=i<b}. For any d in [0,v), writing d = q*b-r with q = ceil(d/b)
// and 0<=r<b places r in the first set and q*b mod v in D, so d is
// realized as a difference of two D members modulo v.
func cover(v int) []bool {
	b := int(math.Ceil(math.Sqrt(float64(v))))
	in := make([]bool, v)
	for r := 0; r < b && r < v; r++ {
		in[r] = true
	}
	for i := 0; i < b; i++ {
		in[(i*b)%v] = true
	}
	return in
}

// Build constructs the sample set and its rank table for a string of
// length n addressed through src.
func Build(src *packed.Stream, n int) (*Table, error) {
	v := period(n)
	members := cover(v)

	var sampled []int
	for p := 0; p < n; p++ {
		if members[p%v] {
			sampled = append(sampled, p)
		}
	}
	// Extend the sample one period past n: every suffix starting at or
	// past n reads as nothing but DOLLAR, so these "virtual" tail
	// positions rank below every real suffix (position n, the implicit
	// empty suffix, highest among them). Padding the sample this way
	// guarantees Compare always finds a ranked delta even for suffixes
	// starting near the end of the string.
	for p := n; p < n+v; p++ {
		if members[p%v] {
			sampled = append(sampled, p)
		}
	}

	rank, err := rankPositions(src, sampled, n, v)
	if err != nil {
		return nil, err
	}

	return &Table{period: v, members: members, n: n, rank: rank}, nil
}

// rankPositions totally orders sampled positions by iteratively
// doubling the comparison window (prefix-doubling over the sampled
// subset), re-sorting until no ties remain or ⌈log2(n+2)⌉+1 doublings
// have been tried.
func rankPositions(src *packed.Stream, sampled []int, n, v int) (map[int]int, error) {
	order := append([]int(nil), sampled...)
	windowLen := v

	maxDepth := int(math.Ceil(math.Log2(float64(n+2)))) + 1
	rankOf := make(map[int]int, len(sampled))
	for depth := 0; ; depth++ {
		sort.Slice(order, func(i, j int) bool {
			return lessWindow(src, order[i], order[j], windowLen, n)
		})

		rankOf = make(map[int]int, len(order))
		r := 0
		rankOf[order[0]] = 0
		for i := 1; i < len(order); i++ {
			if lessWindow(src, order[i-1], order[i], windowLen, n) {
				r++
			}
			rankOf[order[i]] = r
		}

		if r == len(order)-1 {
			// All positions distinguished: ranks are a total order.
			return rankOf, nil
		}
		if depth >= maxDepth {
			return nil, ErrConstructionLimit
		}
		windowLen *= 2
	}
}

// lessWindow compares two sampled positions by their next windowLen
// symbols, treating positions at or past n as the lowest possible
// value (DOLLAR sorts below every real symbol). Two positions that both
// start at or past n are ordered by start, the one further past n
// sorting first, so the virtual tail positions never tie.
func lessWindow(src *packed.Stream, p, q, windowLen, n int) bool {
	if p >= n && q >= n {
		return p > q
	}
	for k := 0; k < windowLen; k++ {
		a := symbolOrDollar(src, p+k, n)
		b := symbolOrDollar(src, q+k, n)
		if a != b {
			return a < b
		}
	}
	return false
}

func symbolOrDollar(src *packed.Stream, pos, n int) int {
	if pos >= n {
		return -1
	}
	return int(src.Get(pos))
}

// Compare returns a negative, zero, or positive value according to
// whether the suffix starting at p sorts before, equal to, or after
// the suffix starting at q. It finds a shift delta in [0, period)
// placing both p+delta and q+delta in the sample, compares the
// intervening symbols (DOLLAR beyond n), and on a tie falls back to
// the sampled ranks.
func (t *Table) Compare(src *packed.Stream, p, q int) int {
	if p == q {
		return 0
	}
	v := t.period
	var delta int
	for delta = 0; delta < v; delta++ {
		if t.members[(p+delta)%v] && t.members[(q+delta)%v] {
			break
		}
	}

	for k := 0; k < delta; k++ {
		a := symbolOrDollar(src, p+k, t.n)
		b := symbolOrDollar(src, q+k, t.n)
		if a != b {
			if a < b {
				return -1
			}
			return 1
		}
	}

	rp, rq := t.rankAt(p+delta), t.rankAt(q+delta)
	switch {
	case rp < rq:
		return -1
	case rp > rq:
		return 1
	default:
		return 0
	}
}

func (t *Table) rankAt(pos int) int {
	return t.rank[pos]
}
