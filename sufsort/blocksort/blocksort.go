/*
Package blocksort sorts one bounded-size batch of suffixes using an
LSD-style multi-word radix sort, falling back to a Difference Cover
Sampler oracle to break ties between suffixes that remain equal after
the radix depth is exhausted.
*/
package blocksort

import (
	"errors"
	"fmt"
	"sort"

	"github.com/bebop/seqsort/sufsort/dcs"
	"github.com/bebop/seqsort/sufsort/packed"
	"github.com/bebop/seqsort/sufsort/radix"
)

// ErrBufferOverflow indicates a fixed-capacity scratch structure would
// be exceeded by the input: a tuning bug, always fatal.
var ErrBufferOverflow = errors.New("blocksort: index count exceeds reserved capacity")

// Range is a delayed tie range: [Lo, Hi) indices into the sorted
// output array whose suffixes share the same leading radix word and
// were not resolved because no DCS table was supplied. Ties are
// detected on the leading word only, so a range may also hold
// suffixes that differ in a later word; those stay in their full
// depth-word order within the range.
type Range struct {
	Lo, Hi int
}

// Sort permutes index (a caller-owned copy; Sort does not mutate its
// argument) into order with respect to the first depth words of each
// suffix. Groups sharing the same leading radix word are treated as
// tied: if dcsTable is non-nil, each such group is re-sorted using it
// as a comparison oracle; otherwise the groups are returned in the
// delayed list for the caller to handle.
func Sort(src *packed.Stream, symbolBits int, index []int, depth, capacity int, dcsTable *dcs.Table) ([]int, []Range, error) {
	if len(index) > capacity {
		return nil, nil, fmt.Errorf("%w: %d suffixes exceeds capacity %d", ErrBufferOverflow, len(index), capacity)
	}

	order := make([]int, len(index))
	copy(order, index)

	var keys []uint64
	for w := depth - 1; w >= 0; w-- {
		keys = make([]uint64, len(order))
		for i, pos := range order {
			keys[i] = radix.Key(src, pos, w, symbolBits)
		}
		sortByKeyStable(order, keys)
	}

	var delayed []Range
	i := 0
	for i < len(order) {
		j := i + 1
		for j < len(order) && keys[j] == keys[i] {
			j++
		}
		if j-i > 1 {
			if dcsTable != nil {
				resolveGroup(src, order[i:j], dcsTable)
			} else {
				delayed = append(delayed, Range{Lo: i, Hi: j})
			}
		}
		i = j
	}

	return order, delayed, nil
}

// sortByKeyStable performs a stable sort of order by the parallel key
// slice, preserving prior-depth ordering among equal keys so that
// groups tied at this depth remain ordered by the deeper depths
// already computed in earlier (higher w) passes.
func sortByKeyStable(order []int, keys []uint64) {
	type pair struct {
		key uint64
		pos int
	}
	pairs := make([]pair, len(order))
	for i := range order {
		pairs[i] = pair{key: keys[i], pos: order[i]}
	}
	sort.SliceStable(pairs, func(a, b int) bool { return pairs[a].key < pairs[b].key })
	for i, p := range pairs {
		order[i] = p.pos
		keys[i] = p.key
	}
}

// resolveGroup sorts a tied group in place using the DCS table as a
// comparison oracle, bootstrapped by comparing the group's first two
// elements and then applying an ordinary stable comparison sort.
func resolveGroup(src *packed.Stream, group []int, table *dcs.Table) {
	if len(group) < 2 {
		return
	}
	// Bootstrap: establishes that Compare is usable before the full
	// comparison sort runs; also surfaces a degenerate comparator
	// early for a two-element group.
	table.Compare(src, group[0], group[1])
	sort.SliceStable(group, func(a, b int) bool {
		return table.Compare(src, group[a], group[b]) < 0
	})
}

// SortSet is Sort generalized to a string set and used exclusively by
// the string-set orchestrator, which sorts long-string buckets
// radix-only (no DCS table — per the component design, string-set
// long-string buckets skip DCS tie-breaking entirely). Any ties
// remaining after depth words are reported as delayed ranges rather
// than resolved, since no cross-string DCS oracle is constructed.
func SortSet(streams []*packed.Stream, symbolBits int, index []radix.SuffixID, depth, capacity int) ([]radix.SuffixID, []Range, error) {
	if len(index) > capacity {
		return nil, nil, fmt.Errorf("%w: %d suffixes exceeds capacity %d", ErrBufferOverflow, len(index), capacity)
	}

	order := make([]radix.SuffixID, len(index))
	copy(order, index)

	var keys []uint64
	for w := depth - 1; w >= 0; w-- {
		keys = make([]uint64, len(order))
		for i, id := range order {
			keys[i] = radix.KeySet(streams, id, w, symbolBits)
		}
		sortSetByKeyStable(order, keys)
	}

	var delayed []Range
	i := 0
	for i < len(order) {
		j := i + 1
		for j < len(order) && keys[j] == keys[i] {
			j++
		}
		if j-i > 1 {
			delayed = append(delayed, Range{Lo: i, Hi: j})
		}
		i = j
	}

	return order, delayed, nil
}

func sortSetByKeyStable(order []radix.SuffixID, keys []uint64) {
	type pair struct {
		key uint64
		id  radix.SuffixID
	}
	pairs := make([]pair, len(order))
	for i := range order {
		pairs[i] = pair{key: keys[i], id: order[i]}
	}
	sort.SliceStable(pairs, func(a, b int) bool { return pairs[a].key < pairs[b].key })
	for i, p := range pairs {
		order[i] = p.id
		keys[i] = p.key
	}
}
