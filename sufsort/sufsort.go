/*
Package sufsort implements the core suffix-sorting and BWT
construction engine: a single-string blockwise orchestrator (C5) and a
string-set bucketed orchestrator (C7), driving the lower-level packed
stream, DCS, radix, block sorter, bucketizer, and sink components.
*/
package sufsort

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/exp/slices"

	"github.com/bebop/seqsort/sufsort/blocksort"
	"github.com/bebop/seqsort/sufsort/bucket"
	"github.com/bebop/seqsort/sufsort/dcs"
	"github.com/bebop/seqsort/sufsort/packed"
	"github.com/bebop/seqsort/sufsort/radix"
	"github.com/bebop/seqsort/sufsort/sink"
)

// Result aggregates what an orchestrator run produced: the primary
// (single-string) or primary map (string-set), plus the number of
// symbols emitted.
type Result struct {
	Primary    uint64
	PrimaryMap PrimaryMap
	Symbols    int64
}

// singleStringBucketBits is the fixed bucketing width used by
// BWTSingle. Unlike the string-set orchestrator, the single-string
// orchestrator always has a DCS oracle available to break ties, so no
// escalation table is needed here: a bucket that overflows the block
// sorter's capacity is always a budget error, not a correctness bug.
const singleStringBucketBits = 16

// singleStringRadixDepth is the number of radix words compared before
// falling back to the DCS oracle for remaining ties.
const singleStringRadixDepth = 2

// BWTSingle sorts all suffixes of text (already split into symbol
// codes in [0, 2^symbolBits)) and writes the BWT of text$ to out,
// returning the primary position. text must not be mutated by the
// caller for the duration of the call.
func BWTSingle(ctx context.Context, text []byte, symbolBits int, out sink.Sink, params BWTParams) (Result, error) {
	n := len(text)
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("%w", ErrCancelled)
	}

	if n == 0 {
		if err := out.Flush(); err != nil {
			return Result{}, fmt.Errorf("%w", ErrSink)
		}
		return Result{Primary: 0, Symbols: 0}, nil
	}

	stream, err := packed.FromSymbols(text, symbolBits, 32, packed.LittleEndian)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInputFormat, err)
	}

	params.logf("sufsort: building DCS for N=%d", n)
	table, err := dcs.Build(stream, n)
	if err != nil {
		if errors.Is(err, dcs.ErrConstructionLimit) {
			return Result{}, fmt.Errorf("%w", ErrConstructionLimit)
		}
		return Result{}, err
	}

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("%w", ErrCancelled)
	}

	capacity := params.deviceBudgetSuffixes()

	// Partition [0,N) into buckets by leading radix (C3 at w=0).
	byBucket := map[uint32][]int{}
	var bucketOrder []uint32
	for p := 0; p < n; p++ {
		idx := radix.BucketIndex(stream, p, singleStringBucketBits, symbolBits)
		if _, ok := byBucket[idx]; !ok {
			bucketOrder = append(bucketOrder, idx)
		}
		byBucket[idx] = append(byBucket[idx], p)
	}
	slices.Sort(bucketOrder)

	// bwtColumn holds the full N+1 symbol BWT (including the explicit
	// DOLLAR) before the post-hoc removal step.
	bwtColumn := make([]byte, n+1)
	bwtColumn[0] = stream.Get(n - 1) // predecessor of the implicit empty suffix
	primary := -1
	slot := 1

	for _, b := range bucketOrder {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("%w", ErrCancelled)
		}
		positions := byBucket[b]
		if len(positions) > capacity {
			return Result{}, fmt.Errorf("%w: bucket 0x%x holds %d suffixes, device budget allows %d (increase --gpu-memory)", ErrMemoryBudget, b, len(positions), capacity)
		}
		sorted, _, err := blocksort.Sort(stream, symbolBits, positions, singleStringRadixDepth, capacity, table)
		if err != nil {
			if errors.Is(err, blocksort.ErrBufferOverflow) {
				return Result{}, fmt.Errorf("%w", ErrBufferOverflow)
			}
			return Result{}, err
		}
		for _, p := range sorted {
			if p == 0 {
				bwtColumn[slot] = packed.Dollar
				primary = slot
			} else {
				bwtColumn[slot] = stream.Get(p - 1)
			}
			slot++
		}
	}

	if primary < 0 {
		return Result{}, fmt.Errorf("sufsort: internal error: no DOLLAR emitted for N=%d", n)
	}

	// Remove the DOLLAR by shifting the tail left one slot, producing
	// the final N-symbol BWT.
	final := make([]byte, n)
	copy(final, bwtColumn[:primary])
	copy(final[primary:], bwtColumn[primary+1:])

	if err := out.Process(final); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrSink, err)
	}
	if err := out.Flush(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrSink, err)
	}

	return Result{Primary: uint64(primary), Symbols: int64(n)}, nil
}

// bucketWidths is the escalation table tried in order on
// ErrMemoryBudget, per the component design.
var bucketWidths = []int{16, 20, 24}

// stringSetRadixDepth bounds the radix-only sort used for long-string
// buckets in the string-set orchestrator (no DCS oracle is built for
// string sets).
const stringSetRadixDepth = 3

// BWTSet sorts suffixes of a concatenation of many short strings
// (each pre-split into symbol codes) and writes the resulting BWT
// symbols to out, returning the primary map.
func BWTSet(ctx context.Context, strings [][]byte, symbolBits int, out sink.Sink, params BWTParams) (Result, error) {
	streams := make([]*packed.Stream, len(strings))
	for i, raw := range strings {
		s, err := packed.FromSymbols(raw, symbolBits, 32, packed.LittleEndian)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrInputFormat, err)
		}
		streams[i] = s
	}
	m := len(streams)

	// Step 1: one BWT symbol per string, its dollar's predecessor, in
	// string-index order; these occupy the deterministic prefix of the
	// output and form the primary map directly.
	prefix := make([]byte, m)
	primaryMap := make(PrimaryMap, m)
	for k, s := range streams {
		n := s.Len()
		if n == 0 {
			prefix[k] = packed.Dollar
		} else {
			prefix[k] = s.Get(n - 1)
		}
		primaryMap[k] = PrimaryRecord{Position: uint64(k), StringID: uint32(k)}
	}

	if err := out.Process(prefix); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrSink, err)
	}

	var totalSymbols int64 = int64(m)
	for _, s := range streams {
		totalSymbols += int64(s.Len())
	}

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("%w", ErrCancelled)
	}

	// Step 2/3: choose bucketing width by escalation, counting pass,
	// prefix-sum.
	var bucketBits int
	var hist bucket.Histogram
	deviceCap := params.deviceBudgetSuffixes()
	var lastHist bucket.Histogram
	for _, w := range bucketWidths {
		h := bucket.Count(streams, symbolBits, w)
		lastHist = h
		_, largest := h.LargestBucket()
		if int(largest) <= deviceCap {
			bucketBits, hist = w, h
			break
		}
		params.logf("sufsort: bucket width %d insufficient (largest bucket %d > device budget %d), escalating", w, largest, deviceCap)
	}
	if hist == nil {
		idx, largest := lastHist.LargestBucket()
		return Result{}, fmt.Errorf("%w: bucket %d holds %d suffixes even at maximum bucketing width, minimum device memory ~%d bytes", ErrMemoryBudget, idx, largest, int64(largest)*32)
	}

	// Step 4: enumerate super-blocks bounded by host memory, driving
	// C6 (collect) + C4 (sort) for each, respecting the destination
	// offset invariant prefix_sum[bucket] + local_rank.
	offsets := hist.PrefixSum()
	hostCap := params.hostBudgetSuffixes()

	numBuckets := 1 << uint(bucketBits)
	bLo := 0
	for bLo < numBuckets {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("%w", ErrCancelled)
		}
		bHi := bLo + 1
		count := int(hist[bLo])
		for bHi < numBuckets && count+int(hist[bHi]) <= hostCap {
			count += int(hist[bHi])
			bHi++
		}

		symbols, err := processSuperBlock(ctx, streams, symbolBits, bucketBits, bLo, bHi, hist, offsets, hostCap, deviceCap)
		if err != nil {
			return Result{}, err
		}
		if err := out.Process(symbols); err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrSink, err)
		}

		bLo = bHi
	}

	if err := out.Flush(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrSink, err)
	}

	return Result{PrimaryMap: primaryMap, Symbols: totalSymbols}, nil
}

// processSuperBlock collects the suffixes for bucket range [bLo,bHi),
// partitions them into device-memory-sized sub-blocks, and returns
// their BWT symbols in destination-slot order (i.e. in ascending
// bucket order, matching offsets).
func processSuperBlock(ctx context.Context, streams []*packed.Stream, symbolBits, bucketBits, bLo, bHi int, hist bucket.Histogram, offsets []uint32, hostCap, deviceCap int) ([]byte, error) {
	collected, localCounts, err := bucket.Collect(streams, symbolBits, bucketBits, bLo, bHi, hist, hostCap)
	if err != nil {
		return nil, fmt.Errorf("%w", ErrMemoryBudget)
	}

	total := offsets[bHi] - offsets[bLo]
	out := make([]byte, total)

	cursor := 0
	subLo := bLo
	for subLo < bHi {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w", ErrCancelled)
		}
		short := radix.IsShortStringBucket(uint32(subLo))
		subHi := subLo + 1
		subCount := int(localCounts[subLo-bLo])
		for subHi < bHi &&
			radix.IsShortStringBucket(uint32(subHi)) == short &&
			subCount+int(localCounts[subHi-bLo]) <= deviceCap {
			subCount += int(localCounts[subHi-bLo])
			subHi++
		}

		// Slice this sub-block's portion of collected directly: since
		// Collect groups suffixes by ascending bucket, the range
		// [cursor, cursor+subCount) is exactly the sub-block.
		ids := collected[cursor : cursor+subCount]

		if short {
			emitShortStringBucket(streams, ids, out[cursor:cursor+subCount])
		} else {
			sorted, _, err := blocksort.SortSet(streams, symbolBits, ids, stringSetRadixDepth, deviceCap)
			if err != nil {
				if errors.Is(err, blocksort.ErrBufferOverflow) {
					return nil, fmt.Errorf("%w", ErrBufferOverflow)
				}
				return nil, err
			}
			for i, id := range sorted {
				out[cursor+i] = predecessorSymbol(streams[id.String], int(id.Pos))
			}
		}

		cursor += subCount
		subLo = subHi
	}

	return out, nil
}

// emitShortStringBucket writes predecessor symbols directly, without
// invoking the block sorter: every suffix in a short-string bucket
// already shares an identical prefix through its dollar, so their
// relative order carries no further information. Suffixes are still
// ordered deterministically, by (string, position), so repeated runs
// are bit-identical.
func emitShortStringBucket(streams []*packed.Stream, ids []radix.SuffixID, out []byte) {
	ordered := make([]radix.SuffixID, len(ids))
	copy(ordered, ids)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].String != ordered[j].String {
			return ordered[i].String < ordered[j].String
		}
		return ordered[i].Pos < ordered[j].Pos
	})
	for i, id := range ordered {
		out[i] = predecessorSymbol(streams[id.String], int(id.Pos))
	}
}

// predecessorSymbol is the BWT's last-column character for the suffix
// starting at p within s: DOLLAR if p is the start of the string
// (that string's own dollar wraps around to precede it), else the
// symbol immediately before p.
func predecessorSymbol(s *packed.Stream, p int) byte {
	if p == 0 {
		return packed.Dollar
	}
	return s.Get(p - 1)
}
