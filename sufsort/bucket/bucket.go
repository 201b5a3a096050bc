/*
Package bucket computes bucket histograms and collects suffixes for a
super-block's worth of work, streaming chunks of a string set through
a bounded working-set budget. It implements the two-phase counting and
collecting passes used by the string-set BWT orchestrator.
*/
package bucket

import (
	"errors"
	"fmt"

	"github.com/bebop/seqsort/sufsort/packed"
	"github.com/bebop/seqsort/sufsort/radix"
)

// ErrMemoryBudget indicates a super-block (or, upstream, a single
// bucket) exceeds the configured working-set budget at the current
// bucketing width.
var ErrMemoryBudget = errors.New("bucket: super-block exceeds working-set budget")

// SuffixID identifies a suffix within a string set: string index s
// and offset p within that string.
type SuffixID = radix.SuffixID

// Histogram counts suffixes per bucket, indexed [0, 2^bucketBits).
type Histogram []uint32

// Count performs the counting pass: a single scan over the entire set
// accumulating per-bucket contributions. The implicit empty suffix
// (p == len(s)) is excluded — it is emitted directly by the
// orchestrator and never bucketed.
func Count(strings []*packed.Stream, symbolBits, bucketBits int) Histogram {
	hist := make(Histogram, 1<<uint(bucketBits))
	for _, s := range strings {
		n := s.Len()
		for p := 0; p < n; p++ {
			idx := radix.BucketIndex(s, p, bucketBits, symbolBits)
			hist[idx]++
		}
	}
	return hist
}

// PrefixSum derives the canonical destination offset for each bucket:
// offsets[b] is the first destination slot belonging to bucket b.
// The trailing element is the grand total.
func (h Histogram) PrefixSum() []uint32 {
	offsets := make([]uint32, len(h)+1)
	var sum uint32
	for i, c := range h {
		offsets[i] = sum
		sum += c
	}
	offsets[len(h)] = sum
	return offsets
}

// LargestBucket returns the index and count of the largest bucket,
// used by the orchestrator to decide whether to escalate bucketing
// width.
func (h Histogram) LargestBucket() (idx int, count uint32) {
	for i, c := range h {
		if c > count {
			idx, count = i, c
		}
	}
	return idx, count
}

// Collect performs one collecting pass for the super-block of buckets
// [bLo, bHi): a single re-scan of the entire set, materializing only
// suffixes whose bucket falls in range and scattering them into the
// returned array using per-bucket running offsets derived from hist.
// Within the returned array, suffixes are grouped by ascending bucket;
// order within a bucket is unspecified.
func Collect(strings []*packed.Stream, symbolBits, bucketBits, bLo, bHi int, hist Histogram, capacity int) ([]SuffixID, []uint32, error) {
	width := bHi - bLo
	localCounts := make([]uint32, width)
	copy(localCounts, hist[bLo:bHi])

	var total uint32
	for _, c := range localCounts {
		total += c
	}
	if int(total) > capacity {
		return nil, nil, fmt.Errorf("%w: range [%d,%d) holds %d suffixes, capacity %d", ErrMemoryBudget, bLo, bHi, total, capacity)
	}

	localOffsets := make([]uint32, width)
	var sum uint32
	for i, c := range localCounts {
		localOffsets[i] = sum
		sum += c
	}

	out := make([]SuffixID, total)
	cursor := make([]uint32, width)
	for si, s := range strings {
		n := s.Len()
		for p := 0; p < n; p++ {
			idx := int(radix.BucketIndex(s, p, bucketBits, symbolBits))
			if idx < bLo || idx >= bHi {
				continue
			}
			local := idx - bLo
			slot := localOffsets[local] + cursor[local]
			out[slot] = SuffixID{String: int32(si), Pos: int32(p)}
			cursor[local]++
		}
	}
	return out, localCounts, nil
}
