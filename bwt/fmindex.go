/*
Package bwt turns the BWT column produced by the sufsort engine into a
queryable FM-index: count, locate, and extract over the original
sequence without ever materializing it.

The rank structure here is the checkpointed occurrence array described
in Ferragina & Manzini's original FM-index paper (and used by
production aligners such as bwa): a running per-symbol occurrence
count is snapshotted every checkpointStride positions, and a rank
query re-derives its answer from the nearest checkpoint plus a linear
scan of at most checkpointStride bytes. This trades the wavelet tree's
O(log(alphabet)) rank for an O(|alphabet|) one, which is the right
trade for DNA's four-symbol alphabet: the scan is at most a few dozen
bytes and there is no tree to build or balance.

The suffix array is sampled rather than stored in full, following the
sampled-suffix-array (SSA) scheme: only rows whose text offset is a
multiple of saSampleRate are kept, indexed both by row (for Locate)
and by offset (for Extract's anchor lookup). Locate and Extract walk
the LF mapping forward from an unsampled row until they land on a
sampled one, at most saSampleRate steps away.
*/
package bwt

import (
	"fmt"
	"sort"

	"github.com/bebop/seqsort/sufsort"
)

const nullChar = '$'

// FMIndex is a queryable FM-index built from a BWT column: the
// checkpointed rank structure described above plus a sampled suffix
// array, sufficient to answer Count, Locate, and Extract without
// holding the original sequence in memory.
type FMIndex struct {
	l        []byte // the BWT column, dollar included
	n        int
	alphabet []byte
	base     map[byte]int // base[c] = number of symbols in l strictly less than c

	checkpointStride int
	checkpoints      map[byte][]int32 // checkpoints[c][k] = occurrences of c in l[:k*checkpointStride]
	total            map[byte]int     // total[c] = occurrences of c in all of l

	saSampleRate int
	rowToOffset  map[int]int // sampled rows -> text offset, offset always a multiple of saSampleRate
	offsetToRow  map[int]int // inverse of rowToOffset
}

// defaultCheckpointStride and defaultSASampleRate balance memory
// against scan length for DNA-scale inputs. The sample rate can be
// overridden through FromSuffixSort's saSampleRate argument; the
// checkpoint stride is always defaultCheckpointStride.
const (
	defaultCheckpointStride = 32
	defaultSASampleRate     = 16
)

// FromSuffixSort builds an FMIndex directly from the output of the
// sufsort engine's single-string orchestrator, skipping the O(N log N)
// sort a from-scratch construction would require: BWTSingle has
// already produced the BWT column and primary position, so this
// reconstructs the rank and sampled-suffix-array structures purely
// from the column via LF-mapping.
//
// bwtSymbols is the N-symbol BWT of sequence+"$" with the dollar
// already removed, exactly as returned by an ASCII sink fed to
// sufsort.BWTSingle; result is that same call's returned Result.
// Smaller positive saSampleRate values trade memory for faster
// Locate/Extract. A zero or negative value selects defaultSASampleRate.
func FromSuffixSort(bwtSymbols []byte, result sufsort.Result, saSampleRate int) (*FMIndex, error) {
	primary := int(result.Primary)
	if primary < 0 || primary > len(bwtSymbols) {
		return nil, fmt.Errorf("bwt: primary %d out of range for %d BWT symbols", primary, len(bwtSymbols))
	}
	if saSampleRate <= 0 {
		saSampleRate = defaultSASampleRate
	}

	n := len(bwtSymbols) + 1
	l := make([]byte, n)
	copy(l, bwtSymbols[:primary])
	l[primary] = nullChar
	copy(l[primary+1:], bwtSymbols[primary:])

	idx := &FMIndex{
		l:                l,
		n:                n,
		checkpointStride: defaultCheckpointStride,
		saSampleRate:     saSampleRate,
	}
	idx.buildRankStructure()

	// Recover the suffix array via the LF mapping: row `primary` is
	// the row whose suffix starts at offset 0 (L[primary] is the
	// dollar reinserted above); following LF moves to the row whose
	// suffix starts one position earlier, cyclically. Sample whenever
	// the offset lands on a multiple of saSampleRate, so later lookups
	// can jump straight to an anchor instead of searching for one.
	nSamples := n/saSampleRate + 1
	idx.rowToOffset = make(map[int]int, nSamples)
	idx.offsetToRow = make(map[int]int, nSamples)
	row := primary
	for step := 0; step < n; step++ {
		offset := (n - step) % n
		if offset%saSampleRate == 0 {
			idx.rowToOffset[row] = offset
			idx.offsetToRow[offset] = row
		}
		row = idx.lf(row)
	}

	return idx, nil
}

func (idx *FMIndex) buildRankStructure() {
	counts := map[byte]int{}
	for _, c := range idx.l {
		counts[c]++
	}
	syms := make([]byte, 0, len(counts))
	for c := range counts {
		syms = append(syms, c)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })
	idx.alphabet = syms
	idx.total = counts

	idx.base = make(map[byte]int, len(syms))
	sum := 0
	for _, c := range syms {
		idx.base[c] = sum
		sum += counts[c]
	}

	nCheckpoints := idx.n/idx.checkpointStride + 1
	idx.checkpoints = make(map[byte][]int32, len(syms))
	for _, c := range syms {
		idx.checkpoints[c] = make([]int32, nCheckpoints)
	}
	running := make(map[byte]int32, len(syms))
	for i, c := range idx.l {
		if i%idx.checkpointStride == 0 {
			for _, s := range syms {
				idx.checkpoints[s][i/idx.checkpointStride] = running[s]
			}
		}
		running[c]++
	}
}

// rank returns the number of occurrences of c in l[:i].
func (idx *FMIndex) rank(c byte, i int) int {
	if _, ok := idx.base[c]; !ok {
		return 0
	}
	if i == idx.n {
		// i == len(l): no checkpoint is recorded past the last byte,
		// so answer directly from the precomputed total instead of
		// reading past the checkpoint array.
		return idx.total[c]
	}
	checkpoint := i / idx.checkpointStride
	count := int(idx.checkpoints[c][checkpoint])
	for j := checkpoint * idx.checkpointStride; j < i; j++ {
		if idx.l[j] == c {
			count++
		}
	}
	return count
}

// lf maps row i in the BWT's last column to the row of the same
// character in the first column: the standard LF-mapping step that
// backward search and suffix-array reconstruction both walk.
func (idx *FMIndex) lf(i int) int {
	c := idx.l[i]
	return idx.base[c] + idx.rank(c, i)
}

// lfSearch narrows [lo, hi) to the rows whose suffixes are prefixed by
// pattern, matching it back to front exactly as backward search does
// over any FM-index.
func (idx *FMIndex) lfSearch(pattern string) (lo, hi int) {
	lo, hi = 0, idx.n
	for i := len(pattern) - 1; i >= 0 && lo < hi; i-- {
		c := pattern[i]
		if _, ok := idx.base[c]; !ok {
			return 0, 0
		}
		lo = idx.base[c] + idx.rank(c, lo)
		hi = idx.base[c] + idx.rank(c, hi)
	}
	return lo, hi
}

// Count returns the number of times pattern occurs in the original
// sequence.
func (idx *FMIndex) Count(pattern string) (int, error) {
	if pattern == "" {
		return 0, nil
	}
	lo, hi := idx.lfSearch(pattern)
	return hi - lo, nil
}

// Locate returns the offsets at which pattern begins in the original
// sequence, in no particular order.
func (idx *FMIndex) Locate(pattern string) ([]int, error) {
	if pattern == "" {
		return nil, nil
	}
	lo, hi := idx.lfSearch(pattern)
	if lo >= hi {
		return nil, nil
	}
	offsets := make([]int, hi-lo)
	for row := lo; row < hi; row++ {
		offsets[row-lo] = idx.offsetOf(row)
	}
	return offsets, nil
}

// offsetOf walks LF forward from row until it lands on a sampled row,
// then adds back the steps walked to recover row's own offset.
func (idx *FMIndex) offsetOf(row int) int {
	steps := 0
	r := row
	for {
		if off, ok := idx.rowToOffset[r]; ok {
			return (off + steps) % idx.n
		}
		r = idx.lf(r)
		steps++
	}
}

// rowOf is the inverse of offsetOf: given a text offset, returns the
// row of the suffix array whose suffix begins there. lf walks a row's
// offset downward by one each step (the direction offsetOf's forward
// walk relies on), so reaching offset by walking lf means starting
// from a sampled anchor at or *after* offset, not before it: the
// nearest sampled multiple of saSampleRate that is >= offset, or,
// if offset is past the last such multiple below idx.n, the sample at
// offset 0 (always recorded, reached by wrapping around row n-1).
func (idx *FMIndex) rowOf(offset int) int {
	offset = ((offset % idx.n) + idx.n) % idx.n
	var anchor, steps int
	if rem := offset % idx.saSampleRate; rem == 0 {
		anchor, steps = offset, 0
	} else if candidate := offset + (idx.saSampleRate - rem); candidate < idx.n {
		anchor, steps = candidate, candidate-offset
	} else {
		anchor, steps = 0, idx.n-offset
	}
	row := idx.offsetToRow[anchor]
	for i := 0; i < steps; i++ {
		row = idx.lf(row)
	}
	return row
}

// Extract returns the substring of the original sequence covering
// [start, end), where end is exclusive and bounded by the sequence
// length (the dollar terminator is never included in the result).
func (idx *FMIndex) Extract(start, end int) (string, error) {
	textLen := idx.n - 1
	if start < 0 || end > textLen || start > end {
		return "", fmt.Errorf("bwt: extract range [%d,%d) out of bounds for sequence of length %d", start, end, textLen)
	}
	if start == end {
		return "", nil
	}

	row := idx.rowOf(end % idx.n)
	out := make([]byte, end-start)
	for i := end - 1; i >= start; i-- {
		out[i-start] = idx.l[row]
		row = idx.lf(row)
	}
	return string(out), nil
}
