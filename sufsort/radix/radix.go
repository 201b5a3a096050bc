/*
Package radix extracts fixed-width radix keys from suffix positions.
It is shared, unmodified, between the block sorter's word-wise sort
keys and the string-set bucketizer's bucket index computation.
*/
package radix

import "github.com/bebop/seqsort/sufsort/packed"

// WordBits is the width of an extracted radix key. A single uint64
// key holds several packed symbol codes plus a trailing dollar-distance
// field; this is the one performance-critical monomorphization named
// in the design notes (2-bit DNA, 64-bit key).
const WordBits = 64

// DollarBits is the width of the trailing field recording the
// distance from a word's start to the first dollar encountered in
// that word's symbol window, clamped to its maximum value.
const DollarBits = 8

// MaxDollarDist is the clamp ceiling for the trailing field: a
// suffix whose dollar lies at or beyond this many symbols past the
// word start is indistinguishable, for ordering purposes, from one
// whose dollar is exactly this far away.
const MaxDollarDist = 1<<DollarBits - 1

// SuffixID identifies a suffix in a string set: String is the index
// into the set, Pos the offset within that string. A single string is
// the degenerate case String == 0 for every suffix.
type SuffixID struct {
	String int32
	Pos    int32
}

// Key produces a WORD_BITS-wide key for the suffix starting at pos,
// covering the w-th symbol window (0-based, each window
// SymbolsPerWord(symbolBits) symbols wide) of that suffix.
//
// Each symbol slot reserves one extra bit beyond symbolBits: real
// symbol codes are stored as code+1, and the sentinel value 0 is
// used for every slot at or past the suffix's dollar. This guarantees
// unsigned comparison of two keys matches lexicographic order with
// DOLLAR sorting below every real symbol, without requiring the
// underlying alphabet to reserve a code point of its own.
func Key(src *packed.Stream, pos, w, symbolBits int) uint64 {
	return KeySet([]*packed.Stream{src}, SuffixID{String: 0, Pos: int32(pos)}, w, symbolBits)
}

// KeySet is Key generalized to a string set: id.String selects which
// stream the suffix belongs to.
func KeySet(streams []*packed.Stream, id SuffixID, w, symbolBits int) uint64 {
	src := streams[id.String]
	bitsPerSlot := symbolBits + 1
	symbolsPerWord := (WordBits - DollarBits) / bitsPerSlot
	n := src.Len()

	var key uint64
	dollarDist := -1
	base := int(id.Pos) + w*symbolsPerWord
	for i := 0; i < symbolsPerWord; i++ {
		p := base + i
		var code uint64
		if p >= n {
			code = 0
			if dollarDist == -1 {
				dollarDist = i
			}
		} else {
			code = uint64(src.Get(p)) + 1
		}
		key = (key << uint(bitsPerSlot)) | code
	}

	var distField uint64
	if dollarDist == -1 {
		distField = MaxDollarDist
	} else if dollarDist > MaxDollarDist {
		distField = MaxDollarDist
	} else {
		distField = uint64(dollarDist)
	}
	return (key << DollarBits) | distField
}

// SymbolsPerWord returns how many symbol slots a single radix word
// covers for the given alphabet width.
func SymbolsPerWord(symbolBits int) int {
	return (WordBits - DollarBits) / (symbolBits + 1)
}

// BucketIndex computes the leading K-bit bucket index for a suffix,
// per the data model's bucket histogram: the high bucketBits-4 bits
// of radix plus a trailing 4-bit field (not DollarBits) recording
// distance to the first dollar, clamped to 15. bucketBits must be one
// of {16, 20, 24}.
func BucketIndex(src *packed.Stream, pos, bucketBits, symbolBits int) uint32 {
	return BucketIndexSet([]*packed.Stream{src}, SuffixID{String: 0, Pos: int32(pos)}, bucketBits, symbolBits)
}

// BucketIndexSet is BucketIndex generalized to a string set.
func BucketIndexSet(streams []*packed.Stream, id SuffixID, bucketBits, symbolBits int) uint32 {
	const fieldBits = 4 // bucket-local dollar-distance field width
	prefixBits := bucketBits - fieldBits
	src := streams[id.String]
	n := src.Len()

	var prefix uint32
	dollarDist := -1
	bitsConsumed := 0
	i := 0
	for bitsConsumed < prefixBits {
		p := int(id.Pos) + i
		var code uint32
		if p >= n {
			code = 0
			if dollarDist == -1 {
				dollarDist = i
			}
		} else {
			code = uint32(src.Get(p))
		}
		take := symbolBits
		if bitsConsumed+take > prefixBits {
			take = prefixBits - bitsConsumed
			code >>= uint(symbolBits - take)
		}
		prefix = (prefix << uint(take)) | (code & (1<<uint(take) - 1))
		bitsConsumed += take
		i++
	}

	maxDist := uint32(1<<fieldBits) - 1
	var distField uint32
	if dollarDist == -1 {
		distField = maxDist
	} else if uint32(dollarDist) > maxDist {
		distField = maxDist
	} else {
		distField = uint32(dollarDist)
	}
	return (prefix << fieldBits) | distField
}

// IsShortStringBucket reports whether a bucket index (produced by
// BucketIndex) falls in the short-string range: its trailing
// dollar-distance field is non-saturated, meaning every suffix in the
// bucket already contains its dollar within the leading radix prefix
// and is therefore fully ordered by the prefix alone. A saturated
// field means the dollar lies beyond the prefix (a long-string
// bucket) and the bucket must be routed through the block sorter.
func IsShortStringBucket(bucketIdx uint32) bool {
	const fieldBits = 4
	const maxDist = uint32(1<<fieldBits) - 1
	return (bucketIdx & maxDist) < maxDist
}
