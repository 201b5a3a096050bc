package radix

import (
	"testing"

	"github.com/bebop/seqsort/sufsort/packed"
)

func mustStream(t *testing.T, symbols []byte, symbolBits int) *packed.Stream {
	t.Helper()
	s, err := packed.FromSymbols(symbols, symbolBits, 32, packed.LittleEndian)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestKeyOrderingMatchesLexicographicWithDollarLowest(t *testing.T) {
	// "banana" encoded 2-bit: a=0 b=1 n=2 -> banana = b a n a n a
	symbols := []byte{1, 0, 2, 0, 2, 0}
	s := mustStream(t, symbols, 2)

	// Suffix at 5 ("a$") should key below suffix at 1 ("anana$") because
	// the dollar terminates earlier with an otherwise-equal prefix...
	// but here prefixes differ at the first symbol so just check basic
	// lexicographic order holds for differing first symbols.
	kAt0 := Key(s, 0, 0, 2) // "banana$"
	kAt1 := Key(s, 1, 0, 2) // "anana$"
	if kAt1 >= kAt0 {
		t.Errorf("suffix starting with 'a' should key below suffix starting with 'b': got %d >= %d", kAt1, kAt0)
	}
}

func TestKeyDollarSortsBelowRealSymbols(t *testing.T) {
	symbols := []byte{0, 1} // "ac" over a 2-bit alphabet where 0 < 1
	s := mustStream(t, symbols, 2)

	// suffix at 2 is the empty suffix: entirely dollar.
	kEmpty := Key(s, 2, 0, 2)
	kReal := Key(s, 0, 0, 2)
	if kEmpty >= kReal {
		t.Errorf("empty (all-dollar) suffix should key lowest: got %d >= %d", kEmpty, kReal)
	}
}

func TestBucketIndexShortVsLongString(t *testing.T) {
	// A short string: dollar appears within the bucketing prefix.
	short := mustStream(t, []byte{0, 1}, 2)
	idx := BucketIndex(short, 0, 16, 2)
	if !IsShortStringBucket(idx) {
		t.Errorf("expected short-string bucket for a 2-symbol string under a 16-bit bucket width")
	}

	// A long string: enough real symbols to fill the bucket prefix
	// with no dollar observed in range.
	long := make([]byte, 64)
	longStream := mustStream(t, long, 2)
	idx2 := BucketIndex(longStream, 0, 16, 2)
	if IsShortStringBucket(idx2) {
		t.Errorf("expected long-string bucket when the dollar lies beyond the radix prefix")
	}
}

func TestBucketIndexDeterministic(t *testing.T) {
	s := mustStream(t, []byte{0, 1, 2, 3, 0, 1, 2, 3}, 2)
	a := BucketIndex(s, 0, 16, 2)
	b := BucketIndex(s, 0, 16, 2)
	if a != b {
		t.Errorf("BucketIndex is not deterministic: %d != %d", a, b)
	}
}
