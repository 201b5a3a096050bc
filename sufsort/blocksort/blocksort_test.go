package blocksort

import (
	"sort"
	"strings"
	"testing"

	"github.com/bebop/seqsort/sufsort/dcs"
	"github.com/bebop/seqsort/sufsort/packed"
	"github.com/bebop/seqsort/sufsort/radix"
)

func encode(seq string) []byte {
	out := make([]byte, len(seq))
	for i, c := range seq {
		switch c {
		case 'A':
			out[i] = 0
		case 'C':
			out[i] = 1
		case 'G':
			out[i] = 2
		case 'T':
			out[i] = 3
		}
	}
	return out
}

func mustStream(t *testing.T, seq string) *packed.Stream {
	t.Helper()
	s, err := packed.FromSymbols(encode(seq), 2, 32, packed.LittleEndian)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSortMatchesNaiveOrder(t *testing.T) {
	seq := "ACGTACGTAACCGGTT"
	src := mustStream(t, seq)
	n := len(seq)

	table, err := dcs.Build(src, n)
	if err != nil {
		t.Fatal(err)
	}

	index := make([]int, n+1)
	for i := range index {
		index[i] = i
	}

	sorted, delayed, err := Sort(src, 2, index, 4, 1<<20, table)
	if err != nil {
		t.Fatal(err)
	}
	if len(delayed) != 0 {
		t.Errorf("unexpected delayed ranges with a DCS table supplied: %v", delayed)
	}

	suffixes := make([]string, n+1)
	for i := 0; i <= n; i++ {
		if i == n {
			suffixes[i] = ""
		} else {
			suffixes[i] = seq[i:]
		}
	}
	want := make([]int, n+1)
	for i := range want {
		want[i] = i
	}
	sort.Slice(want, func(a, b int) bool { return suffixes[want[a]] < suffixes[want[b]] })

	for i := range want {
		if sorted[i] != want[i] {
			t.Errorf("position %d: got suffix index %d (%q), want %d (%q)", i, sorted[i], suffixes[sorted[i]], want[i], suffixes[want[i]])
		}
	}
}

func TestSortWithoutDCSDelaysTies(t *testing.T) {
	// One radix word covers radix.SymbolsPerWord(2) = 18 symbols, so the
	// all-A string must be longer than that for suffixes to stay tied
	// after a single word.
	seq := strings.Repeat("A", 40)
	src := mustStream(t, seq)
	index := make([]int, len(seq)+1)
	for i := range index {
		index[i] = i
	}
	_, delayed, err := Sort(src, 2, index, 1, 1<<20, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(delayed) == 0 {
		t.Error("expected a delayed tie range for all-A suffixes at shallow depth without a DCS table")
	}
}

func TestSortBufferOverflow(t *testing.T) {
	src := mustStream(t, "ACGT")
	index := []int{0, 1, 2, 3, 4}
	_, _, err := Sort(src, 2, index, 1, 2, nil)
	if err == nil {
		t.Error("expected ErrBufferOverflow when index count exceeds capacity")
	}
}

func TestSortSetAcrossStrings(t *testing.T) {
	streams := []*packed.Stream{mustStream(t, "AC"), mustStream(t, "GT")}
	index := []radix.SuffixID{
		{String: 0, Pos: 0}, {String: 0, Pos: 1},
		{String: 1, Pos: 0}, {String: 1, Pos: 1},
	}
	sorted, _, err := SortSet(streams, 2, index, 2, 1<<20)
	if err != nil {
		t.Fatal(err)
	}
	if len(sorted) != len(index) {
		t.Fatalf("got %d suffixes, want %d", len(sorted), len(index))
	}
	// "AC"[0]="AC", "AC"[1]="C", "GT"[0]="GT", "GT"[1]="T" -> lexical: AC < C < GT < T
	wantFirst := radix.SuffixID{String: 0, Pos: 0}
	if sorted[0] != wantFirst {
		t.Errorf("sorted[0] = %+v, want %+v", sorted[0], wantFirst)
	}
}
