package bwt

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/bebop/seqsort/sufsort"
	"github.com/bebop/seqsort/sufsort/sink"
)

func buildViaSufsort(t *testing.T, text string) (bwtSymbols []byte, result sufsort.Result) {
	t.Helper()
	seen := map[byte]bool{}
	for i := 0; i < len(text); i++ {
		seen[text[i]] = true
	}
	var alphabet []byte
	for c := range seen {
		alphabet = append(alphabet, c)
	}
	sort.Slice(alphabet, func(i, j int) bool { return alphabet[i] < alphabet[j] })
	codeOf := make(map[byte]byte, len(alphabet))
	for i, c := range alphabet {
		codeOf[c] = byte(i)
	}
	codes := make([]byte, len(text))
	for i := 0; i < len(text); i++ {
		codes[i] = codeOf[text[i]]
	}

	var buf bytes.Buffer
	out := sink.NewASCII(&buf, alphabet, '$')
	res, err := sufsort.BWTSingle(context.Background(), codes, 2, out, sufsort.BWTParams{})
	if err != nil {
		t.Fatalf("BWTSingle(%q): %v", text, err)
	}
	return []byte(buf.String()), res
}

// naiveCount and naiveLocate are brute-force oracles independent of
// any BWT machinery: plain substring search over the original text.
func naiveCount(text, pattern string) int {
	if pattern == "" {
		return 0
	}
	count := 0
	for i := 0; i+len(pattern) <= len(text); i++ {
		if text[i:i+len(pattern)] == pattern {
			count++
		}
	}
	return count
}

func naiveLocate(text, pattern string) []int {
	if pattern == "" {
		return nil
	}
	var offsets []int
	for i := 0; i+len(pattern) <= len(text); i++ {
		if text[i:i+len(pattern)] == pattern {
			offsets = append(offsets, i)
		}
	}
	return offsets
}

func TestFromSuffixSortAgainstNaiveOracle(t *testing.T) {
	texts := []string{"banana", "mississippi", "aaaaaaaa", "AACCTGCCGTCGGGGCTGCCCGTCGCGGGACGTCGAAACGTGGGGCGAAACGTG"}
	for _, text := range texts {
		for _, sampleRate := range []int{1, 4, 16} {
			bwtSymbols, result := buildViaSufsort(t, text)
			idx, err := FromSuffixSort(bwtSymbols, result, sampleRate)
			if err != nil {
				t.Fatalf("FromSuffixSort(%q, rate=%d): %v", text, sampleRate, err)
			}

			for _, pattern := range []string{"a", "an", "na", "ss", "i", "CG", string(text[0])} {
				wantCount := naiveCount(text, pattern)
				gotCount, err := idx.Count(pattern)
				if err != nil {
					t.Errorf("%q.Count(%q): %v", text, pattern, err)
					continue
				}
				if gotCount != wantCount {
					t.Errorf("%q.Count(%q) = %d, want %d (rate=%d)", text, pattern, gotCount, wantCount, sampleRate)
				}

				wantOffsets := naiveLocate(text, pattern)
				gotOffsets, err := idx.Locate(pattern)
				if err != nil {
					t.Errorf("%q.Locate(%q): %v", text, pattern, err)
					continue
				}
				sort.Ints(gotOffsets)
				if len(gotOffsets) != len(wantOffsets) {
					t.Errorf("%q.Locate(%q) = %v, want %v (rate=%d)", text, pattern, gotOffsets, wantOffsets, sampleRate)
					continue
				}
				for i := range wantOffsets {
					if wantOffsets[i] != gotOffsets[i] {
						t.Errorf("%q.Locate(%q) = %v, want %v (rate=%d)", text, pattern, gotOffsets, wantOffsets, sampleRate)
						break
					}
				}
			}

			gotExtract, err := idx.Extract(0, len(text))
			if err != nil {
				t.Fatalf("%q.Extract(0,%d): %v", text, len(text), err)
			}
			if gotExtract != text {
				t.Errorf("%q.Extract(0,%d) = %q, want original text (rate=%d)", text, len(text), gotExtract, sampleRate)
			}

			if len(text) >= 4 {
				mid := len(text) / 2
				gotSub, err := idx.Extract(1, mid)
				if err != nil {
					t.Fatalf("%q.Extract(1,%d): %v", text, mid, err)
				}
				if gotSub != text[1:mid] {
					t.Errorf("%q.Extract(1,%d) = %q, want %q (rate=%d)", text, mid, gotSub, text[1:mid], sampleRate)
				}
			}
		}
	}
}

func TestFromSuffixSortRejectsBadPrimary(t *testing.T) {
	_, err := FromSuffixSort([]byte("abc"), sufsort.Result{Primary: 99}, 0)
	if err == nil {
		t.Error("expected an error for an out-of-range primary")
	}
	if !strings.Contains(err.Error(), "primary") {
		t.Errorf("error = %v, want it to mention the primary", err)
	}
}
