package bwt_test

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/bebop/seqsort/bwt"
	"github.com/bebop/seqsort/sufsort"
	"github.com/bebop/seqsort/sufsort/sink"
	"golang.org/x/exp/slices"
)

// buildIndex drives the sufsort engine's single-string orchestrator
// over a DNA sequence through an ASCII sink, then hands its BWT output
// and Result to bwt.FromSuffixSort to produce an FMIndex.
func buildIndex(sequence string) *bwt.FMIndex {
	alphabet := []byte("ACGT")
	codeOf := map[byte]byte{'A': 0, 'C': 1, 'G': 2, 'T': 3}
	codes := make([]byte, len(sequence))
	for i := 0; i < len(sequence); i++ {
		codes[i] = codeOf[sequence[i]]
	}

	var buf bytes.Buffer
	out := sink.NewASCII(&buf, alphabet, '$')
	result, err := sufsort.BWTSingle(context.Background(), codes, 2, out, sufsort.BWTParams{})
	if err != nil {
		log.Fatal(err)
	}

	idx, err := bwt.FromSuffixSort([]byte(buf.String()), result, 0)
	if err != nil {
		log.Fatal(err)
	}
	return idx
}

// This example shows how an FMIndex can be used for exact pattern
// matching by returning the offsets at which the pattern exists. This
// is useful for alignment when you need to reduce the memory
// footprint of a reference sequence without losing any data, since
// the BWT is a lossless transform.
func ExampleFMIndex_Locate() {
	idx := buildIndex("AACCTGCCGTCGGGGCTGCCCGTCGCGGGACGTCGAAACGTGGGGCGAAACGTG")

	offsets, err := idx.Locate("GCC")
	if err != nil {
		log.Fatal(err)
	}
	slices.Sort(offsets)
	fmt.Println(offsets)
	// Output: [5 17]
}

func ExampleFMIndex_Count() {
	idx := buildIndex("AACCTGCCGTCGGGGCTGCCCGTCGCGGGACGTCGAAACGTGGGGCGAAACGTG")

	count, err := idx.Count("CG")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(count)
	// Output: 10
}

func ExampleFMIndex_Extract() {
	idx := buildIndex("AACCTGCCGTCGGGGCTGCCCGTCGCGGGACGTCGAAACGTGGGGCGAAACGTG")

	extracted, err := idx.Extract(48, 54)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(extracted)
	// Output: AACGTG
}
