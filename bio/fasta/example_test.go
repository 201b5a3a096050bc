package fasta_test

import (
	"fmt"
	"io"
	"strings"

	"github.com/bebop/seqsort/bio/fasta"
)

// This example shows how to read a FASTA stream record by record and
// encode each sequence straight into the 2-bit codes sufsort expects.
func Example_basic() {
	const input = ">read1\nACGTACGT\n>read2\nTTGGCCAA\n"
	parser := fasta.NewParser(strings.NewReader(input), 1<<16)
	for {
		read, err := parser.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Println("error:", err)
			break
		}
		codes, err := fasta.Encode(read.Sequence)
		if err != nil {
			fmt.Println("error:", err)
			break
		}
		fmt.Println(read.Identifier, codes)
	}
	// Output:
	// read1 [0 1 2 3 0 1 2 3]
	// read2 [3 3 2 2 1 1 0 0]
}
