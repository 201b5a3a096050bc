/*
Package fasta reads FASTA-formatted DNA records for the suffix-sort
pipeline.

Fasta is a flat text file format developed in 1985 to store nucleotide
and amino acid sequences. It is extremely simple and well-supported
across many languages, though that simplicity means annotation of
genetic objects is not supported.

This package is a read-only front end for sufsort: it exists to turn a
FASTA stream into validated base strings ready for Encode, rather than
to round-trip arbitrary records the way a general-purpose
bioinformatics library would. There is deliberately no writer here:
cmd/seqsort never emits FASTA, only the packed BWT sinks under
sufsort/sink.
*/
package fasta

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/bebop/seqsort/sufsort"
)

/******************************************************************************
Apr 25, 2021

Fasta Parser begins here

Many thanks to Jordan Campbell (https://github.com/0x106) for building the first
parser for Poly and thanks to Tim Stiles (https://github.com/TimothyStiles)
for helping complete that PR. This work expands on the previous work by allowing
for concurrent parsing and giving Poly a specific parser subpackage, as well as
a few bug fixes.

Fasta is a very simple file format for working with DNA, RNA, or protein
sequences. It was first released in 1985 and is still widely used in
bioinformatics.

https://en.wikipedia.org/wiki/FASTA_format

Hack the Planet,

Keoni
******************************************************************************/

// Read is a single FASTA record: an identifier and its sequence, still
// in raw base-letter form. Call Encode on Sequence to get the 2-bit
// codes sufsort's orchestrators expect.
type Read struct {
	Identifier string
	Sequence   string
}

// Parser is a flexible parser that provides ample control over
// reading FASTA-formatted sequences. It is initialized with NewParser.
type Parser struct {
	scanner    bufio.Scanner
	buff       bytes.Buffer
	identifier string
	start      bool
	line       uint
	more       bool
}

// NewParser returns a Parser that uses r as the source from which to
// parse FASTA-formatted sequences.
func NewParser(r io.Reader, maxLineSize int) *Parser {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, maxLineSize)
	scanner.Buffer(buf, maxLineSize)
	return &Parser{
		scanner: *scanner,
		start:   true,
		more:    true,
	}
}

// Next reads the next FASTA record in the underlying reader. Next only
// returns an error if it:
//   - Attempts to read and fails to find a valid FASTA sequence.
//   - Returns the reader's EOF if called after the reader has been exhausted.
//
// The last record is returned with a nil error whether or not the input
// ends in a newline; the call after it returns io.EOF.
func (p *Parser) Next() (*Read, error) {
	if !p.more {
		return &Read{}, io.EOF
	}
	for p.scanner.Scan() {
		line := p.scanner.Bytes()
		if p.scanner.Err() != nil {
			break
		}
		p.line++
		switch {
		// if there's nothing on this line skip this iteration of the loop
		case len(line) == 0:
			continue
		// if it's a comment skip this line
		case line[0] == ';':
			continue
		// start of file with no identifier, error
		case line[0] != '>' && p.start:
			err := fmt.Errorf("%w: missing sequence identifier for sequence starting at line %d", sufsort.ErrInputFormat, p.line)
			read, _ := p.newRead()
			return &read, err
		// continuation of the current sequence's bases
		case line[0] != '>':
			p.buff.Write(line)
		// start of a new record after the first
		case line[0] == '>' && !p.start:
			read, err := p.newRead()
			p.identifier = string(line[1:])
			return &read, err
		// start of the first record in the file
		case line[0] == '>' && p.start:
			p.identifier = string(line[1:])
			p.start = false
		}
	}
	p.more = false
	read, err := p.newRead()
	if err != nil {
		return &read, err
	}
	return &read, nil
}

func (p *Parser) newRead() (Read, error) {
	sequence := p.buff.String()
	if sequence == "" {
		return Read{}, fmt.Errorf("%w: %q has no sequence", sufsort.ErrInputFormat, p.identifier)
	}
	read := Read{
		Identifier: p.identifier,
		Sequence:   sequence,
	}
	p.buff.Reset()
	return read, nil
}

// baseCode maps each DNA base letter, case-insensitively, to its 2-bit
// code. This is the alphabet sufsort's single- and string-set
// orchestrators are driven with throughout cmd/seqsort.
var baseCode = map[byte]byte{
	'A': 0, 'a': 0,
	'C': 1, 'c': 1,
	'G': 2, 'g': 2,
	'T': 3, 't': 3,
}

// Encode maps sequence's bases to their 2-bit codes. Any byte outside
// ACGT (case-insensitive) is reported as sufsort.ErrInputFormat before
// the caller ever reaches the sorter.
func Encode(sequence string) ([]byte, error) {
	out := make([]byte, len(sequence))
	for i := 0; i < len(sequence); i++ {
		code, ok := baseCode[sequence[i]]
		if !ok {
			return nil, fmt.Errorf("%w: byte %q in read", sufsort.ErrInputFormat, sequence[i])
		}
		out[i] = code
	}
	return out, nil
}
