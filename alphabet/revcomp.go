package alphabet

import "strings"

// complementRuneMap maps a IUPAC nucleotide rune to its complement.
var complementRuneMap = map[rune]rune{
	'A': 'T', 'B': 'V', 'C': 'G', 'D': 'H', 'G': 'C', 'H': 'D', 'K': 'M',
	'M': 'K', 'N': 'N', 'R': 'Y', 'S': 'S', 'T': 'A', 'U': 'A', 'V': 'B',
	'W': 'W', 'Y': 'R',
	'a': 't', 'b': 'v', 'c': 'g', 'd': 'h', 'g': 'c', 'h': 'd', 'k': 'm',
	'm': 'k', 'n': 'n', 'r': 'y', 's': 's', 't': 'a', 'u': 'a', 'v': 'b',
	'w': 'w', 'y': 'r',
}

// ReverseComplement returns the reverse complement of a nucleotide sequence.
// Bases outside the IUPAC nucleotide set are passed through unchanged.
func ReverseComplement(sequence string) string {
	complemented := strings.Map(complementBase, sequence)
	reversed := make([]rune, len(complemented))
	n := len(reversed)
	for _, base := range complemented {
		n--
		reversed[n] = base
	}
	return string(reversed)
}

func complementBase(base rune) rune {
	if c, ok := complementRuneMap[base]; ok {
		return c
	}
	return base
}
