/*
Package random provides functions to generate random DNA, RNA, and protein sequences.
*/
package random

import (
	"errors"
	"math/rand"
)

var errProteinTooShort = errors.New("random: length must be greater than two to fit start and stop codons")

// ProteinSequence returns a random protein sequence string of a given length and seed.
// All returned sequences start M (Methionine) and end with * (stop codon).
func ProteinSequence(length int, seed int64) (string, error) {
	if length <= 2 {
		return "", errProteinTooShort
	}

	// https://en.wikipedia.org/wiki/Amino_acid#Table_of_standard_amino_acid_abbreviations_and_properties
	var aminoAcidsAlphabet = []rune("ACDEFGHIKLMNPQRSTVWY")
	r := rand.New(rand.NewSource(seed))

	randomSequence := make([]rune, length)
	for peptide := range randomSequence {
		switch peptide {
		case 0:
			// M is the standard abbreviation for Methionine, the start codon.
			randomSequence[peptide] = 'M'
		case length - 1:
			// * is the standard abbreviation for the stop codon.
			randomSequence[peptide] = '*'
		default:
			randomSequence[peptide] = aminoAcidsAlphabet[r.Intn(len(aminoAcidsAlphabet))]
		}
	}

	return string(randomSequence), nil
}

func RandomRune(r *rand.Rand, runes []rune) rune {
	return runes[r.Intn(len(runes))]
}

// DNASequence returns a random DNA sequence string of a given length and seed.
func DNASequence(length int, seed int64) (string, error) {
	return randomNucleotideSequence(length, seed, []rune("ACTG")), nil
}

// RNASequence returns a random RNA sequence string of a given length and seed.
func RNASequence(length int, seed int64) (string, error) {
	return randomNucleotideSequence(length, seed, []rune("ACUG")), nil
}

func randomNucleotideSequence(length int, seed int64, alphabet []rune) string {
	r := rand.New(rand.NewSource(seed))
	randomSequence := make([]rune, length)
	for basepair := range randomSequence {
		randomSequence[basepair] = alphabet[r.Intn(len(alphabet))]
	}
	return string(randomSequence)
}

// StringSet returns a set of random DNA sequences, useful for exercising
// the string-set suffix sorter with reproducible fixtures.
func StringSet(count, length int, seed int64) ([]string, error) {
	set := make([]string, count)
	for i := range set {
		s, err := DNASequence(length, seed+int64(i))
		if err != nil {
			return nil, err
		}
		set[i] = s
	}
	return set, nil
}
