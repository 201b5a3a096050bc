package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bebop/seqsort/bio/fasta"
	"github.com/bebop/seqsort/sufsort"
)

func TestApplicationDefinesBwtCommand(t *testing.T) {
	app := application()
	assert.Equal(t, "seqsort", app.Name)
	assert.Len(t, app.Commands, 1)
	assert.Equal(t, "bwt", app.Commands[0].Name)
}

func TestParseCompression(t *testing.T) {
	cases := []struct {
		spec    string
		gzLevel int
		fourBit bool
	}{
		{"1", 1, false},
		{"9", 9, false},
		{"1R", 1, true},
		{"bogus", 4, false},
	}
	for _, tc := range cases {
		gzLevel, fourBit := parseCompression(tc.spec)
		assert.Equal(t, tc.gzLevel, gzLevel, "spec %q gzLevel", tc.spec)
		assert.Equal(t, tc.fourBit, fourBit, "spec %q fourBit", tc.spec)
	}
}

func TestEncode(t *testing.T) {
	codes, err := fasta.Encode("ACGTacgt")
	assert.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 3, 0, 1, 2, 3}, codes)
}

func TestEncodeRejectsNonACGT(t *testing.T) {
	_, err := fasta.Encode("ACGN")
	assert.True(t, errors.Is(err, sufsort.ErrInputFormat), "want ErrInputFormat, got %v", err)
}
