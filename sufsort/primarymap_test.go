package sufsort

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPrimaryMapBinaryRoundTrip(t *testing.T) {
	m := PrimaryMap{
		{Position: 0, StringID: 2},
		{Position: 5, StringID: 0},
		{Position: 11, StringID: 1},
	}

	var buf bytes.Buffer
	if err := m.WriteBinary(&buf); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}

	got, err := ReadBinary(&buf)
	if err != nil {
		t.Fatalf("ReadBinary: %v", err)
	}

	if diff := cmp.Diff([]PrimaryRecord(m), []PrimaryRecord(got)); diff != "" {
		t.Errorf("binary round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestPrimaryMapReadBinaryRejectsBadMagic(t *testing.T) {
	_, err := ReadBinary(bytes.NewReader([]byte("nope")))
	if err == nil {
		t.Error("expected an error for a bad .pri magic header")
	}
}

func TestPrimaryMapSort(t *testing.T) {
	m := PrimaryMap{
		{Position: 9, StringID: 1},
		{Position: 2, StringID: 0},
		{Position: 5, StringID: 2},
	}
	m.Sort()

	want := []PrimaryRecord{
		{Position: 2, StringID: 0},
		{Position: 5, StringID: 2},
		{Position: 9, StringID: 1},
	}
	if diff := cmp.Diff(want, []PrimaryRecord(m)); diff != "" {
		t.Errorf("Sort mismatch (-want +got):\n%s", diff)
	}
}
