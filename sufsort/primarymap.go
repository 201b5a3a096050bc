package sufsort

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
)

// PrimaryRecord is one entry of a string-set primary map: the BWT
// position at which string StringID's dollar token lies.
type PrimaryRecord struct {
	Position uint64
	StringID uint32
}

// PrimaryMap is a sorted sequence of PrimaryRecord, one per input
// string, strictly increasing in Position.
type PrimaryMap []PrimaryRecord

// Sort orders the map by Position ascending, satisfying the invariant
// that the primary map is strictly increasing in position.
func (m PrimaryMap) Sort() {
	sort.Slice(m, func(i, j int) bool { return m[i].Position < m[j].Position })
}

// WriteASCII writes the .pri ASCII form: a "#PRI" header line, then
// one "<position> <string_id>" line per record, sorted by position.
func (m PrimaryMap) WriteASCII(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, "#PRI"); err != nil {
		return fmt.Errorf("%w: %v", ErrSink, err)
	}
	for _, rec := range m {
		if _, err := fmt.Fprintf(bw, "%d %d\n", rec.Position, rec.StringID); err != nil {
			return fmt.Errorf("%w: %v", ErrSink, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrSink, err)
	}
	return nil
}

// priMagic is the 4-byte header of the binary .pri form.
var priMagic = [4]byte{'P', 'R', 'I', 'B'}

// WriteBinary writes the .pri binary form: a 4-byte "PRIB" header
// followed by packed {u64 position; u32 string_id} records in
// little-endian order, sorted by position.
func (m PrimaryMap) WriteBinary(w io.Writer) error {
	if _, err := w.Write(priMagic[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrSink, err)
	}
	for _, rec := range m {
		if err := binary.Write(w, binary.LittleEndian, rec.Position); err != nil {
			return fmt.Errorf("%w: %v", ErrSink, err)
		}
		if err := binary.Write(w, binary.LittleEndian, rec.StringID); err != nil {
			return fmt.Errorf("%w: %v", ErrSink, err)
		}
	}
	return nil
}

// ReadBinary decodes the .pri binary form written by WriteBinary.
func ReadBinary(r io.Reader) (PrimaryMap, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputFormat, err)
	}
	if magic != priMagic {
		return nil, fmt.Errorf("%w: bad .pri header %q", ErrInputFormat, magic)
	}
	var out PrimaryMap
	for {
		var rec PrimaryRecord
		err := binary.Read(r, binary.LittleEndian, &rec.Position)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInputFormat, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &rec.StringID); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInputFormat, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
