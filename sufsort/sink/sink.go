/*
Package sink packs emitted BWT symbols into one of the output stream
formats: direct ASCII, 2-bit packed, 4-bit packed, or a "discard"
variant used for measurement. Every variant accepts calls in output
order (increasing destination slot) and appends to the underlying
stream; packed variants track an internal bit-offset and flush a
final partial word on Flush.
*/
package sink

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"lukechampine.com/blake3"
)

// ErrSink indicates the underlying output stream failed to accept
// bytes.
var ErrSink = errors.New("sink: underlying output stream failed to accept bytes")

// DollarSymbol is the sentinel symbol code Process recognizes as the
// BWT's single DOLLAR token. It is distinct from any real alphabet
// code (at most 8 bits wide).
const DollarSymbol byte = 0xFF

// Sink receives BWT symbols in destination-slot order.
type Sink interface {
	// Process appends symbols, which must already be in output order.
	Process(symbols []byte) error
	// Flush writes any buffered partial state. Process must not be
	// called again after Flush.
	Flush() error
}

// ASCII writes one byte per symbol through an alphabet lookup table
// (symbol code i maps to alphabet[i]) plus a dedicated dollar byte.
type ASCII struct {
	w        io.Writer
	alphabet []byte
	dollar   byte
}

// NewASCII returns a Sink writing one ASCII byte per symbol.
func NewASCII(w io.Writer, alphabet []byte, dollar byte) *ASCII {
	return &ASCII{w: w, alphabet: alphabet, dollar: dollar}
}

func (s *ASCII) Process(symbols []byte) error {
	buf := make([]byte, len(symbols))
	for i, sym := range symbols {
		if sym == DollarSymbol {
			buf[i] = s.dollar
			continue
		}
		if int(sym) >= len(s.alphabet) {
			return fmt.Errorf("%w: symbol code %d outside alphabet of size %d", ErrSink, sym, len(s.alphabet))
		}
		buf[i] = s.alphabet[sym]
	}
	if _, err := s.w.Write(buf); err != nil {
		return fmt.Errorf("%w: %v", ErrSink, err)
	}
	return nil
}

func (s *ASCII) Flush() error { return nil }

// Packed writes symbols into a little-endian stream of 32-bit words,
// symbolBits wide per symbol. When skipDollar is true (the 2-bit .bwt
// format), DOLLAR symbols are not written in-stream at all — the
// caller records the primary position out of band instead. When
// false (the 4-bit .bwt4 format), DOLLAR is written in-stream as the
// value 4.
type Packed struct {
	w          io.Writer
	symbolBits int
	skipDollar bool
	acc        uint64
	accBits    int
}

// NewTwoBit returns the .bwt sink: 2-bit packed, DOLLAR carried only
// via the caller's separately reported primary index.
func NewTwoBit(w io.Writer) *Packed {
	return &Packed{w: w, symbolBits: 2, skipDollar: true}
}

// NewFourBit returns the .bwt4 sink: 4-bit packed, DOLLAR encoded
// in-stream as the value 4.
func NewFourBit(w io.Writer) *Packed {
	return &Packed{w: w, symbolBits: 4, skipDollar: false}
}

func (p *Packed) Process(symbols []byte) error {
	for _, sym := range symbols {
		var code uint64
		if sym == DollarSymbol {
			if p.skipDollar {
				continue
			}
			code = 4
		} else {
			code = uint64(sym)
		}
		p.acc |= code << uint(p.accBits)
		p.accBits += p.symbolBits
		for p.accBits >= 32 {
			word := uint32(p.acc)
			if err := binary.Write(p.w, binary.LittleEndian, word); err != nil {
				return fmt.Errorf("%w: %v", ErrSink, err)
			}
			p.acc >>= 32
			p.accBits -= 32
		}
	}
	return nil
}

// Flush writes the trailing partial word, if any pending bits remain.
func (p *Packed) Flush() error {
	if p.accBits == 0 {
		return nil
	}
	word := uint32(p.acc)
	if err := binary.Write(p.w, binary.LittleEndian, word); err != nil {
		return fmt.Errorf("%w: %v", ErrSink, err)
	}
	p.acc, p.accBits = 0, 0
	return nil
}

// Discard counts emitted symbols without retaining them, for
// measurement. It optionally maintains a running blake3 digest so two
// runs' output can be compared for the determinism property (§8
// invariant 5) without holding either run's full output in memory.
type Discard struct {
	n      int64
	hasher *blake3.Hasher
}

// NewDiscard returns a discard sink. When digest is true, Process
// feeds every symbol through a streaming blake3 hash so Sum can be
// compared across runs.
func NewDiscard(digest bool) *Discard {
	d := &Discard{}
	if digest {
		d.hasher = blake3.New(32, nil)
	}
	return d
}

func (d *Discard) Process(symbols []byte) error {
	d.n += int64(len(symbols))
	if d.hasher != nil {
		d.hasher.Write(symbols)
	}
	return nil
}

func (d *Discard) Flush() error { return nil }

// Count returns the number of symbols passed to Process so far.
func (d *Discard) Count() int64 { return d.n }

// Sum returns the running digest, or nil if the sink was built
// without digest mode.
func (d *Discard) Sum() []byte {
	if d.hasher == nil {
		return nil
	}
	return d.hasher.Sum(nil)
}
