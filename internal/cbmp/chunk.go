// Copyright (c) OrangeTux
// Licensed under the MIT license

package cbmp

import (
	"fmt"
	"io"
)

// The scratch buffer holds one chunk's worth of decompressed bytes at a
// time. Its fixed size doubles as a sanity limit: a chunk declaring more
// than scratchCap output bytes is malformed and rejected outright.
const scratchCap = 1500

type scratch struct {
	buf  [scratchCap]byte
	pos  int // next byte the assembler will consume
	size int // valid decompressed bytes in buf
}

type decoder struct {
	r       io.Reader
	hdr     Header
	scratch scratch
	trace   TraceFunc
}

// A Token describes one decoded unit of a compressed chunk, for tracing.
type Token struct {
	Literal bool
	Value   byte // the copied byte, when Literal
	Offset  int  // backward distance, when a back-reference
	Length  int
}

// TraceFunc receives every decoded token. Purely observational; decoding
// does not depend on it.
type TraceFunc func(Token)

type Option func(*decoder)

// WithTrace registers fn to be called once per decoded token.
func WithTrace(fn TraceFunc) Option {
	return func(d *decoder) { d.trace = fn }
}

// nextChunk reads one chunk descriptor and installs the chunk's bytes in
// the scratch buffer, expanding them first if the chunk is compressed.
// The descriptor is two little-endian uint16s: the decompressed size and
// the compressed size. A chunk that did not shrink during compression
// (decompressed <= compressed) is stored raw.
func (d *decoder) nextChunk() error {
	var desc [4]byte
	if _, err := io.ReadFull(d.r, desc[:]); err != nil {
		return fmt.Errorf("%w: chunk descriptor", ErrTruncated)
	}
	decompressed := int(desc[0]) | int(desc[1])<<8
	compressed := int(desc[2]) | int(desc[3])<<8

	if decompressed > scratchCap {
		return fmt.Errorf("%w: chunk declares %d bytes", ErrBufferOverflow, decompressed)
	}

	if decompressed <= compressed {
		if _, err := io.ReadFull(d.r, d.scratch.buf[:decompressed]); err != nil {
			return fmt.Errorf("%w: raw chunk", ErrTruncated)
		}
	} else {
		payload := make([]byte, compressed)
		if _, err := io.ReadFull(d.r, payload); err != nil {
			return fmt.Errorf("%w: compressed chunk", ErrTruncated)
		}
		if err := d.expand(payload); err != nil {
			return err
		}
	}

	// The assembler always consumes a fresh chunk from its beginning, and
	// size is the declared size whether or not the expansion wrote that
	// many bytes.
	d.scratch.pos = 0
	d.scratch.size = decompressed
	return nil
}

// expand decompresses one chunk payload into the scratch buffer.
//
// The first payload byte is always a literal. After that, each command
// byte supplies 8 bits, MSB first: a 0 bit copies the next payload byte
// verbatim, a 1 bit introduces a back-reference token of two or three
// bytes. The token's first byte splits into nibbles: the high nibble and
// the following byte form a 12-bit backward distance, the low nibble a
// repeat count of 18-n, or third-byte+18 when the nibble is zero. A
// distance of zero ends the chunk.
func (d *decoder) expand(payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("%w: empty chunk payload", ErrTruncated)
	}
	out := d.scratch.buf[:]
	out[0] = payload[0]
	w, r := 1, 1

	for r < len(payload) {
		command := payload[r]
		r++
		for bit := 0; bit < 8; bit++ {
			if r >= len(payload) {
				// Payload may end mid-command-byte; spare bits map to nothing.
				return nil
			}
			if command&0x80 == 0 {
				if w >= len(out) {
					return fmt.Errorf("%w: literal past end of scratch", ErrBufferOverflow)
				}
				out[w] = payload[r]
				if d.trace != nil {
					d.trace(Token{Literal: true, Value: payload[r], Length: 1})
				}
				w++
				r++
				command <<= 1
				continue
			}

			if r+2 > len(payload) {
				return fmt.Errorf("%w: back-reference token", ErrTruncated)
			}
			b1, b2 := payload[r], payload[r+1]
			r += 2
			offset := int(b1&0xF0)<<4 | int(b2)
			if offset == 0 {
				// End-of-chunk sentinel.
				return nil
			}
			if offset > w {
				return fmt.Errorf("%w: distance %d with %d bytes decoded", ErrInvalidOffset, offset, w)
			}

			repeat := 18 - int(b1&0x0F)
			if b1&0x0F == 0 {
				if r >= len(payload) {
					return fmt.Errorf("%w: extended repeat count", ErrTruncated)
				}
				repeat = int(payload[r]) + 18
				r++
			}
			if w+repeat > len(out) {
				return fmt.Errorf("%w: %d-byte copy past end of scratch", ErrBufferOverflow, repeat)
			}

			if d.trace != nil {
				d.trace(Token{Offset: offset, Length: repeat})
			}
			// Byte by byte on purpose: when the distance is shorter than the
			// count the copy overlaps its own output, repeating the pattern.
			for n := 0; n < repeat; n++ {
				out[w] = out[w-offset]
				w++
			}
			command <<= 1
		}
	}
	return nil
}
