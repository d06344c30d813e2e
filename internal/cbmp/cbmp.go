// Copyright (c) OrangeTux
// Licensed under the MIT license

// Package cbmp decodes the compressed bitmap format found in LEGO Racers
// JAM archives. The format is a small custom container: a 6-byte header
// (pixel depth, palette size, dimensions), an optional BGR palette, and a
// sequence of chunks holding the pixel rows, each chunk either stored raw
// or compressed with a byte-oriented LZ scheme driven by 8-bit command
// masks.
//
// Decode returns the image as an uncompressed, bottom-up, 32-bit-aligned
// pixel array, ready to be wrapped in a standard BMP container.
package cbmp

import (
	"errors"
	"fmt"
	"io"
)

var (
	ErrTruncated        = errors.New("compressed bitmap cut short")
	ErrInvalidOffset    = errors.New("back-reference before start of decoded data")
	ErrBufferOverflow   = errors.New("chunk larger than scratch buffer")
	ErrUnsupportedDepth = errors.New("unsupported bits per pixel")
)

const (
	maskBitsPerPixel = 0x3C
	flagNoPalette    = 0x80
)

// Header is the decoded 6-byte file header plus the palette that follows it.
type Header struct {
	BitsPerPixel int
	Width        int
	Height       int
	Palette      [][4]byte // BGR0 quads; nil when the image carries none
}

// Stride is the 32-bit-aligned byte width of one output scanline.
func (h *Header) Stride() int {
	return (h.Width*h.BitsPerPixel + 31) / 32 * 4
}

// rowWidth is the tightly packed byte width of one scanline.
func (h *Header) rowWidth() int {
	return (h.Width*h.BitsPerPixel + 7) / 8
}

// DecodeHeader reads the file header and palette, leaving the reader
// positioned at the first chunk descriptor.
//
// Byte 0 carries the pixel depth in bits 2-5 and a "no palette" flag in
// bit 7. Byte 1 is the palette entry count minus one; it only means
// something for paletted depths. Bytes 2-5 are width and height, both
// little-endian uint16.
func DecodeHeader(r io.Reader) (Header, error) {
	var raw [6]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return Header{}, fmt.Errorf("%w: header", ErrTruncated)
	}

	h := Header{
		BitsPerPixel: int(raw[0] & maskBitsPerPixel),
		Width:        int(raw[2]) | int(raw[3])<<8,
		Height:       int(raw[4]) | int(raw[5])<<8,
	}
	switch h.BitsPerPixel {
	case 4, 8, 24, 32:
	default:
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedDepth, h.BitsPerPixel)
	}

	if h.BitsPerPixel <= 8 && raw[0]&flagNoPalette == 0 {
		h.Palette = make([][4]byte, int(raw[1])+1)
		for i := range h.Palette {
			var bgr [3]byte
			if _, err := io.ReadFull(r, bgr[:]); err != nil {
				return Header{}, fmt.Errorf("%w: palette entry %d", ErrTruncated, i)
			}
			h.Palette[i] = [4]byte{bgr[0], bgr[1], bgr[2], 0}
		}
	}
	return h, nil
}
