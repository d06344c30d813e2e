// Copyright (c) OrangeTux
// Licensed under the MIT license

package cbmp

import (
	"fmt"
	"io"
)

// Image is a fully decoded bitmap.
type Image struct {
	Header
	Stride int    // bytes per row in Pix, 32-bit aligned
	Pix    []byte // Stride*Height bytes, rows bottom to top, zero padded
}

// Decode reads a complete compressed bitmap from r.
func Decode(r io.Reader, opts ...Option) (*Image, error) {
	hdr, err := DecodeHeader(r)
	if err != nil {
		return nil, err
	}
	d := &decoder{r: r, hdr: hdr}
	for _, opt := range opts {
		opt(d)
	}
	pix, err := d.readImage()
	if err != nil {
		return nil, err
	}
	return &Image{Header: hdr, Stride: hdr.Stride(), Pix: pix}, nil
}

// readImage pulls chunks until every scanline is filled. The source emits
// rows top to bottom, but BMP stores the bottom row first, so row y lands
// at slot height-1-y. Rows are tightly packed in the stream; the gap up
// to the 32-bit-aligned stride stays zero.
func (d *decoder) readImage() ([]byte, error) {
	packed := d.hdr.rowWidth()
	stride := d.hdr.Stride()
	pix := make([]byte, stride*d.hdr.Height)

	for y := 0; y < d.hdr.Height; y++ {
		row := pix[(d.hdr.Height-1-y)*stride:][:packed]
		if err := d.fillRow(row); err != nil {
			return nil, fmt.Errorf("row %d: %w", y, err)
		}
	}
	return pix, nil
}

// fillRow copies one packed scanline out of the scratch buffer, pulling
// fresh chunks as the buffer runs dry. Chunk boundaries are unrelated to
// row boundaries: one chunk may span several rows and one row may drain
// several chunks.
func (d *decoder) fillRow(row []byte) error {
	for len(row) > 0 {
		if d.scratch.pos >= d.scratch.size {
			if err := d.nextChunk(); err != nil {
				return err
			}
		}
		n := copy(row, d.scratch.buf[d.scratch.pos:d.scratch.size])
		d.scratch.pos += n
		row = row[n:]
	}
	return nil
}
