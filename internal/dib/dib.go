// Copyright (c) OrangeTux
// Licensed under the MIT license

// Package dib writes uncompressed device-independent bitmaps: a 14-byte
// BITMAPFILEHEADER, a 40-byte BITMAPINFOHEADER, an optional palette, and
// the bottom-up pixel array.
package dib

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/OrangeTux/barrel/internal/cbmp"
)

const (
	// Magic starts every standard BMP file.
	Magic = "BM"

	fileHeaderLen = 14
	infoHeaderLen = 40
	biRGB         = 0 // no compression
)

// Encode writes img to w as a standard BMP file. Paletted images get
// their palette padded to the full 16 or 256 entries readers expect.
func Encode(w io.Writer, img *cbmp.Image) error {
	var palette int
	switch img.BitsPerPixel {
	case 4, 8:
		if len(img.Palette) > 0 {
			palette = 256
			if img.BitsPerPixel == 4 {
				palette = 16
			}
		}
	case 24, 32:
	default:
		return fmt.Errorf("cannot write %d bits per pixel", img.BitsPerPixel)
	}

	offset := fileHeaderLen + infoHeaderLen + 4*palette
	hdr := make([]byte, offset)
	le := binary.LittleEndian

	copy(hdr, Magic)
	le.PutUint32(hdr[2:], uint32(offset+len(img.Pix)))
	le.PutUint32(hdr[10:], uint32(offset))

	le.PutUint32(hdr[14:], infoHeaderLen)
	le.PutUint32(hdr[18:], uint32(img.Width))
	le.PutUint32(hdr[22:], uint32(img.Height))
	le.PutUint16(hdr[26:], 1) // color planes
	le.PutUint16(hdr[28:], uint16(img.BitsPerPixel))
	le.PutUint32(hdr[30:], biRGB)
	le.PutUint32(hdr[34:], uint32(len(img.Pix)))
	// pixels-per-metre resolutions stay zero
	le.PutUint32(hdr[46:], uint32(palette))
	le.PutUint32(hdr[50:], uint32(palette))

	for i, quad := range img.Palette {
		if i >= palette {
			break
		}
		copy(hdr[fileHeaderLen+infoHeaderLen+4*i:], quad[:])
	}

	if _, err := w.Write(hdr); err != nil {
		return err
	}
	_, err := w.Write(img.Pix)
	return err
}
