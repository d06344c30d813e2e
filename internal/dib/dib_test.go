// Copyright (c) OrangeTux
// Licensed under the MIT license

package dib

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/OrangeTux/barrel/internal/cbmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeTrueColor(t *testing.T) {
	img := &cbmp.Image{
		Header: cbmp.Header{BitsPerPixel: 24, Width: 2, Height: 2},
		Stride: 8,
		Pix: []byte{
			0xBB, 0xBB, 0xBB, 0xBB, 0xBB, 0xBB, 0, 0,
			0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0, 0,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img))
	out := buf.Bytes()

	require.Len(t, out, 14+40+16)
	le := binary.LittleEndian
	assert.Equal(t, "BM", string(out[:2]))
	assert.Equal(t, uint32(70), le.Uint32(out[2:]), "file size")
	assert.Equal(t, uint32(54), le.Uint32(out[10:]), "pixel array offset")
	assert.Equal(t, uint32(40), le.Uint32(out[14:]), "info header size")
	assert.Equal(t, uint32(2), le.Uint32(out[18:]), "width")
	assert.Equal(t, uint32(2), le.Uint32(out[22:]), "height")
	assert.Equal(t, uint16(1), le.Uint16(out[26:]), "planes")
	assert.Equal(t, uint16(24), le.Uint16(out[28:]), "bit count")
	assert.Equal(t, uint32(0), le.Uint32(out[30:]), "compression")
	assert.Equal(t, uint32(16), le.Uint32(out[34:]), "image size")
	assert.Equal(t, img.Pix, out[54:])
}

func TestEncodePaletted(t *testing.T) {
	img := &cbmp.Image{
		Header: cbmp.Header{
			BitsPerPixel: 4,
			Width:        2,
			Height:       1,
			Palette:      [][4]byte{{1, 2, 3, 0}, {4, 5, 6, 0}},
		},
		Stride: 4,
		Pix:    []byte{0x01, 0, 0, 0},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img))
	out := buf.Bytes()

	// A 4 bpp palette is padded to 16 entries.
	require.Len(t, out, 14+40+4*16+4)
	le := binary.LittleEndian
	assert.Equal(t, uint32(14+40+64), le.Uint32(out[10:]), "pixel array offset")
	assert.Equal(t, uint32(16), le.Uint32(out[46:]), "colors used")
	assert.Equal(t, []byte{1, 2, 3, 0, 4, 5, 6, 0}, out[54:62])
	assert.Equal(t, bytes.Repeat([]byte{0}, 56), out[62:118], "palette padding")
	assert.Equal(t, img.Pix, out[118:])
}

func TestEncodeNoPaletteFor8bpp(t *testing.T) {
	// An 8 bpp image without a palette writes none.
	img := &cbmp.Image{
		Header: cbmp.Header{BitsPerPixel: 8, Width: 1, Height: 1},
		Stride: 4,
		Pix:    []byte{7, 0, 0, 0},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img))
	assert.Len(t, buf.Bytes(), 14+40+4)
}

func TestEncodeRejectsOddDepth(t *testing.T) {
	img := &cbmp.Image{Header: cbmp.Header{BitsPerPixel: 16}}
	require.Error(t, Encode(&bytes.Buffer{}, img))
}
