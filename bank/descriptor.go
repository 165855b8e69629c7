package bank

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Compression selects the codec applied to each sprite payload.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionBytewise
	CompressionWordwise
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionBytewise:
		return "bytewise"
	case CompressionWordwise:
		return "wordwise"
	}
	return fmt.Sprintf("compression(%d)", int(c))
}

// PixelFormat describes how decompressed bytes map to pixels: bit-packed
// palette indices at a fixed width, or direct 16-bit RGB565 samples.
type PixelFormat int

const (
	// PixelDirect16 stores one little-endian RGB565 sample per pixel.
	PixelDirect16 PixelFormat = 16
)

// Indexed reports whether the format looks pixels up in a palette.
func (p PixelFormat) Indexed() bool {
	return p != PixelDirect16
}

// Bits returns the width of one pixel in the packed bit stream.
func (p PixelFormat) Bits() int {
	return int(p)
}

// Colors returns the palette size implied by an indexed format.
func (p PixelFormat) Colors() int {
	return 1 << uint(p)
}

func (p PixelFormat) String() string {
	if p == PixelDirect16 {
		return "direct16"
	}
	return fmt.Sprintf("indexed%d", int(p))
}

const descriptorSize = 24

// Flag byte layout. The compression bits are mutually exclusive in
// practice; bytewise wins if both are set.
const (
	flagObfuscated   = 1 << 0
	flagWordwise     = 1 << 1
	flagBytewise     = 1 << 2
	flagTransparency = 1 << 5
)

// Descriptor is the fixed header at the start of every container entry.
type Descriptor struct {
	DataLength       uint32 // entry length, descriptor included
	Transparency     bool
	Obfuscated       bool
	Compression      Compression
	PixelFormat      PixelFormat
	NumSprites       int
	SpriteWidth      int
	SpriteHeight     int
	OffsetX          int8 // draw offsets, carried through but not applied
	OffsetY          int8
	GridWidth        int // subimage size in sprites
	GridHeight       int
	NumPalettes      int
	TransparentIndex uint16
	PaletteOffset    uint16 // relative to the entry start
	PixelOffset      uint16
}

// rawDescriptor mirrors the wire layout byte for byte.
type rawDescriptor struct {
	DataLength       uint32
	Flags            uint8
	PixelType        uint8
	NumSprites       uint16
	SpriteWidth      uint8
	SpriteHeight     uint8
	OffsetX          int8
	OffsetY          int8
	GridWidth        uint8
	GridHeight       uint8
	_                uint8 // reserved, observed as 17
	NumPalettes      uint8
	TransparentIndex uint16
	PaletteOffset    uint16
	PixelOffset      uint16
	_                uint16 // padding, observed as 0
}

// ParseDescriptor decodes the fixed header of entry at b, which must hold
// at least descriptorSize bytes. entry and base locate the header for error
// reporting only.
func ParseDescriptor(b []byte, entry int, base int64) (*Descriptor, error) {
	var raw rawDescriptor
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &raw); err != nil {
		return nil, &TruncatedError{Entry: entry, Offset: base, Need: descriptorSize, Have: len(b)}
	}

	compression := CompressionNone
	switch {
	case raw.Flags&flagBytewise != 0:
		compression = CompressionBytewise
	case raw.Flags&flagWordwise != 0:
		compression = CompressionWordwise
	}

	format := PixelDirect16
	if raw.PixelType < 16 {
		format = PixelFormat(raw.PixelType)
	}

	return &Descriptor{
		DataLength:       raw.DataLength,
		Transparency:     raw.Flags&flagTransparency != 0,
		Obfuscated:       raw.Flags&flagObfuscated != 0,
		Compression:      compression,
		PixelFormat:      format,
		NumSprites:       int(raw.NumSprites),
		SpriteWidth:      int(raw.SpriteWidth),
		SpriteHeight:     int(raw.SpriteHeight),
		OffsetX:          raw.OffsetX,
		OffsetY:          raw.OffsetY,
		GridWidth:        int(raw.GridWidth),
		GridHeight:       int(raw.GridHeight),
		NumPalettes:      int(raw.NumPalettes),
		TransparentIndex: raw.TransparentIndex,
		PaletteOffset:    raw.PaletteOffset,
		PixelOffset:      raw.PixelOffset,
	}, nil
}

// GridCells returns the number of sprites per subimage.
func (d *Descriptor) GridCells() int {
	return d.GridWidth * d.GridHeight
}

// NumSubimages returns the number of complete subimages the sprite count
// fills, and whether it fills them exactly. A false second return usually
// means the header was misread, but decoding the complete subimages is
// still possible.
func (d *Descriptor) NumSubimages() (int, bool) {
	cells := d.GridCells()
	if cells == 0 {
		return 0, false
	}
	return d.NumSprites / cells, d.NumSprites%cells == 0
}

// SpriteStride returns the byte span of one sprite when the payload is
// stored uncompressed at a fixed stride.
func (d *Descriptor) SpriteStride() int {
	px := d.SpriteWidth * d.SpriteHeight
	if d.PixelFormat.Indexed() {
		return (px*d.PixelFormat.Bits() + 7) / 8
	}
	return px * 2
}
