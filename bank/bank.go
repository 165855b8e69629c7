/*
Package bank implements a decoder for the sprite bank container format.

A bank is a single blob holding any number of independent images. The blob
opens with a table of little-endian 32-bit absolute offsets, one per image;
the first value is both the offset of the first image and the byte length of
the table itself, so the table describes its own extent. Each image starts
with a fixed 24-byte descriptor followed by a palette region (RGB565 colors,
indexed formats only) and a pixel data region.

Pixel data may be XOR-obfuscated with a fixed key and compressed with one of
two run-length codecs. Indexed pixels are bit-packed least significant bit
first at 1, 2, 4 or 8 bits per pixel; the alternative direct format stores
one RGB565 sample per pixel. Sprites compose into subimages on a fixed grid,
and subimages compose into a spritesheet with one row band per palette.
*/
package bank

import (
	"encoding/binary"
	"io"
	"io/ioutil"
)

// Bank is a parsed container. It holds the raw input plus the decoded
// offset table; individual entries are decoded on demand with Image. The
// underlying buffer is never written to, so a Bank may be shared between
// goroutines decoding different entries.
type Bank struct {
	data    []byte
	offsets []uint32
}

// Decode reads a complete sprite bank from r and parses its offset table.
func Decode(r io.Reader) (*Bank, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(data)
}

// DecodeBytes parses the offset table of the sprite bank held in data. The
// slice is retained; the caller must not modify it afterwards.
func DecodeBytes(data []byte) (*Bank, error) {
	if len(data) < 4 {
		return nil, &TruncatedError{Entry: -1, Offset: 0, Need: 4, Have: len(data)}
	}

	tableLen := binary.LittleEndian.Uint32(data)
	if tableLen < 4 || tableLen%4 != 0 {
		return nil, &RangeError{Entry: -1, Offset: 0, What: "offset table length"}
	}
	if uint64(tableLen) > uint64(len(data)) {
		return nil, &TruncatedError{Entry: -1, Offset: 0, Need: int(tableLen), Have: len(data)}
	}

	offsets := []uint32{tableLen}
	for pos := uint32(4); pos < tableLen; pos += 4 {
		offsets = append(offsets, binary.LittleEndian.Uint32(data[pos:]))
	}

	return &Bank{
		data:    data,
		offsets: offsets,
	}, nil
}

// NumImages returns the number of entries in the container.
func (b *Bank) NumImages() int {
	return len(b.offsets)
}

// Data returns the raw input buffer. Callers must treat it as read-only.
func (b *Bank) Data() []byte {
	return b.data
}

// EntryData returns the raw byte range of entry i, from its descriptor to
// the end of its declared payload.
func (b *Bank) EntryData(i int) ([]byte, error) {
	base, err := b.entryOffset(i)
	if err != nil {
		return nil, err
	}
	length := binary.LittleEndian.Uint32(b.data[base:])
	if uint64(base)+uint64(length) > uint64(len(b.data)) {
		return nil, &RangeError{Entry: i, Offset: int64(base), What: "entry payload"}
	}
	return b.data[base : base+length], nil
}

// entryOffset validates entry i and returns its absolute offset. The
// descriptor must fit within the buffer.
func (b *Bank) entryOffset(i int) (uint32, error) {
	if i < 0 || i >= len(b.offsets) {
		return 0, &RangeError{Entry: i, Offset: 0, What: "entry index"}
	}
	base := b.offsets[i]
	if uint64(base)+descriptorSize > uint64(len(b.data)) {
		return 0, &TruncatedError{
			Entry:  i,
			Offset: int64(base),
			Need:   descriptorSize,
			Have:   len(b.data) - int(base),
		}
	}
	return base, nil
}
