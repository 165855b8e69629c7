package bank

import (
	"fmt"
	"image"
	"image/color"
)

// Image is one fully parsed container entry: descriptor, palettes and
// decompressed per-sprite payloads. Rasterization happens on demand so a
// caller can render the same entry with any of its palettes.
//
// An Image is owned by whoever decoded it; its methods must not be called
// from multiple goroutines at once because warnings accumulate on it.
type Image struct {
	Entry      int
	Descriptor Descriptor
	Palettes   []color.Palette

	payloads [][]byte
	warnings []string
}

// Image parses, de-obfuscates and decompresses entry i. Failures decoding
// one entry never affect siblings; the caller can report the error and
// move on.
func (b *Bank) Image(i int) (*Image, error) {
	base, err := b.entryOffset(i)
	if err != nil {
		return nil, err
	}

	d, err := ParseDescriptor(b.data[base:], i, int64(base))
	if err != nil {
		return nil, err
	}

	img := &Image{
		Entry:      i,
		Descriptor: *d,
	}
	if _, exact := d.NumSubimages(); !exact {
		img.warn("%d sprites do not fill %dx%d subimage grids evenly", d.NumSprites, d.GridWidth, d.GridHeight)
	}

	// Region boundaries, all relative to the entry start: descriptor,
	// palette region, pixel data region, end of entry.
	entryLen := uint64(d.DataLength)
	palOff := uint64(d.PaletteOffset)
	pixOff := uint64(d.PixelOffset)
	end := uint64(base) + entryLen
	if end > uint64(len(b.data)) {
		return nil, &TruncatedError{
			Entry:  i,
			Offset: int64(base),
			Need:   int(entryLen),
			Have:   len(b.data) - int(base),
		}
	}
	if palOff > pixOff || pixOff > entryLen {
		return nil, &RangeError{Entry: i, Offset: int64(base), What: "palette or pixel data offset"}
	}

	entry := b.data[base:end]

	if d.PixelFormat.Indexed() {
		img.Palettes = decodePalettes(entry[palOff:pixOff], d.PixelFormat.Colors(), d.NumPalettes)
	}

	region := entry[pixOff:]
	if d.Obfuscated {
		// The payload table of compressed entries lives inside the
		// obfuscated region, so the whole region is reversed up front.
		region = deobfuscate(region)
	}

	raw, err := splitPayloads(region, d, i, int64(base)+int64(pixOff))
	if err != nil {
		return nil, err
	}

	img.payloads = make([][]byte, len(raw))
	for j, p := range raw {
		switch d.Compression {
		case CompressionBytewise:
			img.payloads[j] = DecompressBytewise(p)
		case CompressionWordwise:
			img.payloads[j] = DecompressWordwise(p)
		default:
			img.payloads[j] = p
		}
	}

	return img, nil
}

func (img *Image) warn(format string, args ...interface{}) {
	img.warnings = append(img.warnings, fmt.Sprintf(format, args...))
}

// Warnings returns non-fatal oddities found while decoding and
// rasterizing, in the order they were noticed.
func (img *Image) Warnings() []string {
	return img.warnings
}

// NumSprites returns the number of sprites the entry holds.
func (img *Image) NumSprites() int {
	return len(img.payloads)
}

// NumSubimages returns the number of complete subimages.
func (img *Image) NumSubimages() int {
	n, _ := img.Descriptor.NumSubimages()
	return n
}

// PaletteRows returns the number of palette bands a spritesheet of this
// entry has. Direct-color entries have a single band.
func (img *Image) PaletteRows() int {
	if !img.Descriptor.PixelFormat.Indexed() {
		return 1
	}
	return len(img.Palettes)
}

// Sprite rasterizes sprite j with the given palette. The palette argument
// is ignored for direct-color entries.
func (img *Image) Sprite(j, palette int) (*image.RGBA, error) {
	if j < 0 || j >= len(img.payloads) {
		return nil, fmt.Errorf("bank: entry %d: no sprite %d", img.Entry, j)
	}

	d := &img.Descriptor
	if !d.PixelFormat.Indexed() {
		return rasterizeDirect(img.payloads[j], d, j, img.warn), nil
	}

	if palette < 0 || palette >= len(img.Palettes) {
		return nil, fmt.Errorf("bank: entry %d: no palette %d", img.Entry, palette)
	}
	return rasterizeIndexed(img.payloads[j], d, img.Palettes[palette], img.Entry, j, palette, img.warn)
}
