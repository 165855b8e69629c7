package bank

import (
	"encoding/binary"
	"image"
	"image/color"
)

// bitReader consumes a byte slice as a stream of bits, least significant
// bit of each byte first. Indexed pixel data packs palette indices this
// way back to back with no row padding, so the reader never materializes
// the full bit expansion.
type bitReader struct {
	data []byte
	pos  int
	bit  uint
}

// readBits returns the next n bits assembled least significant bit first.
// ok is false once fewer than n bits remain.
func (r *bitReader) readBits(n int) (v int, ok bool) {
	if r.remaining() < n {
		return 0, false
	}
	for i := 0; i < n; i++ {
		v |= int(r.data[r.pos]>>r.bit&1) << uint(i)
		r.bit++
		if r.bit == 8 {
			r.bit = 0
			r.pos++
		}
	}
	return v, true
}

// remaining returns the number of unread bits.
func (r *bitReader) remaining() int {
	return (len(r.data)-r.pos)*8 - int(r.bit)
}

var transparentPixel = color.RGBA{}

// rasterizeIndexed converts bit-packed palette indices into an RGBA sprite.
// Groups beyond width*height are dropped; a short stream leaves trailing
// pixels at the zero value and is reported through warn. An index with no
// palette entry is fatal unless it is the declared transparent index, which
// takes precedence over the lookup.
func rasterizeIndexed(data []byte, d *Descriptor, pal color.Palette, entry, sprite, palette int, warn func(format string, args ...interface{})) (*image.RGBA, error) {
	m := image.NewRGBA(image.Rect(0, 0, d.SpriteWidth, d.SpriteHeight))

	bpp := d.PixelFormat.Bits()
	want := d.SpriteWidth * d.SpriteHeight
	r := &bitReader{data: data}

	for i := 0; i < want; i++ {
		index, ok := r.readBits(bpp)
		if !ok {
			warn("sprite %d: pixel data ends after %d of %d pixels", sprite, i, want)
			break
		}

		x, y := i%d.SpriteWidth, i/d.SpriteWidth
		if d.Transparency && uint16(index) == d.TransparentIndex {
			m.SetRGBA(x, y, transparentPixel)
			continue
		}
		if index >= len(pal) {
			return nil, &PaletteError{
				Entry:   entry,
				Offset:  int64(r.pos),
				Sprite:  sprite,
				Index:   index,
				Palette: palette,
				Size:    len(pal),
			}
		}
		m.Set(x, y, pal[index])
	}

	// Up to seven trailing bits are byte-boundary padding; more than that
	// means the payload holds pixels the sprite has no room for.
	if extra := r.remaining(); extra >= 8 && bpp > 0 {
		warn("sprite %d: %d excess pixels dropped", sprite, extra/bpp)
	}

	return m, nil
}

// rasterizeDirect converts 16-bit RGB565 samples into an RGBA sprite. A
// raw sample equal to the transparent index becomes a transparent pixel
// before any color conversion.
func rasterizeDirect(data []byte, d *Descriptor, sprite int, warn func(format string, args ...interface{})) *image.RGBA {
	m := image.NewRGBA(image.Rect(0, 0, d.SpriteWidth, d.SpriteHeight))

	want := d.SpriteWidth * d.SpriteHeight
	have := len(data) / 2
	if have != want {
		warn("sprite %d: %d pixel samples for %d pixels", sprite, have, want)
	}

	for i := 0; i < want && i < have; i++ {
		v := binary.LittleEndian.Uint16(data[i*2:])

		x, y := i%d.SpriteWidth, i/d.SpriteWidth
		if d.Transparency && v == d.TransparentIndex {
			m.SetRGBA(x, y, transparentPixel)
			continue
		}
		m.SetRGBA(x, y, rgb565(v))
	}

	return m
}
