package bank

import (
	"encoding/binary"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// packBits is the inverse of bitReader: indices become bpp-wide groups,
// least significant bit first, packed back to back and padded to a byte.
func packBits(indices []int, bpp int) []byte {
	out := make([]byte, (len(indices)*bpp+7)/8)
	bit := 0
	for _, v := range indices {
		for i := 0; i < bpp; i++ {
			if v>>uint(i)&1 != 0 {
				out[bit/8] |= 1 << uint(bit%8)
			}
			bit++
		}
	}
	return out
}

func TestBitReaderInverse(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))

	for _, bpp := range []int{1, 2, 4, 8} {
		indices := make([]int, 1000)
		for i := range indices {
			indices[i] = rnd.Intn(1 << uint(bpp))
		}

		r := &bitReader{data: packBits(indices, bpp)}
		for i, want := range indices {
			got, ok := r.readBits(bpp)
			require.True(t, ok, "bpp %d index %d", bpp, i)
			require.Equal(t, want, got, "bpp %d index %d", bpp, i)
		}
	}
}

func TestBitReaderExhausted(t *testing.T) {
	r := &bitReader{data: []byte{0xff}}
	_, ok := r.readBits(4)
	assert.True(t, ok)
	_, ok = r.readBits(8)
	assert.False(t, ok)
	assert.Equal(t, 4, r.remaining())
}

func noWarn(t *testing.T) func(string, ...interface{}) {
	return func(format string, args ...interface{}) {
		t.Errorf("unexpected warning: "+format, args...)
	}
}

func TestRasterizeIndexedLowBpp(t *testing.T) {
	d := &Descriptor{PixelFormat: 2, SpriteWidth: 2, SpriteHeight: 2}
	pal := color.Palette{red, green, blue, white}

	// Indices 0..3 at 2bpp pack into a single byte, low bits first.
	m, err := rasterizeIndexed(packBits([]int{0, 1, 2, 3}, 2), d, pal, 0, 0, 0, noWarn(t))
	require.NoError(t, err)
	assert.Equal(t, red, m.RGBAAt(0, 0))
	assert.Equal(t, green, m.RGBAAt(1, 0))
	assert.Equal(t, blue, m.RGBAAt(0, 1))
	assert.Equal(t, white, m.RGBAAt(1, 1))
}

func TestRasterizeIndexedTransparentPrecedence(t *testing.T) {
	d := &Descriptor{
		PixelFormat:      8,
		SpriteWidth:      2,
		SpriteHeight:     1,
		Transparency:     true,
		TransparentIndex: 1,
	}
	pal := color.Palette{red, green}

	m, err := rasterizeIndexed([]byte{0, 1}, d, pal, 0, 0, 0, noWarn(t))
	require.NoError(t, err)
	assert.Equal(t, red, m.RGBAAt(0, 0))
	// The palette entry is green, but the transparent index wins.
	assert.Equal(t, color.RGBA{}, m.RGBAAt(1, 0))
}

func TestRasterizeIndexedTransparentIndexBeyondPalette(t *testing.T) {
	// The transparent index may lie outside the palette entirely; pixels
	// using it must not trigger the lookup error.
	d := &Descriptor{
		PixelFormat:      8,
		SpriteWidth:      1,
		SpriteHeight:     1,
		Transparency:     true,
		TransparentIndex: 200,
	}

	m, err := rasterizeIndexed([]byte{200}, d, color.Palette{red}, 0, 0, 0, noWarn(t))
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{}, m.RGBAAt(0, 0))
}

func TestRasterizeIndexedPaletteOutOfRange(t *testing.T) {
	d := &Descriptor{PixelFormat: 8, SpriteWidth: 1, SpriteHeight: 1}

	_, err := rasterizeIndexed([]byte{9}, d, color.Palette{red, green}, 2, 5, 1, func(string, ...interface{}) {})
	var palErr *PaletteError
	require.ErrorAs(t, err, &palErr)
	assert.Equal(t, 2, palErr.Entry)
	assert.Equal(t, 5, palErr.Sprite)
	assert.Equal(t, 9, palErr.Index)
	assert.Equal(t, 1, palErr.Palette)
	assert.Equal(t, 2, palErr.Size)
}

func TestRasterizeIndexedShortPayload(t *testing.T) {
	d := &Descriptor{PixelFormat: 8, SpriteWidth: 2, SpriteHeight: 2}

	var warned []string
	warn := func(format string, args ...interface{}) {
		warned = append(warned, format)
	}

	m, err := rasterizeIndexed([]byte{0, 0}, d, color.Palette{red}, 0, 0, 0, warn)
	require.NoError(t, err)
	assert.Len(t, warned, 1)
	// Unwritten pixels stay zeroed.
	assert.Equal(t, color.RGBA{}, m.RGBAAt(1, 1))
}

func directSamples(samples ...uint16) []byte {
	b := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[i*2:], s)
	}
	return b
}

func TestRasterizeDirect(t *testing.T) {
	d := &Descriptor{PixelFormat: PixelDirect16, SpriteWidth: 2, SpriteHeight: 2}

	m := rasterizeDirect(directSamples(rgbRed, rgbGreen, rgbBlue, rgbWhite), d, 0, noWarn(t))
	assert.Equal(t, red, m.RGBAAt(0, 0))
	assert.Equal(t, green, m.RGBAAt(1, 0))
	assert.Equal(t, blue, m.RGBAAt(0, 1))
	assert.Equal(t, white, m.RGBAAt(1, 1))
}

func TestRasterizeDirectTransparentPrecedence(t *testing.T) {
	d := &Descriptor{
		PixelFormat:      PixelDirect16,
		SpriteWidth:      2,
		SpriteHeight:     1,
		Transparency:     true,
		TransparentIndex: rgbGreen,
	}

	m := rasterizeDirect(directSamples(rgbRed, rgbGreen), d, 0, noWarn(t))
	assert.Equal(t, red, m.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{}, m.RGBAAt(1, 0))
}

func TestRasterizeDirectSampleCountMismatch(t *testing.T) {
	d := &Descriptor{PixelFormat: PixelDirect16, SpriteWidth: 2, SpriteHeight: 2}

	var warned []string
	warn := func(format string, args ...interface{}) {
		warned = append(warned, format)
	}

	rasterizeDirect(directSamples(rgbRed, rgbGreen), d, 0, warn)
	assert.Len(t, warned, 1)
}
