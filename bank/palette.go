package bank

import (
	"encoding/binary"
	"image/color"
)

// rgb565 expands a packed 16-bit sample into 8-bit channels. Each channel
// is rescaled linearly so that the maximum 5- or 6-bit value lands on 255.
// Alpha is always opaque; transparency is decided per pixel, not per color.
func rgb565(v uint16) color.RGBA {
	r := int(v>>11) & 0x1f
	g := int(v>>5) & 0x3f
	b := int(v) & 0x1f
	return color.RGBA{
		R: uint8(r * 255 / 31),
		G: uint8(g * 255 / 63),
		B: uint8(b * 255 / 31),
		A: 0xff,
	}
}

// decodePalettes splits a run of RGB565 samples into numPalettes palettes
// of colorsPerPalette colors each. Colors beyond the declared palettes are
// discarded; a short region yields short palettes.
func decodePalettes(data []byte, colorsPerPalette, numPalettes int) []color.Palette {
	palettes := make([]color.Palette, numPalettes)

	for i := 0; i*2+1 < len(data); i++ {
		set := i / colorsPerPalette
		if set >= numPalettes {
			break
		}
		palettes[set] = append(palettes[set], rgb565(binary.LittleEndian.Uint16(data[i*2:])))
	}

	return palettes
}
