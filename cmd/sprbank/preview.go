package main

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/BourgeoisBear/rasterm"
	"github.com/andybons/gogif"
	"github.com/nfnt/resize"
)

// preview draws m inline in the terminal, preferring whichever raster
// protocol the terminal speaks. Sixel output needs a paletted image, so
// that path quantizes first.
func preview(m image.Image, scale int) error {
	if scale > 1 {
		b := m.Bounds()
		m = resize.Resize(uint(b.Dx()*scale), uint(b.Dy()*scale), m, resize.NearestNeighbor)
	}

	switch {
	case rasterm.IsTermKitty():
		if err := (rasterm.Settings{}).KittyWriteImage(os.Stdout, m); err != nil {
			return err
		}
	case rasterm.IsTermItermWez():
		if err := (rasterm.Settings{}).ItermWriteImage(os.Stdout, m); err != nil {
			return err
		}
	default:
		capable, err := rasterm.IsSixelCapable()
		if err != nil {
			return err
		}
		if !capable {
			return errors.New("terminal has no raster support; extract to files instead")
		}

		paletted := image.NewPaletted(m.Bounds(), nil)
		quantizer := gogif.MedianCutQuantizer{NumColor: 256}
		quantizer.Quantize(paletted, m.Bounds(), m, image.Point{})

		if err := (rasterm.Settings{}).SixelWriteImage(os.Stdout, paletted); err != nil {
			return err
		}
	}
	fmt.Printf("\n")

	return nil
}
