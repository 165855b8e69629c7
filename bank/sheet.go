package bank

import (
	"fmt"
	"image"
	"image/draw"
)

// Sprites compose into subimages on a fixed grid, row major, and
// subimages compose into a spritesheet whose rows enumerate palettes and
// whose columns enumerate subimages. Composition never blends: every
// destination pixel is written by exactly one sprite.

// Subimage composes subimage j with the given palette from its run of
// GridWidth*GridHeight sprites.
func (img *Image) Subimage(j, palette int) (*image.RGBA, error) {
	d := &img.Descriptor
	cells := d.GridCells()
	if cells == 0 {
		return nil, &LayoutError{Entry: img.Entry, Reason: "empty subimage grid"}
	}
	first := j * cells
	if j < 0 || first+cells > len(img.payloads) {
		return nil, &LayoutError{
			Entry:  img.Entry,
			Reason: fmt.Sprintf("subimage %d needs sprites beyond the sprite count", j),
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, d.GridWidth*d.SpriteWidth, d.GridHeight*d.SpriteHeight))
	for i := 0; i < cells; i++ {
		sp, err := img.Sprite(first+i, palette)
		if err != nil {
			return nil, err
		}

		r := image.Rect(0, 0, d.SpriteWidth, d.SpriteHeight).
			Add(image.Pt(i%d.GridWidth*d.SpriteWidth, i/d.GridWidth*d.SpriteHeight))
		if sp.Bounds().Size() != r.Size() {
			return nil, &LayoutError{
				Entry:  img.Entry,
				Reason: fmt.Sprintf("sprite %d does not match its grid cell", first+i),
			}
		}
		draw.Draw(dst, r, sp, image.Point{}, draw.Src)
	}

	return dst, nil
}

// Sheet composes the whole entry into a single raster: one row band per
// palette, each band holding every complete subimage side by side.
func (img *Image) Sheet() (*image.RGBA, error) {
	d := &img.Descriptor
	rows := img.PaletteRows()
	cols := img.NumSubimages()
	if rows == 0 || cols == 0 {
		return nil, &LayoutError{Entry: img.Entry, Reason: "nothing to compose into a sheet"}
	}

	subW := d.GridWidth * d.SpriteWidth
	subH := d.GridHeight * d.SpriteHeight
	dst := image.NewRGBA(image.Rect(0, 0, cols*subW, rows*subH))

	for p := 0; p < rows; p++ {
		for j := 0; j < cols; j++ {
			sub, err := img.Subimage(j, p)
			if err != nil {
				return nil, err
			}
			r := image.Rect(0, 0, subW, subH).Add(image.Pt(j*subW, p*subH))
			draw.Draw(dst, r, sub, image.Point{}, draw.Src)
		}
	}

	return dst, nil
}

