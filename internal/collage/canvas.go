package collage

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"

	imgutil "github.com/ironsheep/collage-mcp/internal/imaging"
)

// Canvas is the off-screen surface a collage is drawn on.
//
// A Canvas is not safe for concurrent use; the Assembler guarantees a single
// writer by holding the Building state for the whole build.
type Canvas struct {
	img *image.NRGBA
}

// NewCanvas returns an empty canvas. It is sized by the first Reset.
func NewCanvas() *Canvas {
	return &Canvas{}
}

// Reset resizes the canvas to w × h and paints every pixel with bg.
//
// The backing buffer is reused when the size is unchanged, but it is always
// fully repainted, so nothing from a previous build survives.
func (c *Canvas) Reset(w, h int, bg color.Color) {
	if c.img == nil || c.img.Bounds().Dx() != w || c.img.Bounds().Dy() != h {
		c.img = imaging.New(w, h, bg)
		return
	}
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
}

// DrawCell stretches img to the cell's size and composites it over the
// background at the cell's position.
func (c *Canvas) DrawCell(img image.Image, cell image.Rectangle, filter imaging.ResampleFilter) {
	fitted := imgutil.Stretch(img, cell.Dx(), filter)
	draw.Draw(c.img, cell, fitted, fitted.Bounds().Min, draw.Over)
}

// Bounds returns the current surface rectangle. It is empty before the first Reset.
func (c *Canvas) Bounds() image.Rectangle {
	if c.img == nil {
		return image.Rectangle{}
	}
	return c.img.Bounds()
}

// Image exposes the backing image for encoding. Callers must not retain it
// across builds.
func (c *Canvas) Image() *image.NRGBA {
	return c.img
}

// Snapshot returns a copy of the surface, or nil before the first Reset.
func (c *Canvas) Snapshot() *image.NRGBA {
	if c.img == nil {
		return nil
	}
	return imaging.Clone(c.img)
}
