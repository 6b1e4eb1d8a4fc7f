package jfda

import (
	"image"
	"image/color"

	"github.com/esimov/jfda/utils"
	"golang.org/x/image/draw"
)

// DefaultColor is the outline color used when none is configured.
var DefaultColor color.Color = color.RGBA{R: 0xff, G: 0x3c, B: 0x3c, A: 0xff}

// Annotate returns a copy of img with the face boxes outlined and the landmarks,
// when present, marked with small dots.
func Annotate(img image.Image, faces []Face, col color.Color) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	if col == nil {
		col = DefaultColor
	}
	thickness := utils.Clamp(utils.Min(b.Dx(), b.Dy())/300, 1, 8)

	for _, f := range faces {
		rect := image.Rect(int(f.Box[0]), int(f.Box[1]), int(f.Box[2]), int(f.Box[3]))
		drawOutline(dst, rect, thickness, col)

		if f.Landmarks == nil {
			continue
		}
		dot := thickness + 1
		for _, p := range f.Landmarks {
			x, y := int(p.X), int(p.Y)
			fillRect(dst, image.Rect(x-dot, y-dot, x+dot+1, y+dot+1), col)
		}
	}
	return dst
}

// drawOutline strokes the inner border of rect with the given line thickness.
func drawOutline(dst draw.Image, rect image.Rectangle, thickness int, col color.Color) {
	t := thickness
	fillRect(dst, image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+t), col)
	fillRect(dst, image.Rect(rect.Min.X, rect.Max.Y-t, rect.Max.X, rect.Max.Y), col)
	fillRect(dst, image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+t, rect.Max.Y), col)
	fillRect(dst, image.Rect(rect.Max.X-t, rect.Min.Y, rect.Max.X, rect.Max.Y), col)
}

func fillRect(dst draw.Image, rect image.Rectangle, col color.Color) {
	rect = rect.Intersect(dst.Bounds())
	if rect.Empty() {
		return
	}
	draw.Draw(dst, rect, image.NewUniform(col), image.Point{}, draw.Over)
}
