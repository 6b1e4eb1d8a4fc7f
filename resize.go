package jfda

import (
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Resizer scales an image to exactly w x h pixels.
type Resizer interface {
	Resize(img image.Image, w, h int) *image.NRGBA
}

// ImagingResizer resizes with one of the imaging resample filters.
type ImagingResizer struct {
	Filter imaging.ResampleFilter
}

// DefaultResizer is the bilinear resizer used when no other is configured.
var DefaultResizer Resizer = ImagingResizer{Filter: imaging.Linear}

// Resize implements Resizer.
func (r ImagingResizer) Resize(img image.Image, w, h int) *image.NRGBA {
	return imaging.Resize(img, w, h, r.Filter)
}

// DrawResizer resizes with a golang.org/x/image/draw interpolator.
type DrawResizer struct {
	Interpolator draw.Interpolator
}

// Resize implements Resizer.
func (r DrawResizer) Resize(img image.Image, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	r.Interpolator.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// resizers maps the names accepted on the command line to resizer constructors.
var resizers = map[string]func() Resizer{
	"linear":     func() Resizer { return ImagingResizer{Filter: imaging.Linear} },
	"lanczos":    func() Resizer { return ImagingResizer{Filter: imaging.Lanczos} },
	"nearest":    func() Resizer { return ImagingResizer{Filter: imaging.NearestNeighbor} },
	"bilinear":   func() Resizer { return DrawResizer{Interpolator: draw.BiLinear} },
	"catmullrom": func() Resizer { return DrawResizer{Interpolator: draw.CatmullRom} },
}

// ResizerByName returns the named resizer, or false if the name is unknown.
func ResizerByName(name string) (Resizer, bool) {
	fn, ok := resizers[name]
	if !ok {
		return nil, false
	}
	return fn(), true
}
