//go:build gocv

package jfda

import (
	"image"

	"gocv.io/x/gocv"
)

// CVResizer resizes with OpenCV bilinear interpolation, reproducing the
// pixel values the reference networks were evaluated with.
type CVResizer struct{}

func init() {
	resizers["opencv"] = func() Resizer { return CVResizer{} }
}

// Resize implements Resizer. It falls back to the default resizer if OpenCV fails.
func (CVResizer) Resize(img image.Image, w, h int) *image.NRGBA {
	src, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		return DefaultResizer.Resize(img, w, h)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	if err := gocv.Resize(src, &dst, image.Pt(w, h), 0, 0, gocv.InterpolationLinear); err != nil {
		return DefaultResizer.Resize(img, w, h)
	}

	out, err := dst.ToImage()
	if err != nil {
		return DefaultResizer.Resize(img, w, h)
	}
	return imgToNRGBA(out)
}
