package jfda

import "github.com/esimov/jfda/utils"

// Pyramid is the decreasing sequence of scales the first stage scans the image at.
type Pyramid []float64

// Scales computes the image pyramid needed to find faces down to minSize pixels.
// The first scale maps a minSize face onto the PNetWindow receptive field; each
// following scale shrinks the previous one by factor while the shorter image side
// stays larger than the window. An empty pyramid means the image is too small.
func Scales(width, height int, minSize, factor float64) Pyramid {
	base := PNetWindow / minSize
	l := float64(utils.Min(width, height)) * base

	scales := Pyramid{}
	for l > PNetWindow {
		scales = append(scales, base)
		base *= factor
		l *= factor
	}
	return scales
}
