package jfda

import "github.com/esimov/jfda/utils"

// Regress applies the regression offsets to the box coordinates. All four edges are
// moved using the width and height the box had before the update.
func Regress(boxes BoxSet) BoxSet {
	out := boxes.Clone()
	for i := range out {
		b := &out[i]
		w, h := b.Width(), b.Height()
		b.X1 += b.Reg[0] * w
		b.Y1 += b.Reg[1] * h
		b.X2 += b.Reg[2] * w
		b.Y2 += b.Reg[3] * h
	}
	return out
}

// Square turns every box into a square with the side of its longer edge,
// keeping the center in place.
func Square(boxes BoxSet) BoxSet {
	out := boxes.Clone()
	for i := range out {
		b := &out[i]
		c := b.Center()
		size := utils.Max(b.Width(), b.Height())
		b.X1 = c.X - size/2
		b.Y1 = c.Y - size/2
		b.X2 = c.X + size/2
		b.Y2 = c.Y + size/2
	}
	return out
}

// LocateLandmarks converts the box relative landmark offsets into absolute
// pixel coordinates using the current box geometry.
func LocateLandmarks(boxes BoxSet) BoxSet {
	out := boxes.Clone()
	for i := range out {
		b := &out[i]
		w, h := b.Width(), b.Height()
		for p := 0; p < len(b.Landmarks); p += 2 {
			b.Landmarks[p] = b.Landmarks[p]*w + b.X1
			b.Landmarks[p+1] = b.Landmarks[p+1]*h + b.Y1
		}
	}
	return out
}
