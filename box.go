package jfda

import (
	"image"
	"math"
)

// RowSize is the width of a flattened box row:
// x1, y1, x2, y2, score, 4 regression offsets and 10 landmark values.
const RowSize = 4 + 1 + 4 + 10

// Point is a 2D point in image pixel coordinates.
type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// BoundingBox is a face candidate together with the values produced for it by the
// last scoring stage.
//
// Reg holds the (dx1, dy1, dx2, dy2) offsets expressed as fractions of the box width
// and height. Landmarks holds 5 interleaved (x, y) points; they are box relative
// offsets until LocateLandmarks converts them to absolute pixel coordinates.
type BoundingBox struct {
	X1, Y1    float32 // top-left
	X2, Y2    float32 // bottom-right
	Score     float32
	Reg       [4]float32
	Landmarks [10]float32
}

// BoxSet is an ordered sequence of bounding boxes.
type BoxSet []BoundingBox

// Width returns the box width.
func (b BoundingBox) Width() float32 {
	return b.X2 - b.X1
}

// Height returns the box height.
func (b BoundingBox) Height() float32 {
	return b.Y2 - b.Y1
}

// Center returns the box center point.
func (b BoundingBox) Center() Point {
	return Point{
		X: (b.X1 + b.X2) / 2,
		Y: (b.Y1 + b.Y2) / 2,
	}
}

// Area returns the pixel inclusive box area, (w+1)*(h+1).
func (b BoundingBox) Area() float32 {
	return (b.Width() + 1) * (b.Height() + 1)
}

// Rect returns the smallest integer rectangle enclosing the box.
// A degenerate box still yields a rectangle of at least one pixel.
func (b BoundingBox) Rect() image.Rectangle {
	x0 := int(math.Floor(float64(b.X1)))
	y0 := int(math.Floor(float64(b.Y1)))
	x1 := int(math.Ceil(float64(b.X2)))
	y1 := int(math.Ceil(float64(b.Y2)))
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	return image.Rect(x0, y0, x1, y1)
}

// Points returns the five landmark points.
func (b BoundingBox) Points() [5]Point {
	var pts [5]Point
	for i := range pts {
		pts[i] = Point{X: b.Landmarks[2*i], Y: b.Landmarks[2*i+1]}
	}
	return pts
}

// Row flattens the box into [x1,y1,x2,y2,score,dx1,dy1,dx2,dy2,lx1,ly1,...,lx5,ly5].
func (b BoundingBox) Row() [RowSize]float32 {
	var r [RowSize]float32
	r[0], r[1], r[2], r[3] = b.X1, b.Y1, b.X2, b.Y2
	r[4] = b.Score
	copy(r[5:9], b.Reg[:])
	copy(r[9:], b.Landmarks[:])
	return r
}

// BoxFromRow builds a box from its flattened row representation.
func BoxFromRow(r [RowSize]float32) BoundingBox {
	b := BoundingBox{
		X1: r[0], Y1: r[1], X2: r[2], Y2: r[3],
		Score: r[4],
	}
	copy(b.Reg[:], r[5:9])
	copy(b.Landmarks[:], r[9:])
	return b
}

// Clone returns a copy of the set which does not share its backing array.
func (s BoxSet) Clone() BoxSet {
	if s == nil {
		return nil
	}
	out := make(BoxSet, len(s))
	copy(out, s)
	return out
}

// Rows flattens every box of the set.
func (s BoxSet) Rows() [][RowSize]float32 {
	rows := make([][RowSize]float32, len(s))
	for i, b := range s {
		rows[i] = b.Row()
	}
	return rows
}
