package jfda

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
)

func TestAnnotate(t *testing.T) {
	bg := color.NRGBA{R: 10, G: 20, B: 30, A: 255}
	src := imaging.New(60, 40, bg)
	red := color.NRGBA{R: 255, A: 255}

	pts := [5]Point{{X: 30, Y: 20}}
	faces := []Face{
		{Box: [4]float32{10, 5, 30, 25}, Score: 0.9},
		{Box: [4]float32{40, 10, 55, 30}, Score: 0.8, Landmarks: &pts},
	}
	out := Annotate(src, faces, red)

	assert.Equal(t, src.Bounds(), out.Bounds())
	// corners and edges of the first box
	for _, p := range []image.Point{{10, 5}, {29, 5}, {10, 24}, {29, 24}, {20, 5}, {10, 15}} {
		assert.Equal(t, red, out.NRGBAAt(p.X, p.Y), "%v", p)
	}
	// inside and outside the box
	for _, p := range []image.Point{{20, 15}, {9, 4}, {31, 26}} {
		assert.Equal(t, bg, out.NRGBAAt(p.X, p.Y), "%v", p)
	}
	// landmark dots
	assert.Equal(t, red, out.NRGBAAt(30, 20))
	assert.Equal(t, red, out.NRGBAAt(32, 18))
	assert.Equal(t, red, out.NRGBAAt(0, 0))
	assert.Equal(t, bg, out.NRGBAAt(3, 3))

	// The source is left untouched.
	assert.Equal(t, bg, src.NRGBAAt(10, 5))
}

func TestAnnotate_DefaultColorAndOffset(t *testing.T) {
	bg := color.NRGBA{A: 255}
	full := imaging.New(50, 50, bg)
	sub := full.SubImage(image.Rect(10, 10, 40, 40))

	out := Annotate(sub, []Face{{Box: [4]float32{0, 0, 10, 10}}, {Box: [4]float32{25, 25, 90, 90}}}, nil)

	assert.Equal(t, image.Rect(0, 0, 30, 30), out.Bounds())
	want := color.NRGBAModel.Convert(DefaultColor)
	assert.Equal(t, want, out.NRGBAAt(0, 0))
	assert.Equal(t, want, out.NRGBAAt(25, 29))
	assert.Equal(t, bg, out.NRGBAAt(5, 5))
}
