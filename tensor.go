package jfda

import (
	"fmt"
	"image"
)

// Tensor is a dense float32 array in NCHW layout.
// Two dimensional [N,K] network outputs are represented with H = W = 1.
type Tensor struct {
	N, C, H, W int
	Data       []float32
}

// NewTensor allocates a zeroed tensor of the given shape.
func NewTensor(n, c, h, w int) *Tensor {
	return &Tensor{N: n, C: c, H: h, W: w, Data: make([]float32, n*c*h*w)}
}

// Shape returns the tensor dimensions as [N, C, H, W].
func (t *Tensor) Shape() [4]int {
	return [4]int{t.N, t.C, t.H, t.W}
}

// Offset returns the index of element (n, c, y, x) in Data.
func (t *Tensor) Offset(n, c, y, x int) int {
	return ((n*t.C+c)*t.H+y)*t.W + x
}

// At returns element (n, c, y, x).
func (t *Tensor) At(n, c, y, x int) float32 {
	return t.Data[t.Offset(n, c, y, x)]
}

// Set stores v at (n, c, y, x).
func (t *Tensor) Set(n, c, y, x int, v float32) {
	t.Data[t.Offset(n, c, y, x)] = v
}

// Channel returns the H*W plane of channel c of item n. The slice shares memory with the tensor.
func (t *Tensor) Channel(n, c int) []float32 {
	start := t.Offset(n, c, 0, 0)
	return t.Data[start : start+t.H*t.W]
}

func (t *Tensor) String() string {
	return fmt.Sprintf("[%d,%d,%d,%d]", t.N, t.C, t.H, t.W)
}

func (t *Tensor) valid() bool {
	return t != nil && t.N >= 0 && t.C >= 0 && t.H >= 0 && t.W >= 0 &&
		len(t.Data) == t.N*t.C*t.H*t.W
}

// ChannelOrder is the order the colour planes are written into a tensor.
type ChannelOrder int

const (
	// RGB writes the planes as red, green, blue.
	RGB ChannelOrder = iota
	// BGR writes the planes as blue, green, red, the layout Caffe trained nets expect.
	BGR
)

// pixelMean and pixelScale normalise 8 bit samples to (p-128)/128.
const (
	pixelMean  = 128
	pixelScale = 128
)

// toTensor packs equally sized images into one normalised [len(imgs),3,H,W] tensor.
func toTensor(imgs []*image.NRGBA, order ChannelOrder) *Tensor {
	if len(imgs) == 0 {
		return NewTensor(0, 3, 0, 0)
	}
	b := imgs[0].Bounds()
	t := NewTensor(len(imgs), 3, b.Dy(), b.Dx())
	for n, img := range imgs {
		fillTensor(t, n, img, order)
	}
	return t
}

// fillTensor writes img as item n of t. The image must match the tensor spatial size.
func fillTensor(t *Tensor, n int, img *image.NRGBA, order ChannelOrder) {
	rc, bc := 0, 2
	if order == BGR {
		rc, bc = 2, 0
	}
	r, g, b := t.Channel(n, rc), t.Channel(n, 1), t.Channel(n, bc)

	bounds := img.Bounds()
	for y := 0; y < t.H; y++ {
		pi := img.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		for x := 0; x < t.W; x++ {
			i := y*t.W + x
			r[i] = (float32(img.Pix[pi+0]) - pixelMean) / pixelScale
			g[i] = (float32(img.Pix[pi+1]) - pixelMean) / pixelScale
			b[i] = (float32(img.Pix[pi+2]) - pixelMean) / pixelScale
			pi += 4
		}
	}
}
