package jfda

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTensor_Layout(t *testing.T) {
	assert := assert.New(t)

	tt := NewTensor(2, 3, 4, 5)
	assert.Equal([4]int{2, 3, 4, 5}, tt.Shape())
	assert.Len(tt.Data, 120)
	assert.Equal(0, tt.Offset(0, 0, 0, 0))
	assert.Equal(119, tt.Offset(1, 2, 3, 4))
	assert.Equal(20, tt.Offset(0, 1, 0, 0))

	tt.Set(1, 2, 3, 4, 9)
	assert.Equal(float32(9), tt.At(1, 2, 3, 4))
	assert.Equal(float32(9), tt.Channel(1, 2)[19])
	assert.Equal("[2,3,4,5]", tt.String())

	assert.True(tt.valid())
	tt.Data = tt.Data[:10]
	assert.False(tt.valid())

	var nilTensor *Tensor
	assert.False(nilTensor.valid())
}

func TestTensor_FromImages(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 128, B: 0, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 0, G: 64, B: 192, A: 255})

	rgb := toTensor([]*image.NRGBA{img, img}, RGB)
	require.Equal(t, [4]int{2, 3, 1, 2}, rgb.Shape())
	assert.InDelta(t, 127.0/128.0, rgb.At(0, 0, 0, 0), 1e-6)
	assert.InDelta(t, 0, rgb.At(0, 1, 0, 0), 1e-6)
	assert.InDelta(t, -1, rgb.At(0, 2, 0, 0), 1e-6)
	assert.InDelta(t, 0.5, rgb.At(1, 2, 0, 1), 1e-6)

	bgr := toTensor([]*image.NRGBA{img}, BGR)
	assert.InDelta(t, -1, bgr.At(0, 0, 0, 0), 1e-6)
	assert.InDelta(t, 127.0/128.0, bgr.At(0, 2, 0, 0), 1e-6)
	assert.InDelta(t, -0.5, bgr.At(0, 1, 0, 1), 1e-6)

	empty := toTensor(nil, RGB)
	assert.Equal(t, [4]int{0, 3, 0, 0}, empty.Shape())
}

func TestOutput_Validate(t *testing.T) {
	assert := assert.New(t)

	good := stage1Output(4, 3, nil)
	assert.NoError(good.validate(1, 1))

	bad := stage1Output(4, 3, nil)
	bad.BBox = NewTensor(1, 4, 2, 4)
	assert.ErrorIs(bad.validate(1, 1), ErrScoring)

	var missing *Output
	assert.ErrorIs(missing.validate(1, 1), ErrScoring)

	batch := &Output{Prob: NewTensor(5, 2, 1, 1), BBox: NewTensor(5, 4, 1, 1), Landmark: NewTensor(5, 10, 1, 1)}
	assert.NoError(batch.validate(2, 5))
	assert.ErrorIs(batch.validate(3, 4), ErrScoring)

	batch.Landmark = NewTensor(5, 4, 1, 1)
	assert.ErrorIs(batch.validate(3, 5), ErrScoring)
}
