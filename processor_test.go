package jfda

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodedImage(t *testing.T, img image.Image, format imaging.Format) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, format))
	return buf.Bytes()
}

func TestNewResult(t *testing.T) {
	boxes := BoxSet{{X1: 1, Y1: 2, X2: 11, Y2: 12, Score: 0.9, Landmarks: [10]float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}}}

	res := NewResult(40, 30, 2, boxes, time.Millisecond)
	require.Len(t, res.Faces, 1)
	assert.Equal(t, [4]float32{1, 2, 11, 12}, res.Faces[0].Box)
	assert.Nil(t, res.Faces[0].Landmarks)

	res = NewResult(40, 30, MaxStages, boxes, time.Millisecond)
	require.NotNil(t, res.Faces[0].Landmarks)
	assert.Equal(t, Point{X: 9, Y: 10}, res.Faces[0].Landmarks[4])

	res = NewResult(40, 30, MaxStages, nil, 0)
	assert.NotNil(t, res.Faces)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"faces":[]`)
}

func TestProcessor_JSON(t *testing.T) {
	det, err := New([]Scorer{cellScorer(3, 2, 0.95, nil)})
	require.NoError(t, err)

	p := &Processor{Detector: det, Params: testParams(), Indent: true}
	src := bytes.NewReader(encodedImage(t, testImage(24, 24), imaging.PNG))

	var out bytes.Buffer
	require.NoError(t, p.Process(src, &out))
	assert.Contains(t, out.String(), "\n  \"width\": 24")

	var res Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, 24, res.Width)
	assert.Equal(t, 24, res.Height)
	assert.Equal(t, 1, res.Stages)
	require.Len(t, res.Faces, 1)
	assert.Equal(t, [4]float32{6, 4, 18, 16}, res.Faces[0].Box)
	assert.Equal(t, float32(0.95), res.Faces[0].Score)
	assert.Nil(t, res.Faces[0].Landmarks)
}

func TestProcessor_AnnotatedImage(t *testing.T) {
	det, err := New([]Scorer{cellScorer(3, 2, 0.95, nil)})
	require.NoError(t, err)

	dst, err := os.Create(filepath.Join(t.TempDir(), "faces.png"))
	require.NoError(t, err)
	defer dst.Close()

	p := &Processor{Detector: det, Params: testParams(), Color: color.NRGBA{G: 255, A: 255}}
	src := bytes.NewReader(encodedImage(t, testImage(24, 24), imaging.JPEG))
	require.NoError(t, p.Process(src, dst))

	_, err = dst.Seek(0, 0)
	require.NoError(t, err)
	img, err := Decode(dst)
	require.NoError(t, err)

	assert.Equal(t, color.NRGBA{G: 255, A: 255}, img.NRGBAAt(6, 4))
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, img.NRGBAAt(17, 15))
	assert.NotEqual(t, color.NRGBA{G: 255, A: 255}, img.NRGBAAt(10, 10))
}

func TestProcessor_Errors(t *testing.T) {
	var out bytes.Buffer
	p := &Processor{Params: testParams()}
	assert.ErrorIs(t, p.Process(bytes.NewReader(nil), &out), ErrConfig)

	det, err := New([]Scorer{cellScorer(3, 2, 0.95, nil)})
	require.NoError(t, err)
	p.Detector = det
	assert.ErrorIs(t, p.Process(bytes.NewReader([]byte("not an image")), &out), ErrDecode)

	p.Params.Factor = 2
	src := bytes.NewReader(encodedImage(t, testImage(24, 24), imaging.PNG))
	assert.ErrorIs(t, p.Process(src, &out), ErrConfig)
	assert.Zero(t, out.Len())
}
