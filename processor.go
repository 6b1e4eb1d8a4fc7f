package jfda

import (
	"fmt"
	"image/color"
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Face is the serialisable form of a detected face.
type Face struct {
	// Box holds x1, y1, x2, y2 in image pixels.
	Box   [4]float32 `json:"box"`
	Score float32    `json:"score"`
	// Landmarks are the eyes, nose and mouth corners, only set when the
	// landmark producing third stage ran.
	Landmarks *[5]Point `json:"landmarks,omitempty"`
}

// Result is the outcome of processing one image.
type Result struct {
	Width   int           `json:"width"`
	Height  int           `json:"height"`
	Stages  int           `json:"stages"`
	Faces   []Face        `json:"faces"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

// NewResult converts the boxes returned by a detector running the given number of
// stages into a Result.
func NewResult(width, height, stages int, boxes BoxSet, elapsed time.Duration) Result {
	res := Result{
		Width:   width,
		Height:  height,
		Stages:  stages,
		Faces:   make([]Face, 0, len(boxes)),
		Elapsed: elapsed,
	}
	for _, b := range boxes {
		f := Face{
			Box:   [4]float32{b.X1, b.Y1, b.X2, b.Y2},
			Score: b.Score,
		}
		if stages == MaxStages {
			pts := b.Points()
			f.Landmarks = &pts
		}
		res.Faces = append(res.Faces, f)
	}
	return res
}

// Processor options
type Processor struct {
	Detector *Detector
	Params   Params
	// Color is the outline color used when the output is an image.
	Color color.Color
	// Indent pretty prints the JSON output.
	Indent bool
}

// Process decodes the image from r, runs the face detector over it and writes the
// result into w. When w is an image file the faces are drawn over the source image,
// otherwise the detections are written as JSON.
func (p *Processor) Process(r io.Reader, w io.Writer) error {
	if p.Detector == nil {
		return fmt.Errorf("%w: processor has no detector", ErrConfig)
	}

	img, err := Decode(r)
	if err != nil {
		return err
	}

	boxes, timing, err := p.Detector.DetectTimed(img, p.Params)
	if err != nil {
		return err
	}
	b := img.Bounds()
	res := NewResult(b.Dx(), b.Dy(), p.Detector.Stages(), boxes, timing.Total)

	if format, ok := imageFormat(w); ok {
		return encodeImg(w, Annotate(img, res.Faces, p.Color), format)
	}

	enc := json.NewEncoder(w)
	if p.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("could not encode the detection result: %w", err)
	}
	return nil
}
