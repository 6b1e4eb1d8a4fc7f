package jfda

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Timing records how long each part of a detection took.
type Timing struct {
	Stages [MaxStages]time.Duration
	Total  time.Duration
}

// Detector runs the cascade. It is safe for concurrent use if its scorers are.
type Detector struct {
	scorers []Scorer
	resizer Resizer
	order   ChannelOrder
	workers int
	log     logrus.FieldLogger
}

// Option customises a Detector.
type Option func(*Detector)

// WithResizer sets the resampler used for the pyramid levels and the stage patches.
func WithResizer(r Resizer) Option {
	return func(d *Detector) {
		if r != nil {
			d.resizer = r
		}
	}
}

// WithWorkers bounds the number of pyramid levels and crops processed at once.
func WithWorkers(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithLogger sets the logger receiving per stage debug entries.
func WithLogger(l logrus.FieldLogger) Option {
	return func(d *Detector) {
		if l != nil {
			d.log = l
		}
	}
}

// WithChannelOrder sets the colour plane order of the network inputs. It defaults
// to BGR, the order the Caffe trained reference networks were fed with.
func WithChannelOrder(o ChannelOrder) Option {
	return func(d *Detector) {
		d.order = o
	}
}

// New creates a detector running one stage per scorer, in order.
func New(scorers []Scorer, opts ...Option) (*Detector, error) {
	if len(scorers) < 1 || len(scorers) > MaxStages {
		return nil, fmt.Errorf("%w: %d stage networks given, expected 1 to %d", ErrConfig, len(scorers), MaxStages)
	}
	for i, s := range scorers {
		if s == nil {
			return nil, fmt.Errorf("%w: stage %d has no network", ErrConfig, i+1)
		}
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	d := &Detector{
		scorers: append([]Scorer(nil), scorers...),
		resizer: DefaultResizer,
		order:   BGR,
		workers: runtime.NumCPU(),
		log:     discard,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Close releases the scorers holding external resources.
func (d *Detector) Close() error {
	var errs []error
	for _, s := range d.scorers {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Stages returns the number of cascade stages the detector runs.
func (d *Detector) Stages() int {
	return len(d.scorers)
}

// Detect returns the faces found in img.
func (d *Detector) Detect(img image.Image, p Params) (BoxSet, error) {
	boxes, _, err := d.DetectTimed(img, p)
	return boxes, err
}

// DetectTimed is like Detect but also reports the time spent in each stage.
func (d *Detector) DetectTimed(img image.Image, p Params) (BoxSet, Timing, error) {
	var timing Timing
	if err := p.Validate(); err != nil {
		return nil, timing, err
	}
	if img == nil {
		return nil, timing, fmt.Errorf("%w: nil image", ErrConfig)
	}

	start := time.Now()
	src := imgToNRGBA(img)
	b := src.Bounds()

	scales := Scales(b.Dx(), b.Dy(), p.MinFaceSize, p.Factor)
	d.log.WithFields(logrus.Fields{
		"width":  b.Dx(),
		"height": b.Dy(),
		"scales": len(scales),
	}).Debug("pyramid")

	boxes := BoxSet{}
	for i := range d.scorers {
		st := stages[i]
		stageStart := time.Now()

		var err error
		if i == 0 {
			boxes, err = d.scan(src, scales, p.Thresholds[0])
		} else {
			boxes, err = d.score(src, boxes, st, p.Thresholds[i])
		}
		if err != nil {
			return nil, timing, err
		}
		boxes = st.refine(boxes)

		timing.Stages[i] = time.Since(stageStart)
		d.log.WithFields(logrus.Fields{
			"stage":   st.index,
			"boxes":   len(boxes),
			"elapsed": timing.Stages[i],
		}).Debug("stage done")

		if len(boxes) == 0 {
			break
		}
	}
	timing.Total = time.Since(start)
	return boxes, timing, nil
}

// scan runs the first stage over every pyramid level and merges the proposals in
// pyramid order.
func (d *Detector) scan(img *image.NRGBA, scales Pyramid, th float32) (BoxSet, error) {
	levels := make([]BoxSet, len(scales))

	g := new(errgroup.Group)
	g.SetLimit(d.workers)
	for i, scale := range scales {
		i, scale := i, scale
		g.Go(func() error {
			boxes, err := d.scanLevel(img, scale, th)
			if err != nil {
				return err
			}
			levels[i] = boxes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	boxes := BoxSet{}
	for _, level := range levels {
		boxes = append(boxes, level...)
	}
	return boxes, nil
}

func (d *Detector) scanLevel(img *image.NRGBA, scale float64, th float32) (BoxSet, error) {
	b := img.Bounds()
	w := int(math.Ceil(scale * float64(b.Dx())))
	h := int(math.Ceil(scale * float64(b.Dy())))

	in := toTensor([]*image.NRGBA{d.resizer.Resize(img, w, h)}, d.order)
	out, err := d.scorers[0].Score(in)
	if err != nil {
		return nil, fmt.Errorf("%w: stage 1 at scale %.4f: %w", ErrScoring, scale, err)
	}
	if err := out.validate(1, 1); err != nil {
		return nil, err
	}

	boxes := Proposals(out.Prob, out.BBox, out.Landmark, scale, th)
	return NMS(boxes, scaleNMSThresh, Union), nil
}

// score crops every box out of img, scores the patches in a single batch and
// keeps the boxes accepted by the stage network with the values it produced.
func (d *Detector) score(img *image.NRGBA, boxes BoxSet, st stage, th float32) (BoxSet, error) {
	patches := make([]*image.NRGBA, len(boxes))

	g := new(errgroup.Group)
	g.SetLimit(d.workers)
	for i, box := range boxes {
		i, box := i, box
		g.Go(func() error {
			patches[i] = d.resizer.Resize(cropBox(img, box), st.input, st.input)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out, err := d.scorers[st.index-1].Score(toTensor(patches, d.order))
	if err != nil {
		return nil, fmt.Errorf("%w: stage %d: %w", ErrScoring, st.index, err)
	}
	if err := out.validate(st.index, len(boxes)); err != nil {
		return nil, err
	}

	kept := BoxSet{}
	for i, box := range boxes {
		s := out.Prob.At(i, 1, 0, 0)
		if s <= th {
			continue
		}
		box.Score = s
		for c := range box.Reg {
			box.Reg[c] = out.BBox.At(i, c, 0, 0)
		}
		for c := range box.Landmarks {
			box.Landmarks[c] = out.Landmark.At(i, c, 0, 0)
		}
		kept = append(kept, box)
	}
	return kept, nil
}
