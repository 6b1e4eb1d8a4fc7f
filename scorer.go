package jfda

import "fmt"

// Scorer runs one stage network over a batch of normalised images.
//
// The input is a [N,3,H,W] tensor with values (p-128)/128. For the first stage N is 1
// and H, W are the size of the resized image; the outputs are the face probability map
// [1,2,h,w], the box offsets [1,4,h,w] and the landmark offsets [1,10,h,w]. For the
// later stages H = W = RNetInput or ONetInput and the outputs are [N,2], [N,4] and
// [N,10], stored with H = W = 1. Channel 1 of Prob is the face probability.
//
// Implementations are expected to be stateless; the detector may call Score
// from several goroutines during the first stage.
type Scorer interface {
	Score(in *Tensor) (*Output, error)
}

// ScorerFunc adapts an ordinary function to the Scorer interface.
type ScorerFunc func(in *Tensor) (*Output, error)

// Score calls f(in).
func (f ScorerFunc) Score(in *Tensor) (*Output, error) {
	return f(in)
}

// Output holds the three tensors produced by a stage network.
type Output struct {
	Prob     *Tensor
	BBox     *Tensor
	Landmark *Tensor
}

// NetLoader builds a Scorer from a network definition and its weights.
type NetLoader func(definition, weights string) (Scorer, error)

// validate checks the output against the shape the given stage expects for n inputs.
func (o *Output) validate(stage, n int) error {
	if o == nil || !o.Prob.valid() || !o.BBox.valid() || !o.Landmark.valid() {
		return fmt.Errorf("%w: stage %d returned an incomplete output", ErrScoring, stage)
	}

	check := func(name string, t *Tensor, c int) error {
		ok := t.N == n && t.C == c
		if stage > 1 {
			ok = ok && t.H == 1 && t.W == 1
		} else {
			ok = ok && t.H == o.Prob.H && t.W == o.Prob.W
		}
		if !ok {
			return fmt.Errorf("%w: stage %d %s has shape %v, expected %d items with %d channels",
				ErrScoring, stage, name, t, n, c)
		}
		return nil
	}
	if err := check("prob", o.Prob, 2); err != nil {
		return err
	}
	if err := check("bbox_pred", o.BBox, 4); err != nil {
		return err
	}
	return check("landmark_pred", o.Landmark, 10)
}
