package jfda

import "fmt"

// NewFromNets loads the stage networks and returns a detector running them.
// nets lists a definition followed by its weights for each stage, so it must hold
// 2, 4 or 6 entries for a one, two or three stage cascade.
func NewFromNets(nets []string, load NetLoader, opts ...Option) (*Detector, error) {
	switch len(nets) {
	case 2, 4, 6:
	default:
		return nil, fmt.Errorf("%w: got %d network files, expected 2, 4 or 6", ErrConfig, len(nets))
	}
	if load == nil {
		return nil, fmt.Errorf("%w: no network loader", ErrConfig)
	}

	scorers := make([]Scorer, 0, len(nets)/2)
	for i := 0; i < len(nets); i += 2 {
		s, err := load(nets[i], nets[i+1])
		if err != nil {
			return nil, fmt.Errorf("%w: loading stage %d network %q: %w", ErrConfig, i/2+1, nets[i], err)
		}
		scorers = append(scorers, s)
	}
	return New(scorers, opts...)
}
