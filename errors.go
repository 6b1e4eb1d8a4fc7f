package jfda

import "errors"

var (
	// ErrConfig reports an invalid detector configuration or detection parameters.
	// It is always returned before any scoring call is made.
	ErrConfig = errors.New("invalid configuration")

	// ErrScoring reports a failing scorer or a scorer output with an unexpected shape.
	ErrScoring = errors.New("scoring failure")

	// ErrDecode reports a source which is not a supported image.
	ErrDecode = errors.New("could not decode the source image")
)
