package jfda

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Params are the per call detection settings.
type Params struct {
	// Thresholds holds the minimum face probability accepted by each stage.
	Thresholds [MaxStages]float32 `json:"thresholds" validate:"dive,gte=0,lte=1"`
	// MinFaceSize is the side in pixels of the smallest face searched for.
	MinFaceSize float64 `json:"min_size" validate:"gt=0"`
	// Factor is the ratio between two consecutive pyramid scales.
	Factor float64 `json:"factor" validate:"gt=0,lt=1"`
}

// DefaultParams returns the settings the reference networks were tuned with.
func DefaultParams() Params {
	return Params{
		Thresholds:  [MaxStages]float32{0.6, 0.7, 0.8},
		MinFaceSize: 24,
		Factor:      0.709,
	}
}

var paramValidator = validator.New()

// Validate reports whether the parameters are usable. The error wraps ErrConfig.
func (p Params) Validate() error {
	if err := paramValidator.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return nil
}

// ParseThresholds parses a comma separated list of up to MaxStages stage thresholds.
// Stages left unspecified keep the value they have in def.
func ParseThresholds(s string, def [MaxStages]float32) ([MaxStages]float32, error) {
	th := def
	if strings.TrimSpace(s) == "" {
		return th, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) > MaxStages {
		return th, fmt.Errorf("%w: %d thresholds given, at most %d stages exist", ErrConfig, len(parts), MaxStages)
	}
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return th, fmt.Errorf("%w: invalid threshold %q: %w", ErrConfig, part, err)
		}
		th[i] = float32(v)
	}
	return th, nil
}
