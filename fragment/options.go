// Package fragment decides whether a short text was reassembled from pieces of a longer one.
//
// Two strategies are provided. QuickChecker probes the edges and the middle of the shorter
// text with a handful of substring lookups. FullScanChecker walks the shorter text and counts
// long contiguous spans that also occur in the longer text. Both are pure functions of their
// configuration and inputs and are safe for concurrent use.
package fragment

import (
	"errors"
	"fmt"
)

// Default probe configuration.
const (
	DefaultSampleLengthRatio = 0.2
	DefaultMinSampleLength   = 30
	DefaultMaxSampleLength   = 150
)

var ErrInvalidOptions = errors.New("invalid fragment options")

// Options controls the probe window used by QuickChecker.
type Options struct {
	// SampleLengthRatio scales the probe window with the length of the shorter text.
	SampleLengthRatio float64 `json:"sample_length_ratio"`
	// MinSampleLength is the floor on the probe width, in characters.
	MinSampleLength int `json:"min_sample_length"`
	// MaxSampleLength is the ceiling on the probe width, in characters.
	MaxSampleLength int `json:"max_sample_length"`
}

// DefaultOptions returns 0.2 / 30 / 150.
func DefaultOptions() Options {
	return Options{
		SampleLengthRatio: DefaultSampleLengthRatio,
		MinSampleLength:   DefaultMinSampleLength,
		MaxSampleLength:   DefaultMaxSampleLength,
	}
}

// Validate reports configurations whose behaviour is not meaningful. The checkers never call
// it; it is there for config loaders and request handlers that prefer to reject them.
func (o Options) Validate() error {
	if o.SampleLengthRatio <= 0 {
		return fmt.Errorf("%w: sample_length_ratio must be > 0, got %v", ErrInvalidOptions, o.SampleLengthRatio)
	}
	if o.MinSampleLength <= 0 {
		return fmt.Errorf("%w: min_sample_length must be > 0, got %d", ErrInvalidOptions, o.MinSampleLength)
	}
	if o.MinSampleLength > o.MaxSampleLength {
		return fmt.Errorf("%w: min_sample_length %d exceeds max_sample_length %d",
			ErrInvalidOptions, o.MinSampleLength, o.MaxSampleLength)
	}
	return nil
}

// Override adjusts a copy of Options for a single checker or a single call.
type Override func(*Options)

// WithSampleLengthRatio sets the probe proportionality.
func WithSampleLengthRatio(ratio float64) Override {
	return func(o *Options) {
		o.SampleLengthRatio = ratio
	}
}

// WithMinSampleLength sets the probe floor.
func WithMinSampleLength(n int) Override {
	return func(o *Options) {
		o.MinSampleLength = n
	}
}

// WithMaxSampleLength sets the probe ceiling.
func WithMaxSampleLength(n int) Override {
	return func(o *Options) {
		o.MaxSampleLength = n
	}
}

// WithOptions replaces every field at once.
func WithOptions(opts Options) Override {
	return func(o *Options) {
		*o = opts
	}
}

func (o Options) with(overrides ...Override) Options {
	for _, override := range overrides {
		if override != nil {
			override(&o)
		}
	}
	return o
}
