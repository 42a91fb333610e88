// Package converter provides conversion between quantized note sequences
// and the fixed-shape tensors consumed and produced by generative sequence
// models.
package converter

import (
	"context"
	"errors"

	"github.com/james-see/noteroll/pkg/sequence"
	"github.com/james-see/noteroll/pkg/tensor"
)

// Validation failures raised by converters and the factory. All signal
// caller misuse (bad input data or bad configuration) and are never
// retryable.
var (
	// ErrUnknownPitch means an encoded pitch was not registered in any
	// pitch class.
	ErrUnknownPitch = errors.New("pitch not in any pitch class")

	// ErrNotMonophonic means overlapping notes were fed to the melody
	// encoder.
	ErrNotMonophonic = errors.New("sequence is not monophonic")

	// ErrPitchOutOfRange means a pitch fell outside the melody converter's
	// configured [minPitch, maxPitch] bounds.
	ErrPitchOutOfRange = errors.New("pitch outside configured range")

	// ErrStepOutOfRange means a note lay outside [0, stepCount) on the
	// converter's timeline.
	ErrStepOutOfRange = errors.New("step outside timeline")

	// ErrUnknownKind means the factory was given an unrecognized converter
	// kind.
	ErrUnknownKind = errors.New("unknown converter kind")

	// ErrInvalidSpec means a converter spec was malformed or incomplete.
	ErrInvalidSpec = errors.New("invalid converter spec")
)

// Converter encodes note sequences into model tensors and decodes model
// output tensors back into note sequences. Implementations are immutable
// after construction and safe for concurrent use.
//
// Decode performs a single blocking fetch of the tensor's host data; it
// either returns a complete sequence or fails without partial results.
type Converter interface {
	Encode(seq *sequence.NoteSequence) (*tensor.Dense, error)
	Decode(ctx context.Context, t tensor.Tensor) (*sequence.NoteSequence, error)

	// StepCount is the fixed timeline length in quantized steps.
	StepCount() int
	// SegmentCount is a pass-through segmentation hint, 0 if unset.
	SegmentCount() int
	// SplitCount is a pass-through grouping hint, 0 if unset.
	SplitCount() int
	// Depth is the width of the model-facing categorical tensor.
	Depth() int
}

// Config is the argument bundle understood by the factory. MinPitch and
// MaxPitch are pointers so a missing bound is distinguishable from 0.
type Config struct {
	StepCount    int     `json:"stepCount"`
	SegmentCount int     `json:"segmentCount,omitempty"`
	SplitCount   int     `json:"splitCount,omitempty"`
	PitchClasses [][]int `json:"pitchClasses,omitempty"`
	MinPitch     *int    `json:"minPitch,omitempty"`
	MaxPitch     *int    `json:"maxPitch,omitempty"`
}
