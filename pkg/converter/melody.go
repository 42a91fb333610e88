package converter

import (
	"context"
	"fmt"

	"github.com/james-see/noteroll/pkg/sequence"
	"github.com/james-see/noteroll/pkg/tensor"
)

// Per-step melody labels. Labels >= labelNoteOn encode a note-on at pitch
// label - labelNoteOn + minPitch.
const (
	labelNoEvent = 0
	labelNoteOff = 1
	labelNoteOn  = 2
)

// Melody converts single-voice sequences. Each step carries one categorical
// label — no event, note off, or note on at a bounded pitch — one-hot
// expanded to depth maxPitch - minPitch + 3.
type Melody struct {
	steps    int
	segments int
	splits   int
	minPitch int
	maxPitch int
}

// NewMelody builds a melody converter. MinPitch and MaxPitch are required
// and inclusive.
func NewMelody(cfg Config) (*Melody, error) {
	if cfg.StepCount <= 0 {
		return nil, fmt.Errorf("%w: stepCount must be positive, got %d", ErrInvalidSpec, cfg.StepCount)
	}
	if cfg.MinPitch == nil || cfg.MaxPitch == nil {
		return nil, fmt.Errorf("%w: melody converter needs minPitch and maxPitch", ErrInvalidSpec)
	}
	if *cfg.MaxPitch < *cfg.MinPitch {
		return nil, fmt.Errorf("%w: maxPitch %d below minPitch %d", ErrInvalidSpec, *cfg.MaxPitch, *cfg.MinPitch)
	}
	return &Melody{
		steps:    cfg.StepCount,
		segments: cfg.SegmentCount,
		splits:   cfg.SplitCount,
		minPitch: *cfg.MinPitch,
		maxPitch: *cfg.MaxPitch,
	}, nil
}

func (m *Melody) StepCount() int    { return m.steps }
func (m *Melody) SegmentCount() int { return m.segments }
func (m *Melody) SplitCount() int   { return m.splits }

// Depth is the label count: no-event, note-off, and one label per pitch in
// [minPitch, maxPitch].
func (m *Melody) Depth() int { return m.maxPitch - m.minPitch + 3 }

// MinPitch returns the inclusive lower pitch bound.
func (m *Melody) MinPitch() int { return m.minPitch }

// MaxPitch returns the inclusive upper pitch bound.
func (m *Melody) MaxPitch() int { return m.maxPitch }

// Encode writes a note-on label at each note's start step and a note-off
// label at its end step, then one-hot expands. Input notes are walked in
// start order on a copy; the sequence itself is not mutated. Overlapping
// notes fail with ErrNotMonophonic, pitches outside the bounds with
// ErrPitchOutOfRange. An end step equal to stepCount is legal: the note-off
// is implicit in the timeline edge.
func (m *Melody) Encode(seq *sequence.NoteSequence) (*tensor.Dense, error) {
	labels := make([]int, m.steps)
	lastEnd := -1
	for _, n := range seq.SortedByStart() {
		if n.StartStep < lastEnd {
			return nil, fmt.Errorf("%w: note at step %d starts before step %d", ErrNotMonophonic, n.StartStep, lastEnd)
		}
		if n.Pitch < m.minPitch || n.Pitch > m.maxPitch {
			return nil, fmt.Errorf("%w: pitch %d not in [%d,%d]", ErrPitchOutOfRange, n.Pitch, m.minPitch, m.maxPitch)
		}
		if n.StartStep < 0 || n.StartStep >= m.steps || n.EndStep > m.steps || n.EndStep <= n.StartStep {
			return nil, fmt.Errorf("%w: note [%d,%d), timeline [0,%d)", ErrStepOutOfRange, n.StartStep, n.EndStep, m.steps)
		}
		labels[n.StartStep] = n.Pitch - m.minPitch + labelNoteOn
		if n.EndStep < m.steps {
			labels[n.EndStep] = labelNoteOff
		}
		lastEnd = n.EndStep
	}
	return tensor.OneHot(labels, m.Depth())
}

// Decode argmaxes each row into a label and reconstructs note boundaries in
// a single left-to-right scan. A note-on while a note is open implicitly
// closes the open note; a note still open after the last step closes at
// stepCount.
func (m *Melody) Decode(ctx context.Context, t tensor.Tensor) (*sequence.NoteSequence, error) {
	labels, err := tensor.ArgmaxRows(ctx, t)
	if err != nil {
		return nil, err
	}

	out := sequence.New(m.steps)
	openPitch, openStart := 0, 0
	open := false
	for step, label := range labels {
		switch {
		case label == labelNoEvent:
			// hold or rest
		case label == labelNoteOff:
			if open {
				out.Add(openPitch, openStart, step)
				open = false
			}
		default:
			if open {
				out.Add(openPitch, openStart, step)
			}
			openPitch = label - labelNoteOn + m.minPitch
			openStart = step
			open = true
		}
	}
	if open {
		out.Add(openPitch, openStart, len(labels))
	}
	return out, nil
}
