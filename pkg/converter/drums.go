package converter

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/james-see/noteroll/pkg/sequence"
	"github.com/james-see/noteroll/pkg/tensor"
)

// Drums converts polyphonic percussion sequences. Encode produces a
// multi-hot roll of shape [stepCount, numClasses+1] whose final column is 1
// exactly when no class is active at that step. Decode expects the model
// output form: a one-hot over the 2^numClasses power set of class
// combinations, one label per step.
type Drums struct {
	steps    int
	segments int
	splits   int
	table    *PitchClassTable
}

// NewDrums builds a drum converter. A nil PitchClasses config falls back to
// the built-in nine-class percussion grouping.
func NewDrums(cfg Config) (*Drums, error) {
	if cfg.StepCount <= 0 {
		return nil, fmt.Errorf("%w: stepCount must be positive, got %d", ErrInvalidSpec, cfg.StepCount)
	}
	classes := cfg.PitchClasses
	if classes == nil {
		classes = defaultDrumClasses
	}
	table, err := NewPitchClassTable(classes)
	if err != nil {
		return nil, err
	}
	return &Drums{
		steps:    cfg.StepCount,
		segments: cfg.SegmentCount,
		splits:   cfg.SplitCount,
		table:    table,
	}, nil
}

func (d *Drums) StepCount() int    { return d.steps }
func (d *Drums) SegmentCount() int { return d.segments }
func (d *Drums) SplitCount() int   { return d.splits }

// Depth is the power-set width of the categorical decode input.
func (d *Drums) Depth() int { return 1 << d.table.NumClasses() }

// Table returns the converter's pitch-class table.
func (d *Drums) Table() *PitchClassTable { return d.table }

// Encode builds the multi-hot roll. Notes at the same step with different
// classes set their cells independently; a pitch outside the table fails
// with ErrUnknownPitch, a start step off the timeline with
// ErrStepOutOfRange.
func (d *Drums) Encode(seq *sequence.NoteSequence) (*tensor.Dense, error) {
	norCol := d.table.NumClasses()
	out := tensor.NewDense(d.steps, norCol+1)
	for step := 0; step < d.steps; step++ {
		out.Set(step, norCol, 1)
	}
	for _, n := range seq.Notes {
		if n.StartStep < 0 || n.StartStep >= d.steps {
			return nil, fmt.Errorf("%w: note at step %d, timeline [0,%d)", ErrStepOutOfRange, n.StartStep, d.steps)
		}
		class, err := d.table.Classify(n.Pitch)
		if err != nil {
			return nil, err
		}
		out.Set(n.StartStep, class, 1)
		out.Set(n.StartStep, norCol, 0)
	}
	return out, nil
}

// Decode reads a one-hot tensor over the class power set. Each row's argmax
// label is a bitmask over classes, least-significant bit = class 0; every
// set bit emits a unit-duration note at that class's canonical pitch.
func (d *Drums) Decode(ctx context.Context, t tensor.Tensor) (*sequence.NoteSequence, error) {
	labels, err := tensor.ArgmaxRows(ctx, t)
	if err != nil {
		return nil, err
	}
	out := sequence.New(d.steps)
	numClasses := d.table.NumClasses()
	for step, label := range labels {
		for class := 0; class < numClasses; class++ {
			if label&(1<<class) != 0 {
				out.Add(d.table.CanonicalPitch(class), step, step+1)
			}
		}
	}
	return out, nil
}

// DrumRoll shares the Drums encoding but decodes the raw multi-hot roll
// directly — the same [stepCount, numClasses+1] shape Encode produces — with
// no power-set arithmetic. The trailing no-hit column is ignored.
type DrumRoll struct {
	Drums
}

// NewDrumRoll builds a raw-roll drum converter.
func NewDrumRoll(cfg Config) (*DrumRoll, error) {
	d, err := NewDrums(cfg)
	if err != nil {
		return nil, err
	}
	return &DrumRoll{Drums: *d}, nil
}

// Depth is the roll width, including the no-hit column.
func (d *DrumRoll) Depth() int { return d.table.NumClasses() + 1 }

// Decode emits one unit-duration note per active cell per row. Cells are
// treated as active above 0.5, so near-boolean model output decodes the same
// as an exact roll.
func (d *DrumRoll) Decode(ctx context.Context, t tensor.Tensor) (*sequence.NoteSequence, error) {
	m, err := t.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	rows, cols := m.Dims()
	numClasses := d.table.NumClasses()
	if cols < numClasses {
		return nil, fmt.Errorf("roll tensor has %d columns, need at least %d", cols, numClasses)
	}

	out := sequence.New(d.steps)
	row := make([]float64, cols)
	for step := 0; step < rows; step++ {
		mat.Row(row, step, m)
		for class := 0; class < numClasses; class++ {
			if row[class] > 0.5 {
				out.Add(d.table.CanonicalPitch(class), step, step+1)
			}
		}
	}
	return out, nil
}
