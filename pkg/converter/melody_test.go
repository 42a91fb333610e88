package converter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/james-see/noteroll/pkg/sequence"
	"github.com/james-see/noteroll/pkg/tensor"
)

func intPtr(v int) *int { return &v }

func newTestMelody(t *testing.T, steps, minPitch, maxPitch int) *Melody {
	t.Helper()
	m, err := NewMelody(Config{
		StepCount: steps,
		MinPitch:  intPtr(minPitch),
		MaxPitch:  intPtr(maxPitch),
	})
	require.NoError(t, err)
	return m
}

func TestMelodyEncodeWorkedExample(t *testing.T) {
	m := newTestMelody(t, 4, 60, 61)

	seq := sequence.New(4)
	seq.Add(60, 0, 2)
	seq.Add(61, 2, 4)

	enc, err := m.Encode(seq)
	require.NoError(t, err)

	rows, cols := enc.Dims()
	assert.Equal(t, 4, rows)
	assert.Equal(t, 4, cols)

	labels, err := tensor.ArgmaxRows(context.Background(), enc)
	require.NoError(t, err)
	// step 2 is both the end of the first note and the start of the second;
	// the note-on wins, and the final end at the timeline edge is implicit
	assert.Equal(t, []int{2, 0, 3, 0}, labels)
}

func TestMelodyRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		notes []sequence.Note
	}{
		{"two adjacent notes", []sequence.Note{
			{Pitch: 60, StartStep: 0, EndStep: 2},
			{Pitch: 61, StartStep: 2, EndStep: 4},
		}},
		{"note with trailing rest", []sequence.Note{
			{Pitch: 64, StartStep: 1, EndStep: 3},
		}},
		{"notes separated by rest", []sequence.Note{
			{Pitch: 60, StartStep: 0, EndStep: 2},
			{Pitch: 72, StartStep: 5, EndStep: 7},
		}},
		{"open note at timeline end", []sequence.Note{
			{Pitch: 67, StartStep: 6, EndStep: 8},
		}},
		{"empty sequence", nil},
	}

	m := newTestMelody(t, 8, 60, 72)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := sequence.New(8)
			seq.Notes = append(seq.Notes, tt.notes...)

			enc, err := m.Encode(seq)
			require.NoError(t, err)

			dec, err := m.Decode(context.Background(), enc)
			require.NoError(t, err)
			assert.Equal(t, tt.notes, dec.Notes)
			assert.Equal(t, 8, dec.TotalSteps)
		})
	}
}

func TestMelodyEncodeDoesNotMutateInput(t *testing.T) {
	m := newTestMelody(t, 4, 60, 61)

	seq := sequence.New(4)
	seq.Add(61, 2, 4)
	seq.Add(60, 0, 2)

	_, err := m.Encode(seq)
	require.NoError(t, err)

	// input order preserved even though encode walks in start order
	assert.Equal(t, 61, seq.Notes[0].Pitch)
	assert.Equal(t, 60, seq.Notes[1].Pitch)
}

func TestMelodyNotMonophonic(t *testing.T) {
	m := newTestMelody(t, 8, 60, 72)

	seq := sequence.New(8)
	seq.Add(60, 0, 4)
	seq.Add(62, 2, 6)

	_, err := m.Encode(seq)
	assert.ErrorIs(t, err, ErrNotMonophonic)
}

func TestMelodyPitchOutOfRange(t *testing.T) {
	m := newTestMelody(t, 8, 60, 72)

	for _, pitch := range []int{59, 73} {
		seq := sequence.New(8)
		seq.Add(pitch, 0, 1)
		_, err := m.Encode(seq)
		assert.ErrorIs(t, err, ErrPitchOutOfRange, "pitch %d", pitch)
	}
}

func TestMelodyStepOutOfRange(t *testing.T) {
	m := newTestMelody(t, 4, 60, 72)

	seq := sequence.New(4)
	seq.Add(60, 2, 5)

	_, err := m.Encode(seq)
	assert.ErrorIs(t, err, ErrStepOutOfRange)
}

func TestMelodyDecodeImplicitTermination(t *testing.T) {
	m := newTestMelody(t, 4, 60, 61)

	// note-on at step 0 and no note-off anywhere after it
	enc, err := tensor.OneHot([]int{2, 0, 0, 0}, m.Depth())
	require.NoError(t, err)

	dec, err := m.Decode(context.Background(), enc)
	require.NoError(t, err)
	require.Len(t, dec.Notes, 1)
	assert.Equal(t, sequence.Note{Pitch: 60, StartStep: 0, EndStep: 4}, dec.Notes[0])
}

func TestMelodyDecodeNoteOnClosesOpenNote(t *testing.T) {
	m := newTestMelody(t, 4, 60, 61)

	enc, err := tensor.OneHot([]int{2, 3, 0, 1}, m.Depth())
	require.NoError(t, err)

	dec, err := m.Decode(context.Background(), enc)
	require.NoError(t, err)
	assert.Equal(t, []sequence.Note{
		{Pitch: 60, StartStep: 0, EndStep: 1},
		{Pitch: 61, StartStep: 1, EndStep: 3},
	}, dec.Notes)
}

func TestMelodyDecodeStrayNoteOff(t *testing.T) {
	m := newTestMelody(t, 4, 60, 61)

	// note-off with nothing open is a no-op
	enc, err := tensor.OneHot([]int{1, 0, 2, 1}, m.Depth())
	require.NoError(t, err)

	dec, err := m.Decode(context.Background(), enc)
	require.NoError(t, err)
	assert.Equal(t, []sequence.Note{
		{Pitch: 60, StartStep: 2, EndStep: 3},
	}, dec.Notes)
}

func TestMelodyConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero steps", Config{StepCount: 0, MinPitch: intPtr(60), MaxPitch: intPtr(72)}},
		{"missing minPitch", Config{StepCount: 8, MaxPitch: intPtr(72)}},
		{"missing maxPitch", Config{StepCount: 8, MinPitch: intPtr(60)}},
		{"inverted bounds", Config{StepCount: 8, MinPitch: intPtr(72), MaxPitch: intPtr(60)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMelody(tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidSpec)
		})
	}
}

func TestMelodyDepth(t *testing.T) {
	m := newTestMelody(t, 4, 60, 61)
	assert.Equal(t, 4, m.Depth())
	assert.Equal(t, 4, m.StepCount())
}
