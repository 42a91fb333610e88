// Package sequence provides the quantized note-sequence type consumed and
// produced by the noteroll converters.
package sequence

import "sort"

// Note is a single quantized note event. StartStep is inclusive, EndStep
// exclusive; both are measured in quantized steps.
type Note struct {
	Pitch     int `json:"pitch"`
	StartStep int `json:"startStep"`
	EndStep   int `json:"endStep"`
}

// NoteSequence is an ordered, mutable collection of note events on a
// fixed-length quantized timeline.
type NoteSequence struct {
	Notes      []Note `json:"notes"`
	TotalSteps int    `json:"totalSteps"`
}

// New creates an empty sequence spanning totalSteps quantized steps.
func New(totalSteps int) *NoteSequence {
	return &NoteSequence{TotalSteps: totalSteps}
}

// Add appends a note event to the sequence.
func (s *NoteSequence) Add(pitch, startStep, endStep int) {
	s.Notes = append(s.Notes, Note{Pitch: pitch, StartStep: startStep, EndStep: endStep})
}

// SortedByStart returns a copy of the notes ordered by ascending start step.
// The receiver is left untouched.
func (s *NoteSequence) SortedByStart() []Note {
	notes := make([]Note, len(s.Notes))
	copy(notes, s.Notes)
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].StartStep < notes[j].StartStep
	})
	return notes
}
