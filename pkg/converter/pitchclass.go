package converter

import "fmt"

// defaultDrumClasses groups General MIDI percussion pitches into nine
// voices: bass drum, snare, closed hi-hat, open hi-hat, low tom, mid tom,
// high tom, crash, ride.
var defaultDrumClasses = [][]int{
	{36, 35},
	{38, 27, 28, 31, 32, 33, 34, 37, 39, 40, 56, 65, 66, 75, 85},
	{42, 44, 54, 68, 69, 70, 71, 73, 78, 80},
	{46, 67, 72, 74, 79, 81},
	{45, 29, 41, 61, 64, 84},
	{48, 47, 60, 63, 77, 86, 87},
	{50, 30, 43, 62, 76, 83},
	{49, 55, 57, 58},
	{51, 52, 53, 59, 82},
}

// DefaultDrumClasses returns a copy of the built-in nine-class percussion
// grouping.
func DefaultDrumClasses() [][]int {
	classes := make([][]int, len(defaultDrumClasses))
	for i, c := range defaultDrumClasses {
		classes[i] = append([]int(nil), c...)
	}
	return classes
}

// PitchClassTable maps raw pitches to class indices and back. The reverse
// map is built once at construction; the table is immutable afterwards. The
// first pitch of each class is its canonical pitch: decoding collapses every
// member of a class onto it.
type PitchClassTable struct {
	classes [][]int
	index   map[int]int
}

// NewPitchClassTable builds a table from an ordered list of classes. Every
// class must be non-empty; a pitch appearing in more than one class belongs
// to the first.
func NewPitchClassTable(classes [][]int) (*PitchClassTable, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("%w: no pitch classes", ErrInvalidSpec)
	}
	t := &PitchClassTable{
		classes: make([][]int, len(classes)),
		index:   make(map[int]int),
	}
	for i, class := range classes {
		if len(class) == 0 {
			return nil, fmt.Errorf("%w: pitch class %d is empty", ErrInvalidSpec, i)
		}
		t.classes[i] = append([]int(nil), class...)
		for _, pitch := range class {
			if _, ok := t.index[pitch]; !ok {
				t.index[pitch] = i
			}
		}
	}
	return t, nil
}

// NumClasses returns the number of classes in the table.
func (t *PitchClassTable) NumClasses() int { return len(t.classes) }

// Classify returns the class index of a raw pitch, or ErrUnknownPitch if the
// pitch was not registered at construction time.
func (t *PitchClassTable) Classify(pitch int) (int, error) {
	class, ok := t.index[pitch]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownPitch, pitch)
	}
	return class, nil
}

// CanonicalPitch returns the pitch emitted for a class on decode: the first
// entry of the class's list. The class index must be in [0, NumClasses).
func (t *PitchClassTable) CanonicalPitch(class int) int {
	return t.classes[class][0]
}
