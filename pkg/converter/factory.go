package converter

import (
	"encoding/json"
	"fmt"
)

// Kind names a converter family. The set is closed: the factory matches
// exhaustively and rejects anything else.
type Kind string

const (
	// KindDrums decodes one-hot labels over the class power set.
	KindDrums Kind = "drums"
	// KindDrumRoll decodes the raw multi-hot roll directly.
	KindDrumRoll Kind = "drum_roll"
	// KindMelody is the monophonic categorical converter.
	KindMelody Kind = "melody"
)

// Kinds lists the recognized converter kinds.
func Kinds() []Kind {
	return []Kind{KindDrums, KindDrumRoll, KindMelody}
}

// Spec is a named converter specification plus its argument bundle, the form
// the CLI and API feed the factory.
type Spec struct {
	Kind Kind   `json:"kind"`
	Args Config `json:"args"`
}

// ParseSpec decodes a JSON spec.
func ParseSpec(data []byte) (Spec, error) {
	var spec Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return Spec{}, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	return spec, nil
}

// New builds the converter a spec describes, or fails with ErrUnknownKind
// for an unrecognized kind and ErrInvalidSpec for bad arguments.
func New(spec Spec) (Converter, error) {
	var (
		conv Converter
		err  error
	)
	switch spec.Kind {
	case KindDrums:
		conv, err = NewDrums(spec.Args)
	case KindDrumRoll:
		conv, err = NewDrumRoll(spec.Args)
	case KindMelody:
		conv, err = NewMelody(spec.Args)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, spec.Kind)
	}
	if err != nil {
		return nil, err
	}
	return conv, nil
}
