package sequence

import (
	"bytes"
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// DefaultStepsPerQuarter is the quantization grid used when none is given:
// sixteenth notes in 4/4.
const DefaultStepsPerQuarter = 4

const defaultTicksPerQuarter = 480

// FromSMF parses a Standard MIDI File and quantizes its notes onto a step
// grid of stepsPerQuarter steps per quarter note. Note-on/note-off pairs are
// matched per pitch; an unmatched note-on is dropped. TotalSteps is set to
// the end step of the last note.
func FromSMF(data []byte, stepsPerQuarter int) (*NoteSequence, error) {
	if stepsPerQuarter <= 0 {
		stepsPerQuarter = DefaultStepsPerQuarter
	}

	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	resolution := int64(defaultTicksPerQuarter)
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		resolution = int64(mt.Resolution())
	}
	ticksPerStep := resolution / int64(stepsPerQuarter)
	if ticksPerStep <= 0 {
		ticksPerStep = 1
	}

	seq := New(0)
	for _, track := range s.Tracks {
		var absTicks int64
		// tick at which each currently sounding pitch started
		pending := make(map[uint8]int64)
		for _, ev := range track {
			absTicks += int64(ev.Delta)
			var channel, key, velocity uint8
			switch {
			case ev.Message.GetNoteStart(&channel, &key, &velocity):
				pending[key] = absTicks
			case ev.Message.GetNoteEnd(&channel, &key):
				onTick, ok := pending[key]
				if !ok {
					continue
				}
				delete(pending, key)
				start := quantize(onTick, ticksPerStep)
				end := quantize(absTicks, ticksPerStep)
				if end <= start {
					end = start + 1
				}
				seq.Add(int(key), start, end)
			}
		}
	}

	for _, n := range seq.Notes {
		if n.EndStep > seq.TotalSteps {
			seq.TotalSteps = n.EndStep
		}
	}
	return seq, nil
}

// quantize rounds an absolute tick to the nearest step boundary.
func quantize(tick, ticksPerStep int64) int {
	return int((tick + ticksPerStep/2) / ticksPerStep)
}

// ToSMF renders the sequence as a single-track Standard MIDI File on the
// given step grid at the given tempo. Channel 0, fixed velocity.
func ToSMF(seq *NoteSequence, stepsPerQuarter int, tempo float64) ([]byte, error) {
	if seq == nil {
		return nil, fmt.Errorf("nil sequence")
	}
	if stepsPerQuarter <= 0 {
		stepsPerQuarter = DefaultStepsPerQuarter
	}
	if tempo <= 0 {
		tempo = 120.0
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(defaultTicksPerQuarter)
	ticksPerStep := uint32(defaultTicksPerQuarter / stepsPerQuarter)

	var track smf.Track

	// tempo meta event (FF 51 03)
	microsPerBeat := uint32(60000000.0 / tempo)
	track.Add(0, smf.Message([]byte{
		0xFF, 0x51, 0x03,
		byte(microsPerBeat >> 16),
		byte(microsPerBeat >> 8),
		byte(microsPerBeat),
	}))

	type wireEvent struct {
		tick uint32
		on   bool
		key  uint8
	}
	var events []wireEvent
	for _, n := range seq.Notes {
		if n.Pitch < 0 || n.Pitch > 127 || n.EndStep <= n.StartStep || n.StartStep < 0 {
			return nil, fmt.Errorf("note out of MIDI range: pitch %d steps [%d,%d)", n.Pitch, n.StartStep, n.EndStep)
		}
		events = append(events, wireEvent{tick: uint32(n.StartStep) * ticksPerStep, on: true, key: uint8(n.Pitch)})
		events = append(events, wireEvent{tick: uint32(n.EndStep) * ticksPerStep, on: false, key: uint8(n.Pitch)})
	}
	// note-offs first at equal ticks so back-to-back notes never overlap
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return !events[i].on && events[j].on
	})

	var currentTick uint32
	for _, ev := range events {
		delta := ev.tick - currentTick
		currentTick = ev.tick
		if ev.on {
			track.Add(delta, midi.NoteOn(0, ev.key, 100))
		} else {
			track.Add(delta, midi.NoteOff(0, ev.key))
		}
	}
	track.Close(0)

	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}
