package sequence

import (
	"reflect"
	"testing"
)

func TestSMFRoundTrip(t *testing.T) {
	s := New(8)
	s.Add(60, 0, 2)
	s.Add(62, 2, 4)
	s.Add(64, 6, 8)

	data, err := ToSMF(s, DefaultStepsPerQuarter, 120)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 14 || string(data[:4]) != "MThd" {
		t.Fatalf("ToSMF produced invalid MIDI header: % x", data[:4])
	}

	back, err := FromSMF(data, DefaultStepsPerQuarter)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back.SortedByStart(), s.SortedByStart()) {
		t.Errorf("round trip = %v, want %v", back.Notes, s.Notes)
	}
	if back.TotalSteps != 8 {
		t.Errorf("TotalSteps = %d, want 8", back.TotalSteps)
	}
}

func TestToSMFRejectsBadNotes(t *testing.T) {
	tests := []struct {
		name string
		note Note
	}{
		{"pitch above MIDI range", Note{Pitch: 128, StartStep: 0, EndStep: 1}},
		{"negative pitch", Note{Pitch: -1, StartStep: 0, EndStep: 1}},
		{"zero duration", Note{Pitch: 60, StartStep: 2, EndStep: 2}},
		{"negative start", Note{Pitch: 60, StartStep: -1, EndStep: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(4)
			s.Notes = append(s.Notes, tt.note)
			if _, err := ToSMF(s, DefaultStepsPerQuarter, 120); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFromSMFAdjacentNotesDoNotOverlap(t *testing.T) {
	s := New(4)
	s.Add(60, 0, 2)
	s.Add(60, 2, 4)

	data, err := ToSMF(s, DefaultStepsPerQuarter, 120)
	if err != nil {
		t.Fatal(err)
	}
	back, err := FromSMF(data, DefaultStepsPerQuarter)
	if err != nil {
		t.Fatal(err)
	}
	if len(back.Notes) != 2 {
		t.Fatalf("got %d notes, want 2: %v", len(back.Notes), back.Notes)
	}
	sorted := back.SortedByStart()
	if sorted[0].EndStep != 2 || sorted[1].StartStep != 2 {
		t.Errorf("adjacent same-pitch notes merged or overlapped: %v", sorted)
	}
}
