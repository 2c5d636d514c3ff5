package midifile

import (
	"math"
	"testing"
)

func TestSerializeNilFile(t *testing.T) {
	if _, err := Serialize(nil); err == nil {
		t.Fatal("Serialize(nil) should return an error")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("not a midi file")); err == nil {
		t.Fatal("Parse should reject non-MIDI bytes")
	}
}

func TestSerializeParseRoundTrip(t *testing.T) {
	original := &File{
		Header: Header{
			PulsesPerQuarter: 220,
			BeatsPerMinute:   120,
			TimeSignature:    &TimeSignature{Numerator: 3, Denominator: 4},
		},
		Tracks: []Track{
			{
				InstrumentProgram: 5,
				Notes: []Note{
					{Time: 0, Duration: 0.5, Pitch: 60, Velocity: 0.8},
					{Time: 0.5, Duration: 0.25, Pitch: 64, Velocity: 0.5},
				},
			},
			{
				IsPercussion: true,
				Notes: []Note{
					{Time: 0, Duration: 0.25, Pitch: 38, Velocity: 0.75},
				},
			},
		},
	}

	data, err := Serialize(original)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}

	parsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if parsed.Header.PulsesPerQuarter != 220 {
		t.Errorf("PulsesPerQuarter = %d, want 220", parsed.Header.PulsesPerQuarter)
	}
	if math.Abs(parsed.Header.BeatsPerMinute-120) > 0.01 {
		t.Errorf("BeatsPerMinute = %v, want 120", parsed.Header.BeatsPerMinute)
	}
	if parsed.Header.TimeSignature == nil {
		t.Fatal("TimeSignature missing after round trip")
	}
	if parsed.Header.TimeSignature.Numerator != 3 || parsed.Header.TimeSignature.Denominator != 4 {
		t.Errorf("TimeSignature = %d/%d, want 3/4",
			parsed.Header.TimeSignature.Numerator, parsed.Header.TimeSignature.Denominator)
	}

	// SMF1 output carries a conductor track with no notes; the note
	// tracks follow it.
	var noteTracks []Track
	for _, tr := range parsed.Tracks {
		if len(tr.Notes) > 0 {
			noteTracks = append(noteTracks, tr)
		}
	}
	if len(noteTracks) != 2 {
		t.Fatalf("note tracks = %d, want 2", len(noteTracks))
	}

	melodic := noteTracks[0]
	if melodic.IsPercussion {
		t.Error("melodic track flagged as percussion")
	}
	if melodic.InstrumentProgram != 5 {
		t.Errorf("InstrumentProgram = %d, want 5", melodic.InstrumentProgram)
	}
	if len(melodic.Notes) != 2 {
		t.Fatalf("melodic notes = %d, want 2", len(melodic.Notes))
	}
	for i, want := range original.Tracks[0].Notes {
		got := melodic.Notes[i]
		if got.Pitch != want.Pitch {
			t.Errorf("note %d pitch = %d, want %d", i, got.Pitch, want.Pitch)
		}
		if math.Abs(got.Time-want.Time) > 0.001 {
			t.Errorf("note %d time = %v, want %v", i, got.Time, want.Time)
		}
		if math.Abs(got.Duration-want.Duration) > 0.001 {
			t.Errorf("note %d duration = %v, want %v", i, got.Duration, want.Duration)
		}
		// Velocity survives within one 1/128 quantization level.
		if math.Abs(got.Velocity-want.Velocity) > 1.0/128 {
			t.Errorf("note %d velocity = %v, want %v ± 1/128", i, got.Velocity, want.Velocity)
		}
	}

	drums := noteTracks[1]
	if !drums.IsPercussion {
		t.Error("drum track lost its percussion flag")
	}
	if len(drums.Notes) != 1 || drums.Notes[0].Pitch != 38 {
		t.Errorf("drum notes = %+v, want one note at pitch 38", drums.Notes)
	}
}

func TestVelocityByte(t *testing.T) {
	tests := []struct {
		name     string
		velocity float64
		expected uint8
	}{
		{"zero clamps to one", 0, 1},
		{"mid scale", 0.5, 64},
		{"four fifths", 0.8, 102},
		{"full scale clamps to 127", 1.0, 127},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := velocityByte(tt.velocity); got != tt.expected {
				t.Errorf("velocityByte(%v) = %d, want %d", tt.velocity, got, tt.expected)
			}
		})
	}
}
