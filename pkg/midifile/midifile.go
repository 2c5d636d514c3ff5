// Package midifile is the boundary to the MIDI bytes codec. It defines
// the parsed track/event structure the conversion layer exchanges with
// gitlab.com/gomidi/midi/v2 and implements Parse and Serialize over it.
// No other package in this module touches MIDI bytes or gomidi types.
package midifile

// MIDI channel assignment for exported tracks.
const (
	// DefaultChannel carries melodic tracks.
	DefaultChannel = 0
	// DrumChannel is the General MIDI percussion channel.
	DrumChannel = 9
)

// Fallbacks used when a File leaves header fields unset.
const (
	DefaultPulsesPerQuarter = 480
	DefaultBeatsPerMinute   = 120.0
)

// TimeSignature is a numerator/denominator pair from the file header.
type TimeSignature struct {
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"`
}

// Header holds file-level timing information. TimeSignature is nil when
// the source file carries no time signature meta event.
type Header struct {
	PulsesPerQuarter int            `json:"pulsesPerQuarter"`
	BeatsPerMinute   float64        `json:"beatsPerMinute"`
	TimeSignature    *TimeSignature `json:"timeSignature,omitempty"`
}

// Note is a single note event with continuous timing. Velocity is
// normalized to [0,1) as byte/128.
type Note struct {
	Time     float64 `json:"time"`     // Seconds from the start of the file
	Duration float64 `json:"duration"` // Seconds
	Pitch    int     `json:"pitch"`    // MIDI note number (0-127)
	Velocity float64 `json:"velocity"` // Normalized [0,1)
}

// Track is one MIDI track's notes plus the track-level attributes the
// conversion layer cares about.
type Track struct {
	Notes             []Note `json:"notes"`
	IsPercussion      bool   `json:"isPercussion"`
	InstrumentProgram int    `json:"instrumentProgram"`
}

// File is the parsed form of a Standard MIDI File, as produced by Parse
// and consumed by Serialize.
type File struct {
	Header Header  `json:"header"`
	Tracks []Track `json:"tracks"`
}
