// Package sequence defines the NoteSequence document, the canonical
// symbolic-music representation exchanged between the MIDI conversion
// layer, the pianoroll codec and the generative model.
package sequence

import "sort"

// Defaults applied when a NoteSequence leaves fields unset.
const (
	// DefaultTicksPerQuarter is the assumed MIDI pulse resolution.
	DefaultTicksPerQuarter = 220
	// DefaultQPM is the assumed tempo in quarter notes per minute.
	DefaultQPM = 120.0
	// DefaultVelocity substitutes for notes without a velocity.
	DefaultVelocity = 80
	// DefaultProgram substitutes for notes without a program.
	DefaultProgram = 0
	// VelocitySteps is the number of quantization levels used when
	// converting between integer and normalized velocities.
	VelocitySteps = 128
)

// Tempo is a tempo change at a point in time.
type Tempo struct {
	Time float64 `json:"time"` // Seconds
	QPM  float64 `json:"qpm"`  // Quarter notes per minute
}

// TimeSignature is a meter change at a point in time.
type TimeSignature struct {
	Time        float64 `json:"time"` // Seconds
	Numerator   int     `json:"numerator"`
	Denominator int     `json:"denominator"`
}

// Note is a single sounding note. StartTime/EndTime carry continuous
// time in seconds; QuantizedStartStep/QuantizedEndStep carry grid time
// and are only meaningful after quantization.
type Note struct {
	Pitch              int     `json:"pitch"`      // MIDI note number (0-127)
	Velocity           int     `json:"velocity"`   // 0-127
	Instrument         int     `json:"instrument"` // Track grouping, >= 0
	Program            int     `json:"program"`    // General MIDI program
	StartTime          float64 `json:"startTime"`
	EndTime            float64 `json:"endTime"`
	IsDrum             bool    `json:"isDrum"`
	QuantizedStartStep int     `json:"quantizedStartStep,omitempty"`
	QuantizedEndStep   int     `json:"quantizedEndStep,omitempty"`
}

// SourceInfo records where a NoteSequence came from. Informational
// only; nothing validates it.
type SourceInfo struct {
	Parser       string `json:"parser,omitempty"`
	EncodingType string `json:"encodingType,omitempty"`
}

// NoteSequence is the canonical symbolic-music document.
type NoteSequence struct {
	TicksPerQuarter     int             `json:"ticksPerQuarter,omitempty"`
	Tempos              []Tempo         `json:"tempos,omitempty"`
	TimeSignatures      []TimeSignature `json:"timeSignatures,omitempty"`
	Notes               []Note          `json:"notes,omitempty"`
	TotalTime           float64         `json:"totalTime,omitempty"` // Seconds
	TotalQuantizedSteps int             `json:"totalQuantizedSteps,omitempty"`
	SourceInfo          *SourceInfo     `json:"sourceInfo,omitempty"`
}

// Clone returns a deep copy of the sequence. Converters operate on
// clones so a caller's document is never mutated.
func (ns *NoteSequence) Clone() *NoteSequence {
	out := &NoteSequence{
		TicksPerQuarter:     ns.TicksPerQuarter,
		TotalTime:           ns.TotalTime,
		TotalQuantizedSteps: ns.TotalQuantizedSteps,
	}
	if len(ns.Tempos) > 0 {
		out.Tempos = make([]Tempo, len(ns.Tempos))
		copy(out.Tempos, ns.Tempos)
	}
	if len(ns.TimeSignatures) > 0 {
		out.TimeSignatures = make([]TimeSignature, len(ns.TimeSignatures))
		copy(out.TimeSignatures, ns.TimeSignatures)
	}
	if len(ns.Notes) > 0 {
		out.Notes = make([]Note, len(ns.Notes))
		copy(out.Notes, ns.Notes)
	}
	if ns.SourceInfo != nil {
		si := *ns.SourceInfo
		out.SourceInfo = &si
	}
	return out
}

// MaxEndTime returns the largest EndTime across all notes, regardless
// of note order. Zero for an empty sequence.
func (ns *NoteSequence) MaxEndTime() float64 {
	var max float64
	for _, n := range ns.Notes {
		if n.EndTime > max {
			max = n.EndTime
		}
	}
	return max
}

// MaxQuantizedEndStep returns the largest QuantizedEndStep across all
// notes, regardless of note order. Zero for an empty sequence.
func (ns *NoteSequence) MaxQuantizedEndStep() int {
	var max int
	for _, n := range ns.Notes {
		if n.QuantizedEndStep > max {
			max = n.QuantizedEndStep
		}
	}
	return max
}

// Instruments returns the distinct instrument numbers used by the
// sequence's notes, in ascending order.
func (ns *NoteSequence) Instruments() []int {
	seen := make(map[int]bool)
	var out []int
	for _, n := range ns.Notes {
		if !seen[n.Instrument] {
			seen[n.Instrument] = true
			out = append(out, n.Instrument)
		}
	}
	sort.Ints(out)
	return out
}
