// Package pianoroll converts between NoteSequence documents and the
// dense step/pitch/voice activation tensor consumed and produced by the
// generative model.
package pianoroll

import (
	"fmt"

	"github.com/seqforge/noteseq/pkg/sequence"
)

// Tensor dimensions. A roll covers NumPitches semitones starting at
// MinPitch, across NumVoices fixed instrument slots.
const (
	MinPitch   = 36
	NumPitches = 46
	NumVoices  = 4
)

// Roll is a [steps][NumPitches][NumVoices] activation tensor with
// values restricted to {0,1}. Cell [s][p][v] = 1 means voice v sounds
// pitch p+MinPitch during step s. Active cells are independent: the
// roll carries no note durations beyond per-step activation.
type Roll [][][]float32

// InvalidVoiceError reports a note whose instrument number does not fit
// one of the roll's voices.
type InvalidVoiceError struct {
	Voice int
}

func (e *InvalidVoiceError) Error() string {
	return fmt.Sprintf("invalid voice %d, pianoroll supports voices 0..%d", e.Voice, NumVoices-1)
}

// InvalidPitchError reports a note whose pitch falls outside the roll's
// pitch range.
type InvalidPitchError struct {
	Pitch int
}

func (e *InvalidPitchError) Error() string {
	return fmt.Sprintf("invalid pitch %d, pianoroll covers pitches %d..%d", e.Pitch, MinPitch, MinPitch+NumPitches-1)
}

// New returns a zeroed roll with numSteps steps.
func New(numSteps int) Roll {
	roll := make(Roll, numSteps)
	for s := range roll {
		roll[s] = make([][]float32, NumPitches)
		for p := range roll[s] {
			roll[s][p] = make([]float32, NumVoices)
		}
	}
	return roll
}

// Steps returns the number of steps in the roll.
func (r Roll) Steps() int {
	return len(r)
}

// FromSequence encodes a quantized NoteSequence as a roll of numSteps
// steps, activating one cell per step a note covers. A note with an
// instrument outside the roll's voices, a pitch outside its range, or
// steps outside [0, numSteps] fails the whole call; nothing is dropped
// silently.
//
// The roll cannot distinguish one long note from repeated short ones on
// the same pitch and voice; that loss is inherent to the format.
func FromSequence(seq *sequence.NoteSequence, numSteps int) (Roll, error) {
	roll := New(numSteps)
	for _, n := range seq.Notes {
		if n.Instrument < 0 || n.Instrument >= NumVoices {
			return nil, &InvalidVoiceError{Voice: n.Instrument}
		}
		pitch := n.Pitch - MinPitch
		if pitch < 0 || pitch >= NumPitches {
			return nil, &InvalidPitchError{Pitch: n.Pitch}
		}
		if n.QuantizedStartStep < 0 {
			return nil, fmt.Errorf("note starting at step %d is before the start of the roll", n.QuantizedStartStep)
		}
		if n.QuantizedEndStep > numSteps {
			return nil, fmt.Errorf("note ending at step %d does not fit a roll of %d steps", n.QuantizedEndStep, numSteps)
		}
		for s := n.QuantizedStartStep; s < n.QuantizedEndStep; s++ {
			roll[s][pitch][n.Instrument] = 1
		}
	}
	return roll, nil
}

// Sequence decodes a roll into a NoteSequence with one single-step note
// per active cell. A roll built from a multi-step note decodes into
// adjacent one-step notes, the intentional lossy inverse of
// FromSequence.
func (r Roll) Sequence() *sequence.NoteSequence {
	ns := &sequence.NoteSequence{
		SourceInfo: &sequence.SourceInfo{Parser: "noteseq", EncodingType: "pianoroll"},
	}
	for s := range r {
		for p := range r[s] {
			for v, active := range r[s][p] {
				if active == 0 {
					continue
				}
				ns.Notes = append(ns.Notes, sequence.Note{
					Pitch:              p + MinPitch,
					Instrument:         v,
					Velocity:           sequence.DefaultVelocity,
					QuantizedStartStep: s,
					QuantizedEndStep:   s + 1,
				})
			}
		}
	}
	ns.TotalQuantizedSteps = ns.MaxQuantizedEndStep()
	return ns
}

// FromFlat reshapes a flat buffer into a roll of numSteps steps,
// consuming values in row-major (step, pitch, voice) order. The buffer
// length must be exactly numSteps*NumPitches*NumVoices: a short buffer
// cannot fill the roll, and a long one indicates an upstream shape
// mismatch that silent truncation would mask.
func FromFlat(values []float32, numSteps int) (Roll, error) {
	want := numSteps * NumPitches * NumVoices
	if len(values) != want {
		return nil, fmt.Errorf("flat buffer has %d values, a roll of %d steps needs exactly %d", len(values), numSteps, want)
	}
	roll := New(numSteps)
	i := 0
	for s := 0; s < numSteps; s++ {
		for p := 0; p < NumPitches; p++ {
			for v := 0; v < NumVoices; v++ {
				roll[s][p][v] = values[i]
				i++
			}
		}
	}
	return roll, nil
}
