// Package converter translates between parsed MIDI structures and the
// canonical NoteSequence document, enforcing the structural invariants
// the MIDI export path requires.
package converter

import (
	"github.com/seqforge/noteseq/pkg/midifile"
	"github.com/seqforge/noteseq/pkg/sequence"
)

// MidiToSequence builds a NoteSequence from a parsed MIDI file.
//
// Each source track holding at least one note is assigned the next
// instrument number from a counter local to this call; empty tracks
// consume no number. The result always carries exactly one tempo and
// one time signature, both at time 0, with the signature defaulting to
// 4/4 when the source header has none. TotalTime is the maximum end
// time across all notes.
func MidiToSequence(f *midifile.File) (*sequence.NoteSequence, error) {
	if f == nil {
		return nil, &MalformedInputError{Missing: "file"}
	}
	if f.Header.PulsesPerQuarter <= 0 {
		return nil, &MalformedInputError{Missing: "header.pulsesPerQuarter"}
	}
	if f.Header.BeatsPerMinute <= 0 {
		return nil, &MalformedInputError{Missing: "header.beatsPerMinute"}
	}

	ns := &sequence.NoteSequence{
		TicksPerQuarter: f.Header.PulsesPerQuarter,
		Tempos:          []sequence.Tempo{{Time: 0, QPM: f.Header.BeatsPerMinute}},
		SourceInfo:      &sequence.SourceInfo{Parser: "noteseq", EncodingType: "midi"},
	}

	signature := sequence.TimeSignature{Time: 0, Numerator: 4, Denominator: 4}
	if ts := f.Header.TimeSignature; ts != nil {
		signature.Numerator = ts.Numerator
		signature.Denominator = ts.Denominator
	}
	ns.TimeSignatures = []sequence.TimeSignature{signature}

	instrument := 0
	for _, track := range f.Tracks {
		if len(track.Notes) == 0 {
			continue
		}
		for _, n := range track.Notes {
			ns.Notes = append(ns.Notes, sequence.Note{
				Pitch:      n.Pitch,
				Velocity:   int(n.Velocity * sequence.VelocitySteps),
				Instrument: instrument,
				Program:    track.InstrumentProgram,
				StartTime:  n.Time,
				EndTime:    n.Time + n.Duration,
				IsDrum:     track.IsPercussion,
			})
		}
		instrument++
	}

	ns.TotalTime = ns.MaxEndTime()
	return ns, nil
}
