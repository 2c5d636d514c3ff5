package converter

import (
	"fmt"

	"github.com/seqforge/noteseq/pkg/midifile"
	"github.com/seqforge/noteseq/pkg/sequence"
)

// SequenceToMidi builds a parsed MIDI structure ready for
// midifile.Serialize from a NoteSequence.
//
// Defaulting and validation operate on a clone, never on the caller's
// value: an empty tempo list becomes a single default tempo at time 0,
// and likewise 4/4 for an empty time signature list. The sequence must
// then carry exactly one tempo and one time signature, both at time 0,
// and its instrument numbers must form the contiguous set {0..k-1}.
// Any violation fails with a *ConversionError and no partial output.
//
// Notes are grouped into one track per instrument. A track's percussion
// flag and program come from its first note only, not from consensus
// across the track.
func SequenceToMidi(seq *sequence.NoteSequence) (*midifile.File, error) {
	if seq == nil {
		return nil, &ConversionError{Reason: "sequence is nil"}
	}

	ns := seq.Clone()
	if len(ns.Tempos) == 0 {
		ns.Tempos = []sequence.Tempo{{Time: 0, QPM: sequence.DefaultQPM}}
	}
	if len(ns.TimeSignatures) == 0 {
		ns.TimeSignatures = []sequence.TimeSignature{{Time: 0, Numerator: 4, Denominator: 4}}
	}

	if len(ns.Tempos) != 1 {
		return nil, &ConversionError{
			Reason: fmt.Sprintf("sequence has %d tempos, MIDI export requires exactly one", len(ns.Tempos)),
		}
	}
	if ns.Tempos[0].Time != 0 {
		return nil, &ConversionError{
			Reason: fmt.Sprintf("tempo is at time %g, MIDI export requires it at time 0", ns.Tempos[0].Time),
		}
	}
	if len(ns.TimeSignatures) != 1 {
		return nil, &ConversionError{
			Reason: fmt.Sprintf("sequence has %d time signatures, MIDI export requires exactly one", len(ns.TimeSignatures)),
		}
	}
	if ns.TimeSignatures[0].Time != 0 {
		return nil, &ConversionError{
			Reason: fmt.Sprintf("time signature is at time %g, MIDI export requires it at time 0", ns.TimeSignatures[0].Time),
		}
	}

	instruments := ns.Instruments()
	for i, inst := range instruments {
		if inst != i {
			return nil, &ConversionError{
				Reason: fmt.Sprintf("instrument numbers %v are not contiguous from 0, tracks map 1:1 to instruments", instruments),
			}
		}
	}

	byInstrument := make(map[int][]sequence.Note, len(instruments))
	for _, n := range ns.Notes {
		byInstrument[n.Instrument] = append(byInstrument[n.Instrument], n)
	}

	ppq := ns.TicksPerQuarter
	if ppq <= 0 {
		ppq = sequence.DefaultTicksPerQuarter
	}
	f := &midifile.File{
		Header: midifile.Header{
			PulsesPerQuarter: ppq,
			BeatsPerMinute:   ns.Tempos[0].QPM,
			TimeSignature: &midifile.TimeSignature{
				Numerator:   ns.TimeSignatures[0].Numerator,
				Denominator: ns.TimeSignatures[0].Denominator,
			},
		},
	}

	for _, inst := range instruments {
		notes := byInstrument[inst]
		first := notes[0]
		track := midifile.Track{
			IsPercussion:      first.IsDrum,
			InstrumentProgram: first.Program,
			Notes:             make([]midifile.Note, 0, len(notes)),
		}
		for _, n := range notes {
			velocity := n.Velocity
			if velocity == 0 {
				velocity = sequence.DefaultVelocity
			}
			track.Notes = append(track.Notes, midifile.Note{
				Time:     n.StartTime,
				Duration: n.EndTime - n.StartTime,
				Pitch:    n.Pitch,
				Velocity: float64(velocity+1) / sequence.VelocitySteps,
			})
		}
		f.Tracks = append(f.Tracks, track)
	}

	return f, nil
}
