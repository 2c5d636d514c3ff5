package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneIsDeep(t *testing.T) {
	orig := &NoteSequence{
		TicksPerQuarter: 220,
		Tempos:          []Tempo{{Time: 0, QPM: 120}},
		TimeSignatures:  []TimeSignature{{Time: 0, Numerator: 4, Denominator: 4}},
		Notes:           []Note{{Pitch: 60, Velocity: 100, EndTime: 1.5}},
		TotalTime:       1.5,
		SourceInfo:      &SourceInfo{Parser: "noteseq", EncodingType: "midi"},
	}

	clone := orig.Clone()
	clone.Notes[0].Pitch = 72
	clone.Tempos[0].QPM = 90
	clone.SourceInfo.Parser = "other"

	assert := assert.New(t)
	assert.Equal(60, orig.Notes[0].Pitch)
	assert.Equal(120.0, orig.Tempos[0].QPM)
	assert.Equal("noteseq", orig.SourceInfo.Parser)
}

func TestMaxEndTimeIgnoresInsertionOrder(t *testing.T) {
	// The longest note is deliberately not last.
	ns := &NoteSequence{Notes: []Note{
		{Pitch: 60, EndTime: 4.0},
		{Pitch: 62, EndTime: 1.0},
		{Pitch: 64, EndTime: 2.5},
	}}
	assert.Equal(t, 4.0, ns.MaxEndTime())
}

func TestMaxEndTimeEmpty(t *testing.T) {
	ns := &NoteSequence{}
	assert.Equal(t, 0.0, ns.MaxEndTime())
}

func TestMaxQuantizedEndStepIgnoresInsertionOrder(t *testing.T) {
	ns := &NoteSequence{Notes: []Note{
		{QuantizedEndStep: 9},
		{QuantizedEndStep: 3},
	}}
	assert.Equal(t, 9, ns.MaxQuantizedEndStep())
}

func TestInstrumentsSortedAndDistinct(t *testing.T) {
	ns := &NoteSequence{Notes: []Note{
		{Instrument: 2},
		{Instrument: 0},
		{Instrument: 2},
		{Instrument: 1},
	}}
	assert.Equal(t, []int{0, 1, 2}, ns.Instruments())
}

func TestQuantizeSnapsToGrid(t *testing.T) {
	ns := &NoteSequence{
		Tempos: []Tempo{{Time: 0, QPM: 120}},
		Notes: []Note{
			// At 120 QPM with 4 steps per quarter, one step is 0.125s.
			{Pitch: 60, StartTime: 0, EndTime: 0.5},
			{Pitch: 62, StartTime: 0.5, EndTime: 0.75},
		},
	}

	q, err := ns.Quantize(4)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(0, q.Notes[0].QuantizedStartStep)
	assert.Equal(4, q.Notes[0].QuantizedEndStep)
	assert.Equal(4, q.Notes[1].QuantizedStartStep)
	assert.Equal(6, q.Notes[1].QuantizedEndStep)
	assert.Equal(6, q.TotalQuantizedSteps)
}

func TestQuantizeMinimumOneStep(t *testing.T) {
	ns := &NoteSequence{
		Tempos: []Tempo{{Time: 0, QPM: 120}},
		Notes:  []Note{{Pitch: 60, StartTime: 0.25, EndTime: 0.26}},
	}

	q, err := ns.Quantize(4)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(2, q.Notes[0].QuantizedStartStep)
	assert.Equal(3, q.Notes[0].QuantizedEndStep)
}

func TestQuantizeDefaultsTempo(t *testing.T) {
	ns := &NoteSequence{Notes: []Note{{Pitch: 60, StartTime: 0, EndTime: 1.0}}}

	q, err := ns.Quantize(4)

	// DefaultQPM is 120, so 1 second covers 8 sixteenth steps.
	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(8, q.Notes[0].QuantizedEndStep)
}

func TestQuantizeDoesNotMutateReceiver(t *testing.T) {
	ns := &NoteSequence{
		Tempos: []Tempo{{Time: 0, QPM: 120}},
		Notes:  []Note{{Pitch: 60, StartTime: 0, EndTime: 0.5}},
	}

	_, err := ns.Quantize(4)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(0, ns.Notes[0].QuantizedEndStep)
	assert.Equal(0, ns.TotalQuantizedSteps)
}

func TestQuantizeRejectsMultipleTempos(t *testing.T) {
	ns := &NoteSequence{Tempos: []Tempo{{Time: 0, QPM: 120}, {Time: 2, QPM: 90}}}
	_, err := ns.Quantize(4)
	assert.Error(t, err)
}

func TestQuantizeRejectsOffsetTempo(t *testing.T) {
	ns := &NoteSequence{Tempos: []Tempo{{Time: 1.0, QPM: 120}}}
	_, err := ns.Quantize(4)
	assert.Error(t, err)
}
