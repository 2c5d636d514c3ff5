package pianoroll

import (
	"testing"

	"github.com/seqforge/noteseq/pkg/sequence"
	"github.com/stretchr/testify/assert"
)

func TestNewShape(t *testing.T) {
	roll := New(8)

	assert := assert.New(t)
	assert.Equal(8, roll.Steps())
	assert.Len(roll[0], NumPitches)
	assert.Len(roll[0][0], NumVoices)
	assert.Equal(float32(0), roll[7][NumPitches-1][NumVoices-1])
}

func TestFromSequenceActivatesCoveredSteps(t *testing.T) {
	ns := &sequence.NoteSequence{Notes: []sequence.Note{
		{Pitch: 60, Instrument: 2, QuantizedStartStep: 1, QuantizedEndStep: 4},
	}}

	roll, err := FromSequence(ns, 6)

	assert := assert.New(t)
	assert.NoError(err)
	pitch := 60 - MinPitch
	for s := 0; s < 6; s++ {
		want := float32(0)
		if s >= 1 && s < 4 {
			want = 1
		}
		assert.Equal(want, roll[s][pitch][2], "step %d", s)
	}
}

func TestFromSequenceInvalidVoice(t *testing.T) {
	ns := &sequence.NoteSequence{Notes: []sequence.Note{
		{Pitch: 60, Instrument: 4, QuantizedStartStep: 0, QuantizedEndStep: 1},
	}}

	_, err := FromSequence(ns, 4)

	var invalid *InvalidVoiceError
	assert := assert.New(t)
	assert.ErrorAs(err, &invalid)
	assert.Equal(4, invalid.Voice)
}

func TestFromSequenceInvalidPitch(t *testing.T) {
	tests := []struct {
		name  string
		pitch int
	}{
		{"below range", MinPitch - 1},
		{"above range", MinPitch + NumPitches},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns := &sequence.NoteSequence{Notes: []sequence.Note{
				{Pitch: tt.pitch, QuantizedStartStep: 0, QuantizedEndStep: 1},
			}}
			_, err := FromSequence(ns, 4)

			var invalid *InvalidPitchError
			assert.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.pitch, invalid.Pitch)
		})
	}
}

func TestFromSequenceNegativeStartStep(t *testing.T) {
	ns := &sequence.NoteSequence{Notes: []sequence.Note{
		{Pitch: 60, QuantizedStartStep: -1, QuantizedEndStep: 1},
	}}
	_, err := FromSequence(ns, 4)
	assert.Error(t, err, "negative start step must fail, not panic")
}

func TestFromSequenceNoteBeyondRoll(t *testing.T) {
	ns := &sequence.NoteSequence{Notes: []sequence.Note{
		{Pitch: 60, QuantizedStartStep: 2, QuantizedEndStep: 5},
	}}
	_, err := FromSequence(ns, 4)
	assert.Error(t, err)
}

// A three-step note decodes into three adjacent one-step notes: the
// documented lossy degradation of the roll format.
func TestEncodeDecodeSplitsLongNotes(t *testing.T) {
	ns := &sequence.NoteSequence{Notes: []sequence.Note{
		{Pitch: 48, Instrument: 1, QuantizedStartStep: 2, QuantizedEndStep: 5},
	}}

	roll, err := FromSequence(ns, 8)
	assert.NoError(t, err)

	decoded := roll.Sequence()

	assert := assert.New(t)
	assert.Len(decoded.Notes, 3)
	for i, n := range decoded.Notes {
		assert.Equal(48, n.Pitch)
		assert.Equal(1, n.Instrument)
		assert.Equal(2+i, n.QuantizedStartStep)
		assert.Equal(3+i, n.QuantizedEndStep)
	}
	assert.Equal(5, decoded.TotalQuantizedSteps)
}

func TestSequenceTotalStepsIsMax(t *testing.T) {
	roll := New(10)
	// Later cell at a lower pitch index so decode order does not match
	// step order by accident.
	roll[7][10][0] = 1
	roll[2][30][3] = 1

	decoded := roll.Sequence()

	assert.Equal(t, 8, decoded.TotalQuantizedSteps)
}

func TestFromFlatMatchesCellOrder(t *testing.T) {
	const steps = 3
	values := make([]float32, steps*NumPitches*NumVoices)
	direct := New(steps)
	i := 0
	for s := 0; s < steps; s++ {
		for p := 0; p < NumPitches; p++ {
			for v := 0; v < NumVoices; v++ {
				if (s+p+v)%5 == 0 {
					values[i] = 1
					direct[s][p][v] = 1
				}
				i++
			}
		}
	}

	roll, err := FromFlat(values, steps)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(direct, roll)
}

func TestFromFlatRejectsWrongLength(t *testing.T) {
	exact := 2 * NumPitches * NumVoices

	_, err := FromFlat(make([]float32, exact-1), 2)
	assert.Error(t, err, "short buffer must fail")

	_, err = FromFlat(make([]float32, exact+1), 2)
	assert.Error(t, err, "oversized buffer must fail, truncation would mask shape mismatches")
}
