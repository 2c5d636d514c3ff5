package sequence

import (
	"fmt"
	"math"
)

// Quantize returns a copy of the sequence with QuantizedStartStep and
// QuantizedEndStep filled in on every note, snapping continuous time to
// a grid of stepsPerQuarter steps per quarter note. The receiver is not
// modified.
//
// Quantization requires at most one tempo and, if present, it must be
// at time 0; a sequence without tempos is quantized at DefaultQPM.
// Every note occupies at least one step so that no note disappears
// from the grid.
func (ns *NoteSequence) Quantize(stepsPerQuarter int) (*NoteSequence, error) {
	if stepsPerQuarter <= 0 {
		return nil, fmt.Errorf("stepsPerQuarter must be positive, got %d", stepsPerQuarter)
	}
	if len(ns.Tempos) > 1 {
		return nil, fmt.Errorf("cannot quantize sequence with %d tempos, at most one is supported", len(ns.Tempos))
	}
	qpm := DefaultQPM
	if len(ns.Tempos) == 1 {
		if ns.Tempos[0].Time != 0 {
			return nil, fmt.Errorf("cannot quantize sequence with tempo at time %g, it must be at time 0", ns.Tempos[0].Time)
		}
		qpm = ns.Tempos[0].QPM
	}

	stepsPerSecond := float64(stepsPerQuarter) * qpm / 60.0

	out := ns.Clone()
	for i := range out.Notes {
		n := &out.Notes[i]
		n.QuantizedStartStep = int(math.Round(n.StartTime * stepsPerSecond))
		end := int(math.Round(n.EndTime * stepsPerSecond))
		if end <= n.QuantizedStartStep {
			end = n.QuantizedStartStep + 1
		}
		n.QuantizedEndStep = end
	}
	out.TotalQuantizedSteps = out.MaxQuantizedEndStep()
	return out, nil
}
