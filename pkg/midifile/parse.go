package midifile

import (
	"bytes"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"gitlab.com/gomidi/midi/v2/smf"
)

// ParseFile reads a Standard MIDI File from disk and parses it.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI file: %w", err)
	}
	return Parse(data)
}

// Parse parses Standard MIDI File bytes into a File. Timing is resolved
// to seconds through the file's tempo map, note on/off pairs are joined
// into notes with durations, and note-on velocities are normalized to
// [0,1). Tracks without notes are preserved as empty Track values.
func Parse(data []byte) (f *File, err error) {
	// gomidi panics on some malformed files, see
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			f, err = nil, fmt.Errorf("failed to parse MIDI: %v", r)
		}
	}()

	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	f = &File{
		Header: Header{
			PulsesPerQuarter: DefaultPulsesPerQuarter,
			BeatsPerMinute:   DefaultBeatsPerMinute,
		},
	}
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		f.Header.PulsesPerQuarter = int(mt.Resolution())
	}

	// First tempo and time signature in the file win; later changes are
	// not representable in the header.
	sawTempo := false
	for _, track := range s.Tracks {
		for _, ev := range track {
			var bpm float64
			if !sawTempo && ev.Message.GetMetaTempo(&bpm) && bpm > 0 {
				f.Header.BeatsPerMinute = bpm
				sawTempo = true
			}
			var num, denom, clocks, dsq uint8
			if f.Header.TimeSignature == nil && ev.Message.GetMetaTimeSig(&num, &denom, &clocks, &dsq) {
				f.Header.TimeSignature = &TimeSignature{
					Numerator:   int(num),
					Denominator: int(denom),
				}
			}
		}
	}

	for i, track := range s.Tracks {
		f.Tracks = append(f.Tracks, parseTrack(s, i, track))
	}
	return f, nil
}

// activeKey identifies a sounding note awaiting its note-off.
type activeKey struct {
	channel uint8
	pitch   uint8
}

func parseTrack(s *smf.SMF, index int, track smf.Track) Track {
	var out Track
	active := make(map[activeKey]Note)
	sawProgram := false

	var absTicks int64
	for _, ev := range track {
		absTicks += int64(ev.Delta)
		seconds := float64(s.TimeAt(absTicks)) / 1e6

		var ch, key, vel uint8
		switch {
		case ev.Message.GetNoteOn(&ch, &key, &vel) && vel > 0:
			if ch == DrumChannel {
				out.IsPercussion = true
			}
			active[activeKey{ch, key}] = Note{
				Time:     seconds,
				Pitch:    int(key),
				Velocity: float64(vel) / 128.0,
			}
		case ev.Message.GetNoteOff(&ch, &key, &vel),
			ev.Message.GetNoteOn(&ch, &key, &vel) && vel == 0:
			k := activeKey{ch, key}
			n, ok := active[k]
			if !ok {
				continue // note-off without a matching note-on
			}
			delete(active, k)
			n.Duration = seconds - n.Time
			out.Notes = append(out.Notes, n)
		default:
			var prog uint8
			if !sawProgram && ev.Message.GetProgramChange(&ch, &prog) {
				out.InstrumentProgram = int(prog)
				sawProgram = true
			}
		}
	}

	for k := range active {
		log.Warn("dropping unmatched note-on at end of track",
			"track", index, "channel", k.channel, "pitch", k.pitch)
	}
	return out
}
