package midifile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Serialize writes a File as Standard MIDI File bytes. The output is an
// SMF type 1 file: a conductor track carrying tempo and time signature,
// then one track per File.Track. Percussion tracks go on the drum
// channel and skip the program change; all other tracks use the default
// channel.
func Serialize(f *File) ([]byte, error) {
	if f == nil {
		return nil, errors.New("nil midi file")
	}

	bpm := f.Header.BeatsPerMinute
	if bpm <= 0 {
		bpm = DefaultBeatsPerMinute
	}
	ppq := f.Header.PulsesPerQuarter
	if ppq <= 0 {
		ppq = DefaultPulsesPerQuarter
	}
	numerator, denominator := 4, 4
	if ts := f.Header.TimeSignature; ts != nil {
		numerator, denominator = ts.Numerator, ts.Denominator
	}

	s := smf.NewSMF1()
	s.TimeFormat = smf.MetricTicks(ppq)

	var conductor smf.Track
	conductor.Add(0, smf.MetaTrackSequenceName("conductor"))
	conductor.Add(0, smf.MetaTempo(bpm))
	conductor.Add(0, smf.MetaTimeSig(uint8(numerator), uint8(denominator), 24, 8))
	conductor.Close(0)
	if err := s.Add(conductor); err != nil {
		return nil, fmt.Errorf("failed to add conductor track: %w", err)
	}

	ticks := smf.MetricTicks(ppq)
	for i, tr := range f.Tracks {
		track := buildTrack(tr, i, bpm, ticks)
		if err := s.Add(track); err != nil {
			return nil, fmt.Errorf("failed to add track %d: %w", i, err)
		}
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile serializes a File and writes it to disk.
func WriteFile(f *File, path string) error {
	data, err := Serialize(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// trackEvent is a MIDI message at an absolute tick, before conversion
// to delta times.
type trackEvent struct {
	tick    uint32
	noteOff bool
	message midi.Message
}

func buildTrack(tr Track, index int, bpm float64, ticks smf.MetricTicks) smf.Track {
	var track smf.Track

	channel := uint8(DefaultChannel)
	if tr.IsPercussion {
		channel = DrumChannel
		track.Add(0, smf.MetaTrackSequenceName("drums"))
	} else {
		track.Add(0, smf.MetaTrackSequenceName(fmt.Sprintf("track %d", index+1)))
		// Channel 9 is GM percussion and ignores program changes.
		track.Add(0, midi.ProgramChange(channel, uint8(tr.InstrumentProgram)))
	}

	events := make([]trackEvent, 0, 2*len(tr.Notes))
	for _, n := range tr.Notes {
		on := secondsToTicks(n.Time, bpm, ticks)
		off := secondsToTicks(n.Time+n.Duration, bpm, ticks)
		events = append(events,
			trackEvent{
				tick:    on,
				message: midi.NoteOn(channel, uint8(n.Pitch), velocityByte(n.Velocity)),
			},
			trackEvent{
				tick:    off,
				noteOff: true,
				message: midi.NoteOff(channel, uint8(n.Pitch)),
			})
	}
	// Note-offs sort before note-ons at the same tick so repeated notes
	// release before they retrigger.
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].noteOff && !events[j].noteOff
	})

	var lastTick uint32
	for _, ev := range events {
		track.Add(ev.tick-lastTick, ev.message)
		lastTick = ev.tick
	}
	track.Close(0)
	return track
}

// velocityByte denormalizes a [0,1) velocity back to a MIDI byte,
// clamped to 1..127 so a note-on is never mistaken for a note-off.
func velocityByte(v float64) uint8 {
	b := int(v * 128)
	if b < 1 {
		b = 1
	}
	if b > 127 {
		b = 127
	}
	return uint8(b)
}

// secondsToTicks converts a time in seconds to an absolute MIDI tick at
// a fixed tempo.
func secondsToTicks(seconds, bpm float64, ticks smf.MetricTicks) uint32 {
	ticksPerSecond := bpm / 60.0 * float64(ticks.Resolution())
	return uint32(seconds*ticksPerSecond + 0.5)
}
