package notation

import (
	"bytes"
	"errors"
	"fmt"
	"math/bits"
	"os"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/james-see/tasteofcontrol/pkg/engine"
	"github.com/james-see/tasteofcontrol/pkg/score"
)

// middleC is the MIDI key of concert pitch 0.
const middleC = 60

var velocities = map[score.Dynamic]uint8{
	score.PPP: 24,
	score.PP:  36,
	score.P:   50,
	score.MP:  64,
	score.MF:  80,
	score.F:   96,
	score.FF:  110,
	score.FFF: 124,
	score.SFZ: 127,
}

// MIDIWriter renders a score as a Standard MIDI File, one track per
// instrument.
type MIDIWriter struct {
	ticksPerQuarter uint16
	tempo           float64
}

// NewMIDIWriter creates a writer at the score tempo
func NewMIDIWriter() *MIDIWriter {
	return &MIDIWriter{
		ticksPerQuarter: uint16(score.TicksPerBeat),
		tempo:           Tempo,
	}
}

// Generate creates MIDI data from a score
func (w *MIDIWriter) Generate(s *engine.Score) ([]byte, error) {
	if s == nil {
		return nil, errors.New("nil score")
	}

	file := smf.New()
	file.TimeFormat = smf.MetricTicks(w.ticksPerQuarter)

	for i, inst := range s.Instruments {
		track := w.track(s, inst, uint8(i%16), i == 0)
		if err := file.Add(track); err != nil {
			return nil, fmt.Errorf("failed to add track %s: %w", inst.Name, err)
		}
	}

	var buf bytes.Buffer
	if _, err := file.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes MIDI data to a file
func (w *MIDIWriter) WriteFile(s *engine.Score, filename string) error {
	data, err := w.Generate(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write MIDI file: %w", err)
	}
	return nil
}

func (w *MIDIWriter) track(s *engine.Score, inst score.Instrument, channel uint8, conductor bool) smf.Track {
	var track smf.Track
	track.Add(0, smf.MetaTrackSequenceName(inst.Name))
	if conductor {
		microsecondsPerBeat := uint32(60000000.0 / w.tempo)
		track.Add(0, smf.Message([]byte{
			0xFF, 0x51, 0x03,
			byte(microsecondsPerBeat >> 16),
			byte(microsecondsPerBeat >> 8),
			byte(microsecondsPerBeat),
		}))
	}

	var measureStart, cursor score.Duration
	velocity := velocities[score.MF]
	for _, m := range s.Measures {
		if conductor && m.TimeChanged {
			track.Add(uint32(measureStart-cursor), meter(m.Meter))
			cursor = measureStart
		}
		part, ok := m.Part(inst.Name)
		if !ok {
			measureStart += m.Length()
			continue
		}
		events := part.Fragment.Timeline()
		for i := 0; i < len(events); i++ {
			ev := events[i]
			if ev.Note.Dynamic != score.DynamicNone {
				if v, ok := velocities[ev.Note.Dynamic]; ok {
					velocity = v
				}
			}
			if ev.Note.Rest {
				continue
			}
			// tied notes of the same pitch sound as one
			length := ev.Length
			for ev.Note.Tie && i+1 < len(events) && events[i+1].Note.Pitch == ev.Note.Pitch && !events[i+1].Note.Rest {
				i++
				length += events[i].Length
				ev.Note = events[i].Note
			}
			start := measureStart + ev.Start
			key := midiKey(ev.Note.Pitch - inst.Transposition)
			track.Add(uint32(start-cursor), midi.NoteOn(channel, key, velocity))
			track.Add(uint32(length), midi.NoteOff(channel, key))
			cursor = start + length
		}
		measureStart += m.Length()
	}
	track.Close(uint32(max(0, measureStart-cursor)))
	return track
}

// meter encodes a time signature meta event.
func meter(t engine.TimeSignature) smf.Message {
	denominator := byte(bits.TrailingZeros(uint(t.Unit)))
	return smf.Message([]byte{0xFF, 0x58, 0x04, byte(t.Beats), denominator, 0x18, 0x08})
}

func midiKey(pitch int) uint8 {
	return uint8(max(0, min(127, middleC+pitch)))
}

// NoteEvent is a sounding note read back from MIDI data.
type NoteEvent struct {
	Track    int
	Tick     int64
	Key      uint8
	Velocity uint8
	Length   int64
}

// ReadNotes parses MIDI data and returns every note with its length
func ReadNotes(data []byte) ([]NoteEvent, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	var out []NoteEvent
	for t, track := range s.Tracks {
		open := map[uint8]int{}
		var tick int64
		for _, ev := range track {
			tick += int64(ev.Delta)
			msg := ev.Message
			if len(msg) < 3 {
				continue
			}
			status, key, velocity := msg[0], msg[1], msg[2]
			switch {
			case status >= 0x90 && status <= 0x9F && velocity > 0:
				open[key] = len(out)
				out = append(out, NoteEvent{Track: t, Tick: tick, Key: key, Velocity: velocity})
			case status >= 0x80 && status <= 0x9F:
				if idx, ok := open[key]; ok {
					out[idx].Length = tick - out[idx].Tick
					delete(open, key)
				}
			}
		}
	}
	return out, nil
}
