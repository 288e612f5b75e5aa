package engine

import (
	"github.com/james-see/tasteofcontrol/pkg/composer"
	"github.com/james-see/tasteofcontrol/pkg/score"
)

// Part is one instrument's fragment for a measure.
type Part struct {
	Instrument score.Instrument
	Fragment   *score.Fragment
	Fit        score.RangeFit // concert pitches against the range
}

// Measure is one composed measure.
type Measure struct {
	Number    int
	Stage     Stage
	Direction int
	Volume    float64
	Label     string
	Meter     TimeSignature
	// TimeChanged is set when the meter differs from the previous measure.
	TimeChanged bool
	Voices      []composer.Voice
	Parts       []Part
}

// Length is the expected measure length.
func (m *Measure) Length() score.Duration {
	return m.Meter.Length()
}

// Part returns the part written for the named instrument.
func (m *Measure) Part(name string) (Part, bool) {
	for _, p := range m.Parts {
		if p.Instrument.Name == name {
			return p, true
		}
	}
	return Part{}, false
}

// Score is the running full score.
type Score struct {
	Instruments []score.Instrument
	Measures    []*Measure
}

// Line returns every fragment written for the named instrument, in order.
func (s *Score) Line(name string) []*score.Fragment {
	var out []*score.Fragment
	for _, m := range s.Measures {
		if p, ok := m.Part(name); ok {
			out = append(out, p.Fragment)
		}
	}
	return out
}

// Length is the total length of the score.
func (s *Score) Length() score.Duration {
	var d score.Duration
	for _, m := range s.Measures {
		d += m.Length()
	}
	return d
}
