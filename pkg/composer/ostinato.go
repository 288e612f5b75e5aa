package composer

import (
	"fmt"

	"github.com/james-see/tasteofcontrol/pkg/score"
)

var (
	repeatIntervals = []score.Duration{
		score.MustFraction(2, 7),
		score.MustFraction(1, 5),
		score.MustFraction(2, 5),
		score.MustFraction(1, 4),
		score.MustFraction(1, 3),
		score.MustFraction(1, 2),
		score.MustFraction(3, 4),
		score.MustFraction(2, 3),
	}

	glissandoLeads = []score.Duration{
		0,
		score.MustFraction(1, 4),
		score.MustFraction(1, 2),
		score.MustFraction(3, 4),
		score.TicksPerBeat,
	}
)

// Ostinato writes repeated-note figures against falling glissandi.
type Ostinato struct {
	base    score.Dynamic
	dynamic score.Dynamic
}

// NewOstinato returns the ostinato variant.
func NewOstinato() *Ostinato {
	return &Ostinato{base: score.F, dynamic: score.F}
}

func (o *Ostinato) Name() string { return "ostinato" }

func (o *Ostinato) SetDynamic(direction int, volume float64) {
	o.dynamic = dynamicShift(o.base, direction, volume)
}

func (o *Ostinato) Compose(req Request) (map[string]*score.Fragment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	r := req.Rand
	evolution := sqrtVolume(req.Volume)/3 - 0.5
	beats := min(4, 1+r.IntN(int(req.Volume*3)+1))
	grows := func() bool { return r.Float64() < float64(req.Direction)/6 }

	out := make(map[string]*score.Fragment, len(req.Instruments))
	for i, inst := range req.Instruments {
		v := req.Voices[i]
		var frag *score.Fragment
		var err error
		switch v.Type {
		case VoiceSilent:
			frag, err = silenceOnly(req)
		case VoicePrimary:
			frag, err = o.repeated(req, inst, v, beats, evolution, grows())
		case VoiceSecondary:
			frag, err = o.glissando(req, inst, v, beats, evolution, grows())
		case VoiceExtended:
			frag, err = o.glissando(req, inst, v, beats, evolution, true)
		}
		if err != nil {
			return nil, fmt.Errorf("ostinato voice %s: %w", inst.Name, err)
		}
		out[inst.Name] = frag
	}
	return out, nil
}

func (o *Ostinato) repeated(req Request, inst score.Instrument, v Voice, beats int, evolution float64, extended bool) (*score.Fragment, error) {
	r := req.Rand
	univ, err := inst.Universe(req.Universe, req.Volume)
	if err != nil {
		return nil, err
	}
	bound := min(len(univ)-3, abs(int(evolution*float64(len(univ))))) + 2
	bound = max(1, min(bound, len(univ)))

	p := Repeat{
		Pitch:     univ[r.IntN(bound)],
		Interval:  repeatIntervals[r.IntN(min(6, beats+1)+1)],
		Evolution: evolution,
		Extended:  extended,
	}
	room := req.Measure - v.Offset()
	fit := func() int {
		return min(beats, int((room-p.TailLength())/score.TicksPerBeat))
	}
	d := fit()
	if d < 1 && p.Extended {
		p.Extended = false
		d = fit()
	}
	if d < 1 {
		return silenceOnly(req)
	}
	p.Length = score.Beats(d)

	frag, err := ComposeRepeated(r, p)
	if err != nil {
		return nil, err
	}
	frag.Sounding()[0].Dynamic = o.dynamic
	return finish(frag, v.Offset(), req, false)
}

func (o *Ostinato) glissando(req Request, inst score.Instrument, v Voice, beats int, evolution float64, extended bool) (*score.Fragment, error) {
	r := req.Rand
	univ, err := inst.Universe(req.Universe, req.Volume)
	if err != nil {
		return nil, err
	}
	g := min(beats, 2)
	lead := choose(r, glissandoLeads) + score.Beats(beats-g)

	upper := univ[len(univ)-len(univ)/2 : len(univ)-1]
	if len(upper) == 0 {
		upper = univ[len(univ)-1:]
	}
	p := Glissando{
		Pitch:     choose(r, upper),
		Length:    score.Beats(g),
		Evolution: evolution,
		Extended:  extended,
		Dynamic:   o.dynamic,
	}

	room := req.Measure - v.Offset()
	if p.TotalLength() > room {
		p.Extended = false
	}
	if p.TotalLength() > room {
		p.Length = room.WholeBeats()
	}
	if p.Length < score.TicksPerBeat {
		return silenceOnly(req)
	}
	lead = min(lead, room-p.TotalLength())
	p.StartPos = lead.BeatFraction()

	gliss, err := ComposeGlissando(r, p)
	if err != nil {
		return nil, err
	}
	frag := score.NewFragment()
	if lead > 0 {
		rest, err := ComposeSilence(lead)
		if err != nil {
			return nil, err
		}
		frag.Append(rest)
	}
	frag.Append(gliss)
	return finish(frag, v.Offset(), req, false)
}
