package composer

import (
	"fmt"
	"math"
	"slices"

	"github.com/james-see/tasteofcontrol/pkg/score"
)

// noisePitches are the low, unpitched sounds written with cross noteheads.
var noisePitches = []int{-13, -12, -11, -10, -9}

// Noise writes breath and key noise against reversed contours. The louder
// the measure the less noise and the wider the pitch set.
type Noise struct {
	base    score.Dynamic
	dynamic score.Dynamic
}

// NewNoise returns the noise variant.
func NewNoise() *Noise {
	return &Noise{base: score.P, dynamic: score.P}
}

func (n *Noise) Name() string { return "noise" }

func (n *Noise) SetDynamic(direction int, volume float64) {
	n.dynamic = dynamicShift(n.base, direction, volume)
}

func (n *Noise) Compose(req Request) (map[string]*score.Fragment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	r := req.Rand
	keep := max(2, int(math.Ceil(float64(len(req.Universe))*req.Volume)))
	prefix := req.Universe[:min(keep, len(req.Universe))]
	noiseSet := noisePitches[:min(len(noisePitches), 1+int(req.Volume*4))]

	out := make(map[string]*score.Fragment, len(req.Instruments))
	for i, inst := range req.Instruments {
		v := req.Voices[i]
		var frag *score.Fragment
		var err error
		switch v.Type {
		case VoiceSilent:
			frag, err = silenceOnly(req)
		case VoiceSecondary:
			frag, err = n.reversed(req, inst, v, prefix, false)
		default:
			forced := v.Type == VoiceExtended
			if r.Float64() > req.Volume {
				frag, err = n.noise(req, v, choose(r, noiseSet), forced)
			} else {
				frag, err = n.reversed(req, inst, v, prefix, forced)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("noise voice %s: %w", inst.Name, err)
		}
		out[inst.Name] = frag
	}
	return out, nil
}

func (n *Noise) noise(req Request, v Voice, pitch int, toBarLine bool) (*score.Fragment, error) {
	room := (req.Measure - v.Offset()).WholeBeats()
	if room < score.TicksPerBeat {
		return silenceOnly(req)
	}
	length := room
	if !toBarLine {
		length = min(room, score.Beats(between(req.Rand, 2, int(room/score.TicksPerBeat))))
	}
	frag, err := ComposeNoise(NoiseRun{Pitch: pitch, Length: length, Offset: v.Offset()})
	if err != nil {
		return nil, err
	}
	return finish(frag, v.Offset(), req, false)
}

func (n *Noise) reversed(req Request, inst score.Instrument, v Voice, prefix []int, accent bool) (*score.Fragment, error) {
	r := req.Rand
	univ, err := inst.Universe(prefix, req.Volume)
	if err != nil {
		univ, err = inst.Universe(req.Universe, req.Volume)
		if err != nil {
			return nil, err
		}
	}
	room := int((req.Measure - v.Offset()) / score.TicksPerBeat)
	beats := min(room, between(r, 2, 2+req.Direction))
	if beats < 1 {
		return silenceOnly(req)
	}
	token, perBeat := score.Eighth, 2
	if req.Volume > 0.5 {
		token, perBeat = score.Sixteenth, 4
	}
	route, err := BuildIndexRoute(r, beats*perBeat, len(univ))
	if err != nil {
		return nil, err
	}
	slices.Reverse(route)

	frag := score.NewFragment()
	for _, idx := range route {
		frag.Append(score.NewNote(univ[idx], token))
	}
	notes := frag.Notes()
	notes[0].Dynamic = n.dynamic
	notes[0].Expression = score.Diminuendo
	notes[0].Slur = score.SlurBegin
	last := notes[len(notes)-1]
	last.Slur = score.SlurEnd
	last.Articulation = score.Accent
	if accent {
		last.Dynamic = score.SFZ
		last.Articulation = score.Staccato
	}
	return finish(frag, v.Offset(), req, false)
}
