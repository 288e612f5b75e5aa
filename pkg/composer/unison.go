package composer

import (
	"fmt"
	"slices"

	"github.com/james-see/tasteofcontrol/pkg/score"
)

// unisonVolume is the volume from which converging lines move in sixteenths.
const unisonVolume = 0.6

// Unison writes staggered lines that converge on one shared pitch and hold
// it to the bar line.
type Unison struct {
	base    score.Dynamic
	dynamic score.Dynamic
}

// NewUnison returns the unison variant.
func NewUnison() *Unison {
	return &Unison{base: score.MF, dynamic: score.MF}
}

func (u *Unison) Name() string { return "unison" }

func (u *Unison) SetDynamic(direction int, volume float64) {
	u.dynamic = dynamicShift(u.base, direction, volume)
}

func (u *Unison) Compose(req Request) (map[string]*score.Fragment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var ensemble []score.Instrument
	for i, inst := range req.Instruments {
		if req.Voices[i].Type != VoiceSilent {
			ensemble = append(ensemble, inst)
		}
	}

	out := make(map[string]*score.Fragment, len(req.Instruments))
	if len(ensemble) == 0 {
		for _, inst := range req.Instruments {
			frag, err := silenceOnly(req)
			if err != nil {
				return nil, err
			}
			out[inst.Name] = frag
		}
		return out, nil
	}

	common := SharedPitches(ensemble, req.Universe, req.Volume >= score.ExtendedVolume)
	if len(common) == 0 {
		common = SharedPitches(ensemble, req.Universe, true)
	}
	if len(common) == 0 {
		return nil, fmt.Errorf("%w: instruments share no pitch", score.ErrLookupMiss)
	}
	direction := max(0, min(req.Direction, 5))
	target := common[direction*(len(common)-1)/5]

	universes := make([][]int, len(req.Instruments))
	for i, inst := range req.Instruments {
		if req.Voices[i].Type == VoiceSilent {
			continue
		}
		univ, err := inst.Universe(req.Universe, req.Volume)
		if err != nil {
			return nil, fmt.Errorf("unison voice %s: %w", inst.Name, err)
		}
		// quiet voices walk their narrow range, then reach for the target
		if !slices.Contains(univ, target) {
			univ = append(slices.Clone(univ), target)
			slices.Sort(univ)
		}
		universes[i] = univ
	}

	hold := min(score.Beats(2), (req.Measure / 2).WholeBeats())
	if hold == 0 {
		hold = req.Measure
	}
	arrival := req.Measure - hold
	step := half
	if req.Volume > unisonVolume {
		step = quarter
	}
	stepToken, _ := score.TokenFor(step)

	entered := 0
	for i, inst := range req.Instruments {
		v := req.Voices[i]
		if v.Type == VoiceSilent {
			frag, err := silenceOnly(req)
			if err != nil {
				return nil, err
			}
			out[inst.Name] = frag
			continue
		}
		entry := min(v.Offset()+score.Duration(entered)*half, arrival)
		entered++
		frag, err := u.converge(req, universes[i], target, entry, arrival, step, stepToken, v.Type == VoiceExtended)
		if err != nil {
			return nil, fmt.Errorf("unison voice %s: %w", inst.Name, err)
		}
		out[inst.Name] = frag
	}
	return out, nil
}

func (u *Unison) converge(req Request, univ []int, target int, entry, arrival, step score.Duration, stepToken score.Token, trill bool) (*score.Fragment, error) {
	targetIdx := slices.Index(univ, target)
	count := int((arrival - entry) / step)
	route, err := BuildIndexRouteTo(req.Rand, count+1, len(univ), targetIdx)
	if err != nil {
		return nil, err
	}

	frag := score.NewFragment()
	if entry > 0 {
		rest, err := ComposeSilence(entry)
		if err != nil {
			return nil, err
		}
		frag.Append(rest)
	}
	for i := range count {
		n := score.NewNote(univ[route[i]], stepToken)
		if i == 0 {
			n.Dynamic = u.dynamic
			n.Expression = score.Crescendo
			n.Slur = score.SlurBegin
		}
		frag.Append(n)
	}

	tokens, err := score.DecomposeAligned(req.Measure-arrival, arrival)
	if err != nil {
		return nil, err
	}
	for i, t := range tokens {
		n := score.NewNote(target, t)
		n.Tie = i < len(tokens)-1
		if i == 0 {
			if count > 0 {
				n.Slur = score.SlurEnd
				n.Expression = score.HairpinEnd
			} else {
				n.Dynamic = u.dynamic
			}
			if trill {
				n.SetTrill(neighbour(univ, targetIdx))
			}
		}
		frag.Append(n)
	}
	return frag, nil
}

func neighbour(univ []int, idx int) int {
	if idx+1 < len(univ) {
		return univ[idx+1]
	}
	if idx > 0 {
		return univ[idx-1]
	}
	return univ[idx] + 1
}

// SharedPitches returns, sorted, the pitches of universe every instrument
// can play.
func SharedPitches(instruments []score.Instrument, universe []int, extended bool) []int {
	var out []int
	for _, p := range universe {
		if slices.ContainsFunc(instruments, func(inst score.Instrument) bool { return !inst.Contains(p, extended) }) {
			continue
		}
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return out
}
