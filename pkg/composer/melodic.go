package composer

import (
	"fmt"

	"github.com/james-see/tasteofcontrol/pkg/score"
)

// climaxDirection is the direction from which melodies end on an accent.
const climaxDirection = 4

var (
	arities          = []int{3, 4, 5, 6, 7}
	baseArityWeights = map[int]float64{3: 10, 4: 5, 5: 3, 6: 0, 7: 0}
	// louder measures favour denser subdivisions
	volumeArityBonus = map[int]float64{4: 1, 5: 4, 6: 3, 7: 2}

	climaxTailIntervals = []score.Duration{
		score.MustFraction(1, 5),
		score.MustFraction(1, 4),
		score.MustFraction(1, 3),
		score.MustFraction(1, 2),
		score.MustFraction(3, 4),
	}
)

// Melodic writes contour melodies in mixed subdivisions with trills anchored
// on the pitch the melodies insist on.
type Melodic struct {
	base    score.Dynamic
	dynamic score.Dynamic
}

// NewMelodic returns the melodic variant.
func NewMelodic() *Melodic {
	return &Melodic{base: score.PP, dynamic: score.PP}
}

func (m *Melodic) Name() string { return "melodic" }

func (m *Melodic) SetDynamic(direction int, volume float64) {
	m.dynamic = dynamicShift(m.base, direction, volume)
}

func (m *Melodic) Compose(req Request) (map[string]*score.Fragment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	r := req.Rand
	evolution := sqrtVolume(req.Volume) / 4
	desired := min(5, between(r, 2, 2+req.Direction))
	climax := req.Direction >= climaxDirection

	out := make(map[string]*score.Fragment, len(req.Instruments))
	used := map[int]bool{}
	var sounding []int
	for _, i := range trillsLast(req.Voices) {
		inst, v := req.Instruments[i], req.Voices[i]
		var frag *score.Fragment
		var err error
		switch v.Type {
		case VoiceSilent:
			frag, err = silenceOnly(req)
		case VoiceSecondary:
			frag, err = m.trill(req, inst, v, evolution, desired, sounding)
		default:
			extended := v.Type == VoiceExtended || r.Float64() < float64(req.Direction)/10
			arity := pickArity(r, used, req.Volume)
			used[arity] = true
			frag, err = m.melody(req, inst, v, melodyShape{
				arity:     arity,
				beats:     desired,
				evolution: evolution,
				climax:    climax,
				extended:  extended,
			})
			if err == nil {
				sounding = append(sounding, frag.Pitches()...)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("melodic voice %s: %w", inst.Name, err)
		}
		out[inst.Name] = frag
	}
	return out, nil
}

// trillsLast orders voices so trills see every melody written before them.
func trillsLast(voices []Voice) []int {
	order := make([]int, 0, len(voices))
	var trills []int
	for i, v := range voices {
		if v.Type == VoiceSecondary {
			trills = append(trills, i)
			continue
		}
		order = append(order, i)
	}
	return append(order, trills...)
}

func pickArity(r Rand, used map[int]bool, volume float64) int {
	weights := make([]float64, len(arities))
	var total float64
	for i, a := range arities {
		if used[a] {
			continue
		}
		weights[i] = baseArityWeights[a] + volumeArityBonus[a]*volume
		total += weights[i]
	}
	if total <= 0 {
		for i, a := range arities {
			weights[i] = baseArityWeights[a] + volumeArityBonus[a]*volume
		}
	}
	return arities[weighted(r, weights)]
}

type melodyShape struct {
	arity     int
	beats     int
	evolution float64
	climax    bool
	extended  bool
}

func (m *Melodic) melody(req Request, inst score.Instrument, v Voice, shape melodyShape) (*score.Fragment, error) {
	r := req.Rand
	univ, err := inst.Universe(req.Universe, req.Volume)
	if err != nil {
		return nil, err
	}
	var lead score.Duration
	if r.IntN(2) == 1 {
		lead = score.TicksPerBeat
	}
	tail, err := melodyTail(r, shape.climax, shape.extended)
	if err != nil {
		return nil, err
	}

	room := req.Measure - v.Offset()
	fit := func() int {
		return min(shape.beats, int((room-lead-tail.RealDuration())/score.TicksPerBeat))
	}
	beats := fit()
	if beats < 1 && lead > 0 {
		lead = 0
		beats = fit()
	}
	if beats < 1 {
		tail = score.NewFragment()
		beats = fit()
	}
	if beats < 1 {
		return silenceOnly(req)
	}

	body, last, err := melodyBody(r, univ, shape.arity, beats, shape.evolution, m.dynamic, shape.climax || shape.extended, shape.climax)
	if err != nil {
		return nil, err
	}
	tail.Transpose(last)

	frag := score.NewFragment()
	if lead > 0 {
		rest, err := ComposeSilence(lead)
		if err != nil {
			return nil, err
		}
		frag.Append(rest)
	}
	frag.Append(body, tail)
	return finish(frag, v.Offset(), req, false)
}

// melodyTail is written on pitch 0 and transposed onto the last melody note.
func melodyTail(r Rand, climax, extended bool) (*score.Fragment, error) {
	switch {
	case climax && extended:
		tail, err := ComposeRepeated(r, Repeat{
			Length:   score.TicksPerBeat,
			Interval: choose(r, climaxTailIntervals),
		})
		if err != nil {
			return nil, err
		}
		first := tail.Sounding()[0]
		first.Dynamic = score.SFZ
		first.Expression = score.Diminuendo
		return tail, nil
	case climax:
		n := score.NewNote(0, score.Eighth)
		n.Dynamic = score.SFZ
		n.Articulation = score.Accent
		return score.NewFragment(n), nil
	case extended:
		return LongGlissando(0, score.TicksPerBeat, 0, -2)
	}
	return score.NewFragment(), nil
}

// melodyBody writes beats groups of arity slots: leading rests, then a
// contour melody. It returns the last pitch.
func melodyBody(r Rand, univ []int, arity, beats int, evolution float64, dyn score.Dynamic, keepSwell, climax bool) (*score.Fragment, int, error) {
	slots := arity * beats
	rests := int((0.95 - uniform(r, 0, evolution)) * float64(arity))
	rests = max(0, min(rests, slots-1))
	count := slots - rests

	route, err := BuildIndexRoute(r, count, len(univ))
	if err != nil {
		return nil, 0, err
	}

	slot := score.Sixteenth
	spec, isTuplet := score.ArityTuplets[arity]
	if isTuplet {
		slot = spec.Slot
	}
	leaves := make([]*score.Note, 0, slots)
	for range rests {
		leaves = append(leaves, score.NewRest(slot))
	}
	middle := count / 2
	for i, idx := range route {
		n := score.NewNote(univ[idx], slot)
		switch {
		case i == 0:
			n.Dynamic = dyn
			if count > 1 {
				n.Slur = score.SlurBegin
			}
		case i == 1:
			n.Expression = score.Crescendo
		case i == middle && !keepSwell:
			n.Expression = score.Diminuendo
		}
		if i == count-1 && i > 0 {
			n.Slur = score.SlurEnd
			if !climax {
				n.Expression = score.HairpinEnd
			}
		}
		leaves = append(leaves, n)
	}

	frag := score.NewFragment()
	if !isTuplet {
		for _, n := range leaves {
			frag.Append(n)
		}
	} else {
		g := &tupletGroups{spec: spec}
		for _, n := range leaves {
			g.add(n, 1)
		}
		for _, t := range g.close() {
			frag.Append(t)
		}
	}
	return frag, univ[route[len(route)-1]], nil
}

func (m *Melodic) trill(req Request, inst score.Instrument, v Voice, evolution float64, desired int, sounding []int) (*score.Fragment, error) {
	r := req.Rand
	univ, err := inst.Universe(req.Universe, req.Volume)
	if err != nil {
		return nil, err
	}
	var anchor int
	if p, ok := mode(sounding); ok {
		anchor = nearestIndex(univ, p)
	} else {
		top := min(len(univ)-1, 1+3*int(evolution*float64(len(univ)-1))/2)
		anchor = r.IntN(top + 1)
	}

	extended := r.Float64() < float64(req.Direction)/10
	room := req.Measure - v.Offset()
	length := func() score.Duration {
		avail := room
		if extended {
			avail -= score.TicksPerBeat
		}
		return min(score.Beats(desired), avail.WholeBeats())
	}
	l := length()
	if l < score.TicksPerBeat && extended {
		extended = false
		l = length()
	}
	if l < score.TicksPerBeat {
		return silenceOnly(req)
	}

	frag, err := ComposeTrill(Trill{
		Universe: univ,
		Anchor:   anchor,
		Length:   l,
		Offset:   v.Offset(),
		Arity:    4,
		Extended: extended,
		Dynamic:  m.dynamic,
	})
	if err != nil {
		return nil, err
	}
	return finish(frag, v.Offset(), req, !extended)
}

// mode returns the most frequent pitch, the lowest one on ties.
func mode(pitches []int) (int, bool) {
	if len(pitches) == 0 {
		return 0, false
	}
	counts := map[int]int{}
	for _, p := range pitches {
		counts[p]++
	}
	best, bestCount := 0, 0
	for p, c := range counts {
		if c > bestCount || (c == bestCount && p < best) {
			best, bestCount = p, c
		}
	}
	return best, true
}

func nearestIndex(univ []int, pitch int) int {
	best := 0
	for i, p := range univ {
		if abs(p-pitch) < abs(univ[best]-pitch) {
			best = i
		}
	}
	return best
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
