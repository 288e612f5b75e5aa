package composer

import (
	"fmt"

	"github.com/james-see/tasteofcontrol/pkg/score"
)

var (
	half    = score.TicksPerBeat / 2
	quarter = score.TicksPerBeat / 4
)

// Repeat configures ComposeRepeated.
type Repeat struct {
	Pitch int
	// Length is the span covered by the repeated notes, tail excluded.
	Length score.Duration
	// Interval is the distance between two repeated notes.
	Interval score.Duration
	// Evolution is the chance that a plain repeated note gets a short slide.
	Evolution float64
	// Extended replaces the accented closing eighth with a two-beat glissando.
	Extended bool
}

// TailLength is the duration ComposeRepeated adds after Length.
func (p Repeat) TailLength() score.Duration {
	if p.Extended {
		return score.Beats(2)
	}
	return half
}

// ComposeRepeated writes a run of staccato notes on one pitch. Intervals
// without a single token are written as complete tuplet groups.
func ComposeRepeated(r Rand, p Repeat) (*score.Fragment, error) {
	if p.Interval <= 0 {
		return nil, fmt.Errorf("%w: repeat interval %s", score.ErrUnrepresentableDuration, p.Interval)
	}
	class, err := score.Classify(p.Interval)
	if err != nil {
		return nil, err
	}
	count := int(p.Length / p.Interval)

	frag := score.NewFragment()
	switch class.Kind {
	case score.KindSimple:
		for range count {
			n := score.NewNote(p.Pitch, class.Token)
			n.Articulation = score.Staccato
			if r.Float64() < p.Evolution {
				n.Slide = -2
			}
			frag.Append(n)
		}
		if off := frag.RealDuration().BeatFraction(); off != 0 {
			lead, err := ComposeSilence(score.TicksPerBeat - off)
			if err != nil {
				return nil, err
			}
			frag.Prepend(lead)
		}
	case score.KindTuplet:
		for _, t := range repeatedTuplets(p.Pitch, class.Tuplet, count) {
			frag.Append(t)
		}
	}

	if p.Extended {
		gliss, err := LongGlissando(p.Pitch, score.Beats(2), 0, -2)
		if err != nil {
			return nil, err
		}
		frag.Append(gliss)
		return frag, nil
	}
	closing := score.NewNote(p.Pitch, score.Eighth)
	closing.Articulation = score.Accent
	frag.Append(closing)
	return frag, nil
}

// tupletGroups fills consecutive groups of spec.Arity slots.
type tupletGroups struct {
	spec    score.TupletSpec
	current *score.Tuplet
	used    int
	groups  []*score.Tuplet
}

func (g *tupletGroups) free() int {
	return g.spec.Arity - g.used
}

func (g *tupletGroups) add(n *score.Note, slots int) {
	if g.current == nil {
		g.current = score.NewTuplet(g.spec)
		g.groups = append(g.groups, g.current)
	}
	g.current.Append(n)
	g.used += slots
	if g.used >= g.spec.Arity {
		g.current = nil
		g.used = 0
	}
}

// close pads the open group with slot rests.
func (g *tupletGroups) close() []*score.Tuplet {
	for g.current != nil {
		g.add(score.NewRest(g.spec.Slot), 1)
	}
	return g.groups
}

func repeatedTuplets(pitch int, spec score.TupletSpec, count int) []*score.Tuplet {
	g := &tupletGroups{spec: spec}
	for range score.TupletStartSilence(spec, count) {
		g.add(score.NewRest(spec.Slot), 1)
	}
	pendingRest := false
	for range count {
		if pendingRest {
			g.add(score.NewRest(spec.Slot), 1)
			pendingRest = false
		}
		if spec.Double && g.free() == 1 {
			// A doubled note cannot straddle two groups: write it short and
			// rest for the slot it would have spilled into.
			n := score.NewNote(pitch, spec.Slot)
			n.Articulation = score.Staccato
			g.add(n, 1)
			pendingRest = true
			continue
		}
		n := score.NewNote(pitch, spec.NoteToken())
		n.Articulation = score.Staccato
		g.add(n, spec.SlotsPerNote())
	}
	if pendingRest {
		g.add(score.NewRest(spec.Slot), 1)
	}
	return g.close()
}

// LongGlissando writes a glissando of exactly length that starts at
// startPos inside the current beat and slides by interval semitones. The
// notes between both ends are skipped by the glissando line.
func LongGlissando(start int, length, startPos score.Duration, interval int) (*score.Fragment, error) {
	startPos = startPos.BeatFraction()
	head, tail := score.TicksPerBeat-startPos, startPos
	if startPos == 0 {
		head, tail = score.TicksPerBeat, score.TicksPerBeat
		if length < score.Beats(2) {
			head, tail = length/2, length/2
		}
	}
	middle := length - head - tail
	if middle < 0 || middle.BeatFraction() != 0 {
		return nil, fmt.Errorf("%w: glissando of %s beats from %s", score.ErrUnrepresentableDuration, length, startPos)
	}
	headToken, ok := score.TokenFor(head)
	if !ok {
		return nil, fmt.Errorf("%w: glissando head of %s beats", score.ErrUnrepresentableDuration, head)
	}
	tailToken, ok := score.TokenFor(tail)
	if !ok {
		return nil, fmt.Errorf("%w: glissando end of %s beats", score.ErrUnrepresentableDuration, tail)
	}

	first := score.NewNote(start, headToken)
	first.Glissando = true
	first.Post = append(first.Post, score.MarkGlissandoSkipOn)
	frag := score.NewFragment(first)
	for range int(middle / score.TicksPerBeat) {
		frag.Append(score.NewNote(start, score.Quarter))
	}
	last := score.NewNote(start+interval, tailToken)
	last.Pre = append(last.Pre, score.MarkGlissandoSkipOff, score.MarkIgnoreAccidental)
	last.Notehead = score.NoteheadHidden
	frag.Append(last)
	return frag, nil
}

// Glissando configures ComposeGlissando.
type Glissando struct {
	Pitch  int
	Length score.Duration
	// StartPos is where the glissando starts inside the beat.
	StartPos  score.Duration
	Evolution float64
	// Extended adds a second, rising glissando after a half-beat rest.
	Extended bool
	Dynamic  score.Dynamic
}

// TotalLength is the duration ComposeGlissando writes.
func (p Glissando) TotalLength() score.Duration {
	if p.Extended {
		return 2*p.Length + half
	}
	return p.Length
}

// ComposeGlissando writes a falling long glissando, optionally answered by
// a rising one that starts a little higher.
func ComposeGlissando(r Rand, p Glissando) (*score.Fragment, error) {
	frag, err := LongGlissando(p.Pitch, p.Length, p.StartPos, -2)
	if err != nil {
		return nil, err
	}
	frag.Notes()[0].Dynamic = p.Dynamic
	if !p.Extended {
		return frag, nil
	}
	frag.Append(score.NewRest(score.Eighth))
	next := p.StartPos + frag.RealDuration()
	jump := between(r, 1, 2+int(p.Evolution)*3)
	second, err := LongGlissando(p.Pitch+jump, p.Length, next, 2)
	if err != nil {
		return nil, err
	}
	frag.Append(second)
	return frag, nil
}

// Trill configures ComposeTrill.
type Trill struct {
	Universe []int
	// Anchor is the index of the trilled pitch in Universe.
	Anchor int
	// Length covers the approach run and the trilled note.
	Length score.Duration
	// Offset is where the fragment starts inside the measure.
	Offset score.Duration
	// Arity is the subdivision of the surrounding texture. Anchors above it
	// get an approach run.
	Arity    int
	Extended bool
	Dynamic  score.Dynamic
}

// RunLength is the length of the closing 32nd-note run of an extended trill
// that ends at end.
func RunLength(end score.Duration) score.Duration {
	return score.TicksPerBeat - end.BeatFraction()
}

// ComposeTrill writes an optional ascending approach, a tied trilled note
// and, when extended, a 32nd-note run that reaches the next beat.
func ComposeTrill(p Trill) (*score.Fragment, error) {
	if p.Anchor < 0 || p.Anchor >= len(p.Universe) {
		return nil, fmt.Errorf("%w: trill anchor %d in a universe of %d", score.ErrLookupMiss, p.Anchor, len(p.Universe))
	}
	start := p.Universe[p.Anchor]
	trillTo := start + 1
	switch {
	case p.Anchor+1 < len(p.Universe):
		trillTo = p.Universe[p.Anchor+1]
	case p.Anchor > 0:
		trillTo = p.Universe[p.Anchor-1]
	}

	frag := score.NewFragment()
	if p.Anchor >= p.Arity+1 {
		phrase := score.NewPhrase()
		for idx := p.Anchor / 2; idx < p.Anchor; idx++ {
			phrase.Append(score.NewNote(p.Universe[idx], score.Sixteenth))
		}
		phrase.Notes()[0].Expression = score.Crescendo
		approach := score.NewFragment(score.NewRest(score.Sixteenth), phrase)
		if approach.RealDuration()+half <= p.Length {
			frag.Append(approach)
		}
	}

	held := p.Length - frag.RealDuration()
	tokens, err := score.DecomposeAligned(held, p.Offset+frag.RealDuration())
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: no room for the trilled note", score.ErrUnrepresentableDuration)
	}
	for i, t := range tokens {
		n := score.NewNote(start, t)
		n.Tie = i < len(tokens)-1
		if i == 0 {
			n.SetTrill(trillTo)
			n.Dynamic = p.Dynamic
		}
		frag.Append(n)
	}

	if !p.Extended {
		return frag, nil
	}
	count := int(RunLength(p.Offset+frag.RealDuration()) / score.Unit)
	run := score.NewPhrase()
	top := false
	for k := range count {
		idx := p.Anchor + k
		pitch := 0
		switch {
		case idx < len(p.Universe):
			pitch = p.Universe[idx]
		case top || len(p.Universe) < 2:
			pitch = p.Universe[len(p.Universe)-1]
			top = !top
		default:
			pitch = p.Universe[len(p.Universe)-2]
			top = !top
		}
		run.Append(score.NewNote(pitch, score.ThirtySecond))
	}
	notes := run.Notes()
	notes[0].Expression = score.Crescendo
	notes[0].Pre = append(notes[0].Pre, score.MarkStopTrill)
	last := notes[len(notes)-1]
	last.Dynamic = score.SFZ
	last.Articulation = score.Staccato
	frag.Append(run)
	return frag, nil
}

// NoiseRun configures ComposeNoise.
type NoiseRun struct {
	Pitch  int
	Length score.Duration
	// Offset is where the fragment starts inside the measure.
	Offset score.Duration
}

// ComposeNoise writes a tied run of cross-headed notes that swells to forte
// half way and fades out again.
func ComposeNoise(p NoiseRun) (*score.Fragment, error) {
	var tokens []score.Token
	head := (score.TicksPerBeat - p.Offset.BeatFraction()) % score.TicksPerBeat
	head = min(head, p.Length)
	first, err := score.Decompose(head)
	if err != nil {
		return nil, err
	}
	tokens = append(tokens, first...)
	rest := p.Length - head
	for range int(rest / score.TicksPerBeat) {
		tokens = append(tokens, score.Quarter)
	}
	last, err := score.Decompose(rest.BeatFraction())
	if err != nil {
		return nil, err
	}
	tokens = append(tokens, last...)
	if len(tokens) == 0 {
		return score.NewFragment(), nil
	}

	frag := score.NewFragment()
	notes := make([]*score.Note, len(tokens))
	for i, t := range tokens {
		n := score.NewNote(p.Pitch, t)
		n.Notehead = score.NoteheadCross
		n.Tie = i < len(tokens)-1
		notes[i] = n
		frag.Append(n)
	}
	notes[0].Dynamic = score.PP
	notes[0].Expression = score.Crescendo
	if peak := len(notes) / 2; peak > 0 {
		notes[peak].Dynamic = score.F
		notes[peak].Expression = score.Diminuendo
		if end := len(notes) - 1; end > peak {
			notes[end].Expression = score.HairpinEnd
		}
	}
	return frag, nil
}
