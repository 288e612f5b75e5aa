package score

import "fmt"

// Ratio is a tuplet ratio: Num notes in the time of Den.
type Ratio struct {
	Num int
	Den int
}

// TupletSpec describes how a repeat interval that has no single token is laid
// out inside a tuplet.
type TupletSpec struct {
	Arity int
	Ratio Ratio
	// Slot is the written token of one tuplet subdivision.
	Slot Token
	// Double notes occupy two slots.
	Double bool
}

// SlotDuration is the real (scaled) length of one subdivision.
func (s TupletSpec) SlotDuration() Duration {
	d := tokenValues[s.Slot]
	return d * Duration(s.Ratio.Den) / Duration(s.Ratio.Num)
}

// GroupDuration is the real length of one complete group of Arity slots.
func (s TupletSpec) GroupDuration() Duration {
	return s.SlotDuration() * Duration(s.Arity)
}

// NoteToken is the written token of one repeated note.
func (s TupletSpec) NoteToken() Token {
	if !s.Double {
		return s.Slot
	}
	t, _ := s.Slot.Double()
	return t
}

// SlotsPerNote is 2 for doubled specs and 1 otherwise.
func (s TupletSpec) SlotsPerNote() int {
	if s.Double {
		return 2
	}
	return 1
}

var (
	triplet    = Ratio{3, 2}
	quintuplet = Ratio{5, 4}
	sextuplet  = Ratio{6, 4}
	septuplet  = Ratio{7, 4}
)

// ArityTuplets maps a subdivision count to its one-beat tuplet layout.
var ArityTuplets = map[int]TupletSpec{
	3: {Arity: 3, Ratio: triplet, Slot: Eighth},
	5: {Arity: 5, Ratio: quintuplet, Slot: Sixteenth},
	6: {Arity: 6, Ratio: sextuplet, Slot: Sixteenth},
	7: {Arity: 7, Ratio: septuplet, Slot: Sixteenth},
}

// repeatTuplets covers the repeat intervals that need a tuplet.
var repeatTuplets = map[Duration]TupletSpec{
	MustFraction(1, 3): {Arity: 3, Ratio: triplet, Slot: Eighth},
	MustFraction(2, 3): {Arity: 3, Ratio: triplet, Slot: Eighth, Double: true},
	MustFraction(1, 5): {Arity: 5, Ratio: quintuplet, Slot: Sixteenth},
	MustFraction(2, 5): {Arity: 5, Ratio: quintuplet, Slot: Sixteenth, Double: true},
	MustFraction(1, 6): {Arity: 6, Ratio: sextuplet, Slot: Sixteenth},
	MustFraction(1, 7): {Arity: 7, Ratio: septuplet, Slot: Sixteenth},
	MustFraction(2, 7): {Arity: 7, Ratio: septuplet, Slot: Sixteenth, Double: true},
}

// Kind tags a Classification.
type Kind int

const (
	KindSimple Kind = iota
	KindTuplet
)

// Classification is the result of Classify: either a single token or a
// tuplet layout.
type Classification struct {
	Kind   Kind
	Token  Token
	Tuplet TupletSpec
}

// Classify decides how a repeat interval is notated.
func Classify(d Duration) (Classification, error) {
	if t, ok := valueTokens[d]; ok {
		return Classification{Kind: KindSimple, Token: t}, nil
	}
	if spec, ok := repeatTuplets[d]; ok {
		return Classification{Kind: KindTuplet, Tuplet: spec}, nil
	}
	return Classification{}, fmt.Errorf("%w: no token or tuplet for %s beats", ErrUnrepresentableDuration, d)
}

// TupletStartSilence returns how many leading slot rests a tuplet of notes
// repeated notes needs so that (silence + slots) is a multiple of the arity.
func TupletStartSilence(spec TupletSpec, notes int) int {
	slots := notes * spec.SlotsPerNote()
	silence := spec.Arity - slots%spec.Arity
	if silence == spec.Arity {
		return 0
	}
	return silence
}
