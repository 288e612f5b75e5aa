package notation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/james-see/tasteofcontrol/pkg/engine"
	"github.com/james-see/tasteofcontrol/pkg/score"
)

func TestPitch(t *testing.T) {
	tests := map[int]string{
		0:   "c'",
		1:   "cis'",
		11:  "b'",
		12:  "c''",
		24:  "c'''",
		-1:  "b",
		-12: "c",
		-13: "b,",
		-11: "cis",
	}
	for p, want := range tests {
		assert.Equal(t, want, Pitch(p), "pitch %d", p)
	}
}

func TestFragmentNotes(t *testing.T) {
	n := score.NewNote(2, score.Quarter)
	n.Dynamic = score.MF
	n.Articulation = score.Accent
	n.Expression = score.Crescendo
	n.Tie = true
	rest := score.NewRest(score.Eighth)
	hidden := &score.Note{Rest: true, Hidden: true, Token: score.Eighth}

	got := Fragment(score.NewFragment(n, rest, hidden))
	assert.Equal(t, `d'4~->\mf\< r8 s8`, got)
}

func TestFragmentTupletAndPhrase(t *testing.T) {
	spec := score.ArityTuplets[3]
	tup := score.NewTuplet(spec)
	tup.Append(score.NewNote(0, score.Eighth), score.NewNote(4, score.Eighth), score.NewNote(7, score.Eighth))
	phrase := score.NewPhrase(tup)

	got := Fragment(score.NewFragment(phrase))
	assert.Equal(t, `\tuplet 3/2 { c'8( e'8 g'8) }`, got)
}

func TestFragmentTrillAndMarks(t *testing.T) {
	n := score.NewNote(0, score.Half)
	n.SetTrill(2)
	last := score.NewNote(5, score.Quarter)
	last.Pre = []score.Mark{score.MarkStopTrill}
	last.Notehead = score.NoteheadCross

	got := Fragment(score.NewFragment(n, last))
	assert.Equal(t, `\pitchedTrill c'2\startTrillSpan d' \stopTrillSpan \once \override NoteHead.style = #'cross f'4`, got)
}

func TestFragmentMarkupOnRest(t *testing.T) {
	rest := score.NewRest(score.Whole)
	rest.Markup = "breathe"
	assert.Equal(t, `r1^\markup { \small \small "breathe" }`, Fragment(score.NewFragment(rest)))
}

func TestFragmentSlide(t *testing.T) {
	n := score.NewNote(7, score.Quarter)
	n.Slide = -2
	got := Fragment(score.NewFragment(n))
	assert.Equal(t, `g'4\glissando \hideNotes \grace f'16 \unHideNotes`, got)
}

func testScore() *engine.Score {
	flute := score.Instrument{Name: "Flute", Lower: 0, Upper: 24, ExtendedUpper: 31}
	clarinet := score.Instrument{Name: "Clarinet", Lower: -10, Upper: 27, ExtendedUpper: 31, Transposition: 2}

	six := engine.TimeSignature{Beats: 6, Unit: 4}
	first := &engine.Measure{
		Number:      1,
		Meter:       six,
		TimeChanged: true,
		Parts: []engine.Part{
			{Instrument: flute, Fragment: score.NewFragment(score.NewNote(0, score.DottedWhole))},
			{Instrument: clarinet, Fragment: score.NewFragment(score.NewRest(score.DottedWhole))},
		},
	}
	tied := score.NewNote(4, score.Whole)
	tied.Tie = true
	second := &engine.Measure{
		Number: 2,
		Meter:  six,
		Parts: []engine.Part{
			{Instrument: flute, Fragment: score.NewFragment(tied, score.NewNote(4, score.Half))},
			{Instrument: clarinet, Fragment: score.NewFragment(score.NewNote(2, score.DottedWhole))},
		},
	}
	return &engine.Score{
		Instruments: []score.Instrument{flute, clarinet},
		Measures:    []*engine.Measure{first, second},
	}
}

func TestMeasureAndLine(t *testing.T) {
	s := testScore()

	parts := Measure(s.Measures[0])
	require.Len(t, parts, 2)
	assert.Equal(t, `\time 6/4 c'1. |`, parts["Flute"])

	parts = Measure(s.Measures[1])
	assert.Equal(t, `e'1~ e'2 |`, parts["Flute"])

	assert.Equal(t, "\\time 6/4 r1. |\nd'1. |", Line(s, "Clarinet"))
}

func TestScore(t *testing.T) {
	out := Score(testScore())

	assert.True(t, strings.HasPrefix(out, `\version "2.24.0"`))
	assert.Equal(t, 2, strings.Count(out, `\new Staff`))
	assert.Contains(t, out, `instrumentName = "Clarinet"`)
	assert.Contains(t, out, `\override Hairpin.minimum-length = #7`)
	assert.Contains(t, out, `\override Glissando.minimum-length = #5`)
	assert.Contains(t, out, `\tempo 4 = 80`)
	assert.Contains(t, out, `\omit TimeSignature`)
	assert.Equal(t, strings.Count(out, "{"), strings.Count(out, "}"))
}
