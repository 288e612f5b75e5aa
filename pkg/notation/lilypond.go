// Package notation serializes composed music as LilyPond source and as
// Standard MIDI Files.
package notation

import (
	"fmt"
	"strings"

	"github.com/james-see/tasteofcontrol/pkg/engine"
	"github.com/james-see/tasteofcontrol/pkg/score"
)

const (
	// Version is the LilyPond language version written in score headers.
	Version = "2.24.0"
	// Tempo is the quarter-note tempo of every rendered score.
	Tempo = 80.0
)

var pitchNames = [12]string{"c", "cis", "d", "dis", "e", "f", "fis", "g", "gis", "a", "ais", "b"}

var markCommands = map[score.Mark]string{
	score.MarkGlissandoSkipOn:  `\glissandoSkipOn`,
	score.MarkGlissandoSkipOff: `\glissandoSkipOff`,
	score.MarkStopTrill:        `\stopTrillSpan`,
	score.MarkIgnoreAccidental: `\once \omit Accidental`,
}

var articulations = map[score.Articulation]string{
	score.Accent:   "->",
	score.Staccato: "-.",
	score.Tenuto:   "--",
}

var expressions = map[score.Expression]string{
	score.Crescendo:  `\<`,
	score.Diminuendo: `\>`,
	score.HairpinEnd: `\!`,
}

// Pitch renders a semitone offset in absolute LilyPond notation, 0 being c'.
func Pitch(p int) string {
	octave := floorDiv(p, 12)
	name := pitchNames[p-octave*12]
	marks := octave + 1
	switch {
	case marks > 0:
		return name + strings.Repeat("'", marks)
	case marks < 0:
		return name + strings.Repeat(",", -marks)
	}
	return name
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

type writer struct {
	sb strings.Builder
	// phrase slurs keyed by leaf
	slurs map[*score.Note]string
}

func (w *writer) word(s string) {
	if s == "" {
		return
	}
	if w.sb.Len() > 0 {
		w.sb.WriteByte(' ')
	}
	w.sb.WriteString(s)
}

func (w *writer) nodes(nodes []score.Node) {
	for _, n := range nodes {
		switch v := n.(type) {
		case *score.Note:
			w.note(v)
		case *score.Tuplet:
			w.word(fmt.Sprintf(`\tuplet %d/%d {`, v.Ratio.Num, v.Ratio.Den))
			for _, m := range v.Notes {
				w.note(m)
			}
			w.word("}")
		case *score.Fragment:
			if v.Phrase {
				w.phrase(v)
			}
			w.nodes(v.Nodes)
		}
	}
}

func (w *writer) phrase(f *score.Fragment) {
	var sounding []*score.Note
	for _, n := range f.Notes() {
		if !n.Rest {
			sounding = append(sounding, n)
		}
	}
	if len(sounding) < 2 {
		return
	}
	w.slurs[sounding[0]] += "("
	w.slurs[sounding[len(sounding)-1]] += ")"
}

func (w *writer) note(n *score.Note) {
	for _, m := range n.Pre {
		w.word(markCommands[m])
	}
	if n.Rest {
		head := "r"
		if n.Hidden {
			head = "s"
		}
		w.word(head + string(n.Token) + post(n))
		return
	}

	switch n.Notehead {
	case score.NoteheadHidden:
		w.word(`\once \hide NoteHead`)
	case score.NoteheadCross:
		w.word(`\once \override NoteHead.style = #'cross`)
	}
	if n.TrillTo != nil {
		w.word(`\pitchedTrill`)
	}

	var sb strings.Builder
	sb.WriteString(Pitch(n.Pitch))
	sb.WriteString(string(n.Token))
	if n.Tie {
		sb.WriteString("~")
	}
	sb.WriteString(articulations[n.Articulation])
	if n.Dynamic != score.DynamicNone {
		sb.WriteString(`\` + string(n.Dynamic))
	}
	sb.WriteString(expressions[n.Expression])
	switch n.Slur {
	case score.SlurBegin:
		sb.WriteString("(")
	case score.SlurEnd:
		sb.WriteString(")")
	}
	sb.WriteString(w.slurs[n])
	if n.Glissando || n.Slide != 0 {
		sb.WriteString(`\glissando`)
	}
	if n.TrillTo != nil {
		sb.WriteString(`\startTrillSpan ` + Pitch(*n.TrillTo))
	}
	sb.WriteString(post(n))
	w.word(sb.String())

	if n.Slide != 0 {
		w.word(fmt.Sprintf(`\hideNotes \grace %s16 \unHideNotes`, Pitch(n.Pitch+n.Slide)))
	}
}

// post renders markup and trailing layout marks.
func post(n *score.Note) string {
	var sb strings.Builder
	if n.Markup != "" {
		fmt.Fprintf(&sb, `^\markup { \small \small %q }`, n.Markup)
	}
	for _, m := range n.Post {
		sb.WriteString(" " + markCommands[m])
	}
	return sb.String()
}

// Fragment renders a fragment as a LilyPond music expression.
func Fragment(f *score.Fragment) string {
	if f == nil {
		return ""
	}
	w := &writer{slurs: map[*score.Note]string{}}
	if f.Phrase {
		w.phrase(f)
	}
	w.nodes(f.Nodes)
	return w.sb.String()
}

// Measure renders every part of a measure, keyed by instrument name.
func Measure(m *engine.Measure) map[string]string {
	out := make(map[string]string, len(m.Parts))
	for _, p := range m.Parts {
		out[p.Instrument.Name] = measureMusic(m, p.Fragment)
	}
	return out
}

func measureMusic(m *engine.Measure, f *score.Fragment) string {
	music := Fragment(f)
	if m.TimeChanged {
		music = fmt.Sprintf(`\time %s %s`, m.Meter, music)
	}
	return music + " |"
}

// Line renders the named instrument's music across the whole score.
func Line(s *engine.Score, name string) string {
	var parts []string
	for _, m := range s.Measures {
		if p, ok := m.Part(name); ok {
			parts = append(parts, measureMusic(m, p.Fragment))
		}
	}
	return strings.Join(parts, "\n")
}

// Score renders the complete score with one staff per instrument.
func Score(s *engine.Score) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\\version %q\n\n\\score {\n  <<\n", Version)
	for _, inst := range s.Instruments {
		fmt.Fprintf(&sb, "    \\new Staff \\with {\n      instrumentName = %q\n      \\omit TimeSignature\n    } {\n", inst.Name)
		sb.WriteString("      \\override Hairpin.minimum-length = #7\n")
		sb.WriteString("      \\override Glissando.minimum-length = #5\n")
		fmt.Fprintf(&sb, "      \\tempo 4 = %d\n", int(Tempo))
		for _, line := range strings.Split(Line(s, inst.Name), "\n") {
			if line == "" {
				continue
			}
			sb.WriteString("      " + line + "\n")
		}
		sb.WriteString("    }\n")
	}
	sb.WriteString("  >>\n  \\layout { }\n}\n")
	return sb.String()
}
