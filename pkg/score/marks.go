package score

import "fmt"

// Dynamic is a LilyPond dynamic mark name.
type Dynamic string

const (
	DynamicNone Dynamic = ""
	PPP         Dynamic = "ppp"
	PP          Dynamic = "pp"
	P           Dynamic = "p"
	MP          Dynamic = "mp"
	MF          Dynamic = "mf"
	F           Dynamic = "f"
	FF          Dynamic = "ff"
	FFF         Dynamic = "fff"
	SFZ         Dynamic = "sfz"
)

// DynamicLevels orders the graded dynamics from softest to loudest.
var DynamicLevels = []Dynamic{PPP, PP, P, MP, MF, F, FF, FFF}

// DynamicLevel returns the i-th graded dynamic.
func DynamicLevel(i int) (Dynamic, error) {
	if i < 0 || i >= len(DynamicLevels) {
		return DynamicNone, fmt.Errorf("%w: dynamic level %d", ErrLookupMiss, i)
	}
	return DynamicLevels[i], nil
}

// Articulation is attached after the duration of a note.
type Articulation int

const (
	ArticulationNone Articulation = iota
	Accent
	Staccato
	Tenuto
)

// Expression is a hairpin event.
type Expression int

const (
	ExpressionNone Expression = iota
	Crescendo
	Diminuendo
	HairpinEnd
)

// Notehead selects the glyph used for a note.
type Notehead int

const (
	NoteheadNormal Notehead = iota
	NoteheadHidden
	NoteheadCross
)

// Mark is a layout command emitted before or after a note.
type Mark int

const (
	MarkGlissandoSkipOn Mark = iota
	MarkGlissandoSkipOff
	MarkStopTrill
	MarkIgnoreAccidental
)

// Slur marks the first and last note of a phrase.
type Slur int

const (
	SlurNone Slur = iota
	SlurBegin
	SlurEnd
)
