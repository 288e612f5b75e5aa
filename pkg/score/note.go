package score

// Node is an element of a fragment: a note or rest, a tuplet, or a nested
// fragment.
type Node interface {
	// RealDuration is the sounding length of the node, tuplet scaling included.
	RealDuration() Duration
	// Transpose shifts every sounding pitch by delta semitones.
	Transpose(delta int)

	leaves(dst []*Note) []*Note
}

// Note is a single note or rest. Pitch is in semitones relative to middle C.
type Note struct {
	Pitch int
	Rest  bool
	// Hidden rests are spacers, they take time but print nothing.
	Hidden bool
	Token  Token

	Dynamic      Dynamic
	Articulation Articulation
	Expression   Expression
	Notehead     Notehead
	Slur         Slur
	Tie          bool
	Glissando    bool
	// Slide, when non-zero, adds a short auxiliary glissando towards
	// Pitch+Slide after the note.
	Slide int
	// TrillTo, when set, starts a pitched trill towards that pitch.
	TrillTo *int
	Markup  string

	Pre  []Mark
	Post []Mark
}

// NewNote returns a sounding note.
func NewNote(pitch int, token Token) *Note {
	return &Note{Pitch: pitch, Token: token}
}

// NewRest returns a rest.
func NewRest(token Token) *Note {
	return &Note{Rest: true, Token: token}
}

// RealDuration implements Node. Unknown tokens count as zero and are caught
// by Fragment.Validate.
func (n *Note) RealDuration() Duration {
	return tokenValues[n.Token]
}

// Transpose implements Node. Rests are unaffected.
func (n *Note) Transpose(delta int) {
	if n.Rest {
		return
	}
	n.Pitch += delta
	if n.TrillTo != nil {
		to := *n.TrillTo + delta
		n.TrillTo = &to
	}
}

func (n *Note) leaves(dst []*Note) []*Note {
	return append(dst, n)
}

// SetTrill starts a pitched trill towards pitch.
func (n *Note) SetTrill(pitch int) {
	n.TrillTo = &pitch
}

// HasMark reports whether m is among the note's pre or post marks.
func (n *Note) HasMark(m Mark) bool {
	for _, list := range [][]Mark{n.Pre, n.Post} {
		for _, x := range list {
			if x == m {
				return true
			}
		}
	}
	return false
}
