package score

import "fmt"

// Token is a notatable duration name in LilyPond syntax.
type Token string

const (
	ThirtySecond    Token = "32"
	Sixteenth       Token = "16"
	DottedSixteenth Token = "16."
	Eighth          Token = "8"
	DottedEighth    Token = "8."
	Quarter         Token = "4"
	DottedQuarter   Token = "4."
	Half            Token = "2"
	DottedHalf      Token = "2."
	Whole           Token = "1"
	DottedWhole     Token = "1."
)

type tokenEntry struct {
	value Duration
	token Token
}

// simpleDurations is ordered from the longest token to the shortest.
var simpleDurations = []tokenEntry{
	{6 * TicksPerBeat, DottedWhole},
	{4 * TicksPerBeat, Whole},
	{3 * TicksPerBeat, DottedHalf},
	{2 * TicksPerBeat, Half},
	{TicksPerBeat * 3 / 2, DottedQuarter},
	{TicksPerBeat, Quarter},
	{TicksPerBeat * 3 / 4, DottedEighth},
	{TicksPerBeat / 2, Eighth},
	{TicksPerBeat * 3 / 8, DottedSixteenth},
	{TicksPerBeat / 4, Sixteenth},
	{TicksPerBeat / 8, ThirtySecond},
}

var (
	tokenValues = map[Token]Duration{}
	valueTokens = map[Duration]Token{}
)

func init() {
	for _, e := range simpleDurations {
		tokenValues[e.token] = e.value
		valueTokens[e.value] = e.token
	}
}

// Duration decodes the token into its length.
func (t Token) Duration() (Duration, error) {
	d, ok := tokenValues[t]
	if !ok {
		return 0, fmt.Errorf("%w: duration token %q", ErrLookupMiss, t)
	}
	return d, nil
}

// Valid reports whether t belongs to the token table.
func (t Token) Valid() bool {
	_, ok := tokenValues[t]
	return ok
}

// Double returns the token twice as long as t, when there is one.
func (t Token) Double() (Token, bool) {
	d, ok := tokenValues[t]
	if !ok {
		return "", false
	}
	out, ok := valueTokens[2*d]
	return out, ok
}

// TokenFor encodes a length as a single token.
func TokenFor(d Duration) (Token, bool) {
	t, ok := valueTokens[d]
	return t, ok
}

// Tokens returns every token from the longest to the shortest.
func Tokens() []Token {
	out := make([]Token, 0, len(simpleDurations))
	for _, e := range simpleDurations {
		out = append(out, e.token)
	}
	return out
}

// Decompose greedily splits d into the fewest tokens, longest first.
// d must be a multiple of Unit and no longer than MaxDuration.
func Decompose(d Duration) ([]Token, error) {
	if d < 0 || d > MaxDuration {
		return nil, fmt.Errorf("%w: %s beats is out of range", ErrUnrepresentableDuration, d)
	}
	if !d.OnUnitGrid() {
		return nil, fmt.Errorf("%w: %s beats is not a multiple of a 32nd note", ErrUnrepresentableDuration, d)
	}
	var out []Token
	remaining := d
	for remaining > 0 {
		for _, e := range simpleDurations {
			if e.value <= remaining {
				out = append(out, e.token)
				remaining -= e.value
				break
			}
		}
	}
	return out, nil
}

// DecomposeAligned splits d, which starts at the given position inside a
// beat, so that the first tokens complete the current beat, the middle ones
// cover whole beats and the last ones the trailing fraction.
func DecomposeAligned(d, position Duration) ([]Token, error) {
	head := (TicksPerBeat - position.BeatFraction()) % TicksPerBeat
	head = min(head, d)
	rest := d - head

	var out []Token
	for _, part := range []Duration{head, rest.WholeBeats(), rest.BeatFraction()} {
		tokens, err := Decompose(part)
		if err != nil {
			return nil, err
		}
		out = append(out, tokens...)
	}
	return out, nil
}
