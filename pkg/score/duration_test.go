package score

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecompose(t *testing.T) {
	tests := []struct {
		name  string
		beats Duration
		want  []Token
	}{
		{"zero", 0, nil},
		{"quarter", TicksPerBeat, []Token{Quarter}},
		{"five beats", Beats(5), []Token{Whole, Quarter}},
		{"six beats", Beats(6), []Token{DottedWhole}},
		{"seven and three quarters", MustFraction(31, 4), []Token{DottedWhole, DottedQuarter, Sixteenth}},
		{"thirty-second", Unit, []Token{ThirtySecond}},
		{"dotted sixteenth", MustFraction(3, 8), []Token{DottedSixteenth}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decompose(tt.beats)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecomposeSumsBack(t *testing.T) {
	for d := Duration(0); d <= Beats(13); d += Unit {
		tokens, err := Decompose(d)
		require.NoError(t, err)

		var sum Duration
		for _, tok := range tokens {
			v, err := tok.Duration()
			require.NoError(t, err)
			sum += v
		}
		if sum != d {
			t.Fatalf("Decompose(%s) sums to %s", d, sum)
		}
	}
}

func TestDecomposeRejects(t *testing.T) {
	for _, d := range []Duration{MustFraction(1, 3), MustFraction(1, 5), -Unit, MaxDuration + Unit} {
		_, err := Decompose(d)
		if !errors.Is(err, ErrUnrepresentableDuration) {
			t.Errorf("Decompose(%s) error = %v, want ErrUnrepresentableDuration", d, err)
		}
	}
}

func TestDecomposeAligned(t *testing.T) {
	got, err := DecomposeAligned(MustFraction(13, 4), MustFraction(1, 4))
	require.NoError(t, err)
	assert.Equal(t, []Token{DottedEighth, Half, Eighth}, got)

	got, err = DecomposeAligned(MustFraction(1, 4), MustFraction(1, 2))
	require.NoError(t, err)
	assert.Equal(t, []Token{Sixteenth}, got)
}

func TestTokenLookup(t *testing.T) {
	d, err := DottedHalf.Duration()
	require.NoError(t, err)
	assert.Equal(t, Beats(3), d)

	_, err = Token("64").Duration()
	assert.ErrorIs(t, err, ErrLookupMiss)

	double, ok := Sixteenth.Double()
	assert.True(t, ok)
	assert.Equal(t, Eighth, double)
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := Tokens()
	if len(tokens) != 11 {
		t.Fatalf("len(Tokens()) = %d, want 11", len(tokens))
	}
	for i, tok := range tokens {
		t.Run(string(tok), func(t *testing.T) {
			d, err := tok.Duration()
			if err != nil {
				t.Fatalf("%q.Duration() error = %v", tok, err)
			}
			if got, ok := TokenFor(d); !ok || got != tok {
				t.Errorf("TokenFor(%v) = %q, %v, want %q, true", d, got, ok, tok)
			}
			if i > 0 {
				prev, _ := tokens[i-1].Duration()
				if d >= prev {
					t.Errorf("%q = %v, want shorter than %q", tok, d, tokens[i-1])
				}
			}
		})
	}
}

func TestDurationString(t *testing.T) {
	tests := []struct {
		d    Duration
		want string
	}{
		{Beats(6), "6"},
		{MustFraction(23, 4), "23/4"},
		{MustFraction(1, 8), "1/8"},
	}
	for _, tt := range tests {
		if got := tt.d.String(); got != tt.want {
			t.Errorf("Duration(%d).String() = %q, want %q", int64(tt.d), got, tt.want)
		}
	}
}

func TestFractionInexact(t *testing.T) {
	_, err := Fraction(1, 11)
	assert.ErrorIs(t, err, ErrUnrepresentableDuration)
}
