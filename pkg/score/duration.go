package score

import (
	"fmt"
	"math/big"
)

// Duration is a musical length in ticks. A quarter note (one beat) is
// TicksPerBeat ticks long.
type Duration int64

const (
	// TicksPerBeat is divisible by 8 (32nd notes) and by 3, 5, 6 and 7 so every
	// tuplet member used by the composers has an exact integer length.
	TicksPerBeat Duration = 840

	// Unit is the smallest notatable length, a 32nd note.
	Unit Duration = TicksPerBeat / 8

	// MaxDuration is the longest length Decompose accepts.
	MaxDuration Duration = 64 * TicksPerBeat
)

// Beats returns the duration of n whole beats.
func Beats(n int) Duration {
	return Duration(n) * TicksPerBeat
}

// Fraction returns the duration of num/den beats. It fails when the result
// is not a whole number of ticks.
func Fraction(num, den int64) (Duration, error) {
	if den == 0 {
		return 0, fmt.Errorf("%w: zero denominator", ErrUnrepresentableDuration)
	}
	ticks := num * int64(TicksPerBeat)
	if ticks%den != 0 {
		return 0, fmt.Errorf("%w: %d/%d beats", ErrUnrepresentableDuration, num, den)
	}
	return Duration(ticks / den), nil
}

// MustFraction is Fraction for package-level tables.
func MustFraction(num, den int64) Duration {
	d, err := Fraction(num, den)
	if err != nil {
		panic(err)
	}
	return d
}

// Rat returns the duration as an exact number of beats.
func (d Duration) Rat() *big.Rat {
	return big.NewRat(int64(d), int64(TicksPerBeat))
}

// WholeBeats returns the integer part of the duration in beats.
func (d Duration) WholeBeats() Duration {
	return d - d%TicksPerBeat
}

// BeatFraction returns the part of the duration past the last whole beat.
func (d Duration) BeatFraction() Duration {
	return d % TicksPerBeat
}

// OnUnitGrid reports whether d is an exact multiple of Unit.
func (d Duration) OnUnitGrid() bool {
	return d%Unit == 0
}

// String renders the duration as beats, e.g. "6" or "7/4".
func (d Duration) String() string {
	return d.Rat().RatString()
}
