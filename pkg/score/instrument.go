package score

import (
	"fmt"
	"math"
)

// ExtendedVolume is the volume from which instruments may use their extended
// upper register.
const ExtendedVolume = 0.75

// Instrument is a named part with a playable range. Pitches are semitones
// relative to middle C.
type Instrument struct {
	Name          string `yaml:"name" json:"name"`
	Lower         int    `yaml:"lower" json:"lower"`
	Upper         int    `yaml:"upper" json:"upper"`
	ExtendedUpper int    `yaml:"extended_upper" json:"extended_upper"`
	// Transposition is applied to every fragment written for the instrument.
	Transposition int `yaml:"transposition" json:"transposition"`
}

// Validate checks that the range is ordered.
func (i Instrument) Validate() error {
	if i.Name == "" {
		return fmt.Errorf("instrument without a name")
	}
	if i.Lower > i.Upper {
		return fmt.Errorf("instrument %s: lower %d above upper %d", i.Name, i.Lower, i.Upper)
	}
	if i.ExtendedUpper != 0 && i.ExtendedUpper < i.Upper {
		return fmt.Errorf("instrument %s: extended upper %d below upper %d", i.Name, i.ExtendedUpper, i.Upper)
	}
	return nil
}

func (i Instrument) top(extended bool) int {
	if extended && i.ExtendedUpper > i.Upper {
		return i.ExtendedUpper
	}
	return i.Upper
}

// Contains reports whether pitch is playable, optionally in the extended
// register.
func (i Instrument) Contains(pitch int, extended bool) bool {
	return pitch >= i.Lower && pitch <= i.top(extended)
}

// Universe filters a pitch universe down to the playable pitches and keeps
// a volume-dependent prefix of them: louder means a wider range.
func (i Instrument) Universe(universe []int, volume float64) ([]int, error) {
	extended := volume >= ExtendedVolume
	var playable []int
	for _, p := range universe {
		if i.Contains(p, extended) {
			playable = append(playable, p)
		}
	}
	if len(playable) == 0 {
		return nil, fmt.Errorf("%w: no pitch of the universe fits %s", ErrLookupMiss, i.Name)
	}
	v := math.Max(0, math.Min(1, volume))
	keep := int(math.Ceil(float64(len(playable)) * (0.5 + v/2)))
	keep = max(keep, min(2, len(playable)))
	keep = min(keep, len(playable))
	return playable[:keep], nil
}

// RangeFit classifies a set of pitches against the instrument range.
type RangeFit int

const (
	FitNormal RangeFit = iota
	FitExtended
	FitTooHigh
	FitTooLow
)

func (r RangeFit) String() string {
	switch r {
	case FitNormal:
		return "normal"
	case FitExtended:
		return "extended"
	case FitTooHigh:
		return "too high"
	case FitTooLow:
		return "too low"
	}
	return "unknown"
}

// Fit reports where pitches sit relative to the range.
func (i Instrument) Fit(pitches []int) RangeFit {
	if len(pitches) == 0 {
		return FitNormal
	}
	lo, hi := pitches[0], pitches[0]
	for _, p := range pitches[1:] {
		lo = min(lo, p)
		hi = max(hi, p)
	}
	switch {
	case lo < i.Lower:
		return FitTooLow
	case hi > i.top(true):
		return FitTooHigh
	case hi > i.Upper:
		return FitExtended
	}
	return FitNormal
}

// Apply transposes a fragment into the instrument's written key.
func (i Instrument) Apply(f *Fragment) {
	if i.Transposition != 0 {
		f.Transpose(i.Transposition)
	}
}
