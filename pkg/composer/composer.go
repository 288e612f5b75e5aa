package composer

import (
	"fmt"
	"math"

	"github.com/james-see/tasteofcontrol/pkg/score"
)

// VoiceType selects what an instrument plays in a measure.
type VoiceType int

const (
	VoiceSilent VoiceType = iota
	VoicePrimary
	VoiceSecondary
	VoiceExtended
)

func (v VoiceType) String() string {
	switch v {
	case VoiceSilent:
		return "silent"
	case VoicePrimary:
		return "primary"
	case VoiceSecondary:
		return "secondary"
	case VoiceExtended:
		return "extended"
	}
	return fmt.Sprintf("voice(%d)", int(v))
}

// Valid reports whether v is one of the known voice types.
func (v VoiceType) Valid() bool {
	return v >= VoiceSilent && v <= VoiceExtended
}

// Voice is the assignment of one instrument for one measure.
type Voice struct {
	Type VoiceType `json:"type"`
	// Silence is the number of beats the voice waits before playing.
	Silence int `json:"silence"`
}

// Offset is the silence as a duration.
func (v Voice) Offset() score.Duration {
	return score.Beats(v.Silence)
}

// Request carries everything a variant needs to write one measure.
type Request struct {
	Universe    []int
	Instruments []score.Instrument
	// Voices has one entry per instrument, in the same order.
	Voices    []Voice
	Direction int
	Volume    float64
	Measure   score.Duration
	Rand      Rand
}

// Validate checks the request shape.
func (r Request) Validate() error {
	if len(r.Voices) != len(r.Instruments) {
		return fmt.Errorf("%w: %d voices for %d instruments", score.ErrLookupMiss, len(r.Voices), len(r.Instruments))
	}
	if len(r.Universe) == 0 {
		return fmt.Errorf("%w: empty pitch universe", score.ErrLookupMiss)
	}
	if r.Measure <= 0 {
		return fmt.Errorf("%w: measure of %s beats", score.ErrUnrepresentableDuration, r.Measure)
	}
	if r.Rand == nil {
		return fmt.Errorf("request without a random source")
	}
	for i, v := range r.Voices {
		if !v.Type.Valid() {
			return fmt.Errorf("%w: voice type %d for %s", score.ErrLookupMiss, v.Type, r.Instruments[i].Name)
		}
	}
	return nil
}

// Composer writes one measure for every instrument. Each returned fragment
// is keyed by instrument name and lasts exactly Request.Measure.
type Composer interface {
	Name() string
	SetDynamic(direction int, volume float64)
	Compose(req Request) (map[string]*score.Fragment, error)
}

// dynamicShift picks a graded dynamic around base, louder with direction and
// volume.
func dynamicShift(base score.Dynamic, direction int, volume float64) score.Dynamic {
	idx := 0
	for i, d := range score.DynamicLevels {
		if d == base {
			idx = i
		}
	}
	idx += direction/2 + int(math.Round(volume*2)) - 1
	idx = max(0, min(idx, len(score.DynamicLevels)-1))
	d, _ := score.DynamicLevel(idx)
	return d
}

// silenceOnly fills the measure with rests.
func silenceOnly(req Request) (*score.Fragment, error) {
	return ComposeSilence(req.Measure)
}

// finish prefixes f with the voice's silence and pads it to the measure.
func finish(f *score.Fragment, offset score.Duration, req Request, stopTrill bool) (*score.Fragment, error) {
	out := score.NewFragment()
	if offset > 0 {
		lead, err := ComposeSilence(offset)
		if err != nil {
			return nil, err
		}
		out.Append(lead)
	}
	out.Append(f)
	return CompleteSilence(out, req.Measure, stopTrill)
}

// evolution helpers shared by the variants.
func sqrtVolume(volume float64) float64 {
	return math.Sqrt(math.Max(0, volume))
}
