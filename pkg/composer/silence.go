package composer

import (
	"github.com/james-see/tasteofcontrol/pkg/score"
)

// ComposeSilence returns a fragment of rests lasting exactly d.
func ComposeSilence(d score.Duration) (*score.Fragment, error) {
	tokens, err := score.Decompose(d)
	if err != nil {
		return nil, err
	}
	f := score.NewFragment()
	for _, t := range tokens {
		f.Append(score.NewRest(t))
	}
	return f, nil
}

// CompleteSilence pads f with rests up to max, fractional part first so the
// rests after it fall on beats. A fragment already longer than max is
// returned unchanged; the caller's length check reports it. With stopTrill
// the first padding rest closes a running trill span.
func CompleteSilence(f *score.Fragment, max score.Duration, stopTrill bool) (*score.Fragment, error) {
	remaining := max - f.RealDuration()
	if remaining <= 0 {
		return f, nil
	}
	frac, err := ComposeSilence(remaining.BeatFraction())
	if err != nil {
		return nil, err
	}
	whole, err := ComposeSilence(remaining.WholeBeats())
	if err != nil {
		return nil, err
	}
	padding := score.NewFragment(frac, whole)
	if stopTrill {
		first := padding.Notes()[0]
		first.Post = append(first.Post, score.MarkStopTrill)
	}
	return score.NewFragment(f, padding), nil
}
