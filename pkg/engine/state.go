package engine

// State is the position of the piece.
type State struct {
	Stage Stage `json:"stage"`
	// Heading is the raw signed direction. Direction() exposes it.
	Heading     int     `json:"heading"`
	Volume      float64 `json:"volume"`
	CurrentTime int     `json:"current_time"`
}

// Direction is |Heading| clamped to [0, MaxDirection].
func (s State) Direction() int {
	d := s.Heading
	if d < 0 {
		d = -d
	}
	return min(d, MaxDirection)
}

// EffectiveVolume is the volume handed to the variants: halved for calm
// directions, doubled for intense ones.
func (s State) EffectiveVolume() float64 {
	v := s.Volume
	switch d := s.Direction(); {
	case d < 2:
		v *= 0.5
	case d > 3:
		v *= 2
	}
	return max(0, min(v, 1))
}

// Advance applies a direction value. A value above MaxDirection, or any value
// on a transitional stage, moves to the next stage and resets the direction;
// the second result reports that transition.
func Advance(s State, value int) (State, bool) {
	if value > MaxDirection || s.Stage.Transitional() {
		s.Heading = 0
		s.Stage = s.Stage.Next()
		return s, true
	}
	s.Heading = value
	return s, false
}
