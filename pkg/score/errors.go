package score

import "errors"

var (
	// ErrUnrepresentableDuration is returned when a length is not an exact
	// multiple of the smallest notatable unit or exceeds MaxDuration.
	ErrUnrepresentableDuration = errors.New("unrepresentable duration")

	// ErrLookupMiss is returned when a computed key is absent from one of the
	// fixed tables (duration tokens, tuplet specs, dynamics, instrument ranges).
	ErrLookupMiss = errors.New("lookup miss")
)
