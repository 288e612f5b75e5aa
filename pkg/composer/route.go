package composer

import (
	"fmt"

	"github.com/james-see/tasteofcontrol/pkg/score"
)

// routeShapes are the melodic contours a route is stitched from, as index
// steps.
var routeShapes = [][5]int{
	{1, 1, 1, -2, 1},
	{1, 1, -1, 1, 1},
	{-2, 1, 1, 1, 1},
	{-1, -1, -1, 1, 1},
	{1, -2, -1, 1, 1},
	{2, -2, 1, 1, 1},
	{2, -1, 1, 1, -1},
	{2, -1, -1, -1, -1},
}

// BuildIndexRoute returns n indices into a universe of maxIndex pitches.
// Consecutive indices follow randomly chosen contours and every index lies
// in [0, maxIndex).
func BuildIndexRoute(r Rand, n, maxIndex int) ([]int, error) {
	if maxIndex < 1 {
		return nil, fmt.Errorf("%w: empty pitch universe", score.ErrLookupMiss)
	}
	if n <= 0 {
		return nil, nil
	}
	current := 0
	if maxIndex > 1 {
		current = r.IntN(2)
	}
	route := make([]int, 0, n)
	shape := choose(r, routeShapes)
	step := 0
	for range n {
		route = append(route, current)
		if step == len(shape) {
			shape = choose(r, routeShapes)
			step = 0
		}
		current = nextIndex(current, shape[step], maxIndex)
		step++
	}
	return route, nil
}

// BuildIndexRouteTo is BuildIndexRoute with the last index forced to target.
// The gap between the free route's end and target is spread over the route
// as a ramp so the contour keeps its shape.
func BuildIndexRouteTo(r Rand, n, maxIndex, target int) ([]int, error) {
	if target < 0 || target >= maxIndex {
		return nil, fmt.Errorf("%w: target index %d outside [0, %d)", score.ErrLookupMiss, target, maxIndex)
	}
	route, err := BuildIndexRoute(r, n, maxIndex)
	if err != nil || len(route) == 0 {
		return route, err
	}
	diff := target - route[n-1]
	for i := range route {
		route[i] = reflect(route[i]+diff*(i+1)/n, maxIndex)
	}
	return route, nil
}

func nextIndex(current, delta, maxIndex int) int {
	if next := current + delta; next >= 0 && next < maxIndex {
		return next
	}
	return clampIndex(current-delta, maxIndex)
}

// reflect folds an index that left [0, maxIndex) back inside.
func reflect(i, maxIndex int) int {
	if i < 0 {
		i = -i
	}
	if i >= maxIndex {
		i = 2*(maxIndex-1) - i
	}
	return clampIndex(i, maxIndex)
}

func clampIndex(i, maxIndex int) int {
	return max(0, min(i, maxIndex-1))
}
