// Package control turns performer and audience activity into the volume
// sample and labels that drive a session.
package control

import (
	"sync"
	"time"
)

const (
	// cadenceWindow is the number of recent gaps folded into a sample.
	cadenceWindow = 4
	cadenceSeed   = 0.8
)

// Cadence measures how quickly control events arrive.
type Cadence struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
	gaps []float64
}

// NewCadence creates a meter reading the wall clock
func NewCadence() *Cadence {
	return NewCadenceWithClock(time.Now)
}

// NewCadenceWithClock creates a meter reading the given clock
func NewCadenceWithClock(now func() time.Time) *Cadence {
	return &Cadence{now: now}
}

// Start resets the meter and records the first event.
func (c *Cadence) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = c.now()
	c.gaps = c.gaps[:0]
}

// Mark records an event.
func (c *Cadence) Mark() {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now()
	if c.last.IsZero() {
		c.last = t
		return
	}
	c.gaps = append(c.gaps, t.Sub(c.last).Seconds())
	if len(c.gaps) > cadenceWindow {
		c.gaps = c.gaps[len(c.gaps)-cadenceWindow:]
	}
	c.last = t
}

// Gaps returns the recent inter-event gaps in seconds.
func (c *Cadence) Gaps() []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]float64(nil), c.gaps...)
}

// Volume folds the recent gaps into a sample in [0,1]. Quick successive
// events push it up, slow ones down.
func (c *Cadence) Volume() float64 {
	gaps := c.Gaps()
	if len(gaps) < 2 {
		return 0
	}
	v := cadenceSeed
	for _, g := range gaps {
		if g <= 0 {
			return 1
		}
		v /= g
	}
	return max(0, min(1, v))
}
