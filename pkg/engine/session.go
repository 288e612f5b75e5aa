package engine

import (
	"sync"

	"github.com/google/uuid"

	"github.com/james-see/tasteofcontrol/pkg/logger"
	"github.com/james-see/tasteofcontrol/pkg/score"
)

// Snapshot is a read-only view of a session.
type Snapshot struct {
	Session     string   `json:"session"`
	Stage       Stage    `json:"stage"`
	StageName   string   `json:"stage_name"`
	Direction   int      `json:"direction"`
	Volume      float64  `json:"volume"`
	CurrentTime int      `json:"current_time"`
	Measures    int      `json:"measures"`
	Latest      *Measure `json:"-"`
}

// Session serializes advance events from every front end onto one
// MainComposer.
type Session struct {
	id string

	mu        sync.Mutex
	composer  *MainComposer
	listeners []func(*Measure)
}

// NewSession wraps c. The session ID tags logs and error-record entries.
func NewSession(c *MainComposer) *Session {
	id := c.session
	if id == "" {
		id = uuid.NewString()
		c.session = id
	}
	return &Session{id: id, composer: c}
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// Subscribe registers fn to receive every new measure. fn runs with the
// session locked and must not call back into it.
func (s *Session) Subscribe(fn func(*Measure)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Advance moves the direction by delta, stores the volume sample and writes
// the next measure.
func (s *Session) Advance(delta int, volume float64, label string) (*Measure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.composer
	c.SetDirection(c.State().Direction() + delta)
	c.SetVolume(volume)
	m, err := c.Compose(label)
	if err != nil {
		logger.Error("Failed to compose measure", err, logger.Fields{
			"session_id": s.id,
			"stage":      c.State().Stage.String(),
			"direction":  c.State().Direction(),
		})
		return nil, err
	}
	logger.Debug("Measure composed", logger.Fields{
		"session_id": s.id,
		"measure":    m.Number,
		"stage":      m.Stage.String(),
		"direction":  m.Direction,
		"volume":     m.Volume,
	})
	for _, fn := range s.listeners {
		fn(m)
	}
	return m, nil
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.composer.State()
	snap := Snapshot{
		Session:     s.id,
		Stage:       st.Stage,
		StageName:   st.Stage.String(),
		Direction:   st.Direction(),
		Volume:      st.Volume,
		CurrentTime: st.CurrentTime,
		Measures:    len(s.composer.measures),
	}
	if n := len(s.composer.measures); n > 0 {
		snap.Latest = s.composer.measures[n-1]
	}
	return snap
}

// Score returns the full score written so far.
func (s *Session) Score() *Score {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.composer.Score()
}

// Instruments returns the ensemble.
func (s *Session) Instruments() []score.Instrument {
	return s.composer.Instruments()
}
