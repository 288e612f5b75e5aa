package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/james-see/tasteofcontrol/pkg/composer"
	"github.com/james-see/tasteofcontrol/pkg/errlog"
	"github.com/james-see/tasteofcontrol/pkg/score"
)

func newTestComposer(t *testing.T, seed uint64, momentum int) (*MainComposer, *errlog.Memory) {
	t.Helper()
	stages, err := LoadStages("")
	require.NoError(t, err)
	record := errlog.NewMemory()
	c, err := New(Options{
		Stages:   stages,
		Rand:     composer.NewRand(seed),
		Record:   record,
		Session:  "test",
		Momentum: momentum,
	})
	require.NoError(t, err)
	return c, record
}

func TestLongRunHasNoMismatch(t *testing.T) {
	for seed := uint64(1); seed <= 5; seed++ {
		c, record := newTestComposer(t, seed, DefaultMomentum)
		s := NewSession(c)
		visited := map[Stage]bool{}
		deltas := []int{0, 1, 0, 2, -1, 1, 3, 0}
		for i := range 200 {
			volume := float64(i%10) / 9
			m, err := s.Advance(deltas[i%len(deltas)], volume, "")
			require.NoError(t, err)
			visited[m.Stage] = true
			for _, p := range m.Parts {
				assert.Equal(t, m.Length(), p.Fragment.RealDuration(), "measure %d %s %s", m.Number, m.Stage, p.Instrument.Name)
				assert.NoError(t, p.Fragment.Validate())
			}
		}
		entries, err := record.Entries(context.Background())
		require.NoError(t, err)
		assert.Empty(t, entries)
		assert.Len(t, visited, StageCount, "seed %d visits every stage", seed)
	}
}

func TestTransitionalStagesAdvanceOncePerCall(t *testing.T) {
	for _, start := range []Stage{StageBreath, StageRespite} {
		c, _ := newTestComposer(t, 3, 0)
		s := NewSession(c)
		for i, delta := range []int{-3, 0, 1, 9, 2, -8} {
			require.NoError(t, c.SetState(State{Stage: start, Heading: i}))
			_, err := s.Advance(delta, 0.5, "")
			require.NoError(t, err)
			assert.Equal(t, start.Next(), s.Snapshot().Stage, "delta %d", delta)
		}
	}
}

func TestComposeOnTransitionalStage(t *testing.T) {
	c, _ := newTestComposer(t, 3, 0)
	m, err := c.Compose("")
	require.NoError(t, err)
	assert.Equal(t, StageBreath, m.Stage)
	for _, p := range m.Parts {
		assert.Empty(t, p.Fragment.Sounding())
		assert.NotEmpty(t, p.Fragment.Notes()[0].Markup)
	}
	assert.Equal(t, StageMelodic, c.State().Stage, "breath lasts one measure")
}

func TestMomentum(t *testing.T) {
	c, _ := newTestComposer(t, 5, DefaultMomentum)
	require.NoError(t, c.SetState(State{Stage: StageMelodic, Heading: 3}))
	// 500 halves to 250, 125, 62, 31, 15, 7, 3
	for i := range 6 {
		_, err := c.Compose("")
		require.NoError(t, err)
		assert.Equal(t, 3, c.State().Direction(), "after measure %d", i+1)
	}
	_, err := c.Compose("")
	require.NoError(t, err)
	assert.Equal(t, 4, c.State().Direction())
}

func TestMomentumDisabled(t *testing.T) {
	c, _ := newTestComposer(t, 5, 0)
	require.NoError(t, c.SetState(State{Stage: StageMelodic, Heading: 5}))
	for range 20 {
		_, err := c.Compose("")
		require.NoError(t, err)
	}
	assert.Equal(t, StageMelodic, c.State().Stage)
	assert.Equal(t, 5, c.State().Direction())
}

func TestTimeChanged(t *testing.T) {
	c, _ := newTestComposer(t, 8, 0)
	s := NewSession(c)

	first, err := s.Advance(0, 0.3, "")
	require.NoError(t, err)
	assert.True(t, first.TimeChanged, "the first measure states its meter")
	assert.Equal(t, StageMelodic, first.Stage)

	same, err := s.Advance(0, 0.3, "")
	require.NoError(t, err)
	assert.False(t, same.TimeChanged)

	ostinato, err := s.Advance(9, 0.3, "")
	require.NoError(t, err)
	assert.Equal(t, StageOstinato, ostinato.Stage)
	assert.True(t, ostinato.TimeChanged)
	assert.Equal(t, 5, s.Snapshot().CurrentTime)
}

func TestVoicesUseTheSilenceBank(t *testing.T) {
	c, _ := newTestComposer(t, 13, 0)
	require.NoError(t, c.SetState(State{Stage: StageNoise, Heading: 0}))
	for range 30 {
		voices, err := c.voices(c.stages.Settings[StageNoise])
		require.NoError(t, err)
		require.Len(t, voices, 3)
		total := 0
		for _, v := range voices {
			total += v.Silence
		}
		assert.Equal(t, 1, total, "rows from index 5 hold a single beat of silence")
	}
}

// shortComposer writes one beat less than the measure.
type shortComposer struct{}

func (shortComposer) Name() string             { return "short" }
func (shortComposer) SetDynamic(int, float64) {}
func (shortComposer) Compose(req composer.Request) (map[string]*score.Fragment, error) {
	out := map[string]*score.Fragment{}
	for _, inst := range req.Instruments {
		f, err := composer.ComposeSilence(req.Measure - score.TicksPerBeat)
		if err != nil {
			return nil, err
		}
		out[inst.Name] = f
	}
	return out, nil
}

// highComposer writes a measure-long note far above every range.
type highComposer struct{}

func (highComposer) Name() string             { return "high" }
func (highComposer) SetDynamic(int, float64) {}
func (highComposer) Compose(req composer.Request) (map[string]*score.Fragment, error) {
	tokens, err := score.Decompose(req.Measure)
	if err != nil {
		return nil, err
	}
	out := map[string]*score.Fragment{}
	for _, inst := range req.Instruments {
		f := score.NewFragment()
		for _, tok := range tokens {
			f.Append(score.NewNote(60, tok))
		}
		out[inst.Name] = f
	}
	return out, nil
}

func TestComposeReportsRangeFit(t *testing.T) {
	c, _ := newTestComposer(t, 1, 0)
	require.NoError(t, c.SetState(State{Stage: StageMelodic, Heading: 2}))
	m, err := c.Compose("")
	require.NoError(t, err)
	for _, p := range m.Parts {
		if p.Fit == score.FitTooHigh || p.Fit == score.FitTooLow {
			t.Errorf("%s Fit = %v, want a playable part", p.Instrument.Name, p.Fit)
		}
	}

	c.variants[StageMelodic] = highComposer{}
	m, err = c.Compose("")
	require.NoError(t, err)
	for _, p := range m.Parts {
		if p.Fit != score.FitTooHigh {
			t.Errorf("%s Fit = %v, want %v", p.Instrument.Name, p.Fit, score.FitTooHigh)
		}
	}
}

func TestDurationMismatchLenient(t *testing.T) {
	c, record := newTestComposer(t, 1, 0)
	c.variants[StageMelodic] = shortComposer{}
	require.NoError(t, c.SetState(State{Stage: StageMelodic, Heading: 2}))

	m, err := c.Compose("")
	require.NoError(t, err)
	require.NotNil(t, m)

	entries, err := record.Entries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "6", entries[0].Expected)
	assert.Equal(t, "5", entries[0].Actual)
	assert.Equal(t, "melodic", entries[0].StageName)
	assert.Equal(t, "test", entries[0].Session)
}

func TestDurationMismatchStrict(t *testing.T) {
	c, record := newTestComposer(t, 1, 0)
	c.strict = true
	c.variants[StageMelodic] = shortComposer{}
	require.NoError(t, c.SetState(State{Stage: StageMelodic, Heading: 2}))

	_, err := c.Compose("")
	assert.ErrorIs(t, err, ErrDurationMismatch)
	entries, _ := record.Entries(context.Background())
	assert.Len(t, entries, 1)
	assert.Empty(t, c.Score().Measures)
}

func TestSessionSerializesAdvances(t *testing.T) {
	c, _ := newTestComposer(t, 21, DefaultMomentum)
	s := NewSession(c)
	var seen []int
	s.Subscribe(func(m *Measure) { seen = append(seen, m.Number) })

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 5 {
				_, err := s.Advance(0, 0.5, "")
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, 40)
	for i, n := range seen {
		assert.Equal(t, i+1, n)
	}
	assert.Equal(t, 40, s.Snapshot().Measures)
	assert.Len(t, s.Score().Line("Flute"), 40)
}

func TestSetStateRejectsUnknownStage(t *testing.T) {
	c, _ := newTestComposer(t, 1, 0)
	assert.ErrorIs(t, c.SetState(State{Stage: 9}), ErrUnknownStage)
}
