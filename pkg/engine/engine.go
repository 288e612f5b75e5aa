package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/james-see/tasteofcontrol/pkg/composer"
	"github.com/james-see/tasteofcontrol/pkg/errlog"
	"github.com/james-see/tasteofcontrol/pkg/logger"
	"github.com/james-see/tasteofcontrol/pkg/score"
)

// ErrDurationMismatch is returned in strict mode when a fragment does not
// last the measure.
var ErrDurationMismatch = errors.New("duration mismatch")

const (
	// DefaultMomentum is the starting value of the momentum countdown.
	DefaultMomentum = 500
	momentumReset   = 700
)

// silenceBank holds the silence offsets, in beats, handed to the voices. Rows
// further down are shorter; calm stages and directions may use any row from
// their own index onwards.
var silenceBank = [][]int{
	{1, 2, 2},
	{1, 1, 2},
	{0, 1, 2},
	{0, 1, 1},
	{0, 1, 1},
	{0, 0, 1},
	{0, 0, 1},
}

// Options configures a MainComposer.
type Options struct {
	Stages *Stages
	Rand   composer.Rand
	Record errlog.Record
	// Session tags error-record entries.
	Session string
	Strict  bool
	// Momentum is the starting countdown, 0 disables it.
	Momentum int
	// Language overrides the stage table language when set.
	Language string
}

// MainComposer drives the stage machine and writes one measure per call.
type MainComposer struct {
	stages   *Stages
	variants [StageCount]composer.Composer
	rand     composer.Rand
	record   errlog.Record
	session  string
	strict   bool

	momentumStart int
	momentum      int

	state    State
	measures []*Measure
}

// New returns a composer at stage 0 with direction 0.
func New(opts Options) (*MainComposer, error) {
	if opts.Stages == nil {
		return nil, errors.New("engine: no stage table")
	}
	if opts.Rand == nil {
		return nil, errors.New("engine: no random source")
	}
	if opts.Record == nil {
		opts.Record = errlog.NewMemory()
	}
	language := opts.Stages.Language
	if opts.Language != "" {
		language = opts.Language
	}
	empty := composer.NewEmpty(language)
	m := &MainComposer{
		stages: opts.Stages,
		variants: [StageCount]composer.Composer{
			StageBreath:   empty,
			StageMelodic:  composer.NewMelodic(),
			StageOstinato: composer.NewOstinato(),
			StageUnison:   composer.NewUnison(),
			StageRespite:  empty,
			StageNoise:    composer.NewNoise(),
		},
		rand:          opts.Rand,
		record:        opts.Record,
		session:       opts.Session,
		strict:        opts.Strict,
		momentumStart: opts.Momentum,
		momentum:      opts.Momentum,
	}
	return m, nil
}

// State returns the current state.
func (m *MainComposer) State() State {
	return m.state
}

// SetState replaces the current state.
func (m *MainComposer) SetState(s State) error {
	if s.Stage < 0 || s.Stage >= StageCount {
		return fmt.Errorf("%w: %d", ErrUnknownStage, s.Stage)
	}
	m.state = s
	return nil
}

// SetDirection applies a direction value and reports whether the stage
// changed.
func (m *MainComposer) SetDirection(value int) bool {
	next, transitioned := Advance(m.state, value)
	m.state = next
	if transitioned {
		m.momentum = m.momentumStart
		logger.Info("Stage transition", logger.Fields{
			"session_id": m.session,
			"stage":      next.Stage.String(),
		})
	}
	return transitioned
}

// SetVolume stores the volume sample, clamped to [0, 1].
func (m *MainComposer) SetVolume(v float64) {
	m.state.Volume = max(0, min(v, 1))
}

// CurrentTime is the beat count of the latest measure.
func (m *MainComposer) CurrentTime() int {
	return m.state.CurrentTime
}

// Instruments returns the ensemble.
func (m *MainComposer) Instruments() []score.Instrument {
	return m.stages.Instruments
}

// Score returns the full score written so far.
func (m *MainComposer) Score() *Score {
	return &Score{Instruments: m.stages.Instruments, Measures: append([]*Measure(nil), m.measures...)}
}

// Compose writes the next measure for the current state.
func (m *MainComposer) Compose(label string) (*Measure, error) {
	settings := m.stages.Settings[m.state.Stage]
	voices, err := m.voices(settings)
	if err != nil {
		return nil, err
	}
	return m.compose(settings, voices, label)
}

func (m *MainComposer) compose(settings StageSettings, voices []composer.Voice, label string) (*Measure, error) {
	direction := m.state.Direction()
	volume := m.state.EffectiveVolume()
	variant := m.variants[m.state.Stage]
	variant.SetDynamic(direction, volume)

	fragments, err := variant.Compose(composer.Request{
		Universe:    settings.Universe,
		Instruments: m.stages.Instruments,
		Voices:      voices,
		Direction:   direction,
		Volume:      volume,
		Measure:     settings.Meter.Length(),
		Rand:        m.rand,
	})
	if err != nil {
		return nil, fmt.Errorf("%s variant: %w", variant.Name(), err)
	}

	measure := &Measure{
		Number:    len(m.measures) + 1,
		Stage:     m.state.Stage,
		Direction: direction,
		Volume:    volume,
		Label:     label,
		Meter:     settings.Meter,
		Voices:    voices,
	}
	measure.TimeChanged = len(m.measures) == 0 || m.measures[len(m.measures)-1].Meter != settings.Meter

	for _, inst := range m.stages.Instruments {
		frag, ok := fragments[inst.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s variant wrote nothing for %s", score.ErrLookupMiss, variant.Name(), inst.Name)
		}
		fit := inst.Fit(frag.Pitches())
		if fit == score.FitTooHigh || fit == score.FitTooLow {
			logger.Warn("Part out of range", logger.Fields{
				"session_id": m.session,
				"measure":    measure.Number,
				"stage":      measure.Stage.String(),
				"instrument": inst.Name,
				"fit":        fit.String(),
			})
		}
		inst.Apply(frag)
		if got := frag.RealDuration(); got != measure.Length() {
			if err := m.mismatch(measure, inst, got); err != nil {
				return nil, err
			}
		}
		measure.Parts = append(measure.Parts, Part{Instrument: inst, Fragment: frag, Fit: fit})
	}

	m.measures = append(m.measures, measure)
	m.state.CurrentTime = settings.Meter.Beats
	m.afterMeasure()
	return measure, nil
}

// afterMeasure moves off transitional stages and runs the momentum
// countdown.
func (m *MainComposer) afterMeasure() {
	if m.state.Stage.Transitional() {
		m.SetDirection(m.state.Direction() + 1)
		return
	}
	if m.momentumStart <= 0 {
		return
	}
	m.momentum /= 2
	if m.momentum <= m.state.Direction() {
		m.momentum = momentumReset
		m.SetDirection(m.state.Direction() + 1)
	}
}

func (m *MainComposer) mismatch(measure *Measure, inst score.Instrument, got score.Duration) error {
	entry := errlog.NewEntry()
	entry.Session = m.session
	entry.Measure = measure.Number
	entry.Stage = int(measure.Stage)
	entry.StageName = measure.Stage.String()
	entry.Direction = measure.Direction
	entry.Volume = measure.Volume
	entry.Voices = fmt.Sprint(measure.Voices)
	entry.Instrument = inst.Name
	entry.Expected = measure.Length().String()
	entry.Actual = got.String()

	logger.Warn("Duration mismatch", logger.Fields{
		"session_id": m.session,
		"measure":    entry.Measure,
		"stage":      entry.StageName,
		"direction":  entry.Direction,
		"volume":     entry.Volume,
		"voices":     entry.Voices,
		"instrument": entry.Instrument,
		"expected":   entry.Expected,
		"actual":     entry.Actual,
	})
	if err := m.record.Append(context.Background(), entry); err != nil {
		logger.Error("Failed to record duration mismatch", err, logger.Fields{"session_id": m.session})
	}
	if m.strict {
		return fmt.Errorf("%w: %s wrote %s beats, want %s", ErrDurationMismatch, inst.Name, entry.Actual, entry.Expected)
	}
	return nil
}
