package engine

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/goccy/go-yaml"

	"github.com/james-see/tasteofcontrol/pkg/composer"
	"github.com/james-see/tasteofcontrol/pkg/embedded"
	"github.com/james-see/tasteofcontrol/pkg/score"
)

// Stage is a section of the piece. Each stage has its own variant and
// configuration.
type Stage int

const (
	StageBreath Stage = iota
	StageMelodic
	StageOstinato
	StageUnison
	StageRespite
	StageNoise
)

// StageCount is the number of stages in one cycle.
const StageCount = 6

// MaxDirection is the highest exposed direction.
const MaxDirection = 5

// ErrUnknownStage is returned for a stage outside the cycle.
var ErrUnknownStage = errors.New("unknown stage")

var stageNames = [StageCount]string{"breath", "melodic", "ostinato", "unison", "respite", "noise"}

func (s Stage) String() string {
	if s < 0 || s >= StageCount {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// Transitional stages last one measure and do not react to direction.
func (s Stage) Transitional() bool {
	return s == StageBreath || s == StageRespite
}

// Next returns the following stage, wrapping after the last one.
func (s Stage) Next() Stage {
	return (s + 1) % StageCount
}

// TimeSignature is a meter such as 6/4.
type TimeSignature struct {
	Beats int `json:"beats"`
	Unit  int `json:"unit"`
}

func (t TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", t.Beats, t.Unit)
}

// Length is the measure length in quarter-note beats.
func (t TimeSignature) Length() score.Duration {
	return score.TicksPerBeat * 4 * score.Duration(t.Beats) / score.Duration(t.Unit)
}

// StageConfig is one entry of the stage table as written in YAML.
type StageConfig struct {
	Universe       []int              `yaml:"pitch_universe"`
	TimeSignature  []int              `yaml:"time_signature"`
	VoiceTypes     map[string][][]int `yaml:"voice_types"`
	ShuffleSilence bool               `yaml:"shuffle_silence"`
}

// Config is the stage table file.
type Config struct {
	Language    string                 `yaml:"language"`
	Instruments []score.Instrument     `yaml:"instruments"`
	Stages      map[string]StageConfig `yaml:"stages"`
}

// StageSettings is a validated stage.
type StageSettings struct {
	Universe       []int
	Meter          TimeSignature
	Templates      map[int][][]composer.VoiceType
	ShuffleSilence bool
}

// Stages is the validated stage table.
type Stages struct {
	Language    string
	Instruments []score.Instrument
	Settings    [StageCount]StageSettings
}

// LoadStages reads a stage table from path. An empty path loads the
// embedded default.
func LoadStages(path string) (*Stages, error) {
	if path == "" {
		return ParseStages(embedded.StagesYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stages file: %w", err)
	}
	return ParseStages(data)
}

// ParseStages decodes and validates a stage table.
func ParseStages(data []byte) (*Stages, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse stages: %w", err)
	}
	return cfg.Resolve()
}

// Resolve validates the configuration and converts it to Stages.
func (c Config) Resolve() (*Stages, error) {
	if len(c.Instruments) == 0 {
		return nil, fmt.Errorf("%w: no instruments", score.ErrLookupMiss)
	}
	for _, inst := range c.Instruments {
		if err := inst.Validate(); err != nil {
			return nil, err
		}
	}
	out := &Stages{Language: c.Language, Instruments: c.Instruments}
	if out.Language == "" {
		out.Language = "english"
	}
	for s := Stage(0); s < StageCount; s++ {
		raw, ok := c.Stages[strconv.Itoa(int(s))]
		if !ok {
			return nil, fmt.Errorf("%w: stage %d missing", score.ErrLookupMiss, s)
		}
		settings, err := resolveStage(s, raw, c.Instruments)
		if err != nil {
			return nil, fmt.Errorf("stage %d (%s): %w", s, s, err)
		}
		out.Settings[s] = settings
	}
	return out, nil
}

func resolveStage(s Stage, raw StageConfig, instruments []score.Instrument) (StageSettings, error) {
	if len(raw.Universe) == 0 {
		return StageSettings{}, fmt.Errorf("%w: empty pitch universe", score.ErrLookupMiss)
	}
	if len(raw.TimeSignature) != 2 {
		return StageSettings{}, fmt.Errorf("%w: time signature needs beats and unit", score.ErrLookupMiss)
	}
	meter := TimeSignature{Beats: raw.TimeSignature[0], Unit: raw.TimeSignature[1]}
	if meter.Beats <= 0 || !slices.Contains([]int{1, 2, 4, 8, 16}, meter.Unit) {
		return StageSettings{}, fmt.Errorf("%w: time signature %s", score.ErrLookupMiss, meter)
	}
	if !meter.Length().OnUnitGrid() || meter.Length() > score.MaxDuration {
		return StageSettings{}, fmt.Errorf("%w: time signature %s", score.ErrUnrepresentableDuration, meter)
	}

	for _, inst := range instruments {
		fits := slices.ContainsFunc(raw.Universe, func(p int) bool { return inst.Contains(p, true) })
		if !fits {
			return StageSettings{}, fmt.Errorf("%w: %s plays no pitch of the universe", score.ErrLookupMiss, inst.Name)
		}
	}

	if s == StageUnison && len(composer.SharedPitches(instruments, raw.Universe, true)) == 0 {
		return StageSettings{}, fmt.Errorf("%w: instruments share no pitch of the universe", score.ErrLookupMiss)
	}

	templates := make(map[int][][]composer.VoiceType, len(raw.VoiceTypes))
	for key, rows := range raw.VoiceTypes {
		direction, err := strconv.Atoi(key)
		if err != nil || direction < 0 || direction > MaxDirection {
			return StageSettings{}, fmt.Errorf("%w: voice types for direction %q", score.ErrLookupMiss, key)
		}
		for _, row := range rows {
			if len(row) != len(instruments) {
				return StageSettings{}, fmt.Errorf("%w: voice template %v for %d instruments", score.ErrLookupMiss, row, len(instruments))
			}
			voices := make([]composer.VoiceType, len(row))
			for i, v := range row {
				voices[i] = composer.VoiceType(v)
				if !voices[i].Valid() {
					return StageSettings{}, fmt.Errorf("%w: voice type %d", score.ErrLookupMiss, v)
				}
			}
			templates[direction] = append(templates[direction], voices)
		}
	}
	if !s.Transitional() {
		for d := 0; d <= MaxDirection; d++ {
			if len(templates[d]) == 0 {
				return StageSettings{}, fmt.Errorf("%w: no voice types for direction %d", score.ErrLookupMiss, d)
			}
		}
	}
	return StageSettings{
		Universe:       raw.Universe,
		Meter:          meter,
		Templates:      templates,
		ShuffleSilence: raw.ShuffleSilence,
	}, nil
}
