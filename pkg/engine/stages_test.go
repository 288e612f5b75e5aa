package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/james-see/tasteofcontrol/pkg/composer"
	"github.com/james-see/tasteofcontrol/pkg/score"
)

func TestLoadDefaultStages(t *testing.T) {
	stages, err := LoadStages("")
	require.NoError(t, err)
	assert.Len(t, stages.Instruments, 3)
	assert.Equal(t, "english", stages.Language)

	melodic := stages.Settings[StageMelodic]
	assert.Equal(t, TimeSignature{6, 4}, melodic.Meter)
	assert.Equal(t, score.Beats(6), melodic.Meter.Length())
	for d := 0; d <= MaxDirection; d++ {
		assert.NotEmpty(t, melodic.Templates[d])
	}
	assert.Equal(t, []composer.VoiceType{composer.VoicePrimary, composer.VoiceSecondary, composer.VoiceSilent}, melodic.Templates[1][0])
}

const minimalStages = `
instruments:
  - {name: Flute, lower: 0, upper: 24}
stages:
  "0": {pitch_universe: [0], time_signature: [6, 4]}
  "1": {pitch_universe: [0, 2, 4], time_signature: [6, 8], voice_types: {"0": [[1]], "1": [[1]], "2": [[1]], "3": [[1]], "4": [[1]], "5": [[3]]}}
  "2": {pitch_universe: [0, 2, 4], time_signature: [5, 4], voice_types: {"0": [[1]], "1": [[1]], "2": [[1]], "3": [[1]], "4": [[1]], "5": [[3]]}}
  "3": {pitch_universe: [0, 2, 4], time_signature: [6, 4], voice_types: {"0": [[1]], "1": [[1]], "2": [[1]], "3": [[1]], "4": [[1]], "5": [[3]]}}
  "4": {pitch_universe: [0], time_signature: [4, 4]}
  "5": {pitch_universe: [0, 2, 4], time_signature: [7, 4], voice_types: {"0": [[1]], "1": [[1]], "2": [[1]], "3": [[1]], "4": [[1]], "5": [[3]]}}
`

func TestParseStages(t *testing.T) {
	stages, err := ParseStages([]byte(minimalStages))
	require.NoError(t, err)
	assert.Equal(t, score.Beats(3), stages.Settings[StageMelodic].Meter.Length(), "6/8 lasts three quarter beats")
}

func TestLoadStagesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stages.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalStages), 0644))
	stages, err := LoadStages(path)
	require.NoError(t, err)
	assert.Equal(t, "Flute", stages.Instruments[0].Name)

	_, err = LoadStages(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseStagesRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing stage", func(c *Config) { delete(c.Stages, "3") }},
		{"empty universe", func(c *Config) {
			s := c.Stages["1"]
			s.Universe = nil
			c.Stages["1"] = s
		}},
		{"bad unit", func(c *Config) {
			s := c.Stages["2"]
			s.TimeSignature = []int{5, 3}
			c.Stages["2"] = s
		}},
		{"template width", func(c *Config) {
			s := c.Stages["1"]
			s.VoiceTypes = map[string][][]int{"0": {{1, 1}}}
			c.Stages["1"] = s
		}},
		{"unknown voice type", func(c *Config) {
			s := c.Stages["5"]
			s.VoiceTypes["2"] = [][]int{{7}}
			c.Stages["5"] = s
		}},
		{"universe out of range", func(c *Config) {
			s := c.Stages["3"]
			s.Universe = []int{-30, 60}
			c.Stages["3"] = s
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			require.NoError(t, yaml.Unmarshal([]byte(minimalStages), &cfg))
			tt.mutate(&cfg)
			_, err := cfg.Resolve()
			assert.ErrorIs(t, err, score.ErrLookupMiss)
		})
	}
}

const duoStages = `
instruments:
  - {name: Flute, lower: 0, upper: 5}
  - {name: Oboe, lower: 4, upper: 9}
stages:
  "0": {pitch_universe: [0, 4], time_signature: [6, 4]}
  "1": {pitch_universe: [0, 2, 4, 5, 7, 9], time_signature: [6, 4], voice_types: {"0": [[1, 1]], "1": [[1, 1]], "2": [[1, 1]], "3": [[1, 1]], "4": [[1, 1]], "5": [[1, 1]]}}
  "2": {pitch_universe: [0, 2, 4, 5, 7, 9], time_signature: [6, 4], voice_types: {"0": [[1, 1]], "1": [[1, 1]], "2": [[1, 1]], "3": [[1, 1]], "4": [[1, 1]], "5": [[1, 1]]}}
  "3": {pitch_universe: [UNISON], time_signature: [6, 4], voice_types: {"0": [[1, 1]], "1": [[1, 1]], "2": [[1, 1]], "3": [[1, 1]], "4": [[1, 1]], "5": [[1, 1]]}}
  "4": {pitch_universe: [0, 4], time_signature: [4, 4]}
  "5": {pitch_universe: [0, 2, 4, 5, 7, 9], time_signature: [6, 4], voice_types: {"0": [[1, 1]], "1": [[1, 1]], "2": [[1, 1]], "3": [[1, 1]], "4": [[1, 1]], "5": [[1, 1]]}}
`

func TestParseStagesUnisonNeedsSharedPitch(t *testing.T) {
	tests := []struct {
		universe string
		wantErr  bool
	}{
		{"0, 2, 4, 5, 7, 9", false},
		{"0, 2, 7, 9", true},
	}
	for _, tt := range tests {
		t.Run(tt.universe, func(t *testing.T) {
			_, err := ParseStages([]byte(strings.Replace(duoStages, "UNISON", tt.universe, 1)))
			if tt.wantErr {
				assert.ErrorIs(t, err, score.ErrLookupMiss)
				return
			}
			assert.NoError(t, err)
		})
	}
}
