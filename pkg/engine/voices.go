package engine

import (
	"fmt"
	"slices"

	"github.com/james-see/tasteofcontrol/pkg/composer"
	"github.com/james-see/tasteofcontrol/pkg/score"
)

// voices picks a voice template for the current direction and pairs it with
// a row of the silence bank.
func (m *MainComposer) voices(settings StageSettings) ([]composer.Voice, error) {
	n := len(m.stages.Instruments)
	direction := m.state.Direction()
	templates := settings.Templates[direction]
	if len(templates) == 0 {
		if !m.state.Stage.Transitional() {
			return nil, fmt.Errorf("%w: no voice types for stage %s direction %d", score.ErrLookupMiss, m.state.Stage, direction)
		}
		templates = [][]composer.VoiceType{make([]composer.VoiceType, n)}
	}
	types := templates[m.rand.IntN(len(templates))]

	from := min(len(silenceBank)-1, max(int(m.state.Stage), direction))
	silences := slices.Clone(silenceBank[from+m.rand.IntN(len(silenceBank)-from)])
	if settings.ShuffleSilence {
		m.rand.Shuffle(len(silences), func(i, j int) {
			silences[i], silences[j] = silences[j], silences[i]
		})
	}

	out := make([]composer.Voice, n)
	for i := range out {
		out[i] = composer.Voice{Type: types[i], Silence: silences[i%len(silences)]}
	}
	return out, nil
}
