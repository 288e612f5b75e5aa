package composer

import (
	"fmt"

	"github.com/james-see/tasteofcontrol/pkg/score"
)

var instructions = map[string]string{
	"english": "Breathe naturally. Expel air with force through instrument.",
	"español": "Respira naturalmente. Expulsa el aire con fuerza a través del instrumento.",
}

// Empty writes a measure of hidden rests that carries the breath instruction.
type Empty struct {
	Language string
}

// NewEmpty returns the breath variant for language.
func NewEmpty(language string) *Empty {
	return &Empty{Language: language}
}

func (e *Empty) Name() string { return "empty" }

func (e *Empty) SetDynamic(int, float64) {}

func (e *Empty) Compose(req Request) (map[string]*score.Fragment, error) {
	text, ok := instructions[e.Language]
	if !ok {
		return nil, fmt.Errorf("%w: instructions in %q", score.ErrLookupMiss, e.Language)
	}
	tokens, err := score.Decompose(req.Measure)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*score.Fragment, len(req.Instruments))
	for _, inst := range req.Instruments {
		frag := score.NewFragment()
		for i, t := range tokens {
			rest := score.NewRest(t)
			rest.Hidden = true
			if i == 0 {
				rest.Markup = text
			}
			frag.Append(rest)
		}
		out[inst.Name] = frag
	}
	return out, nil
}
