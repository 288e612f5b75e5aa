package composer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/james-see/tasteofcontrol/pkg/score"
)

var (
	testUniverse    = []int{0, 2, 4, 5, 7, 9, 11, 12}
	testInstruments = []score.Instrument{
		{Name: "Flute", Lower: 0, Upper: 24, ExtendedUpper: 31},
		{Name: "Clarinet", Lower: -10, Upper: 27, Transposition: 2},
		{Name: "Alto Sax", Lower: -11, Upper: 20, Transposition: 9},
	}
	measure = score.Beats(6)
)

func variants() []Composer {
	return []Composer{NewMelodic(), NewOstinato(), NewUnison(), NewNoise(), NewEmpty("english")}
}

func TestVariantsFillTheMeasure(t *testing.T) {
	voiceSets := [][]Voice{
		{{VoicePrimary, 0}, {VoiceSecondary, 1}, {VoiceSilent, 2}},
		{{VoicePrimary, 1}, {VoicePrimary, 2}, {VoiceSecondary, 2}},
		{{VoiceExtended, 0}, {VoiceSecondary, 0}, {VoicePrimary, 1}},
		{{VoiceExtended, 2}, {VoiceExtended, 2}, {VoiceExtended, 2}},
		{{VoiceSilent, 0}, {VoiceSilent, 1}, {VoiceSilent, 2}},
	}
	for _, c := range variants() {
		t.Run(c.Name(), func(t *testing.T) {
			for seed := uint64(0); seed < 60; seed++ {
				for direction := 0; direction <= 5; direction++ {
					volume := float64(seed%11) / 10
					voices := voiceSets[int(seed)%len(voiceSets)]
					c.SetDynamic(direction, volume)
					req := Request{
						Universe:    testUniverse,
						Instruments: testInstruments,
						Voices:      voices,
						Direction:   direction,
						Volume:      volume,
						Measure:     measure,
						Rand:        NewRand(seed),
					}
					frags, err := c.Compose(req)
					require.NoError(t, err, "seed %d direction %d", seed, direction)
					require.Len(t, frags, len(testInstruments))
					for _, inst := range testInstruments {
						f := frags[inst.Name]
						require.NotNil(t, f, inst.Name)
						ctx := fmt.Sprintf("seed %d direction %d volume %.1f %s", seed, direction, volume, inst.Name)
						assert.Equal(t, measure, f.RealDuration(), ctx)
						assert.NoError(t, f.Validate(), ctx)
						assert.NoError(t, balancedSlurs(f), ctx)
					}
				}
			}
		})
	}
}

// balancedSlurs checks that every slur opened on a note is closed later.
func balancedSlurs(f *score.Fragment) error {
	open := 0
	for _, n := range f.Notes() {
		switch n.Slur {
		case score.SlurBegin:
			if open > 0 {
				return fmt.Errorf("nested slur at pitch %d", n.Pitch)
			}
			open++
		case score.SlurEnd:
			if open == 0 {
				return fmt.Errorf("slur closed at pitch %d was never opened", n.Pitch)
			}
			open--
		}
	}
	if open != 0 {
		return fmt.Errorf("unterminated slur")
	}
	return nil
}

func TestMelodicSingleNoteHasNoSlur(t *testing.T) {
	flute := testInstruments[:1]
	for seed := uint64(0); seed < 300; seed++ {
		m := NewMelodic()
		m.SetDynamic(5, 0)
		frags, err := m.Compose(Request{
			Universe:    testUniverse,
			Instruments: flute,
			Voices:      []Voice{{VoicePrimary, 2}},
			Direction:   5,
			Volume:      0,
			Measure:     measure,
			Rand:        NewRand(seed),
		})
		if err != nil {
			t.Fatalf("Compose() seed %d: %v", seed, err)
		}
		if err := balancedSlurs(frags["Flute"]); err != nil {
			t.Errorf("seed %d: %v", seed, err)
		}
	}
}

func TestMelodicScenario(t *testing.T) {
	m := NewMelodic()
	m.SetDynamic(2, 0.3)
	frags, err := m.Compose(Request{
		Universe:    testUniverse,
		Instruments: testInstruments,
		Voices:      []Voice{{VoicePrimary, 0}, {VoiceSecondary, 1}, {VoiceSilent, 2}},
		Direction:   2,
		Volume:      0.3,
		Measure:     measure,
		Rand:        NewRand(7),
	})
	require.NoError(t, err)
	require.Len(t, frags, 3)

	for _, f := range frags {
		assert.Equal(t, measure, f.RealDuration())
	}
	assert.Empty(t, frags["Alto Sax"].Sounding(), "silent voice must only rest")
	assert.NotEmpty(t, frags["Flute"].Sounding())

	var trilled bool
	for _, n := range frags["Clarinet"].Sounding() {
		if n.TrillTo != nil {
			trilled = true
		}
	}
	assert.True(t, trilled, "secondary voice writes a trill")
	assert.GreaterOrEqual(t, leadingRest(frags["Clarinet"]), score.Beats(1), "trill waits for its silence offset")
}

func leadingRest(f *score.Fragment) score.Duration {
	var d score.Duration
	for _, e := range f.Timeline() {
		if !e.Note.Rest {
			break
		}
		d += e.Length
	}
	return d
}

func TestUnisonConverges(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		u := NewUnison()
		frags, err := u.Compose(Request{
			Universe:    testUniverse,
			Instruments: testInstruments,
			Voices:      []Voice{{VoicePrimary, 0}, {VoiceSecondary, 0}, {VoiceExtended, 1}},
			Direction:   3,
			Volume:      0.4,
			Measure:     measure,
			Rand:        NewRand(seed),
		})
		require.NoError(t, err)

		var held []int
		for _, inst := range testInstruments {
			events := frags[inst.Name].Timeline()
			last := events[len(events)-1]
			assert.Equal(t, score.Beats(4), last.Start, "hold starts two beats before the bar line")
			held = append(held, last.Note.Pitch)
		}
		assert.Equal(t, held[0], held[1])
		assert.Equal(t, held[1], held[2])
	}
}

func TestUnisonNarrowRangesAtSilence(t *testing.T) {
	duo := []score.Instrument{
		{Name: "Low", Lower: 0, Upper: 5},
		{Name: "High", Lower: 4, Upper: 9},
	}
	assert.Equal(t, []int{4, 5}, SharedPitches(duo, testUniverse, false))

	for _, volume := range []float64{0, 0.3, 0.6, 1} {
		for seed := uint64(0); seed < 10; seed++ {
			frags, err := NewUnison().Compose(Request{
				Universe:    testUniverse,
				Instruments: duo,
				Voices:      []Voice{{VoicePrimary, 0}, {VoicePrimary, 1}},
				Direction:   int(seed % 6),
				Volume:      volume,
				Measure:     measure,
				Rand:        NewRand(seed),
			})
			if err != nil {
				t.Fatalf("Compose() volume %.1f seed %d: %v", volume, seed, err)
			}
			for _, inst := range duo {
				f := frags[inst.Name]
				if got := f.RealDuration(); got != measure {
					t.Errorf("%s RealDuration() = %v, want %v", inst.Name, got, measure)
				}
				for _, n := range f.Sounding() {
					if !inst.Contains(n.Pitch, false) {
						t.Errorf("%s plays %d out of range", inst.Name, n.Pitch)
					}
				}
			}
		}
	}
}

func TestUnisonStaggeredEntries(t *testing.T) {
	frags, err := NewUnison().Compose(Request{
		Universe:    testUniverse,
		Instruments: testInstruments,
		Voices:      []Voice{{VoicePrimary, 0}, {VoicePrimary, 0}, {VoicePrimary, 0}},
		Volume:      0.2,
		Measure:     measure,
		Rand:        NewRand(3),
	})
	require.NoError(t, err)
	assert.Equal(t, score.Duration(0), leadingRest(frags["Flute"]))
	assert.Equal(t, score.MustFraction(1, 2), leadingRest(frags["Clarinet"]))
	assert.Equal(t, score.Beats(1), leadingRest(frags["Alto Sax"]))
}

func TestNoiseUsesCrossHeads(t *testing.T) {
	var crossed bool
	for seed := uint64(0); seed < 20 && !crossed; seed++ {
		frags, err := NewNoise().Compose(Request{
			Universe:    testUniverse,
			Instruments: testInstruments,
			Voices:      []Voice{{VoicePrimary, 0}, {VoicePrimary, 1}, {VoiceExtended, 0}},
			Volume:      0,
			Measure:     measure,
			Rand:        NewRand(seed),
		})
		require.NoError(t, err)
		for _, f := range frags {
			for _, n := range f.Sounding() {
				if n.Notehead == score.NoteheadCross {
					crossed = true
					assert.Equal(t, -13, n.Pitch, "silent volume keeps a single noise pitch")
				}
			}
		}
	}
	assert.True(t, crossed)
}

func TestEmpty(t *testing.T) {
	frags, err := NewEmpty("español").Compose(Request{Instruments: testInstruments, Measure: measure})
	require.NoError(t, err)
	for _, f := range frags {
		notes := f.Notes()
		require.NotEmpty(t, notes)
		assert.True(t, notes[0].Hidden)
		assert.Contains(t, notes[0].Markup, "Respira")
		assert.Equal(t, measure, f.RealDuration())
	}

	_, err = NewEmpty("klingon").Compose(Request{Instruments: testInstruments, Measure: measure})
	assert.ErrorIs(t, err, score.ErrLookupMiss)
}

func TestRequestValidate(t *testing.T) {
	req := Request{
		Universe:    testUniverse,
		Instruments: testInstruments,
		Voices:      []Voice{{VoicePrimary, 0}},
		Measure:     measure,
		Rand:        NewRand(1),
	}
	_, err := NewMelodic().Compose(req)
	assert.ErrorIs(t, err, score.ErrLookupMiss)
}

func TestPickArityAvoidsUsed(t *testing.T) {
	r := NewRand(11)
	used := map[int]bool{3: true, 4: true, 5: true}
	for range 50 {
		a := pickArity(r, used, 1)
		assert.Contains(t, []int{6, 7}, a)
	}
}

func TestMode(t *testing.T) {
	p, ok := mode([]int{4, 2, 4, 2, 7})
	assert.True(t, ok)
	assert.Equal(t, 2, p)

	_, ok = mode(nil)
	assert.False(t, ok)
}
