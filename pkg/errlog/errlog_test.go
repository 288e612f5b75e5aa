package errlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(i int) Entry {
	e := NewEntry()
	e.Time = time.Date(2026, 1, 1, 0, 0, i, 0, time.UTC)
	e.Measure = i
	e.Stage = 1
	e.StageName = "melodic"
	e.Direction = 3
	e.Volume = 0.4
	e.Instrument = "Flute"
	e.Expected = "6"
	e.Actual = "23/4"
	return e
}

func exercise(t *testing.T, r Record) {
	t.Helper()
	ctx := context.Background()

	entries, err := r.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	for i := range 3 {
		require.NoError(t, r.Append(ctx, sample(i)))
	}
	entries, err = r.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, i, e.Measure)
		assert.Equal(t, "23/4", e.Actual)
		assert.NotEmpty(t, e.ID)
	}
	require.NoError(t, r.Close())
}

func TestMemory(t *testing.T) {
	exercise(t, NewMemory())
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ERROR_LOG")
	exercise(t, NewFile(path))

	// appends survive reopening
	again := NewFile(path)
	require.NoError(t, again.Append(context.Background(), sample(9)))
	entries, err := again.Entries(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestBadger(t *testing.T) {
	r, err := NewBadger(BadgerOptions{InMemory: true})
	require.NoError(t, err)
	exercise(t, r)
}

func TestBadgerRequiresDir(t *testing.T) {
	_, err := NewBadger(BadgerOptions{})
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	r, err := Open(KindMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, r)

	_, err = Open("postgres", "")
	assert.Error(t, err)
}

func TestEntryString(t *testing.T) {
	s := sample(0).String()
	assert.Contains(t, s, "Duration: 23/4, Target Duration: 6")
	assert.Contains(t, s, "Stage/direction: 1/3")
}
