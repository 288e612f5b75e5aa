package errlog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entry is one duration mismatch: the fragment a variant wrote did not last
// the measure.
type Entry struct {
	ID         string    `json:"id"`
	Time       time.Time `json:"time"`
	Session    string    `json:"session"`
	Measure    int       `json:"measure"`
	Stage      int       `json:"stage"`
	StageName  string    `json:"stage_name"`
	Direction  int       `json:"direction"`
	Volume     float64   `json:"volume"`
	Voices     string    `json:"voices"`
	Instrument string    `json:"instrument"`
	Expected   string    `json:"expected"`
	Actual     string    `json:"actual"`
}

// NewEntry returns an entry stamped with a fresh ID and the current time.
func NewEntry() Entry {
	return Entry{ID: uuid.NewString(), Time: time.Now().UTC()}
}

func (e Entry) String() string {
	return fmt.Sprintf("Duration: %s, Target Duration: %s, Stage/direction: %d/%d, Volume: %.2f, Voice_data: %s, Instrument: %s",
		e.Actual, e.Expected, e.Stage, e.Direction, e.Volume, e.Voices, e.Instrument)
}

// Record is an append-only store of mismatch entries.
type Record interface {
	Append(ctx context.Context, e Entry) error
	Entries(ctx context.Context) ([]Entry, error)
	Close() error
}

// Store kinds accepted by Open.
const (
	KindFile   = "file"
	KindBadger = "badger"
	KindMemory = "memory"
)

// Open returns the record of the given kind. path is the log file for
// KindFile and the database directory for KindBadger.
func Open(kind, path string) (Record, error) {
	switch kind {
	case KindFile, "":
		return NewFile(path), nil
	case KindBadger:
		return NewBadger(BadgerOptions{Dir: path})
	case KindMemory:
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown error store %q", kind)
}
