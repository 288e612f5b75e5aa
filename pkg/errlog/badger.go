package errlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	badger "github.com/dgraph-io/badger/v4"
)

const keyPrefix = "mismatch:"

// Badger keeps entries in a BadgerDB database, keyed by time so iteration
// returns them in append order.
type Badger struct {
	db *badger.DB
}

// BadgerOptions configures the badger record.
type BadgerOptions struct {
	// Dir is the database directory. Required unless InMemory is set.
	Dir string

	// InMemory keeps the database in memory only.
	InMemory bool
}

// NewBadger opens the database.
func NewBadger(opts BadgerOptions) (*Badger, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("errlog: BadgerOptions.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir).WithLogger(quietLogger{})
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open error database: %w", err)
	}
	return &Badger{db: db}, nil
}

func entryKey(e Entry) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", keyPrefix, e.Time.UnixNano(), e.ID))
}

func (b *Badger) Append(_ context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(entryKey(e), data)
	})
}

func (b *Badger) Entries(_ context.Context) ([]Entry, error) {
	var out []Entry
	prefix := []byte(keyPrefix)
	err := b.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = prefix
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var e Entry
			if err := json.Unmarshal(val, &e); err != nil {
				return fmt.Errorf("failed to decode entry: %w", err)
			}
			out = append(out, e)
		}
		return nil
	})
	return out, err
}

func (b *Badger) Close() error {
	return b.db.Close()
}

// quietLogger drops badger's info and debug chatter.
type quietLogger struct{}

func (quietLogger) Errorf(f string, v ...interface{})   { log.Printf("[badger] ERROR: "+f, v...) }
func (quietLogger) Warningf(f string, v ...interface{}) { log.Printf("[badger] WARN: "+f, v...) }
func (quietLogger) Infof(string, ...interface{})        {}
func (quietLogger) Debugf(string, ...interface{})       {}
