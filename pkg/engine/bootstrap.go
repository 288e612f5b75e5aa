package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/james-see/tasteofcontrol/pkg/composer"
	"github.com/james-see/tasteofcontrol/pkg/config"
	"github.com/james-see/tasteofcontrol/pkg/errlog"
	"github.com/james-see/tasteofcontrol/pkg/logger"
)

// Open builds a session and its error record from process configuration.
// The caller closes the record.
func Open(cfg *config.Config) (*Session, errlog.Record, error) {
	stages, err := LoadStages(cfg.StagesPath)
	if err != nil {
		return nil, nil, err
	}

	path := cfg.ErrorLogPath
	if cfg.ErrorStore == errlog.KindBadger {
		path = cfg.ErrorDBDir
	}
	record, err := errlog.Open(cfg.ErrorStore, path)
	if err != nil {
		return nil, nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	id := uuid.NewString()
	c, err := New(Options{
		Stages:   stages,
		Rand:     composer.NewRand(seed),
		Record:   record,
		Session:  id,
		Strict:   cfg.Strict,
		Momentum: cfg.Momentum,
		Language: cfg.Language,
	})
	if err != nil {
		record.Close()
		return nil, nil, fmt.Errorf("failed to create composer: %w", err)
	}

	logger.Info("Session opened", logger.Fields{
		"session_id":  id,
		"seed":        fmt.Sprint(seed),
		"strict":      cfg.Strict,
		"error_store": cfg.ErrorStore,
	})
	return NewSession(c), record, nil
}
