package history

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mossd/internal/errors"
	"mossd/internal/logger"
)

// sqliteRepository batches sample and event rows in memory and
// flushes them in one transaction either when the batch fills or on a
// fixed timer, whichever comes first.
type sqliteRepository struct {
	db *sql.DB
	mu sync.Mutex

	batchSize int

	samples []sampleRow
	events  []eventRow

	flushTicker   *time.Ticker
	shutdownChan  chan struct{}
	flushDoneChan chan struct{}
}

func newSQLiteRepository(cfg Config) (repository, error) {
	errFactory := errors.New()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	dsn := cfg.DBPath + "?_journal=WAL&_auto_vacuum=2"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := validateSchema(db); err != nil {
		db.Close()
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	logger.Info().Str("path", cfg.DBPath).Msg("History journal opened")

	r := &sqliteRepository{
		db:            db,
		batchSize:     cfg.BatchSize,
		shutdownChan:  make(chan struct{}),
		flushDoneChan: make(chan struct{}),
	}

	if cfg.BatchTimeout > 0 {
		r.flushTicker = time.NewTicker(time.Duration(cfg.BatchTimeout) * time.Second)
		go r.flusher()
	} else {
		close(r.flushDoneChan)
	}

	return r, nil
}

func (r *sqliteRepository) recordSample(row sampleRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.samples = append(r.samples, row)
	if len(r.samples) >= r.batchSize {
		return r.flush()
	}

	return nil
}

func (r *sqliteRepository) recordEvent(row eventRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, row)
	if len(r.events) >= r.batchSize {
		return r.flush()
	}

	return nil
}

func (r *sqliteRepository) flusher() {
	defer close(r.flushDoneChan)

	for {
		select {
		case <-r.flushTicker.C:
			r.mu.Lock()
			if err := r.flush(); err != nil {
				logger.Warn().Err(err).Msg("History journal periodic flush failed")
			}
			r.mu.Unlock()
		case <-r.shutdownChan:
			r.mu.Lock()
			if err := r.flush(); err != nil {
				logger.Warn().Err(err).Msg("History journal final flush failed")
			}
			r.mu.Unlock()
			return
		}
	}
}

// flush must be called with mu held.
func (r *sqliteRepository) flush() error {
	if len(r.samples) == 0 && len(r.events) == 0 {
		return nil
	}

	errFactory := errors.New()

	tx, err := r.db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	if len(r.samples) > 0 {
		stmt, err := tx.Prepare(insertSampleSQL)
		if err != nil {
			tx.Rollback()
			return errFactory.Wrap(ErrTransactionFailed, err)
		}

		for _, s := range r.samples {
			if _, err := stmt.Exec(s.DeviceID, s.Timestamp.Unix(), s.TemperatureC, s.FanPercent, s.PowerUsageW, s.CoreClockMHz, s.MemClockMHz); err != nil {
				stmt.Close()
				tx.Rollback()
				return errFactory.Wrap(ErrTransactionFailed, err)
			}
		}
		stmt.Close()
	}

	if len(r.events) > 0 {
		stmt, err := tx.Prepare(insertEventSQL)
		if err != nil {
			tx.Rollback()
			return errFactory.Wrap(ErrTransactionFailed, err)
		}

		for _, e := range r.events {
			if _, err := stmt.Exec(e.DeviceID, e.Timestamp.Unix(), e.Kind, e.Message); err != nil {
				stmt.Close()
				tx.Rollback()
				return errFactory.Wrap(ErrTransactionFailed, err)
			}
		}
		stmt.Close()
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	logger.Debug().Int("samples", len(r.samples)).Int("events", len(r.events)).Msg("Flushed history journal batch")

	r.samples = r.samples[:0]
	r.events = r.events[:0]

	return nil
}

func (r *sqliteRepository) Close() error {
	errFactory := errors.New()

	if r.flushTicker != nil {
		close(r.shutdownChan)
		r.flushTicker.Stop()
		<-r.flushDoneChan
	} else {
		r.mu.Lock()
		if err := r.flush(); err != nil {
			logger.Warn().Err(err).Msg("History journal close-time flush failed")
		}
		r.mu.Unlock()
	}

	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return errFactory.Wrap(ErrStorageClose, err)
	}

	if err := r.db.Close(); err != nil {
		return errFactory.Wrap(ErrStorageClose, err)
	}

	logger.Info().Msg("History journal closed")

	return nil
}
