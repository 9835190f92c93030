package history

import (
	"database/sql"

	"mossd/internal/errors"
	"mossd/internal/logger"
)

const (
	schemaVersion = 1

	createTablesSQL = `
		CREATE TABLE IF NOT EXISTS schema_versions (
			version    INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS samples (
			device_id     TEXT NOT NULL,
			timestamp     INTEGER NOT NULL,
			temperature_c INTEGER NOT NULL,
			fan_percent   INTEGER NOT NULL,
			power_usage_w INTEGER NOT NULL,
			core_clock_mhz INTEGER NOT NULL,
			mem_clock_mhz  INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_samples_device_time ON samples(device_id, timestamp);
		CREATE TABLE IF NOT EXISTS events (
			device_id TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			kind      TEXT NOT NULL,
			message   TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_events_device_time ON events(device_id, timestamp);`

	insertSampleSQL = `
		INSERT INTO samples (
			device_id, timestamp, temperature_c, fan_percent,
			power_usage_w, core_clock_mhz, mem_clock_mhz
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

	insertEventSQL = `
		INSERT INTO events (device_id, timestamp, kind, message)
		VALUES (?, ?, ?, ?)`
)

// initSchema creates the journal tables if absent and records the
// current schema version. The journal has no migration path, and
// validateSchema does not compare versions: an existing schema_versions
// table is accepted as is.
func initSchema(db *sql.DB) error {
	errFactory := errors.New()

	tx, err := db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	if _, err := tx.Exec(createTablesSQL); err != nil {
		tx.Rollback()
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	if _, err := tx.Exec(`INSERT INTO schema_versions (version, applied_at) VALUES (?, datetime('now'))`, schemaVersion); err != nil {
		tx.Rollback()
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	return nil
}

// validateSchema ensures the journal tables exist, creating them on
// first use. An empty database (no schema_versions table) is the
// common case for a freshly configured installation.
func validateSchema(db *sql.DB) error {
	errFactory := errors.New()

	exists, err := tableExists(db, "schema_versions")
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}
	if exists {
		logger.Debug().Msg("History journal schema already present")
		return nil
	}

	logger.Info().Int("version", schemaVersion).Msg("Initializing history journal schema")
	return initSchema(db)
}

func tableExists(db *sql.DB, name string) (bool, error) {
	var exists bool
	err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type='table' AND name=?)`, name).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}
