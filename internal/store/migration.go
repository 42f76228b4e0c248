package store

import (
	"database/sql"
	"fmt"
)

const currentSchemaVersion = 1

// RunMigrations applies any pending database migrations and refuses to
// touch a journal written by a newer shipout.
func (s *Store) RunMigrations() error {
	version, err := s.getSchemaVersion()
	if err != nil {
		return err
	}

	if version > currentSchemaVersion {
		return fmt.Errorf("journal schema version %d is newer than this shipout supports (%d)", version, currentSchemaVersion)
	}

	if version < currentSchemaVersion {
		if err := s.setSchemaVersion(currentSchemaVersion); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
	}

	return nil
}

// getSchemaVersion returns the recorded schema version, 0 when the journal
// has never been stamped.
func (s *Store) getSchemaVersion() (int, error) {
	var tableName string
	err := s.db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='shipout_schema_version'
	`).Scan(&tableName)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM shipout_schema_version").Scan(&version)
	if err != nil {
		return 0, nil
	}

	return version, nil
}

func (s *Store) setSchemaVersion(version int) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO shipout_schema_version (version) VALUES (?)", version)
	return err
}
