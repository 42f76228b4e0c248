package store

import (
	"database/sql"
	"time"

	"github.com/kilupskalvis/shipout/internal/models"
)

// SaveRun appends one run record to the journal
func (s *Store) SaveRun(run *models.Run) error {
	_, err := s.db.Exec(`
		INSERT INTO runs (id, flow, ref, commit_hash, target, message, tag, outcome, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Flow, run.Ref,
		sql.NullString{String: run.Commit, Valid: run.Commit != ""},
		run.Target,
		sql.NullString{String: run.Message, Valid: run.Message != ""},
		sql.NullString{String: run.Tag, Valid: run.Tag != ""},
		string(run.Outcome),
		sql.NullString{String: run.Error, Valid: run.Error != ""},
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// GetRun retrieves a run by ID
func (s *Store) GetRun(id string) (*models.Run, error) {
	row := s.db.QueryRow(`
		SELECT id, flow, ref, commit_hash, target, message, tag, outcome, error, started_at, finished_at
		FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// ListRuns returns runs ordered by start time descending. A limit of 0
// returns everything.
func (s *Store) ListRuns(limit int) ([]*models.Run, error) {
	query := `
		SELECT id, flow, ref, commit_hash, target, message, tag, outcome, error, started_at, finished_at
		FROM runs ORDER BY started_at DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.Query(query+" LIMIT ?", limit)
	} else {
		rows, err = s.db.Query(query)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	var run models.Run
	var commit, message, tag, errText sql.NullString
	var outcome, startedAt, finishedAt string

	err := row.Scan(
		&run.ID, &run.Flow, &run.Ref, &commit, &run.Target,
		&message, &tag, &outcome, &errText, &startedAt, &finishedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Commit = commit.String
	run.Message = message.String
	run.Tag = tag.String
	run.Outcome = models.RunOutcome(outcome)
	run.Error = errText.String
	run.StartedAt = parseTimestamp(startedAt)
	run.FinishedAt = parseTimestamp(finishedAt)
	return &run, nil
}
