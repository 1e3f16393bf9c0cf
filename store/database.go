// Package store keeps the history of verification runs
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import go-sqlite3 library

	"github.com/thechriswalker/go-verifier/verifier"
)

// ErrRunMissing is returned from Storage.Report for unknown runs
var ErrRunMissing = errors.New("Run Not Found")

// Run is one line of the history
type Run struct {
	ID          int64
	Started     time.Time
	DataDir     string
	Fingerprint string
	Status      verifier.Status
	Counts      map[verifier.Status]int
}

// Storage of past runs
type Storage interface {
	Save(dataDir string, started time.Time, rep *verifier.Report) (int64, error)
	Runs(limit int) ([]*Run, error)
	Report(id int64) (*verifier.Report, error)
	Close() error
}

// SQLiteStorage is backed by SQLite
type SQLiteStorage struct {
	db *sql.DB
}

var _ Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens (and creates if needed) the history database
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
			started_ms INTEGER NOT NULL,   -- unix timestamp in milliseconds
			data_dir TEXT NOT NULL,
			fingerprint TEXT NOT NULL,     -- blake3 of the dataset
			status TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS outcomes (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			verification TEXT NOT NULL,    -- "MM.mm", sorts like the id
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			status TEXT NOT NULL,
			findings TEXT NOT NULL,        -- JSON array
			cause TEXT NOT NULL,
			reason TEXT NOT NULL,
			PRIMARY KEY (run_id, verification)
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create history tables: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Save writes the report in one transaction and returns the run id
func (s *SQLiteStorage) Save(dataDir string, started time.Time, rep *verifier.Report) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO runs (started_ms, data_dir, fingerprint, status)
		          VALUES (?,          ?,        ?,           ?);
	`, started.UnixMilli(), dataDir, rep.Fingerprint, rep.Status.String())
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO outcomes (run_id, verification, name, category, status, findings, cause, reason)
		              VALUES (?,      ?,            ?,    ?,        ?,      ?,        ?,     ?);
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for _, r := range rep.Results {
		findings, err := json.Marshal(r.Findings)
		if err != nil {
			return 0, err
		}
		_, err = stmt.Exec(id, r.ID.String(), r.Name, string(r.Category), r.Status.String(), string(findings), r.Cause, r.Reason)
		if err != nil {
			return 0, fmt.Errorf("store outcome %s: %w", r.ID, err)
		}
	}
	return id, tx.Commit()
}

// Runs lists the most recent runs first. limit < 1 lists them all.
func (s *SQLiteStorage) Runs(limit int) ([]*Run, error) {
	if limit < 1 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT r.id, r.started_ms, r.data_dir, r.fingerprint, r.status, o.status, COUNT(o.run_id)
		FROM (SELECT * FROM runs ORDER BY started_ms DESC, id DESC LIMIT ?) r
		LEFT JOIN outcomes o ON o.run_id = r.id
		GROUP BY r.id, o.status
		ORDER BY r.started_ms DESC, r.id DESC
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Run
	for rows.Next() {
		var (
			id, ms        int64
			dir, fp, st   string
			outcomeStatus sql.NullString
			count         int
		)
		if err := rows.Scan(&id, &ms, &dir, &fp, &st, &outcomeStatus, &count); err != nil {
			return nil, err
		}
		if len(out) == 0 || out[len(out)-1].ID != id {
			run := &Run{ID: id, Started: time.UnixMilli(ms), DataDir: dir, Fingerprint: fp, Counts: map[verifier.Status]int{}}
			if err := run.Status.UnmarshalText([]byte(st)); err != nil {
				return nil, fmt.Errorf("run %d: %w", id, err)
			}
			out = append(out, run)
		}
		if outcomeStatus.Valid {
			var status verifier.Status
			if err := status.UnmarshalText([]byte(outcomeStatus.String)); err != nil {
				return nil, fmt.Errorf("run %d: %w", id, err)
			}
			out[len(out)-1].Counts[status] = count
		}
	}
	return out, rows.Err()
}

// Report rebuilds the report of a stored run
func (s *SQLiteStorage) Report(id int64) (*verifier.Report, error) {
	rep := &verifier.Report{}
	var st string
	err := s.db.QueryRow(`SELECT fingerprint, status FROM runs WHERE id = ?`, id).Scan(&rep.Fingerprint, &st)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunMissing
	}
	if err != nil {
		return nil, err
	}
	if err := rep.Status.UnmarshalText([]byte(st)); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`
		SELECT verification, name, category, status, findings, cause, reason
		FROM outcomes WHERE run_id = ? ORDER BY verification
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			r                   verifier.Result
			vid, cat, st, finds string
		)
		if err := rows.Scan(&vid, &r.Name, &cat, &st, &finds, &r.Cause, &r.Reason); err != nil {
			return nil, err
		}
		if err := r.ID.UnmarshalText([]byte(vid)); err != nil {
			return nil, err
		}
		if err := r.Status.UnmarshalText([]byte(st)); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(finds), &r.Findings); err != nil {
			return nil, fmt.Errorf("findings of %s: %w", vid, err)
		}
		r.Category = verifier.Category(cat)
		rep.Results = append(rep.Results, r)
	}
	return rep, rows.Err()
}
