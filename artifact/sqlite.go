package artifact

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"

	"github.com/JorjanDorjan/ML-for-agile-methodology/ml"
	"github.com/JorjanDorjan/ML-for-agile-methodology/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS model_artifacts (
	slot      INTEGER PRIMARY KEY CHECK (slot = 1),
	payload   BLOB    NOT NULL,
	stored_at INTEGER NOT NULL
)`

// SQLiteStore keeps the artifact in a single-row table, replaced inside a
// transaction.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating artifact directory")
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.Wrap(err, "opening artifact database")
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating artifact table")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Store(ctx context.Context, a *ml.Artifact) error {
	data, err := encode(a)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning artifact transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO model_artifacts (slot, payload, stored_at) VALUES (1, ?, ?)
		ON CONFLICT (slot) DO UPDATE SET
			payload = excluded.payload,
			stored_at = MAX(excluded.stored_at, model_artifacts.stored_at + 1)
	`, data, time.Now().UnixNano())
	if err != nil {
		return errors.Wrap(err, "writing artifact")
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing artifact")
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*ml.Artifact, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM model_artifacts WHERE slot = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(models.ErrNotTrained, "artifact table is empty")
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading artifact")
	}
	return decode(data)
}

func (s *SQLiteStore) LastModified(ctx context.Context) (time.Time, error) {
	var nanos int64
	err := s.db.QueryRowContext(ctx, `SELECT stored_at FROM model_artifacts WHERE slot = 1`).Scan(&nanos)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, errors.Wrap(models.ErrNotTrained, "artifact table is empty")
	}
	if err != nil {
		return time.Time{}, errors.Wrap(err, "reading artifact timestamp")
	}
	return time.Unix(0, nanos), nil
}
