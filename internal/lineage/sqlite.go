package lineage

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/ionspid/taxassign/internal/model"
)

// SQLiteSource serves lineage lookups from a SQLite taxonomy database,
// for reference sets too large to hold in memory.
type SQLiteSource struct {
	db *sql.DB
}

// NewSQLite opens (or creates) a SQLite taxonomy database at the given
// path and configures WAL mode. An unreachable database is a
// ConfigurationError.
func NewSQLite(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &model.ConfigurationError{Source: path, Err: err}
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, &model.ConfigurationError{Source: path, Err: eris.Wrapf(err, "exec %s", pragma)}
		}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &model.ConfigurationError{Source: path, Err: err}
	}
	return &SQLiteSource{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS lineages (
	subject_id TEXT PRIMARY KEY,
	taxonomy   TEXT NOT NULL
);
`

// Migrate creates the lineages table if it does not exist.
func (s *SQLiteSource) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "lineage sqlite: migrate")
}

func (s *SQLiteSource) Lookup(ctx context.Context, subjectID string) (string, bool, error) {
	var taxonomy string
	err := s.db.QueryRowContext(ctx,
		`SELECT taxonomy FROM lineages WHERE subject_id = ?`, subjectID,
	).Scan(&taxonomy)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, eris.Wrap(err, "lineage sqlite: lookup")
	}
	return taxonomy, true, nil
}

// Load bulk-upserts mapping entries inside one transaction.
func (s *SQLiteSource) Load(ctx context.Context, entries map[string]string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "lineage sqlite: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO lineages (subject_id, taxonomy) VALUES (?, ?)
		 ON CONFLICT(subject_id) DO UPDATE SET taxonomy = excluded.taxonomy`)
	if err != nil {
		return 0, eris.Wrap(err, "lineage sqlite: prepare insert")
	}
	defer stmt.Close()

	var n int64
	for sid, taxonomy := range entries {
		if _, err := stmt.ExecContext(ctx, sid, taxonomy); err != nil {
			return 0, eris.Wrapf(err, "lineage sqlite: insert %s", sid)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "lineage sqlite: commit")
	}
	return n, nil
}

// Reset removes every mapping.
func (s *SQLiteSource) Reset(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM lineages`)
	return eris.Wrap(err, "lineage sqlite: reset")
}

// Count returns the number of mapped subjects.
func (s *SQLiteSource) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lineages`).Scan(&n)
	return n, eris.Wrap(err, "lineage sqlite: count")
}

func (s *SQLiteSource) Close() error {
	return s.db.Close()
}
