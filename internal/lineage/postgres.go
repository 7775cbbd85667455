package lineage

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/ionspid/taxassign/internal/model"
)

// Pool is the subset of pgxpool.Pool the postgres source needs.
// pgxmock satisfies it for tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Close()
}

// PostgresSource serves lineage lookups from a shared PostgreSQL
// taxonomy database.
type PostgresSource struct {
	pool Pool
}

// NewPostgres connects to the database and verifies reachability. A bad
// DSN or unreachable server is a ConfigurationError.
func NewPostgres(ctx context.Context, dsn string) (*PostgresSource, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, &model.ConfigurationError{Source: "postgres", Err: err}
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &model.ConfigurationError{Source: "postgres", Err: err}
	}
	return &PostgresSource{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool (used by tests).
func NewPostgresFromPool(pool Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS lineages (
	subject_id TEXT PRIMARY KEY,
	taxonomy   TEXT NOT NULL
)`

// Migrate creates the lineages table if it does not exist.
func (s *PostgresSource) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "lineage postgres: migrate")
}

func (s *PostgresSource) Lookup(ctx context.Context, subjectID string) (string, bool, error) {
	var taxonomy string
	err := s.pool.QueryRow(ctx,
		`SELECT taxonomy FROM lineages WHERE subject_id = $1`, subjectID,
	).Scan(&taxonomy)
	if err == pgx.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, eris.Wrap(err, "lineage postgres: lookup")
	}
	return taxonomy, true, nil
}

// Load bulk-inserts mapping entries using the COPY protocol, the fastest
// path for reference sets with millions of subjects. Existing rows are
// replaced wholesale: callers truncate first via Reset when reloading.
func (s *PostgresSource) Load(ctx context.Context, entries map[string]string) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(entries))
	for sid, taxonomy := range entries {
		rows = append(rows, []any{sid, taxonomy})
	}

	n, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"lineages"},
		[]string{"subject_id", "taxonomy"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, eris.Wrap(err, "lineage postgres: COPY lineages")
	}
	return n, nil
}

// Reset empties the lineages table before a reload.
func (s *PostgresSource) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE lineages`)
	return eris.Wrap(err, "lineage postgres: truncate")
}

// Count returns the number of mapped subjects.
func (s *PostgresSource) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM lineages`).Scan(&n)
	return n, eris.Wrap(err, "lineage postgres: count")
}

func (s *PostgresSource) Close() error {
	s.pool.Close()
	return nil
}
