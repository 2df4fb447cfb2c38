package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/metro-sampler/internal/db"
	"github.com/sells-group/metro-sampler/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id                   TEXT PRIMARY KEY,
	seed                 BIGINT NOT NULL,
	target_size          INTEGER NOT NULL,
	sample_size          INTEGER NOT NULL,
	universe_size        INTEGER NOT NULL,
	coverage             DOUBLE PRECISION NOT NULL,
	coverage_met         BOOLEAN NOT NULL,
	converged            BOOLEAN NOT NULL,
	rebalance_iterations INTEGER NOT NULL,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS run_records (
	run_id           TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position         INTEGER NOT NULL,
	region_id        TEXT NOT NULL,
	selection_method TEXT NOT NULL,
	sample_weight    DOUBLE PRECISION NOT NULL,
	record           JSONB NOT NULL,
	PRIMARY KEY (run_id, position)
);

CREATE TABLE IF NOT EXISTS regions (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	population    BIGINT NOT NULL,
	state         TEXT NOT NULL,
	census_region TEXT NOT NULL,
	stratum       TEXT NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_run_records_region ON run_records(region_id);
`

var recordColumns = []string{"run_id", "position", "region_id", "selection_method", "sample_weight", "record"}

var regionColumns = []string{"id", "name", "population", "state", "census_region", "stratum"}

// Migrate creates the archive tables.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// SaveRun inserts the run header and COPYs its records in one transaction.
func (s *PostgresStore) SaveRun(ctx context.Context, run *Run) error {
	rows, err := recordRows(run)
	if err != nil {
		return eris.Wrap(err, "postgres: encode records")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx,
		`INSERT INTO runs (`+runColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		runArgs(run)...,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: insert run %s", run.ID)
	}

	if _, err := db.CopyFrom(ctx, tx, "run_records", recordColumns, rows); err != nil {
		return eris.Wrapf(err, "postgres: copy records for run %s", run.ID)
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit run")
}

// GetRun loads a run with its records in sample order.
func (s *PostgresStore) GetRun(ctx context.Context, id string) (*Run, error) {
	run, err := scanRun(s.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM runs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: get run %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get run")
	}

	rows, err := s.pool.Query(ctx, `SELECT record FROM run_records WHERE run_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query records")
	}
	defer rows.Close()

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, eris.Wrap(err, "postgres: scan record")
		}
		var rec model.SampleRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal record")
		}
		run.Records = append(run.Records, rec)
	}
	return run, eris.Wrap(rows.Err(), "postgres: iterate records")
}

// ListRuns returns run headers, newest first, without records.
func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`,
		filter.limit(), filter.Offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

// SaveUniverse bulk-upserts the region snapshot.
func (s *PostgresStore) SaveUniverse(ctx context.Context, regions []model.Region) (int64, error) {
	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "regions",
		Columns:      regionColumns,
		ConflictKeys: []string{"id"},
	}, regionRows(regions))
	if err != nil {
		return 0, eris.Wrap(err, "postgres: save universe")
	}
	return n, nil
}
