package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/metro-sampler/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id                   TEXT PRIMARY KEY,
	seed                 INTEGER NOT NULL,
	target_size          INTEGER NOT NULL,
	sample_size          INTEGER NOT NULL,
	universe_size        INTEGER NOT NULL,
	coverage             REAL NOT NULL,
	coverage_met         BOOLEAN NOT NULL,
	converged            BOOLEAN NOT NULL,
	rebalance_iterations INTEGER NOT NULL,
	created_at           DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS run_records (
	run_id           TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position         INTEGER NOT NULL,
	region_id        TEXT NOT NULL,
	selection_method TEXT NOT NULL,
	sample_weight    REAL NOT NULL,
	record           TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);

CREATE TABLE IF NOT EXISTS regions (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	population    INTEGER NOT NULL,
	state         TEXT NOT NULL,
	census_region TEXT NOT NULL,
	stratum       TEXT NOT NULL,
	updated_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_run_records_region ON run_records(region_id);
`

// Migrate creates the archive tables.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun inserts the run and its records in one transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run) error {
	rows, err := recordRows(run)
	if err != nil {
		return eris.Wrap(err, "sqlite: encode records")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, seed, target_size, sample_size, universe_size, coverage, coverage_met, converged, rebalance_iterations, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runArgs(run)...,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert run %s", run.ID)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_records (run_id, position, region_id, selection_method, sample_weight, record) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare record insert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r...); err != nil {
			return eris.Wrapf(err, "sqlite: insert record for run %s", run.ID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit run")
}

// GetRun loads a run with its records in sample order.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: get run %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get run")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT record FROM run_records WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query records")
	}
	defer rows.Close() //nolint:errcheck

	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan record")
		}
		var rec model.SampleRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal record")
		}
		run.Records = append(run.Records, rec)
	}
	return run, eris.Wrap(rows.Err(), "sqlite: iterate records")
}

// ListRuns returns run headers, newest first, without records.
func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		filter.limit(), filter.Offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// SaveUniverse replaces the region snapshot row by row.
func (s *SQLiteStore) SaveUniverse(ctx context.Context, regions []model.Region) (int64, error) {
	if len(regions) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO regions (id, name, population, state, census_region, stratum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			population = excluded.population,
			state = excluded.state,
			census_region = excluded.census_region,
			stratum = excluded.stratum,
			updated_at = excluded.updated_at`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare region upsert")
	}
	defer stmt.Close() //nolint:errcheck

	var n int64
	for _, r := range regionRows(regions) {
		if _, err := stmt.ExecContext(ctx, r...); err != nil {
			return n, eris.Wrapf(err, "sqlite: upsert region %v", r[0])
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit regions")
	}
	return n, nil
}

type scannable interface {
	Scan(dest ...any) error
}

const runColumns = `id, seed, target_size, sample_size, universe_size, coverage, coverage_met, converged, rebalance_iterations, created_at`

func scanRun(row scannable) (*Run, error) {
	var r Run
	var seed int64
	err := row.Scan(&r.ID, &seed, &r.TargetSize, &r.SampleSize, &r.UniverseSize,
		&r.Coverage, &r.CoverageMet, &r.Converged, &r.RebalanceIterations, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.Seed = uint64(seed)
	r.CreatedAt = r.CreatedAt.UTC()
	return &r, nil
}

// runArgs returns the runs-table values in runColumns order. The seed is
// stored as its two's-complement int64 so the full uint64 range survives.
func runArgs(run *Run) []any {
	return []any{
		run.ID, int64(run.Seed), run.TargetSize, run.SampleSize, run.UniverseSize,
		run.Coverage, run.CoverageMet, run.Converged, run.RebalanceIterations, run.CreatedAt,
	}
}

func recordRows(run *Run) ([][]any, error) {
	out := make([][]any, 0, len(run.Records))
	for i, rec := range run.Records {
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, []any{run.ID, i, rec.ID, string(rec.SelectionMethod), rec.SampleWeight, string(data)})
	}
	return out, nil
}

func regionRows(regions []model.Region) [][]any {
	out := make([][]any, 0, len(regions))
	for _, r := range regions {
		out = append(out, []any{r.ID, r.Name, r.Population, r.State, r.CensusRegion, r.Stratum.String()})
	}
	return out
}
