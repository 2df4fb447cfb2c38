package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/metro-sampler/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func runHeaderRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "seed", "target_size", "sample_size", "universe_size",
		"coverage", "coverage_met", "converged", "rebalance_iterations", "created_at",
	})
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS runs`).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	run := NewRun(testSample(), 50)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO runs \(id, seed, target_size`).
		WithArgs(run.ID, int64(42), 50, 2, 73, 0.61, true, true, 3, run.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCopyFrom(pgx.Identifier{"run_records"}, recordColumns).WillReturnResult(2)
	mock.ExpectCommit()

	require.NoError(t, s.SaveRun(context.Background(), run))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveRun_CopyError(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	run := NewRun(testSample(), 50)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCopyFrom(pgx.Identifier{"run_records"}, recordColumns).WillReturnError(fmt.Errorf("connection reset"))
	mock.ExpectRollback()

	err := s.SaveRun(context.Background(), run)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "copy records")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, seed, .* FROM runs WHERE id = \$1`).
		WithArgs("run-1").
		WillReturnRows(runHeaderRows().AddRow("run-1", int64(7), 50, 2, 73, 0.55, true, false, 100, created))
	mock.ExpectQuery(`SELECT record FROM run_records WHERE run_id = \$1 ORDER BY position`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"record"}).
			AddRow([]byte(`{"id":"35620","name":"New York","population":19498249,"selection_method":"mandatory","sample_weight":1}`)).
			AddRow([]byte(`{"id":"14460","name":"Boston","population":4919179,"selection_method":"coverage_boost","sample_weight":1.5}`)))

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), run.Seed)
	assert.False(t, run.Converged)
	assert.Equal(t, 100, run.RebalanceIterations)
	assert.Equal(t, created, run.CreatedAt)
	require.Len(t, run.Records, 2)
	assert.Equal(t, model.SelectionCoverageBoost, run.Records[1].SelectionMethod)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM runs WHERE id = \$1`).
		WithArgs("nonexistent-run").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "nonexistent-run")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM runs ORDER BY created_at DESC, id LIMIT \$1 OFFSET \$2`).
		WithArgs(100, 0).
		WillReturnRows(runHeaderRows().
			AddRow("run-2", int64(2), 50, 50, 73, 0.7, true, true, 1, created.Add(time.Hour)).
			AddRow("run-1", int64(1), 50, 49, 73, 0.4, false, true, 2, created))

	runs, err := s.ListRuns(context.Background(), RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.False(t, runs[1].CoverageMet)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM runs`).WithArgs(5, 10).WillReturnError(fmt.Errorf("timeout"))

	_, err := s.ListRuns(context.Background(), RunFilter{Limit: 5, Offset: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list runs")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveUniverse(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_stage_regions"`).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_stage_regions"}, regionColumns).WillReturnResult(1)
	mock.ExpectExec(`INSERT INTO "regions"`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	n, err := s.SaveUniverse(context.Background(), []model.Region{
		{ID: "35620", Name: "New York", Population: 19_000_000, State: "NY", CensusRegion: "Northeast", Stratum: testStratum},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Close(t *testing.T) {
	var closed bool
	s := &PostgresStore{closeFn: func() { closed = true }}
	require.NoError(t, s.Close())
	assert.True(t, closed)

	assert.NoError(t, (&PostgresStore{}).Close())
}
