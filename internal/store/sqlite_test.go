package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/metro-sampler/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

var testStratum = model.Stratum{Population: "Mega", Rail: "Rail", Mobility: "SM", CensusRegion: "Northeast"}

func testSample() *model.Sample {
	return &model.Sample{
		Records: []model.SampleRecord{
			{
				Region:          model.Region{ID: "35620", Name: "New York-Newark-Jersey City, NY-NJ", Population: 19_498_249, State: "NY", CensusRegion: "Northeast", HasRail: true, Stratum: testStratum},
				SelectionMethod: model.SelectionMandatory,
				SampleWeight:    1,
			},
			{
				Region:          model.Region{ID: "14460", Name: "Boston-Cambridge-Newton, MA-NH", Population: 4_919_179, State: "MA", CensusRegion: "Northeast", HasRail: true, Stratum: testStratum},
				SelectionMethod: model.SelectionStratifiedRandom,
				SampleWeight:    2.5,
			},
		},
		UniverseSize:        73,
		Coverage:            0.61,
		CoverageMet:         true,
		Converged:           true,
		RebalanceIterations: 3,
		Seed:                42,
	}
}

func TestNewRun(t *testing.T) {
	run := NewRun(testSample(), 50)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, uint64(42), run.Seed)
	assert.Equal(t, 50, run.TargetSize)
	assert.Equal(t, 2, run.SampleSize)
	assert.Equal(t, 73, run.UniverseSize)
	assert.Equal(t, 3, run.RebalanceIterations)
	assert.Len(t, run.Records, 2)
	assert.NotEqual(t, run.ID, NewRun(testSample(), 50).ID)
}

func TestSQLite_SaveAndGetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run := NewRun(testSample(), 50)
	require.NoError(t, st.SaveRun(ctx, run))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, uint64(42), got.Seed)
	assert.Equal(t, 50, got.TargetSize)
	assert.InDelta(t, 0.61, got.Coverage, 1e-12)
	assert.True(t, got.CoverageMet)
	assert.True(t, got.Converged)
	assert.WithinDuration(t, run.CreatedAt, got.CreatedAt, time.Second)

	require.Len(t, got.Records, 2)
	assert.Equal(t, "35620", got.Records[0].ID)
	assert.Equal(t, testStratum, got.Records[0].Stratum)
	assert.Equal(t, model.SelectionStratifiedRandom, got.Records[1].SelectionMethod)
	assert.InDelta(t, 2.5, got.Records[1].SampleWeight, 1e-12)
}

func TestSQLite_SeedRoundTripsFullRange(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	s := testSample()
	s.Seed = math.MaxUint64
	run := NewRun(s, 50)
	require.NoError(t, st.SaveRun(ctx, run))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), got.Seed)
}

func TestSQLite_GetRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLite_SaveRun_DuplicateID(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run := NewRun(testSample(), 50)
	require.NoError(t, st.SaveRun(ctx, run))
	assert.Error(t, st.SaveRun(ctx, run))

	// The failed insert must not leave partial records behind.
	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, got.Records, 2)
}

func TestSQLite_ListRuns(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := range 3 {
		run := NewRun(testSample(), 50)
		run.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, st.SaveRun(ctx, run))
		ids = append(ids, run.ID)
	}

	runs, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[0], runs[2].ID)
	assert.Empty(t, runs[0].Records)

	page, err := st.ListRuns(ctx, RunFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[1], page[0].ID)
}

func TestSQLite_SaveUniverse(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	regions := []model.Region{
		{ID: "35620", Name: "New York", Population: 19_000_000, State: "NY", CensusRegion: "Northeast", Stratum: testStratum},
		{ID: "14460", Name: "Boston", Population: 4_900_000, State: "MA", CensusRegion: "Northeast", Stratum: testStratum},
	}
	n, err := st.SaveUniverse(ctx, regions)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	regions[0].Population = 19_500_000
	n, err = st.SaveUniverse(ctx, regions[:1])
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var pop int64
	var count int
	require.NoError(t, st.db.QueryRowContext(ctx, `SELECT population FROM regions WHERE id = '35620'`).Scan(&pop))
	require.NoError(t, st.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM regions`).Scan(&count))
	assert.Equal(t, int64(19_500_000), pop)
	assert.Equal(t, 2, count)

	n, err = st.SaveUniverse(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	st, err := Open(ctx, Config{Driver: DriverNone})
	require.NoError(t, err)
	assert.Nil(t, st)

	st, err = Open(ctx, Config{})
	require.NoError(t, err)
	assert.Nil(t, st)

	st, err = Open(ctx, Config{Driver: DriverSQLite, DatabaseURL: filepath.Join(t.TempDir(), "runs.db")})
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close() //nolint:errcheck
	_, err = st.ListRuns(ctx, RunFilter{})
	assert.NoError(t, err)

	_, err = Open(ctx, Config{Driver: "mongo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")

	_, err = Open(ctx, Config{Driver: DriverPostgres, DatabaseURL: "::not a url::"})
	assert.Error(t, err)
}
