package db

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkUpsert_EmptyRows(t *testing.T) {
	n, err := BulkUpsert(context.TODO(), nil, UpsertConfig{
		Table:        "regions",
		Columns:      []string{"id", "name"},
		ConflictKeys: []string{"id"},
	}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestBulkUpsert_NoColumns(t *testing.T) {
	_, err := BulkUpsert(context.TODO(), nil, UpsertConfig{
		Table:        "regions",
		ConflictKeys: []string{"id"},
	}, [][]any{{"35620", "New York"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns specified")
}

func TestBulkUpsert_NoConflictKeys(t *testing.T) {
	_, err := BulkUpsert(context.TODO(), nil, UpsertConfig{
		Table:   "regions",
		Columns: []string{"id", "name"},
	}, [][]any{{"35620", "New York"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conflict keys specified")
}

func TestBulkUpsert_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"id", "name", "population"}
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_stage_metro_regions" \(LIKE "metro"."regions"`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_stage_metro_regions"}, cols).WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "metro"."regions" .* ON CONFLICT \("id"\) DO UPDATE SET "name" = EXCLUDED."name", "population" = EXCLUDED."population"`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	n, err := BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:        "metro.regions",
		Columns:      cols,
		ConflictKeys: []string{"id"},
	}, [][]any{{"35620", "New York", int64(19_498_249)}, {"31080", "Los Angeles", int64(12_799_100)}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsert_CopyError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE`).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_stage_regions"}, []string{"id"}).WillReturnError(fmt.Errorf("disk full"))
	mock.ExpectRollback()

	_, err = BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:        "regions",
		Columns:      []string{"id"},
		ConflictKeys: []string{"id"},
		UpdateCols:   []string{},
	}, [][]any{{"35620"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fill stage for regions")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  UpsertConfig
		want string
	}{
		{"no table", UpsertConfig{Columns: []string{"id"}, ConflictKeys: []string{"id"}}, "no table specified"},
		{"key not a column", UpsertConfig{Table: "regions", Columns: []string{"name"}, ConflictKeys: []string{"id"}}, `conflict key "id" is not a column`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BulkUpsert(context.TODO(), nil, tt.cfg, [][]any{{"x"}})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestUpsertConfig_Statements(t *testing.T) {
	cfg := UpsertConfig{
		Table:        "regions",
		Columns:      []string{"id", "name"},
		ConflictKeys: []string{"id"},
	}
	create, merge := cfg.statements()
	assert.Equal(t, `CREATE TEMP TABLE "_stage_regions" (LIKE "regions" INCLUDING DEFAULTS) ON COMMIT DROP`, create)
	assert.Equal(t, `INSERT INTO "regions" ("id", "name") SELECT "id", "name" FROM "_stage_regions" ON CONFLICT ("id") DO UPDATE SET "name" = EXCLUDED."name"`, merge)

	cfg.UpdateCols = []string{}
	_, merge = cfg.statements()
	assert.True(t, strings.HasSuffix(merge, `ON CONFLICT ("id") DO NOTHING`))
}

func TestSanitizeTable(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"regions", `"regions"`},
		{"metro.regions", `"metro"."regions"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeTable(tt.input))
		})
	}
}

func TestQuoteAndJoin(t *testing.T) {
	assert.Equal(t, `"id", "name", "population"`, quoteAndJoin([]string{"id", "name", "population"}))
}
