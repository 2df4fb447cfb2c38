package db

import (
	"context"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// UpsertConfig describes a bulk upsert into one table.
type UpsertConfig struct {
	Table        string   // target table, optionally schema-qualified
	Columns      []string // columns carried by each row, in row order
	ConflictKeys []string // unique key columns
	UpdateCols   []string // overwritten on conflict; nil means every non-key column
}

func (c UpsertConfig) validate() error {
	switch {
	case c.Table == "":
		return eris.New("db: upsert: no table specified")
	case len(c.Columns) == 0:
		return eris.New("db: upsert: no columns specified")
	case len(c.ConflictKeys) == 0:
		return eris.New("db: upsert: no conflict keys specified")
	}
	for _, k := range c.ConflictKeys {
		if !slices.Contains(c.Columns, k) {
			return eris.Errorf("db: upsert: conflict key %q is not a column", k)
		}
	}
	return nil
}

func (c UpsertConfig) updateColumns() []string {
	if c.UpdateCols != nil {
		return c.UpdateCols
	}
	var cols []string
	for _, col := range c.Columns {
		if !slices.Contains(c.ConflictKeys, col) {
			cols = append(cols, col)
		}
	}
	return cols
}

// stagingTable names the per-transaction temp table for the target.
func (c UpsertConfig) stagingTable() string {
	return "_stage_" + strings.ReplaceAll(c.Table, ".", "_")
}

// statements returns the temp-table DDL and the merge statement.
func (c UpsertConfig) statements() (create, merge string) {
	target := sanitizeTable(c.Table)
	stage := pgx.Identifier{c.stagingTable()}.Sanitize()
	cols := quoteAndJoin(c.Columns)

	create = "CREATE TEMP TABLE " + stage + " (LIKE " + target + " INCLUDING DEFAULTS) ON COMMIT DROP"

	var b strings.Builder
	b.WriteString("INSERT INTO " + target + " (" + cols + ") SELECT " + cols + " FROM " + stage)
	b.WriteString(" ON CONFLICT (" + quoteAndJoin(c.ConflictKeys) + ")")

	update := c.updateColumns()
	if len(update) == 0 {
		b.WriteString(" DO NOTHING")
		return create, b.String()
	}
	b.WriteString(" DO UPDATE SET ")
	for i, col := range update {
		if i > 0 {
			b.WriteString(", ")
		}
		q := pgx.Identifier{col}.Sanitize()
		b.WriteString(q + " = EXCLUDED." + q)
	}
	return create, b.String()
}

// BulkUpsert stages rows in a temp table with COPY, then merges them into
// the target with INSERT ... ON CONFLICT in the same transaction. It
// returns the number of rows inserted or updated.
func BulkUpsert(ctx context.Context, pool Pool, cfg UpsertConfig, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := cfg.validate(); err != nil {
		return 0, err
	}
	create, merge := cfg.statements()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: upsert: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, create); err != nil {
		return 0, eris.Wrapf(err, "db: upsert: stage %s", cfg.Table)
	}
	if _, err := CopyFrom(ctx, tx, cfg.stagingTable(), cfg.Columns, rows); err != nil {
		return 0, eris.Wrapf(err, "db: upsert: fill stage for %s", cfg.Table)
	}
	tag, err := tx.Exec(ctx, merge)
	if err != nil {
		return 0, eris.Wrapf(err, "db: upsert: merge into %s", cfg.Table)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: upsert: commit tx")
	}
	return tag.RowsAffected(), nil
}

// sanitizeTable quotes a table name with an optional schema prefix.
func sanitizeTable(table string) string {
	if schema, name, ok := strings.Cut(table, "."); ok {
		return pgx.Identifier{schema, name}.Sanitize()
	}
	return pgx.Identifier{table}.Sanitize()
}

func quoteAndJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
