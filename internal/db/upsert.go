package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// UpsertConfig defines the parameters for a bulk upsert or update.
type UpsertConfig struct {
	Table        string   // target table, optionally schema-qualified
	Columns      []string // all columns carried by each row
	ConflictKeys []string // unique-constraint columns for upserts; match columns for updates
	UpdateCols   []string // columns to overwrite; nil = all non-key columns
}

func (cfg UpsertConfig) validate(op string) error {
	if len(cfg.Columns) == 0 {
		return eris.Errorf("db: %s: no columns specified", op)
	}
	if len(cfg.ConflictKeys) == 0 {
		return eris.Errorf("db: %s: no conflict keys specified", op)
	}
	return nil
}

func (cfg UpsertConfig) updateColumns() []string {
	if cfg.UpdateCols != nil {
		return cfg.UpdateCols
	}
	keys := make(map[string]bool, len(cfg.ConflictKeys))
	for _, k := range cfg.ConflictKeys {
		keys[k] = true
	}
	var cols []string
	for _, c := range cfg.Columns {
		if !keys[c] {
			cols = append(cols, c)
		}
	}
	return cols
}

// BulkUpsert stages rows in a temp table via COPY and merges them with
// INSERT ... ON CONFLICT (keys) DO UPDATE in one transaction.
func BulkUpsert(ctx context.Context, pool Pool, cfg UpsertConfig, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := cfg.validate("upsert"); err != nil {
		return 0, err
	}

	var setClauses []string
	for _, col := range cfg.updateColumns() {
		q := pgx.Identifier{col}.Sanitize()
		setClauses = append(setClauses, fmt.Sprintf("%s = EXCLUDED.%s", q, q))
	}

	return mergeStaged(ctx, pool, "upsert", cfg, rows, func(temp string) string {
		cols := quoteAndJoin(cfg.Columns)
		return fmt.Sprintf(
			"INSERT INTO %s (%s) SELECT %s FROM %s ON CONFLICT (%s) DO UPDATE SET %s",
			sanitizeTable(cfg.Table), cols, cols, temp,
			quoteAndJoin(cfg.ConflictKeys), strings.Join(setClauses, ", "),
		)
	})
}

// BulkUpdate stages rows in a temp table via COPY and applies them with
// UPDATE ... FROM, matching target rows on the key columns. Rows whose keys
// match nothing are ignored.
func BulkUpdate(ctx context.Context, pool Pool, cfg UpsertConfig, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := cfg.validate("update"); err != nil {
		return 0, err
	}

	var setClauses []string
	for _, col := range cfg.updateColumns() {
		q := pgx.Identifier{col}.Sanitize()
		setClauses = append(setClauses, fmt.Sprintf("%s = s.%s", q, q))
	}
	var where []string
	for _, k := range cfg.ConflictKeys {
		q := pgx.Identifier{k}.Sanitize()
		where = append(where, fmt.Sprintf("t.%s = s.%s", q, q))
	}

	return mergeStaged(ctx, pool, "update", cfg, rows, func(temp string) string {
		return fmt.Sprintf(
			"UPDATE %s AS t SET %s FROM %s AS s WHERE %s",
			sanitizeTable(cfg.Table), strings.Join(setClauses, ", "), temp,
			strings.Join(where, " AND "),
		)
	})
}

func mergeStaged(ctx context.Context, pool Pool, op string, cfg UpsertConfig, rows [][]any, mergeSQL func(temp string) string) (int64, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrapf(err, "db: %s: begin tx", op)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tempName := fmt.Sprintf("_tmp_%s_%s", op, strings.ReplaceAll(cfg.Table, ".", "_"))
	temp := pgx.Identifier{tempName}.Sanitize()

	createSQL := fmt.Sprintf(
		"CREATE TEMP TABLE %s (LIKE %s INCLUDING DEFAULTS) ON COMMIT DROP",
		temp, sanitizeTable(cfg.Table),
	)
	if _, err := tx.Exec(ctx, createSQL); err != nil {
		return 0, eris.Wrapf(err, "db: %s: create temp table for %s", op, cfg.Table)
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{tempName}, cfg.Columns, pgx.CopyFromRows(rows)); err != nil {
		return 0, eris.Wrapf(err, "db: %s: COPY into temp table for %s", op, cfg.Table)
	}

	tag, err := tx.Exec(ctx, mergeSQL(temp))
	if err != nil {
		return 0, eris.Wrapf(err, "db: %s: merge into %s", op, cfg.Table)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrapf(err, "db: %s: commit tx", op)
	}

	return tag.RowsAffected(), nil
}

// identifier splits a possibly schema-qualified table name.
func identifier(table string) pgx.Identifier {
	parts := strings.SplitN(table, ".", 2)
	return pgx.Identifier(parts)
}

func sanitizeTable(table string) string {
	return identifier(table).Sanitize()
}

func quoteAndJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
