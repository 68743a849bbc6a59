package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/roster-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It backs local
// runs and tests.
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
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS shops (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	software        TEXT NOT NULL DEFAULT '',
	radius_miles    REAL NOT NULL DEFAULT 0,
	latitude        REAL NOT NULL DEFAULT 0,
	longitude       REAL NOT NULL DEFAULT 0,
	customer_count  INTEGER NOT NULL DEFAULT 0,
	capacity_factor REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS customers (
	id             TEXT PRIMARY KEY,
	chain_id       TEXT NOT NULL DEFAULT '0',
	shop_id        TEXT NOT NULL REFERENCES shops(id),
	first_name     TEXT NOT NULL DEFAULT '',
	last_name      TEXT NOT NULL DEFAULT '',
	address        TEXT NOT NULL DEFAULT '',
	city           TEXT NOT NULL DEFAULT '',
	state          TEXT NOT NULL DEFAULT '',
	zip            TEXT NOT NULL DEFAULT '',
	event_date     DATE,
	event_month    INTEGER NOT NULL DEFAULT 0,
	birth_year     TEXT NOT NULL DEFAULT '',
	latitude       REAL NOT NULL DEFAULT 0,
	longitude      REAL NOT NULL DEFAULT 0,
	status         TEXT NOT NULL DEFAULT '',
	dpv            TEXT NOT NULL DEFAULT '',
	vacant         TEXT NOT NULL DEFAULT '',
	occupancy_code TEXT NOT NULL DEFAULT '',
	error_codes    TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_customers_shop_id ON customers(shop_id);

CREATE TABLE IF NOT EXISTS shadow_months (
	customer_id  TEXT PRIMARY KEY REFERENCES customers(id),
	shadow_month INTEGER NOT NULL,
	run_id       TEXT NOT NULL,
	assigned_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS mailing_list_entries (
	run_id      TEXT NOT NULL,
	shop_id     TEXT NOT NULL,
	list_type   TEXT NOT NULL,
	month       INTEGER NOT NULL,
	list_name   TEXT NOT NULL,
	position    INTEGER NOT NULL,
	customer_id TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (run_id, shop_id, list_type, month, position)
);

CREATE INDEX IF NOT EXISTS idx_mailing_list_entries_customer ON mailing_list_entries(customer_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) FetchCustomers(ctx context.Context, shopID string) ([]model.Customer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+customerColumns+` `+customerFrom+`
		 WHERE (? = '' OR c.shop_id = ?)
		 ORDER BY c.shop_id, c.id`,
		shopID, shopID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: fetch customers")
	}
	defer rows.Close()

	var out []model.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan customer")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate customers")
}

func (s *SQLiteStore) FetchShops(ctx context.Context) ([]model.Shop, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+shopColumns+` FROM shops ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: fetch shops")
	}
	defer rows.Close()

	var out []model.Shop
	for rows.Next() {
		sh, err := scanShop(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan shop")
		}
		out = append(out, sh)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate shops")
}

func (s *SQLiteStore) SaveShadowMonths(ctx context.Context, runID string, customers []model.Customer) (int64, error) {
	pairs := shadowRows(customers)
	if len(pairs) == 0 {
		return 0, nil
	}
	return s.execBatch(ctx, "save shadow months",
		`INSERT INTO shadow_months (customer_id, shadow_month, run_id) VALUES (?, ?, ?)
		 ON CONFLICT(customer_id) DO UPDATE SET shadow_month = excluded.shadow_month, run_id = excluded.run_id, assigned_at = datetime('now')`,
		func(yield func(args ...any) error) error {
			for _, p := range pairs {
				if err := yield(p[0], p[1], runID); err != nil {
					return err
				}
			}
			return nil
		})
}

func (s *SQLiteStore) SaveLists(ctx context.Context, runID string, lists []model.MailingList) (int64, error) {
	rows := listEntryRows(runID, lists)
	if len(rows) == 0 {
		return 0, nil
	}
	return s.execBatch(ctx, "save lists",
		`INSERT INTO mailing_list_entries (run_id, shop_id, list_type, month, list_name, position, customer_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		func(yield func(args ...any) error) error {
			for _, r := range rows {
				if err := yield(r...); err != nil {
					return err
				}
			}
			return nil
		})
}

func (s *SQLiteStore) ApplyBirthAppend(ctx context.Context, appends []model.BirthAppend) (int64, error) {
	return s.execBatch(ctx, "apply birth append",
		`UPDATE customers SET event_month = ?, birth_year = ? WHERE id = ? AND shop_id = ?`,
		func(yield func(args ...any) error) error {
			for _, a := range appends {
				if !a.Usable() {
					continue
				}
				if err := yield(a.Month, a.Year, a.CustomerID, a.ShopID); err != nil {
					return err
				}
			}
			return nil
		})
}

// execBatch runs one prepared statement per yielded argument set inside a
// single transaction and returns the total rows affected.
func (s *SQLiteStore) execBatch(ctx context.Context, op, query string, each func(yield func(args ...any) error) error) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: %s: begin tx", op)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: %s: prepare", op)
	}
	defer stmt.Close()

	var total int64
	err = each(func(args ...any) error {
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		total += n
		return nil
	})
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: %s", op)
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrapf(err, "sqlite: %s: commit", op)
	}
	return total, nil
}
