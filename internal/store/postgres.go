package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/roster-cli/internal/db"
	"github.com/sells-group/roster-cli/internal/model"
	"github.com/sells-group/roster-cli/internal/resilience"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
	retry   resilience.RetryConfig
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool. Reads and
// list writes are retried on transient failures using retry.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig, retry resilience.RetryConfig) (*PostgresStore, error) {
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
	return &PostgresStore{pool: pool, closeFn: pool.Close, retry: retry}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS shops (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	software        TEXT NOT NULL DEFAULT '',
	radius_miles    DOUBLE PRECISION NOT NULL DEFAULT 0,
	latitude        DOUBLE PRECISION NOT NULL DEFAULT 0,
	longitude       DOUBLE PRECISION NOT NULL DEFAULT 0,
	customer_count  INTEGER NOT NULL DEFAULT 0,
	capacity_factor DOUBLE PRECISION NOT NULL DEFAULT 0
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
	latitude       DOUBLE PRECISION NOT NULL DEFAULT 0,
	longitude      DOUBLE PRECISION NOT NULL DEFAULT 0,
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
	assigned_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS mailing_list_entries (
	run_id      TEXT NOT NULL,
	shop_id     TEXT NOT NULL,
	list_type   TEXT NOT NULL,
	month       INTEGER NOT NULL,
	list_name   TEXT NOT NULL,
	position    INTEGER NOT NULL,
	customer_id TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (run_id, shop_id, list_type, month, position)
);

CREATE INDEX IF NOT EXISTS idx_mailing_list_entries_customer ON mailing_list_entries(customer_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) retryConfig(operation string) resilience.RetryConfig {
	cfg := s.retry
	cfg.OnRetry = resilience.RetryLogger("postgres", operation)
	return cfg
}

func (s *PostgresStore) FetchCustomers(ctx context.Context, shopID string) ([]model.Customer, error) {
	query := `SELECT ` + customerColumns + ` ` + customerFrom + `
	WHERE ($1 = '' OR c.shop_id = $1)
	ORDER BY c.shop_id, c.id`

	return resilience.DoVal(ctx, s.retryConfig("fetch customers"), func(ctx context.Context) ([]model.Customer, error) {
		rows, err := s.pool.Query(ctx, query, shopID)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: fetch customers")
		}
		defer rows.Close()

		var out []model.Customer
		for rows.Next() {
			c, err := scanCustomer(rows)
			if err != nil {
				return nil, eris.Wrap(err, "postgres: scan customer")
			}
			out = append(out, c)
		}
		return out, eris.Wrap(rows.Err(), "postgres: iterate customers")
	})
}

func (s *PostgresStore) FetchShops(ctx context.Context) ([]model.Shop, error) {
	query := `SELECT ` + shopColumns + ` FROM shops ORDER BY id`

	return resilience.DoVal(ctx, s.retryConfig("fetch shops"), func(ctx context.Context) ([]model.Shop, error) {
		rows, err := s.pool.Query(ctx, query)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: fetch shops")
		}
		defer rows.Close()

		var out []model.Shop
		for rows.Next() {
			sh, err := scanShop(rows)
			if err != nil {
				return nil, eris.Wrap(err, "postgres: scan shop")
			}
			out = append(out, sh)
		}
		return out, eris.Wrap(rows.Err(), "postgres: iterate shops")
	})
}

func (s *PostgresStore) SaveShadowMonths(ctx context.Context, runID string, customers []model.Customer) (int64, error) {
	pairs := shadowRows(customers)
	rows := make([][]any, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []any{p[0], p[1], runID})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "shadow_months",
		Columns:      []string{"customer_id", "shadow_month", "run_id"},
		ConflictKeys: []string{"customer_id"},
	}, rows)
	return n, eris.Wrap(err, "postgres: save shadow months")
}

func (s *PostgresStore) SaveLists(ctx context.Context, runID string, lists []model.MailingList) (int64, error) {
	rows := listEntryRows(runID, lists)
	return resilience.DoVal(ctx, s.retryConfig("save lists"), func(ctx context.Context) (int64, error) {
		n, err := db.CopyFrom(ctx, s.pool, "mailing_list_entries", listEntryColumns, rows)
		return n, eris.Wrap(err, "postgres: save lists")
	})
}

func (s *PostgresStore) ApplyBirthAppend(ctx context.Context, appends []model.BirthAppend) (int64, error) {
	var rows [][]any
	for _, a := range appends {
		if a.Usable() {
			rows = append(rows, []any{a.CustomerID, a.ShopID, a.Month, a.Year})
		}
	}

	n, err := db.BulkUpdate(ctx, s.pool, db.UpsertConfig{
		Table:        "customers",
		Columns:      []string{"id", "shop_id", "event_month", "birth_year"},
		ConflictKeys: []string{"id", "shop_id"},
	}, rows)
	return n, eris.Wrap(err, "postgres: apply birth append")
}
