package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/roster-cli/internal/model"
	"github.com/sells-group/roster-cli/internal/resilience"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock, retry: resilience.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}}
	return s, mock
}

var customerCols = []string{
	"id", "chain_id", "shop_id", "name", "software",
	"first_name", "last_name", "address", "city", "state", "zip",
	"event_date", "event_month", "shadow_month",
	"birth_year", "latitude", "longitude",
	"status", "dpv", "vacant", "occupancy_code", "error_codes",
}

func TestPostgresStore_FetchCustomers(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows(customerCols).
		AddRow("c1", "0", "12", "Main St Auto", "mitchell",
			"JOE", "SMITH", "1 Main St", "Austin", "TX", "78701",
			&date, 3, 0,
			"1980", 30.27, -97.74,
			"V", "Y", "", "", "").
		AddRow("c2", "77", "12", "Main St Auto", "mitchell",
			"ANN", "LEE", "2 Main St", "Austin", "TX", "78701",
			nil, 0, 7,
			"", 30.28, -97.75,
			"V", "S", "", "", "12.2, 12.3")

	mock.ExpectQuery(`(?s)SELECT c.id, c.chain_id, c.shop_id,.*FROM customers c\s+JOIN shops s.*WHERE \(\$1 = '' OR c.shop_id = \$1\)`).
		WithArgs("12").
		WillReturnRows(rows)

	got, err := s.FetchCustomers(context.Background(), "12")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "c1", got[0].ID)
	assert.Equal(t, "JOE", got[0].RawFirstName)
	assert.Equal(t, "JOE", got[0].FirstName)
	assert.Equal(t, "SMITH", got[0].LastName)
	require.NotNil(t, got[0].EventDate)
	assert.True(t, got[0].EventDate.Equal(date))
	assert.Equal(t, 3, got[0].EventMonth)
	assert.Nil(t, got[0].Hygiene.ErrorCodes)

	assert.Nil(t, got[1].EventDate)
	assert.Equal(t, 7, got[1].ShadowMonth)
	assert.Equal(t, []string{"12.2", "12.3"}, got[1].Hygiene.ErrorCodes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FetchCustomers_RetriesTransient(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM customers c`).
		WithArgs("").
		WillReturnError(&pgconn.PgError{Code: "08006", Message: "connection failure"})
	mock.ExpectQuery(`FROM customers c`).
		WithArgs("").
		WillReturnRows(pgxmock.NewRows(customerCols))

	got, err := s.FetchCustomers(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FetchCustomers_PermanentError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM customers c`).
		WithArgs("").
		WillReturnError(&pgconn.PgError{Code: "42P01", Message: "relation does not exist"})

	_, err := s.FetchCustomers(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: fetch customers")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FetchShops(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{"id", "name", "software", "radius_miles", "latitude", "longitude", "customer_count", "capacity_factor"}).
		AddRow("10", "Alpha", "mitchell", 10.0, 30.1, -97.1, 1000, 0.5).
		AddRow("11", "Beta", "", 25.0, 31.1, -96.1, 120, 1.0)

	mock.ExpectQuery(`SELECT id, name, software, radius_miles, latitude, longitude, customer_count, capacity_factor FROM shops ORDER BY id`).
		WillReturnRows(rows)

	got, err := s.FetchShops(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.Shop{ID: "10", Name: "Alpha", Software: "mitchell", RadiusMiles: 10, Latitude: 30.1, Longitude: -97.1, CustomerCount: 1000, CapacityFactor: 0.5}, got[0])
	assert.Equal(t, "Beta", got[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveLists(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	lists := []model.MailingList{
		{Key: model.ListKey{ShopID: "10", ListType: model.ListRealMonth, Month: 3}, Customers: []model.Customer{{ID: "a"}, {ID: "b"}}},
		{Key: model.ListKey{ShopID: "10", ListType: model.ListShadowHalf, Month: 3}, Customers: []model.Customer{{ID: "c"}}},
	}

	mock.ExpectCopyFrom(pgx.Identifier{"mailing_list_entries"}, listEntryColumns).WillReturnResult(3)

	n, err := s.SaveLists(context.Background(), "run-1", lists)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveShadowMonths(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	customers := []model.Customer{
		{ID: "a", ShadowMonth: 4},
		{ID: "b", EventMonth: 2, ShadowMonth: 4}, // real month wins
		{ID: "c"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_upsert_shadow_months"`).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_shadow_months"}, []string{"customer_id", "shadow_month", "run_id"}).WillReturnResult(1)
	mock.ExpectExec(`INSERT INTO "shadow_months"`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	n, err := s.SaveShadowMonths(context.Background(), "run-1", customers)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ApplyBirthAppend(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	appends := []model.BirthAppend{
		{CustomerID: "a", ShopID: "10", Month: 5, Year: "1975"},
		{CustomerID: "b", ShopID: "10", Month: 0},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_update_customers"`).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_update_customers"}, []string{"id", "shop_id", "event_month", "birth_year"}).WillReturnResult(1)
	mock.ExpectExec(`(?s)UPDATE "customers" AS t .* WHERE t."id" = s."id" AND t."shop_id" = s."shop_id"`).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	n, err := s.ApplyBirthAppend(context.Background(), appends)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_MigrateError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS shops`).WillReturnError(errors.New("permission denied"))

	err := s.Migrate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: migrate")
	assert.NoError(t, mock.ExpectationsWereMet())
}
