package main

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/roster-cli/internal/config"
	"github.com/sells-group/roster-cli/internal/resilience"
	"github.com/sells-group/roster-cli/internal/store"
)

// useTestConfig points the global config at a fresh SQLite database.
func useTestConfig(t *testing.T) {
	t.Helper()
	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: filepath.Join(t.TempDir(), "roster.db"),
		},
		Pipeline: config.PipelineConfig{
			WindowMonths:      48,
			ReportStaleMonths: 60,
			Validity: config.ValidityConfig{
				VacantFlag:        "Y",
				VerifiedStatus:    "V",
				InactiveOccupancy: "02",
				HardFailCodes:     []string{"12.2", "12.3", "12.4"},
				AcceptedDPV:       []string{"Y", "S"},
			},
		},
		Export: config.ExportConfig{Dir: t.TempDir(), Format: "csv"},
		Sheets: config.SheetsConfig{Sheet: "Sheet1", StartRow: 4},
		Retry:  config.RetryConfig{MaxAttempts: 1},
	}
}

// seededStore opens the test store and loads one shop with four customers:
// c1 (real month 3), c2 (real month 9), c3 (no month) and c4 (missing unit).
func seededStore(t *testing.T) store.Store {
	t.Helper()
	ctx := context.Background()

	st, err := openStore(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck

	db, err := sql.Open("sqlite", cfg.Store.DatabaseURL)
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	_, err = db.Exec(`INSERT INTO shops (id, name, software, radius_miles, customer_count, capacity_factor)
		VALUES ('10', 'Main Street Collision', 'CCC', 10, 120, 1)`)
	require.NoError(t, err)

	recent := time.Now().UTC().AddDate(0, -2, 0).Truncate(24 * time.Hour)
	for _, c := range []struct {
		id, first, last, address string
		month                    int
		date                     *time.Time
		codes                    string
	}{
		{"c1", "JOE", "SMITH", "1 Elm St", 3, &recent, ""},
		{"c2", "ANN", "LEE", "2 Oak St", 9, &recent, ""},
		{"c3", "BO", "DIAZ", "3 Pine St", 0, nil, ""},
		{"c4", "SUE", "PARK", "4 Main St", 3, &recent, "12.2"},
	} {
		_, err := db.Exec(`INSERT INTO customers (id, chain_id, shop_id, first_name, last_name, address, event_date, event_month, status, dpv, error_codes)
			VALUES (?, '0', '10', ?, ?, ?, ?, ?, 'V', 'Y', ?)`,
			c.id, c.first, c.last, c.address, c.date, c.month, c.codes)
		require.NoError(t, err)
	}
	return st
}

func fastRetryConfig() resilience.RetryConfig {
	return resilience.RetryConfig{MaxAttempts: 1, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
}
