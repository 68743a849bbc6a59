// Package store reads customer and shop rosters and persists run output.
package store

import (
	"context"
	"strings"

	"github.com/sells-group/roster-cli/internal/model"
)

// CustomerRepository loads verified customer records.
type CustomerRepository interface {
	// FetchCustomers returns every customer of shopID, or of all shops when
	// shopID is empty, ordered by shop id then customer id.
	FetchCustomers(ctx context.Context, shopID string) ([]model.Customer, error)
}

// ShopRepository loads shop profiles.
type ShopRepository interface {
	// FetchShops returns all shop profiles ordered by id.
	FetchShops(ctx context.Context) ([]model.Shop, error)
}

// Store is the full persistence interface used by the CLI.
type Store interface {
	CustomerRepository
	ShopRepository

	// SaveShadowMonths records the shadow month of every customer that has
	// one and no real event month. Later fetches return it as ShadowMonth.
	SaveShadowMonths(ctx context.Context, runID string, customers []model.Customer) (int64, error)
	// SaveLists writes one entry row per customer per list.
	SaveLists(ctx context.Context, runID string, lists []model.MailingList) (int64, error)
	// ApplyBirthAppend sets event month and birth year from an append file.
	ApplyBirthAppend(ctx context.Context, rows []model.BirthAppend) (int64, error)

	Migrate(ctx context.Context) error
	Close() error
}

// rowScanner is satisfied by pgx.Rows and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// customerColumns is shared by both backends; the shadow month is suppressed
// once a real event month is known.
const customerColumns = `c.id, c.chain_id, c.shop_id, s.name, s.software,
	c.first_name, c.last_name, c.address, c.city, c.state, c.zip,
	c.event_date, c.event_month,
	CASE WHEN c.event_month BETWEEN 1 AND 12 THEN 0 ELSE COALESCE(sm.shadow_month, 0) END,
	c.birth_year, c.latitude, c.longitude,
	c.status, c.dpv, c.vacant, c.occupancy_code, c.error_codes`

const customerFrom = `FROM customers c
	JOIN shops s ON s.id = c.shop_id
	LEFT JOIN shadow_months sm ON sm.customer_id = c.id`

const shopColumns = `id, name, software, radius_miles, latitude, longitude, customer_count, capacity_factor`

func scanCustomer(row rowScanner) (model.Customer, error) {
	var c model.Customer
	var errorCodes string
	err := row.Scan(
		&c.ID, &c.ChainID, &c.ShopID, &c.ShopName, &c.Software,
		&c.RawFirstName, &c.RawLastName, &c.Address, &c.City, &c.State, &c.Zip,
		&c.EventDate, &c.EventMonth, &c.ShadowMonth,
		&c.BirthYear, &c.Latitude, &c.Longitude,
		&c.Hygiene.Status, &c.Hygiene.DPV, &c.Hygiene.Vacant, &c.Hygiene.OccupancyCode, &errorCodes,
	)
	if err != nil {
		return c, err
	}
	c.FirstName = c.RawFirstName
	c.LastName = c.RawLastName
	if !model.ValidMonth(c.EventMonth) {
		c.EventMonth = 0
	}
	if !model.ValidMonth(c.ShadowMonth) {
		c.ShadowMonth = 0
	}
	c.Hygiene.ErrorCodes = splitCodes(errorCodes)
	return c, nil
}

func scanShop(row rowScanner) (model.Shop, error) {
	var s model.Shop
	err := row.Scan(&s.ID, &s.Name, &s.Software, &s.RadiusMiles, &s.Latitude, &s.Longitude, &s.CustomerCount, &s.CapacityFactor)
	return s, err
}

// splitCodes parses the comma-separated hygiene error-code column.
func splitCodes(s string) []string {
	var codes []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			codes = append(codes, p)
		}
	}
	return codes
}

// shadowRows returns (customer_id, shadow_month) pairs worth persisting.
func shadowRows(customers []model.Customer) [][2]any {
	var rows [][2]any
	for _, c := range customers {
		if c.HasShadowMonth() && !c.HasRealMonth() {
			rows = append(rows, [2]any{c.ID, c.ShadowMonth})
		}
	}
	return rows
}

// listEntryColumns are the columns of mailing_list_entries written per run.
var listEntryColumns = []string{"run_id", "shop_id", "list_type", "month", "list_name", "position", "customer_id"}

func listEntryRows(runID string, lists []model.MailingList) [][]any {
	var rows [][]any
	for _, l := range lists {
		name := l.Name()
		for i, c := range l.Customers {
			rows = append(rows, []any{runID, l.Key.ShopID, string(l.Key.ListType), l.Key.Month, name, i + 1, c.ID})
		}
	}
	return rows
}
