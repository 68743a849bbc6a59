package pipeline

import (
	"time"

	"github.com/sells-group/roster-cli/internal/model"
)

var testNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// monthsBack returns a date n months before testNow.
func monthsBack(n int) *time.Time {
	t := testNow.AddDate(0, -n, 0)
	return &t
}

// deliverable returns a customer that passes the default validity rules.
func deliverable(id, shopID string) model.Customer {
	return model.Customer{
		ID:           id,
		ChainID:      model.NoChainID,
		ShopID:       shopID,
		ShopName:     "Shop " + shopID,
		RawFirstName: "Mary",
		FirstName:    "Mary",
		RawLastName:  "Smith",
		LastName:     "Smith",
		Address:      id + " Main St",
		Hygiene: model.Hygiene{
			Status: "V",
			DPV:    "Y",
		},
	}
}

func ids(cs []model.Customer) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}
