package pipeline

import (
	"slices"
	"time"

	"github.com/sells-group/roster-cli/internal/model"
)

// ShopCounts is one row of the per-shop counts report.
type ShopCounts struct {
	ShopID         string  `json:"shop_id"`
	Software       string  `json:"software"`
	ShopName       string  `json:"shop_name"`
	CapacityFactor float64 `json:"capacity_factor"`
	Recent         int     `json:"recent"`
	Stale          int     `json:"stale"`
	Expired        int     `json:"expired"`
	BirthMonths    [12]int `json:"birth_months"`
	ShadowMonths   [12]int `json:"shadow_months"`
}

// TotalBirth is the number of pieces with a real event month.
func (s ShopCounts) TotalBirth() int { return sum12(s.BirthMonths) }

// TotalShadow is the number of pieces with a shadow month.
func (s ShopCounts) TotalShadow() int { return sum12(s.ShadowMonths) }

// Total is every real and shadow piece.
func (s ShopCounts) Total() int { return s.TotalBirth() + s.TotalShadow() }

func sum12(a [12]int) int {
	n := 0
	for _, v := range a {
		n += v
	}
	return n
}

// CountOptions sets the two age bands of the counts report.
type CountOptions struct {
	WindowMonths int
	StaleMonths  int
	Now          time.Time
}

// CountShops tallies allocated pieces per shop: event-date age band
// (inside the window, inside the stale band, older or undated) plus real and
// shadow month histograms. Rows are ordered by shop id.
func CountShops(pieces []model.Customer, shops []model.Shop, opts CountOptions) []ShopCounts {
	windowCutoff := model.MonthsAgo(opts.Now, opts.WindowMonths)
	staleCutoff := model.MonthsAgo(opts.Now, opts.StaleMonths)

	profiles := make(map[string]model.Shop, len(shops))
	for _, s := range shops {
		profiles[s.ID] = s
	}

	index := map[string]int{}
	var rows []ShopCounts
	for _, c := range pieces {
		i, ok := index[c.ShopID]
		if !ok {
			row := ShopCounts{ShopID: c.ShopID, Software: c.Software, ShopName: c.ShopName}
			if p, ok := profiles[c.ShopID]; ok {
				row.CapacityFactor = p.CapacityFactor
				if p.Name != "" {
					row.ShopName = p.Name
				}
				if p.Software != "" {
					row.Software = p.Software
				}
			}
			i = len(rows)
			index[c.ShopID] = i
			rows = append(rows, row)
		}

		r := &rows[i]
		switch {
		case c.EventAfter(windowCutoff):
			r.Recent++
		case c.EventAfter(staleCutoff):
			r.Stale++
		default:
			r.Expired++
		}
		if c.HasRealMonth() {
			r.BirthMonths[c.EventMonth-1]++
		}
		if c.HasShadowMonth() {
			r.ShadowMonths[c.ShadowMonth-1]++
		}
	}

	slices.SortStableFunc(rows, func(a, b ShopCounts) int {
		return CompareShopID(a.ShopID, b.ShopID)
	})
	return rows
}
