package pipeline

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/roster-cli/internal/model"
)

// AllocateOptions configures the quota allocator.
type AllocateOptions struct {
	Month        int
	Mode         model.QuotaMode
	WindowMonths int
	Now          time.Time
}

// MonthAllocation is the allocator output for one target month.
type MonthAllocation struct {
	Month     int              `json:"month"`
	Customers []model.Customer `json:"customers"`
}

// priorityGroups is the number of tiers in the allocation order.
const priorityGroups = 8

// priority returns the customer's tier for target month m (half-year month
// h), or -1 when the customer matches neither month. Even tiers are recent
// customers, odd tiers the stale customers of the same match.
func priority(c model.Customer, m, h int, recentCutoff time.Time) int {
	var tier int
	switch {
	case c.HasRealMonth() && c.EventMonth == m:
		tier = 0
	case c.HasRealMonth() && c.EventMonth == h:
		tier = 2
	case c.HasShadowMonth() && c.ShadowMonth == m:
		tier = 4
	case c.HasShadowMonth() && c.ShadowMonth == h:
		tier = 6
	default:
		return -1
	}
	if !c.EventAfter(recentCutoff) {
		tier++
	}
	return tier
}

// Allocate selects up to each shop's quota of customers for opts.Month.
// Shops are processed in the given order; within a shop customers are taken
// tier by tier, each tier in input order.
func Allocate(customers []model.Customer, shops []model.Shop, opts AllocateOptions) ([]model.Customer, error) {
	if !model.ValidMonth(opts.Month) {
		return nil, eris.Errorf("pipeline: allocate: invalid month %d", opts.Month)
	}

	m := opts.Month
	h := model.HalfYearMonth(m)
	cutoff := model.MonthsAgo(opts.Now, opts.WindowMonths)

	tiers := make(map[string]*[priorityGroups][]model.Customer, len(shops))
	for _, c := range customers {
		p := priority(c, m, h, cutoff)
		if p < 0 {
			continue
		}
		t, ok := tiers[c.ShopID]
		if !ok {
			t = &[priorityGroups][]model.Customer{}
			tiers[c.ShopID] = t
		}
		t[p] = append(t[p], c)
	}

	var out []model.Customer
	for _, shop := range shops {
		t, ok := tiers[shop.ID]
		if !ok {
			continue
		}
		quota := shop.Quota(opts.Mode)
		for _, group := range t {
			if quota <= 0 {
				break
			}
			if len(group) > quota {
				group = group[:quota]
			}
			out = append(out, group...)
			quota -= len(group)
		}
	}
	return out, nil
}

// AllocateYear allocates months 1 through 12 with the year quota.
func AllocateYear(customers []model.Customer, shops []model.Shop, opts AllocateOptions) ([]MonthAllocation, error) {
	opts.Mode = model.QuotaYear
	out := make([]MonthAllocation, 0, 12)
	for m := 1; m <= 12; m++ {
		opts.Month = m
		picked, err := Allocate(customers, shops, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, MonthAllocation{Month: m, Customers: picked})
	}
	return out, nil
}

// Flatten concatenates the customers of every month allocation.
func Flatten(allocs []MonthAllocation) []model.Customer {
	var out []model.Customer
	for _, a := range allocs {
		out = append(out, a.Customers...)
	}
	return out
}
