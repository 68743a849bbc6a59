package pipeline

import (
	"cmp"
	"slices"
	"time"

	"github.com/sells-group/roster-cli/internal/model"
)

// Balancer sub-population names.
const (
	WindowWithin  = "within"
	WindowOutside = "outside"
)

// BalanceOptions configures AssignShadowMonths.
type BalanceOptions struct {
	WindowMonths int
	Now          time.Time
}

// BalancePlan records how one shop's pool was spread across the year.
// Counts and Deficits are indexed by month-1; Deficits include the
// remainder routed to RemainderMonth.
type BalancePlan struct {
	ShopID         string  `json:"shop_id" yaml:"shop_id"`
	Window         string  `json:"window,omitempty" yaml:"window,omitempty"`
	Average        int     `json:"average" yaml:"average"`
	Pool           int     `json:"pool" yaml:"pool"`
	Counts         [12]int `json:"counts" yaml:"counts,flow"`
	Deficits       [12]int `json:"deficits" yaml:"deficits,flow"`
	RemainderMonth int     `json:"remainder_month" yaml:"remainder_month"`
	Remainder      int     `json:"remainder" yaml:"remainder"`
	Assigned       int     `json:"assigned" yaml:"assigned"`
}

// BalanceStats summarizes a balancer run.
type BalanceStats struct {
	Within   int           `json:"within" yaml:"within"`
	Outside  int           `json:"outside" yaml:"outside"`
	Pool     int           `json:"pool" yaml:"pool"`
	Assigned int           `json:"assigned" yaml:"assigned"`
	Plans    []BalancePlan `json:"plans,omitempty" yaml:"plans,omitempty"`
}

// monthKey addresses one counter in the arena; month 0 is the pool of
// customers awaiting a shadow month.
type monthKey struct {
	shopID string
	month  int
}

// monthArena holds per-shop, per-month counters for one sub-population.
type monthArena struct {
	counts map[monthKey]int
	seen   map[string]bool
	shops  []string
}

func newMonthArena() *monthArena {
	return &monthArena{counts: map[monthKey]int{}, seen: map[string]bool{}}
}

func (a *monthArena) add(shopID string, c model.Customer) {
	if !a.seen[shopID] {
		a.seen[shopID] = true
		a.shops = append(a.shops, shopID)
	}
	switch {
	case c.HasRealMonth():
		a.counts[monthKey{shopID, c.EventMonth}]++
	case !c.HasShadowMonth():
		a.counts[monthKey{shopID, 0}]++
	}
}

// plan derives the shop's target average and per-month deficits.
func (a *monthArena) plan(shopID string) BalancePlan {
	p := BalancePlan{ShopID: shopID, Pool: a.counts[monthKey{shopID, 0}]}
	total := p.Pool
	for m := 1; m <= 12; m++ {
		p.Counts[m-1] = a.counts[monthKey{shopID, m}]
		total += p.Counts[m-1]
	}

	avg := total / 12
	deficits, sum := deficitsFor(p.Counts, avg)
	for sum > p.Pool && avg > 0 {
		avg--
		deficits, sum = deficitsFor(p.Counts, avg)
	}
	p.Average = avg

	if order := fillOrder(p.Counts); len(order) > 0 {
		p.RemainderMonth = order[0]
		p.Remainder = p.Pool - sum
		deficits[p.RemainderMonth-1] += p.Remainder
	}
	p.Deficits = deficits
	return p
}

// deficitsFor returns max(0, avg-count) for every month with a real count.
func deficitsFor(counts [12]int, avg int) ([12]int, int) {
	var d [12]int
	sum := 0
	for i, n := range counts {
		if n > 0 && avg > n {
			d[i] = avg - n
			sum += d[i]
		}
	}
	return d, sum
}

// fillOrder lists months with a real count, fewest customers first, ties by
// month.
func fillOrder(counts [12]int) []int {
	var months []int
	for i, n := range counts {
		if n > 0 {
			months = append(months, i+1)
		}
	}
	slices.SortStableFunc(months, func(a, b int) int {
		return cmp.Compare(counts[a-1], counts[b-1])
	})
	return months
}

// assignPool hands pool customers at idx, newest first, to months in fill
// order until each month's deficit is used up.
func assignPool(out []model.Customer, idx []int, p BalancePlan) BalancePlan {
	var pool []int
	for _, i := range idx {
		if !out[i].HasRealMonth() && !out[i].HasShadowMonth() {
			pool = append(pool, i)
		}
	}
	slices.SortStableFunc(pool, func(a, b int) int {
		return model.CompareEventDesc(out[a].EventDate, out[b].EventDate)
	})

	next := 0
	for _, m := range fillOrder(p.Counts) {
		for n := p.Deficits[m-1]; n > 0 && next < len(pool); n-- {
			out[pool[next]].ShadowMonth = m
			next++
		}
	}
	p.Assigned = next
	return p
}

// BalanceShop assigns shadow months to one shop's customers. The input is
// not modified.
func BalanceShop(shopID string, customers []model.Customer) ([]model.Customer, BalancePlan) {
	out := slices.Clone(customers)
	arena := newMonthArena()
	idx := make([]int, len(out))
	for i, c := range out {
		arena.add(shopID, c)
		idx[i] = i
	}
	return out, assignPool(out, idx, arena.plan(shopID))
}

// balancePopulation balances every shop of one sub-population and orders the
// result by event date descending, then real month ascending.
func balancePopulation(records []model.Customer, window string) ([]model.Customer, []BalancePlan) {
	out := slices.Clone(records)
	arena := newMonthArena()
	byShop := map[string][]int{}
	for i, c := range out {
		arena.add(c.ShopID, c)
		byShop[c.ShopID] = append(byShop[c.ShopID], i)
	}

	plans := make([]BalancePlan, 0, len(arena.shops))
	for _, shopID := range arena.shops {
		p := assignPool(out, byShop[shopID], arena.plan(shopID))
		p.Window = window
		plans = append(plans, p)
	}

	slices.SortStableFunc(out, func(a, b model.Customer) int {
		if c := model.CompareEventDesc(a.EventDate, b.EventDate); c != 0 {
			return c
		}
		return cmp.Compare(a.EventMonth, b.EventMonth)
	})
	return out, plans
}

// AssignShadowMonths splits records at now minus the window and balances
// each side independently. Records with no event date fall outside.
func AssignShadowMonths(records []model.Customer, opts BalanceOptions) (within, outside []model.Customer, stats BalanceStats) {
	cutoff := model.MonthsAgo(opts.Now, opts.WindowMonths)
	var in, out []model.Customer
	for _, c := range records {
		if c.EventDate != nil && c.EventDate.After(cutoff) {
			in = append(in, c)
		} else {
			out = append(out, c)
		}
	}

	within, withinPlans := balancePopulation(in, WindowWithin)
	outside, outsidePlans := balancePopulation(out, WindowOutside)

	stats.Within = len(within)
	stats.Outside = len(outside)
	stats.Plans = append(withinPlans, outsidePlans...)
	for _, p := range stats.Plans {
		stats.Pool += p.Pool
		stats.Assigned += p.Assigned
	}
	return within, outside, stats
}
