// Package pipeline selects customers for each shop's mailing months: it
// filters, cleans, deduplicates and geofences the roster, assigns shadow
// months, allocates quotas and builds the mailing lists.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/roster-cli/internal/config"
	"github.com/sells-group/roster-cli/internal/model"
	"github.com/sells-group/roster-cli/internal/store"
)

// Options configures a Runner.
type Options struct {
	Validity     ValidityRules
	WindowMonths int
	StaleMonths  int
	// ShopID limits the customer fetch to one shop when set.
	ShopID string
}

// OptionsFromConfig builds runner options from the pipeline config.
func OptionsFromConfig(c config.PipelineConfig) Options {
	return Options{
		Validity:     ValidityRulesFromConfig(c.Validity),
		WindowMonths: c.WindowMonths,
		StaleMonths:  c.ReportStaleMonths,
	}
}

// Stats collects per-stage counters for one run.
type Stats struct {
	Fetched   int           `json:"fetched" yaml:"fetched"`
	Shops     int           `json:"shops" yaml:"shops"`
	Validity  ValidityStats `json:"validity" yaml:"validity"`
	Names     NameStats     `json:"names" yaml:"names"`
	Deduped   int           `json:"deduped" yaml:"deduped"`
	Geofence  GeofenceStats `json:"geofence" yaml:"geofence"`
	Balance   BalanceStats  `json:"balance" yaml:"balance"`
	Allocated int           `json:"allocated" yaml:"allocated"`
	Lists     ListStats     `json:"lists" yaml:"lists"`
}

// Result is the output of one run.
type Result struct {
	RunID string    `json:"run_id" yaml:"run_id"`
	Now   time.Time `json:"now" yaml:"now"`
	// Month is the target month of a single-month run, 0 for a year run.
	Month       int                 `json:"month" yaml:"month"`
	Shops       []model.Shop        `json:"-" yaml:"-"`
	Customers   []model.Customer    `json:"-" yaml:"-"`
	Allocations []MonthAllocation   `json:"-" yaml:"-"`
	Lists       []model.MailingList `json:"-" yaml:"-"`
	Counts      []ShopCounts        `json:"-" yaml:"-"`
	Stats       Stats               `json:"stats" yaml:"stats"`
}

// Runner wires the repositories to the compute stages.
type Runner struct {
	customers store.CustomerRepository
	shops     store.ShopRepository
	opts      Options
	now       func() time.Time
	distance  DistanceFunc
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithClock overrides the time source used for window cutoffs.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// WithDistance overrides the geofence distance function.
func WithDistance(d DistanceFunc) RunnerOption {
	return func(r *Runner) { r.distance = d }
}

// NewRunner creates a Runner.
func NewRunner(customers store.CustomerRepository, shops store.ShopRepository, opts Options, ro ...RunnerOption) *Runner {
	r := &Runner{customers: customers, shops: shops, opts: opts, now: time.Now}
	for _, o := range ro {
		o(r)
	}
	return r
}

// RunMonth selects and lists customers for a single month using the
// single-month quota.
func (r *Runner) RunMonth(ctx context.Context, month int) (*Result, error) {
	if !model.ValidMonth(month) {
		return nil, eris.Errorf("pipeline: invalid month %d", month)
	}

	res, err := r.prepare(ctx)
	if err != nil {
		return nil, err
	}
	res.Month = month

	picked, err := Allocate(res.Customers, res.Shops, AllocateOptions{
		Month:        month,
		Mode:         model.QuotaMonth,
		WindowMonths: r.opts.WindowMonths,
		Now:          res.Now,
	})
	if err != nil {
		return nil, err
	}
	res.Allocations = []MonthAllocation{{Month: month, Customers: picked}}
	res.Stats.Allocated = len(picked)
	res.Lists, res.Stats.Lists = BuildLists(picked, month)

	r.logDone(res)
	return res, nil
}

// RunYear allocates all twelve months with the year quota, builds every
// month's lists and tallies the per-shop counts report.
func (r *Runner) RunYear(ctx context.Context) (*Result, error) {
	res, err := r.prepare(ctx)
	if err != nil {
		return nil, err
	}

	allocs, err := AllocateYear(res.Customers, res.Shops, AllocateOptions{
		WindowMonths: r.opts.WindowMonths,
		Now:          res.Now,
	})
	if err != nil {
		return nil, err
	}
	res.Allocations = allocs

	res.Stats.Lists = ListStats{ByType: map[model.ListType]int{}}
	for _, a := range allocs {
		lists, ls := BuildLists(a.Customers, a.Month)
		res.Lists = append(res.Lists, lists...)
		res.Stats.Allocated += len(a.Customers)
		res.Stats.Lists.Input += ls.Input
		res.Stats.Lists.Listed += ls.Listed
		res.Stats.Lists.Unmatched += ls.Unmatched
		res.Stats.Lists.Lists += ls.Lists
		for t, n := range ls.ByType {
			res.Stats.Lists.ByType[t] += n
		}
	}

	res.Counts = CountShops(Flatten(allocs), res.Shops, CountOptions{
		WindowMonths: r.opts.WindowMonths,
		StaleMonths:  r.opts.StaleMonths,
		Now:          res.Now,
	})

	r.logDone(res)
	return res, nil
}

// Prepare runs the fetch and every stage up to shadow-month assignment.
func (r *Runner) Prepare(ctx context.Context) (*Result, error) {
	return r.prepare(ctx)
}

func (r *Runner) prepare(ctx context.Context) (*Result, error) {
	res := &Result{RunID: uuid.New().String(), Now: r.now()}
	log := zap.L().With(zap.String("run_id", res.RunID))

	var customers []model.Customer
	var shops []model.Shop
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		customers, err = r.customers.FetchCustomers(gCtx, r.opts.ShopID)
		return eris.Wrap(err, "pipeline: fetch customers")
	})
	g.Go(func() error {
		var err error
		shops, err = r.shops.FetchShops(gCtx)
		return eris.Wrap(err, "pipeline: fetch shops")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "pipeline: cancelled before compute")
	}

	res.Shops = shops
	res.Stats.Fetched = len(customers)
	res.Stats.Shops = len(shops)
	log.Info("pipeline: fetched roster",
		zap.Int("customers", len(customers)),
		zap.Int("shops", len(shops)),
	)

	valid, vs := FilterValid(customers, r.opts.Validity)
	res.Stats.Validity = vs
	log.Info("pipeline: validity filter",
		zap.Int("kept", vs.Kept),
		zap.Int("malformed", vs.Malformed),
		zap.Int("dropped", vs.Input-vs.Kept-vs.Malformed),
	)

	named, ns := NormalizeNames(valid)
	res.Stats.Names = ns
	log.Info("pipeline: names normalized",
		zap.Int("rederived", ns.Rederived),
		zap.Int("dropped", ns.Unusable),
	)

	unique := Dedupe(named, DedupeOptions{Mode: DedupeAll, Now: res.Now})
	res.Stats.Deduped = len(named) - len(unique)
	log.Info("pipeline: deduplicated", zap.Int("kept", len(unique)), zap.Int("dropped", res.Stats.Deduped))

	fenced, gs, err := Geofence(unique, shops, r.distance)
	if err != nil {
		return nil, err
	}
	res.Stats.Geofence = gs
	log.Info("pipeline: geofenced", zap.Int("kept", gs.Kept), zap.Int("dropped", gs.OutOfRadius))

	within, outside, bs := AssignShadowMonths(fenced, BalanceOptions{
		WindowMonths: r.opts.WindowMonths,
		Now:          res.Now,
	})
	res.Stats.Balance = bs
	res.Customers = append(within, outside...)
	log.Info("pipeline: shadow months assigned",
		zap.Int("within", bs.Within),
		zap.Int("outside", bs.Outside),
		zap.Int("pool", bs.Pool),
		zap.Int("assigned", bs.Assigned),
	)

	return res, nil
}

func (r *Runner) logDone(res *Result) {
	zap.L().Info("pipeline: run complete",
		zap.String("run_id", res.RunID),
		zap.Int("month", res.Month),
		zap.Int("allocated", res.Stats.Allocated),
		zap.Int("lists", len(res.Lists)),
		zap.Int("unmatched", res.Stats.Lists.Unmatched),
	)
}
