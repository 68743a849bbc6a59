package pipeline

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/roster-cli/internal/model"
)

// DedupeMode selects the optional temporal limit applied after dedup.
type DedupeMode int

const (
	// DedupeAll returns every surviving record.
	DedupeAll DedupeMode = iota
	// DedupeWithin keeps records whose event date is on or after the cutoff.
	DedupeWithin
	// DedupeOutside keeps records whose event date is strictly before the cutoff.
	DedupeOutside
)

// DedupeOptions configures Dedupe.
type DedupeOptions struct {
	Mode         DedupeMode
	CutoffMonths int
	Now          time.Time
}

// DedupeKey identifies a person at an address within a household chain, or
// within the shop when the record has no chain id.
func DedupeKey(c model.Customer) string {
	return dedupeKey(cases.Lower(language.Und), c)
}

func dedupeKey(lower cases.Caser, c model.Customer) string {
	norm := func(s string) string { return lower.String(strings.TrimSpace(s)) }

	scope := "shop:" + c.ShopID
	if id := strings.TrimSpace(c.ChainID); id != "" && id != model.NoChainID {
		scope = "chain:" + id
	}
	return strings.Join([]string{norm(c.FirstName), norm(c.LastName), norm(c.Address), scope}, "\x1f")
}

// Dedupe keeps the most recent record per DedupeKey. Records are ordered by
// event date descending with undefined dates last; ties keep input order.
// The result is in that order, optionally limited by opts.Mode.
func Dedupe(records []model.Customer, opts DedupeOptions) []model.Customer {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b model.Customer) int {
		return model.CompareEventDesc(a.EventDate, b.EventDate)
	})

	lower := cases.Lower(language.Und)
	seen := make(map[string]bool, len(sorted))
	cutoff := model.MonthsAgo(opts.Now, opts.CutoffMonths)

	out := make([]model.Customer, 0, len(sorted))
	for _, c := range sorted {
		key := dedupeKey(lower, c)
		if seen[key] {
			continue
		}
		seen[key] = true

		switch opts.Mode {
		case DedupeWithin:
			if !c.EventAfter(cutoff) {
				continue
			}
		case DedupeOutside:
			if c.EventDate == nil || !c.EventDate.Before(cutoff) {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}
