package pipeline

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/sells-group/roster-cli/internal/model"
)

// ListStats counts the outcome of list building.
type ListStats struct {
	Input     int                    `json:"input" yaml:"input"`
	Listed    int                    `json:"listed" yaml:"listed"`
	Unmatched int                    `json:"unmatched" yaml:"unmatched"`
	Lists     int                    `json:"lists" yaml:"lists"`
	ByType    map[model.ListType]int `json:"by_type,omitempty" yaml:"by_type,omitempty"`
}

// CompareShopID orders shop ids numerically when both parse as integers and
// lexically otherwise.
func CompareShopID(a, b string) int {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	if aErr == nil && bErr == nil {
		return cmp.Compare(ai, bi)
	}
	return cmp.Compare(a, b)
}

// ClassifyList returns the list a customer belongs to for target month m.
func ClassifyList(c model.Customer, m int) (model.ListType, bool) {
	h := model.HalfYearMonth(m)
	switch {
	case c.HasRealMonth() && c.EventMonth == m:
		return model.ListRealMonth, true
	case c.HasRealMonth() && c.EventMonth == h:
		return model.ListRealHalfYear, true
	case c.HasShadowMonth() && c.ShadowMonth == m:
		return model.ListShadowMonth, true
	case c.HasShadowMonth() && c.ShadowMonth == h:
		return model.ListShadowHalf, true
	default:
		return "", false
	}
}

// BuildLists groups allocated customers for month m into mailing lists.
// Customers are ordered by shop id, real month descending, then event date
// descending; lists appear in the order their first customer does.
// Customers matching no list type are dropped and counted.
func BuildLists(customers []model.Customer, m int) ([]model.MailingList, ListStats) {
	sorted := slices.Clone(customers)
	slices.SortStableFunc(sorted, func(a, b model.Customer) int {
		if c := CompareShopID(a.ShopID, b.ShopID); c != 0 {
			return c
		}
		if c := cmp.Compare(b.EventMonth, a.EventMonth); c != 0 {
			return c
		}
		return model.CompareEventDesc(a.EventDate, b.EventDate)
	})

	stats := ListStats{Input: len(customers), ByType: map[model.ListType]int{}}
	index := map[model.ListKey]int{}
	var lists []model.MailingList
	for _, c := range sorted {
		lt, ok := ClassifyList(c, m)
		if !ok {
			stats.Unmatched++
			continue
		}
		key := model.ListKey{ShopID: c.ShopID, ListType: lt, Month: m}
		i, ok := index[key]
		if !ok {
			i = len(lists)
			index[key] = i
			lists = append(lists, model.MailingList{Key: key, ShopName: c.ShopName})
		}
		lists[i].Customers = append(lists[i].Customers, c)
		stats.ByType[lt]++
		stats.Listed++
	}
	stats.Lists = len(lists)
	return lists, stats
}
