package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/roster-cli/internal/model"
)

func TestCompareShopID(t *testing.T) {
	assert.Negative(t, CompareShopID("2", "10"))
	assert.Positive(t, CompareShopID("10", "2"))
	assert.Zero(t, CompareShopID("7", "7"))
	assert.Negative(t, CompareShopID("A", "B"))
	assert.Negative(t, CompareShopID("10", "A"))
}

func TestClassifyList(t *testing.T) {
	tests := []struct {
		name   string
		real   int
		shadow int
		want   model.ListType
		ok     bool
	}{
		{name: "real month", real: 3, want: model.ListRealMonth, ok: true},
		{name: "real half year", real: 9, want: model.ListRealHalfYear, ok: true},
		{name: "shadow month", shadow: 3, want: model.ListShadowMonth, ok: true},
		{name: "shadow half year", shadow: 9, want: model.ListShadowHalf, ok: true},
		{name: "other real month", real: 4},
		{name: "real month beats shadow", real: 3, shadow: 9, want: model.ListRealMonth, ok: true},
		{name: "no month"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClassifyList(monthCustomer("c", "10", tt.real, tt.shadow, nil), 3)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildLists(t *testing.T) {
	in := []model.Customer{
		monthCustomer("A", "10", 3, 0, monthsBack(1)),
		monthCustomer("B", "10", 9, 0, monthsBack(2)),
		monthCustomer("D", "10", 0, 9, monthsBack(4)),
		monthCustomer("C", "10", 0, 3, monthsBack(3)),
		monthCustomer("E", "10", 5, 0, monthsBack(1)),
		monthCustomer("F", "2", 3, 0, monthsBack(5)),
	}

	lists, stats := BuildLists(in, 3)

	require.Len(t, lists, 5)
	keys := make([]model.ListKey, len(lists))
	for i, l := range lists {
		keys[i] = l.Key
	}
	assert.Equal(t, []model.ListKey{
		{ShopID: "2", ListType: model.ListRealMonth, Month: 3},
		{ShopID: "10", ListType: model.ListRealHalfYear, Month: 3},
		{ShopID: "10", ListType: model.ListRealMonth, Month: 3},
		{ShopID: "10", ListType: model.ListShadowMonth, Month: 3},
		{ShopID: "10", ListType: model.ListShadowHalf, Month: 3},
	}, keys)

	assert.Equal(t, []string{"F"}, ids(lists[0].Customers))
	assert.Equal(t, "Shop 2", lists[0].ShopName)
	assert.Equal(t, "HDayList 3", lists[1].Name())

	assert.Equal(t, 6, stats.Input)
	assert.Equal(t, 5, stats.Listed)
	assert.Equal(t, 1, stats.Unmatched)
	assert.Equal(t, 5, stats.Lists)
	assert.Equal(t, 2, stats.ByType[model.ListRealMonth])
}

func TestBuildLists_OrdersWithinList(t *testing.T) {
	in := []model.Customer{
		monthCustomer("old", "10", 3, 0, monthsBack(20)),
		monthCustomer("undated", "10", 3, 0, nil),
		monthCustomer("new", "10", 3, 0, monthsBack(1)),
	}

	lists, _ := BuildLists(in, 3)
	require.Len(t, lists, 1)
	assert.Equal(t, []string{"new", "old", "undated"}, ids(lists[0].Customers))
}

func TestBuildLists_Empty(t *testing.T) {
	lists, stats := BuildLists(nil, 1)
	assert.Empty(t, lists)
	assert.Zero(t, stats.Listed)
}
