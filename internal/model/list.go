package model

import "fmt"

// ListType identifies which month match placed a customer on a list.
type ListType string

const (
	ListRealMonth    ListType = "real-birth-month"
	ListRealHalfYear ListType = "real-half-year"
	ListShadowMonth  ListType = "shadow-birth-month"
	ListShadowHalf   ListType = "shadow-half-year"
)

// ListTypes lists every list type in priority order.
var ListTypes = []ListType{ListRealMonth, ListRealHalfYear, ListShadowMonth, ListShadowHalf}

// Prefix is the list-name prefix the mail house expects.
func (t ListType) Prefix() string {
	switch t {
	case ListRealMonth:
		return "BDayList"
	case ListRealHalfYear:
		return "HDayList"
	case ListShadowMonth:
		return "TDayList"
	case ListShadowHalf:
		return "THDayList"
	default:
		return "List"
	}
}

// ListKey identifies one mailing list within a run.
type ListKey struct {
	ShopID   string   `json:"shop_id"`
	ListType ListType `json:"list_type"`
	Month    int      `json:"month"`
}

// MailingList is an ordered set of customers sharing a shop, month and list type.
type MailingList struct {
	Key       ListKey    `json:"key"`
	ShopName  string     `json:"shop_name"`
	Customers []Customer `json:"customers"`
}

// Name renders the list name, e.g. "BDayList 3".
func (l MailingList) Name() string {
	return fmt.Sprintf("%s %d", l.Key.ListType.Prefix(), l.Key.Month)
}

// Len returns the number of customers on the list.
func (l MailingList) Len() int {
	return len(l.Customers)
}
