// Package model defines the records that flow through the roster pipeline.
package model

import (
	"strconv"
	"strings"
	"time"
)

// NoChainID is the sentinel chain id meaning "no household/chain".
const NoChainID = "0"

// NameQuality tags how trustworthy a customer's person-name fields are.
type NameQuality string

const (
	NameClean     NameQuality = "clean"
	NameRederived NameQuality = "re-derived"
	NameUnusable  NameQuality = "unusable"
)

// rank orders tags so a stronger tag is never downgraded.
func (q NameQuality) rank() int {
	switch q {
	case NameUnusable:
		return 2
	case NameRederived:
		return 1
	default:
		return 0
	}
}

// Worst returns the stronger of two tags.
func (q NameQuality) Worst(other NameQuality) NameQuality {
	if other.rank() > q.rank() {
		return other
	}
	if q == "" {
		return NameClean
	}
	return q
}

// Hygiene holds the address-hygiene vendor flags for a record.
type Hygiene struct {
	Status        string   `json:"status"`
	DPV           string   `json:"dpv"`
	Vacant        string   `json:"vacant"`
	OccupancyCode string   `json:"occupancy_code"`
	ErrorCodes    []string `json:"error_codes,omitempty"`
}

// HasErrorCode reports whether code appears in the record's error-code list.
func (h Hygiene) HasErrorCode(code string) bool {
	for _, c := range h.ErrorCodes {
		if strings.TrimSpace(c) == code {
			return true
		}
	}
	return false
}

// Customer is one verified address record for a shop's customer.
type Customer struct {
	ID           string      `json:"id"`
	ChainID      string      `json:"chain_id"`
	ShopID       string      `json:"shop_id"`
	ShopName     string      `json:"shop_name"`
	Software     string      `json:"software,omitempty"`
	RawFirstName string      `json:"raw_first_name"`
	FirstName    string      `json:"first_name"`
	RawLastName  string      `json:"raw_last_name"`
	LastName     string      `json:"last_name"`
	Address      string      `json:"address"`
	City         string      `json:"city"`
	State        string      `json:"state"`
	Zip          string      `json:"zip"`
	EventDate    *time.Time  `json:"event_date,omitempty"`
	EventMonth   int         `json:"event_month"`
	ShadowMonth  int         `json:"shadow_month"`
	BirthYear    string      `json:"birth_year,omitempty"`
	Latitude     float64     `json:"latitude"`
	Longitude    float64     `json:"longitude"`
	Hygiene      Hygiene     `json:"hygiene"`
	NameQuality  NameQuality `json:"name_quality"`
}

// HasRealMonth reports whether the customer carries a usable event month.
func (c Customer) HasRealMonth() bool {
	return ValidMonth(c.EventMonth)
}

// HasShadowMonth reports whether a shadow month has been assigned.
func (c Customer) HasShadowMonth() bool {
	return ValidMonth(c.ShadowMonth)
}

// EventAfter reports whether the event date is defined and not before t.
func (c Customer) EventAfter(t time.Time) bool {
	return c.EventDate != nil && !c.EventDate.Before(t)
}

// ValidMonth reports whether m is a calendar month 1–12.
func ValidMonth(m int) bool {
	return m >= 1 && m <= 12
}

// ParseMonth converts a vendor month field to 1–12, or 0 when the value is
// empty, non-numeric, zero or out of range.
func ParseMonth(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || !ValidMonth(n) {
		return 0
	}
	return n
}

// HalfYearMonth returns the month six months away from m.
func HalfYearMonth(m int) int {
	if m < 7 {
		return m + 6
	}
	return m - 6
}

// MonthsAgo returns now shifted back by n calendar months.
func MonthsAgo(now time.Time, n int) time.Time {
	return now.AddDate(0, -n, 0)
}

// CompareEventDesc orders a before b when a's event date is more recent.
// Undefined dates sort after every defined date.
func CompareEventDesc(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case a.After(*b):
		return -1
	case a.Before(*b):
		return 1
	default:
		return 0
	}
}
