package model

import (
	"math"

	"github.com/rotisserie/eris"
)

// ErrInvalidShop is returned when a shop profile violates its invariants.
var ErrInvalidShop = eris.New("model: invalid shop profile")

// QuotaMode selects the monthly quota formula.
type QuotaMode int

const (
	// QuotaYear is used when allocating all twelve months in one pass:
	// floor(customers × factor / 12) + 1.
	QuotaYear QuotaMode = iota
	// QuotaMonth is used when allocating a single month in isolation:
	// round(customers × factor / 12).
	QuotaMonth
)

func (m QuotaMode) String() string {
	switch m {
	case QuotaYear:
		return "year"
	case QuotaMonth:
		return "month"
	default:
		return "unknown"
	}
}

// Shop is one paying tenant of the mailing program.
type Shop struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Software       string  `json:"software,omitempty"`
	RadiusMiles    float64 `json:"radius_miles"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	CustomerCount  int     `json:"customer_count"`
	CapacityFactor float64 `json:"capacity_factor"`
}

// Validate checks the shop invariants.
func (s Shop) Validate() error {
	if s.RadiusMiles < 0 {
		return eris.Wrapf(ErrInvalidShop, "shop %s: radius %.2f < 0", s.ID, s.RadiusMiles)
	}
	if s.CapacityFactor < 0 {
		return eris.Wrapf(ErrInvalidShop, "shop %s: capacity factor %.2f < 0", s.ID, s.CapacityFactor)
	}
	return nil
}

// Quota returns the maximum customers the shop may receive in one month.
func (s Shop) Quota(mode QuotaMode) int {
	monthly := float64(s.CustomerCount) * s.CapacityFactor / 12
	if mode == QuotaMonth {
		return int(math.Round(monthly))
	}
	return int(math.Floor(monthly)) + 1
}
