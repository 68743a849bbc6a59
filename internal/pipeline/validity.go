package pipeline

import (
	"strings"

	"github.com/sells-group/roster-cli/internal/config"
	"github.com/sells-group/roster-cli/internal/model"
)

// ValidityRules holds the hygiene codes a deliverable record must satisfy.
type ValidityRules struct {
	VacantFlag        string
	VerifiedStatus    string
	InactiveOccupancy string
	HardFailCodes     []string
	AcceptedDPV       []string
}

// DefaultValidityRules returns the vendor codes used when none are configured.
func DefaultValidityRules() ValidityRules {
	return ValidityRules{
		VacantFlag:        "Y",
		VerifiedStatus:    "V",
		InactiveOccupancy: "02",
		HardFailCodes:     []string{"12.2", "12.3", "12.4"},
		AcceptedDPV:       []string{"Y", "S"},
	}
}

// ValidityRulesFromConfig converts the validity section of the config.
func ValidityRulesFromConfig(c config.ValidityConfig) ValidityRules {
	return ValidityRules{
		VacantFlag:        c.VacantFlag,
		VerifiedStatus:    c.VerifiedStatus,
		InactiveOccupancy: c.InactiveOccupancy,
		HardFailCodes:     c.HardFailCodes,
		AcceptedDPV:       c.AcceptedDPV,
	}
}

// Rejection reasons reported in ValidityStats.
const (
	reasonMalformed  = "malformed"
	reasonVacant     = "vacant"
	reasonUnverified = "unverified"
	reasonInactive   = "inactive"
	reasonHardFail   = "hard_fail_code"
	reasonDPV        = "dpv"
)

// ValidityStats counts what the validity filter kept and why it dropped the rest.
type ValidityStats struct {
	Input     int            `json:"input" yaml:"input"`
	Kept      int            `json:"kept" yaml:"kept"`
	Malformed int            `json:"malformed" yaml:"malformed"`
	Rejected  map[string]int `json:"rejected,omitempty" yaml:"rejected,omitempty"`
}

// FilterValid keeps the records that pass every hygiene check. Records
// missing a required field are dropped and counted as malformed.
func FilterValid(records []model.Customer, rules ValidityRules) ([]model.Customer, ValidityStats) {
	stats := ValidityStats{Input: len(records), Rejected: map[string]int{}}
	out := make([]model.Customer, 0, len(records))
	for _, c := range records {
		reason := rules.rejectReason(c)
		switch reason {
		case "":
			out = append(out, c)
		case reasonMalformed:
			stats.Malformed++
		default:
			stats.Rejected[reason]++
		}
	}
	stats.Kept = len(out)
	return out, stats
}

// rejectReason returns "" when c is deliverable.
func (r ValidityRules) rejectReason(c model.Customer) string {
	h := c.Hygiene
	if c.ID == "" || c.ShopID == "" || h.Status == "" || h.DPV == "" {
		return reasonMalformed
	}
	if r.VacantFlag != "" && h.Vacant == r.VacantFlag {
		return reasonVacant
	}
	if h.Status != r.VerifiedStatus {
		return reasonUnverified
	}
	if r.InactiveOccupancy != "" && h.OccupancyCode == r.InactiveOccupancy {
		return reasonInactive
	}
	for _, code := range r.HardFailCodes {
		if h.HasErrorCode(code) {
			return reasonHardFail
		}
	}
	for _, class := range r.AcceptedDPV {
		if class != "" && strings.HasPrefix(h.DPV, class) {
			return ""
		}
	}
	return reasonDPV
}

// MissingUnits returns the records whose error codes include one of the
// hard-fail codes: deliverable buildings missing an apartment or suite.
func MissingUnits(records []model.Customer, rules ValidityRules) []model.Customer {
	var out []model.Customer
	for _, c := range records {
		for _, code := range rules.HardFailCodes {
			if c.Hygiene.HasErrorCode(code) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
