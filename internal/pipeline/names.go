package pipeline

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sells-group/roster-cli/internal/model"
)

// RuleKind says what a NameRule does when it matches.
type RuleKind int

const (
	// RuleSplit rewrites the value and marks the field re-derived.
	RuleSplit RuleKind = iota
	// RuleReject blanks the value and marks the field unusable.
	RuleReject
	// RulePass rewrites the value without changing its tag.
	RulePass
)

func (k RuleKind) String() string {
	switch k {
	case RuleSplit:
		return "split"
	case RuleReject:
		return "reject"
	case RulePass:
		return "pass"
	default:
		return "unknown"
	}
}

// NameRule is one step of a name-cleaning chain. Transform is ignored for
// reject rules.
type NameRule struct {
	Name      string
	Kind      RuleKind
	Match     func(string) bool
	Transform func(string) string
}

// Apply runs the rule against v and returns the new value and field tag.
// The second result is false when a reject rule fired and the chain must stop.
func (r NameRule) Apply(v string, q model.NameQuality) (string, model.NameQuality, bool) {
	if !r.Match(v) {
		return v, q, true
	}
	switch r.Kind {
	case RuleReject:
		return "", model.NameUnusable, false
	case RuleSplit:
		return r.Transform(v), q.Worst(model.NameRederived), true
	default:
		return r.Transform(v), q, true
	}
}

// ApplyRules evaluates a chain in order, stopping at the first rejection.
func ApplyRules(v string, rules []NameRule) (string, model.NameQuality) {
	q := model.NameClean
	for _, r := range rules {
		var ok bool
		v, q, ok = r.Apply(v, q)
		if !ok {
			break
		}
	}
	return v, q
}

var (
	firstNameSep = regexp.MustCompile(`(?i)[-&,*^/]|\(| and | or `)
	lastNameSep  = regexp.MustCompile(`[-,*^/]`)
	whitespace   = regexp.MustCompile(`\s`)
	apostropheAt = regexp.MustCompile(`'\s|@`)
	digit        = regexp.MustCompile(`\d`)
	lastNameMark = regexp.MustCompile(`[@&)]`)
	businessWord = regexp.MustCompile(`\b(?:Auto|Car|Inc|Town)\b`)
)

// businessKeywords are substrings that mark a name field as holding a company.
var businessKeywords = []string{
	"Associates", "Auto Body", "Autobody", "Center", "Company", "Corp", "Dept",
	"Enterprise", "Inc.", "Insurance", "Landscap", "LLC", "Motor", "Office",
	"Rental", "Repair", "Salvage", "Service", "Supply", "Tire", "Towing",
}

const (
	maxFirstNameLen = 12
	maxLastNameLen  = 14
)

func always(string) bool { return true }

func runeLen(v string) int { return utf8.RuneCountInString(strings.TrimSpace(v)) }

func hasSpace(v string) bool { return strings.Contains(v, " ") }

func tooShort(v string) bool { return runeLen(v) <= 1 }

func digitOrPossessive(v string) bool {
	return digit.MatchString(v) || strings.Contains(v, "'S ") || strings.Contains(v, "'s ")
}

// FirstNameRules is the ordered chain applied to first names.
var FirstNameRules = []NameRule{
	{Name: "trim", Kind: RulePass, Match: always, Transform: strings.TrimSpace},
	{Name: "split-separator", Kind: RuleSplit, Match: firstNameSep.MatchString, Transform: func(v string) string {
		return strings.TrimSpace(v[:firstNameSep.FindStringIndex(v)[0]])
	}},
	{Name: "apostrophe-or-at", Kind: RuleReject, Match: apostropheAt.MatchString},
	{Name: "too-many-words", Kind: RuleReject, Match: func(v string) bool {
		return len(whitespace.Split(strings.TrimSpace(v), -1)) > 2
	}},
	{Name: "too-short", Kind: RuleReject, Match: tooShort},
	{Name: "digit-or-possessive", Kind: RuleReject, Match: digitOrPossessive},
	{Name: "business-keyword", Kind: RuleReject, Match: func(v string) bool {
		for _, k := range businessKeywords {
			if strings.Contains(v, k) {
				return true
			}
		}
		return false
	}},
	{Name: "business-word", Kind: RuleReject, Match: businessWord.MatchString},
	{Name: "too-long", Kind: RuleReject, Match: func(v string) bool { return runeLen(v) > maxFirstNameLen }},
	{Name: "first-token", Kind: RulePass, Match: hasSpace, Transform: func(v string) string {
		return strings.Split(v, " ")[0]
	}},
	{Name: "short-token", Kind: RuleReject, Match: tooShort},
}

// LastNameRules is the ordered chain applied to last names.
var LastNameRules = []NameRule{
	{Name: "trim", Kind: RulePass, Match: always, Transform: strings.TrimSpace},
	{Name: "split-separator", Kind: RuleSplit, Match: lastNameSep.MatchString, Transform: func(v string) string {
		parts := lastNameSep.Split(v, -1)
		kept := strings.TrimSpace(parts[len(parts)-1])
		if kept == "" {
			kept = strings.TrimSpace(parts[0])
		}
		if strings.Contains(kept, " OR ") {
			kept = strings.TrimSpace(strings.Split(kept, " OR ")[1])
		}
		return kept
	}},
	{Name: "symbol", Kind: RuleReject, Match: lastNameMark.MatchString},
	{Name: "too-short", Kind: RuleReject, Match: tooShort},
	{Name: "digit-or-possessive", Kind: RuleReject, Match: digitOrPossessive},
	{Name: "dotted", Kind: RuleReject, Match: func(v string) bool { return len(strings.Split(v, ".")) > 2 }},
	{Name: "too-long", Kind: RuleReject, Match: func(v string) bool { return runeLen(v) > maxLastNameLen }},
	{Name: "last-token", Kind: RulePass, Match: hasSpace, Transform: func(v string) string {
		tokens := strings.Split(v, " ")
		return tokens[len(tokens)-1]
	}},
	{Name: "short-token", Kind: RuleReject, Match: tooShort},
}

// NameStats counts the outcome of name normalization.
type NameStats struct {
	Input     int `json:"input" yaml:"input"`
	Clean     int `json:"clean" yaml:"clean"`
	Rederived int `json:"rederived" yaml:"rederived"`
	Unusable  int `json:"unusable" yaml:"unusable"`
}

// NormalizeName derives FirstName and LastName from the raw name fields and
// tags the record. Raw fields are filled from the current names when empty,
// so normalizing an already-normalized record is a no-op. An existing tag is
// never downgraded.
func NormalizeName(c model.Customer) model.Customer {
	if c.RawFirstName == "" {
		c.RawFirstName = c.FirstName
	}
	if c.RawLastName == "" {
		c.RawLastName = c.LastName
	}

	first, fq := ApplyRules(c.RawFirstName, FirstNameRules)
	last, lq := ApplyRules(c.RawLastName, LastNameRules)

	c.FirstName = first
	c.LastName = last
	c.NameQuality = c.NameQuality.Worst(fq.Worst(lq))
	return c
}

// NormalizeNames normalizes every record and drops the unusable ones.
func NormalizeNames(records []model.Customer) ([]model.Customer, NameStats) {
	stats := NameStats{Input: len(records)}
	out := make([]model.Customer, 0, len(records))
	for _, c := range records {
		n := NormalizeName(c)
		switch n.NameQuality {
		case model.NameUnusable:
			stats.Unusable++
			continue
		case model.NameRederived:
			stats.Rederived++
		default:
			stats.Clean++
		}
		out = append(out, n)
	}
	return out, stats
}
