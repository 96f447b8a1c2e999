package validation

import (
	"errors"
	"regexp"
	"time"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// ErrBadDate is returned for date strings that are neither YYYY-MM-DD nor RFC 3339.
var ErrBadDate = errors.New("invalid date format, expected YYYY-MM-DD")

// ParseDate accepts the date formats the API takes: plain dates for validity
// intervals and transaction dates, full RFC 3339 timestamps for "as of" queries.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, ErrBadDate
}

// ParseOptionalDate parses s when non-empty; empty means "not provided".
func ParseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// IsValidAllocationPct bounds the fraction of capacity one assignment may claim.
func IsValidAllocationPct(pct int) bool {
	return pct > 0 && pct <= 100
}

// IsValidTxType reports whether s is one of the ledger transaction types.
func IsValidTxType(s string) bool {
	return s == "ENCUMBER" || s == "RELEASE" || s == "ADJUST"
}

// IsValidAssignmentType reports whether s is a known assignment type.
func IsValidAssignmentType(s string) bool {
	return s == "PRIMARY" || s == "ACTING" || s == "SECONDARY"
}
