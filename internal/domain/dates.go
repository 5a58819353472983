package domain

import (
	"fmt"
	"time"
)

// DateLayout is the canonical wire format for leave dates.
const DateLayout = "2006-01-02"

// ParseDate parses a calendar date in the canonical YYYY-MM-DD form.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return t, nil
}

// InclusiveDays returns the whole-day span covered by [start, end], counting
// both endpoints, so a same-day request is 1 day. An inverted range clamps to
// 0 instead of going negative; callers treat 0 as an invalid request.
func InclusiveDays(start, end time.Time) int {
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 0 {
		return 0
	}
	return days
}
