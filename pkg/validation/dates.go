package validation

import (
	"strings"
	"time"
)

// ParseDate reads a YYYY-MM-DD bound. Empty input yields the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}

// ParseMonth reads a YYYY-MM month and returns its first day. Empty input
// yields the zero time.
func ParseMonth(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01", s)
}
