package prep

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// parseNumber reads a spreadsheet numeric cell. Decimal commas and space or
// no-break-space digit grouping are accepted.
func parseNumber(s string) (float64, bool) {
	d, ok := parseDecimal(s)
	if !ok {
		return 0, false
	}
	f, _ := d.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		case ',':
			return '.'
		default:
			return r
		}
	}, strings.TrimSpace(s))
	if clean == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// round2 rounds half away from zero to two decimals.
func round2(s string) (float64, bool) {
	d, ok := parseDecimal(s)
	if !ok {
		return 0, false
	}
	f, _ := d.Round(2).Float64()
	return f, true
}

// articleKey normalizes article identifiers so that "1042", "1042.0" and
// " 1042 " join to the same catalog entry.
func articleKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

// isFractional reports whether q has a non-zero fractional part.
func isFractional(q float64) bool {
	return math.Mod(q, 1) != 0
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
