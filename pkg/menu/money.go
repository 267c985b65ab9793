package menu

import (
	"fmt"
	"math"
	"strings"
)

// Money is an amount in minor currency units (agorot). Prices are exact, so
// arithmetic never goes through floating point.
type Money int64

// ParseMoney parses a non-negative decimal price with at most two fraction
// digits, e.g. "48", "4.5", "12.90".
func ParseMoney(raw string) (Money, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty price")
	}

	whole, frac, hasDot := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if hasDot && (frac == "" || len(frac) > 2) {
		return 0, fmt.Errorf("price %q must have one or two fraction digits", raw)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	var units int64
	for _, r := range whole + frac {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("price %q is not a non-negative number", raw)
		}
		if units > (math.MaxInt64-9)/10 {
			return 0, fmt.Errorf("price %q is too large", raw)
		}
		units = units*10 + int64(r-'0')
	}
	return Money(units), nil
}

// String renders the amount with two fraction digits.
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
