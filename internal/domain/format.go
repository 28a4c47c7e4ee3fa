package domain

import "fmt"

// FormatUSD renders a dollar amount with K/M/B suffixes for readability,
// e.g. 5300 -> "$5.3K", 1200000 -> "$1.2M". Values under 1000 keep two
// decimals only when fractional.
func FormatUSD(v float64) string {
	neg := ""
	if v < 0 {
		neg = "-"
		v = -v
	}
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%s$%.1fB", neg, v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%s$%.1fM", neg, v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%s$%.1fK", neg, v/1e3)
	case v == float64(int64(v)):
		return fmt.Sprintf("%s$%d", neg, int64(v))
	default:
		return fmt.Sprintf("%s$%.2f", neg, v)
	}
}
