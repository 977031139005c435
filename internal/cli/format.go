// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatMoney formats an amount with a currency symbol, thousands separators
// and two decimals. e.g., 1234.5 -> "$1,234.50"
func FormatMoney(v float64, symbol string) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	cents := int64(math.Round(v * 100))
	return fmt.Sprintf("%s%s%s.%02d", sign, symbol, humanize.Comma(cents/100), cents%100)
}

// FormatCompactMoney drops the cents for large amounts.
// e.g., 12345.67 -> "$12,346", 42.1 -> "$42.10"
func FormatCompactMoney(v float64, symbol string) string {
	if math.Abs(v) >= 1000 {
		sign := ""
		if v < 0 {
			sign = "-"
			v = -v
		}
		return sign + symbol + humanize.Comma(int64(math.Round(v)))
	}
	return FormatMoney(v, symbol)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatPercent formats a 0-100 value as a whole percentage.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.0f%%", v)
}

// FormatTrend formats a signed percentage change with a direction arrow.
// e.g., 12.34 -> "▲ +12.3%", -4 -> "▼ -4.0%", 0 -> "● 0.0%"
func FormatTrend(pct float64) string {
	switch {
	case pct > 0.05:
		return fmt.Sprintf("▲ %+.1f%%", pct)
	case pct < -0.05:
		return fmt.Sprintf("▼ %+.1f%%", pct)
	default:
		return "● 0.0%"
	}
}

// FormatMonths renders a month count. e.g., 1 -> "1 month", 14 -> "1y 2m"
func FormatMonths(n int) string {
	switch {
	case n <= 0:
		return "now"
	case n == 1:
		return "1 month"
	case n < 12:
		return fmt.Sprintf("%d months", n)
	case n%12 == 0:
		return fmt.Sprintf("%dy", n/12)
	default:
		return fmt.Sprintf("%dy %dm", n/12, n%12)
	}
}

// FormatBytes formats a size for status lines. e.g., 2048 -> "2.0 kB"
func FormatBytes(n int64) string {
	if n < 0 {
		return "0 B"
	}
	return humanize.Bytes(uint64(n))
}

// Title capitalizes a snake_case label. e.g., "insufficient_data" -> "Insufficient data"
func Title(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
