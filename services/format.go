package services

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount formats amount with two decimals, thousands separators and
// the given currency symbol, e.g. FormatAmount(-1234.5, "$") = "-$1,234.50".
// Rounding is half away from zero on the decimal value, not the binary float.
func FormatAmount(amount float64, symbol string) string {
	d := decimal.NewFromFloat(amount).Round(2)
	negative := d.IsNegative()
	raw := d.Abs().StringFixed(2)

	parts := strings.SplitN(raw, ".", 2)
	result := symbol + applyGrouping(parts[0]) + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

// FormatQuantity renders a plain number: whole values without decimals,
// others with up to two.
func FormatQuantity(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsInteger() {
		return d.StringFixed(0)
	}
	return d.String()
}

// applyGrouping inserts a comma every three digits from the right.
func applyGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
