// Package money holds presentation helpers for Colombian pesos. Amounts are
// whole pesos (COP has no practical minor unit), carried as int64 everywhere.
package money

import (
	"strconv"
	"strings"
)

// FormatCOP renders an amount as "$1.234.567" with dots as thousands
// separators. Negative amounts keep the sign in front of the currency
// symbol: "-$1.500".
func FormatCOP(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteByte('$')

	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte('.')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// ParseAmount converts a loosely formatted amount string ("450000",
// "450,000", " 450000 ", "12500.75") to whole pesos, returning 0 for
// anything unparseable. The sales ledger emits amounts in all of these
// shapes depending on the upstream account settings.
func ParseAmount(raw string) int64 {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if s == "" {
		return 0
	}
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		s = s[:dot]
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
