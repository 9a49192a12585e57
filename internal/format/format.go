// Package format renders values the way every page of the application shows
// them: pt-BR timestamps, "R$" amounts and digit-only tax documents.
package format

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// TimestampLayout is DD/MM/YYYY HH:MM:SS.
const TimestampLayout = "02/01/2006 15:04:05"

// DateLayout is DD/MM/YYYY.
const DateLayout = "02/01/2006"

// zoned layouts carry an offset; the parsed instant is converted to the display zone.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"Mon, 02 Jan 2006 15:04:05 MST", // Flask's default datetime JSON encoding
}

// naive layouts have no offset and are read as wall-clock time in the display zone.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Currency renders an amount as "R$ 1234.56".
func Currency(amount decimal.Decimal) string {
	return "R$ " + amount.StringFixed(2)
}

// CurrencyFloat renders a float amount as "R$ 1234.56".
func CurrencyFloat(amount float64) string {
	return Currency(decimal.NewFromFloat(amount))
}

// ParseTimestamp parses the ISO-8601 variants the backend emits.
func ParseTimestamp(value string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.In(loc), true
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Timestamp renders an ISO-8601 string as "DD/MM/YYYY HH:MM:SS" in loc.
// Empty input renders empty; unparseable input is returned unchanged.
func Timestamp(value string, loc *time.Location) string {
	if value == "" {
		return ""
	}
	t, ok := ParseTimestamp(value, loc)
	if !ok {
		return value
	}
	return t.Format(TimestampLayout)
}

// Digits strips every non-digit from a CPF/CNPJ mask.
func Digits(document string) string {
	var b strings.Builder
	b.Grow(len(document))
	for _, r := range document {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Counter renders the record counter shown under every list.
func Counter(n int) string {
	return fmt.Sprintf("%d registro(s) encontrado(s)", n)
}
