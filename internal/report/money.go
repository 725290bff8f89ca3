package report

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultPrefix is the ASCII currency marker placed before every amount.
const DefaultPrefix = "Rs."

// Money renders amounts as plain ASCII strings such as "Rs.90,000.00".
type Money struct {
	Prefix   string
	Decimals int32
}

// DefaultMoney returns the formatter used when nothing is configured.
func DefaultMoney() Money {
	return Money{Prefix: DefaultPrefix, Decimals: 2}
}

// Format rounds v half away from zero and groups the integer part in
// thousands.
func (m Money) Format(v float64) string {
	return m.Prefix + Amount(v, m.Decimals)
}

// Amount formats v with the given number of decimals and thousands grouping
// but without a currency prefix.
func Amount(v float64, decimals int32) string {
	if decimals < 0 {
		decimals = 0
	}
	fixed := decimal.NewFromFloat(v).Round(decimals).StringFixed(decimals)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, hasFrac := strings.Cut(fixed, ".")
	if strings.Trim(whole, "0") == "" && strings.Trim(frac, "0") == "" {
		sign = ""
	}
	out := sign + group(whole)
	if hasFrac {
		out += "." + frac
	}
	return out
}

// Percent renders a percentage with the given precision, e.g. "12.50%".
func Percent(v float64, decimals int32) string {
	return decimal.NewFromFloat(v).Round(decimals).StringFixed(decimals) + "%"
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
