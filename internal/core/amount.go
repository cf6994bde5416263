package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Outcome is the tagged result of parsing one amount cell. The pipeline
// favors a complete report over failing on a bad cell, so parse
// failures degrade to a zero value; Defaulted lets callers count how
// often that happened instead of losing the information.
type Outcome struct {
	Value     float64
	Defaulted bool
	Reason    string
}

var amountCleaner = strings.NewReplacer(
	" ", "",
	" ", "", // non-breaking space
	" ", "", // narrow non-breaking space
	"\t", "",
	",", ".",
)

// ParseAmount converts a heterogeneous amount cell into a float.
// Thousands separators (plain and non-breaking spaces) are stripped
// and a decimal comma becomes a decimal point before a strict numeric
// parse. It is total: any input yields a finite value, never an error.
func ParseAmount(cell string) Outcome {
	cleaned := amountCleaner.Replace(strings.TrimSpace(cell))
	if cleaned == "" {
		return Outcome{Defaulted: true, Reason: "empty"}
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return Outcome{Defaulted: true, Reason: "not numeric"}
	}
	return Outcome{Value: d.InexactFloat64()}
}

// FormatAmount renders a value with a space thousands separator.
// Exact integers drop the decimals entirely, everything else keeps
// exactly two. This is a fixed display policy, not locale-driven.
//
//	FormatAmount(0)         == "0"
//	FormatAmount(1234567)   == "1 234 567"
//	FormatAmount(1234.5)    == "1 234.50"
func FormatAmount(value float64) string {
	if value == 0 {
		return "0"
	}
	d := decimal.NewFromFloat(value)
	neg := d.IsNegative()
	abs := d.Abs()

	var out string
	if abs.IsInteger() {
		out = groupThousands(abs.StringFixed(0))
	} else {
		fixed := abs.StringFixed(2)
		dot := strings.IndexByte(fixed, '.')
		out = groupThousands(fixed[:dot]) + fixed[dot:]
	}
	if neg {
		return "-" + out
	}
	return out
}

// FormatWhole rounds to a whole number before formatting, matching the
// KPI cards that never show kopecks.
func FormatWhole(value float64) string {
	return FormatAmount(decimal.NewFromFloat(value).Round(0).InexactFloat64())
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	b.Grow(n + n/3)
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
