// Package numfmt renders numbers the way APA style (6th edition) prints them
// in running text: fixed decimals, no leading zero for quantities that cannot
// exceed one, "< .001"-style thresholds instead of zero, and p-values that
// always carry their relator.
package numfmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Options control how a single number is printed
type Options struct {
	Digits int

	// AllowAboveOne keeps the leading zero ("0.23"). When false the value is
	// treated as bounded by one and prints as ".23".
	AllowAboveOne bool

	// AllowZero prints values that round to zero as "0.00". When false they
	// print as a comparison with the smallest displayable value ("< .01").
	AllowZero bool

	// CapAtOne prints values that round to ±1 as "> .99" / "< -.99". Only
	// applies when AllowAboveOne is false.
	CapAtOne bool
}

// FormatNumber is the plain four-argument form of Number
func FormatNumber(value float64, digits int, allowAboveOne, allowZero bool) string {
	return Number(value, Options{Digits: digits, AllowAboveOne: allowAboveOne, AllowZero: allowZero})
}

// Number formats value according to o. Rounding is half away from zero on
// the shortest decimal representation of value, so 0.125 prints as ".13".
func Number(value float64, o Options) string {
	switch {
	case math.IsNaN(value):
		return "NA"
	case math.IsInf(value, 1):
		return "Inf"
	case math.IsInf(value, -1):
		return "-Inf"
	}
	digits := o.Digits
	if digits < 0 {
		digits = 0
	}

	rounded := decimal.NewFromFloat(value).Round(int32(digits))
	if rounded.IsZero() {
		if !o.AllowZero {
			smallest := smallestDisplayable(digits, o.AllowAboveOne)
			if value < 0 {
				return "> -" + smallest
			}
			return "< " + smallest
		}
		rounded = decimal.Zero
	}

	if !o.AllowAboveOne && o.CapAtOne && rounded.Abs().GreaterThanOrEqual(decimal.NewFromInt(1)) {
		nines := "." + strings.Repeat("9", digits)
		if rounded.Sign() < 0 {
			return "< -" + nines
		}
		return "> " + nines
	}

	s := rounded.StringFixed(int32(digits))
	if !o.AllowAboveOne {
		s = dropLeadingZero(s)
	}
	return s
}

// smallestDisplayable is 10^-digits rendered in the same style
func smallestDisplayable(digits int, allowAboveOne bool) string {
	s := decimal.New(1, int32(-digits)).StringFixed(int32(digits))
	if !allowAboveOne {
		s = dropLeadingZero(s)
	}
	return s
}

func dropLeadingZero(s string) string {
	switch {
	case strings.HasPrefix(s, "0."):
		return s[1:]
	case strings.HasPrefix(s, "-0."):
		return "-" + s[2:]
	}
	return s
}

// P formats a p-value with three decimals and its relator already embedded:
// "< .001", "= .040", "> .999".
func P(p float64) string {
	switch {
	case math.IsNaN(p):
		return "= NA"
	case p < 0.001:
		return "< .001"
	case p > 0.999:
		return "> .999"
	}
	return "= " + Number(p, Options{Digits: 3, AllowZero: true})
}

// PCell is P without the equality relator, for table cells
func PCell(p float64) string {
	return strings.TrimPrefix(P(p), "= ")
}

// CI formats an interval as "90% CI [.05, .25]"
func CI(lower, upper, level float64, allowAboveOne bool) string {
	o := Options{Digits: 2, AllowAboveOne: allowAboveOne, AllowZero: true}
	return fmt.Sprintf("%s%% CI [%s, %s]", Percent(level), Number(lower, o), Number(upper, o))
}

// Bracket formats an interval without its level, "[.05, .25]"
func Bracket(lower, upper float64, o Options) string {
	return fmt.Sprintf("[%s, %s]", Number(lower, o), Number(upper, o))
}

// Percent renders a confidence level as a percentage without trailing zeros
func Percent(level float64) string {
	return decimal.NewFromFloat(level).Mul(decimal.NewFromInt(100)).Round(2).String()
}

// DF prints degrees of freedom: whole numbers without decimals, corrected
// (fractional) df with two.
func DF(df float64) string {
	if math.IsNaN(df) || math.IsInf(df, 0) {
		return Number(df, Options{})
	}
	if df == math.Trunc(df) {
		return strconv.FormatFloat(df, 'f', 0, 64)
	}
	return Number(df, Options{Digits: 2, AllowAboveOne: true, AllowZero: true})
}

// Stat prints a test statistic with two decimals
func Stat(v float64) string {
	return Number(v, Options{Digits: 2, AllowAboveOne: true, AllowZero: true})
}

// WithRelator joins a label and a formatted value with " = " unless the value
// already starts with a relator, so "< .01" never becomes "= < .01".
func WithRelator(label, value string) string {
	if HasRelator(value) {
		return label + " " + value
	}
	return label + " = " + value
}

// HasRelator reports whether a formatted value already starts with <, > or =
func HasRelator(value string) bool {
	v := strings.TrimSpace(value)
	return strings.HasPrefix(v, "<") || strings.HasPrefix(v, ">") || strings.HasPrefix(v, "=")
}
