package app

import (
	"fmt"

	"apareport/internal/numfmt"
)

// brackets returns the df delimiters. Inside parentheses APA uses square
// brackets so the df list does not nest round ones.
func brackets(inParen bool) (string, string) {
	if inParen {
		return "[", "]"
	}
	return "(", ")"
}

// fString renders "F(df, df_err) = F, p = .040"
func fString(df, dfErr, statistic, p float64, inParen bool) string {
	lb, rb := brackets(inParen)
	return fmt.Sprintf("F%s%s, %s%s = %s, p %s",
		lb, numfmt.DF(df), numfmt.DF(dfErr), rb,
		numfmt.Stat(statistic), numfmt.P(p))
}

// effectSizeOptions prints eta-squared values: three decimals, no leading
// zero, "< .001" for zero and "> .999" for values rounding to one
var effectSizeOptions = numfmt.Options{Digits: 3, CapAtOne: true}

// deltaR2Options prints ΔR² point estimates: no upper cap, "< .01" for zero
var deltaR2Options = numfmt.Options{Digits: 2}

const (
	labelGES     = "η²_G"
	labelPES     = "η²_p"
	labelDeltaR2 = "ΔR²"
)
