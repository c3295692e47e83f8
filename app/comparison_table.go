package app

import (
	"fmt"
	"sort"

	"apareport/domain/stats"
	"apareport/internal/numfmt"
	"apareport/ports"
)

var (
	estimateOptions = numfmt.Options{Digits: 2, AllowAboveOne: true, AllowZero: true}
	r2Options       = numfmt.Options{Digits: 2, AllowZero: true}
)

// BuildComparisonTable assembles the coefficient and fit-statistic rows of
// models, which must already be in hierarchy order. Columns are "Model 1"
// through "Model k"; a model lacking a term gets an empty cell. Delta rows
// compare each column with the previous one, so their first cell is empty.
func BuildComparisonTable(models []ports.FittedModel) *stats.ComparisonTable {
	terms := termUnion(models)

	table := &stats.ComparisonTable{
		RowLabels: append(append([]string(nil), terms...), stats.SummaryLabels...),
		Columns:   make([]string, len(models)),
		Cells:     make([][]string, 0, len(terms)+len(stats.SummaryLabels)),
		NumTerms:  len(terms),
	}
	for j := range models {
		table.Columns[j] = fmt.Sprintf("Model %d", j+1)
	}

	for _, term := range terms {
		row := make([]string, len(models))
		for j, m := range models {
			for _, c := range m.Coefficients() {
				if c.Term == term {
					row[j] = numfmt.Number(c.Estimate, estimateOptions) + " " + numfmt.Bracket(c.ConfLow, c.ConfHigh, estimateOptions)
					break
				}
			}
		}
		table.Cells = append(table.Cells, row)
	}

	fits := make([]stats.FitStatistics, len(models))
	for j, m := range models {
		fits[j] = m.Fit()
	}

	fitRow := func(format func(stats.FitStatistics) string) []string {
		row := make([]string, len(fits))
		for j, f := range fits {
			row[j] = format(f)
		}
		return row
	}
	deltaRow := func(value func(stats.FitStatistics) float64, o numfmt.Options) []string {
		row := make([]string, len(fits))
		for j := 1; j < len(fits); j++ {
			row[j] = numfmt.Number(value(fits[j])-value(fits[j-1]), o)
		}
		return row
	}

	r2 := func(f stats.FitStatistics) float64 { return f.RSquared }
	aic := func(f stats.FitStatistics) float64 { return f.AIC }
	bic := func(f stats.FitStatistics) float64 { return f.BIC }

	table.Cells = append(table.Cells,
		fitRow(func(f stats.FitStatistics) string { return numfmt.Number(f.RSquared, r2Options) }),
		fitRow(func(f stats.FitStatistics) string { return numfmt.Stat(f.F) }),
		fitRow(func(f stats.FitStatistics) string { return numfmt.DF(f.Df) }),
		fitRow(func(f stats.FitStatistics) string { return numfmt.DF(f.DfRes) }),
		fitRow(func(f stats.FitStatistics) string { return numfmt.PCell(f.PValue) }),
		fitRow(func(f stats.FitStatistics) string { return numfmt.Stat(f.AIC) }),
		fitRow(func(f stats.FitStatistics) string { return numfmt.Stat(f.BIC) }),
		deltaRow(r2, r2Options),
		deltaRow(aic, estimateOptions),
		deltaRow(bic, estimateOptions),
	)
	return table
}

// termUnion lists every coefficient term once. Models are visited by
// ascending term count (ties in hierarchy order) so shared terms lead and
// each model's additions follow in its own coefficient order.
func termUnion(models []ports.FittedModel) []string {
	coefs := make([][]stats.Coefficient, len(models))
	order := make([]int, len(models))
	for i, m := range models {
		coefs[i] = m.Coefficients()
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return len(coefs[order[a]]) < len(coefs[order[b]])
	})

	seen := make(map[string]bool)
	var terms []string
	for _, i := range order {
		for _, c := range coefs[i] {
			if !seen[c.Term] {
				seen[c.Term] = true
				terms = append(terms, c.Term)
			}
		}
	}
	return terms
}
