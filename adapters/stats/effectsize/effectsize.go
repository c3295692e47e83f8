// Package effectsize adds generalized and partial eta-squared to canonical
// ANOVA rows.
package effectsize

import (
	"strings"

	"apareport/domain/core"
	"apareport/domain/stats"
	"apareport/ports"
)

// Compute returns a copy of table with the requested measures filled in.
// observed lists measured (non-manipulated) factors; they enter the
// denominator of generalized eta-squared. Requesting no measure is valid and
// leaves the rows without effect sizes.
func Compute(table stats.Table, observed []string, measures ...stats.EffectSize) (stats.Table, error) {
	out := table.Clone()

	isObserved, err := observedRows(out, observed)
	if err != nil {
		return stats.Table{}, err
	}

	wantGES, wantPES := false, false
	for _, m := range measures {
		switch m {
		case stats.EffectGeneralized:
			wantGES = true
		case stats.EffectPartial:
			wantPES = true
		default:
			return stats.Table{}, core.NewInputShapeError("effect size", "unknown measure "+string(m))
		}
	}

	errSumSq := uniqueErrorSumSq(out)
	var observedSumSq float64
	for i, r := range out.Rows {
		if isObserved[i] {
			observedSumSq += r.SumSq
		}
	}

	for i := range out.Rows {
		r := &out.Rows[i]
		r.GES, r.PES = nil, nil
		if wantPES {
			pes := ratio(r.SumSq, r.SumSq+r.SumSqErr)
			r.PES = &pes
		}
		if wantGES {
			adjustment := observedSumSq
			if isObserved[i] {
				adjustment -= r.SumSq
			}
			ges := ratio(r.SumSq, r.SumSq+errSumSq+adjustment)
			r.GES = &ges
		}
	}
	return out, nil
}

// uniqueErrorSumSq sums each stratum's error sum of squares once
func uniqueErrorSumSq(table stats.Table) float64 {
	seen := make(map[float64]bool, len(table.Rows))
	var sum float64
	for _, r := range table.Rows {
		if seen[r.SumSqErr] {
			continue
		}
		seen[r.SumSqErr] = true
		sum += r.SumSqErr
	}
	return sum
}

// observedRows flags rows whose term contains an observed factor as a whole
// token. Every observed name must match at least one term.
func observedRows(table stats.Table, observed []string) ([]bool, error) {
	flags := make([]bool, len(table.Rows))
	for _, name := range observed {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		found := false
		for i, r := range table.Rows {
			if hasToken(r.Term, name) {
				flags[i] = true
				found = true
			}
		}
		if !found {
			return nil, core.NewMissingReferenceError("observed factor", name)
		}
	}
	return flags, nil
}

// hasToken splits composite terms ("a:b", "a*b") and compares whole factors
func hasToken(term, factor string) bool {
	tokens := strings.FieldsFunc(term, func(r rune) bool { return r == ':' || r == '*' })
	for _, tok := range tokens {
		if strings.TrimSpace(tok) == factor {
			return true
		}
	}
	return false
}

// ratio clamps to [0,1]; an empty denominator gives 0
func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	v := num / den
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Engine adapts Compute to ports.EffectSizeEngine
type Engine struct{}

var _ ports.EffectSizeEngine = Engine{}

// Compute implements ports.EffectSizeEngine
func (Engine) Compute(table stats.Table, observed []string, measures ...stats.EffectSize) (stats.Table, error) {
	return Compute(table, observed, measures...)
}
