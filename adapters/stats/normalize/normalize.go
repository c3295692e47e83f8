// Package normalize converts the supported ANOVA result shapes into the
// canonical row schema: one row per effect, each carrying the sum of squares
// and degrees of freedom of its own error stratum.
package normalize

import (
	"fmt"
	"strings"

	"apareport/domain/core"
	"apareport/domain/stats"
	"apareport/ports"
)

// residualTerm names the error row of a one-way summary
const residualTerm = "Residuals"

// Normalize dispatches on the result shape. Warnings are non-fatal notices
// about adjustments made to the input.
func Normalize(result stats.AnovaResult) (stats.Table, []core.Warning, error) {
	switch r := result.(type) {
	case stats.AnovaTable:
		rows, err := fromAnovaTable(r, "ANOVA table")
		return stats.Table{Rows: rows}, nil, err
	case *stats.AnovaTable:
		if r == nil {
			return Normalize(nil)
		}
		return Normalize(*r)
	case stats.OneWaySummary:
		rows, err := fromOneWaySummary(r)
		return stats.Table{Rows: rows}, nil, err
	case *stats.OneWaySummary:
		if r == nil {
			return Normalize(nil)
		}
		return Normalize(*r)
	case stats.MultiStratum:
		rows, err := fromMultiStratum(r)
		return stats.Table{Rows: rows}, nil, err
	case *stats.MultiStratum:
		if r == nil {
			return Normalize(nil)
		}
		return Normalize(*r)
	case stats.SphericityAnova:
		return fromSphericity(r)
	case *stats.SphericityAnova:
		if r == nil {
			return Normalize(nil)
		}
		return Normalize(*r)
	case nil:
		return stats.Table{}, nil, core.NewInputShapeError("ANOVA result", "no result supplied")
	default:
		return stats.Table{}, nil, core.NewInputShapeError("ANOVA result", fmt.Sprintf("unrecognized shape %T", result))
	}
}

// fromAnovaTable treats the last row as the error stratum shared by all others
func fromAnovaTable(t stats.AnovaTable, what string) ([]stats.Row, error) {
	if len(t.Rows) < 2 {
		return nil, core.NewInputShapeError(what, fmt.Sprintf("need at least one effect and one error row, got %d rows", len(t.Rows)))
	}
	errRow := t.Rows[len(t.Rows)-1]
	return effectRows(t.Rows[:len(t.Rows)-1], errRow), nil
}

func effectRows(effects []stats.AnovaTableRow, errRow stats.AnovaTableRow) []stats.Row {
	rows := make([]stats.Row, 0, len(effects))
	for _, e := range effects {
		rows = append(rows, stats.Row{
			Term:      strings.TrimSpace(e.Term),
			SumSq:     e.SumSq,
			Df:        e.Df,
			SumSqErr:  errRow.SumSq,
			DfErr:     errRow.Df,
			Statistic: e.Statistic,
			PValue:    e.PValue,
		})
	}
	return rows
}

// fromOneWaySummary locates the residual row by name; summaries pad term
// names, so names are trimmed before matching. Falls back to the last row.
func fromOneWaySummary(s stats.OneWaySummary) ([]stats.Row, error) {
	if len(s.Rows) < 2 {
		return nil, core.NewInputShapeError("one-way summary", fmt.Sprintf("need at least one effect and one error row, got %d rows", len(s.Rows)))
	}
	errIdx := len(s.Rows) - 1
	for i, r := range s.Rows {
		if strings.TrimSpace(r.Term) == residualTerm {
			errIdx = i
			break
		}
	}
	effects := make([]stats.AnovaTableRow, 0, len(s.Rows)-1)
	effects = append(effects, s.Rows[:errIdx]...)
	effects = append(effects, s.Rows[errIdx+1:]...)
	return effectRows(effects, s.Rows[errIdx]), nil
}

// fromMultiStratum normalizes each stratum on its own and concatenates.
// A stratum holding only its error row has no effects to report.
// Term names are not disambiguated across strata.
func fromMultiStratum(m stats.MultiStratum) ([]stats.Row, error) {
	if len(m.Strata) == 0 {
		return nil, core.NewInputShapeError("repeated-measures ANOVA", "no strata")
	}
	var rows []stats.Row
	for _, stratum := range m.Strata {
		if len(stratum.Table.Rows) == 0 {
			return nil, core.NewInputShapeError("repeated-measures ANOVA", fmt.Sprintf("stratum %q is empty", stratum.Name))
		}
		if len(stratum.Table.Rows) == 1 {
			continue
		}
		stratumRows, err := fromAnovaTable(stratum.Table, fmt.Sprintf("stratum %q", stratum.Name))
		if err != nil {
			return nil, err
		}
		rows = append(rows, stratumRows...)
	}
	return rows, nil
}

// Normalizer adapts Normalize to ports.TableNormalizer
type Normalizer struct{}

var _ ports.TableNormalizer = Normalizer{}

// Normalize implements ports.TableNormalizer
func (Normalizer) Normalize(result stats.AnovaResult) (stats.Table, []core.Warning, error) {
	return Normalize(result)
}
