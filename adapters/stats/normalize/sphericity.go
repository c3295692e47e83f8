package normalize

import (
	"fmt"
	"strings"

	"apareport/domain/core"
	"apareport/domain/stats"
)

// fromSphericity applies the selected correction: df and df_err are scaled by
// epsilon and the corrected p-value replaces the uncorrected one. Terms without
// a correction entry (one-df effects) pass through unchanged.
func fromSphericity(s stats.SphericityAnova) (stats.Table, []core.Warning, error) {
	correction := s.Correction
	if correction == "" {
		correction = stats.CorrectionNone
	}
	switch correction {
	case stats.CorrectionNone, stats.CorrectionGG, stats.CorrectionHF:
	default:
		return stats.Table{}, nil, core.NewInputShapeError("sphericity correction", fmt.Sprintf("unknown mode %q (want none, GG or HF)", s.Correction))
	}
	if len(s.Univariate) == 0 {
		return stats.Table{}, nil, core.NewInputShapeError("multivariate ANOVA", "no univariate rows")
	}

	byTerm := make(map[string]stats.SphericityCorrection, len(s.Corrections))
	for _, c := range s.Corrections {
		byTerm[strings.TrimSpace(c.Term)] = c
	}

	var warnings []core.Warning
	rows := make([]stats.Row, 0, len(s.Univariate))
	for _, u := range s.Univariate {
		row := stats.Row{
			Term:      strings.TrimSpace(u.Term),
			SumSq:     u.SumSq,
			Df:        u.Df,
			SumSqErr:  u.SumSqErr,
			DfErr:     u.DfErr,
			Statistic: u.Statistic,
			PValue:    u.PValue,
		}
		c, ok := byTerm[row.Term]
		if ok && correction != stats.CorrectionNone {
			var epsilon, p float64
			switch correction {
			case stats.CorrectionGG:
				epsilon, p = c.GGEpsilon, c.GGPValue
			case stats.CorrectionHF:
				epsilon, p = c.HFEpsilon, c.HFPValue
				if epsilon > 1 {
					warnings = append(warnings, core.NewWarning(core.WarnEpsilonClamped,
						"Huynh-Feldt epsilon %.4f for term %q exceeds 1 and was set to 1", epsilon, row.Term))
					epsilon = 1
				}
			}
			row.Df *= epsilon
			row.DfErr *= epsilon
			row.PValue = p
		}
		rows = append(rows, row)
	}
	return stats.Table{Rows: rows}, warnings, nil
}
