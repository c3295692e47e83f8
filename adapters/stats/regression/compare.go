package regression

import (
	"fmt"
	"math"

	"apareport/domain/core"
	"apareport/domain/stats"
	"apareport/ports"

	"gonum.org/v1/gonum/stat/distuv"
)

// CompareNested tests each adjacent pair of a model hierarchy with an F test
// on the change in residual sum of squares. As in a joint ANOVA of several
// linear models, the error scale and denominator df come from the model with
// the fewest residual df. Each row is keyed by the larger model's name.
func CompareNested(models []ports.FittedModel) ([]stats.ComparisonRow, error) {
	if len(models) < 2 {
		return nil, core.NewInputShapeError("model comparison", fmt.Sprintf("need at least two models, got %d", len(models)))
	}

	if err := SameObservations(models); err != nil {
		return nil, err
	}

	largest := models[0].Fit()
	for _, m := range models[1:] {
		if f := m.Fit(); f.DfRes < largest.DfRes {
			largest = f
		}
	}
	if largest.DfRes <= 0 {
		return nil, core.NewInsufficientDataError("residual df of the largest model", int(largest.DfRes), 1)
	}
	scale := largest.RSS / largest.DfRes

	rows := make([]stats.ComparisonRow, 0, len(models)-1)
	for i := 1; i < len(models); i++ {
		prev, cur := models[i-1].Fit(), models[i].Fit()
		df := prev.DfRes - cur.DfRes
		row := stats.ComparisonRow{
			Term:      models[i].Name(),
			Df:        math.Abs(df),
			DfRes:     largest.DfRes,
			Statistic: math.NaN(),
			PValue:    math.NaN(),
			DeltaR2:   cur.RSquared - prev.RSquared,
		}
		if df != 0 && scale > 0 {
			row.Statistic = ((prev.RSS - cur.RSS) / df) / scale
			row.PValue = distuv.F{D1: row.Df, D2: largest.DfRes}.Survival(row.Statistic)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// SameObservations fails unless every model was fitted to the same number of
// observations. Fit drops incomplete cases per model, so a predictor with
// missing values shrinks only the models that use it.
func SameObservations(models []ports.FittedModel) error {
	if len(models) == 0 {
		return nil
	}
	first := models[0]
	for _, m := range models[1:] {
		if m.Fit().NObs != first.Fit().NObs {
			return core.NewInputShapeError("model comparison",
				fmt.Sprintf("models are not all fitted to the same size of dataset (%s: %d, %s: %d)",
					first.Name(), first.Fit().NObs, m.Name(), m.Fit().NObs))
		}
	}
	return nil
}

// Comparer adapts CompareNested to ports.NestedComparer
type Comparer struct{}

var _ ports.NestedComparer = Comparer{}

// CompareNested implements ports.NestedComparer
func (Comparer) CompareNested(models []ports.FittedModel) ([]stats.ComparisonRow, error) {
	return CompareNested(models)
}
