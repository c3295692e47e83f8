package normalize

import (
	"testing"

	"apareport/domain/core"
	"apareport/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoGroupTable() stats.AnovaTable {
	return stats.AnovaTable{Rows: []stats.AnovaTableRow{
		{Term: "group", Df: 1, SumSq: 12.5, MeanSq: 12.5, Statistic: 4.32, PValue: 0.052},
		{Term: "Residuals", Df: 18, SumSq: 52.1, MeanSq: 2.894},
	}}
}

func TestNormalize_AnovaTable(t *testing.T) {
	table, warnings, err := Normalize(twoGroupTable())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, table.Rows, 1)

	row := table.Rows[0]
	assert.Equal(t, "group", row.Term)
	assert.Equal(t, 1.0, row.Df)
	assert.Equal(t, 18.0, row.DfErr)
	assert.Equal(t, 52.1, row.SumSqErr)
	assert.Equal(t, 4.32, row.Statistic)
	assert.Equal(t, 0.052, row.PValue)
}

func TestNormalize_PointerAndNil(t *testing.T) {
	tbl := twoGroupTable()
	table, _, err := Normalize(&tbl)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)

	_, _, err = Normalize(nil)
	assert.True(t, core.IsInputShapeError(err))

	var nilTable *stats.AnovaTable
	_, _, err = Normalize(nilTable)
	assert.True(t, core.IsInputShapeError(err))
}

func TestNormalize_TooFewRows(t *testing.T) {
	_, _, err := Normalize(stats.AnovaTable{Rows: []stats.AnovaTableRow{{Term: "Residuals", Df: 18, SumSq: 1}}})
	assert.True(t, core.IsInputShapeError(err))

	_, _, err = Normalize(stats.OneWaySummary{})
	assert.True(t, core.IsInputShapeError(err))
}

func TestNormalize_OneWaySummary(t *testing.T) {
	summary := stats.OneWaySummary{Rows: []stats.AnovaTableRow{
		{Term: "Residuals   ", Df: 27, SumSq: 30},
		{Term: "dose        ", Df: 2, SumSq: 10, Statistic: 4.5, PValue: 0.02},
	}}
	table, _, err := Normalize(summary)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "dose", table.Rows[0].Term)
	assert.Equal(t, 30.0, table.Rows[0].SumSqErr)
	assert.Equal(t, 27.0, table.Rows[0].DfErr)
}

func TestNormalize_MultiStratum(t *testing.T) {
	m := stats.MultiStratum{Strata: []stats.Stratum{
		{Name: "Error: id", Table: stats.AnovaTable{Rows: []stats.AnovaTableRow{
			{Term: "group", Df: 1, SumSq: 8, Statistic: 2, PValue: 0.17},
			{Term: "Residuals", Df: 10, SumSq: 40},
		}}},
		{Name: "Error: id:time", Table: stats.AnovaTable{Rows: []stats.AnovaTableRow{
			{Term: "time", Df: 2, SumSq: 20, Statistic: 10, PValue: 0.001},
			{Term: "group:time", Df: 2, SumSq: 4, Statistic: 2, PValue: 0.16},
			{Term: "Residuals", Df: 20, SumSq: 20},
		}}},
		{Name: "Error: Within", Table: stats.AnovaTable{Rows: []stats.AnovaTableRow{
			{Term: "Residuals", Df: 5, SumSq: 3},
		}}},
	}}
	table, _, err := Normalize(m)
	require.NoError(t, err)
	assert.Equal(t, []string{"group", "time", "group:time"}, table.Terms())
	assert.Equal(t, 40.0, table.Rows[0].SumSqErr)
	assert.Equal(t, 20.0, table.Rows[1].SumSqErr)
	assert.Equal(t, 20.0, table.Rows[2].DfErr)

	_, _, err = Normalize(stats.MultiStratum{})
	assert.True(t, core.IsInputShapeError(err))

	_, _, err = Normalize(stats.MultiStratum{Strata: []stats.Stratum{{Name: "Error: id"}}})
	assert.True(t, core.IsInputShapeError(err))
}

func sphericityInput(correction stats.Correction, hfEpsilon float64) stats.SphericityAnova {
	return stats.SphericityAnova{
		Univariate: []stats.UnivariateRow{
			{Term: "group", SumSq: 8, Df: 1, SumSqErr: 40, DfErr: 10, Statistic: 2, PValue: 0.17},
			{Term: "time", SumSq: 20, Df: 2, SumSqErr: 20, DfErr: 20, Statistic: 10, PValue: 0.001},
		},
		Corrections: []stats.SphericityCorrection{
			{Term: "time", GGEpsilon: 0.75, GGPValue: 0.003, HFEpsilon: hfEpsilon, HFPValue: 0.002},
		},
		Correction: correction,
	}
}

func TestNormalize_SphericityGG(t *testing.T) {
	table, warnings, err := Normalize(sphericityInput(stats.CorrectionGG, 0.8))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, 1.0, table.Rows[0].Df, "uncorrected term passes through")
	assert.Equal(t, 0.17, table.Rows[0].PValue)

	assert.InDelta(t, 1.5, table.Rows[1].Df, 1e-12)
	assert.InDelta(t, 15.0, table.Rows[1].DfErr, 1e-12)
	assert.Equal(t, 0.003, table.Rows[1].PValue)
}

func TestNormalize_SphericityHFClamp(t *testing.T) {
	table, warnings, err := Normalize(sphericityInput(stats.CorrectionHF, 1.12))
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, core.WarnEpsilonClamped, warnings[0].Code)

	assert.Equal(t, 2.0, table.Rows[1].Df)
	assert.Equal(t, 20.0, table.Rows[1].DfErr)
	assert.Equal(t, 0.002, table.Rows[1].PValue)
}

func TestNormalize_SphericityHFBelowOne(t *testing.T) {
	table, warnings, err := Normalize(sphericityInput(stats.CorrectionHF, 0.9))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.InDelta(t, 1.8, table.Rows[1].Df, 1e-12)
	assert.InDelta(t, 18.0, table.Rows[1].DfErr, 1e-12)
}

func TestNormalize_SphericityNone(t *testing.T) {
	table, _, err := Normalize(sphericityInput("", 0.9))
	require.NoError(t, err)
	assert.Equal(t, 2.0, table.Rows[1].Df)
	assert.Equal(t, 0.001, table.Rows[1].PValue)
}

func TestNormalize_SphericityUnknownMode(t *testing.T) {
	_, _, err := Normalize(sphericityInput("LB", 0.9))
	require.Error(t, err)
	assert.True(t, core.IsInputShapeError(err))
	assert.Contains(t, err.Error(), `"LB"`)
}
