package app

import (
	"testing"

	"apareport/domain/stats"
	"apareport/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildComparisonTable_Shape(t *testing.T) {
	m1, m2, m3 := nestedFakes(t)
	table := BuildComparisonTable([]ports.FittedModel{m1, m2, m3})

	assert.Equal(t, []string{"Model 1", "Model 2", "Model 3"}, table.Columns)
	assert.Equal(t, 4, table.NumTerms)
	require.Len(t, table.Cells, 4+len(stats.SummaryLabels))
	require.Len(t, table.RowLabels, len(table.Cells))
	for _, row := range table.Cells {
		assert.Len(t, row, 3)
	}
	assert.Equal(t, []string{"(Intercept)", "x1", "x2", "x3"}, table.RowLabels[:4])
	assert.Equal(t, stats.SummaryLabels, table.RowLabels[4:])
}

func TestBuildComparisonTable_Cells(t *testing.T) {
	m1, m2, m3 := nestedFakes(t)
	table := BuildComparisonTable([]ports.FittedModel{m1, m2, m3})

	tests := []struct {
		label, column, want string
	}{
		{"x1", "Model 1", "0.50 [0.10, 0.90]"},
		{"x3", "Model 3", "-0.20 [-0.60, 0.20]"},
		{"x3", "Model 1", ""},
		{"x2", "Model 1", ""},
		{stats.LabelR2, "Model 1", ".10"},
		{stats.LabelF, "Model 2", "7.83"},
		{stats.LabelDf, "Model 3", "3"},
		{stats.LabelDfRes, "Model 3", "46"},
		{stats.LabelP, "Model 1", ".150"},
		{stats.LabelP, "Model 3", "< .001"},
		{stats.LabelAIC, "Model 2", "113.00"},
		{stats.LabelBIC, "Model 3", "121.31"},
		{stats.LabelDeltaR2, "Model 1", ""},
		{stats.LabelDeltaR2, "Model 2", ".15"},
		{stats.LabelDeltaR2, "Model 3", ".05"},
		{stats.LabelDeltaAIC, "Model 2", "-7.50"},
		{stats.LabelDeltaBIC, "Model 3", "0.71"},
	}
	for _, tt := range tests {
		t.Run(tt.label+"/"+tt.column, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Cell(tt.label, tt.column))
		})
	}
}

func TestTermUnion_OrderedByTermCount(t *testing.T) {
	m1, m2, m3 := nestedFakes(t)
	// The largest model first in hierarchy order still lists shared terms first
	terms := termUnion([]ports.FittedModel{m3, m1, m2})
	assert.Equal(t, []string{"(Intercept)", "x1", "x2", "x3"}, terms)
}
