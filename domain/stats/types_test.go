package stats

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateNonSignificant(t *testing.T) {
	ci := ConfidenceInterval{Lower: 0.04, Upper: 0.31, Level: 0.90}

	tests := []struct {
		p     float64
		lower float64
	}{
		{0.001, 0.04},
		{0.0499, 0.04},
		{0.05, 0},
		{0.2, 0},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		got := ci.TruncateNonSignificant(tt.p)
		assert.Equal(t, tt.lower, got.Lower, "p = %v", tt.p)
		assert.Equal(t, 0.31, got.Upper)
	}
	assert.Equal(t, 0.04, ci.Lower, "receiver is not modified")
}

func TestTableClone(t *testing.T) {
	ges := 0.2
	table := Table{Rows: []Row{{Term: "a", GES: &ges}, {Term: "b"}}}
	clone := table.Clone()

	*clone.Rows[0].GES = 0.9
	assert.Equal(t, 0.2, *table.Rows[0].GES)
	assert.Nil(t, clone.Rows[1].GES)
	assert.Equal(t, []string{"a", "b"}, clone.Terms())
}

func TestParseEffectSize(t *testing.T) {
	for in, want := range map[string]EffectSize{
		"ges": EffectGeneralized, "generalized": EffectGeneralized,
		"pes": EffectPartial, "partial": EffectPartial,
	} {
		got, err := ParseEffectSize(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseEffectSize("omega")
	assert.Error(t, err)
}

func TestComparisonTableCell(t *testing.T) {
	table := &ComparisonTable{
		RowLabels: []string{"x", LabelR2},
		Columns:   []string{"Model 1", "Model 2"},
		Cells:     [][]string{{"", "0.50 [0.10, 0.90]"}, {".10", ".25"}},
	}
	assert.Equal(t, "0.50 [0.10, 0.90]", table.Cell("x", "Model 2"))
	assert.Equal(t, ".10", table.Cell(LabelR2, "Model 1"))
	assert.Equal(t, "", table.Cell("x", "Model 1"))
	assert.Equal(t, "", table.Cell("z", "Model 1"))
	assert.Equal(t, "", table.Cell("x", "Model 9"))
}

func TestResultKinds(t *testing.T) {
	results := map[ResultKind]AnovaResult{
		KindAnovaTable:    AnovaTable{},
		KindOneWaySummary: OneWaySummary{},
		KindMultiStratum:  MultiStratum{},
		KindSphericity:    SphericityAnova{},
	}
	for kind, r := range results {
		assert.Equal(t, kind, r.Kind())
	}
}

func TestComparisonRowJSON_UndefinedStatistics(t *testing.T) {
	row := ComparisonRow{Term: "b", Statistic: math.NaN(), Df: 0, DfRes: 5, PValue: math.NaN(), DeltaR2: 0.12}

	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `{"term":"b","statistic":null,"df":0,"df_res":5,"p_value":null,"delta_r2":0.12}`, string(data))

	var decoded ComparisonRow
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, math.IsNaN(decoded.Statistic))
	assert.True(t, math.IsNaN(decoded.PValue))
	assert.Equal(t, 0.0, decoded.Df)
	assert.Equal(t, 0.12, decoded.DeltaR2)
}
