package container

import (
	"context"
	"testing"

	"apareport/app"
	"apareport/domain/stats"
	"apareport/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)

	c, err := New(config.Default(), nil)
	require.NoError(t, err)
	defer c.Close()

	report, err := c.AnovaService.FormatAnova(context.Background(), app.AnovaRequest{
		Result: stats.AnovaTable{Rows: []stats.AnovaTableRow{
			{Term: "group", Df: 1, SumSq: 4.5, Statistic: 4.32, PValue: 0.052},
			{Term: "Residuals", Df: 18, SumSq: 18.75},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "F(1, 18) = 4.32, p = .052", report.Statistic["group"])
	assert.NotNil(t, c.ComparisonService)
}
