package ports

import (
	"context"

	"apareport/domain/stats"
)

// ResampleStatistic computes a statistic on the rows at indices
type ResampleStatistic func(indices []int) (float64, error)

// Resampler is the bootstrap collaborator. Resample draws samples resamples
// of an n-row dataset and returns one value per resample, NaN where the
// statistic failed. The same key and seed always draw the same rows.
type Resampler interface {
	Resample(ctx context.Context, key string, seed int64, n, samples int, statistic ResampleStatistic) ([]float64, error)
	PercentileCI(values []float64, level float64) (stats.ConfidenceInterval, error)
}

// NestedComparer tests adjacent pairs of a model hierarchy
type NestedComparer interface {
	CompareNested(models []FittedModel) ([]stats.ComparisonRow, error)
}
