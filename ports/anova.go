package ports

import (
	"apareport/domain/core"
	"apareport/domain/stats"
)

// TableNormalizer converts any supported ANOVA result shape into canonical rows
type TableNormalizer interface {
	Normalize(result stats.AnovaResult) (stats.Table, []core.Warning, error)
}

// EffectSizeEngine augments canonical rows with the requested effect sizes
type EffectSizeEngine interface {
	Compute(table stats.Table, observed []string, measures ...stats.EffectSize) (stats.Table, error)
}
