// Package bootstrap draws nonparametric resamples and derives percentile
// confidence intervals from the resulting distribution.
package bootstrap

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"apareport/domain/core"
	"apareport/domain/stats"
	"apareport/internal/logging"
	"apareport/ports"

	mstats "github.com/montanaflynn/stats"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// stageName seeds every bootstrap stream
const stageName = "bootstrap"

// Resampler runs a fixed number of resamples with bounded parallelism
type Resampler struct {
	rng     ports.RNGPort
	workers int
	logger  *zap.Logger
}

// NewResampler creates a resampler. workers < 1 runs sequentially.
func NewResampler(rng ports.RNGPort, workers int, logger *zap.Logger) *Resampler {
	if workers < 1 {
		workers = 1
	}
	return &Resampler{rng: rng, workers: workers, logger: logging.OrNop(logger)}
}

var _ ports.Resampler = (*Resampler)(nil)

// Resample draws samples resamples of an n-row dataset. All index sets come from
// one stream seeded by (key, seed) and are drawn before any statistic runs, so
// resample i always uses the same rows whatever the worker count.
func (r *Resampler) Resample(ctx context.Context, key string, seed int64, n, samples int, statistic ports.ResampleStatistic) ([]float64, error) {
	if samples < 1 {
		return nil, core.NewInputShapeError("bootstrap", fmt.Sprintf("resample count must be positive, got %d", samples))
	}
	if n < 1 {
		return nil, core.NewInsufficientDataError("bootstrap dataset rows", n, 1)
	}
	stream, err := r.rng.Stream(ctx, stageName, key, seed)
	if err != nil {
		return nil, err
	}
	indices := Indices(stream, n, samples)

	values := make([]float64, samples)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range indices {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := statistic(indices[i])
			if err != nil {
				values[i] = math.NaN()
				return nil
			}
			values[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger.Debug("bootstrap finished",
		zap.String("key", key),
		zap.Int("samples", samples),
		zap.Int("failures", Failures(values)))
	return values, nil
}

// Failures counts the resamples whose statistic failed
func Failures(values []float64) int {
	n := 0
	for _, v := range values {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// PercentileCI implements ports.Resampler
func (r *Resampler) PercentileCI(values []float64, level float64) (stats.ConfidenceInterval, error) {
	return PercentileCI(values, level)
}

// Indices draws samples index sets of size n with replacement, in order
func Indices(stream *rand.Rand, n, samples int) [][]int {
	out := make([][]int, samples)
	for i := range out {
		idx := make([]int, n)
		for j := range idx {
			idx[j] = stream.Intn(n)
		}
		out[i] = idx
	}
	return out
}

// PercentileCI returns the nearest-rank percentile interval at level,
// ignoring failed resamples.
func PercentileCI(values []float64, level float64) (stats.ConfidenceInterval, error) {
	if level <= 0 || level >= 1 {
		return stats.ConfidenceInterval{}, core.NewInputShapeError("confidence level", fmt.Sprintf("%v is not in (0, 1)", level))
	}
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return stats.ConfidenceInterval{}, core.NewInsufficientDataError("bootstrap distribution", 0, 1)
	}
	alpha := (1 - level) / 2
	lower, err := mstats.PercentileNearestRank(clean, percent(alpha))
	if err != nil {
		return stats.ConfidenceInterval{}, err
	}
	upper, err := mstats.PercentileNearestRank(clean, percent(1-alpha))
	if err != nil {
		return stats.ConfidenceInterval{}, err
	}
	return stats.ConfidenceInterval{Lower: lower, Upper: upper, Level: level}, nil
}

// percent converts a probability to a percentage, rounded so that 0.95
// becomes exactly 95 rather than 95.00000000000001
func percent(p float64) float64 {
	return math.Round(p*100*1e9) / 1e9
}
