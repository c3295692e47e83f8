package container

import (
	"fmt"

	"apareport/adapters/rng"
	"apareport/adapters/stats/bootstrap"
	"apareport/adapters/stats/effectsize"
	"apareport/adapters/stats/normalize"
	"apareport/adapters/stats/regression"
	"apareport/app"
	"apareport/internal/config"
	"apareport/internal/logging"
	"apareport/ports"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	// Adapters
	RNG        ports.RNGPort
	Resampler  ports.Resampler
	Comparer   ports.NestedComparer
	Normalizer ports.TableNormalizer
	Effects    ports.EffectSizeEngine

	// Services
	AnovaService      *app.AnovaService
	ComparisonService *app.ComparisonService
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	logger = logging.OrNop(logger)

	c := &Container{
		Config:     cfg,
		Logger:     logger,
		RNG:        rng.NewAdapter(),
		Comparer:   regression.Comparer{},
		Normalizer: normalize.Normalizer{},
		Effects:    effectsize.Engine{},
	}
	c.Resampler = bootstrap.NewResampler(c.RNG, cfg.Report.Workers, logger.Named("bootstrap"))

	c.AnovaService = app.NewAnovaService(c.Normalizer, c.Effects, logger.Named("anova"))
	c.ComparisonService = app.NewComparisonService(c.Resampler, c.Comparer, cfg.Report, logger.Named("comparison"))
	return c, nil
}

// Close flushes buffered log entries
func (c *Container) Close() error {
	// stderr sync fails on some platforms; nothing to recover
	_ = c.Logger.Sync()
	return nil
}
