package app

import (
	"context"

	"apareport/domain/core"
	"apareport/domain/stats"
	"apareport/internal/logging"
	"apareport/internal/numfmt"
	"apareport/ports"

	"go.uber.org/zap"
)

// AnovaService formats single-model ANOVA results into inline APA strings
type AnovaService struct {
	normalizer ports.TableNormalizer
	effects    ports.EffectSizeEngine
	logger     *zap.Logger
}

// AnovaRequest defines the inputs of one formatting call
type AnovaRequest struct {
	Result      stats.AnovaResult
	Observed    []string // measured factors, enter the generalized eta-squared denominator
	EffectSizes []stats.EffectSize
	InParen     bool
}

// AnovaReport holds one inline string per term plus the augmented table
type AnovaReport struct {
	ID        core.ReportID     `json:"id" yaml:"id"`
	Statistic map[string]string `json:"statistic" yaml:"statistic"`
	Terms     []string          `json:"terms" yaml:"terms"` // Statistic keys in table order
	Table     stats.Table       `json:"table" yaml:"table"`
	Warnings  []core.Warning    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// NewAnovaService creates an ANOVA formatting service
func NewAnovaService(normalizer ports.TableNormalizer, effects ports.EffectSizeEngine, logger *zap.Logger) *AnovaService {
	return &AnovaService{
		normalizer: normalizer,
		effects:    effects,
		logger:     logging.OrNop(logger),
	}
}

// FormatAnova normalizes the result, adds the requested effect sizes and
// renders "F(1, 18) = 4.32, p = .052[, η²_G = .194][, η²_p = .194]" per term.
func (s *AnovaService) FormatAnova(ctx context.Context, req AnovaRequest) (*AnovaReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table, warnings, err := s.normalizer.Normalize(req.Result)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		s.logger.Warn("anova normalization", zap.String("code", string(w.Code)), zap.String("message", w.Message))
	}

	table, err = s.effects.Compute(table, req.Observed, req.EffectSizes...)
	if err != nil {
		return nil, err
	}

	report := &AnovaReport{
		ID:        core.NewReportID(),
		Statistic: make(map[string]string, len(table.Rows)),
		Terms:     table.Terms(),
		Table:     table,
		Warnings:  warnings,
	}
	for _, row := range table.Rows {
		report.Statistic[row.Term] = anovaString(row, req.InParen)
	}

	s.logger.Debug("formatted anova",
		zap.String("report_id", report.ID.String()),
		zap.String("kind", string(req.Result.Kind())),
		zap.Int("terms", len(table.Rows)))
	return report, nil
}

// anovaString renders one row; effect sizes appear only when populated
func anovaString(row stats.Row, inParen bool) string {
	s := fString(row.Df, row.DfErr, row.Statistic, row.PValue, inParen)
	if row.GES != nil {
		s += ", " + numfmt.WithRelator(labelGES, numfmt.Number(*row.GES, effectSizeOptions))
	}
	if row.PES != nil {
		s += ", " + numfmt.WithRelator(labelPES, numfmt.Number(*row.PES, effectSizeOptions))
	}
	return s
}
