package app

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"apareport/domain/core"
	"apareport/domain/stats"
	"apareport/internal/config"
	"apareport/internal/logging"
	"apareport/internal/numfmt"
	"apareport/ports"

	"go.uber.org/zap"
)

// ComparisonService formats nested model comparisons: ΔR² estimates with
// optional bootstrap intervals, F tests per pair and the comparison table
type ComparisonService struct {
	resampler ports.Resampler
	comparer  ports.NestedComparer
	defaults  config.ReportConfig
	logger    *zap.Logger
}

// ComparisonRequest defines the inputs of one comparison call.
// Rows may be omitted when Models are given; they are then computed from the
// models. Models may be omitted, in which case only the F strings are built.
type ComparisonRequest struct {
	Rows            []stats.ComparisonRow
	Models          []ports.FittedModel
	ConfidenceLevel *float64 // nil: no interval
	BootSamples     int      // 0: configured default
	Seed            *int64   // nil: configured seed, else time-seeded
	InParen         bool
}

// ComparisonReport is the result of FormatModelComparison. Est, Full and
// Table are nil when no models were supplied.
type ComparisonReport struct {
	ID        core.ReportID                       `json:"id" yaml:"id"`
	Terms     []string                            `json:"terms" yaml:"terms"` // keys in hierarchy order
	Stat      map[string]string                   `json:"stat" yaml:"stat"`
	Est       map[string]string                   `json:"est" yaml:"est"`
	Full      map[string]string                   `json:"full" yaml:"full"`
	Table     *stats.ComparisonTable              `json:"table" yaml:"table"`
	Rows      []stats.ComparisonRow               `json:"rows" yaml:"rows"`
	Intervals map[string]stats.ConfidenceInterval `json:"intervals,omitempty" yaml:"intervals,omitempty"`
	Seed      *int64                              `json:"seed,omitempty" yaml:"seed,omitempty"`
	Warnings  []core.Warning                      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// NewComparisonService creates a model comparison service
func NewComparisonService(resampler ports.Resampler, comparer ports.NestedComparer, defaults config.ReportConfig, logger *zap.Logger) *ComparisonService {
	return &ComparisonService{
		resampler: resampler,
		comparer:  comparer,
		defaults:  defaults,
		logger:    logging.OrNop(logger),
	}
}

// FormatModelComparison orders the models by ascending R² and formats every
// adjacent pair of that hierarchy
func (s *ComparisonService) FormatModelComparison(ctx context.Context, req ComparisonRequest) (*ComparisonReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &ComparisonReport{
		ID:   core.NewReportID(),
		Stat: make(map[string]string),
	}

	if len(req.Models) == 0 {
		if len(req.Rows) == 0 {
			return nil, core.NewInputShapeError("model comparison", "neither comparison rows nor models supplied")
		}
		s.warn(report, core.NewWarning(core.WarnNoModels, "no models supplied; ΔR² estimates and the comparison table are omitted"))
		report.Rows = append([]stats.ComparisonRow(nil), req.Rows...)
		for _, row := range report.Rows {
			report.Terms = append(report.Terms, row.Term)
			report.Stat[row.Term] = fString(row.Df, row.DfRes, row.Statistic, row.PValue, req.InParen)
		}
		return report, nil
	}

	if len(req.Models) < 2 {
		return nil, core.NewInputShapeError("model comparison", fmt.Sprintf("need at least two models, got %d", len(req.Models)))
	}
	if req.Rows != nil && len(req.Rows) != len(req.Models)-1 {
		return nil, core.NewInputShapeError("model comparison",
			fmt.Sprintf("%d comparison rows do not match %d models (want %d rows)", len(req.Rows), len(req.Models), len(req.Models)-1))
	}

	if err := sameObservations(req.Models); err != nil {
		return nil, err
	}
	hierarchy := OrderByRSquared(req.Models)

	rows, err := s.comparisonRows(req.Rows, hierarchy)
	if err != nil {
		return nil, err
	}
	report.Rows = rows

	var level float64
	if req.ConfidenceLevel != nil {
		level = *req.ConfidenceLevel
		if level <= 0 || level >= 1 {
			return nil, core.NewInputShapeError("confidence level", fmt.Sprintf("%v is not in (0, 1)", level))
		}
		seed := s.seed(report, req.Seed)
		report.Seed = &seed
		report.Intervals = make(map[string]stats.ConfidenceInterval, len(rows))
	}

	report.Est = make(map[string]string, len(rows))
	report.Full = make(map[string]string, len(rows))
	for i, row := range rows {
		report.Terms = append(report.Terms, row.Term)
		stat := fString(row.Df, row.DfRes, row.Statistic, row.PValue, req.InParen)
		est := numfmt.WithRelator(labelDeltaR2, numfmt.Number(row.DeltaR2, deltaR2Options))

		if req.ConfidenceLevel != nil {
			ci, err := s.bootstrapDeltaR2(ctx, report, hierarchy[i], hierarchy[i+1], req.BootSamples, level)
			if err != nil {
				return nil, fmt.Errorf("bootstrap ΔR² for %s: %w", row.Term, err)
			}
			ci = ci.TruncateNonSignificant(row.PValue)
			report.Intervals[row.Term] = ci
			est += ", " + numfmt.CI(ci.Lower, ci.Upper, ci.Level, false)
		}

		report.Stat[row.Term] = stat
		report.Est[row.Term] = est
		report.Full[row.Term] = est + ", " + stat
	}

	report.Table = BuildComparisonTable(hierarchy)

	s.logger.Debug("formatted model comparison",
		zap.String("report_id", report.ID.String()),
		zap.Int("models", len(hierarchy)),
		zap.Bool("bootstrap", req.ConfidenceLevel != nil))
	return report, nil
}

// OrderByRSquared returns the models sorted by ascending R². Ties keep their
// input order, so an already ascending list is returned unchanged.
func OrderByRSquared(models []ports.FittedModel) []ports.FittedModel {
	out := append([]ports.FittedModel(nil), models...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Fit().RSquared < out[j].Fit().RSquared
	})
	return out
}

// comparisonRows computes the nested F tests when rows are absent. Supplied
// rows are aligned to the hierarchy; their ΔR² always comes from the models.
func (s *ComparisonService) comparisonRows(supplied []stats.ComparisonRow, hierarchy []ports.FittedModel) ([]stats.ComparisonRow, error) {
	if supplied == nil {
		return s.comparer.CompareNested(hierarchy)
	}
	rows, err := alignRows(supplied, hierarchy)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].DeltaR2 = hierarchy[i+1].Fit().RSquared - hierarchy[i].Fit().RSquared
	}
	return rows, nil
}

// alignRows orders supplied rows by the hierarchy. Rows that name a model are
// matched to the pair whose larger model it is; rows without names are taken
// positionally and named after that model. Mixing the two is an error.
func alignRows(supplied []stats.ComparisonRow, hierarchy []ports.FittedModel) ([]stats.ComparisonRow, error) {
	named := 0
	for _, row := range supplied {
		if row.Term != "" {
			named++
		}
	}

	rows := make([]stats.ComparisonRow, len(supplied))
	switch named {
	case 0:
		copy(rows, supplied)
		for i := range rows {
			rows[i].Term = hierarchy[i+1].Name()
		}
		return rows, nil
	case len(supplied):
	default:
		return nil, core.NewInputShapeError("comparison rows",
			fmt.Sprintf("%d of %d rows name a model; name every row or none", named, len(supplied)))
	}

	pair := make(map[string]int, len(rows))
	for i, m := range hierarchy[1:] {
		if _, dup := pair[m.Name()]; dup {
			return nil, core.NewInputShapeError("comparison rows", fmt.Sprintf("model name %q is not unique", m.Name()))
		}
		pair[m.Name()] = i
	}
	filled := make([]bool, len(rows))
	for _, row := range supplied {
		i, ok := pair[row.Term]
		if !ok {
			return nil, core.NewInputShapeError("comparison rows",
				fmt.Sprintf("row %q matches no model after the first in R² order (%s)", row.Term, hierarchy[0].Name()))
		}
		if filled[i] {
			return nil, core.NewInputShapeError("comparison rows", fmt.Sprintf("two rows name model %q", row.Term))
		}
		rows[i], filled[i] = row, true
	}
	return rows, nil
}

// sameObservations fails unless every model was fitted to the same number of
// observations
func sameObservations(models []ports.FittedModel) error {
	for _, m := range models[1:] {
		if n, first := m.Fit().NObs, models[0].Fit().NObs; n != first {
			return core.NewInputShapeError("model comparison",
				fmt.Sprintf("models are not all fitted to the same size of dataset (%s: %d, %s: %d)",
					models[0].Name(), first, m.Name(), n))
		}
	}
	return nil
}

// bootstrapDeltaR2 resamples the rows shared by both models, refits each on
// the same indices and returns the percentile interval of the R² difference
func (s *ComparisonService) bootstrapDeltaR2(ctx context.Context, report *ComparisonReport, base, larger ports.FittedModel, samples int, level float64) (stats.ConfidenceInterval, error) {
	baseData, largerData := base.Data(), larger.Data()
	if baseData == nil || largerData == nil {
		return stats.ConfidenceInterval{}, core.NewInputShapeError("bootstrap", "models carry no data to resample")
	}
	if baseData.NumRows() != largerData.NumRows() || base.Fit().NObs != larger.Fit().NObs {
		return stats.ConfidenceInterval{}, core.NewInputShapeError("bootstrap",
			fmt.Sprintf("models were fitted on different data (%d vs %d rows, %d vs %d observations)",
				baseData.NumRows(), largerData.NumRows(), base.Fit().NObs, larger.Fit().NObs))
	}
	if samples <= 0 {
		samples = s.defaults.BootSamples
	}

	statistic := func(indices []int) (float64, error) {
		b, err := refitOn(base, indices)
		if err != nil {
			return 0, err
		}
		l, err := refitOn(larger, indices)
		if err != nil {
			return 0, err
		}
		return l.Fit().RSquared - b.Fit().RSquared, nil
	}

	values, err := s.resampler.Resample(ctx, larger.Name(), *report.Seed, baseData.NumRows(), samples, statistic)
	if err != nil {
		return stats.ConfidenceInterval{}, err
	}
	if failed := countNaN(values); failed > 0 {
		s.warn(report, core.NewWarning(core.WarnFailedResamples,
			"%d of %d resamples for %s could not be refit and were dropped", failed, len(values), larger.Name()))
	}
	return s.resampler.PercentileCI(values, level)
}

func refitOn(model ports.FittedModel, indices []int) (ports.FittedModel, error) {
	subset, err := model.Data().Subset(indices)
	if err != nil {
		return nil, err
	}
	return model.Refit(subset)
}

// seed picks the request seed, then the configured one, then the clock
func (s *ComparisonService) seed(report *ComparisonReport, requested *int64) int64 {
	switch {
	case requested != nil:
		return *requested
	case s.defaults.Seed != nil:
		return *s.defaults.Seed
	}
	seed := time.Now().UnixNano()
	s.warn(report, core.NewWarning(core.WarnUnseededBootstrap,
		"no seed supplied; bootstrap used seed %d and is not reproducible without it", seed))
	return seed
}

func (s *ComparisonService) warn(report *ComparisonReport, w core.Warning) {
	report.Warnings = append(report.Warnings, w)
	s.logger.Warn("model comparison", zap.String("code", string(w.Code)), zap.String("message", w.Message))
}

func countNaN(values []float64) int {
	n := 0
	for _, v := range values {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}
