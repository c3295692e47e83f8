package stats

import (
	"encoding/json"
	"fmt"
	"math"
)

// ============================================================================
// CANONICAL ANOVA ROWS
// ============================================================================

// Row is one tested term in the canonical statistics schema.
// INVARIANTS:
// - Term unique within a Table (not enforced; collisions come from the fitting stage)
// - SumSqErr/DfErr originate from exactly one error stratum
// - GES/PES are nil unless requested from the effect-size engine
type Row struct {
	Term      string   `json:"term" yaml:"term"`
	SumSq     float64  `json:"sum_sq" yaml:"sum_sq"`
	Df        float64  `json:"df" yaml:"df"`                 // Numerator degrees of freedom
	SumSqErr  float64  `json:"sum_sq_err" yaml:"sum_sq_err"` // Shared by rows of the same stratum
	DfErr     float64  `json:"df_err" yaml:"df_err"`
	Statistic float64  `json:"statistic" yaml:"statistic"` // F value
	PValue    float64  `json:"p_value" yaml:"p_value"`
	GES       *float64 `json:"ges,omitempty" yaml:"ges,omitempty"` // Generalized eta-squared
	PES       *float64 `json:"pes,omitempty" yaml:"pes,omitempty"` // Partial eta-squared
}

// Table is an ordered set of canonical rows
type Table struct {
	Rows []Row `json:"rows" yaml:"rows"`
}

// Terms returns the term names in row order
func (t Table) Terms() []string {
	terms := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		terms[i] = r.Term
	}
	return terms
}

// Clone returns a deep copy so callers never share effect-size pointers
func (t Table) Clone() Table {
	rows := make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = r
		if r.GES != nil {
			v := *r.GES
			rows[i].GES = &v
		}
		if r.PES != nil {
			v := *r.PES
			rows[i].PES = &v
		}
	}
	return Table{Rows: rows}
}

// EffectSize names an effect-size measure the engine can add
type EffectSize string

const (
	EffectGeneralized EffectSize = "ges"
	EffectPartial     EffectSize = "pes"
)

// ParseEffectSize maps user input to an EffectSize
func ParseEffectSize(s string) (EffectSize, error) {
	switch s {
	case "ges", "generalized":
		return EffectGeneralized, nil
	case "pes", "partial":
		return EffectPartial, nil
	default:
		return "", fmt.Errorf("unknown effect size %q (want ges or pes)", s)
	}
}

// ============================================================================
// MODEL COMPARISON
// ============================================================================

// ComparisonRow holds the test of one adjacent pair in the model hierarchy.
// Term names the second (larger) model of the pair.
type ComparisonRow struct {
	Term      string  `json:"term" yaml:"term"`
	Statistic float64 `json:"statistic" yaml:"statistic"`
	Df        float64 `json:"df" yaml:"df"`
	DfRes     float64 `json:"df_res" yaml:"df_res"`
	PValue    float64 `json:"p_value" yaml:"p_value"`
	DeltaR2   float64 `json:"delta_r2" yaml:"delta_r2"`
}

// comparisonRowJSON is the wire form of ComparisonRow. JSON has no NaN, so
// undefined statistics (a pair with no df difference) travel as null.
type comparisonRowJSON struct {
	Term      string   `json:"term"`
	Statistic *float64 `json:"statistic"`
	Df        *float64 `json:"df"`
	DfRes     *float64 `json:"df_res"`
	PValue    *float64 `json:"p_value"`
	DeltaR2   *float64 `json:"delta_r2"`
}

// MarshalJSON writes non-finite statistics as null
func (r ComparisonRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(comparisonRowJSON{
		Term:      r.Term,
		Statistic: finiteOrNil(r.Statistic),
		Df:        finiteOrNil(r.Df),
		DfRes:     finiteOrNil(r.DfRes),
		PValue:    finiteOrNil(r.PValue),
		DeltaR2:   finiteOrNil(r.DeltaR2),
	})
}

// UnmarshalJSON reads null or absent statistics as NaN
func (r *ComparisonRow) UnmarshalJSON(data []byte) error {
	var v comparisonRowJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = ComparisonRow{
		Term:      v.Term,
		Statistic: valueOrNaN(v.Statistic),
		Df:        valueOrNaN(v.Df),
		DfRes:     valueOrNaN(v.DfRes),
		PValue:    valueOrNaN(v.PValue),
		DeltaR2:   valueOrNaN(v.DeltaR2),
	}
	return nil
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// ConfidenceInterval is a two-sided interval at Level (e.g. 0.90)
type ConfidenceInterval struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
	Level float64 `json:"confidence_level" yaml:"confidence_level"`
}

// SignificanceThreshold is the p-value at or above which a comparison is
// treated as non-significant.
const SignificanceThreshold = 0.05

// TruncateNonSignificant forces the lower bound to zero when p >= .05
// (modified percentile bootstrap for non-significant ΔR²).
func (ci ConfidenceInterval) TruncateNonSignificant(p float64) ConfidenceInterval {
	if p >= SignificanceThreshold || math.IsNaN(p) {
		ci.Lower = 0
	}
	return ci
}

// Coefficient is one row of a tidy coefficient table
type Coefficient struct {
	Term      string  `json:"term" yaml:"term"`
	Estimate  float64 `json:"estimate" yaml:"estimate"`
	StdError  float64 `json:"std_error" yaml:"std_error"`
	Statistic float64 `json:"statistic" yaml:"statistic"` // t value
	PValue    float64 `json:"p_value" yaml:"p_value"`
	ConfLow   float64 `json:"conf_low" yaml:"conf_low"`
	ConfHigh  float64 `json:"conf_high" yaml:"conf_high"`
}

// FitStatistics summarizes a fitted linear model
type FitStatistics struct {
	RSquared    float64 `json:"r_squared" yaml:"r_squared"`
	AdjRSquared float64 `json:"adj_r_squared" yaml:"adj_r_squared"`
	F           float64 `json:"f" yaml:"f"`
	Df          float64 `json:"df" yaml:"df"`
	DfRes       float64 `json:"df_res" yaml:"df_res"`
	PValue      float64 `json:"p_value" yaml:"p_value"`
	LogLik      float64 `json:"log_lik" yaml:"log_lik"`
	AIC         float64 `json:"aic" yaml:"aic"`
	BIC         float64 `json:"bic" yaml:"bic"`
	RSS         float64 `json:"rss" yaml:"rss"`
	NObs        int     `json:"n_obs" yaml:"n_obs"`
}

// ============================================================================
// COMPARISON TABLE
// ============================================================================

// Summary row labels of the comparison table, in output order
const (
	LabelR2       = "R²"
	LabelF        = "F"
	LabelDf       = "df"
	LabelDfRes    = "df_res"
	LabelP        = "p"
	LabelAIC      = "AIC"
	LabelBIC      = "BIC"
	LabelDeltaR2  = "ΔR²"
	LabelDeltaAIC = "ΔAIC"
	LabelDeltaBIC = "ΔBIC"
)

// SummaryLabels lists fit-statistic rows followed by delta rows
var SummaryLabels = []string{
	LabelR2, LabelF, LabelDf, LabelDfRes, LabelP, LabelAIC, LabelBIC,
	LabelDeltaR2, LabelDeltaAIC, LabelDeltaBIC,
}

// ComparisonTable is the assembled multi-model table. Cells[i][j] is the cell
// for RowLabels[i] and Columns[j]; absent coefficients are empty strings.
// Built once per call, never mutated after return.
type ComparisonTable struct {
	RowLabels []string   `json:"row_labels" yaml:"row_labels"`
	Columns   []string   `json:"columns" yaml:"columns"`
	Cells     [][]string `json:"cells" yaml:"cells"`
	NumTerms  int        `json:"num_terms" yaml:"num_terms"` // Leading coefficient rows
}

// Cell returns the cell at row label and column, or "" when absent
func (t *ComparisonTable) Cell(label, column string) string {
	ri, ci := -1, -1
	for i, l := range t.RowLabels {
		if l == label {
			ri = i
			break
		}
	}
	for j, c := range t.Columns {
		if c == column {
			ci = j
			break
		}
	}
	if ri < 0 || ci < 0 {
		return ""
	}
	return t.Cells[ri][ci]
}
