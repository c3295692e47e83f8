package stats

// ============================================================================
// ANOVA INPUT SHAPES
// ============================================================================

// AnovaResult is the closed set of result shapes the normalizer accepts.
// The unexported marker keeps the union sealed to this package.
type AnovaResult interface {
	Kind() ResultKind
	anovaResult()
}

// ResultKind tags the procedure an AnovaResult came from
type ResultKind string

const (
	KindAnovaTable      ResultKind = "anova"
	KindOneWaySummary   ResultKind = "summary_aov"
	KindMultiStratum    ResultKind = "aovlist"
	KindSphericity      ResultKind = "anova_mlm"
	KindModelComparison ResultKind = "comparison"
)

// AnovaTableRow is one line of a printed ANOVA table
type AnovaTableRow struct {
	Term      string  `json:"term" yaml:"term"`
	Df        float64 `json:"df" yaml:"df"`
	SumSq     float64 `json:"sum_sq" yaml:"sum_sq"`
	MeanSq    float64 `json:"mean_sq,omitempty" yaml:"mean_sq,omitempty"`
	Statistic float64 `json:"statistic,omitempty" yaml:"statistic,omitempty"`
	PValue    float64 `json:"p_value,omitempty" yaml:"p_value,omitempty"`
}

// AnovaTable is a simple ANOVA table whose last row is the error stratum
type AnovaTable struct {
	Rows []AnovaTableRow `json:"rows" yaml:"rows"`
}

func (AnovaTable) Kind() ResultKind { return KindAnovaTable }
func (AnovaTable) anovaResult() {}

// OneWaySummary holds the tidy rows of a one-way ANOVA summary. The residual
// row is named "Residuals"; term names may carry padding.
type OneWaySummary struct {
	Rows []AnovaTableRow `json:"rows" yaml:"rows"`
}

func (OneWaySummary) Kind() ResultKind { return KindOneWaySummary }
func (OneWaySummary) anovaResult() {}

// Stratum is one error stratum of a repeated-measures design
type Stratum struct {
	Name  string     `json:"name" yaml:"name"`
	Table AnovaTable `json:"table" yaml:"table"`
}

// MultiStratum is a repeated-measures ANOVA given as per-stratum tables
type MultiStratum struct {
	Strata []Stratum `json:"strata" yaml:"strata"`
}

func (MultiStratum) Kind() ResultKind { return KindMultiStratum }
func (MultiStratum) anovaResult() {}

// Correction selects a sphericity correction
type Correction string

const (
	CorrectionNone Correction = "none"
	CorrectionGG   Correction = "GG" // Greenhouse-Geisser
	CorrectionHF   Correction = "HF" // Huynh-Feldt
)

// UnivariateRow is one term of the uncorrected univariate table
type UnivariateRow struct {
	Term      string  `json:"term" yaml:"term"`
	SumSq     float64 `json:"sum_sq" yaml:"sum_sq"`
	Df        float64 `json:"df" yaml:"df"`
	SumSqErr  float64 `json:"sum_sq_err" yaml:"sum_sq_err"`
	DfErr     float64 `json:"df_err" yaml:"df_err"`
	Statistic float64 `json:"statistic" yaml:"statistic"`
	PValue    float64 `json:"p_value" yaml:"p_value"`
}

// SphericityCorrection holds the epsilons and corrected p-values of one term
type SphericityCorrection struct {
	Term      string  `json:"term" yaml:"term"`
	GGEpsilon float64 `json:"gg_epsilon" yaml:"gg_epsilon"`
	GGPValue  float64 `json:"gg_p_value" yaml:"gg_p_value"`
	HFEpsilon float64 `json:"hf_epsilon" yaml:"hf_epsilon"`
	HFPValue  float64 `json:"hf_p_value" yaml:"hf_p_value"`
}

// SphericityAnova is a multivariate-model ANOVA with sphericity corrections
type SphericityAnova struct {
	Univariate  []UnivariateRow        `json:"univariate" yaml:"univariate"`
	Corrections []SphericityCorrection `json:"corrections" yaml:"corrections"`
	Correction  Correction             `json:"correction" yaml:"correction"`
}

func (SphericityAnova) Kind() ResultKind { return KindSphericity }
func (SphericityAnova) anovaResult() {}
