// Package regression fits ordinary least-squares models on a dataset.Frame.
// It is the model-fitting collaborator of the comparison engine: models can
// report tidy coefficients and fit statistics, and refit themselves on a
// bootstrap resample.
package regression

import (
	"fmt"
	"math"
	"strings"

	"apareport/domain/core"
	"apareport/domain/dataset"
	"apareport/domain/stats"
	"apareport/ports"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// InterceptTerm is the name of the constant term
const InterceptTerm = "(Intercept)"

// maxCondition bounds the design's condition number before it counts as rank deficient
const maxCondition = 1e12

// coefficientLevel is the confidence level of tidy coefficient intervals
const coefficientLevel = 0.95

// Spec describes a linear model: Outcome ~ Predictors. A predictor written as
// "a:b" is the product of columns a and b.
type Spec struct {
	Name       string   `json:"name" yaml:"name"`
	Outcome    string   `json:"outcome" yaml:"outcome"`
	Predictors []string `json:"predictors" yaml:"predictors"`
}

// Formula renders the spec as "y ~ a + b"
func (s Spec) Formula() string {
	if len(s.Predictors) == 0 {
		return s.Outcome + " ~ 1"
	}
	return s.Outcome + " ~ " + strings.Join(s.Predictors, " + ")
}

// Columns lists the frame columns the model reads, outcome first
func (s Spec) Columns() []string {
	return append([]string{s.Outcome}, factorsOf(s.Predictors)...)
}

// Model is a fitted OLS model
type Model struct {
	spec   Spec
	data   *dataset.Frame
	coefs  []stats.Coefficient
	fit    stats.FitStatistics
	fitted []float64
}

var _ ports.FittedModel = (*Model)(nil)

// Fit estimates spec on the complete cases of frame
func Fit(frame *dataset.Frame, spec Spec) (*Model, error) {
	if frame == nil {
		return nil, core.NewInputShapeError("model "+spec.Name, "no data")
	}
	if spec.Outcome == "" {
		return nil, core.NewInputShapeError("model "+spec.Name, "no outcome variable")
	}
	for _, pred := range spec.Predictors {
		for _, f := range strings.Split(pred, ":") {
			if strings.TrimSpace(f) == "" {
				return nil, core.NewInputShapeError("model "+spec.Name, fmt.Sprintf("malformed predictor %q", pred))
			}
		}
	}

	rows, err := frame.CompleteCases(spec.Columns()...)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", spec.Name, err)
	}

	n, p := len(rows), len(spec.Predictors)+1
	if n-p < 1 {
		return nil, core.NewInsufficientDataError("model "+spec.Name+" complete cases", n, p+1)
	}

	X := mat.NewDense(n, p, nil)
	y := mat.NewVecDense(n, nil)
	for i, row := range rows {
		y.SetVec(i, frame.Value(spec.Outcome, row))
		X.Set(i, 0, 1)
		for j, pred := range spec.Predictors {
			X.Set(i, j+1, predictorValue(frame, pred, row))
		}
	}

	var qr mat.QR
	qr.Factorize(X)
	if c := qr.Cond(); math.IsInf(c, 1) || c > maxCondition {
		return nil, fmt.Errorf("model %s: %w (condition number %.3g)", spec.Name, core.ErrSingularDesign, c)
	}
	beta := mat.NewVecDense(p, nil)
	if err := qr.SolveVecTo(beta, false, y); err != nil {
		return nil, fmt.Errorf("model %s: %w: %v", spec.Name, core.ErrSingularDesign, err)
	}

	var xtx, xtxInv mat.Dense
	xtx.Mul(X.T(), X)
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("model %s: %w: %v", spec.Name, core.ErrSingularDesign, err)
	}

	fitted := mat.NewVecDense(n, nil)
	fitted.MulVec(X, beta)

	yValues := make([]float64, n)
	var rss float64
	for i := 0; i < n; i++ {
		yValues[i] = y.AtVec(i)
		e := yValues[i] - fitted.AtVec(i)
		rss += e * e
	}
	variance, err := mstats.PopulationVariance(yValues)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", spec.Name, err)
	}
	tss := variance * float64(n)

	m := &Model{
		spec:   spec,
		data:   frame,
		fitted: fitted.RawVector().Data,
	}
	m.fit = fitStatistics(n, p, rss, tss)
	m.coefs = coefficients(spec, beta, &xtxInv, rss/m.fit.DfRes, m.fit.DfRes)
	return m, nil
}

// factorsOf expands interaction predictors into the columns they use
func factorsOf(predictors []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, pred := range predictors {
		for _, f := range strings.Split(pred, ":") {
			f = strings.TrimSpace(f)
			if f != "" && !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}

func predictorValue(frame *dataset.Frame, predictor string, row int) float64 {
	v := 1.0
	for _, f := range strings.Split(predictor, ":") {
		v *= frame.Value(strings.TrimSpace(f), row)
	}
	return v
}

func fitStatistics(n, p int, rss, tss float64) stats.FitStatistics {
	k := float64(p - 1)
	dfRes := float64(n - p)

	fit := stats.FitStatistics{
		Df:     k,
		DfRes:  dfRes,
		RSS:    rss,
		NObs:   n,
		F:      math.NaN(),
		PValue: math.NaN(),
	}
	if tss > 0 {
		fit.RSquared = 1 - rss/tss
		fit.AdjRSquared = 1 - (1-fit.RSquared)*float64(n-1)/dfRes
	}
	if k > 0 && rss > 0 {
		fit.F = ((tss - rss) / k) / (rss / dfRes)
		fit.PValue = distuv.F{D1: k, D2: dfRes}.Survival(fit.F)
	}

	nf := float64(n)
	fit.LogLik = -nf / 2 * (math.Log(2*math.Pi) + math.Log(rss/nf) + 1)
	params := float64(p + 1) // coefficients plus residual variance
	fit.AIC = -2*fit.LogLik + 2*params
	fit.BIC = -2*fit.LogLik + math.Log(nf)*params
	return fit
}

func coefficients(spec Spec, beta *mat.VecDense, xtxInv *mat.Dense, sigma2, dfRes float64) []stats.Coefficient {
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dfRes}
	crit := t.Quantile(1 - (1-coefficientLevel)/2)

	terms := append([]string{InterceptTerm}, spec.Predictors...)
	coefs := make([]stats.Coefficient, len(terms))
	for j, term := range terms {
		est := beta.AtVec(j)
		se := math.Sqrt(sigma2 * xtxInv.At(j, j))
		c := stats.Coefficient{
			Term:      term,
			Estimate:  est,
			StdError:  se,
			Statistic: est / se,
			ConfLow:   est - crit*se,
			ConfHigh:  est + crit*se,
		}
		c.PValue = 2 * t.Survival(math.Abs(c.Statistic))
		coefs[j] = c
	}
	return coefs
}

// Name returns the model name
func (m *Model) Name() string { return m.spec.Name }

// Spec returns the model specification
func (m *Model) Spec() Spec { return m.spec }

// Coefficients returns the tidy coefficient table
func (m *Model) Coefficients() []stats.Coefficient {
	out := make([]stats.Coefficient, len(m.coefs))
	copy(out, m.coefs)
	return out
}

// Fit returns the model's summary statistics
func (m *Model) Fit() stats.FitStatistics { return m.fit }

// Data returns the frame the model was fitted on
func (m *Model) Data() *dataset.Frame { return m.data }

// Fitted returns the fitted values of the complete cases
func (m *Model) Fitted() []float64 {
	out := make([]float64, len(m.fitted))
	copy(out, m.fitted)
	return out
}

// Refit fits the same specification on another frame
func (m *Model) Refit(frame *dataset.Frame) (ports.FittedModel, error) {
	refit, err := Fit(frame, m.spec)
	if err != nil {
		return nil, err
	}
	return refit, nil
}
