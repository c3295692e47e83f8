// Package input decodes the YAML (or JSON) documents accepted by the CLI and
// the HTTP API into formatting requests. Every document names its shape with
// a kind field: anova, summary_aov, aovlist, anova_mlm or comparison.
package input

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"apareport/adapters/excel"
	"apareport/adapters/stats/regression"
	"apareport/app"
	"apareport/domain/core"
	"apareport/domain/dataset"
	"apareport/domain/stats"
	"apareport/ports"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Document is a decoded input. Exactly one of Anova and Comparison is set.
type Document struct {
	Kind       stats.ResultKind
	Anova      *AnovaDocument
	Comparison *ComparisonDocument

	// BaseDir resolves relative dataset paths; empty means the working directory
	BaseDir string
}

// AnovaDocument holds any of the four ANOVA result shapes
type AnovaDocument struct {
	Kind        stats.ResultKind `yaml:"kind"`
	Observed    []string         `yaml:"observed"`
	EffectSizes []string         `yaml:"effect_sizes"`
	InParen     bool             `yaml:"in_paren"`

	// anova, summary_aov
	Rows []stats.AnovaTableRow `yaml:"rows"`
	// aovlist
	Strata []stats.Stratum `yaml:"strata"`
	// anova_mlm
	Univariate  []stats.UnivariateRow        `yaml:"univariate"`
	Corrections []stats.SphericityCorrection `yaml:"corrections"`
	Correction  stats.Correction             `yaml:"correction"`
}

// ModelSpec describes one linear model to fit on the comparison dataset
type ModelSpec struct {
	Name       string   `yaml:"name"`
	Outcome    string   `yaml:"outcome"`
	Predictors []string `yaml:"predictors"`
}

// Column is one inline dataset column
type Column struct {
	Name   string    `yaml:"name"`
	Values []float64 `yaml:"values"`
}

// ComparisonDocument describes nested models and, optionally, their
// precomputed comparison rows
type ComparisonDocument struct {
	Kind stats.ResultKind `yaml:"kind"`

	// Data is a CSV or XLSX path; Columns is an inline alternative
	Data    string   `yaml:"data"`
	Sheet   string   `yaml:"sheet"`
	Columns []Column `yaml:"columns"`

	Models          []ModelSpec           `yaml:"models"`
	Rows            []stats.ComparisonRow `yaml:"rows"`
	ConfidenceLevel *float64              `yaml:"confidence_level"`
	BootSamples     int                   `yaml:"boot_samples"`
	Seed            *int64                `yaml:"seed"`
	InParen         bool                  `yaml:"in_paren"`
}

type header struct {
	Kind stats.ResultKind `yaml:"kind"`
}

// Decode parses a document. Unknown fields are rejected so that typos do not
// silently drop options.
func Decode(data []byte) (*Document, error) {
	var h header
	if err := yaml.Unmarshal(data, &h); err != nil {
		return nil, core.NewInputShapeError("document", err.Error())
	}

	doc := &Document{Kind: h.Kind}
	switch h.Kind {
	case stats.KindAnovaTable, stats.KindOneWaySummary, stats.KindMultiStratum, stats.KindSphericity:
		doc.Anova = &AnovaDocument{}
		if err := decodeStrict(data, doc.Anova); err != nil {
			return nil, err
		}
	case stats.KindModelComparison:
		doc.Comparison = &ComparisonDocument{}
		if err := decodeStrict(data, doc.Comparison); err != nil {
			return nil, err
		}
	case "":
		return nil, core.NewInputShapeError("document", "missing kind")
	default:
		return nil, core.NewInputShapeError("document", fmt.Sprintf("unknown kind %q", h.Kind))
	}
	return doc, nil
}

func decodeStrict(data []byte, out interface{}) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return core.NewInputShapeError("document", err.Error())
	}
	return nil
}

// LoadFile reads and decodes a document; relative dataset paths resolve
// against the document's directory
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.NewMissingReferenceError("input file", path)
		}
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.BaseDir = filepath.Dir(path)
	return doc, nil
}

// Result builds the ANOVA result variant named by the document's kind
func (d *AnovaDocument) Result() (stats.AnovaResult, error) {
	switch d.Kind {
	case stats.KindAnovaTable:
		return stats.AnovaTable{Rows: d.Rows}, nil
	case stats.KindOneWaySummary:
		return stats.OneWaySummary{Rows: d.Rows}, nil
	case stats.KindMultiStratum:
		return stats.MultiStratum{Strata: d.Strata}, nil
	case stats.KindSphericity:
		return stats.SphericityAnova{Univariate: d.Univariate, Corrections: d.Corrections, Correction: d.Correction}, nil
	default:
		return nil, core.NewInputShapeError("ANOVA document", fmt.Sprintf("kind %q is not an ANOVA result", d.Kind))
	}
}

// Request converts the document into an AnovaService request
func (d *AnovaDocument) Request() (app.AnovaRequest, error) {
	result, err := d.Result()
	if err != nil {
		return app.AnovaRequest{}, err
	}
	measures, err := ParseEffectSizes(d.EffectSizes)
	if err != nil {
		return app.AnovaRequest{}, err
	}
	return app.AnovaRequest{
		Result:      result,
		Observed:    d.Observed,
		EffectSizes: measures,
		InParen:     d.InParen,
	}, nil
}

// ParseEffectSizes accepts "ges"/"generalized" and "pes"/"partial", also as
// comma-separated lists
func ParseEffectSizes(values []string) ([]stats.EffectSize, error) {
	var out []stats.EffectSize
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			es, err := stats.ParseEffectSize(part)
			if err != nil {
				return nil, core.NewInputShapeError("effect sizes", err.Error())
			}
			out = append(out, es)
		}
	}
	return out, nil
}

// Frame loads the comparison dataset from the file or the inline columns.
// It returns nil when the document carries no data.
func (d *ComparisonDocument) Frame(baseDir string, logger *zap.Logger) (*dataset.Frame, error) {
	switch {
	case d.Data != "" && len(d.Columns) > 0:
		return nil, core.NewInputShapeError("comparison document", "give either data or columns, not both")
	case d.Data != "":
		path := d.Data
		if !filepath.IsAbs(path) && baseDir != "" {
			path = filepath.Join(baseDir, path)
		}
		return excel.NewDataReader(path, logger).WithSheet(d.Sheet).ReadFrame()
	case len(d.Columns) > 0:
		names := make([]string, len(d.Columns))
		values := make([][]float64, len(d.Columns))
		for i, c := range d.Columns {
			names[i], values[i] = c.Name, c.Values
		}
		return dataset.NewFrame(names, values)
	}
	return nil, nil
}

// FitModels fits every model spec on frame, in document order. Rows missing
// any column used by any model are dropped first, so all models share one
// set of observations.
func (d *ComparisonDocument) FitModels(frame *dataset.Frame) ([]ports.FittedModel, error) {
	if len(d.Models) == 0 {
		return nil, nil
	}
	if frame == nil {
		return nil, core.NewInputShapeError("comparison document", "models need a dataset (data or columns)")
	}

	specs := make([]regression.Spec, len(d.Models))
	var columns []string
	seen := make(map[string]bool)
	for i, spec := range d.Models {
		name := spec.Name
		if name == "" {
			name = fmt.Sprintf("Model %d", i+1)
		}
		specs[i] = regression.Spec{Name: name, Outcome: spec.Outcome, Predictors: spec.Predictors}
		for _, c := range specs[i].Columns() {
			if c != "" && !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
		}
	}

	complete, err := frame.CompleteCases(columns...)
	if err != nil {
		return nil, err
	}
	if len(complete) < frame.NumRows() {
		if frame, err = frame.Subset(complete); err != nil {
			return nil, err
		}
	}

	models := make([]ports.FittedModel, 0, len(specs))
	for _, spec := range specs {
		m, err := regression.Fit(frame, spec)
		if err != nil {
			return nil, fmt.Errorf("model %q: %w", spec.Name, err)
		}
		models = append(models, m)
	}
	return models, nil
}

// Request loads the data, fits the models and builds a ComparisonService request
func (d *ComparisonDocument) Request(baseDir string, logger *zap.Logger) (app.ComparisonRequest, error) {
	frame, err := d.Frame(baseDir, logger)
	if err != nil {
		return app.ComparisonRequest{}, err
	}
	models, err := d.FitModels(frame)
	if err != nil {
		return app.ComparisonRequest{}, err
	}
	return app.ComparisonRequest{
		Rows:            d.Rows,
		Models:          models,
		ConfidenceLevel: d.ConfidenceLevel,
		BootSamples:     d.BootSamples,
		Seed:            d.Seed,
		InParen:         d.InParen,
	}, nil
}
