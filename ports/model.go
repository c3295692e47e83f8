package ports

import (
	"apareport/domain/dataset"
	"apareport/domain/stats"
)

// FittedModel is an already-fitted model as consumed by the comparison engine.
// Coefficients is the tidy-extraction collaborator; Refit is what the
// bootstrap uses to refit the same specification on a resampled frame.
type FittedModel interface {
	// Name identifies the model; comparison rows are keyed by the larger model's name
	Name() string

	// Coefficients returns the tidy coefficient table (term, estimate, std error, ...)
	Coefficients() []stats.Coefficient

	// Fit returns the model's summary statistics
	Fit() stats.FitStatistics

	// Data returns the frame the model was fitted on (read-only)
	Data() *dataset.Frame

	// Refit fits the same specification on another frame
	Refit(frame *dataset.Frame) (FittedModel, error)
}
