package core

import "fmt"

// WarningCode classifies a degraded-result warning
type WarningCode string

const (
	WarnNoModels          WarningCode = "no_models"
	WarnEpsilonClamped    WarningCode = "epsilon_clamped"
	WarnUnseededBootstrap WarningCode = "unseeded_bootstrap"
	WarnFailedResamples   WarningCode = "failed_resamples"
)

// Warning is a non-fatal notice attached to a result. The computation
// proceeded with a documented fallback.
type Warning struct {
	Code    WarningCode `json:"code" yaml:"code"`
	Message string      `json:"message" yaml:"message"`
}

// NewWarning builds a warning with a formatted message
func NewWarning(code WarningCode, format string, args ...interface{}) Warning {
	return Warning{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}
