package callcheck

import "time"

// Response headers set by the analyze endpoint.
const (
	HeaderEvaluationID   = "X-Evaluation-ID"
	HeaderEvaluationMode = "X-Evaluation-Mode"
)

// Request constants.
const (
	AudioFieldName     = "audio"
	DefaultContentType = "application/octet-stream"
	maxErrorBodyBytes  = 4 << 10
)

// Runner configuration constants.
const (
	DefaultTimeout       = 3 * time.Minute
	PercentageMultiplier = 100
)

// HTTP status code constants.
const (
	StatusOK = 200
)

// Evaluation modes reported in HeaderEvaluationMode.
const (
	ModeLive     = "live"
	ModeDegraded = "degraded"
)
