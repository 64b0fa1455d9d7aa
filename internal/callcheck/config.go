package callcheck

import (
	"time"

	"github.com/okian/callqa/internal/domain/evaluation"
	"github.com/okian/callqa/internal/domain/rubric"
)

// Config holds configuration for one evaluation run.
type Config struct {
	BaseURL   string        // Base URL of the service
	AudioFile string        // Recording to upload
	Timeout   time.Duration // HTTP request timeout
	LogFile   string        // Log file for run output
	JSON      bool          // Print the raw result instead of the scorecard
	Verbose   bool          // Enable verbose logging
}

// RubricResponse mirrors GET /api/rubric.
type RubricResponse struct {
	Parameters []rubric.Parameter `json:"parameters"`
	MaxScore   int                `json:"maxScore"`
}

// ErrorResponse mirrors the service's error body.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Report is what a run produced.
type Report struct {
	EvaluationID string
	Result       evaluation.Result
	Rubric       *rubric.Rubric
	Duration     time.Duration
}

// Degraded reports whether the service answered with the fallback result.
func (r *Report) Degraded() bool { return r.Result.Degraded }
