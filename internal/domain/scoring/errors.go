package scoring

import "errors"

var (
	// ErrEvaluationServiceUnconfigured means no text-generation backend is wired.
	ErrEvaluationServiceUnconfigured = errors.New("evaluation service not configured")
	// ErrEvaluationServiceFailure covers transport and status failures of the backend.
	ErrEvaluationServiceFailure = errors.New("evaluation service failed")
	// ErrMalformedEvaluation means the backend answered but the answer does
	// not satisfy the rubric contract. Such output is never repaired.
	ErrMalformedEvaluation = errors.New("malformed evaluation")
)
