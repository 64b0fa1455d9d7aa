package llm

import "errors"

var (
	// ErrGeneration wraps every failure of a configured backend: transport,
	// non-2xx status, or an undecodable envelope.
	ErrGeneration = errors.New("text generation failed")
	// ErrUnconfigured reports that no backend can be built from the options.
	ErrUnconfigured = errors.New("text generation not configured")
)
