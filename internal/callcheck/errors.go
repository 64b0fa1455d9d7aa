package callcheck

import "errors"

// Sentinel error kinds for this package.
var (
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrRejected           = errors.New("upload rejected")
	ErrUnexpectedResponse = errors.New("unexpected response")
	ErrInconsistentResult = errors.New("result does not match rubric")
)
