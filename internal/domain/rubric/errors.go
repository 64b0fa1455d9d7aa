package rubric

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInvalidRubric = errors.New("invalid rubric")
)
