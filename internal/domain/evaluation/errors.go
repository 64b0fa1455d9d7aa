package evaluation

import "errors"

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	ErrInvariant = errors.New("evaluation violates rubric")
)
