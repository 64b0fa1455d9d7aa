// Package rubric holds the fixed, weighted table of call-quality parameters.
//
// The table is process-wide and read-only: callers receive copies and there
// is no mutation path, so it can be shared by concurrent requests without
// synchronization.
package rubric

import (
	"encoding/json"
	"fmt"
)

// Mode describes how a parameter may be scored.
type Mode int

const (
	// PassFail parameters score either 0 or the full weight.
	PassFail Mode = iota + 1
	// Scaled parameters score any integer in [0, weight].
	Scaled
)

// String returns the wire name of the mode.
func (m Mode) String() string {
	switch m {
	case PassFail:
		return "PASS_FAIL"
	case Scaled:
		return "SCALED"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// MarshalJSON encodes the mode by name.
func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes a mode from its wire name.
func (m *Mode) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("%w: scoring mode: %w", ErrInvalidRubric, err)
	}
	switch name {
	case "PASS_FAIL":
		*m = PassFail
	case "SCALED":
		*m = Scaled
	default:
		return fmt.Errorf("%w: unknown scoring mode %q", ErrInvalidRubric, name)
	}
	return nil
}

// Parameter is a single rubric row.
type Parameter struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Weight      int    `json:"weight"`
	Description string `json:"description"`
	Mode        Mode   `json:"scoringMode"`
}

// Allows reports whether score is a legal value for this parameter.
func (p Parameter) Allows(score int) bool {
	if score < 0 || score > p.Weight {
		return false
	}
	if p.Mode == PassFail {
		return score == 0 || score == p.Weight
	}
	return true
}

// canonical is the single source of the rubric. Never hand it out directly.
var canonical = []Parameter{ //nolint:gochecknoglobals // immutable configuration table
	{Key: "greeting", Name: "Greeting", Weight: 5, Description: "Call opening within 5 seconds", Mode: PassFail},
	{Key: "collectionUrgency", Name: "Collection Urgency", Weight: 15, Description: "Create urgency, cross-questioning", Mode: Scaled},
	{Key: "rebuttalCustomerHandling", Name: "Rebuttal Handling", Weight: 15, Description: "Address penalties, objections", Mode: Scaled},
	{Key: "callEtiquette", Name: "Call Etiquette", Weight: 15, Description: "Tone, empathy, clear speech", Mode: Scaled},
	{Key: "callDisclaimer", Name: "Call Disclaimer", Weight: 5, Description: "Take permission before ending", Mode: PassFail},
	{Key: "correctDisposition", Name: "Correct Disposition", Weight: 10, Description: "Use correct category with remark", Mode: PassFail},
	{Key: "callClosing", Name: "Call Closing", Weight: 5, Description: "Thank the customer properly", Mode: PassFail},
	{Key: "fatalIdentification", Name: "Identification", Weight: 5, Description: "Missing agent/customer info", Mode: PassFail},
	{Key: "fatalTapeDiscloser", Name: "Tape Disclosure", Weight: 10, Description: "Inform customer about recording", Mode: PassFail},
	{Key: "fatalToneLanguage", Name: "Tone & Language", Weight: 15, Description: "No abusive or threatening speech", Mode: PassFail},
}

// Rubric is an ordered, read-only view over a parameter table.
type Rubric struct {
	params []Parameter
	index  map[string]int
}

var standard = mustNew(canonical) //nolint:gochecknoglobals // shared immutable rubric

// Canonical returns the process-wide call-quality rubric.
func Canonical() *Rubric { return standard }

// New builds a rubric from params. Keys must be unique and non-empty and
// weights positive.
func New(params []Parameter) (*Rubric, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("%w: no parameters", ErrInvalidRubric)
	}
	r := &Rubric{
		params: make([]Parameter, len(params)),
		index:  make(map[string]int, len(params)),
	}
	copy(r.params, params)
	for i, p := range r.params {
		switch {
		case p.Key == "":
			return nil, fmt.Errorf("%w: parameter %d has empty key", ErrInvalidRubric, i)
		case p.Weight <= 0:
			return nil, fmt.Errorf("%w: %s has non-positive weight %d", ErrInvalidRubric, p.Key, p.Weight)
		case p.Mode != PassFail && p.Mode != Scaled:
			return nil, fmt.Errorf("%w: %s has unknown mode %s", ErrInvalidRubric, p.Key, p.Mode)
		}
		if _, dup := r.index[p.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate key %s", ErrInvalidRubric, p.Key)
		}
		r.index[p.Key] = i
	}
	return r, nil
}

func mustNew(params []Parameter) *Rubric {
	r, err := New(params)
	if err != nil {
		panic(err)
	}
	return r
}

// Parameters returns the ordered parameters. The slice is a copy.
func (r *Rubric) Parameters() []Parameter {
	out := make([]Parameter, len(r.params))
	copy(out, r.params)
	return out
}

// Keys returns parameter keys in rubric order.
func (r *Rubric) Keys() []string {
	keys := make([]string, len(r.params))
	for i, p := range r.params {
		keys[i] = p.Key
	}
	return keys
}

// Lookup finds a parameter by key.
func (r *Rubric) Lookup(key string) (Parameter, bool) {
	i, ok := r.index[key]
	if !ok {
		return Parameter{}, false
	}
	return r.params[i], true
}

// Len returns the number of parameters.
func (r *Rubric) Len() int { return len(r.params) }

// MaxScore is the sum of all weights.
func (r *Rubric) MaxScore() int {
	total := 0
	for _, p := range r.params {
		total += p.Weight
	}
	return total
}
