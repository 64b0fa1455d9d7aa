// Package evaluation defines the scored call result and its invariants.
package evaluation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/callqa/internal/domain/rubric"
)

// Result is the outcome of evaluating one call against a rubric.
type Result struct {
	// Scores maps every rubric key to the points awarded.
	Scores map[string]int `json:"scores"`
	// OverallFeedback is free text about the agent's performance.
	OverallFeedback string `json:"overallFeedback"`
	// Observation is free text about the interaction and compliance.
	Observation string `json:"observation"`
	// Degraded is true when the result is the static fallback rather than
	// a live evaluation.
	Degraded bool `json:"degraded"`
}

// Total sums all scores.
func (r Result) Total() int {
	total := 0
	for _, v := range r.Scores {
		total += v
	}
	return total
}

// Clone returns a deep copy so callers never share the scores map.
func (r Result) Clone() Result {
	out := r
	out.Scores = make(map[string]int, len(r.Scores))
	for k, v := range r.Scores {
		out.Scores[k] = v
	}
	return out
}

// Check verifies r against rb: scores must cover exactly the rubric keys and
// every value must be legal for its parameter's mode. All violations are
// reported in one error wrapping ErrInvariant.
func (r Result) Check(rb *rubric.Rubric) error {
	var problems []string

	for _, p := range rb.Parameters() {
		score, ok := r.Scores[p.Key]
		if !ok {
			problems = append(problems, "missing score for "+p.Key)
			continue
		}
		if !p.Allows(score) {
			if p.Mode == rubric.PassFail {
				problems = append(problems, fmt.Sprintf("%s=%d must be 0 or %d", p.Key, score, p.Weight))
			} else {
				problems = append(problems, fmt.Sprintf("%s=%d outside [0,%d]", p.Key, score, p.Weight))
			}
		}
	}

	var unknown []string
	for key := range r.Scores {
		if _, ok := rb.Lookup(key); !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		problems = append(problems, "unknown score key "+key)
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvariant, strings.Join(problems, "; "))
}
