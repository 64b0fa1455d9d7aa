package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/okian/callqa/internal/domain/evaluation"
	"github.com/okian/callqa/internal/domain/rubric"
)

type reply struct {
	Scores          map[string]any `json:"scores"`
	OverallFeedback any            `json:"overallFeedback"`
	Observation     any            `json:"observation"`
}

// ParseReply decodes raw model output into a result that satisfies rb.
// Surrounding prose or code fences are tolerated; anything else that does not
// match the contract fails with ErrMalformedEvaluation.
func ParseReply(rb *rubric.Rubric, raw string) (evaluation.Result, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < start {
		return evaluation.Result{}, fmt.Errorf("%w: no JSON object in reply", ErrMalformedEvaluation)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw[start : end+1])))
	dec.UseNumber()
	var r reply
	if err := dec.Decode(&r); err != nil {
		return evaluation.Result{}, fmt.Errorf("%w: %w", ErrMalformedEvaluation, err)
	}
	if r.Scores == nil {
		return evaluation.Result{}, fmt.Errorf("%w: scores missing", ErrMalformedEvaluation)
	}

	feedback, ok := nonEmptyString(r.OverallFeedback)
	if !ok {
		return evaluation.Result{}, fmt.Errorf("%w: overallFeedback missing or empty", ErrMalformedEvaluation)
	}
	observation, ok := nonEmptyString(r.Observation)
	if !ok {
		return evaluation.Result{}, fmt.Errorf("%w: observation missing or empty", ErrMalformedEvaluation)
	}

	res := evaluation.Result{
		Scores:          make(map[string]int, len(r.Scores)),
		OverallFeedback: feedback,
		Observation:     observation,
	}
	for k, v := range r.Scores {
		n, err := wholeNumber(v)
		if err != nil {
			return evaluation.Result{}, fmt.Errorf("%w: score %s: %w", ErrMalformedEvaluation, k, err)
		}
		res.Scores[k] = n
	}
	if err := res.Check(rb); err != nil {
		return evaluation.Result{}, fmt.Errorf("%w: %w", ErrMalformedEvaluation, err)
	}
	return res, nil
}

func nonEmptyString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// wholeNumber accepts JSON numbers with an integral value, e.g. 12 or 12.0.
func wholeNumber(v any) (int, error) {
	num, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("not a number: %T", v)
	}
	if i, err := num.Int64(); err == nil {
		if i > math.MaxInt32 || i < math.MinInt32 {
			return 0, fmt.Errorf("out of range: %s", num)
		}
		return int(i), nil
	}
	f, err := num.Float64()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("not an integer: %s", num)
	}
	return int(f), nil
}
