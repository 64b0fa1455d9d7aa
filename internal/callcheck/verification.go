package callcheck

import (
	"fmt"
	"io"
	"strings"

	"github.com/okian/callqa/internal/domain/evaluation"
	"github.com/okian/callqa/internal/domain/rubric"
)

// verifyResult checks the result covers exactly the rubric with legal scores.
func verifyResult(rb *rubric.Rubric, res evaluation.Result) error {
	if err := res.Check(rb); err != nil {
		return fmt.Errorf("%w: %w", ErrInconsistentResult, err)
	}
	if strings.TrimSpace(res.OverallFeedback) == "" || strings.TrimSpace(res.Observation) == "" {
		return fmt.Errorf("%w: empty feedback or observation", ErrInconsistentResult)
	}
	return nil
}

// WriteScorecard renders the report as a plain-text scorecard in rubric order.
func WriteScorecard(w io.Writer, report *Report) error {
	rb := report.Rubric
	res := report.Result

	var b strings.Builder
	mode := ModeLive
	if res.Degraded {
		mode = ModeDegraded + ", static fallback result"
	}
	fmt.Fprintf(&b, "Call evaluation %s (%s)\n\n", report.EvaluationID, mode)

	width := 0
	for _, p := range rb.Parameters() {
		width = max(width, len(p.Name))
	}
	for _, p := range rb.Parameters() {
		fmt.Fprintf(&b, "  %-*s  %s\n", width, p.Name, scoreLabel(p, res.Scores[p.Key]))
	}

	total, maxScore := res.Total(), rb.MaxScore()
	pct := 0.0
	if maxScore > 0 {
		pct = float64(total) / float64(maxScore) * PercentageMultiplier
	}
	fmt.Fprintf(&b, "\nTotal: %d/%d (%.1f%%)\n", total, maxScore, pct)
	fmt.Fprintf(&b, "\nOverall feedback:\n  %s\n", res.OverallFeedback)
	fmt.Fprintf(&b, "\nObservation:\n  %s\n", res.Observation)

	_, err := io.WriteString(w, b.String())
	return err
}

func scoreLabel(p rubric.Parameter, score int) string {
	if p.Mode == rubric.PassFail {
		if score == p.Weight {
			return fmt.Sprintf("PASS (%d/%d)", score, p.Weight)
		}
		return fmt.Sprintf("FAIL (%d/%d)", score, p.Weight)
	}
	return fmt.Sprintf("%d/%d", score, p.Weight)
}
