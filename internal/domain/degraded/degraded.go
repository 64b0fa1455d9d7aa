// Package degraded supplies the static evaluation returned when live scoring
// is unconfigured or fails.
package degraded

import (
	"github.com/okian/callqa/internal/domain/evaluation"
)

const (
	overallFeedback = "The agent demonstrated strong collection techniques and maintained professional etiquette throughout the call. " +
		"However, critical compliance issues were identified including missing call disclaimer and tape disclosure. " +
		"The agent showed good urgency creation and handled customer objections effectively."
	observation = "Customer was initially resistant but agent used appropriate pressure techniques. " +
		"Missing mandatory disclosures could result in legal compliance issues. " +
		"Agent's tone remained professional despite customer objections."
)

// Result returns the fixed fallback evaluation. Every call yields an
// independent value with identical content.
func Result() evaluation.Result {
	return evaluation.Result{
		Scores: map[string]int{
			"greeting":                 5,
			"collectionUrgency":        12,
			"rebuttalCustomerHandling": 10,
			"callEtiquette":            13,
			"callDisclaimer":           0,
			"correctDisposition":       10,
			"callClosing":              5,
			"fatalIdentification":      5,
			"fatalTapeDiscloser":       0,
			"fatalToneLanguage":        15,
		},
		OverallFeedback: overallFeedback,
		Observation:     observation,
		Degraded:        true,
	}
}
