package scoring

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/callqa/internal/domain/rubric"
)

const systemPrompt = "You are a quality assurance analyst for a debt collection call center. " +
	"You score call transcripts strictly against the rubric you are given and reply with JSON only."

// exampleScores shape the reply example; keys missing here fall back to 0.
var exampleScores = map[string]int{ //nolint:gochecknoglobals // read-only prompt fixture
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
}

// BuildPrompt renders the user prompt for one transcript.
func BuildPrompt(rb *rubric.Rubric, transcript string) string {
	var b strings.Builder
	b.WriteString("Analyze this debt collection call transcript and provide scores for the following parameters:\n\n")
	for _, p := range rb.Parameters() {
		fmt.Fprintf(&b, "%s: %s (Weight: %d, Type: %s) - %s\n", p.Key, p.Name, p.Weight, p.Mode, p.Description)
	}
	b.WriteString("\nFor PASS_FAIL parameters: Score should be either 0 (fail) or the full weight value (pass).\n")
	b.WriteString("For SCALED parameters: Score can be any whole number between 0 and the weight.\n")
	b.WriteString("Every parameter listed above must be scored and no other keys may appear.\n\n")
	fmt.Fprintf(&b, "Transcript: %q\n\n", transcript)
	b.WriteString("Respond with JSON in this exact format:\n")
	b.WriteString(exampleReply(rb))
	b.WriteString("\n")
	return b.String()
}

func exampleReply(rb *rubric.Rubric) string {
	var b strings.Builder
	b.WriteString("{\n  \"scores\": {\n")
	keys := rb.Keys()
	for i, k := range keys {
		name, _ := json.Marshal(k)
		fmt.Fprintf(&b, "    %s: %d", name, exampleScores[k])
		if i < len(keys)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("  },\n")
	b.WriteString("  \"overallFeedback\": \"Detailed feedback about the agent's performance, highlighting strengths and areas for improvement\",\n")
	b.WriteString("  \"observation\": \"Specific observations about customer interactions, compliance issues, and call quality\"\n")
	b.WriteString("}")
	return b.String()
}
