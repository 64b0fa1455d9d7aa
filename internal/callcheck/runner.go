package callcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/callqa/internal/domain/evaluation"
	"github.com/okian/callqa/internal/domain/rubric"
	"github.com/okian/callqa/pkg/logger"
)

// Run uploads the configured recording, verifies the returned result against
// the rubric the service publishes and writes the scorecard to out.
func Run(ctx context.Context, config *Config, out io.Writer) (*Report, error) {
	log := logger.Get()
	log.Info(ctx, "starting call evaluation",
		logger.String("baseURL", config.BaseURL),
		logger.String("audioFile", config.AudioFile),
		logger.String("timeout", config.Timeout.String()))

	data, err := os.ReadFile(config.AudioFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}

	client := newHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: Check service readiness
	if err := checkServiceReady(ctx, client); err != nil {
		return nil, err
	}

	// Step 2: Fetch the rubric the result is checked against
	rb, err := fetchRubric(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("rubric retrieval failed: %w", err)
	}

	// Step 3: Upload the recording
	started := time.Now()
	report, err := uploadCall(ctx, client, config.AudioFile, data)
	if err != nil {
		return nil, fmt.Errorf("evaluation request failed: %w", err)
	}
	report.Rubric = rb
	report.Duration = time.Since(started)

	// Step 4: Verify the result
	if err := verifyResult(rb, report.Result); err != nil {
		return report, err
	}

	// Step 5: Print
	if config.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report.Result); err != nil {
			return report, fmt.Errorf("failed to write result: %w", err)
		}
	} else if err := WriteScorecard(out, report); err != nil {
		return report, fmt.Errorf("failed to write scorecard: %w", err)
	}

	if report.Degraded() {
		log.Warn(ctx, "service returned the fallback result",
			logger.String("evaluationID", report.EvaluationID))
	}
	log.Info(ctx, "evaluation completed",
		logger.String("evaluationID", report.EvaluationID),
		logger.Int("total", report.Result.Total()),
		logger.Int("maxScore", rb.MaxScore()),
		logger.Bool("degraded", report.Degraded()),
		logger.Duration("duration", report.Duration))
	return report, nil
}

// checkServiceReady verifies the service is accepting requests.
func checkServiceReady(ctx context.Context, client *HTTPClient) error {
	logger.Get().Debug(ctx, "checking service readiness")

	resp, err := client.Get(ctx, "/readyz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	defer closeBody(resp)

	if resp.StatusCode != StatusOK {
		return fmt.Errorf("%w: readiness status %d", ErrServiceUnavailable, resp.StatusCode)
	}
	return nil
}

func fetchRubric(ctx context.Context, client *HTTPClient) (*rubric.Rubric, error) {
	resp, err := client.Get(ctx, "/api/rubric")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	var body RubricResponse
	if err := decodeResponse(resp, &body); err != nil {
		return nil, err
	}
	rb, err := rubric.New(body.Parameters)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}
	if rb.MaxScore() != body.MaxScore {
		return nil, fmt.Errorf("%w: maxScore %d but weights sum to %d", ErrUnexpectedResponse, body.MaxScore, rb.MaxScore())
	}
	return rb, nil
}

func uploadCall(ctx context.Context, client *HTTPClient, filename string, data []byte) (*Report, error) {
	logger.Get().Info(ctx, "uploading recording", logger.String("filename", filename), logger.Int("bytes", len(data)))

	resp, err := client.PostAudio(ctx, "/api/analyze-call", filename, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	report := &Report{EvaluationID: resp.Header.Get(HeaderEvaluationID)}

	var res evaluation.Result
	if err := decodeResponse(resp, &res); err != nil {
		return nil, err
	}
	report.Result = res

	if mode := resp.Header.Get(HeaderEvaluationMode); mode != "" && (mode == ModeDegraded) != res.Degraded {
		return nil, fmt.Errorf("%w: mode header %q disagrees with body", ErrUnexpectedResponse, mode)
	}
	return report, nil
}
