package callcheck

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/callqa/internal/adapters/http/api"
	"github.com/okian/callqa/internal/adapters/stt"
	service "github.com/okian/callqa/internal/app"
	"github.com/okian/callqa/internal/domain/evaluation"
	"github.com/okian/callqa/internal/domain/rubric"
	"github.com/okian/callqa/internal/domain/scoring"
	"github.com/okian/callqa/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init(logger.WithOutput(io.Discard))
}

type fixedTranscriber struct{}

func (fixedTranscriber) Name() string { return "fixed" }

func (fixedTranscriber) Transcribe(context.Context, stt.Audio) (string, error) {
	return "Agent: Good morning, this call is recorded.", nil
}

type fixedEvaluator struct {
	result evaluation.Result
}

func (f fixedEvaluator) Configured() bool { return true }

func (f fixedEvaluator) Evaluate(context.Context, string) (evaluation.Result, error) {
	return f.result.Clone(), nil
}

func liveResult() evaluation.Result {
	return evaluation.Result{
		Scores: map[string]int{
			"greeting": 5, "collectionUrgency": 12, "rebuttalCustomerHandling": 10,
			"callEtiquette": 14, "callDisclaimer": 0, "correctDisposition": 10,
			"callClosing": 5, "fatalIdentification": 5, "fatalTapeDiscloser": 10,
			"fatalToneLanguage": 15,
		},
		OverallFeedback: "Clear and polite throughout.",
		Observation:     "Disclaimer was skipped before ending the call.",
	}
}

func newService(evaluator scoring.Evaluator) *httptest.Server {
	svc := service.New(fixedTranscriber{}, evaluator, service.WithLogger(logger.Discard()))
	srv := api.NewServer(svc, svc, api.WithLogger(logger.Discard()))
	return httptest.NewServer(srv.Router())
}

func writeRecording(t *testing.T, name string, size int) string {
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, bytes.Repeat([]byte{0xFF}, size), 0o600); err != nil {
		t.Fatalf("write recording: %v", err)
	}
	return path
}

func TestRun(t *testing.T) {
	Convey("Given a running service with a live evaluator", t, func() {
		ts := newService(fixedEvaluator{result: liveResult()})
		defer ts.Close()

		cfg := &Config{BaseURL: ts.URL, AudioFile: writeRecording(t, "call.mp3", 4096), Timeout: 5 * time.Second}
		var out bytes.Buffer

		Convey("When a recording is evaluated", func() {
			report, err := Run(context.Background(), cfg, &out)

			Convey("Then the verified scorecard is printed", func() {
				So(err, ShouldBeNil)
				So(report.Degraded(), ShouldBeFalse)
				So(report.EvaluationID, ShouldNotBeEmpty)
				So(report.Result.Total(), ShouldEqual, 86)
				So(out.String(), ShouldContainSubstring, "(live)")
				So(out.String(), ShouldContainSubstring, "Total: 86/100 (86.0%)")
				So(out.String(), ShouldContainSubstring, "PASS (5/5)")
				So(out.String(), ShouldContainSubstring, "FAIL (0/5)")
				So(out.String(), ShouldContainSubstring, "12/15")
			})
		})

		Convey("When raw JSON is requested", func() {
			cfg.JSON = true
			_, err := Run(context.Background(), cfg, &out)
			So(err, ShouldBeNil)

			var res evaluation.Result
			So(json.Unmarshal(out.Bytes(), &res), ShouldBeNil)
			So(res.Scores, ShouldResemble, liveResult().Scores)
		})

		Convey("When the recording has an unsupported type", func() {
			cfg.AudioFile = writeRecording(t, "notes.txt", 128)
			_, err := Run(context.Background(), cfg, &out)

			Convey("Then the rejection message is surfaced", func() {
				So(errors.Is(err, ErrRejected), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "Invalid file type")
				So(out.Len(), ShouldEqual, 0)
			})
		})

		Convey("When the recording does not exist", func() {
			cfg.AudioFile = filepath.Join(t.TempDir(), "missing.wav")
			_, err := Run(context.Background(), cfg, &out)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a service without an evaluation backend", t, func() {
		ts := newService(nil)
		defer ts.Close()

		cfg := &Config{BaseURL: ts.URL, AudioFile: writeRecording(t, "call.wav", 1024), Timeout: 5 * time.Second}
		var out bytes.Buffer
		report, err := Run(context.Background(), cfg, &out)

		Convey("Then the fallback result is marked degraded", func() {
			So(err, ShouldBeNil)
			So(report.Degraded(), ShouldBeTrue)
			So(out.String(), ShouldContainSubstring, "degraded")
		})
	})

	Convey("Given nothing listening", t, func() {
		ts := httptest.NewServer(http.NotFoundHandler())
		url := ts.URL
		ts.Close()

		cfg := &Config{BaseURL: url, AudioFile: writeRecording(t, "call.mp3", 16), Timeout: time.Second}
		_, err := Run(context.Background(), cfg, io.Discard)
		So(errors.Is(err, ErrServiceUnavailable), ShouldBeTrue)
	})
}

func TestVerifyResult(t *testing.T) {
	Convey("Given the canonical rubric", t, func() {
		rb := rubric.Canonical()

		Convey("Then a complete result passes", func() {
			So(verifyResult(rb, liveResult()), ShouldBeNil)
		})

		Convey("Then a partial PASS_FAIL score is inconsistent", func() {
			res := liveResult()
			res.Scores["greeting"] = 3
			So(errors.Is(verifyResult(rb, res), ErrInconsistentResult), ShouldBeTrue)
		})

		Convey("Then a missing key is inconsistent", func() {
			res := liveResult()
			delete(res.Scores, "callClosing")
			So(errors.Is(verifyResult(rb, res), ErrInconsistentResult), ShouldBeTrue)
		})

		Convey("Then blank feedback is inconsistent", func() {
			res := liveResult()
			res.Observation = "  "
			So(errors.Is(verifyResult(rb, res), ErrInconsistentResult), ShouldBeTrue)
		})
	})
}

func TestFetchRubric(t *testing.T) {
	Convey("Given a service publishing a wrong maxScore", t, func() {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(RubricResponse{Parameters: rubric.Canonical().Parameters(), MaxScore: 99})
		}))
		defer ts.Close()

		_, err := fetchRubric(context.Background(), newHTTPClient(ts.URL, time.Second))
		So(errors.Is(err, ErrUnexpectedResponse), ShouldBeTrue)
	})
}
