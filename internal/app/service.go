// Package service implements the call-evaluation pipeline behind the HTTP
// API: validate the upload, transcribe, evaluate, and fall back to the
// degraded result whenever a downstream capability is missing or fails.
package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/okian/callqa/internal/adapters/stt"
	"github.com/okian/callqa/internal/domain/degraded"
	"github.com/okian/callqa/internal/domain/evaluation"
	"github.com/okian/callqa/internal/domain/rubric"
	"github.com/okian/callqa/internal/domain/scoring"
	"github.com/okian/callqa/pkg/logger"
	"github.com/okian/callqa/pkg/metrics"
)

// Degraded reasons.
const (
	ReasonEvaluationUnconfigured = "evaluation_unconfigured"
	ReasonTranscriptionFailed    = "transcription_failed"
)

const providerNone = "none"

// Outcome is the pipeline result for one upload.
type Outcome struct {
	// ID identifies this invocation in logs and response headers.
	ID     string
	Result evaluation.Result
	// Reason is empty for live results.
	Reason string
}

// Degraded reports whether the result is the static fallback.
func (o Outcome) Degraded() bool { return o.Result.Degraded }

// Service orchestrates one evaluation per call to Analyze. It holds no
// per-request state, so concurrent calls are independent.
type Service struct {
	transcriber stt.Transcriber
	evaluator   scoring.Evaluator
	rubric      *rubric.Rubric

	maxUploadBytes int64
	sttProvider    string
	evalProvider   string

	logger logger.Logger
	tracer trace.Tracer

	unconfiguredOnce sync.Once
	startedAt        time.Time

	live     atomic.Int64
	degraded atomic.Int64
	rejected atomic.Int64
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithMaxUploadBytes changes the upload ceiling.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithProviders records backend names for stats and metrics.
func WithProviders(sttProvider, evalProvider string) Option {
	return func(s *Service) {
		s.sttProvider = sttProvider
		s.evalProvider = evalProvider
	}
}

// New constructs a Service. A nil transcriber counts as unconfigured.
func New(transcriber stt.Transcriber, evaluator scoring.Evaluator, opts ...Option) *Service {
	s := &Service{
		transcriber:    transcriber,
		evaluator:      evaluator,
		rubric:         rubric.Canonical(),
		maxUploadBytes: MaxUploadBytes,
		sttProvider:    providerNone,
		evalProvider:   providerNone,
		tracer:         otel.Tracer("github.com/okian/callqa/pipeline"),
		startedAt:      time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("pipeline")
	}
	return s
}

// Rubric returns the rubric results are scored against.
func (s *Service) Rubric() *rubric.Rubric { return s.rubric }

// MaxUploadBytes returns the upload ceiling.
func (s *Service) MaxUploadBytes() int64 { return s.maxUploadBytes }

// EvaluationConfigured reports whether live evaluation is possible.
func (s *Service) EvaluationConfigured() bool {
	return s.evaluator != nil && s.evaluator.Configured()
}

// TranscriptionConfigured reports whether a real transcription backend is wired.
func (s *Service) TranscriptionConfigured() bool { return stt.IsConfigured(s.transcriber) }

// ReportCapabilities logs and exports which capabilities are configured.
// Called once at startup.
func (s *Service) ReportCapabilities(ctx context.Context) {
	metrics.SetCapability("transcription", s.sttProvider, s.TranscriptionConfigured())
	metrics.SetCapability("evaluation", s.evalProvider, s.EvaluationConfigured())

	if !s.TranscriptionConfigured() {
		s.logger.Warn(ctx, "transcription not configured; every evaluation will be degraded")
	}
	if !s.EvaluationConfigured() {
		s.logger.Warn(ctx, "evaluation service not configured; serving degraded results")
		return
	}
	s.logger.Info(ctx, "evaluation pipeline ready",
		logger.String("stt", s.sttProvider),
		logger.String("llm", s.evalProvider),
	)
}

// Analyze runs the pipeline for one upload. The only error it returns is a
// *ValidationError; every downstream failure yields a degraded Outcome.
func (s *Service) Analyze(ctx context.Context, audio *UploadedAudio) (Outcome, error) {
	if err := audio.Validate(s.maxUploadBytes); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			metrics.RecordValidationError(string(ve.Kind))
		}
		metrics.RecordEvaluation(metrics.OutcomeRejected)
		s.rejected.Add(1)
		return Outcome{}, err
	}

	id := uuid.NewString()
	log := s.logger.With(logger.String("evaluation_id", id))

	metrics.IncInFlight()
	defer metrics.DecInFlight()
	metrics.RecordUploadSize(audio.Size)

	ctx, span := s.tracer.Start(ctx, "pipeline.evaluate", trace.WithAttributes(
		attribute.String("evaluation.id", id),
		attribute.Int64("upload.bytes", audio.Size),
		attribute.String("upload.mime", audio.MIMEType),
	))
	defer span.End()

	start := time.Now()
	out := s.run(ctx, log, id, audio)

	if out.Degraded() {
		s.degraded.Add(1)
		metrics.RecordEvaluation(metrics.OutcomeDegraded)
		metrics.RecordDegraded(out.Reason)
		span.SetAttributes(attribute.String("degraded.reason", out.Reason))
	} else {
		s.live.Add(1)
		metrics.RecordEvaluation(metrics.OutcomeLive)
		metrics.RecordTotalScore(out.Result.Total())
	}
	metrics.RecordStageLatency("pipeline", outcomeLabel(out), time.Since(start))
	span.SetAttributes(attribute.String("evaluation.outcome", outcomeLabel(out)))

	log.Info(ctx, "call evaluated",
		logger.Bool("degraded", out.Degraded()),
		logger.String("reason", out.Reason),
		logger.Int("total", out.Result.Total()),
		logger.Int64("bytes", audio.Size),
		logger.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

func (s *Service) run(ctx context.Context, log logger.Logger, id string, audio *UploadedAudio) Outcome {
	if !s.EvaluationConfigured() {
		s.unconfiguredOnce.Do(func() {
			log.Warn(ctx, "evaluation service not configured; returning degraded result")
		})
		return s.fallback(id, ReasonEvaluationUnconfigured)
	}

	transcript, err := s.transcribe(ctx, audio)
	if err != nil {
		log.Warn(ctx, "transcription failed; returning degraded result", logger.Error(err))
		return s.fallback(id, ReasonTranscriptionFailed)
	}
	metrics.RecordTranscriptLength(len(transcript))

	t0 := time.Now()
	res, err := s.evaluator.Evaluate(ctx, transcript)
	metrics.RecordStageLatency("evaluation", status(err), time.Since(t0))
	if err != nil {
		reason := scoring.Reason(err)
		if !errors.Is(err, scoring.ErrMalformedEvaluation) {
			metrics.RecordExternalError("llm", errorType(err))
		}
		log.Warn(ctx, "evaluation failed; returning degraded result",
			logger.String("reason", reason),
			logger.Error(err),
		)
		trace.SpanFromContext(ctx).SetStatus(codes.Error, reason)
		return s.fallback(id, reason)
	}
	return Outcome{ID: id, Result: res}
}

func (s *Service) transcribe(ctx context.Context, audio *UploadedAudio) (string, error) {
	if s.transcriber == nil {
		return "", stt.ErrTranscriptionFailure
	}
	ctx, span := s.tracer.Start(ctx, "stt.transcribe", trace.WithAttributes(
		attribute.String("stt.backend", s.transcriber.Name()),
	))
	defer span.End()

	t0 := time.Now()
	text, err := s.transcriber.Transcribe(ctx, stt.Audio{
		Data:     audio.Data,
		Filename: audio.Filename,
		MIMEType: audio.MIMEType,
	})
	metrics.RecordStageLatency("transcription", status(err), time.Since(t0))
	if err != nil {
		metrics.RecordExternalError("stt", errorType(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "transcription failed")
		return "", err
	}
	span.SetAttributes(attribute.Int("transcript.chars", len(text)))
	return text, nil
}

func (s *Service) fallback(id, reason string) Outcome {
	return Outcome{ID: id, Result: degraded.Result(), Reason: reason}
}

func outcomeLabel(o Outcome) string {
	if o.Degraded() {
		return metrics.OutcomeDegraded
	}
	return metrics.OutcomeLive
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func errorType(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, stt.ErrUnconfigured):
		return "unconfigured"
	default:
		return "error"
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"uptimeSeconds":           int64(time.Since(s.startedAt).Seconds()),
		"transcriptionProvider":   s.sttProvider,
		"transcriptionConfigured": s.TranscriptionConfigured(),
		"evaluationProvider":      s.evalProvider,
		"evaluationConfigured":    s.EvaluationConfigured(),
		"rubricParameters":        s.rubric.Len(),
		"maxScore":                s.rubric.MaxScore(),
		"maxUploadBytes":          s.maxUploadBytes,
		"evaluationsLive":         s.live.Load(),
		"evaluationsDegraded":     s.degraded.Load(),
		"uploadsRejected":         s.rejected.Load(),
	}
}
