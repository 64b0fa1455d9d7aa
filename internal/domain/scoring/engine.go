// Package scoring turns a transcript into a rubric-conformant evaluation by
// asking a text-generation backend exactly once and validating its answer.
package scoring

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/okian/callqa/internal/adapters/llm"
	"github.com/okian/callqa/internal/domain/evaluation"
	"github.com/okian/callqa/internal/domain/rubric"
)

// Default generation parameters.
const (
	defaultMaxTokens   = 1024
	defaultTemperature = 0.2
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithMaxTokens caps the reply length.
func WithMaxTokens(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxTokens = n
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(e *Engine) {
		if t >= 0 {
			e.temperature = t
		}
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// Evaluator scores a transcript against the rubric.
type Evaluator interface {
	Evaluate(ctx context.Context, transcript string) (evaluation.Result, error)
	// Configured reports whether a generation backend is available.
	Configured() bool
}

// Engine implements Evaluator on top of an llm.Generator.
type Engine struct {
	gen         llm.Generator
	rubric      *rubric.Rubric
	maxTokens   int
	temperature float64
	tracer      trace.Tracer
}

// NewEngine creates an engine. gen may be nil, in which case every call fails
// with ErrEvaluationServiceUnconfigured.
func NewEngine(gen llm.Generator, rb *rubric.Rubric, opts ...Option) *Engine {
	if rb == nil {
		rb = rubric.Canonical()
	}
	e := &Engine{
		gen:         gen,
		rubric:      rb,
		maxTokens:   defaultMaxTokens,
		temperature: defaultTemperature,
		tracer:      otel.Tracer("github.com/okian/callqa/scoring"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Configured reports whether a generator is wired.
func (e *Engine) Configured() bool { return e.gen != nil }

// Provider names the generator backend, or "none".
func (e *Engine) Provider() string {
	if e.gen == nil {
		return llm.BackendNone
	}
	return e.gen.Name()
}

// Evaluate makes one generation call and validates the reply.
func (e *Engine) Evaluate(ctx context.Context, transcript string) (evaluation.Result, error) {
	if e.gen == nil {
		return evaluation.Result{}, ErrEvaluationServiceUnconfigured
	}

	ctx, span := e.tracer.Start(ctx, "scoring.evaluate", trace.WithAttributes(
		attribute.String("llm.backend", e.gen.Name()),
		attribute.Int("transcript.chars", len(transcript)),
	))
	defer span.End()

	resp, err := e.gen.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Prompt:      BuildPrompt(e.rubric, transcript),
		JSON:        true,
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return evaluation.Result{}, fmt.Errorf("%w: %w", ErrEvaluationServiceFailure, err)
	}
	span.SetAttributes(
		attribute.Int("llm.prompt_tokens", resp.PromptTokens),
		attribute.Int("llm.completion_tokens", resp.CompletionTokens),
	)

	res, err := ParseReply(e.rubric, resp.Content)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed reply")
		return evaluation.Result{}, err
	}
	span.SetAttributes(attribute.Int("evaluation.total", res.Total()))
	return res, nil
}

// Reason maps an Evaluate error to a short label for logs and metrics.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEvaluationServiceUnconfigured):
		return "evaluation_unconfigured"
	case errors.Is(err, ErrMalformedEvaluation):
		return "malformed_evaluation"
	default:
		return "evaluation_failed"
	}
}
