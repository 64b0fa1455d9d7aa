// Package llm adapts text-generation backends behind a single Generator
// interface. Backends are selected at process start and make exactly one
// outbound call per Generate; retries are the caller's decision.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Request describes a single prompt.
type Request struct {
	System      string
	Prompt      string
	// JSON asks the backend to constrain output to a JSON object.
	JSON        bool
	MaxTokens   int
	Temperature float64
}

// Response is the complete, non-streamed model output.
type Response struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	Latency          time.Duration
}

// Generator defines a pluggable LLM backend.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
	// Name identifies the backend in logs and metrics.
	Name() string
}

// Backend names.
const (
	BackendNone   = "none"
	BackendOpenAI = "openai"
	BackendOllama = "ollama"
	BackendExec   = "exec"
)

// Options selects and configures a backend.
type Options struct {
	Backend  string
	Endpoint string
	APIKey   string
	Model    string
	Command  string
	// Timeout bounds one HTTP round trip. Zero means no client-side limit.
	Timeout time.Duration
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// New builds the backend named in opts. It returns ErrUnconfigured when no
// usable backend is configured, e.g. the openai backend without a key.
func New(opts Options) (Generator, error) {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	switch opts.Backend {
	case "", BackendNone:
		return nil, ErrUnconfigured
	case BackendOpenAI:
		if opts.APIKey == "" {
			return nil, fmt.Errorf("%w: openai api key missing", ErrUnconfigured)
		}
		return NewOpenAIGenerator(client, opts.Endpoint, opts.APIKey, opts.Model), nil
	case BackendOllama:
		if opts.Endpoint == "" {
			return nil, fmt.Errorf("%w: ollama endpoint missing", ErrUnconfigured)
		}
		return NewOllamaGenerator(client, opts.Endpoint, opts.Model), nil
	case BackendExec:
		if opts.Command == "" {
			return nil, fmt.Errorf("%w: llm command missing", ErrUnconfigured)
		}
		return NewExecGenerator(opts.Command)
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrUnconfigured, opts.Backend)
	}
}
