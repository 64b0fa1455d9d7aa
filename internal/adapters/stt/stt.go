// Package stt adapts speech-to-text backends behind the Transcriber interface.
package stt

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Audio is one uploaded recording. Format handling is left to the backend.
type Audio struct {
	Data     []byte
	Filename string
	MIMEType string
}

// Transcriber turns audio into non-empty text or fails with ErrTranscriptionFailure.
type Transcriber interface {
	Transcribe(ctx context.Context, audio Audio) (string, error)
	Name() string
}

// Backend names.
const (
	BackendNone   = "none"
	BackendOpenAI = "openai"
	BackendExec   = "exec"
)

// Options selects and configures a backend.
type Options struct {
	Backend  string
	Endpoint string
	APIKey   string
	Model    string
	Command  string
	Language string
	Timeout  time.Duration
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// New builds the configured backend. When nothing usable is configured it
// returns a Transcriber that always fails, along with the reason.
func New(opts Options) (Transcriber, error) {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	switch opts.Backend {
	case BackendOpenAI:
		if opts.APIKey != "" {
			return NewOpenAITranscriber(client, opts.Endpoint, opts.APIKey, opts.Model, opts.Language), nil
		}
		return unconfigured{}, fmt.Errorf("%w: openai api key missing", ErrUnconfigured)
	case BackendExec:
		t, err := NewExecTranscriber(opts.Command, opts.Model, opts.Language)
		if err != nil {
			return unconfigured{}, err
		}
		return t, nil
	case "", BackendNone:
		return unconfigured{}, ErrUnconfigured
	default:
		return unconfigured{}, fmt.Errorf("%w: unknown backend %q", ErrUnconfigured, opts.Backend)
	}
}

type unconfigured struct{}

func (unconfigured) Name() string { return BackendNone }

func (unconfigured) Transcribe(context.Context, Audio) (string, error) {
	return "", fmt.Errorf("%w: %w", ErrTranscriptionFailure, ErrUnconfigured)
}

// IsConfigured reports whether t can reach a real backend.
func IsConfigured(t Transcriber) bool {
	if t == nil {
		return false
	}
	_, none := t.(unconfigured)
	return !none
}
