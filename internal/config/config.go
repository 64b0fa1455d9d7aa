// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Flat koanf keys, one per field, so env vars map 1:1 (CALLQA_STT_MODEL -> stt_model).
// - New() returns defaults; Load layers a YAML file and the environment on top.
// - Errors returned from Load wrap ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Provider names accepted for the transcription and evaluation capabilities.
const (
	ProviderNone   = "none"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderExec   = "exec"
)

// Trace exporters.
const (
	TraceExporterNone   = "none"
	TraceExporterStdout = "stdout"
	TraceExporterOTLP   = "otlp"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects "text" or "json" output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`
	// ReadTimeoutSec and WriteTimeoutSec bound the HTTP server. The write
	// timeout must cover transcription plus evaluation of a 50MB upload.
	ReadTimeoutSec  int `koanf:"read_timeout_sec"`
	WriteTimeoutSec int `koanf:"write_timeout_sec"`

	// STTProvider is one of none, openai, exec.
	STTProvider   string `koanf:"stt_provider"`
	STTEndpoint   string `koanf:"stt_endpoint"`
	STTAPIKey     string `koanf:"stt_api_key"`
	STTModel      string `koanf:"stt_model"`
	STTCommand    string `koanf:"stt_command"`
	STTLanguage   string `koanf:"stt_language"`
	STTTimeoutSec int    `koanf:"stt_timeout_sec"`

	// EvalProvider is one of none, openai, ollama, exec.
	EvalProvider    string  `koanf:"eval_provider"`
	EvalEndpoint    string  `koanf:"eval_endpoint"`
	EvalAPIKey      string  `koanf:"eval_api_key"`
	EvalModel       string  `koanf:"eval_model"`
	EvalCommand     string  `koanf:"eval_command"`
	EvalTemperature float64 `koanf:"eval_temperature"`
	EvalMaxTokens   int     `koanf:"eval_max_tokens"`
	EvalTimeoutSec  int     `koanf:"eval_timeout_sec"`

	// TraceExporter is one of none, stdout, otlp.
	TraceExporter string `koanf:"trace_exporter"`
	OTLPEndpoint  string `koanf:"otlp_endpoint"`
	OTLPInsecure  bool   `koanf:"otlp_insecure"`

	// CORSAllowedOrigins lists origins allowed to call the API from a browser.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		ReadTimeoutSec:  60,
		WriteTimeoutSec: 180,

		STTProvider:   ProviderOpenAI,
		STTEndpoint:   "https://api.openai.com/v1",
		STTModel:      "whisper-1",
		STTTimeoutSec: 120,

		EvalProvider:    ProviderOpenAI,
		EvalEndpoint:    "https://api.openai.com/v1",
		EvalModel:       "gpt-4o",
		EvalTemperature: 0.2,
		EvalMaxTokens:   1024,
		EvalTimeoutSec:  60,

		TraceExporter: TraceExporterNone,
		OTLPEndpoint:  "localhost:4317",

		CORSAllowedOrigins: []string{"*"},
	}
}

// ReadTimeout returns the HTTP server read timeout.
func (c *Config) ReadTimeout() time.Duration { return seconds(c.ReadTimeoutSec) }

// WriteTimeout returns the HTTP server write timeout.
func (c *Config) WriteTimeout() time.Duration { return seconds(c.WriteTimeoutSec) }

// STTTimeout returns the transport timeout for transcription calls.
func (c *Config) STTTimeout() time.Duration { return seconds(c.STTTimeoutSec) }

// EvalTimeout returns the transport timeout for evaluation calls.
func (c *Config) EvalTimeout() time.Duration { return seconds(c.EvalTimeoutSec) }

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// Validate checks provider names and numeric bounds.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	switch c.STTProvider {
	case ProviderNone, ProviderOpenAI, ProviderExec:
	default:
		return fmt.Errorf("%w: stt_provider %q", ErrInvalidConfig, c.STTProvider)
	}
	switch c.EvalProvider {
	case ProviderNone, ProviderOpenAI, ProviderOllama, ProviderExec:
	default:
		return fmt.Errorf("%w: eval_provider %q", ErrInvalidConfig, c.EvalProvider)
	}
	switch c.TraceExporter {
	case TraceExporterNone, TraceExporterStdout, TraceExporterOTLP:
	default:
		return fmt.Errorf("%w: trace_exporter %q", ErrInvalidConfig, c.TraceExporter)
	}
	for name, v := range map[string]int{
		"read_timeout_sec":  c.ReadTimeoutSec,
		"write_timeout_sec": c.WriteTimeoutSec,
		"stt_timeout_sec":   c.STTTimeoutSec,
		"eval_timeout_sec":  c.EvalTimeoutSec,
		"eval_max_tokens":   c.EvalMaxTokens,
	} {
		if v <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, name)
		}
	}
	if c.EvalTemperature < 0 || c.EvalTemperature > 2 {
		return fmt.Errorf("%w: eval_temperature must be within [0,2]", ErrInvalidConfig)
	}
	return nil
}
