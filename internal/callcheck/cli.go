package callcheck

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/callqa/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to stderr and, when logFile is set, to a file.
func SetupLogging(logFile string, verbose bool) error {
	var out io.Writer = os.Stderr
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, file)
	}

	if err := logger.Init(logger.WithOutput(out)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	if err := logger.SetLevelString(level); err != nil {
		return err
	}
	if logFile != "" {
		logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	}
	return nil
}

// ShowHelp prints usage information for the evaluate-call tool.
func ShowHelp() {
	os.Stdout.WriteString(`Call QA Evaluation Tool
=======================

Uploads one call recording to a running callqa service, checks the returned
result against the service's rubric and prints a scorecard.

Usage:
  go run ./cmd/evaluate-call [options] <recording.mp3|recording.wav>

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -timeout duration
        HTTP request timeout (default 3m0s)
  -json
        Print the raw result JSON instead of the scorecard
  -log string
        Also write log output to this file
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Score a recording against a local service
  go run ./cmd/evaluate-call call.mp3

  # Score against a remote service and keep the raw JSON
  go run ./cmd/evaluate-call -url http://qa.internal:9080 -json call.wav > result.json
`)
}
