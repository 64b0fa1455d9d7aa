package stt

import "errors"

var (
	// ErrTranscriptionFailure wraps every failed transcription: unreachable
	// backend, rejected payload, timeout, empty text or no backend at all.
	ErrTranscriptionFailure = errors.New("transcription failed")
	// ErrUnconfigured reports that no transcription backend is available.
	ErrUnconfigured = errors.New("transcription not configured")
)
