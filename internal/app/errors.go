package service

import (
	"errors"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("upload validation failed")

// ValidationKind names a rejected-upload category.
type ValidationKind string

// Validation kinds, checked in this order.
const (
	KindMissingAudio ValidationKind = "missing-audio"
	KindInvalidType  ValidationKind = "invalid-type"
	KindTooLarge     ValidationKind = "too-large"
)

// Client-facing messages per kind.
const (
	msgMissingAudio = "No audio file provided"
	msgInvalidType  = "Invalid file type. Please upload an MP3 or WAV file."
	msgTooLarge     = "File too large. Please upload a file smaller than 50MB."
)

// ValidationError rejects an upload before any external call is made.
type ValidationError struct {
	Kind    ValidationKind
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError builds the error for kind with its client-facing message.
func NewValidationError(kind ValidationKind) *ValidationError {
	msg := msgMissingAudio
	switch kind {
	case KindInvalidType:
		msg = msgInvalidType
	case KindTooLarge:
		msg = msgTooLarge
	}
	return &ValidationError{Kind: kind, Message: msg}
}
