package service

import (
	"path/filepath"
	"strings"
)

// MaxUploadBytes is the largest accepted recording (50 MiB, inclusive).
const MaxUploadBytes int64 = 50 << 20

// acceptedExtensions are matched case-insensitively against the filename.
var acceptedExtensions = map[string]struct{}{ //nolint:gochecknoglobals // read-only lookup
	".mp3": {},
	".wav": {},
}

// UploadedAudio is one recording as received from the client. Data may be
// truncated past the upload ceiling; Size is the number of bytes received.
type UploadedAudio struct {
	Data     []byte
	Filename string
	MIMEType string
	Size     int64
}

// Validate runs the presence, type and size checks in that order.
func (a *UploadedAudio) Validate(maxBytes int64) error {
	if a == nil || a.Size <= 0 {
		return NewValidationError(KindMissingAudio)
	}
	if !acceptedType(a.MIMEType, a.Filename) {
		return NewValidationError(KindInvalidType)
	}
	if a.Size > maxBytes {
		return NewValidationError(KindTooLarge)
	}
	return nil
}

func acceptedType(mimeType, filename string) bool {
	if strings.Contains(strings.ToLower(mimeType), "audio") {
		return true
	}
	_, ok := acceptedExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}
