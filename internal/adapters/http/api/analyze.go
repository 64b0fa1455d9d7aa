package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	service "github.com/okian/callqa/internal/app"
	"github.com/okian/callqa/pkg/logger"
)

const (
	audioField = "audio"
	// multipartOverhead leaves room for boundaries, headers and small fields
	// on top of the audio ceiling before the body is cut off.
	multipartOverhead = 1 << 20

	headerEvaluationID   = "X-Evaluation-ID"
	headerEvaluationMode = "X-Evaluation-Mode"
)

// AnalyzeHandler handles call uploads.
type AnalyzeHandler struct {
	pipeline Pipeline
	logger   logger.Logger
}

// NewAnalyzeHandler creates a new analyze-call handler.
func NewAnalyzeHandler(pipeline Pipeline, l logger.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{pipeline: pipeline, logger: l}
}

// HandleAnalyzeCall handles POST /api/analyze-call requests.
func (h *AnalyzeHandler) HandleAnalyzeCall(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze_call"
	ctx := r.Context()

	audio, err := h.readUpload(w, r)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, string(ve.Kind), ve.Message)
			return
		}
		h.logger.Error(ctx, "reading upload failed", logger.Error(WrapKind(op, ErrInternal, err)))
		writeInternalError(w)
		return
	}

	out, err := h.pipeline.Analyze(ctx, audio)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, string(ve.Kind), ve.Message)
			return
		}
		h.logger.Error(ctx, "analyze call failed", logger.Error(WrapKind(op, ErrInternal, err)))
		writeInternalError(w)
		return
	}

	mode := "live"
	if out.Degraded() {
		mode = "degraded"
	}
	w.Header().Set(headerEvaluationID, out.ID)
	w.Header().Set(headerEvaluationMode, mode)
	writeJSON(w, http.StatusOK, out.Result)
}

// readUpload streams the multipart body and returns the first "audio" file
// part. At most MaxUploadBytes+1 bytes of it are buffered, which is enough to
// tell an oversized upload apart. A nil result means no audio was sent.
func (h *AnalyzeHandler) readUpload(w http.ResponseWriter, r *http.Request) (*service.UploadedAudio, error) {
	limit := h.pipeline.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		// Not multipart at all: there is no audio field to read.
		return nil, nil
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			if isTooLarge(err) {
				return nil, service.NewValidationError(service.KindTooLarge)
			}
			// A truncated or garbled body carries no readable audio.
			return nil, nil
		}
		if part.FormName() != audioField || part.FileName() == "" {
			_ = part.Close()
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, limit+1))
		_ = part.Close()
		if err != nil && !isTooLarge(err) {
			return nil, fmt.Errorf("read audio part: %w", err)
		}
		size := int64(len(data))
		if isTooLarge(err) {
			size = limit + 1
		}
		return &service.UploadedAudio{
			Data:     data,
			Filename: part.FileName(),
			MIMEType: part.Header.Get("Content-Type"),
			Size:     size,
		}, nil
	}
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
