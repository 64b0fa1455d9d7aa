package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
)

const (
	defaultOpenAIEndpoint = "https://api.openai.com/v1"
	errorBodyLimit        = 512
)

// OpenAI speech-to-text via audio/transcriptions.
type openAITranscriber struct {
	client   *http.Client
	endpoint string
	apiKey   string
	model    string
	language string
}

// NewOpenAITranscriber posts audio to an OpenAI-compatible transcription endpoint.
func NewOpenAITranscriber(client *http.Client, endpoint, apiKey, model, language string) Transcriber {
	if endpoint == "" {
		endpoint = defaultOpenAIEndpoint
	}
	if model == "" {
		model = "whisper-1"
	}
	return &openAITranscriber{
		client:   client,
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		model:    model,
		language: language,
	}
}

func (o *openAITranscriber) Name() string { return BackendOpenAI }

type openAIResp struct {
	Text string `json:"text"`
}

func (o *openAITranscriber) Transcribe(ctx context.Context, audio Audio) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("model", o.model); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscriptionFailure, err)
	}
	if o.language != "" {
		if err := mw.WriteField("language", o.language); err != nil {
			return "", fmt.Errorf("%w: %w", ErrTranscriptionFailure, err)
		}
	}

	name := filepath.Base(audio.Filename)
	if name == "." || name == "/" {
		name = "audio"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	if audio.MIMEType != "" {
		h.Set("Content-Type", audio.MIMEType)
	} else {
		h.Set("Content-Type", "application/octet-stream")
	}
	fw, err := mw.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscriptionFailure, err)
	}
	if _, err := fw.Write(audio.Data); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscriptionFailure, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscriptionFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint+"/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscriptionFailure, err)
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscriptionFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return "", fmt.Errorf("%w: openai http %d: %s", ErrTranscriptionFailure, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var or openAIResp
	if err := json.NewDecoder(resp.Body).Decode(&or); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrTranscriptionFailure, err)
	}
	return nonEmpty(or.Text)
}

func nonEmpty(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty transcript", ErrTranscriptionFailure)
	}
	return text, nil
}
