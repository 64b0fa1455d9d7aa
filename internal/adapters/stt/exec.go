package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mattn/go-shellwords"
)

type execTranscriber struct {
	cmd      []string
	model    string
	language string
}

type execResult struct {
	Text string `json:"text"`
}

// NewExecTranscriber runs a local whisper-style command. The audio is written
// to a temp file passed as --audio <path>; stdout must carry {"text": "..."}.
func NewExecTranscriber(command, model, language string) (Transcriber, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse stt command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: stt command is empty", ErrUnconfigured)
	}
	return &execTranscriber{cmd: args, model: model, language: language}, nil
}

func (r *execTranscriber) Name() string { return BackendExec }

func (r *execTranscriber) Transcribe(ctx context.Context, audio Audio) (string, error) {
	ext := strings.ToLower(filepath.Ext(audio.Filename))
	file, err := os.CreateTemp("", "callqa_stt_*"+ext)
	if err != nil {
		return "", fmt.Errorf("%w: temp file: %w", ErrTranscriptionFailure, err)
	}
	defer func() { _ = os.Remove(file.Name()) }()

	_, werr := file.Write(audio.Data)
	cerr := file.Close()
	if werr != nil || cerr != nil {
		return "", fmt.Errorf("%w: write temp file: %v %v", ErrTranscriptionFailure, werr, cerr)
	}

	args := append([]string{}, r.cmd[1:]...)
	args = append(args, "--audio", file.Name())
	if r.model != "" {
		args = append(args, "--model", r.model)
	}
	if r.language != "" {
		args = append(args, "--language", r.language)
	}

	command := exec.CommandContext(ctx, r.cmd[0], args...)
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("%w: stt command failed: %w: %s", ErrTranscriptionFailure, err, strings.TrimSpace(stderr.String()))
	}

	var resp execResult
	if err := json.NewDecoder(&stdout).Decode(&resp); err != nil {
		return "", fmt.Errorf("%w: decode stt response: %w", ErrTranscriptionFailure, err)
	}
	return nonEmpty(resp.Text)
}
