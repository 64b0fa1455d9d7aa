package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/mattn/go-shellwords"
)

type execGenerator struct {
	cmd []string
}

type execRequest struct {
	Prompt      string  `json:"prompt"`
	System      string  `json:"system,omitempty"`
	JSON        bool    `json:"json,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature"`
}

type execResponse struct {
	Content          string `json:"content"`
	PromptTokens     int    `json:"prompt_tokens,omitempty"`
	CompletionTokens int    `json:"completion_tokens,omitempty"`
}

// NewExecGenerator runs a local command per request. The request is written
// to stdin as JSON; the command prints {"content": "..."} on stdout.
func NewExecGenerator(command string) (Generator, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse llm command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: llm command empty", ErrUnconfigured)
	}
	return &execGenerator{cmd: args}, nil
}

func (g *execGenerator) Name() string { return BackendExec }

func (g *execGenerator) Generate(ctx context.Context, req Request) (Response, error) {
	input, err := json.Marshal(execRequest{
		Prompt:      req.Prompt,
		System:      req.System,
		JSON:        req.JSON,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return Response{}, fmt.Errorf("%w: encode request: %w", ErrGeneration, err)
	}

	cmd := exec.CommandContext(ctx, g.cmd[0], g.cmd[1:]...)
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		return Response{}, fmt.Errorf("%w: llm exec command failed: %w: %s", ErrGeneration, err, strings.TrimSpace(stderr.String()))
	}

	// Only the first JSON value is read; trailing output is ignored.
	var resp execResponse
	if err := json.NewDecoder(&stdout).Decode(&resp); err != nil {
		return Response{}, fmt.Errorf("%w: decode llm exec response: %w", ErrGeneration, err)
	}
	return Response{
		Content:          resp.Content,
		PromptTokens:     resp.PromptTokens,
		CompletionTokens: resp.CompletionTokens,
		Latency:          time.Since(start),
	}, nil
}
