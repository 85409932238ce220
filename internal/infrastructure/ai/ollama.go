// Package ai talks to the local Ollama server and turns its completions into
// command proposals.
//
//   - OllamaClient: POST /api/generate and GET /api/tags over HTTP
//   - Interpreter: strict JSON decode followed by an ordered chain of heuristic extractors
//
// The client returns raw completion text; interpretation is a separate step so
// that malformed model output never surfaces as an error.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/neeleshseerapu/termagent/internal/domain"
	"github.com/neeleshseerapu/termagent/internal/ports"
)

const (
	generatePath = "/api/generate"
	tagsPath     = "/api/tags"
)

// OllamaClient is a ports.ModelClient backed by an Ollama server.
type OllamaClient struct {
	endpoint   string
	model      string
	httpClient *http.Client
	logger     ports.Logger
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewOllamaClient creates a client for endpoint (e.g. http://localhost:11434).
// A non-positive timeout uses domain.DefaultBackendTimeout.
func NewOllamaClient(endpoint, model string, timeout time.Duration, logger ports.Logger) *OllamaClient {
	if timeout <= 0 {
		timeout = domain.DefaultBackendTimeout
	}
	return &OllamaClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *OllamaClient) Model() string {
	return c.model
}

// Generate sends one non-streaming completion request and returns the
// response text unmodified. Failures are never retried.
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Model: c.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("encode generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+generatePath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug("sending generate request", map[string]interface{}{
		"model":        c.model,
		"prompt_bytes": len(prompt),
	})

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", transportError("generate", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError("generate", resp)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", &domain.BackendError{Op: "generate", Err: fmt.Errorf("decode response: %w", err)}
	}

	c.logger.Debug("generate completed", map[string]interface{}{
		"duration_ms":    time.Since(start).Milliseconds(),
		"response_bytes": len(decoded.Response),
	})
	return decoded.Response, nil
}

// ListModels returns the names of the models installed on the server.
func (c *OllamaClient) ListModels(ctx context.Context) ([]string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+tagsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("create HTTP request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError("list models", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("list models", resp)
	}

	var decoded tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &domain.BackendError{Op: "list models", Err: fmt.Errorf("decode response: %w", err)}
	}

	names := make([]string, 0, len(decoded.Models))
	for _, m := range decoded.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func transportError(op string, err error) error {
	return &domain.BackendError{Op: op, Err: fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)}
}

func statusError(op string, resp *http.Response) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	cause := fmt.Errorf("unexpected status %s", resp.Status)
	if resp.StatusCode == http.StatusNotFound && op == "generate" {
		cause = fmt.Errorf("%w: %s", domain.ErrModelNotFound, resp.Status)
	}
	return &domain.BackendError{Op: op, StatusCode: resp.StatusCode, Err: cause}
}

var _ ports.ModelClient = (*OllamaClient)(nil)
