// Package ollama is a client for a local Ollama endpoint, used to run
// vision-capable models (LLaVA and friends) against a single image.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultHost is the standard local Ollama address.
const DefaultHost = "http://localhost:11434"

const requestTimeout = 120 * time.Second

// Client issues generate requests against an Ollama host.
type Client struct {
	host   string
	client *http.Client
	logger *zap.Logger
}

// NewClient creates a client for the given host (DefaultHost when empty).
// The endpoint is local, so the hardened TLS transport is not used here.
func NewClient(host string, logger *zap.Logger) *Client {
	if host == "" {
		host = DefaultHost
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		host:   strings.TrimRight(host, "/"),
		client: &http.Client{Timeout: requestTimeout},
		logger: logger,
	}
}

type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images,omitempty"`
	Stream bool     `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate runs a non-streaming generate call, optionally with base64 PNG
// images attached, and returns the model's text response.
func (c *Client) Generate(ctx context.Context, model, prompt string, images []string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  model,
		Prompt: prompt,
		Images: images,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		errBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama error: status=%d body=%s", resp.StatusCode, string(errBody))
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	return strings.TrimSpace(decoded.Response), nil
}
