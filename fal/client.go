// Package fal is a minimal client for the fal.ai queue API: submit a
// generation request, poll until a terminal state, fetch the response
// document. It also uploads source files to fal storage so image-conditioned
// models can reference them by URL.
package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hdelmont/mediagraph/internal/tlsutil"
)

// Config configures the fal.ai client.
type Config struct {
	APIKey       string        `json:"api_key" yaml:"api_key"`
	QueueBaseURL string        `json:"queue_base_url" yaml:"queue_base_url"`
	RestBaseURL  string        `json:"rest_base_url" yaml:"rest_base_url"`
	Timeout      time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	PollInterval time.Duration `json:"poll_interval,omitempty" yaml:"poll_interval,omitempty"`
}

// DefaultConfig returns the default fal.ai endpoints.
func DefaultConfig() Config {
	return Config{
		QueueBaseURL: "https://queue.fal.run",
		RestBaseURL:  "https://rest.alpha.fal.ai",
		Timeout:      600 * time.Second,
		PollInterval: 2 * time.Second,
	}
}

// Client talks to the fal.ai queue and storage APIs.
type Client struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// NewClient creates a fal.ai client. A nil logger falls back to zap.NewNop().
func NewClient(cfg Config, logger *zap.Logger) *Client {
	def := DefaultConfig()
	if cfg.QueueBaseURL == "" {
		cfg.QueueBaseURL = def.QueueBaseURL
	}
	if cfg.RestBaseURL == "" {
		cfg.RestBaseURL = def.RestBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = def.PollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		client: tlsutil.SecureHTTPClient(cfg.Timeout),
		logger: logger,
	}
}

type submitResponse struct {
	RequestID   string `json:"request_id"`
	StatusURL   string `json:"status_url"`
	ResponseURL string `json:"response_url"`
}

type statusResponse struct {
	Status      string `json:"status"`
	ResponseURL string `json:"response_url"`
	Logs        []struct {
		Message string `json:"message"`
	} `json:"logs"`
}

// Subscribe submits a payload to the named app and blocks until the queued
// request reaches a terminal state, returning the response document.
// Nothing is retried; a failed or timed-out request surfaces as an error.
func (c *Client) Subscribe(ctx context.Context, app string, payload any) (Document, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("fal.ai API key is required")
	}

	endpoint := fmt.Sprintf("%s/%s", strings.TrimRight(c.cfg.QueueBaseURL, "/"), strings.Trim(app, "/"))
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	var submitted submitResponse
	if err := c.do(ctx, "POST", endpoint, bytes.NewReader(body), &submitted); err != nil {
		return nil, fmt.Errorf("fal submit: %w", err)
	}
	if submitted.StatusURL == "" || submitted.ResponseURL == "" {
		return nil, fmt.Errorf("fal submit: queue response missing status/response urls")
	}
	c.logger.Info("fal request queued",
		zap.String("app", app),
		zap.String("request_id", submitted.RequestID))

	logged := 0
	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("fal poll: %w", ctx.Err())
		case <-time.After(c.cfg.PollInterval):
		}

		var status statusResponse
		if err := c.do(ctx, "GET", submitted.StatusURL+"?logs=1", nil, &status); err != nil {
			return nil, fmt.Errorf("fal status: %w", err)
		}
		for ; logged < len(status.Logs); logged++ {
			c.logger.Info("fal progress",
				zap.String("request_id", submitted.RequestID),
				zap.String("message", status.Logs[logged].Message))
		}

		switch status.Status {
		case "COMPLETED":
			var doc Document
			if err := c.do(ctx, "GET", submitted.ResponseURL, nil, &doc); err != nil {
				return nil, fmt.Errorf("fal response: %w", err)
			}
			return doc, nil
		case "IN_QUEUE", "IN_PROGRESS":
			// keep polling
		default:
			return nil, fmt.Errorf("fal request %s ended with status %q", submitted.RequestID, status.Status)
		}
	}
}

type initiateUploadRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

type initiateUploadResponse struct {
	UploadURL string `json:"upload_url"`
	FileURL   string `json:"file_url"`
}

// Upload stores a file in fal storage and returns its URL. The server-side
// name is randomized; only the extension is preserved.
func (c *Client) Upload(ctx context.Context, ext, contentType string, data []byte) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("fal.ai API key is required")
	}

	initiate := initiateUploadRequest{
		FileName:    uuid.NewString() + ext,
		ContentType: contentType,
	}
	body, err := json.Marshal(initiate)
	if err != nil {
		return "", fmt.Errorf("encode upload request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.RestBaseURL, "/") + "/storage/upload/initiate"
	var initiated initiateUploadResponse
	if err := c.do(ctx, "POST", endpoint, bytes.NewReader(body), &initiated); err != nil {
		return "", fmt.Errorf("fal upload initiate: %w", err)
	}
	if initiated.UploadURL == "" || initiated.FileURL == "" {
		return "", fmt.Errorf("fal upload initiate: response missing upload/file urls")
	}

	putReq, err := http.NewRequestWithContext(ctx, "PUT", initiated.UploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("fal upload: %w", err)
	}
	putReq.Header.Set("Content-Type", contentType)
	resp, err := c.client.Do(putReq)
	if err != nil {
		return "", fmt.Errorf("fal upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		errBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("fal upload: status=%d body=%s", resp.StatusCode, string(errBody))
	}

	c.logger.Info("file uploaded to fal storage", zap.String("url", initiated.FileURL))
	return initiated.FileURL, nil
}

// do issues an authenticated request and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, url string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Key "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		errBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(errBody))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
