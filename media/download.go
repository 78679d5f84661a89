// Package media resolves remote media into local files and assembles clips
// with ffmpeg: stream-copy concatenation and volume-adjusted audio muxing.
package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hdelmont/mediagraph/internal/tlsutil"
)

// Download timeouts are fixed per call type; failures are reported, never
// retried.
const (
	SimpleDownloadTimeout = 30 * time.Second
	MediaDownloadTimeout  = 300 * time.Second
)

// Downloader streams remote bytes to local files.
type Downloader struct {
	client *http.Client
	logger *zap.Logger
}

// NewDownloader creates a downloader with the given per-request timeout.
func NewDownloader(timeout time.Duration, logger *zap.Logger) *Downloader {
	if timeout == 0 {
		timeout = MediaDownloadTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Downloader{
		client: tlsutil.SecureHTTPClient(timeout),
		logger: logger,
	}
}

// Fetch downloads rawURL into dest, creating or truncating the file.
// The partial file is removed when the download fails.
func (d *Downloader) Fetch(ctx context.Context, rawURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return fmt.Errorf("download request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: status=%d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	written, err := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if err != nil {
		os.Remove(dest)
		return fmt.Errorf("write file: %w", err)
	}
	if closeErr != nil {
		os.Remove(dest)
		return fmt.Errorf("close file: %w", closeErr)
	}

	d.logger.Info("downloaded media",
		zap.String("url", rawURL),
		zap.String("dest", dest),
		zap.Int64("bytes", written))
	return nil
}

// FetchBytes downloads rawURL into memory, for small payloads like
// generated images.
func (d *Downloader) FetchBytes(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("download request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: status=%d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

// IsURL reports whether the reference is remote rather than a local path.
func IsURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// TimestampName builds the output filename convention
// <prefix>_<YYYYMMDD_HHMMSS>.<ext>.
func TimestampName(prefix, ext string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, time.Now().Format("20060102_150405"), ext)
}

// ExtFromURL sniffs a known audio/video extension from a URL path, falling
// back to the given default.
func ExtFromURL(rawURL, fallback string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fallback
	}
	switch ext := strings.ToLower(strings.TrimPrefix(path.Ext(parsed.Path), ".")); ext {
	case "wav", "flac", "mp3", "ogg", "mp4", "webm", "mov":
		return ext
	}
	return fallback
}
