package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Per-operation timeouts. A timed-out or non-zero ffmpeg run is reported as
// an error carrying the captured stderr; nothing is retried.
const (
	ConcatTimeout = 600 * time.Second
	MuxTimeout    = 300 * time.Second
)

// Executor abstracts process execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (stderr string, err error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

// RunnerOption configures the ffmpeg runner.
type RunnerOption func(*Runner)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) RunnerOption {
	return func(r *Runner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// WithLogger sets the runner logger.
func WithLogger(logger *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Runner wraps ffmpeg invocations.
type Runner struct {
	binary string
	exec   Executor
	logger *zap.Logger
}

// NewRunner constructs an ffmpeg runner ("ffmpeg" on PATH when binary is
// empty).
func NewRunner(binary string, opts ...RunnerOption) *Runner {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	r := &Runner{
		binary: binary,
		exec:   commandExecutor{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Concat joins the clips named in a concat-demuxer list file into output,
// copying streams without re-encoding.
func (r *Runner) Concat(ctx context.Context, listPath, output string) error {
	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		output,
	}
	return r.run(ctx, args, ConcatTimeout)
}

// MuxAudio muxes audioPath onto videoPath, re-encoding only the audio
// stream. The volume filter is applied when volume differs from 1.0, and
// -shortest truncates to the shorter stream when trimToShortest is set.
func (r *Runner) MuxAudio(ctx context.Context, videoPath, audioPath, output string, volume float64, trimToShortest bool) error {
	args := []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
	}
	if volume != 1.0 {
		args = append(args, "-filter:a", "volume="+strconv.FormatFloat(volume, 'f', -1, 64))
	}
	if trimToShortest {
		args = append(args, "-shortest")
	}
	args = append(args, output)
	return r.run(ctx, args, MuxTimeout)
}

func (r *Runner) run(ctx context.Context, args []string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r.logger.Debug("running ffmpeg", zap.Strings("args", args))
	stderr, err := r.exec.Run(ctx, r.binary, args)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("ffmpeg timed out after %s: %s", timeout, lastLine(stderr))
		}
		return fmt.Errorf("ffmpeg failed: %w: %s", err, strings.TrimSpace(stderr))
	}
	return nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}
