package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrNoVideos reports a stitch call without a single video reference.
var ErrNoVideos = errors.New("at least one video reference is required")

// MaxStitchInputs bounds the number of clips one stitch accepts.
const MaxStitchInputs = 5

// Stitcher resolves up to five video references (paths or URLs) into one
// output clip, optionally muxing an audio track onto the result. Video
// streams are never re-encoded.
type Stitcher struct {
	runner     *Runner
	downloader *Downloader
	outputDir  string
	logger     *zap.Logger
}

// NewStitcher constructs a stitcher writing into outputDir.
func NewStitcher(runner *Runner, downloader *Downloader, outputDir string, logger *zap.Logger) *Stitcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stitcher{
		runner:     runner,
		downloader: downloader,
		outputDir:  outputDir,
		logger:     logger,
	}
}

// Stitch produces one video in the output directory from the given
// references. With a single reference it is a pass-through (no concat, no
// video re-encode); with several it concatenates in order via the ffmpeg
// concat demuxer. audioPath, when non-empty, is muxed onto the result with
// the given volume. Returns the output path and bare filename.
//
// All intermediate downloads and the concat list live in a scratch
// directory removed on every exit path.
func (s *Stitcher) Stitch(ctx context.Context, refs []string, audioPath string, volume float64, prefix string) (string, string, error) {
	cleaned := make([]string, 0, len(refs))
	for _, ref := range refs {
		if trimmed := strings.TrimSpace(ref); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return "", "", ErrNoVideos
	}
	if len(cleaned) > MaxStitchInputs {
		return "", "", fmt.Errorf("too many video references: %d (max %d)", len(cleaned), MaxStitchInputs)
	}
	audioPath = strings.TrimSpace(audioPath)
	if audioPath != "" {
		if _, err := os.Stat(audioPath); err != nil {
			return "", "", fmt.Errorf("audio file not found: %s", audioPath)
		}
	}

	scratch, err := os.MkdirTemp("", "mediagraph-stitch-")
	if err != nil {
		return "", "", fmt.Errorf("create scratch dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(scratch); rmErr != nil {
			s.logger.Warn("scratch cleanup failed", zap.String("dir", scratch), zap.Error(rmErr))
		}
	}()

	filename := TimestampName(prefix, "mp4")
	output := filepath.Join(s.outputDir, filename)

	if len(cleaned) == 1 {
		if err := s.passThrough(ctx, cleaned[0], audioPath, volume, output, scratch); err != nil {
			return "", "", err
		}
		return output, filename, nil
	}

	local := make([]string, 0, len(cleaned))
	for i, ref := range cleaned {
		resolved, err := s.resolve(ctx, ref, scratch, i)
		if err != nil {
			return "", "", err
		}
		local = append(local, resolved)
	}

	listPath := filepath.Join(scratch, "concat_list.txt")
	if err := writeConcatList(listPath, local); err != nil {
		return "", "", err
	}

	concatOut := output
	if audioPath != "" {
		concatOut = filepath.Join(scratch, "stitched.mp4")
	}
	s.logger.Info("concatenating clips", zap.Int("count", len(local)), zap.String("output", concatOut))
	if err := s.runner.Concat(ctx, listPath, concatOut); err != nil {
		return "", "", err
	}

	if audioPath != "" {
		s.logger.Info("muxing audio", zap.String("audio", audioPath), zap.Float64("volume", volume))
		if err := s.runner.MuxAudio(ctx, concatOut, audioPath, output, volume, true); err != nil {
			return "", "", err
		}
	}
	return output, filename, nil
}

// passThrough handles the single-reference case: resolve locally, then
// either mux audio or byte-copy into place.
func (s *Stitcher) passThrough(ctx context.Context, ref, audioPath string, volume float64, output, scratch string) error {
	local, err := s.resolve(ctx, ref, scratch, 0)
	if err != nil {
		return err
	}
	if audioPath != "" {
		return s.runner.MuxAudio(ctx, local, audioPath, output, volume, true)
	}
	return CopyFile(local, output)
}

// resolve returns a local path for the reference, downloading URLs into the
// scratch directory.
func (s *Stitcher) resolve(ctx context.Context, ref, scratch string, index int) (string, error) {
	if !IsURL(ref) {
		if _, err := os.Stat(ref); err != nil {
			return "", fmt.Errorf("video file not found: %s", ref)
		}
		return ref, nil
	}
	dest := filepath.Join(scratch, fmt.Sprintf("clip_%02d.mp4", index))
	if err := s.downloader.Fetch(ctx, ref, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// writeConcatList writes an ffmpeg concat-demuxer list, escaping single
// quotes in paths the way the demuxer expects.
func writeConcatList(path string, files []string) error {
	var b strings.Builder
	for _, file := range files {
		escaped := strings.ReplaceAll(file, "'", `'\''`)
		fmt.Fprintf(&b, "file '%s'\n", escaped)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return nil
}

// CopyFile streams src into dest without loading it into memory. A partial
// destination is removed on failure.
func CopyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return fmt.Errorf("copy: %w", err)
	}
	return out.Close()
}
