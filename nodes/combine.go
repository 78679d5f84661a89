package nodes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hdelmont/mediagraph/graph"
	"github.com/hdelmont/mediagraph/media"
)

// CombineVideoAudio muxes an audio file onto a video (local path or URL).
// The video stream is copied untouched; only audio is encoded.
type CombineVideoAudio struct {
	runner     *media.Runner
	downloader *media.Downloader
	outputDir  string
	logger     *zap.Logger
}

// NewCombineVideoAudio constructs the mux node.
func NewCombineVideoAudio(d *Deps) *CombineVideoAudio {
	return &CombineVideoAudio{
		runner:     d.Runner,
		downloader: d.Media,
		outputDir:  d.Config.OutputDir,
		logger:     d.Logger,
	}
}

func (n *CombineVideoAudio) Describe() graph.Descriptor {
	return graph.Descriptor{
		Type:        "CombineVideoAudio",
		DisplayName: "Combine Video + Audio",
		Category:    "video/edit",
		Inputs: []graph.Field{
			{Name: "video_url_or_path", Kind: graph.KindString, Required: true},
			{Name: "audio_path", Kind: graph.KindString, Required: true},
			{Name: "audio_volume", Kind: graph.KindFloat, Default: 1.0, Min: 0, Max: 2, Step: 0.1},
			{Name: "trim_audio_to_video", Kind: graph.KindBool, Default: true},
			{Name: "filename_prefix", Kind: graph.KindString, Default: "video_with_audio"},
		},
		ReturnKinds: []graph.Kind{graph.KindString},
		ReturnNames: []string{"output_path"},
		OutputNode:  true,
	}
}

func (n *CombineVideoAudio) Execute(ctx context.Context, in graph.Inputs) (*graph.Result, error) {
	videoRef := strings.TrimSpace(in.StringOr("video_url_or_path", ""))
	if videoRef == "" {
		return nil, fmt.Errorf("video_url_or_path is empty")
	}
	audioPath := strings.TrimSpace(in.StringOr("audio_path", ""))
	if audioPath == "" {
		return nil, fmt.Errorf("audio_path is empty")
	}
	if _, err := os.Stat(audioPath); err != nil {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	scratch, err := os.MkdirTemp("", "mediagraph-combine-")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(scratch); rmErr != nil {
			n.logger.Warn("scratch cleanup failed", zap.String("dir", scratch), zap.Error(rmErr))
		}
	}()

	videoPath := videoRef
	if media.IsURL(videoRef) {
		videoPath = filepath.Join(scratch, "source.mp4")
		if err := n.downloader.Fetch(ctx, videoRef, videoPath); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat(videoPath); err != nil {
		return nil, fmt.Errorf("video file not found: %s", videoPath)
	}

	prefix := strings.TrimSpace(in.StringOr("filename_prefix", "video_with_audio"))
	if prefix == "" {
		prefix = "video_with_audio"
	}
	filename := media.TimestampName(prefix, "mp4")
	output := filepath.Join(n.outputDir, filename)

	if err := n.runner.MuxAudio(ctx, videoPath, audioPath, output,
		in.FloatOr("audio_volume", 1.0),
		in.BoolOr("trim_audio_to_video", true)); err != nil {
		return nil, err
	}

	n.logger.Info("muxed audio onto video", zap.String("path", output))
	return &graph.Result{
		Values: []any{output},
		UI:     graph.OutputVideoPreview(filename),
	}, nil
}
