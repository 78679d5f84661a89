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

// PreviewVideo surfaces a local video file in the host UI. Files outside the
// output directory are copied in first, since the host can only serve from
// there.
type PreviewVideo struct {
	outputDir string
	logger    *zap.Logger
}

// NewPreviewVideo constructs the preview node.
func NewPreviewVideo(d *Deps) *PreviewVideo {
	return &PreviewVideo{outputDir: d.Config.OutputDir, logger: d.Logger}
}

func (n *PreviewVideo) Describe() graph.Descriptor {
	return graph.Descriptor{
		Type:        "PreviewVideo",
		DisplayName: "Preview Video",
		Category:    "video/io",
		Inputs: []graph.Field{
			{Name: "video_path", Kind: graph.KindString, Required: true},
		},
		OutputNode: true,
	}
}

func (n *PreviewVideo) Execute(ctx context.Context, in graph.Inputs) (*graph.Result, error) {
	path := strings.TrimSpace(in.StringOr("video_path", ""))
	if path == "" {
		return nil, fmt.Errorf("video_path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("video file not found: %s", path)
	}

	filename := filepath.Base(path)
	absOutput, err := filepath.Abs(n.outputDir)
	if err != nil {
		return nil, fmt.Errorf("resolve output dir: %w", err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve video path: %w", err)
	}

	if filepath.Dir(absPath) != absOutput {
		dest := filepath.Join(n.outputDir, filename)
		if err := media.CopyFile(absPath, dest); err != nil {
			return nil, fmt.Errorf("copy into output dir: %w", err)
		}
		n.logger.Info("copied video for preview",
			zap.String("from", absPath),
			zap.String("to", dest))
	}

	return &graph.Result{
		Values: []any{},
		UI:     graph.OutputVideoPreview(filename),
	}, nil
}
