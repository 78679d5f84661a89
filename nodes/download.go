package nodes

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hdelmont/mediagraph/graph"
	"github.com/hdelmont/mediagraph/media"
)

// DownloadVideo saves a generated video URL into the output directory under
// the timestamped naming convention.
type DownloadVideo struct {
	downloader *media.Downloader
	outputDir  string
	logger     *zap.Logger
}

// NewDownloadVideo constructs the download node.
func NewDownloadVideo(d *Deps) *DownloadVideo {
	return &DownloadVideo{
		downloader: d.Media,
		outputDir:  d.Config.OutputDir,
		logger:     d.Logger,
	}
}

func (n *DownloadVideo) Describe() graph.Descriptor {
	return graph.Descriptor{
		Type:        "DownloadVideo",
		DisplayName: "Download Video",
		Category:    "video/io",
		Inputs: []graph.Field{
			{Name: "video_url", Kind: graph.KindString, Required: true},
			{Name: "filename_prefix", Kind: graph.KindString, Default: "seedance_video"},
		},
		ReturnKinds: []graph.Kind{graph.KindString},
		ReturnNames: []string{"saved_path"},
		OutputNode:  true,
	}
}

func (n *DownloadVideo) Execute(ctx context.Context, in graph.Inputs) (*graph.Result, error) {
	rawURL := strings.TrimSpace(in.StringOr("video_url", ""))
	if rawURL == "" {
		return nil, fmt.Errorf("video_url is empty")
	}
	// Upstream nodes emit "Job ID: ..." markers while a generation is still
	// pending; those must never reach the downloader.
	if strings.HasPrefix(rawURL, "Job ID:") {
		return nil, fmt.Errorf("video_url is a pending job marker, not a URL: %s", rawURL)
	}
	if !media.IsURL(rawURL) {
		return nil, fmt.Errorf("video_url is not an http(s) URL: %s", rawURL)
	}

	prefix := strings.TrimSpace(in.StringOr("filename_prefix", "seedance_video"))
	if prefix == "" {
		prefix = "seedance_video"
	}
	dest := filepath.Join(n.outputDir, media.TimestampName(prefix, "mp4"))

	if err := n.downloader.Fetch(ctx, rawURL, dest); err != nil {
		return nil, err
	}
	n.logger.Info("video saved", zap.String("path", dest))
	return &graph.Result{Values: []any{dest}}, nil
}
