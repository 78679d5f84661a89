package nodes

import (
	"go.uber.org/zap"

	"github.com/hdelmont/mediagraph/config"
	"github.com/hdelmont/mediagraph/media"
	"github.com/hdelmont/mediagraph/vision"
)

// Deps bundles the shared dependencies node factories close over.
type Deps struct {
	Config *config.Config
	Logger *zap.Logger

	// Media downloads videos and audio (300s timeout); Images downloads
	// generated stills (30s timeout).
	Media  *media.Downloader
	Images *media.Downloader

	Runner   *media.Runner
	Stitcher *media.Stitcher
	Vision   *vision.Client
}

// NewDeps builds the standard dependency set from configuration.
func NewDeps(cfg *config.Config, logger *zap.Logger) *Deps {
	if logger == nil {
		logger = zap.NewNop()
	}
	mediaDL := media.NewDownloader(media.MediaDownloadTimeout, logger)
	imageDL := media.NewDownloader(media.SimpleDownloadTimeout, logger)
	runner := media.NewRunner(cfg.FFmpegBinary, media.WithLogger(logger))
	return &Deps{
		Config:   cfg,
		Logger:   logger,
		Media:    mediaDL,
		Images:   imageDL,
		Runner:   runner,
		Stitcher: media.NewStitcher(runner, mediaDL, cfg.OutputDir, logger),
		Vision:   vision.NewClient(cfg.OpenAI, logger),
	}
}
