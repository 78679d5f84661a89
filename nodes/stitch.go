package nodes

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hdelmont/mediagraph/graph"
	"github.com/hdelmont/mediagraph/media"
)

// StitchVideos concatenates up to five video references (local paths or
// URLs) into a single output clip, optionally laying an audio track over the
// result.
type StitchVideos struct {
	stitcher *media.Stitcher
	logger   *zap.Logger
}

// NewStitchVideos constructs the stitch node.
func NewStitchVideos(d *Deps) *StitchVideos {
	return &StitchVideos{stitcher: d.Stitcher, logger: d.Logger}
}

func (n *StitchVideos) Describe() graph.Descriptor {
	inputs := []graph.Field{
		{Name: "video_path_1", Kind: graph.KindString, Required: true},
	}
	for i := 2; i <= media.MaxStitchInputs; i++ {
		inputs = append(inputs, graph.Field{
			Name: fmt.Sprintf("video_path_%d", i),
			Kind: graph.KindString,
		})
	}
	inputs = append(inputs,
		graph.Field{Name: "audio_path", Kind: graph.KindString},
		graph.Field{Name: "audio_volume", Kind: graph.KindFloat, Default: 1.0, Min: 0, Max: 2, Step: 0.1},
		graph.Field{Name: "filename_prefix", Kind: graph.KindString, Default: "video"},
	)
	return graph.Descriptor{
		Type:        "StitchVideos",
		DisplayName: "Stitch Videos",
		Category:    "video/edit",
		Inputs:      inputs,
		ReturnKinds: []graph.Kind{graph.KindString},
		ReturnNames: []string{"output_path"},
		OutputNode:  true,
	}
}

func (n *StitchVideos) Execute(ctx context.Context, in graph.Inputs) (*graph.Result, error) {
	refs := make([]string, 0, media.MaxStitchInputs)
	for i := 1; i <= media.MaxStitchInputs; i++ {
		refs = append(refs, in.StringOr(fmt.Sprintf("video_path_%d", i), ""))
	}

	prefix := strings.TrimSpace(in.StringOr("filename_prefix", "video"))
	if prefix == "" {
		prefix = "video"
	}

	output, filename, err := n.stitcher.Stitch(ctx,
		refs,
		in.StringOr("audio_path", ""),
		in.FloatOr("audio_volume", 1.0),
		prefix)
	if err != nil {
		return nil, err
	}

	n.logger.Info("stitched video ready", zap.String("path", output))
	return &graph.Result{
		Values: []any{output},
		UI:     graph.OutputVideoPreview(filename),
	}, nil
}
