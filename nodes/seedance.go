package nodes

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hdelmont/mediagraph/graph"
	"github.com/hdelmont/mediagraph/imaging"
)

// SeedanceImageToVideo animates a still image with ByteDance's Seedance
// models on fal.ai and returns the generated video URL.
type SeedanceImageToVideo struct {
	deps *Deps
}

// NewSeedanceImageToVideo constructs the seedance node.
func NewSeedanceImageToVideo(d *Deps) *SeedanceImageToVideo {
	return &SeedanceImageToVideo{deps: d}
}

func (n *SeedanceImageToVideo) Describe() graph.Descriptor {
	return graph.Descriptor{
		Type:        "SeedanceImageToVideo",
		DisplayName: "Seedance Image to Video",
		Category:    "video/generate",
		Inputs: []graph.Field{
			{Name: "image", Kind: graph.KindImage, Required: true},
			{Name: "prompt", Kind: graph.KindString, Required: true, Multiline: true,
				Default: "high-end real-estate agency promo video, lock camera but add subtle motion and life, variations in lighting"},
			{Name: "api_key", Kind: graph.KindString, Placeholder: "fal.ai API key (config default when empty)"},
			{Name: "model_version", Kind: graph.KindChoice, Choices: []string{"pro", "lite"}, Default: "pro"},
			{Name: "resolution", Kind: graph.KindChoice, Choices: []string{"1080p", "720p", "480p"}, Default: "1080p"},
			{Name: "aspect_ratio", Kind: graph.KindChoice,
				Choices: []string{"auto", "21:9", "16:9", "4:3", "1:1", "3:4", "9:16"}, Default: "auto"},
			{Name: "duration", Kind: graph.KindInt, Default: 5, Min: 3, Max: 12},
			{Name: "seed", Kind: graph.KindInt, Default: -1, Min: -1},
			{Name: "camera_fixed", Kind: graph.KindBool, Default: false},
		},
		ReturnKinds: []graph.Kind{graph.KindString},
		ReturnNames: []string{"video_url"},
	}
}

func (n *SeedanceImageToVideo) Execute(ctx context.Context, in graph.Inputs) (*graph.Result, error) {
	tensor, ok := in.Value("image")
	img, isTensor := tensor.(*imaging.Tensor)
	if !ok || !isTensor {
		return nil, fmt.Errorf("image input is required")
	}
	prompt := strings.TrimSpace(in.StringOr("prompt", ""))
	if prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	duration := in.IntOr("duration", 5)
	if duration < 3 || duration > 12 {
		return nil, fmt.Errorf("duration %d out of range [3, 12]", duration)
	}

	seed := int64(in.IntOr("seed", -1))
	if seed == -1 {
		seed = randomSeed64()
	}

	png, err := img.EncodePNG(0)
	if err != nil {
		return nil, err
	}

	client := n.deps.falClient(in.StringOr("api_key", ""))
	imageURL, err := client.Upload(ctx, ".png", "image/png", png)
	if err != nil {
		return nil, err
	}

	version := in.StringOr("model_version", "pro")
	app := fmt.Sprintf("fal-ai/bytedance/seedance/v1/%s/image-to-video", version)
	payload := map[string]any{
		"image_url":             imageURL,
		"prompt":                prompt,
		"aspect_ratio":          in.StringOr("aspect_ratio", "auto"),
		"resolution":            in.StringOr("resolution", "1080p"),
		"duration":              duration,
		"seed":                  seed,
		"camera_fixed":          in.BoolOr("camera_fixed", false),
		"enable_safety_checker": true,
	}

	n.deps.Logger.Info("generating seedance video",
		zap.String("version", version),
		zap.Int64("seed", seed))
	doc, err := client.Subscribe(ctx, app, payload)
	if err != nil {
		return nil, err
	}

	videoURL, err := doc.MediaURL("video")
	if err != nil {
		return nil, err
	}
	return &graph.Result{Values: []any{videoURL}}, nil
}
