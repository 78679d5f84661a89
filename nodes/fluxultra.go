package nodes

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hdelmont/mediagraph/graph"
	"github.com/hdelmont/mediagraph/imaging"
)

const fluxUltraApp = "fal-ai/flux-pro/v1.1-ultra"

// FluxProUltra generates images from text with Flux 1.1 Pro Ultra on fal.ai.
// Like the kontext node it never errors; the larger placeholder matches the
// node's landscape output sizes.
type FluxProUltra struct {
	deps  *Deps
	style imaging.ErrorStyle
}

// NewFluxProUltra constructs the text-to-image node.
func NewFluxProUltra(d *Deps) *FluxProUltra {
	return &FluxProUltra{
		deps: d,
		style: imaging.ErrorStyle{
			Width:     1024,
			Height:    768,
			MaxChars:  500,
			MaxLines:  15,
			LineChars: 80,
			WordChars: 50,
		},
	}
}

func (n *FluxProUltra) Describe() graph.Descriptor {
	return graph.Descriptor{
		Type:        "FluxProUltra",
		DisplayName: "Flux 1.1 Pro Ultra",
		Category:    "image/generate",
		Inputs: []graph.Field{
			{Name: "prompt", Kind: graph.KindString, Required: true, Multiline: true,
				Default:     "A beautiful landscape with mountains and a lake at sunset",
				Placeholder: "Describe the image you want to generate..."},
			{Name: "api_key", Kind: graph.KindString, Placeholder: "fal.ai API key (config default when empty)"},
			{Name: "image_size", Kind: graph.KindChoice,
				Choices: []string{"square_hd", "square", "portrait_4_3", "portrait_16_9", "landscape_4_3", "landscape_16_9"},
				Default: "landscape_4_3"},
			{Name: "num_images", Kind: graph.KindInt, Default: 1, Min: 1, Max: 4, Step: 1},
			{Name: "seed", Kind: graph.KindInt, Default: 0, Min: 0, Max: 2147483647},
			{Name: "guidance_scale", Kind: graph.KindFloat, Default: 3.5, Min: 1.0, Max: 20.0, Step: 0.1},
			{Name: "output_format", Kind: graph.KindChoice, Choices: []string{"jpeg", "png"}, Default: "jpeg"},
			{Name: "safety_tolerance", Kind: graph.KindChoice,
				Choices: []string{"1", "2", "3", "4", "5", "6"}, Default: "2"},
		},
		ReturnKinds: []graph.Kind{graph.KindImage, graph.KindString, graph.KindInt},
		ReturnNames: []string{"image", "info", "seed_used"},
	}
}

func (n *FluxProUltra) fail(message string, seed int) *graph.Result {
	n.deps.Logger.Warn("flux ultra failed", zap.String("message", message))
	return &graph.Result{Values: []any{n.style.Render(message), message, seed}}
}

func (n *FluxProUltra) Execute(ctx context.Context, in graph.Inputs) (*graph.Result, error) {
	apiKey := strings.TrimSpace(in.StringOr("api_key", ""))
	if apiKey == "" && n.deps.Config.Fal.APIKey == "" {
		return n.fail("API key is required. Please enter your Fal AI API key.", 0), nil
	}
	prompt := strings.TrimSpace(in.StringOr("prompt", ""))
	if prompt == "" {
		return n.fail("Prompt is required.", 0), nil
	}

	seed := in.IntOr("seed", 0)
	if seed == 0 {
		seed = randomFluxSeed()
	}

	guidance := in.FloatOr("guidance_scale", 3.5)
	size := in.StringOr("image_size", "landscape_4_3")
	format := in.StringOr("output_format", "jpeg")
	payload := map[string]any{
		"prompt":           prompt,
		"image_size":       size,
		"num_images":       in.IntOr("num_images", 1),
		"seed":             seed,
		"guidance_scale":   guidance,
		"output_format":    format,
		"safety_tolerance": in.StringOr("safety_tolerance", "2"),
	}

	client := n.deps.falClient(apiKey)
	doc, err := client.Subscribe(ctx, fluxUltraApp, payload)
	if err != nil {
		return n.fail("Error: "+err.Error(), 0), nil
	}

	urls, err := doc.MediaURLs("images", "image")
	if err != nil {
		return n.fail("No images returned from API", seed), nil
	}

	out, err := n.deps.downloadImages(ctx, urls)
	if err != nil {
		return n.fail("Error: "+err.Error(), 0), nil
	}

	// Providers may substitute their own seed; report the one actually used.
	usedSeed := seed
	if reported := doc.Int("seed"); reported != 0 {
		usedSeed = int(reported)
	}

	info := fmt.Sprintf("Generated %d image(s) with Flux 1.1 Pro Ultra\nSeed: %d\nImage Size: %s\nGuidance Scale: %g\nOutput Format: %s",
		len(urls), usedSeed, size, guidance, format)
	return &graph.Result{Values: []any{out, info, usedSeed}}, nil
}
