package nodes

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hdelmont/mediagraph/graph"
	"github.com/hdelmont/mediagraph/imaging"
)

const fluxKontextApp = "fal-ai/flux-pro/kontext"

// FluxKontextPro edits an input image with Flux.1 Kontext Pro on fal.ai.
// It never returns an error: failures come back as a rendered error image
// plus the message in the info output, keeping downstream image nodes alive.
type FluxKontextPro struct {
	deps  *Deps
	style imaging.ErrorStyle
}

// NewFluxKontextPro constructs the kontext image-edit node.
func NewFluxKontextPro(d *Deps) *FluxKontextPro {
	return &FluxKontextPro{deps: d, style: imaging.DefaultErrorStyle()}
}

func (n *FluxKontextPro) Describe() graph.Descriptor {
	return graph.Descriptor{
		Type:        "FluxKontextPro",
		DisplayName: "Flux Kontext Pro",
		Category:    "image/generate",
		Inputs: []graph.Field{
			{Name: "image", Kind: graph.KindImage, Required: true},
			{Name: "prompt", Kind: graph.KindString, Required: true, Multiline: true,
				Placeholder: "Describe what to add or modify in the image..."},
			{Name: "api_key", Kind: graph.KindString, Placeholder: "fal.ai API key (config default when empty)"},
			{Name: "aspect_ratio", Kind: graph.KindChoice,
				Choices: []string{"preserve_input", "1:1", "16:9", "21:9", "3:2", "2:3", "4:3", "3:4", "9:16", "9:21"},
				Default: "preserve_input"},
			{Name: "num_images", Kind: graph.KindInt, Default: 1, Min: 1, Max: 4, Step: 1},
			{Name: "seed", Kind: graph.KindInt, Default: 0, Min: 0, Max: 2147483647},
			{Name: "guidance_scale", Kind: graph.KindFloat, Default: 3.5, Min: 1.0, Max: 20.0, Step: 0.1},
			{Name: "output_format", Kind: graph.KindChoice, Choices: []string{"jpeg", "png"}, Default: "jpeg"},
			{Name: "safety_tolerance", Kind: graph.KindChoice,
				Choices: []string{"1", "2", "3", "4", "5", "6"}, Default: "2"},
		},
		ReturnKinds: []graph.Kind{graph.KindImage, graph.KindString},
		ReturnNames: []string{"image", "info"},
	}
}

// fail renders the message onto a placeholder image; the node contract is
// that Execute never errors.
func (n *FluxKontextPro) fail(message string) *graph.Result {
	n.deps.Logger.Warn("flux kontext failed", zap.String("message", message))
	return &graph.Result{Values: []any{n.style.Render(message), message}}
}

func (n *FluxKontextPro) Execute(ctx context.Context, in graph.Inputs) (*graph.Result, error) {
	apiKey := strings.TrimSpace(in.StringOr("api_key", ""))
	if apiKey == "" && n.deps.Config.Fal.APIKey == "" {
		return n.fail("API key is required. Please enter your Fal AI API key."), nil
	}
	prompt := strings.TrimSpace(in.StringOr("prompt", ""))
	if prompt == "" {
		return n.fail("Prompt is required."), nil
	}
	source, _ := in.Value("image")
	img, ok := source.(*imaging.Tensor)
	if !ok {
		return n.fail("Input image is required."), nil
	}

	seed := in.IntOr("seed", 0)
	if seed == 0 {
		seed = randomFluxSeed()
	}

	aspect := in.StringOr("aspect_ratio", "preserve_input")
	if aspect == "preserve_input" {
		aspect = closestAspectRatio(img.Width, img.Height)
		n.deps.Logger.Info("derived aspect ratio from input",
			zap.Int("width", img.Width),
			zap.Int("height", img.Height),
			zap.String("aspect_ratio", aspect))
	}

	png, err := img.EncodePNG(0)
	if err != nil {
		return n.fail("Error: " + err.Error()), nil
	}

	client := n.deps.falClient(apiKey)
	imageURL, err := client.Upload(ctx, ".png", "image/png", png)
	if err != nil {
		return n.fail("Error: " + err.Error()), nil
	}

	guidance := in.FloatOr("guidance_scale", 3.5)
	format := in.StringOr("output_format", "jpeg")
	payload := map[string]any{
		"prompt":           prompt,
		"image_url":        imageURL,
		"seed":             seed,
		"guidance_scale":   guidance,
		"num_images":       in.IntOr("num_images", 1),
		"aspect_ratio":     aspect,
		"output_format":    format,
		"safety_tolerance": in.StringOr("safety_tolerance", "2"),
	}

	doc, err := client.Subscribe(ctx, fluxKontextApp, payload)
	if err != nil {
		return n.fail("Error: " + err.Error()), nil
	}

	urls, err := doc.MediaURLs("images", "image")
	if err != nil {
		return n.fail("No images returned from API"), nil
	}

	out, err := n.deps.downloadImages(ctx, urls)
	if err != nil {
		return n.fail("Error: " + err.Error()), nil
	}

	info := fmt.Sprintf("Generated %d image(s) successfully\nSeed: %d\nAspect Ratio: %s\nGuidance Scale: %g\nOutput Format: %s",
		len(urls), seed, aspect, guidance, format)
	return &graph.Result{Values: []any{out, info}}, nil
}

// downloadImages fetches the URLs concurrently and batches the decoded
// frames in URL order.
func (d *Deps) downloadImages(ctx context.Context, urls []string) (*imaging.Tensor, error) {
	tensors := make([]*imaging.Tensor, len(urls))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			data, err := d.Images.FetchBytes(ctx, u)
			if err != nil {
				return err
			}
			t, err := imaging.Decode(bytes.NewReader(data))
			if err != nil {
				return err
			}
			tensors[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return imaging.Concat(tensors...)
}
