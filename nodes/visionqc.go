package nodes

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hdelmont/mediagraph/graph"
	"github.com/hdelmont/mediagraph/imaging"
	"github.com/hdelmont/mediagraph/vision"
)

// postContentLimit caps how much article body is injected into the prompt.
const postContentLimit = 1000

// visionModelIDs maps the UI choice labels to API model identifiers.
var visionModelIDs = map[string]string{
	"GPT-4.1":      "gpt-4.1",
	"GPT-4.1 mini": "gpt-4.1-mini",
	"GPT-4.1 nano": "gpt-4.1-nano",
}

const defaultQCPrompt = `You are an expert in luxury real estate image quality control.

Analyze the upscaled image and identify ONLY obvious flaws requiring correction. If no issues exist, output nothing.

ARTICLE TITLE: {postTitle}
ARTICLE CONTENT: {postContent}
BRAND TIER: {brandProfile}

SCAN FOR THREE TYPES OF ISSUES:

REMOVE (preserve structure, remove only these elements):
- Illegible text, words, letters on surfaces (keep blank blueprints/maps)
- Logos, watermarks, branding marks
- Visible people (whole, partial, distant)
- Utility infrastructure (power lines, poles, satellite dishes, exterior AC units) UNLESS the article is specifically about solar/utilities/infrastructure
- Clutter (trash, debris, tools, packaging, construction materials)
- Duplicate fixtures (two faucets, two ovens, etc.)

FIX (correct obvious defects only):
- Broken or irregular rooflines
- Crooked, floating, or impossible furniture
- Dirty, cracked, or damaged walls/surfaces
- Visible stains or wear marks
- Missing or misaligned fixtures
- Oversaturated or color-clipped areas

MINIMIZE:
- Harsh glare or heavy shadows obscuring architecture
- Blurry or defocused foreground elements

ARTICLE CONTEXT CONSIDERATION:
Read the article title and content above. If the article discusses solar panels, utility systems, infrastructure, or related topics, DO NOT flag these elements for removal as they are relevant to the content.

BRAND TIER consideration: {brandProfile} requires clean, pristine presentation. Remove only obvious flaws and defects, not stylistic elements.

OUTPUT FORMAT:
List only actual problems found. If category has no issues, skip it entirely.

Remove: [element + location]
Fix: [issue + location]
Minimize: [issue + area]

If no issues exist at all, output: "No corrections needed"`

// OpenAIVisionQC runs an article-aware quality-control pass over an image
// with an OpenAI vision model. Problems with the call itself are reported in
// the analysis output rather than as node errors, so a review graph keeps
// flowing.
type OpenAIVisionQC struct {
	deps *Deps
}

// NewOpenAIVisionQC constructs the vision QC node.
func NewOpenAIVisionQC(d *Deps) *OpenAIVisionQC {
	return &OpenAIVisionQC{deps: d}
}

func (n *OpenAIVisionQC) Describe() graph.Descriptor {
	return graph.Descriptor{
		Type:        "OpenAIVisionQC",
		DisplayName: "OpenAI Vision QC",
		Category:    "image/analyze",
		Inputs: []graph.Field{
			{Name: "image", Kind: graph.KindImage, Required: true},
			{Name: "postTitle", Kind: graph.KindString},
			{Name: "postContent", Kind: graph.KindString, Multiline: true},
			{Name: "brandProfile", Kind: graph.KindString, Multiline: true},
			{Name: "prompt", Kind: graph.KindString, Multiline: true, Default: defaultQCPrompt},
			{Name: "model", Kind: graph.KindChoice,
				Choices: []string{"GPT-4.1", "GPT-4.1 mini", "GPT-4.1 nano"},
				Default: "GPT-4.1 mini"},
			{Name: "api_key", Kind: graph.KindString, Placeholder: "OpenAI API key (config default when empty)"},
		},
		ReturnKinds: []graph.Kind{graph.KindString},
		ReturnNames: []string{"qc_analysis"},
	}
}

func (n *OpenAIVisionQC) Execute(ctx context.Context, in graph.Inputs) (*graph.Result, error) {
	report := func(message string) *graph.Result {
		return &graph.Result{Values: []any{message}}
	}

	apiKey := strings.TrimSpace(in.StringOr("api_key", ""))
	if apiKey == "" && n.deps.Config.OpenAI.APIKey == "" {
		return report("No OpenAI API key provided. Please enter your API key or set the OPENAI_API_KEY environment variable."), nil
	}

	source, _ := in.Value("image")
	img, ok := source.(*imaging.Tensor)
	if !ok {
		return report("Error processing image: no input image connected"), nil
	}

	content := in.StringOr("postContent", "")
	if runes := []rune(content); len(runes) > postContentLimit {
		content = string(runes[:postContentLimit])
	}
	prompt := in.StringOr("prompt", defaultQCPrompt)
	prompt = strings.ReplaceAll(prompt, "{postTitle}", in.StringOr("postTitle", ""))
	prompt = strings.ReplaceAll(prompt, "{postContent}", content)
	prompt = strings.ReplaceAll(prompt, "{brandProfile}", in.StringOr("brandProfile", ""))

	model := visionModelIDs[in.StringOr("model", "GPT-4.1 mini")]
	if model == "" {
		model = n.deps.Config.OpenAI.Model
	}

	encoded, err := img.PNGBase64()
	if err != nil {
		return report("Error processing image: " + err.Error()), nil
	}

	client := n.deps.Vision
	if apiKey != "" {
		cfg := n.deps.Config.OpenAI
		cfg.APIKey = apiKey
		client = vision.NewClient(cfg, n.deps.Logger)
	}

	analysis, err := client.Analyze(ctx, model, prompt, encoded)
	if err != nil {
		n.deps.Logger.Warn("vision qc failed", zap.Error(err))
		return report("Error processing image: " + err.Error()), nil
	}
	return report(analysis), nil
}
