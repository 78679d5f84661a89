package nodes

import (
	"context"

	"go.uber.org/zap"

	"github.com/hdelmont/mediagraph/graph"
	"github.com/hdelmont/mediagraph/imaging"
	"github.com/hdelmont/mediagraph/ollama"
)

// Fallbacks keep the audio pipeline running when the local model is down or
// answers with nothing.
const (
	fallbackMusicPrompt = "Ambient background music with soft instrumentation"
	emptyMusicPrompt    = "Ambient atmospheric music with gentle melodies"
)

var musicStylePrompts = map[string]string{
	"descriptive": "Analyze this image and generate a one-sentence music prompt that describes " +
		"what type of music would fit this scene. Focus on the visual elements, " +
		"atmosphere, and mood. Be specific about instruments, tempo, and style.",
	"mood_based": "Analyze the mood and emotional tone of this image. Generate a one-sentence " +
		"music prompt that captures the feeling and atmosphere. Focus on emotional " +
		"qualities like peaceful, energetic, mysterious, uplifting, etc.",
	"genre_specific": "Analyze this image and suggest a specific music genre and style that would " +
		"complement it. Generate a one-sentence prompt specifying the genre, tempo, " +
		"and key characteristics.",
	"cinematic": "Analyze this image as if it were a scene from a film. Generate a one-sentence " +
		"music prompt that describes the soundtrack that would accompany this scene. " +
		"Think about drama, pacing, and cinematic elements.",
}

// OllamaMusicPrompt turns an image into a one-sentence music prompt via a
// local vision model. It degrades to a fixed prompt rather than failing, so
// a down Ollama never stalls a render.
type OllamaMusicPrompt struct {
	deps *Deps
}

// NewOllamaMusicPrompt constructs the image-to-music-prompt node.
func NewOllamaMusicPrompt(d *Deps) *OllamaMusicPrompt {
	return &OllamaMusicPrompt{deps: d}
}

func (n *OllamaMusicPrompt) Describe() graph.Descriptor {
	return graph.Descriptor{
		Type:        "OllamaMusicPrompt",
		DisplayName: "Ollama Image to Music Prompt",
		Category:    "audio/prompt",
		Inputs: []graph.Field{
			{Name: "image", Kind: graph.KindImage, Required: true},
			{Name: "prompt_style", Kind: graph.KindChoice,
				Choices: []string{"descriptive", "mood_based", "genre_specific", "cinematic"},
				Default: "descriptive"},
			{Name: "ollama_host", Kind: graph.KindString, Default: ollama.DefaultHost},
			{Name: "model", Kind: graph.KindString, Default: "llava:7b"},
			{Name: "custom_instruction", Kind: graph.KindString, Multiline: true},
		},
		ReturnKinds: []graph.Kind{graph.KindString},
		ReturnNames: []string{"music_prompt"},
	}
}

func (n *OllamaMusicPrompt) Execute(ctx context.Context, in graph.Inputs) (*graph.Result, error) {
	fallback := &graph.Result{Values: []any{fallbackMusicPrompt}}

	source, _ := in.Value("image")
	img, ok := source.(*imaging.Tensor)
	if !ok {
		n.deps.Logger.Warn("music prompt: no input image, using fallback")
		return fallback, nil
	}

	encoded, err := img.PNGBase64()
	if err != nil {
		n.deps.Logger.Warn("music prompt: image encode failed", zap.Error(err))
		return fallback, nil
	}

	style := in.StringOr("prompt_style", "descriptive")
	prompt, ok := musicStylePrompts[style]
	if !ok {
		prompt = musicStylePrompts["descriptive"]
	}
	if custom := in.StringOr("custom_instruction", ""); custom != "" {
		prompt += "\n\nAdditional instructions: " + custom
	}

	host := in.StringOr("ollama_host", n.deps.Config.Ollama.Host)
	model := in.StringOr("model", n.deps.Config.Ollama.Model)
	client := ollama.NewClient(host, n.deps.Logger)

	answer, err := client.Generate(ctx, model, prompt, []string{encoded})
	if err != nil {
		n.deps.Logger.Warn("music prompt: ollama call failed", zap.Error(err))
		return fallback, nil
	}
	if answer == "" {
		return &graph.Result{Values: []any{emptyMusicPrompt}}, nil
	}

	n.deps.Logger.Info("generated music prompt", zap.String("prompt", answer))
	return &graph.Result{Values: []any{answer}}, nil
}
