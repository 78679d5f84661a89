package nodes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdelmont/mediagraph/graph"
)

func TestSeedanceGeneratesVideoURL(t *testing.T) {
	fs := newFalServer(t)
	fs.doc = map[string]any{
		"video": map[string]any{"url": "https://cdn.example/video.mp4"},
	}
	deps := falDeps(t, fs)

	res, err := NewSeedanceImageToVideo(deps).Execute(context.Background(), graph.Inputs{
		"image":         testImage(16, 9),
		"prompt":        "subtle motion",
		"model_version": "lite",
		"resolution":    "720p",
		"duration":      6,
		"seed":          42,
		"camera_fixed":  true,
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"https://cdn.example/video.mp4"}, res.Values)

	assert.Equal(t, "/fal-ai/bytedance/seedance/v1/lite/image-to-video", fs.submitApp)
	assert.Equal(t, "subtle motion", fs.submitted["prompt"])
	assert.Equal(t, "720p", fs.submitted["resolution"])
	assert.Equal(t, float64(6), fs.submitted["duration"])
	assert.Equal(t, float64(42), fs.submitted["seed"])
	assert.Equal(t, true, fs.submitted["camera_fixed"])
	assert.Equal(t, true, fs.submitted["enable_safety_checker"])
	assert.Equal(t, fs.URL+"/stored.png", fs.submitted["image_url"])
}

func TestSeedanceRandomizesSentinelSeed(t *testing.T) {
	fs := newFalServer(t)
	fs.doc = map[string]any{"video": "https://cdn.example/v.mp4"}
	deps := falDeps(t, fs)

	_, err := NewSeedanceImageToVideo(deps).Execute(context.Background(), graph.Inputs{
		"image":  testImage(8, 8),
		"prompt": "p",
		"seed":   -1,
	})
	require.NoError(t, err)
	seed, ok := fs.submitted["seed"].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, seed, float64(0), "sentinel must be replaced with a drawn seed")
}

func TestSeedanceValidation(t *testing.T) {
	deps := falDeps(t, newFalServer(t))
	node := NewSeedanceImageToVideo(deps)

	_, err := node.Execute(context.Background(), graph.Inputs{"prompt": "p"})
	assert.ErrorContains(t, err, "image")

	_, err = node.Execute(context.Background(), graph.Inputs{"image": testImage(8, 8)})
	assert.ErrorContains(t, err, "prompt")

	_, err = node.Execute(context.Background(), graph.Inputs{
		"image": testImage(8, 8), "prompt": "p", "duration": 20,
	})
	assert.ErrorContains(t, err, "duration")
}

func TestSeedanceMissingVideoInResponse(t *testing.T) {
	fs := newFalServer(t)
	fs.doc = map[string]any{"detail": "something else"}
	deps := falDeps(t, fs)

	_, err := NewSeedanceImageToVideo(deps).Execute(context.Background(), graph.Inputs{
		"image": testImage(8, 8), "prompt": "p",
	})
	assert.Error(t, err)
}
