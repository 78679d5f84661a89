package nodes

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdelmont/mediagraph/config"
	"github.com/hdelmont/mediagraph/graph"
	"github.com/hdelmont/mediagraph/imaging"
)

// requireErrorImage asserts the result is the placeholder-plus-message pair
// the flux nodes return instead of failing.
func requireErrorImage(t *testing.T, res *graph.Result, fragment string) {
	t.Helper()
	require.GreaterOrEqual(t, len(res.Values), 2)
	img, ok := res.Values[0].(*imaging.Tensor)
	require.True(t, ok, "first output must be an image tensor")
	assert.Equal(t, 1, img.Batch)
	info, ok := res.Values[1].(string)
	require.True(t, ok)
	assert.Contains(t, info, fragment)
}

func TestFluxKontextMissingKeyYieldsErrorImage(t *testing.T) {
	deps := testDeps(t, func(cfg *config.Config) { cfg.Fal.APIKey = "" })
	res, err := NewFluxKontextPro(deps).Execute(context.Background(), graph.Inputs{
		"image":  testImage(8, 8),
		"prompt": "p",
	})
	require.NoError(t, err, "flux nodes must not error")
	requireErrorImage(t, res, "API key is required")
}

func TestFluxKontextMissingPromptYieldsErrorImage(t *testing.T) {
	deps := falDeps(t, newFalServer(t))
	res, err := NewFluxKontextPro(deps).Execute(context.Background(), graph.Inputs{
		"image": testImage(8, 8),
	})
	require.NoError(t, err)
	requireErrorImage(t, res, "Prompt is required")
}

func TestFluxKontextMissingImageYieldsErrorImage(t *testing.T) {
	deps := falDeps(t, newFalServer(t))
	res, err := NewFluxKontextPro(deps).Execute(context.Background(), graph.Inputs{
		"prompt": "p",
	})
	require.NoError(t, err)
	requireErrorImage(t, res, "image is required")
}

func TestFluxKontextGenerates(t *testing.T) {
	fs := newFalServer(t)
	fs.doc = map[string]any{
		"images": []any{
			map[string]any{"url": fs.URL + "/img"},
			map[string]any{"url": fs.URL + "/img"},
		},
	}
	deps := falDeps(t, fs)

	res, err := NewFluxKontextPro(deps).Execute(context.Background(), graph.Inputs{
		"image":        testImage(8, 8),
		"prompt":       "add a donut",
		"aspect_ratio": "16:9",
		"num_images":   2,
		"seed":         7,
	})
	require.NoError(t, err)

	out, ok := res.Values[0].(*imaging.Tensor)
	require.True(t, ok)
	assert.Equal(t, 2, out.Batch, "both generated images batched")

	info := res.Values[1].(string)
	assert.Contains(t, info, "Generated 2 image(s)")
	assert.Contains(t, info, "Seed: 7")
	assert.Contains(t, info, "Aspect Ratio: 16:9")

	assert.Equal(t, "/fal-ai/flux-pro/kontext", fs.submitApp)
	assert.Equal(t, "add a donut", fs.submitted["prompt"])
	assert.Equal(t, "16:9", fs.submitted["aspect_ratio"])
}

func TestFluxKontextPreservesInputAspect(t *testing.T) {
	fs := newFalServer(t)
	fs.doc = map[string]any{"images": []any{map[string]any{"url": fs.URL + "/img"}}}
	deps := falDeps(t, fs)

	// 1920x1080 is closest to 16:9.
	_, err := NewFluxKontextPro(deps).Execute(context.Background(), graph.Inputs{
		"image":  testImage(1920, 1080),
		"prompt": "p",
	})
	require.NoError(t, err)
	assert.Equal(t, "16:9", fs.submitted["aspect_ratio"])
}

func TestFluxKontextZeroSeedIsRandomized(t *testing.T) {
	fs := newFalServer(t)
	fs.doc = map[string]any{"images": []any{map[string]any{"url": fs.URL + "/img"}}}
	deps := falDeps(t, fs)

	_, err := NewFluxKontextPro(deps).Execute(context.Background(), graph.Inputs{
		"image":  testImage(8, 8),
		"prompt": "p",
		"seed":   0,
	})
	require.NoError(t, err)
	seed := fs.submitted["seed"].(float64)
	assert.GreaterOrEqual(t, seed, float64(1))
	assert.LessOrEqual(t, seed, float64(2147483647))
}

func TestFluxKontextEmptyResponseYieldsErrorImage(t *testing.T) {
	fs := newFalServer(t)
	fs.doc = map[string]any{"images": []any{}}
	deps := falDeps(t, fs)

	res, err := NewFluxKontextPro(deps).Execute(context.Background(), graph.Inputs{
		"image":  testImage(8, 8),
		"prompt": "p",
	})
	require.NoError(t, err)
	requireErrorImage(t, res, "No images returned from API")
}

func TestFluxUltraGenerates(t *testing.T) {
	fs := newFalServer(t)
	fs.doc = map[string]any{
		"images": []any{map[string]any{"url": fs.URL + "/img"}},
		"seed":   float64(99),
	}
	deps := falDeps(t, fs)

	res, err := NewFluxProUltra(deps).Execute(context.Background(), graph.Inputs{
		"prompt":     "a lake at sunset",
		"image_size": "landscape_16_9",
		"seed":       12,
	})
	require.NoError(t, err)
	require.Len(t, res.Values, 3)

	_, ok := res.Values[0].(*imaging.Tensor)
	require.True(t, ok)
	assert.Contains(t, res.Values[1].(string), "Image Size: landscape_16_9")
	assert.Equal(t, 99, res.Values[2], "provider-reported seed wins")

	assert.Equal(t, "/fal-ai/flux-pro/v1.1-ultra", fs.submitApp)
	assert.Equal(t, "landscape_16_9", fs.submitted["image_size"])
	assert.NotContains(t, fs.submitted, "image_url", "text-to-image sends no source image")
}

func TestFluxUltraFailuresYieldLargerErrorImage(t *testing.T) {
	deps := testDeps(t, func(cfg *config.Config) { cfg.Fal.APIKey = "" })
	res, err := NewFluxProUltra(deps).Execute(context.Background(), graph.Inputs{
		"prompt": "p",
	})
	require.NoError(t, err)
	require.Len(t, res.Values, 3)

	img := res.Values[0].(*imaging.Tensor)
	assert.Equal(t, 1024, img.Width)
	assert.Equal(t, 768, img.Height)
	assert.Equal(t, 0, res.Values[2])
	assert.Contains(t, res.Values[1].(string), "API key is required")
}

func TestClosestAspectRatio(t *testing.T) {
	cases := []struct {
		w, h int
		want string
	}{
		{512, 512, "1:1"},
		{1920, 1080, "16:9"},
		{2560, 1080, "21:9"},
		{1080, 1920, "9:16"},
		{800, 600, "4:3"},
		{600, 800, "3:4"},
		{100, 0, "1:1"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, closestAspectRatio(tc.w, tc.h), "%dx%d", tc.w, tc.h)
	}
}

func TestDownloadImagesPreservesURLOrder(t *testing.T) {
	fs := newFalServer(t)
	solid := func(r, g, b float32) []byte {
		tensor := imaging.NewTensor(1, 4, 4)
		for i := 0; i < len(tensor.Data); i += imaging.Channels {
			tensor.Data[i] = r
			tensor.Data[i+1] = g
			tensor.Data[i+2] = b
		}
		png, err := tensor.EncodePNG(0)
		require.NoError(t, err)
		return png
	}
	red := solid(1, 0, 0)
	blue := solid(0, 0, 1)
	fs.mux().HandleFunc("/red", func(w http.ResponseWriter, r *http.Request) { w.Write(red) })
	fs.mux().HandleFunc("/blue", func(w http.ResponseWriter, r *http.Request) { w.Write(blue) })

	deps := falDeps(t, fs)
	out, err := deps.downloadImages(context.Background(), []string{
		fs.URL + "/red", fs.URL + "/blue", fs.URL + "/red",
	})
	require.NoError(t, err)
	require.Equal(t, 3, out.Batch)

	// Concurrent fetches must still batch frames in URL order.
	frame := 4 * 4 * imaging.Channels
	assert.InDelta(t, 1.0, float64(out.Data[0]), 0.01, "first frame is red")
	assert.InDelta(t, 1.0, float64(out.Data[frame+2]), 0.01, "second frame is blue")
	assert.InDelta(t, 1.0, float64(out.Data[2*frame]), 0.01, "third frame is red")
}

func TestFluxInfoEndsWithFormat(t *testing.T) {
	fs := newFalServer(t)
	fs.doc = map[string]any{"images": []any{map[string]any{"url": fs.URL + "/img"}}}
	deps := falDeps(t, fs)

	res, err := NewFluxKontextPro(deps).Execute(context.Background(), graph.Inputs{
		"image":         testImage(8, 8),
		"prompt":        "p",
		"output_format": "png",
	})
	require.NoError(t, err)
	info := res.Values[1].(string)
	assert.True(t, strings.HasSuffix(info, "Output Format: png"))
}
