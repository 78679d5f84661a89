package imaging

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(w, h int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestFromImageRoundTrip(t *testing.T) {
	src := solidImage(8, 4, color.RGBA{R: 255, G: 128, B: 0, A: 255})
	tensor := FromImage(src)

	require.Equal(t, 1, tensor.Batch)
	require.Equal(t, 4, tensor.Height)
	require.Equal(t, 8, tensor.Width)
	require.Len(t, tensor.Data, 1*4*8*Channels)

	assert.InDelta(t, 1.0, float64(tensor.Data[0]), 0.005)
	assert.InDelta(t, 0.5, float64(tensor.Data[1]), 0.005)
	assert.InDelta(t, 0.0, float64(tensor.Data[2]), 0.005)

	back, err := tensor.Image(0)
	require.NoError(t, err)
	r, g, b, _ := back.At(3, 2).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.InDelta(t, 128, float64(g>>8), 1)
	assert.Equal(t, uint32(0), b)
}

func TestImageFrameOutOfRange(t *testing.T) {
	tensor := NewTensor(1, 2, 2)
	_, err := tensor.Image(1)
	assert.Error(t, err)
	_, err = tensor.Image(-1)
	assert.Error(t, err)
}

func TestConcatBatches(t *testing.T) {
	a := FromImage(solidImage(2, 2, color.RGBA{R: 255, A: 255}))
	b := FromImage(solidImage(2, 2, color.RGBA{G: 255, A: 255}))

	out, err := Concat(a, b)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Batch)
	// First frame red, second frame green.
	assert.InDelta(t, 1.0, float64(out.Data[0]), 0.005)
	frameLen := 2 * 2 * Channels
	assert.InDelta(t, 1.0, float64(out.Data[frameLen+1]), 0.005)
}

func TestConcatShapeMismatch(t *testing.T) {
	a := NewTensor(1, 2, 2)
	b := NewTensor(1, 3, 2)
	_, err := Concat(a, b)
	assert.Error(t, err)
}

func TestConcatEmpty(t *testing.T) {
	_, err := Concat()
	assert.Error(t, err)
}

func TestEncodeDecodePNG(t *testing.T) {
	src := FromImage(solidImage(5, 3, color.RGBA{R: 10, G: 20, B: 30, A: 255}))
	raw, err := src.EncodePNG(0)
	require.NoError(t, err)

	decoded, err := Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, src.Height, decoded.Height)
	assert.Equal(t, src.Width, decoded.Width)
	assert.InDelta(t, float64(src.Data[0]), float64(decoded.Data[0]), 0.005)
}

func TestPNGBase64NotEmpty(t *testing.T) {
	tensor := NewTensor(1, 2, 2)
	b64, err := tensor.PNGBase64()
	require.NoError(t, err)
	assert.NotEmpty(t, b64)
}
