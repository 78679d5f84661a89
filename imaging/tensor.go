// Package imaging converts between the host graph's image tensor convention
// (batches of H×W×3 float32 pixels in [0,1]) and encodable Go images.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // flux returns jpeg by default
	"image/png"
	"io"
)

// Channels per pixel. The host convention is always RGB.
const Channels = 3

// Tensor is a batch of RGB images, stored as float32 values in [0,1] with
// layout [batch][height][width][channel].
type Tensor struct {
	Batch  int
	Height int
	Width  int
	Data   []float32
}

// NewTensor allocates a zeroed tensor of the given shape.
func NewTensor(batch, height, width int) *Tensor {
	return &Tensor{
		Batch:  batch,
		Height: height,
		Width:  width,
		Data:   make([]float32, batch*height*width*Channels),
	}
}

// FromImage converts a decoded image into a single-frame tensor.
// Alpha is dropped; grayscale expands to three identical channels.
func FromImage(img image.Image) *Tensor {
	bounds := img.Bounds()
	t := NewTensor(1, bounds.Dy(), bounds.Dx())
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			t.Data[i] = float32(r) / 0xffff
			t.Data[i+1] = float32(g) / 0xffff
			t.Data[i+2] = float32(b) / 0xffff
			i += Channels
		}
	}
	return t
}

// Image renders one frame of the batch as an image.Image.
func (t *Tensor) Image(frame int) (image.Image, error) {
	if frame < 0 || frame >= t.Batch {
		return nil, fmt.Errorf("frame %d out of range (batch size %d)", frame, t.Batch)
	}
	img := image.NewRGBA(image.Rect(0, 0, t.Width, t.Height))
	base := frame * t.Height * t.Width * Channels
	i := base
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: clampByte(t.Data[i]),
				G: clampByte(t.Data[i+1]),
				B: clampByte(t.Data[i+2]),
				A: 0xff,
			})
			i += Channels
		}
	}
	return img, nil
}

// Concat joins same-shaped tensors into one batch, in argument order.
func Concat(tensors ...*Tensor) (*Tensor, error) {
	if len(tensors) == 0 {
		return nil, errors.New("no tensors to concatenate")
	}
	first := tensors[0]
	total := 0
	for _, t := range tensors {
		if t.Height != first.Height || t.Width != first.Width {
			return nil, fmt.Errorf("shape mismatch: %dx%d vs %dx%d",
				t.Width, t.Height, first.Width, first.Height)
		}
		total += t.Batch
	}
	out := NewTensor(total, first.Height, first.Width)
	off := 0
	for _, t := range tensors {
		off += copy(out.Data[off:], t.Data)
	}
	return out, nil
}

// Decode reads any registered image format into a single-frame tensor.
func Decode(r io.Reader) (*Tensor, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return FromImage(img), nil
}

// EncodePNG encodes one frame of the tensor as PNG bytes.
func (t *Tensor) EncodePNG(frame int) ([]byte, error) {
	img, err := t.Image(frame)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// PNGBase64 encodes the first frame as a base64 PNG string, the form the
// Ollama and OpenAI vision payloads expect.
func (t *Tensor) PNGBase64() (string, error) {
	raw, err := t.EncodePNG(0)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func clampByte(v float32) uint8 {
	scaled := v * 255
	if scaled <= 0 {
		return 0
	}
	if scaled >= 255 {
		return 255
	}
	return uint8(scaled + 0.5)
}
