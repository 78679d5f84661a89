package fal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaURLsOrderedFallback(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		keys []string
		want []string
	}{
		{
			name: "video object with url",
			doc:  Document{"video": map[string]any{"url": "https://cdn/video.mp4"}},
			keys: []string{"video"},
			want: []string{"https://cdn/video.mp4"},
		},
		{
			name: "bare string url",
			doc:  Document{"audio": "https://cdn/track.mp3"},
			keys: []string{"audio", "audio_file", "url"},
			want: []string{"https://cdn/track.mp3"},
		},
		{
			name: "falls through to audio_file",
			doc:  Document{"audio_file": map[string]any{"url": "https://cdn/sfx.wav"}},
			keys: []string{"audio", "audio_file", "url"},
			want: []string{"https://cdn/sfx.wav"},
		},
		{
			name: "last-resort url key",
			doc:  Document{"url": "https://cdn/out.mp3"},
			keys: []string{"audio", "audio_file", "url"},
			want: []string{"https://cdn/out.mp3"},
		},
		{
			name: "images array before image",
			doc: Document{
				"images": []any{
					map[string]any{"url": "https://cdn/1.jpg"},
					map[string]any{"url": "https://cdn/2.jpg"},
				},
				"image": map[string]any{"url": "https://cdn/ignored.jpg"},
			},
			keys: []string{"images", "image"},
			want: []string{"https://cdn/1.jpg", "https://cdn/2.jpg"},
		},
		{
			name: "default key order",
			doc:  Document{"image": map[string]any{"url": "https://cdn/x.png"}},
			want: []string{"https://cdn/x.png"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.doc.MediaURLs(tt.keys...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMediaURLsNoMedia(t *testing.T) {
	doc := Document{"detail": "queue is busy", "seed": float64(7)}
	_, err := doc.MediaURLs("video")
	require.ErrorIs(t, err, ErrNoMedia)
	assert.Contains(t, err.Error(), "video")
}

func TestMediaURLsSkipsEmptyValues(t *testing.T) {
	doc := Document{
		"audio": "",
		"url":   "https://cdn/fallback.mp3",
	}
	url, err := doc.MediaURL("audio", "url")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/fallback.mp3", url)
}

func TestDocumentScalars(t *testing.T) {
	doc := Document{"seed": float64(1234), "status": "ok"}
	assert.Equal(t, int64(1234), doc.Int("seed"))
	assert.Equal(t, "ok", doc.String("status"))
	assert.Equal(t, int64(0), doc.Int("missing"))
	assert.Equal(t, "", doc.String("missing"))
}
