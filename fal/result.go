package fal

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoMedia reports a response document without any recognized media URL.
var ErrNoMedia = errors.New("no media url in response")

// DefaultMediaKeys is the ordered fallback used when a node does not narrow
// the expected key. Providers disagree on where the result lives.
var DefaultMediaKeys = []string{"video", "audio", "audio_file", "image", "images", "url"}

// Document is the loosely-typed response body of a completed request.
type Document map[string]any

// MediaURLs extracts media URLs using an ordered fallback over the given
// keys (DefaultMediaKeys when none are given). The first key present wins;
// its value may be a URL string, an object with a "url" field, or an array
// of either. A document with none of the keys yields ErrNoMedia.
func (d Document) MediaURLs(keys ...string) ([]string, error) {
	if len(keys) == 0 {
		keys = DefaultMediaKeys
	}
	for _, key := range keys {
		value, ok := d[key]
		if !ok {
			continue
		}
		urls := urlsFrom(value)
		if len(urls) > 0 {
			return urls, nil
		}
	}
	return nil, fmt.Errorf("%w (expected one of: %s)", ErrNoMedia, strings.Join(keys, ", "))
}

// MediaURL extracts a single media URL, the common case.
func (d Document) MediaURL(keys ...string) (string, error) {
	urls, err := d.MediaURLs(keys...)
	if err != nil {
		return "", err
	}
	return urls[0], nil
}

// String returns a top-level string field, or "" when absent.
func (d Document) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Int returns a top-level numeric field, or 0 when absent. JSON numbers
// decode as float64.
func (d Document) Int(key string) int64 {
	switch v := d[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

func urlsFrom(value any) []string {
	switch v := value.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case map[string]any:
		if url, ok := v["url"].(string); ok && url != "" {
			return []string{url}
		}
	case []any:
		var urls []string
		for _, item := range v {
			urls = append(urls, urlsFrom(item)...)
		}
		return urls
	}
	return nil
}
