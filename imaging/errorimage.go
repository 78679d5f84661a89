package imaging

import (
	"image"
	"image/color"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ErrorStyle controls the placeholder image rendered when a generation call
// fails. The rendered tensor keeps downstream image nodes operable.
type ErrorStyle struct {
	Width     int
	Height    int
	MaxChars  int // message truncated beyond this
	MaxLines  int
	LineChars int // wrap budget per line
	WordChars int // single words longer than this are cut
}

// DefaultErrorStyle matches the 512×512 placeholder of the image-edit nodes.
func DefaultErrorStyle() ErrorStyle {
	return ErrorStyle{
		Width:     512,
		Height:    512,
		MaxChars:  400,
		MaxLines:  12,
		LineChars: 60,
		WordChars: 40,
	}
}

var (
	errorBackground = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	errorText       = color.RGBA{R: 255, G: 100, B: 100, A: 255}
)

// Render draws the word-wrapped message onto a solid background and returns
// it as a single-frame tensor. It never fails.
func (s ErrorStyle) Render(message string) *Tensor {
	img := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = errorBackground.R
		img.Pix[i+1] = errorBackground.G
		img.Pix[i+2] = errorBackground.B
		img.Pix[i+3] = errorBackground.A
	}

	lines := s.wrap(message)

	// Vertically centered block, never starting above the top margin.
	y := s.Height/2 - (len(lines)*22)/2
	if y < 40 {
		y = 40
	}
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(errorText),
		Face: basicfont.Face7x13,
	}
	for _, line := range lines {
		drawer.Dot = fixed.P(30, y)
		drawer.DrawString(line)
		y += 28
	}
	return FromImage(img)
}

// wrap breaks the message into at most MaxLines lines of at most LineChars
// characters, truncating the message and over-long words with "...". All
// limits count runes, so truncation never splits a multibyte character.
func (s ErrorStyle) wrap(message string) []string {
	if cut, ok := truncateRunes(message, s.MaxChars); ok {
		message = cut + "..."
	}

	var lines []string
	var current []string
	for _, word := range strings.Fields(message) {
		if len(lines) >= s.MaxLines {
			break
		}
		if cut, ok := truncateRunes(word, s.WordChars); ok {
			word = cut + "..."
		}
		test := strings.Join(append(append([]string{}, current...), word), " ")
		if utf8.RuneCountInString(test) > s.LineChars {
			if len(current) > 0 {
				lines = append(lines, strings.Join(current, " "))
			}
			current = []string{word}
		} else {
			current = append(current, word)
		}
	}
	if len(current) > 0 && len(lines) < s.MaxLines {
		lines = append(lines, strings.Join(current, " "))
	}
	return lines
}

// truncateRunes cuts s to at most max runes, reporting whether it cut.
func truncateRunes(s string, max int) (string, bool) {
	if utf8.RuneCountInString(s) <= max {
		return s, false
	}
	return string([]rune(s)[:max]), true
}
