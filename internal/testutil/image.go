package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// TextBox is a word drawn at a fixed position of a synthetic image.
type TextBox struct {
	X, Y int
	Text string
}

// TestImageConfig holds configuration for generating test images.
type TestImageConfig struct {
	Width      int
	Height     int
	Background color.Color
	Foreground color.Color
	Words      []TextBox
}

// DefaultTestImageConfig returns a white 100x100 canvas with no text.
func DefaultTestImageConfig() TestImageConfig {
	return TestImageConfig{
		Width:      100,
		Height:     100,
		Background: color.White,
		Foreground: color.Black,
	}
}

// GenerateTextImage draws each word with its top-left corner at (X, Y).
func GenerateTextImage(config TestImageConfig) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, config.Width, config.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: config.Background}, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: img, Src: &image.Uniform{C: config.Foreground}, Face: face}
	for _, w := range config.Words {
		drawer.Dot = fixed.P(w.X, w.Y+face.Metrics().Ascent.Ceil())
		drawer.DrawString(w.Text)
	}
	return img
}

// TextWidth returns the rendered width of s in the test font.
func TextWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Ceil()
}

// TextHeight returns the line height of the test font.
func TextHeight() int {
	return basicfont.Face7x13.Metrics().Height.Ceil()
}

// SaveImage saves img to path; the format follows the file extension.
func SaveImage(t *testing.T, img image.Image, path string) {
	t.Helper()
	require.NoError(t, EnsureDir(filepath.Dir(path)), "Failed to create directory for %s", path)
	require.NoError(t, imaging.Save(img, path), "Failed to save image %s", path)
}

// WriteSolidImage writes a w x h white image to path.
func WriteSolidImage(t *testing.T, path string, w, h int) {
	t.Helper()
	SaveImage(t, imaging.New(w, h, color.White), path)
}

// ImageSize decodes path and returns its dimensions.
func ImageSize(t *testing.T, path string) (int, int) {
	t.Helper()
	img, err := imaging.Open(path)
	require.NoError(t, err, "Failed to open image %s", path)
	return img.Bounds().Dx(), img.Bounds().Dy()
}
