package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// FixtureImage describes one image of a synthetic COCO-Text dataset.
type FixtureImage struct {
	ID       int
	FileName string
	Width    int
	Height   int
	Words    []TextBox
}

type cocoImage struct {
	ID       int    `json:"id"`
	FileName string `json:"file_name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type cocoAnnotation struct {
	ImageID    int    `json:"image_id"`
	BBox       []int  `json:"bbox"`
	UTF8String string `json:"utf8_string"`
}

type cocoDocument struct {
	Images      []cocoImage      `json:"images"`
	Annotations []cocoAnnotation `json:"annotations"`
}

// WriteDataset renders every fixture image into dir/images and writes a
// matching dir/annotations.json with one bbox annotation per word. The
// box of each word spans its rendered text.
func WriteDataset(t *testing.T, dir string, images []FixtureImage) (string, string) {
	t.Helper()
	imagesDir := filepath.Join(dir, "images")
	require.NoError(t, EnsureDir(imagesDir))

	var doc cocoDocument
	for _, fi := range images {
		cfg := DefaultTestImageConfig()
		cfg.Width, cfg.Height = fi.Width, fi.Height
		cfg.Words = fi.Words
		SaveImage(t, GenerateTextImage(cfg), filepath.Join(imagesDir, fi.FileName))

		doc.Images = append(doc.Images, cocoImage{ID: fi.ID, FileName: fi.FileName, Width: fi.Width, Height: fi.Height})
		for _, w := range fi.Words {
			doc.Annotations = append(doc.Annotations, cocoAnnotation{
				ImageID:    fi.ID,
				BBox:       []int{w.X, w.Y, TextWidth(w.Text), TextHeight()},
				UTF8String: w.Text,
			})
		}
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	require.NoError(t, err)
	cocoPath := filepath.Join(dir, "annotations.json")
	require.NoError(t, os.WriteFile(cocoPath, raw, 0o600))
	return cocoPath, imagesDir
}
