package utils

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
)

// SupportedImageExtensions lists extensions the loader can decode.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}

// DefaultSearchExtensions is the order in which LocateImage tries
// extensions when none are configured.
var DefaultSearchExtensions = []string{".jpg", ".png"}

// ErrNoImage is returned by LocateImage when no candidate file exists.
var ErrNoImage = errors.New("no matching image file")

// ImageProcessingError represents errors that can occur during image I/O.
type ImageProcessingError struct {
	Operation string
	Path      string
	Err       error
}

func (e *ImageProcessingError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("image processing error in %s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("image processing error in %s of %s: %v", e.Operation, e.Path, e.Err)
}

func (e *ImageProcessingError) Unwrap() error { return e.Err }

// IsSupportedImage reports whether the path has a supported image extension.
func IsSupportedImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedImageExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// LocateImage returns the first existing file named stem+ext in dir,
// trying exts in order.
func LocateImage(dir, stem string, exts []string) (string, error) {
	if len(exts) == 0 {
		exts = DefaultSearchExtensions
	}
	for _, ext := range exts {
		p := filepath.Join(dir, stem+ext)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w for %q in %s", ErrNoImage, stem, dir)
}

// ImageMetadata captures lightweight file and pixel information.
type ImageMetadata struct {
	Path   string
	Format string
	Width  int
	Height int
}

// LoadImage opens and decodes an image file, returning the image and metadata.
func LoadImage(path string) (image.Image, ImageMetadata, error) {
	if path == "" {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "load", Err: errors.New("empty path")}
	}
	if !IsSupportedImage(path) {
		err := fmt.Errorf("unsupported format: %s", filepath.Ext(path))
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "load", Path: path, Err: err}
	}

	f, err := os.Open(path) //nolint:gosec // G304: Reading user-provided image file path is expected
	if err != nil {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "load", Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "decode", Path: path, Err: err}
	}

	b := img.Bounds()
	return img, ImageMetadata{Path: path, Format: format, Width: b.Dx(), Height: b.Dy()}, nil
}

// ToRGB copies img into an opaque NRGBA image. Alpha is discarded rather
// than composited, so color values are kept as stored.
func ToRGB(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

// SaveJPEG encodes img as JPEG at the given quality, overwriting path.
func SaveJPEG(img image.Image, path string, quality int) error {
	f, err := os.Create(path) //nolint:gosec // G304: output path is user-provided
	if err != nil {
		return &ImageProcessingError{Operation: "save", Path: path, Err: err}
	}
	if err := imaging.Encode(f, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		_ = f.Close()
		return &ImageProcessingError{Operation: "encode", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &ImageProcessingError{Operation: "save", Path: path, Err: err}
	}
	return nil
}
