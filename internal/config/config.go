package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/MeKo-Tech/pplabel/internal/annotation"
	"github.com/MeKo-Tech/pplabel/internal/crop"
	"github.com/MeKo-Tech/pplabel/internal/eval"
	"github.com/MeKo-Tech/pplabel/internal/utils"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel:     "info",
		Verbose:      false,
		ShowProgress: true,
		Convert: ConvertConfig{
			MinArea:              annotation.DefaultMinArea,
			UnicodeNormalization: "none",
		},
		Crop: CropConfig{
			MaxCount:        0,
			JPEGQuality:     crop.DefaultJPEGQuality,
			MinSize:         crop.DefaultMinSize,
			ImageExtensions: slices.Clone(utils.DefaultSearchExtensions),
			ContinueOnError: false,
		},
		Eval: EvalConfig{
			IoUThreshold: eval.DefaultIoUThreshold,
			Format:       "text",
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if c.Convert.MinArea < 0 {
		return fmt.Errorf("invalid convert.min_area: %d (must not be negative)", c.Convert.MinArea)
	}
	validForms := []string{"", "none", "nfc", "nfkc", "nfd", "nfkd"}
	if !contains(validForms, strings.ToLower(c.Convert.UnicodeNormalization)) {
		return fmt.Errorf("invalid convert.unicode_normalization: %s (must be one of: %s)",
			c.Convert.UnicodeNormalization, strings.Join(validForms[1:], ", "))
	}

	if c.Crop.MaxCount < 0 {
		return fmt.Errorf("invalid crop.max_count: %d (must not be negative)", c.Crop.MaxCount)
	}
	if c.Crop.JPEGQuality < 1 || c.Crop.JPEGQuality > 100 {
		return fmt.Errorf("invalid crop.jpeg_quality: %d (must be between 1 and 100)", c.Crop.JPEGQuality)
	}
	if c.Crop.MinSize < 1 {
		return fmt.Errorf("invalid crop.min_size: %d (must be positive)", c.Crop.MinSize)
	}
	for _, ext := range c.Crop.ImageExtensions {
		if !strings.HasPrefix(ext, ".") || !utils.IsSupportedImage("x"+ext) {
			return fmt.Errorf("invalid crop.image_extensions entry: %q (must be one of: %s)",
				ext, strings.Join(utils.SupportedImageExtensions, ", "))
		}
	}

	if err := validateThreshold(c.Eval.IoUThreshold, "eval.iou_threshold"); err != nil {
		return err
	}
	if err := ValidateFormat(c.Eval.Format); err != nil {
		return err
	}

	return nil
}

// ValidFormats lists the report formats of the eval commands.
var ValidFormats = []string{"text", "json", "yaml"}

// ValidateFormat checks an eval report format.
func ValidateFormat(format string) error {
	if !contains(ValidFormats, format) {
		return fmt.Errorf("invalid format: %s (must be one of: %s)", format, strings.Join(ValidFormats, ", "))
	}
	return nil
}

// Normalizer builds the annotation normalizer for the convert command.
func (c *Config) Normalizer() annotation.Normalizer {
	return annotation.Normalizer{
		MinArea:     c.Convert.MinArea,
		UnicodeForm: c.Convert.UnicodeNormalization,
	}
}

// CropperConfig builds the cropper configuration; paths are supplied by the
// caller.
func (c *Config) CropperConfig(labelDir, imagesDir, cropsDir, labelFile string) crop.Config {
	return crop.Config{
		LabelDir:        labelDir,
		ImagesDir:       imagesDir,
		CropsDir:        cropsDir,
		LabelFile:       labelFile,
		PathPrefix:      c.Crop.PathPrefix,
		MaxCount:        c.Crop.MaxCount,
		JPEGQuality:     c.Crop.JPEGQuality,
		MinSize:         c.Crop.MinSize,
		ImageExtensions: c.Crop.ImageExtensions,
		ContinueOnError: c.Crop.ContinueOnError,
	}
}

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	return slices.Contains(slice, item)
}

// validateThreshold validates that a value is between 0.0 and 1.0.
func validateThreshold(value float64, name string) error {
	if value < 0.0 || value > 1.0 {
		return fmt.Errorf("invalid %s: %.2f (must be between 0.0 and 1.0)", name, value)
	}
	return nil
}
