//nolint:lll
package config

// Config represents the complete configuration for pplabel. It covers all
// commands (convert, crop, eval) and is loaded from configuration files,
// environment variables and command-line flags.
type Config struct {
	// Global settings
	LogLevel     string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose      bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`
	ShowProgress bool   `mapstructure:"show_progress" yaml:"show_progress" json:"show_progress"`
	MetricsFile  string `mapstructure:"metrics_file" yaml:"metrics_file" json:"metrics_file"`

	Convert ConvertConfig `mapstructure:"convert" yaml:"convert" json:"convert"`
	Crop    CropConfig    `mapstructure:"crop" yaml:"crop" json:"crop"`
	Eval    EvalConfig    `mapstructure:"eval" yaml:"eval" json:"eval"`
}

// ConvertConfig contains annotation conversion settings.
type ConvertConfig struct {
	MinArea              int    `mapstructure:"min_area" yaml:"min_area" json:"min_area"`
	UnicodeNormalization string `mapstructure:"unicode_normalization" yaml:"unicode_normalization" json:"unicode_normalization"`
}

// CropConfig contains recognition cropping settings.
type CropConfig struct {
	MaxCount        int      `mapstructure:"max_count" yaml:"max_count" json:"max_count"`
	JPEGQuality     int      `mapstructure:"jpeg_quality" yaml:"jpeg_quality" json:"jpeg_quality"`
	MinSize         int      `mapstructure:"min_size" yaml:"min_size" json:"min_size"`
	ImageExtensions []string `mapstructure:"image_extensions" yaml:"image_extensions" json:"image_extensions"`
	PathPrefix      string   `mapstructure:"path_prefix" yaml:"path_prefix" json:"path_prefix"`
	ContinueOnError bool     `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}

// EvalConfig contains evaluation settings.
type EvalConfig struct {
	IoUThreshold float64 `mapstructure:"iou_threshold" yaml:"iou_threshold" json:"iou_threshold"`
	Format       string  `mapstructure:"format" yaml:"format" json:"format"`
}
