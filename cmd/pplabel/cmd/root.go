package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/MeKo-Tech/pplabel/internal/config"
	"github.com/MeKo-Tech/pplabel/internal/version"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// boundFlags maps configuration keys to the persistent flags that override
// them.
var boundFlags = map[string]string{
	"verbose":       "verbose",
	"log_level":     "log-level",
	"show_progress": "progress",
	"metrics_file":  "metrics-file",
}

var (
	// Global configuration loader.
	configLoader *config.Loader
	// Global configuration.
	globalConfig *config.Config
	// Configuration file path.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pplabel",
	Short: "Prepare PP-OCR detection and recognition training data",
	Long: `pplabel turns COCO-Text style annotations into PP-OCR training data.

It provides:
- Conversion of annotation JSON into per-image detection label files
- Cropping of labeled text regions into a recognition corpus
- Detection F-score and recognition edit-distance evaluation
- Creation of the project folder skeleton

Examples:
  pplabel convert --coco_json data/raw/cocotext/annotations.json --images_dir data/raw/cocotext/images --out_dir data/det_labels
  pplabel crop --det_label_dir data/det_labels --images_dir data/raw/cocotext/images \
    --out_crops_dir data/rec_crops --out_label_file data/rec_labels.txt --max_count 50000
  pplabel eval det --gt_dir data/det_labels --pred_dir results/predictions`,
	Version:      version.String(),
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetRootCommand returns the root command for testing purposes.
// This allows tests to execute commands without calling os.Exit().
func GetRootCommand() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentPreRunE = setup

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is search in ., $HOME, $HOME/.config/pplabel, /etc/pplabel)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("progress", true, "show a progress bar on stderr")
	rootCmd.PersistentFlags().String("metrics-file", "", "write run metrics in Prometheus text format to this file")

	// --coco_json and --coco-json name the same flag.
	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)
	rootCmd.AddCommand(convertCmd, cropCmd, evalCmd, initCmd, configCmd)
}

func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// setup loads .env and the configuration, then installs the logger.
func setup(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	if err := initConfig(); err != nil {
		return err
	}
	slog.SetDefault(newLogger(cmd.ErrOrStderr(), globalConfig))
	return nil
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	var logLevel slog.Level
	if cfg.Verbose {
		logLevel = slog.LevelDebug
	} else {
		switch cfg.LogLevel {
		case "debug":
			logLevel = slog.LevelDebug
		case "warn":
			logLevel = slog.LevelWarn
		case "error":
			logLevel = slog.LevelError
		default:
			logLevel = slog.LevelInfo
		}
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// initConfig reads in config file and ENV variables if set. Each call
// uses a fresh viper instance.
func initConfig() error {
	v := viper.New()
	for key, name := range boundFlags {
		if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	configLoader = config.NewLoaderWithViper(v)

	var err error
	if cfgFile != "" {
		globalConfig, err = configLoader.LoadWithFile(cfgFile)
	} else {
		globalConfig, err = configLoader.Load()
	}
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	return nil
}

// GetConfig returns the global configuration.
func GetConfig() *config.Config {
	if globalConfig == nil {
		if err := initConfig(); err != nil {
			cfg := config.DefaultConfig()
			return &cfg
		}
	}
	return globalConfig
}

// GetConfigLoader returns the global configuration loader.
func GetConfigLoader() *config.Loader {
	if configLoader == nil {
		configLoader = config.NewLoader()
	}
	return configLoader
}
