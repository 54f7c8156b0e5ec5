package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/pplabel/internal/annotation"
	"github.com/MeKo-Tech/pplabel/internal/config"
	"github.com/MeKo-Tech/pplabel/internal/convert"
	"github.com/MeKo-Tech/pplabel/internal/metrics"
	"github.com/spf13/cobra"
)

// convertCmd converts an annotation JSON file into detection label files.
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert COCO-Text style annotations into detection label files",
	Long: `Convert a COCO-Text style annotation JSON file into one PP-OCR detection
label file per image. Each line holds the eight polygon coordinates followed
by the transcription:

  x1,y1,x2,y2,x3,y3,x4,y4,transcription

Geometry is taken from segmentation, polygon or bbox, in that order; the
transcription from utf8_string, text or caption. Annotations without text,
without usable geometry or smaller than --min_area are dropped.

Examples:
  pplabel convert --coco_json annotations.json --images_dir images --out_dir det_labels
  pplabel convert --coco_json annotations.json --images_dir images --out_dir det_labels --min_area 16`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runConvertCommand,
}

func init() {
	convertCmd.Flags().String("coco-json", "", "annotation JSON file")
	convertCmd.Flags().String("images-dir", "", "directory holding the annotated images")
	convertCmd.Flags().String("out-dir", "", "output directory for detection label files")
	convertCmd.Flags().Int("min-area", annotation.DefaultMinArea, "minimum bounding-box area in px² of kept annotations")
	convertCmd.Flags().String("unicode-normalization", "none", "Unicode form applied to transcriptions (none, nfc, nfkc, nfd, nfkd)")

	_ = convertCmd.MarkFlagRequired("coco-json")
	_ = convertCmd.MarkFlagRequired("images-dir")
	_ = convertCmd.MarkFlagRequired("out-dir")
}

// applyConvertFlags overrides configuration values with explicitly set flags.
func applyConvertFlags(cfg config.Config, cmd *cobra.Command) (config.Config, error) {
	if cmd.Flags().Changed("min-area") {
		cfg.Convert.MinArea, _ = cmd.Flags().GetInt("min-area")
	}
	if cmd.Flags().Changed("unicode-normalization") {
		cfg.Convert.UnicodeNormalization, _ = cmd.Flags().GetString("unicode-normalization")
	}
	return cfg, cfg.Validate()
}

func runConvertCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := applyConvertFlags(*GetConfig(), cmd)
	if err != nil {
		return err
	}
	cocoJSON, _ := cmd.Flags().GetString("coco-json")
	imagesDir, _ := cmd.Flags().GetString("images-dir")
	outDir, _ := cmd.Flags().GetString("out-dir")

	start := time.Now()
	doc, err := annotation.Load(cocoJSON)
	if err != nil {
		return err
	}
	slog.Debug("annotations loaded", "file", cocoJSON, "images", len(doc.Images), "annotations", len(doc.Annotations))

	rec := metrics.NewRecorder()
	converter := convert.New(convert.Config{
		OutDir:          outDir,
		ImagesDir:       imagesDir,
		ImageExtensions: cfg.Crop.ImageExtensions,
		Normalizer:      cfg.Normalizer(),
	}).WithLogger(slog.Default()).WithProgress(newProgress(cmd, &cfg, "Images")).WithMetrics(rec)

	stats, err := converter.Run(doc)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Conversion finished: %d label files (%d lines) from %d images. Labels saved to: %s\n",
		stats.FilesWritten, stats.LinesWritten, stats.Images, outDir)
	return finishRun(rec, &cfg, "convert", start)
}
