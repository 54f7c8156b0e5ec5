package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/pplabel/internal/config"
	"github.com/MeKo-Tech/pplabel/internal/crop"
	"github.com/MeKo-Tech/pplabel/internal/metrics"
	"github.com/spf13/cobra"
)

// cropCmd cuts labeled regions into a recognition corpus.
var cropCmd = &cobra.Command{
	Use:   "crop",
	Short: "Crop labeled text regions into a recognition training corpus",
	Long: `Read detection label files, cut the bounding box of every labeled region
out of its image and write the crops as JPEG files together with a
tab-separated recognition label file:

  data/rec_crops/img_0.jpg<TAB>transcription

Label files are processed in name order. Regions marked ### and regions
smaller than 3 px after clamping to the image are skipped. Each label file
<stem>.txt is matched with <stem>.jpg or <stem>.png.

Examples:
  pplabel crop --det_label_dir data/det_labels --images_dir data/raw/images \
    --out_crops_dir data/rec_crops --out_label_file data/rec_labels.txt
  pplabel crop --det_label_dir data/det_labels --images_dir data/raw/images \
    --out_crops_dir data/rec_crops --out_label_file data/rec_labels.txt --max_count 50000`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runCropCommand,
}

func init() {
	cropCmd.Flags().String("det-label-dir", "", "directory holding detection label files")
	cropCmd.Flags().String("images-dir", "", "directory holding the images")
	cropCmd.Flags().String("out-crops-dir", "", "output directory for crop images")
	cropCmd.Flags().String("out-label-file", "", "output recognition label file")
	cropCmd.Flags().Int("max-count", 0, "stop after this many crops (0 = unbounded)")
	cropCmd.Flags().String("path-prefix", "", "path written before each crop name (default: --out_crops_dir)")
	cropCmd.Flags().Int("jpeg-quality", crop.DefaultJPEGQuality, "JPEG quality of written crops")
	cropCmd.Flags().Bool("continue-on-error", false, "skip label files whose labels or image cannot be read")

	_ = cropCmd.MarkFlagRequired("det-label-dir")
	_ = cropCmd.MarkFlagRequired("images-dir")
	_ = cropCmd.MarkFlagRequired("out-crops-dir")
	_ = cropCmd.MarkFlagRequired("out-label-file")
}

// applyCropFlags overrides configuration values with explicitly set flags.
func applyCropFlags(cfg config.Config, cmd *cobra.Command) (config.Config, error) {
	if cmd.Flags().Changed("max-count") {
		cfg.Crop.MaxCount, _ = cmd.Flags().GetInt("max-count")
	}
	if cmd.Flags().Changed("path-prefix") {
		cfg.Crop.PathPrefix, _ = cmd.Flags().GetString("path-prefix")
	}
	if cmd.Flags().Changed("jpeg-quality") {
		cfg.Crop.JPEGQuality, _ = cmd.Flags().GetInt("jpeg-quality")
	}
	if cmd.Flags().Changed("continue-on-error") {
		cfg.Crop.ContinueOnError, _ = cmd.Flags().GetBool("continue-on-error")
	}
	return cfg, cfg.Validate()
}

func runCropCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := applyCropFlags(*GetConfig(), cmd)
	if err != nil {
		return err
	}
	labelDir, _ := cmd.Flags().GetString("det-label-dir")
	imagesDir, _ := cmd.Flags().GetString("images-dir")
	cropsDir, _ := cmd.Flags().GetString("out-crops-dir")
	labelFile, _ := cmd.Flags().GetString("out-label-file")

	start := time.Now()
	rec := metrics.NewRecorder()
	cropper := crop.New(cfg.CropperConfig(labelDir, imagesDir, cropsDir, labelFile)).
		WithLogger(slog.Default()).
		WithProgress(newProgress(cmd, &cfg, "Label files")).
		WithMetrics(rec)

	res, err := cropper.Run()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved %d crops to %s and labels to %s\n", len(res.Records), cropsDir, labelFile)
	return finishRun(rec, &cfg, "crop", start)
}
