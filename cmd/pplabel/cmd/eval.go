package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/MeKo-Tech/pplabel/internal/config"
	"github.com/MeKo-Tech/pplabel/internal/eval"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// evalCmd groups the evaluation commands.
var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Score detection or recognition predictions against ground truth",
	Long: `Lightweight evaluation helpers. For full benchmark evaluation use the
training framework's own tools.

Examples:
  pplabel eval det --gt_dir data/det_labels --pred_dir results/predictions
  pplabel eval rec --gt_file data/rec_labels.txt --pred_file results/rec_pred.txt --format json`,
}

var evalDetCmd = &cobra.Command{
	Use:   "det",
	Short: "Detection precision, recall and F1 over two label directories",
	Long: `Match every ground-truth detection label file with the prediction file of
the same name and report precision, recall and F1. A prediction counts as a
hit when the bounding-box IoU with an unmatched ground-truth region reaches
--iou_thresh. Missing prediction files count as empty.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runEvalDetCommand,
}

var evalRecCmd = &cobra.Command{
	Use:   "rec",
	Short: "Mean normalized edit distance over two recognition label files",
	Long: `Join two recognition label files on the crop path and report the mean
normalized edit distance (0 = identical) and exact-match accuracy over the
ground-truth entries. A path missing from the predictions is scored against
an empty transcription.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runEvalRecCommand,
}

func init() {
	evalDetCmd.Flags().String("gt-dir", "", "ground-truth detection label directory")
	evalDetCmd.Flags().String("pred-dir", "", "predicted detection label directory")
	evalDetCmd.Flags().Float64("iou-thresh", eval.DefaultIoUThreshold, "minimum IoU for a match")
	evalDetCmd.Flags().String("format", "text", "report format (text, json, yaml)")
	_ = evalDetCmd.MarkFlagRequired("gt-dir")
	_ = evalDetCmd.MarkFlagRequired("pred-dir")

	evalRecCmd.Flags().String("gt-file", "", "ground-truth recognition label file")
	evalRecCmd.Flags().String("pred-file", "", "predicted recognition label file")
	evalRecCmd.Flags().String("format", "text", "report format (text, json, yaml)")
	_ = evalRecCmd.MarkFlagRequired("gt-file")
	_ = evalRecCmd.MarkFlagRequired("pred-file")

	evalCmd.AddCommand(evalDetCmd, evalRecCmd)
}

// applyEvalFlags overrides configuration values with explicitly set flags.
func applyEvalFlags(cfg config.Config, cmd *cobra.Command) (config.Config, error) {
	if cmd.Flags().Changed("iou-thresh") {
		cfg.Eval.IoUThreshold, _ = cmd.Flags().GetFloat64("iou-thresh")
	}
	if cmd.Flags().Changed("format") {
		cfg.Eval.Format, _ = cmd.Flags().GetString("format")
	}
	return cfg, cfg.Validate()
}

func runEvalDetCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := applyEvalFlags(*GetConfig(), cmd)
	if err != nil {
		return err
	}
	gtDir, _ := cmd.Flags().GetString("gt-dir")
	predDir, _ := cmd.Flags().GetString("pred-dir")

	report, err := eval.EvaluateDetectionDirs(gtDir, predDir, cfg.Eval.IoUThreshold)
	if err != nil {
		return err
	}
	return writeReport(cmd.OutOrStdout(), cfg.Eval.Format, report, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "files=%d tp=%d fp=%d fn=%d precision=%.4f recall=%.4f f1=%.4f\n",
			report.Files, report.TP, report.FP, report.FN, report.Precision, report.Recall, report.F1)
		return err
	})
}

func runEvalRecCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := applyEvalFlags(*GetConfig(), cmd)
	if err != nil {
		return err
	}
	gtFile, _ := cmd.Flags().GetString("gt-file")
	predFile, _ := cmd.Flags().GetString("pred-file")

	report, err := eval.EvaluateRecognitionFiles(gtFile, predFile)
	if err != nil {
		return err
	}
	return writeReport(cmd.OutOrStdout(), cfg.Eval.Format, report, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "records=%d missing=%d mean_ned=%.4f accuracy=%.4f\n",
			report.Records, report.MissingPreds, report.MeanNED, report.Accuracy)
		return err
	})
}

func writeReport(w io.Writer, format string, report any, text func(io.Writer) error) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer func() { _ = enc.Close() }()
		return enc.Encode(report)
	default:
		return text(w)
	}
}
