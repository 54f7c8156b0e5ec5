package eval

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/MeKo-Tech/pplabel/internal/label"
)

// DetectionReport aggregates detection matching over a directory of label
// files.
type DetectionReport struct {
	Files        int     `json:"files" yaml:"files"`
	MissingPreds int     `json:"missing_predictions" yaml:"missing_predictions"`
	Threshold    float64 `json:"iou_threshold" yaml:"iou_threshold"`
	Counts       `yaml:",inline"`
	Scores       `yaml:",inline"`
}

// EvaluateDetectionDirs matches every ground-truth label file in gtDir
// with the file of the same name in predDir. A missing prediction file
// counts as no predictions. Counts are summed before scoring.
func EvaluateDetectionDirs(gtDir, predDir string, threshold float64) (DetectionReport, error) {
	report := DetectionReport{Threshold: threshold}
	entries, err := os.ReadDir(gtDir)
	if err != nil {
		return report, fmt.Errorf("read ground truth directory: %w", err)
	}

	var total Counts
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), label.DetectionExt) {
			continue
		}
		gt, err := label.ReadPolygons(filepath.Join(gtDir, e.Name()))
		if err != nil {
			return report, err
		}
		pred, err := label.ReadPolygons(filepath.Join(predDir, e.Name()))
		if errors.Is(err, fs.ErrNotExist) {
			report.MissingPreds++
			pred = nil
		} else if err != nil {
			return report, err
		}
		total = total.Add(Match(gt, pred, threshold))
		report.Files++
	}

	report.Counts = total
	report.Scores = total.Scores()
	return report, nil
}

// RecognitionReport summarizes normalized edit distance over a label file.
type RecognitionReport struct {
	Records      int     `json:"records" yaml:"records"`
	MissingPreds int     `json:"missing_predictions" yaml:"missing_predictions"`
	Exact        int     `json:"exact_matches" yaml:"exact_matches"`
	MeanNED      float64 `json:"mean_ned" yaml:"mean_ned"`
	Accuracy     float64 `json:"accuracy" yaml:"accuracy"`
}

// EvaluateRecognitionFiles joins two recognition label files on the crop
// path and averages the normalized edit distance over the ground truth.
// A path absent from the predictions is scored against the empty string.
// When a path repeats, its last entry wins.
func EvaluateRecognitionFiles(gtFile, predFile string) (RecognitionReport, error) {
	var report RecognitionReport
	gt, err := label.ReadRecognitionFile(gtFile)
	if err != nil {
		return report, err
	}
	pred, err := label.ReadRecognitionFile(predFile)
	if err != nil {
		return report, err
	}

	predByPath := make(map[string]string, len(pred))
	for _, r := range pred {
		predByPath[r.Path] = r.Text
	}
	gtByPath := make(map[string]string, len(gt))
	for _, r := range gt {
		gtByPath[r.Path] = r.Text
	}
	paths := make([]string, 0, len(gtByPath))
	for p := range gtByPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var sum float64
	for _, p := range paths {
		text, ok := predByPath[p]
		if !ok {
			report.MissingPreds++
		}
		sum += NormalizedEditDistance(gtByPath[p], text)
		if ok && text == gtByPath[p] {
			report.Exact++
		}
	}

	report.Records = len(paths)
	if report.Records > 0 {
		report.MeanNED = sum / float64(report.Records)
		report.Accuracy = float64(report.Exact) / float64(report.Records)
	}
	return report, nil
}
