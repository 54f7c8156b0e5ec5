// Package convert writes per-image detection label files from a decoded
// annotation document.
package convert

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/pplabel/internal/annotation"
	"github.com/MeKo-Tech/pplabel/internal/label"
	"github.com/MeKo-Tech/pplabel/internal/metrics"
	"github.com/MeKo-Tech/pplabel/internal/progress"
	"github.com/MeKo-Tech/pplabel/internal/utils"
)

// Config controls a conversion run.
type Config struct {
	OutDir string
	// ImagesDir is optional. When set, label files without a matching image
	// are reported in the log; output is not affected.
	ImagesDir       string
	ImageExtensions []string
	Normalizer      annotation.Normalizer
}

// Stats summarizes a conversion run.
type Stats struct {
	Images       int
	FilesWritten int
	LinesWritten int
	Ignored      int // lines carrying the sentinel transcription
	Orphaned     int // annotations whose image is not in the image table
	Discarded    map[annotation.Reason]int
}

// Converter turns an annotation document into detection label files.
type Converter struct {
	cfg      Config
	logger   *slog.Logger
	progress progress.Callback
	metrics  *metrics.Recorder
}

// New creates a converter with no progress reporting and no metrics.
func New(cfg Config) *Converter {
	return &Converter{
		cfg:      cfg,
		logger:   slog.Default(),
		progress: progress.NoOp{},
	}
}

// WithLogger sets the logger.
func (c *Converter) WithLogger(logger *slog.Logger) *Converter {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// WithProgress sets the progress callback, ticked once per image.
func (c *Converter) WithProgress(cb progress.Callback) *Converter {
	if cb != nil {
		c.progress = cb
	}
	return c
}

// WithMetrics sets the metrics recorder.
func (c *Converter) WithMetrics(m *metrics.Recorder) *Converter {
	c.metrics = m
	return c
}

// Run writes one <stem>.txt per image that keeps at least one annotation.
// Files are written as each image is processed; a failure leaves earlier
// files in place.
func (c *Converter) Run(doc *annotation.Document) (Stats, error) {
	stats := Stats{Discarded: make(map[annotation.Reason]int)}
	if err := os.MkdirAll(c.cfg.OutDir, 0o750); err != nil {
		return stats, fmt.Errorf("create output directory: %w", err)
	}

	images := uniqueImages(doc.Images)
	groups := doc.ByImage()
	known := make(map[annotation.ID]bool, len(images))
	for _, img := range images {
		known[img.ID] = true
	}
	for id, anns := range groups {
		if !known[id] {
			stats.Orphaned += len(anns)
		}
	}

	c.progress.OnStart(len(images))
	defer c.progress.OnComplete()

	for i, img := range images {
		stats.Images++
		if img.FileName == "" {
			c.logger.Debug("image without file name", "id", img.ID.String())
			c.progress.OnProgress(i+1, len(images))
			continue
		}

		lines := c.normalizeAll(groups[img.ID], &stats)
		if len(lines) > 0 {
			if err := c.write(img, lines); err != nil {
				return stats, err
			}
			stats.FilesWritten++
			stats.LinesWritten += len(lines)
			for _, l := range lines {
				if l.Ignored() {
					stats.Ignored++
				}
			}
		}
		c.progress.OnProgress(i+1, len(images))
	}

	c.logger.Info("conversion finished",
		"images", stats.Images,
		"files", stats.FilesWritten,
		"lines", stats.LinesWritten,
		"out_dir", c.cfg.OutDir,
	)
	return stats, nil
}

func (c *Converter) normalizeAll(anns []annotation.Annotation, stats *Stats) []label.Line {
	var lines []label.Line
	for _, a := range anns {
		line, reason := c.cfg.Normalizer.Normalize(a)
		c.metrics.Annotation(reason.String())
		if reason != annotation.ReasonKept {
			stats.Discarded[reason]++
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func (c *Converter) write(img annotation.Image, lines []label.Line) error {
	stem := img.Stem()
	out := filepath.Join(c.cfg.OutDir, stem+label.DetectionExt)
	if err := label.WriteDetectionFile(out, lines); err != nil {
		return fmt.Errorf("image %s: %w", img.FileName, err)
	}
	c.metrics.LabelFile(len(lines))

	if c.cfg.ImagesDir != "" {
		if _, err := utils.LocateImage(c.cfg.ImagesDir, stem, c.cfg.ImageExtensions); errors.Is(err, utils.ErrNoImage) {
			c.logger.Warn("no image for label file", "label", out, "images_dir", c.cfg.ImagesDir)
		}
	}
	return nil
}

// uniqueImages keeps the first position of each image id and the last
// record seen for it.
func uniqueImages(images []annotation.Image) []annotation.Image {
	last := make(map[annotation.ID]annotation.Image, len(images))
	for _, img := range images {
		last[img.ID] = img
	}
	out := make([]annotation.Image, 0, len(last))
	seen := make(map[annotation.ID]bool, len(last))
	for _, img := range images {
		if seen[img.ID] {
			continue
		}
		seen[img.ID] = true
		out = append(out, last[img.ID])
	}
	return out
}
