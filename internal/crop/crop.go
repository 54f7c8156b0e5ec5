package crop

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/pplabel/internal/label"
	"github.com/MeKo-Tech/pplabel/internal/metrics"
	"github.com/MeKo-Tech/pplabel/internal/progress"
	"github.com/MeKo-Tech/pplabel/internal/utils"
)

// DefaultJPEGQuality is the encoder quality of written crops.
const DefaultJPEGQuality = 95

// Config controls a cropping run.
type Config struct {
	LabelDir  string
	ImagesDir string
	CropsDir  string
	LabelFile string
	// PathPrefix is joined with each crop name in the recognition label
	// file. Empty means CropsDir as given.
	PathPrefix      string
	MaxCount        int
	JPEGQuality     int
	MinSize         int
	ImageExtensions []string
	// ContinueOnError skips label files whose labels or image cannot be
	// read instead of aborting the run.
	ContinueOnError bool
}

// Result summarizes a cropping run.
type Result struct {
	LabelFiles   int
	SkippedFiles int
	Ignored      int
	EmptyText    int
	Degenerate   int
	Truncated    bool // the crop budget was reached
	Records      []label.Record
}

// Cropper produces recognition crops from detection label files.
type Cropper struct {
	cfg      Config
	logger   *slog.Logger
	progress progress.Callback
	metrics  *metrics.Recorder
}

// New creates a cropper, filling unset quality and size with defaults.
func New(cfg Config) *Cropper {
	if cfg.JPEGQuality <= 0 {
		cfg.JPEGQuality = DefaultJPEGQuality
	}
	if cfg.MinSize <= 0 {
		cfg.MinSize = DefaultMinSize
	}
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = filepath.ToSlash(cfg.CropsDir)
	}
	return &Cropper{
		cfg:      cfg,
		logger:   slog.Default(),
		progress: progress.NoOp{},
	}
}

// WithLogger sets the logger.
func (c *Cropper) WithLogger(logger *slog.Logger) *Cropper {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// WithProgress sets the progress callback, ticked once per label file.
func (c *Cropper) WithProgress(cb progress.Callback) *Cropper {
	if cb != nil {
		c.progress = cb
	}
	return c
}

// WithMetrics sets the metrics recorder.
func (c *Cropper) WithMetrics(m *metrics.Recorder) *Cropper {
	c.metrics = m
	return c
}

// Run crops every usable line of every label file, in file name order, and
// writes the recognition label file once all crops are done. Crop images
// written before a failure stay on disk; the label file is not written.
func (c *Cropper) Run() (Result, error) {
	var res Result
	files, err := labelFiles(c.cfg.LabelDir)
	if err != nil {
		return res, err
	}
	if err := os.MkdirAll(c.cfg.CropsDir, 0o750); err != nil {
		return res, fmt.Errorf("create crops directory: %w", err)
	}

	budget := NewBudget(c.cfg.MaxCount)
	c.progress.OnStart(len(files))
	for i, name := range files {
		if budget.Exhausted() {
			break
		}
		res.LabelFiles++
		if err := c.processFile(name, budget, &res); err != nil {
			if !c.cfg.ContinueOnError {
				c.progress.OnComplete()
				return res, err
			}
			c.progress.OnError(i, err)
			c.metrics.SkippedLabelFile("error")
			c.logger.Warn("skipping label file", "file", name, "error", err)
			res.SkippedFiles++
		}
		c.progress.OnProgress(i+1, len(files))
	}
	c.progress.OnComplete()
	res.Truncated = budget.Exhausted()

	if dir := filepath.Dir(c.cfg.LabelFile); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return res, fmt.Errorf("create label directory: %w", err)
		}
	}
	if err := label.WriteRecognitionFile(c.cfg.LabelFile, res.Records); err != nil {
		return res, err
	}

	c.logger.Info("cropping finished",
		"label_files", res.LabelFiles,
		"crops", len(res.Records),
		"skipped_files", res.SkippedFiles,
		"truncated", res.Truncated,
		"label_file", c.cfg.LabelFile,
	)
	return res, nil
}

func (c *Cropper) processFile(name string, budget *Budget, res *Result) error {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	imgPath, err := utils.LocateImage(c.cfg.ImagesDir, stem, c.cfg.ImageExtensions)
	if errors.Is(err, utils.ErrNoImage) {
		c.logger.Warn("no image for label file", "file", name, "images_dir", c.cfg.ImagesDir)
		c.metrics.SkippedLabelFile("no_image")
		res.SkippedFiles++
		return nil
	}

	lines, err := label.ReadDetectionFile(filepath.Join(c.cfg.LabelDir, name))
	if err != nil {
		return err
	}
	img, _, err := utils.LoadImage(imgPath)
	if err != nil {
		return err
	}
	rgb := utils.ToRGB(img)

	for _, l := range lines {
		switch {
		case l.Text == "":
			res.EmptyText++
			c.metrics.CropLine("empty_text")
			continue
		case l.Ignored():
			res.Ignored++
			c.metrics.CropLine("ignored")
			continue
		}

		region, ok := Region(rgb, l.Polygon, c.cfg.MinSize)
		if !ok {
			res.Degenerate++
			c.metrics.CropLine("degenerate")
			continue
		}

		cropName := fmt.Sprintf("%s_%d.jpg", stem, l.Index)
		if err := utils.SaveJPEG(region, filepath.Join(c.cfg.CropsDir, cropName), c.cfg.JPEGQuality); err != nil {
			return err
		}
		res.Records = append(res.Records, label.Record{Path: path.Join(c.cfg.PathPrefix, cropName), Text: l.Text})
		c.metrics.CropLine("cropped")
		budget.Record()
		if budget.Exhausted() {
			c.logger.Debug("crop budget reached", "max_count", c.cfg.MaxCount, "file", name)
			return nil
		}
	}
	return nil
}

// labelFiles lists the *.txt files of dir sorted by name.
func labelFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read label directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), label.DetectionExt) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
