// Package metrics records run statistics and exports them in the
// Prometheus text format, suitable for the node exporter textfile
// collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder collects counters for one run. A nil *Recorder is valid and
// discards everything.
type Recorder struct {
	registry *prometheus.Registry

	annotations      *prometheus.CounterVec
	labelFiles       prometheus.Counter
	labelLines       prometheus.Counter
	cropLines        *prometheus.CounterVec
	skippedImages    *prometheus.CounterVec
	runDuration      *prometheus.GaugeVec
	lastRunTimestamp *prometheus.GaugeVec
}

// NewRecorder creates a recorder backed by its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		annotations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pplabel_annotations_total",
				Help: "Annotations seen during conversion, by outcome",
			},
			[]string{"outcome"}, // kept, no_text, no_geometry, too_small
		),
		labelFiles: factory.NewCounter(prometheus.CounterOpts{
			Name: "pplabel_detection_label_files_written_total",
			Help: "Detection label files written",
		}),
		labelLines: factory.NewCounter(prometheus.CounterOpts{
			Name: "pplabel_detection_label_lines_written_total",
			Help: "Detection label lines written",
		}),
		cropLines: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pplabel_crop_lines_total",
				Help: "Detection label lines seen during cropping, by outcome",
			},
			[]string{"outcome"}, // cropped, ignored, empty_text, degenerate
		),
		skippedImages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pplabel_crop_label_files_skipped_total",
				Help: "Label files skipped during cropping, by reason",
			},
			[]string{"reason"}, // no_image, error
		),
		runDuration: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pplabel_run_duration_seconds",
				Help: "Duration of the last run",
			},
			[]string{"command"},
		),
		lastRunTimestamp: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pplabel_last_run_timestamp_seconds",
				Help: "Unix time the last run finished",
			},
			[]string{"command"},
		),
	}
}

// Registry exposes the underlying registry as a gatherer.
func (r *Recorder) Registry() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

// Annotation counts one annotation with the given outcome.
func (r *Recorder) Annotation(outcome string) {
	if r == nil {
		return
	}
	r.annotations.WithLabelValues(outcome).Inc()
}

// LabelFile counts a written detection label file with n lines.
func (r *Recorder) LabelFile(lines int) {
	if r == nil {
		return
	}
	r.labelFiles.Inc()
	r.labelLines.Add(float64(lines))
}

// CropLine counts one detection label line seen while cropping.
func (r *Recorder) CropLine(outcome string) {
	if r == nil {
		return
	}
	r.cropLines.WithLabelValues(outcome).Inc()
}

// SkippedLabelFile counts a label file that produced no crops.
func (r *Recorder) SkippedLabelFile(reason string) {
	if r == nil {
		return
	}
	r.skippedImages.WithLabelValues(reason).Inc()
}

// RunFinished records the duration and completion time of a command.
func (r *Recorder) RunFinished(command string, seconds float64) {
	if r == nil {
		return
	}
	r.runDuration.WithLabelValues(command).Set(seconds)
	r.lastRunTimestamp.WithLabelValues(command).SetToCurrentTime()
}

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
