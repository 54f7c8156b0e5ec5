package cmd

import (
	"log/slog"
	"time"

	"github.com/MeKo-Tech/pplabel/internal/config"
	"github.com/MeKo-Tech/pplabel/internal/metrics"
	"github.com/MeKo-Tech/pplabel/internal/progress"
	"github.com/spf13/cobra"
)

// newProgress returns a console bar on stderr, or debug log lines when the
// bar is disabled.
func newProgress(cmd *cobra.Command, cfg *config.Config, prefix string) progress.Callback {
	if cfg.ShowProgress {
		return progress.NewConsole(cmd.ErrOrStderr(), prefix+": ")
	}
	return progress.NewLog(slog.Default(), prefix+": ", 100)
}

// finishRun records the run duration and writes the metrics textfile when
// one is configured.
func finishRun(rec *metrics.Recorder, cfg *config.Config, command string, start time.Time) error {
	rec.RunFinished(command, time.Since(start).Seconds())
	if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
		return err
	}
	if cfg.MetricsFile != "" {
		slog.Debug("metrics written", "file", cfg.MetricsFile)
	}
	return nil
}
