// Package progress reports how far a batch run has advanced.
package progress

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Callback receives progress events from a batch run.
type Callback interface {
	// OnStart is called once with the number of items to process.
	OnStart(total int)

	// OnProgress is called after each processed item.
	OnProgress(current, total int)

	// OnComplete is called when the run ends, including early exits.
	OnComplete()

	// OnError is called for items that failed but did not stop the run.
	OnError(current int, err error)
}

// NoOp implements Callback but does nothing.
type NoOp struct{}

func (NoOp) OnStart(total int)              {}
func (NoOp) OnProgress(current, total int)  {}
func (NoOp) OnComplete()                    {}
func (NoOp) OnError(current int, err error) {}

// Console draws a progress bar on a terminal writer.
type Console struct {
	writer         io.Writer
	prefix         string
	width          int
	updateInterval time.Duration
	lastUpdate     time.Time
	startTime      time.Time
}

// NewConsole creates a console progress bar writing to w (stderr when nil).
func NewConsole(w io.Writer, prefix string) *Console {
	if w == nil {
		w = os.Stderr
	}
	return &Console{
		writer:         w,
		prefix:         prefix,
		width:          40,
		updateInterval: 100 * time.Millisecond,
	}
}

// WithWidth sets the bar width in characters.
func (c *Console) WithWidth(width int) *Console {
	c.width = width
	return c
}

// WithUpdateInterval sets the minimum time between redraws.
func (c *Console) WithUpdateInterval(interval time.Duration) *Console {
	c.updateInterval = interval
	return c
}

func (c *Console) OnStart(total int) {
	c.startTime = time.Now()
	c.lastUpdate = time.Time{}
	_, _ = fmt.Fprintf(c.writer, "%s0/%d (0.0%%)\n", c.prefix, total)
}

func (c *Console) OnProgress(current, total int) {
	now := time.Now()
	if now.Sub(c.lastUpdate) < c.updateInterval && current < total {
		return
	}
	c.lastUpdate = now
	c.draw(current, total, now)
}

func (c *Console) OnComplete() {
	elapsed := time.Since(c.startTime)
	_, _ = fmt.Fprintf(c.writer, "\n%sCompleted in %v\n", c.prefix, elapsed.Round(time.Millisecond))
}

func (c *Console) OnError(current int, err error) {
	_, _ = fmt.Fprintf(c.writer, "\n%sError at item %d: %v\n", c.prefix, current, err)
}

func (c *Console) draw(current, total int, now time.Time) {
	if total <= 0 {
		return
	}
	current = min(current, total)
	percent := float64(current) / float64(total) * 100.0
	filled := c.width * current / total

	bar := strings.Repeat("█", filled) + strings.Repeat("░", c.width-filled)
	status := fmt.Sprintf("\r%s[%s] %d/%d (%.1f%%)", c.prefix, bar, current, total, percent)

	if elapsed := now.Sub(c.startTime); elapsed > 0 && current > 0 {
		status += fmt.Sprintf(" %.1f/s", float64(current)/elapsed.Seconds())
	}
	_, _ = fmt.Fprint(c.writer, status)
}

// Log reports progress through slog every interval items.
type Log struct {
	logger   *slog.Logger
	prefix   string
	interval int
	lastLog  int
	start    time.Time
}

// NewLog creates a slog-based reporter. A nil logger uses slog.Default().
func NewLog(logger *slog.Logger, prefix string, interval int) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 100
	}
	return &Log{logger: logger, prefix: prefix, interval: interval}
}

func (l *Log) OnStart(total int) {
	l.start = time.Now()
	l.lastLog = 0
	l.logger.Debug(l.prefix+"starting", "total", total)
}

func (l *Log) OnProgress(current, total int) {
	if current-l.lastLog < l.interval && current != total {
		return
	}
	l.lastLog = current
	l.logger.Debug(l.prefix+"progress", "current", current, "total", total)
}

func (l *Log) OnComplete() {
	l.logger.Debug(l.prefix+"completed", "elapsed", time.Since(l.start).Round(time.Millisecond))
}

func (l *Log) OnError(current int, err error) {
	l.logger.Warn(l.prefix+"item failed", "current", current, "error", err)
}
