package label

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Sentinel marks a text region as unreadable. Such lines stay in detection
// labels but are never used for recognition crops.
const Sentinel = "###"

// DetectionExt is the extension of per-image detection label files.
const DetectionExt = ".txt"

// ErrMalformedLine is returned by ParseLine for lines that do not hold
// eight integer coordinates followed by a transcription.
var ErrMalformedLine = errors.New("malformed detection label line")

// Line is one text region of a detection label file.
type Line struct {
	Polygon Polygon
	Text    string
}

// Ignored reports whether the line carries the sentinel transcription.
func (l Line) Ignored() bool {
	return l.Text == Sentinel
}

// Format serializes the line as x1,y1,...,y4,text. The transcription is
// always the suffix and is written verbatim, commas included.
func (l Line) Format() string {
	var sb strings.Builder
	for _, v := range l.Polygon {
		sb.WriteString(strconv.Itoa(v))
		sb.WriteByte(',')
	}
	sb.WriteString(l.Text)
	return sb.String()
}

// ParseLine parses a single detection label line. Everything after the
// eighth comma is the transcription.
func ParseLine(s string) (Line, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) < 9 {
		return Line{}, fmt.Errorf("%w: want at least 9 fields, got %d", ErrMalformedLine, len(parts))
	}
	var l Line
	for i := range l.Polygon {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return Line{}, fmt.Errorf("%w: coordinate %d: %v", ErrMalformedLine, i, err)
		}
		l.Polygon[i] = v
	}
	l.Text = strings.TrimSpace(strings.Join(parts[8:], ","))
	return l, nil
}

// IndexedLine is a parsed line together with its 0-based position in the
// source file. Malformed lines still consume an index.
type IndexedLine struct {
	Index int
	Line
}

// ReadDetectionFile parses a detection label file, silently dropping
// malformed lines.
func ReadDetectionFile(path string) ([]IndexedLine, error) {
	f, err := os.Open(path) //nolint:gosec // G304: label paths come from the caller
	if err != nil {
		return nil, fmt.Errorf("open detection labels: %w", err)
	}
	defer func() { _ = f.Close() }()

	var out []IndexedLine
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for i := 0; sc.Scan(); i++ {
		l, err := ParseLine(sc.Text())
		if err != nil {
			continue
		}
		out = append(out, IndexedLine{Index: i, Line: l})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read detection labels %s: %w", path, err)
	}
	return out, nil
}

// ReadPolygons returns the polygons of every well-formed line in path.
func ReadPolygons(path string) ([]Polygon, error) {
	lines, err := ReadDetectionFile(path)
	if err != nil {
		return nil, err
	}
	polys := make([]Polygon, len(lines))
	for i, l := range lines {
		polys[i] = l.Polygon
	}
	return polys, nil
}

// WriteDetectionFile writes lines newline-joined, without a trailing
// newline. An existing file is overwritten.
func WriteDetectionFile(path string, lines []Line) error {
	formatted := make([]string, len(lines))
	for i, l := range lines {
		formatted[i] = l.Format()
	}
	if err := os.WriteFile(path, []byte(strings.Join(formatted, "\n")), 0o644); err != nil { //nolint:gosec // label files are meant to be world-readable
		return fmt.Errorf("write detection labels: %w", err)
	}
	return nil
}
