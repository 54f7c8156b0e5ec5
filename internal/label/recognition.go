package label

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Record is one entry of the recognition label file.
type Record struct {
	Path string
	Text string
}

// Format returns the tab-separated representation of the record.
func (r Record) Format() string {
	return r.Path + "\t" + r.Text
}

// WriteRecognitionFile writes all records in order, newline-joined.
func WriteRecognitionFile(path string, records []Record) error {
	formatted := make([]string, len(records))
	for i, r := range records {
		formatted[i] = r.Format()
	}
	if err := os.WriteFile(path, []byte(strings.Join(formatted, "\n")), 0o644); err != nil { //nolint:gosec // label files are meant to be world-readable
		return fmt.Errorf("write recognition labels: %w", err)
	}
	return nil
}

// ReadRecognitionFile parses a recognition label file. Lines without a tab
// are skipped; the transcription is everything after the first tab.
func ReadRecognitionFile(path string) ([]Record, error) {
	f, err := os.Open(path) //nolint:gosec // G304: label paths come from the caller
	if err != nil {
		return nil, fmt.Errorf("open recognition labels: %w", err)
	}
	defer func() { _ = f.Close() }()

	var out []Record
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		p, text, ok := strings.Cut(strings.TrimRight(sc.Text(), "\r"), "\t")
		if !ok || p == "" {
			continue
		}
		out = append(out, Record{Path: p, Text: text})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read recognition labels %s: %w", path, err)
	}
	return out, nil
}
