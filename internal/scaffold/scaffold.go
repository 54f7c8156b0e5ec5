// Package scaffold creates the directory skeleton of an OCR training
// project.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultRoot is the project directory created when none is given.
const DefaultRoot = "PaddleOCR_Project"

// Layout lists the project directories, relative to the root.
var Layout = []string{
	"scripts",
	"notebooks",
	"configs",
	"data/raw",
	"data/det_labels",
	"data/rec_crops",
	"data/results",
	"results/weights",
	"results/logs",
	"results/predictions",
	"docs/diagrams",
	"docs/latex",
}

// Create makes every directory of Layout under root and touches
// README.md. Existing directories and README content are left untouched.
func Create(root string) error {
	for _, p := range Layout {
		if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(p)), 0o750); err != nil {
			return fmt.Errorf("create %s: %w", p, err)
		}
	}
	readme := filepath.Join(root, "README.md")
	f, err := os.OpenFile(readme, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) //nolint:gosec // README is meant to be world-readable
	if err != nil {
		return fmt.Errorf("touch README: %w", err)
	}
	return f.Close()
}
