package support

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
	"github.com/disintegration/imaging"
)

func (testCtx *TestContext) writeFile(name, content string) error {
	fullPath := filepath.Join(testCtx.WorkingDir, name)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// aFileWithContent writes a doc string to a file. Tabs may be written as \t.
func (testCtx *TestContext) aFileWithContent(name string, doc *godog.DocString) error {
	return testCtx.writeFile(name, strings.ReplaceAll(doc.Content, `\t`, "\t"))
}

// anImageOfSize writes a white image with a black diagonal.
func (testCtx *TestContext) anImageOfSize(name string, width, height int) error {
	fullPath := filepath.Join(testCtx.WorkingDir, name)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}
	img := imaging.New(width, height, color.White)
	for i := 0; i < width && i < height; i++ {
		img.Set(i, i, color.Black)
	}
	if err := imaging.Save(img, fullPath); err != nil {
		return fmt.Errorf("failed to save image %s: %w", name, err)
	}
	return nil
}

// theFollowingImages writes one image per table row. The table needs the
// columns file, width and height.
func (testCtx *TestContext) theFollowingImages(table *godog.Table) error {
	if len(table.Rows) < 2 {
		return fmt.Errorf("image table needs a header and at least one row")
	}
	header := map[string]int{}
	for i, cell := range table.Rows[0].Cells {
		header[cell.Value] = i
	}
	for _, col := range []string{"file", "width", "height"} {
		if _, ok := header[col]; !ok {
			return fmt.Errorf("image table is missing column %q", col)
		}
	}
	for _, row := range table.Rows[1:] {
		w, err := strconv.Atoi(row.Cells[header["width"]].Value)
		if err != nil {
			return fmt.Errorf("invalid width: %w", err)
		}
		h, err := strconv.Atoi(row.Cells[header["height"]].Value)
		if err != nil {
			return fmt.Errorf("invalid height: %w", err)
		}
		if err := testCtx.anImageOfSize(row.Cells[header["file"]].Value, w, h); err != nil {
			return err
		}
	}
	return nil
}

// theImageShouldHaveSize checks the pixel dimensions of an image file.
func (testCtx *TestContext) theImageShouldHaveSize(name string, width, height int) error {
	img, err := imaging.Open(filepath.Join(testCtx.WorkingDir, name))
	if err != nil {
		return fmt.Errorf("failed to open image %s: %w", name, err)
	}
	if got := img.Bounds().Size(); got != image.Pt(width, height) {
		return fmt.Errorf("image %s is %dx%d, want %dx%d", name, got.X, got.Y, width, height)
	}
	return nil
}

// theDirectoryShouldContainFiles counts regular files in a directory.
func (testCtx *TestContext) theDirectoryShouldContainFiles(dir string, want int) error {
	entries, err := os.ReadDir(filepath.Join(testCtx.WorkingDir, dir))
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	got := 0
	for _, e := range entries {
		if e.Type().IsRegular() {
			got++
		}
	}
	if got != want {
		return fmt.Errorf("directory %s contains %d files, want %d", dir, got, want)
	}
	return nil
}

// RegisterDatasetSteps registers steps that build and inspect datasets.
func (testCtx *TestContext) RegisterDatasetSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a file "([^"]*)" with:$`, testCtx.aFileWithContent)
	sc.Step(`^an image "([^"]*)" of size (\d+)x(\d+)$`, testCtx.anImageOfSize)
	sc.Step(`^the following images:$`, testCtx.theFollowingImages)
	sc.Step(`^the image "([^"]*)" should be (\d+)x(\d+) pixels$`, testCtx.theImageShouldHaveSize)
	sc.Step(`^the directory "([^"]*)" should contain (\d+) files?$`, testCtx.theDirectoryShouldContainFiles)
}
