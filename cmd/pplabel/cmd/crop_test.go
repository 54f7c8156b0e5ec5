package cmd

import (
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/pplabel/internal/label"
	"github.com/MeKo-Tech/pplabel/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCropInputs(t *testing.T) (labels, images string) {
	t.Helper()
	dir := t.TempDir()
	labels, images = filepath.Join(dir, "det_labels"), filepath.Join(dir, "images")
	testutil.WriteSolidImage(t, filepath.Join(images, "a.jpg"), 60, 60)
	testutil.WriteSolidImage(t, filepath.Join(images, "b.png"), 60, 60)
	testutil.WriteFile(t, filepath.Join(labels, "a.txt"), "10,10,15,10,15,15,10,15,OK\n0,0,20,0,20,20,0,20,###")
	testutil.WriteFile(t, filepath.Join(labels, "b.txt"), "0,0,10,0,10,10,0,10,one\n20,20,30,20,30,30,20,30,two")
	return labels, images
}

func TestCropCommand(t *testing.T) {
	labels, images := setupCropInputs(t)
	out := t.TempDir()
	crops, labelFile := filepath.Join(out, "rec_crops"), filepath.Join(out, "rec_gt.txt")

	stdout, _, err := executeCommand(t, "crop",
		"--det_label_dir", labels, "--images_dir", images,
		"--out_crops_dir", crops, "--out_label_file", labelFile,
		"--path_prefix", "data/rec_crops", "--progress=false")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Saved 3 crops to "+crops)
	testutil.AssertFileContent(t, labelFile,
		"data/rec_crops/a_0.jpg\tOK\ndata/rec_crops/b_0.jpg\tone\ndata/rec_crops/b_1.jpg\ttwo")

	w, h := testutil.ImageSize(t, filepath.Join(crops, "a_0.jpg"))
	assert.Equal(t, 5, w)
	assert.Equal(t, 5, h)
}

func TestCropCommandMaxCount(t *testing.T) {
	labels, images := setupCropInputs(t)
	out := t.TempDir()
	labelFile := filepath.Join(out, "rec_gt.txt")

	stdout, _, err := executeCommand(t, "crop",
		"--det_label_dir", labels, "--images_dir", images,
		"--out_crops_dir", filepath.Join(out, "c"), "--out_label_file", labelFile,
		"--max_count", "2", "--progress=false")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Saved 2 crops")

	records, err := label.ReadRecognitionFile(labelFile)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "one", records[1].Text)
}

func TestCropCommandDefaultPrefixIsCropsDir(t *testing.T) {
	labels, images := setupCropInputs(t)
	out := t.TempDir()
	labelFile := filepath.Join(out, "rec_gt.txt")

	_, _, err := executeCommandIn(t, out, "crop",
		"--det_label_dir", labels, "--images_dir", images,
		"--out_crops_dir", "crops", "--out_label_file", labelFile, "--progress=false")
	require.NoError(t, err)

	records, err := label.ReadRecognitionFile(labelFile)
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Equal(t, "crops/a_0.jpg", records[0].Path)
	assert.FileExists(t, filepath.Join(out, "crops", "a_0.jpg"))
}

func TestCropCommandRejectsNegativeMaxCount(t *testing.T) {
	labels, images := setupCropInputs(t)
	out := t.TempDir()
	_, _, err := executeCommand(t, "crop",
		"--det_label_dir", labels, "--images_dir", images,
		"--out_crops_dir", filepath.Join(out, "c"), "--out_label_file", filepath.Join(out, "l.txt"),
		"--max_count", "-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crop.max_count")
}

func TestCropCommandMissingLabelDir(t *testing.T) {
	out := t.TempDir()
	_, _, err := executeCommand(t, "crop",
		"--det_label_dir", filepath.Join(out, "none"), "--images_dir", out,
		"--out_crops_dir", filepath.Join(out, "c"), "--out_label_file", filepath.Join(out, "l.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read label directory")
}
