package crop

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MeKo-Tech/pplabel/internal/label"
	"github.com/MeKo-Tech/pplabel/internal/metrics"
	"github.com/MeKo-Tech/pplabel/internal/testutil"
	"github.com/MeKo-Tech/pplabel/internal/utils"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type workspace struct {
	labels, images, crops, labelFile string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	dir := t.TempDir()
	ws := workspace{
		labels:    filepath.Join(dir, "det_labels"),
		images:    filepath.Join(dir, "images"),
		crops:     filepath.Join(dir, "rec_crops"),
		labelFile: filepath.Join(dir, "rec_gt.txt"),
	}
	require.NoError(t, testutil.EnsureDir(ws.labels))
	require.NoError(t, testutil.EnsureDir(ws.images))
	return ws
}

func (ws workspace) config() Config {
	return Config{
		LabelDir:   ws.labels,
		ImagesDir:  ws.images,
		CropsDir:   ws.crops,
		LabelFile:  ws.labelFile,
		PathPrefix: "data/rec_crops",
	}
}

func (ws workspace) addLabels(t *testing.T, name, content string) {
	t.Helper()
	testutil.WriteFile(t, filepath.Join(ws.labels, name), content)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestRunSingleCrop(t *testing.T) {
	ws := newWorkspace(t)
	testutil.WriteSolidImage(t, filepath.Join(ws.images, "img1.png"), 100, 100)
	ws.addLabels(t, "img1.txt", "10,10,15,10,15,15,10,15,OK\n30,30,40,30,40,40,30,40,###")

	res, err := New(ws.config()).WithLogger(quietLogger()).Run()
	require.NoError(t, err)

	assert.Equal(t, []label.Record{{Path: "data/rec_crops/img1_0.jpg", Text: "OK"}}, res.Records)
	assert.Equal(t, 1, res.Ignored)
	assert.False(t, res.Truncated)
	testutil.AssertFileContent(t, ws.labelFile, "data/rec_crops/img1_0.jpg\tOK")

	w, h := testutil.ImageSize(t, filepath.Join(ws.crops, "img1_0.jpg"))
	assert.Equal(t, 5, w)
	assert.Equal(t, 5, h)
	assert.NoFileExists(t, filepath.Join(ws.crops, "img1_1.jpg"))
}

func TestRunIndexCountsMalformedLines(t *testing.T) {
	ws := newWorkspace(t)
	testutil.WriteSolidImage(t, filepath.Join(ws.images, "a.jpg"), 50, 50)
	ws.addLabels(t, "a.txt", "garbage\n1,1,9,1,9,9,1,9,\n0,0,10,0,10,10,0,10,word, with comma\n0,0,1,0,1,1,0,1,tiny")

	res, err := New(ws.config()).WithLogger(quietLogger()).Run()
	require.NoError(t, err)

	require.Len(t, res.Records, 1)
	assert.Equal(t, label.Record{Path: "data/rec_crops/a_2.jpg", Text: "word, with comma"}, res.Records[0])
	assert.Equal(t, 1, res.EmptyText)
	assert.Equal(t, 1, res.Degenerate)
}

func TestRunStopsAtMaxCount(t *testing.T) {
	ws := newWorkspace(t)
	for _, stem := range []string{"a", "b", "c"} {
		testutil.WriteSolidImage(t, filepath.Join(ws.images, stem+".jpg"), 40, 40)
		ws.addLabels(t, stem+".txt", "0,0,10,0,10,10,0,10,one\n10,10,20,10,20,20,10,20,two")
	}

	cfg := ws.config()
	cfg.MaxCount = 3
	res, err := New(cfg).WithLogger(quietLogger()).Run()
	require.NoError(t, err)

	var paths []string
	for _, r := range res.Records {
		paths = append(paths, r.Path)
	}
	assert.Equal(t, []string{"data/rec_crops/a_0.jpg", "data/rec_crops/a_1.jpg", "data/rec_crops/b_0.jpg"}, paths)
	assert.True(t, res.Truncated)
	assert.Equal(t, 2, res.LabelFiles)
	assert.NoFileExists(t, filepath.Join(ws.crops, "b_1.jpg"))
	assert.NoFileExists(t, filepath.Join(ws.crops, "c_0.jpg"))
}

func TestRunSkipsMissingImage(t *testing.T) {
	ws := newWorkspace(t)
	testutil.WriteSolidImage(t, filepath.Join(ws.images, "b.png"), 40, 40)
	ws.addLabels(t, "a.txt", "0,0,10,0,10,10,0,10,lost")
	ws.addLabels(t, "b.txt", "0,0,10,0,10,10,0,10,found")
	ws.addLabels(t, "notes.md", "0,0,10,0,10,10,0,10,ignored")

	rec := metrics.NewRecorder()
	res, err := New(ws.config()).WithLogger(quietLogger()).WithMetrics(rec).Run()
	require.NoError(t, err)

	assert.Equal(t, []label.Record{{Path: "data/rec_crops/b_0.jpg", Text: "found"}}, res.Records)
	assert.Equal(t, 1, res.SkippedFiles)
	assert.Equal(t, 2, res.LabelFiles)

	expected := `
# HELP pplabel_crop_label_files_skipped_total Label files skipped during cropping, by reason
# TYPE pplabel_crop_label_files_skipped_total counter
pplabel_crop_label_files_skipped_total{reason="no_image"} 1
`
	require.NoError(t, promtestutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected),
		"pplabel_crop_label_files_skipped_total"))
}

func TestRunPrefersJPEG(t *testing.T) {
	ws := newWorkspace(t)
	testutil.WriteSolidImage(t, filepath.Join(ws.images, "x.jpg"), 30, 30)
	testutil.WriteSolidImage(t, filepath.Join(ws.images, "x.png"), 10, 10)
	ws.addLabels(t, "x.txt", "10,10,25,10,25,25,10,25,big")

	res, err := New(ws.config()).WithLogger(quietLogger()).Run()
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	w, _ := testutil.ImageSize(t, filepath.Join(ws.crops, "x_0.jpg"))
	assert.Equal(t, 15, w)
}

func TestRunDefaultPathPrefix(t *testing.T) {
	ws := newWorkspace(t)
	testutil.WriteSolidImage(t, filepath.Join(ws.images, "p.png"), 40, 40)
	ws.addLabels(t, "p.txt", "0,0,10,0,10,10,0,10,hi")

	cfg := ws.config()
	cfg.PathPrefix = ""
	res, err := New(cfg).WithLogger(quietLogger()).Run()
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, filepath.ToSlash(filepath.Join(ws.crops, "p_0.jpg")), res.Records[0].Path)
}

func TestRunUndecodableImage(t *testing.T) {
	setup := func(t *testing.T) workspace {
		ws := newWorkspace(t)
		testutil.WriteFile(t, filepath.Join(ws.images, "a.jpg"), "not an image")
		testutil.WriteSolidImage(t, filepath.Join(ws.images, "b.jpg"), 40, 40)
		ws.addLabels(t, "a.txt", "0,0,10,0,10,10,0,10,broken")
		ws.addLabels(t, "b.txt", "0,0,10,0,10,10,0,10,fine")
		return ws
	}

	t.Run("aborts by default", func(t *testing.T) {
		ws := setup(t)
		_, err := New(ws.config()).WithLogger(quietLogger()).Run()
		require.Error(t, err)

		var imgErr *utils.ImageProcessingError
		require.ErrorAs(t, err, &imgErr)
		assert.Equal(t, "decode", imgErr.Operation)
		assert.NoFileExists(t, ws.labelFile)
	})

	t.Run("continues when configured", func(t *testing.T) {
		ws := setup(t)
		cfg := ws.config()
		cfg.ContinueOnError = true
		res, err := New(cfg).WithLogger(quietLogger()).Run()
		require.NoError(t, err)
		assert.Equal(t, []label.Record{{Path: "data/rec_crops/b_0.jpg", Text: "fine"}}, res.Records)
		assert.Equal(t, 1, res.SkippedFiles)
	})
}

func TestRunMissingLabelDir(t *testing.T) {
	ws := newWorkspace(t)
	cfg := ws.config()
	cfg.LabelDir = filepath.Join(t.TempDir(), "missing")
	_, err := New(cfg).Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunEmptyLabelDirWritesEmptyLabelFile(t *testing.T) {
	ws := newWorkspace(t)
	res, err := New(ws.config()).WithLogger(quietLogger()).Run()
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	testutil.AssertFileContent(t, ws.labelFile, "")
	assert.True(t, testutil.DirExists(ws.crops))
}
