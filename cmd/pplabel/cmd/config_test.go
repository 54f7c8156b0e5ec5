package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/MeKo-Tech/pplabel/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigCommandDefaults(t *testing.T) {
	stdout, _, err := executeCommand(t, "config")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "# config file:")

	var settings map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &settings))
	assert.Equal(t, "info", settings["log_level"])
	assert.Equal(t, true, settings["show_progress"])

	crop, ok := settings["crop"].(map[string]any)
	require.True(t, ok, "crop section missing: %s", stdout)
	assert.Equal(t, 95, crop["jpeg_quality"])

	evalSection, ok := settings["eval"].(map[string]any)
	require.True(t, ok, "eval section missing: %s", stdout)
	assert.InDelta(t, 0.5, evalSection["iou_threshold"], 1e-9)
}

func TestConfigCommandReportsFileAndFlags(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "custom.yaml")
	testutil.WriteFile(t, cfgPath, "crop:\n  max_count: 7\n")

	stdout, _, err := executeCommand(t, "--config", cfgPath, "--log_level", "warn", "config")
	require.NoError(t, err)

	firstLine, _, _ := strings.Cut(stdout, "\n")
	assert.Equal(t, "# config file: "+cfgPath, firstLine)

	var settings map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &settings))
	assert.Equal(t, "warn", settings["log_level"])
	crop, ok := settings["crop"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 7, crop["max_count"])
}
