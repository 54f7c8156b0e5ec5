package support

import (
	"fmt"
	"os"
	"time"
)

// TestContext holds the state for integration tests.
type TestContext struct {
	// Command execution state
	LastCommand   string
	LastOutput    string
	LastStderr    string
	LastError     error
	LastExitCode  int
	LastStartTime time.Time
	LastDuration  time.Duration

	// Test environment. Commands run inside WorkingDir, a fresh temporary
	// directory per scenario.
	WorkingDir string
	EnvVars    []string
}

// NewTestContext creates a new test context.
func NewTestContext() (*TestContext, error) {
	tempDir, err := os.MkdirTemp("", "pplabel-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &TestContext{
		WorkingDir: tempDir,
		// Keep user config files out of the scenarios.
		EnvVars: []string{"HOME=" + tempDir, "XDG_CONFIG_HOME=" + tempDir},
	}, nil
}

// Cleanup removes the scenario directory.
func (testCtx *TestContext) Cleanup() error {
	if err := os.RemoveAll(testCtx.WorkingDir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove temp directory %s: %w", testCtx.WorkingDir, err)
	}
	return nil
}

// AddEnvVar adds an environment variable for command execution.
func (testCtx *TestContext) AddEnvVar(name, value string) {
	testCtx.EnvVars = append(testCtx.EnvVars, fmt.Sprintf("%s=%s", name, value))
}
