package support

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"
)

// iRunCommand executes a command line inside the scenario directory.
func (testCtx *TestContext) iRunCommand(command string) error {
	testCtx.LastCommand = command
	testCtx.LastStartTime = time.Now()

	parts := strings.Fields(command)
	if len(parts) == 0 {
		return errors.New("empty command")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	cmd.Dir = testCtx.WorkingDir
	cmd.Env = append(os.Environ(), testCtx.EnvVars...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	testCtx.LastOutput = stdout.String()
	testCtx.LastStderr = stderr.String()
	testCtx.LastError = err
	testCtx.LastDuration = time.Since(testCtx.LastStartTime)

	if err != nil {
		exitError := &exec.ExitError{}
		if errors.As(err, &exitError) {
			testCtx.LastExitCode = exitError.ExitCode()
		} else {
			testCtx.LastExitCode = -1
		}
	} else {
		testCtx.LastExitCode = 0
	}

	return nil
}

// theCommandShouldSucceed verifies the command succeeded.
func (testCtx *TestContext) theCommandShouldSucceed() error {
	if testCtx.LastExitCode != 0 {
		return fmt.Errorf("command failed with exit code %d: %w\nOutput: %s\nStderr: %s",
			testCtx.LastExitCode, testCtx.LastError, testCtx.LastOutput, testCtx.LastStderr)
	}
	return nil
}

// theCommandShouldFail verifies the command failed.
func (testCtx *TestContext) theCommandShouldFail() error {
	if testCtx.LastExitCode == 0 {
		return fmt.Errorf("command succeeded when it should have failed\nOutput: %s", testCtx.LastOutput)
	}
	return nil
}

// theOutputShouldContain verifies stdout contains specific text.
func (testCtx *TestContext) theOutputShouldContain(expectedText string) error {
	if !strings.Contains(testCtx.LastOutput, expectedText) {
		return fmt.Errorf("output does not contain '%s'\nActual output: %s", expectedText, testCtx.LastOutput)
	}
	return nil
}

// theOutputShouldBeValidJSON verifies stdout is a single JSON document.
func (testCtx *TestContext) theOutputShouldBeValidJSON() error {
	if !json.Valid([]byte(strings.TrimSpace(testCtx.LastOutput))) {
		return fmt.Errorf("output is not valid JSON\nActual output: %s", testCtx.LastOutput)
	}
	return nil
}

// theJSONFieldShouldBe compares a top-level numeric field of the JSON output.
func (testCtx *TestContext) theJSONFieldShouldBe(field, want string) error {
	var data map[string]any
	if err := json.Unmarshal([]byte(testCtx.LastOutput), &data); err != nil {
		return fmt.Errorf("output is not valid JSON: %w", err)
	}
	got, ok := data[field]
	if !ok {
		return fmt.Errorf("JSON output has no field %q\nActual output: %s", field, testCtx.LastOutput)
	}
	wantNum, err := strconv.ParseFloat(want, 64)
	if err != nil {
		return fmt.Errorf("expected value %q is not a number", want)
	}
	if gotNum, ok := got.(float64); !ok || gotNum != wantNum {
		return fmt.Errorf("JSON field %q is %v, want %s", field, got, want)
	}
	return nil
}

// theErrorShouldMention verifies stderr mentions specific text.
func (testCtx *TestContext) theErrorShouldMention(errorText string) error {
	if !strings.Contains(strings.ToLower(testCtx.LastStderr), strings.ToLower(errorText)) {
		return fmt.Errorf("error output does not mention '%s'\nStderr: %s", errorText, testCtx.LastStderr)
	}
	return nil
}

// theEnvironmentVariableIsSetTo sets an environment variable for later commands.
func (testCtx *TestContext) theEnvironmentVariableIsSetTo(name, value string) error {
	testCtx.AddEnvVar(name, value)
	return nil
}

// theFileShouldExist verifies a file exists in the scenario directory.
func (testCtx *TestContext) theFileShouldExist(filename string) error {
	fullPath := filepath.Join(testCtx.WorkingDir, filename)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", fullPath)
	}
	return nil
}

// theFileShouldNotExist verifies a file is absent from the scenario directory.
func (testCtx *TestContext) theFileShouldNotExist(filename string) error {
	fullPath := filepath.Join(testCtx.WorkingDir, filename)
	if _, err := os.Stat(fullPath); err == nil {
		return fmt.Errorf("file should not exist: %s", fullPath)
	}
	return nil
}

func (testCtx *TestContext) readFile(filename string) (string, error) {
	fullPath := filepath.Join(testCtx.WorkingDir, filename)
	content, err := os.ReadFile(fullPath) //nolint:gosec // G304: Test file reading with controlled path
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", fullPath, err)
	}
	return string(content), nil
}

// theFileShouldContain verifies a file contains specific content.
func (testCtx *TestContext) theFileShouldContain(filename, expectedContent string) error {
	content, err := testCtx.readFile(filename)
	if err != nil {
		return err
	}
	if !strings.Contains(content, expectedContent) {
		return fmt.Errorf("file %s does not contain '%s'\nActual content: %s", filename, expectedContent, content)
	}
	return nil
}

// theFileShouldNotContain verifies a file does not contain specific content.
func (testCtx *TestContext) theFileShouldNotContain(filename, unexpected string) error {
	content, err := testCtx.readFile(filename)
	if err != nil {
		return err
	}
	if strings.Contains(content, unexpected) {
		return fmt.Errorf("file %s should not contain '%s'\nActual content: %s", filename, unexpected, content)
	}
	return nil
}

// theFileShouldContainExactly compares a file with a doc string. Tabs may
// be written as \t in the doc string.
func (testCtx *TestContext) theFileShouldContainExactly(filename string, doc *godog.DocString) error {
	content, err := testCtx.readFile(filename)
	if err != nil {
		return err
	}
	want := strings.ReplaceAll(doc.Content, `\t`, "\t")
	if content != want {
		return fmt.Errorf("file %s content mismatch\nwant: %q\ngot:  %q", filename, want, content)
	}
	return nil
}

// RegisterCommonSteps registers the command and file steps.
func (testCtx *TestContext) RegisterCommonSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I run "([^"]*)"$`, testCtx.iRunCommand)
	sc.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, testCtx.theCommandShouldFail)

	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the output should be valid JSON$`, testCtx.theOutputShouldBeValidJSON)
	sc.Step(`^the JSON field "([^"]*)" should be ([0-9.]+)$`, testCtx.theJSONFieldShouldBe)
	sc.Step(`^the error should mention "([^"]*)"$`, testCtx.theErrorShouldMention)
	sc.Step(`^the environment variable "([^"]*)" is set to "([^"]*)"$`, testCtx.theEnvironmentVariableIsSetTo)

	sc.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
	sc.Step(`^the file "([^"]*)" should not exist$`, testCtx.theFileShouldNotExist)
	sc.Step(`^the file "([^"]*)" should contain "([^"]*)"$`, testCtx.theFileShouldContain)
	sc.Step(`^the file "([^"]*)" should not contain "([^"]*)"$`, testCtx.theFileShouldNotContain)
	sc.Step(`^the file "([^"]*)" should contain exactly:$`, testCtx.theFileShouldContainExactly)
}
