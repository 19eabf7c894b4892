package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeTool installs an executable shell script named tool into binDir.
func fakeTool(t *testing.T, binDir, tool, output string, exitCode int) {
	t.Helper()
	script := fmt.Sprintf("#!/bin/sh\nif [ -n %q ]; then echo %q; fi\nexit %d\n", output, output, exitCode)
	if err := os.WriteFile(filepath.Join(binDir, tool), []byte(script), 0755); err != nil {
		t.Fatalf("Failed to install fake %s: %v", tool, err)
	}
}

func runCheckCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewCheckCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestCheckCommand_AllStepsPass(t *testing.T) {
	root := testProject(t)
	binDir := t.TempDir()
	fakeTool(t, binDir, "ruff", "", 0)
	fakeTool(t, binDir, "ty", "", 0)
	t.Setenv("PATH", binDir)
	chdir(t, root)

	output, err := runCheckCommand(t)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, label := range []string{"✓ lint", "✓ format", "✓ typecheck"} {
		if !strings.Contains(output, label) {
			t.Errorf("Expected report to contain %q, got:\n%s", label, output)
		}
	}
	if !strings.Contains(output, "all checks passed") {
		t.Errorf("Expected success summary, got:\n%s", output)
	}
}

func TestCheckCommand_ReportsEveryStepAfterFailure(t *testing.T) {
	root := testProject(t)
	binDir := t.TempDir()
	fakeTool(t, binDir, "ruff", "", 0)
	fakeTool(t, binDir, "ty", "error: incompatible types", 2)
	t.Setenv("PATH", binDir)
	chdir(t, root)

	output, err := runCheckCommand(t)

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Expected *ExitError, got %v", err)
	}
	if exitErr.Code != 2 {
		t.Errorf("Expected the tool's exit code 2, got %d", exitErr.Code)
	}

	// Earlier steps still show up even though the last one failed.
	for _, label := range []string{"✓ lint", "✓ format", "✗ typecheck (exit 2)"} {
		if !strings.Contains(output, label) {
			t.Errorf("Expected report to contain %q, got:\n%s", label, output)
		}
	}
	if !strings.Contains(output, "error: incompatible types") {
		t.Errorf("Expected the diagnostic verbatim, got:\n%s", output)
	}
	if !strings.Contains(output, "1 of 3 checks failed") {
		t.Errorf("Expected failure summary, got:\n%s", output)
	}
}

func TestCheckCommand_NoFixDropsTheFixFlag(t *testing.T) {
	root := testProject(t)
	binDir := t.TempDir()
	fakeTool(t, binDir, "ruff", "", 0)
	fakeTool(t, binDir, "ty", "", 0)
	t.Setenv("PATH", binDir)
	chdir(t, root)

	output, err := runCheckCommand(t, "--no-fix")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if strings.Contains(output, "--fix") {
		t.Errorf("Expected no --fix in report-only mode, got:\n%s", output)
	}
}

func TestCheckCommand_JSONOutput(t *testing.T) {
	root := testProject(t)
	binDir := t.TempDir()
	fakeTool(t, binDir, "ruff", "", 0)
	fakeTool(t, binDir, "ty", "", 0)
	t.Setenv("PATH", binDir)
	chdir(t, root)

	output, err := runCheckCommand(t, "--json")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var result struct {
		ID    string `json:"id"`
		Steps []struct {
			Label    string `json:"label"`
			ExitCode int    `json:"exit_code"`
		} `json:"steps"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("Expected valid JSON, got %v:\n%s", err, output)
	}
	if result.ID == "" {
		t.Error("Expected a run ID")
	}
	if len(result.Steps) != 3 {
		t.Fatalf("Expected 3 steps, got %d", len(result.Steps))
	}
	if result.Steps[0].Label != "lint" || result.Steps[1].Label != "format" || result.Steps[2].Label != "typecheck" {
		t.Errorf("Expected lint, format, typecheck in order, got %+v", result.Steps)
	}
}

func TestCheckCommand_OutsideProject(t *testing.T) {
	chdir(t, t.TempDir())

	if _, err := runCheckCommand(t); err == nil {
		t.Error("Expected error outside a project")
	}
}
