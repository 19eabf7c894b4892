package toolchain

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPipeline_Steps(t *testing.T) {
	p := CheckPipeline(NewRunner(".", nil), CheckOptions{
		Fix:      true,
		Paths:    []string{"src"},
		LintArgs: []string{"--select", "E,F"},
		FmtArgs:  []string{"--line-length", "100"},
	})

	require.Len(t, p.Steps, 3)

	assert.Equal(t, "lint", p.Steps[0].Label)
	assert.Equal(t, Ruff, p.Steps[0].Tool.Name)
	assert.Equal(t, []string{"check", "--fix", "--select", "E,F", "src"}, p.Steps[0].Args)
	assert.True(t, p.Steps[0].Mutates)

	assert.Equal(t, "format", p.Steps[1].Label)
	assert.Equal(t, []string{"format", "--line-length", "100", "src"}, p.Steps[1].Args)
	assert.True(t, p.Steps[1].Mutates)

	assert.Equal(t, "typecheck", p.Steps[2].Label)
	assert.Equal(t, Ty, p.Steps[2].Tool.Name)
	assert.Equal(t, []string{"check", "src"}, p.Steps[2].Args)
	assert.False(t, p.Steps[2].Mutates)
}

func TestCheckPipeline_NoFix(t *testing.T) {
	p := CheckPipeline(NewRunner(".", nil), CheckOptions{})
	assert.Equal(t, []string{"check"}, p.Steps[0].Args)
	assert.False(t, p.Steps[0].Mutates)
}

func TestPipeline_RunsSequentiallyInOrder(t *testing.T) {
	bin := t.TempDir()
	work := t.TempDir()
	logFile := filepath.Join(work, "order.log")

	// Both fake tools append their subcommand to a shared log. With
	// strictly sequential execution the log reads lint, format, check.
	script := `echo "$(basename "$0") $1" >> ` + logFile
	fakeTool(t, bin, "ruff", script)
	fakeTool(t, bin, "ty", script)
	isolatePath(t, bin)

	runner := NewRunner(work, nil)
	runner.Capture = true

	result, err := CheckPipeline(runner, CheckOptions{Fix: true}).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Ok())
	assert.Equal(t, 0, result.ExitCode())
	assert.NotEmpty(t, result.ID)
	require.Len(t, result.Steps, 3)

	logged, err := os.ReadFile(logFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(logged)), "\n")
	assert.Equal(t, []string{"ruff check", "ruff format", "ty check"}, lines)
}

func TestPipeline_ReportsEveryStepAfterFailure(t *testing.T) {
	bin := t.TempDir()
	fakeTool(t, bin, "ruff", `if [ "$1" = "check" ]; then echo "E501 line too long"; exit 1; fi
exit 0`)
	fakeTool(t, bin, "ty", `echo "All checks passed!"`)
	isolatePath(t, bin)

	runner := NewRunner(t.TempDir(), nil)
	runner.Capture = true

	result, err := CheckPipeline(runner, CheckOptions{}).Run(context.Background())
	require.NoError(t, err)

	// The failing lint step does not stop format and typecheck from
	// running: every tool's status is reported in invocation order.
	require.Len(t, result.Steps, 3)
	assert.False(t, result.Ok())
	assert.Equal(t, 1, result.ExitCode())
	assert.Equal(t, 1, result.Steps[0].ExitCode)
	assert.Contains(t, result.Steps[0].Output, "E501")
	assert.True(t, result.Steps[1].Ok())
	assert.True(t, result.Steps[2].Ok())
}

func TestPipeline_AbortsOnExecutionError(t *testing.T) {
	isolatePath(t, t.TempDir())

	runner := NewRunner(t.TempDir(), nil)
	runner.Fallback = ""

	result, err := CheckPipeline(runner, CheckOptions{}).Run(context.Background())
	assert.Error(t, err)
	assert.Empty(t, result.Steps)
}

func TestWriteReport(t *testing.T) {
	result := &Result{
		ID: "run-1",
		Steps: []StepResult{
			{Label: "lint", Command: "ruff check --fix", ExitCode: 0},
			{Label: "typecheck", Command: "ty check", ExitCode: 1, Output: "error: unresolved-attribute\n"},
		},
	}

	var buf bytes.Buffer
	WriteReport(&buf, result, true)

	out := buf.String()
	assert.Contains(t, out, "✓ lint")
	assert.Contains(t, out, "✗ typecheck (exit 1)")
	assert.Contains(t, out, "error: unresolved-attribute")
	assert.Contains(t, out, "1 of 2 checks failed")
}

func TestWriteJSON(t *testing.T) {
	result := &Result{
		ID:    "run-2",
		Steps: []StepResult{{Label: "lint", ExitCode: 0}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, result))

	var decoded Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-2", decoded.ID)
	require.Len(t, decoded.Steps, 1)
	assert.Equal(t, "lint", decoded.Steps[0].Label)
}
