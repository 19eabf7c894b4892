package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// StepResult records one completed tool invocation. A non-zero exit
// code is not an execution failure: it means the tool reported
// diagnostics, which are surfaced unmodified.
type StepResult struct {
	Label    string        `json:"label"`
	Command  string        `json:"command"`
	ExitCode int           `json:"exit_code"`
	Output   string        `json:"output,omitempty"`
	Duration time.Duration `json:"duration_ns"`
	Fallback bool          `json:"fallback,omitempty"`
}

// Ok reports whether the step exited clean.
func (s StepResult) Ok() bool { return s.ExitCode == 0 }

// Runner executes resolved tool invocations in a working directory.
// When Capture is set, combined output is recorded on the StepResult;
// otherwise it streams to Stdout/Stderr as the tool produces it.
type Runner struct {
	Dir      string
	Env      []string // extra environment, appended to os.Environ
	Stdout   io.Writer
	Stderr   io.Writer
	Stdin    io.Reader
	Capture  bool
	Fallback string // one-off runner binary, e.g. "uvx"; empty disables
	Log      *zap.Logger
}

// NewRunner returns a streaming runner rooted at dir.
func NewRunner(dir string, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		Dir:      dir,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Fallback: "uvx",
		Log:      log,
	}
}

// Run executes a single invocation to completion. The returned error is
// non-nil only when the tool could not be executed at all; diagnostics
// are reported through StepResult.ExitCode.
func (r *Runner) Run(ctx context.Context, inv Invocation) (StepResult, error) {
	resolved, err := inv.Resolve(r.Fallback)
	if err != nil {
		return StepResult{Label: inv.Label}, err
	}

	result := StepResult{
		Label:    inv.Label,
		Command:  resolved.String(),
		Fallback: resolved.Fallback,
	}
	if resolved.Fallback {
		r.Log.Debug("tool not installed, using one-off runner",
			zap.String("tool", inv.Tool.Name),
			zap.String("runner", r.Fallback))
	}

	cmd := exec.CommandContext(ctx, resolved.Path, resolved.Args...)
	cmd.Dir = r.Dir
	cmd.Stdin = r.Stdin
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	var buf bytes.Buffer
	if r.Capture {
		cmd.Stdout = &buf
		cmd.Stderr = &buf
	} else {
		cmd.Stdout = r.Stdout
		cmd.Stderr = r.Stderr
	}

	r.Log.Debug("running tool",
		zap.String("label", inv.Label),
		zap.String("command", result.Command),
		zap.Bool("mutates", inv.Mutates))

	start := time.Now()
	err = cmd.Run()
	result.Duration = time.Since(start)
	result.Output = buf.String()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			return result, fmt.Errorf("failed to run %s: %w", inv.Tool.Name, err)
		}
	}

	if ctx.Err() != nil {
		return result, ctx.Err()
	}

	r.Log.Debug("tool finished",
		zap.String("label", inv.Label),
		zap.Int("exit_code", result.ExitCode),
		zap.Duration("duration", result.Duration))

	return result, nil
}
