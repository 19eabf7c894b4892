package toolchain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Pipeline is an ordered list of tool invocations run strictly one at
// a time, each to completion before the next starts. A failing step is
// recorded and the remaining steps still run, so the caller always sees
// the status of every tool in invocation order.
type Pipeline struct {
	Steps  []Invocation
	Runner *Runner
}

// Result aggregates a pipeline run.
type Result struct {
	ID       string        `json:"id"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration_ns"`
	Steps    []StepResult  `json:"steps"`
}

// Ok reports whether every step exited clean.
func (r *Result) Ok() bool {
	for _, s := range r.Steps {
		if !s.Ok() {
			return false
		}
	}
	return true
}

// ExitCode is the exit code of the first failing step, or zero.
func (r *Result) ExitCode() int {
	for _, s := range r.Steps {
		if !s.Ok() {
			return s.ExitCode
		}
	}
	return 0
}

// CheckOptions configure the standard check pipeline.
type CheckOptions struct {
	Fix       bool     // pass the auto-fix flag to the linter
	Paths     []string // explicit paths; empty means the whole tree
	LintArgs  []string // extra linter arguments from configuration
	FmtArgs   []string // extra formatter arguments from configuration
	CheckArgs []string // extra type checker arguments from configuration
	RuffPath  string
	TyPath    string
}

// CheckPipeline builds the three-step pipeline: auto-fixing lint, then
// format, then read-only type check.
func CheckPipeline(runner *Runner, opts CheckOptions) *Pipeline {
	ruff := Tool{Name: Ruff, Path: opts.RuffPath}
	ty := Tool{Name: Ty, Path: opts.TyPath}

	lintArgs := []string{"check"}
	if opts.Fix {
		lintArgs = append(lintArgs, "--fix")
	}
	lintArgs = append(lintArgs, opts.LintArgs...)
	lintArgs = append(lintArgs, opts.Paths...)

	fmtArgs := append([]string{"format"}, opts.FmtArgs...)
	fmtArgs = append(fmtArgs, opts.Paths...)

	checkArgs := append([]string{"check"}, opts.CheckArgs...)
	checkArgs = append(checkArgs, opts.Paths...)

	return &Pipeline{
		Runner: runner,
		Steps: []Invocation{
			{Tool: ruff, Args: lintArgs, Label: "lint", Mutates: opts.Fix},
			{Tool: ruff, Args: fmtArgs, Label: "format", Mutates: true},
			{Tool: ty, Args: checkArgs, Label: "typecheck"},
		},
	}
}

// Run executes the pipeline sequentially. Execution errors (a tool that
// cannot be started) abort the run; diagnostics do not.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		ID:      uuid.NewString(),
		Started: time.Now(),
	}
	p.Runner.Log.Debug("pipeline started",
		zap.String("run_id", result.ID),
		zap.Int("steps", len(p.Steps)))

	for _, step := range p.Steps {
		stepResult, err := p.Runner.Run(ctx, step)
		if err != nil {
			result.Duration = time.Since(result.Started)
			return result, err
		}
		result.Steps = append(result.Steps, stepResult)
	}

	result.Duration = time.Since(result.Started)
	p.Runner.Log.Debug("pipeline finished",
		zap.String("run_id", result.ID),
		zap.Bool("ok", result.Ok()),
		zap.Duration("duration", result.Duration))
	return result, nil
}
