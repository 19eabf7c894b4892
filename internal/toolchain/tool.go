// Package toolchain runs the external Python tooling (uv, ruff, ty) as
// subprocesses. All analysis is delegated to the tools themselves: this
// package only resolves binaries, sequences invocations, and reports
// their exit status and output verbatim.
package toolchain

import (
	"fmt"
	"os/exec"
)

// Well-known tool names.
const (
	UV   = "uv"
	Ruff = "ruff"
	Ty   = "ty"
)

// Tool identifies an external binary, optionally pinned to an explicit
// path from configuration.
type Tool struct {
	Name string
	Path string
}

// Invocation is a single tool call: the tool, its arguments, and a
// short label used in output ("lint", "format", "typecheck", ...).
type Invocation struct {
	Tool    Tool
	Args    []string
	Label   string
	Mutates bool // whether the tool may rewrite source files
}

// Command describes a resolved invocation ready to execute.
type Command struct {
	Path     string
	Args     []string
	Fallback bool // resolved through the one-off runner
}

func (c Command) String() string {
	out := c.Path
	for _, a := range c.Args {
		out += " " + a
	}
	return out
}

// NotInstalledError reports a tool that is neither explicitly
// configured, on PATH, nor reachable through a fallback runner.
type NotInstalledError struct {
	Tool string
}

func (e *NotInstalledError) Error() string {
	return fmt.Sprintf("%s is not installed and no fallback runner is configured", e.Tool)
}

// Resolve locates the tool binary. When the tool is not installed and a
// fallback runner is configured (uvx), the invocation is rewritten to
// run through it as a one-off sandboxed call instead.
func (inv Invocation) Resolve(fallback string) (Command, error) {
	if inv.Tool.Path != "" {
		return Command{Path: inv.Tool.Path, Args: inv.Args}, nil
	}
	if path, err := exec.LookPath(inv.Tool.Name); err == nil {
		return Command{Path: path, Args: inv.Args}, nil
	}
	if fallback == "" {
		return Command{}, &NotInstalledError{Tool: inv.Tool.Name}
	}
	runner, err := exec.LookPath(fallback)
	if err != nil {
		return Command{}, fmt.Errorf("%s is not installed and fallback runner %s was not found", inv.Tool.Name, fallback)
	}
	return Command{
		Path:     runner,
		Args:     append([]string{inv.Tool.Name}, inv.Args...),
		Fallback: true,
	}, nil
}
