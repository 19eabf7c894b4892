package commands

import (
	"github.com/spf13/cobra"

	"github.com/slatehq/slate/internal/toolchain"
)

var lintFix bool

// NewLintCommand creates the lint command
func NewLintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Report style and correctness issues",
		Long: `Run the linter over the source tree. Diagnostics are printed
verbatim; with --fix, fixable issues are rewritten in place and only
the remainder is reported.

Examples:
  slate lint
  slate lint --fix
  slate lint src/demo_app/main.py`,
		RunE: runLint,
	}

	cmd.Flags().BoolVar(&lintFix, "fix", false, "Apply automatic fixes for fixable diagnostics")

	return cmd
}

func runLint(cmd *cobra.Command, args []string) error {
	root, cfg, err := requireProject()
	if err != nil {
		return err
	}

	targets, err := resolveTargets(root, cfg, args)
	if err != nil {
		return err
	}

	toolArgs := []string{"check"}
	if lintFix {
		toolArgs = append(toolArgs, "--fix")
	}
	toolArgs = append(toolArgs, cfg.LintArgs()...)
	toolArgs = append(toolArgs, targets...)

	runner := newRunner(root, cfg, false)
	result, err := runner.Run(cmd.Context(), toolchain.Invocation{
		Tool:    toolchain.Tool{Name: toolchain.Ruff, Path: cfg.Tools.Ruff},
		Args:    toolArgs,
		Label:   "lint",
		Mutates: lintFix,
	})
	if err != nil {
		return err
	}

	return exitIfFailed(result.ExitCode)
}
