package commands

import (
	"github.com/spf13/cobra"

	"github.com/slatehq/slate/internal/toolchain"
)

var (
	fmtCheck bool
	fmtDiff  bool
)

// NewFmtCommand creates the fmt command
func NewFmtCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fmt [paths...]",
		Short: "Format Python source files",
		Long: `Rewrite source files into the canonical style. Formatting is
idempotent: running it twice reports no changes the second time.

Examples:
  slate fmt                 # format the configured source roots
  slate fmt src tests       # format specific directories
  slate fmt --check         # exit non-zero if anything would change
  slate fmt --diff          # show the changes without applying them`,
		RunE: runFmt,
	}

	cmd.Flags().BoolVar(&fmtCheck, "check", false, "Check formatting without writing files (exit 1 if not formatted)")
	cmd.Flags().BoolVar(&fmtDiff, "diff", false, "Show what would change without writing files")

	return cmd
}

func runFmt(cmd *cobra.Command, args []string) error {
	root, cfg, err := requireProject()
	if err != nil {
		return err
	}

	targets, err := resolveTargets(root, cfg, args)
	if err != nil {
		return err
	}

	toolArgs := []string{"format"}
	if fmtCheck {
		toolArgs = append(toolArgs, "--check")
	}
	if fmtDiff {
		toolArgs = append(toolArgs, "--diff")
	}
	toolArgs = append(toolArgs, cfg.FormatArgs()...)
	toolArgs = append(toolArgs, targets...)

	runner := newRunner(root, cfg, false)
	result, err := runner.Run(cmd.Context(), toolchain.Invocation{
		Tool:    toolchain.Tool{Name: toolchain.Ruff, Path: cfg.Tools.Ruff},
		Args:    toolArgs,
		Label:   "format",
		Mutates: !fmtCheck && !fmtDiff,
	})
	if err != nil {
		return err
	}

	return exitIfFailed(result.ExitCode)
}
