package commands

import (
	"github.com/spf13/cobra"

	"github.com/slatehq/slate/internal/toolchain"
)

// NewTypecheckCommand creates the typecheck command
func NewTypecheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "typecheck [paths...]",
		Short: "Report type inconsistencies",
		Long: `Run the static type checker over the source tree. The checker is
read-only: it never modifies files, and its diagnostics are printed
verbatim for a human or assistant to act on.

Examples:
  slate typecheck
  slate typecheck src/demo_app/main.py`,
		RunE: runTypecheck,
	}
}

func runTypecheck(cmd *cobra.Command, args []string) error {
	root, cfg, err := requireProject()
	if err != nil {
		return err
	}

	targets, err := resolveTargets(root, cfg, args)
	if err != nil {
		return err
	}

	toolArgs := []string{"check"}
	toolArgs = append(toolArgs, cfg.Typecheck.Args...)
	toolArgs = append(toolArgs, targets...)

	runner := newRunner(root, cfg, false)
	result, err := runner.Run(cmd.Context(), toolchain.Invocation{
		Tool:  toolchain.Tool{Name: toolchain.Ty, Path: cfg.Tools.Ty},
		Args:  toolArgs,
		Label: "typecheck",
	})
	if err != nil {
		return err
	}

	return exitIfFailed(result.ExitCode)
}
