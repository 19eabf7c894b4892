package commands

import (
	"github.com/spf13/cobra"

	"github.com/slatehq/slate/internal/cli/config"
	"github.com/slatehq/slate/internal/toolchain"
)

var (
	checkNoFix bool
	checkJSON  bool
)

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Run the full check pipeline: lint --fix, format, typecheck",
		Long: `Run the three-step pipeline in order: the auto-fixing linter, the
formatter, then the read-only type checker. Each tool runs to
completion before the next starts, and every tool's diagnostics are
reported verbatim in invocation order - nothing is suppressed or
retried. Remaining diagnostics are for a human or assistant to fix.

Examples:
  slate check
  slate check src tests
  slate check --no-fix      # report lint issues without rewriting
  slate check --json        # machine-readable result`,
		RunE: runCheck,
	}

	cmd.Flags().BoolVar(&checkNoFix, "no-fix", false, "Run the linter in report-only mode")
	cmd.Flags().BoolVar(&checkJSON, "json", false, "Emit the aggregate result as JSON")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	root, cfg, err := requireProject()
	if err != nil {
		return err
	}

	targets, err := resolveTargets(root, cfg, args)
	if err != nil {
		return err
	}

	if !checkJSON {
		warnOnLockDrift(root)
	}

	result, err := runCheckPipeline(cmd, root, cfg, targets)
	if err != nil {
		return err
	}

	if checkJSON {
		if err := toolchain.WriteJSON(cmd.OutOrStdout(), result); err != nil {
			return err
		}
	} else {
		toolchain.WriteReport(cmd.OutOrStdout(), result, rootNoColor)
	}

	return exitIfFailed(result.ExitCode())
}

// runCheckPipeline builds and runs the standard pipeline. Output is
// captured so diagnostics are reported strictly in invocation order.
func runCheckPipeline(cmd *cobra.Command, root string, cfg *config.Config, targets []string) (*toolchain.Result, error) {
	runner := newRunner(root, cfg, true)

	pipeline := toolchain.CheckPipeline(runner, toolchain.CheckOptions{
		Fix:       !checkNoFix,
		Paths:     targets,
		LintArgs:  cfg.LintArgs(),
		FmtArgs:   cfg.FormatArgs(),
		CheckArgs: cfg.Typecheck.Args,
		RuffPath:  cfg.Tools.Ruff,
		TyPath:    cfg.Tools.Ty,
	})

	return pipeline.Run(cmd.Context())
}
