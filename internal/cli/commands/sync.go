package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/slatehq/slate/internal/toolchain"
)

var (
	syncFrozen bool
	syncNoDev  bool
)

// NewSyncCommand creates the sync command
func NewSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Materialize the environment from the lock file",
		Long: `Create or update the project virtual environment so that it matches
the manifest and lock file exactly. Resolution and installation are
delegated to the package manager.

Examples:
  slate sync
  slate sync --frozen     # fail instead of updating a stale lock
  slate sync --no-dev     # skip development dependencies`,
		Args: cobra.NoArgs,
		RunE: runSync,
	}

	cmd.Flags().BoolVar(&syncFrozen, "frozen", false, "Fail if the lock file is out of date instead of re-resolving")
	cmd.Flags().BoolVar(&syncNoDev, "no-dev", false, "Do not install development dependencies")

	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	root, cfg, err := requireProject()
	if err != nil {
		return err
	}

	uvArgs := []string{"sync"}
	if syncFrozen {
		uvArgs = append(uvArgs, "--frozen")
	}
	if syncNoDev {
		uvArgs = append(uvArgs, "--no-dev")
	}

	runner := newRunner(root, cfg, false)
	result, err := runner.Run(cmd.Context(), toolchain.Invocation{
		Tool:  toolchain.Tool{Name: toolchain.UV, Path: cfg.Tools.UV},
		Args:  uvArgs,
		Label: "sync",
	})
	if err != nil {
		return err
	}
	if !result.Ok() {
		return &ExitError{Code: result.ExitCode}
	}

	successColor := color.New(color.FgGreen, color.Bold)
	if rootNoColor {
		successColor.DisableColor()
	}
	successColor.Fprintf(cmd.OutOrStdout(), "✓ environment matches the lock file\n")

	return nil
}
